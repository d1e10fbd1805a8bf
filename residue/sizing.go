package residue

// LaneBytes returns ceil(modulus/8).
func LaneBytes(modulus uint64) int {
	return int((modulus + 7) / 8)
}

// Residues returns slot mod each of the Moduli, in lane order.
func Residues(slot uint64) [LaneCount]uint64 {
	return [LaneCount]uint64{
		slot % Modulus0,
		slot % Modulus1,
		slot % Modulus2,
	}
}

func laneOffset(laneIdx int) (int, int, error) {
	switch laneIdx {
	case 0:
		return 0, Lane0Bytes, nil
	case 1:
		return Lane0Bytes, Lane0Bytes + Lane1Bytes, nil
	case 2:
		return Lane0Bytes + Lane1Bytes, StateBytes, nil
	}
	return 0, 0, ErrBadLaneIndex
}
