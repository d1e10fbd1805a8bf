package residue

// Lanes holds the three residue bitsets of one ledger. The zero value is an
// empty filter. Array backing keeps every lane at its fixed size.
type Lanes struct {
	l0 [Lane0Bytes]byte
	l1 [Lane1Bytes]byte
	l2 [Lane2Bytes]byte
}

// Lane returns the backing bytes for laneIdx. The slice aliases the lanes.
func (l *Lanes) Lane(laneIdx int) ([]byte, error) {
	switch laneIdx {
	case 0:
		return l.l0[:], nil
	case 1:
		return l.l1[:], nil
	case 2:
		return l.l2[:], nil
	}
	return nil, ErrBadLaneIndex
}

// Contains reports whether slot may already be recorded.
//
// true when any of the three residue bits is set. A slot that was recorded
// always returns true. A slot that was never recorded returns true if it
// shares a residue with any recorded slot.
func (l *Lanes) Contains(slot uint64) bool {
	r := Residues(slot)
	return TestBit(l.l0[:], r[0]) ||
		TestBit(l.l1[:], r[1]) ||
		TestBit(l.l2[:], r[2])
}

// TestAndRecord records slot if Contains(slot) is false.
//
// Returns false, with the lanes unchanged, when the slot is (possibly)
// already recorded.
func (l *Lanes) TestAndRecord(slot uint64) bool {
	if l.Contains(slot) {
		return false
	}
	l.record(slot)
	return true
}

func (l *Lanes) record(slot uint64) {
	r := Residues(slot)
	SetBit(l.l0[:], r[0])
	SetBit(l.l1[:], r[1])
	SetBit(l.l2[:], r[2])
}

// Empty is true if no slot has been recorded.
func (l *Lanes) Empty() bool {
	occ := l.Occupancy()
	return occ[0] == 0 && occ[1] == 0 && occ[2] == 0
}

// Occupancy returns the count of distinct residues set in each lane.
func (l *Lanes) Occupancy() [LaneCount]int {
	return [LaneCount]int{
		CountBits(l.l0[:]),
		CountBits(l.l1[:]),
		CountBits(l.l2[:]),
	}
}

// FalsePositiveRate returns the probability that a slot which was never
// recorded, chosen uniformly, is reported by Contains:
//
//	1 - (1 - |R0|/971)(1 - |R1|/311)(1 - |R2|/601)
func (l *Lanes) FalsePositiveRate() float64 {
	occ := l.Occupancy()
	miss := 1.0
	for i, m := range Moduli {
		miss *= 1 - float64(occ[i])/float64(m)
	}
	return 1 - miss
}

// Encode writes the lanes to region, lane 0 first.
func (l *Lanes) Encode(region []byte) error {
	if len(region) < StateBytes {
		return ErrBadRegionSize
	}
	for i := 0; i < LaneCount; i++ {
		start, end, err := laneOffset(i)
		if err != nil {
			return err
		}
		lane, _ := l.Lane(i)
		copy(region[start:end], lane)
	}
	return nil
}

// Decode reads lanes previously written by Encode.
func Decode(region []byte) (Lanes, error) {
	var l Lanes
	if len(region) < StateBytes {
		return l, ErrBadRegionSize
	}
	for i := 0; i < LaneCount; i++ {
		start, end, err := laneOffset(i)
		if err != nil {
			return Lanes{}, err
		}
		lane, _ := l.Lane(i)
		copy(lane, region[start:end])
	}
	return l, nil
}
