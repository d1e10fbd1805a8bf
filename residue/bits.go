package residue

import "math/bits"

// TestBit reports whether bit r is set. Out of range positions read as unset.
func TestBit(lane []byte, r uint64) bool {
	byteIdx := r >> 3
	if byteIdx >= uint64(len(lane)) {
		return false
	}
	bit := uint8(r & 7)
	return (lane[byteIdx] & (1 << bit)) != 0
}

// SetBit sets bit r. Setting a set bit, or an out of range bit, changes nothing.
func SetBit(lane []byte, r uint64) {
	byteIdx := r >> 3
	if byteIdx >= uint64(len(lane)) {
		return
	}
	bit := uint8(r & 7)
	lane[byteIdx] |= (1 << bit)
}

// CountBits returns the number of set bits in lane.
func CountBits(lane []byte) int {
	n := 0
	for _, b := range lane {
		n += bits.OnesCount8(b)
	}
	return n
}
