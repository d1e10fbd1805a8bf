package claimtesting

import (
	"crypto/sha256"
	"encoding/binary"
)

// Identity derives a deterministic 32 byte identity from a label.
func Identity(label string) [32]byte {
	return sha256.Sum256([]byte("claimtesting/identity/" + label))
}

// Allocations returns n allocation rows with slots 0..n-1, recipients derived
// from the slot and amounts 1000*(slot+1).
func Allocations(n int) []Allocation {
	allocs := make([]Allocation, n)
	for i := range allocs {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(i))
		allocs[i] = Allocation{
			Slot:      uint64(i),
			Recipient: Identity(string(b[:])),
			Amount:    1000 * uint64(i+1),
		}
	}
	return allocs
}
