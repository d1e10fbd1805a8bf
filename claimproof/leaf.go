package claimproof

import (
	"encoding/binary"
	"hash"
)

// LeafBytes is the width of the leaf preimage.
const LeafBytes = 8 + 32 + 8

// LeafHash derives the leaf committed for one allocation row.
func LeafHash(hasher hash.Hash, slot uint64, recipient [32]byte, amount uint64) Digest {
	var b [LeafBytes]byte
	binary.LittleEndian.PutUint64(b[0:8], slot)
	copy(b[8:40], recipient[:])
	binary.LittleEndian.PutUint64(b[40:48], amount)

	hasher.Reset()
	hasher.Write(b[:])
	return sumInto(hasher)
}
