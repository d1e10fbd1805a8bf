package claimproof

import (
	"bytes"
	"hash"

	"golang.org/x/crypto/sha3"
)

const DigestBytes = 32

type Digest [DigestBytes]byte

// NewHasher returns the protocol hash, legacy Keccak-256.
func NewHasher() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Compare orders digests as big endian unsigned integers.
func (d Digest) Compare(o Digest) int {
	return bytes.Compare(d[:], o[:])
}

func (d Digest) IsZero() bool {
	return d == Digest{}
}

func sumInto(hasher hash.Hash) Digest {
	var d Digest
	copy(d[:], hasher.Sum(nil))
	return d
}
