package claimproof

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrBadDigest = errors.New("claimproof: digest must be 32 bytes of hex")

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest accepts 64 hex characters, with or without a 0x prefix.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("%w: %v", ErrBadDigest, err)
	}
	if len(b) != DigestBytes {
		return d, ErrBadDigest
	}
	copy(d[:], b)
	return d, nil
}

// ParseProof parses each element with ParseDigest.
func ParseProof(elems []string) ([]Digest, error) {
	proof := make([]Digest, 0, len(elems))
	for i, e := range elems {
		d, err := ParseDigest(e)
		if err != nil {
			return nil, fmt.Errorf("proof element %d: %w", i, err)
		}
		proof = append(proof, d)
	}
	return proof, nil
}
