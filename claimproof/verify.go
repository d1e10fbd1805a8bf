package claimproof

import "hash"

// SortedPairHash returns H(min(a,b) || max(a,b)).
func SortedPairHash(hasher hash.Hash, a, b Digest) Digest {
	hasher.Reset()
	if a.Compare(b) <= 0 {
		hasher.Write(a[:])
		hasher.Write(b[:])
	} else {
		hasher.Write(b[:])
		hasher.Write(a[:])
	}
	return sumInto(hasher)
}

// IncludedRoot folds proof into leaf and returns the resulting root.
func IncludedRoot(hasher hash.Hash, leaf Digest, proof []Digest) Digest {
	root := leaf
	for _, p := range proof {
		root = SortedPairHash(hasher, root, p)
	}
	return root
}

// VerifyInclusion returns true if leaf combined with proof reproduces root.
//
// An empty proof verifies only a single leaf commitment (leaf == root).
// Failure is reported as false, never as an error.
func VerifyInclusion(hasher hash.Hash, leaf Digest, proof []Digest, root Digest) bool {
	return IncludedRoot(hasher, leaf, proof) == root
}
