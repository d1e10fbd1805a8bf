package claimtesting

import (
	"errors"
	"hash"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"
)

var ErrLeafIndex = errors.New("leaf index out of range")

// Allocation is one row of an allocation snapshot.
type Allocation struct {
	Slot      uint64
	Recipient [32]byte
	Amount    uint64
}

// AllocationTree is a sorted-pair merkle tree over allocation leaves. An odd
// node at the end of a level is carried up unchanged, so its proof has no
// sibling for that level.
type AllocationTree struct {
	levels [][]claimproof.Digest
	hasher hash.Hash
}

func NewAllocationTree(hasher hash.Hash, allocs []Allocation) *AllocationTree {
	leaves := make([]claimproof.Digest, len(allocs))
	for i, a := range allocs {
		leaves[i] = claimproof.LeafHash(hasher, a.Slot, a.Recipient, a.Amount)
	}
	return NewTreeFromLeaves(hasher, leaves)
}

func NewTreeFromLeaves(hasher hash.Hash, leaves []claimproof.Digest) *AllocationTree {
	t := &AllocationTree{hasher: hasher}
	level := append([]claimproof.Digest(nil), leaves...)
	t.levels = append(t.levels, level)
	for len(level) > 1 {
		next := make([]claimproof.Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, claimproof.SortedPairHash(hasher, level[i], level[i+1]))
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t
}

// Root returns the commitment. The root of an empty tree is the zero digest.
func (t *AllocationTree) Root() claimproof.Digest {
	top := t.levels[len(t.levels)-1]
	if len(top) == 0 {
		return claimproof.Digest{}
	}
	return top[0]
}

func (t *AllocationTree) LeafCount() int {
	return len(t.levels[0])
}

func (t *AllocationTree) Leaf(i int) (claimproof.Digest, error) {
	if i < 0 || i >= t.LeafCount() {
		return claimproof.Digest{}, ErrLeafIndex
	}
	return t.levels[0][i], nil
}

// Proof returns the sibling path for leaf i, leaf to root.
func (t *AllocationTree) Proof(i int) ([]claimproof.Digest, error) {
	if i < 0 || i >= t.LeafCount() {
		return nil, ErrLeafIndex
	}
	var proof []claimproof.Digest
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := i ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		i /= 2
	}
	return proof, nil
}
