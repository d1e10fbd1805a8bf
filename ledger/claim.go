package ledger

import (
	"fmt"
	"hash"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"
)

type ClaimRequest struct {
	Slot      uint64
	Recipient Identity
	Amount    uint64
	Proof     []claimproof.Digest
}

// Claim validates req against the ledger and records the slot.
//
// Checks run in a fixed order: closed, window, slot range, proof, then the
// residue lanes. Any failure returns before the lanes are touched. On
// success the slot is recorded and the caller must go on to transfer
// req.Amount to req.Recipient.
func (l *Ledger) Claim(hasher hash.Hash, now int64, req ClaimRequest) (Claimed, error) {
	if l.Closed {
		return Claimed{}, ErrClaimClosed
	}
	if !l.WindowOpen(now) {
		return Claimed{}, fmt.Errorf(
			"%w: now %d outside [%d, %d]", ErrClaimWindowClosed, now, l.WindowStart, l.WindowEnd())
	}
	if req.Slot >= l.TotalClaims {
		return Claimed{}, fmt.Errorf("%w: slot %d, total claims %d", ErrInvalidIndex, req.Slot, l.TotalClaims)
	}

	leaf := claimproof.LeafHash(hasher, req.Slot, req.Recipient, req.Amount)
	if !claimproof.VerifyInclusion(hasher, leaf, req.Proof, l.Commitment) {
		return Claimed{}, fmt.Errorf("%w: slot %d", ErrInvalidProof, req.Slot)
	}

	if !l.lanes.TestAndRecord(req.Slot) {
		return Claimed{}, fmt.Errorf("%w: slot %d", ErrAlreadyClaimed, req.Slot)
	}

	return Claimed{
		Recipient: req.Recipient,
		Amount:    req.Amount,
		Slot:      req.Slot,
		Timestamp: now,
	}, nil
}
