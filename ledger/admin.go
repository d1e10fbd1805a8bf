package ledger

import (
	"fmt"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"
)

// Authorize returns ErrUnauthorized unless caller is the ledger authority.
func (l *Ledger) Authorize(caller Identity) error {
	if caller != l.Authority {
		return fmt.Errorf("%w: caller %s is not the authority", ErrUnauthorized, caller)
	}
	return nil
}

// UpdateWindow replaces the claim window and re-opens the ledger.
func (l *Ledger) UpdateWindow(caller Identity, start, duration int64, now int64) (WindowUpdated, error) {
	if err := l.Authorize(caller); err != nil {
		return WindowUpdated{}, err
	}
	if duration <= 0 {
		return WindowUpdated{}, fmt.Errorf("%w: %d", ErrInvalidDuration, duration)
	}
	// Changing the window always re-opens claims.
	l.Closed = false
	l.WindowStart = start
	l.WindowDuration = duration
	return WindowUpdated{
		WindowStart:    start,
		WindowDuration: duration,
		Timestamp:      now,
	}, nil
}

// UpdateCommitment replaces the commitment and slot count.
//
// The residue lanes are kept: slots recorded under the previous commitment
// remain recorded, and their residues can refuse slots of the new
// allocation.
func (l *Ledger) UpdateCommitment(caller Identity, commitment claimproof.Digest, totalClaims uint64, now int64) (CommitmentUpdated, error) {
	if totalClaims > MaxSlots {
		return CommitmentUpdated{}, fmt.Errorf("%w: total claims %d exceeds %d", ErrInvalidIndex, totalClaims, MaxSlots)
	}
	if err := l.Authorize(caller); err != nil {
		return CommitmentUpdated{}, err
	}
	l.Commitment = commitment
	l.TotalClaims = totalClaims
	return CommitmentUpdated{
		Commitment:  commitment,
		TotalClaims: totalClaims,
		Timestamp:   now,
	}, nil
}

// Close stops all claims until the window is next updated.
func (l *Ledger) Close(caller Identity, now int64) (Closed, error) {
	if err := l.Authorize(caller); err != nil {
		return Closed{}, err
	}
	l.Closed = true
	return Closed{
		Authority: l.Authority,
		Timestamp: now,
	}, nil
}
