package ledger

import (
	"fmt"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/residue"
)

// MaxSlots bounds TotalClaims.
const MaxSlots = residue.MaxSlots

type Ledger struct {
	// Authority is the only identity allowed to change the metadata or tear
	// the ledger down.
	Authority Identity
	// Commitment is the allocation root claims are proven against.
	Commitment claimproof.Digest
	// Snapshot binds the value vault to this ledger instance. It is fixed at
	// creation.
	Snapshot claimproof.Digest

	// The window is open for start <= now <= start+duration, unix seconds.
	WindowStart    int64
	WindowDuration int64
	Closed         bool

	TotalClaims uint64

	lanes residue.Lanes
}

// Params are the creation arguments for a ledger.
type Params struct {
	Authority      Identity
	Snapshot       claimproof.Digest
	Commitment     claimproof.Digest
	WindowStart    int64
	WindowDuration int64
	TotalClaims    uint64
}

// New creates an open ledger with empty residue lanes.
func New(p Params, now int64) (*Ledger, Initialized, error) {
	if p.WindowDuration <= 0 {
		return nil, Initialized{}, fmt.Errorf("%w: %d", ErrInvalidDuration, p.WindowDuration)
	}
	if p.TotalClaims > MaxSlots {
		return nil, Initialized{}, fmt.Errorf("%w: total claims %d exceeds %d", ErrInvalidIndex, p.TotalClaims, MaxSlots)
	}
	l := &Ledger{
		Authority:      p.Authority,
		Commitment:     p.Commitment,
		Snapshot:       p.Snapshot,
		WindowStart:    p.WindowStart,
		WindowDuration: p.WindowDuration,
		TotalClaims:    p.TotalClaims,
	}
	ev := Initialized{
		Authority:      l.Authority,
		Snapshot:       l.Snapshot,
		WindowStart:    l.WindowStart,
		WindowDuration: l.WindowDuration,
		TotalClaims:    l.TotalClaims,
		Timestamp:      now,
	}
	return l, ev, nil
}

// Lanes returns a copy of the residue lanes.
func (l *Ledger) Lanes() residue.Lanes {
	return l.lanes
}

// Clone returns an independent copy, used to stage a transition.
func (l *Ledger) Clone() *Ledger {
	c := *l
	return &c
}

// IsClaimed reports whether slot would be refused as already claimed. Like
// the lanes it may report slots that were never claimed.
func (l *Ledger) IsClaimed(slot uint64) bool {
	return l.lanes.Contains(slot)
}

// WindowOpen reports whether now lies in the inclusive claim window.
func (l *Ledger) WindowOpen(now int64) bool {
	if now < l.WindowStart {
		return false
	}
	// now >= start so the true difference fits in uint64 even when the
	// signed subtraction would overflow.
	elapsed := uint64(now) - uint64(l.WindowStart)
	return elapsed <= uint64(l.WindowDuration)
}

// WindowEnd returns start+duration, saturating at the int64 range.
func (l *Ledger) WindowEnd() int64 {
	end := l.WindowStart + l.WindowDuration
	if l.WindowDuration > 0 && end < l.WindowStart {
		return int64(^uint64(0) >> 1)
	}
	return end
}
