package ledgerstore

import (
	"context"
	"fmt"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	"github.com/google/uuid"
)

// LedgerID identifies one ledger record.
type LedgerID = uuid.UUID

func NewLedgerID() LedgerID {
	return uuid.New()
}

func ParseLedgerID(s string) (LedgerID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ledger id %q: %w", s, err)
	}
	return id, nil
}

// UpdateFunc mutates the ledger in place. Returning an error discards the
// mutation.
type UpdateFunc func(l *ledger.Ledger) error

type Store interface {
	// Create stores a new ledger, failing with ErrExists if id is taken.
	Create(ctx context.Context, id LedgerID, l *ledger.Ledger) error
	Read(ctx context.Context, id LedgerID) (*ledger.Ledger, error)
	// Update applies fn as one atomic read-modify-write.
	Update(ctx context.Context, id LedgerID, fn UpdateFunc) error
	// Delete removes the record and returns the number of bytes released.
	// When check is not nil it runs against the record being deleted and an
	// error from it leaves the record in place.
	Delete(ctx context.Context, id LedgerID, check UpdateFunc) (int, error)
}

func encode(l *ledger.Ledger) ([]byte, error) {
	if l == nil {
		return nil, ErrNilLedger
	}
	return l.MarshalBinary()
}

func decode(data []byte) (*ledger.Ledger, error) {
	l := &ledger.Ledger{}
	if err := l.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return l, nil
}

func checkDelete(data []byte, check UpdateFunc) error {
	if check == nil {
		return nil
	}
	l, err := decode(data)
	if err != nil {
		return err
	}
	return check(l)
}

// apply decodes data, runs fn and returns the re-encoded record.
func apply(data []byte, fn UpdateFunc) ([]byte, error) {
	l, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := fn(l); err != nil {
		return nil, err
	}
	return encode(l)
}
