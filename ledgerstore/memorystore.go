package ledgerstore

import (
	"context"
	"sync"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
)

// MemoryStore keeps encoded records in a map. Records are encoded so a
// caller can never alias stored state.
type MemoryStore struct {
	mu      sync.Mutex
	records map[LedgerID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[LedgerID][]byte{}}
}

func (s *MemoryStore) Create(ctx context.Context, id LedgerID, l *ledger.Ledger) error {
	data, err := encode(l)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; ok {
		return ErrExists
	}
	s.records[id] = data
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, id LedgerID) (*ledger.Ledger, error) {
	s.mu.Lock()
	data, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

func (s *MemoryStore) Update(ctx context.Context, id LedgerID, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	updated, err := apply(data, fn)
	if err != nil {
		return err
	}
	s.records[id] = updated
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id LedgerID, check UpdateFunc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.records[id]
	if !ok {
		return 0, ErrNotFound
	}
	if err := checkDelete(data, check); err != nil {
		return 0, err
	}
	delete(s.records, id)
	return len(data), nil
}
