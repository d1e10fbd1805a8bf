package claims

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledgerstore"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/seal"
	"github.com/datatrails/go-datatrails-common/logger"
)

var (
	ErrNoSeal          = errors.New("claims: ledger has no seal")
	ErrPayoutPending   = errors.New("claims: slot recorded, payout pending")
	ErrNoPendingPayout = errors.New("claims: no pending payout")
)

type Service struct {
	log      logger.Logger
	store    ledgerstore.Store
	transfer Transferer
	clock    Clock
	notifier Notifier
	metrics  *Metrics

	sealer *seal.Sealer
	signer seal.Signer

	mu    sync.Mutex
	locks map[ledgerstore.LedgerID]*sync.Mutex
	seals map[ledgerstore.LedgerID][]byte
	// pending holds claims whose slot is recorded but whose payout failed.
	pending map[ledgerstore.LedgerID]map[uint64]ledger.Claimed
}

func NewService(log logger.Logger, store ledgerstore.Store, transfer Transferer, opts ...Option) *Service {
	s := &Service{
		log:      log,
		store:    store,
		transfer: transfer,
		clock:    SystemClock{},
		notifier: LogNotifier{Log: log},
		locks:    map[ledgerstore.LedgerID]*sync.Mutex{},
		seals:    map[ledgerstore.LedgerID][]byte{},
		pending:  map[ledgerstore.LedgerID]map[uint64]ledger.Claimed{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// lock serializes operations on one ledger within this process. The store
// update is still conditional, so writers in other processes are detected
// rather than overwritten.
func (s *Service) lock(id ledgerstore.LedgerID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Create stores a new ledger and returns its id.
func (s *Service) Create(ctx context.Context, p ledger.Params) (ledgerstore.LedgerID, error) {
	now := s.clock.Now()
	l, ev, err := ledger.New(p, now)
	if err == nil {
		id := ledgerstore.NewLedgerID()
		if err = s.store.Create(ctx, id, l); err == nil {
			s.committed(ctx, OpCreate, id, l, ev, now)
			return id, nil
		}
	}
	s.metrics.observe(OpCreate, err)
	return ledgerstore.LedgerID{}, err
}

func (s *Service) Get(ctx context.Context, id ledgerstore.LedgerID) (*ledger.Ledger, error) {
	return s.store.Read(ctx, id)
}

// Claim verifies and records req, then pays req.Amount to req.Recipient.
//
// Only the recipient may claim. The slot is committed to the store before
// the payout, so a failed write never leaves a payout behind. A failed
// payout keeps the slot recorded and returns ErrPayoutPending; RetryPayout
// completes it.
func (s *Service) Claim(
	ctx context.Context, id ledgerstore.LedgerID, caller ledger.Identity, req ledger.ClaimRequest,
) (ledger.Claimed, error) {
	if caller != req.Recipient {
		err := fmt.Errorf("%w: caller %s is not the recipient", ledger.ErrUnauthorized, caller)
		s.metrics.observe(OpClaim, err)
		return ledger.Claimed{}, err
	}

	var ev ledger.Claimed
	err := s.mutate(ctx, OpClaim, id, func(l *ledger.Ledger, now int64) (ledger.Event, error) {
		var err error
		ev, err = l.Claim(claimproof.NewHasher(), now, req)
		if err != nil {
			return nil, err
		}
		return ev, nil
	})
	if err != nil {
		return ledger.Claimed{}, err
	}
	return ev, s.payout(ctx, id, ev)
}

// RetryPayout repeats the payout of a slot whose claim returned
// ErrPayoutPending.
func (s *Service) RetryPayout(ctx context.Context, id ledgerstore.LedgerID, slot uint64) (ledger.Claimed, error) {
	s.mu.Lock()
	ev, ok := s.pending[id][slot]
	s.mu.Unlock()
	if !ok {
		return ledger.Claimed{}, fmt.Errorf("%w: ledger %s slot %d", ErrNoPendingPayout, id, slot)
	}
	return ev, s.payout(ctx, id, ev)
}

// PendingPayouts lists the recorded slots of id that are still unpaid.
func (s *Service) PendingPayouts(id ledgerstore.LedgerID) []ledger.Claimed {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ledger.Claimed
	for _, ev := range s.pending[id] {
		out = append(out, ev)
	}
	return out
}

func (s *Service) payout(ctx context.Context, id ledgerstore.LedgerID, ev ledger.Claimed) error {
	err := s.transfer.Transfer(ctx, id, ev.Slot, ev.Recipient, ev.Amount)
	s.metrics.observe(OpPayout, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.pending[id] == nil {
			s.pending[id] = map[uint64]ledger.Claimed{}
		}
		s.pending[id][ev.Slot] = ev
		s.log.Infof("ledger %s: payout of slot %d pending: %v", id, ev.Slot, err)
		return fmt.Errorf("%w: slot %d: %w", ErrPayoutPending, ev.Slot, err)
	}
	delete(s.pending[id], ev.Slot)
	if len(s.pending[id]) == 0 {
		delete(s.pending, id)
	}
	return nil
}

func (s *Service) Close(ctx context.Context, id ledgerstore.LedgerID, caller ledger.Identity) (ledger.Closed, error) {
	var ev ledger.Closed
	err := s.mutate(ctx, OpClose, id, func(l *ledger.Ledger, now int64) (ledger.Event, error) {
		var err error
		ev, err = l.Close(caller, now)
		return ev, err
	})
	return ev, err
}

func (s *Service) UpdateWindow(
	ctx context.Context, id ledgerstore.LedgerID, caller ledger.Identity, start, duration int64,
) (ledger.WindowUpdated, error) {
	var ev ledger.WindowUpdated
	err := s.mutate(ctx, OpUpdateWindow, id, func(l *ledger.Ledger, now int64) (ledger.Event, error) {
		var err error
		ev, err = l.UpdateWindow(caller, start, duration, now)
		return ev, err
	})
	return ev, err
}

func (s *Service) UpdateCommitment(
	ctx context.Context, id ledgerstore.LedgerID, caller ledger.Identity, commitment claimproof.Digest, totalClaims uint64,
) (ledger.CommitmentUpdated, error) {
	var ev ledger.CommitmentUpdated
	err := s.mutate(ctx, OpUpdateCommitment, id, func(l *ledger.Ledger, now int64) (ledger.Event, error) {
		var err error
		ev, err = l.UpdateCommitment(caller, commitment, totalClaims, now)
		return ev, err
	})
	return ev, err
}

// Teardown deletes the ledger. The released storage is credited to
// recipient, as reported by the returned event.
func (s *Service) Teardown(
	ctx context.Context, id ledgerstore.LedgerID, caller, recipient ledger.Identity,
) (ledger.TornDown, error) {
	unlock := s.lock(id)
	defer unlock()

	ev, err := s.teardown(ctx, id, caller, recipient)
	s.metrics.observe(OpTeardown, err)
	if err != nil {
		return ledger.TornDown{}, err
	}

	s.mu.Lock()
	delete(s.seals, id)
	delete(s.locks, id)
	delete(s.pending, id)
	s.mu.Unlock()
	s.metrics.forget(id)
	s.notify(ctx, id, ev)
	return ev, nil
}

func (s *Service) teardown(
	ctx context.Context, id ledgerstore.LedgerID, caller, recipient ledger.Identity,
) (ledger.TornDown, error) {
	n, err := s.store.Delete(ctx, id, func(l *ledger.Ledger) error {
		return l.Authorize(caller)
	})
	if err != nil {
		return ledger.TornDown{}, err
	}
	return ledger.TornDown{
		Recipient:      recipient,
		ReclaimedBytes: n,
		Timestamp:      s.clock.Now(),
	}, nil
}

// LatestSeal returns the seal of the last state this service committed
// for id.
func (s *Service) LatestSeal(id ledgerstore.LedgerID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.seals[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSeal, id)
	}
	return msg, nil
}

type transition func(l *ledger.Ledger, now int64) (ledger.Event, error)

// mutate runs fn as one store update. When fn fails the store discards
// whatever it did to l.
func (s *Service) mutate(ctx context.Context, op string, id ledgerstore.LedgerID, fn transition) error {
	unlock := s.lock(id)
	defer unlock()

	now := s.clock.Now()
	var ev ledger.Event
	var committed *ledger.Ledger
	err := s.store.Update(ctx, id, func(l *ledger.Ledger) error {
		var err error
		if ev, err = fn(l, now); err != nil {
			return err
		}
		committed = l.Clone()
		return nil
	})
	if err != nil {
		s.metrics.observe(op, err)
		s.log.Debugf("ledger %s: %s: %v", id, op, err)
		return err
	}
	s.committed(ctx, op, id, committed, ev, now)
	return nil
}

func (s *Service) committed(
	ctx context.Context, op string, id ledgerstore.LedgerID, l *ledger.Ledger, ev ledger.Event, now int64,
) {
	s.metrics.observe(op, nil)
	if claimed, ok := ev.(ledger.Claimed); ok {
		s.metrics.claimed(id, l, claimed.Amount)
	}
	s.seal(id, l, now)
	s.notify(ctx, id, ev)
}

func (s *Service) notify(ctx context.Context, id ledgerstore.LedgerID, ev ledger.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, id, ev); err != nil {
		s.log.Infof("ledger %s: notify %s: %v", id, ev.EventName(), err)
	}
}

func (s *Service) seal(id ledgerstore.LedgerID, l *ledger.Ledger, now int64) {
	if s.sealer == nil {
		return
	}
	msg, err := s.sealer.Sign1(s.signer, ledgerstore.LedgerBlobPath(id), seal.NewCheckpoint(id, l, now), nil)
	if err != nil {
		// The state is committed; a missing seal is reported, not fatal.
		s.log.Infof("ledger %s: seal: %v", id, err)
		s.mu.Lock()
		delete(s.seals, id)
		s.mu.Unlock()
		return
	}
	s.mu.Lock()
	s.seals[id] = msg
	s.mu.Unlock()
}
