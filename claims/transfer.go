package claims

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledgerstore"
	"github.com/datatrails/go-datatrails-common/logger"
)

var (
	ErrVaultNotFound      = errors.New("claims: no vault for ledger")
	ErrInsufficientFunds  = errors.New("claims: vault balance too low")
	ErrVaultFundsOverflow = errors.New("claims: vault balance overflow")
)

// Transferer pays amount from the ledger's vault to recipient for a
// recorded slot. It is called after the slot is committed and may be called
// again for the same slot after a failure, so it must pay each (id, slot)
// at most once.
type Transferer interface {
	Transfer(ctx context.Context, id ledgerstore.LedgerID, slot uint64, recipient ledger.Identity, amount uint64) error
}

// Vaults holds one balance per ledger in memory.
type Vaults struct {
	mu       sync.Mutex
	balances map[ledgerstore.LedgerID]uint64
	paid     map[ledgerstore.LedgerID]map[ledger.Identity]uint64
	slots    map[ledgerstore.LedgerID]map[uint64]bool
}

func NewVaults() *Vaults {
	return &Vaults{
		balances: map[ledgerstore.LedgerID]uint64{},
		paid:     map[ledgerstore.LedgerID]map[ledger.Identity]uint64{},
		slots:    map[ledgerstore.LedgerID]map[uint64]bool{},
	}
}

// Fund adds amount to the vault of id, creating it if needed.
func (v *Vaults) Fund(id ledgerstore.LedgerID, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	b := v.balances[id]
	if b+amount < b {
		return ErrVaultFundsOverflow
	}
	v.balances[id] = b + amount
	return nil
}

func (v *Vaults) Balance(id ledgerstore.LedgerID) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[id]
}

// Paid returns the total transferred to recipient from the vault of id.
func (v *Vaults) Paid(id ledgerstore.LedgerID, recipient ledger.Identity) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paid[id][recipient]
}

// Transfer pays a slot once; repeating a paid slot does nothing.
func (v *Vaults) Transfer(ctx context.Context, id ledgerstore.LedgerID, slot uint64, recipient ledger.Identity, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.slots[id][slot] {
		return nil
	}
	b, ok := v.balances[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrVaultNotFound, id)
	}
	if amount > b {
		return fmt.Errorf("%w: balance %d, amount %d", ErrInsufficientFunds, b, amount)
	}
	v.balances[id] = b - amount
	if v.paid[id] == nil {
		v.paid[id] = map[ledger.Identity]uint64{}
	}
	v.paid[id][recipient] += amount
	if v.slots[id] == nil {
		v.slots[id] = map[uint64]bool{}
	}
	v.slots[id][slot] = true
	return nil
}

// LogTransferer records payouts in the log only, for deployments where the
// payout is executed by another system reading the claimed events.
type LogTransferer struct {
	Log logger.Logger
}

func (t LogTransferer) Transfer(ctx context.Context, id ledgerstore.LedgerID, slot uint64, recipient ledger.Identity, amount uint64) error {
	t.Log.Infof("ledger %s: payout slot %d: %d to %s", id, slot, amount, recipient)
	return nil
}
