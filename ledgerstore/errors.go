package ledgerstore

import "errors"

var (
	ErrNotFound  = errors.New("ledgerstore: ledger not found")
	ErrExists    = errors.New("ledgerstore: optimistic concurrency failure, ledger already exists")
	ErrContentOC = errors.New("ledgerstore: optimistic concurrency failure, record changed during update")
	ErrNilLedger = errors.New("ledgerstore: nil ledger")
)
