package ledgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "ledger/"

type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
}

func InMemoryBadgerConfig() BadgerConfig {
	return BadgerConfig{InMemory: true}
}

// badgerLogger adapts logger.Logger to badger.Logger
type badgerLogger struct {
	log logger.Logger
}

func (l badgerLogger) Errorf(format string, args ...any)   { l.log.Infof("badger error: "+format, args...) }
func (l badgerLogger) Warningf(format string, args ...any) { l.log.Infof("badger warning: "+format, args...) }
func (l badgerLogger) Infof(format string, args ...any)    { l.log.Debugf("badger: "+format, args...) }
func (l badgerLogger) Debugf(format string, args ...any)   { l.log.Debugf("badger: "+format, args...) }

type BadgerStore struct {
	db  *badger.DB
	log logger.Logger
}

// OpenBadgerStore opens (creating if needed) a badger backed store. The
// caller must Close it.
func OpenBadgerStore(cfg BadgerConfig, log logger.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("ledgerstore: badger path is required for a persistent store")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts = opts.WithNumVersionsToKeep(1)
	if log != nil {
		opts = opts.WithLogger(badgerLogger{log: log})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{db: db, log: log}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func badgerKey(id LedgerID) []byte {
	return []byte(badgerKeyPrefix + id.String())
}

func (s *BadgerStore) Create(ctx context.Context, id LedgerID, l *ledger.Ledger) error {
	data, err := encode(l)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(id))
		if err == nil {
			return ErrExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(badgerKey(id), data)
	})
	return mapBadgerErr(err)
}

func (s *BadgerStore) Read(ctx context.Context, id LedgerID) (*ledger.Ledger, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, mapBadgerErr(err)
	}
	return decode(data)
}

// Update runs fn inside a single read-write transaction. A concurrent
// writer to the same key makes the commit fail with ErrContentOC.
func (s *BadgerStore) Update(ctx context.Context, id LedgerID, fn UpdateFunc) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		updated, err := apply(data, fn)
		if err != nil {
			return err
		}
		return txn.Set(badgerKey(id), updated)
	})
	return mapBadgerErr(err)
}

// Delete runs check and the delete in one transaction, so a concurrent
// write to the record makes the commit fail with ErrContentOC.
func (s *BadgerStore) Delete(ctx context.Context, id LedgerID, check UpdateFunc) (int, error) {
	var n int
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err = checkDelete(data, check); err != nil {
			return err
		}
		n = len(data)
		return txn.Delete(badgerKey(id))
	})
	if err != nil {
		return 0, mapBadgerErr(err)
	}
	return n, nil
}

func mapBadgerErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return ErrNotFound
	case errors.Is(err, badger.ErrConflict):
		return fmt.Errorf("%w: %v", ErrContentOC, err)
	}
	return err
}
