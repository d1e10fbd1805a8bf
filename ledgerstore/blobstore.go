package ledgerstore

import (
	"context"
	"fmt"
	"io"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
)

const (
	V1LedgerPrefix   = "v1/ledgers"
	V1LedgerBlobName = "record.bin"
)

// LedgerBlobPath returns the blob path of the ledger record.
func LedgerBlobPath(id LedgerID) string {
	return fmt.Sprintf("%s/%s/%s", V1LedgerPrefix, id.String(), V1LedgerBlobName)
}

type ledgerBlobStore interface {
	Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error)
	Put(ctx context.Context, identity string, source io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error)
	Delete(ctx context.Context, identity string) error
}

// BlobStore keeps each ledger record in its own blob. Creates require that
// no blob exists and updates require the etag read at the start of the
// update, so two writers can not both succeed against the same version.
//
// Storage service errors are mapped by code: BlobNotFound to ErrNotFound,
// BlobAlreadyExists on create to ErrExists and ConditionNotMet to ErrExists
// or ErrContentOC. Any other error, including transport failures, is
// returned as is.
//
// Blob deletes are unconditional. Delete re-reads the etag immediately
// before deleting and fails with ErrContentOC if the record changed since
// the check, but a write landing between that read and the delete is lost.
type BlobStore struct {
	store ledgerBlobStore
	log   logger.Logger
}

func NewBlobStore(store ledgerBlobStore, log logger.Logger) *BlobStore {
	return &BlobStore{store: store, log: log}
}

func (s *BlobStore) Create(ctx context.Context, id LedgerID, l *ledger.Ledger) error {
	data, err := encode(l)
	if err != nil {
		return err
	}
	// The way to spell 'fail without modifying if the blob exists' is to
	// require that no blob matches *any* etag.
	_, err = s.store.Put(ctx, LedgerBlobPath(id), azblob.NewBytesReaderCloser(data),
		azblob.WithEtagNoneMatch("*"))
	if err != nil {
		switch storageErrorCode(err) {
		case azblobBlobAlreadyExists, azblobConditionNotMet:
			return fmt.Errorf("%w: %s: %v", ErrExists, LedgerBlobPath(id), err)
		}
		return fmt.Errorf("create %s: %w", LedgerBlobPath(id), err)
	}
	return nil
}

func (s *BlobStore) readData(ctx context.Context, id LedgerID) ([]byte, string, error) {
	rr, err := s.store.Reader(ctx, LedgerBlobPath(id))
	if err != nil {
		return nil, "", s.readErr(id, err)
	}
	defer rr.Reader.Close()
	data, err := io.ReadAll(rr.Reader)
	if err != nil {
		return nil, "", err
	}
	etag := ""
	if rr.ETag != nil {
		etag = *rr.ETag
	}
	return data, etag, nil
}

func (s *BlobStore) readErr(id LedgerID, err error) error {
	if storageErrorCode(err) == azblobBlobNotFound {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, LedgerBlobPath(id), err)
	}
	return fmt.Errorf("read %s: %w", LedgerBlobPath(id), err)
}

func (s *BlobStore) Read(ctx context.Context, id LedgerID) (*ledger.Ledger, error) {
	data, _, err := s.readData(ctx, id)
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *BlobStore) Update(ctx context.Context, id LedgerID, fn UpdateFunc) error {
	data, etag, err := s.readData(ctx, id)
	if err != nil {
		return err
	}
	if etag == "" {
		return fmt.Errorf("%w: etag is required when updating a ledger blob", ErrContentOC)
	}
	updated, err := apply(data, fn)
	if err != nil {
		return err
	}
	// CRITICAL: the etag guards against racy updates.
	_, err = s.store.Put(ctx, LedgerBlobPath(id), azblob.NewBytesReaderCloser(updated),
		azblob.WithEtagMatch(etag))
	if err != nil {
		switch storageErrorCode(err) {
		case azblobConditionNotMet:
			if s.log != nil {
				s.log.Infof("ledger %s: conditional write failed: %v", id, err)
			}
			return fmt.Errorf("%w: %v", ErrContentOC, err)
		case azblobBlobNotFound:
			return fmt.Errorf("%w: %s: %v", ErrNotFound, LedgerBlobPath(id), err)
		}
		return fmt.Errorf("update %s: %w", LedgerBlobPath(id), err)
	}
	return nil
}

func (s *BlobStore) Delete(ctx context.Context, id LedgerID, check UpdateFunc) (int, error) {
	data, etag, err := s.readData(ctx, id)
	if err != nil {
		return 0, err
	}
	if err = checkDelete(data, check); err != nil {
		return 0, err
	}
	_, current, err := s.readData(ctx, id)
	if err != nil {
		return 0, err
	}
	if current != etag {
		return 0, fmt.Errorf("%w: %s changed before delete", ErrContentOC, LedgerBlobPath(id))
	}
	if err := s.store.Delete(ctx, LedgerBlobPath(id)); err != nil {
		if storageErrorCode(err) == azblobBlobNotFound {
			return 0, fmt.Errorf("%w: %s: %v", ErrNotFound, LedgerBlobPath(id), err)
		}
		return 0, fmt.Errorf("delete %s: %w", LedgerBlobPath(id), err)
	}
	return len(data), nil
}
