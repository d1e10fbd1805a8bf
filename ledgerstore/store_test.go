package ledgerstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimtesting"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	azStorageBlob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var authority = ledger.Identity(claimtesting.Identity("authority"))

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, _, err := ledger.New(ledger.Params{
		Authority:      authority,
		Commitment:     claimtesting.Identity("root"),
		WindowStart:    100,
		WindowDuration: 50,
		TotalClaims:    10,
	}, 90)
	require.NoError(t, err)
	return l
}

// storageErr carries an azure storage error code the way the sdk errors do.
type storageErr struct{ code string }

func (e storageErr) Error() string { return "storage error: " + e.code }

func (e storageErr) As(target any) bool {
	t, ok := target.(**azStorageBlob.StorageError)
	if !ok {
		return false
	}
	*t = &azStorageBlob.StorageError{ErrorCode: azStorageBlob.StorageErrorCode(e.code)}
	return true
}

// fakeBlobs stands in for an azblob.Storer. Options are opaque, so a
// conditional Put over an existing blob is accepted only when that blob was
// read since its last write. failPut makes the next conditional Put fail as
// if the etag did not match.
type fakeBlobs struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	etags   map[string]int
	read    map[string]bool
	failPut bool
	// putErr and readErr, when set, fail the next Put or Reader call.
	putErr  error
	readErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{blobs: map[string][]byte{}, etags: map[string]int{}, read: map[string]bool{}}
}

func (f *fakeBlobs) Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.readErr; err != nil {
		f.readErr = nil
		return nil, err
	}
	data, ok := f.blobs[identity]
	if !ok {
		return nil, storageErr{code: "BlobNotFound"}
	}
	f.read[identity] = true
	etag := fmt.Sprintf("etag-%d", f.etags[identity])
	rr := &azblob.ReaderResponse{}
	rr.Reader = io.NopCloser(bytes.NewReader(append([]byte(nil), data...)))
	rr.ETag = &etag
	return rr, nil
}

func (f *fakeBlobs) Put(ctx context.Context, identity string, source io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.putErr; err != nil {
		f.putErr = nil
		return nil, err
	}
	if len(opts) > 0 {
		_, exists := f.blobs[identity]
		if f.failPut {
			f.failPut = false
			return nil, storageErr{code: "ConditionNotMet"}
		}
		if exists && !f.read[identity] {
			return nil, storageErr{code: "BlobAlreadyExists"}
		}
	}
	f.read[identity] = false
	data, err := io.ReadAll(source)
	if err != nil {
		return nil, err
	}
	f.blobs[identity] = data
	f.etags[identity]++
	return &azblob.WriteResponse{}, nil
}

func (f *fakeBlobs) Delete(ctx context.Context, identity string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.blobs, identity)
	return nil
}

type storeCase struct {
	name  string
	store func(t *testing.T) Store
}

func storeCases() []storeCase {
	return []storeCase{
		{"memory", func(t *testing.T) Store { return NewMemoryStore() }},
		{"badger", func(t *testing.T) Store {
			logger.New("NOOP")
			s, err := OpenBadgerStore(InMemoryBadgerConfig(), logger.Sugar.WithServiceName("ledgerstore"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
		{"blob", func(t *testing.T) Store { return NewBlobStore(newFakeBlobs(), nil) }},
	}
}

func TestStoreLifecycle(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := tc.store(t)
			id := NewLedgerID()
			l := newTestLedger(t)

			_, err := s.Read(ctx, id)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Create(ctx, id, l))
			require.ErrorIs(t, s.Create(ctx, id, l), ErrExists)

			got, err := s.Read(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, *l, *got)

			n, err := s.Delete(ctx, id, nil)
			require.NoError(t, err)
			assert.Equal(t, ledger.RecordBytes, n)

			_, err = s.Read(ctx, id)
			require.ErrorIs(t, err, ErrNotFound)
			_, err = s.Delete(ctx, id, nil)
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreUpdate(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := tc.store(t)
			id := NewLedgerID()
			require.NoError(t, s.Create(ctx, id, newTestLedger(t)))

			err := s.Update(ctx, id, func(l *ledger.Ledger) error {
				_, err := l.Close(authority, 120)
				return err
			})
			require.NoError(t, err)

			got, err := s.Read(ctx, id)
			require.NoError(t, err)
			assert.True(t, got.Closed)

			err = s.Update(ctx, NewLedgerID(), func(l *ledger.Ledger) error { return nil })
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreUpdateCallbackErrorDiscards(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := tc.store(t)
			id := NewLedgerID()
			require.NoError(t, s.Create(ctx, id, newTestLedger(t)))
			before, err := s.Read(ctx, id)
			require.NoError(t, err)

			boom := errors.New("transfer failed")
			err = s.Update(ctx, id, func(l *ledger.Ledger) error {
				l.Closed = true
				l.Commitment = claimproof.Digest{}
				return boom
			})
			require.ErrorIs(t, err, boom)

			after, err := s.Read(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, *before, *after)
		})
	}
}

func TestStoreCreateNil(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.store(t).Create(context.Background(), NewLedgerID(), nil)
			require.ErrorIs(t, err, ErrNilLedger)
		})
	}
}

func TestBlobStoreConditionalWriteFailure(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobs()
	s := NewBlobStore(blobs, nil)
	id := NewLedgerID()
	require.NoError(t, s.Create(ctx, id, newTestLedger(t)))

	blobs.failPut = true
	err := s.Update(ctx, id, func(l *ledger.Ledger) error {
		l.Closed = true
		return nil
	})
	require.ErrorIs(t, err, ErrContentOC)

	got, err := s.Read(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Closed)
}

func TestLedgerBlobPath(t *testing.T) {
	id, err := ParseLedgerID("6ea5cd00-c711-3649-6914-7b125928bbb4")
	require.NoError(t, err)
	assert.Equal(t, "v1/ledgers/6ea5cd00-c711-3649-6914-7b125928bbb4/record.bin", LedgerBlobPath(id))

	_, err = ParseLedgerID("not-a-uuid")
	require.Error(t, err)
}

func TestReadRejectsCorruptRecord(t *testing.T) {
	s := NewMemoryStore()
	id := NewLedgerID()
	s.records[id] = make([]byte, ledger.RecordBytes)

	_, err := s.Read(context.Background(), id)
	require.ErrorIs(t, err, ledger.ErrRecordDiscriminator)
}

func TestStoreDeleteCheck(t *testing.T) {
	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := tc.store(t)
			id := NewLedgerID()
			require.NoError(t, s.Create(ctx, id, newTestLedger(t)))

			stranger := ledger.Identity(claimtesting.Identity("stranger"))
			_, err := s.Delete(ctx, id, func(l *ledger.Ledger) error { return l.Authorize(stranger) })
			require.ErrorIs(t, err, ledger.ErrUnauthorized)
			_, err = s.Read(ctx, id)
			require.NoError(t, err)

			n, err := s.Delete(ctx, id, func(l *ledger.Ledger) error { return l.Authorize(authority) })
			require.NoError(t, err)
			assert.Equal(t, ledger.RecordBytes, n)
		})
	}
}

func TestBlobStoreErrorMapping(t *testing.T) {
	ctx := context.Background()
	transport := errors.New("dial tcp: connection refused")

	tests := []struct {
		name    string
		setup   func(f *fakeBlobs)
		op      func(s *BlobStore, id LedgerID) error
		wantErr error
		notErr  []error
	}{
		{
			name:    "read transport failure",
			setup:   func(f *fakeBlobs) { f.readErr = transport },
			op:      func(s *BlobStore, id LedgerID) error { _, err := s.Read(ctx, id); return err },
			wantErr: transport,
			notErr:  []error{ErrNotFound},
		},
		{
			name:    "read missing blob",
			setup:   func(f *fakeBlobs) {},
			op:      func(s *BlobStore, id LedgerID) error { _, err := s.Read(ctx, NewLedgerID()); return err },
			wantErr: ErrNotFound,
		},
		{
			name:  "create transport failure",
			setup: func(f *fakeBlobs) { f.putErr = transport },
			op: func(s *BlobStore, id LedgerID) error {
				return s.Create(ctx, NewLedgerID(), newTestLedger(t))
			},
			wantErr: transport,
			notErr:  []error{ErrExists},
		},
		{
			name:  "create existing blob",
			setup: func(f *fakeBlobs) {},
			op: func(s *BlobStore, id LedgerID) error {
				return s.Create(ctx, id, newTestLedger(t))
			},
			wantErr: ErrExists,
		},
		{
			name:  "update transport failure",
			setup: func(f *fakeBlobs) { f.putErr = transport },
			op: func(s *BlobStore, id LedgerID) error {
				return s.Update(ctx, id, func(l *ledger.Ledger) error { return nil })
			},
			wantErr: transport,
			notErr:  []error{ErrContentOC},
		},
		{
			name:  "update condition not met",
			setup: func(f *fakeBlobs) { f.failPut = true },
			op: func(s *BlobStore, id LedgerID) error {
				return s.Update(ctx, id, func(l *ledger.Ledger) error { return nil })
			},
			wantErr: ErrContentOC,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := newFakeBlobs()
			s := NewBlobStore(blobs, nil)
			id := NewLedgerID()
			require.NoError(t, s.Create(ctx, id, newTestLedger(t)))

			tt.setup(blobs)
			err := tt.op(s, id)
			require.ErrorIs(t, err, tt.wantErr)
			for _, e := range tt.notErr {
				assert.NotErrorIs(t, err, e)
			}
		})
	}
}

func TestBlobStoreDeleteDetectsConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobs()
	s := NewBlobStore(blobs, nil)
	id := NewLedgerID()
	require.NoError(t, s.Create(ctx, id, newTestLedger(t)))

	// Another writer updates the record while the delete check runs.
	_, err := s.Delete(ctx, id, func(l *ledger.Ledger) error {
		return s.Update(ctx, id, func(l *ledger.Ledger) error {
			l.Closed = true
			return nil
		})
	})
	require.ErrorIs(t, err, ErrContentOC)

	got, err := s.Read(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Closed)
}
