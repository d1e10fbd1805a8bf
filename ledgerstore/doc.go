// Package ledgerstore persists ledger records.
//
// Each ledger is one fixed size record (ledger.RecordBytes) keyed by a uuid.
// Every backend implements Update as an atomic read-modify-write: the record
// is read, decoded, handed to the callback and written back only if the
// callback succeeds and nobody else wrote the record in between. A callback
// error leaves the stored record exactly as it was.
//
// Backends:
//   - MemoryStore, for tests and single process use
//   - BadgerStore, an embedded badger database, one transaction per update
//   - BlobStore, blob storage with etag guarded writes
package ledgerstore
