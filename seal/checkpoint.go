package seal

import (
	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/residue"
	"github.com/google/uuid"
)

// Checkpoint is the signed statement of a ledger state.
type Checkpoint struct {
	LedgerID    []byte `cbor:"1,keyasint"`
	Commitment  []byte `cbor:"2,keyasint"`
	TotalClaims uint64 `cbor:"3,keyasint"`
	Closed      bool   `cbor:"4,keyasint"`
	// LanesDigest is keccak256(lane0 || lane1 || lane2) over the persisted
	// lane bytes.
	LanesDigest []byte `cbor:"5,keyasint"`
	// Timestamp is the unix time (seconds) read when the checkpoint was
	// taken. Including it allows the same state to be re-sealed.
	Timestamp int64 `cbor:"6,keyasint"`

	Authority      []byte `cbor:"7,keyasint"`
	Snapshot       []byte `cbor:"8,keyasint"`
	WindowStart    int64  `cbor:"9,keyasint"`
	WindowDuration int64  `cbor:"10,keyasint"`
}

// LanesDigest hashes the residue lanes in their persisted order.
func LanesDigest(l *ledger.Ledger) claimproof.Digest {
	lanes := l.Lanes()
	var region [residue.StateBytes]byte
	// region is exactly StateBytes so Encode can not fail.
	_ = lanes.Encode(region[:])
	hasher := claimproof.NewHasher()
	hasher.Write(region[:])
	var d claimproof.Digest
	copy(d[:], hasher.Sum(nil))
	return d
}

// NewCheckpoint takes a checkpoint of l.
func NewCheckpoint(id uuid.UUID, l *ledger.Ledger, now int64) Checkpoint {
	lanes := LanesDigest(l)
	return Checkpoint{
		LedgerID:    append([]byte(nil), id[:]...),
		Commitment:  append([]byte(nil), l.Commitment[:]...),
		TotalClaims: l.TotalClaims,
		Closed:      l.Closed,
		LanesDigest: lanes[:],
		Timestamp:   now,

		Authority:      append([]byte(nil), l.Authority[:]...),
		Snapshot:       append([]byte(nil), l.Snapshot[:]...),
		WindowStart:    l.WindowStart,
		WindowDuration: l.WindowDuration,
	}
}
