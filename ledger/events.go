package ledger

import "github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"

// Event is a notification emitted by a successful ledger operation.
type Event interface {
	EventName() string
}

const (
	EventInitialized       = "initialized"
	EventClaimed           = "claimed"
	EventClosed            = "closed"
	EventWindowUpdated     = "window_updated"
	EventCommitmentUpdated = "commitment_updated"
	EventTornDown          = "torn_down"
)

type Initialized struct {
	Authority      Identity          `cbor:"1,keyasint"`
	Snapshot       claimproof.Digest `cbor:"2,keyasint"`
	WindowStart    int64             `cbor:"3,keyasint"`
	WindowDuration int64             `cbor:"4,keyasint"`
	TotalClaims    uint64            `cbor:"5,keyasint"`
	Timestamp      int64             `cbor:"6,keyasint"`
}

type Claimed struct {
	Recipient Identity `cbor:"1,keyasint"`
	Amount    uint64   `cbor:"2,keyasint"`
	Slot      uint64   `cbor:"3,keyasint"`
	Timestamp int64    `cbor:"4,keyasint"`
}

type Closed struct {
	Authority Identity `cbor:"1,keyasint"`
	Timestamp int64    `cbor:"2,keyasint"`
}

type WindowUpdated struct {
	WindowStart    int64 `cbor:"1,keyasint"`
	WindowDuration int64 `cbor:"2,keyasint"`
	Timestamp      int64 `cbor:"3,keyasint"`
}

type CommitmentUpdated struct {
	Commitment  claimproof.Digest `cbor:"1,keyasint"`
	TotalClaims uint64            `cbor:"2,keyasint"`
	Timestamp   int64             `cbor:"3,keyasint"`
}

// TornDown is emitted when the ledger record is deleted and its storage
// released to Recipient.
type TornDown struct {
	Recipient      Identity `cbor:"1,keyasint"`
	ReclaimedBytes int      `cbor:"2,keyasint"`
	Timestamp      int64    `cbor:"3,keyasint"`
}

func (Initialized) EventName() string       { return EventInitialized }
func (Claimed) EventName() string           { return EventClaimed }
func (Closed) EventName() string            { return EventClosed }
func (WindowUpdated) EventName() string     { return EventWindowUpdated }
func (CommitmentUpdated) EventName() string { return EventCommitmentUpdated }
func (TornDown) EventName() string          { return EventTornDown }
