package claims

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledger"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/ledgerstore"
	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/fxamacker/cbor/v2"
)

var ErrUnknownEvent = errors.New("claims: unknown event name")

// Notifier receives the event of every committed operation. Errors are
// logged by the service; the operation itself has already succeeded.
type Notifier interface {
	Notify(ctx context.Context, id ledgerstore.LedgerID, ev ledger.Event) error
}

// Notifiers fans an event out to each notifier in turn.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, id ledgerstore.LedgerID, ev ledger.Event) error {
	var errs []error
	for _, n := range ns {
		if err := n.Notify(ctx, id, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) Notify(ctx context.Context, id ledgerstore.LedgerID, ev ledger.Event) error {
	n.Log.Infof("ledger %s: %s %+v", id, ev.EventName(), ev)
	return nil
}

// Notification is the stream envelope written by CBORNotifier.
type Notification struct {
	LedgerID []byte          `cbor:"1,keyasint"`
	Event    string          `cbor:"2,keyasint"`
	Payload  cbor.RawMessage `cbor:"3,keyasint"`
}

// CBORNotifier appends one CBOR encoded Notification per event to w.
type CBORNotifier struct {
	mu    sync.Mutex
	w     io.Writer
	codec dtcbor.CBORCodec
}

func NewCBORNotifier(w io.Writer) (*CBORNotifier, error) {
	codec, err := NewEventCodec()
	if err != nil {
		return nil, err
	}
	return &CBORNotifier{w: w, codec: codec}, nil
}

func NewEventCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(),
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}

func (n *CBORNotifier) Notify(ctx context.Context, id ledgerstore.LedgerID, ev ledger.Event) error {
	payload, err := n.codec.MarshalCBOR(ev)
	if err != nil {
		return err
	}
	data, err := n.codec.MarshalCBOR(Notification{
		LedgerID: append([]byte(nil), id[:]...),
		Event:    ev.EventName(),
		Payload:  payload,
	})
	if err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err = n.w.Write(data)
	return err
}

// ReadNotifications decodes a stream written by CBORNotifier.
func ReadNotifications(r io.Reader) ([]Notification, error) {
	var out []Notification
	dec := cbor.NewDecoder(r)
	for {
		var n Notification
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, n)
	}
}

// DecodeEvent decodes the payload of n into its concrete event type.
func DecodeEvent(codec dtcbor.CBORCodec, n Notification) (ledger.Event, error) {
	var ev ledger.Event
	switch n.Event {
	case ledger.EventInitialized:
		ev = &ledger.Initialized{}
	case ledger.EventClaimed:
		ev = &ledger.Claimed{}
	case ledger.EventClosed:
		ev = &ledger.Closed{}
	case ledger.EventWindowUpdated:
		ev = &ledger.WindowUpdated{}
	case ledger.EventCommitmentUpdated:
		ev = &ledger.CommitmentUpdated{}
	case ledger.EventTornDown:
		ev = &ledger.TornDown{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, n.Event)
	}
	if err := codec.UnmarshalInto(n.Payload, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Recorded is one event captured by a Recorder.
type Recorded struct {
	LedgerID ledgerstore.LedgerID
	Event    ledger.Event
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) Notify(ctx context.Context, id ledgerstore.LedgerID, ev ledger.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{LedgerID: id, Event: ev})
	return nil
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Last returns the most recent event, or nil.
func (r *Recorder) Last() ledger.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1].Event
}
