package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/residue"
)

// Record layout
//
// .      | disc | authority | commitment | snapshot | start | duration | closed | total | lane0 | lane1 | lane2 |
// bytes  |  8   |    32     |     32     |    32    |   8   |    8     |   1    |   8   |  122  |  39   |  76   |
//
// Integers are little endian. The discriminator identifies the record type
// and version; a future layout gets a new discriminator.
const (
	RecordDiscriminator = "CLMLDG01"

	RecordDiscFirstByte       = 0
	RecordDiscSize            = 8
	RecordAuthorityFirstByte  = RecordDiscFirstByte + RecordDiscSize
	RecordCommitmentFirstByte = RecordAuthorityFirstByte + 32
	RecordSnapshotFirstByte   = RecordCommitmentFirstByte + 32
	RecordStartFirstByte      = RecordSnapshotFirstByte + 32
	RecordDurationFirstByte   = RecordStartFirstByte + 8
	RecordClosedFirstByte     = RecordDurationFirstByte + 8
	RecordTotalFirstByte      = RecordClosedFirstByte + 1
	RecordLanesFirstByte      = RecordTotalFirstByte + 8

	// RecordBytes is the fixed size of an encoded ledger.
	RecordBytes = RecordLanesFirstByte + residue.StateBytes
)

func (l *Ledger) MarshalBinary() ([]byte, error) {
	b := make([]byte, RecordBytes)
	if err := l.EncodeRecord(b); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeRecord writes the ledger into a preallocated record buffer.
func (l *Ledger) EncodeRecord(b []byte) error {
	if len(b) < RecordBytes {
		return ErrRecordSize
	}
	copy(b[RecordDiscFirstByte:], RecordDiscriminator)
	copy(b[RecordAuthorityFirstByte:RecordCommitmentFirstByte], l.Authority[:])
	copy(b[RecordCommitmentFirstByte:RecordSnapshotFirstByte], l.Commitment[:])
	copy(b[RecordSnapshotFirstByte:RecordStartFirstByte], l.Snapshot[:])
	binary.LittleEndian.PutUint64(b[RecordStartFirstByte:], uint64(l.WindowStart))
	binary.LittleEndian.PutUint64(b[RecordDurationFirstByte:], uint64(l.WindowDuration))
	b[RecordClosedFirstByte] = 0
	if l.Closed {
		b[RecordClosedFirstByte] = 1
	}
	binary.LittleEndian.PutUint64(b[RecordTotalFirstByte:], l.TotalClaims)
	return l.lanes.Encode(b[RecordLanesFirstByte:RecordBytes])
}

func (l *Ledger) UnmarshalBinary(b []byte) error {
	return DecodeRecord(l, b)
}

// DecodeRecord reads a record written by EncodeRecord and checks that the
// decoded values satisfy the ledger invariants.
func DecodeRecord(l *Ledger, b []byte) error {
	if len(b) != RecordBytes {
		return fmt.Errorf("%w: %d bytes, expected %d", ErrRecordSize, len(b), RecordBytes)
	}
	if string(b[RecordDiscFirstByte:RecordDiscFirstByte+RecordDiscSize]) != RecordDiscriminator {
		return ErrRecordDiscriminator
	}

	var d Ledger
	copy(d.Authority[:], b[RecordAuthorityFirstByte:RecordCommitmentFirstByte])
	copy(d.Commitment[:], b[RecordCommitmentFirstByte:RecordSnapshotFirstByte])
	copy(d.Snapshot[:], b[RecordSnapshotFirstByte:RecordStartFirstByte])
	d.WindowStart = int64(binary.LittleEndian.Uint64(b[RecordStartFirstByte:]))
	d.WindowDuration = int64(binary.LittleEndian.Uint64(b[RecordDurationFirstByte:]))
	switch b[RecordClosedFirstByte] {
	case 0:
	case 1:
		d.Closed = true
	default:
		return fmt.Errorf("%w: closed flag %d", ErrRecordCorrupt, b[RecordClosedFirstByte])
	}
	d.TotalClaims = binary.LittleEndian.Uint64(b[RecordTotalFirstByte:])

	if d.WindowDuration <= 0 {
		return fmt.Errorf("%w: duration %d", ErrRecordCorrupt, d.WindowDuration)
	}
	if d.TotalClaims > MaxSlots {
		return fmt.Errorf("%w: total claims %d", ErrRecordCorrupt, d.TotalClaims)
	}

	var err error
	d.lanes, err = residue.Decode(b[RecordLanesFirstByte:RecordBytes])
	if err != nil {
		return err
	}
	*l = d
	return nil
}
