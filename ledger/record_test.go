package ledger

import (
	"encoding/binary"
	"testing"

	"github.com/Takashi-Doyle/merkledrop-rns-contract/claimproof"
	"github.com/Takashi-Doyle/merkledrop-rns-contract/residue"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestRecordSize(t *testing.T) {
	// 8 discriminator + 32*3 + 8 + 8 + 1 + 8, then the three lanes
	assert.Equal(t, RecordBytes, 129+122+39+76)
	assert.Equal(t, RecordBytes, 366)
}

func TestRecordRoundTrip(t *testing.T) {
	f := newFixture(t, 5)
	h := claimproof.NewHasher()
	for _, i := range []int{0, 3} {
		_, err := f.ledger.Claim(h, testStart, f.request(t, i))
		assert.NilError(t, err)
	}
	_, err := f.ledger.Close(authority, testStart)
	assert.NilError(t, err)

	b, err := f.ledger.MarshalBinary()
	assert.NilError(t, err)
	assert.Assert(t, is.Len(b, RecordBytes))
	assert.Equal(t, string(b[:RecordDiscSize]), RecordDiscriminator)

	var got Ledger
	assert.NilError(t, got.UnmarshalBinary(b))
	assert.Equal(t, got, *f.ledger)
	assert.Assert(t, got.IsClaimed(0))
	assert.Assert(t, got.IsClaimed(3))
	assert.Assert(t, !got.IsClaimed(4))
}

func TestRecordFieldOffsets(t *testing.T) {
	l := &Ledger{
		WindowStart:    -2,
		WindowDuration: 300,
		Closed:         true,
		TotalClaims:    77,
	}
	l.Authority[0] = 0xaa
	l.Commitment[31] = 0xcc
	l.Snapshot[0] = 0x55
	l.lanes.TestAndRecord(0)

	b, err := l.MarshalBinary()
	assert.NilError(t, err)

	assert.Equal(t, b[RecordAuthorityFirstByte], byte(0xaa))
	assert.Equal(t, b[RecordCommitmentFirstByte+31], byte(0xcc))
	assert.Equal(t, b[RecordSnapshotFirstByte], byte(0x55))
	assert.Equal(t, int64(binary.LittleEndian.Uint64(b[RecordStartFirstByte:])), int64(-2))
	assert.Equal(t, binary.LittleEndian.Uint64(b[RecordDurationFirstByte:]), uint64(300))
	assert.Equal(t, b[RecordClosedFirstByte], byte(1))
	assert.Equal(t, binary.LittleEndian.Uint64(b[RecordTotalFirstByte:]), uint64(77))

	// slot 0 sets bit 0 of each lane
	assert.Equal(t, b[RecordLanesFirstByte], byte(1))
	assert.Equal(t, b[RecordLanesFirstByte+residue.Lane0Bytes], byte(1))
	assert.Equal(t, b[RecordLanesFirstByte+residue.Lane0Bytes+residue.Lane1Bytes], byte(1))
}

func TestRecordDecodeRejects(t *testing.T) {
	f := newFixture(t, 2)
	good, err := f.ledger.MarshalBinary()
	assert.NilError(t, err)

	mutate := func(fn func(b []byte)) []byte {
		b := append([]byte(nil), good...)
		fn(b)
		return b
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"short", good[:RecordBytes-1], ErrRecordSize},
		{"long", append(append([]byte(nil), good...), 0), ErrRecordSize},
		{"discriminator", mutate(func(b []byte) { b[0] ^= 1 }), ErrRecordDiscriminator},
		{"closed flag", mutate(func(b []byte) { b[RecordClosedFirstByte] = 2 }), ErrRecordCorrupt},
		{"duration", mutate(func(b []byte) {
			binary.LittleEndian.PutUint64(b[RecordDurationFirstByte:], 0)
		}), ErrRecordCorrupt},
		{"total claims", mutate(func(b []byte) {
			binary.LittleEndian.PutUint64(b[RecordTotalFirstByte:], MaxSlots+1)
		}), ErrRecordCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := *f.ledger
			err := DecodeRecord(&l, tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
			// the target is untouched on failure
			assert.Equal(t, l, *f.ledger)
		})
	}
}

func TestEncodeRecordShortBuffer(t *testing.T) {
	l := &Ledger{WindowDuration: 1}
	assert.ErrorIs(t, l.EncodeRecord(make([]byte, RecordBytes-1)), ErrRecordSize)
}
