package residue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLaneSizing(t *testing.T) {
	require.Equal(t, 122, LaneBytes(Modulus0))
	require.Equal(t, 39, LaneBytes(Modulus1))
	require.Equal(t, 76, LaneBytes(Modulus2))
	require.Equal(t, Lane0Bytes, LaneBytes(Modulus0))
	require.Equal(t, 237, StateBytes)

	// Each lane has less than a byte of rounding slack.
	for _, m := range Moduli {
		slack := uint64(LaneBytes(m))*8 - m
		require.Less(t, slack, uint64(8))
	}
}

func TestModuliPairwiseCoprime(t *testing.T) {
	gcd := func(a, b uint64) uint64 {
		for b != 0 {
			a, b = b, a%b
		}
		return a
	}
	for i := 0; i < LaneCount; i++ {
		for j := i + 1; j < LaneCount; j++ {
			require.Equal(t, uint64(1), gcd(Moduli[i], Moduli[j]), "moduli %d and %d", Moduli[i], Moduli[j])
		}
	}
}

func TestSetBitLSB0(t *testing.T) {
	lane := make([]byte, 2)

	SetBit(lane, 0)
	require.Equal(t, []byte{0x01, 0x00}, lane)

	SetBit(lane, 9)
	require.Equal(t, []byte{0x01, 0x02}, lane)

	// idempotent
	SetBit(lane, 9)
	require.Equal(t, []byte{0x01, 0x02}, lane)

	require.True(t, TestBit(lane, 0))
	require.True(t, TestBit(lane, 9))
	require.False(t, TestBit(lane, 8))
	require.Equal(t, 2, CountBits(lane))
}

func TestBitOutOfRange(t *testing.T) {
	lane := []byte{0xff}

	require.False(t, TestBit(lane, 8))
	require.False(t, TestBit(lane, 1<<40))
	require.False(t, TestBit(nil, 0))

	SetBit(lane, 8)
	SetBit(lane, ^uint64(0))
	require.Equal(t, []byte{0xff}, lane)
}

func TestResidues(t *testing.T) {
	tests := []struct {
		name string
		slot uint64
		want [LaneCount]uint64
	}{
		{"zero", 0, [LaneCount]uint64{0, 0, 0}},
		{"one", 1, [LaneCount]uint64{1, 1, 1}},
		{"first modulus", Modulus0, [LaneCount]uint64{0, Modulus0 % Modulus1, Modulus0 % Modulus2}},
		{"max slot", MaxSlots - 1, [LaneCount]uint64{999_999 % 971, 999_999 % 311, 999_999 % 601}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Residues(tt.slot))
		})
	}
}
