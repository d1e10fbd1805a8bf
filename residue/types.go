package residue

import "errors"

const (
	// LaneCount is the number of residue lanes.
	LaneCount = 3

	// MaxSlots is the largest slot count the lanes are intended to track.
	MaxSlots = 1_000_000

	Modulus0 = 971
	Modulus1 = 311
	Modulus2 = 601

	Lane0Bytes = (Modulus0 + 7) / 8
	Lane1Bytes = (Modulus1 + 7) / 8
	Lane2Bytes = (Modulus2 + 7) / 8

	// StateBytes is the persisted size of all three lanes.
	StateBytes = Lane0Bytes + Lane1Bytes + Lane2Bytes
)

// Moduli are pairwise coprime.
var Moduli = [LaneCount]uint64{Modulus0, Modulus1, Modulus2}

var (
	ErrBadLaneIndex  = errors.New("residue: invalid lane index")
	ErrBadRegionSize = errors.New("residue: region buffer size invalid")
)
