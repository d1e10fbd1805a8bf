package residue

/*

# Residue lanes for claim tracking (3-way, in-place)

This package provides the membership filter used to remember which allocation
slots have been claimed. It replaces a one-bit-per-slot bitmap (1,000,000 bits)
with three small bitsets, one per modulus:

	+----------------------+  971 bits, 122 bytes
	| lane 0 (mod 971)     |
	+----------------------+  311 bits, 39 bytes
	| lane 1 (mod 311)     |
	+----------------------+  601 bits, 76 bytes
	| lane 2 (mod 601)     |
	+----------------------+

A slot s is recorded by setting bit s mod m in every lane.

## What the lanes are (and are not)

Membership is the OR of the three residue bits. A slot is reported present as
soon as ANY of its residues has been set by ANY recorded slot. So:

- a recorded slot is always reported present (no false negatives)
- an unrecorded slot may be reported present (false positives), and the rate
  grows with the number of distinct residues set in each lane

The lanes are NOT a Chinese Remainder Theorem reconstruction of the slot
number. Requiring all three bits (AND) would change which claims are refused,
so the OR behaviour is kept as the persisted semantics.

For a never recorded slot the false positive probability is

	1 - (1 - |R0|/971) (1 - |R1|/311) (1 - |R2|/601)

where |Rk| is the number of set bits in lane k. See Lanes.FalsePositiveRate.

## Bit numbering

Bit r lives in byte r/8 at position r%8, least significant bit first.

## Check then mark

Contains and the internal record step are only combined through
TestAndRecord, so callers can not observe a half applied claim.

*/
