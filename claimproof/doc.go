// Package claimproof verifies that an allocation leaf is included under a
// published commitment.
//
// Proofs are sibling hashes ordered leaf to root. Each step hashes the pair
// smaller value first, so a proof carries no left/right flags and the tree
// builder may order siblings freely. Leaves are
//
//	H(slot_le64 || recipient32 || amount_le64)
//
// with H the legacy (pre-NIST) Keccak-256. The field order and widths are part
// of the protocol; changing either invalidates every published commitment.
package claimproof
