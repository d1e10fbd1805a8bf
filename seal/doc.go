// Package seal signs ledger checkpoints.
//
// A checkpoint commits to the externally visible state of one ledger: its
// commitment, total claims, closed flag and a digest of the residue lanes. It
// is signed as a COSE Sign1 message whose protected header carries a CWT
// confirmation claim for the signing key, so a holder of the message can check
// a ledger read from storage has not been altered since it was sealed.
package seal
