// Package ledger holds the claim ledger record and the transitions applied
// to it.
//
// A Ledger is the whole persisted state of one distribution: the authority
// allowed to administer it, the commitment that claims are proven against,
// the claim window and the residue lanes recording redeemed slots. Every
// operation takes the ledger explicitly; authorization is a comparison of
// the caller against Ledger.Authority, made by the operation itself.
//
// The package does no I/O. Storage, the clock, value transfer and event
// delivery belong to the caller (see package claims).
package ledger
