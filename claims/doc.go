// Package claims runs ledger operations against a store.
//
// Service supplies what a ledger transition needs from its environment: the
// current time, serialization of transitions against one ledger, the payout
// of a successful claim, notification of events, metrics and optional
// sealing of every committed state.
package claims
