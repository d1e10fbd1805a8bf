package ledger

import "errors"

var (
	ErrInvalidDuration   = errors.New("ledger: invalid duration")
	ErrInvalidIndex      = errors.New("ledger: invalid index")
	ErrInvalidProof      = errors.New("ledger: invalid proof")
	ErrAlreadyClaimed    = errors.New("ledger: already claimed")
	ErrClaimWindowClosed = errors.New("ledger: claim window is not open")
	ErrClaimClosed       = errors.New("ledger: claims are closed")
	ErrUnauthorized      = errors.New("ledger: unauthorized")
)

var (
	ErrRecordSize          = errors.New("ledger: record buffer size invalid")
	ErrRecordDiscriminator = errors.New("ledger: record discriminator invalid")
	ErrRecordCorrupt       = errors.New("ledger: record fields violate ledger invariants")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidDuration, "InvalidDuration"},
	{ErrInvalidIndex, "InvalidIndex"},
	{ErrInvalidProof, "InvalidProof"},
	{ErrAlreadyClaimed, "AlreadyClaimed"},
	{ErrClaimWindowClosed, "ClaimWindowClosed"},
	{ErrClaimClosed, "ClaimClosed"},
	{ErrUnauthorized, "Unauthorized"},
}

// ErrorKind names the ledger failure carried by err, or returns "" if err
// is not one of the ledger failure kinds.
func ErrorKind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
