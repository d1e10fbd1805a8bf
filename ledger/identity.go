package ledger

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const IdentityBytes = 32

// Identity is an account identity, for example an ed25519 public key.
type Identity [IdentityBytes]byte

var ErrBadIdentity = errors.New("ledger: identity must be 32 bytes of hex")

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrBadIdentity, err)
	}
	if len(b) != IdentityBytes {
		return id, ErrBadIdentity
	}
	copy(id[:], b)
	return id, nil
}
