package seal

import (
	"bytes"
	"crypto"
	"errors"
	"fmt"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/veraison/go-cose"
)

var ErrCheckpointMismatch = errors.New("seal: checkpoint does not match ledger")

type publicKeyProvider interface {
	PublicKey() (crypto.PublicKey, cose.Algorithm, error)
}

// DecodeSealed decodes a sealed message and its unverified checkpoint.
func DecodeSealed(codec dtcbor.CBORCodec, msg []byte) (*dtcose.CoseSign1Message, Checkpoint, error) {
	signed, err := dtcose.NewCoseSign1MessageFromCBOR(msg, newDecOptions()...)
	if err != nil {
		return nil, Checkpoint{}, err
	}
	var unverified Checkpoint
	if err = codec.UnmarshalInto(signed.Payload, &unverified); err != nil {
		return nil, Checkpoint{}, err
	}
	return signed, unverified, nil
}

// VerifySealed checks the signature of signed with the key from keyProvider.
// Use dtcose.NewCWTPublicKeyProvider(signed) to trust the key carried in the
// message itself.
func VerifySealed(keyProvider publicKeyProvider, signed *dtcose.CoseSign1Message, external []byte) error {
	return signed.VerifyWithProvider(keyProvider, external)
}

// Matches reports whether the sealed checkpoint describes the same ledger
// state as current. Timestamps are not compared.
func Matches(sealed, current Checkpoint) error {
	switch {
	case !bytes.Equal(sealed.LedgerID, current.LedgerID):
		return fmt.Errorf("%w: ledger id", ErrCheckpointMismatch)
	case !bytes.Equal(sealed.Commitment, current.Commitment):
		return fmt.Errorf("%w: commitment", ErrCheckpointMismatch)
	case sealed.TotalClaims != current.TotalClaims:
		return fmt.Errorf("%w: total claims %d != %d", ErrCheckpointMismatch, sealed.TotalClaims, current.TotalClaims)
	case sealed.Closed != current.Closed:
		return fmt.Errorf("%w: closed flag", ErrCheckpointMismatch)
	case !bytes.Equal(sealed.LanesDigest, current.LanesDigest):
		return fmt.Errorf("%w: residue lanes", ErrCheckpointMismatch)
	case !bytes.Equal(sealed.Authority, current.Authority):
		return fmt.Errorf("%w: authority", ErrCheckpointMismatch)
	case !bytes.Equal(sealed.Snapshot, current.Snapshot):
		return fmt.Errorf("%w: snapshot", ErrCheckpointMismatch)
	case sealed.WindowStart != current.WindowStart || sealed.WindowDuration != current.WindowDuration:
		return fmt.Errorf("%w: claim window", ErrCheckpointMismatch)
	}
	return nil
}
