package seal

import (
	"crypto/ecdsa"
	"crypto/rand"
	"errors"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	dtcose "github.com/datatrails/go-datatrails-common/cose"
	"github.com/veraison/go-cose"
)

var ErrNilPublicKey = errors.New("seal: public key is required")

// Signer is a COSE signer that can also name and publish its key.
type Signer interface {
	cose.Signer
	KeyIdentifier() string
	LatestPublicKey() (*ecdsa.PublicKey, error)
}

// Sealer signs checkpoints. Only seal a checkpoint taken from a ledger state
// that has been durably committed to storage.
type Sealer struct {
	issuer    string
	cborCodec dtcbor.CBORCodec
}

func NewSealer(issuer string, cborCodec dtcbor.CBORCodec) Sealer {
	return Sealer{
		issuer:    issuer,
		cborCodec: cborCodec,
	}
}

func NewCheckpointCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(), // unsigned int decodes to uint64
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}

// Sign1 returns the encoded COSE Sign1 message over cp. subject names the
// sealed ledger, typically its storage path.
func (s Sealer) Sign1(signer Signer, subject string, cp Checkpoint, external []byte) ([]byte, error) {
	publicKey, err := signer.LatestPublicKey()
	if err != nil {
		return nil, err
	}
	if publicKey == nil {
		return nil, ErrNilPublicKey
	}

	payload, err := s.cborCodec.MarshalCBOR(cp)
	if err != nil {
		return nil, err
	}

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: signer.Algorithm(),
				dtcose.HeaderLabelCWTClaims: dtcose.NewCNFClaim(
					s.issuer, subject, signer.KeyIdentifier(), signer.Algorithm(), *publicKey),
			},
		},
		Payload: payload,
	}
	if err = msg.Sign(rand.Reader, external, signer); err != nil {
		return nil, err
	}
	return msg.MarshalCBOR()
}

func newDecOptions() []dtcose.SignOption {
	return []dtcose.SignOption{dtcose.WithDecOptions(dtcbor.NewDeterministicDecOpts())}
}
