package seal

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/veraison/go-cose"
)

var ErrKeyFile = errors.New("seal: key file does not hold an EC private key")

// KeySigner signs with a locally held P-256 key using ES256.
type KeySigner struct {
	cose.Signer
	kid string
	key *ecdsa.PrivateKey
}

func NewKeySigner(kid string, key *ecdsa.PrivateKey) (*KeySigner, error) {
	signer, err := cose.NewSigner(cose.AlgorithmES256, key)
	if err != nil {
		return nil, err
	}
	return &KeySigner{Signer: signer, kid: kid, key: key}, nil
}

// LoadKeySigner reads a PEM encoded EC private key. The key identifier is
// the file path unless kid is set.
func LoadKeySigner(path string, kid string) (*KeySigner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyFile, path)
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrKeyFile, path, err)
	}
	if kid == "" {
		kid = path
	}
	return NewKeySigner(kid, key)
}

func (s *KeySigner) KeyIdentifier() string { return s.kid }

func (s *KeySigner) LatestPublicKey() (*ecdsa.PublicKey, error) {
	return &s.key.PublicKey, nil
}
