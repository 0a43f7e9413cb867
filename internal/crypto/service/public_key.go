package service

import (
	"crypto/x509"
	"encoding/pem"

	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
)

// PublicKeyNormalizer re-encodes public keys as DER SubjectPublicKeyInfo.
type PublicKeyNormalizer struct{}

// NewPublicKeyNormalizer creates a PublicKeyNormalizer.
func NewPublicKeyNormalizer() *PublicKeyNormalizer {
	return &PublicKeyNormalizer{}
}

// NormalizePublicKey accepts DER or PEM input and returns canonical DER.
// Two encodings of the same key normalize to identical bytes, so their digests match.
func (n *PublicKeyNormalizer) NormalizePublicKey(raw []byte) ([]byte, error) {
	der := raw
	if block, _ := pem.Decode(raw); block != nil {
		der = block.Bytes
	}

	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidPublicKey
	}

	normalized, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, cryptoDomain.ErrInvalidPublicKey
	}
	return normalized, nil
}
