package service

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
)

func TestPublicKeyNormalizer(t *testing.T) {
	normalizer := NewPublicKeyNormalizer()

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	t.Run("Success_DER", func(t *testing.T) {
		normalized, err := normalizer.NormalizePublicKey(der)
		require.NoError(t, err)
		assert.Equal(t, der, normalized)
	})

	t.Run("Success_PEMMatchesDER", func(t *testing.T) {
		pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

		normalized, err := normalizer.NormalizePublicKey(pemBytes)
		require.NoError(t, err)
		assert.Equal(t, der, normalized)
	})

	t.Run("Error_Garbage", func(t *testing.T) {
		_, err := normalizer.NormalizePublicKey([]byte("not a key"))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidPublicKey)
	})
}
