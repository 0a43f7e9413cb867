package service

import (
	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
)

// AEADManagerService implements the AEADManager interface.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns ErrInvalidKeySize if key is not 32 bytes or
// ErrUnsupportedAlgorithm for anything but AES-GCM.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch alg {
	case cryptoDomain.AESGCM:
		return NewAESGCM(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}
