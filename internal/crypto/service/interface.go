// Package service provides the cryptographic operations secretgraph relies on:
// AES-GCM for action payloads and values, multi-algorithm digests for key and
// content hashes, and public key normalization.
package service

import (
	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// Hasher computes the digest variants of a byte string.
type Hasher interface {
	// Digests returns one base64 digest per configured algorithm; index 0 is canonical.
	Digests(data []byte) []string

	// Canonical returns the digest of the first configured algorithm.
	Canonical(data []byte) string

	// DigestLength is the length of a canonical digest string.
	DigestLength() int

	// Algorithms returns the configured algorithms in order.
	Algorithms() []cryptoDomain.HashAlgorithm
}

// KeyNormalizer converts public keys to their canonical DER encoding.
type KeyNormalizer interface {
	NormalizePublicKey(raw []byte) ([]byte, error)
}
