// Package domain holds the cryptographic primitives shared by action decryption,
// key creation and value transfers.
package domain

import (
	"strings"
)

// Algorithm identifies the AEAD used for action payloads and encrypted values.
type Algorithm string

// AESGCM is AES-256-GCM with a 13-byte nonce, the only cipher stored data uses.
const AESGCM Algorithm = "aes-gcm"

const (
	// KeySize is the size of every symmetric key (cluster access keys, action keys).
	KeySize = 32

	// NonceSize is the AES-GCM nonce size used for actions and content values.
	NonceSize = 13
)

// HashAlgorithm names a digest variant used to derive key and content hashes.
type HashAlgorithm string

// Supported digest variants. The first configured algorithm is canonical.
const (
	SHA512  HashAlgorithm = "sha512"
	SHA256  HashAlgorithm = "sha256"
	BLAKE2B HashAlgorithm = "blake2b"
	BLAKE3  HashAlgorithm = "blake3"
)

// ParseHashAlgorithms parses a comma separated, ordered algorithm list.
// Duplicates are dropped keeping the first position.
func ParseHashAlgorithms(raw string) ([]HashAlgorithm, error) {
	seen := make(map[HashAlgorithm]struct{})
	var algs []HashAlgorithm

	for _, part := range strings.Split(raw, ",") {
		name := HashAlgorithm(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		switch name {
		case SHA512, SHA256, BLAKE2B, BLAKE3:
		default:
			return nil, ErrUnsupportedHashAlgorithm
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		algs = append(algs, name)
	}

	if len(algs) == 0 {
		return nil, ErrNoHashAlgorithms
	}
	return algs, nil
}
