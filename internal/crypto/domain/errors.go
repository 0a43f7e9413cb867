package domain

import (
	"github.com/devkral/secretgraph/internal/errors"
)

// Cryptographic failures. Callers resolving credentials treat decryption and
// parsing failures as non-matching; they only surface on explicit key operations.
var (
	// ErrUnsupportedAlgorithm indicates an AEAD other than AES-GCM was requested.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a symmetric key that is not 32 bytes long.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidNonce indicates a nonce of the wrong size or an all-zero nonce.
	ErrInvalidNonce = errors.Wrap(errors.ErrInvalidInput, "invalid nonce")

	// ErrDecryptionFailed hides the precise reason an AEAD open failed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrInvalidPublicKey indicates the bytes are not a DER or PEM encoded public key.
	ErrInvalidPublicKey = errors.Wrap(errors.ErrInvalidInput, "invalid public key")

	// ErrUnsupportedHashAlgorithm indicates an unknown digest algorithm name.
	ErrUnsupportedHashAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported hash algorithm")

	// ErrNoHashAlgorithms indicates an empty digest algorithm list.
	ErrNoHashAlgorithms = errors.Wrap(errors.ErrInvalidInput, "no hash algorithms configured")
)
