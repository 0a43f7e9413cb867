package service

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"hash"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"

	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
)

// MultiHasher computes every configured digest variant of its input.
//
// Digests are standard base64 strings. The order of the configured algorithms is
// significant: the first one is canonical and newly stored hashes always use it,
// while the others are recognized so that older hashes keep resolving.
type MultiHasher struct {
	algorithms []cryptoDomain.HashAlgorithm
	length     int
}

// NewHasher creates a MultiHasher for the ordered algorithm list.
func NewHasher(algorithms []cryptoDomain.HashAlgorithm) (*MultiHasher, error) {
	if len(algorithms) == 0 {
		return nil, cryptoDomain.ErrNoHashAlgorithms
	}
	for _, alg := range algorithms {
		if _, err := newHash(alg); err != nil {
			return nil, err
		}
	}

	h, _ := newHash(algorithms[0])
	return &MultiHasher{
		algorithms: append([]cryptoDomain.HashAlgorithm(nil), algorithms...),
		length:     base64.StdEncoding.EncodedLen(h.Size()),
	}, nil
}

// Digests returns the digest of data under each algorithm, canonical first.
func (m *MultiHasher) Digests(data []byte) []string {
	digests := make([]string, 0, len(m.algorithms))
	for _, alg := range m.algorithms {
		digests = append(digests, digest(alg, data))
	}
	return digests
}

// Canonical returns the digest of data under the first algorithm.
func (m *MultiHasher) Canonical(data []byte) string {
	return digest(m.algorithms[0], data)
}

// DigestLength returns the length of a canonical digest string.
func (m *MultiHasher) DigestLength() int {
	return m.length
}

// Algorithms returns a copy of the configured algorithms.
func (m *MultiHasher) Algorithms() []cryptoDomain.HashAlgorithm {
	return append([]cryptoDomain.HashAlgorithm(nil), m.algorithms...)
}

func digest(alg cryptoDomain.HashAlgorithm, data []byte) string {
	h, _ := newHash(alg)
	h.Write(data)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func newHash(alg cryptoDomain.HashAlgorithm) (hash.Hash, error) {
	switch alg {
	case cryptoDomain.SHA512:
		return sha512.New(), nil
	case cryptoDomain.SHA256:
		return sha256.New(), nil
	case cryptoDomain.BLAKE2B:
		return blake2b.New512(nil)
	case cryptoDomain.BLAKE3:
		return blake3.New(), nil
	default:
		return nil, cryptoDomain.ErrUnsupportedHashAlgorithm
	}
}
