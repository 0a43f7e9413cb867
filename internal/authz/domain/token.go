package domain

import (
	"encoding/base64"
	"sort"
	"strings"

	"github.com/google/uuid"

	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// Token is one parsed cluster:key credential.
type Token struct {
	ClusterFlexID uuid.UUID
	Key           []byte
}

// String renders the token in its canonical form.
func (t Token) String() string {
	return t.ClusterFlexID.String() + ":" + base64.StdEncoding.EncodeToString(t.Key)
}

// ParseToken parses "<cluster>:<base64 key>". The cluster part is a flexid or a
// global id of a cluster; the key must decode to 32 bytes.
func ParseToken(raw string) (Token, error) {
	clusterPart, keyPart, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || clusterPart == "" || keyPart == "" {
		return Token{}, ErrInvalidToken
	}

	flexID, err := graphDomain.ParseFlexID(clusterPart, graphDomain.KindCluster)
	if err != nil {
		return Token{}, ErrInvalidToken
	}

	key, err := base64.StdEncoding.DecodeString(keyPart)
	if err != nil {
		key, err = base64.URLEncoding.DecodeString(keyPart)
	}
	if err != nil || len(key) != cryptoDomain.KeySize {
		return Token{}, ErrInvalidToken
	}

	return Token{ClusterFlexID: flexID, Key: key}, nil
}

// ParseAuthset parses comma separated tokens from every entry. Blank and
// malformed tokens are skipped; duplicates are dropped.
func ParseAuthset(entries ...string) []Token {
	var tokens []Token
	seen := make(map[string]struct{})
	for _, entry := range entries {
		for _, raw := range strings.Split(entry, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			token, err := ParseToken(raw)
			if err != nil {
				continue
			}
			canonical := token.String()
			if _, ok := seen[canonical]; ok {
				continue
			}
			seen[canonical] = struct{}{}
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// NormalizeAuthset returns an order independent representation of tokens.
func NormalizeAuthset(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
