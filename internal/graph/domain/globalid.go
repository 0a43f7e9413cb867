package domain

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// EncodeGlobalID returns the relay global id base64("<typ>:<id>").
func EncodeGlobalID(typ, id string) string {
	return base64.StdEncoding.EncodeToString([]byte(typ + ":" + id))
}

// DecodeGlobalID splits a relay global id into its type and id parts.
func DecodeGlobalID(globalID string) (typ, id string, err error) {
	raw, err := base64.StdEncoding.DecodeString(globalID)
	if err != nil {
		return "", "", ErrInvalidGlobalID
	}
	typ, id, ok := strings.Cut(string(raw), ":")
	if !ok || typ == "" || id == "" {
		return "", "", ErrInvalidGlobalID
	}
	return typ, id, nil
}

// ParseFlexID accepts a raw UUID or a global id of the expected type.
func ParseFlexID(raw string, kind EntityKind) (uuid.UUID, error) {
	if id, err := uuid.Parse(raw); err == nil {
		return id, nil
	}

	typ, id, err := DecodeGlobalID(raw)
	if err != nil {
		return uuid.Nil, err
	}
	if typ != string(kind) {
		return uuid.Nil, ErrInvalidGlobalID
	}

	flexID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, ErrInvalidGlobalID
	}
	return flexID, nil
}
