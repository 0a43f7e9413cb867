package domain

import (
	"encoding/json"
)

// Payload is a decrypted action value. Kind holds the "action" discriminator;
// the remaining fields are left for the handler to decode.
type Payload struct {
	Kind   string
	Fields map[string]json.RawMessage
}

// ParsePayload decodes a decrypted action value.
func ParsePayload(data []byte) (*Payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil, ErrInvalidPayload
	}

	raw, ok := fields["action"]
	if !ok {
		return nil, ErrMissingActionKind
	}
	var kind string
	if err := json.Unmarshal(raw, &kind); err != nil || kind == "" {
		return nil, ErrMissingActionKind
	}

	return &Payload{Kind: kind, Fields: fields}, nil
}

// Has reports whether the payload carries field.
func (p *Payload) Has(field string) bool {
	_, ok := p.Fields[field]
	return ok
}

// Decode unmarshals field into dst. A missing field leaves dst untouched.
func (p *Payload) Decode(field string, dst any) error {
	raw, ok := p.Fields[field]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ErrInvalidPayload
	}
	return nil
}
