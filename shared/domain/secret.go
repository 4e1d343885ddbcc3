package domain

import (
	"encoding/json"
	"log/slog"
)

const redacted = "[REDACTED]"

// Secret holds a sensitive string. Every printing or encoding path yields a
// placeholder; Expose is the only way to read the value.
type Secret struct {
	value string
}

func NewSecret(value string) Secret {
	return Secret{value: value}
}

func (s Secret) Expose() string {
	return s.value
}

func (s Secret) IsEmpty() bool {
	return s.value == ""
}

func (s Secret) String() string {
	return redacted
}

func (s Secret) GoString() string {
	return redacted
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(redacted)
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}
