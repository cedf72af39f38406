package model

import (
	"fmt"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// APIKey holds the secret used to authenticate with the service. Every
// rendering path (fmt verbs, JSON, YAML, text) prints a redacted
// placeholder; the raw value is only available through Reveal. APIKey values
// are not comparable.
type APIKey struct {
	_     [0]func()
	value string
}

// NewAPIKey wraps a raw key. Surrounding whitespace is trimmed.
func NewAPIKey(raw string) APIKey {
	return APIKey{value: strings.TrimSpace(raw)}
}

// Reveal returns the raw key. It is meant for the transport credentials
// that place the key on the wire and nothing else.
func (k APIKey) Reveal() string { return k.value }

// IsZero reports whether no key is set.
func (k APIKey) IsZero() bool { return k.value == "" }

func (k APIKey) String() string { return redacted }

// GoString keeps %#v from printing the struct fields.
func (k APIKey) GoString() string { return redacted }

// Format implements fmt.Formatter for every verb.
func (k APIKey) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(redacted))
}

// MarshalJSON implements json.Marshaler.
func (k APIKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// MarshalText implements encoding.TextMarshaler.
func (k APIKey) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

// MarshalYAML implements yaml.Marshaler.
func (k APIKey) MarshalYAML() (any, error) {
	return redacted, nil
}

// LogValue implements slog.LogValuer.
func (k APIKey) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// UnmarshalText implements encoding.TextUnmarshaler so keys can be loaded
// from configuration files.
func (k *APIKey) UnmarshalText(b []byte) error {
	k.value = strings.TrimSpace(string(b))
	return nil
}
