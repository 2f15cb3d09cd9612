package config

import (
	"fmt"
	"strings"
)

// ConfigEntry is a single key/value pair contributed by one scope.
// Key uses dotted-path notation (e.g. "mcpServers.filesystem") and is the
// join key for merge and diff operations.
type ConfigEntry struct {
	Key        string        `json:"key"`
	Value      any           `json:"value"`
	Source     *ConfigSource `json:"source"`
	Inherited  bool          `json:"inherited,omitempty"`
	Overridden bool          `json:"overridden,omitempty"`
}

// NewConfigEntry creates an entry owned by the given source
func NewConfigEntry(key string, value any, source ConfigSource) ConfigEntry {
	return ConfigEntry{
		Key:    key,
		Value:  value,
		Source: &source,
	}
}

// Validate checks the structural requirements of an entry
func (e ConfigEntry) Validate() error {
	if err := ValidateKey(e.Key); err != nil {
		return err
	}
	if e.Source == nil {
		return fmt.Errorf("entry %q has no source", e.Key)
	}
	if !e.Source.Type.IsValid() {
		return fmt.Errorf("entry %q has invalid source type %q", e.Key, e.Source.Type)
	}
	return nil
}

// ValidateKey checks that key is a non-empty dotted path without empty segments
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("entry key cannot be empty")
	}
	for _, segment := range strings.Split(key, ".") {
		if segment == "" {
			return fmt.Errorf("entry key %q has an empty path segment", key)
		}
	}
	return nil
}

// Segments splits a dotted key into its path segments
func Segments(key string) []string {
	return strings.Split(key, ".")
}

// ChildSegment returns the path segment that directly follows prefix in key.
// The prefix must end with a dot. It returns false when key is not under prefix.
func ChildSegment(key, prefix string) (string, bool) {
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	rest := key[len(prefix):]
	if rest == "" {
		return "", false
	}
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		rest = rest[:i]
	}
	return rest, rest != ""
}

// Clone returns a deep copy of the entry
func (e ConfigEntry) Clone() ConfigEntry {
	clone := e
	clone.Value = CloneValue(e.Value)
	if e.Source != nil {
		src := *e.Source
		clone.Source = &src
	}
	return clone
}

// Priority returns the source priority, or 0 for an entry without a source
func (e ConfigEntry) Priority() int {
	if e.Source == nil {
		return 0
	}
	return e.Source.Priority
}
