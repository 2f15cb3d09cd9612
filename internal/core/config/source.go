// Package config defines the configuration data model shared by the resolver,
// the stats calculator, the source tracker and the diff engine.
//
// Entries are built once per load from already-parsed raw configuration and are
// treated as immutable afterwards. Derived objects (chains, stats, diffs) are
// recomputed from entries and never mutated in place.
package config

import "fmt"

// SourceType identifies the configuration layer an entry came from
type SourceType string

const (
	SourceUser      SourceType = "user"
	SourceProject   SourceType = "project"
	SourceInherited SourceType = "inherited"
)

// Standard scope priorities. Higher values win on conflict.
const (
	PriorityUser    = 1
	PriorityProject = 2
)

// NewSourceType creates a SourceType with validation
func NewSourceType(value string) (SourceType, error) {
	switch SourceType(value) {
	case SourceUser, SourceProject, SourceInherited:
		return SourceType(value), nil
	default:
		return "", fmt.Errorf("invalid source type: %q", value)
	}
}

// String returns the string representation of SourceType
func (s SourceType) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known source types
func (s SourceType) IsValid() bool {
	_, err := NewSourceType(string(s))
	return err == nil
}

// DefaultPriority returns the conventional priority for a source type
func DefaultPriority(s SourceType) int {
	switch s {
	case SourceProject:
		return PriorityProject
	default:
		return PriorityUser
	}
}

// ConfigSource describes where an entry was defined
type ConfigSource struct {
	Type     SourceType `json:"type"`
	Path     string     `json:"path"`
	Priority int        `json:"priority"`
}

// NewConfigSource creates a source using the conventional priority for its type
func NewConfigSource(sourceType SourceType, path string) ConfigSource {
	return ConfigSource{
		Type:     sourceType,
		Path:     path,
		Priority: DefaultPriority(sourceType),
	}
}

// String returns a compact description of the source
func (s ConfigSource) String() string {
	if s.Path == "" {
		return fmt.Sprintf("%s(p%d)", s.Type, s.Priority)
	}
	return fmt.Sprintf("%s(p%d) %s", s.Type, s.Priority, s.Path)
}
