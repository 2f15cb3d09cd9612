package testfixtures

import (
	"fmt"

	"ccview.dev/cli/internal/core/config"
)

// EntryBuilder provides a builder pattern for creating test entries
type EntryBuilder struct {
	key      string
	value    any
	source   *config.ConfigSource
	noSource bool
}

// NewEntryBuilder creates a new EntryBuilder with sensible defaults
func NewEntryBuilder() *EntryBuilder {
	src := config.NewConfigSource(config.SourceUser, "/home/test/.claude.json")
	return &EntryBuilder{
		key:    "settings.model",
		value:  "sonnet",
		source: &src,
	}
}

// WithKey sets the entry key
func (b *EntryBuilder) WithKey(key string) *EntryBuilder {
	b.key = key
	return b
}

// WithValue sets the entry value
func (b *EntryBuilder) WithValue(value any) *EntryBuilder {
	b.value = value
	return b
}

// WithSource sets the source type, path and priority
func (b *EntryBuilder) WithSource(sourceType config.SourceType, path string, priority int) *EntryBuilder {
	b.source = &config.ConfigSource{Type: sourceType, Path: path, Priority: priority}
	b.noSource = false
	return b
}

// FromUser marks the entry as user-level with the conventional priority
func (b *EntryBuilder) FromUser() *EntryBuilder {
	return b.WithSource(config.SourceUser, "/home/test/.claude.json", config.PriorityUser)
}

// FromProject marks the entry as project-level with the conventional priority
func (b *EntryBuilder) FromProject() *EntryBuilder {
	return b.WithSource(config.SourceProject, "/work/app/.mcp.json", config.PriorityProject)
}

// WithoutSource builds a malformed entry lacking a source
func (b *EntryBuilder) WithoutSource() *EntryBuilder {
	b.noSource = true
	return b
}

// Build creates the entry
func (b *EntryBuilder) Build() config.ConfigEntry {
	entry := config.ConfigEntry{Key: b.key, Value: b.value}
	if !b.noSource && b.source != nil {
		src := *b.source
		entry.Source = &src
	}
	return entry
}

// ScopeBuilder provides a builder pattern for creating test scopes
type ScopeBuilder struct {
	scope config.Scope
}

// NewScopeBuilder creates a scope builder for the given type using its conventional priority
func NewScopeBuilder(sourceType config.SourceType) *ScopeBuilder {
	return &ScopeBuilder{
		scope: config.Scope{
			Name:     string(sourceType),
			Type:     sourceType,
			Priority: config.DefaultPriority(sourceType),
			Entries:  []config.ConfigEntry{},
		},
	}
}

// WithName sets the scope name
func (b *ScopeBuilder) WithName(name string) *ScopeBuilder {
	b.scope.Name = name
	return b
}

// WithPriority sets the scope priority; entries added afterwards inherit it
func (b *ScopeBuilder) WithPriority(priority int) *ScopeBuilder {
	b.scope.Priority = priority
	return b
}

// With adds a well-formed entry stamped with the scope's source
func (b *ScopeBuilder) With(key string, value any) *ScopeBuilder {
	b.scope.Entries = append(b.scope.Entries, config.NewConfigEntry(key, value, config.ConfigSource{
		Type:     b.scope.Type,
		Path:     fmt.Sprintf("/test/%s.json", b.scope.Name),
		Priority: b.scope.Priority,
	}))
	return b
}

// WithEntry adds an arbitrary entry, including malformed ones
func (b *ScopeBuilder) WithEntry(entry config.ConfigEntry) *ScopeBuilder {
	b.scope.Entries = append(b.scope.Entries, entry)
	return b
}

// Build creates the scope
func (b *ScopeBuilder) Build() config.Scope {
	out := b.scope
	out.Entries = append([]config.ConfigEntry(nil), b.scope.Entries...)
	return out
}

// UserScope is shorthand for a user scope built from key/value pairs
func UserScope(pairs ...any) config.Scope {
	return scopeFromPairs(config.SourceUser, pairs)
}

// ProjectScope is shorthand for a project scope built from key/value pairs
func ProjectScope(pairs ...any) config.Scope {
	return scopeFromPairs(config.SourceProject, pairs)
}

func scopeFromPairs(sourceType config.SourceType, pairs []any) config.Scope {
	b := NewScopeBuilder(sourceType)
	for i := 0; i+1 < len(pairs); i += 2 {
		b.With(pairs[i].(string), pairs[i+1])
	}
	return b.Build()
}
