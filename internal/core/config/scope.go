package config

// Scope is a named configuration layer with a fixed priority
type Scope struct {
	Name     string        `json:"name"`
	Type     SourceType    `json:"type"`
	Priority int           `json:"priority"`
	Entries  []ConfigEntry `json:"entries"`
}

// NewScope creates an empty scope using the conventional priority for its type
func NewScope(name string, sourceType SourceType) *Scope {
	return &Scope{
		Name:     name,
		Type:     sourceType,
		Priority: DefaultPriority(sourceType),
		Entries:  []ConfigEntry{},
	}
}

// Add appends an entry defined in path to the scope
func (s *Scope) Add(key string, value any, path string) {
	s.Entries = append(s.Entries, NewConfigEntry(key, value, ConfigSource{
		Type:     s.Type,
		Path:     path,
		Priority: s.Priority,
	}))
}

// Len returns the number of entries in the scope
func (s *Scope) Len() int {
	return len(s.Entries)
}

// Keys returns the entry keys in insertion order
func (s *Scope) Keys() []string {
	keys := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}
