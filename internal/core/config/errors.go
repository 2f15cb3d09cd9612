package config

import "fmt"

// MalformedEntryError reports an entry that failed structural validation.
// It is recovered locally: the entry is skipped and the error is collected.
type MalformedEntryError struct {
	Scope  string `json:"scope"`
	Index  int    `json:"index"`
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e *MalformedEntryError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("malformed entry #%d in scope %q: %s", e.Index, e.Scope, e.Reason)
	}
	return fmt.Sprintf("malformed entry #%d (%s) in scope %q: %s", e.Index, e.Key, e.Scope, e.Reason)
}
