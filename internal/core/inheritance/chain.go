// Package inheritance merges configuration entries from ordered scopes into one
// effective set and classifies every key as inherited, override or
// project-specific.
package inheritance

import (
	"errors"
	"fmt"

	"ccview.dev/cli/internal/core/config"
)

// Classification is the derived tag assigned to a resolved key
type Classification string

const (
	ClassInherited       Classification = "inherited"
	ClassOverride        Classification = "override"
	ClassProjectSpecific Classification = "project-specific"
)

// NewClassification creates a Classification with validation
func NewClassification(value string) (Classification, error) {
	switch Classification(value) {
	case ClassInherited, ClassOverride, ClassProjectSpecific:
		return Classification(value), nil
	default:
		return "", fmt.Errorf("invalid classification: %q", value)
	}
}

// String returns the string representation of Classification
func (c Classification) String() string {
	return string(c)
}

// ChainItem is the classified view of one resolved key.
// OriginalValue is meaningful only when IsOverridden is true.
type ChainItem struct {
	ConfigKey      string                `json:"configKey"`
	CurrentValue   any                   `json:"currentValue"`
	Classification Classification        `json:"classification"`
	SourceType     config.SourceType     `json:"sourceType"`
	SourcePath     string                `json:"sourcePath,omitempty"`
	IsOverridden   bool                  `json:"isOverridden"`
	OriginalValue  any                   `json:"originalValue,omitempty"`
	Lineage        []config.ConfigSource `json:"lineage"`
}

// Chain holds one winning entry per key and the effective value of every key
type Chain struct {
	Entries  []config.ConfigEntry `json:"entries"`
	Resolved map[string]any       `json:"resolved"`
}

// Len returns the number of distinct keys in the chain
func (c Chain) Len() int {
	return len(c.Entries)
}

// Lookup returns the winning entry for key
func (c Chain) Lookup(key string) (config.ConfigEntry, bool) {
	for _, e := range c.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return config.ConfigEntry{}, false
}

// Result is the output of a resolution: the chain, its classified items in
// the same order, and the entries that were skipped as malformed.
type Result struct {
	Chain  Chain                         `json:"chain"`
	Items  []ChainItem                   `json:"items"`
	Errors []*config.MalformedEntryError `json:"errors,omitempty"`
}

// Err joins the malformed-entry diagnostics, or returns nil when there are none
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Item returns the classified item for key
func (r *Result) Item(key string) (ChainItem, bool) {
	for _, item := range r.Items {
		if item.ConfigKey == key {
			return item, true
		}
	}
	return ChainItem{}, false
}

// CountBy returns how many items carry the given classification
func (r *Result) CountBy(class Classification) int {
	n := 0
	for _, item := range r.Items {
		if item.Classification == class {
			n++
		}
	}
	return n
}
