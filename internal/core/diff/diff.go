// Package diff compares two independently resolved configurations and
// produces a key-aligned list of differences.
package diff

import (
	"fmt"

	"ccview.dev/cli/internal/core/config"
	"ccview.dev/cli/internal/core/inheritance"
)

// Status classifies one key of a comparison
type Status string

const (
	StatusMatch     Status = "match"
	StatusDifferent Status = "different"
	StatusOnlyLeft  Status = "only-left"
	StatusOnlyRight Status = "only-right"
)

// NewStatus creates a Status with validation
func NewStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusMatch, StatusDifferent, StatusOnlyLeft, StatusOnlyRight:
		return Status(value), nil
	default:
		return "", fmt.Errorf("invalid diff status: %q", value)
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Severity is a triage hint for UI consumers
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// NewSeverity creates a Severity with validation
func NewSeverity(value string) (Severity, error) {
	switch Severity(value) {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return Severity(value), nil
	default:
		return "", fmt.Errorf("invalid severity: %q", value)
	}
}

// String returns the string representation of Severity
func (s Severity) String() string {
	return string(s)
}

// Record is one capability on either side of a comparison
type Record struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

// DiffEntry is the comparison result for one key.
// LeftValue is absent for only-right entries and RightValue for only-left ones.
type DiffEntry struct {
	CapabilityID string   `json:"capabilityId"`
	LeftValue    any      `json:"leftValue,omitempty"`
	RightValue   any      `json:"rightValue,omitempty"`
	Status       Status   `json:"status"`
	Severity     Severity `json:"severity"`
}

// HasLeft reports whether the key exists on the left side
func (d DiffEntry) HasLeft() bool {
	return d.Status != StatusOnlyRight
}

// HasRight reports whether the key exists on the right side
func (d DiffEntry) HasRight() bool {
	return d.Status != StatusOnlyLeft
}

// SeverityPolicy assigns a severity to a diff entry
type SeverityPolicy interface {
	Severity(entry DiffEntry) Severity
}

// FixedSeverity tags every entry with the same severity
type FixedSeverity Severity

// Severity implements SeverityPolicy
func (f FixedSeverity) Severity(DiffEntry) Severity {
	return Severity(f)
}

// StatusSeverity derives severity from the entry status: matches are low,
// one-sided keys medium and conflicting values high.
type StatusSeverity struct{}

// Severity implements SeverityPolicy
func (StatusSeverity) Severity(entry DiffEntry) Severity {
	switch entry.Status {
	case StatusMatch:
		return SeverityLow
	case StatusDifferent:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

// ParseSeverityPolicy maps a policy name to a SeverityPolicy
func ParseSeverityPolicy(name string) (SeverityPolicy, error) {
	switch name {
	case "", "fixed":
		return FixedSeverity(SeverityMedium), nil
	case "status":
		return StatusSeverity{}, nil
	default:
		return nil, fmt.Errorf("invalid severity policy: %q", name)
	}
}

// Engine computes diffs. It is stateless apart from its severity policy.
type Engine struct {
	severity SeverityPolicy
}

// Option configures an Engine
type Option func(*Engine)

// WithSeverityPolicy replaces the default fixed medium severity
func WithSeverityPolicy(policy SeverityPolicy) Option {
	return func(e *Engine) {
		if policy != nil {
			e.severity = policy
		}
	}
}

// NewEngine creates a diff engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{severity: FixedSeverity(SeverityMedium)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Diff compares left against right. Every ID present on either side appears
// exactly once. Left-driven entries come first in left order, followed by
// only-right entries in right order. When an ID repeats on one side the first
// occurrence is used.
func (e *Engine) Diff(left, right []Record) []DiffEntry {
	rightByID := make(map[string]Record, len(right))
	for _, r := range right {
		if _, dup := rightByID[r.ID]; !dup {
			rightByID[r.ID] = r
		}
	}

	out := make([]DiffEntry, 0, len(left)+len(right))
	visited := make(map[string]bool, len(left)+len(right))

	for _, l := range left {
		if visited[l.ID] {
			continue
		}
		visited[l.ID] = true

		entry := DiffEntry{CapabilityID: l.ID, LeftValue: l.Value}
		if r, ok := rightByID[l.ID]; ok {
			entry.RightValue = r.Value
			if config.Equal(l.Value, r.Value) {
				entry.Status = StatusMatch
			} else {
				entry.Status = StatusDifferent
			}
		} else {
			entry.Status = StatusOnlyLeft
		}
		entry.Severity = e.severity.Severity(entry)
		out = append(out, entry)
	}

	for _, r := range right {
		if visited[r.ID] {
			continue
		}
		visited[r.ID] = true

		entry := DiffEntry{CapabilityID: r.ID, RightValue: r.Value, Status: StatusOnlyRight}
		entry.Severity = e.severity.Severity(entry)
		out = append(out, entry)
	}

	return out
}

// FromChain converts a resolved chain into diff records in chain order
func FromChain(chain inheritance.Chain) []Record {
	records := make([]Record, 0, len(chain.Entries))
	for _, entry := range chain.Entries {
		records = append(records, Record{ID: entry.Key, Value: chain.Resolved[entry.Key]})
	}
	return records
}

// Summary counts diff entries per status
type Summary struct {
	Total     int `json:"total"`
	Match     int `json:"match"`
	Different int `json:"different"`
	OnlyLeft  int `json:"onlyLeft"`
	OnlyRight int `json:"onlyRight"`
}

// HasDifferences reports whether anything other than matches was found
func (s Summary) HasDifferences() bool {
	return s.Different+s.OnlyLeft+s.OnlyRight > 0
}

// Summarize counts entries per status
func Summarize(entries []DiffEntry) Summary {
	s := Summary{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case StatusMatch:
			s.Match++
		case StatusDifferent:
			s.Different++
		case StatusOnlyLeft:
			s.OnlyLeft++
		case StatusOnlyRight:
			s.OnlyRight++
		}
	}
	return s
}

// OnlyDifferences filters out matching entries
func OnlyDifferences(entries []DiffEntry) []DiffEntry {
	out := make([]DiffEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status != StatusMatch {
			out = append(out, e)
		}
	}
	return out
}
