// Package source traces configuration keys back to the file and line that
// defined them and caches the answers.
package source

import (
	"context"
	"errors"
	"fmt"
)

// Location is where a key was textually defined. It is immutable once obtained.
type Location struct {
	FilePath     string `json:"file_path"`
	LineNumber   int    `json:"line_number,omitempty"`
	ColumnNumber int    `json:"column_number,omitempty"`
	Context      string `json:"context,omitempty"`
}

// String renders the location as path:line[:column]
func (l Location) String() string {
	switch {
	case l.LineNumber > 0 && l.ColumnNumber > 0:
		return fmt.Sprintf("%s:%d:%d", l.FilePath, l.LineNumber, l.ColumnNumber)
	case l.LineNumber > 0:
		return fmt.Sprintf("%s:%d", l.FilePath, l.LineNumber)
	default:
		return l.FilePath
	}
}

// Locator finds the defining location of a key within an ordered list of
// search paths. A nil location with a nil error means the key was not found.
// Implementations must be idempotent and free of side effects.
type Locator interface {
	Locate(ctx context.Context, key string, searchPaths []string) (*Location, error)
}

// LocatorFunc adapts a function to the Locator interface
type LocatorFunc func(ctx context.Context, key string, searchPaths []string) (*Location, error)

// Locate implements Locator
func (f LocatorFunc) Locate(ctx context.Context, key string, searchPaths []string) (*Location, error) {
	return f(ctx, key, searchPaths)
}

// ErrTraceFailed marks a locator failure, as opposed to a key that was
// legitimately not found
var ErrTraceFailed = errors.New("source tracing failed")

// TraceError wraps a locator failure for a specific key
type TraceError struct {
	Key string
	Err error
}

// Error implements the error interface
func (e *TraceError) Error() string {
	return fmt.Sprintf("tracing %q failed: %v", e.Key, e.Err)
}

// Unwrap returns the underlying locator error
func (e *TraceError) Unwrap() error {
	return e.Err
}

// Is reports ErrTraceFailed as a match
func (e *TraceError) Is(target error) bool {
	return target == ErrTraceFailed
}
