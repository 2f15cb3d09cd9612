package desktop

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardFailed is returned when text could not be placed on the clipboard
var ErrClipboardFailed = errors.New("failed to write clipboard")

// ClipboardWriter writes to the system clipboard. It implements
// ports.ClipboardWriter.
type ClipboardWriter struct {
	write func(string) error
}

// NewClipboardWriter creates a writer backed by the system clipboard
func NewClipboardWriter() *ClipboardWriter {
	return &ClipboardWriter{write: clipboard.WriteAll}
}

// NewClipboardWriterWith creates a writer that hands text to write
func NewClipboardWriterWith(write func(string) error) *ClipboardWriter {
	return &ClipboardWriter{write: write}
}

// Available reports whether a clipboard utility was found
func (c *ClipboardWriter) Available() bool {
	return !clipboard.Unsupported
}

// WriteText replaces the clipboard contents with text
func (c *ClipboardWriter) WriteText(text string) error {
	if err := c.write(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardFailed, err)
	}
	return nil
}
