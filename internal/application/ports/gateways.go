package ports

import (
	"context"
	"time"
)

// EditorLauncher opens a file in the user's editor, optionally at a line.
// Failures are returned to the caller and never retried.
type EditorLauncher interface {
	// Open launches the editor for path; line <= 0 means no line jump
	Open(ctx context.Context, path string, line int) error
}

// ClipboardWriter places text on the system clipboard
type ClipboardWriter interface {
	// WriteText replaces the clipboard contents with text
	WriteText(text string) error
}

// ProjectScanner discovers projects that carry their own configuration
type ProjectScanner interface {
	// Scan walks root up to depth directory levels
	Scan(ctx context.Context, root string, depth int) ([]ProjectInfo, error)
}

// ProjectInfo describes a discovered project
type ProjectInfo struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Path            string         `json:"path"`
	ConfigFileCount int            `json:"config_file_count"`
	LastModified    time.Time      `json:"last_modified"`
	Sources         ProjectSources `json:"sources"`
	McpServerCount  int            `json:"mcp_server_count"`
	AgentCount      int            `json:"agent_count"`
}

// ProjectSources reports which configuration layers a project has
type ProjectSources struct {
	User    bool `json:"user"`
	Project bool `json:"project"`
	Local   bool `json:"local"`
}

// ConfigWatcher reports changes to configuration files
type ConfigWatcher interface {
	// Watch blocks until ctx is done, calling onChange for every debounced change
	Watch(ctx context.Context, paths []string, onChange func(ChangeEvent)) error
}

// ChangeType is the kind of change observed on a configuration file
type ChangeType string

const (
	ChangeModify ChangeType = "modify"
	ChangeDelete ChangeType = "delete"
)

// ChangeEvent is one debounced configuration file change
type ChangeEvent struct {
	Path string     `json:"path"`
	Type ChangeType `json:"change_type"`
	Time time.Time  `json:"time"`
}

// LoggingGateway defines the interface for logging operations
type LoggingGateway interface {
	// Log logs a message with the specified level
	Log(level LogLevel, message string, fields map[string]interface{})

	// LogError logs an error
	LogError(err error, message string, fields map[string]interface{})

	// SetLogLevel sets the logging level
	SetLogLevel(level LogLevel)

	// GetLogLevel returns the current logging level
	GetLogLevel() LogLevel

	// ConfigureLogging configures logging settings
	ConfigureLogging(config *LoggingConfig) error
}

// LogLevel defines the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// IsValid reports whether l is a known level
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelFatal:
		return true
	default:
		return false
	}
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	Level  LogLevel `json:"level"`
	Format string   `json:"format"` // "json" or "text"
	Output string   `json:"output"` // "stdout", "stderr", or file path

	// File rotation, used when Output is a file path. Zero means the default.
	MaxFileSize int64 `json:"max_file_size,omitempty"`
	MaxFiles    int   `json:"max_files,omitempty"`
}

// LogArchive gives access to the persistent log file and its rotated copies
type LogArchive interface {
	// Path returns the live log file
	Path() string

	// Export returns every entry, oldest first
	Export() ([]LogEntry, error)

	// Clear empties the live file and every rotated copy
	Clear() error

	// Stats counts entries by level
	Stats() (*LogStats, error)
}

// LogEntry is one structured log record
type LogEntry map[string]interface{}

// Level returns the record's level, or "" when it has none
func (e LogEntry) Level() string {
	level, _ := e["level"].(string)
	return level
}

// LogStats summarizes a log archive
type LogStats struct {
	Total   int            `json:"total"`
	ByLevel map[string]int `json:"by_level"`
	Files   []string       `json:"files"`
}
