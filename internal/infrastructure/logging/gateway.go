// Package logging adapts zerolog to the LoggingGateway port.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"ccview.dev/cli/internal/application/ports"
	"github.com/rs/zerolog"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Gateway implements ports.LoggingGateway on top of zerolog
type Gateway struct {
	mu     sync.RWMutex
	logger zerolog.Logger
	level  ports.LogLevel
	format string
	out    io.Writer
	file   *RotatingFile
}

// NewGateway creates a gateway writing to out in the given format
func NewGateway(out io.Writer, level ports.LogLevel, format string) *Gateway {
	if out == nil {
		out = os.Stderr
	}
	if !level.IsValid() {
		level = ports.LogLevelWarn
	}
	g := &Gateway{level: level, format: normalizeFormat(format), out: out}
	g.rebuild()
	return g
}

// NewDefaultGateway logs warnings and above to stderr as text
func NewDefaultGateway() *Gateway {
	return NewGateway(os.Stderr, ports.LogLevelWarn, FormatText)
}

// ParseLevel parses a log level string (case-insensitive).
// Returns LogLevelWarn if the string is not recognized.
func ParseLevel(level string) ports.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return ports.LogLevelDebug
	case "info":
		return ports.LogLevelInfo
	case "warn", "warning":
		return ports.LogLevelWarn
	case "error":
		return ports.LogLevelError
	case "fatal":
		return ports.LogLevelFatal
	default:
		return ports.LogLevelWarn
	}
}

// Log logs a message with the specified level
func (g *Gateway) Log(level ports.LogLevel, message string, fields map[string]interface{}) {
	g.mu.RLock()
	logger := g.logger
	g.mu.RUnlock()

	logger.WithLevel(toZerolog(level)).Fields(fields).Msg(message)
}

// LogError logs an error
func (g *Gateway) LogError(err error, message string, fields map[string]interface{}) {
	g.mu.RLock()
	logger := g.logger
	g.mu.RUnlock()

	logger.Error().Err(err).Fields(fields).Msg(message)
}

// SetLogLevel sets the logging level
func (g *Gateway) SetLogLevel(level ports.LogLevel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.level = level
	g.logger = g.logger.Level(toZerolog(level))
}

// GetLogLevel returns the current logging level
func (g *Gateway) GetLogLevel() ports.LogLevel {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.level
}

// ConfigureLogging configures logging settings
func (g *Gateway) ConfigureLogging(config *ports.LoggingConfig) error {
	if config == nil {
		return fmt.Errorf("logging config cannot be nil")
	}
	if config.Level != "" && !config.Level.IsValid() {
		return fmt.Errorf("invalid log level: %q", config.Level)
	}
	format := normalizeFormat(config.Format)
	if config.Format != "" && format != strings.ToLower(config.Format) {
		return fmt.Errorf("invalid log format: %q", config.Format)
	}

	var out io.Writer
	var file *RotatingFile
	switch config.Output {
	case "":
	case "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		f, err := OpenRotatingFile(config.Output, config.MaxFileSize, config.MaxFiles)
		if err != nil {
			return err
		}
		file = f
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if config.Level != "" {
		g.level = config.Level
	}
	if config.Format != "" {
		g.format = format
	}
	if out != nil {
		g.out = out
	}
	if config.Output != "" {
		// A console output replaces the file, a file path replaces the old file
		if g.file != nil {
			_ = g.file.Close()
		}
		g.file = file
	}
	g.rebuild()
	return nil
}

// LogFile returns the path of the log file in use, or "" when logging only
// to the console
func (g *Gateway) LogFile() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.file == nil {
		return ""
	}
	return g.file.Path()
}

// Close releases a log file opened by ConfigureLogging. Logging continues on
// the console.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.file == nil {
		return nil
	}
	err := g.file.Close()
	g.file = nil
	g.rebuild()
	return err
}

// rebuild writes the console in the configured format and the log file, if
// any, as JSON lines so it can be exported
func (g *Gateway) rebuild() {
	var w io.Writer = g.out
	if g.format == FormatText {
		w = zerolog.ConsoleWriter{Out: g.out, TimeFormat: time.Kitchen}
	}
	if g.file != nil {
		w = zerolog.MultiLevelWriter(w, g.file)
	}
	g.logger = zerolog.New(w).Level(toZerolog(g.level)).With().Timestamp().Logger()
}

func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
		return FormatJSON
	default:
		return FormatText
	}
}

func toZerolog(level ports.LogLevel) zerolog.Level {
	switch level {
	case ports.LogLevelDebug:
		return zerolog.DebugLevel
	case ports.LogLevelInfo:
		return zerolog.InfoLevel
	case ports.LogLevelWarn:
		return zerolog.WarnLevel
	case ports.LogLevelError:
		return zerolog.ErrorLevel
	case ports.LogLevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.WarnLevel
	}
}
