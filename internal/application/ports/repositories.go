package ports

import (
	"context"

	"ccview.dev/cli/internal/core/config"
)

// ConfigReader turns configuration files into scopes of entries
type ConfigReader interface {
	// ReadUserScope reads the user-level configuration
	ReadUserScope(ctx context.Context) (*ScopeReport, error)

	// ReadProjectScope reads the project-level configuration of projectDir
	ReadProjectScope(ctx context.Context, projectDir string) (*ScopeReport, error)

	// CandidatePaths lists every file and directory that may hold configuration
	// for projectDir, whether or not it exists yet
	CandidatePaths(projectDir string) []string
}

// ScopeReport is a scope together with the files that fed it.
// Files lists every existing file that was read, in read order.
// Warnings carries per-file parse problems; they never abort the scope.
type ScopeReport struct {
	Scope    config.Scope `json:"scope"`
	Files    []string     `json:"files"`
	Warnings []string     `json:"warnings,omitempty"`
}

// ConfigurationRepository defines the interface for configuration persistence
type ConfigurationRepository interface {
	// Load retrieves the current configuration
	Load() (*Configuration, error)

	// Save persists the configuration
	Save(config *Configuration) error

	// LoadDefault returns the default configuration
	LoadDefault() *Configuration

	// Validate validates the configuration
	Validate(config *Configuration) error

	// GetConfigPath returns the path to the configuration file
	GetConfigPath() string
}

// Configuration represents the tool's own settings
type Configuration struct {
	HomeDir         string   `json:"home_dir,omitempty"`
	SourceTracking  *bool    `json:"source_tracking,omitempty"`
	CacheTTLSeconds int      `json:"cache_ttl_seconds"`
	CacheMaxEntries int      `json:"cache_max_entries"`
	OverridePolicy  string   `json:"override_policy"`
	SeverityPolicy  string   `json:"severity_policy"`
	LogLevel        LogLevel `json:"log_level"`
	LogFormat       string   `json:"log_format"`
	ScanDepth       int      `json:"scan_depth"`
	Editor          string   `json:"editor,omitempty"`
	LogFile         string   `json:"log_file,omitempty"`
}

// TrackingEnabled reports whether source tracking is on; unset means on
func (c *Configuration) TrackingEnabled() bool {
	return c.SourceTracking == nil || *c.SourceTracking
}

// SetTracking sets the source tracking switch
func (c *Configuration) SetTracking(enabled bool) {
	c.SourceTracking = &enabled
}
