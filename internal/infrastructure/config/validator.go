package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/core/diff"
	"ccview.dev/cli/internal/core/stats"
)

// ConfigValidator validates individual settings values
type ConfigValidator struct {
	validFormats []string
}

// NewConfigValidator creates a new settings validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		validFormats: []string{"text", "json"},
	}
}

// ValidateHomeDir validates the directory user-level configuration is read from
func (v *ConfigValidator) ValidateHomeDir(path string) error {
	if path == "" {
		// Empty is OK, will use default
		return nil
	}

	info, err := os.Stat(expandPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			// A missing home simply has no user configuration
			return nil
		}
		return fmt.Errorf("failed to check home directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("home path exists but is not a directory: %s", path)
	}
	return nil
}

// ValidateCache validates the source cache bounds
func (v *ConfigValidator) ValidateCache(ttlSeconds, maxEntries int) error {
	if ttlSeconds <= 0 {
		return fmt.Errorf("cache TTL must be greater than 0")
	}
	if maxEntries <= 0 {
		return fmt.Errorf("cache max entries must be greater than 0")
	}
	return nil
}

// ValidateScanDepth validates the default project scan depth
func (v *ConfigValidator) ValidateScanDepth(depth int) error {
	if depth < 0 {
		return fmt.Errorf("scan depth cannot be negative")
	}
	return nil
}

// ValidatePolicies validates the override and severity policy names
func (v *ConfigValidator) ValidatePolicies(overridePolicy, severityPolicy string) error {
	if _, err := stats.ParseOverridePolicy(overridePolicy); err != nil {
		return err
	}
	if _, err := diff.ParseSeverityPolicy(severityPolicy); err != nil {
		return err
	}
	return nil
}

// ValidateLogLevel validates log level value
func (v *ConfigValidator) ValidateLogLevel(level ports.LogLevel) error {
	if level == "" || level.IsValid() {
		return nil
	}
	return fmt.Errorf("invalid log level: %q (valid levels: debug, info, warn, error)", level)
}

// ValidateLogFormat validates log format value
func (v *ConfigValidator) ValidateLogFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, valid := range v.validFormats {
		if format == valid {
			return nil
		}
	}
	return fmt.Errorf("log format must be one of: %s", strings.Join(v.validFormats, ", "))
}

// ValidateLogFile validates the persistent log file path. The file and its
// directories may be missing, but the nearest existing ancestor must be a
// directory.
func (v *ConfigValidator) ValidateLogFile(path string) error {
	if path == "" {
		return nil
	}
	path = filepath.Clean(expandPath(path))
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("log file path is a directory: %s", path)
	}

	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("log file parent is not a directory: %s", dir)
			}
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to check log directory: %w", err)
		}
		if parent := filepath.Dir(dir); parent == dir {
			return nil
		}
	}
}

// ValidateEditor validates the editor command
func (v *ConfigValidator) ValidateEditor(editor string) error {
	if editor == "" {
		return nil
	}
	if len(strings.Fields(editor)) == 0 {
		return fmt.Errorf("editor command cannot be blank")
	}
	if strings.ContainsAny(editor, "\r\n") {
		return fmt.Errorf("editor command must be a single line")
	}
	return nil
}

// ValidateAll validates every field and joins the failures, each prefixed
// with the settings key it belongs to
func (v *ConfigValidator) ValidateAll(config *ports.Configuration) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	checks := []struct {
		field string
		err   error
	}{
		{"home_dir", v.ValidateHomeDir(config.HomeDir)},
		{"cache", v.ValidateCache(config.CacheTTLSeconds, config.CacheMaxEntries)},
		{"scan_depth", v.ValidateScanDepth(config.ScanDepth)},
		{"policy", v.ValidatePolicies(config.OverridePolicy, config.SeverityPolicy)},
		{"log_level", v.ValidateLogLevel(config.LogLevel)},
		{"log_format", v.ValidateLogFormat(config.LogFormat)},
		{"editor", v.ValidateEditor(config.Editor)},
		{"log_file", v.ValidateLogFile(config.LogFile)},
	}

	var errs []error
	for _, check := range checks {
		if check.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", check.field, check.err))
		}
	}
	return errors.Join(errs...)
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			path = homeDir + path[1:]
		}
	}

	return os.ExpandEnv(path)
}
