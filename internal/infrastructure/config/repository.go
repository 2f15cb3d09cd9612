package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/core/stats"
	"github.com/tidwall/jsonc"
)

// CompositeConfigRepository implements the ConfigurationRepository interface
type CompositeConfigRepository struct {
	mu         sync.Mutex
	sources    []ConfigSource
	cache      *ConfigCache
	configPath string
	validator  *ConfigValidator
}

// ConfigSource defines the interface for configuration sources
type ConfigSource interface {
	Load() (*ports.Configuration, error)
	Priority() int
	Name() string
}

// ConfigCache provides caching for configuration
type ConfigCache struct {
	config    *ports.Configuration
	timestamp time.Time
	ttl       time.Duration
}

// NewCompositeConfigRepository creates a repository reading the environment
// and the settings file at $CCV_CONFIG_FILE or the default location
func NewCompositeConfigRepository() *CompositeConfigRepository {
	configPath := os.Getenv("CCV_CONFIG_FILE")
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}
	return NewCompositeConfigRepositoryAt(configPath)
}

// NewCompositeConfigRepositoryAt creates a repository backed by the settings file at configPath
func NewCompositeConfigRepositoryAt(configPath string) *CompositeConfigRepository {
	repo := &CompositeConfigRepository{
		sources: make([]ConfigSource, 0),
		cache: &ConfigCache{
			ttl: 5 * time.Minute,
		},
		configPath: configPath,
		validator:  NewConfigValidator(),
	}

	repo.AddSource(NewEnvironmentConfigSource())
	repo.AddSource(NewFileConfigSource(repo.configPath))

	return repo
}

// AddSource adds a configuration source
func (r *CompositeConfigRepository) AddSource(source ConfigSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
	r.cache.config = nil
}

// Load retrieves the current configuration
func (r *CompositeConfigRepository) Load() (*ports.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cache.config != nil && time.Since(r.cache.timestamp) < r.cache.ttl {
		return cloneConfiguration(r.cache.config), nil
	}

	config := r.LoadDefault()

	// Lower number = higher priority, so the highest priority source is applied last
	sortedSources := make([]ConfigSource, len(r.sources))
	copy(sortedSources, r.sources)
	sort.SliceStable(sortedSources, func(i, j int) bool {
		return sortedSources[i].Priority() > sortedSources[j].Priority()
	})

	for _, source := range sortedSources {
		sourceConfig, err := source.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s configuration: %w", source.Name(), err)
		}
		if sourceConfig != nil {
			config = mergeConfigurations(config, sourceConfig)
		}
	}

	if err := r.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	r.cache.config = config
	r.cache.timestamp = time.Now()

	return cloneConfiguration(config), nil
}

// Save persists the configuration
func (r *CompositeConfigRepository) Save(config *ports.Configuration) error {
	if err := r.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(r.configPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	r.mu.Lock()
	r.cache.config = nil
	r.mu.Unlock()

	return nil
}

// LoadDefault returns the default configuration
func (r *CompositeConfigRepository) LoadDefault() *ports.Configuration {
	config := &ports.Configuration{
		HomeDir:         defaultHomeDir(),
		CacheTTLSeconds: 600,
		CacheMaxEntries: 256,
		OverridePolicy:  string(stats.OverrideAsProjectSpecific),
		SeverityPolicy:  "fixed",
		LogLevel:        ports.LogLevelWarn,
		LogFormat:       "text",
		ScanDepth:       3,
	}
	config.SetTracking(true)
	return config
}

// Validate validates the configuration
func (r *CompositeConfigRepository) Validate(config *ports.Configuration) error {
	return r.validator.ValidateAll(config)
}

// GetConfigPath returns the path to the configuration file
func (r *CompositeConfigRepository) GetConfigPath() string {
	return r.configPath
}

// mergeConfigurations merges two configurations (source overwrites target)
func mergeConfigurations(target, source *ports.Configuration) *ports.Configuration {
	if source == nil {
		return target
	}
	if target == nil {
		return source
	}

	result := *target

	// String fields - override if not empty
	if source.HomeDir != "" {
		result.HomeDir = source.HomeDir
	}
	if source.OverridePolicy != "" {
		result.OverridePolicy = source.OverridePolicy
	}
	if source.SeverityPolicy != "" {
		result.SeverityPolicy = source.SeverityPolicy
	}
	if source.LogLevel != "" {
		result.LogLevel = source.LogLevel
	}
	if source.LogFormat != "" {
		result.LogFormat = source.LogFormat
	}
	if source.Editor != "" {
		result.Editor = source.Editor
	}
	if source.LogFile != "" {
		result.LogFile = source.LogFile
	}

	// Integer fields - override if not zero
	if source.CacheTTLSeconds != 0 {
		result.CacheTTLSeconds = source.CacheTTLSeconds
	}
	if source.CacheMaxEntries != 0 {
		result.CacheMaxEntries = source.CacheMaxEntries
	}
	if source.ScanDepth != 0 {
		result.ScanDepth = source.ScanDepth
	}

	// Pointer fields - override if set
	if source.SourceTracking != nil {
		result.SetTracking(*source.SourceTracking)
	}

	return &result
}

func cloneConfiguration(config *ports.Configuration) *ports.Configuration {
	clone := *config
	if config.SourceTracking != nil {
		clone.SetTracking(*config.SourceTracking)
	}
	return &clone
}

// FileConfigSource loads configuration from a JSON file. Comments and
// trailing commas are tolerated.
type FileConfigSource struct {
	filePath string
}

// NewFileConfigSource creates a new file configuration source
func NewFileConfigSource(filePath string) *FileConfigSource {
	return &FileConfigSource{
		filePath: filePath,
	}
}

// Load loads configuration from file
func (f *FileConfigSource) Load() (*ports.Configuration, error) {
	data, err := os.ReadFile(f.filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config ports.Configuration
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", f.filePath, err)
	}
	config.HomeDir = expandPath(config.HomeDir)
	config.LogFile = expandPath(config.LogFile)

	return &config, nil
}

// Priority returns the priority of this source (lower number = higher priority)
func (f *FileConfigSource) Priority() int {
	return 100
}

// Name returns the name of this source
func (f *FileConfigSource) Name() string {
	return "file"
}

// EnvironmentConfigSource loads configuration from CCV_* environment variables
type EnvironmentConfigSource struct{}

// NewEnvironmentConfigSource creates a new environment configuration source
func NewEnvironmentConfigSource() *EnvironmentConfigSource {
	return &EnvironmentConfigSource{}
}

// Load loads configuration from environment variables
func (e *EnvironmentConfigSource) Load() (*ports.Configuration, error) {
	config := &ports.Configuration{}

	if val := os.Getenv("CCV_HOME"); val != "" {
		config.HomeDir = expandPath(val)
	}
	if val := os.Getenv("CCV_SOURCE_TRACKING"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.SetTracking(enabled)
		}
	}
	if val := os.Getenv("CCV_CACHE_TTL"); val != "" {
		if ttl, err := strconv.Atoi(val); err == nil && ttl > 0 {
			config.CacheTTLSeconds = ttl
		}
	}
	if val := os.Getenv("CCV_CACHE_MAX_ENTRIES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			config.CacheMaxEntries = n
		}
	}
	if val := os.Getenv("CCV_OVERRIDE_POLICY"); val != "" {
		config.OverridePolicy = val
	}
	if val := os.Getenv("CCV_SEVERITY_POLICY"); val != "" {
		config.SeverityPolicy = val
	}
	if val := os.Getenv("CCV_LOG_LEVEL"); val != "" {
		config.LogLevel = ports.LogLevel(strings.ToLower(val))
	}
	if val := os.Getenv("CCV_LOG_FORMAT"); val != "" {
		config.LogFormat = strings.ToLower(val)
	}
	if val := os.Getenv("CCV_SCAN_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil && depth > 0 {
			config.ScanDepth = depth
		}
	}
	if val := os.Getenv("CCV_EDITOR"); val != "" {
		config.Editor = val
	}
	if val := os.Getenv("CCV_LOG_FILE"); val != "" {
		config.LogFile = expandPath(val)
	}

	return config, nil
}

// Priority returns the priority of this source (lower number = higher priority)
func (e *EnvironmentConfigSource) Priority() int {
	return 10
}

// Name returns the name of this source
func (e *EnvironmentConfigSource) Name() string {
	return "environment"
}

// getDefaultConfigPath returns the default configuration file path
func getDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ccview-config.json"
	}

	return filepath.Join(homeDir, ".config", "ccview", "config.json")
}

func defaultHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return homeDir
}
