package di

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/application/services"
	"ccview.dev/cli/internal/core/diff"
	"ccview.dev/cli/internal/core/inheritance"
	"ccview.dev/cli/internal/core/source"
	"ccview.dev/cli/internal/core/stats"
	"ccview.dev/cli/internal/infrastructure/config"
	"ccview.dev/cli/internal/infrastructure/desktop"
	"ccview.dev/cli/internal/infrastructure/filesystem"
	"ccview.dev/cli/internal/infrastructure/logging"
	"ccview.dev/cli/internal/interfaces/cli"
)

// Container holds all application dependencies
type Container struct {
	// Configuration
	ConfigRepo    ports.ConfigurationRepository
	ConfigService *services.ConfigurationService
	Settings      *ports.Configuration

	// Core
	Resolver   *inheritance.Resolver
	Calculator *stats.Calculator
	DiffEngine *diff.Engine
	Tracker    *source.Tracker

	// Infrastructure
	Reader    *filesystem.Reader
	Scanner   *filesystem.ProjectScanner
	Watcher   *filesystem.Watcher
	Editor    *desktop.EditorLauncher
	Clipboard *desktop.ClipboardWriter

	// Application services
	InheritanceService *services.InheritanceService
	ComparisonService  *services.ComparisonService
	SourceService      *services.SourceService
	WatchService       *services.WatchService

	// CLI
	CLIContainer *cli.CLIContainer

	// Logger
	Logger *logging.Gateway
}

// NewContainer creates and configures the dependency injection container
func NewContainer() (*Container, error) {
	return NewContainerWithRepository(config.NewCompositeConfigRepository())
}

// NewContainerWithRepository builds the container on top of an existing
// settings repository
func NewContainerWithRepository(repo ports.ConfigurationRepository) (*Container, error) {
	container := &Container{
		Logger:       logging.NewDefaultGateway(),
		ConfigRepo:   repo,
		CLIContainer: &cli.CLIContainer{},
	}

	if err := container.initializeComponents(); err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return container, nil
}

// initializeComponents loads settings and wires every component from them
func (c *Container) initializeComponents() error {
	// 1. Load configuration
	settings, err := c.ConfigRepo.Load()
	if err != nil {
		c.Logger.LogError(err, "Failed to load configuration, using defaults", nil)
		settings = c.ConfigRepo.LoadDefault()
	}
	c.Settings = settings

	// 2. Configure logging; a log file is written alongside stderr
	output := "stderr"
	if settings.LogFile != "" {
		output = settings.LogFile
	}
	c.Logger.SetLogLevel(logging.ParseLevel(string(settings.LogLevel)))
	if err := c.Logger.ConfigureLogging(&ports.LoggingConfig{
		Level:       c.Logger.GetLogLevel(),
		Format:      settings.LogFormat,
		Output:      output,
		MaxFileSize: logging.DefaultMaxFileSize,
		MaxFiles:    logging.DefaultMaxFiles,
	}); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	return c.wire()
}

// wire builds the object graph from the current settings
func (c *Container) wire() error {
	settings := c.Settings

	// 1. Core domain
	policy, err := stats.ParseOverridePolicy(settings.OverridePolicy)
	if err != nil {
		return err
	}
	severity, err := diff.ParseSeverityPolicy(settings.SeverityPolicy)
	if err != nil {
		return err
	}
	c.Resolver = inheritance.NewResolver()
	c.Calculator = stats.NewCalculator(stats.WithOverridePolicy(policy))
	c.DiffEngine = diff.NewEngine(diff.WithSeverityPolicy(severity))

	// 2. Infrastructure
	home := settings.HomeDir
	if home == "" {
		if home, err = os.UserHomeDir(); err != nil {
			return fmt.Errorf("failed to determine home directory: %w", err)
		}
	}
	c.Reader = filesystem.NewReader(home)
	c.Scanner = filesystem.NewProjectScanner(c.Reader)
	c.Watcher = filesystem.NewWatcher(c.Logger)
	c.Editor = desktop.NewEditorLauncher(settings.Editor)
	c.Clipboard = desktop.NewClipboardWriter()

	// The tracker's expiry goroutine cannot be stopped, so an existing
	// tracker is reconfigured in place whenever its TTL allows
	enabled := settings.TrackingEnabled()
	ttl := time.Duration(settings.CacheTTLSeconds) * time.Second
	if c.Tracker != nil && c.Tracker.Reconfigure(ttl, settings.CacheMaxEntries) {
		// Keep a runtime override across rewiring
		c.Tracker.SetTrackingEnabled(enabled && c.Tracker.IsTrackingEnabled())
	} else {
		if c.Tracker != nil {
			enabled = enabled && c.Tracker.IsTrackingEnabled()
		}
		c.Tracker = source.NewTracker(filesystem.NewLineLocator(),
			source.WithTTL(ttl),
			source.WithMaxEntries(settings.CacheMaxEntries),
			source.WithEnabled(enabled),
		)
	}

	// 3. Application services
	c.ConfigService = services.NewConfigurationService(c.ConfigRepo, c.Logger)
	c.InheritanceService = services.NewInheritanceService(c.Reader, c.Resolver, c.Calculator, c.Logger)
	c.ComparisonService = services.NewComparisonService(c.InheritanceService, c.DiffEngine, c.Logger)
	c.SourceService = services.NewSourceService(c.Tracker, c.InheritanceService, c.Editor, c.Clipboard, c.Logger)
	c.WatchService = services.NewWatchService(c.Watcher, c.InheritanceService, c.SourceService, c.Logger)

	var archive ports.LogArchive
	if path := c.Logger.LogFile(); path != "" {
		archive = logging.NewFileArchive(path, logging.DefaultMaxFiles)
	}

	// 4. CLI container, updated in place so commands see rewired services
	*c.CLIContainer = cli.CLIContainer{
		ConfigService:      c.ConfigService,
		InheritanceService: c.InheritanceService,
		ComparisonService:  c.ComparisonService,
		SourceService:      c.SourceService,
		WatchService:       c.WatchService,
		ProjectScanner:     c.Scanner,
		ConfigRepo:         c.ConfigRepo,
		Settings:           c.Settings,
		Editor:             c.Editor,
		LogArchive:         archive,
		MainContainer:      c, // Reference to self for override methods
	}

	c.Logger.Log(ports.LogLevelDebug, "Dependency injection container initialized", map[string]interface{}{
		"home":            home,
		"override_policy": policy.String(),
		"tracking":        c.Tracker.IsTrackingEnabled(),
	})
	return nil
}

// GetCLIContainer returns the CLI container for command execution
func (c *Container) GetCLIContainer() *cli.CLIContainer {
	return c.CLIContainer
}

// Shutdown releases resources held by the container
func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.Log(ports.LogLevelDebug, "Shutting down application", nil)
	if c.Tracker != nil {
		c.Tracker.ClearCache()
	}
	return c.Logger.Close()
}

// GetVersion returns version information
func (c *Container) GetVersion() map[string]string {
	return map[string]string{
		"version":    cli.Version,
		"build_time": cli.BuildTime,
	}
}

// ApplyConfigPathOverride switches to the settings file at path and rewires
func (c *Container) ApplyConfigPathOverride(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path cannot be empty")
	}
	c.ConfigRepo = config.NewCompositeConfigRepositoryAt(path)
	return c.initializeComponents()
}

// ApplyHomeOverride reads user-level configuration from home and rewires
func (c *Container) ApplyHomeOverride(home string) error {
	if strings.TrimSpace(home) == "" {
		return fmt.Errorf("home directory cannot be empty")
	}
	info, err := os.Stat(home)
	if err != nil {
		return fmt.Errorf("home directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("home directory %s is not a directory", home)
	}
	c.Settings.HomeDir = home
	return c.wire()
}

// ApplyDebugOverride switches logging to debug level
func (c *Container) ApplyDebugOverride(debug bool) error {
	if debug {
		c.Logger.SetLogLevel(ports.LogLevelDebug)
	}
	return nil
}

// ApplyTrackingOverride turns source tracking on or off for this run
func (c *Container) ApplyTrackingOverride(enabled bool) error {
	c.SourceService.SetTrackingEnabled(enabled)
	return nil
}
