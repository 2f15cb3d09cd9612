package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"runtime/debug"
	"strings"

	"ccview.dev/cli/internal/application/commands"
	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/application/services"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// CLIContainer holds all the dependencies for CLI commands
type CLIContainer struct {
	ConfigService      *services.ConfigurationService
	InheritanceService *services.InheritanceService
	ComparisonService  *services.ComparisonService
	SourceService      *services.SourceService
	WatchService       *services.WatchService
	ProjectScanner     ports.ProjectScanner
	ConfigRepo         ports.ConfigurationRepository
	Settings           *ports.Configuration
	Editor             EditorCommander
	LogArchive         ports.LogArchive // nil without a log file
	MainContainer      interface{}      // Will be set to *di.Container, avoiding circular import
}

// EditorCommander prepares the editor process that the viewer runs in the
// foreground while it gives up the terminal
type EditorCommander interface {
	ExecCommand(path string, line int) *exec.Cmd
}

// NewRootCommand RootCommand represents the base command when called without any subcommands
func NewRootCommand(container *CLIContainer) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "ccv",
		Short: "ccview - inspect layered Claude configuration",
		Long: `ccview resolves the user-level and project-level Claude configuration
(MCP servers, sub-agents and settings) into the effective configuration,
classifies every key as inherited, overridden or project-specific, traces
keys back to the file and line that defined them, and compares projects.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Apply configuration overrides from flags
			if err := applyConfigurationOverrides(cmd, container); err != nil {
				return fmt.Errorf("failed to apply configuration overrides: %w", err)
			}
			return nil
		},
	}

	// Set custom version template
	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	// Add persistent flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Settings file path (default is $HOME/.config/ccview/config.json)")
	rootCmd.PersistentFlags().String("home", "", "Home directory holding user-level Claude configuration")
	rootCmd.PersistentFlags().Bool("no-tracking", false, "Disable source tracking")
	rootCmd.PersistentFlags().Bool("json", false, "Print results as JSON")

	// Add subcommands
	rootCmd.AddCommand(NewResolveCommand(container))
	rootCmd.AddCommand(NewStatsCommand(container))
	rootCmd.AddCommand(NewCompareCommand(container))
	rootCmd.AddCommand(NewTraceCommand(container))
	rootCmd.AddCommand(NewOpenCommand(container))
	rootCmd.AddCommand(NewCopyCommand(container))
	rootCmd.AddCommand(NewProjectsCommand(container))
	rootCmd.AddCommand(NewViewCommand(container))
	rootCmd.AddCommand(NewWatchCommand(container))
	rootCmd.AddCommand(NewConfigCommand(container))

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

// configurationOverrider is implemented by the DI container
type configurationOverrider interface {
	ApplyConfigPathOverride(path string) error
	ApplyHomeOverride(home string) error
	ApplyDebugOverride(debug bool) error
	ApplyTrackingOverride(enabled bool) error
}

// applyConfigurationOverrides applies configuration overrides from command line flags
func applyConfigurationOverrides(cmd *cobra.Command, container *CLIContainer) error {
	mainContainer, ok := container.MainContainer.(configurationOverrider)
	if !ok {
		// Silently continue if container doesn't support overrides
		return nil
	}

	flags := cmd.Flags()

	// The settings file goes first since it rebuilds every service
	if flags.Changed("config") {
		path, _ := flags.GetString("config")
		if err := mainContainer.ApplyConfigPathOverride(path); err != nil {
			return fmt.Errorf("failed to override settings file: %w", err)
		}
	}

	if flags.Changed("home") {
		home, _ := flags.GetString("home")
		if err := mainContainer.ApplyHomeOverride(home); err != nil {
			return fmt.Errorf("failed to override home directory: %w", err)
		}
	}

	if debugOn, _ := flags.GetBool("debug"); debugOn {
		if err := mainContainer.ApplyDebugOverride(true); err != nil {
			return err
		}
	}

	if noTracking, _ := flags.GetBool("no-tracking"); noTracking {
		if err := mainContainer.ApplyTrackingOverride(false); err != nil {
			return err
		}
	}

	return nil
}

// jsonOutput reports whether --json was given
func jsonOutput(cmd *cobra.Command) bool {
	on, _ := cmd.Flags().GetBool("json")
	return on
}

// projectArg returns the first positional argument or the working directory
func projectArg(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0]
	}
	return "."
}

// resultError turns a failed command result into an error
func resultError(result *commands.CommandResult) error {
	if result.Success {
		return nil
	}
	if len(result.Errors) == 0 {
		return fmt.Errorf("%s", result.Message)
	}
	return fmt.Errorf("%s: %s", result.Message, strings.Join(result.Errors, "; "))
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context, container *CLIContainer) {
	rootCmd := NewRootCommand(container)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
