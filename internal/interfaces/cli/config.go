package cli

import (
	"fmt"
	"io"

	"ccview.dev/cli/internal/application/commands"
	"ccview.dev/cli/internal/application/ports"
	"github.com/spf13/cobra"
)

// NewConfigCommand creates the config command
func NewConfigCommand(container *CLIContainer) *cobra.Command {
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage ccview settings",
		Long: `Manage the settings of ccview itself.

Settings are read from CCV_* environment variables and the settings file;
environment variables win.`,
	}

	// Add subcommands
	configCmd.AddCommand(NewConfigShowCommand(container))
	configCmd.AddCommand(NewConfigPathCommand(container))
	configCmd.AddCommand(NewConfigInitCommand(container))
	configCmd.AddCommand(NewConfigSetCommand(container))
	configCmd.AddCommand(NewConfigLogCommand(container))

	return configCmd
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := container.ConfigService.LoadConfiguration(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), config)
			}
			printConfig(cmd.OutOrStdout(), config)
			return nil
		},
	}
}

func printConfig(w io.Writer, config *ports.Configuration) {
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintf(w, "Home Directory: %s\n", config.HomeDir)
	fmt.Fprintf(w, "Source Tracking: %t\n", config.TrackingEnabled())
	fmt.Fprintf(w, "Cache TTL: %ds\n", config.CacheTTLSeconds)
	fmt.Fprintf(w, "Cache Max Entries: %d\n", config.CacheMaxEntries)
	fmt.Fprintf(w, "Override Policy: %s\n", config.OverridePolicy)
	fmt.Fprintf(w, "Severity Policy: %s\n", config.SeverityPolicy)
	fmt.Fprintf(w, "Log Level: %s (%s)\n", config.LogLevel, config.LogFormat)
	fmt.Fprintf(w, "Scan Depth: %d\n", config.ScanDepth)
	fmt.Fprintf(w, "Editor: %s\n", displayEditor(config.Editor))
	fmt.Fprintf(w, "Log File: %s\n", displayLogFile(config.LogFile))
}

func displayLogFile(path string) string {
	if path == "" {
		return "(none)"
	}
	return path
}

func displayEditor(editor string) string {
	if editor == "" {
		return "(from $VISUAL/$EDITOR)"
	}
	return editor
}

// NewConfigPathCommand creates the path subcommand
func NewConfigPathCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show settings file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := container.ConfigService.GetConfigurationPath(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file path: %s\n", path)
			return nil
		},
	}
}

// NewConfigInitCommand creates the init subcommand
func NewConfigInitCommand(container *CLIContainer) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := container.ConfigService.InitializeConfiguration(cmd.Context(), commands.NewInitConfigurationCommand(force))
			if err != nil {
				return err
			}
			if err := resultError(result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", result.Message, result.Metadata["config_path"])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")
	return cmd
}

// NewConfigSetCommand creates the set subcommand
func NewConfigSetCommand(container *CLIContainer) *cobra.Command {
	var (
		tracking       bool
		overridePolicy string
		severityPolicy string
		scanDepth      int
		editor         string
		logFile        string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change individual settings",
		Long: `Change individual settings and save them to the settings file.

Examples:
  ccv config set --override-policy inherited
  ccv config set --tracking=false --editor "code --wait"
  ccv config set --log-file ~/.cache/ccview/ccv.log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			update := commands.NewUpdateConfigurationCommand()
			flags := cmd.Flags()
			if flags.Changed("tracking") {
				update.SourceTracking = &tracking
			}
			if flags.Changed("override-policy") {
				update.OverridePolicy = &overridePolicy
			}
			if flags.Changed("severity-policy") {
				update.SeverityPolicy = &severityPolicy
			}
			if flags.Changed("scan-depth") {
				update.ScanDepth = &scanDepth
			}
			if flags.Changed("editor") {
				update.Editor = &editor
			}
			if flags.Changed("log-file") {
				update.LogFile = &logFile
			}

			result, err := container.ConfigService.UpdateConfiguration(cmd.Context(), update)
			if err != nil {
				return err
			}
			if err := resultError(result); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&tracking, "tracking", true, "Enable source tracking")
	cmd.Flags().StringVar(&overridePolicy, "override-policy", "", "project-specific, inherited or new")
	cmd.Flags().StringVar(&severityPolicy, "severity-policy", "", "fixed or status")
	cmd.Flags().IntVar(&scanDepth, "scan-depth", defaultScanDepth, "Default depth for projects")
	cmd.Flags().StringVar(&editor, "editor", "", "Editor command used by open")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Persistent log file, empty to turn it off")
	return cmd
}
