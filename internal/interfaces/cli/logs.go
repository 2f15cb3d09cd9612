package cli

import (
	"fmt"
	"sort"

	"ccview.dev/cli/internal/application/ports"
	"github.com/spf13/cobra"
)

// NewConfigLogCommand creates the log subcommand
func NewConfigLogCommand(container *CLIContainer) *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect the persistent log file",
		Long: `Inspect the persistent log file set by log_file or CCV_LOG_FILE.

The file is capped at 10MB. When full it is renamed to <file>.1 and older
copies shift up, keeping five.`,
	}

	logCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the log file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := logArchive(container)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), archive.Path())
			return nil
		},
	})

	logCmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print every log entry as a JSON array, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := logArchive(container)
			if err != nil {
				return err
			}
			entries, err := archive.Export()
			if err != nil {
				return fmt.Errorf("failed to export logs: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	})

	logCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the log file and its rotated copies",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := logArchive(container)
			if err != nil {
				return err
			}
			if err := archive.Clear(); err != nil {
				return fmt.Errorf("failed to clear logs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", archive.Path())
			return nil
		},
	})

	logCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Count log entries by level",
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := logArchive(container)
			if err != nil {
				return err
			}
			stats, err := archive.Stats()
			if err != nil {
				return fmt.Errorf("failed to read logs: %w", err)
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			printLogStats(cmd, stats)
			return nil
		},
	})

	return logCmd
}

func logArchive(container *CLIContainer) (ports.LogArchive, error) {
	if container.LogArchive == nil {
		return nil, fmt.Errorf("no log file configured; set one with 'ccv config set --log-file <path>' or CCV_LOG_FILE")
	}
	return container.LogArchive, nil
}

func printLogStats(cmd *cobra.Command, stats *ports.LogStats) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d entries in %d files\n", stats.Total, len(stats.Files))

	levels := make([]string, 0, len(stats.ByLevel))
	for level := range stats.ByLevel {
		levels = append(levels, level)
	}
	sort.Strings(levels)
	for _, level := range levels {
		fmt.Fprintf(w, "  %-7s %d\n", level, stats.ByLevel[level])
	}
}
