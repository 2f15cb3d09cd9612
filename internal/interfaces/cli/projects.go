package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const defaultScanDepth = 3

// NewProjectsCommand creates the projects command
func NewProjectsCommand(container *CLIContainer) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "projects [root]",
		Short: "List projects that carry their own Claude configuration",
		Long: `Scan a directory tree for projects with a .mcp.json or .claude/settings.json.

Hidden directories and node_modules are skipped.

Examples:
  ccv projects ~/work
  ccv projects ~/work --depth 5 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("depth") && container.Settings != nil && container.Settings.ScanDepth > 0 {
				depth = container.Settings.ScanDepth
			}

			projects, err := container.ProjectScanner.Scan(cmd.Context(), projectArg(args), depth)
			if err != nil {
				return fmt.Errorf("failed to scan for projects: %w", err)
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), projects)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderProjects(projects))
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", defaultScanDepth, "Maximum directory depth to scan")
	return cmd
}
