package cli

import (
	"fmt"

	"ccview.dev/cli/internal/application/commands"
	"github.com/spf13/cobra"
)

// NewTraceCommand creates the trace command
func NewTraceCommand(container *CLIContainer) *cobra.Command {
	var projectDir string
	var paths []string

	cmd := &cobra.Command{
		Use:   "trace <key>",
		Short: "Find the file and line that defines a key",
		Long: `Trace a configuration key back to the file and line that defined it.

Project files are searched before user files unless --path is given.

Examples:
  ccv trace mcpServers.github
  ccv trace settings.model --project ~/work/api
  ccv trace agents.reviewer --path ~/.claude/agents/reviewer.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traceCmd := commands.NewTraceSourceCommand(args[0], projectDir)
			traceCmd.SearchPaths = paths

			traced, err := container.SourceService.Trace(cmd.Context(), traceCmd)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), traced)
			}

			out := cmd.OutOrStdout()
			switch {
			case !traced.Tracking:
				fmt.Fprintln(out, mutedStyle.Render("Source tracking is disabled."))
			case traced.Location == nil:
				fmt.Fprintf(out, "%s: definition not found (searched %d files)\n", traced.Key, len(traced.SearchPaths))
			default:
				fmt.Fprintf(out, "%s %s\n", titleStyle.Render(traced.Key), traced.Location.String())
				if traced.Location.Context != "" {
					fmt.Fprintln(out, mutedStyle.Render("  "+traced.Location.Context))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "project", "p", ".", "Project directory whose files are searched")
	cmd.Flags().StringSliceVar(&paths, "path", nil, "Search only these files, in order")
	return cmd
}

// NewOpenCommand creates the open command
func NewOpenCommand(container *CLIContainer) *cobra.Command {
	var projectDir string

	cmd := &cobra.Command{
		Use:   "open <key>",
		Short: "Open the file defining a key in your editor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := container.SourceService.OpenInEditor(cmd.Context(), commands.NewOpenSourceCommand(args[0], projectDir))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", loc.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "project", "p", ".", "Project directory whose files are searched")
	return cmd
}

// NewCopyCommand creates the copy command
func NewCopyCommand(container *CLIContainer) *cobra.Command {
	var projectDir string
	var location bool

	cmd := &cobra.Command{
		Use:   "copy <key>",
		Short: "Copy a key's effective value or location to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := commands.CopyValue
			if location {
				target = commands.CopyLocation
			}

			text, err := container.SourceService.Copy(cmd.Context(), commands.NewCopyCommand(args[0], projectDir, target))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %s of %s: %s\n", target, args[0], truncateString(text, valuePreviewWidth))
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectDir, "project", "p", ".", "Project directory")
	cmd.Flags().BoolVar(&location, "location", false, "Copy file:line instead of the value")
	return cmd
}
