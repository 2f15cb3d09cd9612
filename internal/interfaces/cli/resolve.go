package cli

import (
	"fmt"

	"ccview.dev/cli/internal/application/commands"
	"ccview.dev/cli/internal/application/services"
	"ccview.dev/cli/internal/core/stats"
	"github.com/spf13/cobra"
)

// NewResolveCommand creates the resolve command
func NewResolveCommand(container *CLIContainer) *cobra.Command {
	var overridePolicy string

	cmd := &cobra.Command{
		Use:   "resolve [project-dir]",
		Short: "Show the effective configuration of a project",
		Long: `Resolve the user-level and project-level configuration of a project into
its effective configuration and classify every key.

Examples:
  ccv resolve
  ccv resolve ~/work/api --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, policy, err := resolveProject(cmd, container, projectArg(args), overridePolicy)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			writeWarnings(cmd.ErrOrStderr(), view.Warnings())
			fmt.Fprint(cmd.OutOrStdout(), renderChain(view))
			fmt.Fprint(cmd.OutOrStdout(), renderStats(view.Stats, policy))
			return nil
		},
	}

	cmd.Flags().StringVar(&overridePolicy, "override-policy", "", "Bucket overrides are counted in (project-specific, inherited, new)")
	return cmd
}

// NewStatsCommand creates the stats command
func NewStatsCommand(container *CLIContainer) *cobra.Command {
	var overridePolicy string

	cmd := &cobra.Command{
		Use:   "stats [project-dir]",
		Short: "Show inheritance statistics of a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, policy, err := resolveProject(cmd, container, projectArg(args), overridePolicy)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), view.Stats)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderStats(view.Stats, policy))
			return nil
		},
	}

	cmd.Flags().StringVar(&overridePolicy, "override-policy", "", "Bucket overrides are counted in (project-specific, inherited, new)")
	return cmd
}

// resolveProject runs the resolve command, falling back to the configured
// override policy when none is given
func resolveProject(cmd *cobra.Command, container *CLIContainer, projectDir, overridePolicy string) (*services.ProjectView, stats.OverridePolicy, error) {
	if overridePolicy == "" && container.Settings != nil {
		overridePolicy = container.Settings.OverridePolicy
	}

	resolveCmd := commands.NewResolveInheritanceCommand(projectDir)
	resolveCmd.OverridePolicy = overridePolicy

	result, err := container.InheritanceService.ResolveInheritance(cmd.Context(), resolveCmd)
	if err != nil {
		return nil, "", err
	}
	if err := resultError(result); err != nil {
		return nil, "", err
	}

	policy, _ := stats.ParseOverridePolicy(overridePolicy)
	return result.Data.(*services.ProjectView), policy, nil
}
