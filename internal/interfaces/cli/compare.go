package cli

import (
	"fmt"

	"ccview.dev/cli/internal/application/commands"
	"ccview.dev/cli/internal/application/services"
	"github.com/spf13/cobra"
)

// NewCompareCommand creates the compare command
func NewCompareCommand(container *CLIContainer) *cobra.Command {
	var onlyDifferences, withValues bool

	cmd := &cobra.Command{
		Use:   "compare <left-project> <right-project>",
		Short: "Compare the effective configuration of two projects",
		Long: `Compare the effective configuration of two projects key by key.

Every key present on either side is reported as match, different,
only-left or only-right.

Examples:
  ccv compare ./api ./web
  ccv compare ./api ./web --only-differences --values`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			compareCmd := commands.NewCompareProjectsCommand(args[0], args[1])
			compareCmd.OnlyDifferences = onlyDifferences

			result, err := container.ComparisonService.CompareProjects(cmd.Context(), compareCmd)
			if err != nil {
				return err
			}
			if err := resultError(result); err != nil {
				return err
			}
			comparison := result.Data.(*services.Comparison)

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), struct {
					Left    string      `json:"left"`
					Right   string      `json:"right"`
					Entries interface{} `json:"entries"`
					Summary interface{} `json:"summary"`
				}{comparison.Left.ProjectDir, comparison.Right.ProjectDir, comparison.Entries, comparison.Summary})
			}
			writeWarnings(cmd.ErrOrStderr(), result.Warnings)
			fmt.Fprint(cmd.OutOrStdout(), renderComparison(comparison, withValues))
			return nil
		},
	}

	cmd.Flags().BoolVar(&onlyDifferences, "only-differences", false, "Hide keys whose values match")
	cmd.Flags().BoolVar(&withValues, "values", false, "Show a character diff for keys with different values")
	return cmd
}
