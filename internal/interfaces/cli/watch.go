package cli

import (
	"fmt"
	"io"
	"time"

	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/application/services"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command
func NewWatchCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [project-dir]",
		Short: "Re-resolve a project whenever its configuration changes",
		Long: `Watch the user-level and project-level configuration files of a project
and print updated statistics after every change. Press Ctrl+C to stop.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := projectArg(args)
			out := cmd.OutOrStdout()
			asJSON := jsonOutput(cmd)

			view, err := container.InheritanceService.Load(cmd.Context(), projectDir)
			if err != nil {
				return err
			}
			printWatchUpdate(out, asJSON, nil, view)

			return container.WatchService.Watch(cmd.Context(), projectDir, func(event ports.ChangeEvent, view *services.ProjectView, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reload failed after %s: %v\n", event.Path, err)
					return
				}
				printWatchUpdate(out, asJSON, &event, view)
			})
		},
	}
}

func printWatchUpdate(out io.Writer, asJSON bool, event *ports.ChangeEvent, view *services.ProjectView) {
	if asJSON {
		_ = writeJSON(out, struct {
			Event *ports.ChangeEvent `json:"event,omitempty"`
			Stats interface{}        `json:"stats"`
		}{event, view.Stats})
		return
	}

	at := view.ResolvedAt.Format(time.TimeOnly)
	summary := fmt.Sprintf("%d keys: %d inherited, %d project-specific, %d new",
		view.Stats.TotalCount, view.Stats.Inherited.Count, view.Stats.ProjectSpecific.Count, view.Stats.New.Count)
	if event == nil {
		fmt.Fprintf(out, "[%s] %s %s\n", at, titleStyle.Render("watching "+view.ProjectDir), summary)
		return
	}
	fmt.Fprintf(out, "[%s] %s %s → %s\n", at, event.Type, event.Path, summary)
}
