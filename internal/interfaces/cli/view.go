package cli

import (
	"context"
	"fmt"
	"strings"

	"ccview.dev/cli/internal/application/commands"
	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/application/services"
	"ccview.dev/cli/internal/core/inheritance"
	"ccview.dev/cli/internal/core/source"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// NewViewCommand creates the view command
func NewViewCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "view [project-dir]",
		Short: "Browse the inheritance chain of a project interactively",
		Long: `Launch an interactive terminal viewer for the effective configuration of a
project. The view refreshes when configuration files change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runViewer(cmd.Context(), container, projectArg(args))
		},
	}
}

// runViewer starts the terminal viewer
func runViewer(ctx context.Context, container *CLIContainer, projectDir string) error {
	view, err := container.InheritanceService.Load(ctx, projectDir)
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newViewerModel(watchCtx, container, projectDir, view)
	program := tea.NewProgram(model, tea.WithAltScreen())

	go watchView(watchCtx, container, projectDir, program.Send)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}

// watchView sends a reload for every change until ctx ends. A watcher that
// fails is reported once so the status line shows live reload is off.
func watchView(ctx context.Context, container *CLIContainer, projectDir string, send func(tea.Msg)) {
	err := container.WatchService.Watch(ctx, projectDir, func(event ports.ChangeEvent, view *services.ProjectView, err error) {
		send(viewLoadedMsg{view: view, err: err, event: &event})
	})
	if err != nil && ctx.Err() == nil {
		send(watchFailedMsg{err: err})
	}
}

// viewFilters cycles through all items and then each classification
var viewFilters = []inheritance.Classification{
	"",
	inheritance.ClassInherited,
	inheritance.ClassOverride,
	inheritance.ClassProjectSpecific,
}

// viewerModel holds the state for the Bubble Tea viewer
type viewerModel struct {
	ctx          context.Context
	container    *CLIContainer
	projectDir   string
	view         *services.ProjectView
	filter       int
	selectedRow  int
	status       string
	windowWidth  int
	windowHeight int
	err          error
}

func newViewerModel(ctx context.Context, container *CLIContainer, projectDir string, view *services.ProjectView) viewerModel {
	return viewerModel{
		ctx:          ctx,
		container:    container,
		projectDir:   projectDir,
		view:         view,
		windowHeight: 24,
	}
}

// viewLoadedMsg carries a freshly resolved project
type viewLoadedMsg struct {
	view  *services.ProjectView
	err   error
	event *ports.ChangeEvent
}

// watchFailedMsg is sent when live reload stops
type watchFailedMsg struct {
	err error
}

// editorReadyMsg carries the location to open once it has been traced
type editorReadyMsg struct {
	loc *source.Location
}

// statusMsg replaces the status line
type statusMsg string

// errMsg is sent when an action fails
type errMsg struct {
	err error
}

// Init implements the Bubble Tea init method
func (m viewerModel) Init() tea.Cmd {
	return nil
}

// visibleItems returns the items that pass the current filter
func (m viewerModel) visibleItems() []inheritance.ChainItem {
	if m.view == nil || m.view.Result == nil {
		return nil
	}
	class := viewFilters[m.filter]
	if class == "" {
		return m.view.Result.Items
	}
	var items []inheritance.ChainItem
	for _, item := range m.view.Result.Items {
		if item.Classification == class {
			items = append(items, item)
		}
	}
	return items
}

func (m viewerModel) selected() (inheritance.ChainItem, bool) {
	items := m.visibleItems()
	if m.selectedRow < 0 || m.selectedRow >= len(items) {
		return inheritance.ChainItem{}, false
	}
	return items[m.selectedRow], true
}

// Update implements the Bubble Tea update method
func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case viewLoadedMsg:
		if msg.err != nil {
			m.status = "reload failed: " + msg.err.Error()
			return m, nil
		}
		m.view = msg.view
		m.err = nil
		if n := len(m.visibleItems()); m.selectedRow >= n {
			m.selectedRow = max(n-1, 0)
		}
		if msg.event != nil {
			m.status = fmt.Sprintf("reloaded after %s of %s", msg.event.Type, msg.event.Path)
		} else {
			m.status = "reloaded"
		}
		return m, nil

	case watchFailedMsg:
		m.status = "live reload off: " + msg.err.Error()
		return m, nil

	case editorReadyMsg:
		return m, m.execEditor(msg.loc)

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case errMsg:
		m.status = "error: " + msg.err.Error()
		return m, nil
	}

	return m, nil
}

func (m viewerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}

	case "down", "j":
		if m.selectedRow < len(m.visibleItems())-1 {
			m.selectedRow++
		}

	case "tab":
		m.filter = (m.filter + 1) % len(viewFilters)
		m.selectedRow = 0

	case "r":
		return m, m.reloadCmd()

	case "s":
		return m, m.toggleTrackingCmd()

	case "enter", "t":
		if item, ok := m.selected(); ok {
			return m, m.traceCmd(item.ConfigKey)
		}

	case "o":
		if item, ok := m.selected(); ok {
			return m, m.openCmd(item.ConfigKey)
		}

	case "c":
		if item, ok := m.selected(); ok {
			return m, m.copyCmd(item.ConfigKey, commands.CopyValue)
		}

	case "l":
		if item, ok := m.selected(); ok {
			return m, m.copyCmd(item.ConfigKey, commands.CopyLocation)
		}
	}
	return m, nil
}

func (m viewerModel) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		view, err := m.container.InheritanceService.Load(m.ctx, m.projectDir)
		return viewLoadedMsg{view: view, err: err}
	}
}

func (m viewerModel) toggleTrackingCmd() tea.Cmd {
	return func() tea.Msg {
		sources := m.container.SourceService
		sources.SetTrackingEnabled(!sources.IsTrackingEnabled())
		if sources.IsTrackingEnabled() {
			return statusMsg("source tracking enabled")
		}
		return statusMsg("source tracking disabled")
	}
}

func (m viewerModel) traceCmd(key string) tea.Cmd {
	return func() tea.Msg {
		traced, err := m.container.SourceService.Trace(m.ctx, commands.NewTraceSourceCommand(key, m.projectDir))
		if err != nil {
			return errMsg{err: err}
		}
		switch {
		case !traced.Tracking:
			return statusMsg("source tracking is disabled")
		case traced.Location == nil:
			return statusMsg(key + ": definition not found")
		default:
			return statusMsg(key + " → " + traced.Location.String())
		}
	}
}

// openCmd traces key in the background. The editor itself runs from Update
// through tea.ExecProcess, which releases the terminal while it is open.
func (m viewerModel) openCmd(key string) tea.Cmd {
	return func() tea.Msg {
		loc, err := m.container.SourceService.Locate(m.ctx, commands.NewOpenSourceCommand(key, m.projectDir))
		if err != nil {
			return errMsg{err: err}
		}
		return editorReadyMsg{loc: loc}
	}
}

func (m viewerModel) execEditor(loc *source.Location) tea.Cmd {
	if m.container.Editor == nil {
		return func() tea.Msg {
			return errMsg{err: commands.NewCollaboratorError("failed to open editor", fmt.Errorf("no editor configured"))}
		}
	}
	sources := m.container.SourceService
	return tea.ExecProcess(m.container.Editor.ExecCommand(loc.FilePath, loc.LineNumber), func(err error) tea.Msg {
		return editorExited(sources, loc, err)
	})
}

func editorExited(sources *services.SourceService, loc *source.Location, err error) tea.Msg {
	if err != nil {
		sources.EditorFailed(loc, err)
		return errMsg{err: commands.NewCollaboratorError("failed to open editor", err)}
	}
	return statusMsg("opened " + loc.String())
}

func (m viewerModel) copyCmd(key string, target commands.CopyTarget) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.container.SourceService.Copy(m.ctx, commands.NewCopyCommand(key, m.projectDir, target)); err != nil {
			return errMsg{err: err}
		}
		return statusMsg(fmt.Sprintf("copied %s of %s", target, key))
	}
}

// View implements the Bubble Tea view method
func (m viewerModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'q' to quit", m.err)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderItems(),
		m.renderDetail(),
		m.renderFooter(),
	)
}

// renderHeader renders the viewer header
func (m viewerModel) renderHeader() string {
	title := titleStyle.Render("ccview")

	filter := "all"
	if class := viewFilters[m.filter]; class != "" {
		filter = class.String()
	}
	info := fmt.Sprintf("Project: %s | Keys: %d | Filter: %s",
		m.view.ProjectDir, len(m.view.Result.Items), filter)

	s := m.view.Stats
	line2 := mutedStyle.Render(fmt.Sprintf("Inherited %d (%.2f%%) | Project-specific %d (%.2f%%) | New %d (%.2f%%)",
		s.Inherited.Count, s.Inherited.Percentage,
		s.ProjectSpecific.Count, s.ProjectSpecific.Percentage,
		s.New.Count, s.New.Percentage))

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Left, title, "  ", info),
		line2,
		"",
	)
}

// renderItems renders the list of classified keys
func (m viewerModel) renderItems() string {
	items := m.visibleItems()
	if len(items) == 0 {
		return mutedStyle.Render("\n  No keys match the current filter.\n")
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).
		Render(fmt.Sprintf("%-40s │ %-16s │ %-7s │ %s", "KEY", "CLASS", "SOURCE", "VALUE"))
	rows := []string{header}

	maxRows := m.windowHeight - 14
	if maxRows < 3 {
		maxRows = 3
	}
	start := 0
	if m.selectedRow >= maxRows {
		start = m.selectedRow - maxRows + 1
	}
	end := min(start+maxRows, len(items))

	for i := start; i < end; i++ {
		item := items[i]
		rowStyle := lipgloss.NewStyle()
		if i == m.selectedRow {
			rowStyle = rowStyle.Background(lipgloss.Color("240"))
		}
		row := fmt.Sprintf("%-40s │ %-16s │ %-7s │ %s",
			truncateString(item.ConfigKey, 40),
			item.Classification,
			item.SourceType,
			truncateString(previewValue(item.CurrentValue), 40),
		)
		rows = append(rows, rowStyle.Render(row))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderDetail renders the selected item
func (m viewerModel) renderDetail() string {
	item, ok := m.selected()
	if !ok {
		return ""
	}
	lines := []string{
		"",
		titleStyle.Render(item.ConfigKey) + "  " + classBadge(item.Classification),
		mutedStyle.Render("from " + item.SourceType.String() + " " + item.SourcePath),
		"value:    " + previewValue(item.CurrentValue),
	}
	if item.IsOverridden {
		lines = append(lines, "replaces: "+previewValue(item.OriginalValue))
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders the control instructions footer
func (m viewerModel) renderFooter() string {
	controls := mutedStyle.Render("Controls: [↑↓] Navigate | [Tab] Filter | [Enter] Trace | [o] Open | [c] Copy value | [l] Copy location | [s] Tracking | [r] Reload | [q] Quit")
	status := ""
	if m.status != "" {
		status = warnStyle.Render(m.status)
	}
	return lipgloss.JoinVertical(lipgloss.Left, "", status, controls)
}
