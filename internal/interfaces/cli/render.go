package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/application/services"
	"ccview.dev/cli/internal/core/diff"
	"ccview.dev/cli/internal/core/inheritance"
	"ccview.dev/cli/internal/core/stats"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const valuePreviewWidth = 48

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = cellStyle.Bold(true).Foreground(lipgloss.Color("86"))
	insertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var classColors = map[inheritance.Classification]lipgloss.Color{
	inheritance.ClassInherited:       lipgloss.Color("42"),
	inheritance.ClassOverride:        lipgloss.Color("214"),
	inheritance.ClassProjectSpecific: lipgloss.Color("39"),
}

var statusColors = map[diff.Status]lipgloss.Color{
	diff.StatusMatch:     lipgloss.Color("42"),
	diff.StatusDifferent: lipgloss.Color("196"),
	diff.StatusOnlyLeft:  lipgloss.Color("214"),
	diff.StatusOnlyRight: lipgloss.Color("39"),
}

// classBadge renders a classification in its color
func classBadge(class inheritance.Classification) string {
	return lipgloss.NewStyle().Foreground(classColors[class]).Render(class.String())
}

func statusBadge(status diff.Status) string {
	return lipgloss.NewStyle().Foreground(statusColors[status]).Render(status.String())
}

// renderTable renders rows under headers with padded cells
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// previewValue renders a value on one line, truncated for tables
func previewValue(value any) string {
	text, err := services.FormatValue(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	text = strings.Join(strings.Fields(text), " ")
	return truncateString(text, valuePreviewWidth)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintln(w, warnStyle.Render("warning: "+warning))
	}
}

// renderChain renders the classified items of a resolved project
func renderChain(view *services.ProjectView) string {
	rows := make([][]string, 0, len(view.Result.Items))
	for _, item := range view.Result.Items {
		rows = append(rows, []string{
			item.ConfigKey,
			classBadge(item.Classification),
			item.SourceType.String(),
			previewValue(item.CurrentValue),
		})
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Project: "+view.ProjectDir) + "\n")
	if len(rows) == 0 {
		b.WriteString(mutedStyle.Render("No configuration found.") + "\n")
		return b.String()
	}
	b.WriteString(renderTable([]string{"KEY", "CLASS", "SOURCE", "VALUE"}, rows) + "\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d keys: %d inherited, %d override, %d project-specific",
		len(view.Result.Items),
		view.Result.CountBy(inheritance.ClassInherited),
		view.Result.CountBy(inheritance.ClassOverride),
		view.Result.CountBy(inheritance.ClassProjectSpecific),
	)) + "\n")
	return b.String()
}

// renderStats renders the aggregate counts of a resolved project
func renderStats(s stats.Stats, policy stats.OverridePolicy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-18s %d\n", "Total:", s.TotalCount)
	fmt.Fprintf(&b, "%-18s %d (%.2f%%)\n", "Inherited:", s.Inherited.Count, s.Inherited.Percentage)
	fmt.Fprintf(&b, "%-18s %d (%.2f%%)\n", "Project-specific:", s.ProjectSpecific.Count, s.ProjectSpecific.Percentage)
	fmt.Fprintf(&b, "%-18s %d (%.2f%%)\n", "New:", s.New.Count, s.New.Percentage)
	if s.QuickStats != nil {
		if s.QuickStats.MostInheritedMcp != nil {
			fmt.Fprintf(&b, "%-18s %s\n", "Top MCP server:", *s.QuickStats.MostInheritedMcp)
		}
		if s.QuickStats.MostAddedAgent != nil {
			fmt.Fprintf(&b, "%-18s %s\n", "Top agent:", *s.QuickStats.MostAddedAgent)
		}
	}
	b.WriteString(mutedStyle.Render("Overrides counted as "+policy.String()) + "\n")
	return b.String()
}

// renderComparison renders a diff between two projects
func renderComparison(c *services.Comparison, withValues bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s ⇄ %s", c.Left.ProjectDir, c.Right.ProjectDir)) + "\n")

	if len(c.Entries) == 0 {
		b.WriteString(mutedStyle.Render("No entries to compare.") + "\n")
	} else {
		rows := make([][]string, 0, len(c.Entries))
		for _, entry := range c.Entries {
			left, right := "", ""
			if entry.HasLeft() {
				left = previewValue(entry.LeftValue)
			}
			if entry.HasRight() {
				right = previewValue(entry.RightValue)
			}
			rows = append(rows, []string{
				entry.CapabilityID,
				statusBadge(entry.Status),
				entry.Severity.String(),
				left,
				right,
			})
		}
		b.WriteString(renderTable([]string{"KEY", "STATUS", "SEVERITY", "LEFT", "RIGHT"}, rows) + "\n")
	}

	if withValues {
		for _, entry := range c.Entries {
			if entry.Status != diff.StatusDifferent {
				continue
			}
			b.WriteString(titleStyle.Render(entry.CapabilityID) + "\n")
			b.WriteString("  " + valueDiff(entry.LeftValue, entry.RightValue) + "\n")
		}
	}

	s := c.Summary
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d keys: %d match, %d different, %d only left, %d only right",
		s.Total, s.Match, s.Different, s.OnlyLeft, s.OnlyRight)) + "\n")
	return b.String()
}

// valueDiff renders a character diff between the canonical forms of two
// values. Deletions are wrapped in [-...-] and insertions in {+...+}.
func valueDiff(left, right any) string {
	l, _ := services.FormatValue(left)
	r, _ := services.FormatValue(right)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(l, r, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			b.WriteString(insertStyle.Render("{+" + d.Text + "+}"))
		case diffmatchpatch.DiffDelete:
			b.WriteString(deleteStyle.Render("[-" + d.Text + "-]"))
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

// renderProjects renders discovered projects
func renderProjects(projects []ports.ProjectInfo) string {
	if len(projects) == 0 {
		return mutedStyle.Render("No projects found.") + "\n"
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{
			p.Name,
			fmt.Sprintf("%d", p.McpServerCount),
			fmt.Sprintf("%d", p.AgentCount),
			fmt.Sprintf("%d", p.ConfigFileCount),
			sourceFlags(p.Sources),
			p.LastModified.Format("2006-01-02 15:04"),
			p.Path,
		})
	}
	return renderTable([]string{"NAME", "SERVERS", "AGENTS", "FILES", "SOURCES", "MODIFIED", "PATH"}, rows) + "\n"
}

func sourceFlags(s ports.ProjectSources) string {
	var parts []string
	if s.User {
		parts = append(parts, "user")
	}
	if s.Project {
		parts = append(parts, "project")
	}
	if s.Local {
		parts = append(parts, "local")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
