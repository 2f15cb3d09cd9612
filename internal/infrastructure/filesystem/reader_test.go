package filesystem

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"ccview.dev/cli/internal/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryMap(scope config.Scope) map[string]config.ConfigEntry {
	m := make(map[string]config.ConfigEntry, len(scope.Entries))
	for _, e := range scope.Entries {
		m[e.Key] = e
	}
	return m
}

func TestReader_ReadUserScope_CollectsServersSettingsAndAgents(t *testing.T) {
	home := t.TempDir()
	claudeJSON := writeFile(t, home, ".claude.json", userClaudeJSON)
	settings := writeFile(t, home, ".claude/settings.json", `{"model": "opus", "mcpServers": {"memory": {"command": "mem"}}}`)
	agent := writeFile(t, home, ".claude/agents/review/reviewer.md", reviewerAgent)

	report, err := NewReader(home).ReadUserScope(context.Background())
	require.NoError(t, err)

	assert.Equal(t, config.SourceUser, report.Scope.Type)
	assert.Equal(t, config.PriorityUser, report.Scope.Priority)
	assert.Equal(t, []string{claudeJSON, settings, agent}, report.Files)
	assert.Empty(t, report.Warnings)

	entries := entryMap(report.Scope)
	assert.Len(t, entries, 5)
	assert.Equal(t, claudeJSON, entries["mcpServers.filesystem"].Source.Path)
	assert.Equal(t, "opus", entries["settings.model"].Value)
	assert.Equal(t, settings, entries["mcpServers.memory"].Source.Path)

	reviewer, ok := entries["agents.reviewer"]
	require.True(t, ok)
	value := reviewer.Value.(map[string]any)
	assert.Equal(t, "Reviews code", value["description"])
	assert.Equal(t, "You review code carefully.", value["prompt"])
	assert.Equal(t, []any{"Read", "Grep"}, value["tools"])
}

func TestReader_ReadUserScope_MissingFilesYieldEmptyScope(t *testing.T) {
	report, err := NewReader(t.TempDir()).ReadUserScope(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.Scope.Entries)
	assert.Empty(t, report.Files)
	assert.Empty(t, report.Warnings)
}

func TestReader_ReadProjectScope_LaterFilesOverrideEarlierOnes(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	mcp := writeFile(t, project, ".mcp.json", projectMcpJSON)
	writeFile(t, project, ".claude/settings.json", `{"model": "sonnet", "theme": "dark"}`)
	local := writeFile(t, project, ".claude/settings.local.json", `{"model": "haiku"}`)
	claudeJSON := writeFile(t, home, ".claude.json", `{"projects": {"`+filepath.ToSlash(project)+`": {"mcpServers": {"postgres": {"command": "pg-local"}}}}}`)

	report, err := NewReader(home).ReadProjectScope(context.Background(), project)
	require.NoError(t, err)

	entries := entryMap(report.Scope)
	assert.Equal(t, config.SourceProject, report.Scope.Type)
	assert.Len(t, report.Scope.Entries, 4)
	assert.Equal(t, "haiku", entries["settings.model"].Value)
	assert.Equal(t, local, entries["settings.model"].Source.Path)
	assert.Equal(t, "dark", entries["settings.theme"].Value)
	assert.Equal(t, map[string]any{"command": "pg-local"}, entries["mcpServers.postgres"].Value)
	assert.Equal(t, claudeJSON, entries["mcpServers.postgres"].Source.Path)
	assert.Equal(t, mcp, entries["mcpServers.github"].Source.Path)
	assert.Equal(t, mcp, report.Files[0])
}

func TestReader_ReadProjectScope_SkipsClaudeJSONWithoutProjectEntry(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	writeFile(t, home, ".claude.json", userClaudeJSON)

	report, err := NewReader(home).ReadProjectScope(context.Background(), project)
	require.NoError(t, err)

	assert.Empty(t, report.Files)
	assert.Empty(t, report.Scope.Entries)
}

func TestReader_MalformedFiles_BecomeWarnings(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	writeFile(t, project, ".mcp.json", `{"mcpServers": {`)
	writeFile(t, project, ".claude/settings.json", `{"model": "opus"}`)
	writeFile(t, project, ".claude/agents/broken.md", "---\nname: [unclosed\n---\nbody\n")

	report, err := NewReader(home).ReadProjectScope(context.Background(), project)
	require.NoError(t, err)

	require.Len(t, report.Warnings, 2)
	assert.True(t, strings.Contains(report.Warnings[0], ".mcp.json"))
	assert.True(t, strings.Contains(report.Warnings[1], "broken.md"))
	assert.Equal(t, []string{"settings.model"}, report.Scope.Keys())
	assert.Len(t, report.Files, 3)
}

func TestReader_AgentWithoutFrontMatter_UsesFileStem(t *testing.T) {
	home := t.TempDir()
	writeFile(t, home, ".claude/agents/helper.md", "Just a prompt.\n")

	report, err := NewReader(home).ReadUserScope(context.Background())
	require.NoError(t, err)

	entries := entryMap(report.Scope)
	require.Contains(t, entries, "agents.helper")
	assert.Equal(t, map[string]any{"prompt": "Just a prompt."}, entries["agents.helper"].Value)
}

func TestReader_CancelledContext_ReturnsError(t *testing.T) {
	home := t.TempDir()
	writeFile(t, home, ".claude.json", userClaudeJSON)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader(home).ReadUserScope(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReader_CandidatePaths_ProjectFirst(t *testing.T) {
	paths := NewReader("/home/u").CandidatePaths("/work/app")

	require.Len(t, paths, 7)
	assert.Equal(t, filepath.Join("/work/app", ".mcp.json"), paths[0])
	assert.Contains(t, paths, filepath.Join("/home/u", ".claude.json"))
	assert.Contains(t, paths, filepath.Join("/home/u", ".claude", "agents"))
}

func TestIsConfigFile(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"ClaudeJSON_ShouldMatch", "/home/u/.claude.json", true},
		{"McpJSON_ShouldMatch", "/work/app/.mcp.json", true},
		{"Settings_ShouldMatch", "/work/app/.claude/settings.json", true},
		{"LocalSettings_ShouldMatch", "/work/app/.claude/settings.local.json", true},
		{"NestedAgent_ShouldMatch", "/home/u/.claude/agents/team/reviewer.md", true},
		{"OtherJSON_ShouldNotMatch", "/work/app/package.json", false},
		{"MarkdownOutsideAgents_ShouldNotMatch", "/work/app/.claude/README.md", false},
		{"SwapFile_ShouldNotMatch", "/work/app/.claude/settings.json.swp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConfigFile(tt.path))
		})
	}
}
