package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/application/services"
	"ccview.dev/cli/internal/core/diff"
	"ccview.dev/cli/internal/core/inheritance"
	"ccview.dev/cli/internal/core/source"
	"ccview.dev/cli/internal/core/stats"
	"ccview.dev/cli/internal/infrastructure/config"
	"ccview.dev/cli/internal/infrastructure/filesystem"
	"ccview.dev/cli/internal/infrastructure/logging"
	"github.com/stretchr/testify/require"
)

const (
	fixtureUserJSON = `{
  "mcpServers": {
    "filesystem": {"command": "npx"},
    "github": {"command": "gh"}
  }
}
`
	fixtureProjectJSON = `{
  "mcpServers": {
    "github": {
      "command": "gh-pro"
    },
    "postgres": {
      "command": "pg"
    }
  }
}
`
	fixtureOtherJSON = `{
  "mcpServers": {
    "postgres": {"command": "pg"},
    "redis": {"command": "redis-mcp"}
  }
}
`
)

type fakeEditor struct {
	path string
	line int
	err  error
}

func (e *fakeEditor) Open(ctx context.Context, path string, line int) error {
	e.path, e.line = path, line
	return e.err
}

func (e *fakeEditor) ExecCommand(path string, line int) *exec.Cmd {
	e.path, e.line = path, line
	return exec.Command("true")
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(text string) error {
	c.text = text
	return c.err
}

type fixture struct {
	home      string
	project   string
	other     string
	editor    *fakeEditor
	clipboard *fakeClipboard
	container *CLIContainer
}

func writeFixtureFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newFixture wires real services over a temporary home and two projects
func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		home:      filepath.Join(root, "home"),
		project:   filepath.Join(root, "work", "api"),
		other:     filepath.Join(root, "work", "web"),
		editor:    &fakeEditor{},
		clipboard: &fakeClipboard{},
	}
	writeFixtureFile(t, filepath.Join(f.home, ".claude.json"), fixtureUserJSON)
	writeFixtureFile(t, filepath.Join(f.project, ".mcp.json"), fixtureProjectJSON)
	writeFixtureFile(t, filepath.Join(f.other, ".mcp.json"), fixtureOtherJSON)

	logger := logging.NewGateway(io.Discard, ports.LogLevelError, logging.FormatJSON)
	reader := filesystem.NewReader(f.home)
	inheritanceService := services.NewInheritanceService(reader, inheritance.NewResolver(), stats.NewCalculator(), logger)
	sourceService := services.NewSourceService(
		source.NewTracker(filesystem.NewLineLocator()),
		inheritanceService,
		f.editor,
		f.clipboard,
		logger,
	)
	repo := config.NewCompositeConfigRepositoryAt(filepath.Join(root, "settings", "config.json"))
	settings := repo.LoadDefault()

	f.container = &CLIContainer{
		ConfigService:      services.NewConfigurationService(repo, logger),
		InheritanceService: inheritanceService,
		ComparisonService:  services.NewComparisonService(inheritanceService, diff.NewEngine(), logger),
		SourceService:      sourceService,
		WatchService:       services.NewWatchService(filesystem.NewWatcher(logger), inheritanceService, sourceService, logger),
		ProjectScanner:     filesystem.NewProjectScanner(reader),
		ConfigRepo:         repo,
		Settings:           settings,
		Editor:             f.editor,
	}
	return f
}

// run executes the root command with args and captures its output
func (f *fixture) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(f.container)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
