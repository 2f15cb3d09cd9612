package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"ccview.dev/cli/internal/application/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCommand_PrintsInitialStatsAndStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	cmd := NewRootCommand(f.container)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch", f.project})

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, stdout.String(), "watching "+f.project)
	assert.Contains(t, stdout.String(), "3 keys: 1 inherited, 2 project-specific, 0 new")
}

func TestPrintWatchUpdate(t *testing.T) {
	f := newFixture(t)
	view, err := f.container.InheritanceService.Load(context.Background(), f.project)
	require.NoError(t, err)
	event := &ports.ChangeEvent{Path: "/p/.mcp.json", Type: ports.ChangeModify}

	var text bytes.Buffer
	printWatchUpdate(&text, false, event, view)
	assert.Contains(t, text.String(), "modify /p/.mcp.json → 3 keys")

	var out bytes.Buffer
	printWatchUpdate(&out, true, event, view)
	var decoded struct {
		Event struct {
			Path string `json:"path"`
		} `json:"event"`
		Stats struct {
			TotalCount int `json:"totalCount"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "/p/.mcp.json", decoded.Event.Path)
	assert.Equal(t, 3, decoded.Stats.TotalCount)
}
