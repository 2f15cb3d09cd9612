package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeFile creates path (and its parents) under root with content
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const userClaudeJSON = `{
  // user servers
  "mcpServers": {
    "filesystem": {"command": "npx", "args": ["fs"]},
    "github": {"command": "gh-mcp"},
  },
  "projects": {}
}`

const projectMcpJSON = `{
  "mcpServers": {
    "github": {
      "command": "gh-mcp",
      "env": {"TOKEN": "x"}
    },
    "postgres": {
      "command": "pg-mcp"
    }
  }
}`

const reviewerAgent = `---
name: reviewer
description: Reviews code
tools: [Read, Grep]
---

You review code carefully.
`
