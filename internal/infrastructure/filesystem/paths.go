// Package filesystem reads Claude configuration files from disk and provides
// the locator, project scanner and watcher built on them.
package filesystem

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Configuration file names
const (
	ClaudeJSONFile    = ".claude.json"
	McpJSONFile       = ".mcp.json"
	ClaudeDir         = ".claude"
	SettingsFile      = "settings.json"
	LocalSettingsFile = "settings.local.json"
	AgentsDir         = "agents"
)

// Key prefixes produced by the reader
const (
	ServerKeyPrefix  = "mcpServers"
	AgentKeyPrefix   = "agents"
	SettingKeyPrefix = "settings"
)

var configFilePatterns = []string{
	"**/" + ClaudeJSONFile,
	"**/" + McpJSONFile,
	"**/" + ClaudeDir + "/settings*.json",
	"**/" + ClaudeDir + "/" + AgentsDir + "/**/*.md",
}

// IsConfigFile reports whether path names a file the reader understands
func IsConfigFile(path string) bool {
	name := strings.TrimPrefix(filepath.ToSlash(path), "/")
	for _, pattern := range configFilePatterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// userPaths lists the user-level configuration locations under home
func userPaths(home string) (claudeJSON, settings, agents string) {
	return filepath.Join(home, ClaudeJSONFile),
		filepath.Join(home, ClaudeDir, SettingsFile),
		filepath.Join(home, ClaudeDir, AgentsDir)
}

// projectPaths lists the project-level configuration locations under dir
func projectPaths(dir string) (mcp, settings, local, agents string) {
	return filepath.Join(dir, McpJSONFile),
		filepath.Join(dir, ClaudeDir, SettingsFile),
		filepath.Join(dir, ClaudeDir, LocalSettingsFile),
		filepath.Join(dir, ClaudeDir, AgentsDir)
}
