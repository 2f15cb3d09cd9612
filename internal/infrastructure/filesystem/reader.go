package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/core/config"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Reader implements ports.ConfigReader over the Claude configuration layout.
// Missing files are skipped; files that fail to parse produce warnings.
type Reader struct {
	homeDir string
}

// NewReader creates a reader using homeDir for user-level files
func NewReader(homeDir string) *Reader {
	return &Reader{homeDir: homeDir}
}

// HomeDir returns the directory user-level files are read from
func (r *Reader) HomeDir() string {
	return r.homeDir
}

// ReadUserScope reads ~/.claude.json, ~/.claude/settings.json and ~/.claude/agents
func (r *Reader) ReadUserScope(ctx context.Context) (*ports.ScopeReport, error) {
	claudeJSON, settings, agents := userPaths(r.homeDir)
	b := newScopeBuilder("user", config.SourceUser)

	if err := b.readJSON(ctx, claudeJSON, func(doc map[string]any, path string) {
		b.addServers(doc["mcpServers"], path)
	}); err != nil {
		return nil, err
	}
	if err := b.readJSON(ctx, settings, b.addSettings); err != nil {
		return nil, err
	}
	if err := b.readAgents(ctx, agents); err != nil {
		return nil, err
	}
	return b.report(), nil
}

// ReadProjectScope reads .mcp.json, the project entry of ~/.claude.json,
// .claude/settings.json, .claude/settings.local.json and .claude/agents.
// Later files override earlier ones within the scope.
func (r *Reader) ReadProjectScope(ctx context.Context, projectDir string) (*ports.ScopeReport, error) {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	mcp, settings, local, agents := projectPaths(absDir)
	claudeJSON, _, _ := userPaths(r.homeDir)
	b := newScopeBuilder("project", config.SourceProject)

	if err := b.readJSON(ctx, mcp, func(doc map[string]any, path string) {
		b.addServers(doc["mcpServers"], path)
	}); err != nil {
		return nil, err
	}
	if err := b.readJSON(ctx, claudeJSON, func(doc map[string]any, path string) {
		projects, _ := doc["projects"].(map[string]any)
		entry, ok := projects[absDir].(map[string]any)
		if !ok {
			b.dropFile(path)
			return
		}
		b.addServers(entry["mcpServers"], path)
	}); err != nil {
		return nil, err
	}
	for _, path := range []string{settings, local} {
		if err := b.readJSON(ctx, path, b.addSettings); err != nil {
			return nil, err
		}
	}
	if err := b.readAgents(ctx, agents); err != nil {
		return nil, err
	}
	return b.report(), nil
}

// CandidatePaths lists every configuration location for projectDir
func (r *Reader) CandidatePaths(projectDir string) []string {
	claudeJSON, userSettings, userAgents := userPaths(r.homeDir)
	mcp, settings, local, agents := projectPaths(projectDir)
	return []string{mcp, settings, local, agents, claudeJSON, userSettings, userAgents}
}

// scopeBuilder accumulates a scope where a later definition of a key
// replaces an earlier one
type scopeBuilder struct {
	scope    *config.Scope
	index    map[string]int
	files    []string
	warnings []string
}

func newScopeBuilder(name string, sourceType config.SourceType) *scopeBuilder {
	return &scopeBuilder{
		scope: config.NewScope(name, sourceType),
		index: make(map[string]int),
	}
}

func (b *scopeBuilder) set(key string, value any, path string) {
	if i, ok := b.index[key]; ok {
		b.scope.Entries[i].Value = value
		b.scope.Entries[i].Source.Path = path
		return
	}
	b.index[key] = len(b.scope.Entries)
	b.scope.Add(key, value, path)
}

func (b *scopeBuilder) warn(path string, err error) {
	b.warnings = append(b.warnings, fmt.Sprintf("%s: %v", path, err))
}

func (b *scopeBuilder) dropFile(path string) {
	if n := len(b.files); n > 0 && b.files[n-1] == path {
		b.files = b.files[:n-1]
	}
}

func (b *scopeBuilder) report() *ports.ScopeReport {
	return &ports.ScopeReport{
		Scope:    *b.scope,
		Files:    b.files,
		Warnings: b.warnings,
	}
}

// readJSON parses a JSONC object file and hands it to apply. A missing file
// is not an error; an unreadable or malformed one becomes a warning.
func (b *scopeBuilder) readJSON(ctx context.Context, path string, apply func(doc map[string]any, path string)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	b.files = append(b.files, path)
	if err != nil {
		b.warn(path, err)
		return nil
	}
	doc, err := decodeObject(data)
	if err != nil {
		b.warn(path, err)
		return nil
	}
	apply(doc, path)
	return nil
}

func (b *scopeBuilder) addServers(raw any, path string) {
	servers, ok := raw.(map[string]any)
	if !ok {
		if raw != nil {
			b.warn(path, fmt.Errorf("mcpServers is not an object"))
		}
		return
	}
	for _, name := range sortedKeys(servers) {
		b.set(ServerKeyPrefix+"."+name, servers[name], path)
	}
}

func (b *scopeBuilder) addSettings(doc map[string]any, path string) {
	for _, key := range sortedKeys(doc) {
		if key == "mcpServers" {
			b.addServers(doc[key], path)
			continue
		}
		b.set(SettingKeyPrefix+"."+key, doc[key], path)
	}
}

func (b *scopeBuilder) readAgents(ctx context.Context, dir string) error {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.md")
	if err != nil {
		b.warn(dir, err)
		return nil
	}
	sort.Strings(matches)
	for _, rel := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				b.files = append(b.files, path)
				b.warn(path, err)
			}
			continue
		}
		b.files = append(b.files, path)
		name, value, err := parseAgent(path, data)
		if err != nil {
			b.warn(path, err)
			continue
		}
		b.set(AgentKeyPrefix+"."+name, value, path)
	}
	return nil
}

// decodeObject parses JSON with comments and trailing commas into a map
func decodeObject(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("top-level value is not an object")
	}
	return doc, nil
}

// parseAgent reads a sub-agent markdown file. The YAML front matter becomes
// the value and the body is stored under "prompt".
func parseAgent(path string, data []byte) (string, map[string]any, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	front, body := splitFrontMatter(string(data))

	value := map[string]any{}
	if front != "" {
		if err := yaml.Unmarshal([]byte(front), &value); err != nil {
			return "", nil, fmt.Errorf("invalid front matter: %w", err)
		}
		if value == nil {
			value = map[string]any{}
		}
	}
	value["prompt"] = strings.TrimSpace(body)

	name := stem
	if n, ok := value["name"].(string); ok && strings.TrimSpace(n) != "" {
		name = strings.TrimSpace(n)
	}
	if err := config.ValidateKey(name); err != nil {
		return "", nil, fmt.Errorf("invalid agent name %q", name)
	}
	return name, value, nil
}

// splitFrontMatter separates a leading "---" delimited block from the body
func splitFrontMatter(content string) (front, body string) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", content
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}
	return "", content
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
