package filesystem

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ccview.dev/cli/internal/application/ports"
	"github.com/bmatcuk/doublestar/v4"
)

// DefaultIgnorePatterns are directory globs the scanner never descends into
var DefaultIgnorePatterns = []string{".*", "node_modules", "vendor"}

// ProjectScanner discovers project directories holding Claude configuration.
// It implements ports.ProjectScanner.
type ProjectScanner struct {
	reader *Reader
	ignore []string
}

// NewProjectScanner creates a scanner that uses reader to count servers and agents
func NewProjectScanner(reader *Reader) *ProjectScanner {
	return &ProjectScanner{
		reader: reader,
		ignore: DefaultIgnorePatterns,
	}
}

// Scan walks root up to depth levels below it and reports every project found
func (s *ProjectScanner) Scan(ctx context.Context, root string, depth int) ([]ports.ProjectInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", absRoot)
	}

	var projects []ports.ProjectInfo
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			// Unreadable directories are skipped
			if d != nil && d.IsDir() && path != absRoot {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != absRoot {
			if s.ignored(d.Name()) {
				return fs.SkipDir
			}
			rel, _ := filepath.Rel(absRoot, path)
			if strings.Count(filepath.ToSlash(rel), "/")+1 > depth {
				return fs.SkipDir
			}
		}
		if !isProject(path) {
			return nil
		}
		project, err := s.describe(ctx, path)
		if err != nil {
			return err
		}
		projects = append(projects, *project)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectScanner) ignored(name string) bool {
	for _, pattern := range s.ignore {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// isProject reports whether dir has .mcp.json or .claude/settings.json
func isProject(dir string) bool {
	mcp, settings, _, _ := projectPaths(dir)
	return fileExists(mcp) || fileExists(settings)
}

func (s *ProjectScanner) describe(ctx context.Context, dir string) (*ports.ProjectInfo, error) {
	mcp, settings, local, _ := projectPaths(dir)
	claudeJSON, userSettings, _ := userPaths(s.reader.HomeDir())

	report, err := s.reader.ReadProjectScope(ctx, dir)
	if err != nil {
		return nil, err
	}

	project := &ports.ProjectInfo{
		ID:              ProjectID(dir),
		Name:            filepath.Base(dir),
		Path:            dir,
		ConfigFileCount: len(report.Files),
		Sources: ports.ProjectSources{
			User:    fileExists(claudeJSON) || fileExists(userSettings),
			Project: fileExists(mcp) || fileExists(settings),
			Local:   fileExists(local),
		},
	}
	for _, file := range report.Files {
		if info, err := os.Stat(file); err == nil && info.ModTime().After(project.LastModified) {
			project.LastModified = info.ModTime()
		}
	}
	if project.LastModified.IsZero() {
		project.LastModified = time.Now()
	}
	for _, key := range report.Scope.Keys() {
		switch {
		case strings.HasPrefix(key, ServerKeyPrefix+"."):
			project.McpServerCount++
		case strings.HasPrefix(key, AgentKeyPrefix+"."):
			project.AgentCount++
		}
	}
	return project, nil
}

// ProjectID derives a stable identifier from a project's absolute path
func ProjectID(path string) string {
	sum := sha1.Sum([]byte(path))
	return hex.EncodeToString(sum[:])[:12]
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
