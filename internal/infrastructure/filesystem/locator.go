package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ccview.dev/cli/internal/core/config"
	"ccview.dev/cli/internal/core/source"
)

// LineLocator finds the line on which a dotted key is defined by scanning
// configuration files as text. It implements source.Locator.
type LineLocator struct{}

// NewLineLocator creates a new line locator
func NewLineLocator() *LineLocator {
	return &LineLocator{}
}

// Locate walks searchPaths in order and returns the first match.
// It returns an error only when nothing matched and some file could not be read.
func (l *LineLocator) Locate(ctx context.Context, key string, searchPaths []string) (*source.Location, error) {
	segments := config.Segments(key)
	patterns := make([]*regexp.Regexp, len(segments))
	for i, seg := range segments {
		patterns[i] = segmentPattern(seg)
	}

	var readErr error
	for _, path := range searchPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) && readErr == nil {
				readErr = fmt.Errorf("failed to read %s: %w", path, err)
			}
			continue
		}
		lines := strings.Split(string(data), "\n")

		var loc *source.Location
		if strings.EqualFold(filepath.Ext(path), ".md") {
			loc = locateAgent(path, lines, segments)
		} else {
			loc = locateKey(path, lines, patterns)
		}
		if loc != nil {
			return loc, nil
		}
	}
	return nil, readErr
}

var nameLine = regexp.MustCompile(`^\s*name\s*:\s*(.*?)\s*$`)

// locateAgent matches a sub-agent file whose stem or front matter name is the
// leaf of an agents.<name> key
func locateAgent(path string, lines []string, segments []string) *source.Location {
	if len(segments) != 2 || segments[0] != AgentKeyPrefix {
		return nil
	}
	leaf := segments[1]
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "---" {
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				break
			}
			m := nameLine.FindStringSubmatch(lines[i])
			if m == nil {
				continue
			}
			if strings.Trim(m[1], `"'`) == leaf || stem == leaf {
				return &source.Location{
					FilePath:     path,
					LineNumber:   i + 1,
					ColumnNumber: strings.Index(lines[i], "name") + 1,
					Context:      strings.TrimSpace(lines[i]),
				}
			}
			return nil
		}
	}
	if stem != leaf {
		return nil
	}
	first := ""
	if len(lines) > 0 {
		first = strings.TrimSpace(lines[0])
	}
	return &source.Location{FilePath: path, LineNumber: 1, ColumnNumber: 1, Context: first}
}

// locateKey walks the key segments through the file. An intermediate segment
// that never appears is skipped; the leaf must match.
func locateKey(path string, lines []string, patterns []*regexp.Regexp) *source.Location {
	line, col := 0, 0
	for i, pattern := range patterns {
		foundLine, foundCol, ok := findFrom(lines, pattern, line, col)
		if !ok {
			if i == len(patterns)-1 {
				return nil
			}
			continue
		}
		line, col = foundLine, foundCol
		if i == len(patterns)-1 {
			return &source.Location{
				FilePath:     path,
				LineNumber:   line + 1,
				ColumnNumber: col + 1,
				Context:      strings.TrimSpace(lines[line]),
			}
		}
		col++
	}
	return nil
}

// findFrom returns the first match at or after (line, col)
func findFrom(lines []string, pattern *regexp.Regexp, line, col int) (int, int, bool) {
	for i := line; i < len(lines); i++ {
		text := lines[i]
		offset := 0
		if i == line {
			if col >= len(text) {
				continue
			}
			offset = col
		}
		if m := pattern.FindStringSubmatchIndex(text[offset:]); m != nil {
			return i, offset + m[2], true
		}
	}
	return 0, 0, false
}

// segmentPattern matches a segment as a JSON key or a YAML key.
// The first submatch marks where the key text starts.
func segmentPattern(segment string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(segment)
	return regexp.MustCompile(`(?:^\s*-?\s*|[{,]\s*|^|\s)("` + quoted + `"\s*:|` + quoted + `\s*:)`)
}
