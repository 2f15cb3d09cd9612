// Package desktop launches the user's editor and writes to the system clipboard.
package desktop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// ErrEditorFailed is returned when the editor could not be launched
var ErrEditorFailed = errors.New("failed to open editor")

// gotoEditors accept "--goto file:line" instead of "+line file"
var gotoEditors = map[string]bool{
	"code":          true,
	"code-insiders": true,
	"cursor":        true,
	"windsurf":      true,
	"codium":        true,
}

// Runner executes a prepared command and returns its combined stderr on failure
type Runner func(ctx context.Context, name string, args ...string) error

// EditorLauncher opens files in the configured editor. It implements
// ports.EditorLauncher.
type EditorLauncher struct {
	editor string
	getenv func(string) string
	goos   string
	run    Runner
}

// EditorOption configures an EditorLauncher
type EditorOption func(*EditorLauncher)

// WithRunner replaces the process runner
func WithRunner(run Runner) EditorOption {
	return func(l *EditorLauncher) {
		l.run = run
	}
}

// WithGetenv replaces the environment lookup
func WithGetenv(getenv func(string) string) EditorOption {
	return func(l *EditorLauncher) {
		l.getenv = getenv
	}
}

// WithGOOS overrides the operating system used to pick the fallback opener
func WithGOOS(goos string) EditorOption {
	return func(l *EditorLauncher) {
		l.goos = goos
	}
}

// NewEditorLauncher creates a launcher. An empty editor falls back to
// $VISUAL, then $EDITOR, then the operating system's opener.
func NewEditorLauncher(editor string, opts ...EditorOption) *EditorLauncher {
	l := &EditorLauncher{
		editor: editor,
		getenv: os.Getenv,
		goos:   runtime.GOOS,
		run:    runCommand,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Open launches the editor for path, jumping to line when it is positive
func (l *EditorLauncher) Open(ctx context.Context, path string, line int) error {
	if path == "" {
		return fmt.Errorf("%w: no file path", ErrEditorFailed)
	}
	name, args := l.Command(path, line)
	if err := l.run(ctx, name, args...); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEditorFailed, name, err)
	}
	return nil
}

// Command returns the program and arguments Open would run
func (l *EditorLauncher) Command(path string, line int) (string, []string) {
	editor := l.editor
	if editor == "" {
		editor = l.getenv("VISUAL")
	}
	if editor == "" {
		editor = l.getenv("EDITOR")
	}
	if editor == "" {
		return l.opener(path)
	}

	fields := strings.Fields(editor)
	name, args := fields[0], append([]string{}, fields[1:]...)
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	switch {
	case line <= 0:
		args = append(args, path)
	case gotoEditors[base]:
		args = append(args, "--goto", path+":"+strconv.Itoa(line))
	default:
		args = append(args, "+"+strconv.Itoa(line), path)
	}
	return name, args
}

// ExecCommand prepares the editor process for a caller that hands it the
// terminal itself, such as a full-screen viewer
func (l *EditorLauncher) ExecCommand(path string, line int) *exec.Cmd {
	name, args := l.Command(path, line)
	return exec.Command(name, args...)
}

func (l *EditorLauncher) opener(path string) (string, []string) {
	switch l.goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "cmd", []string{"/c", "start", "", path}
	default:
		return "xdg-open", []string{path}
	}
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%v: %s", err, msg)
		}
		return err
	}
	return nil
}
