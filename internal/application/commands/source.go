package commands

import (
	"fmt"
	"strings"

	"ccview.dev/cli/internal/core/config"
)

// TraceSourceCommand looks up where a key is defined
type TraceSourceCommand struct {
	BaseCommand
	Key         string   `json:"key"`
	ProjectDir  string   `json:"project_dir,omitempty"`
	SearchPaths []string `json:"search_paths,omitempty"`
}

// NewTraceSourceCommand creates a new trace command
func NewTraceSourceCommand(key, projectDir string) *TraceSourceCommand {
	return &TraceSourceCommand{
		BaseCommand: NewBaseCommand("source.trace"),
		Key:         key,
		ProjectDir:  projectDir,
	}
}

// Validate validates the trace command
func (c *TraceSourceCommand) Validate() error {
	if err := c.BaseCommand.Validate(); err != nil {
		return err
	}
	if err := config.ValidateKey(c.Key); err != nil {
		return err
	}
	if strings.TrimSpace(c.ProjectDir) == "" && len(c.SearchPaths) == 0 {
		return fmt.Errorf("either a project directory or search paths are required")
	}
	return nil
}

// OpenSourceCommand opens the file defining a key in the editor
type OpenSourceCommand struct {
	TraceSourceCommand
}

// NewOpenSourceCommand creates a new open command
func NewOpenSourceCommand(key, projectDir string) *OpenSourceCommand {
	cmd := &OpenSourceCommand{TraceSourceCommand: *NewTraceSourceCommand(key, projectDir)}
	cmd.Type = "source.open"
	return cmd
}

// CopyTarget selects what the copy command places on the clipboard
type CopyTarget string

const (
	CopyValue    CopyTarget = "value"
	CopyLocation CopyTarget = "location"
)

// CopyCommand copies a key's effective value or its location to the clipboard
type CopyCommand struct {
	BaseCommand
	Key        string     `json:"key"`
	ProjectDir string     `json:"project_dir"`
	Target     CopyTarget `json:"target"`
}

// NewCopyCommand creates a new copy command
func NewCopyCommand(key, projectDir string, target CopyTarget) *CopyCommand {
	return &CopyCommand{
		BaseCommand: NewBaseCommand("source.copy"),
		Key:         key,
		ProjectDir:  projectDir,
		Target:      target,
	}
}

// Validate validates the copy command
func (c *CopyCommand) Validate() error {
	if err := c.BaseCommand.Validate(); err != nil {
		return err
	}
	if err := config.ValidateKey(c.Key); err != nil {
		return err
	}
	if strings.TrimSpace(c.ProjectDir) == "" {
		return fmt.Errorf("project directory is required")
	}
	switch c.Target {
	case CopyValue, CopyLocation:
		return nil
	default:
		return fmt.Errorf("invalid copy target: %q", c.Target)
	}
}
