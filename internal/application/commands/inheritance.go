package commands

import (
	"fmt"
	"strings"

	"ccview.dev/cli/internal/core/stats"
)

// ResolveInheritanceCommand resolves the effective configuration of a project
type ResolveInheritanceCommand struct {
	BaseCommand
	ProjectDir     string `json:"project_dir"`
	OverridePolicy string `json:"override_policy,omitempty"`
}

// NewResolveInheritanceCommand creates a new resolve command
func NewResolveInheritanceCommand(projectDir string) *ResolveInheritanceCommand {
	return &ResolveInheritanceCommand{
		BaseCommand: NewBaseCommand("inheritance.resolve"),
		ProjectDir:  projectDir,
	}
}

// Validate validates the resolve command
func (c *ResolveInheritanceCommand) Validate() error {
	if err := c.BaseCommand.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.ProjectDir) == "" {
		return fmt.Errorf("project directory is required")
	}
	if c.OverridePolicy != "" {
		if _, err := stats.ParseOverridePolicy(c.OverridePolicy); err != nil {
			return err
		}
	}
	return nil
}

// CompareProjectsCommand compares the effective configuration of two projects
type CompareProjectsCommand struct {
	BaseCommand
	LeftDir         string `json:"left_dir"`
	RightDir        string `json:"right_dir"`
	OnlyDifferences bool   `json:"only_differences"`
}

// NewCompareProjectsCommand creates a new compare command
func NewCompareProjectsCommand(leftDir, rightDir string) *CompareProjectsCommand {
	return &CompareProjectsCommand{
		BaseCommand: NewBaseCommand("inheritance.compare"),
		LeftDir:     leftDir,
		RightDir:    rightDir,
	}
}

// Validate validates the compare command
func (c *CompareProjectsCommand) Validate() error {
	if err := c.BaseCommand.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.LeftDir) == "" || strings.TrimSpace(c.RightDir) == "" {
		return fmt.Errorf("both left and right project directories are required")
	}
	return nil
}
