package commands

import (
	"fmt"

	"ccview.dev/cli/internal/core/diff"
	"ccview.dev/cli/internal/core/stats"
)

// InitConfigurationCommand writes a settings file with default values
type InitConfigurationCommand struct {
	BaseCommand
	Force bool `json:"force"`
}

// NewInitConfigurationCommand creates a new init configuration command
func NewInitConfigurationCommand(force bool) *InitConfigurationCommand {
	return &InitConfigurationCommand{
		BaseCommand: NewBaseCommand("config.init"),
		Force:       force,
	}
}

// Validate validates the init configuration command
func (c *InitConfigurationCommand) Validate() error {
	return c.BaseCommand.Validate()
}

// UpdateConfigurationCommand changes individual settings. Nil fields are left untouched.
type UpdateConfigurationCommand struct {
	BaseCommand
	SourceTracking *bool   `json:"source_tracking,omitempty"`
	OverridePolicy *string `json:"override_policy,omitempty"`
	SeverityPolicy *string `json:"severity_policy,omitempty"`
	ScanDepth      *int    `json:"scan_depth,omitempty"`
	Editor         *string `json:"editor,omitempty"`
	LogFile        *string `json:"log_file,omitempty"` // "" turns the log file off
}

// NewUpdateConfigurationCommand creates a new update configuration command
func NewUpdateConfigurationCommand() *UpdateConfigurationCommand {
	return &UpdateConfigurationCommand{
		BaseCommand: NewBaseCommand("config.update"),
	}
}

// Validate validates the update configuration command
func (c *UpdateConfigurationCommand) Validate() error {
	if err := c.BaseCommand.Validate(); err != nil {
		return err
	}
	if c.OverridePolicy != nil {
		if _, err := stats.ParseOverridePolicy(*c.OverridePolicy); err != nil {
			return err
		}
	}
	if c.SeverityPolicy != nil {
		if _, err := diff.ParseSeverityPolicy(*c.SeverityPolicy); err != nil {
			return err
		}
	}
	if c.ScanDepth != nil && *c.ScanDepth < 0 {
		return fmt.Errorf("scan depth cannot be negative")
	}
	return nil
}
