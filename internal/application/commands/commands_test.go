package commands

import (
	"errors"
	"fmt"
	"testing"

	"ccview.dev/cli/internal/core/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInheritanceCommand_Validate(t *testing.T) {
	tests := []struct {
		name        string
		projectDir  string
		policy      string
		expectError bool
	}{
		{"ValidDir_ShouldSucceed", "/work/app", "", false},
		{"ValidPolicy_ShouldSucceed", "/work/app", "new", false},
		{"EmptyDir_ShouldFail", "  ", "", true},
		{"BadPolicy_ShouldFail", "/work/app", "sometimes", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewResolveInheritanceCommand(tt.projectDir)
			cmd.OverridePolicy = tt.policy
			err := cmd.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCompareProjectsCommand_Validate(t *testing.T) {
	assert.NoError(t, NewCompareProjectsCommand("/a", "/b").Validate())
	assert.Error(t, NewCompareProjectsCommand("", "/b").Validate())
	assert.Error(t, NewCompareProjectsCommand("/a", "").Validate())
}

func TestTraceSourceCommand_Validate(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		projectDir  string
		paths       []string
		expectError bool
	}{
		{"ProjectDir_ShouldSucceed", "mcpServers.fs", "/work/app", nil, false},
		{"SearchPaths_ShouldSucceed", "mcpServers.fs", "", []string{"/a.json"}, false},
		{"EmptyKey_ShouldFail", "", "/work/app", nil, true},
		{"EmptySegment_ShouldFail", "mcpServers..fs", "/work/app", nil, true},
		{"NoLocation_ShouldFail", "mcpServers.fs", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewTraceSourceCommand(tt.key, tt.projectDir)
			cmd.SearchPaths = tt.paths
			err := cmd.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenSourceCommand_HasOwnType(t *testing.T) {
	cmd := NewOpenSourceCommand("settings.model", "/work/app")

	assert.Equal(t, "source.open", cmd.GetType())
	assert.NotEmpty(t, cmd.GetID())
	assert.NoError(t, cmd.Validate())
}

func TestCopyCommand_Validate(t *testing.T) {
	assert.NoError(t, NewCopyCommand("settings.model", "/w", CopyValue).Validate())
	assert.NoError(t, NewCopyCommand("settings.model", "/w", CopyLocation).Validate())
	assert.Error(t, NewCopyCommand("settings.model", "/w", CopyTarget("both")).Validate())
	assert.Error(t, NewCopyCommand("settings.model", "", CopyValue).Validate())
}

func TestUpdateConfigurationCommand_Validate(t *testing.T) {
	policy := "inherited"
	badSeverity := "loud"
	depth := -1

	cmd := NewUpdateConfigurationCommand()
	cmd.OverridePolicy = &policy
	assert.NoError(t, cmd.Validate())

	cmd.SeverityPolicy = &badSeverity
	assert.Error(t, cmd.Validate())

	cmd = NewUpdateConfigurationCommand()
	cmd.ScanDepth = &depth
	assert.Error(t, cmd.Validate())
}

func TestCommandResult_Mutators(t *testing.T) {
	result := NewSuccessResult("ok", 42)
	result.AddWarning("careful")
	result.SetMetadata("count", 1)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"careful"}, result.Warnings)
	assert.Equal(t, 1, result.Metadata["count"])

	result.AddError("broken")
	assert.False(t, result.Success)
}

func TestClassifyTraceError(t *testing.T) {
	traceErr := &source.TraceError{Key: "settings.model", Err: errors.New("io")}

	classified := ClassifyTraceError("settings.model", traceErr)
	assert.Equal(t, ErrCodeTraceFailed, classified.Code)
	assert.ErrorIs(t, classified, source.ErrTraceFailed)
	assert.Contains(t, classified.Details, "io")

	classified = ClassifyTraceError("", errors.New("entry key cannot be empty"))
	assert.Equal(t, ErrCodeValidation, classified.Code)
}

func TestErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("open failed: %w", NewCollaboratorError("editor", errors.New("exit 1")))

	assert.Equal(t, ErrCodeCollaboratorFailed, ErrorCode(wrapped))
	assert.Equal(t, ErrCodeInternal, ErrorCode(errors.New("plain")))
	require.Equal(t, ErrCodeNotFound, ErrorCode(NewNotFoundError("key")))
}
