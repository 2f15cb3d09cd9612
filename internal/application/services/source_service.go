package services

import (
	"context"
	"fmt"
	"time"

	"ccview.dev/cli/internal/application/commands"
	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/core/config"
	"ccview.dev/cli/internal/core/source"
)

// TraceResult is the answer to a trace request. Location is nil when the key
// was not found.
type TraceResult struct {
	Key         string           `json:"key"`
	Location    *source.Location `json:"location"`
	SearchPaths []string         `json:"search_paths"`
	Tracking    bool             `json:"tracking"`
}

// SourceService traces keys to their defining file and drives the editor and
// clipboard collaborators
type SourceService struct {
	tracker     *source.Tracker
	inheritance *InheritanceService
	editor      ports.EditorLauncher
	clipboard   ports.ClipboardWriter
	logger      ports.LoggingGateway
}

// NewSourceService creates a new source service
func NewSourceService(
	tracker *source.Tracker,
	inheritance *InheritanceService,
	editor ports.EditorLauncher,
	clipboard ports.ClipboardWriter,
	logger ports.LoggingGateway,
) *SourceService {
	return &SourceService{
		tracker:     tracker,
		inheritance: inheritance,
		editor:      editor,
		clipboard:   clipboard,
		logger:      logger,
	}
}

// Trace handles the trace command. Explicit search paths win over the
// project's configuration files.
func (s *SourceService) Trace(ctx context.Context, cmd *commands.TraceSourceCommand) (*TraceResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, commands.NewValidationError(err.Error())
	}

	paths := cmd.SearchPaths
	if len(paths) == 0 {
		var err error
		paths, err = s.inheritance.SearchPaths(ctx, cmd.ProjectDir)
		if err != nil {
			return nil, err
		}
	}

	start := time.Now()
	loc, err := s.tracker.TraceSource(ctx, cmd.Key, paths)
	if err != nil {
		s.logger.LogError(err, "Source tracing failed", map[string]interface{}{
			"key": cmd.Key,
		})
		return nil, commands.ClassifyTraceError(cmd.Key, err)
	}

	s.logger.Log(ports.LogLevelDebug, "Traced configuration key", map[string]interface{}{
		"key":      cmd.Key,
		"found":    loc != nil,
		"paths":    len(paths),
		"duration": time.Since(start).String(),
	})

	return &TraceResult{
		Key:         cmd.Key,
		Location:    loc,
		SearchPaths: paths,
		Tracking:    s.tracker.IsTrackingEnabled(),
	}, nil
}

// Locate traces the key an open command names. Unlike Trace, a missing
// definition is a not-found error.
func (s *SourceService) Locate(ctx context.Context, cmd *commands.OpenSourceCommand) (*source.Location, error) {
	traced, err := s.Trace(ctx, &cmd.TraceSourceCommand)
	if err != nil {
		return nil, err
	}
	if traced.Location == nil {
		return nil, commands.NewNotFoundError(fmt.Sprintf("definition of %s", cmd.Key))
	}
	return traced.Location, nil
}

// OpenInEditor traces the key and opens its file at the defining line
func (s *SourceService) OpenInEditor(ctx context.Context, cmd *commands.OpenSourceCommand) (*source.Location, error) {
	loc, err := s.Locate(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if err := s.editor.Open(ctx, loc.FilePath, loc.LineNumber); err != nil {
		s.EditorFailed(loc, err)
		return loc, commands.NewCollaboratorError("failed to open editor", err)
	}
	return loc, nil
}

// EditorFailed records an editor that could not open loc
func (s *SourceService) EditorFailed(loc *source.Location, err error) {
	s.logger.LogError(err, "Failed to open editor", map[string]interface{}{
		"file": loc.FilePath,
		"line": loc.LineNumber,
	})
}

// Copy places a key's effective value or its location on the clipboard and
// returns the copied text
func (s *SourceService) Copy(ctx context.Context, cmd *commands.CopyCommand) (string, error) {
	if err := cmd.Validate(); err != nil {
		return "", commands.NewValidationError(err.Error())
	}

	var text string
	switch cmd.Target {
	case commands.CopyLocation:
		traced, err := s.Trace(ctx, commands.NewTraceSourceCommand(cmd.Key, cmd.ProjectDir))
		if err != nil {
			return "", err
		}
		if traced.Location == nil {
			return "", commands.NewNotFoundError(fmt.Sprintf("definition of %s", cmd.Key))
		}
		text = traced.Location.String()
	default:
		view, err := s.inheritance.Load(ctx, cmd.ProjectDir)
		if err != nil {
			return "", err
		}
		value, ok := view.Result.Chain.Resolved[cmd.Key]
		if !ok {
			return "", commands.NewNotFoundError(cmd.Key)
		}
		text, err = FormatValue(value)
		if err != nil {
			return "", commands.NewInternalError(err.Error())
		}
	}

	if err := s.clipboard.WriteText(text); err != nil {
		s.logger.LogError(err, "Failed to write clipboard", nil)
		return "", commands.NewCollaboratorError("failed to copy to clipboard", err)
	}
	return text, nil
}

// SetTrackingEnabled toggles source tracking
func (s *SourceService) SetTrackingEnabled(enabled bool) {
	s.tracker.SetTrackingEnabled(enabled)
	s.logger.Log(ports.LogLevelDebug, "Source tracking toggled", map[string]interface{}{
		"enabled": enabled,
	})
}

// IsTrackingEnabled reports whether source tracking is on
func (s *SourceService) IsTrackingEnabled() bool {
	return s.tracker.IsTrackingEnabled()
}

// Invalidate drops cached locations for key
func (s *SourceService) Invalidate(key string) int {
	return s.tracker.Invalidate(key)
}

// HandleChange drops cached locations in a changed file
func (s *SourceService) HandleChange(event ports.ChangeEvent) {
	removed := s.tracker.InvalidatePath(event.Path)
	s.logger.Log(ports.LogLevelDebug, "Configuration file changed", map[string]interface{}{
		"path":        event.Path,
		"change_type": string(event.Type),
		"invalidated": removed,
	})
}

// CacheStats returns source cache counters
func (s *SourceService) CacheStats() source.CacheStats {
	return s.tracker.Stats()
}

// FormatValue renders a value the way it is copied and displayed: strings
// verbatim, everything else as canonical JSON
func FormatValue(value any) (string, error) {
	if str, ok := value.(string); ok {
		return str, nil
	}
	data, err := config.CanonicalJSON(value)
	if err != nil {
		return "", fmt.Errorf("failed to format value: %w", err)
	}
	return string(data), nil
}
