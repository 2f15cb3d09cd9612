package services

import (
	"context"
	"time"

	"ccview.dev/cli/internal/application/commands"
	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/core/diff"
	"golang.org/x/sync/errgroup"
)

// Comparison is the diff between the effective configuration of two projects
type Comparison struct {
	Left    *ProjectView     `json:"left"`
	Right   *ProjectView     `json:"right"`
	Entries []diff.DiffEntry `json:"entries"`
	Summary diff.Summary     `json:"summary"`
}

// ComparisonService compares two projects side by side
type ComparisonService struct {
	inheritance *InheritanceService
	engine      *diff.Engine
	logger      ports.LoggingGateway
}

// NewComparisonService creates a new comparison service
func NewComparisonService(inheritance *InheritanceService, engine *diff.Engine, logger ports.LoggingGateway) *ComparisonService {
	return &ComparisonService{
		inheritance: inheritance,
		engine:      engine,
		logger:      logger,
	}
}

// Compare resolves both projects concurrently and diffs their chains
func (s *ComparisonService) Compare(ctx context.Context, leftDir, rightDir string) (*Comparison, error) {
	var left, right *ProjectView

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view, err := s.inheritance.Load(gctx, leftDir)
		left = view
		return err
	})
	g.Go(func() error {
		view, err := s.inheritance.Load(gctx, rightDir)
		right = view
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := s.engine.Diff(diff.FromChain(left.Result.Chain), diff.FromChain(right.Result.Chain))
	comparison := &Comparison{
		Left:    left,
		Right:   right,
		Entries: entries,
		Summary: diff.Summarize(entries),
	}

	s.logger.Log(ports.LogLevelDebug, "Compared projects", map[string]interface{}{
		"left":       left.ProjectDir,
		"right":      right.ProjectDir,
		"different":  comparison.Summary.Different,
		"only_left":  comparison.Summary.OnlyLeft,
		"only_right": comparison.Summary.OnlyRight,
	})

	return comparison, nil
}

// CompareProjects handles the compare command
func (s *ComparisonService) CompareProjects(ctx context.Context, cmd *commands.CompareProjectsCommand) (*commands.CommandResult, error) {
	start := time.Now()

	if err := cmd.Validate(); err != nil {
		return commands.NewErrorResult("Validation failed", []string{err.Error()}), nil
	}

	comparison, err := s.Compare(ctx, cmd.LeftDir, cmd.RightDir)
	if err != nil {
		s.logger.LogError(err, "Failed to compare projects", map[string]interface{}{
			"left":  cmd.LeftDir,
			"right": cmd.RightDir,
		})
		return nil, err
	}

	if cmd.OnlyDifferences {
		comparison.Entries = diff.OnlyDifferences(comparison.Entries)
	}

	result := commands.NewSuccessResult("Projects compared", comparison)
	for _, warning := range append(comparison.Left.Warnings(), comparison.Right.Warnings()...) {
		result.AddWarning(warning)
	}
	result.SetMetadata("has_differences", comparison.Summary.HasDifferences())
	result.ExecutionTime = time.Since(start)
	return result, nil
}
