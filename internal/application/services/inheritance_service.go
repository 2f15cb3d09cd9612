package services

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"ccview.dev/cli/internal/application/commands"
	"ccview.dev/cli/internal/application/ports"
	"ccview.dev/cli/internal/core/config"
	"ccview.dev/cli/internal/core/inheritance"
	"ccview.dev/cli/internal/core/stats"
	"golang.org/x/sync/errgroup"
)

// ProjectView is the resolved configuration of one project together with the
// scopes and files that produced it
type ProjectView struct {
	ProjectDir  string              `json:"project_dir"`
	User        *ports.ScopeReport  `json:"user"`
	Project     *ports.ScopeReport  `json:"project"`
	Result      *inheritance.Result `json:"result"`
	Stats       stats.Stats         `json:"stats"`
	SearchPaths []string            `json:"search_paths"`
	ResolvedAt  time.Time           `json:"resolved_at"`
}

// Warnings collects reader warnings and malformed-entry diagnostics
func (v *ProjectView) Warnings() []string {
	var out []string
	if v.User != nil {
		out = append(out, v.User.Warnings...)
	}
	if v.Project != nil {
		out = append(out, v.Project.Warnings...)
	}
	if v.Result != nil {
		for _, e := range v.Result.Errors {
			out = append(out, e.Error())
		}
	}
	return out
}

// InheritanceService loads a project's scopes, resolves them and derives stats
type InheritanceService struct {
	reader     ports.ConfigReader
	resolver   *inheritance.Resolver
	calculator *stats.Calculator
	logger     ports.LoggingGateway
}

// NewInheritanceService creates a new inheritance service
func NewInheritanceService(
	reader ports.ConfigReader,
	resolver *inheritance.Resolver,
	calculator *stats.Calculator,
	logger ports.LoggingGateway,
) *InheritanceService {
	return &InheritanceService{
		reader:     reader,
		resolver:   resolver,
		calculator: calculator,
		logger:     logger,
	}
}

// Load reads both scopes of projectDir concurrently and resolves them
func (s *InheritanceService) Load(ctx context.Context, projectDir string) (*ProjectView, error) {
	return s.load(ctx, projectDir, s.calculator)
}

func (s *InheritanceService) load(ctx context.Context, projectDir string, calculator *stats.Calculator) (*ProjectView, error) {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	user, project, err := s.readScopes(ctx, absDir)
	if err != nil {
		return nil, err
	}

	result := s.resolver.Resolve([]config.Scope{user.Scope, project.Scope})
	for _, malformed := range result.Errors {
		s.logger.Log(ports.LogLevelWarn, "Skipping malformed configuration entry", map[string]interface{}{
			"scope":  malformed.Scope,
			"index":  malformed.Index,
			"key":    malformed.Key,
			"reason": malformed.Reason,
		})
	}
	for _, warning := range append(append([]string{}, user.Warnings...), project.Warnings...) {
		s.logger.Log(ports.LogLevelWarn, "Configuration file problem", map[string]interface{}{
			"warning": warning,
		})
	}

	view := &ProjectView{
		ProjectDir:  absDir,
		User:        user,
		Project:     project,
		Result:      result,
		Stats:       calculator.Calculate(result.Items),
		SearchPaths: searchPaths(user, project),
		ResolvedAt:  time.Now(),
	}

	s.logger.Log(ports.LogLevelDebug, "Resolved project configuration", map[string]interface{}{
		"project":   absDir,
		"keys":      len(result.Items),
		"overrides": result.CountBy(inheritance.ClassOverride),
		"malformed": len(result.Errors),
	})

	return view, nil
}

// SearchPaths returns the files a key of projectDir may be defined in,
// project files first
func (s *InheritanceService) SearchPaths(ctx context.Context, projectDir string) ([]string, error) {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}
	user, project, err := s.readScopes(ctx, absDir)
	if err != nil {
		return nil, err
	}
	return searchPaths(user, project), nil
}

// WatchPaths lists the files and directories to watch for projectDir
func (s *InheritanceService) WatchPaths(projectDir string) []string {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		absDir = projectDir
	}
	return s.reader.CandidatePaths(absDir)
}

// ResolveInheritance handles the resolve command
func (s *InheritanceService) ResolveInheritance(ctx context.Context, cmd *commands.ResolveInheritanceCommand) (*commands.CommandResult, error) {
	start := time.Now()

	if err := cmd.Validate(); err != nil {
		return commands.NewErrorResult("Validation failed", []string{err.Error()}), nil
	}

	calculator := s.calculator
	if cmd.OverridePolicy != "" {
		policy, _ := stats.ParseOverridePolicy(cmd.OverridePolicy)
		calculator = stats.NewCalculator(stats.WithOverridePolicy(policy))
	}

	view, err := s.load(ctx, cmd.ProjectDir, calculator)
	if err != nil {
		s.logger.LogError(err, "Failed to resolve project configuration", map[string]interface{}{
			"project": cmd.ProjectDir,
		})
		return nil, err
	}

	result := commands.NewSuccessResult("Configuration resolved", view)
	for _, warning := range view.Warnings() {
		result.AddWarning(warning)
	}
	result.SetMetadata("key_count", len(view.Result.Items))
	result.SetMetadata("override_policy", calculator.OverridePolicy().String())
	result.ExecutionTime = time.Since(start)
	return result, nil
}

func (s *InheritanceService) readScopes(ctx context.Context, projectDir string) (*ports.ScopeReport, *ports.ScopeReport, error) {
	var user, project *ports.ScopeReport

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report, err := s.reader.ReadUserScope(gctx)
		if err != nil {
			return fmt.Errorf("failed to read user configuration: %w", err)
		}
		user = report
		return nil
	})
	g.Go(func() error {
		report, err := s.reader.ReadProjectScope(gctx, projectDir)
		if err != nil {
			return fmt.Errorf("failed to read project configuration: %w", err)
		}
		project = report
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return user, project, nil
}

func searchPaths(user, project *ports.ScopeReport) []string {
	paths := make([]string, 0, len(user.Files)+len(project.Files))
	seen := make(map[string]bool)
	for _, report := range []*ports.ScopeReport{project, user} {
		for _, f := range report.Files {
			if !seen[f] {
				seen[f] = true
				paths = append(paths, f)
			}
		}
	}
	return paths
}
