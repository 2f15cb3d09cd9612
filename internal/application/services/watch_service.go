package services

import (
	"context"

	"ccview.dev/cli/internal/application/ports"
)

// WatchService re-resolves a project whenever one of its configuration files
// changes
type WatchService struct {
	watcher     ports.ConfigWatcher
	inheritance *InheritanceService
	sources     *SourceService
	logger      ports.LoggingGateway
}

// NewWatchService creates a new watch service
func NewWatchService(watcher ports.ConfigWatcher, inheritance *InheritanceService, sources *SourceService, logger ports.LoggingGateway) *WatchService {
	return &WatchService{
		watcher:     watcher,
		inheritance: inheritance,
		sources:     sources,
		logger:      logger,
	}
}

// Watch blocks until ctx is done. For every change it invalidates cached
// source locations in the changed file, resolves the project again and hands
// the new view (or the load error) to onUpdate.
func (s *WatchService) Watch(ctx context.Context, projectDir string, onUpdate func(ports.ChangeEvent, *ProjectView, error)) error {
	paths := s.inheritance.WatchPaths(projectDir)
	s.logger.Log(ports.LogLevelInfo, "Watching configuration files", map[string]interface{}{
		"project": projectDir,
		"paths":   len(paths),
	})

	return s.watcher.Watch(ctx, paths, func(event ports.ChangeEvent) {
		if s.sources != nil {
			s.sources.HandleChange(event)
		}
		view, err := s.inheritance.Load(ctx, projectDir)
		if err != nil {
			s.logger.LogError(err, "Failed to reload configuration", map[string]interface{}{
				"path": event.Path,
			})
		}
		onUpdate(event, view, err)
	})
}
