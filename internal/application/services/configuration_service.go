package services

import (
	"context"
	"fmt"
	"os"

	"ccview.dev/cli/internal/application/commands"
	"ccview.dev/cli/internal/application/ports"
)

// ConfigurationService handles the tool's own settings
type ConfigurationService struct {
	configRepo ports.ConfigurationRepository
	logger     ports.LoggingGateway
}

// NewConfigurationService creates a new configuration service
func NewConfigurationService(configRepo ports.ConfigurationRepository, logger ports.LoggingGateway) *ConfigurationService {
	return &ConfigurationService{
		configRepo: configRepo,
		logger:     logger,
	}
}

// LoadConfiguration loads the current configuration
func (s *ConfigurationService) LoadConfiguration(ctx context.Context) (*ports.Configuration, error) {
	config, err := s.configRepo.Load()
	if err != nil {
		s.logger.LogError(err, "Failed to load configuration", nil)
		// Return default configuration if loading fails
		return s.configRepo.LoadDefault(), nil
	}

	if err := s.configRepo.Validate(config); err != nil {
		s.logger.LogError(err, "Configuration validation failed", nil)
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// SaveConfiguration saves the configuration
func (s *ConfigurationService) SaveConfiguration(ctx context.Context, config *ports.Configuration) error {
	if err := s.configRepo.Validate(config); err != nil {
		s.logger.LogError(err, "Configuration validation failed", nil)
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := s.configRepo.Save(config); err != nil {
		s.logger.LogError(err, "Failed to save configuration", nil)
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	s.logger.Log(ports.LogLevelInfo, "Configuration saved successfully", map[string]interface{}{
		"config_path": s.configRepo.GetConfigPath(),
	})

	return nil
}

// GetDefaultConfiguration returns the default configuration
func (s *ConfigurationService) GetDefaultConfiguration(ctx context.Context) *ports.Configuration {
	return s.configRepo.LoadDefault()
}

// GetConfigurationPath returns the path to the configuration file
func (s *ConfigurationService) GetConfigurationPath(ctx context.Context) string {
	return s.configRepo.GetConfigPath()
}

// InitializeConfiguration writes the default settings file
func (s *ConfigurationService) InitializeConfiguration(ctx context.Context, cmd *commands.InitConfigurationCommand) (*commands.CommandResult, error) {
	if err := cmd.Validate(); err != nil {
		return commands.NewErrorResult("Validation failed", []string{err.Error()}), nil
	}

	path := s.configRepo.GetConfigPath()
	if _, err := os.Stat(path); err == nil && !cmd.Force {
		return commands.NewErrorResult("Configuration already exists", []string{
			fmt.Sprintf("%s already exists; use --force to overwrite", path),
		}), nil
	}

	config := s.configRepo.LoadDefault()
	if err := s.SaveConfiguration(ctx, config); err != nil {
		return nil, err
	}

	result := commands.NewSuccessResult("Configuration initialized", config)
	result.SetMetadata("config_path", path)
	return result, nil
}

// UpdateConfiguration applies the non-nil fields of cmd to the stored settings
func (s *ConfigurationService) UpdateConfiguration(ctx context.Context, cmd *commands.UpdateConfigurationCommand) (*commands.CommandResult, error) {
	if err := cmd.Validate(); err != nil {
		return commands.NewErrorResult("Validation failed", []string{err.Error()}), nil
	}

	config, err := s.LoadConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	updated := *config

	if cmd.SourceTracking != nil {
		updated.SetTracking(*cmd.SourceTracking)
	}
	if cmd.OverridePolicy != nil {
		updated.OverridePolicy = *cmd.OverridePolicy
	}
	if cmd.SeverityPolicy != nil {
		updated.SeverityPolicy = *cmd.SeverityPolicy
	}
	if cmd.ScanDepth != nil {
		updated.ScanDepth = *cmd.ScanDepth
	}
	if cmd.Editor != nil {
		updated.Editor = *cmd.Editor
	}
	if cmd.LogFile != nil {
		updated.LogFile = *cmd.LogFile
	}

	if err := s.SaveConfiguration(ctx, &updated); err != nil {
		return commands.NewErrorResult("Failed to save configuration", []string{err.Error()}), nil
	}
	return commands.NewSuccessResult("Configuration updated", &updated), nil
}
