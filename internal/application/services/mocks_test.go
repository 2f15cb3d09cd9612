package services

import (
	"context"

	"ccview.dev/cli/internal/application/ports"
	"github.com/stretchr/testify/mock"
)

// Mock implementations

type MockConfigReader struct {
	mock.Mock
}

func (m *MockConfigReader) ReadUserScope(ctx context.Context) (*ports.ScopeReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ScopeReport), args.Error(1)
}

func (m *MockConfigReader) ReadProjectScope(ctx context.Context, projectDir string) (*ports.ScopeReport, error) {
	args := m.Called(ctx, projectDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.ScopeReport), args.Error(1)
}

func (m *MockConfigReader) CandidatePaths(projectDir string) []string {
	args := m.Called(projectDir)
	return args.Get(0).([]string)
}

type MockEditorLauncher struct {
	mock.Mock
}

func (m *MockEditorLauncher) Open(ctx context.Context, path string, line int) error {
	args := m.Called(ctx, path, line)
	return args.Error(0)
}

type MockClipboardWriter struct {
	mock.Mock
}

func (m *MockClipboardWriter) WriteText(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

type MockConfigWatcher struct {
	mock.Mock
	events []ports.ChangeEvent
}

func (m *MockConfigWatcher) Watch(ctx context.Context, paths []string, onChange func(ports.ChangeEvent)) error {
	args := m.Called(ctx, paths)
	for _, e := range m.events {
		onChange(e)
	}
	return args.Error(0)
}

type MockConfigurationRepository struct {
	mock.Mock
}

func (m *MockConfigurationRepository) Load() (*ports.Configuration, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Configuration), args.Error(1)
}

func (m *MockConfigurationRepository) Save(config *ports.Configuration) error {
	args := m.Called(config)
	return args.Error(0)
}

func (m *MockConfigurationRepository) LoadDefault() *ports.Configuration {
	args := m.Called()
	return args.Get(0).(*ports.Configuration)
}

func (m *MockConfigurationRepository) Validate(config *ports.Configuration) error {
	args := m.Called(config)
	return args.Error(0)
}

func (m *MockConfigurationRepository) GetConfigPath() string {
	args := m.Called()
	return args.String(0)
}

type MockLoggingGateway struct {
	mock.Mock
}

func (m *MockLoggingGateway) Log(level ports.LogLevel, message string, fields map[string]interface{}) {
	m.Called(level, message, fields)
}

func (m *MockLoggingGateway) LogError(err error, message string, fields map[string]interface{}) {
	m.Called(err, message, fields)
}

func (m *MockLoggingGateway) SetLogLevel(level ports.LogLevel) {
	m.Called(level)
}

func (m *MockLoggingGateway) GetLogLevel() ports.LogLevel {
	args := m.Called()
	return args.Get(0).(ports.LogLevel)
}

func (m *MockLoggingGateway) ConfigureLogging(config *ports.LoggingConfig) error {
	args := m.Called(config)
	return args.Error(0)
}

func newQuietLogger() *MockLoggingGateway {
	logger := new(MockLoggingGateway)
	logger.On("Log", mock.Anything, mock.Anything, mock.Anything).Maybe()
	logger.On("LogError", mock.Anything, mock.Anything, mock.Anything).Maybe()
	return logger
}
