package env_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/oldmonad/cloudinv/pkg/cloud"
	config "github.com/oldmonad/cloudinv/pkg/config/cloud"
	"github.com/oldmonad/cloudinv/pkg/config/env"
	"github.com/oldmonad/cloudinv/pkg/config/file"
	"github.com/oldmonad/cloudinv/pkg/config/publish"
	err "github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProviderConfig struct {
	mock.Mock
}

func (m *MockProviderConfig) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockProviderConfig) GetCredentials() interface{} {
	args := m.Called()
	return args.Get(0)
}

func (m *MockProviderConfig) Scope() []string {
	return []string{"test"}
}

type MockProviderConfigFactory struct {
	mock.Mock
}

func (m *MockProviderConfigFactory) NewProviderConfig(provider config.ProviderType, settings *file.Settings) (config.ProviderConfig, error) {
	args := m.Called(provider, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(config.ProviderConfig), args.Error(1)
}

func TestMain(m *testing.M) {
	logger.SetLogger(zap.NewNop())
	m.Run()
}

var generalKeys = []string{
	"DEBUG", "LOG_LEVEL", "CONFIG_PATH", "CLOUD_PROVIDER", "OUTPUT_DIR",
	"FUNCTION_TAG_KEY", "ON_UNIT_ERROR", "HTTP_PORT",
}

func clearEnv(t *testing.T, keys ...string) {
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadLoggingConfig(t *testing.T) {
	t.Run("values", func(t *testing.T) {
		clearEnv(t, generalKeys...)
		t.Setenv("DEBUG", "true")
		t.Setenv("LOG_LEVEL", "warn")
		t.Setenv("CONFIG_PATH", "/etc/cloudinv.hcl")

		cfg := env.NewConfiguration()
		require.NoError(t, cfg.LoadLoggingConfig())
		assert.True(t, cfg.DebugMode)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "/etc/cloudinv.hcl", cfg.ConfigPath)
	})

	t.Run("unset DEBUG defaults to false", func(t *testing.T) {
		clearEnv(t, generalKeys...)

		cfg := env.NewConfiguration()
		require.NoError(t, cfg.LoadLoggingConfig())
		assert.False(t, cfg.DebugMode)
	})

	t.Run("invalid DEBUG", func(t *testing.T) {
		clearEnv(t, generalKeys...)
		t.Setenv("DEBUG", "maybe")

		cfg := env.NewConfiguration()
		e := cfg.LoadLoggingConfig()

		var boolErr err.ErrBoolParse
		require.ErrorAs(t, e, &boolErr)
		assert.Equal(t, "DEBUG", boolErr.Name)
	})
}

func TestLoadGeneralConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		settings *file.Settings
		expected *env.Configurations
		errType  interface{}
	}{
		{
			name: "all fields from the environment",
			env: map[string]string{
				"CLOUD_PROVIDER":   "azure",
				"OUTPUT_DIR":       "/srv/inventory",
				"FUNCTION_TAG_KEY": "role",
				"ON_UNIT_ERROR":    "abort",
				"HTTP_PORT":        "8081",
			},
			expected: &env.Configurations{
				CloudProviderType: config.Azure,
				OutputDir:         "/srv/inventory",
				FunctionTagKey:    "role",
				FailurePolicy:     cloud.AbortOnFailedUnit,
				HttpPort:          8081,
			},
		},
		{
			name: "defaults",
			env:  map[string]string{"CLOUD_PROVIDER": "aws"},
			expected: &env.Configurations{
				CloudProviderType: config.AWS,
				FunctionTagKey:    "function",
				FailurePolicy:     cloud.SkipFailedUnits,
				HttpPort:          8080,
			},
		},
		{
			name: "settings file fills the gaps",
			env:  map[string]string{"ON_UNIT_ERROR": "skip"},
			settings: &file.Settings{
				Provider:    "aws",
				FunctionTag: "tier",
				OutputDir:   "/var/lib/cloudinv",
				OnUnitError: "abort",
			},
			expected: &env.Configurations{
				CloudProviderType: config.AWS,
				OutputDir:         "/var/lib/cloudinv",
				FunctionTagKey:    "tier",
				FailurePolicy:     cloud.SkipFailedUnits,
				HttpPort:          8080,
			},
		},
		{
			name:    "missing CLOUD_PROVIDER",
			env:     map[string]string{},
			errType: &err.ErrMissingCloudProvider{},
		},
		{
			name:    "unsupported CLOUD_PROVIDER",
			env:     map[string]string{"CLOUD_PROVIDER": "gcp"},
			errType: &err.ErrUnsupportedProvider{},
		},
		{
			name:    "invalid ON_UNIT_ERROR",
			env:     map[string]string{"CLOUD_PROVIDER": "aws", "ON_UNIT_ERROR": "retry"},
			errType: &err.ErrUnsupportedPolicy{},
		},
		{
			name:    "invalid HTTP_PORT",
			env:     map[string]string{"CLOUD_PROVIDER": "aws", "HTTP_PORT": "invalid"},
			errType: &err.ErrPortParse{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t, generalKeys...)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := env.NewConfiguration()
			if tt.settings != nil {
				cfg.Settings = tt.settings
			}
			e := cfg.LoadGeneralConfig()

			if tt.errType != nil {
				require.Error(t, e)
				assert.ErrorAs(t, e, tt.errType)
				return
			}
			require.NoError(t, e)
			assert.Equal(t, tt.expected.CloudProviderType, cfg.CloudProviderType)
			assert.Equal(t, tt.expected.OutputDir, cfg.OutputDir)
			assert.Equal(t, tt.expected.FunctionTagKey, cfg.FunctionTagKey)
			assert.Equal(t, tt.expected.FailurePolicy, cfg.FailurePolicy)
			assert.Equal(t, tt.expected.HttpPort, cfg.HttpPort)
		})
	}
}

func TestValidateAndSetPort(t *testing.T) {
	tests := []struct {
		name          string
		envPort       string
		expectedPort  int
		expectedError interface{}
	}{
		{name: "valid port", envPort: "8081", expectedPort: 8081},
		{name: "empty port uses default", envPort: "", expectedPort: 8080},
		{name: "invalid port", envPort: "invalid", expectedPort: 8080, expectedError: &err.ErrPortParse{}},
		{name: "port too low", envPort: "0", expectedPort: 8080, expectedError: &err.ErrPortOutOfRange{}},
		{name: "port too high", envPort: "65536", expectedPort: 8080, expectedError: &err.ErrPortOutOfRange{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HTTP_PORT", tt.envPort)

			cfg := env.NewConfiguration()
			e := cfg.ValidateAndSetPort()

			if tt.expectedError != nil {
				assert.ErrorAs(t, e, tt.expectedError)
			} else {
				assert.NoError(t, e)
			}
			assert.Equal(t, tt.expectedPort, cfg.HttpPort)
			assert.Equal(t, strconv.Itoa(tt.expectedPort), cfg.PortToString())
		})
	}
}

func TestLoadCloudConfig(t *testing.T) {
	tests := []struct {
		name        string
		provider    config.ProviderType
		mockSetup   func(*MockProviderConfigFactory, *file.Settings)
		expectedErr string
	}{
		{
			name:     "successful config load",
			provider: config.AWS,
			mockSetup: func(m *MockProviderConfigFactory, s *file.Settings) {
				m.On("NewProviderConfig", config.AWS, s).Return(new(MockProviderConfig), nil)
			},
		},
		{
			name:     "error creating provider config",
			provider: "unknown",
			mockSetup: func(m *MockProviderConfigFactory, s *file.Settings) {
				m.On("NewProviderConfig", config.ProviderType("unknown"), s).Return(
					nil, err.NewUnsupportedProvider("unknown"))
			},
			expectedErr: `unsupported provider: "unknown" (valid: aws, azure)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := env.NewConfiguration()
			cfg.CloudProviderType = tt.provider

			mockFactory := new(MockProviderConfigFactory)
			tt.mockSetup(mockFactory, cfg.Settings)
			cfg.CloudProvider = mockFactory

			e := cfg.LoadCloudConfig()

			mockFactory.AssertExpectations(t)
			if tt.expectedErr != "" {
				assert.EqualError(t, e, tt.expectedErr)
				return
			}
			assert.NoError(t, e)
			assert.NotNil(t, cfg.CloudConfig)
		})
	}
}

func TestValidateGeneralConfig(t *testing.T) {
	completePublish := &publish.Config{
		Enabled:        true,
		Host:           "h",
		User:           "u",
		Password:       "p",
		KnownHostsPath: "/kh",
		RemoteDir:      "~/",
	}

	tests := []struct {
		name            string
		cloudConfig     *MockProviderConfig
		validateReturns error
		publish         *publish.Config
		expectErr       bool
		expectedErrType interface{}
	}{
		{
			name:        "valid configuration",
			cloudConfig: &MockProviderConfig{},
			publish:     completePublish,
		},
		{
			name:            "nil cloud config",
			expectErr:       true,
			expectedErrType: &err.ErrCloudConfigNotInit{},
		},
		{
			name:            "cloud config validation error",
			cloudConfig:     &MockProviderConfig{},
			validateReturns: errors.New("validation failed"),
			expectErr:       true,
		},
		{
			name:            "incomplete publish target",
			cloudConfig:     &MockProviderConfig{},
			publish:         &publish.Config{Enabled: true},
			expectErr:       true,
			expectedErrType: &err.ErrMissingPublishConfig{},
		},
		{
			name:        "disabled publish target",
			cloudConfig: &MockProviderConfig{},
			publish:     &publish.Config{Enabled: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := env.NewConfiguration()
			cfg.Publish = tt.publish
			if tt.cloudConfig != nil {
				tt.cloudConfig.On("Validate").Return(tt.validateReturns)
				cfg.CloudConfig = tt.cloudConfig
			}

			e := cfg.ValidateGeneralConfig()

			if tt.expectErr {
				assert.Error(t, e)
				if tt.expectedErrType != nil {
					assert.ErrorAs(t, e, tt.expectedErrType)
				}
			} else {
				assert.NoError(t, e)
			}
		})
	}
}

func TestSetupConfigurations(t *testing.T) {
	clearEnv(t, generalKeys...)
	clearEnv(t,
		"AWS_REGION", "AWS_REGIONS", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_SESSION_TOKEN",
		"SCP_HOST", "SCP_PORT", "SCP_USER", "SCP_PASSWORD", "SCP_PRIVATE_KEY_PATH",
		"SCP_KNOWN_HOSTS_PATH", "SCP_REMOTE_DIR", "SCP_TIMEOUT", "PUBLISH_ENABLED",
	)

	settingsPath := filepath.Join(t.TempDir(), "cloudinv.hcl")
	require.NoError(t, os.WriteFile(settingsPath, []byte(`
provider = "aws"

aws {
  region  = "us-east-1"
  regions = ["us-east-1"]
}

publish {
  host        = "10.0.0.10"
  user        = "ansible"
  remote_dir  = "~/"
  known_hosts = "/etc/cloudinv/known_hosts"
}
`), 0o644))

	t.Setenv("CONFIG_PATH", settingsPath)
	t.Setenv("SCP_PASSWORD", "pw")
	t.Setenv("OUTPUT_DIR", "/tmp/out")

	cfg, e := env.SetupConfigurations()
	defer logger.SetLogger(zap.NewNop())

	require.NoError(t, e)
	assert.Equal(t, config.AWS, cfg.CloudProviderType)
	assert.Equal(t, []string{"us-east-1"}, cfg.CloudConfig.Scope())
	assert.Equal(t, "10.0.0.10", cfg.Publish.Host)
	assert.Equal(t, filepath.Join("/tmp/out", "aws_inventory.ini"), cfg.InventoryPath("aws_inventory.ini"))
	assert.Equal(t, cloud.FetchOptions{TagKey: "function", Policy: cloud.SkipFailedUnits}, cfg.FetchOptions())
}
