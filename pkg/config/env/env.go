package env

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/oldmonad/cloudinv/pkg/cloud"
	config "github.com/oldmonad/cloudinv/pkg/config/cloud"
	"github.com/oldmonad/cloudinv/pkg/config/file"
	"github.com/oldmonad/cloudinv/pkg/config/publish"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"github.com/oldmonad/cloudinv/pkg/utils/validator"
	"go.uber.org/zap"
)

const (
	DefaultHTTPPort    = 8080
	DefaultFunctionTag = "function"
)

type Config interface {
	PortToString() string
	InitiateLogger()
}

type Configurations struct {
	DebugMode         bool
	LogLevel          string
	ConfigPath        string
	OutputDir         string
	FunctionTagKey    string
	FailurePolicy     cloud.FailurePolicy
	CloudProviderType config.ProviderType
	HttpPort          int
	CloudConfig       config.ProviderConfig
	Publish           *publish.Config
	Settings          *file.Settings
	CloudProvider     CloudConfigProvider
}

type CloudConfigProvider interface {
	NewProviderConfig(config.ProviderType, *file.Settings) (config.ProviderConfig, error)
}

type DefaultCloudProvider struct{}

func (d *DefaultCloudProvider) NewProviderConfig(p config.ProviderType, settings *file.Settings) (config.ProviderConfig, error) {
	return config.NewProviderConfig(p, settings)
}

func NewConfiguration() *Configurations {
	return &Configurations{
		// HTTP_PORT overrides this
		HttpPort:       DefaultHTTPPort,
		FunctionTagKey: DefaultFunctionTag,
		FailurePolicy:  cloud.SkipFailedUnits,
		Settings:       file.Empty(),
		CloudProvider:  &DefaultCloudProvider{},
	}
}

// LoadLoggingConfig reads the variables needed before the logger exists.
func (c *Configurations) LoadLoggingConfig() error {
	if rawDebug := os.Getenv("DEBUG"); rawDebug != "" {
		mode, err := strconv.ParseBool(rawDebug)
		if err != nil {
			logger.GetLogger().Error("failed to set up configuration", zap.Error(err))
			logger.GetLogger().Info("Ensure that DEBUG is set to true or false")
			return errors.NewErrBoolParse("DEBUG", rawDebug, err)
		}
		c.DebugMode = mode
	}

	c.LogLevel = os.Getenv("LOG_LEVEL")
	c.ConfigPath = os.Getenv("CONFIG_PATH")
	return nil
}

// LoadSettings decodes the optional HCL settings file named by CONFIG_PATH.
func (c *Configurations) LoadSettings() error {
	settings, err := file.Load(c.ConfigPath)
	if err != nil {
		return err
	}
	c.Settings = settings
	return nil
}

// LoadGeneralConfig resolves the provider-independent settings. Environment
// variables win over the settings file.
func (c *Configurations) LoadGeneralConfig() error {
	if c.Settings == nil {
		c.Settings = file.Empty()
	}

	if err := c.ValidateAndSetPort(); err != nil {
		logger.Log.Error("Invalid port configuration", zap.Error(err))
		logger.Log.Info("Ensure that HTTP_PORT is a number between 1 and 65535")
		return err
	}

	c.OutputDir = file.EnvOr("OUTPUT_DIR", c.Settings.OutputDir)
	if tag := file.EnvOr("FUNCTION_TAG_KEY", c.Settings.FunctionTag); tag != "" {
		c.FunctionTagKey = tag
	}

	if raw := file.EnvOr("ON_UNIT_ERROR", c.Settings.OnUnitError); raw != "" {
		policy, err := validator.ValidateFailurePolicy(raw)
		if err != nil {
			logger.Log.Error("failed to set up configuration", zap.Error(err))
			logger.Log.Info("Ensure that ON_UNIT_ERROR is set to skip or abort")
			return err
		}
		c.FailurePolicy = policy
	}

	provider := file.EnvOr("CLOUD_PROVIDER", c.Settings.Provider)
	if provider == "" {
		logger.Log.Error("failed to set up configuration: missing cloud provider")
		logger.Log.Info("Ensure that CLOUD_PROVIDER is set e.g aws, azure")
		return errors.NewErrMissingCloudProvider()
	}

	providerType, err := validator.ValidateProvider(provider)
	if err != nil {
		return err
	}
	c.CloudProviderType = providerType

	return nil
}

func (c *Configurations) LoadCloudConfig() error {
	cloudCfg, err := c.CloudProvider.NewProviderConfig(c.CloudProviderType, c.Settings)
	if err != nil {
		return err
	}
	c.CloudConfig = cloudCfg
	return nil
}

func (c *Configurations) LoadPublishConfig() error {
	pub, err := publish.LoadConfig(c.Settings.Publish)
	if err != nil {
		return err
	}
	c.Publish = pub
	return nil
}

func (c *Configurations) ValidateGeneralConfig() error {
	if c.CloudConfig == nil {
		return errors.NewErrCloudConfigNotInit()
	}
	if err := c.CloudConfig.Validate(); err != nil {
		return err
	}

	if c.Publish != nil {
		return c.Publish.Validate()
	}
	return nil
}

func (c *Configurations) ValidateAndSetPort() error {
	portStr := os.Getenv("HTTP_PORT")
	if portStr == "" {
		return nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return errors.NewErrPortParse("HTTP_PORT", portStr, err)
	}

	if port < 1 || port > 65535 {
		return errors.NewErrPortOutOfRange("HTTP_PORT", port)
	}

	c.HttpPort = port
	return nil
}

func (c *Configurations) PortToString() string {
	return strconv.Itoa(c.HttpPort)
}

func (c *Configurations) InitiateLogger() {
	logger.Init(c.DebugMode, c.LogLevel)
}

// InventoryPath is where the inventory of the configured provider is
// written locally.
func (c *Configurations) InventoryPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}

func (c *Configurations) FetchOptions() cloud.FetchOptions {
	return cloud.FetchOptions{
		TagKey: c.FunctionTagKey,
		Policy: c.FailurePolicy,
	}
}

func SetupConfigurations() (*Configurations, error) {
	configurations := NewConfiguration()

	if err := configurations.LoadLoggingConfig(); err != nil {
		return nil, err
	}

	configurations.InitiateLogger()

	if err := configurations.LoadSettings(); err != nil {
		return nil, err
	}

	if err := configurations.LoadGeneralConfig(); err != nil {
		return nil, err
	}

	if err := configurations.LoadCloudConfig(); err != nil {
		return nil, err
	}

	if err := configurations.LoadPublishConfig(); err != nil {
		return nil, err
	}

	if err := configurations.ValidateGeneralConfig(); err != nil {
		return nil, err
	}

	logger.Log.Info("Configuration loaded",
		zap.String("provider", string(configurations.CloudProviderType)),
		zap.Strings("scope", configurations.CloudConfig.Scope()),
		zap.String("function_tag", configurations.FunctionTagKey),
		zap.String("on_unit_error", string(configurations.FailurePolicy)),
		zap.Bool("publish", configurations.Publish.Enabled))

	return configurations, nil
}
