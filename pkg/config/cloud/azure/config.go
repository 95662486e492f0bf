package azure

import (
	"os"

	"github.com/oldmonad/cloudinv/pkg/config/file"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"go.uber.org/zap"
)

// Credentials are the service principal used for ClientSecretCredential.
type Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

type Config struct {
	SubscriptionID string
	TenantID       string
	ClientID       string
	ClientSecret   string
}

func LoadConfig(defaults *file.AzureBlock) *Config {
	if defaults == nil {
		defaults = &file.AzureBlock{}
	}
	return &Config{
		SubscriptionID: file.EnvOr("AZURE_SUBSCRIPTION_ID", defaults.SubscriptionID),
		TenantID:       file.EnvOr("AZURE_TENANT_ID", defaults.TenantID),
		ClientID:       file.EnvOr("AZURE_CLIENT_ID", defaults.ClientID),
		ClientSecret:   os.Getenv("AZURE_CLIENT_SECRET"),
	}
}

func (c *Config) Validate() error {
	var missing []string
	if c.SubscriptionID == "" {
		missing = append(missing, "AZURE_SUBSCRIPTION_ID")
	}
	if c.TenantID == "" {
		missing = append(missing, "AZURE_TENANT_ID")
	}
	if c.ClientID == "" {
		missing = append(missing, "AZURE_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "AZURE_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		logger.Log.Error("Azure config validation failed", zap.Strings("missing", missing))
		return errors.NewErrMissingAzureConfig(missing)
	}
	return nil
}

func (c *Config) GetCredentials() interface{} {
	return Credentials{
		TenantID:     c.TenantID,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
	}
}

func (c *Config) Scope() []string {
	return []string{"subscription/" + c.SubscriptionID}
}
