package cloud

import (
	"github.com/oldmonad/cloudinv/pkg/config/cloud/aws"
	"github.com/oldmonad/cloudinv/pkg/config/cloud/azure"
	"github.com/oldmonad/cloudinv/pkg/config/file"

	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"go.uber.org/zap"
)

type ProviderConfig interface {
	Validate() error
	GetCredentials() interface{}
	// Scope names what a run enumerates (regions or a subscription), for logs.
	Scope() []string
}

type ProviderType string

const (
	AWS   ProviderType = "aws"
	Azure ProviderType = "azure"
)

// ProviderTypes lists the supported providers in display order.
var ProviderTypes = []ProviderType{AWS, Azure}

func NewProviderConfig(provider ProviderType, settings *file.Settings) (ProviderConfig, error) {
	if settings == nil {
		settings = file.Empty()
	}

	switch provider {
	case AWS:
		cfg := aws.LoadConfig(settings.AWS)
		if cfg.AccessKey != "" && len(cfg.AccessKey) >= 4 {
			logger.Log.Debug("Loaded AWS configuration",
				zap.String("access_key", cfg.AccessKey[:4]+"****"),
				zap.String("region", cfg.Region),
				zap.Strings("regions", cfg.Regions))
		} else {
			logger.Log.Debug("Loaded AWS configuration, using default credential chain",
				zap.String("region", cfg.Region),
				zap.Strings("regions", cfg.Regions))
		}

		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil

	case Azure:
		cfg := azure.LoadConfig(settings.Azure)
		logger.Log.Debug("Loaded Azure configuration",
			zap.String("subscription_id", cfg.SubscriptionID),
			zap.String("tenant_id", cfg.TenantID),
			zap.String("client_id", cfg.ClientID))

		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil

	default:
		return nil, errors.NewUnsupportedProvider(string(provider))
	}
}
