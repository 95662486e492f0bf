package app

import (
	"context"
	"sync"

	"github.com/oldmonad/cloudinv/pkg/cloud"
	"github.com/oldmonad/cloudinv/pkg/cloud/aws"
	"github.com/oldmonad/cloudinv/pkg/cloud/azure"
	config "github.com/oldmonad/cloudinv/pkg/config/cloud"
	"github.com/oldmonad/cloudinv/pkg/config/env"
	pubConfig "github.com/oldmonad/cloudinv/pkg/config/publish"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/inventory"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"github.com/oldmonad/cloudinv/pkg/ports"
	"github.com/oldmonad/cloudinv/pkg/publish"
	"go.uber.org/zap"
)

// ProviderFactory returns the enumerator for a provider type.
type ProviderFactory func(config.ProviderType) (cloud.CloudProvider, error)

type PublisherFactory func(*pubConfig.Config) publish.Publisher

type App struct {
	Logger         *zap.Logger
	configurations env.Configurations

	NewProvider  ProviderFactory
	NewPublisher PublisherFactory

	// runs are serialized; serve mode can receive overlapping refreshes
	mu sync.Mutex
}

type RunOptions struct {
	SkipPublish bool
	Source      ports.Runtype
}

// Result summarizes one pipeline run.
type Result struct {
	Provider   config.ProviderType  `json:"provider"`
	Path       string               `json:"path"`
	Groups     int                  `json:"groups"`
	Hosts      int                  `json:"hosts"`
	Published  bool                 `json:"published"`
	RemotePath string               `json:"remote_path,omitempty"`
	Inventory  *inventory.Inventory `json:"-"`
}

// AppRunner defines the contract for running the core application logic
type AppRunner interface {
	Run(ctx context.Context, opts RunOptions) (*Result, error)
}

// NewApp initializes and returns a new App instance
func NewApp(configurations env.Configurations) *App {
	return &App{
		Logger:         logger.GetLogger(),
		configurations: configurations,
		NewProvider:    DefaultProviderFactory,
		NewPublisher:   DefaultPublisherFactory,
	}
}

func DefaultProviderFactory(providerType config.ProviderType) (cloud.CloudProvider, error) {
	switch providerType {
	case config.AWS:
		return aws.NewAWSProvider(), nil
	case config.Azure:
		return azure.NewAzureProvider(), nil
	default:
		return nil, errors.NewUnsupportedProvider(string(providerType))
	}
}

func DefaultPublisherFactory(cfg *pubConfig.Config) publish.Publisher {
	return publish.NewSCPPublisher(cfg)
}

// Configurations returns the application's configuration settings
func (a *App) Configurations() env.Configurations {
	return a.configurations
}

// Run executes the whole pipeline:
// 1. Enumerate the provider's instances
// 2. Group their private addresses by function tag
// 3. Write the inventory file
// 4. Push it to the publish target
//
// Nothing is written when enumeration fails.
func (a *App) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	log := a.Logger.With(
		zap.String("provider", string(a.configurations.CloudProviderType)),
		zap.String("source", string(opts.Source)))
	log.Info("Starting inventory run")

	instances, err := a.GetLiveInstances(ctx)
	if err != nil {
		log.Error("Enumeration failed, inventory left untouched", zap.Error(err))
		return nil, err
	}

	inv := inventory.Build(instances, a.configurations.FunctionTagKey)
	result := &Result{
		Provider:  a.configurations.CloudProviderType,
		Groups:    inv.Len(),
		Hosts:     inv.HostCount(),
		Inventory: inv,
	}

	path, err := a.WriteInventory(inv)
	if err != nil {
		return nil, err
	}
	result.Path = path

	if opts.SkipPublish || a.configurations.Publish == nil || !a.configurations.Publish.Enabled {
		log.Info("Publishing skipped", zap.String("path", path))
		return result, nil
	}

	remotePath, err := a.NewPublisher(a.configurations.Publish).Publish(ctx, path)
	if err != nil {
		return nil, err
	}
	result.Published = true
	result.RemotePath = remotePath

	log.Info("Inventory run finished",
		zap.Int("groups", result.Groups),
		zap.Int("hosts", result.Hosts),
		zap.String("remote_path", remotePath))
	return result, nil
}

// GetLiveInstances selects the enumerator for the configured provider and
// lists its instances.
func (a *App) GetLiveInstances(ctx context.Context) ([]cloud.Instance, error) {
	provider, err := a.NewProvider(a.configurations.CloudProviderType)
	if err != nil {
		return nil, err
	}
	return provider.FetchInstances(ctx, a.configurations.CloudConfig, a.configurations.FetchOptions())
}

// WriteInventory writes inv to the provider's inventory file and returns its
// path.
func (a *App) WriteInventory(inv *inventory.Inventory) (string, error) {
	path := a.configurations.InventoryPath(inventory.FileName(a.configurations.CloudProviderType))
	a.Logger.Info("Writing inventory", zap.String("path", path))

	if err := inv.WriteFile(path); err != nil {
		a.Logger.Error("Failed to write inventory", zap.Error(err))
		return "", err
	}
	return path, nil
}
