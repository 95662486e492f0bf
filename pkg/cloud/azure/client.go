package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/oldmonad/cloudinv/pkg/cloud"
	config "github.com/oldmonad/cloudinv/pkg/config/cloud"
	azureConfig "github.com/oldmonad/cloudinv/pkg/config/cloud/azure"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"go.uber.org/zap"
)

// VMClient lists the virtual machines of one subscription.
type VMClient interface {
	ListAll(ctx context.Context) ([]*armcompute.VirtualMachine, error)
}

// InterfaceClient fetches a single network interface.
type InterfaceClient interface {
	Get(ctx context.Context, resourceGroup, name string) (armnetwork.Interface, error)
}

type ClientFactory func(cfg *azureConfig.Config) (VMClient, InterfaceClient, error)

type vmClientImpl struct {
	client *armcompute.VirtualMachinesClient
}

func (c *vmClientImpl) ListAll(ctx context.Context) ([]*armcompute.VirtualMachine, error) {
	var vms []*armcompute.VirtualMachine
	pager := c.client.NewListAllPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		vms = append(vms, page.Value...)
	}
	return vms, nil
}

type interfaceClientImpl struct {
	client *armnetwork.InterfacesClient
}

func (c *interfaceClientImpl) Get(ctx context.Context, resourceGroup, name string) (armnetwork.Interface, error) {
	resp, err := c.client.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return armnetwork.Interface{}, err
	}
	return resp.Interface, nil
}

// NewSDKClients authenticates with the configured service principal and
// builds the compute and network clients for the subscription.
func NewSDKClients(cfg *azureConfig.Config) (VMClient, InterfaceClient, error) {
	cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, nil)
	if err != nil {
		return nil, nil, errors.NewAzureCredential(err)
	}

	vmClient, err := armcompute.NewVirtualMachinesClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, nil, errors.NewAzureClient("compute", err)
	}
	nicClient, err := armnetwork.NewInterfacesClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, nil, errors.NewAzureClient("network", err)
	}

	return &vmClientImpl{client: vmClient}, &interfaceClientImpl{client: nicClient}, nil
}

type AzureProvider struct {
	NewClients ClientFactory
}

func NewAzureProvider() *AzureProvider {
	return &AzureProvider{NewClients: NewSDKClients}
}

func (p *AzureProvider) SetClientFactory(f ClientFactory) {
	p.NewClients = f
}

// FetchInstances lists every VM of the subscription and resolves the private
// addresses of its network interfaces. VMs without tags are ignored.
func (p *AzureProvider) FetchInstances(ctx context.Context, providerCfg config.ProviderConfig, opts cloud.FetchOptions) ([]cloud.Instance, error) {
	cfg, ok := providerCfg.(*azureConfig.Config)
	if !ok {
		return nil, errors.NewWrongConfigType(providerCfg, "*azure.Config")
	}
	if p.NewClients == nil {
		p.NewClients = NewSDKClients
	}

	vmClient, nicClient, err := p.NewClients(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.WithField("component", "azure-enumerator")

	vms, err := vmClient.ListAll(ctx)
	if err != nil {
		log.Error("Failed to list virtual machines", zap.Error(err))
		return nil, errors.NewListVirtualMachines(cfg.SubscriptionID, err)
	}

	instances := make([]cloud.Instance, 0, len(vms))
	for _, vm := range vms {
		if vm == nil {
			continue
		}
		name := deref(vm.Name)

		if vm.Tags == nil {
			log.Debug("Skipping untagged virtual machine", zap.String("vm", name))
			continue
		}

		tags := make(map[string]string, len(vm.Tags))
		for k, v := range vm.Tags {
			tags[k] = deref(v)
		}
		if _, ok := tags[opts.TagKey]; !ok {
			if err := opts.HandleUnitError(name, errors.NewMissingFunctionTag(name, opts.TagKey)); err != nil {
				return nil, err
			}
			continue
		}

		ips, err := resolveAddresses(ctx, nicClient, vm, opts)
		if err != nil {
			return nil, err
		}
		if len(ips) == 0 {
			log.Debug("Virtual machine has no private addresses", zap.String("vm", name))
		}

		instances = append(instances, cloud.Instance{
			ID:         deref(vm.ID),
			Name:       name,
			Location:   deref(vm.Location),
			PrivateIPs: ips,
			Tags:       tags,
		})
	}

	log.Info("Enumerated Azure virtual machines",
		zap.String("subscription_id", cfg.SubscriptionID),
		zap.Int("listed", len(vms)),
		zap.Int("instances", len(instances)))
	return instances, nil
}

// resolveAddresses returns the private address of every IP configuration on
// every interface of vm. An interface that cannot be fetched is handed to
// the failure policy and the others are still resolved.
func resolveAddresses(ctx context.Context, client InterfaceClient, vm *armcompute.VirtualMachine, opts cloud.FetchOptions) ([]string, error) {
	if vm.Properties == nil || vm.Properties.NetworkProfile == nil {
		return nil, nil
	}

	var ips []string
	for _, ref := range vm.Properties.NetworkProfile.NetworkInterfaces {
		if ref == nil || ref.ID == nil {
			continue
		}
		id := *ref.ID

		nic, err := fetchInterface(ctx, client, id)
		if err != nil {
			if err := opts.HandleUnitError(id, errors.NewResolveInterface(id, err), zap.String("vm", deref(vm.Name))); err != nil {
				return nil, err
			}
			continue
		}

		if nic.Properties == nil {
			continue
		}
		for _, ipConfig := range nic.Properties.IPConfigurations {
			if ipConfig == nil || ipConfig.Properties == nil {
				continue
			}
			if ip := deref(ipConfig.Properties.PrivateIPAddress); ip != "" {
				ips = append(ips, ip)
			}
		}
	}
	return ips, nil
}

func fetchInterface(ctx context.Context, client InterfaceClient, id string) (armnetwork.Interface, error) {
	resourceID, err := arm.ParseResourceID(id)
	if err != nil {
		return armnetwork.Interface{}, err
	}
	return client.Get(ctx, resourceID.ResourceGroupName, resourceID.Name)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
