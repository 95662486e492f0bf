package aws

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsPkgConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/oldmonad/cloudinv/pkg/cloud"
	config "github.com/oldmonad/cloudinv/pkg/config/cloud"
	awsConfig "github.com/oldmonad/cloudinv/pkg/config/cloud/aws"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"go.uber.org/zap"
)

const nameTag = "Name"

type EC2Client interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// ClientFactory returns an EC2 client bound to region.
type ClientFactory func(ctx context.Context, cfg *awsConfig.Config, region string) (EC2Client, error)

type AWSProvider struct {
	NewClient ClientFactory
}

func NewAWSProvider() *AWSProvider {
	return &AWSProvider{NewClient: NewEC2Client}
}

// NewEC2Client loads the SDK configuration for region, using the static key
// pair when one is configured and the default credential chain otherwise.
func NewEC2Client(ctx context.Context, cfg *awsConfig.Config, region string) (EC2Client, error) {
	opts := []func(*awsPkgConfig.LoadOptions) error{
		awsPkgConfig.WithRegion(region),
	}
	if cfg.HasStaticCredentials() {
		opts = append(opts, awsPkgConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		))
	}

	awsCfg, err := awsPkgConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewAWSConfigLoad(region, err)
	}
	return ec2.NewFromConfig(awsCfg), nil
}

func (p *AWSProvider) SetClientFactory(f ClientFactory) {
	p.NewClient = f
}

// FetchInstances lists the instances of every target region. Any listing
// failure aborts the whole enumeration so a partial inventory is never
// produced.
func (p *AWSProvider) FetchInstances(ctx context.Context, providerCfg config.ProviderConfig, opts cloud.FetchOptions) ([]cloud.Instance, error) {
	cfg, ok := providerCfg.(*awsConfig.Config)
	if !ok {
		return nil, errors.NewWrongConfigType(providerCfg, "*aws.Config")
	}
	if p.NewClient == nil {
		p.NewClient = NewEC2Client
	}

	log := logger.WithField("component", "aws-enumerator")

	regions := cfg.Regions
	if len(regions) == 0 {
		discovered, err := p.discoverRegions(ctx, cfg)
		if err != nil {
			return nil, err
		}
		regions = discovered
		log.Info("Discovered regions", zap.Strings("regions", regions))
	}

	instances := make([]cloud.Instance, 0)
	for _, region := range regions {
		client, err := p.NewClient(ctx, cfg, region)
		if err != nil {
			return nil, err
		}

		found, err := listRegion(ctx, client, region)
		if err != nil {
			log.Error("Failed to list instances", zap.String("region", region), zap.Error(err))
			return nil, err
		}
		log.Debug("Listed region", zap.String("region", region), zap.Int("instances", len(found)))
		instances = append(instances, found...)
	}

	log.Info("Enumerated AWS instances",
		zap.Int("regions", len(regions)),
		zap.Int("instances", len(instances)))
	return instances, nil
}

func (p *AWSProvider) discoverRegions(ctx context.Context, cfg *awsConfig.Config) ([]string, error) {
	client, err := p.NewClient(ctx, cfg, cfg.Region)
	if err != nil {
		return nil, err
	}

	out, err := client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, errors.NewDescribeRegions(err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if name := aws.ToString(r.RegionName); name != "" {
			regions = append(regions, name)
		}
	}
	sort.Strings(regions)
	return regions, nil
}

func listRegion(ctx context.Context, client EC2Client, region string) ([]cloud.Instance, error) {
	paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{})
	instances := make([]cloud.Instance, 0)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.NewDescribeInstances(region, err)
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				if instance.PrivateIpAddress == nil {
					logger.GetLogger().Debug("Skipping instance without private IP",
						zap.String("instance_id", aws.ToString(instance.InstanceId)),
						zap.String("state", stateName(instance.State)))
					continue
				}
				instances = append(instances, mapInstance(instance, region))
			}
		}
	}

	return instances, nil
}

func mapInstance(instance types.Instance, region string) cloud.Instance {
	i := cloud.Instance{
		ID:         aws.ToString(instance.InstanceId),
		Location:   region,
		KeyName:    aws.ToString(instance.KeyName),
		PrivateIPs: []string{aws.ToString(instance.PrivateIpAddress)},
		Tags:       make(map[string]string, len(instance.Tags)),
	}

	for _, tag := range instance.Tags {
		i.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	i.Name = i.Tags[nameTag]

	return i
}

func stateName(state *types.InstanceState) string {
	if state == nil {
		return ""
	}
	return string(state.Name)
}
