package aws

import (
	"os"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/oldmonad/cloudinv/pkg/config/file"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"go.uber.org/zap"
)

var regionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)

type Config struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
	// Region is where DescribeRegions is called when Regions is empty.
	Region string
	// Regions to enumerate. Empty means every region enabled for the account.
	Regions []string
}

func LoadConfig(defaults *file.AWSBlock) *Config {
	if defaults == nil {
		defaults = &file.AWSBlock{}
	}

	regions := defaults.Regions
	if raw := os.Getenv("AWS_REGIONS"); raw != "" {
		regions = SplitRegions(raw)
	}

	return &Config{
		AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken: os.Getenv("AWS_SESSION_TOKEN"),
		Region:       file.EnvOr("AWS_REGION", defaults.Region),
		Regions:      regions,
	}
}

// SplitRegions parses a comma separated region list, dropping blanks.
func SplitRegions(raw string) []string {
	var regions []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			regions = append(regions, r)
		}
	}
	return regions
}

func (c *Config) Validate() error {
	var missing []string
	if c.Region == "" {
		missing = append(missing, "AWS_REGION")
	}
	// Static credentials are optional, but half a key pair is a mistake.
	if c.AccessKey != "" && c.SecretKey == "" {
		missing = append(missing, "AWS_SECRET_ACCESS_KEY")
	}
	if c.SecretKey != "" && c.AccessKey == "" {
		missing = append(missing, "AWS_ACCESS_KEY_ID")
	}

	if len(missing) > 0 {
		logger.Log.Error("AWS config validation failed", zap.Strings("missing", missing))
		return errors.NewErrMissingCredentials(missing)
	}

	for _, r := range append([]string{c.Region}, c.Regions...) {
		if !regionPattern.MatchString(r) {
			logger.Log.Error("AWS config validation failed", zap.String("region", r))
			return errors.NewErrInvalidRegion(r)
		}
	}
	return nil
}

// HasStaticCredentials reports whether an access key pair was configured.
// Without one the SDK default credential chain is used.
func (c *Config) HasStaticCredentials() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

func (c *Config) GetCredentials() interface{} {
	return aws.Credentials{
		AccessKeyID:     c.AccessKey,
		SecretAccessKey: c.SecretKey,
		SessionToken:    c.SessionToken,
	}
}

func (c *Config) Scope() []string {
	if len(c.Regions) == 0 {
		return []string{"all regions"}
	}
	return c.Regions
}
