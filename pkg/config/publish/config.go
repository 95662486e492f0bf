package publish

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/oldmonad/cloudinv/pkg/config/file"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"go.uber.org/zap"
)

const (
	DefaultPort    = 22
	DefaultTimeout = 30 * time.Second
)

// Config describes the SCP target the inventory is pushed to.
type Config struct {
	Enabled        bool
	Host           string
	Port           int
	User           string
	Password       string
	PrivateKeyPath string
	KnownHostsPath string
	RemoteDir      string
	Timeout        time.Duration
}

func LoadConfig(defaults *file.PublishBlock) (*Config, error) {
	if defaults == nil {
		defaults = &file.PublishBlock{}
	}

	cfg := &Config{
		Enabled:        true,
		Host:           file.EnvOr("SCP_HOST", defaults.Host),
		User:           file.EnvOr("SCP_USER", defaults.User),
		Password:       os.Getenv("SCP_PASSWORD"),
		PrivateKeyPath: file.EnvOr("SCP_PRIVATE_KEY_PATH", defaults.PrivateKey),
		KnownHostsPath: file.EnvOr("SCP_KNOWN_HOSTS_PATH", defaults.KnownHosts),
		RemoteDir:      file.EnvOr("SCP_REMOTE_DIR", defaults.RemoteDir),
		Port:           DefaultPort,
		Timeout:        DefaultTimeout,
	}

	if defaults.Enabled != nil {
		cfg.Enabled = *defaults.Enabled
	}
	if raw := os.Getenv("PUBLISH_ENABLED"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.NewErrBoolParse("PUBLISH_ENABLED", raw, err)
		}
		cfg.Enabled = enabled
	}

	if defaults.Port != 0 {
		cfg.Port = defaults.Port
	}
	if raw := os.Getenv("SCP_PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewErrPortParse("SCP_PORT", raw, err)
		}
		cfg.Port = port
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, errors.NewErrPortOutOfRange("SCP_PORT", cfg.Port)
	}

	if raw := file.EnvOr("SCP_TIMEOUT", defaults.Timeout); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.NewErrDurationParse("SCP_TIMEOUT", raw, err)
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}

// Validate checks the target is fully described. A disabled publisher is
// always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	var missing []string
	if c.Host == "" {
		missing = append(missing, "SCP_HOST")
	}
	if c.User == "" {
		missing = append(missing, "SCP_USER")
	}
	if c.Password == "" && c.PrivateKeyPath == "" {
		missing = append(missing, "SCP_PASSWORD or SCP_PRIVATE_KEY_PATH")
	}
	if c.KnownHostsPath == "" {
		missing = append(missing, "SCP_KNOWN_HOSTS_PATH")
	}
	if c.RemoteDir == "" {
		missing = append(missing, "SCP_REMOTE_DIR")
	}

	if len(missing) > 0 {
		logger.Log.Error("Publish config validation failed", zap.Strings("missing", missing))
		return errors.NewErrMissingPublishConfig(missing)
	}
	return nil
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
