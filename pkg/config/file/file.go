package file

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"go.uber.org/zap"
)

// Settings is the optional HCL settings file. Secrets are never read from
// it; they only come from the environment.
//
//	provider      = "aws"
//	function_tag  = "function"
//	output_dir    = "/var/lib/cloudinv"
//	on_unit_error = "skip"
//
//	aws {
//	  region  = "ap-south-1"
//	  regions = ["us-east-1", "eu-west-1"]
//	}
//
//	azure {
//	  subscription_id = "..."
//	  tenant_id       = "..."
//	  client_id       = "..."
//	}
//
//	publish {
//	  host        = "10.0.0.10"
//	  user        = "ansible"
//	  remote_dir  = "~/"
//	  known_hosts = "/etc/cloudinv/known_hosts"
//	}
type Settings struct {
	Provider    string        `hcl:"provider,optional"`
	FunctionTag string        `hcl:"function_tag,optional"`
	OutputDir   string        `hcl:"output_dir,optional"`
	OnUnitError string        `hcl:"on_unit_error,optional"`
	AWS         *AWSBlock     `hcl:"aws,block"`
	Azure       *AzureBlock   `hcl:"azure,block"`
	Publish     *PublishBlock `hcl:"publish,block"`
}

type AWSBlock struct {
	Region  string   `hcl:"region,optional"`
	Regions []string `hcl:"regions,optional"`
}

type AzureBlock struct {
	SubscriptionID string `hcl:"subscription_id,optional"`
	TenantID       string `hcl:"tenant_id,optional"`
	ClientID       string `hcl:"client_id,optional"`
}

type PublishBlock struct {
	Enabled    *bool  `hcl:"enabled,optional"`
	Host       string `hcl:"host,optional"`
	Port       int    `hcl:"port,optional"`
	User       string `hcl:"user,optional"`
	RemoteDir  string `hcl:"remote_dir,optional"`
	KnownHosts string `hcl:"known_hosts,optional"`
	PrivateKey string `hcl:"private_key,optional"`
	Timeout    string `hcl:"timeout,optional"`
}

// Load reads and decodes the settings file at path. An empty path yields
// empty settings so callers never have to nil-check the blocks.
func Load(path string) (*Settings, error) {
	if path == "" {
		return Empty(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewErrConfigFileRead(path, err)
	}
	return Parse(content, path)
}

// Parse decodes HCL settings from content; filename is only used in
// diagnostics.
func Parse(content []byte, filename string) (*Settings, error) {
	log := logger.WithField("component", "config-file")
	log.Debug("Parsing settings file", zap.String("file", filename))

	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(content, filename)
	if diags.HasErrors() {
		logDiagnostics(log, "HCL parsing failed", diags)
		return nil, errors.ErrHCLParseFailure{Diagnostics: diags}
	}

	var settings Settings
	diags = gohcl.DecodeBody(f.Body, nil, &settings)
	if diags.HasErrors() {
		logDiagnostics(log, "HCL decoding failed", diags)
		return nil, errors.ErrHCLDecodeFailure{Diagnostics: diags}
	}

	settings.fill()
	log.Info("Loaded settings file", zap.String("file", filename))
	return &settings, nil
}

// Empty returns settings with every block present and zero-valued.
func Empty() *Settings {
	s := &Settings{}
	s.fill()
	return s
}

func (s *Settings) fill() {
	if s.AWS == nil {
		s.AWS = &AWSBlock{}
	}
	if s.Azure == nil {
		s.Azure = &AzureBlock{}
	}
	if s.Publish == nil {
		s.Publish = &PublishBlock{}
	}
}

func logDiagnostics(log *zap.Logger, msg string, diags hcl.Diagnostics) {
	log.Error(msg,
		zap.String("error", diags.Error()),
		zap.Int("error_count", len(diags)))
	for _, diag := range diags {
		log.Debug("Diagnostic",
			zap.String("summary", diag.Summary),
			zap.String("detail", diag.Detail),
			zap.String("position", fmt.Sprintf("%v", diag.Subject)))
	}
}

// EnvOr returns the environment variable key when it is set and non-empty,
// otherwise fallback (usually the settings file value).
func EnvOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
