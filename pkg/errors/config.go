package errors

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
)

// ErrUnsupportedProvider is returned when the provider string is unknown.
type ErrUnsupportedProvider struct {
	ProviderType string
}

func (e ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported provider: %q (valid: aws, azure)", e.ProviderType)
}

func NewUnsupportedProvider(pt string) error {
	return ErrUnsupportedProvider{ProviderType: pt}
}

// ErrUnsupportedPolicy is returned for an unknown ON_UNIT_ERROR value.
type ErrUnsupportedPolicy struct {
	Policy string
}

func (e ErrUnsupportedPolicy) Error() string {
	return fmt.Sprintf("unsupported unit failure policy: %q (valid: skip, abort)", e.Policy)
}

func NewUnsupportedPolicy(p string) error {
	return ErrUnsupportedPolicy{Policy: p}
}

// ErrBoolParse wraps failures parsing a boolean env var such as DEBUG.
type ErrBoolParse struct {
	Name     string
	RawValue string
	Err      error
}

func (e ErrBoolParse) Error() string {
	return fmt.Sprintf("failed to parse %s=%q: %v", e.Name, e.RawValue, e.Err)
}

func (e ErrBoolParse) Unwrap() error {
	return e.Err
}

func NewErrBoolParse(name, raw string, err error) error {
	return ErrBoolParse{Name: name, RawValue: raw, Err: err}
}

// ErrMissingCloudProvider is returned when CLOUD_PROVIDER is unset.
type ErrMissingCloudProvider struct{}

func (e ErrMissingCloudProvider) Error() string {
	return "CLOUD_PROVIDER environment variable is required"
}

func NewErrMissingCloudProvider() error {
	return ErrMissingCloudProvider{}
}

// ErrPortParse wraps failures parsing a port value.
type ErrPortParse struct {
	Name     string
	RawValue string
	Err      error
}

func (e ErrPortParse) Error() string {
	return fmt.Sprintf("invalid %s=%q: %v", e.Name, e.RawValue, e.Err)
}

func (e ErrPortParse) Unwrap() error {
	return e.Err
}

func NewErrPortParse(name, raw string, err error) error {
	return ErrPortParse{Name: name, RawValue: raw, Err: err}
}

// ErrPortOutOfRange indicates a port outside 1-65535.
type ErrPortOutOfRange struct {
	Name string
	Port int
}

func (e ErrPortOutOfRange) Error() string {
	return fmt.Sprintf("%s out of bounds: %d (must be 1-65535)", e.Name, e.Port)
}

func NewErrPortOutOfRange(name string, port int) error {
	return ErrPortOutOfRange{Name: name, Port: port}
}

// ErrDurationParse wraps failures parsing a duration value.
type ErrDurationParse struct {
	Name     string
	RawValue string
	Err      error
}

func (e ErrDurationParse) Error() string {
	return fmt.Sprintf("invalid %s=%q: %v", e.Name, e.RawValue, e.Err)
}

func (e ErrDurationParse) Unwrap() error {
	return e.Err
}

func NewErrDurationParse(name, raw string, err error) error {
	return ErrDurationParse{Name: name, RawValue: raw, Err: err}
}

// ErrCloudConfigNotInit indicates LoadCloudConfig wasn't called or failed.
type ErrCloudConfigNotInit struct{}

func (e ErrCloudConfigNotInit) Error() string {
	return "cloud configuration not initialized"
}

func NewErrCloudConfigNotInit() error {
	return ErrCloudConfigNotInit{}
}

// ErrMissingCredentials is returned when required AWS settings are unset.
type ErrMissingCredentials struct {
	Missing []string
}

func (e ErrMissingCredentials) Error() string {
	return fmt.Sprintf("missing AWS configuration: %s", strings.Join(e.Missing, ", "))
}

// NewErrMissingCredentials constructs an ErrMissingCredentials listing which
// environment variables were empty.
func NewErrMissingCredentials(missing []string) error {
	return ErrMissingCredentials{Missing: missing}
}

// ErrMissingAzureConfig indicates that one or more required Azure settings
// were not set.
type ErrMissingAzureConfig struct {
	Missing []string
}

func (e ErrMissingAzureConfig) Error() string {
	return fmt.Sprintf("missing Azure configuration: %s", strings.Join(e.Missing, ", "))
}

func NewErrMissingAzureConfig(missing []string) error {
	return ErrMissingAzureConfig{Missing: missing}
}

// ErrMissingPublishConfig indicates incomplete SCP settings.
type ErrMissingPublishConfig struct {
	Missing []string
}

func (e ErrMissingPublishConfig) Error() string {
	return fmt.Sprintf("missing publish configuration: %s", strings.Join(e.Missing, ", "))
}

func NewErrMissingPublishConfig(missing []string) error {
	return ErrMissingPublishConfig{Missing: missing}
}

// ErrInvalidRegion is returned for a malformed entry in AWS_REGIONS.
type ErrInvalidRegion struct {
	Region string
}

func (e ErrInvalidRegion) Error() string {
	return fmt.Sprintf("invalid AWS region %q", e.Region)
}

func NewErrInvalidRegion(region string) error {
	return ErrInvalidRegion{Region: region}
}

// ErrConfigFileRead wraps failures reading the HCL settings file.
type ErrConfigFileRead struct {
	Path string
	Err  error
}

func (e ErrConfigFileRead) Error() string {
	return fmt.Sprintf("failed to read config file %s: %v", e.Path, e.Err)
}

func (e ErrConfigFileRead) Unwrap() error {
	return e.Err
}

func NewErrConfigFileRead(path string, err error) error {
	return ErrConfigFileRead{Path: path, Err: err}
}

// ErrHCLParseFailure wraps an hcl.Diagnostics from parsing HCL.
type ErrHCLParseFailure struct {
	Diagnostics hcl.Diagnostics
}

func (e ErrHCLParseFailure) Error() string {
	return fmt.Sprintf("failed to parse HCL: %s", e.Diagnostics.Error())
}

func (e ErrHCLParseFailure) Unwrap() error {
	return e.Diagnostics.Errs()[0]
}

// ErrHCLDecodeFailure wraps an hcl.Diagnostics from decoding HCL bodies.
type ErrHCLDecodeFailure struct {
	Diagnostics hcl.Diagnostics
}

func (e ErrHCLDecodeFailure) Error() string {
	return fmt.Sprintf("failed to decode HCL: %s", e.Diagnostics.Error())
}

func (e ErrHCLDecodeFailure) Unwrap() error {
	return e.Diagnostics.Errs()[0]
}
