package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oldmonad/cloudinv/pkg/cloud"
	config "github.com/oldmonad/cloudinv/pkg/config/cloud"
	"github.com/oldmonad/cloudinv/pkg/errors"
)

func NewValidator() Validator {
	providers := make(map[string]config.ProviderType, len(config.ProviderTypes))
	for _, p := range config.ProviderTypes {
		providers[string(p)] = p
	}
	return &ValidatorOptions{
		providers: providers,
		policies: map[string]cloud.FailurePolicy{
			string(cloud.SkipFailedUnits):   cloud.SkipFailedUnits,
			string(cloud.AbortOnFailedUnit): cloud.AbortOnFailedUnit,
		},
	}
}

type ValidatorOptions struct {
	providers map[string]config.ProviderType
	policies  map[string]cloud.FailurePolicy
}

type Validator interface {
	ValidateProvider(raw string) (config.ProviderType, error)
	ValidateFailurePolicy(raw string) (cloud.FailurePolicy, error)
}

var defaultValidator = NewValidator()

// ValidateProvider normalizes raw (case and surrounding spaces) and checks
// it names a supported cloud.
func ValidateProvider(raw string) (config.ProviderType, error) {
	return defaultValidator.ValidateProvider(raw)
}

func ValidateFailurePolicy(raw string) (cloud.FailurePolicy, error) {
	return defaultValidator.ValidateFailurePolicy(raw)
}

func (v *ValidatorOptions) ValidateProvider(raw string) (config.ProviderType, error) {
	p, ok := v.providers[normalize(raw)]
	if !ok {
		return "", errors.NewUnsupportedProvider(raw)
	}
	return p, nil
}

func (v *ValidatorOptions) ValidateFailurePolicy(raw string) (cloud.FailurePolicy, error) {
	p, ok := v.policies[normalize(raw)]
	if !ok {
		return "", errors.NewUnsupportedPolicy(raw)
	}
	return p, nil
}

// SupportedProviders returns the provider names sorted alphabetically.
func (v *ValidatorOptions) SupportedProviders() []string {
	names := make([]string, 0, len(v.providers))
	for k := range v.providers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FormattedProviders lists the supported providers one per line, for help
// output.
func (v *ValidatorOptions) FormattedProviders() string {
	var result string
	for _, p := range v.SupportedProviders() {
		result += fmt.Sprintf("  - %s\n", p)
	}
	return result
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
