package cloud

import (
	"context"

	"github.com/oldmonad/cloudinv/pkg/config/cloud"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/logger"
	"go.uber.org/zap"
)

// Instance is one VM as seen by an enumerator.
type Instance struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Location   string            `json:"location,omitempty"`
	KeyName    string            `json:"key_name,omitempty"`
	PrivateIPs []string          `json:"private_ips"`
	Tags       map[string]string `json:"tags"`
}

type CloudProvider interface {
	FetchInstances(ctx context.Context, cfg cloud.ProviderConfig, opts FetchOptions) ([]Instance, error)
}

// FailurePolicy decides what happens when a single unit of work (one VM, one
// network interface) fails. Listing failures always abort.
type FailurePolicy string

const (
	SkipFailedUnits   FailurePolicy = "skip"
	AbortOnFailedUnit FailurePolicy = "abort"
)

type FetchOptions struct {
	// TagKey is the grouping tag, "function" unless configured otherwise.
	TagKey string
	Policy FailurePolicy
}

// HandleUnitError logs a unit failure and returns nil to continue, or the
// wrapped error when the policy says to abort.
func (o FetchOptions) HandleUnitError(unit string, err error, fields ...zap.Field) error {
	fields = append([]zap.Field{zap.String("unit", unit), zap.Error(err)}, fields...)
	if o.Policy == AbortOnFailedUnit {
		logger.GetLogger().Error("Unit failed, aborting", fields...)
		return errors.NewUnitFailure(unit, err)
	}
	logger.GetLogger().Warn("Unit failed, skipping", fields...)
	return nil
}
