package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// TryProfiles runs attempt with each profile in order and returns the first
// success together with the profile that produced it. Later profiles are not
// tried once one succeeds. When every profile fails the per-profile causes
// are returned as one aggregated error. Cancellation of ctx stops the
// iteration and returns the context error.
func TryProfiles[T any](ctx context.Context, profiles []domain.ClientProfile, logger *zap.Logger, attempt func(ctx context.Context, profile domain.ClientProfile) (T, error)) (T, domain.ClientProfile, error) {
	var zero T
	var result error

	for _, profile := range profiles {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}

		value, err := attempt(ctx, profile)
		if err == nil {
			if logger != nil {
				logger.Debug("Client profile succeeded", zap.String("profile", string(profile)))
			}
			return value, profile, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, "", ctxErr
		}
		if logger != nil {
			logger.Info("Client profile failed, trying next",
				zap.String("profile", string(profile)),
				zap.Error(err))
		}
		result = multierror.Append(result, multierror.Prefix(err, fmt.Sprintf("[%s]", profile)))
	}

	if result == nil {
		result = fmt.Errorf("no client profiles configured")
	}
	return zero, "", result
}
