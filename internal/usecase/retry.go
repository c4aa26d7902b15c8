package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/xavierca1/crebit-marketplace/internal/entity"
)

const maxConflictRetries = 3

var conflictRetry = retrypolicy.NewBuilder[any]().
	HandleIf(func(_ any, err error) bool {
		return errors.Is(err, entity.ErrStorageConflict)
	}).
	WithMaxRetries(maxConflictRetries).
	WithBackoff(20*time.Millisecond, 250*time.Millisecond).
	WithJitterFactor(0.1).
	ReturnLastFailure().
	Build()

// withConflictRetry re-runs fn while it fails with ErrStorageConflict, then surfaces the last error.
func withConflictRetry(ctx context.Context, fn func() error) error {
	return failsafe.With[any](conflictRetry).WithContext(ctx).Run(fn)
}
