package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// QuotaResetter zeroes subscription counters whose window has elapsed at now.
type QuotaResetter interface {
	ResetExpiredQuotas(ctx context.Context, now time.Time) (int64, error)
}

type QuotaResetWorker struct {
	resetter     QuotaResetter
	tickInterval time.Duration
	logger       logrus.FieldLogger
	now          func() time.Time
}

func NewQuotaResetWorker(resetter QuotaResetter, tickInterval time.Duration, logger logrus.FieldLogger) *QuotaResetWorker {
	if tickInterval <= 0 {
		tickInterval = 5 * time.Minute
	}
	return &QuotaResetWorker{
		resetter:     resetter,
		tickInterval: tickInterval,
		logger:       logger,
		now:          time.Now,
	}
}

// Start runs one pass immediately and then one per tick until ctx is cancelled.
func (w *QuotaResetWorker) Start(ctx context.Context) {
	w.logger.WithField("interval", w.tickInterval.String()).Info("🕒 quota reset worker started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.resetExpired(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("⚠️ quota reset worker stopped")
			return
		case <-ticker.C:
			w.resetExpired(ctx)
		}
	}
}

func (w *QuotaResetWorker) resetExpired(ctx context.Context) {
	n, err := w.resetter.ResetExpiredQuotas(ctx, w.now())
	if err != nil {
		w.logger.WithError(err).Error("❌ failed to reset subscription quotas")
		return
	}
	if n > 0 {
		w.logger.WithField("subscriptions", n).Info("✅ subscription quotas reset")
	}
}
