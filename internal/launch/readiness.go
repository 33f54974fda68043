package launch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/parcel/internal/domain"
	"github.com/eliteGoblin/parcel/internal/session"
)

// ReadinessWatcher tells the UI exactly once when the cumulative expected
// item count has been fully delivered. Started once per session, at window
// setup time.
type ReadinessWatcher struct {
	interval time.Duration
	counters *session.Counters
	emitter  domain.Emitter
	logger   *zap.Logger
}

// NewReadinessWatcher creates the watcher for one session.
func NewReadinessWatcher(
	interval time.Duration,
	counters *session.Counters,
	emitter domain.Emitter,
	logger *zap.Logger,
) *ReadinessWatcher {
	return &ReadinessWatcher{
		interval: interval,
		counters: counters,
		emitter:  emitter,
		logger:   logger,
	}
}

// Run polls the counters until they converge on a non-zero value, emits the
// one-shot ready signal, and returns. It never re-arms within a session; if
// the counts never converge (a launch's emission failed) it runs until the
// context is canceled and the signal is never sent.
func (w *ReadinessWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("readiness watcher stopping before convergence",
				zap.Int64("delivered", w.counters.Delivered()),
				zap.Int64("expected", w.counters.Expected()))
			return

		case <-ticker.C:
			if !w.counters.Ready() {
				continue
			}
			if err := w.emitter.Emit(domain.EventEnableOK, ""); err != nil {
				w.logger.Warn("event delivery failed",
					zap.String("event", domain.EventEnableOK),
					zap.Error(err))
			}
			w.logger.Info("session ready",
				zap.Int64("items", w.counters.Delivered()))
			return
		}
	}
}
