// Package launch merges near-simultaneous process launches into one running
// application session and signals the UI when accumulation is complete.
package launch

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/parcel/internal/domain"
	"github.com/eliteGoblin/parcel/internal/session"
)

// AggregatorConfig holds the launch-delivery timing knobs.
type AggregatorConfig struct {
	WindowPollInterval time.Duration // how often to check for a window
	StartupDebounce    time.Duration // extra pause while the UI is starting up
	EarlyWindowCount   int64         // debounce applies below this many windows
	WindowWaitBound    time.Duration // 0 means wait forever
}

// DefaultAggregatorConfig returns the production timing values.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		WindowPollInterval: 100 * time.Millisecond,
		StartupDebounce:    500 * time.Millisecond,
		EarlyWindowCount:   4,
		WindowWaitBound:    2 * time.Minute,
	}
}

// Aggregator converts per-launch argument lists into delivered item batches.
// Every launch, first or redirected, goes through HandleLaunch; the shared
// counters are the only coordination between concurrent launches.
type Aggregator struct {
	config   AggregatorConfig
	counters *session.Counters
	emitter  domain.Emitter
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewAggregator creates a launch aggregator bound to one session's counters.
func NewAggregator(
	config AggregatorConfig,
	counters *session.Counters,
	emitter domain.Emitter,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		config:   config,
		counters: counters,
		emitter:  emitter,
		logger:   logger,
	}
}

// HandleLaunch processes one launch. The item list is the baseline items
// followed by argv with its first two positional entries dropped (argv[0] is
// the executable, argv[1] is reserved by the host runtime).
//
// The expected-total counter is bumped synchronously, before the background
// wait starts, so a rapid burst of launches can never under-count the total.
// Delivery itself happens on a background goroutine once a window exists.
func (a *Aggregator) HandleLaunch(req domain.LaunchRequest) {
	items := append([]string{}, req.BaselineItems...)
	if len(req.Argv) > 2 {
		items = append(items, req.Argv[2:]...)
	}

	a.counters.AddExpected(int64(len(items)))

	a.logger.Debug("launch received",
		zap.Int("items", len(items)),
		zap.String("intent", string(req.Intent)),
		zap.Int64("expected_total", a.counters.Expected()))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.deliver(items, req.Intent)
	}()
}

// Wait blocks until every in-flight launch delivery has finished.
func (a *Aggregator) Wait() {
	a.wg.Wait()
}

// deliver waits for a window, then emits the item list as a single event.
// Ordering within one launch: window wait, then emission, then the delivered
// increment. On emission failure the delivered counter is left untouched; the
// UI never received the items so they must not count.
func (a *Aggregator) deliver(items []string, intent domain.LaunchIntent) {
	if !a.waitForWindow() {
		a.logger.Error("abandoning launch delivery",
			zap.Error(domain.ErrWindowNeverCreated),
			zap.Int("items", len(items)))
		return
	}

	if a.counters.Windows() < a.config.EarlyWindowCount {
		// Let the UI finish its own startup sequencing before it gets events.
		time.Sleep(a.config.StartupDebounce)
	}

	event := domain.EventFilesSelected
	if intent == domain.IntentDecompress {
		event = domain.EventArchivesSelected
		if err := a.emitter.Emit(domain.EventSetMode, string(domain.IntentDecompress)); err != nil {
			a.logger.Warn("failed to set decompression mode", zap.Error(err))
		}
	}

	if err := a.emitter.Emit(event, items); err != nil {
		a.logger.Warn("event delivery failed",
			zap.String("event", event),
			zap.Int("items", len(items)),
			zap.Error(err))
		return
	}

	a.counters.AddDelivered(int64(len(items)))
}

// waitForWindow polls until a window exists, bounded by WindowWaitBound when
// one is configured. Window creation is guaranteed exactly once per session,
// so under normal operation this always returns true.
func (a *Aggregator) waitForWindow() bool {
	var deadline time.Time
	if a.config.WindowWaitBound > 0 {
		deadline = time.Now().Add(a.config.WindowWaitBound)
	}

	for a.counters.Windows() == 0 {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return false
		}
		time.Sleep(a.config.WindowPollInterval)
	}
	return true
}
