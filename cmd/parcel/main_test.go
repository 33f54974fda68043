package main

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/parcel/internal/domain"
	"github.com/eliteGoblin/parcel/internal/launch"
	"github.com/eliteGoblin/parcel/internal/session"
)

// captureEmitter records events in emission order.
type captureEmitter struct {
	mu    sync.Mutex
	names []string
	items [][]string
}

func (e *captureEmitter) Emit(event string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.names = append(e.names, event)
	if batch, ok := payload.([]string); ok {
		e.items = append(e.items, batch)
	}
	return nil
}

func TestLaunchArgvCarriesOnlyFiles(t *testing.T) {
	argv := launchArgv([]string{"/drop/a.zip", "/drop/b.zip"})
	assert.Equal(t, []string{os.Args[0], "launch", "/drop/a.zip", "/drop/b.zip"}, argv)

	assert.Equal(t, []string{os.Args[0], "launch"}, launchArgv(nil))
}

func TestLaunchFlagTokensNeverReachItemList(t *testing.T) {
	// A decompression-mode launch parses to one positional: the flag token
	// must not survive into the delivered batch or the expected total.
	fs := launchCmd.Flags()
	require.NoError(t, fs.Parse([]string{"--decompress", "/drop/a.zip"}))
	t.Cleanup(func() { decompressMode = false })
	require.Equal(t, []string{"/drop/a.zip"}, fs.Args())

	counters := session.NewCounters()
	emitter := &captureEmitter{}
	agg := launch.NewAggregator(launch.AggregatorConfig{
		WindowPollInterval: time.Millisecond,
		EarlyWindowCount:   4,
		WindowWaitBound:    time.Second,
	}, counters, emitter, zap.NewNop())
	counters.WindowCreated()

	agg.HandleLaunch(domain.LaunchRequest{
		Argv:   launchArgv(fs.Args()),
		Intent: domain.IntentDecompress,
	})
	assert.Equal(t, int64(1), counters.Expected())
	agg.Wait()

	require.Equal(t, []string{domain.EventSetMode, domain.EventArchivesSelected}, emitter.names)
	require.Len(t, emitter.items, 1)
	assert.Equal(t, []string{"/drop/a.zip"}, emitter.items[0])
	assert.Equal(t, int64(1), counters.Delivered())
}
