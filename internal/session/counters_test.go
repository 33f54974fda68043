package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountersStartZero(t *testing.T) {
	c := NewCounters()

	assert.Equal(t, int64(0), c.Windows())
	assert.Equal(t, int64(0), c.Expected())
	assert.Equal(t, int64(0), c.Delivered())
	assert.Equal(t, int64(0), c.Acknowledged())
	assert.False(t, c.Ready())
}

func TestExpectedSumsAcrossConcurrentLaunches(t *testing.T) {
	// Simulates a burst of launches, each contributing its item-list length.
	// The total must equal the sum regardless of interleaving.
	c := NewCounters()
	launchSizes := []int64{1, 3, 2, 5, 1, 4, 2, 2, 3, 1}

	var wg sync.WaitGroup
	for _, n := range launchSizes {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			c.AddExpected(n)
		}(n)
	}
	wg.Wait()

	assert.Equal(t, int64(24), c.Expected())
}

func TestWindowCreatedReturnsNewCount(t *testing.T) {
	c := NewCounters()

	assert.Equal(t, int64(1), c.WindowCreated())
	assert.Equal(t, int64(2), c.WindowCreated())
	assert.Equal(t, int64(2), c.Windows())
}

func TestReadyRequiresNonZeroConvergence(t *testing.T) {
	c := NewCounters()

	// Both zero: not ready.
	assert.False(t, c.Ready())

	c.AddExpected(3)
	assert.False(t, c.Ready())

	c.AddDelivered(2)
	assert.False(t, c.Ready())

	c.AddDelivered(1)
	assert.True(t, c.Ready())

	// Stable fixed point once reached.
	assert.True(t, c.Ready())
}

func TestSetAcknowledgedReplaces(t *testing.T) {
	c := NewCounters()

	c.SetAcknowledged(5)
	assert.Equal(t, int64(5), c.Acknowledged())

	c.SetAcknowledged(2)
	assert.Equal(t, int64(2), c.Acknowledged())
}
