// Package session holds the state shared by every launch of one application
// session.
package session

import "sync/atomic"

// Counters is the cross-launch synchronization point: four independently
// atomic counters shared by reference between every launch handler, the
// readiness watcher, and the command surface. No operation blocks and no
// operation can fail; every increment is immediately visible to concurrent
// readers.
type Counters struct {
	windows      atomic.Int64
	delivered    atomic.Int64
	expected     atomic.Int64
	acknowledged atomic.Int64
}

// NewCounters returns zeroed counters for a fresh session.
func NewCounters() *Counters {
	return &Counters{}
}

// WindowCreated records one UI window construction and returns the new count.
// Never decremented.
func (c *Counters) WindowCreated() int64 {
	return c.windows.Add(1)
}

// Windows returns how many UI windows have been created this session.
func (c *Counters) Windows() int64 {
	return c.windows.Load()
}

// AddExpected adds a launch's item-list length to the running expected total.
// Called exactly once per launch, synchronously in the launch handler.
func (c *Counters) AddExpected(n int64) {
	c.expected.Add(n)
}

// Expected returns the running sum of item counts across all launches so far.
func (c *Counters) Expected() int64 {
	return c.expected.Load()
}

// AddDelivered adds the item count a completed launch forwarded to the UI.
func (c *Counters) AddDelivered(n int64) {
	c.delivered.Add(n)
}

// Delivered returns how many items have been delivered to the UI.
func (c *Counters) Delivered() int64 {
	return c.delivered.Load()
}

// SetAcknowledged replaces the UI-reported processed-item count.
func (c *Counters) SetAcknowledged(n int64) {
	c.acknowledged.Store(n)
}

// Acknowledged returns the last count the UI reported back.
func (c *Counters) Acknowledged() int64 {
	return c.acknowledged.Load()
}

// Ready reports whether every announced item has been delivered: the expected
// total equals the delivered count and both are non-zero. Once true within a
// session it stays true, since no further launches arrive after the UI is
// enabled.
func (c *Counters) Ready() bool {
	d := c.delivered.Load()
	return d != 0 && d == c.expected.Load()
}
