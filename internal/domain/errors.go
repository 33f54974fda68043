package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedKind means a kind tag string is not in the supported set.
var ErrUnsupportedKind = errors.New("unsupported compression type")

// ErrMultipleInstances means a compress request arrived while more than one
// instance of the application was running. The request is rejected outright,
// never queued.
var ErrMultipleInstances = errors.New("multiple instances of app detected")

// ErrWindowNeverCreated means the window-ready wait hit its bound before a
// window appeared. The launch's items are abandoned, not delivered.
var ErrWindowNeverCreated = errors.New("window was never created")

// ErrEventDeliveryFailed wraps an emitter failure. Delivery failures are
// logged and swallowed; they never roll back counters or retry.
var ErrEventDeliveryFailed = errors.New("event delivery failed")

// CompressionError is a failed compress batch, surfaced verbatim from the
// codec collaborator.
type CompressionError struct {
	Reason error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("compression failed: %v", e.Reason)
}

func (e *CompressionError) Unwrap() error { return e.Reason }

// DecompressionError is a failed decompress of one source. The batch aborts
// at the failing source; later sources are not attempted.
type DecompressionError struct {
	Source string
	Reason error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("failed to decompress '%s': %v", e.Source, e.Reason)
}

func (e *DecompressionError) Unwrap() error { return e.Reason }
