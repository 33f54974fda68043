package infra

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/eliteGoblin/parcel/internal/domain"
)

// envelope is the wire shape of one UI event.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// NDJSONEmitter implements domain.Emitter by writing one JSON object per line
// to the stream the webview host reads. Safe for concurrent use; launch
// handlers and the job runner emit from different goroutines.
type NDJSONEmitter struct {
	mu  sync.Mutex
	out io.Writer
	enc *json.Encoder
}

// NewNDJSONEmitter creates an emitter writing to out.
func NewNDJSONEmitter(out io.Writer) *NDJSONEmitter {
	return &NDJSONEmitter{out: out, enc: json.NewEncoder(out)}
}

// Emit writes one event line. An encoding or write failure means the UI never
// received the event.
func (e *NDJSONEmitter) Emit(event string, payload any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enc.Encode(envelope{Event: event, Payload: payload}); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrEventDeliveryFailed, event, err)
	}
	return nil
}

// Ensure NDJSONEmitter implements domain.Emitter.
var _ domain.Emitter = (*NDJSONEmitter)(nil)
