package binding

import (
	"sync"

	"restui/internal/eventlog"
	"restui/internal/store"
)

// EventTransactionsUpdated carries {"key": <collection key>} to the presenter
const EventTransactionsUpdated = "transactions:updated"

// ChangeForwarder relays store change notifications to the frontend. It is
// owned by the app and is not bound.
type ChangeForwarder struct {
	mu          sync.Mutex
	emitter     eventlog.EventEmitter
	unsubscribe func()
}

// NewChangeForwarder subscribes to s. Events are dropped until SetEmitter.
func NewChangeForwarder(s *store.Store) *ChangeForwarder {
	f := &ChangeForwarder{}
	f.unsubscribe = s.Subscribe(f.forward)
	return f
}

// SetEmitter replaces the frontend event sink
func (f *ChangeForwarder) SetEmitter(emitter eventlog.EventEmitter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitter = emitter
}

func (f *ChangeForwarder) forward(ev store.ChangeEvent) {
	f.mu.Lock()
	emitter := f.emitter
	f.mu.Unlock()
	if emitter != nil {
		emitter.Emit(EventTransactionsUpdated, map[string]any{"key": ev.Key})
	}
}

// Close stops forwarding. It is safe to call more than once.
func (f *ChangeForwarder) Close() {
	f.mu.Lock()
	unsubscribe := f.unsubscribe
	f.unsubscribe = nil
	f.emitter = nil
	f.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
