package eventlog

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventUpdated is emitted with the read contract after every mutation
const EventUpdated = "eventlog:updated"

// EventEmitter abstracts presenter notifications.
// WailsEventEmitter is used in the app, a capturing emitter in tests.
type EventEmitter interface {
	Emit(eventName string, data map[string]any)
}

// WailsEventEmitter forwards events to the Wails runtime
type WailsEventEmitter struct {
	ctx context.Context
}

// NewWailsEventEmitter binds an emitter to the Wails runtime context
func NewWailsEventEmitter(ctx context.Context) *WailsEventEmitter {
	return &WailsEventEmitter{ctx: ctx}
}

func (we *WailsEventEmitter) Emit(eventName string, data map[string]any) {
	if we.ctx != nil {
		runtime.EventsEmit(we.ctx, eventName, data)
	}
}

type nopEmitter struct{}

func (nopEmitter) Emit(string, map[string]any) {}
