package eventlog

import "sync"

// TestEventEmitter captures emitted events
type TestEventEmitter struct {
	mu     sync.Mutex
	events []TestEvent
}

// TestEvent is one captured emission
type TestEvent struct {
	Name string
	Data map[string]any
}

func (te *TestEventEmitter) Emit(eventName string, data map[string]any) {
	te.mu.Lock()
	defer te.mu.Unlock()
	te.events = append(te.events, TestEvent{Name: eventName, Data: data})
}

// GetEvents returns all emitted events
func (te *TestEventEmitter) GetEvents() []TestEvent {
	te.mu.Lock()
	defer te.mu.Unlock()
	return append([]TestEvent{}, te.events...)
}

// Last returns the most recent event
func (te *TestEventEmitter) Last() TestEvent {
	te.mu.Lock()
	defer te.mu.Unlock()
	if len(te.events) == 0 {
		return TestEvent{}
	}
	return te.events[len(te.events)-1]
}
