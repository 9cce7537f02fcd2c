package store

import "sync"

// ChangeEvent names the collection that changed
type ChangeEvent struct {
	Key string `json:"key"`
}

// ChangeBus is an in-process publish/subscribe channel for collection changes.
// Delivery is synchronous and in subscription order.
type ChangeBus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

type subscription struct {
	id int
	fn func(ChangeEvent)
}

// NewChangeBus creates an empty bus
func NewChangeBus() *ChangeBus {
	return &ChangeBus{}
}

// Subscribe registers fn and returns a function that removes it
func (b *ChangeBus) Subscribe(fn func(ChangeEvent)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers ev to every subscriber.
// Subscribers may call back into the store; the lock is not held during delivery.
func (b *ChangeBus) Publish(ev ChangeEvent) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
