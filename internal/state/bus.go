package state

import "sync"

// Event announces that key now holds version. Remote is set for changes
// committed by another process and delivered through the database signal.
type Event struct {
	Key     string
	Version int64
	Remote  bool
}

type subscriber struct {
	id int
	fn func(Event)
}

// Bus delivers events synchronously, in subscription order.
type Bus struct {
	mu   sync.RWMutex
	next int
	subs []subscriber
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

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

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(e)
	}
}
