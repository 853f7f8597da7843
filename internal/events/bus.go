package events

import (
	"log"
	"sync"
)

// historyCap bounds the retained event history. Oldest events are dropped
// once the cap is reached; history is for late joiners and debugging, not
// replay-based recovery.
const historyCap = 4096

// Callback receives a published event. Callbacks for one event run
// concurrently with each other; a panicking callback is logged and does not
// prevent delivery to the others.
type Callback func(Event)

// Bus is an in-process pub-sub bus for agent progress and terminal events.
// One Bus instance belongs to exactly one run.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]Callback // event type -> callbacks
	streams []chan Event          // channels receiving every event
	closed  bool

	histMu  sync.Mutex
	history []Event
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]Callback),
	}
}

// Subscribe registers a callback invoked for every future event of the given
// type. There is no unsubscribe; subscriptions live for the run.
func (b *Bus) Subscribe(eventType string, cb Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.subs[eventType] = append(b.subs[eventType], cb)
}

// Stream creates a channel subscription receiving events of every type.
// Sends are non-blocking: if the channel buffer is full the event is dropped
// for that subscriber. bufSize defaults to 256 if <= 0.
func (b *Bus) Stream(bufSize int) <-chan Event {
	if bufSize <= 0 {
		bufSize = 256
	}

	ch := make(chan Event, bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}

	b.streams = append(b.streams, ch)
	return ch
}

// Publish appends the event to history, then delivers it to all callbacks
// registered for its type concurrently, waiting for them to finish before
// returning. Callback panics are recovered and logged. Stream subscribers
// receive the event with a non-blocking send.
func (b *Bus) Publish(ev Event) {
	b.histMu.Lock()
	if len(b.history) >= historyCap {
		b.history = b.history[1:]
	}
	b.history = append(b.history, ev)
	b.histMu.Unlock()

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	callbacks := b.subs[ev.Type]
	streams := b.streams
	b.mu.RUnlock()

	// Fan out to streams without holding any lock during delivery.
	for _, ch := range streams {
		select {
		case ch <- ev:
		default:
			// Channel full, drop event (non-blocking)
		}
	}

	var wg sync.WaitGroup
	for _, cb := range callbacks {
		wg.Add(1)
		go func(cb Callback) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("WARNING: event callback panic for %s/%s: %v", ev.Sender, ev.Type, r)
				}
			}()
			cb(ev)
		}(cb)
	}
	wg.Wait()
}

// History returns an ordered snapshot of published events, optionally
// filtered by sender and/or event type. Empty filter values match all.
func (b *Bus) History(sender, eventType string) []Event {
	b.histMu.Lock()
	defer b.histMu.Unlock()

	out := make([]Event, 0, len(b.history))
	for _, ev := range b.history {
		if sender != "" && ev.Sender != sender {
			continue
		}
		if eventType != "" && ev.Type != eventType {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Close closes the bus and all stream channels. Safe to call multiple times.
// Events published after Close are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, ch := range b.streams {
		close(ch)
	}
	b.streams = nil
}
