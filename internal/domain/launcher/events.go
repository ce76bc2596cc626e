package launcher

import (
	"errors"
	"sync"
)

// ErrBroadcasterClosed is returned when subscribing to a closed stream
var ErrBroadcasterClosed = errors.New("broadcaster is closed")

// DefaultSubscriberBuffer is the per-subscriber channel capacity
const DefaultSubscriberBuffer = 64

// Broadcaster fans values out to any number of subscribers. Publish never
// blocks: a subscriber whose buffer is full loses its oldest value.
type Broadcaster[T any] struct {
	mu          sync.Mutex
	subscribers map[chan T]struct{}
	buffer      int
	closed      bool
	onPublish   func(T)
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer
func NewBroadcaster[T any](buffer int) *Broadcaster[T] {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Broadcaster[T]{
		subscribers: make(map[chan T]struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers a new subscriber channel
func (b *Broadcaster[T]) Subscribe() (<-chan T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBroadcasterClosed
	}
	ch := make(chan T, b.buffer)
	b.subscribers[ch] = struct{}{}
	return ch, nil
}

// Unsubscribe removes a subscriber and closes its channel. Unknown
// channels are ignored.
func (b *Broadcaster[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		if ch == sub {
			delete(b.subscribers, ch)
			close(ch)
			return
		}
	}
}

// Publish delivers msg to every subscriber. Returns false once closed.
// Values from one goroutine arrive in publish order.
func (b *Broadcaster[T]) Publish(msg T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	for ch := range b.subscribers {
		select {
		case ch <- msg:
		default:
			// full, drop the oldest value
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- msg:
			default:
			}
		}
	}

	if b.onPublish != nil {
		b.onPublish(msg)
	}
	return true
}

// SubscriberCount returns the number of live subscribers
func (b *Broadcaster[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close closes every subscriber channel; later publishes are dropped
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = make(map[chan T]struct{})
}

// Closed reports whether Close was called
func (b *Broadcaster[T]) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
