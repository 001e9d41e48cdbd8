// Package notification delivers change events to any number of subscribers.
//
// A [Publisher] never blocks on a slow subscriber: every [Subscription]
// owns an unbounded queue drained by its own goroutine, so each subscriber
// sees every event published after it subscribed, in publication order.
//
//	sub := pub.Subscribe(ctx)
//	defer sub.Close()
//	for ev := range sub.C() {
//	    ...
//	}
//
// A subscription ends when its context is cancelled or [Subscription.Close]
// is called; its channel is then closed.
package notification

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Publisher fans events of type T out to subscribers.
// The zero value is ready to use.
type Publisher[T any] struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription[T]
	closed bool
}

// Subscribe registers a new subscriber. The subscription is closed when ctx
// is done.
func (p *Publisher[T]) Subscribe(ctx context.Context) *Subscription[T] {
	sub := newSubscription[T](nil)
	sub.onClose = func() { p.remove(sub.id) }

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		sub.Close()
		return sub
	}
	if p.subs == nil {
		p.subs = make(map[uuid.UUID]*Subscription[T])
	}
	p.subs[sub.id] = sub
	p.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	return sub
}

// Publish queues ev for every current subscriber. It does not wait for
// delivery. Events published by one goroutine reach each subscriber in the
// order they were published.
func (p *Publisher[T]) Publish(ev T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sub := range p.subs {
		sub.push(ev)
	}
}

// Len returns the number of open subscriptions.
func (p *Publisher[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

// Close ends every subscription. Later subscriptions are closed at once.
func (p *Publisher[T]) Close() {
	p.mu.Lock()
	p.closed = true
	subs := make([]*Subscription[T], 0, len(p.subs))
	for _, sub := range p.subs {
		subs = append(subs, sub)
	}
	p.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

func (p *Publisher[T]) remove(id uuid.UUID) {
	p.mu.Lock()
	delete(p.subs, id)
	p.mu.Unlock()
}

// Subscription is one subscriber's ordered event stream.
type Subscription[T any] struct {
	id uuid.UUID

	mu    sync.Mutex
	queue []T
	wake  chan struct{}

	out       chan T
	done      chan struct{}
	closeOnce sync.Once
	onClose   func()
}

func newSubscription[T any](onClose func()) *Subscription[T] {
	s := &Subscription[T]{
		id:      uuid.New(),
		wake:    make(chan struct{}, 1),
		out:     make(chan T),
		done:    make(chan struct{}),
		onClose: onClose,
	}
	go s.pump()
	return s
}

// ID identifies the subscription.
func (s *Subscription[T]) ID() uuid.UUID { return s.id }

// C returns the event channel. It is closed when the subscription ends.
func (s *Subscription[T]) C() <-chan T { return s.out }

// Done is closed when the subscription ends.
func (s *Subscription[T]) Done() <-chan struct{} { return s.done }

// Close ends the subscription. Queued events that were not yet received are
// dropped. Close is idempotent.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.onClose != nil {
			s.onClose()
		}
	})
}

func (s *Subscription[T]) push(ev T) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		ev := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}

// Map returns a subscription carrying fn applied to every event of src.
// Closing the result closes src, and the result ends when src does.
func Map[T, U any](src *Subscription[T], fn func(T) U) *Subscription[U] {
	dst := newSubscription[U](src.Close)
	go func() {
		defer dst.Close()
		for ev := range src.C() {
			dst.push(fn(ev))
		}
	}()
	return dst
}
