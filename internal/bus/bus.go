package bus

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Bus fans invalidation events out to subscribers. It is constructed once at
// startup, shared by every service, and closed at shutdown. Delivery is
// best-effort: a slow subscriber loses notifications instead of blocking the
// publisher, and a redundant refetch on the client is harmless.
type Bus struct {
	mu       sync.Mutex
	subs     map[string]*Subscription
	watchers map[string]*Watcher
	closed   bool
}

// Watcher receives every published event on C, regardless of name or scope.
// It backs the wire stream to clients, which do their own matching.
type Watcher struct {
	id   string
	C    <-chan Event
	ch   chan Event
	bus  *Bus
	once sync.Once
}

// Subscription binds an (EventName, optional scope id) pair to a callback.
// Unsubscribe is idempotent and must be called when the owning consumer goes
// away so the callback cannot fire against torn-down state.
type Subscription struct {
	id      string
	name    EventName
	scopeID *int64
	ch      chan struct{}
	done    chan struct{}
	bus     *Bus
	once    sync.Once
}

const (
	subscriptionBuffer = 8
	watcherBuffer      = 32
)

func NewBus() *Bus {
	return &Bus{
		subs:     make(map[string]*Subscription),
		watchers: make(map[string]*Watcher),
	}
}

// Publish notifies every subscription matching the event. Fire-and-forget:
// it never returns an error and must only be called after the mutation that
// caused it has committed.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		log.Printf("bus: dropping publish of %s, bus is closed", ev.Name)
		return
	}
	var matched []*Subscription
	for _, sub := range b.subs {
		if sub.matches(ev) {
			matched = append(matched, sub)
		}
	}
	// Watcher channels are closed by Stop under this same lock, so the
	// sends must happen before it is released or they could hit a closed
	// channel. They are non-blocking, so holding the lock is fine.
	for _, w := range b.watchers {
		select {
		case w.ch <- ev:
		default:
		}
	}
	b.mu.Unlock()

	for _, sub := range matched {
		select {
		case sub.ch <- struct{}{}:
		default:
			// Subscriber is behind; the pending notification already
			// covers this change.
		}
	}
}

// Watch opens a firehose view of the bus. Stop it when the consumer goes
// away or Close will do it for you.
func (b *Bus) Watch() *Watcher {
	ch := make(chan Event, watcherBuffer)
	w := &Watcher{id: uuid.NewString(), C: ch, ch: ch, bus: b}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		w.once.Do(func() { close(ch) })
		return w
	}
	b.watchers[w.id] = w
	b.mu.Unlock()
	return w
}

// Stop detaches the watcher and closes its channel. Idempotent. The close
// happens under the bus lock so it cannot race a send in Publish.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		w.bus.mu.Lock()
		delete(w.bus.watchers, w.id)
		close(w.ch)
		w.bus.mu.Unlock()
	})
}

// Subscribe registers onMatch to run whenever an event with the given name is
// published with a nil scope or a scope equal to scopeID. A nil scopeID
// matches every scope.
func (b *Bus) Subscribe(name EventName, scopeID *int64, onMatch func()) *Subscription {
	sub := &Subscription{
		id:      uuid.NewString(),
		name:    name,
		scopeID: scopeID,
		ch:      make(chan struct{}, subscriptionBuffer),
		done:    make(chan struct{}),
		bus:     b,
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.done)
		return sub
	}
	b.subs[sub.id] = sub
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-sub.ch:
				select {
				case <-sub.done:
					return
				default:
				}
				onMatch()
			case <-sub.done:
				return
			}
		}
	}()
	return sub
}

// Unsubscribe removes the binding. Safe to call more than once; no onMatch
// invocation starts after it returns, though one already running may finish.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
		close(s.done)
	})
}

// Close tears down every subscription and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	watchers := make([]*Watcher, 0, len(b.watchers))
	for _, w := range b.watchers {
		watchers = append(watchers, w)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	for _, w := range watchers {
		w.Stop()
	}
}

// Matches reports whether a published event reaches a subscriber registered
// with the given name and scope. A nil scope on either side is a wildcard.
func Matches(ev Event, name EventName, scopeID *int64) bool {
	if name != ev.Name {
		return false
	}
	if ev.ScopeID == nil || scopeID == nil {
		return true
	}
	return *ev.ScopeID == *scopeID
}

func (s *Subscription) matches(ev Event) bool {
	return Matches(ev, s.name, s.scopeID)
}
