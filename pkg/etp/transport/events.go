package transport

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// EventType enumerates the lifecycle events a Session publishes to
// registered Listeners.
type EventType int

const (
	OnOpen EventType = iota
	OnClose
	OnError
	OnMessage
	Start
	Stop
)

func (t EventType) String() string {
	switch t {
	case OnOpen:
		return "ON_OPEN"
	case OnClose:
		return "ON_CLOSE"
	case OnError:
		return "ON_ERROR"
	case OnMessage:
		return "ON_MESSAGE"
	case Start:
		return "START"
	case Stop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// Event is the payload passed to a Listener. Only the fields relevant to
// its EventType are populated.
type Event struct {
	Type            EventType
	CloseStatusCode int
	CloseReason     string
	Err             error
	Message         []byte
}

// Listener receives Events for the EventType(s) it was registered against.
type Listener func(Event)

// Listeners is a registry of lifecycle-event subscribers, one set per
// EventType, guarded by a mutex since the reader goroutine notifies while a
// caller may concurrently add or remove. A listener registered on one
// EventType is invoked only for that type; there is no wildcard
// subscription. Registration order is preserved for notification.
type Listeners struct {
	mu     sync.RWMutex
	nextID int
	subs   map[EventType]map[int]Listener
}

// NewListeners builds an empty registry.
func NewListeners() *Listeners {
	return &Listeners{subs: make(map[EventType]map[int]Listener)}
}

// Add registers fn against t and returns a handle that Remove can use to
// detach exactly this registration.
func (l *Listeners) Add(t EventType, fn Listener) *Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.subs[t] == nil {
		l.subs[t] = make(map[int]Listener)
	}
	id := l.nextID
	l.nextID++
	l.subs[t][id] = fn
	return &Subscription{listeners: l, eventType: t, id: id}
}

// Count returns the number of listeners currently registered for t.
func (l *Listeners) Count(t EventType) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subs[t])
}

// Notify invokes every listener registered for ev.Type, in registration
// order. A panicking listener is recovered and logged so one faulty
// subscriber cannot take down the reader goroutine or the rest of the
// notification chain.
func (l *Listeners) Notify(ev Event) {
	l.mu.RLock()
	ids := make([]int, 0, len(l.subs[ev.Type]))
	for id := range l.subs[ev.Type] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.subs[ev.Type][id])
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		l.invoke(fn, ev)
	}
}

func (l *Listeners) invoke(fn Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("event_type", ev.Type.String()).
				Interface("panic", r).
				Msg("transport: listener panicked, isolating and continuing")
		}
	}()
	fn(ev)
}

// remove detaches the registration id for t, if still present. Returns
// false if already removed.
func (l *Listeners) remove(t EventType, id int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.subs[t][id]; !ok {
		return false
	}
	delete(l.subs[t], id)
	return true
}

// Subscription is a detachable handle returned by Listeners.Add.
type Subscription struct {
	listeners *Listeners
	eventType EventType
	id        int
}

// Remove detaches this subscription. It is safe to call more than once;
// the second call returns false.
func (s *Subscription) Remove() bool {
	return s.listeners.remove(s.eventType, s.id)
}
