package lightbox

import (
	"reflect"

	"github.com/pthm/lightbox/lib/async"
)

// Event is passed to handlers by Trigger.
type Event struct {
	Type   string
	Data   any
	Source *Component
}

// Handler handles an event. A handler that starts asynchronous work returns
// an awaitable; Trigger waits for it before its own result settles. Nil
// means the handler finished synchronously.
type Handler func(ev *Event) async.Settler

type binding struct {
	fn   Handler
	once bool
}

type onConfig struct {
	clear bool
	once  bool
}

// OnOption configures handler registration.
type OnOption func(*onConfig)

// Clear replaces any handlers already registered for the event.
func Clear() OnOption {
	return func(c *onConfig) { c.clear = true }
}

// Once removes the handler after its first invocation.
func Once() OnOption {
	return func(c *onConfig) { c.once = true }
}

// On registers h for event.
func (c *Component) On(event string, h Handler, opts ...OnOption) {
	if event == "" || h == nil {
		return
	}
	cfg := onConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.clear {
		c.events[event] = nil
	}
	c.events[event] = append(c.events[event], &binding{fn: h, once: cfg.once})
}

// OnEach registers h for every event in events.
func (c *Component) OnEach(events []string, h Handler, opts ...OnOption) {
	for _, ev := range events {
		c.On(ev, h, opts...)
	}
}

// OnMap registers each handler for its event.
func (c *Component) OnMap(handlers map[string]Handler, opts ...OnOption) {
	for ev, h := range handlers {
		c.On(ev, h, opts...)
	}
}

// Trigger calls the handlers for event in registration order and returns a
// signal that resolves once every awaitable they returned has settled.
// Rejections do not stop sibling handlers and never reject the aggregate.
func (c *Component) Trigger(event string, data any) *async.Signal {
	c.mu.Lock()
	bound := c.events[event]
	if len(bound) == 0 {
		c.mu.Unlock()
		return async.Fired()
	}
	calls := make([]*binding, len(bound))
	copy(calls, bound)
	kept := bound[:0:0]
	for _, b := range bound {
		if !b.once {
			kept = append(kept, b)
		}
	}
	c.events[event] = kept
	c.mu.Unlock()

	ev := &Event{Type: event, Data: data, Source: c}
	pending := make([]async.Settler, 0, len(calls))
	for _, b := range calls {
		if s := b.fn(ev); !isNilSettler(s) {
			pending = append(pending, s)
		}
	}
	return async.All(pending...)
}

// isNilSettler catches both a nil interface and a typed nil promise.
func isNilSettler(s async.Settler) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
