package lightbox

import (
	"sync"

	"github.com/gosimple/slug"

	"github.com/pthm/lightbox/lib/async"
)

// Theme binds a model to one viewer. It owns the viewer's template, derives
// CSS classes from the model lineage, caches measurements per viewport size
// and runs transitions.
type Theme struct {
	*Component
	viewer *Viewer

	mu        sync.Mutex
	model     *Model
	template  *Template
	measures  map[string]measurement
	overrides map[string]Dimensions
	inflight  map[*async.Signal]struct{}
}

type measurement struct {
	viewport Dimensions
	value    Dimensions
}

func newTheme(v *Viewer, model *Model) *Theme {
	t := &Theme{
		Component: newComponent(v.view, KindTheme, nil, nil),
		viewer:    v,
		model:     model,
		measures:  make(map[string]measurement),
		overrides: make(map[string]Dimensions),
		inflight:  make(map[*async.Signal]struct{}),
	}
	if model != nil {
		t.SetID(model.ID)
	}
	t.template = newTemplate(t)
	return t
}

// Viewer returns the viewer that owns the theme.
func (t *Theme) Viewer() *Viewer {
	return t.viewer
}

// Template returns the theme's template.
func (t *Theme) Template() *Template {
	return t.template
}

// GetModel returns the bound model when id is empty, otherwise the
// registered model named id, falling back to the first registered model.
func (t *Theme) GetModel(id string) *Model {
	if id == "" {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.model
	}
	return t.view.Model(id)
}

// GetAncestors returns the model chain, current model first, or root first
// when reverse is true.
func (t *Theme) GetAncestors(reverse bool) []*Model {
	m := t.GetModel("")
	if m == nil {
		return nil
	}
	chain := m.Ancestors()
	if reverse {
		for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
			chain[i], chain[j] = chain[j], chain[i]
		}
	}
	return chain
}

// GetAncestor returns the nearest model in the chain (current included)
// where attr is present and non-empty.
//
// When none defines it and safe is true, the current model is returned with
// attr initialised to nil. When safe is false the result is nil.
func (t *Theme) GetAncestor(attr string, safe bool) *Model {
	chain := t.GetAncestors(false)
	for _, m := range chain {
		if m.Has(attr) {
			return m
		}
	}
	if !safe {
		return nil
	}
	if len(chain) == 0 {
		return &Model{Fields: map[string]any{attr: nil}}
	}
	chain[0].initField(attr)
	return chain[0]
}

// GetClasses returns one class per model in the chain, root first, so a
// theme stacks the styling of its lineage.
func (t *Theme) GetClasses() []string {
	var classes []string
	for _, m := range t.GetAncestors(true) {
		classes = append(classes, t.view.prefix+"_theme_"+slug.Make(m.ID))
	}
	return classes
}

// Layout returns the raw layout markup from the nearest model defining one.
func (t *Theme) Layout() string {
	m := t.GetAncestor("layout", false)
	if m == nil {
		return ""
	}
	v, _ := m.Get("layout")
	s, _ := v.(string)
	return s
}

// GetMeasurement returns measurement attr for the current viewport size.
// Cached values are reused while the viewport is unchanged; otherwise the
// value comes from SetMeasurement, the model chain's measure callback or def,
// in that order.
func (t *Theme) GetMeasurement(attr string, def Dimensions) Dimensions {
	vp := t.view.Viewport()
	t.mu.Lock()
	if cached, ok := t.measures[attr]; ok && cached.viewport == vp {
		t.mu.Unlock()
		return cached.value
	}
	value, ok := t.overrides[attr]
	t.mu.Unlock()

	if !ok {
		value = def
		if fn := t.measureFunc(attr); fn != nil {
			value = fn(t)
		}
	}

	t.mu.Lock()
	t.measures[attr] = measurement{viewport: vp, value: value}
	t.mu.Unlock()
	return value
}

// SetMeasurement overrides measurement attr and drops its cached value.
func (t *Theme) SetMeasurement(attr string, d Dimensions) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overrides[attr] = d
	delete(t.measures, attr)
}

func (t *Theme) measureFunc(attr string) MeasureFunc {
	for _, m := range t.GetAncestors(false) {
		m.mu.RLock()
		fn := m.Measures[attr]
		m.mu.RUnlock()
		if fn != nil {
			return fn
		}
	}
	return nil
}

// Offset is the space the layout needs around the content.
func (t *Theme) Offset() Dimensions {
	return t.GetMeasurement("offset", Dimensions{})
}

// Margin is the minimum gap between the layout and the viewport edge.
func (t *Theme) Margin() Dimensions {
	return t.GetMeasurement("margin", Dimensions{Width: 20, Height: 20})
}

// transitions merges the chain's handler maps root first, so a descendant's
// handler for an event replaces its ancestors'.
func (t *Theme) transitions() map[string]TransitionFunc {
	merged := make(map[string]TransitionFunc)
	for _, m := range t.GetAncestors(true) {
		m.mu.RLock()
		for ev, fn := range m.Transitions {
			merged[ev] = fn
		}
		m.mu.RUnlock()
	}
	return merged
}

// Transition runs the handler for event. The result is already rejected
// with ErrNoTransition when no model in the chain handles the event;
// callers treat any rejection as a request for the CSS-only fallback.
//
// clearQueue rejects transitions still in flight before starting. When the
// viewer has animations turned off, the handler runs in immediate mode.
func (t *Theme) Transition(event string, clearQueue bool) *async.Signal {
	if clearQueue {
		t.clearQueue()
	}
	fn := t.transitions()[event]
	if fn == nil {
		t.view.metrics.ObserveTransition(event, false)
		return async.Rejected[struct{}](ErrNoTransition)
	}

	d := async.NewSignal()
	t.mu.Lock()
	t.inflight[d] = struct{}{}
	t.mu.Unlock()

	immediate := !t.viewer.AttrBool("animate", true)
	if immediate {
		t.viewer.pushImmediate()
	}
	if ret := fn(t.viewer, d); !isNilSettler(ret) && ret != async.Settler(d) {
		async.Forward(ret, d)
	}
	async.After(d, func(err error) {
		if immediate {
			t.viewer.popImmediate()
		}
		t.mu.Lock()
		delete(t.inflight, d)
		t.mu.Unlock()
		if err != nil {
			t.view.log.Debug("transition fell back", "event", event, "error", err.Error())
		}
		t.view.metrics.ObserveTransition(event, err == nil)
	})
	return d
}

func (t *Theme) clearQueue() {
	t.mu.Lock()
	pending := make([]*async.Signal, 0, len(t.inflight))
	for d := range t.inflight {
		pending = append(pending, d)
	}
	t.mu.Unlock()
	for _, d := range pending {
		d.Reject(ErrTransitionCleared)
	}
}

// Render renders the template for the viewer's current item.
func (t *Theme) Render() *async.Signal {
	return t.template.Render()
}
