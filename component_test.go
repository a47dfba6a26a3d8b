package lightbox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/lightbox/lib/async"
	"github.com/pthm/lightbox/lib/dom"
)

func TestAttributePrecedence(t *testing.T) {
	v := newTestView(t, `<a id="x" data-slb-c="dom" data-slb-d="42" data-slb-multi-word="yes"></a>`,
		optionsWith(map[string]any{"b": "opt", "c": "opt", "unrelated": true}))

	c := newComponent(v, KindItem,
		map[string]any{"a": "def", "b": "def", "c": "def", "d": 1, "e": "def"},
		map[string]any{"c": "arg", "e": "arg"})
	c.SetElement(nodeByID(t, v, "x"))

	assert.Equal(t, "def", c.AttrString("a", ""))
	assert.Equal(t, "opt", c.AttrString("b", ""))
	assert.Equal(t, "dom", c.AttrString("c", ""))
	assert.Equal(t, 42, c.AttrInt("d", 0))
	assert.Equal(t, "arg", c.AttrString("e", ""))
	assert.Equal(t, "yes", c.AttrString("multi_word", ""))
	assert.Nil(t, c.GetAttribute("unrelated", nil), "options only seed keys with defaults")

	c.SetAttribute("a", "set")
	assert.Equal(t, "set", c.AttrString("a", ""))
}

func TestGetAttributeCoercion(t *testing.T) {
	v := newTestView(t, galleryPage, DefaultOptions())
	c := newComponent(v, KindGroup, nil, map[string]any{
		"truthy": "1",
		"word":   "maybe",
		"float":  3.7,
		"text":   "abc",
		"map":    map[string]any{"k": "v"},
		"nil":    nil,
		"int":    5,
	})

	tests := []struct {
		name    string
		key     string
		def     any
		enforce []bool
		expect  any
	}{
		{"string to bool", "truthy", false, nil, true},
		{"unparseable bool", "word", true, nil, true},
		{"float to int", "float", 0, nil, 3},
		{"unparseable int", "text", 7, nil, 7},
		{"int to string", "int", "", nil, "5"},
		{"non-scalar to string", "map", "def", nil, "def"},
		{"nil value", "nil", "def", nil, "def"},
		{"missing", "absent", 9, nil, 9},
		{"no enforce", "int", "x", []bool{false}, 5},
		{"nil default", "text", nil, nil, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, c.GetAttribute(tt.key, tt.def, tt.enforce...))
		})
	}
}

func TestComponentID(t *testing.T) {
	c := newComponent(nil, KindGroup, nil, nil)
	assert.True(t, c.SetID("first"))
	assert.False(t, c.SetID("second"))
	assert.Equal(t, "first", c.ID())

	anon := newComponent(nil, KindGroup, nil, nil)
	id := anon.ID()
	assert.NotEmpty(t, id)
	assert.Equal(t, id, anon.ID())
	assert.False(t, anon.SetID("late"))
}

func TestStatus(t *testing.T) {
	c := newComponent(nil, KindViewer, nil, nil)
	assert.Nil(t, c.Status("open"))
	assert.False(t, c.StatusBool("open"))
	c.SetStatus("open", true)
	assert.True(t, c.StatusBool("open"))

	assert.True(t, c.StatusOnce("bound"))
	assert.False(t, c.StatusOnce("bound"))
}

func TestTriggerOrderAndOptions(t *testing.T) {
	c := newComponent(nil, KindViewer, nil, nil)
	var calls []string
	add := func(name string, opts ...OnOption) {
		c.On("ev", func(ev *Event) async.Settler {
			calls = append(calls, name+":"+ev.Data.(string))
			return nil
		}, opts...)
	}
	add("first")
	add("once", Once())
	add("last")

	waitFor(t, c.Trigger("ev", "1"))
	waitFor(t, c.Trigger("ev", "2"))
	assert.Equal(t, []string{"first:1", "once:1", "last:1", "first:2", "last:2"}, calls)

	calls = nil
	add("only", Clear())
	waitFor(t, c.Trigger("ev", "3"))
	assert.Equal(t, []string{"only:3"}, calls)
}

func TestTriggerJoinsHandlerAwaitables(t *testing.T) {
	c := newComponent(nil, KindViewer, nil, nil)
	slow := async.NewSignal()
	var sawSibling bool

	c.OnEach([]string{"a", "b"}, func(*Event) async.Settler {
		return async.Rejected[struct{}](errors.New("animation failed"))
	})
	c.On("a", func(*Event) async.Settler { return slow })
	c.On("a", func(*Event) async.Settler {
		sawSibling = true
		var typedNil *async.Signal
		return typedNil
	})

	agg := c.Trigger("a", nil)
	assert.True(t, sawSibling, "a rejected handler does not stop its siblings")
	assert.False(t, agg.Settled(), "aggregate waits for pending handlers")

	slow.Resolve(struct{}{})
	waitFor(t, agg)
	assert.NoError(t, agg.Err(), "rejections never reject the aggregate")

	other := c.Trigger("b", nil)
	waitFor(t, other)
	assert.NoError(t, other.Err())
}

func TestOnMap(t *testing.T) {
	c := newComponent(nil, KindViewer, nil, nil)
	hits := map[string]int{}
	h := func(ev *Event) async.Settler { hits[ev.Type]++; return nil }
	c.OnMap(map[string]Handler{"x": h, "y": h})
	waitFor(t, c.Trigger("x", nil))
	waitFor(t, c.Trigger("y", nil))
	assert.Equal(t, map[string]int{"x": 1, "y": 1}, hits)
}

func TestDOMGet(t *testing.T) {
	v := newTestView(t, galleryPage, DefaultOptions())
	c := newComponent(v, KindViewer, nil, nil)
	inits := 0
	c.domInit = func() {
		inits++
		c.SetElement(dom.Element("div"))
	}

	assert.Nil(t, c.DOMGet("overlay", nil))
	overlay := c.DOMGet("overlay", &Put{Tag: "section", Content: "<b>x</b>", Class: "extra"})
	require.NotNil(t, overlay)
	assert.Equal(t, "section", overlay.Data)
	assert.True(t, dom.HasClass(overlay, "slb_viewer_overlay"))
	assert.True(t, dom.HasClass(overlay, "extra"))
	assert.Equal(t, "<b>x</b>", dom.InnerHTML(overlay))

	assert.Same(t, overlay, c.DOMGet("overlay", &Put{}))
	assert.Same(t, c.DOM(), c.DOMGet("", nil))
	assert.Equal(t, 1, inits)
}
