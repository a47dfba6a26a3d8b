package lightbox

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cast"
	"golang.org/x/net/html"

	"github.com/pthm/lightbox/lib/dom"
)

// Kind identifies a component type. It namespaces DOM classes
// (<prefix>_<kind>_<child>) and selects attribute defaults.
type Kind string

const (
	KindViewer   Kind = "viewer"
	KindGroup    Kind = "group"
	KindTheme    Kind = "theme"
	KindTemplate Kind = "template"
	KindItem     Kind = "content_item"
)

// Component is the base embedded by viewers, groups, themes, templates and
// content items. It provides:
//   - a write-once id
//   - attributes merged from defaults, controller options, constructor
//     arguments and data-<prefix>-* attributes on the bound element
//   - status flags
//   - an event bus (see events.go)
//   - lazy DOM binding with a one-time init hook
//
// Every getter is total: missing data comes back as the supplied default,
// nil or an empty value, never as an error.
type Component struct {
	kind Kind
	view *View

	mu       sync.RWMutex
	id       string
	defaults map[string]any
	args     map[string]any
	attrs    map[string]any
	status   map[string]any
	events   map[string][]*binding

	el      *html.Node
	domInit func()
	domOnce sync.Once
}

func newComponent(v *View, kind Kind, defaults, args map[string]any) *Component {
	own := make(map[string]any, len(args))
	for k, val := range args {
		own[k] = val
	}
	return &Component{
		kind:     kind,
		view:     v,
		defaults: defaults,
		args:     own,
		status:   make(map[string]any),
		events:   make(map[string][]*binding),
	}
}

// Kind returns the component kind.
func (c *Component) Kind() Kind {
	return c.kind
}

// View returns the controller the component belongs to.
func (c *Component) View() *View {
	return c.view
}

// ID returns the component id, generating a random one on first use.
func (c *Component) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id == "" {
		c.id = uuid.NewString()
	}
	return c.id
}

// SetID sets the id if none has been set yet. The first write wins.
func (c *Component) SetID(id string) bool {
	if id == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.id != "" {
		return false
	}
	c.id = id
	return true
}

// attributes returns the merged attribute map, building it on first use.
func (c *Component) attributes() map[string]any {
	c.mu.RLock()
	if c.attrs != nil {
		defer c.mu.RUnlock()
		return c.attrs
	}
	c.mu.RUnlock()

	merged := make(map[string]any, len(c.defaults))
	for k, v := range c.defaults {
		merged[k] = v
	}
	if c.view != nil && len(c.defaults) > 0 {
		keys := make([]string, 0, len(c.defaults))
		for k := range c.defaults {
			keys = append(keys, k)
		}
		for k, v := range c.view.GetOptions(keys...) {
			merged[k] = v
		}
	}
	c.mu.RLock()
	for k, v := range c.args {
		merged[k] = v
	}
	el := c.el
	c.mu.RUnlock()
	if el != nil && c.view != nil {
		c.view.doc.Read(func() {
			for k, v := range dom.DataAttrs(el, c.view.prefix) {
				merged[k] = v
			}
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attrs == nil {
		c.attrs = merged
	}
	return c.attrs
}

// GetAttribute returns attribute key, or def when it is missing or nil.
//
// When enforceType is true (the default) and def is non-nil, the value is
// coerced to def's type: strings, numbers and booleans convert between each
// other; any other mismatch falls back to def.
func (c *Component) GetAttribute(key string, def any, enforceType ...bool) any {
	attrs := c.attributes()
	c.mu.RLock()
	val, ok := attrs[key]
	c.mu.RUnlock()
	if !ok || val == nil {
		return def
	}
	if def == nil || (len(enforceType) > 0 && !enforceType[0]) {
		return val
	}
	return coerce(val, def)
}

// SetAttribute overrides a single attribute.
func (c *Component) SetAttribute(key string, val any) {
	attrs := c.attributes()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.args == nil {
		c.args = make(map[string]any)
	}
	c.args[key] = val
	attrs[key] = val
}

// AttrString returns attribute key as a string.
func (c *Component) AttrString(key, def string) string {
	return c.GetAttribute(key, def).(string)
}

// AttrBool returns attribute key as a bool.
func (c *Component) AttrBool(key string, def bool) bool {
	return c.GetAttribute(key, def).(bool)
}

// AttrInt returns attribute key as an int.
func (c *Component) AttrInt(key string, def int) int {
	return c.GetAttribute(key, def).(int)
}

// AttrFloat returns attribute key as a float64.
func (c *Component) AttrFloat(key string, def float64) float64 {
	return c.GetAttribute(key, def).(float64)
}

func coerce(val, def any) any {
	if reflect.TypeOf(val) == reflect.TypeOf(def) {
		return val
	}
	var (
		out any
		err error
	)
	switch def.(type) {
	case string:
		if !isScalar(val) {
			return def
		}
		out, err = cast.ToStringE(val)
	case bool:
		out, err = cast.ToBoolE(val)
	case int:
		out, err = cast.ToIntE(val)
	case int64:
		out, err = cast.ToInt64E(val)
	case float64:
		out, err = cast.ToFloat64E(val)
	default:
		return def
	}
	if err != nil {
		return def
	}
	return out
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// Status returns status flag key, or nil.
func (c *Component) Status(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status[key]
}

// StatusBool returns status flag key as a bool.
func (c *Component) StatusBool(key string) bool {
	return cast.ToBool(c.Status(key))
}

// SetStatus sets status flag key.
func (c *Component) SetStatus(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status[key] = val
}

// StatusOnce sets flag key and reports whether this call was the one that
// set it.
func (c *Component) StatusOnce(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cast.ToBool(c.status[key]) {
		return false
	}
	c.status[key] = true
	return true
}

// Element returns the bound element without triggering DOM init.
func (c *Component) Element() *html.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.el
}

// SetElement binds the component to n. Cached attributes are rebuilt on
// next read so data attributes on n take effect.
func (c *Component) SetElement(n *html.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.el = n
	c.attrs = nil
}

// DOM returns the bound element, running the kind's DOM init the first time
// any DOM is requested.
func (c *Component) DOM() *html.Node {
	c.domOnce.Do(func() {
		if c.domInit != nil {
			c.domInit()
		}
	})
	return c.Element()
}

// Put describes an element DOMGet creates when a child is missing.
type Put struct {
	Tag     string
	Content string
	Class   string
}

// ChildClass returns the class naming child elements of this component.
func (c *Component) ChildClass(child string) string {
	return c.view.prefix + "_" + string(c.kind) + "_" + child
}

// DOMGet returns the child element named child, or the component element
// when child is empty. A missing child is created from put when put is
// non-nil, otherwise nil is returned.
func (c *Component) DOMGet(child string, put *Put) *html.Node {
	root := c.DOM()
	if root == nil || child == "" {
		return root
	}
	cls := c.ChildClass(child)
	var found *html.Node
	c.view.doc.Read(func() {
		found = dom.Query(root, "."+cls)
	})
	if found != nil || put == nil {
		return found
	}
	c.view.doc.Update(func() {
		if found = dom.Query(root, "."+cls); found != nil {
			return
		}
		found = c.domPut(cls, put)
		dom.Append(root, found)
	})
	return found
}

func (c *Component) domPut(cls string, put *Put) *html.Node {
	tag := put.Tag
	if tag == "" {
		tag = "div"
	}
	el := dom.Element(tag)
	dom.AddClass(el, cls, put.Class)
	if put.Content != "" {
		if err := dom.SetInnerHTML(el, put.Content); err != nil {
			c.view.log.Warn("dom put content rejected", "class", cls, "error", err.Error())
		}
	}
	return el
}
