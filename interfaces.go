package lightbox

import (
	"github.com/a-h/templ"

	"github.com/pthm/lightbox/lib/async"
)

// ContentHandler loads and renders one type of content item (images, video,
// inline HTML). Handlers are tried in registration order; the first whose
// Match accepts an item becomes its type.
//
// Load fetches whatever the item needs before it can be displayed. Render
// produces the output descriptor shown by the {{item.content}} tag. Both are
// called at most once per item: the item caches the returned promises.
type ContentHandler interface {
	ID() string
	Match(item *ContentItem) bool
	Load(item *ContentItem) *async.Signal
	Render(item *ContentItem) *async.Promise[Output]
}

// Output is what a content handler renders for an item.
type Output struct {
	Content templ.Component
	Width   int
	Height  int
}

// TagHandler renders template tags of one name. The returned promise
// resolves to the inner HTML of the tag's element. A nil promise or a
// rejection renders as an empty string.
//
// Adapt plain functions with TagFunc, or templ components with TagComponent.
type TagHandler interface {
	RenderTag(item *ContentItem, tag *Tag) *async.Promise[string]
}

// TransitionFunc animates a viewer between states for one theme event
// (open, close, load, unload, complete). It settles d, or returns another
// awaitable whose outcome is forwarded to d. Rejection asks the viewer to
// apply the CSS-only state change instead.
type TransitionFunc func(v *Viewer, d *async.Signal) async.Settler

// MeasureFunc supplies a theme measurement (offset, margin) when no cached
// or overridden value exists.
type MeasureFunc func(t *Theme) Dimensions

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// IsZero reports whether both sides are zero.
func (d Dimensions) IsZero() bool {
	return d.Width == 0 && d.Height == 0
}
