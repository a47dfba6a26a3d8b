package lightbox

import (
	"strings"
	"sync"

	"github.com/pthm/lightbox/lib/async"
	"github.com/pthm/lightbox/lib/dom"
)

var itemDefaults = map[string]any{
	"viewer":      "",
	"group":       "",
	"type":        "",
	"title":       "",
	"caption":     "",
	"description": "",
	"permalink":   "",
	"width":       0,
	"height":      0,
}

// ContentItem wraps one activation link on the page. Items are created on
// first reference through View.ItemFor and live as long as the View.
type ContentItem struct {
	*Component

	mu      sync.Mutex
	handler ContentHandler
	typed   bool
	load    *async.Signal
	output  *async.Promise[Output]
	viewer  *Viewer
}

func newContentItem(v *View) *ContentItem {
	return &ContentItem{Component: newComponent(v, KindItem, itemDefaults, nil)}
}

// Type returns the content handler for the item: the handler named by the
// item's type attribute, otherwise the first registered handler that
// matches. The result is cached. Nil means the item cannot be displayed.
func (i *ContentItem) Type() ContentHandler {
	i.mu.Lock()
	if i.typed {
		defer i.mu.Unlock()
		return i.handler
	}
	i.mu.Unlock()

	var found ContentHandler
	handlers := i.view.ContentHandlers()
	if id := i.AttrString("type", ""); id != "" {
		for _, h := range handlers {
			if h.ID() == id {
				found = h
				break
			}
		}
	}
	if found == nil {
		for _, h := range handlers {
			if h.Match(i) {
				found = h
				break
			}
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.typed {
		i.handler, i.typed = found, true
	}
	return i.handler
}

// Load starts loading the item through its content handler. Repeated calls
// return the same signal.
func (i *ContentItem) Load() *async.Signal {
	h := i.Type()
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.load != nil {
		return i.load
	}
	switch {
	case h == nil:
		i.load = async.Rejected[struct{}](ErrNoHandler)
	default:
		if i.load = h.Load(i); i.load == nil {
			i.load = async.Fired()
		}
	}
	return i.load
}

// Output returns the rendered output of the item. Repeated calls return the
// same promise.
func (i *ContentItem) Output() *async.Promise[Output] {
	h := i.Type()
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.output != nil {
		return i.output
	}
	switch {
	case h == nil:
		i.output = async.Rejected[Output](ErrNoHandler)
	default:
		if i.output = h.Render(i); i.output == nil {
			i.output = async.Rejected[Output](ErrNoHandler)
		}
	}
	return i.output
}

// SetViewer pins the item to v regardless of its viewer attribute.
func (i *ContentItem) SetViewer(v *Viewer) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.viewer = v
}

// Viewer resolves the viewer that displays the item: a pinned viewer, the
// viewer named by the item's viewer attribute, or the default viewer.
func (i *ContentItem) Viewer() *Viewer {
	i.mu.Lock()
	pinned := i.viewer
	i.mu.Unlock()
	v, _ := resolver[*Viewer]{
		explicit: pinned,
		attr:     "viewer",
		lookup:   i.view.viewers.Ensure,
		fallback: func() (*Viewer, bool) { return i.view.DefaultViewer(), true },
	}.resolve(i.Component)
	return v
}

// Group returns the item's group, or nil when it is not grouped.
func (i *ContentItem) Group() *Group {
	g, _ := resolver[*Group]{
		attr:   "group",
		lookup: i.view.groups.Ensure,
	}.resolve(i.Component)
	return g
}

// Show displays the item in its viewer.
func (i *ContentItem) Show() bool {
	v := i.Viewer()
	if v == nil {
		return false
	}
	return v.Show(i)
}

// URI returns the link target.
func (i *ContentItem) URI() string {
	return i.elementAttr("href")
}

// Permalink returns the item's permalink, defaulting to its URI.
func (i *ContentItem) Permalink() string {
	if p := i.AttrString("permalink", ""); p != "" {
		return p
	}
	return i.URI()
}

// Title returns the item title. Without a title attribute, the link's
// title or the alt text of an image inside the link is used.
func (i *ContentItem) Title() string {
	if t := i.AttrString("title", ""); t != "" {
		return t
	}
	if t := i.elementAttr("title"); t != "" {
		return t
	}
	el := i.Element()
	if el == nil {
		return ""
	}
	var alt string
	i.view.doc.Read(func() {
		if img := dom.Query(el, "img[alt]"); img != nil {
			alt, _ = dom.Attr(img, "alt")
		}
	})
	return strings.TrimSpace(alt)
}

// Caption returns the item caption.
func (i *ContentItem) Caption() string {
	return i.AttrString("caption", "")
}

// Description returns the item description.
func (i *ContentItem) Description() string {
	return i.AttrString("description", "")
}

// Dimensions returns the width and height declared on the item.
func (i *ContentItem) Dimensions() Dimensions {
	return Dimensions{Width: i.AttrInt("width", 0), Height: i.AttrInt("height", 0)}
}

func (i *ContentItem) elementAttr(key string) string {
	el := i.Element()
	if el == nil {
		return ""
	}
	var val string
	i.view.doc.Read(func() {
		val, _ = dom.Attr(el, key)
	})
	return strings.TrimSpace(val)
}
