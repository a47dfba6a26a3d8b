package lightbox

import (
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/pthm/lightbox/lib/async"
	"github.com/pthm/lightbox/lib/dom"
)

var viewerDefaults = map[string]any{
	"theme":               "",
	"loop":                true,
	"animate":             true,
	"autofit":             true,
	"overlay_enabled":     true,
	"overlay_opacity":     0.8,
	"container":           "body",
	"slideshow_enabled":   true,
	"slideshow_autostart": false,
	"slideshow_duration":  6.0,
	"history":             true,
	"ui_close":            "close",
	"ui_nav_next":         "next",
	"ui_nav_prev":         "previous",
	"ui_slideshow_start":  "start slideshow",
	"ui_slideshow_stop":   "stop slideshow",
	"ui_group_status":     "Item %current% of %total%",
}

// Viewer presents one item at a time. Showing an item locks the viewer
// until the item changes or the viewer closes; a show requested while locked
// is queued, and later requests replace the queued item rather than stacking.
//
// Status flags: active, open, loading, initialized, controls,
// slideshow_active.
type Viewer struct {
	*Component

	mu         sync.Mutex
	theme      *Theme
	themeValid *bool
	item       *ContentItem
	itemQueued *ContentItem
	queuedPop  bool
	lock       *async.Signal
	pending    bool
	history    int
	immediate  int
	keys       bool
	groups     map[*Group]bool
	timer      *time.Timer
	hooked     sync.Once
}

func newViewer(v *View, id string) *Viewer {
	vw := &Viewer{
		Component: newComponent(v, KindViewer, viewerDefaults, nil),
		groups:    make(map[*Group]bool),
	}
	vw.SetID(id)
	vw.domInit = vw.buildDOM
	vw.On("item-change", func(*Event) async.Settler {
		vw.Unlock()
		return nil
	})
	return vw
}

// Theme returns the viewer's theme, binding it to the model named by the
// theme attribute on first use.
func (v *Viewer) Theme() *Theme {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.theme == nil {
		v.theme = newTheme(v, v.view.Model(v.AttrString("theme", "")))
	}
	return v.theme
}

// Item returns the item being displayed.
func (v *Viewer) Item() *ContentItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.item
}

// IsActive reports whether the viewer is displaying, or about to display,
// an item.
func (v *Viewer) IsActive() bool {
	return v.StatusBool("active")
}

// IsOpen reports whether the viewer is visible.
func (v *Viewer) IsOpen() bool {
	return v.StatusBool("open")
}

// IsLoading reports whether an item is loading.
func (v *Viewer) IsLoading() bool {
	return v.StatusBool("loading")
}

// Immediate reports whether transitions should skip animation.
func (v *Viewer) Immediate() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.immediate > 0
}

func (v *Viewer) pushImmediate() {
	v.mu.Lock()
	v.immediate++
	v.mu.Unlock()
}

func (v *Viewer) popImmediate() {
	v.mu.Lock()
	if v.immediate > 0 {
		v.immediate--
	}
	v.mu.Unlock()
}

// validTheme reports whether the theme has a layout. The answer is cached.
func (v *Viewer) validTheme() bool {
	v.mu.Lock()
	if v.themeValid != nil {
		defer v.mu.Unlock()
		return *v.themeValid
	}
	v.mu.Unlock()
	ok := v.Theme().Template().GetLayout(false) != ""
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.themeValid == nil {
		v.themeValid = &ok
	}
	return *v.themeValid
}

// Show displays item. It returns false, after closing the viewer, when the
// theme has no layout.
func (v *Viewer) Show(item *ContentItem) bool {
	return v.show(item, false)
}

func (v *Viewer) show(item *ContentItem, fromHistory bool) bool {
	if item == nil {
		return false
	}
	v.mu.Lock()
	v.itemQueued = item
	v.queuedPop = fromHistory
	v.mu.Unlock()

	if !v.validTheme() {
		v.view.log.Warn("item not shown", "viewer", v.ID(), "theme", v.Theme().ID(), "error", ErrInvalidTheme.Error())
		v.view.metrics.ObserveShow(v.ID(), false)
		v.Close()
		return false
	}

	v.mu.Lock()
	if v.lock != nil && !v.lock.Settled() {
		if !v.pending {
			v.pending = true
			go v.awaitUnlock(v.lock)
		}
		v.mu.Unlock()
		return true
	}
	v.lock = async.NewSignal()
	v.mu.Unlock()

	v.activate()
	return true
}

// awaitUnlock activates the queued item once the viewer unlocks. A lock
// taken again in the meantime is waited for as well.
func (v *Viewer) awaitUnlock(lock *async.Signal) {
	for {
		<-lock.Done()
		v.mu.Lock()
		if v.lock != nil && v.lock != lock && !v.lock.Settled() {
			lock = v.lock
			v.mu.Unlock()
			continue
		}
		v.pending = false
		v.lock = async.NewSignal()
		v.mu.Unlock()
		v.activate()
		return
	}
}

// Lock installs a new lock, releasing any previous one.
func (v *Viewer) Lock() *async.Signal {
	v.mu.Lock()
	prev := v.lock
	v.lock = async.NewSignal()
	lock := v.lock
	v.mu.Unlock()
	if prev != nil {
		prev.Resolve(struct{}{})
	}
	return lock
}

// Unlock releases the lock.
func (v *Viewer) Unlock() {
	v.mu.Lock()
	lock := v.lock
	v.mu.Unlock()
	if lock != nil {
		lock.Resolve(struct{}{})
	}
}

// IsLocked reports whether a lock is held.
func (v *Viewer) IsLocked() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lock != nil && !v.lock.Settled()
}

// Idle returns a signal that settles when the viewer is unlocked.
func (v *Viewer) Idle() *async.Signal {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.lock == nil {
		return async.Fired()
	}
	return v.lock
}

// activate makes the queued item current and renders it.
func (v *Viewer) activate() {
	v.mu.Lock()
	item, fromHistory := v.itemQueued, v.queuedPop
	v.itemQueued, v.queuedPop = nil, false
	if item != nil {
		v.item = item
	}
	v.mu.Unlock()
	if item == nil {
		v.Unlock()
		return
	}

	v.SetStatus("active", true)
	if g := item.Group(); g != nil {
		g.SetCurrent(item)
		v.bindGroup(g)
	}
	if !fromHistory {
		v.historyPush(item)
	}
	v.view.metrics.ObserveShow(v.ID(), true)
	v.view.log.Debug("showing item", "viewer", v.ID(), "item", item.ID())
	v.render()
}

// bindGroup re-broadcasts the group's navigation as item-change when the
// navigated item belongs to this viewer.
func (v *Viewer) bindGroup(g *Group) {
	v.mu.Lock()
	bound := v.groups[g]
	v.groups[g] = true
	v.mu.Unlock()
	if bound {
		return
	}
	g.OnEach([]string{"item-next", "item-prev"}, func(ev *Event) async.Settler {
		item, ok := ev.Data.(*ContentItem)
		if !ok || item.Viewer() != v {
			return nil
		}
		return v.Trigger("item-change", item)
	})
}

func (v *Viewer) render() {
	theme := v.Theme()
	v.hooked.Do(func() {
		theme.On("render-loading", v.onLoading)
		theme.On("render-complete", v.onComplete)
	})
	theme.Render()
}

// onLoading opens the viewer, or runs the unload transition when it is
// already open, then flags it as loading.
func (v *Viewer) onLoading(*Event) async.Settler {
	theme := v.Theme()
	d := async.NewSignal()
	v.showRoot()
	if !v.IsOpen() {
		v.eventsOpen()
		async.After(theme.Transition("open", false), func(err error) {
			if !v.IsActive() {
				d.Resolve(struct{}{})
				return
			}
			v.SetStatus("open", true)
			v.setLoading(true)
			d.Resolve(struct{}{})
		})
		return d
	}
	async.After(theme.Transition("unload", true), func(err error) {
		if v.IsActive() {
			v.setLoading(true)
		}
		d.Resolve(struct{}{})
	})
	return d
}

// onComplete applies the finished render: item count classes, sizing and
// the complete transition.
func (v *Viewer) onComplete(ev *Event) async.Settler {
	item, _ := ev.Data.(*ContentItem)
	theme := v.Theme()
	g := item.Group()
	multi := g != nil && g.Size() > 1

	root := v.DOM()
	v.view.doc.Update(func() {
		dom.ToggleClass(root, v.ChildClass("multi"), multi)
		dom.ToggleClass(root, v.ChildClass("single"), !multi)
	})
	v.setLoading(false)

	var dims Dimensions
	if out, err := item.Output().Value(); err == nil {
		dims = v.Autofit(Dimensions{Width: out.Width, Height: out.Height})
	}
	d := async.NewSignal()
	async.After(theme.Transition("complete", false), func(err error) {
		if !v.IsActive() {
			d.Resolve(struct{}{})
			return
		}
		if err != nil {
			v.sizeContent(dims)
		}
		if v.SlideshowActive() {
			v.SetStatus("slideshow_active", true)
			v.slideshowSchedule()
		}
		v.SetStatus("initialized", true)
		if v.StatusOnce("controls") {
			v.view.log.Debug("viewer controls enabled", "viewer", v.ID())
		}
		async.Forward(v.Trigger("render-complete", item), d)
	})
	return d
}

// Autofit scales d down to fit the viewport less the theme's offset and
// margin. Zero dimensions and disabled autofit return d unchanged.
func (v *Viewer) Autofit(d Dimensions) Dimensions {
	if d.Width <= 0 || d.Height <= 0 || !v.AttrBool("autofit", true) {
		return d
	}
	theme := v.Theme()
	vp := v.view.Viewport()
	off, margin := theme.Offset(), theme.Margin()
	maxW := vp.Width - off.Width - 2*margin.Width
	maxH := vp.Height - off.Height - 2*margin.Height
	if maxW <= 0 || maxH <= 0 {
		return d
	}
	scale := math.Min(1, math.Min(float64(maxW)/float64(d.Width), float64(maxH)/float64(d.Height)))
	return Dimensions{
		Width:  int(math.Round(float64(d.Width) * scale)),
		Height: int(math.Round(float64(d.Height) * scale)),
	}
}

// sizeContent is the CSS-only sizing used when the complete transition
// does not run.
func (v *Viewer) sizeContent(d Dimensions) {
	if d.IsZero() {
		return
	}
	layout := v.DOMGet("layout", nil)
	if layout == nil {
		return
	}
	v.view.doc.Update(func() {
		dom.SetStyle(layout, "width", fmt.Sprintf("%dpx", d.Width))
		dom.SetStyle(layout, "height", fmt.Sprintf("%dpx", d.Height))
	})
}

func (v *Viewer) setLoading(on bool) {
	v.SetStatus("loading", on)
	root := v.DOM()
	v.view.doc.Update(func() {
		dom.ToggleClass(root, v.ChildClass("loading"), on)
	})
}

// Close deactivates the viewer and runs the unload and close transitions.
// The viewer is reset once both have settled, whatever their outcome.
func (v *Viewer) Close() *async.Signal {
	v.SetStatus("active", false)
	theme := v.Theme()
	out := async.NewSignal()
	async.After(theme.Transition("unload", true), func(error) {
		async.After(theme.Transition("close", false), func(error) {
			v.reset()
			v.view.metrics.ObserveClose(v.ID())
			v.view.log.Debug("viewer closed", "viewer", v.ID())
			async.Forward(v.Trigger("close", nil), out)
		})
	})
	return out
}

// reset returns the viewer to its idle state.
func (v *Viewer) reset() {
	if root := v.Element(); root != nil {
		v.view.doc.Update(func() {
			dom.SetStyle(root, "display", "none")
			dom.RemoveClass(root, v.ChildClass("loading"))
		})
	}
	v.overlay(false)
	v.historyReset()

	v.mu.Lock()
	v.item = nil
	v.itemQueued = nil
	v.keys = false
	v.mu.Unlock()

	v.SetStatus("open", false)
	v.SetStatus("loading", false)
	v.SlideshowStop()
	v.Unlock()
}

// buildDOM creates the viewer markup and attaches it to the container.
func (v *Viewer) buildDOM() {
	p := v.view.prefix
	theme := v.Theme()
	root := dom.Element("div", "class", p+"_viewer", "data-"+p+"-viewer", v.ID())
	dom.AddClass(root, theme.GetClasses()...)
	dom.SetStyle(root, "display", "none")

	overlay := dom.Element("div", "class", v.ChildClass("overlay"))
	if v.AttrBool("overlay_enabled", true) {
		dom.SetStyle(overlay, "opacity", fmt.Sprintf("%g", v.AttrFloat("overlay_opacity", 0.8)))
	} else {
		dom.SetStyle(overlay, "display", "none")
	}
	layout := dom.Element("div", "class", v.ChildClass("layout"))
	if tpl := theme.Template().DOM(); tpl != nil {
		dom.Append(layout, tpl)
	}
	dom.Append(root, overlay, layout)

	sel := v.AttrString("container", "body")
	v.view.doc.Update(func() {
		container := dom.Query(v.view.doc.Root(), sel)
		if container == nil {
			container = v.view.doc.Body()
		}
		dom.Append(container, root)
	})
	v.SetElement(root)
}

func (v *Viewer) showRoot() {
	root := v.DOM()
	v.view.doc.Update(func() {
		dom.SetStyle(root, "display", "")
	})
}

// eventsOpen marks the page as showing an overlay and starts listening for
// keys.
func (v *Viewer) eventsOpen() {
	v.overlay(true)
	v.mu.Lock()
	v.keys = true
	v.mu.Unlock()
}

func (v *Viewer) overlay(on bool) {
	if on && !v.AttrBool("overlay_enabled", true) {
		return
	}
	cls := v.view.prefix + "_overlay"
	v.view.doc.Update(func() {
		if el := dom.Query(v.view.doc.Root(), "html"); el != nil {
			dom.ToggleClass(el, cls, on)
		}
	})
}

// Root is the viewer's element, created on first use.
func (v *Viewer) Root() *html.Node {
	return v.DOM()
}
