package lightbox

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"

	"github.com/pthm/lightbox/lib/async"
	"github.com/pthm/lightbox/lib/dom"
	"github.com/pthm/lightbox/lib/tagscan"
)

// Template turns a theme's layout markup into DOM and renders its tags for
// the viewer's current item.
//
// Rendering runs in three phases. The theme's render-loading event and the
// item's Load run together; once both have settled every tag is rendered and
// written into its element in document order; render-complete fires after
// the last write.
type Template struct {
	*Component
	theme *Theme

	mu     sync.Mutex
	parsed *string
	tags   []*Tag
}

func newTemplate(t *Theme) *Template {
	tpl := &Template{
		Component: newComponent(t.view, KindTemplate, nil, nil),
		theme:     t,
	}
	tpl.domInit = tpl.buildDOM
	return tpl
}

// Theme returns the owning theme.
func (t *Template) Theme() *Theme {
	return t.theme
}

// tagClass marks tag placeholders and the elements tags render into.
func (t *Template) tagClass() string {
	return t.view.prefix + "_template_tag"
}

// GetLayout returns the theme layout. With parsed set, author elements that
// already carry the tag class are quarantined and every tag is replaced by
// a placeholder element. The parsed form is computed once.
func (t *Template) GetLayout(parsed bool) string {
	if !parsed {
		return t.theme.Layout()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.parsed != nil {
		return *t.parsed
	}
	out := t.placeholders(t.sanitize(t.theme.Layout()))
	t.parsed = &out
	return out
}

func (t *Template) sanitize(raw string) string {
	cls := t.tagClass()
	if !strings.Contains(raw, cls) {
		return raw
	}
	nodes, err := dom.Fragment(raw)
	if err != nil {
		t.view.log.Warn("layout could not be sanitized", "error", err.Error())
		return raw
	}
	wrap := dom.Element("div")
	dom.Append(wrap, nodes...)
	lookalikes := dom.QueryAll(wrap, "."+cls)
	if len(lookalikes) == 0 {
		return raw
	}
	for _, n := range lookalikes {
		dom.RemoveClass(n, cls)
		dom.AddClass(n, cls+"_quarantine")
	}
	return dom.InnerHTML(wrap)
}

func (t *Template) placeholders(layout string) string {
	cls := t.tagClass()
	return tagscan.Replace(layout, func(match string) string {
		return `<span class="` + cls + `" data-tag="` + url.QueryEscape(match) + `"></span>`
	})
}

// buildDOM materializes the parsed layout under a detached root and binds a
// Tag to every placeholder. Placeholders that do not parse or name an
// unregistered tag are removed.
func (t *Template) buildDOM() {
	root := dom.Element("div", "class", t.view.prefix+"_template")
	nodes, err := dom.Fragment(t.GetLayout(true))
	if err != nil {
		t.view.log.Warn("layout markup rejected", "theme", t.theme.ID(), "error", err.Error())
	}
	dom.Append(root, nodes...)

	cls := t.tagClass()
	var tags []*Tag
	for _, ph := range dom.QueryAll(root, "."+cls) {
		raw, _ := dom.Attr(ph, "data-tag")
		match, err := url.QueryUnescape(raw)
		if err != nil {
			dom.Remove(ph)
			continue
		}
		tag := ParseTag(match)
		if tag == nil {
			dom.Remove(ph)
			continue
		}
		h, ok := t.view.TagHandler(tag.Name)
		if !ok {
			t.view.log.Debug("dropping unhandled tag", "tag", tag.Name)
			dom.Remove(ph)
			continue
		}
		tag.handler = h
		dom.Replace(ph, newTagElement(tag, cls))
		tags = append(tags, tag)
	}

	t.mu.Lock()
	t.tags = tags
	t.mu.Unlock()
	t.SetElement(root)
}

// Tags returns the template's tags in document order.
func (t *Template) Tags() []*Tag {
	t.DOM()
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Tag, len(t.tags))
	copy(out, t.tags)
	return out
}

// Render renders the template for the viewer's current item. The result
// settles once render-complete handlers have settled.
//
// An inactive viewer rejects with ErrInactive. A missing item or one no
// content handler accepts closes the viewer.
func (t *Template) Render() *async.Signal {
	v := t.theme.viewer
	if !v.IsActive() {
		return async.Rejected[struct{}](ErrInactive)
	}
	item := v.Item()
	if item == nil {
		v.Close()
		return async.Rejected[struct{}](ErrNoItem)
	}
	if item.Type() == nil {
		t.view.log.Warn("no content handler for item", "item", item.ID(), "uri", item.URI())
		v.Close()
		return async.Rejected[struct{}](ErrNoHandler)
	}

	start := time.Now()
	tags := t.Tags()
	out := async.NewSignal()

	loading := t.theme.Trigger("render-loading", item)
	load := item.Load()

	go func() {
		<-async.All(loading, load).Done()
		if !t.current(item) {
			t.view.metrics.ObserveRender(t.theme.ID(), start, false)
			out.Reject(ErrInactive)
			return
		}

		renders := make([]*async.Promise[string], len(tags))
		for i, tag := range tags {
			renders[i] = tag.Render(item)
		}
		for i, tag := range tags {
			<-renders[i].Done()
			markup, _ := renders[i].Value()
			if !t.current(item) {
				continue
			}
			t.view.doc.Update(func() {
				if err := dom.SetInnerHTML(tag.el, markup); err != nil {
					t.view.log.Warn("tag output rejected", "tag", tag.Name, "error", err.Error())
				}
			})
		}

		if !t.current(item) {
			t.view.metrics.ObserveRender(t.theme.ID(), start, false)
			out.Reject(ErrInactive)
			return
		}
		t.view.metrics.ObserveRender(t.theme.ID(), start, true)
		async.Forward(t.theme.Trigger("render-complete", item), out)
	}()
	return out
}

// current reports whether the viewer is still active on item.
func (t *Template) current(item *ContentItem) bool {
	v := t.theme.viewer
	return v.IsActive() && v.Item() == item
}

// HTML renders the template's current DOM.
func (t *Template) HTML() string {
	root := t.DOM()
	if root == nil {
		return ""
	}
	var out string
	t.view.doc.Read(func() {
		out = dom.InnerHTML(root)
	})
	return out
}

// Templ exposes the template's current DOM as a templ component.
func (t *Template) Templ() templ.Component {
	return templ.Raw(t.HTML())
}
