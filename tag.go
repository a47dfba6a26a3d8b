package lightbox

import (
	"bytes"
	"context"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/pthm/lightbox/lib/async"
	"github.com/pthm/lightbox/lib/dom"
)

// Tag is one parsed {{name.prop|key:value}} placeholder from a layout.
type Tag struct {
	Name    string
	Prop    string
	Options map[string]string
	Match   string

	handler TagHandler
	el      *html.Node
}

// ParseTag parses a tag match. The surrounding braces are optional. A key
// repeated in the options keeps its first value. It returns nil when the
// tag has no name.
func ParseTag(match string) *Tag {
	body := strings.TrimSpace(match)
	body = strings.TrimPrefix(body, "{{")
	body = strings.TrimSuffix(body, "}}")

	parts := strings.Split(body, "|")
	head := strings.TrimSpace(parts[0])
	name, prop, _ := strings.Cut(head, ".")
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	t := &Tag{
		Name:    name,
		Prop:    strings.TrimSpace(prop),
		Options: make(map[string]string),
		Match:   match,
	}
	for _, part := range parts[1:] {
		key, val, _ := strings.Cut(part, ":")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, taken := t.Options[key]; taken {
			continue
		}
		t.Options[key] = strings.TrimSpace(val)
	}
	return t
}

// Option returns option key, or def when the tag does not set it.
func (t *Tag) Option(key, def string) string {
	if v, ok := t.Options[key]; ok {
		return v
	}
	return def
}

// Element returns the DOM element the tag renders into.
func (t *Tag) Element() *html.Node {
	return t.el
}

// Classes returns the classes for the tag's element: the base tag class,
// then one per name and one per name and property.
func (t *Tag) Classes(tagClass string) []string {
	classes := []string{tagClass, tagClass + "_" + t.Name}
	if t.Prop != "" {
		classes = append(classes, tagClass+"_"+t.Name+"_"+t.Prop)
	}
	return classes
}

// Render renders the tag for item. A missing handler, nil promise or
// rejection yields an empty string.
func (t *Tag) Render(item *ContentItem) *async.Promise[string] {
	h := t.handler
	if h == nil {
		h = nullHandler
	}
	p := h.RenderTag(item, t)
	if p == nil {
		return async.Resolved("")
	}
	out := async.New[string]()
	go func() {
		<-p.Done()
		s, err := p.Value()
		if err != nil {
			s = ""
		}
		out.Resolve(s)
	}()
	return out
}

// TagFunc adapts a function returning plain markup to a TagHandler.
type TagFunc func(item *ContentItem, tag *Tag) string

// RenderTag implements TagHandler.
func (f TagFunc) RenderTag(item *ContentItem, tag *Tag) *async.Promise[string] {
	return async.Resolved(f(item, tag))
}

// TagComponent adapts a function returning a templ component to a
// TagHandler. A nil component renders as an empty string.
type TagComponent func(item *ContentItem, tag *Tag) templ.Component

// RenderTag implements TagHandler.
func (f TagComponent) RenderTag(item *ContentItem, tag *Tag) *async.Promise[string] {
	c := f(item, tag)
	if c == nil {
		return async.Resolved("")
	}
	s, err := renderComponent(c)
	if err != nil {
		return async.Rejected[string](err)
	}
	return async.Resolved(s)
}

func renderComponent(c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type null struct{}

func (null) RenderTag(*ContentItem, *Tag) *async.Promise[string] {
	return async.Resolved("")
}

// nullHandler is returned for tag names nothing is registered under.
var nullHandler TagHandler = null{}

// newTagElement creates the element a tag renders into.
func newTagElement(t *Tag, tagClass string) *html.Node {
	el := dom.Element("span")
	dom.AddClass(el, t.Classes(tagClass)...)
	t.el = el
	return el
}
