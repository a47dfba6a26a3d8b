package lightbox

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/lightbox/lib/async"
)

// TestResult holds the outcome of showing an item for testing.
//
// Provides convenience methods for asserting on the rendered template and
// the page.
type TestResult struct {
	Shown    bool
	Template string
	Page     string
	Events   []string
}

// RenderItem shows item in its viewer and waits for the viewer's
// render-complete event, or for a close when the viewer refuses the item.
//
// Use this for tests and tooling that need the rendered output of one item:
//
//	res, err := lightbox.RenderItem(ctx, view.ItemFor(link))
//	if !res.TemplateContains("Photo") {
//	    t.Fatal("missing title")
//	}
func RenderItem(ctx context.Context, item *ContentItem) (*TestResult, error) {
	v := item.Viewer()
	if v == nil {
		return nil, ErrNoViewer
	}

	done := async.New[string]()
	v.On("render-complete", func(*Event) async.Settler {
		done.Resolve("render-complete")
		return nil
	}, Once())
	v.On("close", func(*Event) async.Settler {
		done.Resolve("close")
		return nil
	}, Once())

	res := &TestResult{Shown: item.Show()}
	event, err := done.Wait(ctx)
	if err != nil {
		return nil, err
	}
	res.Events = append(res.Events, event)
	res.Template = v.Theme().Template().HTML()
	res.Page = item.View().Document().HTML()
	return res, nil
}

// TemplateContains checks if the rendered template contains a substring.
func (r *TestResult) TemplateContains(substr string) bool {
	return strings.Contains(r.Template, substr)
}

// HTMLContains checks if the page contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.Page, substr)
}

// HTMLContainsAll checks if the page contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.Page, s) {
			return false
		}
	}
	return true
}

// HasEvent checks if the wait ended on event.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.Events {
		if e == event {
			return true
		}
	}
	return false
}

// StaticHandler is a content handler that accepts every item and renders
// fixed markup. Register it ahead of other handlers to take over display:
//
//	view.RegisterContentHandler(&lightbox.StaticHandler{Markup: "<p>x</p>"})
type StaticHandler struct {
	Name   string
	Markup string
	Size   Dimensions
	// LoadFunc replaces the default already-fired load.
	LoadFunc func(item *ContentItem) *async.Signal
}

// ID implements ContentHandler.
func (h *StaticHandler) ID() string {
	if h.Name == "" {
		return "static"
	}
	return h.Name
}

// Match implements ContentHandler.
func (h *StaticHandler) Match(*ContentItem) bool {
	return true
}

// Load implements ContentHandler.
func (h *StaticHandler) Load(item *ContentItem) *async.Signal {
	if h.LoadFunc != nil {
		return h.LoadFunc(item)
	}
	return async.Fired()
}

// Render implements ContentHandler.
func (h *StaticHandler) Render(*ContentItem) *async.Promise[Output] {
	return async.Resolved(Output{
		Content: templ.Raw(h.Markup),
		Width:   h.Size.Width,
		Height:  h.Size.Height,
	})
}
