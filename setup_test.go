package lightbox

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/pthm/lightbox/lib/async"
	"github.com/pthm/lightbox/lib/dom"
)

const galleryPage = `<!DOCTYPE html><html><body>
<a id="a" href="/img/a.jpg" data-slb-active="1" data-slb-group="trip" data-slb-title="Photo">A</a>
<a id="b" href="/img/b.jpg" data-slb-active="1" data-slb-group="trip" title="Beach">B</a>
<a id="c" href="/img/c.jpg?size=large" data-slb-active="1" data-slb-group="trip">C</a>
<a id="solo" href="/img/solo.png" data-slb-active="1" data-slb-group="solo"><img src="/t.png" alt="Solo shot"></a>
<a id="doc" href="/files/report.pdf" data-slb-active="1">Report</a>
<a id="plain" href="/img/plain.jpg">not active</a>
</body></html>`

func newTestView(t *testing.T, page string, opts Options, models ...*Model) *View {
	t.Helper()
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	v, err := New(doc, opts)
	require.NoError(t, err)
	for _, m := range models {
		require.NoError(t, v.AddModel(m))
	}
	v.Init()
	t.Cleanup(v.Teardown)
	return v
}

func optionsWith(values map[string]any) Options {
	opts := DefaultOptions()
	opts.Values = values
	return opts
}

func nodeByID(t *testing.T, v *View, id string) *html.Node {
	t.Helper()
	var n *html.Node
	v.Document().Read(func() {
		n = dom.Query(v.Document().Root(), "#"+id)
	})
	require.NotNil(t, n, "no element #%s", id)
	return n
}

func itemByID(t *testing.T, v *View, id string) *ContentItem {
	t.Helper()
	return v.ItemFor(nodeByID(t, v, id))
}

func waitFor(t *testing.T, s async.Settler) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting")
	}
}

// recorder collects the items of a viewer event.
type recorder struct {
	mu    sync.Mutex
	items []*ContentItem
	ch    chan *ContentItem
}

func record(c *Component, event string) *recorder {
	r := &recorder{ch: make(chan *ContentItem, 16)}
	c.On(event, func(ev *Event) async.Settler {
		item, _ := ev.Data.(*ContentItem)
		r.mu.Lock()
		r.items = append(r.items, item)
		r.mu.Unlock()
		r.ch <- item
		return nil
	})
	return r
}

func (r *recorder) next(t *testing.T) *ContentItem {
	t.Helper()
	select {
	case item := <-r.ch:
		return item
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
