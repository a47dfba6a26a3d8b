package lightbox

import (
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/pthm/lightbox/lib/dom"
)

// Group is an ordered collection of items sharing a group id. Membership is
// read from the page on every call, so links added or removed between calls
// are reflected immediately.
type Group struct {
	*Component

	mu      sync.Mutex
	current *ContentItem
}

func newGroup(v *View, id string) *Group {
	g := &Group{Component: newComponent(v, KindGroup, nil, nil)}
	g.SetID(id)
	return g
}

func (g *Group) selector() string {
	p := g.view.prefix
	id := strings.ReplaceAll(g.ID(), `"`, `\"`)
	return `a[data-` + p + `-active="1"][data-` + p + `-group="` + id + `"]`
}

func (g *Group) nodes() []*html.Node {
	var nodes []*html.Node
	g.view.doc.Read(func() {
		nodes = dom.QueryAll(g.view.doc.Root(), g.selector())
	})
	return nodes
}

// Items returns the group's items in document order.
func (g *Group) Items() []*ContentItem {
	nodes := g.nodes()
	items := make([]*ContentItem, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, g.view.ItemFor(n))
	}
	return items
}

// Size returns the number of items in the group.
func (g *Group) Size() int {
	return len(g.nodes())
}

// Index returns the zero-based position of item, or -1.
func (g *Group) Index(item *ContentItem) int {
	if item == nil {
		return -1
	}
	return indexOf(g.nodes(), item.Element())
}

func indexOf(nodes []*html.Node, el *html.Node) int {
	if el == nil {
		return -1
	}
	for i, n := range nodes {
		if n == el {
			return i
		}
	}
	return -1
}

// Current returns the item the group is positioned on.
func (g *Group) Current() *ContentItem {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// SetCurrent positions the group on item.
func (g *Group) SetCurrent(item *ContentItem) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = item
}

// GetNext returns the item after item, or the current item when item is
// nil. A single-item group returns the item itself. Past the last item the
// first is returned when the item's viewer loops, otherwise nil.
func (g *Group) GetNext(item *ContentItem) *ContentItem {
	return g.step(item, 1)
}

// GetPrev is GetNext in the other direction.
func (g *Group) GetPrev(item *ContentItem) *ContentItem {
	return g.step(item, -1)
}

func (g *Group) step(item *ContentItem, dir int) *ContentItem {
	if item == nil {
		item = g.Current()
	}
	if item == nil {
		return nil
	}
	nodes := g.nodes()
	if len(nodes) == 1 && nodes[0] == item.Element() {
		return item
	}
	idx := indexOf(nodes, item.Element())
	if idx < 0 {
		return nil
	}
	next := idx + dir
	if next < 0 || next >= len(nodes) {
		if !g.loops(item) {
			return nil
		}
		next = (next + len(nodes)) % len(nodes)
	}
	return g.view.ItemFor(nodes[next])
}

func (g *Group) loops(item *ContentItem) bool {
	v := item.Viewer()
	return v != nil && v.AttrBool("loop", true)
}

// ShowNext shows the next item and reports whether it did. When there is no
// next item, the current item's viewer is closed instead.
func (g *Group) ShowNext() bool {
	return g.show(g.GetNext(nil), "item-next")
}

// ShowPrev shows the previous item, closing the viewer when there is none.
func (g *Group) ShowPrev() bool {
	return g.show(g.GetPrev(nil), "item-prev")
}

func (g *Group) show(target *ContentItem, event string) bool {
	if target == nil {
		if cur := g.Current(); cur != nil {
			if v := cur.Viewer(); v != nil {
				v.Close()
			}
		}
		return false
	}
	g.SetCurrent(target)
	target.Show()
	g.Trigger(event, target)
	return true
}
