package lightbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/pthm/lightbox/lib/dom"
)

func TestGroupNavigation(t *testing.T) {
	tests := []struct {
		name string
		loop bool
		from string
		next string
		prev string
	}{
		{"loop last", true, "c", "a", "b"},
		{"loop first", true, "a", "b", "c"},
		{"no loop last", false, "c", "", "b"},
		{"no loop first", false, "a", "b", ""},
		{"no loop middle", false, "b", "c", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestView(t, galleryPage, optionsWith(map[string]any{"loop": tt.loop}))
			g := v.Group("trip")
			from := itemByID(t, v, tt.from)

			check := func(got *ContentItem, id string) {
				t.Helper()
				if id == "" {
					assert.Nil(t, got)
					return
				}
				assert.Same(t, itemByID(t, v, id), got)
			}
			check(g.GetNext(from), tt.next)
			check(g.GetPrev(from), tt.prev)
		})
	}
}

func TestGroupSingleItem(t *testing.T) {
	for _, loop := range []bool{true, false} {
		v := newTestView(t, galleryPage, optionsWith(map[string]any{"loop": loop}))
		g := v.Group("solo")
		item := itemByID(t, v, "solo")
		assert.Same(t, item, g.GetNext(item))
		assert.Same(t, item, g.GetPrev(item))
	}
}

func TestGroupMembershipIsLive(t *testing.T) {
	v := newTestView(t, galleryPage, DefaultOptions())
	g := v.Group("trip")
	require.Equal(t, 3, g.Size())
	assert.Equal(t, 1, g.Index(itemByID(t, v, "b")))
	assert.Equal(t, -1, g.Index(itemByID(t, v, "solo")))
	assert.Nil(t, g.GetNext(itemByID(t, v, "solo")), "items outside the group have no position")

	v.Document().Update(func() {
		extra := dom.Element("a", "id", "d", "href", "/img/d.jpg", "data-slb-active", "1", "data-slb-group", "trip")
		dom.Append(v.Document().Body(), extra)
		dom.SetAttr(nodeByIDUnlocked(v, "a"), "data-slb-active", "0")
	})
	assert.Equal(t, 3, g.Size())
	assert.Equal(t, 0, g.Index(itemByID(t, v, "b")))

	ids := []string{}
	for _, item := range g.Items() {
		id, _ := dom.Attr(item.Element(), "id")
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"b", "c", "d"}, ids)
}

func nodeByIDUnlocked(v *View, id string) *html.Node {
	return dom.Query(v.Document().Root(), "#"+id)
}

func TestItemGroupResolution(t *testing.T) {
	v := newTestView(t, galleryPage, DefaultOptions())
	assert.Same(t, v.Group("trip"), itemByID(t, v, "a").Group())
	assert.Nil(t, itemByID(t, v, "doc").Group())
}

func TestShowNextPastLastClosesViewer(t *testing.T) {
	v := newTestView(t, galleryPage, optionsWith(map[string]any{"loop": false}))
	viewer := v.DefaultViewer()
	closed := record(viewer.Component, "close")

	last := itemByID(t, v, "c")
	res := renderItem(t, last)
	require.True(t, res.HasEvent("render-complete"))
	g := v.Group("trip")
	require.Same(t, last, g.Current())

	assert.False(t, g.ShowNext())
	closed.next(t)
	assert.False(t, viewer.IsActive())
	assert.Nil(t, viewer.Item())
	assert.False(t, viewer.IsLocked())
}

func TestShowNextNavigates(t *testing.T) {
	v := newTestView(t, galleryPage, DefaultOptions())
	viewer := v.DefaultViewer()
	g := v.Group("trip")
	renderItem(t, itemByID(t, v, "a"))

	complete := record(viewer.Component, "render-complete")
	changes := record(viewer.Component, "item-change")
	next := record(g.Component, "item-next")

	require.True(t, g.ShowNext())
	b := itemByID(t, v, "b")
	assert.Same(t, b, next.next(t))
	assert.Same(t, b, changes.next(t))
	assert.Same(t, b, complete.next(t))
	assert.Same(t, b, viewer.Item())
	assert.Same(t, b, g.Current())
}
