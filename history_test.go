package lightbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/lightbox/lib/dom"
	"github.com/pthm/lightbox/lib/encoding"
)

func TestHistoryStack(t *testing.T) {
	h := NewHistory("https://example.com/page")
	var popped []*HistoryState
	h.OnPop(func(s *HistoryState) { popped = append(popped, s) })

	one := &HistoryState{Viewer: "v", Item: "1", Count: 1}
	two := &HistoryState{Viewer: "v", Item: "2", Count: 2}
	h.Push(one, "")
	h.Push(two, "https://example.com/page#two")
	assert.Equal(t, 3, h.Len())
	assert.Same(t, two, h.State())
	assert.Equal(t, "https://example.com/page#two", h.URL())

	h.Back()
	assert.Same(t, one, h.State())
	assert.Equal(t, "https://example.com/page", h.URL(), "entries without a URL keep the current one")

	h.Go(-5)
	h.Go(0)
	assert.Len(t, popped, 1, "moves out of range are ignored")

	h.Back()
	assert.Nil(t, h.State())
	h.Forward()
	assert.Same(t, one, h.State())
	assert.Equal(t, []*HistoryState{one, nil, one}, popped)

	h.Push(two, "")
	assert.Equal(t, 3, h.Len(), "pushing drops forward entries")
}

func TestFragments(t *testing.T) {
	assert.Equal(t, "/p#slb=tok", withFragment("/p#old", "slb=tok"))
	assert.Equal(t, "/p#slb=tok", withFragment("/p", "slb=tok"))
	assert.Equal(t, "tok", fragmentValue("/p#x=1&slb=tok", "slb"))
	assert.Equal(t, "", fragmentValue("/p", "slb"))
	assert.Equal(t, "", fragmentValue("/p#other=1", "slb"))
}

func TestViewerHistory(t *testing.T) {
	opts := DefaultOptions()
	opts.Key = "history-test-key"
	v := newTestView(t, galleryPage, opts)
	viewer := v.DefaultViewer()
	h := v.History()
	a, b := itemByID(t, v, "a"), itemByID(t, v, "b")

	renderItem(t, a)
	require.Equal(t, 2, h.Len())
	assert.Equal(t, &HistoryState{Viewer: "default", Item: a.ID(), Count: 1}, h.State())
	assert.True(t, strings.HasPrefix(h.URL(), "#slb="))

	complete := record(viewer.Component, "render-complete")
	require.True(t, viewer.ItemNext())
	assert.Same(t, b, complete.next(t))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, viewer.HistoryCount())

	h.Back()
	assert.Same(t, a, complete.next(t))
	assert.Equal(t, 3, h.Len(), "showing from history pushes nothing")
	assert.Equal(t, 1, viewer.HistoryCount())

	closed := record(viewer.Component, "close")
	h.Back()
	closed.next(t)
	assert.False(t, viewer.IsActive())
	assert.Equal(t, 0, viewer.HistoryCount())
	assert.Nil(t, h.State())
}

func TestCloseRewindsHistory(t *testing.T) {
	v := newTestView(t, galleryPage, DefaultOptions())
	viewer := v.DefaultViewer()
	renderItem(t, itemByID(t, v, "a"))
	complete := record(viewer.Component, "render-complete")
	viewer.ItemNext()
	complete.next(t)
	require.Equal(t, 2, viewer.HistoryCount())

	waitFor(t, viewer.Close())
	assert.Nil(t, v.History().State())
	assert.Equal(t, 0, viewer.HistoryCount())
}

func TestHistoryDisabled(t *testing.T) {
	v := newTestView(t, galleryPage, optionsWith(map[string]any{"history": false}))
	renderItem(t, itemByID(t, v, "a"))
	assert.Equal(t, 1, v.History().Len())
}

func TestDeepLinkRestore(t *testing.T) {
	const key = "deep-link-key"
	codec, err := encoding.NewCodec([]byte(key))
	require.NoError(t, err)
	token, err := codec.Encode(&HistoryState{Viewer: "gallery", Item: "fixed", Count: 1})
	require.NoError(t, err)

	page := strings.Replace(galleryPage, `id="b"`, `id="b" data-slb-item="fixed"`, 1)
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Key = key
	v, err := New(doc, opts, WithHistory(NewHistory("/gallery#slb="+token)))
	require.NoError(t, err)
	t.Cleanup(v.Teardown)

	viewer := v.Viewer("gallery")
	complete := record(viewer.Component, "render-complete")
	v.Init()

	item := complete.next(t)
	id, _ := dom.Attr(item.Element(), "id")
	assert.Equal(t, "b", id)
	assert.Equal(t, "fixed", item.ID())
}

func TestDeepLinkRejectsForgedToken(t *testing.T) {
	forger, err := encoding.NewCodec([]byte("someone-else"))
	require.NoError(t, err)
	token, err := forger.Encode(&HistoryState{Viewer: "default", Item: "fixed"})
	require.NoError(t, err)

	page := strings.Replace(galleryPage, `id="b"`, `id="b" data-slb-item="fixed"`, 1)
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Key = "the-real-key"
	v, err := New(doc, opts, WithHistory(NewHistory("/#slb="+token)))
	require.NoError(t, err)
	t.Cleanup(v.Teardown)
	v.Init()

	assert.False(t, v.DefaultViewer().IsActive())
}
