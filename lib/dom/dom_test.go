package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html><html dir="rtl"><body>
<a id="one" href="/a.jpg" data-slb-active="1" data-slb-group="g1" data-slb-caption-text="Hi">A</a>
<a id="two" href="/b.jpg" data-slb-active="1" data-slb-group="g1">B</a>
<p class="note intro">text <b>bold</b></p>
</body></html>`

func TestQuery(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)

	links := QueryAll(doc.Root(), `a[data-slb-group="g1"]`)
	require.Len(t, links, 2)
	id, _ := Attr(links[1], "id")
	assert.Equal(t, "two", id)

	assert.Nil(t, Query(doc.Root(), "section"))
	assert.Empty(t, QueryAll(doc.Root(), "[[invalid"))
	assert.Equal(t, "body", doc.Body().Data)

	b := Query(doc.Root(), "b")
	assert.NotNil(t, Closest(b, "p.note"))
	assert.True(t, Contains(doc.Body(), b))
	assert.False(t, Contains(b, doc.Body()))
}

func TestDataAttrs(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)

	attrs := DataAttrs(Query(doc.Root(), "#one"), "slb")
	assert.Equal(t, map[string]string{
		"active":       "1",
		"group":        "g1",
		"caption_text": "Hi",
	}, attrs)
}

func TestClasses(t *testing.T) {
	n := Element("div", "class", "a b")
	AddClass(n, "b", "c")
	assert.Equal(t, []string{"a", "b", "c"}, Classes(n))

	RemoveClass(n, "a", "c")
	assert.True(t, HasClass(n, "b"))
	assert.False(t, HasClass(n, "a"))

	ToggleClass(n, "b", false)
	_, ok := Attr(n, "class")
	assert.False(t, ok)
}

func TestStyle(t *testing.T) {
	n := Element("div", "style", "color: red;display:none")
	assert.Equal(t, "none", Style(n, "display"))

	SetStyle(n, "display", "block")
	SetStyle(n, "width", "10px")
	assert.Equal(t, "block", Style(n, "display"))

	SetStyle(n, "color", "")
	v, _ := Attr(n, "style")
	assert.Equal(t, "display: block; width: 10px", v)
}

func TestInnerHTML(t *testing.T) {
	n := Element("span", "class", "x")
	require.NoError(t, SetInnerHTML(n, `<em>Photo</em> &amp; more`))
	assert.Equal(t, `<em>Photo</em> &amp; more`, InnerHTML(n))
	assert.Equal(t, `<span class="x"><em>Photo</em> &amp; more</span>`, OuterHTML(n))
	assert.Equal(t, "Photo & more", Text(n))

	Empty(n)
	assert.Equal(t, "", InnerHTML(n))
}

func TestReplace(t *testing.T) {
	nodes, err := Fragment(`<div><i>old</i></div>`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	old := Query(nodes[0], "i")
	repl := Element("b")
	Replace(old, repl)
	assert.Equal(t, `<div><b></b></div>`, OuterHTML(nodes[0]))

	Remove(repl)
	assert.Equal(t, `<div></div>`, OuterHTML(nodes[0]))
}
