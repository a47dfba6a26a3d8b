package lightbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const markupPage = `<!DOCTYPE html><html><body>
<a id="m" href="/img/m.png" data-slb-active="1"
   data-slb-title="&lt;script&gt;alert(1)&lt;/script&gt;Hi"
   data-slb-description="**bold** &lt;script&gt;x&lt;/script&gt;"
   data-slb-caption="&lt;em&gt;kept&lt;/em&gt;">M</a>
</body></html>`

func renderItemTag(t *testing.T, item *ContentItem, raw string) string {
	t.Helper()
	tag := ParseTag(raw)
	require.NotNil(t, tag)
	p := itemTags{}.RenderTag(item, tag)
	if p == nil {
		return ""
	}
	waitFor(t, p)
	out, err := p.Value()
	require.NoError(t, err)
	return out
}

func TestItemTagsSanitize(t *testing.T) {
	v := newTestView(t, markupPage, DefaultOptions())
	item := itemByID(t, v, "m")

	assert.Equal(t, "Hi", renderItemTag(t, item, "{{item.title}}"))
	assert.Equal(t, "<em>kept</em>", renderItemTag(t, item, "{{item.caption}}"))

	plain := renderItemTag(t, item, "{{item.description}}")
	assert.Contains(t, plain, "**bold**")
	assert.NotContains(t, plain, "<script")

	md := renderItemTag(t, item, "{{item.description|format:markdown}}")
	assert.Contains(t, md, "<strong>bold</strong>")
	assert.NotContains(t, md, "<script")
}

func TestItemTagsProps(t *testing.T) {
	v := newTestView(t, galleryPage, DefaultOptions())
	c := itemByID(t, v, "c")

	assert.Equal(t, "/img/c.jpg?size=large", renderItemTag(t, c, "{{item.source}}"))
	assert.Equal(t, "/img/c.jpg?size=large", renderItemTag(t, c, "{{item.permalink}}"))
	assert.Equal(t, "image", renderItemTag(t, c, "{{item.type}}"))
	assert.Equal(t, c.ID(), renderItemTag(t, c, "{{item.id}}"))
	assert.Equal(t, `<img src="/img/c.jpg?size=large" alt=""/>`, renderItemTag(t, c, "{{item.content}}"))
	assert.Equal(t, "", renderItemTag(t, c, "{{item.unknown}}"))
	assert.Equal(t, "", renderItemTag(t, itemByID(t, v, "doc"), "{{item.type}}"))
}

func renderUITag(t *testing.T, item *ContentItem, raw string) string {
	t.Helper()
	c := uiTags(item, ParseTag(raw))
	if c == nil {
		return ""
	}
	out, err := renderComponent(c)
	require.NoError(t, err)
	return out
}

func TestUITags(t *testing.T) {
	v := newTestView(t, galleryPage, optionsWith(map[string]any{"ui_close": "Close <x>"}))
	b := itemByID(t, v, "b")
	solo := itemByID(t, v, "solo")

	assert.Equal(t, `<a href="#" class="slb_ui slb_ui_close" data-slb-ui="close">Close &lt;x&gt;</a>`,
		renderUITag(t, b, "{{ui.close}}"))
	assert.Equal(t, `<a href="#" class="slb_ui slb_ui_nav_next" data-slb-ui="nav_next">next</a>`,
		renderUITag(t, b, "{{ui.nav_next}}"))
	assert.Equal(t, `<a href="#" class="slb_ui slb_ui_slideshow_control" data-slb-ui="slideshow_control">start slideshow</a>`,
		renderUITag(t, b, "{{ui.slideshow_control}}"))
	assert.Equal(t, `<span class="slb_ui slb_ui_group_status">Item 2 of 3</span>`,
		renderUITag(t, b, "{{ui.group_status}}"))

	for _, prop := range []string{"nav_next", "nav_prev", "slideshow_control", "group_status"} {
		assert.Empty(t, renderUITag(t, solo, "{{ui."+prop+"}}"), prop)
	}
	assert.NotEmpty(t, renderUITag(t, solo, "{{ui.close}}"))
	assert.Empty(t, renderUITag(t, b, "{{ui.bogus}}"))
}

func TestUISlideshowLabel(t *testing.T) {
	v := newTestView(t, galleryPage, optionsWith(map[string]any{"slideshow_duration": 60}))
	a := itemByID(t, v, "a")
	renderItem(t, a)

	a.Viewer().SlideshowStart()
	assert.Contains(t, renderUITag(t, a, "{{ui.slideshow_control}}"), "stop slideshow")
	a.Viewer().SlideshowStop()
	assert.Contains(t, renderUITag(t, a, "{{ui.slideshow_control}}"), "start slideshow")
}
