package lightbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/pthm/lightbox/lib/async"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func sanitizer() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
	})
	return policy
}

// itemTags renders properties of the item being shown:
//
//	{{item.content}}  {{item.title}}  {{item.description|format:markdown}}
type itemTags struct{}

func (itemTags) RenderTag(item *ContentItem, tag *Tag) *async.Promise[string] {
	if item == nil {
		return nil
	}
	switch tag.Prop {
	case "content":
		return async.Map(item.Output(), func(out Output) (string, error) {
			if out.Content == nil {
				return "", nil
			}
			return renderComponent(out.Content)
		})
	case "title":
		return async.Resolved(sanitizer().Sanitize(item.Title()))
	case "caption":
		return async.Resolved(sanitizer().Sanitize(item.Caption()))
	case "description":
		text := item.Description()
		if tag.Option("format", "") == "markdown" {
			var buf bytes.Buffer
			if err := goldmark.Convert([]byte(text), &buf); err != nil {
				return async.Rejected[string](err)
			}
			text = buf.String()
		}
		return async.Resolved(sanitizer().Sanitize(text))
	case "permalink":
		return async.Resolved(templ.EscapeString(item.Permalink()))
	case "source":
		return async.Resolved(templ.EscapeString(item.URI()))
	case "type":
		if h := item.Type(); h != nil {
			return async.Resolved(templ.EscapeString(h.ID()))
		}
	case "id":
		return async.Resolved(templ.EscapeString(item.ID()))
	}
	return nil
}

// uiTags renders viewer controls. Controls carry a data-<prefix>-ui marker
// that View.Click dispatches to the viewer.
//
//	{{ui.close}}  {{ui.nav_next}}  {{ui.slideshow_control}}  {{ui.group_status}}
func uiTags(item *ContentItem, tag *Tag) templ.Component {
	if item == nil {
		return nil
	}
	v := item.Viewer()
	if v == nil {
		return nil
	}
	p := item.View().Prefix()
	g := item.Group()
	multi := g != nil && g.Size() > 1

	switch tag.Prop {
	case "close":
		return uiControl(p, "close", v.AttrString("ui_close", "close"))
	case "nav_next":
		if multi {
			return uiControl(p, "nav_next", v.AttrString("ui_nav_next", "next"))
		}
	case "nav_prev":
		if multi {
			return uiControl(p, "nav_prev", v.AttrString("ui_nav_prev", "previous"))
		}
	case "slideshow_control":
		if !multi || !v.AttrBool("slideshow_enabled", true) {
			return nil
		}
		label := v.AttrString("ui_slideshow_start", "start slideshow")
		if v.SlideshowActive() {
			label = v.AttrString("ui_slideshow_stop", "stop slideshow")
		}
		return uiControl(p, "slideshow_control", label)
	case "group_status":
		if !multi {
			return nil
		}
		status := v.AttrString("ui_group_status", "Item %current% of %total%")
		status = strings.NewReplacer(
			"%current%", strconv.Itoa(g.Index(item)+1),
			"%total%", strconv.Itoa(g.Size()),
		).Replace(status)
		return uiText(p, "group_status", status)
	}
	return nil
}

func uiControl(prefix, action, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<a href="#" class="%[1]s_ui %[1]s_ui_%[2]s" data-%[1]s-ui="%[2]s">%[3]s</a>`,
			prefix, action, templ.EscapeString(label))
		return err
	})
}

func uiText(prefix, name, text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span class="%[1]s_ui %[1]s_ui_%[2]s">%[3]s</span>`,
			prefix, name, templ.EscapeString(text))
		return err
	})
}
