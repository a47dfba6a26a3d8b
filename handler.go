package lightbox

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"

	"github.com/a-h/templ"

	"github.com/pthm/lightbox/lib/async"
)

var imagePattern = regexp.MustCompile(`(?i)\.(jpe?g|gif|png|bmp|webp|avif|svg)$`)

// ImageHandler displays links that point at image files.
type ImageHandler struct{}

// ID implements ContentHandler.
func (ImageHandler) ID() string {
	return "image"
}

// Match accepts items whose link path ends in an image extension. Query
// strings and fragments are ignored.
func (ImageHandler) Match(item *ContentItem) bool {
	uri := item.URI()
	if uri == "" {
		return false
	}
	p := uri
	if u, err := url.Parse(uri); err == nil {
		p = u.Path
	}
	return imagePattern.MatchString(path.Base(p))
}

// Load implements ContentHandler. Images need nothing fetched up front.
func (ImageHandler) Load(*ContentItem) *async.Signal {
	return async.Fired()
}

// Render outputs an <img> sized by the item's declared dimensions.
func (ImageHandler) Render(item *ContentItem) *async.Promise[Output] {
	dims := item.Dimensions()
	return async.Resolved(Output{
		Content: imageTag(item.URI(), item.Title(), dims),
		Width:   dims.Width,
		Height:  dims.Height,
	})
}

func imageTag(src, alt string, d Dimensions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<img src="%s" alt="%s"`,
			templ.EscapeString(src), templ.EscapeString(alt))
		if err != nil {
			return err
		}
		if d.Width > 0 && d.Height > 0 {
			if _, err = fmt.Fprintf(w, ` width="%d" height="%d"`, d.Width, d.Height); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `/>`)
		return err
	})
}
