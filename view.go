package lightbox

import (
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/pthm/lightbox/lib/dom"
	"github.com/pthm/lightbox/lib/encoding"
	"github.com/pthm/lightbox/lib/logger"
	"github.com/pthm/lightbox/lib/metrics"
)

// View is the controller for one page. It owns the registries of viewers,
// groups, models and items, the tag and content handlers, and the modelled
// browser services (history, viewport, input). Every component holds a
// reference to its View; there is no package-level state.
type View struct {
	prefix  string
	options map[string]any
	doc     *dom.Document
	log     *logger.Logger
	metrics *metrics.Metrics
	codec   *encoding.Codec
	history *History

	viewers *registry[*Viewer]
	groups  *registry[*Group]
	models  *registry[*Model]
	items   *registry[*ContentItem]
	itemMu  sync.Mutex

	mu       sync.RWMutex
	handlers []ContentHandler
	tags     map[string]TagHandler
	viewport Dimensions
	started  bool
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithLogger sets the logger. The default discards.
func WithLogger(l *logger.Logger) ViewOption {
	return func(v *View) { v.log = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) ViewOption {
	return func(v *View) { v.metrics = m }
}

// WithCodec sets the codec for history tokens, replacing the one built
// from Options.Key.
func WithCodec(c *encoding.Codec) ViewOption {
	return func(v *View) { v.codec = c }
}

// WithHistory sets the session history.
func WithHistory(h *History) ViewOption {
	return func(v *View) { v.history = h }
}

// New creates a controller for doc.
func New(doc *dom.Document, opts Options, vopts ...ViewOption) (*View, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	v := &View{
		prefix:   opts.Prefix,
		options:  opts.Values,
		doc:      doc,
		log:      logger.Nop(),
		tags:     make(map[string]TagHandler),
		viewport: opts.Viewport,
	}
	if opts.Key != "" {
		var copts []encoding.Option
		if opts.Sealed {
			copts = append(copts, encoding.Sealed())
		}
		codec, err := encoding.NewCodec([]byte(opts.Key), copts...)
		if err != nil {
			return nil, err
		}
		v.codec = codec
	}
	for _, opt := range vopts {
		opt(v)
	}
	if v.history == nil {
		v.history = NewHistory("")
	}
	v.viewers = newRegistry(func(id string) *Viewer { return newViewer(v, id) })
	v.groups = newRegistry(func(id string) *Group { return newGroup(v, id) })
	v.models = newRegistry[*Model](nil)
	v.items = newRegistry[*ContentItem](nil)
	return v, nil
}

// Init registers the built-in handlers, adds a default model when none is
// registered, starts listening to history and reopens an item named by the
// current URL.
func (v *View) Init() {
	v.mu.Lock()
	if v.started {
		v.mu.Unlock()
		return
	}
	v.started = true
	if _, ok := v.tags["item"]; !ok {
		v.tags["item"] = itemTags{}
	}
	if _, ok := v.tags["ui"]; !ok {
		v.tags["ui"] = TagComponent(uiTags)
	}
	v.handlers = append(v.handlers, ImageHandler{})
	v.mu.Unlock()

	if v.models.Len() == 0 {
		_ = v.AddModel(DefaultModel())
	}
	v.history.OnPop(v.popState)
	v.restore()
	v.log.Debug("view initialised", "prefix", v.prefix, "models", v.models.Len())
}

// Teardown closes every active viewer and waits for the closes to finish.
func (v *View) Teardown() {
	for _, vw := range v.viewers.List() {
		if vw.IsActive() {
			<-vw.Close().Done()
		}
		vw.SlideshowStop()
	}
}

// Prefix returns the attribute and class prefix.
func (v *View) Prefix() string {
	return v.prefix
}

// Document returns the page.
func (v *View) Document() *dom.Document {
	return v.doc
}

// Logger returns the controller's logger.
func (v *View) Logger() *logger.Logger {
	return v.log
}

// History returns the session history.
func (v *View) History() *History {
	return v.history
}

// GetOptions returns the configured values for keys. Keys without a value
// are omitted.
func (v *View) GetOptions(keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if val, ok := v.options[k]; ok {
			out[k] = val
		}
	}
	return out
}

// SetViewport records a new viewport size.
func (v *View) SetViewport(w, h int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewport = Dimensions{Width: w, Height: h}
}

// Viewport returns the current viewport size.
func (v *View) Viewport() Dimensions {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.viewport
}

// Direction returns the page's text direction, "ltr" or "rtl".
func (v *View) Direction() string {
	var dir string
	v.doc.Read(func() {
		if el := dom.Query(v.doc.Root(), "html"); el != nil {
			dir, _ = dom.Attr(el, "dir")
		}
	})
	if strings.EqualFold(strings.TrimSpace(dir), "rtl") {
		return "rtl"
	}
	return "ltr"
}

// RegisterTag registers h for tags named name, replacing any handler
// already registered.
func (v *View) RegisterTag(name string, h TagHandler) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tags[name] = h
}

// TagHandler returns the handler for name. Unknown names return a handler
// that renders nothing, and false.
func (v *View) TagHandler(name string) (TagHandler, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if h, ok := v.tags[name]; ok {
		return h, true
	}
	return nullHandler, false
}

// RegisterContentHandler adds h. Handlers are matched in registration order.
func (v *View) RegisterContentHandler(h ContentHandler) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.handlers = append(v.handlers, h)
}

// ContentHandlers returns the handlers in match order.
func (v *View) ContentHandlers() []ContentHandler {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]ContentHandler, len(v.handlers))
	copy(out, v.handlers)
	return out
}

// AddModel registers a theme model.
func (v *View) AddModel(m *Model) error {
	return v.models.Add(m.ID, m)
}

// Model returns the model registered as id, or the first registered model
// when id is unknown.
func (v *View) Model(id string) *Model {
	if m, ok := v.models.Get(id); ok {
		return m
	}
	m, _ := v.models.First()
	return m
}

// Viewer returns the viewer named id, creating it on first use.
func (v *View) Viewer(id string) *Viewer {
	vw, _ := v.viewers.Ensure(id)
	return vw
}

// DefaultViewer returns the viewer used by items that name none.
func (v *View) DefaultViewer() *Viewer {
	return v.Viewer("default")
}

// Viewers returns every viewer created so far.
func (v *View) Viewers() []*Viewer {
	return v.viewers.List()
}

// Group returns the group named id, creating it on first use.
func (v *View) Group(id string) *Group {
	g, _ := v.groups.Ensure(id)
	return g
}

func (v *View) itemAttr() string {
	return "data-" + v.prefix + "-item"
}

// ItemFor returns the item for the activation link n, creating it on first
// reference. The item id is stored on the link so later lookups find it;
// an id already present on the link is kept.
func (v *View) ItemFor(n *html.Node) *ContentItem {
	if n == nil {
		return nil
	}
	v.itemMu.Lock()
	defer v.itemMu.Unlock()

	var id string
	v.doc.Read(func() {
		id, _ = dom.Attr(n, v.itemAttr())
	})
	if id != "" {
		if item, ok := v.items.Get(id); ok {
			return item
		}
	}

	item := newContentItem(v)
	item.SetID(id)
	item.SetElement(n)
	id = item.ID()
	v.doc.Update(func() {
		dom.SetAttr(n, v.itemAttr(), id)
	})
	if err := v.items.Add(id, item); err != nil {
		v.log.Warn("item registry rejected item", "item", id, "error", err.Error())
	}
	return item
}

// Item returns a previously created item.
func (v *View) Item(id string) (*ContentItem, bool) {
	return v.items.Get(id)
}

// Links returns the page's activation links in document order.
func (v *View) Links() []*html.Node {
	var links []*html.Node
	v.doc.Read(func() {
		links = dom.QueryAll(v.doc.Root(), `a[data-`+v.prefix+`-active="1"]`)
	})
	return links
}

// Click handles a click on n. A click on a control inside a viewer runs the
// control's action; a click inside an activation link shows its item. It
// reports whether the click was handled.
func (v *View) Click(n *html.Node) bool {
	if n == nil {
		return false
	}
	var (
		action string
		owner  *Viewer
		link   *html.Node
	)
	uiAttr := "data-" + v.prefix + "-ui"
	viewers := v.viewers.List()
	v.doc.Read(func() {
		if ctl := dom.Closest(n, "["+uiAttr+"]"); ctl != nil {
			for _, vw := range viewers {
				if root := vw.Element(); root != nil && dom.Contains(root, ctl) {
					action, _ = dom.Attr(ctl, uiAttr)
					owner = vw
					return
				}
			}
		}
		link = dom.Closest(n, `a[data-`+v.prefix+`-active="1"]`)
	})

	if owner != nil {
		return owner.uiAction(action)
	}
	if link == nil {
		return false
	}
	return v.ItemFor(link).Show()
}

// KeyDown dispatches a key press to every viewer listening for keys. Keys
// use DOM key names: Escape, ArrowLeft, ArrowRight.
func (v *View) KeyDown(key string) bool {
	handled := false
	for _, vw := range v.viewers.List() {
		if vw.keyDown(key) {
			handled = true
		}
	}
	return handled
}

func (v *View) historyToken(state *HistoryState) string {
	if v.codec == nil {
		return ""
	}
	token, err := v.codec.Encode(state)
	if err != nil {
		v.log.Warn("history state not encoded", "error", err.Error())
		return ""
	}
	return token
}

// popState shows the item named by state, or closes viewers whose history
// entries were left.
func (v *View) popState(state *HistoryState) {
	if state != nil && state.Item != "" {
		if item, ok := v.items.Get(state.Item); ok {
			vw := v.Viewer(state.Viewer)
			vw.showFromHistory(item, state.Count)
			return
		}
	}
	for _, vw := range v.viewers.List() {
		vw.leaveHistory()
	}
}

// restore reopens the item named by a history token in the current URL.
func (v *View) restore() {
	if v.codec == nil {
		return
	}
	token := fragmentValue(v.history.URL(), v.prefix)
	if token == "" {
		return
	}
	var state HistoryState
	if err := v.codec.Decode(token, &state); err != nil {
		v.log.Warn("history token rejected", "error", err.Error())
		return
	}
	var link *html.Node
	v.doc.Read(func() {
		link = dom.Query(v.doc.Root(), `a[data-`+v.prefix+`-active="1"][`+v.itemAttr()+`="`+strings.ReplaceAll(state.Item, `"`, `\"`)+`"]`)
	})
	if link == nil {
		v.log.Debug("deep linked item not on page", "item", state.Item)
		return
	}
	item := v.ItemFor(link)
	if state.Viewer != "" {
		item.SetViewer(v.Viewer(state.Viewer))
	}
	item.Show()
}
