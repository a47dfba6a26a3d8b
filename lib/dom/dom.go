// Package dom is the page model the view engine binds to: an HTML document
// parsed with golang.org/x/net/html, queried with cascadia selectors, and a
// handful of element helpers (classes, attributes, inline styles, inner HTML).
//
// Node helpers do no locking. Components sharing a Document wrap reads in
// Read and mutations in Update.
package dom

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed page guarded by a read/write lock.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{root: root}, nil
}

// ParseString parses a full HTML document from s.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the <body> element, or the root when there is none.
func (d *Document) Body() *html.Node {
	if body := Query(d.root, "body"); body != nil {
		return body
	}
	return d.root
}

// Read runs fn while holding the read lock.
func (d *Document) Read(fn func()) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn()
}

// Update runs fn while holding the write lock.
func (d *Document) Update(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// HTML renders the whole document.
func (d *Document) HTML() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var buf bytes.Buffer
	_ = html.Render(&buf, d.root)
	return buf.String()
}

var selectors sync.Map // map[string]cascadia.Selector

func compile(sel string) cascadia.Selector {
	if cached, ok := selectors.Load(sel); ok {
		return cached.(cascadia.Selector)
	}
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil
	}
	selectors.Store(sel, s)
	return s
}

// QueryAll returns descendants of n matching sel in document order. Invalid
// selectors match nothing.
func QueryAll(n *html.Node, sel string) []*html.Node {
	s := compile(sel)
	if s == nil || n == nil {
		return nil
	}
	return s.MatchAll(n)
}

// Query returns the first descendant of n matching sel, or nil.
func Query(n *html.Node, sel string) *html.Node {
	s := compile(sel)
	if s == nil || n == nil {
		return nil
	}
	return s.MatchFirst(n)
}

// Matches reports whether n itself matches sel.
func Matches(n *html.Node, sel string) bool {
	s := compile(sel)
	if s == nil || n == nil {
		return false
	}
	return s.Match(n)
}

// Closest walks from n up through its ancestors and returns the first
// element matching sel.
func Closest(n *html.Node, sel string) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && Matches(n, sel) {
			return n
		}
	}
	return nil
}

// Contains reports whether child sits inside the subtree rooted at n.
func Contains(n, child *html.Node) bool {
	for ; child != nil; child = child.Parent {
		if child == n {
			return true
		}
	}
	return false
}

// Attr returns the value of attribute key.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets attribute key, replacing any previous value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// DataAttrs collects data-<prefix>-* attributes keyed by the remainder of
// the name with dashes turned into underscores.
func DataAttrs(n *html.Node, prefix string) map[string]string {
	out := make(map[string]string)
	if n == nil {
		return out
	}
	lead := "data-" + prefix + "-"
	for _, a := range n.Attr {
		if a.Namespace != "" || !strings.HasPrefix(a.Key, lead) {
			continue
		}
		key := strings.ReplaceAll(strings.TrimPrefix(a.Key, lead), "-", "_")
		if key != "" {
			out[key] = a.Val
		}
	}
	return out
}

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether the element carries cls.
func HasClass(n *html.Node, cls string) bool {
	for _, c := range Classes(n) {
		if c == cls {
			return true
		}
	}
	return false
}

// AddClass appends classes the element does not carry yet.
func AddClass(n *html.Node, cls ...string) {
	list := Classes(n)
	for _, c := range cls {
		if c == "" || contains(list, c) {
			continue
		}
		list = append(list, c)
	}
	SetAttr(n, "class", strings.Join(list, " "))
}

// RemoveClass drops the given classes.
func RemoveClass(n *html.Node, cls ...string) {
	list := Classes(n)
	kept := list[:0]
	for _, c := range list {
		if !contains(cls, c) {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// ToggleClass adds cls when on is true and removes it otherwise.
func ToggleClass(n *html.Node, cls string, on bool) {
	if on {
		AddClass(n, cls)
		return
	}
	RemoveClass(n, cls)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Style returns the inline style value for prop.
func Style(n *html.Node, prop string) string {
	for _, decl := range styleDecls(n) {
		if decl[0] == prop {
			return decl[1]
		}
	}
	return ""
}

// SetStyle sets an inline style property. An empty value removes it.
func SetStyle(n *html.Node, prop, val string) {
	decls := styleDecls(n)
	found := false
	kept := decls[:0]
	for _, decl := range decls {
		if decl[0] == prop {
			found = true
			if val == "" {
				continue
			}
			decl[1] = val
		}
		kept = append(kept, decl)
	}
	if !found && val != "" {
		kept = append(kept, [2]string{prop, val})
	}
	if len(kept) == 0 {
		RemoveAttr(n, "style")
		return
	}
	parts := make([]string, len(kept))
	for i, decl := range kept {
		parts[i] = decl[0] + ": " + decl[1]
	}
	SetAttr(n, "style", strings.Join(parts, "; "))
}

func styleDecls(n *html.Node) [][2]string {
	raw, _ := Attr(n, "style")
	var out [][2]string
	for _, part := range strings.Split(raw, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		if prop == "" {
			continue
		}
		out = append(out, [2]string{prop, strings.TrimSpace(val)})
	}
	return out
}

// Element creates a detached element. attrs are key/value pairs.
func Element(tag string, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

// Fragment parses markup as the children of a <div>.
func Fragment(markup string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(markup), Element("div"))
}

// Append attaches detached children to parent.
func Append(parent *html.Node, children ...*html.Node) {
	for _, c := range children {
		if c.Parent != nil {
			c.Parent.RemoveChild(c)
		}
		parent.AppendChild(c)
	}
}

// Empty removes every child of n.
func Empty(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// Remove detaches n from its parent.
func Remove(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Replace swaps old for repl in old's position.
func Replace(old, repl *html.Node) {
	if old.Parent == nil {
		return
	}
	if repl.Parent != nil {
		repl.Parent.RemoveChild(repl)
	}
	old.Parent.InsertBefore(repl, old)
	old.Parent.RemoveChild(old)
}

// SetInnerHTML replaces the children of n with the parsed markup.
func SetInnerHTML(n *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return err
	}
	Empty(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// InnerHTML renders the children of n.
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML renders n itself.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
