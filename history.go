package lightbox

import (
	"strings"
	"sync"
)

// HistoryState is the state a viewer stores with each history entry.
type HistoryState struct {
	Viewer string `msgpack:"v"`
	Item   string `msgpack:"i"`
	Count  int    `msgpack:"c"`
}

type historyEntry struct {
	state *HistoryState
	url   string
}

// History is an in-memory session history. Go and Back dispatch pop
// listeners synchronously with the state of the entry moved to.
type History struct {
	mu      sync.Mutex
	entries []historyEntry
	pos     int
	pops    []func(*HistoryState)
}

// NewHistory returns a history positioned on a single entry for url.
func NewHistory(url string) *History {
	return &History{entries: []historyEntry{{url: url}}}
}

// Push adds an entry after the current one, discarding any forward entries.
func (h *History) Push(state *HistoryState, url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if url == "" {
		url = h.entries[h.pos].url
	}
	h.entries = append(h.entries[:h.pos+1], historyEntry{state: state, url: url})
	h.pos++
}

// Go moves delta entries and dispatches pop listeners. Moves past either
// end are ignored.
func (h *History) Go(delta int) {
	h.mu.Lock()
	target := h.pos + delta
	if delta == 0 || target < 0 || target >= len(h.entries) {
		h.mu.Unlock()
		return
	}
	h.pos = target
	state := h.entries[target].state
	pops := make([]func(*HistoryState), len(h.pops))
	copy(pops, h.pops)
	h.mu.Unlock()

	for _, fn := range pops {
		fn(state)
	}
}

// Back moves one entry back.
func (h *History) Back() {
	h.Go(-1)
}

// Forward moves one entry forward.
func (h *History) Forward() {
	h.Go(1)
}

// State returns the state of the current entry.
func (h *History) State() *HistoryState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.pos].state
}

// URL returns the URL of the current entry.
func (h *History) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.pos].url
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// OnPop registers fn to run whenever Go moves to another entry.
func (h *History) OnPop(fn func(*HistoryState)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pops = append(h.pops, fn)
}

// withFragment replaces the fragment of url with frag.
func withFragment(url, frag string) string {
	if i := strings.IndexByte(url, '#'); i >= 0 {
		url = url[:i]
	}
	return url + "#" + frag
}

// fragmentValue returns the value of key in a key=value URL fragment.
func fragmentValue(url, key string) string {
	_, frag, ok := strings.Cut(url, "#")
	if !ok {
		return ""
	}
	for _, part := range strings.Split(frag, "&") {
		if k, v, ok := strings.Cut(part, "="); ok && k == key {
			return v
		}
	}
	return ""
}
