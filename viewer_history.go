package lightbox

// historyPush records item as a new history entry. The entry URL carries a
// signed token for the state when the View has a codec.
func (v *Viewer) historyPush(item *ContentItem) {
	if !v.AttrBool("history", true) {
		return
	}
	h := v.view.history
	v.mu.Lock()
	v.history++
	state := &HistoryState{Viewer: v.ID(), Item: item.ID(), Count: v.history}
	v.mu.Unlock()

	url := ""
	if token := v.view.historyToken(state); token != "" {
		url = withFragment(h.URL(), v.view.prefix+"="+token)
	}
	h.Push(state, url)
}

// historyReset steps back over the entries the viewer pushed.
func (v *Viewer) historyReset() {
	v.mu.Lock()
	count := v.history
	v.history = 0
	v.mu.Unlock()
	if count > 0 {
		v.view.history.Go(-count)
	}
}

// HistoryCount returns the number of history entries pushed since the
// viewer opened.
func (v *Viewer) HistoryCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.history
}

// showFromHistory shows item after the user moved to one of the viewer's
// history entries.
func (v *Viewer) showFromHistory(item *ContentItem, count int) {
	v.mu.Lock()
	v.history = count
	v.mu.Unlock()
	locked := v.IsLocked()
	v.show(item, true)
	if locked {
		v.Trigger("item-change", item)
	}
}

// leaveHistory closes the viewer when the user moved to an entry it did not
// push.
func (v *Viewer) leaveHistory() {
	if !v.IsActive() {
		return
	}
	v.mu.Lock()
	had := v.history > 0
	v.history = 0
	v.mu.Unlock()
	if had {
		v.Close()
	}
}
