package lightbox

// ItemNext shows the next item in the current item's group. Without a next
// item the viewer closes.
func (v *Viewer) ItemNext() bool {
	if g := v.currentGroup(); g != nil {
		return g.ShowNext()
	}
	return false
}

// ItemPrev shows the previous item in the current item's group.
func (v *Viewer) ItemPrev() bool {
	if g := v.currentGroup(); g != nil {
		return g.ShowPrev()
	}
	return false
}

func (v *Viewer) currentGroup() *Group {
	item := v.Item()
	if item == nil {
		return nil
	}
	return item.Group()
}

// keyDown handles a key while the viewer listens for keys. Arrow keys are
// mirrored on right-to-left pages.
func (v *Viewer) keyDown(key string) bool {
	v.mu.Lock()
	listening := v.keys
	v.mu.Unlock()
	if !listening || !v.IsActive() {
		return false
	}
	rtl := v.view.Direction() == "rtl"
	switch key {
	case "Escape", "Esc":
		v.Close()
		return true
	case "ArrowRight", "Right":
		if rtl {
			return v.ItemPrev()
		}
		return v.ItemNext()
	case "ArrowLeft", "Left":
		if rtl {
			return v.ItemNext()
		}
		return v.ItemPrev()
	}
	return false
}

// uiAction runs a viewer control clicked in the template. Controls stay
// inert until the viewer has completed its first render.
func (v *Viewer) uiAction(action string) bool {
	if !v.IsActive() || !v.StatusBool("controls") {
		return false
	}
	switch action {
	case "close":
		v.Close()
		return true
	case "nav_next":
		return v.ItemNext()
	case "nav_prev":
		return v.ItemPrev()
	case "slideshow_control":
		v.SlideshowToggle()
		return true
	}
	v.view.log.Debug("unknown viewer control", "viewer", v.ID(), "action", action)
	return false
}
