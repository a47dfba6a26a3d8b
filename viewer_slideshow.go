package lightbox

import "time"

// SlideshowActive reports whether the slideshow runs: it must be enabled,
// and either started explicitly or set to autostart before the first item
// has finished rendering.
func (v *Viewer) SlideshowActive() bool {
	if !v.AttrBool("slideshow_enabled", true) {
		return false
	}
	if v.StatusBool("slideshow_active") {
		return true
	}
	return !v.StatusBool("initialized") && v.AttrBool("slideshow_autostart", false)
}

// SlideshowDuration is the time each item is shown.
func (v *Viewer) SlideshowDuration() time.Duration {
	secs := v.AttrFloat("slideshow_duration", 6)
	if secs <= 0 {
		secs = 6
	}
	return time.Duration(secs * float64(time.Second))
}

// SlideshowStart starts the slideshow.
func (v *Viewer) SlideshowStart() {
	if !v.AttrBool("slideshow_enabled", true) {
		return
	}
	v.SetStatus("slideshow_active", true)
	v.SetStatus("slideshow_paused", false)
	v.slideshowSchedule()
	v.Trigger("slideshow-start", nil)
}

// SlideshowStop stops the slideshow.
func (v *Viewer) SlideshowStop() {
	wasActive := v.StatusBool("slideshow_active")
	v.SetStatus("slideshow_active", false)
	v.SetStatus("slideshow_paused", false)
	v.slideshowClear()
	if wasActive {
		v.Trigger("slideshow-stop", nil)
	}
}

// SlideshowPause halts the timer without leaving slideshow mode.
func (v *Viewer) SlideshowPause() {
	if !v.SlideshowActive() {
		return
	}
	v.SetStatus("slideshow_paused", true)
	v.slideshowClear()
	v.Trigger("slideshow-pause", nil)
}

// SlideshowResume restarts the timer after a pause.
func (v *Viewer) SlideshowResume() {
	if !v.SlideshowActive() {
		return
	}
	v.SetStatus("slideshow_paused", false)
	v.slideshowSchedule()
	v.Trigger("slideshow-resume", nil)
}

// SlideshowToggle starts the slideshow, or pauses and resumes it once
// started.
func (v *Viewer) SlideshowToggle() {
	switch {
	case !v.SlideshowActive():
		v.SlideshowStart()
	case v.StatusBool("slideshow_paused"):
		v.SlideshowResume()
	default:
		v.SlideshowPause()
	}
}

// slideshowSchedule arms the timer for the next advance, clearing any timer
// already armed.
func (v *Viewer) slideshowSchedule() {
	if v.StatusBool("slideshow_paused") {
		return
	}
	d := v.SlideshowDuration()
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(d, v.slideshowTick)
}

func (v *Viewer) slideshowClear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

// slideshowTick advances to the next item. The render that follows re-arms
// the timer.
func (v *Viewer) slideshowTick() {
	v.mu.Lock()
	v.timer = nil
	v.mu.Unlock()
	if !v.IsActive() || !v.SlideshowActive() || v.StatusBool("slideshow_paused") {
		return
	}
	if !v.ItemNext() {
		v.SlideshowStop()
	}
}
