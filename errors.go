package lightbox

import "errors"

// Sentinel errors. The engine never panics or returns these across a
// component boundary as a hard failure: they are rejection reasons carried by
// promises, or loader/config errors.
var (
	ErrInactive          = errors.New("lightbox: viewer is not active")
	ErrNoItem            = errors.New("lightbox: no current item")
	ErrNoHandler         = errors.New("lightbox: no content handler for item")
	ErrNoTransition      = errors.New("lightbox: no transition handler")
	ErrTransitionCleared = errors.New("lightbox: transition cleared")
	ErrInvalidTheme      = errors.New("lightbox: theme produced an empty layout")
	ErrNoViewer          = errors.New("lightbox: item has no viewer")
	ErrUnknownParent     = errors.New("lightbox: unknown parent model")
	ErrDuplicate         = errors.New("lightbox: duplicate component id")
)

// IsTransitionFallback reports whether err means a transition did not run
// and the caller should apply the CSS-only state change instead.
func IsTransitionFallback(err error) bool {
	return errors.Is(err, ErrNoTransition) || errors.Is(err, ErrTransitionCleared)
}

// IsStructural reports whether err means the current operation was aborted
// because the viewer or item could not support it.
func IsStructural(err error) bool {
	return errors.Is(err, ErrNoHandler) || errors.Is(err, ErrNoItem) ||
		errors.Is(err, ErrInvalidTheme) || errors.Is(err, ErrNoViewer)
}
