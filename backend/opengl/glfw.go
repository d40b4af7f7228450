package opengl

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	// One wheel detent scrolls this many pixels.
	lineScrollPixels = 20.0
	// PageUp/PageDown scroll this many pixels.
	pageScrollPixels = 100.0
)

// ScrollAdapter adapts GLFW input to a pixel scroll offset. Wheel detents
// and page keys are normalised to pixels; the offset is clamped to the
// scrollable range on each frame.
type ScrollAdapter struct {
	window *glfw.Window

	offset    float64
	maxOffset float64
	pending   float64

	width   int
	height  int
	resized bool
}

// NewScrollAdapter creates a scroll adapter bound to the window.
func NewScrollAdapter(window *glfw.Window) *ScrollAdapter {
	a := &ScrollAdapter{window: window}

	a.width, a.height = window.GetFramebufferSize()

	window.SetScrollCallback(a.scrollCallback)
	window.SetKeyCallback(a.keyCallback)
	window.SetFramebufferSizeCallback(a.framebufferSizeCallback)

	return a
}

// Update folds pending input into the offset and returns it. Call once per
// frame after glfw.PollEvents.
func (a *ScrollAdapter) Update() float64 {
	a.offset += a.pending
	a.pending = 0
	a.clampOffset()
	return a.offset
}

// Offset returns the current scroll offset in pixels.
func (a *ScrollAdapter) Offset() float64 {
	return a.offset
}

// SetOffset overrides the offset, clamped to the scrollable range. The
// feed calls back with a corrected offset after prepends; apply it here so
// the next frame scrolls from the corrected position.
func (a *ScrollAdapter) SetOffset(offset float64) {
	a.offset = offset
	a.clampOffset()
}

// SetMaxOffset updates the scrollable range, typically total content height
// minus the viewport height.
func (a *ScrollAdapter) SetMaxOffset(max float64) {
	if max < 0 {
		max = 0
	}
	a.maxOffset = max
	a.clampOffset()
}

// Size returns the current framebuffer size.
func (a *ScrollAdapter) Size() (width, height int) {
	return a.width, a.height
}

// TakeResized reports whether the framebuffer changed since the last call.
func (a *ScrollAdapter) TakeResized() bool {
	r := a.resized
	a.resized = false
	return r
}

func (a *ScrollAdapter) clampOffset() {
	if a.offset < 0 {
		a.offset = 0
	}
	if a.offset > a.maxOffset {
		a.offset = a.maxOffset
	}
}

func (a *ScrollAdapter) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	// Wheel up is positive yoff and moves toward the top of the feed.
	a.pending -= yoff * lineScrollPixels
}

func (a *ScrollAdapter) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}

	switch key {
	case glfw.KeyUp:
		a.pending -= lineScrollPixels
	case glfw.KeyDown:
		a.pending += lineScrollPixels
	case glfw.KeyPageUp:
		a.pending -= pageScrollPixels
	case glfw.KeyPageDown:
		a.pending += pageScrollPixels
	case glfw.KeyHome:
		a.offset = 0
		a.pending = 0
	case glfw.KeyEnd:
		a.offset = a.maxOffset
		a.pending = 0
	}
}

func (a *ScrollAdapter) framebufferSizeCallback(w *glfw.Window, width, height int) {
	a.width = width
	a.height = height
	a.resized = true
}
