package opengl

import "testing"

func TestScrollbarThumb(t *testing.T) {
	// Content shorter than the viewport: thumb fills the track.
	y, h := ScrollbarThumb(600, 400, 0)
	if y != 0 || h != 600 {
		t.Errorf("short content thumb = (%v, %v), want (0, 600)", y, h)
	}

	// 600px viewport over 2400px of content: quarter-height thumb.
	y, h = ScrollbarThumb(600, 2400, 0)
	if y != 0 || h != 150 {
		t.Errorf("top thumb = (%v, %v), want (0, 150)", y, h)
	}

	// Fully scrolled: thumb rests at the bottom of the track.
	y, h = ScrollbarThumb(600, 2400, 1800)
	if h != 150 || y != 450 {
		t.Errorf("bottom thumb = (%v, %v), want (450, 150)", y, h)
	}

	// Very tall content still yields a grabbable thumb.
	_, h = ScrollbarThumb(600, 1e6, 0)
	if h < 24 {
		t.Errorf("thumb height %v below minimum", h)
	}
}
