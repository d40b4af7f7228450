package feedview

// Item describes one entry in the feed's backing sequence. The engine only
// tracks identity and height metadata; item content is owned by the caller.
type Item struct {
	ID              string  // Unique, stable across reloads
	EstimatedHeight float64 // Height guess used until a measurement arrives; 0 = use the feed default
}

// Viewport is the scrollable region geometry for one tick.
type Viewport struct {
	ScrollOffset float64 // Content pixels scrolled past the top edge
	Height       float64 // Visible height in pixels
}

// WindowRange is the mount contract handed to the rendering layer each tick:
// render items [Start, End), with spacer blocks of the given heights standing
// in for everything outside the range so the total scroll extent is preserved.
type WindowRange struct {
	Start          int
	End            int
	LeadingSpacer  float64
	TrailingSpacer float64
}

// Empty reports whether the range mounts no items.
func (w WindowRange) Empty() bool {
	return w.Start >= w.End
}

// Count returns the number of mounted items.
func (w WindowRange) Count() int {
	if w.Empty() {
		return 0
	}
	return w.End - w.Start
}

// ScrollDirection is the debounced direction of scroll movement.
// It is derived per tick and never persisted.
type ScrollDirection int

const (
	DirectionIdle ScrollDirection = iota
	DirectionUp
	DirectionDown
)

// String returns the direction name for logging.
func (d ScrollDirection) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "idle"
	}
}

// Edge identifies one boundary of the loaded item range.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
	edgeCount
)

// String returns the edge name for logging.
func (e Edge) String() string {
	if e == EdgeTop {
		return "top"
	}
	return "bottom"
}

// LoadState is the per-edge load lifecycle. At most one in-flight load may
// exist per edge; once exhausted, no further requests are issued for that
// edge until the feed (or the edge) is explicitly reset.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadInFlight
	LoadExhausted
)

// String returns the state name for logging.
func (s LoadState) String() string {
	switch s {
	case LoadInFlight:
		return "loading"
	case LoadExhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// AnchorSnapshot records the topmost visible item just before a sequence
// mutation that shifts indices beneath the window. It is consumed immediately
// after the mutation to compute the corrective scroll offset, then discarded.
type AnchorSnapshot struct {
	ItemID string  // Anchor item id
	Offset float64 // Scroll offset within the anchor item (>= 0)
	valid  bool
}

// Valid reports whether the snapshot captured an anchor.
func (s AnchorSnapshot) Valid() bool {
	return s.valid
}

// clamp clamps v to the range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampi clamps v to the range [lo, hi].
func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
