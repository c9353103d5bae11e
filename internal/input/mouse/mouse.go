package mouse

import (
	"fmt"
	"time"

	"github.com/dshills/stratum/internal/input"
)

// Position is a cell on the screen.
type Position struct {
	Y, X int
}

// Distance returns the Manhattan distance between p and o.
func (p Position) Distance(o Position) int {
	return abs(p.Y-o.Y) + abs(p.X-o.X)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Config holds the gesture thresholds.
type Config struct {
	// DoubleClickTime is the longest gap between clicks of one sequence.
	DoubleClickTime time.Duration

	// ClickDistance is how far, in cells, a repeat click may stray.
	ClickDistance int

	// ScrollLines is the lines per wheel notch; Shift scrolls one.
	ScrollLines int
}

// DefaultConfig returns the usual desktop thresholds.
func DefaultConfig() Config {
	return Config{
		DoubleClickTime: 400 * time.Millisecond,
		ClickDistance:   1,
		ScrollLines:     3,
	}
}

// GestureKind classifies a Gesture.
type GestureKind uint8

const (
	GestureNone GestureKind = iota
	// GestureClick is a button press; Count says which of a sequence.
	GestureClick
	// GestureDrag is motion with a button held.
	GestureDrag
	// GestureDrop is the release that ends a drag.
	GestureDrop
	// GestureRelease is a release without motion.
	GestureRelease
	// GestureScroll is a wheel notch; Delta holds the lines.
	GestureScroll
	// GestureHover is motion with no button held.
	GestureHover
)

var gestureNames = [...]string{"none", "click", "drag", "drop", "release", "scroll", "hover"}

func (k GestureKind) String() string {
	if int(k) < len(gestureNames) {
		return gestureNames[k]
	}
	return fmt.Sprintf("GestureKind(%d)", uint8(k))
}

// Gesture is the interpretation of one mouse report.
type Gesture struct {
	Kind   GestureKind
	Button input.Button
	Mods   input.Modifier
	Pos    Position

	// Count is 1, 2 or 3 for clicks.
	Count ClickType

	// Start is where a drag or drop began.
	Start Position

	// Delta is the step of a drag, or the lines of a scroll: positive Y
	// scrolls down, positive X scrolls right.
	Delta Position
}

// Tracker interprets a stream of mouse reports.
type Tracker struct {
	cfg   Config
	click *clickTracker
	drag  dragTracker
}

// NewTracker returns a tracker. Non-positive thresholds take the defaults.
func NewTracker(cfg Config) *Tracker {
	def := DefaultConfig()
	if cfg.DoubleClickTime <= 0 {
		cfg.DoubleClickTime = def.DoubleClickTime
	}
	if cfg.ClickDistance < 0 {
		cfg.ClickDistance = def.ClickDistance
	}
	if cfg.ScrollLines <= 0 {
		cfg.ScrollLines = def.ScrollLines
	}
	return &Tracker{cfg: cfg, click: newClickTracker(cfg.DoubleClickTime, cfg.ClickDistance)}
}

// Feed interprets in, received at now. It returns false for anything that is
// not a mouse report.
func (t *Tracker) Feed(in input.Input, now time.Time) (Gesture, bool) {
	b, ok := in.Code.Button()
	if !ok {
		return Gesture{}, false
	}
	g := Gesture{Button: b, Mods: in.Mods, Pos: Position{Y: in.Y, X: in.X}}

	switch {
	case b.IsWheel():
		if in.Type == input.EventRelease {
			return Gesture{}, false
		}
		g.Kind = GestureScroll
		n := t.cfg.ScrollLines
		if in.Mods.Has(input.ModShift) {
			n = 1
		}
		switch b {
		case input.ButtonWheelUp:
			g.Delta.Y = -n
		case input.ButtonWheelDown:
			g.Delta.Y = n
		case input.Button6:
			g.Delta.X = -n
		default:
			g.Delta.X = n
		}
	case in.Type == input.EventRelease:
		g.Start = t.drag.state().Start
		if t.drag.release(g.Pos) {
			g.Kind = GestureDrop
		} else {
			g.Kind = GestureRelease
		}
	case in.Code.Motion():
		delta, held := t.drag.move(g.Pos)
		if !held {
			g.Kind = GestureHover
			break
		}
		if delta == (Position{}) {
			return Gesture{}, false
		}
		g.Kind = GestureDrag
		g.Button = t.drag.button
		g.Start = t.drag.start
		g.Delta = delta
	default:
		t.drag.press(g.Pos, b)
		g.Kind = GestureClick
		g.Count = ClickType(t.click.record(g.Pos, int(b), now))
	}
	return g, true
}

// Drag returns the state of the held button, if any.
func (t *Tracker) Drag() DragState { return t.drag.state() }

// Reset forgets click sequences and any held button.
func (t *Tracker) Reset() {
	t.click.reset()
	t.drag = dragTracker{}
}
