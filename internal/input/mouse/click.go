package mouse

import "time"

// clickTracker counts presses of one button at one spot in quick succession.
type clickTracker struct {
	maxTime     time.Duration
	maxDistance int

	lastPos    Position
	lastButton int
	lastTime   time.Time
	lastCount  int
}

func newClickTracker(maxTime time.Duration, maxDistance int) *clickTracker {
	return &clickTracker{
		maxTime:     maxTime,
		maxDistance: maxDistance,
	}
}

// record returns the click count (1, 2 or 3). A fourth click starts over.
// A zero timestamp is replaced with time.Now.
func (t *clickTracker) record(pos Position, button int, timestamp time.Time) int {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	if t.continues(pos, button, timestamp) {
		t.lastCount++
		if t.lastCount > 3 {
			t.lastCount = 1
		}
	} else {
		t.lastCount = 1
	}
	t.lastPos = pos
	t.lastButton = button
	t.lastTime = timestamp
	return t.lastCount
}

func (t *clickTracker) continues(pos Position, button int, timestamp time.Time) bool {
	if t.lastCount == 0 || button != t.lastButton {
		return false
	}
	// a clock step backwards starts a new sequence
	elapsed := timestamp.Sub(t.lastTime)
	if elapsed < 0 || elapsed > t.maxTime {
		return false
	}
	return pos.Distance(t.lastPos) <= t.maxDistance
}

func (t *clickTracker) reset() {
	t.lastCount = 0
	t.lastTime = time.Time{}
	t.lastPos = Position{}
}

// ClickType names a click count.
type ClickType uint8

const (
	ClickSingle ClickType = 1
	ClickDouble ClickType = 2
	ClickTriple ClickType = 3
)

// String returns a string representation of the click type.
func (c ClickType) String() string {
	switch c {
	case ClickSingle:
		return "single"
	case ClickDouble:
		return "double"
	case ClickTriple:
		return "triple"
	default:
		return "unknown"
	}
}
