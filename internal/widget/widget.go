// Package widget holds small interactive components drawn on planes. Each
// consumes input through Offerer; the application offers every event to its
// widgets before handling it itself.
package widget

import (
	"errors"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/input"
)

var (
	// ErrNoItems indicates a widget created without content.
	ErrNoItems = errors.New("widget has no items")

	// ErrNotFound indicates an unknown section or item name.
	ErrNotFound = errors.New("no such item")

	// ErrDestroyed indicates use of a destroyed widget.
	ErrDestroyed = errors.New("widget destroyed")
)

// Offerer is implemented by anything that consumes input.
type Offerer interface {
	// OfferInput returns true if in was consumed and must not be handled
	// further.
	OfferInput(in input.Input) bool
}

// OffererFunc adapts a function to Offerer.
type OffererFunc func(input.Input) bool

// OfferInput implements Offerer.
func (f OffererFunc) OfferInput(in input.Input) bool { return f(in) }

// Offer hands in to each offerer in order and stops at the first that
// consumes it. It reports whether any did.
func Offer(in input.Input, to ...Offerer) bool {
	for _, o := range to {
		if o != nil && o.OfferInput(in) {
			return true
		}
	}
	return false
}

// isPress reports whether in is a press, or an event type the terminal did
// not report.
func isPress(in input.Input) bool {
	return in.Type != input.EventRelease
}

// reversed swaps foreground and background, substituting black on white
// when both are default.
func reversed(cs channel.Channels) channel.Channels {
	if cs.FgDefault() && cs.BgDefault() {
		return channel.FromRGB(0x000000, 0xffffff)
	}
	return cs.Reverse()
}
