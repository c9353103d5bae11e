package term

import (
	"sync/atomic"
	"time"
)

const noMin = 1<<63 - 1

// stats counts rendering and input activity. Counters are atomic so another
// goroutine may snapshot them while the render loop runs.
type stats struct {
	renders        atomic.Uint64
	failedRenders  atomic.Uint64
	renderTotalNs  atomic.Int64
	renderMinNs    atomic.Int64
	renderMaxNs    atomic.Int64
	cellsChanged   atomic.Uint64
	cellsElided    atomic.Uint64
	bytesEmitted   atomic.Uint64
	inputs         atomic.Uint64
	resizes        atomic.Uint64
	paletteChanges atomic.Uint64
	since          atomic.Int64
}

func newStats() *stats {
	s := &stats{}
	s.reset()
	return s
}

func (s *stats) recordRender(d time.Duration, changed, total int) {
	ns := d.Nanoseconds()
	s.renders.Add(1)
	s.renderTotalNs.Add(ns)
	s.cellsChanged.Add(uint64(changed))
	s.cellsElided.Add(uint64(total - changed))
	for {
		old := s.renderMinNs.Load()
		if ns >= old || s.renderMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := s.renderMaxNs.Load()
		if ns <= old || s.renderMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

func (s *stats) reset() {
	s.renders.Store(0)
	s.failedRenders.Store(0)
	s.renderTotalNs.Store(0)
	s.renderMinNs.Store(noMin)
	s.renderMaxNs.Store(0)
	s.cellsChanged.Store(0)
	s.cellsElided.Store(0)
	s.bytesEmitted.Store(0)
	s.inputs.Store(0)
	s.resizes.Store(0)
	s.paletteChanges.Store(0)
	s.since.Store(time.Now().UnixNano())
}

func (s *stats) snapshot() Stats {
	out := Stats{
		Since:          time.Unix(0, s.since.Load()),
		Renders:        s.renders.Load(),
		FailedRenders:  s.failedRenders.Load(),
		RenderTotal:    time.Duration(s.renderTotalNs.Load()),
		RenderMax:      time.Duration(s.renderMaxNs.Load()),
		CellsChanged:   s.cellsChanged.Load(),
		CellsElided:    s.cellsElided.Load(),
		BytesEmitted:   s.bytesEmitted.Load(),
		Inputs:         s.inputs.Load(),
		Resizes:        s.resizes.Load(),
		PaletteChanges: s.paletteChanges.Load(),
	}
	if m := s.renderMinNs.Load(); m != noMin {
		out.RenderMin = time.Duration(m)
	}
	return out
}

// Stats is a point-in-time view of a context's counters.
type Stats struct {
	Since         time.Time // last reset
	Renders       uint64
	FailedRenders uint64
	RenderTotal   time.Duration
	RenderMin     time.Duration
	RenderMax     time.Duration

	// CellsChanged counts frame cells that differed from the previous
	// frame; CellsElided those that did not.
	CellsChanged uint64
	CellsElided  uint64

	// BytesEmitted counts RenderToBuffer output.
	BytesEmitted uint64

	Inputs         uint64
	Resizes        uint64
	PaletteChanges uint64
}

// RenderAvg returns the mean render time.
func (s Stats) RenderAvg() time.Duration {
	if s.Renders == 0 {
		return 0
	}
	return s.RenderTotal / time.Duration(s.Renders)
}

// FPS returns the render rate implied by the mean render time.
func (s Stats) FPS() float64 {
	avg := s.RenderAvg()
	if avg == 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}
