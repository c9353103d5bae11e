package cell

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/stratum/internal/channel"
)

// Cell store errors.
var (
	// ErrEncoding indicates empty, malformed, or control-character input.
	ErrEncoding = errors.New("invalid grapheme encoding")

	// ErrPoolExhausted indicates the pool has no room for another cluster.
	ErrPoolExhausted = errors.New("grapheme pool exhausted")

	// ErrInvalidCell indicates a cell references a pool entry the pool does not hold.
	ErrInvalidCell = errors.New("cell not valid for pool")
)

const (
	// DefaultPoolLimit bounds the bytes a pool holds.
	DefaultPoolLimit = 1 << 24

	maxPoolEntries = indexMask
)

// Pool stores grapheme clusters longer than four bytes for one plane.
// It is not safe for concurrent use.
type Pool struct {
	entries []string
	live    []bool
	free    []uint32
	used    int
	limit   int
}

// NewPool creates a pool holding at most limit bytes of cluster text.
// A limit of zero or less selects DefaultPoolLimit.
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = DefaultPoolLimit
	}
	return &Pool{limit: limit}
}

// Used returns the bytes currently held.
func (p *Pool) Used() int {
	return p.used
}

// Len returns the number of clusters currently held.
func (p *Pool) Len() int {
	return len(p.entries) - len(p.free)
}

func (p *Pool) store(s string) (uint32, error) {
	if p.used+len(s) > p.limit {
		return 0, ErrPoolExhausted
	}
	var idx uint32
	if n := len(p.free); n > 0 {
		idx = p.free[n-1]
		p.free = p.free[:n-1]
		p.entries[idx] = s
		p.live[idx] = true
	} else {
		if len(p.entries) >= maxPoolEntries {
			return 0, ErrPoolExhausted
		}
		idx = uint32(len(p.entries))
		p.entries = append(p.entries, s)
		p.live = append(p.live, true)
	}
	p.used += len(s)
	return idx, nil
}

func (p *Pool) holds(idx uint32) bool {
	return int(idx) < len(p.entries) && p.live[idx]
}

func (p *Pool) drop(idx uint32) {
	if !p.holds(idx) {
		return
	}
	p.used -= len(p.entries[idx])
	p.entries[idx] = ""
	p.live[idx] = false
	p.free = append(p.free, idx)
}

// Cluster splits the first extended grapheme cluster off text and returns it
// with its display width, clamped to 1 or 2.
func Cluster(text string) (string, int, error) {
	if text == "" {
		return "", 0, ErrEncoding
	}
	cluster, _, width, _ := uniseg.FirstGraphemeClusterInString(text, -1)
	if !utf8.ValidString(cluster) {
		return "", 0, ErrEncoding
	}
	r, size := utf8.DecodeRuneInString(cluster)
	if unicode.IsControl(r) {
		return "", 0, ErrEncoding
	}
	if size == len(cluster) {
		width = runewidth.RuneWidth(r)
	}
	switch {
	case width < 1:
		width = 1
	case width > 2:
		width = 2
	}
	return cluster, width, nil
}

// Load stores the first grapheme cluster of text in c and returns the bytes
// consumed. Style and channels are untouched. On failure c is unchanged.
// A previous pool entry held by c is released once the new one is stored.
func (p *Pool) Load(c *Cell, text string) (int, error) {
	cluster, width, err := Cluster(text)
	if err != nil {
		return 0, err
	}

	var gc uint32
	if len(cluster) <= 4 {
		gc = packInline(cluster)
	} else {
		idx, err := p.store(cluster)
		if err != nil {
			return 0, err
		}
		gc = pooledMarker | idx
	}

	if c.IsPooled() {
		p.drop(c.poolIndex())
	}
	c.gcluster = gc
	c.width = uint8(width)
	c.flags &^= flagWideRight
	return len(cluster), nil
}

// Prime loads text and overwrites style and channels.
func (p *Pool) Prime(c *Cell, text string, style channel.Style, cs channel.Channels) (int, error) {
	n, err := p.Load(c, text)
	if err != nil {
		return 0, err
	}
	c.style = style & channel.StyleMask
	c.channels = cs
	return n, nil
}

// Release frees any pool entry held by c and zeroes it. Releasing an already
// released cell does nothing.
func (p *Pool) Release(c *Cell) {
	if c.IsPooled() {
		p.drop(c.poolIndex())
	}
	*c = Cell{}
}

// Text returns the cluster held by c, or "" for an empty or continuation cell.
func (p *Pool) Text(c Cell) string {
	if c.IsPooled() {
		idx := c.poolIndex()
		if !p.holds(idx) {
			return ""
		}
		return p.entries[idx]
	}
	return c.inline()
}

// Extract returns the cluster text with the style and channels of c.
// The text does not reference the pool and stays valid after c changes.
func (p *Pool) Extract(c Cell) (string, channel.Style, channel.Channels) {
	return p.Text(c), c.style, c.channels
}

// Duplicate copies c, whose cluster lives in src, into a cell valid for p.
func (p *Pool) Duplicate(src *Pool, c Cell) (Cell, error) {
	if !c.IsPooled() {
		return c, nil
	}
	idx := c.poolIndex()
	if src == nil || !src.holds(idx) {
		return Cell{}, ErrInvalidCell
	}
	nidx, err := p.store(src.entries[idx])
	if err != nil {
		return Cell{}, err
	}
	out := c
	out.gcluster = pooledMarker | nidx
	return out, nil
}

// Equal reports whether two cells hold the same text, style, and channels,
// wherever their clusters are stored.
func Equal(p1 *Pool, c1 Cell, p2 *Pool, c2 Cell) bool {
	if c1.style != c2.style || c1.channels != c2.channels {
		return false
	}
	if c1.IsWideRight() != c2.IsWideRight() {
		return false
	}
	if !c1.IsPooled() && !c2.IsPooled() {
		return c1.gcluster == c2.gcluster
	}
	return p1.Text(c1) == p2.Text(c2)
}

// StrWidth returns the columns s occupies.
func StrWidth(s string) int {
	return runewidth.StringWidth(s)
}
