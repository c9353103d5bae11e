package plane

import (
	"strings"
	"unicode"

	"github.com/dshills/stratum/internal/cell"
)

// put writes one cluster at (y, x), clearing any wide glyph it overlaps.
func (r *record) put(y, x int, cluster string, width int) error {
	r.clear(y, x)
	if width == 2 {
		r.clear(y, x+1)
	}
	c := r.at(y, x)
	if _, err := r.pool.Prime(c, cluster, r.style, r.channels); err != nil {
		return err
	}
	if width == 2 {
		*r.at(y, x+1) = c.WideRight()
	}
	return nil
}

func (r *record) startAt(y, x int) (int, int, error) {
	if y == -1 {
		y = r.curY
	}
	if x == -1 {
		x = r.curX
	}
	if y < 0 || y >= r.rows || x < 0 || x > r.cols {
		return 0, 0, ErrOutOfBounds
	}
	if x == r.cols && !r.scroll {
		return 0, 0, ErrOutOfBounds
	}
	return y, x, nil
}

// newline moves to the start of the next row, scrolling when allowed.
// It reports false when output has to stop.
func (r *record) newline(y *int, x *int) bool {
	if *y+1 < r.rows {
		*y++
		*x = 0
		return true
	}
	if !r.scroll {
		return false
	}
	r.scrollUp()
	*x = 0
	return true
}

// PutStr writes text starting at (y, x); -1 on either axis uses the cursor.
// Without scrolling, text past the row's end is clipped and a newline moves
// to the next row if there is one. With scrolling, text wraps and the plane
// scrolls up at the bottom. It returns the clusters written and leaves the
// cursor after the last one.
func (p Plane) PutStr(y, x int, text string) (int, error) {
	r, err := p.recOp("putstr")
	if err != nil {
		return 0, err
	}
	y, x, err = r.startAt(y, x)
	if err != nil {
		return 0, newError("putstr", r, err)
	}

	written := 0
	for len(text) > 0 {
		if text[0] == '\n' {
			text = text[1:]
			if !r.newline(&y, &x) {
				break
			}
			continue
		}
		cluster, width, err := cell.Cluster(text)
		if err != nil {
			r.curY, r.curX = y, x
			return written, newError("putstr", r, err)
		}
		if x+width > r.cols {
			if !r.scroll {
				// clip the rest of this line
				nl := strings.IndexByte(text, '\n')
				if nl < 0 {
					break
				}
				text = text[nl:]
				continue
			}
			if !r.newline(&y, &x) {
				break
			}
			if width > r.cols {
				break
			}
		}
		if err := r.put(y, x, cluster, width); err != nil {
			r.curY, r.curX = y, x
			return written, newError("putstr", r, err)
		}
		x += width
		written++
		text = text[len(cluster):]
	}
	r.curY, r.curX = y, x
	return written, nil
}

// PutChar writes a single rune at (y, x).
func (p Plane) PutChar(y, x int, ch rune) error {
	if unicode.IsControl(ch) {
		return newError("putchar", p.rec(), cell.ErrEncoding)
	}
	_, err := p.PutStr(y, x, string(ch))
	return err
}

// PutStrAligned writes a single line on row y, positioned by align.
func (p Plane) PutStrAligned(y int, align Align, text string) (int, error) {
	r, err := p.recOp("putstr")
	if err != nil {
		return 0, err
	}
	x := AlignOffset(r.cols, align, cell.StrWidth(text))
	if x < 0 {
		x = -1
	}
	return p.PutStr(y, x, text)
}

// PutText lays out paragraphs from row y, breaking lines at spaces to fit the
// plane's width and aligning each line. Words wider than the plane are split.
// Rows past the bottom are dropped unless scrolling is enabled. It returns
// the clusters written.
func (p Plane) PutText(y int, align Align, text string) (int, error) {
	r, err := p.recOp("puttext")
	if err != nil {
		return 0, err
	}
	if y == -1 {
		y = r.curY
	}
	if y < 0 || y >= r.rows {
		return 0, newError("puttext", r, ErrOutOfBounds)
	}
	if align == AlignUnaligned {
		align = AlignLeft
	}

	written := 0
	for _, para := range strings.Split(text, "\n") {
		for _, line := range wrapLine(para, r.cols) {
			if y >= r.rows {
				if !r.scroll {
					return written, nil
				}
				r.scrollUp()
				y = r.rows - 1
			}
			x := AlignOffset(r.cols, align, cell.StrWidth(line))
			if line != "" {
				n, err := p.PutStr(y, x, line)
				written += n
				if err != nil {
					return written, err
				}
			}
			y++
		}
	}
	r.curY = min(y, r.rows-1)
	return written, nil
}

// wrapLine breaks s into lines of at most width columns.
func wrapLine(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	var cur strings.Builder
	curW := 0
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curW = 0
	}
	for _, w := range words {
		ww := cell.StrWidth(w)
		for ww > width {
			if curW > 0 {
				flush()
			}
			head, rest := splitWidth(w, width)
			lines = append(lines, head)
			w = rest
			ww = cell.StrWidth(w)
		}
		if ww == 0 {
			continue
		}
		need := ww
		if curW > 0 {
			need++
		}
		if curW+need > width {
			flush()
			need = ww
		}
		if curW > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(w)
		curW += need
	}
	if curW > 0 {
		flush()
	}
	return lines
}

// splitWidth splits s after at most width columns of whole clusters,
// taking at least one cluster.
func splitWidth(s string, width int) (string, string) {
	used, i := 0, 0
	for i < len(s) {
		cluster, w, err := cell.Cluster(s[i:])
		if err != nil || (used+w > width && i > 0) {
			break
		}
		used += w
		i += len(cluster)
	}
	if i == 0 {
		i = len(s)
	}
	return s[:i], s[i:]
}

// Box draws a rectangle's perimeter with the six clusters of glyphs (see
// cell.LightGlyphs) using the plane's output style and channels. The box's
// top-left corner is at (y, x); rows and cols include the border and must be
// at least 2. Parts falling outside the plane are clipped.
func (p Plane) Box(y, x, rows, cols int, glyphs string) error {
	r, err := p.recOp("box")
	if err != nil {
		return err
	}
	if rows < 2 || cols < 2 {
		return newError("box", r, ErrInvalidGeometry)
	}
	if y < 0 || x < 0 || y >= r.rows || x >= r.cols {
		return newError("box", r, ErrOutOfBounds)
	}
	b, err := cell.LoadBox(r.pool, r.style, r.channels, glyphs)
	if err != nil {
		return newError("box", r, err)
	}
	defer b.Release(r.pool)

	stamp := func(yy, xx int, c cell.Cell) error {
		if yy >= r.rows || xx >= r.cols {
			return nil
		}
		d, err := r.pool.Duplicate(r.pool, c)
		if err != nil {
			return err
		}
		r.clear(yy, xx)
		*r.at(yy, xx) = d
		return nil
	}

	type placement struct {
		y, x int
		c    cell.Cell
	}
	y1, x1 := y+rows-1, x+cols-1
	steps := []placement{{y, x, b.UL}, {y, x1, b.UR}, {y1, x, b.LL}, {y1, x1, b.LR}}
	for xx := x + 1; xx < x1; xx++ {
		steps = append(steps, placement{y, xx, b.HL}, placement{y1, xx, b.HL})
	}
	for yy := y + 1; yy < y1; yy++ {
		steps = append(steps, placement{yy, x, b.VL}, placement{yy, x1, b.VL})
	}
	for _, s := range steps {
		if err := stamp(s.y, s.x, s.c); err != nil {
			return newError("box", r, err)
		}
	}
	return nil
}
