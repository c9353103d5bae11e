package widget

import (
	"fmt"
	"strings"

	"github.com/dshills/stratum/internal/cell"
	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/input"
	"github.com/dshills/stratum/internal/plane"
)

// MenuItem is an entry of a section. An item with no Desc is drawn as a
// separator.
type MenuItem struct {
	Desc     string
	Shortcut input.Input
	Disabled bool
}

// MenuSection is a named drop-down. A section with no Name is a spacer:
// every section after it is aligned to the right of the header.
type MenuSection struct {
	Name     string
	Items    []MenuItem
	Shortcut input.Input
}

// MenuOptions configures NewMenu.
type MenuOptions struct {
	Sections []MenuSection

	// Bottom places the header on the parent's last row and unrolls
	// sections upward.
	Bottom bool

	HeaderChannels  channel.Channels
	SectionChannels channel.Channels
}

type menuSection struct {
	MenuSection
	x, width int
}

// Menu is a one-row header of sections over a parent plane. At most one
// section is unrolled at a time.
type Menu struct {
	parent   plane.Plane
	header   plane.Plane
	body     plane.Plane
	opts     MenuOptions
	sections []menuSection
	unrolled int
	selected int
	dead     bool
	err      error
}

const menuGap = 2

// NewMenu creates the header plane as a child of parent and draws it with
// every section rolled up.
func NewMenu(parent plane.Plane, opts MenuOptions) (*Menu, error) {
	if err := parent.Err(); err != nil {
		return nil, err
	}
	if len(opts.Sections) == 0 {
		return nil, ErrNoItems
	}
	rows, cols := parent.Dim()
	m := &Menu{parent: parent, opts: opts, unrolled: -1, selected: -1}
	if err := m.layout(cols); err != nil {
		return nil, err
	}
	y := 0
	if opts.Bottom {
		y = rows - 1
	}
	header, err := parent.Arena().Create(parent, plane.Options{Y: y, Rows: 1, Cols: cols, Name: "menu"})
	if err != nil {
		return nil, err
	}
	m.header = header
	if err := m.drawHeader(); err != nil {
		_ = header.Destroy()
		return nil, err
	}
	return m, nil
}

func (m *Menu) layout(cols int) error {
	m.sections = make([]menuSection, len(m.opts.Sections))
	spacer := -1
	x := 1
	for i, s := range m.opts.Sections {
		ms := menuSection{MenuSection: s}
		if s.Name == "" {
			if spacer < 0 {
				spacer = i
			}
			m.sections[i] = ms
			continue
		}
		if len(s.Items) == 0 {
			return fmt.Errorf("section %q: %w", s.Name, ErrNoItems)
		}
		ms.width = cell.StrWidth(s.Name)
		m.sections[i] = ms
	}
	for i := range m.sections {
		if spacer >= 0 && i > spacer {
			break
		}
		if m.sections[i].Name == "" {
			continue
		}
		m.sections[i].x = x
		x += m.sections[i].width + menuGap
	}
	if spacer >= 0 {
		right := cols - 1
		for i := len(m.sections) - 1; i > spacer; i-- {
			if m.sections[i].Name == "" {
				continue
			}
			right -= m.sections[i].width
			m.sections[i].x = right
			right -= menuGap
		}
		if right+menuGap < x-menuGap {
			return plane.ErrInvalidGeometry
		}
	} else if x-menuGap > cols {
		return plane.ErrInvalidGeometry
	}
	return nil
}

// Plane returns the header plane.
func (m *Menu) Plane() plane.Plane { return m.header }

// Unrolled returns the index of the unrolled section, or -1.
func (m *Menu) Unrolled() int { return m.unrolled }

// Err returns the error from the last redraw OfferInput triggered, or nil
// if it succeeded.
func (m *Menu) Err() error { return m.err }

func (m *Menu) drawHeader() error {
	m.header.Erase()
	if err := m.header.SetBase(" ", 0, m.opts.HeaderChannels); err != nil {
		return err
	}
	for i, s := range m.sections {
		if s.Name == "" {
			continue
		}
		cs := m.opts.HeaderChannels
		if i == m.unrolled {
			cs = reversed(cs)
		}
		m.header.SetChannels(cs)
		if _, err := m.header.PutStr(0, s.x, s.Name); err != nil {
			return err
		}
	}
	m.header.SetChannels(m.opts.HeaderChannels)
	return nil
}

// Unroll opens section i, rolling up any other. The first enabled item is
// selected.
func (m *Menu) Unroll(i int) error {
	if m.dead {
		return ErrDestroyed
	}
	if i < 0 || i >= len(m.sections) || m.sections[i].Name == "" {
		return ErrNotFound
	}
	if m.unrolled >= 0 {
		if err := m.Rollup(); err != nil {
			return err
		}
	}
	s := m.sections[i]
	width := 0
	for _, it := range s.Items {
		w := cell.StrWidth(it.Desc)
		if sc := shortcutLabel(it.Shortcut); sc != "" {
			w += menuGap + cell.StrWidth(sc)
		}
		width = max(width, w)
	}
	prows, pcols := m.parent.Dim()
	rows, cols := len(s.Items)+2, min(width+2, pcols)
	x := min(s.x-1, pcols-cols)
	y := 1
	if m.opts.Bottom {
		y = -rows
	}
	if rows > prows-1 {
		return plane.ErrInvalidGeometry
	}
	body, err := m.parent.Arena().Create(m.header, plane.Options{Y: y, X: max(x, 0), Rows: rows, Cols: cols, Name: "menu-section"})
	if err != nil {
		return err
	}
	m.body = body
	m.unrolled = i
	m.selected = m.nextEnabled(-1, 1)
	if err := m.drawHeader(); err != nil {
		return err
	}
	return m.drawBody()
}

// Rollup closes the unrolled section, if any.
func (m *Menu) Rollup() error {
	if m.dead {
		return ErrDestroyed
	}
	if m.unrolled < 0 {
		return nil
	}
	err := m.body.Destroy()
	m.body = plane.Plane{}
	m.unrolled, m.selected = -1, -1
	if herr := m.drawHeader(); err == nil {
		err = herr
	}
	return err
}

func (m *Menu) drawBody() error {
	s := m.sections[m.unrolled]
	rows, cols := m.body.Dim()
	m.body.Erase()
	if err := m.body.SetBase(" ", 0, m.opts.SectionChannels); err != nil {
		return err
	}
	m.body.SetChannels(m.opts.SectionChannels)
	if err := m.body.Box(0, 0, rows, cols, cell.LightGlyphs); err != nil {
		return err
	}
	inner := cols - 2
	for i, it := range s.Items {
		y := i + 1
		cs := m.opts.SectionChannels
		switch {
		case it.Desc == "":
			m.body.SetChannels(cs)
			if _, err := m.body.PutStr(y, 1, strings.Repeat("─", inner)); err != nil {
				return err
			}
			continue
		case i == m.selected:
			cs = reversed(cs)
		case it.Disabled:
			cs.SetFgPalIndex(8)
		}
		m.body.SetChannels(cs)
		if _, err := m.body.PutStr(y, 1, strings.Repeat(" ", inner)); err != nil {
			return err
		}
		if _, err := m.body.PutStr(y, 1, it.Desc); err != nil {
			return err
		}
		if sc := shortcutLabel(it.Shortcut); sc != "" {
			if _, err := m.body.PutStr(y, 1+inner-cell.StrWidth(sc), sc); err != nil {
				return err
			}
		}
	}
	m.body.SetChannels(m.opts.SectionChannels)
	return nil
}

func shortcutLabel(in input.Input) string {
	if in.Code.Kind() == input.KindNone {
		return ""
	}
	return in.String()
}

func selectable(it MenuItem) bool {
	return it.Desc != "" && !it.Disabled
}

// nextEnabled walks from item i in direction dir, wrapping, and returns the
// first selectable item or -1.
func (m *Menu) nextEnabled(i, dir int) int {
	items := m.sections[m.unrolled].Items
	n := len(items)
	for step := 1; step <= n; step++ {
		j := ((i+dir*step)%n + n) % n
		if selectable(items[j]) {
			return j
		}
	}
	return -1
}

func (m *Menu) nextSection(dir int) error {
	if m.unrolled < 0 {
		return nil
	}
	n := len(m.sections)
	for step := 1; step <= n; step++ {
		j := ((m.unrolled+dir*step)%n + n) % n
		if m.sections[j].Name != "" {
			return m.Unroll(j)
		}
	}
	return nil
}

// NextSection unrolls the section to the right of the unrolled one.
func (m *Menu) NextSection() error { return m.nextSection(1) }

// PrevSection unrolls the section to the left of the unrolled one.
func (m *Menu) PrevSection() error { return m.nextSection(-1) }

func (m *Menu) moveItem(dir int) error {
	if m.dead {
		return ErrDestroyed
	}
	if m.unrolled < 0 || m.selected < 0 {
		return nil
	}
	m.selected = m.nextEnabled(m.selected, dir)
	return m.drawBody()
}

// NextItem selects the next enabled item, wrapping.
func (m *Menu) NextItem() error { return m.moveItem(1) }

// PrevItem selects the previous enabled item, wrapping.
func (m *Menu) PrevItem() error { return m.moveItem(-1) }

// Selected returns the selected item of the unrolled section.
func (m *Menu) Selected() (MenuItem, bool) {
	if m.dead || m.unrolled < 0 || m.selected < 0 {
		return MenuItem{}, false
	}
	return m.sections[m.unrolled].Items[m.selected], true
}

// ItemSetStatus enables or disables the item desc of section name.
func (m *Menu) ItemSetStatus(name, desc string, enabled bool) error {
	if m.dead {
		return ErrDestroyed
	}
	for si := range m.sections {
		s := &m.sections[si]
		if s.Name != name || name == "" {
			continue
		}
		for ii := range s.Items {
			if s.Items[ii].Desc != desc || desc == "" {
				continue
			}
			s.Items[ii].Disabled = !enabled
			if si != m.unrolled {
				return nil
			}
			if m.selected < 0 || !selectable(s.Items[m.selected]) {
				m.selected = m.nextEnabled(ii, 1)
			}
			return m.drawBody()
		}
	}
	return ErrNotFound
}

func sameShortcut(sc, in input.Input) bool {
	return sc.Code.Kind() != input.KindNone && sc.ID() == in.ID() && sc.Mods == in.Mods
}

// OfferInput implements Offerer. Section shortcuts toggle their section.
// While a section is unrolled the arrows navigate and Escape rolls up.
// Enter is left to the caller, which reads Selected.
func (m *Menu) OfferInput(in input.Input) bool {
	if m.dead || !isPress(in) {
		return false
	}
	m.err = nil
	if in.IsMouse() {
		return m.offerMouse(in)
	}
	for i, s := range m.sections {
		if s.Name != "" && sameShortcut(s.Shortcut, in) {
			if i == m.unrolled {
				m.err = m.Rollup()
			} else {
				m.err = m.Unroll(i)
			}
			return true
		}
	}
	if m.unrolled < 0 {
		return false
	}
	k, ok := in.Code.Key()
	if !ok {
		if in.Code.IsRune(input.Escape) {
			m.err = m.Rollup()
			return true
		}
		return false
	}
	switch k {
	case input.KeyLeft:
		m.err = m.PrevSection()
	case input.KeyRight:
		m.err = m.NextSection()
	case input.KeyUp:
		m.err = m.PrevItem()
	case input.KeyDown:
		m.err = m.NextItem()
	default:
		return false
	}
	return true
}

func (m *Menu) offerMouse(in input.Input) bool {
	b, _ := in.Code.Button()
	if b != input.ButtonLeft || in.Code.Motion() {
		return false
	}
	if _, x, inside := m.header.TranslateAbs(in.Y, in.X); inside {
		for i, s := range m.sections {
			if s.Name != "" && x >= s.x && x < s.x+s.width {
				if i == m.unrolled {
					m.err = m.Rollup()
				} else {
					m.err = m.Unroll(i)
				}
				return true
			}
		}
		return true
	}
	if m.unrolled < 0 {
		return false
	}
	if y, _, inside := m.body.TranslateAbs(in.Y, in.X); inside {
		items := m.sections[m.unrolled].Items
		if i := y - 1; i >= 0 && i < len(items) && selectable(items[i]) {
			m.selected = i
			m.err = m.drawBody()
		}
		return true
	}
	m.err = m.Rollup()
	return false
}

// Destroy rolls up and destroys the header plane.
func (m *Menu) Destroy() error {
	if m.dead {
		return ErrDestroyed
	}
	err := m.Rollup()
	m.dead = true
	if derr := m.header.Destroy(); err == nil {
		err = derr
	}
	return err
}
