package widget

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/stratum/internal/input"
	"github.com/dshills/stratum/internal/plane"
)

func sampleSections() []MenuSection {
	return []MenuSection{
		{Name: "File", Shortcut: input.RuneInput('f').WithAlt(), Items: []MenuItem{
			{Desc: "New", Shortcut: input.RuneInput('n').WithCtrl()},
			{Desc: "Open"},
			{},
			{Desc: "Quit", Shortcut: input.RuneInput('q').WithCtrl()},
		}},
		{Name: "Edit", Shortcut: input.RuneInput('e').WithAlt(), Items: []MenuItem{
			{Desc: "Undo", Disabled: true},
			{Desc: "Copy"},
		}},
		{},
		{Name: "Help", Items: []MenuItem{{Desc: "About"}}},
	}
}

func newMenu(t *testing.T, bottom bool) (*Menu, plane.Plane) {
	t.Helper()
	p := newPile(t, 12, 40)
	m, err := NewMenu(p, MenuOptions{Sections: sampleSections(), Bottom: bottom})
	if err != nil {
		t.Fatalf("NewMenu: %v", err)
	}
	return m, p
}

func TestNewMenuErrors(t *testing.T) {
	p := newPile(t, 5, 10)
	if _, err := NewMenu(p, MenuOptions{}); !errors.Is(err, ErrNoItems) {
		t.Errorf("no sections err = %v, want ErrNoItems", err)
	}
	if _, err := NewMenu(p, MenuOptions{Sections: []MenuSection{{Name: "Empty"}}}); !errors.Is(err, ErrNoItems) {
		t.Errorf("empty section err = %v, want ErrNoItems", err)
	}
	wide := []MenuSection{{Name: "Something", Items: []MenuItem{{Desc: "x"}}}, {Name: "Longer", Items: []MenuItem{{Desc: "y"}}}}
	if _, err := NewMenu(p, MenuOptions{Sections: wide}); !errors.Is(err, plane.ErrInvalidGeometry) {
		t.Errorf("overflowing header err = %v, want ErrInvalidGeometry", err)
	}
}

func TestMenuHeaderLayout(t *testing.T) {
	m, _ := newMenu(t, false)
	got, err := m.Plane().Contents(0, 0, 1, 0)
	if err != nil {
		t.Fatalf("Contents: %v", err)
	}
	want := " File  Edit" + strings.Repeat(" ", 24) + "Help "
	if got != want {
		t.Errorf("header = %q, want %q", got, want)
	}
	if m.Unrolled() != -1 {
		t.Errorf("Unrolled = %d, want -1", m.Unrolled())
	}
	if _, ok := m.Selected(); ok {
		t.Error("Selected ok while rolled up")
	}
}

func TestMenuBottomHeader(t *testing.T) {
	m, _ := newMenu(t, true)
	if y, _ := m.Plane().Yx(); y != 11 {
		t.Errorf("header y = %d, want 11", y)
	}
	if err := m.Unroll(0); err != nil {
		t.Fatalf("Unroll: %v", err)
	}
	if y, _ := m.body.AbsYx(); y != 11-6 {
		t.Errorf("section y = %d, want %d", y, 11-6)
	}
}

func TestMenuUnrollAndNavigate(t *testing.T) {
	m, _ := newMenu(t, false)
	if err := m.Unroll(0); err != nil {
		t.Fatalf("Unroll: %v", err)
	}
	rows, cols := m.body.Dim()
	if rows != 6 || cols != 13 {
		t.Errorf("section dims = %dx%d, want 6x13", rows, cols)
	}
	if got := row(t, m.body, 1); got != "│New  Ctrl+n│" {
		t.Errorf("item row = %q", got)
	}
	if got := row(t, m.body, 3); got != "│"+strings.Repeat("─", 11)+"│" {
		t.Errorf("separator row = %q", got)
	}

	steps := []struct {
		op   func() error
		want string
	}{
		{m.NextItem, "Open"},
		{m.NextItem, "Quit"},
		{m.NextItem, "New"},
		{m.PrevItem, "Quit"},
	}
	for i, s := range steps {
		if err := s.op(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		it, ok := m.Selected()
		if !ok || it.Desc != s.want {
			t.Errorf("step %d: Selected = %q/%v, want %q", i, it.Desc, ok, s.want)
		}
	}

	if err := m.NextSection(); err != nil {
		t.Fatalf("NextSection: %v", err)
	}
	if m.Unrolled() != 1 {
		t.Fatalf("Unrolled = %d, want 1", m.Unrolled())
	}
	if it, _ := m.Selected(); it.Desc != "Copy" {
		t.Errorf("Selected = %q, want Copy (Undo is disabled)", it.Desc)
	}
	if err := m.NextSection(); err != nil {
		t.Fatalf("NextSection: %v", err)
	}
	if m.Unrolled() != 3 {
		t.Errorf("NextSection skipped spacer to %d, want 3", m.Unrolled())
	}
	if err := m.PrevSection(); err != nil || m.Unrolled() != 1 {
		t.Errorf("PrevSection = %d, %v, want 1", m.Unrolled(), err)
	}
	if err := m.Unroll(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Unroll(spacer) err = %v, want ErrNotFound", err)
	}
	if err := m.Rollup(); err != nil {
		t.Fatalf("Rollup: %v", err)
	}
	if m.Unrolled() != -1 || len(m.Plane().Children()) != 0 {
		t.Errorf("after Rollup: unrolled %d, %d children", m.Unrolled(), len(m.Plane().Children()))
	}
}

func TestMenuItemSetStatus(t *testing.T) {
	m, _ := newMenu(t, false)
	if err := m.Unroll(1); err != nil {
		t.Fatalf("Unroll: %v", err)
	}
	if err := m.ItemSetStatus("Edit", "Copy", false); err != nil {
		t.Fatalf("ItemSetStatus: %v", err)
	}
	if _, ok := m.Selected(); ok {
		t.Error("Selected ok with every item disabled")
	}
	if err := m.ItemSetStatus("Edit", "Undo", true); err != nil {
		t.Fatalf("ItemSetStatus: %v", err)
	}
	if it, ok := m.Selected(); !ok || it.Desc != "Undo" {
		t.Errorf("Selected = %q/%v, want Undo", it.Desc, ok)
	}
	if err := m.ItemSetStatus("Edit", "Paste", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown item err = %v, want ErrNotFound", err)
	}
	if err := m.ItemSetStatus("View", "Copy", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown section err = %v, want ErrNotFound", err)
	}
}

func TestMenuOfferInput(t *testing.T) {
	m, _ := newMenu(t, false)

	if m.OfferInput(input.KeyInput(input.KeyDown)) {
		t.Error("rolled-up menu consumed Down")
	}
	if !m.OfferInput(input.RuneInput('e').WithAlt()) || m.Unrolled() != 1 {
		t.Fatalf("section shortcut: unrolled %d, want 1", m.Unrolled())
	}
	if !m.OfferInput(input.KeyInput(input.KeyLeft)) || m.Unrolled() != 0 {
		t.Errorf("Left: unrolled %d, want 0", m.Unrolled())
	}
	if !m.OfferInput(input.KeyInput(input.KeyDown)) {
		t.Error("Down not consumed")
	}
	if it, _ := m.Selected(); it.Desc != "Open" {
		t.Errorf("Selected = %q, want Open", it.Desc)
	}
	if m.OfferInput(input.KeyInput(input.KeyEnter)) {
		t.Error("Enter consumed")
	}
	if !m.OfferInput(input.RuneInput(input.Escape)) || m.Unrolled() != -1 {
		t.Errorf("Escape: unrolled %d, want -1", m.Unrolled())
	}
	if !m.OfferInput(input.RuneInput('f').WithAlt()) || !m.OfferInput(input.RuneInput('f').WithAlt()) || m.Unrolled() != -1 {
		t.Errorf("shortcut twice: unrolled %d, want -1", m.Unrolled())
	}
}

func TestMenuMouse(t *testing.T) {
	m, _ := newMenu(t, false)
	click := func(y, x int) bool {
		return m.OfferInput(input.MouseInput(input.ButtonLeft, false, y, x, input.EventPress))
	}

	if !click(0, 7) || m.Unrolled() != 1 {
		t.Fatalf("click Edit: unrolled %d, want 1", m.Unrolled())
	}
	by, bx := m.body.AbsYx()
	if !click(by+2, bx+2) {
		t.Error("click on item not consumed")
	}
	if it, _ := m.Selected(); it.Desc != "Copy" {
		t.Errorf("Selected = %q, want Copy", it.Desc)
	}
	if !click(by+1, bx+2) {
		t.Error("click on disabled item not consumed")
	}
	if it, _ := m.Selected(); it.Desc != "Copy" {
		t.Errorf("disabled item selected: %q", it.Desc)
	}
	if click(10, 30) {
		t.Error("click outside consumed")
	}
	if m.Unrolled() != -1 {
		t.Errorf("click outside left section %d unrolled", m.Unrolled())
	}
	if m.OfferInput(input.MouseInput(input.ButtonLeft, false, 0, 7, input.EventRelease)) {
		t.Error("release consumed")
	}
}

func TestMenuOfferInputRedrawError(t *testing.T) {
	m, _ := newMenu(t, false)
	if !m.OfferInput(input.RuneInput('f').WithAlt()) || m.Err() != nil {
		t.Fatalf("unroll: err = %v", m.Err())
	}
	// Destroying the header behind the menu's back leaves every redraw failing.
	if err := m.Plane().Destroy(); err != nil {
		t.Fatalf("Destroy header: %v", err)
	}
	tests := []struct {
		name string
		in   input.Input
	}{
		{"next item", input.KeyInput(input.KeyDown)},
		{"next section", input.KeyInput(input.KeyRight)},
		{"shortcut", input.RuneInput('e').WithAlt()},
	}
	for _, tt := range tests {
		if !m.OfferInput(tt.in) {
			t.Errorf("%s: not consumed", tt.name)
		}
		if !errors.Is(m.Err(), plane.ErrStale) {
			t.Errorf("%s: Err = %v, want ErrStale", tt.name, m.Err())
		}
	}
	if m.OfferInput(input.KeyInput(input.KeyEnter)) {
		t.Error("Enter consumed")
	}
	if m.Err() != nil {
		t.Errorf("Err = %v after an input that drew nothing", m.Err())
	}
}

func TestMenuDestroy(t *testing.T) {
	m, p := newMenu(t, false)
	if err := m.Unroll(0); err != nil {
		t.Fatalf("Unroll: %v", err)
	}
	if err := m.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if len(p.Children()) != 0 {
		t.Errorf("parent has %d children after Destroy", len(p.Children()))
	}
	if err := m.Unroll(0); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Unroll after Destroy err = %v, want ErrDestroyed", err)
	}
}
