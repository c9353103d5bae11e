package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/input"
	"github.com/dshills/stratum/internal/input/keymap"
	"github.com/dshills/stratum/internal/input/mouse"
	"github.com/dshills/stratum/internal/plane"
	"github.com/dshills/stratum/internal/term"
	"github.com/dshills/stratum/internal/widget"
)

// Minimum screen for the demo layout.
const (
	demoMinRows = 8
	demoMinCols = 40
)

var errQuit = errors.New("quit")

// demo shows a menu, a tree of the standard pile and a status line.
type demo struct {
	tc    *term.Context
	keys  *keymap.Keymap
	mouse *mouse.Tracker

	menu   *widget.Menu
	tree   *widget.Tree
	status plane.Plane
	info   plane.Plane

	// dragging is set while the left button pressed on the info panel is held.
	dragging bool
}

func runDemo(ctx context.Context, tc *term.Context, keys map[string]string) error {
	km := defaultKeymap()
	if err := km.Apply(keys); err != nil {
		return err
	}
	d, err := newDemo(tc, km)
	if err != nil {
		return err
	}
	return d.run(ctx)
}

func defaultKeymap() *keymap.Keymap {
	return keymap.New("demo").
		Add("Ctrl+q", "quit").
		Add("Ctrl+r", "refresh").
		Add("Ctrl+s", "stats").
		Add("F2", "mouse").
		Add("F1", "about").
		Add("Alt+f", "menu.file").
		Add("Alt+v", "menu.view").
		Add("Alt+h", "menu.help")
}

// menuActions maps item descriptions to keymap actions.
var menuActions = map[string]string{
	"Refresh": "refresh",
	"Quit":    "quit",
	"Stats":   "stats",
	"Mouse":   "mouse",
	"About":   "about",
}

func demoSections(km *keymap.Keymap) []widget.MenuSection {
	key := func(action string) input.Input {
		in, _ := km.KeyFor(action)
		return in
	}
	item := func(desc string) widget.MenuItem {
		return widget.MenuItem{Desc: desc, Shortcut: key(menuActions[desc])}
	}
	return []widget.MenuSection{
		{Name: "File", Shortcut: key("menu.file"), Items: []widget.MenuItem{item("Refresh"), {}, item("Quit")}},
		{Name: "View", Shortcut: key("menu.view"), Items: []widget.MenuItem{item("Stats"), item("Mouse")}},
		{},
		{Name: "Help", Shortcut: key("menu.help"), Items: []widget.MenuItem{item("About")}},
	}
}

func newDemo(tc *term.Context, km *keymap.Keymap) (*demo, error) {
	std := tc.StdPlane()
	rows, cols := std.Dim()
	if rows < demoMinRows || cols < demoMinCols {
		return nil, fmt.Errorf("screen %dx%d is smaller than %dx%d", rows, cols, demoMinRows, demoMinCols)
	}
	d := &demo{tc: tc, keys: km, mouse: mouse.NewTracker(mouse.DefaultConfig())}

	treeCols := cols / 2
	tp, err := tc.Create(std, plane.Options{Y: 2, X: 1, Rows: rows - 4, Cols: treeCols, Name: "tree"})
	if err != nil {
		return nil, err
	}
	if d.info, err = tc.Create(std, plane.Options{Y: 2, X: treeCols + 2, Rows: rows - 4, Cols: cols - treeCols - 3, Name: "info"}); err != nil {
		return nil, err
	}
	if d.status, err = tc.Create(std, plane.Options{Y: rows - 1, Rows: 1, Cols: cols, Name: "status"}); err != nil {
		return nil, err
	}
	d.status.SetChannels(channel.FromRGB(0xffffff, 0x303060))

	if d.menu, err = widget.NewMenu(std, widget.MenuOptions{
		Sections:        demoSections(km),
		HeaderChannels:  channel.FromRGB(0xffffff, 0x205080),
		SectionChannels: channel.FromRGB(0xffffff, 0x404040),
	}); err != nil {
		return nil, err
	}
	if d.tree, err = widget.NewTree(tp, widget.TreeOptions{Items: pileItems(std)}); err != nil {
		return nil, err
	}
	file, _ := km.KeyFor("menu.file")
	quit, _ := km.KeyFor("quit")
	d.setStatus("%s menu, arrows move, %s quits", file, quit)
	return d, d.showFocused()
}

// pileItems mirrors the plane hierarchy under root.
func pileItems(root plane.Plane) []*widget.TreeItem {
	var items []*widget.TreeItem
	for _, c := range root.Children() {
		items = append(items, &widget.TreeItem{Name: c.Name(), Data: c, Children: pileItems(c)})
	}
	return items
}

func (d *demo) setStatus(format string, args ...any) {
	d.status.Erase()
	_, _ = d.status.PutStr(0, 1, fmt.Sprintf(format, args...))
}

func (d *demo) showFocused() error {
	d.info.Erase()
	item, depth := d.tree.Focused()
	if item == nil {
		return nil
	}
	p, ok := item.Data.(plane.Plane)
	if !ok || !p.Valid() {
		return nil
	}
	rows, cols := p.Dim()
	y, x := p.AbsYx()
	lines := []string{
		"plane  " + p.Name(),
		fmt.Sprintf("depth  %d", depth),
		fmt.Sprintf("size   %dx%d", rows, cols),
		fmt.Sprintf("abs    %d,%d", y, x),
	}
	for i, l := range lines {
		if _, err := d.info.PutStr(i, 0, l); err != nil {
			return err
		}
	}
	return nil
}

func (d *demo) run(ctx context.Context) error {
	for {
		if err := d.tc.Render(); err != nil {
			return err
		}
		in, err := d.tc.GetInputBlocking(ctx)
		if err != nil {
			if errors.Is(err, input.ErrClosed) {
				return nil
			}
			return err
		}
		if err := d.handle(in); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

func (d *demo) handle(in input.Input) error {
	switch {
	case in.Code.IsKey(input.KeyEOF):
		return errQuit
	case in.Code.IsKey(input.KeyResize):
		rows, cols, err := d.tc.Refresh()
		if err != nil {
			return err
		}
		if err := d.status.Move(rows-1, 0); err != nil {
			return err
		}
		d.setStatus("resized to %dx%d", rows, cols)
		return nil
	case in.Code.IsKey(input.KeyEnter) && d.menu.Unrolled() >= 0:
		item, ok := d.menu.Selected()
		if err := d.menu.Rollup(); err != nil {
			return err
		}
		if ok {
			return d.activate(menuActions[item.Desc])
		}
		return nil
	}

	g, isMouse := d.mouse.Feed(in, time.Now())
	if isMouse && d.dragInfo(g) {
		return nil
	}
	if widget.Offer(in, d.menu, d.tree) {
		if err := errors.Join(d.menu.Err(), d.tree.Err()); err != nil {
			return err
		}
		if isMouse && g.Kind == mouse.GestureClick && g.Count == mouse.ClickDouble {
			if item, _ := d.tree.Focused(); item != nil {
				d.setStatus("opened %s", item.Name)
			}
		}
		return d.showFocused()
	}
	if action, ok := d.keys.Lookup(in); ok {
		return d.activate(action)
	}
	if in.Type != input.EventRelease {
		d.setStatus("input %s", in)
	}
	return nil
}

// dragInfo moves the info panel while it is dragged by the left button.
func (d *demo) dragInfo(g mouse.Gesture) bool {
	if g.Button != input.ButtonLeft {
		return false
	}
	switch g.Kind {
	case mouse.GestureClick:
		_, _, d.dragging = d.info.TranslateAbs(g.Pos.Y, g.Pos.X)
	case mouse.GestureRelease:
		d.dragging = false
	case mouse.GestureDrag:
		if d.dragging {
			return d.info.MoveRel(g.Delta.Y, g.Delta.X) == nil
		}
	case mouse.GestureDrop:
		if d.dragging {
			d.dragging = false
			y, x := d.info.Yx()
			d.setStatus("info moved to %d,%d", y, x)
			return true
		}
	}
	return false
}

func (d *demo) activate(action string) error {
	switch action {
	case "quit":
		return errQuit
	case "refresh":
		if _, _, err := d.tc.Refresh(); err != nil {
			return err
		}
		d.setStatus("refreshed")
	case "stats":
		st := d.tc.Stats()
		d.setStatus("renders %d, inputs %d, cells changed %d", st.Renders, st.Inputs, st.CellsChanged)
	case "mouse":
		if err := d.tc.MouseEnable(); err != nil {
			d.setStatus("mouse: %v", err)
			return nil
		}
		d.setStatus("mouse enabled")
	case "about":
		d.setStatus("stratum %s", version)
	}
	return nil
}
