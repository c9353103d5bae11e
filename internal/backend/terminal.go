package backend

import (
	"context"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/stratum/internal/channel"
	"github.com/dshills/stratum/internal/compositor"
	"github.com/dshills/stratum/internal/input"
)

// eventQueue bounds buffered input; events beyond it are dropped.
const eventQueue = 256

// Terminal implements Display on a tcell screen. Its Input translates tcell
// events into input.Input.
type Terminal struct {
	mu      sync.Mutex
	screen  tcell.Screen
	caps    Capabilities
	inited  bool
	refresh bool

	events  chan input.Input
	buttons tcell.ButtonMask
	done    chan struct{}
}

// NewTerminal opens the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalScreen(screen), nil
}

// NewTerminalScreen wraps an existing screen, such as a simulation screen.
func NewTerminalScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen, events: make(chan input.Input, eventQueue)}
}

// Init implements Display.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inited {
		return nil
	}
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.HideCursor()
	t.caps = screenCapabilities(t.screen)
	t.inited = true
	t.done = make(chan struct{})
	go t.pump(t.done)
	return nil
}

func screenCapabilities(s tcell.Screen) Capabilities {
	colors := s.Colors()
	utf8 := s.CharacterSet() == "UTF-8"
	caps := Capabilities{
		Colors:    colors,
		TrueColor: colors > 256,
		UTF8:      utf8,
		Mouse:     s.HasMouse(),
	}
	if utf8 {
		caps.HalfBlock = s.CanDisplay('▀', false)
		caps.Quadrant = s.CanDisplay('▚', false)
		caps.Braille = s.CanDisplay('⣿', false)
		caps.Sextant = s.CanDisplay('🬗', false)
	}
	return caps
}

// Shutdown implements Display.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inited {
		return
	}
	t.inited = false
	t.screen.Fini()
	close(t.done)
}

// Size implements Display.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cols, rows := t.screen.Size()
	return rows, cols
}

// Present implements Display.
func (t *Terminal) Present(f *compositor.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inited {
		return ErrNotInitialized
	}
	if f == nil {
		return errNilFrame
	}
	cols, rows := t.screen.Size()
	for y := 0; y < f.Rows && y < rows; y++ {
		for x := 0; x < f.Cols && x < cols; x++ {
			c := f.Cells[y*f.Cols+x]
			if c.IsContinuation() {
				continue
			}
			runes := []rune(c.Glyph())
			t.screen.SetContent(x, y, runes[0], runes[1:], convertStyle(c.Style, c.Channels))
		}
	}
	if t.refresh {
		t.refresh = false
		t.screen.Sync()
	} else {
		t.screen.Show()
	}
	return nil
}

// Refresh implements Display.
func (t *Terminal) Refresh() {
	t.mu.Lock()
	t.refresh = true
	t.mu.Unlock()
}

// Capabilities implements Display.
func (t *Terminal) Capabilities() Capabilities {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.caps
}

// EnableMouse implements Display.
func (t *Terminal) EnableMouse() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.caps.Mouse {
		return ErrUnsupported
	}
	t.screen.EnableMouse()
	return nil
}

// DisableMouse implements Display.
func (t *Terminal) DisableMouse() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.DisableMouse()
	return nil
}

// SetPaletteColor implements Display. tcell offers no palette control.
func (t *Terminal) SetPaletteColor(int, uint32) error {
	return ErrUnsupported
}

// Input implements Display.
func (t *Terminal) Input() input.Poller { return t }

// Poll implements input.Poller.
func (t *Terminal) Poll(ctx context.Context, timeout time.Duration) (input.Input, error) {
	select {
	case in := <-t.events:
		return in, nil
	default:
	}
	if timeout == 0 {
		return input.Input{}, input.ErrNoInput
	}
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case in := <-t.events:
		return in, nil
	case <-expired:
		return input.Input{}, input.ErrNoInput
	case <-ctx.Done():
		return input.Input{}, ctx.Err()
	}
}

// Post implements input.Poller. The event is dropped if the queue is full.
func (t *Terminal) Post(in input.Input) {
	select {
	case t.events <- in:
	default:
	}
}

func (t *Terminal) pump(done <-chan struct{}) {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		in, ok := t.convertEvent(ev)
		if !ok {
			continue
		}
		select {
		case t.events <- in:
		case <-done:
			return
		default:
		}
	}
}

func (t *Terminal) convertEvent(ev tcell.Event) (input.Input, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return convertKey(e)
	case *tcell.EventMouse:
		return t.convertMouse(e), true
	case *tcell.EventResize:
		return input.KeyInput(input.KeyResize), true
	}
	return input.Input{}, false
}

var tcellKeys = map[tcell.Key]input.Key{
	tcell.KeyEnter:      input.KeyEnter,
	tcell.KeyBackspace:  input.KeyBackspace,
	tcell.KeyBackspace2: input.KeyBackspace,
	tcell.KeyDelete:     input.KeyDelete,
	tcell.KeyInsert:     input.KeyInsert,
	tcell.KeyHome:       input.KeyHome,
	tcell.KeyEnd:        input.KeyEnd,
	tcell.KeyPgUp:       input.KeyPgUp,
	tcell.KeyPgDn:       input.KeyPgDown,
	tcell.KeyUp:         input.KeyUp,
	tcell.KeyDown:       input.KeyDown,
	tcell.KeyLeft:       input.KeyLeft,
	tcell.KeyRight:      input.KeyRight,
	tcell.KeyUpLeft:     input.KeyULeft,
	tcell.KeyUpRight:    input.KeyURight,
	tcell.KeyDownLeft:   input.KeyDLeft,
	tcell.KeyDownRight:  input.KeyDRight,
	tcell.KeyCenter:     input.KeyCenter,
	tcell.KeyClear:      input.KeyCLS,
	tcell.KeyCancel:     input.KeyCancel,
	tcell.KeyPrint:      input.KeyPrint,
	tcell.KeyExit:       input.KeyExit,
}

func convertKey(e *tcell.EventKey) (input.Input, bool) {
	mods := convertMod(e.Modifiers())
	var in input.Input
	k := e.Key()
	switch {
	case k == tcell.KeyRune:
		in = input.RuneInput(e.Rune())
	case k == tcell.KeyTab:
		in = input.RuneInput(input.Tab)
	case k == tcell.KeyBacktab:
		in = input.RuneInput(input.Tab)
		mods |= input.ModShift
	case k == tcell.KeyEscape:
		in = input.RuneInput(input.Escape)
	case k == tcell.KeyCtrlSpace:
		in = input.RuneInput(input.Space)
		mods |= input.ModCtrl
	case k >= tcell.KeyF1 && k <= tcell.KeyF64:
		n := int(k-tcell.KeyF1) + 1
		if n > 60 {
			return input.Input{}, false
		}
		in = input.KeyInput(input.F(n))
	default:
		if sk, ok := tcellKeys[k]; ok {
			in = input.KeyInput(sk)
			break
		}
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			in = input.RuneInput(rune('a' + int(k-tcell.KeyCtrlA)))
			mods |= input.ModCtrl
			break
		}
		return input.Input{}, false
	}
	in.Mods |= mods
	return in, true
}

func convertMod(m tcell.ModMask) input.Modifier {
	var out input.Modifier
	if m&tcell.ModShift != 0 {
		out |= input.ModShift
	}
	if m&tcell.ModAlt != 0 {
		out |= input.ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		out |= input.ModCtrl
	}
	if m&tcell.ModMeta != 0 {
		out |= input.ModMeta
	}
	return out
}

// tcell numbers the secondary (right) button 2 and the middle button 3.
var tcellButtons = []struct {
	mask tcell.ButtonMask
	b    input.Button
}{
	{tcell.Button1, input.Button1},
	{tcell.Button3, input.Button2},
	{tcell.Button2, input.Button3},
	{tcell.WheelUp, input.Button4},
	{tcell.WheelDown, input.Button5},
	{tcell.WheelLeft, input.Button6},
	{tcell.WheelRight, input.Button7},
	{tcell.Button4, input.Button8},
	{tcell.Button5, input.Button9},
	{tcell.Button6, input.Button10},
	{tcell.Button7, input.Button11},
}

func firstButton(m tcell.ButtonMask) input.Button {
	for _, e := range tcellButtons {
		if m&e.mask != 0 {
			return e.b
		}
	}
	return input.ButtonNone
}

// convertMouse turns tcell's button-state reports into press, drag, release
// and motion events.
func (t *Terminal) convertMouse(e *tcell.EventMouse) input.Input {
	x, y := e.Position()
	mask := e.Buttons() &^ (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)
	wheel := e.Buttons() & (tcell.WheelUp | tcell.WheelDown | tcell.WheelLeft | tcell.WheelRight)

	var in input.Input
	switch {
	case wheel != 0:
		in = input.MouseInput(firstButton(wheel), false, y, x, input.EventPress)
	case mask == 0 && t.buttons != 0:
		in = input.MouseInput(firstButton(t.buttons), false, y, x, input.EventRelease)
	case mask == 0:
		in = input.MouseInput(input.ButtonNone, true, y, x, input.EventPress)
	case mask == t.buttons:
		in = input.MouseInput(firstButton(mask), true, y, x, input.EventPress)
	default:
		b := firstButton(mask &^ t.buttons)
		if b == input.ButtonNone {
			b = firstButton(mask)
		}
		in = input.MouseInput(b, false, y, x, input.EventPress)
	}
	if wheel == 0 {
		t.buttons = mask
	}
	in.Mods = convertMod(e.Modifiers())
	return in
}

func convertColor(c channel.Channel) tcell.Color {
	switch {
	case c.IsDefault():
		return tcell.ColorDefault
	case c.IsPalIndex():
		return tcell.PaletteColor(int(c.PalIndex()))
	}
	r, g, b := c.RGB8()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func convertStyle(s channel.Style, cs channel.Channels) tcell.Style {
	style := tcell.StyleDefault.
		Foreground(convertColor(cs.Fg())).
		Background(convertColor(cs.Bg()))
	if s.Has(channel.StyleBold) {
		style = style.Bold(true)
	}
	if s.Has(channel.StyleItalic) {
		style = style.Italic(true)
	}
	switch {
	case s.Has(channel.StyleUndercurl):
		style = style.Underline(tcell.UnderlineStyleCurly)
	case s.Has(channel.StyleUnderline):
		style = style.Underline(true)
	}
	if s.Has(channel.StyleStruck) {
		style = style.StrikeThrough(true)
	}
	return style
}
