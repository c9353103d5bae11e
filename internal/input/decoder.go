package input

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultEscapeTimeout is how long a lone ESC, or any other incomplete
	// sequence, waits for more bytes before it is resolved.
	DefaultEscapeTimeout = 50 * time.Millisecond

	// MaxSequence bounds how many bytes an unterminated sequence may
	// accumulate before it is thrown away.
	MaxSequence = 32
)

type status uint8

const (
	parsed  status = iota // an event and its length
	skipped               // bytes to drop, no event
	partial               // need more bytes
)

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithEscapeTimeout sets how long incomplete sequences wait for more bytes.
func WithEscapeTimeout(d time.Duration) DecoderOption {
	return func(dec *Decoder) {
		if d > 0 {
			dec.timeout = d
		}
	}
}

// Decoder converts terminal input bytes into events. It holds incomplete
// sequences between calls and never blocks. A Decoder is not safe for
// concurrent use.
type Decoder struct {
	buf       []byte
	since     time.Time
	timeout   time.Duration
	discarded int
}

// NewDecoder returns a decoder with DefaultEscapeTimeout.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{timeout: DefaultEscapeTimeout, buf: make([]byte, 0, 64)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Timeout returns the escape timeout.
func (d *Decoder) Timeout() time.Duration { return d.timeout }

// Pending reports whether an incomplete sequence is buffered.
func (d *Decoder) Pending() bool { return len(d.buf) > 0 }

// Deadline returns when the buffered incomplete sequence will be resolved
// by Expire.
func (d *Decoder) Deadline() (time.Time, bool) {
	if len(d.buf) == 0 {
		return time.Time{}, false
	}
	return d.since.Add(d.timeout), true
}

// Discarded returns how many unrecognized sequences and malformed bytes
// have been dropped.
func (d *Decoder) Discarded() int { return d.discarded }

// Reset drops any buffered bytes.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.since = time.Time{}
}

// Feed decodes p, returning every event it completes. now stamps the start
// of any incomplete sequence left buffered.
func (d *Decoder) Feed(p []byte, now time.Time) []Input {
	d.buf = append(d.buf, p...)
	return d.drain(now, false)
}

// Expire resolves a buffered incomplete sequence once its timeout has
// passed. A lone ESC becomes the Escape codepoint and ESC followed by one
// byte becomes that byte with Alt; anything else incomplete is dropped.
func (d *Decoder) Expire(now time.Time) []Input {
	if len(d.buf) == 0 || now.Sub(d.since) < d.timeout {
		return nil
	}
	return d.drain(now, true)
}

// Flush resolves everything buffered regardless of time, as at end of input.
func (d *Decoder) Flush() []Input {
	return d.drain(time.Time{}, true)
}

func (d *Decoder) drain(now time.Time, force bool) []Input {
	var out []Input
	off := 0
	for off < len(d.buf) {
		b := d.buf[off:]
		in, n, st := parse(b)
		if st == partial {
			if len(b) >= MaxSequence {
				d.discarded++
				off = len(d.buf)
				break
			}
			if !force {
				break
			}
			var ok bool
			in, n, ok = resolve(b)
			if !ok {
				d.discarded++
				off += n
				continue
			}
			st = parsed
		}
		off += n
		if st == skipped {
			d.discarded++
			continue
		}
		out = append(out, in)
	}

	if off > 0 || d.since.IsZero() {
		d.since = now
	}
	d.buf = d.buf[:copy(d.buf, d.buf[off:])]
	if len(d.buf) == 0 {
		d.since = time.Time{}
	}
	return out
}

// resolve settles an incomplete sequence whose wait has run out.
func resolve(b []byte) (Input, int, bool) {
	if b[0] != Escape {
		return Input{}, 1, false
	}
	switch {
	case len(b) == 1:
		return RuneInput(Escape), 1, true
	case len(b) == 2 && (b[1] == '[' || b[1] == 'O'):
		return RuneInput(rune(b[1])).WithAlt(), 2, true
	case b[1] == '[' || b[1] == 'O':
		return Input{}, len(b), false
	}
	// ESC followed by a partial UTF-8 sequence.
	return RuneInput(Escape), 1, true
}

func parse(b []byte) (Input, int, status) {
	c := b[0]
	switch {
	case c == Escape:
		return parseEscape(b)
	case c < 0x20 || c == DeleteASC:
		return control(c), 1, parsed
	case c < utf8.RuneSelf:
		return RuneInput(rune(c)), 1, parsed
	}
	if !utf8.FullRune(b) {
		return Input{}, 0, partial
	}
	r, n := utf8.DecodeRune(b)
	if r == utf8.RuneError && n <= 1 {
		return Input{}, 1, skipped
	}
	return RuneInput(r), n, parsed
}

// control maps C0 bytes and DEL.
func control(c byte) Input {
	switch c {
	case '\r', '\n':
		return KeyInput(KeyEnter)
	case DeleteASC, 0x08:
		return KeyInput(KeyBackspace)
	case Tab:
		return RuneInput(Tab)
	case 0:
		return RuneInput(Space).WithCtrl()
	}
	if c <= 0x1a {
		return RuneInput(rune('a' + c - 1)).WithCtrl()
	}
	return RuneInput(rune(c + 0x40)).WithCtrl()
}

func parseEscape(b []byte) (Input, int, status) {
	if len(b) == 1 {
		return Input{}, 0, partial
	}
	switch b[1] {
	case '[':
		return parseCSI(b)
	case 'O':
		return parseSS3(b)
	case Escape:
		return RuneInput(Escape), 1, parsed
	}
	in, n, st := parse(b[1:])
	switch st {
	case partial:
		return Input{}, 0, partial
	case skipped:
		return RuneInput(Escape), 1, parsed
	}
	return in.WithAlt(), n + 1, parsed
}

func parseSS3(b []byte) (Input, int, status) {
	if len(b) < 3 {
		return Input{}, 0, partial
	}
	if b[2] == 'M' {
		return KeyInput(KeyEnter), 3, parsed
	}
	if k, ok := letterKeys[b[2]]; ok {
		return KeyInput(k), 3, parsed
	}
	return Input{}, 3, skipped
}

var letterKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'E': KeyBegin,
	'F': KeyEnd,
	'H': KeyHome,
	'P': F(1),
	'Q': F(2),
	'R': F(3),
	'S': F(4),
}

var tildeKeys = map[int]Key{
	1: KeyHome, 2: KeyInsert, 3: KeyDelete, 4: KeyEnd,
	5: KeyPgUp, 6: KeyPgDown, 7: KeyHome, 8: KeyEnd,
	11: F(1), 12: F(2), 13: F(3), 14: F(4), 15: F(5),
	17: F(6), 18: F(7), 19: F(8), 20: F(9), 21: F(10),
	23: F(11), 24: F(12), 25: F(13), 26: F(14),
	28: F(15), 29: F(16),
	31: F(17), 32: F(18), 33: F(19), 34: F(20),
}

func parseCSI(b []byte) (Input, int, status) {
	i := 2
	for i < len(b) && b[i] >= 0x20 && b[i] <= 0x3f {
		i++
	}
	if i == len(b) {
		return Input{}, 0, partial
	}
	final := b[i]
	if final < 0x40 || final > 0x7e {
		return Input{}, i, skipped
	}
	params := string(b[2:i])
	n := i + 1

	if final == 'M' && params == "" {
		return parseX10(b)
	}
	if strings.HasPrefix(params, "<") && (final == 'M' || final == 'm') {
		in, ok := parseSGRMouse(params[1:], final == 'm')
		if !ok {
			return Input{}, n, skipped
		}
		return in, n, parsed
	}
	in, ok := csiKey(params, final)
	if !ok {
		return Input{}, n, skipped
	}
	return in, n, parsed
}

func csiKey(params string, final byte) (Input, bool) {
	ps, ok := splitParams(params)
	if !ok {
		return Input{}, false
	}
	mods, evt := modParam(ps)
	first := param(ps, 0, 0, 1)

	var code Code
	switch final {
	case 'Z':
		code = Rune(Tab)
		mods |= ModShift
	case '~':
		k, ok := tildeKeys[first]
		if !ok {
			return Input{}, false
		}
		code = KeyCode(k)
	case 'u':
		c, ok := kittyCode(param(ps, 0, 0, -1))
		if !ok {
			return Input{}, false
		}
		code = c
	case 'R':
		// A cursor position report looks like F3 with a row parameter.
		if first != 1 {
			return Input{}, false
		}
		code = KeyCode(F(3))
	default:
		k, ok := letterKeys[final]
		if !ok {
			return Input{}, false
		}
		code = KeyCode(k)
	}
	return Input{Code: code, Y: NoCoord, X: NoCoord, Mods: mods, Type: evt}, true
}

func kittyCode(cp int) (Code, bool) {
	switch cp {
	case 13:
		return KeyCode(KeyEnter), true
	case 8, 127:
		return KeyCode(KeyBackspace), true
	case Tab, Escape:
		return Rune(rune(cp)), true
	}
	if cp < Space || !utf8.ValidRune(rune(cp)) {
		return Code{}, false
	}
	return Rune(rune(cp)), true
}

// modParam reads the "mods[:event]" second parameter.
func modParam(ps [][]int) (Modifier, EventType) {
	m := param(ps, 1, 0, 1)
	if m < 1 {
		m = 1
	}
	evt := EventPress
	switch param(ps, 1, 1, 1) {
	case 2:
		evt = EventRepeat
	case 3:
		evt = EventRelease
	}
	return Modifier(m-1) & modMask, evt
}

// splitParams parses "a:b;c" into [[a b] [c]]. Missing values are -1.
// Private-mode prefixes and other non-numeric text fail.
func splitParams(s string) ([][]int, bool) {
	if s == "" {
		return nil, true
	}
	fields := strings.Split(s, ";")
	out := make([][]int, len(fields))
	for i, f := range fields {
		subs := strings.Split(f, ":")
		out[i] = make([]int, len(subs))
		for j, sub := range subs {
			if sub == "" {
				out[i][j] = -1
				continue
			}
			v, err := strconv.Atoi(sub)
			if err != nil || v < 0 {
				return nil, false
			}
			out[i][j] = v
		}
	}
	return out, true
}

func param(ps [][]int, i, j, def int) int {
	if i >= len(ps) || j >= len(ps[i]) || ps[i][j] < 0 {
		return def
	}
	return ps[i][j]
}

func parseSGRMouse(params string, release bool) (Input, bool) {
	ps, ok := splitParams(params)
	if !ok || len(ps) != 3 {
		return Input{}, false
	}
	cb, x, y := param(ps, 0, 0, -1), param(ps, 1, 0, -1), param(ps, 2, 0, -1)
	if cb < 0 || x < 1 || y < 1 {
		return Input{}, false
	}
	return mouseEvent(cb, y-1, x-1, release), true
}

// parseX10 handles the legacy "ESC [ M Cb Cx Cy" report.
func parseX10(b []byte) (Input, int, status) {
	if len(b) < 6 {
		return Input{}, 0, partial
	}
	cb, x, y := int(b[3])-32, int(b[4])-33, int(b[5])-33
	if cb < 0 || x < 0 || y < 0 {
		return Input{}, 6, skipped
	}
	release := cb&3 == 3 && cb&(32|64|128) == 0
	return mouseEvent(cb, y, x, release), 6, parsed
}

// mouseEvent decodes an xterm button byte. The low two bits pick the
// button, +64 shifts to the wheel buttons 4-7, +128 to buttons 8-11, and 32
// marks motion. Bits 4, 8 and 16 carry Shift, Alt and Ctrl.
func mouseEvent(cb, y, x int, release bool) Input {
	low := cb & 3
	motion := cb&32 != 0
	var btn Button
	switch {
	case cb&128 != 0:
		btn = Button(8 + low)
	case cb&64 != 0:
		btn = Button(4 + low)
	case low == 3:
		btn = ButtonNone
	default:
		btn = Button(1 + low)
	}

	var mods Modifier
	if cb&4 != 0 {
		mods |= ModShift
	}
	if cb&8 != 0 {
		mods |= ModAlt
	}
	if cb&16 != 0 {
		mods |= ModCtrl
	}

	t := EventPress
	if release {
		t = EventRelease
	}
	code := Code{kind: KindMouse, button: btn, motion: motion || (btn == ButtonNone && !release)}
	return Input{Code: code, Y: y, X: x, Mods: mods, Type: t}
}
