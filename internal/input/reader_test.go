package input

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestReaderPollEmpty(t *testing.T) {
	r := NewReader(NewMemorySource())
	if _, err := r.Get(context.Background(), 0); !errors.Is(err, ErrNoInput) {
		t.Errorf("err = %v, want ErrNoInput", err)
	}
}

func TestReaderTimedEmpty(t *testing.T) {
	r := NewReader(NewMemorySource())
	start := time.Now()
	if _, err := r.Get(context.Background(), 20*time.Millisecond); !errors.Is(err, ErrNoInput) {
		t.Errorf("err = %v, want ErrNoInput", err)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Error("timed read returned too early")
	}
}

func TestReaderBlockingRead(t *testing.T) {
	src := NewMemorySource()
	r := NewReader(src)
	go func() {
		time.Sleep(10 * time.Millisecond)
		_, _ = src.WriteString("\x1b[A")
	}()
	in, err := r.Get(context.Background(), -1)
	if err != nil {
		t.Fatal(err)
	}
	if !in.Code.IsKey(KeyUp) {
		t.Errorf("got %v, want Up", in)
	}
}

func TestReaderPostAndResize(t *testing.T) {
	src := NewMemorySource()
	r := NewReader(src)
	r.Post(RuneInput('p'))
	r.InjectResize()

	in, err := r.Get(context.Background(), 0)
	if err != nil || !in.Code.IsRune('p') {
		t.Fatalf("first = %v, %v", in, err)
	}
	in, err = r.Get(context.Background(), 0)
	if err != nil || !in.Code.IsKey(KeyResize) {
		t.Fatalf("second = %v, %v", in, err)
	}
	if in.Y != NoCoord || in.X != NoCoord {
		t.Errorf("resize carries coordinates (%d,%d)", in.Y, in.X)
	}
	s := r.Stats()
	if s.Posted != 1 || s.Resizes != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestReaderPostWakesBlockedRead(t *testing.T) {
	r := NewReader(NewMemorySource())
	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Post(RuneInput('z'))
	}()
	in, err := r.Get(context.Background(), time.Second)
	if err != nil || !in.Code.IsRune('z') {
		t.Errorf("got %v, %v", in, err)
	}
}

func TestReaderEscapeTimeout(t *testing.T) {
	src := NewMemorySource()
	r := NewReader(src)
	_, _ = src.Write([]byte{Escape})
	in, err := r.Get(context.Background(), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if !in.Code.IsRune(Escape) || !in.NoMod() {
		t.Errorf("got %v, want literal ESC", in)
	}
}

func TestReaderEOF(t *testing.T) {
	src := NewMemorySource()
	r := NewReader(src)
	_, _ = src.WriteString("a")
	_ = src.Close()

	ctx := context.Background()
	in, err := r.Get(ctx, -1)
	if err != nil || !in.Code.IsRune('a') {
		t.Fatalf("first = %v, %v", in, err)
	}
	in, err = r.Get(ctx, -1)
	if err != nil || !in.Code.IsKey(KeyEOF) {
		t.Fatalf("second = %v, %v, want EOF key", in, err)
	}
	if _, err := r.Get(ctx, -1); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestReaderSourceError(t *testing.T) {
	src := NewMemorySource()
	boom := errors.New("terminal went away")
	src.CloseWithError(boom)
	r := NewReader(src)
	if _, err := r.Get(context.Background(), -1); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

type interruptedSource struct{}

func (interruptedSource) Wait(context.Context, time.Duration) (bool, error) {
	return false, ErrInterrupted
}

func (interruptedSource) Read([]byte) (int, error) { return 0, nil }

func TestReaderInterrupted(t *testing.T) {
	r := NewReader(interruptedSource{})
	if _, err := r.Get(context.Background(), -1); !errors.Is(err, ErrInterrupted) {
		t.Errorf("err = %v, want ErrInterrupted", err)
	}
}

func TestReaderContextCancel(t *testing.T) {
	r := NewReader(NewMemorySource())
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if _, err := r.Get(ctx, -1); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestReaderGetVec(t *testing.T) {
	src := NewMemorySource()
	r := NewReader(src)
	_, _ = src.WriteString("abc")
	ctx := context.Background()

	got, err := r.GetVec(ctx, 2, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || !got[0].Code.IsRune('a') || !got[1].Code.IsRune('b') {
		t.Fatalf("GetVec(2) = %v", got)
	}
	got, err = r.GetVec(ctx, 10, -1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Code.IsRune('c') {
		t.Errorf("GetVec(10) = %v", got)
	}
	if got, err := r.GetVec(ctx, 0, -1); got != nil || err != nil {
		t.Errorf("GetVec(0) = %v, %v", got, err)
	}
}

func TestCollectVec(t *testing.T) {
	errBoom := errors.New("boom")
	tests := []struct {
		name    string
		queue   []Input
		failure error
		n       int
		want    string
		wantErr error
	}{
		{"partial", []Input{RuneInput('a'), RuneInput('b')}, nil, 5, "ab", nil},
		{"capped", []Input{RuneInput('a'), RuneInput('b'), RuneInput('c')}, nil, 2, "ab", nil},
		{"empty", nil, nil, 3, "", ErrNoInput},
		{"first fails", nil, errBoom, 3, "", errBoom},
		{"drain stops at failure", []Input{RuneInput('x')}, errBoom, 3, "x", nil},
		{"zero", []Input{RuneInput('a')}, nil, 0, "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := append([]Input(nil), tt.queue...)
			var timeouts []time.Duration
			poll := func(ctx context.Context, timeout time.Duration) (Input, error) {
				timeouts = append(timeouts, timeout)
				if len(queue) == 0 {
					if tt.failure != nil {
						return Input{}, tt.failure
					}
					return Input{}, ErrNoInput
				}
				in := queue[0]
				queue = queue[1:]
				return in, nil
			}

			got, err := CollectVec(context.Background(), poll, tt.n, time.Second)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			var sb strings.Builder
			for _, in := range got {
				r, _ := in.Code.Rune()
				sb.WriteRune(r)
			}
			if sb.String() != tt.want {
				t.Errorf("got %q, want %q", sb.String(), tt.want)
			}
			for i, d := range timeouts {
				want := time.Duration(0)
				if i == 0 {
					want = time.Second
				}
				if d != want {
					t.Errorf("poll %d timeout = %v, want %v", i, d, want)
				}
			}
		})
	}
}

func TestReaderDiscardStats(t *testing.T) {
	src := NewMemorySource()
	r := NewReader(src)
	_, _ = src.WriteString("\xffx")
	if _, err := r.Get(context.Background(), -1); err != nil {
		t.Fatal(err)
	}
	if s := r.Stats(); s.Discarded != 1 || s.Events != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestFromReader(t *testing.T) {
	src := FromReader(strings.NewReader("hi"))
	r := NewReader(src)
	ctx := context.Background()
	var got []rune
	for {
		in, err := r.Get(ctx, time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if in.Code.IsKey(KeyEOF) {
			break
		}
		c, _ := in.Code.Rune()
		got = append(got, c)
	}
	if string(got) != "hi" {
		t.Errorf("got %q", string(got))
	}
}
