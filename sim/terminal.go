package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/flavioheleno/thumbycolor/input"
	"golang.org/x/term"
)

// DefaultHold is how long a terminal key press holds its button.
const DefaultHold = 150 * time.Millisecond

// keyParser decodes a raw terminal byte stream into buttons. Arrow keys
// arrive as ESC [ A..D.
type keyParser struct {
	state int
}

// feed consumes one byte. ok is set when a button was decoded; quit when
// the user asked to leave.
func (k *keyParser) feed(c byte) (b input.Button, ok, quit bool) {
	switch k.state {
	case 1:
		k.state = 0
		if c == '[' || c == 'O' {
			k.state = 2
			return 0, false, false
		}
	case 2:
		k.state = 0
		switch c {
		case 'A':
			return input.Up, true, false
		case 'B':
			return input.Down, true, false
		case 'C':
			return input.Right, true, false
		case 'D':
			return input.Left, true, false
		}
		return 0, false, false
	}

	switch c {
	case 0x1B:
		k.state = 1
	case 'z', 'Z':
		return input.A, true, false
	case 'x', 'X':
		return input.B, true, false
	case 'a', 'A':
		return input.BumperLeft, true, false
	case 's', 'S':
		return input.BumperRight, true, false
	case '\r', '\n':
		return input.Menu, true, false
	case 'q', 'Q', 0x03:
		return 0, false, true
	}
	return 0, false, false
}

// TerminalKeys holds buttons of a Board from key presses read on a
// terminal. Terminals report presses only, so each key holds its button for
// a fixed time.
//
// Poll must be called from the goroutine that steps the engine.
type TerminalKeys struct {
	b    *Board
	in   io.Reader
	hold time.Duration

	events chan input.Button
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once

	until [input.NumButtons]time.Time

	fd       int
	oldState *term.State
}

// NewTerminalKeys reads key presses from in. hold of 0 means DefaultHold.
func NewTerminalKeys(b *Board, in io.Reader, hold time.Duration) *TerminalKeys {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &TerminalKeys{
		b:      b,
		in:     in,
		hold:   hold,
		events: make(chan input.Button, 64),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start puts the terminal in raw mode, when in is one, and begins reading.
// Call Stop to restore it.
func (t *TerminalKeys) Start() error {
	if f, ok := t.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
		st, err := term.MakeRaw(t.fd)
		if err != nil {
			return fmt.Errorf("sim: failed to set raw mode: %w", err)
		}
		t.oldState = st
	}

	go func() {
		defer close(t.done)
		var p keyParser
		buf := make([]byte, 16)
		for {
			n, err := t.in.Read(buf)
			for _, c := range buf[:n] {
				b, ok, quit := p.feed(c)
				if quit {
					t.once.Do(func() { close(t.quit) })
					return
				}
				if ok {
					select {
					case t.events <- b:
					default:
						// Nobody is polling; drop the key.
					}
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

// Stop restores the terminal. The reader goroutine ends with the input.
func (t *TerminalKeys) Stop() {
	if t.oldState != nil {
		_ = term.Restore(t.fd, t.oldState)
		t.oldState = nil
	}
}

// Quit is closed when the user presses q or Ctrl-C.
func (t *TerminalKeys) Quit() <-chan struct{} {
	return t.quit
}

// Done is closed when the input is exhausted.
func (t *TerminalKeys) Done() <-chan struct{} {
	return t.done
}

// Poll applies pending key presses and releases buttons whose hold time
// has passed.
func (t *TerminalKeys) Poll(now time.Time) {
drain:
	for {
		select {
		case b := <-t.events:
			t.until[b] = now.Add(t.hold)
		default:
			break drain
		}
	}
	for b := input.Button(0); b < input.NumButtons; b++ {
		if now.Before(t.until[b]) {
			t.b.Press(b)
		} else {
			t.b.Release(b)
		}
	}
}
