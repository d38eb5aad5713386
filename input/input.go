// Package input samples the Thumby Color buttons.
//
// Every button is a GPIO line with the internal pull-up enabled; a pressed
// button shorts its line to ground. Samples are taken live on each call, no
// history is kept and no debouncing is applied.
package input

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
)

// Button identifies one of the physical buttons.
type Button uint8

const (
	Up Button = iota
	Down
	Left
	Right
	A
	B
	BumperLeft
	BumperRight
	Menu

	NumButtons // Number of buttons
)

var buttonNames = [NumButtons]string{
	"Up", "Down", "Left", "Right", "A", "B", "BumperLeft", "BumperRight", "Menu",
}

func (b Button) String() string {
	if b < NumButtons {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// Pins maps each button to its input line. Entries may be nil for buttons
// that are not wired.
type Pins [NumButtons]gpio.PinIn

// Reader samples a set of button lines.
type Reader struct {
	pins       Pins
	configured bool
}

// NewReader returns a Reader for pins. The lines are not touched until
// Configure is called.
func NewReader(pins Pins) *Reader {
	return &Reader{pins: pins}
}

// Configure switches every wired line to input with the pull-up enabled.
func (r *Reader) Configure() error {
	for b, p := range r.pins {
		if !usable(p) {
			continue
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return fmt.Errorf("input: %s: %w", Button(b), err)
		}
	}
	r.configured = true
	return nil
}

// Active reports whether b is held down right now.
//
// Lines that are not wired, or that have not been configured yet, read as
// released.
func (r *Reader) Active(b Button) bool {
	if !r.configured || b >= NumButtons {
		return false
	}
	p := r.pins[b]
	if !usable(p) {
		return false
	}
	return p.Read() == gpio.Low
}

// Sample returns the state of every button at once.
func (r *Reader) Sample() State {
	var s State
	for b := Button(0); b < NumButtons; b++ {
		if r.Active(b) {
			s |= 1 << b
		}
	}
	return s
}

// usable filters out unwired lines. gpio.INVALID reads Low, which would
// otherwise look like a held button.
func usable(p gpio.PinIn) bool {
	return p != nil && p != gpio.PinIn(gpio.INVALID)
}

// State is a bitmask snapshot of the buttons, bit n set for Button(n) held.
type State uint16

// Active reports whether b was held in this snapshot.
func (s State) Active(b Button) bool {
	return b < NumButtons && s&(1<<b) != 0
}

// Pressed reports whether b went down between prev and s.
func (s State) Pressed(prev State, b Button) bool {
	return s.Active(b) && !prev.Active(b)
}

// Released reports whether b went up between prev and s.
func (s State) Released(prev State, b Button) bool {
	return !s.Active(b) && prev.Active(b)
}

// Any reports whether at least one button is held.
func (s State) Any() bool {
	return s != 0
}

func (s State) String() string {
	out := "["
	for b := Button(0); b < NumButtons; b++ {
		if !s.Active(b) {
			continue
		}
		if len(out) > 1 {
			out += " "
		}
		out += b.String()
	}
	return out + "]"
}
