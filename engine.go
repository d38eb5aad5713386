package thumbycolor

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/flavioheleno/thumbycolor/actuator"
	"github.com/flavioheleno/thumbycolor/image565"
	"github.com/flavioheleno/thumbycolor/input"
)

// Display dimensions in pixels.
const (
	Width  = 128
	Height = 128
)

// Panel is the display the engine pushes frames to. *gc9107.Dev implements
// it.
type Panel interface {
	Init() error
	Write(pixels []byte) (int, error)
	Halt() error
	String() string
}

// Opts is the configuration for the Engine.
type Opts struct {
	// Logger receives start-up milestones. Nil disables logging.
	Logger *log.Logger
}

// Engine ties the frame, the display, the buttons and the actuators
// together behind the drawing surface used by games.
//
// An Engine is not safe for concurrent use. Drawing calls and Update must
// come from the same goroutine.
type Engine struct {
	panel  Panel
	input  *input.Reader
	act    *actuator.Controller
	frame  *image565.Frame
	logger *log.Logger
	begun  bool
}

// New returns an Engine owning a fresh Width×Height frame. Nothing is sent to
// the hardware until Begin.
func New(panel Panel, in *input.Reader, act *actuator.Controller, opts *Opts) *Engine {
	e := &Engine{
		panel: panel,
		input: in,
		act:   act,
		frame: image565.NewFrame(image.Rect(0, 0, Width, Height)),
	}
	if opts != nil {
		e.logger = opts.Logger
	}
	e.frame.Clear(image565.Black)
	return e
}

// Begin brings the hardware up.
//
// The actuator PWM channels and the button lines are configured first, then
// the display runs its power-on sequence, the frame is cleared to black and
// the LED is set to a neutral level.
func (e *Engine) Begin() error {
	if e.begun {
		return errors.New("thumbycolor: already started")
	}
	if err := e.act.Configure(); err != nil {
		return fmt.Errorf("thumbycolor: %w", err)
	}
	if err := e.input.Configure(); err != nil {
		return fmt.Errorf("thumbycolor: %w", err)
	}
	if err := e.panel.Init(); err != nil {
		return fmt.Errorf("thumbycolor: %w", err)
	}
	e.logf("display setup complete: %s", e.panel)

	e.frame.Clear(image565.Black)
	if err := e.act.SetRGB(128, 128, 128); err != nil {
		return fmt.Errorf("thumbycolor: %w", err)
	}
	e.begun = true
	return nil
}

// Update pushes the frame to the display. It does no pacing; callers sleep
// between frames themselves.
func (e *Engine) Update() error {
	if !e.begun {
		return errors.New("thumbycolor: not started")
	}
	if _, err := e.panel.Write(e.frame.Pix); err != nil {
		return fmt.Errorf("thumbycolor: %w", err)
	}
	return nil
}

// Clear sets every pixel of the frame to p.
func (e *Engine) Clear(p image565.Pixel) {
	e.frame.Clear(p)
}

// DrawPixel sets one pixel. Out-of-range coordinates are ignored.
func (e *Engine) DrawPixel(x, y int, p image565.Pixel) {
	e.frame.SetPixel565(x, y, p)
}

// DrawRect draws the outline of the w×h rectangle at (x, y).
func (e *Engine) DrawRect(x, y, w, h int, p image565.Pixel) {
	e.frame.DrawRect(x, y, w, h, p)
}

// FillRect fills the w×h rectangle at (x, y), clipped to the screen.
func (e *Engine) FillRect(x, y, w, h int, p image565.Pixel) {
	e.frame.FillRect(x, y, w, h, p)
}

// Pressed reports whether b is held right now.
func (e *Engine) Pressed(b input.Button) bool {
	return e.input.Active(b)
}

// Buttons samples every button.
func (e *Engine) Buttons() input.State {
	return e.input.Sample()
}

// SetRGB sets the LED color.
func (e *Engine) SetRGB(r, g, b uint8) error {
	if err := e.act.SetRGB(r, g, b); err != nil {
		return fmt.Errorf("thumbycolor: %w", err)
	}
	return nil
}

// SetVibration turns the motor on for any nonzero strength.
func (e *Engine) SetVibration(strength uint8) error {
	if err := e.act.SetVibration(strength); err != nil {
		return fmt.Errorf("thumbycolor: %w", err)
	}
	return nil
}

// Actuators returns the last LED and motor state written.
func (e *Engine) Actuators() actuator.State {
	return e.act.State()
}

// Frame returns the frame the engine draws into. It must not be modified
// while Update runs.
func (e *Engine) Frame() *image565.Frame {
	return e.frame
}

// Halt turns the actuators and the display off.
func (e *Engine) Halt() error {
	return errors.Join(e.act.Halt(), e.panel.Halt())
}

func (e *Engine) logf(format string, v ...interface{}) {
	if e.logger != nil {
		e.logger.Printf(format, v...)
	}
}
