package gc9107

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/flavioheleno/thumbycolor/image565"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Opts is the configuration for the GC9107 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 128, must be ≤128)
	H int // Height (default: 128, must be ≤160)

	// Memory data access control payload (default: MADCTLMX|MADCTLBGR)
	MADCTL byte

	// Bus rates. Configuration runs at InitSpeed (default: 10MHz); the bus
	// is stepped up to Speed (default: 40MHz) once the display is on.
	InitSpeed physic.Frequency
	Speed     physic.Frequency

	// Optional pins
	RST gpio.PinOut // Reset pin (nil: rely on power-on reset)
	CS  gpio.PinOut // Chip select driven by the driver (nil: SPI port CS)
	BL  gpio.PinOut // Backlight (nil if not used)
}

// State is the position of the device in its power-on sequence.
type State uint8

const (
	Uninitialized State = iota
	Reset
	Configuring
	Active
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Reset:
		return "Reset"
	case Configuring:
		return "Configuring"
	case Active:
		return "Active"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Dev is the device handle for the GC9107 display.
type Dev struct {
	// Communication
	c    conn.Conn   // SPI connection
	port spi.Port    // Port, for bus rate changes
	dc   gpio.PinOut // Data/Command pin
	rst  gpio.PinOut // Reset pin (optional)
	cs   gpio.PinOut // Chip select pin (optional)
	bl   gpio.PinOut // Backlight pin (optional)

	// Display geometry
	rect   image.Rectangle
	madctl byte

	initSpeed physic.Frequency
	speed     physic.Frequency
	maxTx     int // Largest single transfer, 0 if unlimited

	// Scratch frame for Draw, allocated on first use
	next *image565.Frame

	// State
	state  State
	halted bool

	sleep func(time.Duration)
}

var _ display.Drawer = (*Dev)(nil)

// speedLimiter is implemented by ports that can change their clock after
// Connect, such as spi.PortCloser.
type speedLimiter interface {
	LimitSpeed(f physic.Frequency) error
}

// NewSPI creates a new GC9107 device connected via SPI.
//
// The SPI port is configured for Mode0 (CPOL=0, CPHA=0), 8-bit transfers.
// The dc (Data/Command) GPIO pin must be provided; low selects command mode.
//
// The panel is not touched until Init is called. opts can be nil to use
// defaults (128x128 display).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *Opts) (*Dev, error) {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.W == 0 {
		o.W = 128
	}
	if o.H == 0 {
		o.H = 128
	}
	if o.MADCTL == 0 {
		o.MADCTL = MADCTLMX | MADCTLBGR
	}
	if o.InitSpeed == 0 {
		o.InitSpeed = 10 * physic.MegaHertz
	}
	if o.Speed == 0 {
		o.Speed = 40 * physic.MegaHertz
	}

	if o.W < 0 || o.W > 128 {
		return nil, errors.New("gc9107: width must be between 1 and 128")
	}
	if o.H < 0 || o.H > 160 {
		return nil, errors.New("gc9107: height must be between 1 and 160")
	}
	if o.InitSpeed > o.Speed {
		return nil, errors.New("gc9107: init speed must not exceed speed")
	}
	if dc == nil {
		return nil, errors.New("gc9107: dc pin is required")
	}

	// Without LimitSpeed the rate set here is final, so it must be safe for
	// configuration.
	speed := o.Speed
	if _, ok := p.(speedLimiter); !ok {
		speed = o.InitSpeed
	}
	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("gc9107: %w", err)
	}

	d := &Dev{
		c:         c,
		port:      p,
		dc:        dc,
		rst:       o.RST,
		cs:        o.CS,
		bl:        o.BL,
		rect:      image.Rect(0, 0, o.W, o.H),
		madctl:    o.MADCTL,
		initSpeed: o.InitSpeed,
		speed:     o.Speed,
		sleep:     time.Sleep,
	}
	if l, ok := c.(conn.Limits); ok {
		d.maxTx = l.MaxTxSize() &^ 1
	}
	return d, nil
}

// step is one entry of the configuration sequence.
type step struct {
	cmd   Command
	delay time.Duration
}

// initSequence returns the configuration commands in the order the panel
// requires them. Sleep out carries the longest delay: the internal
// oscillator has to settle before anything else is accepted.
func initSequence(madctl byte) []step {
	return []step{
		{Command{swReset, nil}, 150 * time.Millisecond},
		{Command{sleepOut, nil}, 500 * time.Millisecond},
		{Command{memAccess, []byte{madctl}}, 0},
		{Command{pixelFmt, []byte{pixelFormat16}}, 0},
		// Controller-side inversion stays off; the inversion applied by
		// image565.Encode is unrelated to this register.
		{Command{invControl, []byte{0x00}}, 0},
		{Command{displayOn, nil}, 100 * time.Millisecond},
	}
}

// Init brings the controller from power-on to Active.
//
// It runs the hardware reset pulse, the configuration sequence at InitSpeed,
// then steps the bus up to Speed and turns the backlight on. Init can only
// run once per device.
func (d *Dev) Init() error {
	if d.state != Uninitialized {
		return errors.New("gc9107: already initialized")
	}

	d.state = Reset
	if err := d.limitSpeed(d.initSpeed); err != nil {
		return err
	}
	if err := d.reset(); err != nil {
		return err
	}

	d.state = Configuring
	for _, s := range initSequence(d.madctl) {
		if err := d.sendCommand(s.cmd); err != nil {
			return err
		}
		if s.delay > 0 {
			d.sleep(s.delay)
		}
	}

	if err := d.limitSpeed(d.speed); err != nil {
		return err
	}
	if d.bl != nil {
		if err := d.bl.Out(gpio.High); err != nil {
			return fmt.Errorf("gc9107: failed to turn backlight on: %w", err)
		}
	}
	d.state = Active
	return nil
}

// reset parks the control lines and pulses RST.
func (d *Dev) reset() error {
	if d.cs != nil {
		if err := d.cs.Out(gpio.High); err != nil {
			return fmt.Errorf("gc9107: failed to release CS: %w", err)
		}
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("gc9107: failed to set DC: %w", err)
	}
	if d.bl != nil {
		if err := d.bl.Out(gpio.Low); err != nil {
			return fmt.Errorf("gc9107: failed to turn backlight off: %w", err)
		}
	}
	if d.rst == nil {
		return nil
	}

	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("gc9107: failed to pull RST high: %w", err)
	}
	d.sleep(5 * time.Millisecond)

	if err := d.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("gc9107: failed to pull RST low: %w", err)
	}
	d.sleep(10 * time.Millisecond)

	if err := d.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("gc9107: failed to pull RST high: %w", err)
	}
	d.sleep(120 * time.Millisecond)
	return nil
}

// limitSpeed changes the bus clock when the port supports it.
func (d *Dev) limitSpeed(f physic.Frequency) error {
	l, ok := d.port.(speedLimiter)
	if !ok {
		return nil
	}
	if err := l.LimitSpeed(f); err != nil {
		return fmt.Errorf("gc9107: failed to set bus speed to %s: %w", f, err)
	}
	return nil
}

// transaction runs fn with chip select asserted and always releases it.
func (d *Dev) transaction(fn func() error) error {
	if d.cs != nil {
		if err := d.cs.Out(gpio.Low); err != nil {
			return fmt.Errorf("gc9107: failed to assert CS: %w", err)
		}
	}
	err := fn()
	if d.cs != nil {
		if cerr := d.cs.Out(gpio.High); cerr != nil && err == nil {
			err = fmt.Errorf("gc9107: failed to release CS: %w", cerr)
		}
	}
	return err
}

// sendCommand sends an opcode in command mode and its payload, if any, in
// data mode, within a single chip select window.
func (d *Dev) sendCommand(c Command) error {
	return d.transaction(func() error {
		if err := d.dc.Out(gpio.Low); err != nil {
			return err
		}
		if err := d.c.Tx([]byte{c.Op}, nil); err != nil {
			return fmt.Errorf("gc9107: command 0x%02X: %w", c.Op, err)
		}
		if len(c.Data) == 0 {
			return nil
		}
		return d.sendData(c.Data)
	})
}

// sendCommands sends a slice of commands.
func (d *Dev) sendCommands(cmds []Command) error {
	for _, c := range cmds {
		if err := d.sendCommand(c); err != nil {
			return err
		}
	}
	return nil
}

// sendData sends a slice of data bytes, split to the bus transfer limit.
func (d *Dev) sendData(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := len(data)
		if d.maxTx > 0 && n > d.maxTx {
			n = d.maxTx
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return fmt.Errorf("gc9107: data: %w", err)
		}
		data = data[n:]
	}
	return nil
}

// setWindow sets the inclusive addressing window and starts a memory write.
// Coordinates are clamped to the panel.
func (d *Dev) setWindow(x0, y0, x1, y1 int) error {
	clamp := func(v, limit int) uint16 {
		if v < 0 {
			return 0
		}
		if v > limit-1 {
			return uint16(limit - 1)
		}
		return uint16(v)
	}
	w, h := d.rect.Dx(), d.rect.Dy()
	return d.sendCommands(window(clamp(x0, w), clamp(y0, h), clamp(x1, w), clamp(y1, h)))
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// State returns the current power-on state.
func (d *Dev) State() State {
	return d.state
}

// Write streams a full frame of native pixels to the display.
// The data must be exactly Dx*Dy*2 bytes, in image565.Frame memory layout.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("gc9107: halted")
	}
	if d.state != Active {
		return 0, errors.New("gc9107: not initialized")
	}
	if len(pixels) != d.rect.Dx()*d.rect.Dy()*2 {
		return 0, errors.New("gc9107: invalid buffer size")
	}
	if err := d.setWindow(0, 0, d.rect.Dx()-1, d.rect.Dy()-1); err != nil {
		return 0, err
	}
	if err := d.transaction(func() error { return d.sendData(pixels) }); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Draw draws an image onto the display.
//
// The whole panel is rewritten on every call; pixels outside dst keep the
// content of previous Draw calls.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("gc9107: halted")
	}

	// Fast path: a full-size native frame is streamed as is.
	if f, ok := src.(*image565.Frame); ok && dst == d.rect && sp == (image.Point{}) && f.Rect == d.rect {
		_, err := d.Write(f.Pix)
		return err
	}

	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}
	if d.next == nil {
		d.next = image565.NewFrame(d.rect)
		d.next.Clear(image565.Black)
	}
	draw.Draw(d.next, dst, src, sp, draw.Src)
	_, err := d.Write(d.next.Pix)
	return err
}

// Halt turns the display and its backlight off.
// After calling Halt, Write and Draw fail.
func (d *Dev) Halt() error {
	d.halted = true
	if d.state != Active {
		return nil
	}
	if d.bl != nil {
		if err := d.bl.Out(gpio.Low); err != nil {
			return fmt.Errorf("gc9107: failed to turn backlight off: %w", err)
		}
	}
	return d.sendCommand(Command{displayOff, nil})
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("gc9107.Dev{%dx%d}", d.rect.Dx(), d.rect.Dy())
}
