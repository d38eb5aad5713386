// Package sim runs the engine without hardware.
//
// A Board holds fake GPIO lines and an emulated display controller and
// registers them with the periph.io registries under the names of a
// board.Config, so board.Open builds a regular Engine on top of them. The
// glass can then be shown in a desktop window, stepped headless or saved as
// PNG.
package sim

import (
	"errors"

	"github.com/flavioheleno/thumbycolor/actuator"
	"github.com/flavioheleno/thumbycolor/board"
	"github.com/flavioheleno/thumbycolor/input"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// DefaultSPI is the port name used when the config leaves it empty.
const DefaultSPI = "SIM_SPI"

// resetPin resets the panel while driven low.
type resetPin struct {
	gpiotest.Pin
	panel *Panel
}

func (p *resetPin) Out(l gpio.Level) error {
	if l == gpio.Low && p.panel != nil {
		p.panel.HardReset()
	}
	return p.Pin.Out(l)
}

// Board is a simulated Thumby Color.
type Board struct {
	Panel *Panel

	DC, CS, BL *gpiotest.Pin
	RST        *resetPin

	Buttons   [input.NumButtons]*gpiotest.Pin
	LED       [3]*gpiotest.Pin // Red, green, blue
	Vibration *gpiotest.Pin

	spiName    string
	registered []string
	spiAdded   bool
}

// NewBoard creates the lines named after c and a panel wired to them. c is
// updated so that board.Open finds the simulated port and skips host
// drivers.
func NewBoard(c *board.Config) *Board {
	if c.SPI == "" {
		c.SPI = DefaultSPI
	}
	c.SkipHost = true

	b := &Board{
		DC:        newPin(c.DC, "SIM_DC"),
		CS:        newPin(c.CS, "SIM_CS"),
		BL:        newPin(c.BL, "SIM_BL"),
		RST:       &resetPin{Pin: gpiotest.Pin{N: nameOr(c.RST, "SIM_RST"), L: gpio.High}},
		Vibration: newPin(c.Vibration, "SIM_VIB"),
		spiName:   c.SPI,
	}
	b.LED[0] = newPin(c.LEDR, "SIM_LEDR")
	b.LED[1] = newPin(c.LEDG, "SIM_LEDG")
	b.LED[2] = newPin(c.LEDB, "SIM_LEDB")
	for i := range b.Buttons {
		b.Buttons[i] = newPin(c.Buttons[i], "SIM_"+input.Button(i).String())
	}
	// Lines idle high until something drives them.
	b.CS.L = gpio.High
	b.DC.L = gpio.High
	for _, p := range b.Buttons {
		p.L = gpio.High
	}

	b.Panel = NewPanel(b.DC, b.BL)
	b.RST.panel = b.Panel
	return b
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func newPin(name, fallback string) *gpiotest.Pin {
	return &gpiotest.Pin{N: nameOr(name, fallback)}
}

// Register adds every line and the panel port to the periph.io registries.
func (b *Board) Register() error {
	pins := []gpio.PinIO{b.DC, b.CS, b.BL, b.RST, b.Vibration}
	for _, p := range b.LED {
		pins = append(pins, p)
	}
	for _, p := range b.Buttons {
		pins = append(pins, p)
	}
	for _, p := range pins {
		if err := gpioreg.Register(p); err != nil {
			b.Unregister()
			return err
		}
		b.registered = append(b.registered, p.Name())
	}
	opener := func() (spi.PortCloser, error) { return b.Panel, nil }
	if err := spireg.Register(b.spiName, nil, -1, opener); err != nil {
		b.Unregister()
		return err
	}
	b.spiAdded = true
	return nil
}

// Unregister removes everything Register added.
func (b *Board) Unregister() error {
	var errs []error
	for _, n := range b.registered {
		errs = append(errs, gpioreg.Unregister(n))
	}
	b.registered = nil
	if b.spiAdded {
		errs = append(errs, spireg.Unregister(b.spiName))
		b.spiAdded = false
	}
	return errors.Join(errs...)
}

// Press holds button btn down.
func (b *Board) Press(btn input.Button) {
	if btn < input.NumButtons {
		_ = b.Buttons[btn].Out(gpio.Low)
	}
}

// Release lets button btn up.
func (b *Board) Release(btn input.Button) {
	if btn < input.NumButtons {
		_ = b.Buttons[btn].Out(gpio.High)
	}
}

// SetButtons presses the buttons set in s and releases the others.
func (b *Board) SetButtons(s input.State) {
	for btn := input.Button(0); btn < input.NumButtons; btn++ {
		if s.Active(btn) {
			b.Press(btn)
		} else {
			b.Release(btn)
		}
	}
}

// Actuators reads the LED and motor state back from the output lines.
func (b *Board) Actuators() actuator.State {
	return actuator.State{
		R:         level(duty(b.LED[0])),
		G:         level(duty(b.LED[1])),
		B:         level(duty(b.LED[2])),
		Vibrating: b.Vibration.Read() == gpio.High,
	}
}

// duty reads the duty cycle last set on p.
func duty(p *gpiotest.Pin) gpio.Duty {
	p.Lock()
	defer p.Unlock()
	return p.D
}

// level converts a duty cycle back to its 8-bit level.
func level(d gpio.Duty) uint8 {
	if d <= 0 {
		return 0
	}
	if d >= gpio.DutyMax {
		return actuator.Period
	}
	return uint8((int64(d)*actuator.Period + int64(gpio.DutyMax)/2) / int64(gpio.DutyMax))
}
