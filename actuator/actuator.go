// Package actuator drives the Thumby Color RGB LED and vibration motor.
package actuator

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Period is the number of PWM counts per LED cycle. An 8-bit level maps to
// level/Period of full duty.
const Period = 255

// DefaultFrequency is the LED PWM frequency used when Opts.Frequency is 0.
const DefaultFrequency = 1 * physic.KiloHertz

// Pins maps the actuators to their output lines. Nil entries are skipped.
type Pins struct {
	R, G, B   gpio.PinOut // LED channels, PWM capable
	Vibration gpio.PinOut // Motor enable
}

// State is the last value written to the actuators.
type State struct {
	R, G, B   uint8
	Vibrating bool
}

// Controller owns the LED and motor lines.
type Controller struct {
	pins       Pins
	freq       physic.Frequency
	state      State
	configured bool
}

// New returns a Controller for pins. freq is the LED PWM frequency, 0 for
// DefaultFrequency.
func New(pins Pins, freq physic.Frequency) *Controller {
	if freq == 0 {
		freq = DefaultFrequency
	}
	return &Controller{pins: pins, freq: freq}
}

// Configure sets up the PWM channels with the LED dark and the motor off.
func (c *Controller) Configure() error {
	c.configured = true
	if err := c.write(State{}); err != nil {
		c.configured = false
		return err
	}
	return nil
}

// Duty converts an 8-bit level into a PWM duty cycle.
func Duty(level uint8) gpio.Duty {
	return gpio.Duty(int64(level) * int64(gpio.DutyMax) / Period)
}

// SetRGB sets the three LED channel intensities.
func (c *Controller) SetRGB(r, g, b uint8) error {
	s := c.state
	s.R, s.G, s.B = r, g, b
	return c.write(s)
}

// SetVibration turns the motor on for any nonzero strength. The motor has
// no speed control.
func (c *Controller) SetVibration(strength uint8) error {
	s := c.state
	s.Vibrating = strength != 0
	return c.write(s)
}

// State returns the last written state.
func (c *Controller) State() State {
	return c.state
}

// Halt turns the LED and the motor off.
func (c *Controller) Halt() error {
	if !c.configured {
		return nil
	}
	return c.write(State{})
}

func (c *Controller) write(s State) error {
	if !c.configured {
		return errors.New("actuator: not configured")
	}
	channels := []struct {
		name  string
		pin   gpio.PinOut
		level uint8
	}{
		{"red", c.pins.R, s.R},
		{"green", c.pins.G, s.G},
		{"blue", c.pins.B, s.B},
	}
	for _, ch := range channels {
		if ch.pin == nil {
			continue
		}
		if err := ch.pin.PWM(Duty(ch.level), c.freq); err != nil {
			return fmt.Errorf("actuator: %s: %w", ch.name, err)
		}
	}
	if c.pins.Vibration != nil {
		l := gpio.Low
		if s.Vibrating {
			l = gpio.High
		}
		if err := c.pins.Vibration.Out(l); err != nil {
			return fmt.Errorf("actuator: vibration: %w", err)
		}
	}
	c.state = s
	return nil
}
