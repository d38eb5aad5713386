// Package board wires the Thumby Color peripherals to an Engine.
//
// Pins and the SPI port are looked up by name in the periph.io registries,
// so the same code runs against real host drivers and against the
// simulator, which registers fake pins under the same names.
package board

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/flavioheleno/thumbycolor"
	"github.com/flavioheleno/thumbycolor/actuator"
	"github.com/flavioheleno/thumbycolor/gc9107"
	"github.com/flavioheleno/thumbycolor/input"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// hostInit loads the periph.io host drivers.
var hostInit = func() error {
	_, err := host.Init()
	return err
}

// Config names the bus and every line of the board. Empty pin names leave
// the function unwired.
type Config struct {
	SPI string // SPI port name, "" for the first registered port

	DC  string
	CS  string // "" to let the SPI port drive chip select
	RST string
	BL  string

	Buttons   [input.NumButtons]string
	LEDR      string
	LEDG      string
	LEDB      string
	Vibration string

	InitSpeed physic.Frequency
	Speed     physic.Frequency
	PWM       physic.Frequency

	// SkipHost skips host driver initialization, for registries populated
	// by the simulator.
	SkipHost bool
}

// DefaultConfig returns the Thumby Color pin map.
func DefaultConfig() *Config {
	return &Config{
		DC:  "GPIO16",
		CS:  "GPIO17",
		RST: "GPIO4",
		BL:  "GPIO7",
		Buttons: [input.NumButtons]string{
			input.Up:          "GPIO1",
			input.Down:        "GPIO3",
			input.Left:        "GPIO0",
			input.Right:       "GPIO2",
			input.A:           "GPIO21",
			input.B:           "GPIO25",
			input.BumperLeft:  "GPIO6",
			input.BumperRight: "GPIO22",
			input.Menu:        "GPIO26",
		},
		LEDR:      "GPIO11",
		LEDG:      "GPIO10",
		LEDB:      "GPIO12",
		Vibration: "GPIO5",
		InitSpeed: 10 * physic.MegaHertz,
		Speed:     40 * physic.MegaHertz,
		PWM:       actuator.DefaultFrequency,
	}
}

// RegisterFlags binds every field of c to a flag in fs. Current values are
// the defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.SPI, "spi", c.SPI, "SPI port name (empty for default)")
	fs.StringVar(&c.DC, "dc", c.DC, "Data/Command GPIO pin name")
	fs.StringVar(&c.CS, "cs", c.CS, "Chip select GPIO pin name (empty for SPI port CS)")
	fs.StringVar(&c.RST, "rst", c.RST, "Display reset GPIO pin name (empty to skip)")
	fs.StringVar(&c.BL, "bl", c.BL, "Backlight GPIO pin name (empty to skip)")
	for b := input.Button(0); b < input.NumButtons; b++ {
		name := "btn-" + strings.ToLower(b.String())
		fs.StringVar(&c.Buttons[b], name, c.Buttons[b], b.String()+" button GPIO pin name")
	}
	fs.StringVar(&c.LEDR, "led-r", c.LEDR, "LED red PWM pin name")
	fs.StringVar(&c.LEDG, "led-g", c.LEDG, "LED green PWM pin name")
	fs.StringVar(&c.LEDB, "led-b", c.LEDB, "LED blue PWM pin name")
	fs.StringVar(&c.Vibration, "vib", c.Vibration, "Vibration motor GPIO pin name")
	fs.Var(&c.InitSpeed, "init-speed", "SPI clock during display configuration")
	fs.Var(&c.Speed, "speed", "SPI clock for frame transfers")
	fs.Var(&c.PWM, "pwm", "LED PWM frequency")
}

// Open initializes the host, resolves every configured line and returns an
// Engine ready for Begin. The returned Closer releases the SPI port.
func Open(c *Config, opts *thumbycolor.Opts) (*thumbycolor.Engine, io.Closer, error) {
	if !c.SkipHost {
		if err := hostInit(); err != nil {
			return nil, nil, fmt.Errorf("board: host init: %w", err)
		}
	}

	if c.DC == "" {
		return nil, nil, errors.New("board: dc pin is required")
	}
	l := lookup{}
	dc := l.pin("dc", c.DC)
	rst := l.pin("rst", c.RST)
	cs := l.pin("cs", c.CS)
	bl := l.pin("bl", c.BL)

	var buttons input.Pins
	for b := input.Button(0); b < input.NumButtons; b++ {
		buttons[b] = l.pin(strings.ToLower(b.String()), c.Buttons[b])
	}
	act := actuator.Pins{
		R:         l.pin("led-r", c.LEDR),
		G:         l.pin("led-g", c.LEDG),
		B:         l.pin("led-b", c.LEDB),
		Vibration: l.pin("vib", c.Vibration),
	}
	if l.err != nil {
		return nil, nil, l.err
	}

	port, err := spireg.Open(c.SPI)
	if err != nil {
		return nil, nil, fmt.Errorf("board: spi: %w", err)
	}

	o := &gc9107.Opts{
		InitSpeed: c.InitSpeed,
		Speed:     c.Speed,
		RST:       rst,
		CS:        cs,
		BL:        bl,
	}
	dev, err := gc9107.NewSPI(port, dc, o)
	if err != nil {
		port.Close()
		return nil, nil, err
	}

	eng := thumbycolor.New(dev, input.NewReader(buttons), actuator.New(act, c.PWM), opts)
	return eng, port, nil
}

// lookup resolves pin names and keeps the first failure.
type lookup struct {
	err error
}

func (l *lookup) pin(function, name string) gpio.PinIO {
	if name == "" || l.err != nil {
		return nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		l.err = fmt.Errorf("board: %s: pin %q not found", function, name)
	}
	return p
}
