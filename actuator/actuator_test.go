package actuator

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

type testPins struct {
	r, g, b, vib *gpiotest.Pin
}

func newTestController() (*Controller, testPins) {
	p := testPins{
		r:   &gpiotest.Pin{N: "LED_R"},
		g:   &gpiotest.Pin{N: "LED_G"},
		b:   &gpiotest.Pin{N: "LED_B"},
		vib: &gpiotest.Pin{N: "VIB"},
	}
	c := New(Pins{R: p.r, G: p.g, B: p.b, Vibration: p.vib}, 0)
	return c, p
}

func TestDuty(t *testing.T) {
	tests := []struct {
		level uint8
		want  gpio.Duty
	}{
		{0, 0},
		{255, gpio.DutyMax},
		{128, gpio.Duty(128 * int64(gpio.DutyMax) / 255)},
		{1, gpio.Duty(int64(gpio.DutyMax) / 255)},
	}
	for _, tt := range tests {
		if got := Duty(tt.level); got != tt.want {
			t.Errorf("Duty(%d) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestConfigureStartsDark(t *testing.T) {
	c, p := newTestController()
	p.vib.L = gpio.High
	if err := c.Configure(); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	for _, pin := range []*gpiotest.Pin{p.r, p.g, p.b} {
		if pin.D != 0 {
			t.Errorf("%s duty = %d, want 0", pin.N, pin.D)
		}
		if pin.F != DefaultFrequency {
			t.Errorf("%s frequency = %s, want %s", pin.N, pin.F, DefaultFrequency)
		}
	}
	if p.vib.L != gpio.Low {
		t.Error("vibration line not low after Configure")
	}
}

func TestSetRGB(t *testing.T) {
	c, p := newTestController()
	if err := c.Configure(); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := c.SetRGB(255, 128, 0); err != nil {
		t.Fatalf("SetRGB() error = %v", err)
	}
	if p.r.D != gpio.DutyMax {
		t.Errorf("red duty = %d, want %d", p.r.D, gpio.DutyMax)
	}
	if p.g.D != Duty(128) {
		t.Errorf("green duty = %d, want %d", p.g.D, Duty(128))
	}
	if p.b.D != 0 {
		t.Errorf("blue duty = %d, want 0", p.b.D)
	}
	if got, want := c.State(), (State{R: 255, G: 128}); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
}

func TestSetVibration(t *testing.T) {
	tests := []struct {
		name     string
		strength uint8
		want     gpio.Level
	}{
		{"off", 0, gpio.Low},
		{"weak", 1, gpio.High},
		{"full", 255, gpio.High},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, p := newTestController()
			if err := c.Configure(); err != nil {
				t.Fatalf("Configure() error = %v", err)
			}
			if err := c.SetVibration(tt.strength); err != nil {
				t.Fatalf("SetVibration() error = %v", err)
			}
			if p.vib.L != tt.want {
				t.Errorf("vibration line = %s, want %s", p.vib.L, tt.want)
			}
			if c.State().Vibrating != (tt.want == gpio.High) {
				t.Errorf("State().Vibrating = %v", c.State().Vibrating)
			}
		})
	}
}

func TestNotConfigured(t *testing.T) {
	c, _ := newTestController()
	if err := c.SetRGB(1, 2, 3); err == nil || err.Error() != "actuator: not configured" {
		t.Errorf("SetRGB() error = %v, want 'actuator: not configured'", err)
	}
	if err := c.SetVibration(1); err == nil {
		t.Error("SetVibration should fail before Configure")
	}
	if err := c.Halt(); err != nil {
		t.Errorf("Halt() error = %v, want nil", err)
	}
}

func TestHalt(t *testing.T) {
	c, p := newTestController()
	if err := c.Configure(); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := c.SetRGB(10, 20, 30); err != nil {
		t.Fatal(err)
	}
	if err := c.SetVibration(1); err != nil {
		t.Fatal(err)
	}
	if err := c.Halt(); err != nil {
		t.Fatalf("Halt() error = %v", err)
	}
	if p.r.D != 0 || p.g.D != 0 || p.b.D != 0 || p.vib.L != gpio.Low {
		t.Error("Halt left an actuator on")
	}
	if c.State() != (State{}) {
		t.Errorf("State() = %+v, want zero", c.State())
	}
}

func TestMissingPinsAreSkipped(t *testing.T) {
	c := New(Pins{}, 2*physic.KiloHertz)
	if err := c.Configure(); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if err := c.SetRGB(1, 2, 3); err != nil {
		t.Errorf("SetRGB() error = %v", err)
	}
}

type failingPin struct {
	gpiotest.Pin
}

func (p *failingPin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("no PWM on this line")
}

func TestPWMError(t *testing.T) {
	c := New(Pins{G: &failingPin{}}, 0)
	err := c.Configure()
	if err == nil || err.Error() != "actuator: green: no PWM on this line" {
		t.Errorf("Configure() error = %v, want 'actuator: green: no PWM on this line'", err)
	}
	if err := c.SetRGB(1, 1, 1); err == nil {
		t.Error("SetRGB should fail after a failed Configure")
	}
}
