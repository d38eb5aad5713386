package sim

import (
	"image"
	"image/color"
	"testing"

	"github.com/flavioheleno/thumbycolor/actuator"
	"github.com/flavioheleno/thumbycolor/board"
	"github.com/flavioheleno/thumbycolor/gc9107"
	"github.com/flavioheleno/thumbycolor/image565"
	"github.com/flavioheleno/thumbycolor/input"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
)

func newTestBoard(t *testing.T) (*Board, *board.Config) {
	t.Helper()
	cfg := board.DefaultConfig()
	b := NewBoard(cfg)
	if err := b.Register(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := b.Unregister(); err != nil {
			t.Error(err)
		}
	})
	return b, cfg
}

func TestNewBoard(t *testing.T) {
	cfg := board.DefaultConfig()
	b := NewBoard(cfg)
	if cfg.SPI != DefaultSPI {
		t.Fatalf("SPI = %q", cfg.SPI)
	}
	if !cfg.SkipHost {
		t.Fatal("host drivers not skipped")
	}
	if b.DC.Name() != cfg.DC || b.RST.Name() != cfg.RST {
		t.Fatalf("lines named %q %q", b.DC.Name(), b.RST.Name())
	}
	for i, p := range b.Buttons {
		if p.Name() != cfg.Buttons[i] {
			t.Errorf("button %d named %q, want %q", i, p.Name(), cfg.Buttons[i])
		}
		if p.Read() != gpio.High {
			t.Errorf("button %d not idle high", i)
		}
	}

	cfg = &board.Config{SPI: "X"}
	b = NewBoard(cfg)
	if cfg.SPI != "X" {
		t.Fatalf("SPI overwritten: %q", cfg.SPI)
	}
	if b.DC.Name() != "SIM_DC" || b.Buttons[input.Menu].Name() != "SIM_Menu" {
		t.Fatalf("fallback names %q %q", b.DC.Name(), b.Buttons[input.Menu].Name())
	}
}

func TestBoardRegister(t *testing.T) {
	cfg := board.DefaultConfig()
	b := NewBoard(cfg)
	if err := b.Register(); err != nil {
		t.Fatal(err)
	}
	if gpioreg.ByName(cfg.DC) == nil {
		t.Fatal("dc not registered")
	}
	if _, err := spireg.Open(cfg.SPI); err != nil {
		t.Fatal(err)
	}

	// A second board on the same names backs out.
	other := NewBoard(board.DefaultConfig())
	if err := other.Register(); err == nil {
		other.Unregister()
		t.Fatal("duplicate registration accepted")
	}
	if gpioreg.ByName(cfg.DC) != b.DC {
		t.Fatal("failed registration removed existing lines")
	}

	if err := b.Unregister(); err != nil {
		t.Fatal(err)
	}
	if gpioreg.ByName(cfg.DC) != nil {
		t.Fatal("dc still registered")
	}
	if _, err := spireg.Open(cfg.SPI); err == nil {
		t.Fatal("port still registered")
	}
	if err := b.Unregister(); err != nil {
		t.Fatal(err)
	}

	// Registering again works after a clean unregister.
	if err := b.Register(); err != nil {
		t.Fatal(err)
	}
	if err := b.Unregister(); err != nil {
		t.Fatal(err)
	}
}

func TestBoardButtons(t *testing.T) {
	b, _ := newTestBoard(t)
	r := input.NewReader(input.Pins{
		input.A:    b.Buttons[input.A],
		input.Left: b.Buttons[input.Left],
	})
	if err := r.Configure(); err != nil {
		t.Fatal(err)
	}
	b.Press(input.A)
	if got := r.Sample(); got != 1<<input.A {
		t.Fatalf("after press: %s", got)
	}
	b.SetButtons(1 << input.Left)
	if got := r.Sample(); got != 1<<input.Left {
		t.Fatalf("after SetButtons: %s", got)
	}
	b.Release(input.Left)
	b.Press(input.NumButtons) // Ignored
	if got := r.Sample(); got.Any() {
		t.Fatalf("after release: %s", got)
	}
}

func TestBoardActuators(t *testing.T) {
	b, _ := newTestBoard(t)
	c := actuator.New(actuator.Pins{R: b.LED[0], G: b.LED[1], B: b.LED[2], Vibration: b.Vibration}, 0)
	if err := c.Configure(); err != nil {
		t.Fatal(err)
	}
	if got := b.Actuators(); got != (actuator.State{}) {
		t.Fatalf("after configure: %+v", got)
	}
	for _, want := range []actuator.State{
		{R: 255, G: 128, B: 1},
		{R: 0, G: 0, B: 254, Vibrating: true},
		{R: 17, G: 34, B: 51},
	} {
		if err := c.SetRGB(want.R, want.G, want.B); err != nil {
			t.Fatal(err)
		}
		var v uint8
		if want.Vibrating {
			v = 255
		}
		if err := c.SetVibration(v); err != nil {
			t.Fatal(err)
		}
		if got := b.Actuators(); got != want {
			t.Fatalf("read back %+v, want %+v", got, want)
		}
	}
}

func TestLevel(t *testing.T) {
	for l := 0; l <= 255; l++ {
		if got := level(actuator.Duty(uint8(l))); got != uint8(l) {
			t.Fatalf("level(Duty(%d)) = %d", l, got)
		}
	}
	if got := level(-1); got != 0 {
		t.Fatalf("level(-1) = %d", got)
	}
	if got := level(gpio.DutyMax + 1); got != 255 {
		t.Fatalf("level(max+1) = %d", got)
	}
}

func TestBoardEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the full power-on delays")
	}
	b, cfg := newTestBoard(t)
	e, closer, err := board.Open(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	if err := e.Begin(); err != nil {
		t.Fatal(err)
	}
	if !b.Panel.On() {
		t.Fatal("panel not on after Begin")
	}
	if got := b.Panel.Speed(); got != cfg.Speed {
		t.Fatalf("bus at %s, want %s", got, cfg.Speed)
	}
	if got := b.Panel.PixelFormat(); got != 0x55 {
		t.Fatalf("pixel format %#x", got)
	}
	if got := b.Panel.MADCTL(); got != gc9107.MADCTLMX|gc9107.MADCTLBGR {
		t.Fatalf("MADCTL %#x", got)
	}
	ops := []byte{}
	for _, c := range b.Panel.Commands() {
		ops = append(ops, c.Op)
	}
	if want := []byte{0x01, 0x11, 0x36, 0x3A, 0xB4, 0x29}; string(ops) != string(want) {
		t.Fatalf("commands % X, want % X", ops, want)
	}
	if got := b.Actuators(); got != (actuator.State{R: 128, G: 128, B: 128}) {
		t.Fatalf("LED after Begin: %+v", got)
	}

	e.Clear(image565.Black)
	e.FillRect(0, 0, 64, 64, image565.Encode(0xFF0000))
	e.DrawPixel(127, 127, image565.Encode(0x0000FF))
	if err := e.Update(); err != nil {
		t.Fatal(err)
	}
	img := b.Panel.Image()
	cases := []struct {
		at   image.Point
		want color.RGBA
	}{
		{image.Pt(0, 0), color.RGBA{0xFF, 0, 0, 0xFF}},
		{image.Pt(63, 63), color.RGBA{0xFF, 0, 0, 0xFF}},
		{image.Pt(64, 0), color.RGBA{0, 0, 0, 0xFF}},
		{image.Pt(127, 127), color.RGBA{0, 0, 0xFF, 0xFF}},
	}
	for _, c := range cases {
		if got := img.RGBAAt(c.at.X, c.at.Y); got != c.want {
			t.Errorf("glass at %v = %v, want %v", c.at, got, c.want)
		}
	}

	b.Press(input.B)
	if !e.Pressed(input.B) {
		t.Fatal("B not seen by the engine")
	}

	if err := e.Halt(); err != nil {
		t.Fatal(err)
	}
	if b.Panel.On() {
		t.Fatal("panel on after Halt")
	}
}
