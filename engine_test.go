package thumbycolor

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/flavioheleno/thumbycolor/actuator"
	"github.com/flavioheleno/thumbycolor/gc9107"
	"github.com/flavioheleno/thumbycolor/image565"
	"github.com/flavioheleno/thumbycolor/input"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"
)

type fakePanel struct {
	inits   int
	writes  [][]byte
	halted  bool
	initErr error

	// Observed when Init runs.
	onInit func()
}

func (p *fakePanel) Init() error {
	p.inits++
	if p.onInit != nil {
		p.onInit()
	}
	return p.initErr
}

func (p *fakePanel) Write(pixels []byte) (int, error) {
	p.writes = append(p.writes, append([]byte(nil), pixels...))
	return len(pixels), nil
}

func (p *fakePanel) Halt() error {
	p.halted = true
	return nil
}

func (p *fakePanel) String() string { return "fakePanel" }

type testRig struct {
	eng     *Engine
	panel   *fakePanel
	buttons [input.NumButtons]*gpiotest.Pin
	led     [3]*gpiotest.Pin
	vib     *gpiotest.Pin
}

func newTestRig(panel Panel) *testRig {
	r := &testRig{vib: &gpiotest.Pin{N: "VIB"}}
	var pins input.Pins
	for b := input.Button(0); b < input.NumButtons; b++ {
		r.buttons[b] = &gpiotest.Pin{N: b.String()}
		pins[b] = r.buttons[b]
	}
	for i := range r.led {
		r.led[i] = &gpiotest.Pin{N: "LED"}
	}
	act := actuator.New(actuator.Pins{R: r.led[0], G: r.led[1], B: r.led[2], Vibration: r.vib}, 0)
	if panel == nil {
		panel = &fakePanel{}
	}
	if fp, ok := panel.(*fakePanel); ok {
		r.panel = fp
	}
	r.eng = New(panel, input.NewReader(pins), act, nil)
	return r
}

func TestBeginOrder(t *testing.T) {
	r := newTestRig(nil)
	r.eng.FillRect(0, 0, Width, Height, image565.White)

	var pwmReady, pullUps bool
	r.panel.onInit = func() {
		pwmReady = r.led[0].F != 0
		pullUps = r.buttons[input.A].P == gpio.PullUp
	}
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	if !pwmReady {
		t.Error("display initialized before the PWM channels")
	}
	if !pullUps {
		t.Error("display initialized before the button lines")
	}
	if r.panel.inits != 1 {
		t.Errorf("panel Init calls = %d, want 1", r.panel.inits)
	}
	for i, p := range r.led {
		if p.D != actuator.Duty(128) {
			t.Errorf("LED channel %d duty = %d, want %d", i, p.D, actuator.Duty(128))
		}
	}
	if got := r.eng.Frame().Pixel565At(64, 64); got != image565.Black {
		t.Errorf("frame not cleared to black, got 0x%04X", got)
	}
	if len(r.panel.writes) != 0 {
		t.Error("Begin pushed a frame")
	}
}

func TestBeginTwice(t *testing.T) {
	r := newTestRig(nil)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := r.eng.Begin(); err == nil || err.Error() != "thumbycolor: already started" {
		t.Errorf("second Begin() error = %v", err)
	}
}

func TestBeginPanelError(t *testing.T) {
	panel := &fakePanel{initErr: errors.New("gc9107: no ack")}
	r := newTestRig(panel)
	err := r.eng.Begin()
	if err == nil || err.Error() != "thumbycolor: gc9107: no ack" {
		t.Errorf("Begin() error = %v, want 'thumbycolor: gc9107: no ack'", err)
	}
	if err := r.eng.Update(); err == nil {
		t.Error("Update should fail after a failed Begin")
	}
}

func TestBeforeBegin(t *testing.T) {
	r := newTestRig(nil)
	if err := r.eng.Update(); err == nil || err.Error() != "thumbycolor: not started" {
		t.Errorf("Update() error = %v, want 'thumbycolor: not started'", err)
	}
	if err := r.eng.SetRGB(1, 2, 3); err == nil {
		t.Error("SetRGB should fail before Begin")
	}
	if err := r.eng.SetVibration(1); err == nil {
		t.Error("SetVibration should fail before Begin")
	}
	// Zero-valued fake lines read Low; unconfigured lines must still read up.
	if r.eng.Pressed(input.A) {
		t.Error("Pressed(A) = true before Begin")
	}
}

func TestUpdatePushesFrame(t *testing.T) {
	r := newTestRig(nil)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	red := image565.Encode(0xFF0000)
	r.eng.FillRect(0, 0, Width, Height, red)
	if err := r.eng.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(r.panel.writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(r.panel.writes))
	}
	want := bytes.Repeat([]byte{0xFF, 0xE0}, Width*Height)
	if !bytes.Equal(r.panel.writes[0], want) {
		t.Error("pushed frame is not all red")
	}
}

func TestDrawingSurface(t *testing.T) {
	r := newTestRig(nil)
	blue := image565.Encode(0x0000FF)
	green := image565.Encode(0x00FF00)

	r.eng.Clear(image565.White)
	r.eng.DrawPixel(1, 2, blue)
	r.eng.DrawPixel(-1, 500, blue)
	r.eng.DrawRect(10, 10, 5, 5, green)
	r.eng.FillRect(-5, -5, 10, 10, blue)

	f := r.eng.Frame()
	tests := []struct {
		x, y int
		want image565.Pixel
	}{
		{1, 2, blue},
		{4, 4, blue},
		{5, 5, image565.White},
		{10, 10, green},
		{14, 14, green},
		{12, 12, image565.White},
	}
	for _, tt := range tests {
		if got := f.Pixel565At(tt.x, tt.y); got != tt.want {
			t.Errorf("Pixel565At(%d, %d) = 0x%04X, want 0x%04X", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestButtons(t *testing.T) {
	r := newTestRig(nil)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	r.buttons[input.Left].L = gpio.Low
	r.buttons[input.B].L = gpio.Low

	if !r.eng.Pressed(input.Left) {
		t.Error("Pressed(Left) = false with the line low")
	}
	if r.eng.Pressed(input.Right) {
		t.Error("Pressed(Right) = true with the line high")
	}
	s := r.eng.Buttons()
	if !s.Active(input.Left) || !s.Active(input.B) || s.Active(input.A) {
		t.Errorf("Buttons() = %s, want [Left B]", s)
	}
}

func TestActuators(t *testing.T) {
	r := newTestRig(nil)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := r.eng.SetRGB(255, 0, 64); err != nil {
		t.Fatalf("SetRGB() error = %v", err)
	}
	if err := r.eng.SetVibration(200); err != nil {
		t.Fatalf("SetVibration() error = %v", err)
	}
	want := actuator.State{R: 255, B: 64, Vibrating: true}
	if got := r.eng.Actuators(); got != want {
		t.Errorf("Actuators() = %+v, want %+v", got, want)
	}
	if r.vib.L != gpio.High {
		t.Error("vibration line low while vibrating")
	}
}

func TestHalt(t *testing.T) {
	r := newTestRig(nil)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if err := r.eng.SetVibration(1); err != nil {
		t.Fatal(err)
	}
	if err := r.eng.Halt(); err != nil {
		t.Fatalf("Halt() error = %v", err)
	}
	if !r.panel.halted {
		t.Error("panel not halted")
	}
	if r.vib.L != gpio.Low || r.led[0].D != 0 {
		t.Error("actuators left on after Halt")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRig(nil)
	r.eng.logger = log.New(&buf, "", 0)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if !strings.Contains(buf.String(), "display setup complete: fakePanel") {
		t.Errorf("log = %q, want display setup message", buf.String())
	}
}

func TestDisplayer(t *testing.T) {
	r := newTestRig(nil)
	if x, y := r.eng.Size(); x != Width || y != Height {
		t.Errorf("Size() = %d, %d, want %d, %d", x, y, Width, Height)
	}
	r.eng.SetPixel(3, 4, color.RGBA{R: 0xFF, A: 0xFF})
	r.eng.SetPixel(-1, 200, color.RGBA{R: 0xFF, A: 0xFF})
	if got, want := r.eng.Frame().Pixel565At(3, 4), image565.Encode(0xFF0000); got != want {
		t.Errorf("Pixel565At(3, 4) = 0x%04X, want 0x%04X", got, want)
	}
	if err := r.eng.Display(); err == nil {
		t.Error("Display should fail before Begin")
	}
}

func TestDrawText(t *testing.T) {
	r := newTestRig(nil)
	r.eng.DrawText(2, 12, "HI", 0xFFFFFF)

	f := r.eng.Frame()
	var lit int
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if f.Pixel565At(x, y) != image565.White {
				continue
			}
			lit++
			if x >= 2+TextWidth("HI")+8 || y > 12 {
				t.Fatalf("text pixel at (%d, %d) outside its line box", x, y)
			}
		}
	}
	if lit == 0 {
		t.Error("DrawText drew nothing")
	}
}

func TestDrawTextClipped(t *testing.T) {
	r := newTestRig(nil)
	before := append([]byte(nil), r.eng.Frame().Pix...)
	r.eng.DrawText(Width+10, -20, "offscreen", 0xFFFFFF)
	if !bytes.Equal(before, r.eng.Frame().Pix) {
		t.Error("offscreen text modified the frame")
	}
}

func TestWaitPressed(t *testing.T) {
	PollInterval = time.Millisecond
	r := newTestRig(nil)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		_ = r.buttons[input.Menu].Out(gpio.Low)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.eng.WaitPressed(ctx, input.Menu); err != nil {
		t.Fatalf("WaitPressed() error = %v", err)
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		_ = r.buttons[input.Menu].Out(gpio.High)
	}()
	if err := r.eng.WaitReleased(ctx, input.Menu); err != nil {
		t.Fatalf("WaitReleased() error = %v", err)
	}
}

func TestWaitReturnsImmediately(t *testing.T) {
	r := newTestRig(nil)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A released button satisfies WaitReleased without looking at ctx.
	if err := r.eng.WaitReleased(ctx, input.A); err != nil {
		t.Errorf("WaitReleased() error = %v, want nil", err)
	}
}

func TestWaitCancelled(t *testing.T) {
	PollInterval = time.Millisecond
	r := newTestRig(nil)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.eng.WaitPressed(ctx, input.A); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitPressed() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestEndToEndRedFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("runs the full display power-on delays")
	}
	rec := &spitest.Record{}
	dev, err := gc9107.NewSPI(rec, &gpiotest.Pin{N: "DC"}, nil)
	if err != nil {
		t.Fatalf("NewSPI() error = %v", err)
	}
	r := newTestRig(dev)
	if err := r.eng.Begin(); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	r.eng.FillRect(0, 0, Width, Height, image565.Encode(0xFF0000))
	if err := r.eng.Update(); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	stream := rec.Ops[len(rec.Ops)-1].W
	if len(stream) != Width*Height*2 {
		t.Fatalf("stream length = %d, want %d", len(stream), Width*Height*2)
	}
	for i := 0; i < len(stream); i += 2 {
		if got := image565.Pixel(stream[i]) | image565.Pixel(stream[i+1])<<8; got != image565.Encode(0xFF0000) {
			t.Fatalf("pixel %d = 0x%04X, want 0x%04X", i/2, got, image565.Encode(0xFF0000))
		}
	}
}
