//go:build !headless

package sim

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/flavioheleno/thumbycolor/input"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
	"periph.io/x/conn/v3/gpio"
)

// WindowOpts configures RunWindow.
type WindowOpts struct {
	Scale         int    // Glass magnification (default: 4)
	Title         string // Window title
	ScreenshotDir string // Where F12 saves PNGs (default: current directory)
}

// windowKeys maps keyboard keys to buttons.
var windowKeys = []struct {
	key ebiten.Key
	btn input.Button
}{
	{ebiten.KeyArrowUp, input.Up},
	{ebiten.KeyArrowDown, input.Down},
	{ebiten.KeyArrowLeft, input.Left},
	{ebiten.KeyArrowRight, input.Right},
	{ebiten.KeyZ, input.A},
	{ebiten.KeyX, input.B},
	{ebiten.KeyA, input.BumperLeft},
	{ebiten.KeyS, input.BumperRight},
	{ebiten.KeyEnter, input.Menu},
}

const (
	statusHeight = 20
	sideWidth    = 28
	margin       = 6
)

// RunWindow opens a desktop window showing the glass of b and calls step
// once per tick at 60 ticks per second. Keyboard keys drive the buttons:
// arrows, Z and X for A and B, A and S for the bumpers, Enter for menu.
// F12 saves a screenshot and Escape closes the window.
//
// It blocks until the window closes or step fails.
func RunWindow(b *Board, step func() error, opts *WindowOpts) error {
	o := WindowOpts{}
	if opts != nil {
		o = *opts
	}
	if o.Scale <= 0 {
		o.Scale = 4
	}
	if o.Title == "" {
		o.Title = "Thumby Color simulator"
	}

	g := &windowGame{
		b:     b,
		step:  step,
		opts:  o,
		glass: image.NewRGBA(b.Panel.Bounds()),
	}
	w, h := g.Layout(0, 0)
	ebiten.SetWindowTitle(o.Title)
	ebiten.SetWindowSize(w, h)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type windowGame struct {
	b    *Board
	step func() error
	opts WindowOpts

	glass    *image.RGBA
	glassImg *ebiten.Image
	tick     uint64
	shots    int
	message  string
}

func (g *windowGame) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.screenshot()
	}

	var s input.State
	for _, k := range windowKeys {
		if ebiten.IsKeyPressed(k.key) {
			s |= 1 << k.btn
		}
	}
	g.b.SetButtons(s)

	if err := g.step(); err != nil {
		return err
	}
	g.tick++
	return nil
}

func (g *windowGame) screenshot() {
	g.shots++
	name := filepath.Join(g.opts.ScreenshotDir, fmt.Sprintf("thumbycolor-%s-%d.png", time.Now().Format("20060102-150405"), g.shots))
	f, err := os.Create(name)
	if err != nil {
		g.message = err.Error()
		return
	}
	defer f.Close()
	if err := Screenshot(f, g.b.Panel.Image(), g.opts.Scale); err != nil {
		g.message = err.Error()
		return
	}
	g.message = "saved " + name
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	if g.glassImg == nil {
		g.glassImg = ebiten.NewImage(g.glass.Bounds().Dx(), g.glass.Bounds().Dy())
	}
	g.b.Panel.RenderTo(g.glass)
	g.glassImg.WritePixels(g.glass.Pix)

	act := g.b.Actuators()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.opts.Scale), float64(g.opts.Scale))
	dx := float64(margin)
	if act.Vibrating {
		dx += float64(int(g.tick%2)*4 - 2)
	}
	op.GeoM.Translate(dx, margin)
	screen.DrawImage(g.glassImg, op)

	// LED swatch beside the glass.
	gw := g.glass.Bounds().Dx() * g.opts.Scale
	ebitenutil.DrawRect(screen, float64(gw+2*margin), margin, sideWidth-margin, sideWidth-margin, color.RGBA{act.R, act.G, act.B, 0xFF})

	status := fmt.Sprintf("%s frames:%d %s", g.b.Panel.Speed(), g.b.Panel.Frames(), g.buttons())
	if g.message != "" {
		status = g.message
	}
	gh := g.glass.Bounds().Dy() * g.opts.Scale
	text.Draw(screen, status, basicfont.Face7x13, margin, gh+margin+statusHeight-6, color.RGBA{0xDD, 0xDD, 0xDD, 0xFF})
}

func (g *windowGame) buttons() string {
	var s input.State
	for btn := input.Button(0); btn < input.NumButtons; btn++ {
		if g.b.Buttons[btn].Read() == gpio.Low {
			s |= 1 << btn
		}
	}
	return s.String()
}

func (g *windowGame) Layout(_, _ int) (int, int) {
	b := g.glass.Bounds()
	return b.Dx()*g.opts.Scale + 2*margin + sideWidth, b.Dy()*g.opts.Scale + 2*margin + statusHeight
}
