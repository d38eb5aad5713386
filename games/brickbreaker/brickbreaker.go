// Package brickbreaker is a paddle and ball game: clear the wall of bricks
// without letting the ball past the paddle.
//
// Left and right move the paddle. After a round ends, A starts the next
// one.
package brickbreaker

import (
	"math"

	"github.com/flavioheleno/thumbycolor"
	"github.com/flavioheleno/thumbycolor/games"
	"github.com/flavioheleno/thumbycolor/image565"
	"github.com/flavioheleno/thumbycolor/input"
)

const (
	rows     = 4
	cols     = 8
	brickW   = 14
	brickH   = 6
	brickGap = 2
	wallX    = (games.Width - (cols*(brickW+brickGap) - brickGap)) / 2
	wallY    = 10

	ballSize  = 4
	ballSpeed = 1.5

	paddleW     = 32
	paddleH     = 4
	paddleY     = games.Height - 10
	paddleSpeed = 3

	// hitPulse is how many steps the motor runs after a brick breaks.
	hitPulse = 6
)

var (
	ballColor   = image565.Encode(0x00FFFF)
	paddleColor = image565.Encode(0xFFFFFF)
	brickColor  = image565.Encode(0xFF6600)
)

type phase int

const (
	playing phase = iota
	won
	lost
)

type led struct {
	r, g, b uint8
}

// LED color for each phase.
var phaseLED = [...]led{
	playing: {0, 0, 64},
	won:     {0, 255, 0},
	lost:    {255, 0, 0},
}

// Game is one brick breaker session.
type Game struct {
	c games.Console

	ballX, ballY float64
	dx, dy       float64
	paddleX      int
	bricks       [rows * cols]bool // Standing bricks
	left         int

	phase phase
	gate  games.Gate

	buzz     int
	motor    bool
	lit      led
	litValid bool
}

// New returns a game ready for its first step.
func New(c games.Console) *Game {
	g := &Game{c: c, gate: games.Gate{Button: input.A}}
	g.Reset()
	return g
}

// Reset starts a new round.
func (g *Game) Reset() {
	g.ballX, g.ballY = games.Width/2, games.Height/2
	g.dx, g.dy = ballSpeed, -ballSpeed
	g.paddleX = (games.Width - paddleW) / 2
	for i := range g.bricks {
		g.bricks[i] = true
	}
	g.left = len(g.bricks)
	g.phase = playing
	g.gate.Reset()
}

// Remaining returns the number of bricks still standing.
func (g *Game) Remaining() int {
	return g.left
}

// Over reports whether the round has ended, and whether it was won.
func (g *Game) Over() (over, win bool) {
	return g.phase != playing, g.phase == won
}

// Step runs one frame.
func (g *Game) Step() error {
	if g.phase == playing {
		g.update()
		g.draw()
	} else {
		if g.gate.Step(g.c) {
			g.Reset()
			g.draw()
		} else {
			g.drawOver()
		}
	}
	if err := g.actuators(); err != nil {
		return err
	}
	return g.c.Update()
}

func brickPos(i int) (x, y int) {
	r, c := i/cols, i%cols
	return wallX + c*(brickW+brickGap), wallY + r*(brickH+brickGap)
}

func (g *Game) update() {
	if g.c.Pressed(input.Left) {
		g.paddleX = max(g.paddleX-paddleSpeed, 0)
	} else if g.c.Pressed(input.Right) {
		g.paddleX = min(g.paddleX+paddleSpeed, games.Width-paddleW)
	}

	g.ballX += g.dx
	g.ballY += g.dy

	if g.ballX <= 0 {
		g.ballX, g.dx = 0, math.Abs(g.dx)
	} else if g.ballX+ballSize >= games.Width {
		g.ballX, g.dx = games.Width-ballSize, -math.Abs(g.dx)
	}
	if g.ballY <= 0 {
		g.ballY, g.dy = 0, math.Abs(g.dy)
	}

	if g.ballY+ballSize >= games.Height {
		g.phase = lost
		return
	}

	bx, by := int(g.ballX), int(g.ballY)
	if g.dy > 0 && by+ballSize >= paddleY && bx+ballSize >= g.paddleX && bx <= g.paddleX+paddleW {
		g.dy = -g.dy
		g.ballY = paddleY - ballSize
	}

	for i, standing := range g.bricks {
		if !standing {
			continue
		}
		x, y := brickPos(i)
		if games.Overlap(bx, by, ballSize, ballSize, x, y, brickW, brickH) {
			g.bricks[i] = false
			g.left--
			g.dy = -g.dy
			g.buzz = hitPulse
			break
		}
	}

	if g.left == 0 {
		g.phase = won
	}
}

func (g *Game) draw() {
	g.c.Clear(image565.Black)
	g.c.FillRect(int(g.ballX), int(g.ballY), ballSize, ballSize, ballColor)
	g.c.FillRect(g.paddleX, paddleY, paddleW, paddleH, paddleColor)
	for i, standing := range g.bricks {
		if standing {
			x, y := brickPos(i)
			g.c.FillRect(x, y, brickW, brickH, brickColor)
		}
	}
}

func (g *Game) drawOver() {
	msg, fg, bar := "GAME OVER", uint32(0xFF0000), image565.Encode(0x330000)
	if g.phase == won {
		msg, fg, bar = "YOU WIN", 0x00FF00, image565.Encode(0x003300)
	}
	g.c.Clear(image565.Black)
	g.c.FillRect(16, 48, 96, 32, bar)
	g.c.DrawText((games.Width-thumbycolor.TextWidth(msg))/2, 62, msg, fg)
	const hint = "press A"
	g.c.DrawText((games.Width-thumbycolor.TextWidth(hint))/2, 74, hint, 0xFFFFFF)
}

// actuators drives the motor and LED, writing only what changed.
func (g *Game) actuators() error {
	motor := g.buzz > 0
	if g.buzz > 0 {
		g.buzz--
	}
	if motor != g.motor {
		var s uint8
		if motor {
			s = 255
		}
		if err := g.c.SetVibration(s); err != nil {
			return err
		}
		g.motor = motor
	}

	want := phaseLED[g.phase]
	if !g.litValid || want != g.lit {
		if err := g.c.SetRGB(want.r, want.g, want.b); err != nil {
			return err
		}
		g.lit, g.litValid = want, true
	}
	return nil
}
