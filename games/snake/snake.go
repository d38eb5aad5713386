// Package snake is the classic snake game on a grid of 8 pixel cells.
//
// The directional buttons steer; the snake cannot turn back on itself.
// Eating food grows it by one cell. Running into a wall or into itself ends
// the round, and A starts the next one.
package snake

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/flavioheleno/thumbycolor"
	"github.com/flavioheleno/thumbycolor/games"
	"github.com/flavioheleno/thumbycolor/image565"
	"github.com/flavioheleno/thumbycolor/input"
	"github.com/jonboulle/clockwork"
)

const (
	// Cell is the side of one grid cell in pixels.
	Cell = 8

	// MoveInterval is the time between two moves of the snake.
	MoveInterval = 200 * time.Millisecond

	startLen = 4

	// The top row holds the score.
	gridW   = games.Width / Cell
	gridH   = games.Height / Cell
	gridTop = 1

	crashBuzz = 300 * time.Millisecond
)

var (
	bodyColor = image565.Encode(0xFFFFFF)
	headColor = image565.Encode(0xFFFF00)
	foodColor = image565.Encode(0x00FF00)
	hudColor  = image565.Encode(0x202020)
)

type point struct {
	x, y int
}

func (p point) add(q point) point {
	return point{p.x + q.x, p.y + q.y}
}

var (
	up    = point{0, -1}
	down  = point{0, 1}
	left  = point{-1, 0}
	right = point{1, 0}
)

// Opts holds the optional dependencies of a Game.
type Opts struct {
	Clock clockwork.Clock // Move timing (default: the real clock)
	Rand  *rand.Rand      // Food placement (default: randomly seeded)
}

// Game is one snake session.
type Game struct {
	c     games.Console
	clock clockwork.Clock
	rand  *rand.Rand

	body     []point // Head first
	dir      point   // Direction of the last move
	next     point   // Direction of the coming move
	food     point
	lastMove time.Time
	score    int
	over     bool
	gate     games.Gate

	buzzUntil time.Time
	motor     bool
	lit       [3]uint8
	litValid  bool
}

// New returns a game ready for its first step. opts may be nil.
func New(c games.Console, opts *Opts) *Game {
	g := &Game{c: c, gate: games.Gate{Button: input.A}}
	if opts != nil {
		g.clock = opts.Clock
		g.rand = opts.Rand
	}
	if g.clock == nil {
		g.clock = clockwork.NewRealClock()
	}
	if g.rand == nil {
		g.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g.Reset()
	return g
}

// Reset starts a new round.
func (g *Game) Reset() {
	g.body = g.body[:0]
	for i := 0; i < startLen; i++ {
		g.body = append(g.body, point{5 - i, 5})
	}
	g.dir, g.next = right, right
	g.score = 0
	g.over = false
	g.lastMove = g.clock.Now()
	g.gate.Reset()
	g.spawnFood()
}

// Score returns the food eaten this round.
func (g *Game) Score() int {
	return g.score
}

// Len returns the length of the snake in cells.
func (g *Game) Len() int {
	return len(g.body)
}

// Over reports whether the round has ended.
func (g *Game) Over() bool {
	return g.over
}

// Step runs one frame. The snake only moves once per MoveInterval, so most
// steps just read the buttons and redraw.
func (g *Game) Step() error {
	now := g.clock.Now()
	if g.over {
		if g.gate.Step(g.c) {
			g.Reset()
		}
	} else {
		g.steer()
		if now.Sub(g.lastMove) >= MoveInterval {
			g.lastMove = now
			g.move(now)
		}
	}
	g.draw()
	if err := g.actuators(now); err != nil {
		return err
	}
	return g.c.Update()
}

func (g *Game) steer() {
	switch {
	case g.c.Pressed(input.Up) && g.dir.y == 0:
		g.next = up
	case g.c.Pressed(input.Down) && g.dir.y == 0:
		g.next = down
	case g.c.Pressed(input.Left) && g.dir.x == 0:
		g.next = left
	case g.c.Pressed(input.Right) && g.dir.x == 0:
		g.next = right
	}
}

func (g *Game) move(now time.Time) {
	g.dir = g.next
	head := g.body[0].add(g.dir)
	if head.x < 0 || head.x >= gridW || head.y < gridTop || head.y >= gridH {
		g.crash(now)
		return
	}
	eating := head == g.food
	// The tail moves out of the way unless the snake grows.
	body := g.body
	if !eating {
		body = body[:len(body)-1]
	}
	for _, p := range body {
		if p == head {
			g.crash(now)
			return
		}
	}

	g.body = append(g.body, point{})
	copy(g.body[1:], g.body)
	g.body[0] = head
	if !eating {
		g.body = g.body[:len(g.body)-1]
		return
	}
	g.score++
	g.spawnFood()
}

func (g *Game) crash(now time.Time) {
	g.over = true
	g.buzzUntil = now.Add(crashBuzz)
}

// spawnFood puts the food on a random free cell. A full grid ends the round.
func (g *Game) spawnFood() {
	free := gridW*(gridH-gridTop) - len(g.body)
	if free <= 0 {
		g.over = true
		return
	}
	n := g.rand.IntN(free)
	for y := gridTop; y < gridH; y++ {
		for x := 0; x < gridW; x++ {
			p := point{x, y}
			if g.occupied(p) {
				continue
			}
			if n == 0 {
				g.food = p
				return
			}
			n--
		}
	}
}

func (g *Game) occupied(p point) bool {
	for _, b := range g.body {
		if b == p {
			return true
		}
	}
	return false
}

func (g *Game) draw() {
	g.c.Clear(image565.Black)
	g.c.FillRect(0, 0, games.Width, gridTop*Cell, hudColor)
	g.c.DrawText(2, Cell-1, "SCORE "+strconv.Itoa(g.score), 0xFFFFFF)

	g.c.FillRect(g.food.x*Cell, g.food.y*Cell, Cell, Cell, foodColor)
	for i, p := range g.body {
		c := bodyColor
		if i == 0 {
			c = headColor
		}
		g.c.FillRect(p.x*Cell, p.y*Cell, Cell, Cell, c)
	}

	if g.over {
		const msg, hint = "GAME OVER", "press A"
		g.c.DrawText((games.Width-thumbycolor.TextWidth(msg))/2, 62, msg, 0xFF0000)
		g.c.DrawText((games.Width-thumbycolor.TextWidth(hint))/2, 74, hint, 0xFFFFFF)
	}
}

// actuators runs the motor briefly after a crash and shows the round state
// on the LED, writing only what changed.
func (g *Game) actuators(now time.Time) error {
	motor := now.Before(g.buzzUntil)
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

	want := [3]uint8{0, 64, 0}
	if g.over {
		want = [3]uint8{255, 0, 0}
	}
	if !g.litValid || want != g.lit {
		if err := g.c.SetRGB(want[0], want[1], want[2]); err != nil {
			return err
		}
		g.lit, g.litValid = want, true
	}
	return nil
}
