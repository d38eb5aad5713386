package sim

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/flavioheleno/thumbycolor/gc9107"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Panel geometry. The controller RAM is taller than the glass.
const (
	ramWidth  = 128
	ramHeight = 160

	glassWidth  = 128
	glassHeight = 128
)

// payloadLen is the number of parameter bytes each opcode consumes.
var payloadLen = map[byte]int{
	0x2A: 4,
	0x2B: 4,
	0x36: 1,
	0x3A: 1,
	0xB4: 1,
}

// Panel emulates a GC9107 controller and its glass.
//
// It is an spi.PortCloser: every transfer is decoded according to the level
// of the DC line at the time of the call, low for opcodes and high for
// parameters or pixel data. The glass inverts every pixel word and the
// controller honors the BGR and mirror bits of the memory access control
// register, so a frame encoded with image565 renders with its true colors.
//
// All methods are safe for concurrent use.
type Panel struct {
	dc gpio.PinIn
	bl gpio.PinIn

	mu       sync.Mutex
	ram      [ramHeight][ramWidth]uint16
	log      []gc9107.Command
	cur      int // Index of the command receiving data, -1 if none
	madctl   byte
	pixfmt   byte
	invctl   byte
	sleeping bool
	on       bool
	col      [2]uint16
	row      [2]uint16
	x, y     uint16
	writing  bool
	pending  []byte
	frames   int
	speed    physic.Frequency
}

// NewPanel returns a powered-down panel. dc is sampled on every transfer,
// bl when the glass is rendered. bl may be nil for an always-on backlight.
func NewPanel(dc, bl gpio.PinIn) *Panel {
	p := &Panel{dc: dc, bl: bl}
	p.reset()
	return p
}

// reset restores the power-on register values. The RAM content is kept, as
// on the real controller.
func (p *Panel) reset() {
	p.cur = -1
	p.madctl = 0
	p.pixfmt = 0x66
	p.invctl = 0
	p.sleeping = true
	p.on = false
	p.col = [2]uint16{0, ramWidth - 1}
	p.row = [2]uint16{0, ramHeight - 1}
	p.writing = false
	p.pending = p.pending[:0]
}

// HardReset emulates a pulse on the reset line.
func (p *Panel) HardReset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

// String implements spi.Port.
func (p *Panel) String() string {
	return "sim.Panel"
}

// Connect implements spi.Port.
func (p *Panel) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if mode != spi.Mode0 || bits != 8 {
		return nil, fmt.Errorf("sim: unsupported spi mode %s with %d bits", mode, bits)
	}
	p.mu.Lock()
	p.speed = f
	p.mu.Unlock()
	return &panelConn{p}, nil
}

// LimitSpeed implements spi.PortCloser.
func (p *Panel) LimitSpeed(f physic.Frequency) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = f
	return nil
}

// Close implements spi.PortCloser.
func (p *Panel) Close() error {
	return nil
}

// Speed returns the current bus clock.
func (p *Panel) Speed() physic.Frequency {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// Commands returns a copy of every command received. Pixel data following a
// memory write is not recorded.
func (p *Panel) Commands() []gc9107.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]gc9107.Command, len(p.log))
	for i, c := range p.log {
		out[i] = gc9107.Command{Op: c.Op, Data: append([]byte(nil), c.Data...)}
	}
	return out
}

// Frames returns the number of memory writes received.
func (p *Panel) Frames() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// On reports whether the panel is awake with the display on.
func (p *Panel) On() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on && !p.sleeping
}

// MADCTL returns the memory access control register.
func (p *Panel) MADCTL() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.madctl
}

// PixelFormat returns the interface pixel format register.
func (p *Panel) PixelFormat() byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pixfmt
}

// Word returns the raw RAM word at column x, row y, before the glass
// inversion.
func (p *Panel) Word(x, y int) uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if x < 0 || x >= ramWidth || y < 0 || y >= ramHeight {
		return 0
	}
	return p.ram[y][x]
}

func (p *Panel) tx(w []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dc.Read() == gpio.Low {
		for _, op := range w {
			p.command(op)
		}
		return nil
	}
	if p.writing {
		p.pixels(w)
		return nil
	}
	if p.cur < 0 {
		return nil
	}
	c := &p.log[p.cur]
	for _, b := range w {
		if len(c.Data) >= payloadLen[c.Op] {
			break
		}
		c.Data = append(c.Data, b)
	}
	if len(c.Data) == payloadLen[c.Op] {
		p.apply(*c)
		p.cur = -1
	}
	return nil
}

func (p *Panel) command(op byte) {
	p.writing = false
	p.pending = p.pending[:0]
	p.log = append(p.log, gc9107.Command{Op: op})
	p.cur = -1
	if payloadLen[op] > 0 {
		p.cur = len(p.log) - 1
		return
	}
	switch op {
	case 0x01:
		p.reset()
	case 0x11:
		p.sleeping = false
	case 0x10:
		p.sleeping = true
	case 0x28:
		p.on = false
	case 0x29:
		p.on = true
	case 0x2C:
		p.x, p.y = p.col[0], p.row[0]
		p.writing = true
		p.frames++
	}
}

func (p *Panel) apply(c gc9107.Command) {
	switch c.Op {
	case 0x2A:
		p.col = window(c.Data, ramWidth)
	case 0x2B:
		p.row = window(c.Data, ramHeight)
	case 0x36:
		p.madctl = c.Data[0]
	case 0x3A:
		p.pixfmt = c.Data[0]
	case 0xB4:
		p.invctl = c.Data[0]
	}
}

// window decodes a hi/lo start and end pair, clamped to the RAM.
func window(d []byte, limit int) [2]uint16 {
	s := uint16(d[0])<<8 | uint16(d[1])
	e := uint16(d[2])<<8 | uint16(d[3])
	if e >= uint16(limit) {
		e = uint16(limit - 1)
	}
	if s > e {
		s = e
	}
	return [2]uint16{s, e}
}

// pixels stores big-endian words at the write pointer, wrapping inside the
// addressing window.
func (p *Panel) pixels(w []byte) {
	if len(p.pending) > 0 {
		w = append(append([]byte(nil), p.pending...), w...)
		p.pending = p.pending[:0]
	}
	i := 0
	for ; i+1 < len(w); i += 2 {
		p.ram[p.y][p.x] = uint16(w[i])<<8 | uint16(w[i+1])
		if p.x++; p.x > p.col[1] {
			p.x = p.col[0]
			if p.y++; p.y > p.row[1] {
				p.y = p.row[0]
			}
		}
	}
	if i < len(w) {
		p.pending = append(p.pending, w[i])
	}
}

// Bounds returns the visible area.
func (p *Panel) Bounds() image.Rectangle {
	return image.Rect(0, 0, glassWidth, glassHeight)
}

// Image renders what the glass shows. A panel that is off, asleep or with
// its backlight low shows black.
func (p *Panel) Image() *image.RGBA {
	img := image.NewRGBA(p.Bounds())
	p.RenderTo(img)
	return img
}

// RenderTo renders the glass into img, which must be at least glass sized.
func (p *Panel) RenderTo(img *image.RGBA) {
	lit := p.bl == nil || p.bl.Read() == gpio.High

	p.mu.Lock()
	defer p.mu.Unlock()
	if !lit || !p.on || p.sleeping {
		for i := range img.Pix {
			img.Pix[i] = 0
			if i%4 == 3 {
				img.Pix[i] = 0xFF
			}
		}
		return
	}

	// The glass is mounted mirrored horizontally, which the MX bit undoes.
	mx := p.madctl&gc9107.MADCTLMX == 0
	my := p.madctl&gc9107.MADCTLMY != 0
	mv := p.madctl&gc9107.MADCTLMV != 0
	bgr := p.madctl&gc9107.MADCTLBGR != 0
	for y := 0; y < glassHeight; y++ {
		for x := 0; x < glassWidth; x++ {
			cx, cy := x, y
			if mx {
				cx = glassWidth - 1 - cx
			}
			if my {
				cy = glassHeight - 1 - cy
			}
			if mv {
				cx, cy = cy, cx
			}
			img.SetRGBA(x, y, glassColor(p.ram[cy][cx], bgr))
		}
	}
}

// glassColor converts a RAM word into the color lit on the glass. The
// liquid crystal inverts every bit; the BGR bit decides which subpixel the
// top field drives.
func glassColor(word uint16, bgr bool) color.RGBA {
	v := ^word
	top := uint8(v>>11) & 0x1F
	mid := uint8(v>>5) & 0x3F
	low := uint8(v) & 0x1F
	r, b := top, low
	if bgr {
		r, b = low, top
	}
	return color.RGBA{
		R: r<<3 | r>>2,
		G: mid<<2 | mid>>4,
		B: b<<3 | b>>2,
		A: 0xFF,
	}
}

type panelConn struct {
	p *Panel
}

func (c *panelConn) String() string {
	return c.p.String()
}

func (c *panelConn) Tx(w, r []byte) error {
	if len(r) != 0 {
		return fmt.Errorf("sim: the panel is write-only")
	}
	return c.p.tx(w)
}

func (c *panelConn) Duplex() conn.Duplex {
	return conn.Half
}

func (c *panelConn) TxPackets(pkts []spi.Packet) error {
	for _, pkt := range pkts {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var _ spi.PortCloser = (*Panel)(nil)
