package gc9107

// Controller opcodes used by this driver.
const (
	swReset    byte = 0x01 // Software reset
	sleepOut   byte = 0x11 // Sleep out
	displayOff byte = 0x28 // Display off
	displayOn  byte = 0x29 // Display on
	colAddrSet byte = 0x2A // Column address set (4 bytes)
	rowAddrSet byte = 0x2B // Row address set (4 bytes)
	memWrite   byte = 0x2C // Memory write, followed by the pixel stream
	memAccess  byte = 0x36 // Memory data access control (1 byte)
	pixelFmt   byte = 0x3A // Interface pixel format (1 byte)
	invControl byte = 0xB4 // Display inversion control (1 byte)
)

// Memory data access control bits.
const (
	MADCTLMY  byte = 0x80 // Row address order
	MADCTLMX  byte = 0x40 // Column address order
	MADCTLMV  byte = 0x20 // Row/column exchange
	MADCTLML  byte = 0x10 // Vertical refresh order
	MADCTLBGR byte = 0x08 // BGR color filter order
	MADCTLMH  byte = 0x04 // Horizontal refresh order
)

// pixelFormat16 selects 16 bits per pixel on both the RGB and MCU interfaces.
const pixelFormat16 byte = 0x55

// Command is a controller opcode with its optional payload.
type Command struct {
	Op   byte
	Data []byte
}

// window returns the column and row address commands covering the inclusive
// box (x0, y0)-(x1, y1), followed by the memory write opcode.
func window(x0, y0, x1, y1 uint16) []Command {
	return []Command{
		{colAddrSet, []byte{byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)}},
		{rowAddrSet, []byte{byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)}},
		{memWrite, nil},
	}
}
