// Package gc9107 controls the GC9107 TFT LCD controller via SPI.
//
// The GC9107 drives the 128×128 color panel of the Thumby Color. This driver
// implements the display.Drawer interface from periph.io and streams pixels
// in the native format of the image565 package.
//
// # Display Characteristics
//
// - 16-bit color (RGB565 with BGR ordering)
// - 128×128 visible pixels out of a 128×160 internal RAM
// - Column/row addressing window with auto-increment
//
// # Hardware Connection
//
//	Display Pin → System Pin
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	DC          → GPIO16
//	CS          → GPIO17
//	RES         → GPIO4
//	BL          → GPIO7 (backlight enable)
//
// # Power-On Sequence
//
// NewSPI only opens the bus. Init performs the full sequence:
//
//  1. Hardware reset: RST high 5ms, low 10ms, high 120ms.
//  2. Software reset (0x01), wait 150ms.
//  3. Sleep out (0x11), wait 500ms.
//  4. Memory access control (0x36) with the MADCTL payload.
//  5. Pixel format (0x3A) 16 bits per pixel.
//  6. Inversion control (0xB4) cleared.
//  7. Display on (0x29), wait 100ms.
//
// Configuration runs at Opts.InitSpeed. Afterwards the bus is raised to
// Opts.Speed and the backlight is switched on. Rate changes require a port
// implementing LimitSpeed, such as spi.PortCloser; other ports are connected
// at Opts.InitSpeed and stay there.
//
// # Basic Usage
//
//	p, _ := spireg.Open("")
//	dev, _ := gc9107.NewSPI(p, gpioreg.ByName("GPIO16"), &gc9107.Opts{
//		RST: gpioreg.ByName("GPIO4"),
//		CS:  gpioreg.ByName("GPIO17"),
//		BL:  gpioreg.ByName("GPIO7"),
//	})
//	if err := dev.Init(); err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Halt()
//
//	frame := image565.NewFrame(dev.Bounds())
//	frame.Clear(image565.Encode(0xFF0000))
//	dev.Write(frame.Pix)
//
// # Frame Transfer
//
// Write sets the addressing window to the whole panel, issues a memory write
// and streams the buffer in data mode. Transfers larger than the port's
// MaxTxSize are split.
//
// Draw accepts any image.Image. A full-size *image565.Frame is streamed
// directly; any other source is composed into an internal frame first.
package gc9107
