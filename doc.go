// Package thumbycolor is a display and input engine for the Thumby Color
// handheld.
//
// The device has a 128×128 color panel behind a GC9107 controller on SPI,
// nine buttons on GPIO lines, an RGB LED on three PWM channels and a
// vibration motor. The Engine owns a frame buffer in the panel's native
// pixel format and exposes the small drawing surface games are written
// against.
//
// # Hardware Connection
//
//	Function     → RP2350 Pin
//	Display DC   → GPIO16
//	Display CS   → GPIO17
//	Display RST  → GPIO4
//	Backlight    → GPIO7
//	Up/Down      → GPIO1/GPIO3
//	Left/Right   → GPIO0/GPIO2
//	A/B          → GPIO21/GPIO25
//	Bumpers L/R  → GPIO6/GPIO22
//	Menu         → GPIO26
//	Vibration    → GPIO5
//	LED R/G/B    → GPIO11/GPIO10/GPIO12
//
// The board package resolves these pins through periph.io registries and
// builds an Engine for them.
//
// # Basic Usage
//
//	package main
//
//	import (
//		"log"
//		"time"
//
//		"github.com/flavioheleno/thumbycolor/board"
//		"github.com/flavioheleno/thumbycolor/image565"
//		"github.com/flavioheleno/thumbycolor/input"
//	)
//
//	func main() {
//		cfg := board.DefaultConfig()
//		eng, closer, err := board.Open(cfg, nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer closer.Close()
//
//		if err := eng.Begin(); err != nil {
//			log.Fatal(err)
//		}
//		defer eng.Halt()
//
//		red := image565.Encode(0xFF0000)
//		for {
//			eng.Clear(image565.Black)
//			if eng.Pressed(input.A) {
//				eng.FillRect(32, 32, 64, 64, red)
//			}
//			eng.DrawText(2, 10, "hello", 0xFFFFFF)
//			if err := eng.Update(); err != nil {
//				log.Fatal(err)
//			}
//			time.Sleep(time.Second / 60)
//		}
//	}
//
// # Colors
//
// Drawing calls take image565.Pixel values. Use image565.Encode to convert a
// 0xRRGGBB value; the conversion applies the byte swap and bit inversion the
// panel needs, so raw RGB565 values display wrongly.
//
// # Start-up Order
//
// Begin configures the LED and motor outputs and the button lines, runs
// the display power-on sequence, clears the frame to black and sets the
// LED to a neutral grey. Update and the actuator calls fail before Begin.
//
// # Text
//
// The Engine implements drivers.Displayer from tinygo.org/x/drivers, so any
// tinyfont font can render into the frame. DrawText is a shortcut using
// Font.
//
// # Simulator
//
// The sim package provides an emulated panel and board built on the same
// periph.io interfaces, plus an ebiten window to play on a desktop.
package thumbycolor
