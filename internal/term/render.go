// Package term runs a program inside a text terminal: frames are drawn with
// half block characters and keys are read from a raw mode terminal.
package term

import (
	"strings"

	tm "github.com/buger/goterm"
	chip8 "github.com/p47t/vip8"
)

// Renderer draws frames at the top left of the terminal, two display rows
// per text line.
type Renderer struct {
	fg, bg int
	drawn  bool
}

// NewRenderer returns a renderer using the terminal colors closest to the
// given 0xRRGGBB colors.
func NewRenderer(foreground, background uint32) *Renderer {
	return &Renderer{
		fg: NearestColor(foreground),
		bg: NearestColor(background),
	}
}

// Start clears the terminal.
func (r *Renderer) Start() {
	tm.Clear()
	tm.Output.WriteString("\033[?25l") // hide cursor
	tm.Output.Flush()
}

// Stop shows the cursor again and moves it below the display.
func (r *Renderer) Stop() {
	tm.MoveCursor(1, chip8.GfxHeight/2+1)
	tm.Print(tm.RESET, "\033[?25h\r\n")
	tm.Flush()
}

func (r *Renderer) Render(frame *chip8.Frame) {
	if !frame.Dirty && r.drawn {
		return
	}
	r.drawn = true

	tm.MoveCursor(1, 1)
	for i, line := range FrameLines(frame) {
		if i > 0 {
			tm.Print("\r\n")
		}
		tm.Print(tm.Background(tm.Color(line, r.fg), r.bg))
	}
	tm.Flush()
}

// FrameLines renders a frame as text, combining each pair of display rows
// into one line of half block characters.
func FrameLines(frame *chip8.Frame) []string {
	lines := make([]string, 0, chip8.GfxHeight/2)
	var sb strings.Builder
	for y := 0; y < chip8.GfxHeight; y += 2 {
		sb.Reset()
		for x := 0; x < chip8.GfxWidth; x++ {
			top, bottom := frame.Pixel(x, y), frame.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// NearestColor maps a 0xRRGGBB color to one of the eight basic terminal
// colors by thresholding each channel.
func NearestColor(color uint32) int {
	c := tm.BLACK
	if color>>16&0xFF >= 0x80 {
		c |= 1 // red
	}
	if color>>8&0xFF >= 0x80 {
		c |= 2 // green
	}
	if color&0xFF >= 0x80 {
		c |= 4 // blue
	}
	return c
}
