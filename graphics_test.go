package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestClearScreen(t *testing.T) {
	sys := newTestSystem(t, 0xA000, 0xD005, 0x00E0)
	runSteps(t, sys, 2)
	assert.True(t, sys.GetPixel(0, 0))

	runSteps(t, sys, 1)
	for y := uint8(0); y < GfxHeight; y++ {
		for x := uint8(0); x < GfxWidth; x++ {
			assert.False(t, sys.GetPixel(x, y))
		}
	}
}

func TestDrawFontGlyph(t *testing.T) {
	// V0 = V1 = 0, I = glyph "0"
	sys := newTestSystem(t, 0xA000, 0xD015)
	runSteps(t, sys, 2)
	assert.Equal(t, uint8(0), sys.cpu.V[0xF])

	for row := 0; row < FontGlyphBytes; row++ {
		bits := fontSet[row]
		for col := 0; col < 8; col++ {
			want := bits&(0x80>>col) != 0
			assert.Equal(t, want, sys.GetPixel(uint8(col), uint8(row)))
		}
	}
	assert.False(t, sys.GetPixel(0, FontGlyphBytes))
}

func TestDrawResetsFlag(t *testing.T) {
	// VF = 1, then a draw on a blank screen
	sys := newTestSystem(t, 0x6F01, 0xA000, 0xD005)
	runSteps(t, sys, 2)
	assert.Equal(t, uint8(1), sys.cpu.V[0xF])

	runSteps(t, sys, 1)
	assert.Equal(t, uint8(0), sys.cpu.V[0xF])
	assert.True(t, sys.GetPixel(0, 0))
}

func TestDrawCollision(t *testing.T) {
	sys := newTestSystem(t, 0xA000, 0xD015, 0xD015)
	runSteps(t, sys, 2)
	runSteps(t, sys, 1)

	assert.Equal(t, uint8(1), sys.cpu.V[0xF])
	for y := uint8(0); y < 8; y++ {
		for x := uint8(0); x < 8; x++ {
			assert.False(t, sys.GetPixel(x, y))
		}
	}
}

func TestDrawZeroBitsKeepScreen(t *testing.T) {
	var mem Memory
	var g Graphics
	mem[0x300] = 0xF0 // left half lit
	mem[0x301] = 0x0F // right half lit

	assert.False(t, g.draw(&mem, 0x300, 0, 0, 1))
	// 0x0F over 0xF0: no overlap, every cell ends up lit
	assert.False(t, g.draw(&mem, 0x301, 0, 0, 1))
	for x := uint8(0); x < 8; x++ {
		assert.True(t, g.getPixel(x, 0))
	}

	// a zero sprite changes nothing
	mem[0x302] = 0x00
	assert.False(t, g.draw(&mem, 0x302, 0, 0, 1))
	for x := uint8(0); x < 8; x++ {
		assert.True(t, g.getPixel(x, 0))
	}
}

func TestDrawClipsAtEdges(t *testing.T) {
	var mem Memory
	var g Graphics
	for i := 0; i < 4; i++ {
		mem[0x300+i] = 0xFF
	}

	// origin (60, 30): only 4 columns and 2 rows fit
	assert.False(t, g.draw(&mem, 0x300, 60, 30, 4))
	lit := 0
	for i := range g.buffer {
		if g.buffer[i] {
			lit++
		}
	}
	assert.Equal(t, 8, lit)
	assert.True(t, g.getPixel(63, 31))
	assert.False(t, g.getPixel(0, 30))
	assert.False(t, g.getPixel(60, 0))
}

func TestDrawOriginWraps(t *testing.T) {
	var mem Memory
	var g Graphics
	mem[0x300] = 0x80

	g.draw(&mem, 0x300, 64+5, 32+2, 1)
	assert.True(t, g.getPixel(5, 2))
}

func TestFrameSnapshot(t *testing.T) {
	sys := newTestSystem(t, 0xA000, 0xD015)
	runSteps(t, sys, 2)

	var f Frame
	sys.Frame(&f)
	assert.True(t, f.Dirty)
	assert.True(t, f.Pixel(0, 0))
	assert.False(t, sys.IsDirty())

	// the snapshot is a copy
	sys.gfx.clear()
	assert.True(t, f.Pixel(0, 0))

	sys.Frame(&f)
	assert.False(t, f.Pixel(0, 0))
}
