package chip8

const (
	GfxWidth  = 64
	GfxHeight = 32
	GfxPixels = GfxWidth * GfxHeight
)

// Frame is a row-major copy of the display handed to renderers once per tick.
type Frame struct {
	Pixels [GfxPixels]bool
	Dirty  bool // changed since the previous published frame
}

// Pixel reports whether the cell at column x, row y is lit.
func (f *Frame) Pixel(x, y int) bool {
	return f.Pixels[x+y*GfxWidth]
}

type Graphics struct {
	buffer [GfxPixels]bool
	dirty  bool
}

func (g *Graphics) isDirty() bool {
	return g.dirty
}

func (g *Graphics) setDirty(dirty bool) {
	g.dirty = dirty
}

func (g *Graphics) clear() {
	for i := 0; i < len(g.buffer); i++ {
		g.buffer[i] = false
	}
	g.dirty = true
}

func (g *Graphics) getPixel(x, y uint8) bool {
	return g.buffer[uint(x)+uint(y)*GfxWidth]
}

// draw XORs an h-row sprite read from mem at I onto the screen. The origin
// wraps, the sprite itself is clipped at the right and bottom edges.
func (g *Graphics) draw(mem *Memory, I uint16, x, y, h uint8) bool {
	hit := false
	x0 := uint(x % GfxWidth)
	y0 := uint(y % GfxHeight)
	for r := uint(0); r < uint(h); r++ {
		row := y0 + r
		if row >= GfxHeight {
			break
		}
		sprite := mem[at(I+uint16(r))]
		for c := uint(0); c < 8; c++ {
			col := x0 + c
			if col >= GfxWidth {
				break
			}
			if sprite&(0x80>>c) == 0 {
				continue
			}
			offset := col + row*GfxWidth
			if g.buffer[offset] {
				hit = true
			}
			g.buffer[offset] = !g.buffer[offset]
		}
	}
	g.dirty = true
	return hit
}
