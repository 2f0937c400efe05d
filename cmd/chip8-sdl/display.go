package main

import (
	"fmt"
	"unsafe"

	chip8 "github.com/p47t/vip8"
	"github.com/p47t/vip8/internal/keymap"
	"github.com/p47t/vip8/internal/options"
	"github.com/veandco/go-sdl2/sdl"
)

// SDL is a window frontend drawing frames into a streaming texture that the
// renderer scales to the window size.
type SDL struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	fg, bg [4]byte // RGBA32

	// texture buffer, 4 bytes per display cell
	buffer []byte

	// first drawing error, ends the session on the next Poll
	err error
}

// NewSDL initializes SDL video and creates the window.
func NewSDL(display options.Display) (*SDL, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("initializing SDL: %w", err)
	}

	window, err := sdl.CreateWindow("Chip8",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(chip8.GfxWidth*display.Scale), int32(chip8.GfxHeight*display.Scale),
		sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		uint32(sdl.PIXELFORMAT_RGBA32),
		sdl.TEXTUREACCESS_STREAMING,
		chip8.GfxWidth, chip8.GfxHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("creating texture: %w", err)
	}

	s := &SDL{
		window:   window,
		renderer: renderer,
		texture:  texture,
		fg:       rgba(display.Foreground),
		bg:       rgba(display.Background),
		buffer:   make([]byte, chip8.GfxPixels*4),
	}
	return s, nil
}

func rgba(color uint32) [4]byte {
	r, g, b := options.RGB(color)
	return [4]byte{r, g, b, 0xFF}
}

// Close frees all resources created by SDL.
func (s *SDL) Close() {
	s.texture.Destroy()
	s.renderer.Destroy()
	s.window.Destroy()
	sdl.Quit()
}

// Err returns the drawing error that ended the session, if any.
func (s *SDL) Err() error {
	return s.err
}

// Poll drains the SDL event queue. A failed draw quits the session.
func (s *SDL) Poll(c chip8.Controller) {
	if s.err != nil {
		c.SetRunState(chip8.Quit)
		return
	}
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			c.SetRunState(chip8.Quit)
		case *sdl.KeyboardEvent:
			s.onKey(c, e)
		}
	}
}

func (s *SDL) onKey(c chip8.Controller, e *sdl.KeyboardEvent) {
	pressed := e.Type == sdl.KEYDOWN
	if e.Repeat != 0 {
		return
	}

	switch e.Keysym.Sym {
	case sdl.K_ESCAPE:
		c.SetRunState(chip8.Quit)
	case sdl.K_SPACE:
		if !pressed {
			return
		}
		switch c.RunState() {
		case chip8.Running:
			c.SetRunState(chip8.Stopped)
		case chip8.Stopped:
			c.SetRunState(chip8.Running)
		}
	default:
		// key codes of printable keys are their lower case characters
		if key, ok := keymap.Lookup(rune(e.Keysym.Sym)); ok {
			c.SetKey(key, pressed)
		}
	}
}

func (s *SDL) Render(frame *chip8.Frame) {
	if frame.Dirty {
		for i, lit := range frame.Pixels {
			color := s.bg
			if lit {
				color = s.fg
			}
			copy(s.buffer[i*4:i*4+4], color[:])
		}
		if err := s.texture.Update(nil, unsafe.Pointer(&s.buffer[0]), chip8.GfxWidth*4); err != nil {
			s.fail(fmt.Errorf("updating texture: %w", err))
			return
		}
	}
	if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
		s.fail(fmt.Errorf("copying texture: %w", err))
		return
	}
	s.renderer.Present()
}

func (s *SDL) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}
