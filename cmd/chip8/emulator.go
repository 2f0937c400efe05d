package main

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.2/glfw"
	chip8 "github.com/p47t/vip8"
	"github.com/p47t/vip8/internal/keymap"
	"github.com/p47t/vip8/internal/options"
)

const (
	ScreenWidth  = chip8.GfxWidth
	ScreenHeight = chip8.GfxHeight
)

// Emulator is an OpenGL window frontend. It must be used from the main
// OS thread.
type Emulator struct {
	fg, bg [3]byte

	ctrl chip8.Controller

	screenData            []byte
	window                *glfw.Window
	fullScreenTriangleVAO uint32
	bufferTexture         uint32
	shaderProgram         uint32
}

const vertexShader = `
#version 330

noperspective out vec2 TexCoord;

void main(void) {
    TexCoord.x = (gl_VertexID == 2)? 2.0: 0.0;
    TexCoord.y = (gl_VertexID == 1)? 2.0: 0.0;

	gl_Position = vec4(2.0 * TexCoord - 1.0, 0.0, 1.0);
}
`

const fragmentShader = `
#version 330

uniform sampler2D buffer;
noperspective in vec2 TexCoord;

out vec3 outColor;

void main(void) {
	outColor = texture(buffer, TexCoord).rgb;
}
`

func (emu *Emulator) Initialize(display options.Display) error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}

	r, g, b := options.RGB(display.Foreground)
	emu.fg = [3]byte{r, g, b}
	r, g, b = options.RGB(display.Background)
	emu.bg = [3]byte{r, g, b}

	// Create window
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	emu.window, err = glfw.CreateWindow(ScreenWidth*display.Scale, ScreenHeight*display.Scale, "Chip8", nil, nil)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	emu.window.MakeContextCurrent()
	emu.window.SetKeyCallback(emu.onKey)

	// Initialize Glow
	if err := gl.Init(); err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}
	gl.ClearColor(float32(emu.bg[0])/0xFF, float32(emu.bg[1])/0xFF, float32(emu.bg[2])/0xFF, 1.0)

	gl.GenVertexArrays(1, &emu.fullScreenTriangleVAO)
	gl.BindVertexArray(emu.fullScreenTriangleVAO)

	if err := emu.linkProgram(); err != nil {
		return err
	}

	emu.screenData = make([]byte, ScreenWidth*ScreenHeight*3)
	for i := 0; i < len(emu.screenData); i += 3 {
		copy(emu.screenData[i:i+3], emu.bg[:])
	}

	gl.GenTextures(1, &emu.bufferTexture)
	gl.BindTexture(gl.TEXTURE_2D, emu.bufferTexture)

	gl.TexImage2D(
		gl.TEXTURE_2D, 0, gl.RGB,
		ScreenWidth, ScreenHeight, 0,
		gl.RGB, gl.UNSIGNED_BYTE, unsafe.Pointer(&emu.screenData[0]))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	bufferLoc := gl.GetUniformLocation(emu.shaderProgram, gl.Str("buffer"+"\x00"))
	gl.Uniform1i(bufferLoc, 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(emu.shaderProgram)
	return nil
}

func (emu *Emulator) linkProgram() error {
	emu.shaderProgram = gl.CreateProgram()

	vs, err := compileShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(vs)
	gl.AttachShader(emu.shaderProgram, vs)
	defer gl.DetachShader(emu.shaderProgram, vs)

	fs, err := compileShader(fragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(fs)
	gl.AttachShader(emu.shaderProgram, fs)
	defer gl.DetachShader(emu.shaderProgram, fs)

	var status int32
	gl.LinkProgram(emu.shaderProgram)
	gl.GetProgramiv(emu.shaderProgram, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		return fmt.Errorf("failed to link shaderProgram")
	}
	return nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		return 0, fmt.Errorf("failed to compile %v: %v", source, log)
	}

	return shader, nil
}

// Poll processes window events. Key callbacks fire inside PollEvents and
// act on c.
func (emu *Emulator) Poll(c chip8.Controller) {
	emu.ctrl = c
	glfw.PollEvents()
	emu.ctrl = nil

	if emu.window.ShouldClose() {
		c.SetRunState(chip8.Quit)
	}
}

func (emu *Emulator) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if emu.ctrl == nil || action == glfw.Repeat {
		return
	}

	switch key {
	case glfw.KeyEscape:
		emu.ctrl.SetRunState(chip8.Quit)
		return
	case glfw.KeySpace:
		if action != glfw.Press {
			return
		}
		switch emu.ctrl.RunState() {
		case chip8.Running:
			emu.ctrl.SetRunState(chip8.Stopped)
		case chip8.Stopped:
			emu.ctrl.SetRunState(chip8.Running)
		}
		return
	}

	// printable keys carry their upper case ASCII code
	if c8Key, ok := keymap.Lookup(rune(key)); ok {
		emu.ctrl.SetKey(c8Key, action == glfw.Press)
	}
}

func (emu *Emulator) Render(frame *chip8.Frame) {
	if !frame.Dirty {
		return
	}

	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	emu.UpdateTexture(frame)
	emu.window.SwapBuffers()
}

func (emu *Emulator) UpdateTexture(frame *chip8.Frame) {
	for y := 0; y < ScreenHeight; y++ {
		for x := 0; x < ScreenWidth; x++ {
			offset := ((ScreenHeight-y-1)*ScreenWidth + x) * 3
			color := emu.bg
			if frame.Pixel(x, y) {
				color = emu.fg
			}
			copy(emu.screenData[offset:offset+3], color[:])
		}
	}

	gl.TexSubImage2D(
		gl.TEXTURE_2D, 0, 0, 0,
		ScreenWidth, ScreenHeight, gl.RGB, gl.UNSIGNED_BYTE,
		unsafe.Pointer(&emu.screenData[0]))

	gl.BindVertexArray(emu.fullScreenTriangleVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

func (emu *Emulator) Terminate() {
	gl.DeleteVertexArrays(1, &emu.fullScreenTriangleVAO)
	gl.DeleteTextures(1, &emu.bufferTexture)
	gl.DeleteProgram(emu.shaderProgram)
	glfw.Terminate()
}
