package chip8

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// counter draws the decimal digits of V6 while incrementing it forever.
var counterROM = assemble(
	0x00E0, // 200: CLS
	0xA300, // 202: LD I, 0x300
	0xF633, // 204: LD B, V6
	0xF265, // 206: LD V2, [I]
	0x6A00, // 208: LD VA, 0
	0x6B00, // 20A: LD VB, 0
	0xF029, // 20C: LD F, V0
	0xDAB5, // 20E: DRW VA, VB, 5
	0xF129, // 210: LD F, V1
	0x7A05, // 212: ADD VA, 5
	0xDAB5, // 214: DRW VA, VB, 5
	0xF229, // 216: LD F, V2
	0x7A05, // 218: ADD VA, 5
	0xDAB5, // 21A: DRW VA, VB, 5
	0x7601, // 21C: ADD V6, 1
	0x1200, // 21E: JP 0x200
)

// walker moves a glyph across the screen and bounces with shifts.
var walkerROM = assemble(
	0x6400, // 200: LD V4, 0
	0x6500, // 202: LD V5, 0
	0xA000, // 204: LD I, glyph 0
	0xD455, // 206: DRW V4, V5, 5
	0x7401, // 208: ADD V4, 1
	0x8546, // 20A: SHR V5
	0x7502, // 20C: ADD V5, 2
	0x4440, // 20E: SNE V4, 64
	0x6400, // 210: LD V4, 0
	0x1204, // 212: JP 0x204
)

func BenchmarkCounter(b *testing.B) {
	benchmarkRom(b, counterROM, 10000)
}

func BenchmarkWalker(b *testing.B) {
	benchmarkRom(b, walkerROM, 10000)
}

func benchmarkRom(b *testing.B, rom []byte, cycles int) {
	cfg := log.DefaultConfig()
	cfg.Level = log.ErrorLevel
	sys := NewSystem(log.NewWithConfig(cfg))
	if err := sys.Load(bytes.NewReader(rom)); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for i := 0; i < cycles; i++ {
			if err := sys.Step(); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func TestInitializeLoadsFont(t *testing.T) {
	sys := newTestSystem(t)
	assert.Equal(t, fontSet[:], sys.mem[FontAddress:FontAddress+len(fontSet)])
	assert.Equal(t, uint16(StartAddress), sys.PC())
}

func TestLoad(t *testing.T) {
	sys := newTestSystem(t)
	assert.NoError(t, sys.Load(bytes.NewReader(counterROM)))
	assert.Equal(t, counterROM, sys.mem[StartAddress:StartAddress+len(counterROM)])
}

func TestLoadErrors(t *testing.T) {
	sys := newTestSystem(t)

	err := sys.Load(bytes.NewReader(nil))
	assert.True(t, errors.Is(err, ErrNoROM))

	err = sys.Load(bytes.NewReader(make([]byte, MaxROMSize+1)))
	assert.True(t, errors.Is(err, ErrROMTooLarge))

	assert.NoError(t, sys.Load(bytes.NewReader(make([]byte, MaxROMSize))))

	err = sys.LoadFile(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter.ch8")
	assert.NoError(t, os.WriteFile(path, counterROM, 0o600))

	sys := newTestSystem(t)
	assert.NoError(t, sys.LoadFile(path))
	for i := 0; i < 1000; i++ {
		assert.NoError(t, sys.Step())
	}
	assert.True(t, sys.IsDirty())
}

func TestInitializeResets(t *testing.T) {
	sys := newTestSystem(t, 0xF00A)
	sys.SetKey(3, true)
	sys.cpu.V[5] = 9
	sys.delayTimer = 4
	sys.SetKey(3, false)
	assert.NoError(t, sys.Step())
	assert.True(t, sys.AwaitingKey())

	sys.Initialize()
	assert.False(t, sys.AwaitingKey())
	assert.Equal(t, uint8(0), sys.cpu.V[5])
	assert.Equal(t, uint8(0), sys.delayTimer)
	assert.Equal(t, uint16(StartAddress), sys.PC())
}

func TestTimersClampAtZero(t *testing.T) {
	sys := newTestSystem(t)
	sys.delayTimer, sys.soundTimer = 2, 1
	sys.UpdateTimers()
	assert.Equal(t, uint8(1), sys.delayTimer)
	assert.Equal(t, uint8(0), sys.soundTimer)
	assert.False(t, sys.Sounding())
	sys.UpdateTimers()
	sys.UpdateTimers()
	assert.Equal(t, uint8(0), sys.delayTimer)
	assert.Equal(t, uint8(0), sys.soundTimer)
}

func TestSetKeyIgnoresOutOfRange(t *testing.T) {
	sys := newTestSystem(t)
	sys.SetKey(-1, true)
	sys.SetKey(KeyCount, true)
	_, ok := sys.pressedKey()
	assert.False(t, ok)
}

func TestFaultMessage(t *testing.T) {
	assert.Equal(t, "", Mnemonic(0x8128))
	fault := &Fault{Err: ErrStackOverflow, PC: 0x2FE, Opcode: 0x2200}
	assert.ErrorContains(t, fault, "stack overflow at PC 0x2FE (opcode 2200")
}
