package chip8

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	tm "github.com/buger/goterm"
	"github.com/retroenv/retrogolib/log"
)

const KeyCount = 16

// keyWait is the FX0A suspension: while active no instruction is fetched
// and PC stays on the waiting instruction.
type keyWait struct {
	active bool
	reg    uint8
}

// System is the machine state of one emulation session. It is not safe for
// concurrent use; the scheduler owns it.
type System struct {
	cpu CPU
	mem Memory
	gfx Graphics

	keys [KeyCount]bool
	wait keyWait

	delayTimer uint8
	soundTimer uint8

	logger        *log.Logger
	rng           *rand.Rand
	legacyKeyWait bool
}

// Option configures a System.
type Option func(*System)

// WithRand sets the random source used by CXNN.
func WithRand(rng *rand.Rand) Option {
	return func(sys *System) {
		sys.rng = rng
	}
}

// WithLegacyKeyWait makes FX0A store 1 instead of the key index, as the
// reference interpreter this dialect was taken from does.
func WithLegacyKeyWait(legacy bool) Option {
	return func(sys *System) {
		sys.legacyKeyWait = legacy
	}
}

// NewSystem returns an initialized system with the font loaded and no
// program.
func NewSystem(logger *log.Logger, opts ...Option) *System {
	sys := &System{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(sys)
	}
	sys.Initialize()
	return sys
}

func (sys *System) Initialize() {
	sys.cpu.reset()
	sys.mem.clear()
	sys.gfx.clear()

	for i := 0; i < len(sys.keys); i++ {
		sys.keys[i] = false
	}
	sys.wait = keyWait{}

	sys.delayTimer = 0
	sys.soundTimer = 0
}

func (sys *System) Print() {
	tm.Clear()
	tm.MoveCursor(1, 1)

	sys.cpu.Print(tm.Screen)
	fmt.Fprintf(tm.Screen, "DT = %d, ST = %d\n", sys.delayTimer, sys.soundTimer)
	if sys.wait.active {
		fmt.Fprintf(tm.Screen, "waiting for key -> V%X\n", sys.wait.reg)
	}

	tm.Flush()
}

// Step executes one instruction, or polls the keypad while FX0A is waiting.
func (sys *System) Step() error {
	if sys.wait.active {
		key, ok := sys.pressedKey()
		if !ok {
			return nil
		}
		sys.cpu.V[sys.wait.reg] = sys.keyValue(key)
		sys.cpu.PC += 2
		sys.wait = keyWait{}
		return nil
	}
	return sys.cpu.step(sys)
}

// AwaitingKey reports whether FX0A is blocking program progress.
func (sys *System) AwaitingKey() bool {
	return sys.wait.active
}

// UpdateTimers counts both timers down by one, stopping at zero.
func (sys *System) UpdateTimers() {
	if sys.delayTimer > 0 {
		sys.delayTimer--
	}
	if sys.soundTimer > 0 {
		sys.soundTimer--
	}
}

// Sounding reports whether the sound timer is running.
func (sys *System) Sounding() bool {
	return sys.soundTimer > 0
}

// Load copies a program image to StartAddress.
func (sys *System) Load(r io.Reader) error {
	bytes, err := io.ReadAll(io.LimitReader(r, MaxROMSize+1))
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}
	return sys.mem.loadROM(bytes)
}

func (sys *System) LoadFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("opening ROM '%s': %w", filename, err)
	}
	defer f.Close()
	return sys.Load(f)
}

// SetKey records the state of keypad key 0x0-0xF. Other indices are ignored.
func (sys *System) SetKey(key int, pressed bool) {
	if key < 0 || key >= KeyCount {
		return
	}
	sys.keys[key] = pressed
}

func (sys *System) pressedKey() (int, bool) {
	for i, down := range sys.keys {
		if down {
			return i, true
		}
	}
	return 0, false
}

func (sys *System) keyValue(key int) uint8 {
	if sys.legacyKeyWait {
		return 1
	}
	return uint8(key)
}

func (sys *System) GetPixel(x, y uint8) bool {
	return sys.gfx.getPixel(x, y)
}

func (sys *System) IsDirty() bool {
	return sys.gfx.isDirty()
}

// Frame copies the display into f and clears the dirty flag.
func (sys *System) Frame(f *Frame) {
	f.Pixels = sys.gfx.buffer
	f.Dirty = sys.gfx.isDirty()
	sys.gfx.setDirty(false)
}

// PC returns the program counter.
func (sys *System) PC() uint16 {
	return sys.cpu.PC
}
