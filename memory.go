package chip8

const (
	MemorySize   = 0x1000
	StartAddress = 0x200
	MaxROMSize   = MemorySize - StartAddress

	FontAddress    = 0x000
	FontGlyphBytes = 5
)

// Memory is the 4KB address space. Font glyphs live at FontAddress,
// programs are copied to StartAddress.
type Memory [MemorySize]uint8

var fontSet = [16 * FontGlyphBytes]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

func (mem *Memory) clear() {
	for i := 0; i < len(mem); i++ {
		mem[i] = 0
	}
	copy(mem[FontAddress:], fontSet[:])
}

func (mem *Memory) loadROM(rom []byte) error {
	if len(rom) == 0 {
		return ErrNoROM
	}
	if len(rom) > MaxROMSize {
		return ErrROMTooLarge
	}
	copy(mem[StartAddress:], rom)
	return nil
}

// fetchOpcode reads the big-endian word at addr. The caller guarantees
// addr+1 is inside memory.
func (mem *Memory) fetchOpcode(addr uint16) uint16 {
	return uint16(mem[addr])<<8 | uint16(mem[addr+1])
}

// at wraps an I-relative address into the address space.
func at(addr uint16) uint16 {
	return addr & (MemorySize - 1)
}
