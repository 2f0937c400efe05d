package chip8

import (
	"fmt"
	"io"

	"github.com/retroenv/retrogolib/log"
)

const (
	RegCarry   = 0xF
	StackDepth = 12 // COSMAC VIP nesting limit
)

type CPU struct {
	V     [16]uint8 // general-purpose registers
	I     uint16    // Index register
	PC    uint16    // program counter
	SP    uint8     // stack pointer
	Stack [StackDepth]uint16

	cycles int64
}

func (cpu *CPU) Print(w io.Writer) {
	fmt.Fprintf(w, "Cycles #%d\n", cpu.cycles)
	fmt.Fprintf(w, "PC = 0x%04x, SP = %d, I = 0x%04x\n", cpu.PC, cpu.SP, cpu.I)
	for i := 0; i < len(cpu.V); i += 4 {
		fmt.Fprintf(w, "V%X = 0x%02x, V%X = 0x%02x, V%X = 0x%02x, V%X = 0x%02x\n",
			i, cpu.V[i], i+1, cpu.V[i+1], i+2, cpu.V[i+2], i+3, cpu.V[i+3])
	}
	fmt.Fprintf(w, "Stack = % 04x\n", cpu.Stack[:cpu.SP])
}

func (cpu *CPU) reset() {
	cpu.PC = StartAddress
	cpu.I = 0
	cpu.SP = 0
	cpu.cycles = 0

	// clear stack
	for i := 0; i < len(cpu.Stack); i++ {
		cpu.Stack[i] = 0
	}

	// clear register V0-VF
	for i := 0; i < len(cpu.V); i++ {
		cpu.V[i] = 0
	}
}

// step fetches, decodes and executes one instruction. PC is advanced past
// the instruction before the operation runs.
func (cpu *CPU) step(sys *System) error {
	if cpu.PC >= MemorySize-1 {
		return &Fault{Err: ErrPCOutOfRange, PC: cpu.PC}
	}
	ins := Decode(sys.mem.fetchOpcode(cpu.PC))
	cpu.PC += 2
	cpu.cycles++

	switch ins.Category() {
	case 0x0:
		switch ins.NNN {
		case 0x0E0: // 00E0: Clears the screen
			cpu.cls(sys)
		case 0x0EE: // 00EE: Returns from subroutine
			return cpu.ret(ins)
		default: // 0NNN: Machine code routine, treated as a jump
			cpu.sysAddr(ins.NNN)
		}

	case 0x1: // 1NNN: Jumps to address NNN
		cpu.jpAddr(ins.NNN)

	case 0x2: // 2NNN: Calls subroutine at NNN
		return cpu.callAddr(ins)

	case 0x3: // 3XNN: Skips the next instruction if VX equals NN
		cpu.seVxByte(ins.X, ins.NN)

	case 0x4: // 4XNN: Skips the next instruction if VX doesn't equal NN
		cpu.sneVxByte(ins.X, ins.NN)

	case 0x5: // 5XY0: Skips the next instruction if VX equals VY
		if ins.N != 0 {
			cpu.unknownOp(sys, ins)
			break
		}
		cpu.seVxVy(ins.X, ins.Y)

	case 0x6: // 6XNN: Sets VX to NN
		cpu.ldVxByte(ins.X, ins.NN)

	case 0x7: // 7XNN: Adds NN to VX, no carry
		cpu.addVxByte(ins.X, ins.NN)

	case 0x8:
		switch ins.N {
		case 0x0: // 8XY0: Sets VX to the value of VY
			cpu.ldVxVy(ins.X, ins.Y)
		case 0x1: // 8XY1: Sets VX to VX OR VY
			cpu.orVxVy(ins.X, ins.Y)
		case 0x2: // 8XY2: Sets VX to VX AND VY
			cpu.andVxVy(ins.X, ins.Y)
		case 0x3: // 8XY3: Sets VX to VX XOR VY
			cpu.xorVxVy(ins.X, ins.Y)
		case 0x4: // 8XY4: Adds VY to VX, VF is the carry
			cpu.addVxVy(ins.X, ins.Y)
		case 0x5: // 8XY5: Subtracts VY from VX, VF is 1 when VX > VY
			cpu.subVxVy(ins.X, ins.Y)
		case 0x6: // 8XY6: Shifts VX right by one, VF is the bit shifted out
			cpu.shrVx(ins.X)
		case 0x7: // 8XY7: Sets VX to VY minus VX, VF is 1 when VY > VX
			cpu.subnVxVy(ins.X, ins.Y)
		case 0xE: // 8XYE: Shifts VX left by one, VF is the bit shifted out
			cpu.shlVx(ins.X)
		default:
			cpu.unknownOp(sys, ins)
		}

	case 0x9: // 9XY0: Skips the next instruction if VX doesn't equal VY
		if ins.N != 0 {
			cpu.unknownOp(sys, ins)
			break
		}
		cpu.sneVxVy(ins.X, ins.Y)

	case 0xA: // ANNN: Sets I to the address NNN
		cpu.ldIAddr(ins.NNN)

	case 0xB: // BNNN: Jumps to the address NNN plus V0
		cpu.jpV0Addr(ins.NNN)

	case 0xC: // CXNN: Sets VX to a random number AND NN
		cpu.rndVxByte(sys, ins.X, ins.NN)

	case 0xD: // DXYN: Draws an 8xN sprite from I at (VX, VY)
		cpu.drwVxVyNibble(sys, ins.X, ins.Y, ins.N)

	case 0xE:
		switch ins.NN {
		case 0x9E: // EX9E: Skips the next instruction if the key stored in VX is pressed
			cpu.skpVx(sys, ins.X)
		case 0xA1: // EXA1: Skips the next instruction if the key stored in VX isn't pressed
			cpu.sknpVx(sys, ins.X)
		default:
			cpu.unknownOp(sys, ins)
		}

	case 0xF:
		switch ins.NN {
		case 0x07: // FX07: Sets VX to the value of the delay timer
			cpu.ldVxDT(sys, ins.X)

		case 0x0A: // FX0A: A key press is awaited, and then stored in VX
			cpu.ldVxK(sys, ins.X)

		case 0x15: // FX15: Sets the delay timer to VX
			cpu.ldDTVx(sys, ins.X)

		case 0x18: // FX18: Sets the sound timer to VX
			cpu.ldSTVx(sys, ins.X)

		case 0x1E: // FX1E: Adds VX to I
			cpu.addIVx(ins.X)

		case 0x29: // FX29: Sets I to the font glyph for the digit in VX
			cpu.ldFVx(ins.X)

		case 0x33: // FX33: Stores the BCD representation of VX at I, I+1 and I+2
			cpu.ldBVx(&sys.mem, ins.X)

		case 0x55: // FX55: Stores V0 to VX in memory starting at address I
			cpu.ldIVx(&sys.mem, ins.X)

		case 0x65: // FX65: Fills V0 to VX with values from memory starting at address I
			cpu.ldVxI(&sys.mem, ins.X)

		default:
			cpu.unknownOp(sys, ins)
		}
	}

	return nil
}

// fault rewinds PC to the failing instruction.
func (cpu *CPU) fault(err error, ins Instruction) error {
	cpu.PC -= 2
	return &Fault{Err: err, PC: cpu.PC, Opcode: ins.Opcode}
}

func (cpu *CPU) skipIf(cond bool) {
	if cond {
		cpu.PC += 2
	}
}

func (cpu *CPU) setCarry(carry uint8) {
	cpu.V[RegCarry] = carry
}

func (cpu *CPU) unknownOp(sys *System, ins Instruction) {
	sys.logger.Warn("Unknown opcode",
		log.Hex("opcode", ins.Opcode),
		log.Hex("pc", cpu.PC-2),
		log.String("instruction", ins.String()))
}

func (cpu *CPU) cls(sys *System) {
	sys.gfx.clear()
}

func (cpu *CPU) ret(ins Instruction) error {
	if cpu.SP == 0 {
		return cpu.fault(ErrStackUnderflow, ins)
	}
	cpu.SP--
	cpu.PC = cpu.Stack[cpu.SP]
	return nil
}

func (cpu *CPU) sysAddr(addr uint16) {
	cpu.PC = addr
}

func (cpu *CPU) jpAddr(addr uint16) {
	cpu.PC = addr
}

func (cpu *CPU) callAddr(ins Instruction) error {
	if cpu.SP == StackDepth {
		return cpu.fault(ErrStackOverflow, ins)
	}
	cpu.Stack[cpu.SP] = cpu.PC
	cpu.SP++
	cpu.PC = ins.NNN
	return nil
}

func (cpu *CPU) seVxByte(x, val uint8) {
	cpu.skipIf(cpu.V[x] == val)
}

func (cpu *CPU) sneVxByte(x, val uint8) {
	cpu.skipIf(cpu.V[x] != val)
}

func (cpu *CPU) seVxVy(x, y uint8) {
	cpu.skipIf(cpu.V[x] == cpu.V[y])
}

func (cpu *CPU) sneVxVy(x, y uint8) {
	cpu.skipIf(cpu.V[x] != cpu.V[y])
}

func (cpu *CPU) ldVxByte(x, val uint8) {
	cpu.V[x] = val
}

func (cpu *CPU) addVxByte(x, val uint8) {
	cpu.V[x] += val
}

func (cpu *CPU) ldVxVy(x, y uint8) {
	cpu.V[x] = cpu.V[y]
}

func (cpu *CPU) orVxVy(x, y uint8) {
	cpu.V[x] |= cpu.V[y]
}

func (cpu *CPU) andVxVy(x, y uint8) {
	cpu.V[x] &= cpu.V[y]
}

func (cpu *CPU) xorVxVy(x, y uint8) {
	cpu.V[x] ^= cpu.V[y]
}

// The arithmetic and shift operations read both operands before writing
// anything and write VF last, so VF as an operand or destination still
// ends up holding the flag.

func (cpu *CPU) addVxVy(x, y uint8) {
	sum := uint16(cpu.V[x]) + uint16(cpu.V[y])
	cpu.V[x] = uint8(sum)
	if sum > 0xFF {
		cpu.setCarry(1)
	} else {
		cpu.setCarry(0)
	}
}

func (cpu *CPU) subVxVy(x, y uint8) {
	vx, vy := cpu.V[x], cpu.V[y]
	cpu.V[x] = vx - vy
	if vx > vy {
		cpu.setCarry(1)
	} else {
		cpu.setCarry(0)
	}
}

func (cpu *CPU) subnVxVy(x, y uint8) {
	vx, vy := cpu.V[x], cpu.V[y]
	cpu.V[x] = vy - vx
	if vy > vx {
		cpu.setCarry(1)
	} else {
		cpu.setCarry(0)
	}
}

func (cpu *CPU) shrVx(x uint8) {
	vx := cpu.V[x]
	cpu.V[x] = vx >> 1
	cpu.setCarry(vx & 0x01)
}

func (cpu *CPU) shlVx(x uint8) {
	vx := cpu.V[x]
	cpu.V[x] = vx << 1
	cpu.setCarry((vx & 0x80) >> 7)
}

func (cpu *CPU) ldIAddr(index uint16) {
	cpu.I = index
}

func (cpu *CPU) jpV0Addr(addr uint16) {
	cpu.PC = addr + uint16(cpu.V[0])
}

func (cpu *CPU) rndVxByte(sys *System, x, val uint8) {
	cpu.V[x] = uint8(sys.rng.Intn(0x100)) & val
}

func (cpu *CPU) drwVxVyNibble(sys *System, x, y, h uint8) {
	// Each row of 8 pixels is read as bit-coded starting from memory location I;
	// I value doesn't change after the execution of this instruction.
	if hit := sys.gfx.draw(&sys.mem, cpu.I, cpu.V[x], cpu.V[y], h); hit {
		cpu.setCarry(1)
	} else {
		cpu.setCarry(0)
	}
}

func (cpu *CPU) skpVx(sys *System, x uint8) {
	cpu.skipIf(sys.keys[cpu.V[x]&0xF])
}

func (cpu *CPU) sknpVx(sys *System, x uint8) {
	cpu.skipIf(!sys.keys[cpu.V[x]&0xF])
}

func (cpu *CPU) ldVxDT(sys *System, x uint8) {
	cpu.V[x] = sys.delayTimer
}

// ldVxK completes at once when a key is already down. Otherwise PC is put
// back on this instruction and the system waits for a key in Step.
func (cpu *CPU) ldVxK(sys *System, x uint8) {
	if key, ok := sys.pressedKey(); ok {
		cpu.V[x] = sys.keyValue(key)
		return
	}
	cpu.PC -= 2
	sys.wait = keyWait{active: true, reg: x}
}

func (cpu *CPU) ldDTVx(sys *System, x uint8) {
	sys.delayTimer = cpu.V[x]
}

func (cpu *CPU) ldSTVx(sys *System, x uint8) {
	sys.soundTimer = cpu.V[x]
}

func (cpu *CPU) addIVx(x uint8) {
	cpu.I += uint16(cpu.V[x])
}

func (cpu *CPU) ldFVx(x uint8) {
	cpu.I = FontAddress + uint16(cpu.V[x])*FontGlyphBytes
}

func (cpu *CPU) ldBVx(mem *Memory, x uint8) {
	mem[at(cpu.I)] = cpu.V[x] / 100
	mem[at(cpu.I+1)] = (cpu.V[x] / 10) % 10
	mem[at(cpu.I+2)] = cpu.V[x] % 10
}

func (cpu *CPU) ldIVx(mem *Memory, x uint8) {
	for i := uint8(0); i <= x; i++ {
		mem[at(cpu.I+uint16(i))] = cpu.V[i]
	}
}

func (cpu *CPU) ldVxI(mem *Memory, x uint8) {
	for i := uint8(0); i <= x; i++ {
		cpu.V[i] = mem[at(cpu.I+uint16(i))]
	}
}
