package chip8

import chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"

// Mnemonic returns the assembler name of opc, or "" when the instruction set
// has no entry for it.
func Mnemonic(opc uint16) string {
	for _, op := range chip8cpu.Opcodes[int(opc>>12)] {
		if op.Instruction != nil && op.Info.Mask&opc == op.Info.Value {
			return op.Instruction.Name
		}
	}
	return ""
}
