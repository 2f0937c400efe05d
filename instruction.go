package chip8

import "fmt"

// Instruction is the decoded view of one opcode. It is only valid for the
// dispatch step it was decoded in.
type Instruction struct {
	Opcode uint16
	NNN    uint16 // address
	NN     uint8  // 8-bit constant
	N      uint8  // 4-bit constant
	X      uint8  // register
	Y      uint8  // register
}

// Decode splits opc into its operand fields. Every opcode decodes, whether or
// not an operation exists for it.
func Decode(opc uint16) Instruction {
	return Instruction{
		Opcode: opc,
		NNN:    opc & 0xFFF,
		NN:     uint8(opc & 0xFF),
		N:      uint8(opc & 0xF),
		X:      uint8((opc >> 8) & 0xF),
		Y:      uint8((opc >> 4) & 0xF),
	}
}

// Category is the high nibble the dispatcher switches on.
func (ins Instruction) Category() uint8 {
	return uint8(ins.Opcode >> 12)
}

// String is the opcode in hex followed by its mnemonic when it has one.
func (ins Instruction) String() string {
	if name := Mnemonic(ins.Opcode); name != "" {
		return fmt.Sprintf("%04X %s", ins.Opcode, name)
	}
	return fmt.Sprintf("%04X", ins.Opcode)
}
