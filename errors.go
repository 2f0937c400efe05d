package chip8

import (
	"errors"
	"fmt"
)

var (
	ErrStackOverflow    = errors.New("stack overflow")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrPCOutOfRange     = errors.New("program counter out of range")
	ErrNoROM            = errors.New("no ROM data")
	ErrROMTooLarge      = fmt.Errorf("ROM larger than %d bytes", MaxROMSize)
	ErrInvalidClockRate = errors.New("clock rate must be at least 60 instructions per second")
)

// Fault is a fatal machine condition. It ends the session.
type Fault struct {
	Err    error
	PC     uint16 // address of the faulting instruction
	Opcode uint16
}

func (f *Fault) Error() string {
	if errors.Is(f.Err, ErrPCOutOfRange) {
		return fmt.Sprintf("%v: PC 0x%04X", f.Err, f.PC)
	}
	return fmt.Sprintf("%v at PC 0x%03X (opcode %s)", f.Err, f.PC, Decode(f.Opcode))
}

func (f *Fault) Unwrap() error {
	return f.Err
}
