package cpu

import (
	"errors"
	"fmt"
)

// ErrUnimplementedOpcode is matched by every DecodeError.
var ErrUnimplementedOpcode = errors.New("unimplemented opcode")

// DecodeError reports an opcode with no table entry and the address it was fetched from.
type DecodeError struct {
	Opcode byte
	PC     uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unimplemented opcode 0x%02X at pc 0x%04X", e.Opcode, e.PC)
}

func (e *DecodeError) Unwrap() error { return ErrUnimplementedOpcode }

// Memory is the view of the bus the CPU needs.
type Memory interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// Option configures a CPU.
type Option func(*CPU)

// WithDelayedEI makes EI take effect after the following instruction, as on
// hardware. Without it EI enables interrupts immediately.
func WithDelayedEI() Option {
	return func(c *CPU) { c.delayedEI = true }
}

// CPU is the SM83 instruction engine.
type CPU struct {
	Registers

	mem Memory

	delayedEI bool
	// EI executed with delayedEI; IME is set once the next instruction completes
	eiPending bool
}

// New creates a CPU in the post-boot state.
func New(mem Memory, opts ...Option) *CPU {
	c := &CPU{mem: mem}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Reset restores the post-boot register state.
func (c *CPU) Reset() {
	c.Registers.Reset()
	c.eiPending = false
}

// Memory exposes the bus the CPU was built with.
func (c *CPU) Memory() Memory { return c.mem }

// Step services a pending interrupt or executes one instruction and returns
// the elapsed cycles. An opcode without a table entry yields a *DecodeError;
// PC is then left past the opcode byte.
func (c *CPU) Step() (cycles int, err error) {
	armed := c.eiPending
	defer func() {
		if armed && c.eiPending {
			c.IME = true
			c.eiPending = false
		}
	}()

	if cyc, handled := c.serviceInterrupts(); handled {
		return cyc, nil
	}

	pc := c.PC
	op := c.fetch8()
	in := &opcodes[op]
	if in.exec == nil {
		return 0, &DecodeError{Opcode: op, PC: pc}
	}
	return in.exec(c), nil
}

func (c *CPU) read8(addr uint16) byte     { return c.mem.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.mem.Write(addr, v) }

func (c *CPU) fetch8() byte {
	b := c.read8(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | hi<<8
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

// push16 stores the high byte first so the low byte ends up at SP.
func (c *CPU) push16(v uint16) {
	c.SP--
	c.write8(c.SP, byte(v>>8))
	c.SP--
	c.write8(c.SP, byte(v))
}

func (c *CPU) pop16() uint16 {
	lo := uint16(c.read8(c.SP))
	c.SP++
	hi := uint16(c.read8(c.SP))
	c.SP++
	return lo | hi<<8
}

// Operand index 0-7 as encoded in opcodes: B C D E H L (HL) A.
const regHLInd = 6

func (c *CPU) reg8(idx byte) byte {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case regHLInd:
		return c.read8(c.HL())
	}
	return c.A
}

func (c *CPU) setReg8(idx byte, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case regHLInd:
		c.write8(c.HL(), v)
	default:
		c.A = v
	}
}

// Pair index 0-3: BC DE HL SP.
func (c *CPU) pair(idx byte) uint16 {
	switch idx {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		return c.HL()
	}
	return c.SP
}

func (c *CPU) setPair(idx byte, v uint16) {
	switch idx {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		c.SetHL(v)
	default:
		c.SP = v
	}
}

// Stack pair index 0-3: BC DE HL AF.
func (c *CPU) stackPair(idx byte) uint16 {
	if idx == 3 {
		return c.AF()
	}
	return c.pair(idx)
}

func (c *CPU) setStackPair(idx byte, v uint16) {
	if idx == 3 {
		c.SetAF(v)
		return
	}
	c.setPair(idx, v)
}

// Condition index 0-3: NZ Z NC C.
func (c *CPU) cond(idx byte) bool {
	switch idx {
	case 0:
		return c.F&FlagZ == 0
	case 1:
		return c.F&FlagZ != 0
	case 2:
		return c.F&FlagC == 0
	}
	return c.F&FlagC != 0
}
