package cpu

import "fmt"

// Class groups opcodes by what they do.
type Class uint8

const (
	ClassNone Class = iota
	ClassLoad
	ClassALU
	ClassControl
	ClassStack
	ClassSystem
)

func (c Class) String() string {
	switch c {
	case ClassLoad:
		return "load"
	case ClassALU:
		return "alu"
	case ClassControl:
		return "control"
	case ClassStack:
		return "stack"
	case ClassSystem:
		return "system"
	}
	return "none"
}

// Mode is the operand addressing mode; it fixes the instruction length.
type Mode uint8

const (
	ModeImplied     Mode = iota
	ModeRegister         // register or register pair
	ModeIndirect         // (BC) (DE) (HL) (HL+) (HL-) (C)
	ModeImmediate8       // d8 / e8
	ModeImmediate16      // d16
	ModeAbsolute         // a16
	ModeHighPage         // (0xFF00+a8)
	ModeRelative         // PC+e8
)

// Size returns the instruction length in bytes, opcode included.
func (m Mode) Size() int {
	switch m {
	case ModeImmediate8, ModeHighPage, ModeRelative:
		return 2
	case ModeImmediate16, ModeAbsolute:
		return 3
	}
	return 1
}

// Info describes a table entry.
type Info struct {
	Mnemonic string
	Class    Class
	Mode     Mode
}

type instruction struct {
	Info
	exec func(c *CPU) int
}

var opcodes [256]instruction

// Lookup returns the table entry for op; ok is false for undefined opcodes.
func Lookup(op byte) (info Info, ok bool) {
	in := opcodes[op]
	return in.Info, in.exec != nil
}

var (
	regNames   = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	pairNames  = [4]string{"BC", "DE", "HL", "SP"}
	stackNames = [4]string{"BC", "DE", "HL", "AF"}
	condNames  = [4]string{"NZ", "Z", "NC", "C"}
)

type aluOp struct {
	name string
	fn   func(c *CPU, v byte)
}

var aluOps = [8]aluOp{
	{"ADD", func(c *CPU, v byte) { c.A = c.add8(c.A, v, false) }},
	{"ADC", func(c *CPU, v byte) { c.A = c.add8(c.A, v, true) }},
	{"SUB", func(c *CPU, v byte) { c.A = c.sub8(c.A, v, false) }},
	{"SBC", func(c *CPU, v byte) { c.A = c.sub8(c.A, v, true) }},
	{"AND", func(c *CPU, v byte) { c.A = c.and8(c.A, v) }},
	{"XOR", func(c *CPU, v byte) { c.A = c.xor8(c.A, v) }},
	{"OR", func(c *CPU, v byte) { c.A = c.or8(c.A, v) }},
	{"CP", func(c *CPU, v byte) { c.cp8(c.A, v) }},
}

func def(op byte, mnemonic string, class Class, mode Mode, exec func(c *CPU) int) {
	opcodes[op] = instruction{Info: Info{Mnemonic: mnemonic, Class: class, Mode: mode}, exec: exec}
}

func regMode(idx byte) Mode {
	if idx == regHLInd {
		return ModeIndirect
	}
	return ModeRegister
}

func init() {
	buildLoads()
	buildALU()
	buildControl()
	buildStack()
	buildSystem()
}

func buildLoads() {
	// LD r,r' (0x76 is HALT)
	for op := 0x40; op <= 0x7F; op++ {
		if op == 0x76 {
			continue
		}
		dst, src := byte(op>>3)&7, byte(op)&7
		cycles := 4
		mode := ModeRegister
		if dst == regHLInd || src == regHLInd {
			cycles = 8
			mode = ModeIndirect
		}
		def(byte(op), fmt.Sprintf("LD %s,%s", regNames[dst], regNames[src]), ClassLoad, mode,
			func(c *CPU) int {
				c.setReg8(dst, c.reg8(src))
				return cycles
			})
	}

	// LD r,d8
	for r := byte(0); r < 8; r++ {
		cycles := 8
		if r == regHLInd {
			cycles = 12
		}
		def(0x06+r<<3, fmt.Sprintf("LD %s,d8", regNames[r]), ClassLoad, ModeImmediate8, func(c *CPU) int {
			c.setReg8(r, c.fetch8())
			return cycles
		})
	}

	// LD rr,d16
	for p := byte(0); p < 4; p++ {
		def(0x01+p<<4, fmt.Sprintf("LD %s,d16", pairNames[p]), ClassLoad, ModeImmediate16, func(c *CPU) int {
			c.setPair(p, c.fetch16())
			return 12
		})
	}

	def(0x02, "LD (BC),A", ClassLoad, ModeIndirect, func(c *CPU) int { c.write8(c.BC(), c.A); return 8 })
	def(0x12, "LD (DE),A", ClassLoad, ModeIndirect, func(c *CPU) int { c.write8(c.DE(), c.A); return 8 })
	def(0x0A, "LD A,(BC)", ClassLoad, ModeIndirect, func(c *CPU) int { c.A = c.read8(c.BC()); return 8 })
	def(0x1A, "LD A,(DE)", ClassLoad, ModeIndirect, func(c *CPU) int { c.A = c.read8(c.DE()); return 8 })

	def(0x22, "LD (HL+),A", ClassLoad, ModeIndirect, func(c *CPU) int {
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl + 1)
		return 8
	})
	def(0x2A, "LD A,(HL+)", ClassLoad, ModeIndirect, func(c *CPU) int {
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl + 1)
		return 8
	})
	def(0x32, "LD (HL-),A", ClassLoad, ModeIndirect, func(c *CPU) int {
		hl := c.HL()
		c.write8(hl, c.A)
		c.SetHL(hl - 1)
		return 8
	})
	def(0x3A, "LD A,(HL-)", ClassLoad, ModeIndirect, func(c *CPU) int {
		hl := c.HL()
		c.A = c.read8(hl)
		c.SetHL(hl - 1)
		return 8
	})

	def(0x08, "LD (a16),SP", ClassLoad, ModeAbsolute, func(c *CPU) int {
		c.write16(c.fetch16(), c.SP)
		return 20
	})
	def(0xEA, "LD (a16),A", ClassLoad, ModeAbsolute, func(c *CPU) int {
		c.write8(c.fetch16(), c.A)
		return 16
	})
	def(0xFA, "LD A,(a16)", ClassLoad, ModeAbsolute, func(c *CPU) int {
		c.A = c.read8(c.fetch16())
		return 16
	})

	def(0xE0, "LDH (a8),A", ClassLoad, ModeHighPage, func(c *CPU) int {
		c.write8(0xFF00+uint16(c.fetch8()), c.A)
		return 12
	})
	def(0xF0, "LDH A,(a8)", ClassLoad, ModeHighPage, func(c *CPU) int {
		c.A = c.read8(0xFF00 + uint16(c.fetch8()))
		return 12
	})
	def(0xE2, "LD (C),A", ClassLoad, ModeIndirect, func(c *CPU) int {
		c.write8(0xFF00+uint16(c.C), c.A)
		return 8
	})
	def(0xF2, "LD A,(C)", ClassLoad, ModeIndirect, func(c *CPU) int {
		c.A = c.read8(0xFF00 + uint16(c.C))
		return 8
	})

	def(0xF8, "LD HL,SP+e8", ClassLoad, ModeImmediate8, func(c *CPU) int {
		c.SetHL(c.addSPOffset(c.fetch8()))
		return 12
	})
	def(0xF9, "LD SP,HL", ClassLoad, ModeRegister, func(c *CPU) int {
		c.SP = c.HL()
		return 8
	})
}

func buildALU() {
	for op := 0x80; op <= 0xBF; op++ {
		alu, src := aluOps[(op>>3)&7], byte(op)&7
		cycles := 4
		if src == regHLInd {
			cycles = 8
		}
		def(byte(op), fmt.Sprintf("%s A,%s", alu.name, regNames[src]), ClassALU, regMode(src), func(c *CPU) int {
			alu.fn(c, c.reg8(src))
			return cycles
		})
	}

	for i, alu := range aluOps {
		def(0xC6+byte(i)<<3, alu.name+" A,d8", ClassALU, ModeImmediate8, func(c *CPU) int {
			alu.fn(c, c.fetch8())
			return 8
		})
	}

	for r := byte(0); r < 8; r++ {
		cycles := 4
		if r == regHLInd {
			cycles = 12
		}
		def(0x04+r<<3, "INC "+regNames[r], ClassALU, regMode(r), func(c *CPU) int {
			c.setReg8(r, c.inc8(c.reg8(r)))
			return cycles
		})
		def(0x05+r<<3, "DEC "+regNames[r], ClassALU, regMode(r), func(c *CPU) int {
			c.setReg8(r, c.dec8(c.reg8(r)))
			return cycles
		})
	}

	// 16-bit INC/DEC leave flags alone
	for p := byte(0); p < 4; p++ {
		def(0x03+p<<4, "INC "+pairNames[p], ClassALU, ModeRegister, func(c *CPU) int {
			c.setPair(p, c.pair(p)+1)
			return 8
		})
		def(0x0B+p<<4, "DEC "+pairNames[p], ClassALU, ModeRegister, func(c *CPU) int {
			c.setPair(p, c.pair(p)-1)
			return 8
		})
		def(0x09+p<<4, "ADD HL,"+pairNames[p], ClassALU, ModeRegister, func(c *CPU) int {
			c.addHL(c.pair(p))
			return 8
		})
	}

	def(0xE8, "ADD SP,e8", ClassALU, ModeImmediate8, func(c *CPU) int {
		c.SP = c.addSPOffset(c.fetch8())
		return 16
	})

	def(0x07, "RLCA", ClassALU, ModeImplied, func(c *CPU) int { c.rlca(); return 4 })
	def(0x0F, "RRCA", ClassALU, ModeImplied, func(c *CPU) int { c.rrca(); return 4 })
	def(0x17, "RLA", ClassALU, ModeImplied, func(c *CPU) int { c.rla(); return 4 })
	def(0x1F, "RRA", ClassALU, ModeImplied, func(c *CPU) int { c.rra(); return 4 })
	def(0x27, "DAA", ClassALU, ModeImplied, func(c *CPU) int { c.daa(); return 4 })
	def(0x2F, "CPL", ClassALU, ModeImplied, func(c *CPU) int { c.cpl(); return 4 })
	def(0x37, "SCF", ClassALU, ModeImplied, func(c *CPU) int { c.scf(); return 4 })
	def(0x3F, "CCF", ClassALU, ModeImplied, func(c *CPU) int { c.ccf(); return 4 })
}

func (c *CPU) jumpRelative(off byte) {
	c.PC = uint16(int32(c.PC) + int32(int8(off)))
}

func buildControl() {
	def(0x18, "JR e8", ClassControl, ModeRelative, func(c *CPU) int {
		c.jumpRelative(c.fetch8())
		return 12
	})
	def(0xC3, "JP a16", ClassControl, ModeAbsolute, func(c *CPU) int {
		c.PC = c.fetch16()
		return 16
	})
	def(0xE9, "JP HL", ClassControl, ModeRegister, func(c *CPU) int {
		c.PC = c.HL()
		return 4
	})
	def(0xCD, "CALL a16", ClassControl, ModeAbsolute, func(c *CPU) int {
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	})
	def(0xC9, "RET", ClassControl, ModeImplied, func(c *CPU) int {
		c.PC = c.pop16()
		return 16
	})
	def(0xD9, "RETI", ClassControl, ModeImplied, func(c *CPU) int {
		c.PC = c.pop16()
		c.IME = true
		return 16
	})

	for cc := byte(0); cc < 4; cc++ {
		def(0x20+cc<<3, "JR "+condNames[cc]+",e8", ClassControl, ModeRelative, func(c *CPU) int {
			off := c.fetch8()
			if c.cond(cc) {
				c.jumpRelative(off)
				return 12
			}
			return 8
		})
		def(0xC2+cc<<3, "JP "+condNames[cc]+",a16", ClassControl, ModeAbsolute, func(c *CPU) int {
			addr := c.fetch16()
			if c.cond(cc) {
				c.PC = addr
				return 16
			}
			return 12
		})
		def(0xC4+cc<<3, "CALL "+condNames[cc]+",a16", ClassControl, ModeAbsolute, func(c *CPU) int {
			addr := c.fetch16()
			if c.cond(cc) {
				c.push16(c.PC)
				c.PC = addr
				return 24
			}
			return 12
		})
		def(0xC0+cc<<3, "RET "+condNames[cc], ClassControl, ModeImplied, func(c *CPU) int {
			if c.cond(cc) {
				c.PC = c.pop16()
				return 20
			}
			return 8
		})
	}

	for n := byte(0); n < 8; n++ {
		vector := uint16(n) * 8
		def(0xC7+n<<3, fmt.Sprintf("RST %02XH", vector), ClassControl, ModeImplied, func(c *CPU) int {
			c.push16(c.PC)
			c.PC = vector
			return 16
		})
	}
}

func buildStack() {
	for p := byte(0); p < 4; p++ {
		def(0xC5+p<<4, "PUSH "+stackNames[p], ClassStack, ModeRegister, func(c *CPU) int {
			c.push16(c.stackPair(p))
			return 16
		})
		def(0xC1+p<<4, "POP "+stackNames[p], ClassStack, ModeRegister, func(c *CPU) int {
			c.setStackPair(p, c.pop16())
			return 12
		})
	}
}

func buildSystem() {
	def(0x00, "NOP", ClassSystem, ModeImplied, func(c *CPU) int { return 4 })
	def(0x76, "HALT", ClassSystem, ModeImplied, func(c *CPU) int {
		c.Halted = true
		return 4
	})
	// STOP is treated as HALT; its padding byte is skipped.
	def(0x10, "STOP", ClassSystem, ModeImmediate8, func(c *CPU) int {
		c.fetch8()
		c.Halted = true
		return 4
	})
	def(0xF3, "DI", ClassSystem, ModeImplied, func(c *CPU) int {
		c.IME = false
		c.eiPending = false
		return 4
	})
	def(0xFB, "EI", ClassSystem, ModeImplied, func(c *CPU) int {
		if c.delayedEI {
			if !c.IME {
				c.eiPending = true
			}
			return 4
		}
		c.IME = true
		return 4
	})
}
