package cpu

// Flag bits in F. The low nibble always reads zero.
const (
	FlagZ byte = 1 << 7
	FlagN byte = 1 << 6
	FlagH byte = 1 << 5
	FlagC byte = 1 << 4
)

// Registers is the SM83 register file. The 8-bit registers are the canonical
// storage; the 16-bit pairs are composed on read and split on write.
type Registers struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	IME    bool
	Halted bool
}

// Reset loads the DMG post-boot state, skipping the boot ROM.
func (r *Registers) Reset() {
	r.A, r.F = 0x01, 0xB0
	r.B, r.C = 0x00, 0x13
	r.D, r.E = 0x00, 0xD6
	r.H, r.L = 0x01, 0x4D
	r.SP = 0xFFFE
	r.PC = 0x0100
	r.IME = true
	r.Halted = false
}

func (r *Registers) AF() uint16 { return uint16(r.A)<<8 | uint16(r.F&0xF0) }
func (r *Registers) BC() uint16 { return uint16(r.B)<<8 | uint16(r.C) }
func (r *Registers) DE() uint16 { return uint16(r.D)<<8 | uint16(r.E) }
func (r *Registers) HL() uint16 { return uint16(r.H)<<8 | uint16(r.L) }

// SetAF drops the low nibble of the flag byte.
func (r *Registers) SetAF(v uint16) { r.A = byte(v >> 8); r.F = byte(v) & 0xF0 }
func (r *Registers) SetBC(v uint16) { r.B = byte(v >> 8); r.C = byte(v) }
func (r *Registers) SetDE(v uint16) { r.D = byte(v >> 8); r.E = byte(v) }
func (r *Registers) SetHL(v uint16) { r.H = byte(v >> 8); r.L = byte(v) }

// Flag reports whether every bit in mask is set in F.
func (r *Registers) Flag(mask byte) bool { return r.F&mask == mask }

func (r *Registers) setZNHC(z, n, h, carry bool) {
	var f byte
	if z {
		f |= FlagZ
	}
	if n {
		f |= FlagN
	}
	if h {
		f |= FlagH
	}
	if carry {
		f |= FlagC
	}
	r.F = f
}

func (r *Registers) carryBit() byte {
	if r.F&FlagC != 0 {
		return 1
	}
	return 0
}
