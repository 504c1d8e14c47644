package cpu

// ALU helpers. Each returns the result and rewrites F; none touch memory.

func (r *Registers) add8(a, b byte, useCarry bool) byte {
	var ci byte
	if useCarry {
		ci = r.carryBit()
	}
	sum := uint16(a) + uint16(b) + uint16(ci)
	res := byte(sum)
	r.setZNHC(res == 0, false, (a&0x0F)+(b&0x0F)+ci > 0x0F, sum > 0xFF)
	return res
}

func (r *Registers) sub8(a, b byte, useCarry bool) byte {
	var ci byte
	if useCarry {
		ci = r.carryBit()
	}
	res := a - b - ci
	r.setZNHC(res == 0, true, a&0x0F < (b&0x0F)+ci, uint16(a) < uint16(b)+uint16(ci))
	return res
}

// cp8 is sub8 with the result discarded.
func (r *Registers) cp8(a, b byte) {
	r.sub8(a, b, false)
}

func (r *Registers) inc8(v byte) byte {
	res := v + 1
	r.setZNHC(res == 0, false, v&0x0F == 0x0F, r.F&FlagC != 0)
	return res
}

func (r *Registers) dec8(v byte) byte {
	res := v - 1
	r.setZNHC(res == 0, true, v&0x0F == 0x00, r.F&FlagC != 0)
	return res
}

// addHL adds v into HL. Z is preserved.
func (r *Registers) addHL(v uint16) {
	hl := r.HL()
	sum := uint32(hl) + uint32(v)
	r.setZNHC(r.F&FlagZ != 0, false, (hl&0x0FFF)+(v&0x0FFF) > 0x0FFF, sum > 0xFFFF)
	r.SetHL(uint16(sum))
}

// addSPOffset returns SP+e. H and C come from the unsigned low-byte addition; Z and N clear.
func (r *Registers) addSPOffset(e byte) uint16 {
	sp := r.SP
	low := byte(sp)
	r.setZNHC(false, false, (low&0x0F)+(e&0x0F) > 0x0F, uint16(low)+uint16(e) > 0xFF)
	return uint16(int32(sp) + int32(int8(e)))
}

func (r *Registers) and8(a, b byte) byte {
	res := a & b
	r.setZNHC(res == 0, false, true, false)
	return res
}

func (r *Registers) xor8(a, b byte) byte {
	res := a ^ b
	r.setZNHC(res == 0, false, false, false)
	return res
}

func (r *Registers) or8(a, b byte) byte {
	res := a | b
	r.setZNHC(res == 0, false, false, false)
	return res
}

// daa adjusts A to packed BCD after an add or subtract.
func (r *Registers) daa() {
	a := r.A
	n := r.F&FlagN != 0
	carry := r.F&FlagC != 0
	var corr byte
	if r.F&FlagH != 0 || (!n && a&0x0F > 0x09) {
		corr |= 0x06
	}
	if carry || (!n && a > 0x99) {
		corr |= 0x60
		carry = true
	}
	if n {
		a -= corr
	} else {
		a += corr
	}
	r.A = a
	r.setZNHC(a == 0, n, false, carry)
}

// Accumulator rotates always clear Z.

func (r *Registers) rlca() {
	out := r.A >> 7
	r.A = r.A<<1 | out
	r.setZNHC(false, false, false, out == 1)
}

func (r *Registers) rrca() {
	out := r.A & 1
	r.A = r.A>>1 | out<<7
	r.setZNHC(false, false, false, out == 1)
}

func (r *Registers) rla() {
	out := r.A >> 7
	r.A = r.A<<1 | r.carryBit()
	r.setZNHC(false, false, false, out == 1)
}

func (r *Registers) rra() {
	out := r.A & 1
	r.A = r.A>>1 | r.carryBit()<<7
	r.setZNHC(false, false, false, out == 1)
}

func (r *Registers) cpl() {
	r.A = ^r.A
	r.F = r.F&(FlagZ|FlagC) | FlagN | FlagH
}

func (r *Registers) scf() {
	r.F = r.F&FlagZ | FlagC
}

func (r *Registers) ccf() {
	r.F = r.F&FlagZ | (r.F&FlagC ^ FlagC)
}
