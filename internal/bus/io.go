package bus

// I/O bank offsets relative to 0xFF00.
const (
	OffSB   byte = 0x01 // serial transfer data
	OffSC   byte = 0x02 // serial transfer control
	OffIF   byte = 0x0F // interrupt flag
	OffLCDC byte = 0x40
	OffLY   byte = 0x44
	OffIE   byte = 0xFF // interrupt enable, aliased into the last slot
)

const interruptMask byte = 0x1F

// IO is the 256-slot register bank behind 0xFF00-0xFFFF.
type IO struct {
	regs [0x100]byte
}

// Reset zeroes the bank and restores the idle display defaults.
func (r *IO) Reset() {
	r.regs = [0x100]byte{}
	r.regs[OffLY] = 0x94
	r.regs[OffLCDC] = 0x91
}

func (r *IO) Read(off byte) byte {
	switch off {
	case OffIF, OffIE:
		return r.regs[off] & interruptMask
	}
	return r.regs[off]
}

func (r *IO) Write(off byte, v byte) {
	switch off {
	case OffIF, OffIE:
		r.regs[off] = v & interruptMask
	default:
		r.regs[off] = v
	}
}
