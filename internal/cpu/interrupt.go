package cpu

const (
	addrIF uint16 = 0xFF0F
	addrIE uint16 = 0xFFFF

	interruptCycles = 20
	haltCycles      = 4
)

// Interrupt is a bit position in IF/IE, lowest bit first in priority.
type Interrupt uint8

const (
	VBlank Interrupt = iota
	LCDStat
	Timer
	Serial
	Joypad

	interruptCount
)

// Vector returns the handler address for the interrupt.
func (i Interrupt) Vector() uint16 { return 0x40 + uint16(i)*8 }

func (i Interrupt) mask() byte { return 1 << i }

func (i Interrupt) String() string {
	switch i {
	case VBlank:
		return "vblank"
	case LCDStat:
		return "lcd-stat"
	case Timer:
		return "timer"
	case Serial:
		return "serial"
	case Joypad:
		return "joypad"
	}
	return "unknown"
}

// RequestInterrupt sets the interrupt's IF bit through the bus.
func (c *CPU) RequestInterrupt(i Interrupt) {
	c.write8(addrIF, c.read8(addrIF)|i.mask())
}

func (c *CPU) pendingInterrupts() byte {
	return c.read8(addrIF) & c.read8(addrIE) & 0x1F
}

// serviceInterrupts runs before every fetch. handled reports that the step is
// over and cycles must be returned without fetching.
func (c *CPU) serviceInterrupts() (cycles int, handled bool) {
	pending := c.pendingInterrupts()
	wasHalted := c.Halted

	// HALT ends on any enabled request, even with IME clear
	if c.Halted && pending != 0 {
		c.Halted = false
	}

	if c.IME && pending != 0 {
		for i := VBlank; i < interruptCount; i++ {
			if pending&i.mask() != 0 {
				c.dispatch(i)
				return interruptCycles, true
			}
		}
	}

	if wasHalted {
		return haltCycles, true
	}
	return 0, false
}

func (c *CPU) dispatch(i Interrupt) {
	c.IME = false
	c.eiPending = false
	c.push16(c.PC)
	c.PC = i.Vector()
	c.write8(addrIF, c.read8(addrIF)&^i.mask())
}
