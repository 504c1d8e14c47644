package bus

import "io"

// OpenBus is returned for reads that no region claims.
const OpenBus byte = 0xFF

const romSize = 0x8000

// Region maps a closed address range to its handlers. A nil Write drops writes.
type Region struct {
	Name       string
	Start, End uint16
	Read       func(addr uint16) byte
	Write      func(addr uint16, v byte)
}

func (r Region) contains(addr uint16) bool { return addr >= r.Start && addr <= r.End }

type Bus struct {
	memory  [0x10000]byte
	io      IO
	regions []Region
	serial  io.Writer
}

func New() *Bus {
	b := &Bus{}
	b.io.Reset()
	b.regions = b.defaultRegions()
	return b
}

// defaultRegions returns the map in priority order; the first match wins.
func (b *Bus) defaultRegions() []Region {
	direct := func(addr uint16) byte { return b.memory[addr] }
	store := func(addr uint16, v byte) { b.memory[addr] = v }
	return []Region{
		{Name: "rom", Start: 0x0000, End: 0x7FFF, Read: direct},
		{Name: "ram", Start: 0x8000, End: 0xDFFF, Read: direct, Write: store},
		{
			Name: "echo", Start: 0xE000, End: 0xFDFF,
			Read:  func(addr uint16) byte { return b.memory[addr-0x2000] },
			Write: func(addr uint16, v byte) { b.memory[addr-0x2000] = v },
		},
		{Name: "high", Start: 0xFE00, End: 0xFEFF, Read: direct, Write: store},
		{
			Name: "io", Start: 0xFF00, End: 0xFFFE,
			Read:  func(addr uint16) byte { return b.io.Read(byte(addr - 0xFF00)) },
			Write: b.writeIO,
		},
		{
			Name: "ie", Start: 0xFFFF, End: 0xFFFF,
			Read:  func(uint16) byte { return b.io.Read(OffIE) },
			Write: func(_ uint16, v byte) { b.io.Write(OffIE, v) },
		},
	}
}

func (b *Bus) writeIO(addr uint16, v byte) {
	off := byte(addr - 0xFF00)
	b.io.Write(off, v)
	if off == OffSB && b.serial != nil {
		_, _ = b.serial.Write([]byte{v})
	}
}

// Reset clears memory and the I/O bank. Mapped regions are kept.
func (b *Bus) Reset() {
	b.memory = [0x10000]byte{}
	b.io.Reset()
}

// MapRegion installs r ahead of every existing region.
func (b *Bus) MapRegion(r Region) {
	b.regions = append([]Region{r}, b.regions...)
}

// ResetMap drops every region installed with MapRegion.
func (b *Bus) ResetMap() {
	b.regions = b.defaultRegions()
}

// Regions returns a copy of the current map in priority order.
func (b *Bus) Regions() []Region {
	out := make([]Region, len(b.regions))
	copy(out, b.regions)
	return out
}

func (b *Bus) region(addr uint16) (Region, bool) {
	for _, r := range b.regions {
		if r.contains(addr) {
			return r, true
		}
	}
	return Region{}, false
}

func (b *Bus) Read(addr uint16) byte {
	r, ok := b.region(addr)
	if !ok || r.Read == nil {
		return OpenBus
	}
	return r.Read(addr)
}

func (b *Bus) Write(addr uint16, value byte) {
	r, ok := b.region(addr)
	if !ok || r.Write == nil {
		return
	}
	r.Write(addr, value)
}

// Read16 reads a little-endian word; the high byte address wraps at 0xFFFF.
func (b *Bus) Read16(addr uint16) uint16 {
	lo := uint16(b.Read(addr))
	hi := uint16(b.Read(addr + 1))
	return lo | hi<<8
}

func (b *Bus) Write16(addr uint16, v uint16) {
	b.Write(addr, byte(v))
	b.Write(addr+1, byte(v>>8))
}

// LoadROM copies at most 32 KiB of image into the ROM area and returns the byte count.
// Bytes past the image keep their current value.
func (b *Bus) LoadROM(image []byte) int {
	return copy(b.memory[:romSize], image)
}

// SetSerialWriter taps every write to SB (0xFF01). Pass nil to detach.
func (b *Bus) SetSerialWriter(w io.Writer) { b.serial = w }

// IO exposes the register bank for peripherals and tests.
func (b *Bus) IO() *IO { return &b.io }
