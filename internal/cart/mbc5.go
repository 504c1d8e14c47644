package cart

// MBC5 supports up to 8 MiB of ROM and 128 KiB of RAM. Unlike the older
// controllers, ROM bank 0 can be mapped into the switchable area.
type MBC5 struct {
	banks

	romBank uint16 // 9 bits
	ramBank byte   // 4 bits
}

func NewMBC5(rom []byte, ramSize int) *MBC5 {
	return &MBC5{banks: newBanks(rom, ramSize), romBank: 1}
}

func (m *MBC5) Name() string { return "mbc5" }

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return m.romByte(0, addr)
	case addr < 0x8000:
		return m.romByte(int(m.romBank), addr-0x4000)
	case inRAM(addr):
		return m.readRAM(int(m.ramBank), addr)
	}
	return 0xFF
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = ramEnableValue(value)
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		m.romBank = m.romBank&0xFF | uint16(value&0x01)<<8
	case addr < 0x6000:
		m.ramBank = value & 0x0F
	case inRAM(addr):
		m.writeRAM(int(m.ramBank), addr, value)
	}
}
