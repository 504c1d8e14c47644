package cart

// MBC3 supports up to 2 MiB of ROM and 32 KiB of RAM. The real-time clock is
// not emulated: its registers read as zero and ignore writes.
type MBC3 struct {
	banks

	romBank byte // 7 bits, 0 reads as 1
	ramBank byte // 0-3 selects RAM, 0x08-0x0C a clock register
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	return &MBC3{banks: newBanks(rom, ramSize), romBank: 1}
}

func (m *MBC3) Name() string { return "mbc3" }

func (m *MBC3) rtcSelected() bool { return m.ramBank >= 0x08 }

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		return m.romByte(0, addr)
	case addr < 0x8000:
		return m.romByte(int(m.romBank), addr-0x4000)
	case inRAM(addr):
		if m.rtcSelected() {
			if !m.ramEnabled {
				return 0xFF
			}
			return 0x00
		}
		return m.readRAM(int(m.ramBank), addr)
	}
	return 0xFF
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = ramEnableValue(value)
	case addr < 0x4000:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr < 0x6000:
		if value <= 0x03 || (value >= 0x08 && value <= 0x0C) {
			m.ramBank = value
		}
	case addr < 0x8000:
		// clock latch
	case inRAM(addr):
		if !m.rtcSelected() {
			m.writeRAM(int(m.ramBank), addr, value)
		}
	}
}
