package cart

// MBC1 supports up to 2 MiB of ROM and 32 KiB of RAM.
type MBC1 struct {
	banks

	bankLow  byte // 5 bits, 0 reads as 1
	bankHigh byte // 2 bits: ROM bank bits 5-6 or RAM bank
	mode     byte // 0: ROM banking, 1: RAM banking
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	return &MBC1{banks: newBanks(rom, ramSize), bankLow: 1}
}

func (m *MBC1) Name() string { return "mbc1" }

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		bank := 0
		if m.mode == 1 {
			bank = int(m.bankHigh) << 5
		}
		return m.romByte(bank, addr)
	case addr < 0x8000:
		return m.romByte(int(m.bankHigh)<<5|int(m.bankLow), addr-0x4000)
	case inRAM(addr):
		return m.readRAM(m.ramBank(), addr)
	}
	return 0xFF
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = ramEnableValue(value)
	case addr < 0x4000:
		m.bankLow = value & 0x1F
		if m.bankLow == 0 {
			m.bankLow = 1
		}
	case addr < 0x6000:
		m.bankHigh = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case inRAM(addr):
		m.writeRAM(m.ramBank(), addr, value)
	}
}

func (m *MBC1) ramBank() int {
	if m.mode == 1 {
		return int(m.bankHigh)
	}
	return 0
}
