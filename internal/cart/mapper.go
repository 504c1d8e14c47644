package cart

import (
	"errors"
	"fmt"
)

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000

	ramStart = 0xA000
	ramEnd   = 0xBFFF
)

// ErrUnsupportedMapper is returned for cartridge types without a bank controller implementation.
var ErrUnsupportedMapper = errors.New("unsupported cartridge type")

// Mapper is a bank controller. It serves CPU addresses 0x0000-0x7FFF and
// 0xA000-0xBFFF; writes to the ROM range program its bank registers.
type Mapper interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
	Name() string
}

// NewMapper picks a bank controller from the header. It returns nil for
// images that fit the flat 32 KiB map without one.
func NewMapper(rom []byte, h *Header) (Mapper, error) {
	if !h.Banked() {
		return nil, nil
	}
	switch h.CartTypeName() {
	case "rom-only":
		return nil, nil
	case "mbc1":
		return NewMBC1(rom, h.RAMSize), nil
	case "mbc3":
		return NewMBC3(rom, h.RAMSize), nil
	case "mbc5":
		return NewMBC5(rom, h.RAMSize), nil
	}
	return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedMapper, h.CartType)
}

// banks holds the memory shared by all controllers.
type banks struct {
	rom        []byte
	ram        []byte
	ramEnabled bool
}

func newBanks(rom []byte, ramSize int) banks {
	b := banks{rom: rom}
	if ramSize > 0 {
		b.ram = make([]byte, ramSize)
	}
	return b
}

// romByte reads offset off of ROM bank bank. Bank numbers wrap at the image size.
func (b *banks) romByte(bank int, off uint16) byte {
	count := (len(b.rom) + romBankSize - 1) / romBankSize
	if count == 0 {
		return 0xFF
	}
	idx := (bank%count)*romBankSize + int(off)
	if idx >= len(b.rom) {
		return 0xFF
	}
	return b.rom[idx]
}

func (b *banks) ramIndex(bank int, addr uint16) (int, bool) {
	if !b.ramEnabled || len(b.ram) == 0 {
		return 0, false
	}
	idx := bank*ramBankSize + int(addr-ramStart)
	return idx % len(b.ram), true
}

func (b *banks) readRAM(bank int, addr uint16) byte {
	idx, ok := b.ramIndex(bank, addr)
	if !ok {
		return 0xFF
	}
	return b.ram[idx]
}

func (b *banks) writeRAM(bank int, addr uint16, v byte) {
	if idx, ok := b.ramIndex(bank, addr); ok {
		b.ram[idx] = v
	}
}

func ramEnableValue(v byte) bool { return v&0x0F == 0x0A }

func inRAM(addr uint16) bool { return addr >= ramStart && addr <= ramEnd }
