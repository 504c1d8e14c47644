package cart

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

const (
	titleStart = 0x0134
	titleEnd   = 0x0144 // exclusive
	headerEnd  = 0x014F
)

// ErrShortROM is returned when an image ends before the header does.
var ErrShortROM = errors.New("rom too small to contain header")

// Header holds the decoded cartridge header at 0x0100-0x014F.
type Header struct {
	Title          string // NUL-trimmed ASCII
	CGBFlag        byte   // 0x0143, overlaps the last title byte
	CartType       byte   // 0x0147
	ROMSizeCode    byte   // 0x0148
	RAMSizeCode    byte   // 0x0149
	ROMVersion     byte   // 0x014C
	HeaderChecksum byte   // 0x014D
	GlobalChecksum uint16 // 0x014E-0x014F, big-endian

	ROMSize  int
	ROMBanks int
	RAMSize  int
}

// ParseHeader decodes the header of rom. The logo is not verified; test ROMs
// often omit it.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) <= headerEnd {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortROM, len(rom))
	}

	h := &Header{
		Title:          strings.TrimRight(string(rom[titleStart:titleEnd]), "\x00"),
		CGBFlag:        rom[0x0143],
		CartType:       rom[0x0147],
		ROMSizeCode:    rom[0x0148],
		RAMSizeCode:    rom[0x0149],
		ROMVersion:     rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: binary.BigEndian.Uint16(rom[0x014E:0x0150]),
	}
	// CGB titles are 15 bytes; the flag byte is not part of the name
	if h.CGBFlag&0x80 != 0 {
		h.Title = strings.TrimRight(string(rom[titleStart:titleEnd-1]), "\x00")
	}
	h.ROMSize, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	h.RAMSize = decodeRAMSize(h.RAMSizeCode)
	return h, nil
}

// CartTypeName names the mapper family of the cartridge type byte.
func (h *Header) CartTypeName() string {
	switch h.CartType {
	case 0x00:
		return "rom-only"
	case 0x01, 0x02, 0x03:
		return "mbc1"
	case 0x05, 0x06:
		return "mbc2"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "mbc3"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "mbc5"
	}
	return "unknown"
}

// Banked reports whether the cartridge needs a bank controller beyond the
// flat 32 KiB map.
func (h *Header) Banked() bool {
	return h.CartType != 0x00 || h.ROMSizeCode != 0x00
}

// HeaderChecksumOK verifies the checksum over 0x0134-0x014C.
func HeaderChecksumOK(rom []byte) bool {
	if len(rom) <= 0x014D {
		return false
	}
	var sum byte
	for addr := titleStart; addr <= 0x014C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum == rom[0x014D]
}

func decodeROMSize(code byte) (size, banks int) {
	switch {
	case code <= 0x08:
		banks = 2 << code
	case code == 0x52:
		banks = 72
	case code == 0x53:
		banks = 80
	case code == 0x54:
		banks = 96
	default:
		return 0, 0
	}
	return banks * 16 * 1024, banks
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	}
	return 0
}
