package cart

import (
	"fmt"
	"io"
	"os"
)

const (
	// FlatSize is the part of an image mapped without a bank controller.
	FlatSize = 0x8000
	// MaxSize is the largest image any supported controller can address.
	MaxSize = 8 << 20
)

// Load reads at most MaxSize bytes of a ROM image. Shorter images are
// returned as is; anything past MaxSize is left unread.
func Load(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize))
	if err != nil {
		return nil, fmt.Errorf("read rom: %w", err)
	}
	return data, nil
}

// LoadFile loads the ROM image at path.
func LoadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rom: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f)
}
