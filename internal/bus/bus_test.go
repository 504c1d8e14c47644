package bus

import (
	"bytes"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestBus_ROMAndRAM(t *testing.T) {
	b := New()
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x42
	assert.Equal(t, 0x8000, b.LoadROM(rom))

	assert.Equal(t, byte(0x42), b.Read(0x0100))

	// ROM area ignores writes
	b.Write(0x0100, 0x99)
	assert.Equal(t, byte(0x42), b.Read(0x0100))

	b.Write(0xC000, 0x99)
	assert.Equal(t, byte(0x99), b.Read(0xC000))

	b.Write(0x8000, 0x11) // VRAM is plain storage here
	assert.Equal(t, byte(0x11), b.Read(0x8000))

	b.Write(0xFE00, 0x22)
	assert.Equal(t, byte(0x22), b.Read(0xFE00))

	b.Write(0xFF80, 0xAB)
	assert.Equal(t, byte(0xAB), b.Read(0xFF80))
}

func TestBus_LoadROMShortAndOversized(t *testing.T) {
	b := New()
	assert.Equal(t, 3, b.LoadROM([]byte{1, 2, 3}))
	assert.Equal(t, byte(3), b.Read(0x0002))
	assert.Equal(t, byte(0), b.Read(0x0003))

	big := bytes.Repeat([]byte{0xEE}, 0x9000)
	assert.Equal(t, 0x8000, b.LoadROM(big))
	assert.Equal(t, byte(0xEE), b.Read(0x7FFF))
	assert.Equal(t, byte(0x00), b.Read(0x8000))
}

func TestBus_EchoMirrorsWorkRAM(t *testing.T) {
	b := New()
	b.Write(0xE010, 0xAB)
	assert.Equal(t, byte(0xAB), b.Read(0xC010))

	b.Write(0xC020, 0xCD)
	assert.Equal(t, byte(0xCD), b.Read(0xE020))

	// top of the echo range maps to 0xDDFF
	b.Write(0xFDFF, 0x5A)
	assert.Equal(t, byte(0x5A), b.Read(0xDDFF))
}

func TestBus_InterruptRegisters(t *testing.T) {
	b := New()

	b.Write(0xFF0F, 0xFF)
	assert.Equal(t, byte(0x1F), b.Read(0xFF0F))

	b.Write(0xFFFF, 0xFB)
	assert.Equal(t, byte(0x1B), b.Read(0xFFFF))

	// IE lives in the last slot of the bank
	assert.Equal(t, byte(0x1B), b.IO().Read(OffIE))
}

func TestBus_IODefaults(t *testing.T) {
	b := New()
	assert.Equal(t, byte(0x94), b.Read(0xFF44))
	assert.Equal(t, byte(0x91), b.Read(0xFF40))
	assert.Equal(t, byte(0x00), b.Read(0xFF0F))
	assert.Equal(t, byte(0x00), b.Read(0xFFFF))

	b.Write(0xFF44, 0x00)
	b.Reset()
	assert.Equal(t, byte(0x94), b.Read(0xFF44))
}

func TestBus_SerialTap(t *testing.T) {
	b := New()
	var out bytes.Buffer
	b.SetSerialWriter(&out)

	b.Write(0xFF01, 'O')
	b.Write(0xFF01, 'K')
	b.Write(0xFF02, 0x81) // control writes are not echoed
	assert.Equal(t, "OK", out.String())
	assert.Equal(t, byte('K'), b.Read(0xFF01))

	b.SetSerialWriter(nil)
	b.Write(0xFF01, '!')
	assert.Equal(t, "OK", out.String())
}

func TestBus_Read16Write16(t *testing.T) {
	b := New()
	b.Write16(0xC100, 0xBEEF)
	assert.Equal(t, byte(0xEF), b.Read(0xC100))
	assert.Equal(t, byte(0xBE), b.Read(0xC101))
	assert.Equal(t, uint16(0xBEEF), b.Read16(0xC100))

	// high byte of a word at 0xFFFF wraps to 0x0000
	rom := []byte{0x12}
	b.LoadROM(rom)
	b.Write(0xFFFF, 0x03)
	assert.Equal(t, uint16(0x1203), b.Read16(0xFFFF))
}

func TestBus_RegionsCoverAddressSpace(t *testing.T) {
	b := New()
	regions := b.Regions()
	names := make([]string, 0, len(regions))
	for _, r := range regions {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"rom", "ram", "echo", "high", "io", "ie"}, names)

	for addr := 0; addr <= 0xFFFF; addr++ {
		_, ok := b.region(uint16(addr))
		if !ok {
			t.Fatalf("address %04X not mapped", addr)
		}
	}
}

func TestBus_MapRegionTakesPriority(t *testing.T) {
	b := New()
	var banked [0x4000]byte
	banked[0] = 0x77
	b.MapRegion(Region{
		Name: "bank", Start: 0x4000, End: 0x7FFF,
		Read:  func(addr uint16) byte { return banked[addr-0x4000] },
		Write: func(addr uint16, v byte) { banked[addr-0x4000] = v },
	})

	assert.Equal(t, byte(0x77), b.Read(0x4000))
	b.Write(0x4001, 0x55)
	assert.Equal(t, byte(0x55), banked[1])
	assert.Equal(t, "bank", b.Regions()[0].Name)

	b.ResetMap()
	assert.Equal(t, "rom", b.Regions()[0].Name)
	assert.Equal(t, byte(0x00), b.Read(0x4000))
}

func TestBus_UnmappedReadsOpenBus(t *testing.T) {
	b := &Bus{}
	b.io.Reset()
	b.regions = []Region{{Name: "rom", Start: 0x0000, End: 0x7FFF, Read: func(uint16) byte { return 0 }}}

	assert.Equal(t, OpenBus, b.Read(0xC000))
	b.Write(0xC000, 0x12) // dropped
	assert.Equal(t, byte(0x00), b.memory[0xC000])
}
