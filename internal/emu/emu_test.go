package emu

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cpu"
	"github.com/retroenv/retrogolib/assert"
)

// program returns a 32 KiB image with code at the entry point.
func program(code ...byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x0100:], code)
	return rom
}

// spin is JR -2, a 12 cycle loop onto itself.
var spin = []byte{0x18, 0xFE}

func newMachine(t *testing.T, cfg Config, rom []byte) (*Machine, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m := New(cfg, logger)
	assert.NoError(t, m.LoadCartridge(rom))
	return m, &logs
}

func TestMachine_NoCartridge(t *testing.T) {
	m := New(DefaultConfig(), nil)
	_, err := m.Step()
	assert.True(t, errors.Is(err, ErrNoCartridge))
	assert.True(t, errors.Is(m.Run(context.Background()), ErrNoCartridge))
	assert.True(t, m.LoadCartridge(nil) != nil)
}

func TestMachine_FrameBudgetRaisesVBlank(t *testing.T) {
	m, _ := newMachine(t, DefaultConfig(), program(spin...))
	io := m.Bus().IO()
	perFrame := CyclesPerFrame / 12

	for i := 0; i < perFrame-1; i++ {
		_, err := m.Step()
		assert.NoError(t, err)
	}
	assert.Equal(t, byte(0), io.Read(bus.OffIF))

	_, err := m.Step()
	assert.NoError(t, err)
	assert.Equal(t, byte(0x01), io.Read(bus.OffIF))
	assert.Equal(t, 0, m.FrameCycle())
	assert.Equal(t, uint64(CyclesPerFrame), m.Cycles())

	io.Write(bus.OffIF, 0)
	for i := 0; i < perFrame; i++ {
		_, err := m.Step()
		assert.NoError(t, err)
	}
	assert.Equal(t, byte(0x01), io.Read(bus.OffIF))
}

func TestMachine_VBlankLeavesOtherRequests(t *testing.T) {
	m, _ := newMachine(t, DefaultConfig(), program(spin...))
	io := m.Bus().IO()
	io.Write(bus.OffIF, 0x04)

	assert.NoError(t, m.StepFrame())
	assert.Equal(t, byte(0x05), io.Read(bus.OffIF))
}

func TestMachine_StepFrame(t *testing.T) {
	m, _ := newMachine(t, DefaultConfig(), program(spin...))

	assert.NoError(t, m.StepFrame())
	assert.Equal(t, uint64(CyclesPerFrame/12), m.Steps())
	assert.Equal(t, uint64(CyclesPerFrame), m.Cycles())
}

func TestMachine_VBlankHandlerRuns(t *testing.T) {
	rom := program(spin...)
	rom[0x0040] = 0x3C // INC A
	rom[0x0041] = 0xD9 // RETI
	m, _ := newMachine(t, DefaultConfig(), rom)
	m.Bus().Write(0xFFFF, 0x01)
	c := m.CPU()
	a := c.A

	assert.NoError(t, m.StepFrame())
	for i := 0; i < 3; i++ {
		_, err := m.Step()
		assert.NoError(t, err)
	}
	assert.Equal(t, a+1, c.A)
	assert.True(t, c.IME)
	assert.Equal(t, uint16(0x0100), c.PC)
}

func TestMachine_RunStopsAtMaxSteps(t *testing.T) {
	m, logs := newMachine(t, Config{MaxSteps: 100}, program(spin...))

	assert.NoError(t, m.Run(context.Background()))
	assert.Equal(t, uint64(100), m.Steps())
	assert.Equal(t, uint64(1200), m.Cycles())
	assert.True(t, strings.Contains(logs.String(), "step limit reached"))
}

func TestMachine_RunCancelled(t *testing.T) {
	m, _ := newMachine(t, Config{}, program(spin...))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, uint64(0), m.Steps())
}

func TestMachine_RunStopsOnDecodeError(t *testing.T) {
	m, logs := newMachine(t, DefaultConfig(), program(0x00, 0xD3))

	err := m.Run(context.Background())
	assert.True(t, errors.Is(err, cpu.ErrUnimplementedOpcode))

	var de *cpu.DecodeError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, byte(0xD3), de.Opcode)
	assert.Equal(t, uint16(0x0101), de.PC)
	assert.Equal(t, uint64(1), m.Steps())
	assert.True(t, strings.Contains(logs.String(), "opcode=0xD3"))
}

func TestMachine_SerialCapture(t *testing.T) {
	rom := program(
		0x3E, 'H',  // LD A,'H'
		0xE0, 0x01, // LDH (SB),A
		0x3E, 'i',
		0xE0, 0x01,
		0x18, 0xFE,
	)
	m := New(Config{MaxSteps: 6}, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	var out bytes.Buffer
	m.SetSerialWriter(&out)
	assert.NoError(t, m.LoadCartridge(rom))

	assert.NoError(t, m.Run(context.Background()))
	assert.Equal(t, "Hi", out.String())
}

func TestMachine_Title(t *testing.T) {
	rom := program(spin...)
	copy(rom[0x0134:], "DMGCORE")
	m, logs := newMachine(t, DefaultConfig(), rom)
	assert.Equal(t, "DMGCORE", m.Title())
	assert.Equal(t, "rom-only", m.Header().CartTypeName())
	assert.True(t, strings.Contains(logs.String(), "title=DMGCORE"))

	assert.NoError(t, m.LoadCartridge([]byte{0x3C}))
	assert.Equal(t, "", m.Title())
	assert.True(t, m.Header() == nil)
}

func TestMachine_LoadResetsState(t *testing.T) {
	m, _ := newMachine(t, DefaultConfig(), program(0x3C, 0x18, 0xFE))
	for i := 0; i < 10; i++ {
		_, err := m.Step()
		assert.NoError(t, err)
	}
	m.Bus().Write(0xC000, 0x55)

	assert.NoError(t, m.LoadCartridge(program(spin...)))
	assert.Equal(t, uint64(0), m.Steps())
	assert.Equal(t, uint64(0), m.Cycles())
	assert.Equal(t, uint16(0x0100), m.CPU().PC)
	assert.Equal(t, byte(0x01), m.CPU().A)
	assert.Equal(t, byte(0x00), m.Bus().Read(0xC000))
}

func TestMachine_LoadROMFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spin.gb")
	assert.NoError(t, os.WriteFile(path, program(spin...), 0o600))

	m := New(DefaultConfig(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	assert.NoError(t, m.LoadROMFile(path))
	assert.Equal(t, byte(0x18), m.Bus().Read(0x0100))

	err := m.LoadROMFile(filepath.Join(t.TempDir(), "missing.gb"))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMachine_Trace(t *testing.T) {
	m, logs := newMachine(t, Config{Trace: true}, program(0x00, 0x18, 0xFE))

	_, err := m.Step()
	assert.NoError(t, err)
	out := logs.String()
	assert.True(t, strings.Contains(out, "op=NOP"))
	assert.True(t, strings.Contains(out, "pc=0x0100"))
}

func TestMachine_DelayedEI(t *testing.T) {
	m, _ := newMachine(t, Config{DelayedEI: true}, program(0xF3, 0xFB, 0x00, 0x18, 0xFE)) // DI; EI; NOP
	c := m.CPU()

	for i := 0; i < 2; i++ {
		_, err := m.Step()
		assert.NoError(t, err)
	}
	assert.False(t, c.IME)

	_, err := m.Step()
	assert.NoError(t, err)
	assert.True(t, c.IME)
}

func TestMachine_BankedCartridge(t *testing.T) {
	rom := make([]byte, 4*0x4000)
	copy(rom[0x0100:], []byte{
		0x3E, 0x02,       // LD A,2
		0xEA, 0x00, 0x20, // LD (0x2000),A
		0xFA, 0x00, 0x40, // LD A,(0x4000)
		0x18, 0xFE,
	})
	rom[0x0147] = 0x01 // MBC1
	rom[0x0148] = 0x01 // 64 KiB
	rom[2*0x4000] = 0xB2
	m, _ := newMachine(t, DefaultConfig(), rom)
	assert.Equal(t, "cart-rom", m.Bus().Regions()[0].Name)

	for i := 0; i < 3; i++ {
		_, err := m.Step()
		assert.NoError(t, err)
	}
	assert.Equal(t, byte(0xB2), m.CPU().A)

	assert.NoError(t, m.LoadCartridge(program(spin...)))
	assert.Equal(t, "rom", m.Bus().Regions()[0].Name)
}

func TestMachine_UnsupportedMapperFallsBackToFlat(t *testing.T) {
	rom := program(spin...)
	rom[0x0147] = 0x05 // MBC2
	m, logs := newMachine(t, DefaultConfig(), rom)

	assert.Equal(t, "rom", m.Bus().Regions()[0].Name)
	assert.True(t, strings.Contains(logs.String(), "no bank controller"))
}
