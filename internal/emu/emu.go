package emu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/bus"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cart"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/cpu"
)

// ErrNoCartridge is returned when stepping before a ROM image was loaded.
var ErrNoCartridge = errors.New("no cartridge loaded")

// how often Run looks at its context, in steps
const ctxCheckInterval = 4096

type Machine struct {
	cfg    Config
	logger *slog.Logger

	// core components
	bus *bus.Bus
	cpu *cpu.CPU

	header *cart.Header
	loaded bool

	steps      uint64
	cycles     uint64
	frameCycle int
}

// New wires a bus and CPU. A nil logger uses slog.Default().
func New(cfg Config, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	var opts []cpu.Option
	if cfg.DelayedEI {
		opts = append(opts, cpu.WithDelayedEI())
	}
	b := bus.New()
	return &Machine{
		cfg:    cfg,
		logger: logger,
		bus:    b,
		cpu:    cpu.New(b, opts...),
	}
}

// LoadCartridge resets the machine and copies rom into the cartridge area.
// The header is decoded when the image is large enough to carry one.
func (m *Machine) LoadCartridge(rom []byte) error {
	if len(rom) == 0 {
		return errors.New("empty rom image")
	}

	m.bus.Reset()
	m.bus.ResetMap()
	n := m.bus.LoadROM(rom)
	m.cpu.Reset()
	m.steps, m.cycles, m.frameCycle = 0, 0, 0
	m.header = nil
	m.loaded = true

	h, err := cart.ParseHeader(rom)
	if err != nil {
		if !errors.Is(err, cart.ErrShortROM) {
			return fmt.Errorf("parsing header: %w", err)
		}
		m.logger.Debug("rom has no header", "bytes", n)
		return nil
	}
	m.header = h

	m.logger.Info("cartridge loaded",
		"title", h.Title,
		"type", h.CartTypeName(),
		"bytes", n,
		"checksum_ok", cart.HeaderChecksumOK(rom))

	mapper, err := cart.NewMapper(rom, h)
	switch {
	case errors.Is(err, cart.ErrUnsupportedMapper):
		m.logger.Warn("no bank controller for cartridge, only the first 32 KiB are mapped",
			"cart_type", fmt.Sprintf("0x%02X", h.CartType), "rom_size", h.ROMSize)
	case err != nil:
		return fmt.Errorf("creating mapper: %w", err)
	case mapper != nil:
		m.mapCartridge(mapper)
	}
	return nil
}

// mapCartridge routes the ROM area and external RAM through a bank controller.
func (m *Machine) mapCartridge(mapper cart.Mapper) {
	m.bus.MapRegion(bus.Region{Name: "cart-ram", Start: 0xA000, End: 0xBFFF, Read: mapper.Read, Write: mapper.Write})
	m.bus.MapRegion(bus.Region{Name: "cart-rom", Start: 0x0000, End: 0x7FFF, Read: mapper.Read, Write: mapper.Write})
	m.logger.Debug("bank controller mapped", "mapper", mapper.Name())
}

// LoadROMFile reads the image at path and loads it.
func (m *Machine) LoadROMFile(path string) error {
	data, err := cart.LoadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(data); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Step executes one CPU step and raises V-blank whenever a frame's worth of
// cycles has elapsed.
func (m *Machine) Step() (int, error) {
	if !m.loaded {
		return 0, ErrNoCartridge
	}

	pc := m.cpu.PC
	op := m.bus.Read(pc)
	cycles, err := m.cpu.Step()
	if err != nil {
		var de *cpu.DecodeError
		if errors.As(err, &de) {
			m.logger.Error("cpu halted on unknown opcode",
				"opcode", fmt.Sprintf("0x%02X", de.Opcode),
				"pc", fmt.Sprintf("0x%04X", de.PC),
				"steps", m.steps)
		}
		return 0, err
	}
	if m.cfg.Trace {
		m.trace(pc, op, cycles)
	}

	m.steps++
	m.cycles += uint64(cycles)
	m.frameCycle += cycles
	if m.frameCycle >= CyclesPerFrame {
		m.frameCycle -= CyclesPerFrame
		m.cpu.RequestInterrupt(cpu.VBlank)
	}
	return cycles, nil
}

func (m *Machine) trace(pc uint16, op byte, cycles int) {
	ctx := context.Background()
	if !m.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	info, _ := cpu.Lookup(op)
	c := m.cpu
	m.logger.LogAttrs(ctx, slog.LevelDebug, "step",
		slog.String("pc", fmt.Sprintf("0x%04X", pc)),
		slog.String("op", info.Mnemonic),
		slog.Int("cycles", cycles),
		slog.String("af", fmt.Sprintf("%04X", c.AF())),
		slog.String("bc", fmt.Sprintf("%04X", c.BC())),
		slog.String("de", fmt.Sprintf("%04X", c.DE())),
		slog.String("hl", fmt.Sprintf("%04X", c.HL())),
		slog.String("sp", fmt.Sprintf("%04X", c.SP)),
	)
}

// StepFrame steps until one frame budget has elapsed.
func (m *Machine) StepFrame() error {
	acc := 0
	for acc < CyclesPerFrame {
		cycles, err := m.Step()
		if err != nil {
			return err
		}
		acc += cycles
	}
	return nil
}

// Run steps until the configured step limit is reached, ctx is cancelled or
// the CPU fails to decode an instruction.
func (m *Machine) Run(ctx context.Context) error {
	if !m.loaded {
		return ErrNoCartridge
	}

	for i := 0; m.cfg.MaxSteps <= 0 || i < m.cfg.MaxSteps; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if _, err := m.Step(); err != nil {
			return err
		}
	}

	m.logger.Debug("step limit reached", "steps", m.steps, "cycles", m.cycles)
	return nil
}

// SetSerialWriter connects w to receive bytes written to the serial data register.
// Useful for running test ROMs that report via serial.
func (m *Machine) SetSerialWriter(w io.Writer) { m.bus.SetSerialWriter(w) }

// Title returns the cartridge title, empty when no header was found.
func (m *Machine) Title() string {
	if m.header == nil {
		return ""
	}
	return m.header.Title
}

// Header returns the decoded cartridge header or nil.
func (m *Machine) Header() *cart.Header { return m.header }

func (m *Machine) CPU() *cpu.CPU { return m.cpu }
func (m *Machine) Bus() *bus.Bus { return m.bus }
func (m *Machine) Steps() uint64 { return m.steps }
func (m *Machine) Cycles() uint64 { return m.cycles }

// FrameCycle is the number of cycles elapsed in the current frame.
func (m *Machine) FrameCycle() int { return m.frameCycle }
