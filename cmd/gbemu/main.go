// Package main runs a Game Boy ROM on the DMG CPU core.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/logging"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type CLIFlags struct {
	ROMPath   string
	Steps     int
	DelayedEI bool
	Trace     bool
	Serial    bool
	Debug     bool
	Quiet     bool
}

func parseFlags() CLIFlags {
	var f CLIFlags
	flag.StringVar(&f.ROMPath, "rom", "", "path to ROM (.gb)")
	flag.IntVar(&f.Steps, "steps", emu.DefaultConfig().MaxSteps, "max CPU steps to run, 0 runs until interrupted")
	flag.BoolVar(&f.DelayedEI, "delayed-ei", false, "enable interrupts one instruction after EI")
	flag.BoolVar(&f.Trace, "trace", false, "log every instruction (implies -debug)")
	flag.BoolVar(&f.Serial, "serial", true, "echo serial port output to stdout")
	flag.BoolVar(&f.Debug, "debug", false, "debug logging")
	flag.BoolVar(&f.Quiet, "q", false, "only log warnings and errors")
	flag.Parse()

	if f.ROMPath == "" && flag.NArg() > 0 {
		f.ROMPath = flag.Arg(0)
	}
	return f
}

func main() {
	os.Exit(run())
}

func run() int {
	f := parseFlags()
	logger := logging.New(os.Stderr, logging.Level(f.Debug || f.Trace, f.Quiet))

	if f.ROMPath == "" {
		fmt.Fprintf(os.Stderr, "usage: gbemu [options] <rom.gb>\n\n")
		flag.PrintDefaults()
		return 1
	}
	logger.Info("gbemu", "version", buildinfo.Version(version, commit, date))

	cfg := emu.DefaultConfig()
	cfg.MaxSteps = f.Steps
	cfg.DelayedEI = f.DelayedEI
	cfg.Trace = f.Trace

	m := emu.New(cfg, logger)
	if f.Serial {
		m.SetSerialWriter(os.Stdout)
	} else {
		m.SetSerialWriter(io.Discard)
	}
	// a ROM that cannot be read never reaches the CPU
	if err := m.LoadROMFile(f.ROMPath); err != nil {
		logger.Error("loading rom failed", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := m.Run(ctx)
	logger.Info("stopped", "title", m.Title(), "steps", m.Steps(), "cycles", m.Cycles())
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("emulation failed", "err", err)
		return 1
	}
	return 0
}
