// Package main runs a serial-reporting test ROM and exits with its verdict:
// 0 when it passed, 1 when it failed and 2 on timeout or emulation error.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/emu"
	"github.com/FabianRolfMatthiasNoll/dmgcore/internal/logging"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

const (
	exitPassed = 0
	exitFailed = 1
	exitError  = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	romPath := flag.String("rom", "", "path to test ROM (.gb)")
	frames := flag.Int("frames", 3600, "max frames to run")
	timeout := flag.Duration("timeout", 2*time.Minute, "wall-clock timeout (e.g. 30s, 2m); 0 disables")
	delayedEI := flag.Bool("delayed-ei", false, "enable interrupts one instruction after EI")
	echo := flag.Bool("echo", true, "stream serial output to stdout")
	trace := flag.Bool("trace", false, "log every instruction (slow)")
	tail := flag.Int("serialWindow", 2048, "bytes of serial output to print on failure")
	quiet := flag.Bool("q", false, "only log warnings and errors")
	flag.Parse()

	logger := logging.New(os.Stderr, logging.Level(*trace, *quiet))
	if *romPath == "" {
		logger.Error("-rom is required")
		return exitError
	}
	logger.Debug("cpurunner", "version", buildinfo.Version(version, commit, date))

	cfg := emu.DefaultConfig()
	cfg.DelayedEI = *delayedEI
	cfg.Trace = *trace
	m := emu.New(cfg, logger)

	mon := &emu.SerialMonitor{}
	var w io.Writer = mon
	if *echo {
		w = io.MultiWriter(os.Stdout, mon)
	}
	m.SetSerialWriter(w)

	if err := m.LoadROMFile(*romPath); err != nil {
		logger.Error("loading rom failed", "err", err)
		return exitError
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	start := time.Now()
	verdict, err := m.RunTestROM(ctx, mon, *frames)
	fmt.Println()
	logger.Info("done",
		"verdict", verdict.String(),
		"stage", mon.Stage(),
		"steps", m.Steps(),
		"cycles", m.Cycles(),
		"elapsed", time.Since(start).Truncate(time.Millisecond))

	return exitCode(verdict, err, mon, *tail, logger)
}

func exitCode(verdict emu.Verdict, err error, mon *emu.SerialMonitor, tail int, logger *slog.Logger) int {
	if err != nil {
		logger.Error("run aborted", "err", err)
		return exitError
	}
	switch verdict {
	case emu.Passed:
		return exitPassed
	case emu.Failed:
		logger.Error("test rom reported failure", "failures", mon.Failures())
		fmt.Printf("--- recent serial ---\n%s\n--- end serial ---\n", mon.Tail(tail))
		return exitFailed
	}
	logger.Error("no verdict before the frame limit")
	return exitError
}
