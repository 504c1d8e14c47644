package emu

import (
	"bytes"
	"context"
	"regexp"
	"strconv"
)

// Verdict is what a test ROM has reported over the serial port so far.
type Verdict int

const (
	Running Verdict = iota
	Passed
	Failed
)

func (v Verdict) String() string {
	switch v {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	}
	return "running"
}

var (
	passRe  = regexp.MustCompile(`(?i)\bpassed\b`)
	failRe  = regexp.MustCompile(`(?i)failed(?:\s+(\d+)\s+tests?)?`)
	stageRe = regexp.MustCompile(`\b(\d{2}:\d{2})\b`)
)

// SerialMonitor collects serial output of a test ROM and watches it for a
// pass or fail message. Output arrives one byte at a time, so the text is
// only inspected when asked.
type SerialMonitor struct {
	out bytes.Buffer
}

// Write implements io.Writer. It never fails.
func (s *SerialMonitor) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

// Verdict reports the outcome printed so far. A failure message wins over a
// pass message.
func (s *SerialMonitor) Verdict() Verdict {
	text := s.out.Bytes()
	switch {
	case failRe.Match(text):
		return Failed
	case passRe.Match(text):
		return Passed
	}
	return Running
}

// Failures returns the failed test count when the ROM reported one.
func (s *SerialMonitor) Failures() int {
	m := failRe.FindSubmatch(s.out.Bytes())
	if m == nil || len(m[1]) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(string(m[1]))
	return n
}

// Output returns everything written so far.
func (s *SerialMonitor) Output() string { return s.out.String() }

// Stage returns the last "NN:NN" sub-test marker printed, if any.
func (s *SerialMonitor) Stage() string {
	all := stageRe.FindAll(s.out.Bytes(), -1)
	if len(all) == 0 {
		return ""
	}
	return string(all[len(all)-1])
}

// Tail returns at most the last n bytes of output.
func (s *SerialMonitor) Tail(n int) string {
	b := s.out.Bytes()
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}

// RunTestROM steps whole frames until mon reports an outcome, maxFrames have
// run or ctx is done. The monitor must already be attached as serial writer.
// A few frames are granted after a failure so the summary line completes.
func (m *Machine) RunTestROM(ctx context.Context, mon *SerialMonitor, maxFrames int) (Verdict, error) {
	const settleFrames = 8

	settle := -1
	for frame := 0; frame < maxFrames; frame++ {
		if err := ctx.Err(); err != nil {
			return Running, err
		}
		if err := m.StepFrame(); err != nil {
			return mon.Verdict(), err
		}

		switch mon.Verdict() {
		case Passed:
			return Passed, nil
		case Failed:
			if settle < 0 {
				settle = settleFrames
			}
			if settle == 0 || mon.Failures() > 0 {
				return Failed, nil
			}
			settle--
		}
	}
	return mon.Verdict(), nil
}
