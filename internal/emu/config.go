package emu

// CyclesPerFrame is the cycle budget between two V-blank requests.
const CyclesPerFrame = 70224

// Config contains settings that affect emulation behavior.
type Config struct {
	MaxSteps  int  // stop Run after this many steps; 0 runs until cancelled
	DelayedEI bool // EI takes effect after the following instruction
	Trace     bool // log every executed instruction at debug level
}

// DefaultConfig returns the settings used by the command line tools.
func DefaultConfig() Config {
	return Config{
		MaxSteps: 10_000_000,
	}
}
