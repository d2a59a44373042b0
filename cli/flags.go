package cli

import "github.com/mobile-next/touchsweep/config"

var (
	verbose    bool
	configPath string
	logJSON    bool

	// resolved in initConfig before any command runs
	cfg = config.Default()

	// for classify command
	classifyThreshold float64

	// for replay command
	replayThreshold float64
	replayVerbose   bool
)
