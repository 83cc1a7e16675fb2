package state

// DevMode enables development-time checks for invalid graph operations.
// When true:
//   - A memo that reads itself while computing panics with ErrCircularRead
//   - Recovered computation panics are logged with their stack
//
// When false (production) a self-reading memo gets its cached value.
//
// Set this at application startup:
//
//	func main() {
//	    state.DevMode = os.Getenv("DECANTR_DEV") == "1"
//	    // ...
//	}
var DevMode = false

// DebugConfig controls debug logging of the scheduler.
// Messages go to the runtime's logger at Debug level.
type DebugConfig struct {
	// LogEffectRuns logs each effect and memo run with timing information.
	// Default: false.
	LogEffectRuns bool

	// LogFlushes logs a summary of every flush.
	// Default: false.
	LogFlushes bool
}

// DefaultDebugConfig returns a DebugConfig with all debugging disabled.
func DefaultDebugConfig() DebugConfig {
	return DebugConfig{}
}

// Debug is the global debug configuration.
// Modify this at application startup to enable debugging features.
var Debug = DefaultDebugConfig()
