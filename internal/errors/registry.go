package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// Runtime error codes.
const (
	CodeFlushLimit    = "E101"
	CodeCircularRead  = "E102"
	CodeDisposed      = "E103"
	CodeComputation   = "E104"
	CodeRunawayEffect = "E105"
	CodeForeignRead   = "E106"
)

// Configuration error codes.
const (
	CodeConfigRead    = "E201"
	CodeConfigParse   = "E202"
	CodeConfigInvalid = "E203"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E100-E199)
	// ============================================

	CodeFlushLimit: {
		Category: CategoryRuntime,
		Message:  "Flush did not settle",
		Detail:   "The scheduler drained its queue more times than the configured pass limit allows. Each pass re-runs effects dirtied during the previous one, so an effect that writes a signal it reads keeps the flush alive forever.",
		DocURL:   "https://decantr.dev/docs/errors/E101",
	},
	CodeCircularRead: {
		Category: CategoryRuntime,
		Message:  "Memo read itself while computing",
		Detail:   "A memo's computation reached the memo's own getter. The cached value is returned instead of recursing.",
		DocURL:   "https://decantr.dev/docs/errors/E102",
	},
	CodeDisposed: {
		Category: CategoryRuntime,
		Message:  "Owner disposed",
		Detail:   "The owner scope has been disposed. Computations created under it would be torn down immediately.",
		DocURL:   "https://decantr.dev/docs/errors/E103",
	},
	CodeComputation: {
		Category: CategoryRuntime,
		Message:  "Computation panicked",
		Detail:   "An effect or memo body panicked while being re-run by the scheduler. Other queued computations still ran.",
		DocURL:   "https://decantr.dev/docs/errors/E104",
	},
	CodeRunawayEffect: {
		Category: CategoryRuntime,
		Message:  "Too many computation runs in one flush",
		Detail:   "A single flush executed more effects than the configured run budget.",
		DocURL:   "https://decantr.dev/docs/errors/E105",
	},

	CodeForeignRead: {
		Category: CategoryRuntime,
		Message:  "Read from another runtime",
		Detail:   "A computation read a signal or memo created in a different runtime. Each runtime tracks its own graph, so no dependency was recorded and the computation will not re-run when the value changes.",
		DocURL:   "https://decantr.dev/docs/errors/E106",
	},

	// ============================================
	// Configuration Errors (E200-E299)
	// ============================================

	CodeConfigRead: {
		Category: CategoryConfig,
		Message:  "Failed to read configuration file",
		DocURL:   "https://decantr.dev/docs/errors/E201",
	},
	CodeConfigParse: {
		Category: CategoryConfig,
		Message:  "Invalid YAML in configuration file",
		DocURL:   "https://decantr.dev/docs/errors/E202",
	},
	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   "https://decantr.dev/docs/errors/E203",
	},
}

// Lookup returns the template for code, if registered.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
