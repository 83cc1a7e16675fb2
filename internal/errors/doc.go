// Package errors provides structured, coded errors for the decantr runtime.
//
// Every failure the reactive engine reports on its own behalf (as opposed to
// panics raised by user code inside an effect or memo) carries a code from
// the registry:
//
//   - E1xx: runtime errors (flush limits, circular reads, disposed scopes)
//   - E2xx: configuration errors (invalid statebench.yaml values)
//
// Codes map to a short message, a longer explanation and a documentation
// link. Two errors with the same code match under errors.Is, so callers can
// compare against the exported sentinels of package state.
//
// # Usage
//
//	err := errors.New(errors.CodeFlushLimit).
//	    WithDetail("flush exceeded 10000 passes").
//	    WithSuggestion("An effect is probably writing a signal it also reads.")
//
//	fmt.Print(err.Format())
//	// ERROR E101: Flush did not settle
//	//
//	//   flush exceeded 10000 passes
//	//
//	//   Hint: An effect is probably writing a signal it also reads.
package errors
