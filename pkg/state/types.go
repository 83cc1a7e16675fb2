package state

// Cleanup is a function returned by effects to clean up resources.
// It is called before the effect re-runs and when the effect is disposed.
type Cleanup func()

// Kind identifies the flavor of a computation.
type Kind uint8

const (
	KindEffect Kind = iota + 1
	KindMemo
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindEffect:
		return "effect"
	case KindMemo:
		return "memo"
	default:
		return "unknown"
	}
}

// nodeState orders how stale a computation is. Larger is staler.
type nodeState uint8

const (
	// stateClean means the last run saw the current value of every dependency.
	stateClean nodeState = iota
	// stateCheck means an upstream memo was invalidated; the computation must
	// refresh its memo dependencies to learn whether it is actually dirty.
	stateCheck
	// stateDirty means a direct dependency changed; the computation must run.
	stateDirty
)
