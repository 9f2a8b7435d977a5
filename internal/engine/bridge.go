package engine

import "fmt"

// bridgeState is the one-way dispatch decision made at Init: unprobed
// until then, committed to accelerated or fallback for process lifetime.
type bridgeState int

const (
	stateUnprobed bridgeState = iota
	stateAccelerated
	stateFallback
)

func (s bridgeState) String() string {
	switch s {
	case stateAccelerated:
		return "accelerated"
	case stateFallback:
		return "fallback"
	default:
		return "unprobed"
	}
}

// tryAccel runs one accelerator call, converting a panic into an error so
// the caller can retry the pure path within the same invocation. A
// mid-call fault never demotes the bridge and never reaches the caller.
func tryAccel[T any](f func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("accelerator fault: %v", r)
		}
	}()
	return f()
}
