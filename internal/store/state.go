package store

// State is the lifecycle of a store: Idle → Loading → {Ready, Failed}.
// Every operation re-enters Loading.
type State uint8

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

var stateNames = []string{"IDLE", "LOADING", "READY", "FAILED"}

func (s State) String() string {
	if int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Snapshot is a consistent copy of a store's observable state.
type Snapshot[T any] struct {
	Items   []T
	Loading bool
	Err     error
	State   State
}

// Listener receives a snapshot after every state change.
type Listener[T any] func(Snapshot[T])
