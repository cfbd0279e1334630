package ops

import "sync"

// State of a tracked operation.
type State int

const (
	Idle State = iota
	InFlight
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Status is the tracked outcome of one named operation. Reason is set only
// when the operation failed.
type Status struct {
	State  State
	Reason string
}

// Tracker records per-operation progress under typed keys instead of ad-hoc
// shared flags, so concurrent operations cannot clobber each other's state.
type Tracker struct {
	mu  sync.Mutex
	ops map[string]Status
}

func NewTracker() *Tracker {
	return &Tracker{ops: make(map[string]Status)}
}

func (t *Tracker) Begin(key string) {
	t.set(key, Status{State: InFlight})
}

func (t *Tracker) Succeed(key string) {
	t.set(key, Status{State: Succeeded})
}

func (t *Tracker) Fail(key string, reason string) {
	t.set(key, Status{State: Failed, Reason: reason})
}

func (t *Tracker) Get(key string) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ops[key]
}

// InFlight reports whether the keyed operation is currently running.
func (t *Tracker) InFlight(key string) bool {
	return t.Get(key).State == InFlight
}

func (t *Tracker) set(key string, s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ops[key] = s
}
