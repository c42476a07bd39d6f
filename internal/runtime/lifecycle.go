package runtime

import "sync"

const (
	StateStarting State = "starting"
	StateServing  State = "serving"
	StateDraining State = "draining"
	StateStopped  State = "stopped"
)

var stateRank = map[State]int{
	StateStarting: 0,
	StateServing:  1,
	StateDraining: 2,
	StateStopped:  3,
}

type (
	State string

	// Lifecycle tracks the process through starting, serving, draining and
	// stopped. States only move forward.
	Lifecycle struct {
		mu    sync.RWMutex
		state State
		drain sync.Once
	}
)

func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateStarting}
}

func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.state
}

// Serve marks the process as accepting traffic. It is a no-op once draining
// has begun.
func (l *Lifecycle) Serve() bool {
	return l.advance(StateServing)
}

// Drain runs fn the first time it is called and moves to stopped once fn
// returns. Later calls return false without running anything.
func (l *Lifecycle) Drain(fn func()) bool {
	entered := false

	l.drain.Do(func() {
		entered = l.advance(StateDraining)
		if !entered {
			return
		}

		fn()
		l.advance(StateStopped)
	})

	return entered
}

func (l *Lifecycle) advance(to State) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if stateRank[to] <= stateRank[l.state] {
		return false
	}

	l.state = to

	return true
}
