package infrastructure

import (
	"sync"

	"github.com/architeacher/items/internal/domain/model"
	"github.com/architeacher/items/pkg/logger"
)

type (
	StatusListener func(dependency model.DependencyName, from, to model.ConnectionStatus)

	// StatusTracker holds the connection status of one dependency. Only the
	// owning connector calls Transition; everyone else reads or subscribes.
	StatusTracker struct {
		dependency model.DependencyName
		logger     logger.Logger

		mu        sync.RWMutex
		current   model.ConnectionStatus
		listeners []StatusListener
	}
)

func NewStatusTracker(dependency model.DependencyName, log logger.Logger) *StatusTracker {
	return &StatusTracker{
		dependency: dependency,
		logger:     log,
		current:    model.ConnectionStatusConnecting,
	}
}

func (t *StatusTracker) Status() model.ConnectionStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.current
}

// Subscribe registers a listener called after every effective transition.
func (t *StatusTracker) Subscribe(listener StatusListener) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.listeners = append(t.listeners, listener)
}

// Transition moves to the given status. It reports false when nothing changed,
// either because the status is the same or because the current status is
// terminal.
func (t *StatusTracker) Transition(to model.ConnectionStatus) bool {
	t.mu.Lock()

	from := t.current
	if from == to || from.IsTerminal() {
		t.mu.Unlock()

		return false
	}

	t.current = to
	listeners := append([]StatusListener(nil), t.listeners...)

	t.mu.Unlock()

	t.logger.Info().
		Str("dependency", string(t.dependency)).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("dependency status changed")

	for _, listener := range listeners {
		listener(t.dependency, from, to)
	}

	return true
}
