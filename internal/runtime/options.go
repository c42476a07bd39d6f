package runtime

import (
	"context"
	"os"
)

type ServiceOption func(*ServiceCtx)

func WithServiceTermination(ch chan os.Signal) ServiceOption {
	return func(s *ServiceCtx) {
		s.shutdownChannel = ch
	}
}

func WithWaitingForServer() ServiceOption {
	return func(s *ServiceCtx) {
		s.serverReady = make(chan struct{})
	}
}

// WithDependencies replaces the default dependency graph.
func WithDependencies(build func(ctx context.Context) []DependencyOption) ServiceOption {
	return func(s *ServiceCtx) {
		s.dependencyOptions = build
	}
}

// WithExitFunc replaces os.Exit for startup failures and the shutdown
// watchdog.
func WithExitFunc(exit func(code int)) ServiceOption {
	return func(s *ServiceCtx) {
		s.exit = exit
	}
}
