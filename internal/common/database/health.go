package database

import (
	"context"
	"fmt"
)

// Pinger is anything that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Readiness pings every registered dependency and reports the first failure.
type Readiness struct {
	names   []string
	targets map[string]Pinger
}

func NewReadiness() *Readiness {
	return &Readiness{targets: make(map[string]Pinger)}
}

// Add registers a dependency. Nil pingers are ignored.
func (r *Readiness) Add(name string, p Pinger) {
	if p == nil {
		return
	}
	if _, ok := r.targets[name]; !ok {
		r.names = append(r.names, name)
	}
	r.targets[name] = p
}

func (r *Readiness) Check(ctx context.Context) error {
	for _, name := range r.names {
		if err := r.targets[name].Ping(ctx); err != nil {
			return fmt.Errorf("%s not ready: %w", name, err)
		}
	}
	return nil
}
