// Package classifier fuses several independently fallible intent classifiers
// into one confident decision via ensemble voting.
package classifier

import (
	"context"

	"github.com/ygellis/luach-bot/internal/models"
)

// Backend is one classification capability. Implementations are opaque and
// swappable; the ensemble only sees the uniform contract.
type Backend interface {
	// ID identifies the backend in votes and logs.
	ID() string
	// Classify returns a label from the closed intent vocabulary plus a
	// self-reported confidence. Errors isolate to this backend: a failed
	// call contributes no vote and never fails the batch.
	Classify(ctx context.Context, text string) (models.ClassificationVote, error)
}

// Registry is an ordered, dynamic set of backends.
type Registry struct {
	backends []Backend
}

func NewRegistry(backends ...Backend) *Registry {
	return &Registry{backends: backends}
}

// Register appends a backend. Registration order has no effect on voting.
func (r *Registry) Register(b Backend) {
	r.backends = append(r.backends, b)
}

// Backends returns the registered set.
func (r *Registry) Backends() []Backend {
	return r.backends
}

// Len returns the number of registered backends.
func (r *Registry) Len() int {
	return len(r.backends)
}
