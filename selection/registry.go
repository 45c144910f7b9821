package selection

import (
	"sync"

	"github.com/YuminosukeSato/pipefit/pkg/errors"
)

// Registry holds candidates in registration order. Registration order is
// part of the contract: it fixes evaluation order and tie-breaking.
type Registry struct {
	mu         sync.RWMutex
	candidates []Candidate
	names      map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]bool),
	}
}

// Register appends a candidate. Names must be unique; a duplicate is
// rejected with DuplicateNameError and the registry is left unchanged.
func (r *Registry) Register(c Candidate) error {
	if err := c.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.names[c.Name] {
		return errors.NewDuplicateNameError(c.Name)
	}
	r.names[c.Name] = true
	r.candidates = append(r.candidates, c)
	return nil
}

// MustRegister is Register that panics on error, for static registries
// assembled at startup.
func (r *Registry) MustRegister(c Candidate) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Candidates returns the registered candidates in registration order.
// The returned slice is a copy.
func (r *Registry) Candidates() []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Candidate, len(r.candidates))
	copy(out, r.candidates)
	return out
}

// Len returns the number of registered candidates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.candidates)
}

// Names returns the candidate names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.candidates))
	for i, c := range r.candidates {
		out[i] = c.Name
	}
	return out
}
