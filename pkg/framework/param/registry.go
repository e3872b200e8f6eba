package param

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrDuplicateID is returned when two parameters share an ID.
var ErrDuplicateID = errors.New("duplicate parameter id")

// Registry holds parameters in registration order
type Registry struct {
	params map[uint32]*Parameter
	names  map[string]uint32
	order  []uint32
	mu     sync.RWMutex
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params: make(map[uint32]*Parameter),
		names:  make(map[string]uint32),
	}
}

// Add registers parameters. It stops at the first duplicate ID.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID]; exists {
			return fmt.Errorf("%s (%d): %w", p.Name, p.ID, ErrDuplicateID)
		}
		r.params[p.ID] = p
		r.names[strings.ToLower(p.ShortName)] = p.ID
		r.names[strings.ToLower(p.Name)] = p.ID
		r.order = append(r.order, p.ID)
	}
	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// Lookup finds a parameter by name or short name, ignoring case
func (r *Registry) Lookup(name string) (*Parameter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.names[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return r.params[id], true
}

// GetByIndex retrieves a parameter by registration index
func (r *Registry) GetByIndex(index int) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.order) {
		return nil
	}
	return r.params[r.order[index]]
}

// Count returns the number of parameters
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}
	return result
}
