package registry

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/intersync/internal/objtype"
)

// DuplicateTypeError is returned when a type id is registered twice.
type DuplicateTypeError struct {
	TypeID string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("object type %q is already registered", e.TypeID)
}

// Registry holds the object type descriptors for one invocation. It is
// populated at startup, read-only during a run, and passed explicitly
// to the orchestrator; there is no process-wide instance.
type Registry struct {
	descriptors *orderedmap.OrderedMap[string, objtype.Descriptor]
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		descriptors: orderedmap.NewOrderedMap[string, objtype.Descriptor](),
	}
}

// Register adds a descriptor. It fails with a *DuplicateTypeError when
// the id is already present; descriptors are never overwritten.
func (r *Registry) Register(d objtype.Descriptor) error {
	id := d.ID()
	if _, exists := r.descriptors.Get(id); exists {
		return &DuplicateTypeError{TypeID: id}
	}
	r.descriptors.Set(id, d)
	return nil
}

// Get returns the descriptor for a type id.
func (r *Registry) Get(id string) (objtype.Descriptor, bool) {
	return r.descriptors.Get(id)
}

// IDs returns all registered type ids in registration order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, r.descriptors.Len())
	ids = append(ids, r.descriptors.Keys()...)
	return ids
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return r.descriptors.Len()
}

// Clear resets all state. Used between independent runs and in tests to
// avoid cross-run leakage.
func (r *Registry) Clear() {
	r.descriptors = orderedmap.NewOrderedMap[string, objtype.Descriptor]()
}

// Graph builds the dependency graph over all registered types.
// Dependencies on unregistered types are ignored: a partial registration
// (e.g. a filtered test registry) still orders correctly within itself.
func (r *Registry) Graph() *Graph {
	g := NewGraph()

	for _, id := range r.descriptors.Keys() {
		g.AddNode(id)
	}
	for _, id := range r.descriptors.Keys() {
		d, _ := r.descriptors.Get(id)
		for _, dep := range d.Dependencies() {
			if g.HasNode(dep) {
				g.AddEdge(dep, id)
			}
		}
	}

	return g
}

// ProcessingOrder returns all registered ids ordered so every dependency
// precedes its dependents. The order is deterministic for a fixed set of
// registrations. Returns a *CycleError when no valid order exists.
func (r *Registry) ProcessingOrder() ([]string, error) {
	order, err := r.Graph().TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("failed to compute processing order: %w", err)
	}
	return order, nil
}

// ReverseOrder returns the processing order reversed: dependents before
// their dependencies, used for deletion.
func (r *Registry) ReverseOrder() ([]string, error) {
	order, err := r.ProcessingOrder()
	if err != nil {
		return nil, err
	}

	reversed := make([]string, len(order))
	for i, id := range order {
		reversed[len(order)-1-i] = id
	}
	return reversed, nil
}

// Validate checks the registry for ordering problems. It must pass
// before any synchronization starts.
func (r *Registry) Validate() error {
	return r.Graph().Validate()
}
