// Package registry provides the object type registry and dependency
// ordering for intersync. Types are registered once per invocation; the
// registry computes a deterministic processing order that places every
// dependency before its dependents.
package registry

// Graph represents the directed dependency structure over object types.
// An edge runs from a dependency to its dependent, so topological order
// is processing order.
type Graph struct {
	Nodes      map[string]bool
	Dependents map[string][]string // type id -> ids that depend on it (outgoing edges)
	DependsOn  map[string][]string // type id -> ids it depends on (incoming edges)
}

// NewGraph creates a new empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:      make(map[string]bool),
		Dependents: make(map[string][]string),
		DependsOn:  make(map[string][]string),
	}
}

// AddNode adds an object type to the graph.
func (g *Graph) AddNode(id string) {
	g.Nodes[id] = true
}

// AddEdge records that dependent requires dependency to be processed first.
// It maintains both directions for efficient lookups.
func (g *Graph) AddEdge(dependency, dependent string) {
	g.Dependents[dependency] = append(g.Dependents[dependency], dependent)
	g.DependsOn[dependent] = append(g.DependsOn[dependent], dependency)
}

// HasNode returns true if the graph contains the given type id.
func (g *Graph) HasNode(id string) bool {
	return g.Nodes[id]
}

// NodeCount returns the number of types in the graph.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of dependency edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, deps := range g.Dependents {
		count += len(deps)
	}
	return count
}

// GetDependents returns the types that directly depend on id.
func (g *Graph) GetDependents(id string) []string {
	return g.Dependents[id]
}

// GetDependencies returns the types id directly depends on.
func (g *Graph) GetDependencies(id string) []string {
	return g.DependsOn[id]
}

// InDegrees computes the number of unsatisfied dependencies for each
// type. Types with in-degree zero are ready to process.
func (g *Graph) InDegrees() map[string]int {
	inDegree := make(map[string]int, len(g.Nodes))

	for id := range g.Nodes {
		inDegree[id] = 0
	}
	for _, dependents := range g.Dependents {
		for _, dep := range dependents {
			inDegree[dep]++
		}
	}

	return inDegree
}
