package registry

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError is returned when the dependency graph contains a cycle,
// making topological sorting impossible. It names the participating
// types and, when found, the path that closes the cycle.
type CycleError struct {
	Participants []string // types that form the cycle
	Blocked      []string // types unprocessable only because they depend on the cycle
	Path         []string // ordered path showing the cycle (e.g. [A, B, A])
}

// Error implements the error interface with a message that names the
// cycle members and any types blocked behind them.
func (e *CycleError) Error() string {
	msg := fmt.Sprintf("cyclic dependency detected among object types: %s",
		strings.Join(e.Participants, ", "))

	if len(e.Path) > 0 {
		msg += fmt.Sprintf("\nCycle path: %s", strings.Join(e.Path, " -> "))
	}
	if len(e.Blocked) > 0 {
		msg += fmt.Sprintf("\nTypes blocked by cycle: %s", strings.Join(e.Blocked, ", "))
	}

	return msg
}

// TopologicalSort returns type ids ordered so every dependency precedes
// its dependents, using Kahn's algorithm. Ties are broken
// lexicographically on type id so identical graphs always yield the
// identical order. Returns a *CycleError if no valid order exists.
func (g *Graph) TopologicalSort() ([]string, error) {
	inDegree := g.InDegrees()

	// Ready set kept sorted for deterministic output.
	var ready []string
	for id, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	result := make([]string, 0, len(g.Nodes))

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		result = append(result, id)

		var released []string
		for _, dependent := range g.GetDependents(id) {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				released = append(released, dependent)
			}
		}
		if len(released) > 0 {
			ready = append(ready, released...)
			sort.Strings(ready)
		}
	}

	if len(result) != len(g.Nodes) {
		return nil, g.cycleError(result)
	}

	return result, nil
}

// cycleError builds a CycleError describing why sorting stopped short.
// Unprocessed types split into actual cycle participants and types that
// are merely blocked behind the cycle.
func (g *Graph) cycleError(processed []string) *CycleError {
	processedSet := make(map[string]bool, len(processed))
	for _, id := range processed {
		processedSet[id] = true
	}

	var unprocessed []string
	for id := range g.Nodes {
		if !processedSet[id] {
			unprocessed = append(unprocessed, id)
		}
	}
	sort.Strings(unprocessed)

	unprocessedSet := make(map[string]bool, len(unprocessed))
	for _, id := range unprocessed {
		unprocessedSet[id] = true
	}

	var participants, blocked []string
	for _, id := range unprocessed {
		if g.canReachSelf(id, unprocessedSet) {
			participants = append(participants, id)
		} else {
			blocked = append(blocked, id)
		}
	}

	var path []string
	if len(participants) > 0 {
		path = g.findCyclePath(participants[0], unprocessedSet)
	}

	return &CycleError{
		Participants: participants,
		Blocked:      blocked,
		Path:         path,
	}
}

// canReachSelf checks whether start can reach itself through the
// subgraph defined by allowed.
func (g *Graph) canReachSelf(start string, allowed map[string]bool) bool {
	visited := make(map[string]bool)
	var dfs func(current string) bool
	dfs = func(current string) bool {
		for _, next := range g.GetDependents(current) {
			if !allowed[next] {
				continue
			}
			if next == start {
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if dfs(next) {
				return true
			}
		}
		return false
	}
	return dfs(start)
}

// findCyclePath finds the path that closes a cycle starting from start,
// including start at both ends.
func (g *Graph) findCyclePath(start string, allowed map[string]bool) []string {
	visited := make(map[string]bool)
	path := []string{start}

	var dfs func(current string) bool
	dfs = func(current string) bool {
		for _, next := range g.GetDependents(current) {
			if !allowed[next] {
				continue
			}
			if next == start {
				path = append(path, start)
				return true
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			if dfs(next) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}

	if dfs(start) {
		return path
	}
	return nil
}

// Validate checks the graph for cycles. It should be called after
// building the graph so ordering problems surface before any
// synchronization starts.
func (g *Graph) Validate() error {
	if _, err := g.TopologicalSort(); err != nil {
		return err
	}
	return nil
}
