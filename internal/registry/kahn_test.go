package registry

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestTopologicalSort_Linear(t *testing.T) {
	g := NewGraph()
	g.AddNode("organization.Organization")
	g.AddNode("bios.Policy")
	g.AddNode("server.Profile")
	g.AddEdge("organization.Organization", "bios.Policy")
	g.AddEdge("bios.Policy", "server.Profile")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"organization.Organization", "bios.Policy", "server.Profile"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestTopologicalSort_LexicographicTieBreak(t *testing.T) {
	g := NewGraph()
	g.AddNode("organization.Organization")
	g.AddNode("ntp.Policy")
	g.AddNode("bios.Policy")
	g.AddNode("macpool.Pool")
	g.AddEdge("organization.Organization", "ntp.Policy")
	g.AddEdge("organization.Organization", "bios.Policy")
	g.AddEdge("organization.Organization", "macpool.Pool")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Peers with no mutual dependency come out in lexicographic order.
	want := []string{"organization.Organization", "bios.Policy", "macpool.Pool", "ntp.Policy"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestTopologicalSort_Deterministic(t *testing.T) {
	build := func() *Graph {
		g := NewGraph()
		for _, n := range []string{"a", "b", "c", "d", "e"} {
			g.AddNode(n)
		}
		g.AddEdge("a", "c")
		g.AddEdge("a", "b")
		g.AddEdge("b", "d")
		g.AddEdge("c", "d")
		return g
	}

	first, err := build().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := build().TopologicalSort()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("order not deterministic: %v vs %v", first, again)
		}
	}
}

func TestTopologicalSort_TwoNodeCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode("x.Policy")
	g.AddNode("y.Policy")
	g.AddEdge("x.Policy", "y.Policy")
	g.AddEdge("y.Policy", "x.Policy")

	_, err := g.TopologicalSort()
	if err == nil {
		t.Fatal("expected cycle error, got nil")
	}

	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}

	// Both members must be named.
	for _, member := range []string{"x.Policy", "y.Policy"} {
		found := false
		for _, p := range cycleErr.Participants {
			if p == member {
				found = true
			}
		}
		if !found {
			t.Errorf("cycle participants %v missing %s", cycleErr.Participants, member)
		}
		if !strings.Contains(err.Error(), member) {
			t.Errorf("error message %q does not name %s", err.Error(), member)
		}
	}
}

func TestTopologicalSort_CycleWithBlockedNode(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	// c depends on the cycle but is not part of it.
	g.AddEdge("a", "c")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}

	if len(cycleErr.Participants) != 2 {
		t.Errorf("expected 2 participants, got %v", cycleErr.Participants)
	}
	if !reflect.DeepEqual(cycleErr.Blocked, []string{"c"}) {
		t.Errorf("expected blocked [c], got %v", cycleErr.Blocked)
	}
}

func TestTopologicalSort_SelfLoop(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")
	g.AddEdge("a", "a")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if !reflect.DeepEqual(cycleErr.Participants, []string{"a"}) {
		t.Errorf("expected participants [a], got %v", cycleErr.Participants)
	}
}

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	order, err := NewGraph().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected empty order, got %v", order)
	}
}

func TestValidate(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b")
	if err := g.Validate(); err != nil {
		t.Errorf("expected valid graph, got %v", err)
	}

	g.AddEdge("b", "a")
	if err := g.Validate(); err == nil {
		t.Error("expected cycle error, got nil")
	}
}
