// Package graph answers questions about a module dependency graph: whether it
// is closed (every edge points at a node in the graph) and which nodes take
// part in cycles.
package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Edge is a dependency From -> To.
type Edge struct {
	From string
	To   string
}

func (e Edge) String() string { return e.From + " -> " + e.To }

// ClosureError lists edges that leave the graph.
type ClosureError struct {
	Name    string
	Missing []Edge
}

func (e *ClosureError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, edge := range e.Missing {
		parts[i] = edge.String()
	}
	return fmt.Sprintf("graph: %s is not closed: missing %s", e.Name, strings.Join(parts, ", "))
}

// Graph maps a node id to the ids it depends on.
type Graph struct {
	Name  string
	Nodes map[string][]string
}

// New returns an empty graph.
func New(name string) *Graph {
	return &Graph{Name: name, Nodes: map[string][]string{}}
}

// Add sets the dependencies of id.
func (g *Graph) Add(id string, deps ...string) {
	g.Nodes[id] = append(g.Nodes[id], deps...)
}

func (g *Graph) keys() []string {
	keys := make([]string, 0, len(g.Nodes))
	for k := range g.Nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Missing returns edges whose target is not a node, in sorted order.
func (g *Graph) Missing() []Edge {
	var missing []Edge
	for _, id := range g.keys() {
		for _, dep := range g.Nodes[id] {
			if _, ok := g.Nodes[dep]; !ok {
				missing = append(missing, Edge{From: id, To: dep})
			}
		}
	}
	return missing
}

// Verify returns a *ClosureError if any edge leaves the graph.
func (g *Graph) Verify() error {
	if missing := g.Missing(); len(missing) > 0 {
		return &ClosureError{Name: g.Name, Missing: missing}
	}
	return nil
}

// Cycles returns the strongly connected components that contain a cycle,
// each sorted, ordered by their first node.
func (g *Graph) Cycles() [][]string {
	t := &tarjan{
		g:     g,
		index: map[string]int{},
		low:   map[string]int{},
		on:    map[string]bool{},
	}
	for _, id := range g.keys() {
		if _, ok := t.index[id]; !ok {
			t.connect(id)
		}
	}
	sort.Slice(t.cycles, func(i, j int) bool { return t.cycles[i][0] < t.cycles[j][0] })
	return t.cycles
}

type tarjan struct {
	g      *Graph
	next   int
	index  map[string]int
	low    map[string]int
	on     map[string]bool
	stack  []string
	cycles [][]string
}

func (t *tarjan) connect(id string) {
	t.index[id] = t.next
	t.low[id] = t.next
	t.next++
	t.stack = append(t.stack, id)
	t.on[id] = true

	selfLoop := false
	for _, dep := range t.g.Nodes[id] {
		if dep == id {
			selfLoop = true
		}
		if _, ok := t.g.Nodes[dep]; !ok {
			continue
		}
		if _, ok := t.index[dep]; !ok {
			t.connect(dep)
			t.low[id] = min(t.low[id], t.low[dep])
		} else if t.on[dep] {
			t.low[id] = min(t.low[id], t.index[dep])
		}
	}

	if t.low[id] != t.index[id] {
		return
	}
	var scc []string
	for {
		n := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.on[n] = false
		scc = append(scc, n)
		if n == id {
			break
		}
	}
	if len(scc) > 1 || selfLoop {
		sort.Strings(scc)
		t.cycles = append(t.cycles, scc)
	}
}
