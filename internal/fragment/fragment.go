// Package fragment orders fragment definitions so that every fragment comes
// after the fragments it spreads.
package fragment

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	language "github.com/hanpama/gqlproj/internal/language"
)

// CycleError reports mutually recursive fragment spreads. Path starts and
// ends with the same fragment name.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "fragment spread cycle: " + strings.Join(e.Path, " -> ")
}

// DuplicateError reports two fragment definitions sharing a name.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("fragment %q is defined more than once", e.Name)
}

// Spreads returns the fragment names spread anywhere within set, including
// inside nested fields and inline fragments, in first-occurrence order.
func Spreads(set language.SelectionSet) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(language.SelectionSet)
	walk = func(set language.SelectionSet) {
		for _, sel := range set {
			switch sel := sel.(type) {
			case *language.Field:
				walk(sel.SelectionSet)
			case *language.InlineFragment:
				walk(sel.SelectionSet)
			case *language.FragmentSpread:
				if !seen[sel.Name] {
					seen[sel.Name] = true
					out = append(out, sel.Name)
				}
			}
		}
	}
	walk(set)
	return out
}

// Order returns defs sorted so that each fragment follows every fragment it
// spreads, directly or transitively. Spreads of names outside defs are
// ignored here; the projector reports them against the document using them.
// The result is deterministic for a given input order.
func Order(defs []*language.FragmentDefinition) ([]*language.FragmentDefinition, error) {
	byName := make(map[string]int, len(defs))
	for i, def := range defs {
		if _, ok := byName[def.Name]; ok {
			return nil, &DuplicateError{Name: def.Name}
		}
		byName[def.Name] = i
	}

	deps := make([][]int, len(defs))
	g := simple.NewDirectedGraph()
	for i := range defs {
		g.AddNode(simple.Node(int64(i)))
	}
	for i, def := range defs {
		for _, name := range Spreads(def.SelectionSet) {
			j, ok := byName[name]
			if !ok {
				continue
			}
			if i == j {
				return nil, &CycleError{Path: []string{def.Name, def.Name}}
			}
			deps[i] = append(deps[i], j)
			// dependency -> dependent, so dependencies sort first
			g.SetEdge(g.NewEdge(simple.Node(int64(j)), simple.Node(int64(i))))
		}
	}

	sorted, err := topo.SortStabilized(g, byID)
	if err != nil {
		var unorderable topo.Unorderable
		if errors.As(err, &unorderable) {
			if path := findCycle(defs, deps); path != nil {
				return nil, &CycleError{Path: path}
			}
		}
		return nil, fmt.Errorf("order fragments: %w", err)
	}

	out := make([]*language.FragmentDefinition, 0, len(defs))
	for _, n := range sorted {
		out = append(out, defs[n.ID()])
	}
	return out, nil
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

// findCycle walks spreads depth-first in declaration order and returns the
// first cycle met, as a path of fragment names.
func findCycle(defs []*language.FragmentDefinition, deps [][]int) []string {
	state := make([]int, len(defs)) // 0=unvisited,1=visiting,2=done
	var stack []int
	var path []string
	var dfs func(int) bool
	dfs = func(i int) bool {
		switch state[i] {
		case 1:
			start := 0
			for k, n := range stack {
				if n == i {
					start = k
					break
				}
			}
			for _, n := range stack[start:] {
				path = append(path, defs[n].Name)
			}
			path = append(path, defs[i].Name)
			return true
		case 2:
			return false
		}
		state[i] = 1
		stack = append(stack, i)
		for _, d := range deps[i] {
			if dfs(d) {
				return true
			}
		}
		stack = stack[:len(stack)-1]
		state[i] = 2
		return false
	}
	for i := range defs {
		if dfs(i) {
			return path
		}
	}
	return nil
}
