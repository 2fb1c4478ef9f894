package typegraph

import (
	schema "github.com/hanpama/gqlproj/internal/schema"
)

// ClosureResult is the abstract type closure of a Graph.
type ClosureResult struct {
	// Implementers maps every interface and union to the concrete object types
	// that may appear at its position, in schema declaration order (union
	// members keep their declared member order).
	Implementers map[string][]string `json:"implementers"`
	// Composites holds, for every object and interface type, whether it
	// transitively reaches an abstract-typed field.
	Composites map[string]*CompositeClosure `json:"composites"`
}

// CompositeClosure is the per-type part of the closure for objects and
// interfaces.
type CompositeClosure struct {
	// Abstract is true when a field of the type, or of any object type
	// reachable through object-typed fields, resolves to an interface or union.
	Abstract bool `json:"abstract"`
	// AbstractFields are the fields whose own named type is abstract.
	AbstractFields []string `json:"abstractFields"`
	// RewriteFields are the fields whose named type is abstract or is an
	// object type that is itself Abstract. Resolver parent shapes substitute
	// exactly these fields.
	RewriteFields []string `json:"rewriteFields"`
}

// ImplementersOf returns the concrete object types of an abstract type. For an
// object type it returns the type itself.
func (c *ClosureResult) ImplementersOf(name string) []string {
	if impls, ok := c.Implementers[name]; ok {
		return impls
	}
	if _, ok := c.Composites[name]; ok {
		return []string{name}
	}
	return nil
}

// IsPossibleType reports whether the object type object may appear at a
// position of type name.
func (c *ClosureResult) IsPossibleType(name, object string) bool {
	for _, impl := range c.ImplementersOf(name) {
		if impl == object {
			return true
		}
	}
	return false
}

// Overlaps reports whether two positions share at least one concrete type.
func (c *ClosureResult) Overlaps(a, b string) bool {
	for _, impl := range c.ImplementersOf(a) {
		if c.IsPossibleType(b, impl) {
			return true
		}
	}
	return false
}

// IsAbstract reports whether the object or interface type transitively
// reaches an abstract-typed field.
func (c *ClosureResult) IsAbstract(name string) bool {
	cc, ok := c.Composites[name]
	return ok && cc.Abstract
}

// ComputeClosure computes the closure of g. It is deterministic: computing it
// twice over the same graph yields equal results.
func ComputeClosure(g *Graph) *ClosureResult {
	cb := &closureBuilder{
		g:      g,
		direct: make([]bool, len(g.nodes)),
		memo:   make(map[int]bool),
	}
	res := &ClosureResult{
		Implementers: make(map[string][]string),
		Composites:   make(map[string]*CompositeClosure),
	}

	for i, n := range g.nodes {
		switch n.typ.Kind {
		case schema.TypeKindInterface:
			res.Implementers[n.typ.Name] = cb.interfaceImplementers(i)
		case schema.TypeKindUnion:
			members := make([]string, 0, len(n.members))
			for _, m := range n.members {
				members = append(members, g.nodes[m].typ.Name)
			}
			res.Implementers[n.typ.Name] = members
		case schema.TypeKindObject:
			for _, e := range n.edges {
				if g.nodes[e.target].typ.IsAbstract() {
					cb.direct[i] = true
					break
				}
			}
		}
	}

	for _, n := range g.nodes {
		if n.typ.Kind != schema.TypeKindObject && n.typ.Kind != schema.TypeKindInterface {
			continue
		}
		cc := &CompositeClosure{
			AbstractFields: []string{},
			RewriteFields:  []string{},
		}
		for _, e := range n.edges {
			target := g.nodes[e.target].typ
			switch {
			case target.IsAbstract():
				cc.AbstractFields = append(cc.AbstractFields, e.field)
				cc.RewriteFields = append(cc.RewriteFields, e.field)
				cc.Abstract = true
			case target.Kind == schema.TypeKindObject:
				if cb.reachesAbstract(e.target) {
					cc.RewriteFields = append(cc.RewriteFields, e.field)
					cc.Abstract = true
				}
			}
		}
		res.Composites[n.typ.Name] = cc
	}
	return res
}

type closureBuilder struct {
	g      *Graph
	direct []bool       // object has a field whose type is abstract
	memo   map[int]bool // settled reachability answers
}

// interfaceImplementers collects the object types declaring iface, either
// directly or through interfaces that themselves implement iface.
func (cb *closureBuilder) interfaceImplementers(iface int) []string {
	var out []string
	for _, n := range cb.g.nodes {
		if n.typ.Kind != schema.TypeKindObject {
			continue
		}
		if cb.inherits(n.interfaces, iface) {
			out = append(out, n.typ.Name)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func (cb *closureBuilder) inherits(declared []int, iface int) bool {
	visiting := make(map[int]bool)
	stack := append([]int(nil), declared...)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == iface {
			return true
		}
		if visiting[cur] {
			continue
		}
		visiting[cur] = true
		stack = append(stack, cb.g.nodes[cur].interfaces...)
	}
	return false
}

type frame struct {
	node int
	next int // next edge to follow
}

// reachesAbstract reports whether the object type at start, or any object type
// reachable from it through object-typed fields, has an abstract-typed field.
//
// The walk is an explicit-stack depth-first traversal. A node met again while
// it is still on the current path closes a cycle and contributes nothing new.
// Only answers that cannot depend on such a truncated cycle are memoized: a
// positive answer holds for every node on the path to the hit, and a negative
// answer holds for every node seen, since their reachable sets are subsets of
// the start node's.
func (cb *closureBuilder) reachesAbstract(start int) bool {
	if v, ok := cb.memo[start]; ok {
		return v
	}
	nodes := cb.g.nodes
	stack := []frame{{node: start}}
	onPath := map[int]bool{start: true}
	seen := map[int]bool{start: true}

	settle := func() bool {
		for _, f := range stack {
			cb.memo[f.node] = true
		}
		return true
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if cb.direct[top.node] {
			return settle()
		}
		edges := nodes[top.node].edges
		if top.next >= len(edges) {
			onPath[top.node] = false
			stack = stack[:len(stack)-1]
			continue
		}
		target := edges[top.next].target
		top.next++

		if nodes[target].typ.Kind != schema.TypeKindObject {
			continue
		}
		if v, ok := cb.memo[target]; ok {
			if v {
				return settle()
			}
			continue
		}
		if onPath[target] || seen[target] {
			continue
		}
		seen[target] = true
		onPath[target] = true
		stack = append(stack, frame{node: target})
	}

	for n := range seen {
		cb.memo[n] = false
	}
	return false
}
