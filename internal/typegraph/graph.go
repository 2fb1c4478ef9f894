package typegraph

import (
	"sync"

	schema "github.com/hanpama/gqlproj/internal/schema"
)

// Graph is the immutable, index-addressed type graph of a schema.
type Graph struct {
	schema *schema.Schema
	nodes  []*node
	index  map[string]int

	closureOnce sync.Once
	closure     *ClosureResult
}

type node struct {
	typ        *schema.Type
	edges      []edge // one per field of an object or interface
	interfaces []int  // declared interfaces of an object or interface
	members    []int  // union members
}

type edge struct {
	field  string
	target int
}

// New builds the graph for s. Every field type, argument type, input field
// type, implemented interface and union member must resolve to a type of the
// right kind, otherwise a *SchemaIntegrityError lists all offending
// references.
func New(s *schema.Schema) (*Graph, error) {
	g := &Graph{
		schema: s,
		index:  make(map[string]int, len(s.TypeOrder)),
	}
	for _, t := range s.OrderedTypes() {
		g.index[t.Name] = len(g.nodes)
		g.nodes = append(g.nodes, &node{typ: t})
	}

	var problems []IntegrityProblem
	report := func(typeName, field, ref, reason string) {
		problems = append(problems, IntegrityProblem{Type: typeName, Field: field, Reference: ref, Reason: reason})
	}

	for _, n := range g.nodes {
		t := n.typ
		switch t.Kind {
		case schema.TypeKindObject, schema.TypeKindInterface:
			for _, f := range t.Fields {
				named := f.Type.GetNamedType()
				target, ok := g.index[named]
				if !ok {
					report(t.Name, f.Name, named, "field type is not defined")
					continue
				}
				if g.nodes[target].typ.Kind == schema.TypeKindInputObject {
					report(t.Name, f.Name, named, "field type is an input type")
					continue
				}
				n.edges = append(n.edges, edge{field: f.Name, target: target})
				for _, arg := range f.Arguments {
					g.checkInput(t.Name, f.Name+"("+arg.Name+")", arg.Type, report)
				}
			}
			for _, iface := range t.Interfaces {
				target, ok := g.index[iface]
				if !ok {
					report(t.Name, "", iface, "implemented interface is not defined")
					continue
				}
				if g.nodes[target].typ.Kind != schema.TypeKindInterface {
					report(t.Name, "", iface, "implemented type is not an interface")
					continue
				}
				n.interfaces = append(n.interfaces, target)
			}
		case schema.TypeKindUnion:
			for _, member := range t.PossibleTypes {
				target, ok := g.index[member]
				if !ok {
					report(t.Name, "", member, "union member is not defined")
					continue
				}
				if g.nodes[target].typ.Kind != schema.TypeKindObject {
					report(t.Name, "", member, "union member is not an object type")
					continue
				}
				n.members = append(n.members, target)
			}
		case schema.TypeKindInputObject:
			for _, f := range t.InputFields {
				g.checkInput(t.Name, f.Name, f.Type, report)
			}
		case schema.TypeKindScalar, schema.TypeKindEnum:
			// leaves
		}
	}

	for _, root := range []string{s.QueryType, s.MutationType, s.SubscriptionType} {
		if root == "" {
			continue
		}
		if i, ok := g.index[root]; !ok {
			report(root, "", root, "root type is not defined")
		} else if g.nodes[i].typ.Kind != schema.TypeKindObject {
			report(root, "", root, "root type is not an object type")
		}
	}

	if len(problems) > 0 {
		return nil, &SchemaIntegrityError{Problems: problems}
	}
	return g, nil
}

func (g *Graph) checkInput(typeName, field string, ref *schema.TypeRef, report func(typeName, field, ref, reason string)) {
	named := ref.GetNamedType()
	target, ok := g.index[named]
	if !ok {
		report(typeName, field, named, "input type is not defined")
		return
	}
	switch g.nodes[target].typ.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum, schema.TypeKindInputObject:
	default:
		report(typeName, field, named, "type is not an input type")
	}
}

// Schema returns the schema the graph was built from.
func (g *Graph) Schema() *schema.Schema { return g.schema }

// Len returns the number of named types.
func (g *Graph) Len() int { return len(g.nodes) }

// Type returns the named type or nil.
func (g *Graph) Type(name string) *schema.Type {
	if i, ok := g.index[name]; ok {
		return g.nodes[i].typ
	}
	return nil
}

// Types returns all named types in declaration order.
func (g *Graph) Types() []*schema.Type {
	out := make([]*schema.Type, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.typ
	}
	return out
}

// Kind returns the kind of the named type and whether it exists.
func (g *Graph) Kind(name string) (schema.TypeKind, bool) {
	if t := g.Type(name); t != nil {
		return t.Kind, true
	}
	return "", false
}

// IsAbstract reports whether name is an interface or a union.
func (g *Graph) IsAbstract(name string) bool {
	t := g.Type(name)
	return t != nil && t.IsAbstract()
}

// FieldType returns the declared type of field on the named object or
// interface type. The __typename meta-field is not part of the graph.
func (g *Graph) FieldType(typeName, field string) (*schema.TypeRef, bool) {
	t := g.Type(typeName)
	if t == nil {
		return nil, false
	}
	f := t.Field(field)
	if f == nil {
		return nil, false
	}
	return f.Type, true
}

// Closure returns the memoized abstract type closure of g.
func (g *Graph) Closure() *ClosureResult {
	g.closureOnce.Do(func() {
		g.closure = ComputeClosure(g)
	})
	return g.closure
}
