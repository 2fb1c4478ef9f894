// Package resolvers builds the parent shapes server side resolvers receive,
// for every type of a schema.
package resolvers

import (
	config "github.com/hanpama/gqlproj/internal/config"
	schema "github.com/hanpama/gqlproj/internal/schema"
	shape "github.com/hanpama/gqlproj/internal/shape"
	typegraph "github.com/hanpama/gqlproj/internal/typegraph"
)

// ResolverShape is the resolver parent type of one schema type.
type ResolverShape struct {
	Name     string
	TypeName string
	Kind     schema.TypeKind
	// Shape is an *shape.Object for objects, a *shape.OneOf over the
	// implementer shapes for interfaces and unions, a *shape.External for
	// mapped types and a leaf otherwise.
	Shape shape.Shape
	// Implementers are the concrete types of an interface or union, in
	// closure order.
	Implementers []string
	// RewriteFields are the fields substituted with resolver references.
	RewriteFields []string
}

// Map holds the resolver shapes of every schema type in declaration order.
type Map struct {
	Order []string
	Types map[string]*ResolverShape
}

// Get returns the shape of the named type or nil.
func (m *Map) Get(name string) *ResolverShape { return m.Types[name] }

// List returns the shapes in declaration order.
func (m *Map) List() []*ResolverShape {
	out := make([]*ResolverShape, 0, len(m.Order))
	for _, name := range m.Order {
		out = append(out, m.Types[name])
	}
	return out
}

// Build computes the resolver map of g.
//
// A field is rewritten to a resolver reference when its named type is
// abstract, is mapped to an external type, or (unless
// AvoidCheckingAbstractTypesRecursively is set) is an object type that
// transitively reaches an abstract field. References are never expanded,
// so cyclic schemas need no special handling here.
func Build(g *typegraph.Graph, cfg *config.Config) *Map {
	closure := g.Closure()
	m := &Map{Types: make(map[string]*ResolverShape, g.Len())}

	types := g.Types()
	for _, t := range types {
		m.Order = append(m.Order, t.Name)
		rs := &ResolverShape{Name: t.Name, TypeName: cfg.TypeName(t.Name), Kind: t.Kind}
		m.Types[t.Name] = rs

		if ref, ok := cfg.Mapper(t.Name); ok {
			rs.Shape = &shape.External{Source: ref.Source, Name: ref.Name}
			continue
		}
		switch t.Kind {
		case schema.TypeKindObject:
			rs.Shape, rs.RewriteFields = parentObject(g, closure, cfg, t)
		case schema.TypeKindScalar:
			rs.Shape = &shape.Scalar{Name: t.Name}
		case schema.TypeKindEnum:
			rs.Shape = &shape.Enum{Name: rs.TypeName}
		case schema.TypeKindInputObject:
			rs.Shape = &shape.Input{Name: rs.TypeName}
		}
	}

	// Abstract types reuse the shapes of their implementers, which are all
	// built by now.
	for _, t := range types {
		if !t.IsAbstract() {
			continue
		}
		rs := m.Types[t.Name]
		rs.Implementers = append([]string{}, closure.ImplementersOf(t.Name)...)
		if t.Kind == schema.TypeKindInterface {
			rs.RewriteFields = rewriteFields(g, closure, cfg, t)
		}
		if rs.Shape != nil {
			continue
		}
		oneOf := &shape.OneOf{Abstract: t.Name, Options: make([]shape.Shape, 0, len(rs.Implementers))}
		for _, impl := range rs.Implementers {
			oneOf.Options = append(oneOf.Options, m.Types[impl].Shape)
		}
		rs.Shape = oneOf
	}
	return m
}

func parentObject(g *typegraph.Graph, closure *typegraph.ClosureResult, cfg *config.Config, t *schema.Type) (*shape.Object, []string) {
	rewrite := rewriteFields(g, closure, cfg, t)
	rewritten := make(map[string]bool, len(rewrite))
	for _, name := range rewrite {
		rewritten[name] = true
	}

	obj := &shape.Object{TypeName: t.Name, Fields: make([]*shape.Field, 0, len(t.Fields))}
	for _, f := range t.Fields {
		named := f.Type.GetNamedType()
		var leaf shape.Shape
		if rewritten[f.Name] {
			leaf = &shape.ResolverRef{Name: named}
		} else {
			leaf = leafShape(g, cfg, named)
		}
		obj.Fields = append(obj.Fields, &shape.Field{
			Name: cfg.FieldName(f.Name),
			Type: wrap(f.Type, leaf),
		})
	}
	return obj, rewrite
}

// rewriteFields lists the fields of t, in declaration order, that resolve
// through a resolver reference.
func rewriteFields(g *typegraph.Graph, closure *typegraph.ClosureResult, cfg *config.Config, t *schema.Type) []string {
	candidates := map[string]bool{}
	if cc, ok := closure.Composites[t.Name]; ok {
		list := cc.RewriteFields
		if cfg.AvoidCheckingAbstractTypesRecursively {
			list = cc.AbstractFields
		}
		for _, name := range list {
			candidates[name] = true
		}
	}
	out := []string{}
	for _, f := range t.Fields {
		if _, mapped := cfg.Mapper(f.Type.GetNamedType()); mapped || candidates[f.Name] {
			out = append(out, f.Name)
		}
	}
	return out
}

func leafShape(g *typegraph.Graph, cfg *config.Config, named string) shape.Shape {
	kind, _ := g.Kind(named)
	switch kind {
	case schema.TypeKindScalar:
		return &shape.Scalar{Name: named}
	case schema.TypeKindEnum:
		return &shape.Enum{Name: cfg.TypeName(named)}
	}
	return &shape.Named{Name: cfg.TypeName(named)}
}

func wrap(ref *schema.TypeRef, inner shape.Shape) shape.Shape {
	switch ref.Kind {
	case schema.TypeRefKindNonNull:
		return &shape.NonNull{Of: wrap(ref.OfType, inner)}
	case schema.TypeRefKindList:
		return &shape.List{Of: wrap(ref.OfType, inner)}
	}
	return inner
}
