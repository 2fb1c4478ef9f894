package projector

import (
	language "github.com/hanpama/gqlproj/internal/language"
	schema "github.com/hanpama/gqlproj/internal/schema"
	shape "github.com/hanpama/gqlproj/internal/shape"
)

type phase int

const (
	// unconditional selections apply to every concrete type of a position
	unconditional phase = iota
	// conditional selections apply through a narrower type condition
	conditional
)

// branchBuilder accumulates the shape of one concrete type at a position.
type branchBuilder struct {
	p        *Projector
	path     []string
	concrete string
	obj      *shape.Object
}

// branch projects set for the concrete object type c at position pos:
// unconditional selections first, then the selections of type conditions
// narrower than pos that match c.
func (p *Projector) branch(path []string, c, pos string, set language.SelectionSet) (*shape.Object, error) {
	b := &branchBuilder{
		p:        p,
		path:     path,
		concrete: c,
		obj:      &shape.Object{TypeName: c, Fields: []*shape.Field{}},
	}
	if err := b.selections(set, pos, unconditional); err != nil {
		return nil, err
	}
	if err := b.selections(set, pos, conditional); err != nil {
		return nil, err
	}
	return b.obj, nil
}

func (b *branchBuilder) applies(cond string) bool {
	return b.p.closure.IsPossibleType(cond, b.concrete)
}

// unconditionalAt reports whether a condition matching the concrete type
// holds for every value at pos. At an object position the concrete type is
// known, so every matching condition holds.
func (b *branchBuilder) unconditionalAt(cond, pos string) bool {
	if cond == pos {
		return true
	}
	kind, _ := b.p.graph.Kind(pos)
	return kind == schema.TypeKindObject
}

func (b *branchBuilder) selections(set language.SelectionSet, pos string, ph phase) error {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *language.Field:
			if ph != unconditional {
				continue
			}
			if err := b.field(sel, pos); err != nil {
				return err
			}

		case *language.InlineFragment:
			cond := sel.TypeCondition
			if cond == "" {
				cond = pos
			}
			if !b.applies(cond) {
				continue
			}
			if b.unconditionalAt(cond, pos) {
				next := cond
				if kind, _ := b.p.graph.Kind(pos); kind == schema.TypeKindObject {
					next = pos
				}
				if err := b.selections(sel.SelectionSet, next, ph); err != nil {
					return err
				}
				continue
			}
			if ph != conditional {
				continue
			}
			if err := b.selections(sel.SelectionSet, cond, unconditional); err != nil {
				return err
			}
			if err := b.selections(sel.SelectionSet, cond, conditional); err != nil {
				return err
			}

		case *language.FragmentSpread:
			entry, err := b.p.fragment(sel)
			if err != nil {
				return err
			}
			cond := entry.def.TypeCondition
			if !b.applies(cond) {
				continue
			}
			want := conditional
			if b.unconditionalAt(cond, pos) {
				want = unconditional
			}
			if ph != want {
				continue
			}
			if err := b.spread(sel, entry); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *branchBuilder) field(f *language.Field, pos string) error {
	response := language.ResponseName(f)
	name := b.p.emittedFieldName(response)

	var typ shape.Shape
	if f.Name == language.TypenameField {
		typ = &shape.Typename{Name: b.concrete}
		if b.p.cfg.NonOptionalTypename {
			typ = &shape.NonNull{Of: typ}
		}
	} else {
		def := b.p.graph.Type(b.concrete).Field(f.Name)
		if def == nil {
			if t := b.p.graph.Type(pos); t != nil {
				def = t.Field(f.Name)
			}
		}
		if def == nil {
			return &UnknownFieldError{Type: b.concrete, Field: f.Name, Position: f.Position}
		}
		inner, err := b.fieldShape(def.Type.GetNamedType(), name, f)
		if err != nil {
			return err
		}
		typ = wrap(def.Type, inner)
	}

	entry := &shape.Field{Name: name, Type: typ, Optional: isConditional(f.Directives), ResponseName: response}
	err := shape.MergeInto(b.obj, &shape.Object{TypeName: b.concrete, Fields: []*shape.Field{entry}})
	if err != nil {
		return asMergeError(err, b.path, f.Position)
	}
	return nil
}

func (b *branchBuilder) fieldShape(named, name string, f *language.Field) (shape.Shape, error) {
	t := b.p.graph.Type(named)
	switch t.Kind {
	case schema.TypeKindScalar:
		return &shape.Scalar{Name: named}, nil
	case schema.TypeKindEnum:
		return &shape.Enum{Name: b.p.cfg.TypeName(named)}, nil
	}
	return b.p.project(append(b.path[:len(b.path):len(b.path)], name), named, f.SelectionSet)
}

// spread merges the fragment's shape for the concrete type at the spread
// point.
func (b *branchBuilder) spread(sel *language.FragmentSpread, entry *fragmentEntry) error {
	var src *shape.Object
	switch raw := entry.raw.(type) {
	case *shape.Object:
		if raw.TypeName == b.concrete {
			src = raw
		}
	case *shape.Union:
		src = raw.Branch(b.concrete)
	}
	if src == nil {
		return nil
	}
	err := shape.MergeInto(b.obj, &shape.Object{TypeName: b.concrete, Fields: src.Fields})
	if err != nil {
		return asMergeError(err, b.path, sel.Position)
	}
	for _, s := range b.obj.Spreads {
		if s == sel.Name {
			return nil
		}
	}
	b.obj.Spreads = append(b.obj.Spreads, sel.Name)
	return nil
}
