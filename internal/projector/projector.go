// Package projector computes the structural result type of operations and
// fragments against a schema type graph.
package projector

import (
	"errors"
	"fmt"
	"strings"

	config "github.com/hanpama/gqlproj/internal/config"
	fragment "github.com/hanpama/gqlproj/internal/fragment"
	language "github.com/hanpama/gqlproj/internal/language"
	schema "github.com/hanpama/gqlproj/internal/schema"
	shape "github.com/hanpama/gqlproj/internal/shape"
	typegraph "github.com/hanpama/gqlproj/internal/typegraph"
)

// Operation is the projection of one operation definition.
type Operation struct {
	// Name is empty for anonymous operations.
	Name      string
	TypeName  string
	Kind      string
	RootType  string
	Shape     *shape.Object
	Variables *shape.Object
	// Fragments lists every fragment the operation uses, directly or
	// transitively, in first-use order.
	Fragments []string
	Source    string
}

// Fragment is the projection of one fragment definition. Shape is an
// *shape.Object for fragments on object types and a *shape.Union otherwise.
type Fragment struct {
	Name      string
	TypeName  string
	OnType    string
	Shape     shape.Shape
	Fragments []string
	Source    string
}

type fragmentEntry struct {
	def *language.FragmentDefinition
	raw shape.Shape // without implied __typename fields
	err error
}

// Projector projects selection sets against one graph and config.
//
// Fragments must be added with AddFragment, in dependency order, before any
// operation that spreads them is projected. Once all fragments are added,
// Operation and Project are safe for concurrent use.
type Projector struct {
	graph     *typegraph.Graph
	closure   *typegraph.ClosureResult
	cfg       *config.Config
	fragments map[string]*fragmentEntry
}

// New returns a projector over g using cfg.
func New(g *typegraph.Graph, cfg *config.Config) *Projector {
	return &Projector{
		graph:     g,
		closure:   g.Closure(),
		cfg:       cfg,
		fragments: make(map[string]*fragmentEntry),
	}
}

// AddFragment projects def and makes it available to later spreads. A
// failed fragment is remembered so that spreading it reports the cause.
func (p *Projector) AddFragment(def *language.FragmentDefinition) (*Fragment, error) {
	entry := &fragmentEntry{def: def}
	p.fragments[def.Name] = entry

	if t := p.graph.Type(def.TypeCondition); t == nil || !t.IsComposite() {
		entry.err = &InvalidTypeConditionError{Condition: def.TypeCondition, Position: def.Position}
		return nil, entry.err
	}
	if entry.err = p.check(def.SelectionSet, def.TypeCondition); entry.err != nil {
		return nil, entry.err
	}
	entry.raw, entry.err = p.project(nil, def.TypeCondition, def.SelectionSet)
	if entry.err != nil {
		return nil, entry.err
	}
	return &Fragment{
		Name:      def.Name,
		TypeName:  p.cfg.DocumentTypeName(def.Name, "fragment"),
		OnType:    def.TypeCondition,
		Shape:     p.finalize(entry.raw),
		Fragments: p.uses(def.SelectionSet),
		Source:    language.SourceName(def.Position),
	}, nil
}

// Operation projects op. anonymous numbers the operation when it has no
// name.
func (p *Projector) Operation(op *language.OperationDefinition, anonymous int) (*Operation, error) {
	kind := string(op.Operation)
	root := p.graph.Schema().RootType(kind)
	if root == "" || p.graph.Type(root) == nil {
		return nil, &MissingRootTypeError{Operation: kind, Position: op.Position}
	}
	name := op.Name
	if name == "" {
		name = fmt.Sprintf("Anonymous%d", anonymous)
	}
	typeName := p.cfg.DocumentTypeName(name, kind)

	if err := p.check(op.SelectionSet, root); err != nil {
		return nil, err
	}
	raw, err := p.project(nil, root, op.SelectionSet)
	if err != nil {
		return nil, err
	}
	vars, err := p.variables(op, typeName+"Variables")
	if err != nil {
		return nil, err
	}
	return &Operation{
		Name:      op.Name,
		TypeName:  typeName,
		Kind:      kind,
		RootType:  root,
		Shape:     p.finalize(raw).(*shape.Object),
		Variables: vars,
		Fragments: p.uses(op.SelectionSet),
		Source:    language.SourceName(op.Position),
	}, nil
}

// Project returns the shape of set selected on the named type: an
// *shape.Object for object types and a *shape.Union with one branch per
// implementer for interfaces and unions.
func (p *Projector) Project(typeName string, set language.SelectionSet) (shape.Shape, error) {
	if p.graph.Type(typeName) == nil {
		return nil, fmt.Errorf("unknown type %q", typeName)
	}
	if err := p.check(set, typeName); err != nil {
		return nil, err
	}
	raw, err := p.project(nil, typeName, set)
	if err != nil {
		return nil, err
	}
	return p.finalize(raw), nil
}

func (p *Projector) project(path []string, typeName string, set language.SelectionSet) (shape.Shape, error) {
	t := p.graph.Type(typeName)
	if t == nil {
		return nil, fmt.Errorf("unknown type %q", typeName)
	}
	switch t.Kind {
	case schema.TypeKindObject:
		return p.branch(path, typeName, typeName, set)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		impls := p.closure.ImplementersOf(typeName)
		u := &shape.Union{Abstract: typeName, Branches: make([]*shape.Object, 0, len(impls))}
		for _, impl := range impls {
			obj, err := p.branch(append(path[:len(path):len(path)], "["+impl+"]"), impl, typeName, set)
			if err != nil {
				return nil, err
			}
			u.Branches = append(u.Branches, obj)
		}
		return u, nil
	}
	return nil, fmt.Errorf("type %q of kind %s has no selectable fields", typeName, t.Kind)
}

// check validates the type conditions and fragment spreads of set at the
// position pos and below it. Nested positions take the type declared by the
// field on pos, not the narrower type an implementer may declare, and do not
// depend on the concrete types a position has.
func (p *Projector) check(set language.SelectionSet, pos string) error {
	for _, sel := range set {
		switch sel := sel.(type) {
		case *language.Field:
			if len(sel.SelectionSet) == 0 {
				continue
			}
			t := p.graph.Type(pos)
			if t == nil {
				continue
			}
			// Unknown fields are reported by projection.
			if def := t.Field(sel.Name); def != nil {
				if err := p.check(sel.SelectionSet, def.Type.GetNamedType()); err != nil {
					return err
				}
			}
		case *language.InlineFragment:
			cond := sel.TypeCondition
			if cond == "" {
				cond = pos
			} else if err := p.checkCondition(cond, pos, sel.Position); err != nil {
				return err
			}
			if err := p.check(sel.SelectionSet, cond); err != nil {
				return err
			}
		case *language.FragmentSpread:
			entry, err := p.fragment(sel)
			if err != nil {
				return err
			}
			if err := p.checkCondition(entry.def.TypeCondition, pos, sel.Position); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Projector) checkCondition(cond, pos string, at *language.Position) error {
	t := p.graph.Type(cond)
	if t == nil || !t.IsComposite() {
		return &InvalidTypeConditionError{Condition: cond, Position: at}
	}
	if cond == pos || p.closure.Overlaps(cond, pos) {
		return nil
	}
	return &InvalidTypeConditionError{Condition: cond, Parent: pos, Position: at}
}

func (p *Projector) fragment(spread *language.FragmentSpread) (*fragmentEntry, error) {
	entry, ok := p.fragments[spread.Name]
	if !ok {
		return nil, &UnresolvedFragmentSpreadError{Name: spread.Name, Position: spread.Position}
	}
	if entry.err != nil {
		return nil, fmt.Errorf("%sspread of invalid fragment %q: %w", where(spread.Position), spread.Name, entry.err)
	}
	return entry, nil
}

// uses lists the fragments reachable from set through spreads.
func (p *Projector) uses(set language.SelectionSet) []string {
	var out []string
	seen := make(map[string]bool)
	var visit func(language.SelectionSet)
	visit = func(set language.SelectionSet) {
		for _, name := range fragment.Spreads(set) {
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
			if entry, ok := p.fragments[name]; ok {
				visit(entry.def.SelectionSet)
			}
		}
	}
	visit(set)
	return out
}

func (p *Projector) variables(op *language.OperationDefinition, typeName string) (*shape.Object, error) {
	obj := &shape.Object{TypeName: typeName, Fields: []*shape.Field{}}
	for _, v := range op.VariableDefinitions {
		ref := schema.BuildTypeRef(v.Type)
		named := ref.GetNamedType()
		t := p.graph.Type(named)
		if t == nil {
			return nil, &UnknownTypeError{Name: named, Position: v.Position}
		}
		var leaf shape.Shape
		switch t.Kind {
		case schema.TypeKindScalar:
			leaf = &shape.Scalar{Name: named}
		case schema.TypeKindEnum:
			leaf = &shape.Enum{Name: p.cfg.TypeName(named)}
		case schema.TypeKindInputObject:
			leaf = &shape.Input{Name: p.cfg.TypeName(named)}
		default:
			return nil, &UnknownTypeError{Name: named, Position: v.Position}
		}
		obj.Fields = append(obj.Fields, &shape.Field{
			Name:     p.cfg.FieldName(v.Variable),
			Type:     wrap(ref, leaf),
			Optional: v.DefaultValue != nil || !ref.IsNonNull(),
		})
	}
	return obj, nil
}

// finalize returns a copy of raw in which every object shape carries the
// implied __typename field, unless configured otherwise.
func (p *Projector) finalize(raw shape.Shape) shape.Shape {
	out := shape.Clone(raw)
	if p.cfg.SkipTypename {
		return out
	}
	var walk func(shape.Shape)
	walk = func(s shape.Shape) {
		switch s := s.(type) {
		case *shape.Object:
			for _, f := range s.Fields {
				walk(f.Type)
			}
			if s.Lookup(language.TypenameField) == nil {
				implied := &shape.Field{
					Name:     language.TypenameField,
					Type:     &shape.NonNull{Of: &shape.Typename{Name: s.TypeName}},
					Optional: !p.cfg.NonOptionalTypename,
				}
				s.Fields = append([]*shape.Field{implied}, s.Fields...)
			}
		case *shape.Union:
			for _, b := range s.Branches {
				walk(b)
			}
		case *shape.List:
			walk(s.Of)
		case *shape.NonNull:
			walk(s.Of)
		}
	}
	walk(out)
	return out
}

// wrap applies the list and non-null wrappers of ref around inner.
func wrap(ref *schema.TypeRef, inner shape.Shape) shape.Shape {
	switch ref.Kind {
	case schema.TypeRefKindNonNull:
		return &shape.NonNull{Of: wrap(ref.OfType, inner)}
	case schema.TypeRefKindList:
		return &shape.List{Of: wrap(ref.OfType, inner)}
	}
	return inner
}

func isConditional(dirs language.DirectiveList) bool {
	return dirs.ForName("skip") != nil || dirs.ForName("include") != nil
}

func (p *Projector) emittedFieldName(name string) string {
	if strings.HasPrefix(name, "__") {
		return name
	}
	return p.cfg.FieldName(name)
}

func asMergeError(err error, path []string, at *language.Position) error {
	var collision *shape.NameCollisionError
	if errors.As(err, &collision) {
		return &FieldNameCollisionError{
			Path:     append(append([]string(nil), path...), collision.Path...),
			Field:    collision.Name,
			Left:     collision.Left,
			Right:    collision.Right,
			Position: at,
		}
	}
	var conflict *shape.ConflictError
	if !errors.As(err, &conflict) {
		return err
	}
	full := append(append([]string(nil), path...), conflict.Path...)
	return &IncompatibleMergeError{
		Path:     full,
		Left:     shape.String(conflict.Left),
		Right:    shape.String(conflict.Right),
		Position: at,
	}
}
