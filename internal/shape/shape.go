// Package shape is the structural type model produced by projection: object
// shapes, per-implementer unions, leaves and the list/non-null wrappers that
// mirror schema type references.
package shape

// Shape is one node of a projected type. The set of implementations is
// closed; traversals switch over the concrete types below.
type Shape interface {
	isShape()
}

// Object is the shape of one concrete (or, in resolver maps, interface) type.
type Object struct {
	TypeName string
	Fields   []*Field
	// Spreads lists the fragments whose selections were merged into this
	// object, in first-spread order.
	Spreads []string
}

// Field is a named entry of an Object. Optional fields may be absent at
// runtime (conditional selections and the implied __typename).
type Field struct {
	Name     string
	Type     Shape
	Optional bool
	// ResponseName is the document key the field was selected under, before
	// any naming convention. It is empty for fields not taken from a
	// document and does not take part in Equal.
	ResponseName string
}

// Union holds one branch per concrete type that can occur at an abstract
// position. An abstract type without implementers yields a Union with no
// branches.
type Union struct {
	Abstract string
	Branches []*Object
}

// Scalar is a scalar leaf.
type Scalar struct{ Name string }

// Enum is an enum leaf.
type Enum struct{ Name string }

// Input is a reference to an input object type.
type Input struct{ Name string }

// Typename is the literal name of a concrete type.
type Typename struct{ Name string }

// List wraps a shape in a list.
type List struct{ Of Shape }

// NonNull marks a shape as never null.
type NonNull struct{ Of Shape }

// Named refers to the generated base type of an object or interface.
type Named struct{ Name string }

// ResolverRef is a placeholder for the resolver type of Name, resolved
// lazily by the consumer of the model.
type ResolverRef struct{ Name string }

// External is a caller supplied type replacing a generated one.
type External struct {
	Source string
	Name   string
}

// OneOf is the resolver shape of an abstract type: one option per
// implementer.
type OneOf struct {
	Abstract string
	Options  []Shape
}

func (*Object) isShape()      {}
func (*Union) isShape()       {}
func (*Scalar) isShape()      {}
func (*Enum) isShape()        {}
func (*Input) isShape()       {}
func (*Typename) isShape()    {}
func (*List) isShape()        {}
func (*NonNull) isShape()     {}
func (*Named) isShape()       {}
func (*ResolverRef) isShape() {}
func (*External) isShape()    {}
func (*OneOf) isShape()       {}

// Lookup returns the field named name or nil.
func (o *Object) Lookup(name string) *Field {
	for _, f := range o.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldNames returns the field names in order.
func (o *Object) FieldNames() []string {
	out := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		out[i] = f.Name
	}
	return out
}

// Branch returns the branch for the concrete type name or nil.
func (u *Union) Branch(typeName string) *Object {
	for _, b := range u.Branches {
		if b.TypeName == typeName {
			return b
		}
	}
	return nil
}

// Unwrap strips List and NonNull wrappers.
func Unwrap(s Shape) Shape {
	for {
		switch w := s.(type) {
		case *List:
			s = w.Of
		case *NonNull:
			s = w.Of
		default:
			return s
		}
	}
}

// Clone returns a deep copy of s. OneOf options are shared.
func Clone(s Shape) Shape {
	switch s := s.(type) {
	case nil:
		return nil
	case *Object:
		return cloneObject(s)
	case *Union:
		u := &Union{Abstract: s.Abstract, Branches: make([]*Object, len(s.Branches))}
		for i, b := range s.Branches {
			u.Branches[i] = cloneObject(b)
		}
		return u
	case *List:
		return &List{Of: Clone(s.Of)}
	case *NonNull:
		return &NonNull{Of: Clone(s.Of)}
	case *Scalar:
		c := *s
		return &c
	case *Enum:
		c := *s
		return &c
	case *Input:
		c := *s
		return &c
	case *Typename:
		c := *s
		return &c
	case *Named:
		c := *s
		return &c
	case *ResolverRef:
		c := *s
		return &c
	case *External:
		c := *s
		return &c
	case *OneOf:
		return &OneOf{Abstract: s.Abstract, Options: append([]Shape(nil), s.Options...)}
	}
	panic("shape: unknown shape type")
}

func cloneObject(o *Object) *Object {
	c := &Object{
		TypeName: o.TypeName,
		Fields:   make([]*Field, len(o.Fields)),
		Spreads:  append([]string(nil), o.Spreads...),
	}
	for i, f := range o.Fields {
		c.Fields[i] = &Field{Name: f.Name, Type: Clone(f.Type), Optional: f.Optional, ResponseName: f.ResponseName}
	}
	return c
}
