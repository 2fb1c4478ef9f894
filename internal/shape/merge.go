package shape

import (
	"fmt"
	"strings"
)

// ConflictError reports two shapes that cannot be merged. Path is the chain
// of field names (and bracketed branch type names) leading to the conflict.
type ConflictError struct {
	Path  []string
	Left  Shape
	Right Shape
}

func (e *ConflictError) Error() string {
	where := "<root>"
	if len(e.Path) > 0 {
		where = strings.Join(e.Path, ".")
	}
	return fmt.Sprintf("conflicting shapes at %s: %s and %s", where, String(e.Left), String(e.Right))
}

// NameCollisionError reports two distinct response names that were given
// the same field name.
type NameCollisionError struct {
	Path  []string
	Name  string
	Left  string
	Right string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("response names %q and %q both map to field %q at %s",
		e.Left, e.Right, e.Name, strings.Join(e.Path, "."))
}

// Merge returns the structural union of a and b without modifying either.
// Objects merge field-wise in first-occurrence order, a field staying
// optional only if it is optional on both sides. Fields of one name taken
// from different response names do not merge. Unions merge branch-wise by
// type name. Wrappers must match and leaves must be equal.
func Merge(a, b Shape) (Shape, error) {
	return merge(nil, a, b)
}

// MergeInto merges src into dst in place. dst must not be shared.
func MergeInto(dst, src *Object) error {
	return mergeObjectInto(nil, dst, src)
}

func merge(path []string, a, b Shape) (Shape, error) {
	conflict := func() error {
		return &ConflictError{Path: append([]string(nil), path...), Left: a, Right: b}
	}
	switch a := a.(type) {
	case *Object:
		bo, ok := b.(*Object)
		if !ok || a.TypeName != bo.TypeName {
			return nil, conflict()
		}
		out := cloneObject(a)
		if err := mergeObjectInto(path, out, bo); err != nil {
			return nil, err
		}
		return out, nil
	case *Union:
		bu, ok := b.(*Union)
		if !ok || a.Abstract != bu.Abstract {
			return nil, conflict()
		}
		out := Clone(a).(*Union)
		for _, br := range bu.Branches {
			existing := out.Branch(br.TypeName)
			if existing == nil {
				out.Branches = append(out.Branches, cloneObject(br))
				continue
			}
			if err := mergeObjectInto(append(path, "["+br.TypeName+"]"), existing, br); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *List:
		bl, ok := b.(*List)
		if !ok {
			return nil, conflict()
		}
		of, err := merge(path, a.Of, bl.Of)
		if err != nil {
			return nil, err
		}
		return &List{Of: of}, nil
	case *NonNull:
		bn, ok := b.(*NonNull)
		if !ok {
			return nil, conflict()
		}
		of, err := merge(path, a.Of, bn.Of)
		if err != nil {
			return nil, err
		}
		return &NonNull{Of: of}, nil
	}
	if !Equal(a, b) {
		return nil, conflict()
	}
	return Clone(a), nil
}

func mergeObjectInto(path []string, dst, src *Object) error {
	for _, f := range src.Fields {
		existing := dst.Lookup(f.Name)
		if existing == nil {
			dst.Fields = append(dst.Fields, &Field{
				Name:         f.Name,
				Type:         Clone(f.Type),
				Optional:     f.Optional,
				ResponseName: f.ResponseName,
			})
			continue
		}
		if existing.ResponseName != "" && f.ResponseName != "" && existing.ResponseName != f.ResponseName {
			return &NameCollisionError{
				Path:  append(append([]string(nil), path...), f.Name),
				Name:  f.Name,
				Left:  existing.ResponseName,
				Right: f.ResponseName,
			}
		}
		merged, err := merge(append(path, f.Name), existing.Type, f.Type)
		if err != nil {
			return err
		}
		existing.Type = merged
		existing.Optional = existing.Optional && f.Optional
		if existing.ResponseName == "" {
			existing.ResponseName = f.ResponseName
		}
	}
	for _, s := range src.Spreads {
		dst.Spreads = appendUnique(dst.Spreads, s)
	}
	return nil
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Shape) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case *Object:
		bo, ok := b.(*Object)
		return ok && objectEqual(a, bo)
	case *Union:
		bu, ok := b.(*Union)
		if !ok || a.Abstract != bu.Abstract || len(a.Branches) != len(bu.Branches) {
			return false
		}
		for i := range a.Branches {
			if !objectEqual(a.Branches[i], bu.Branches[i]) {
				return false
			}
		}
		return true
	case *List:
		bl, ok := b.(*List)
		return ok && Equal(a.Of, bl.Of)
	case *NonNull:
		bn, ok := b.(*NonNull)
		return ok && Equal(a.Of, bn.Of)
	case *Scalar:
		bs, ok := b.(*Scalar)
		return ok && *a == *bs
	case *Enum:
		be, ok := b.(*Enum)
		return ok && *a == *be
	case *Input:
		bi, ok := b.(*Input)
		return ok && *a == *bi
	case *Typename:
		bt, ok := b.(*Typename)
		return ok && *a == *bt
	case *Named:
		bn, ok := b.(*Named)
		return ok && *a == *bn
	case *ResolverRef:
		br, ok := b.(*ResolverRef)
		return ok && *a == *br
	case *External:
		be, ok := b.(*External)
		return ok && *a == *be
	case *OneOf:
		bo, ok := b.(*OneOf)
		if !ok || a.Abstract != bo.Abstract || len(a.Options) != len(bo.Options) {
			return false
		}
		for i := range a.Options {
			if !Equal(a.Options[i], bo.Options[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func objectEqual(a, b *Object) bool {
	if a.TypeName != b.TypeName || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		fa, fb := a.Fields[i], b.Fields[i]
		if fa.Name != fb.Name || fa.Optional != fb.Optional || !Equal(fa.Type, fb.Type) {
			return false
		}
	}
	return true
}

func appendUnique(list []string, name string) []string {
	for _, n := range list {
		if n == name {
			return list
		}
	}
	return append(list, name)
}
