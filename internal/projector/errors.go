package projector

import (
	"fmt"
	"strings"

	language "github.com/hanpama/gqlproj/internal/language"
)

func where(pos *language.Position) string {
	if pos == nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d: ", language.SourceName(pos), pos.Line, pos.Column)
}

// UnresolvedFragmentSpreadError reports a spread of a fragment that is not
// defined in any input document.
type UnresolvedFragmentSpreadError struct {
	Name     string
	Position *language.Position
}

func (e *UnresolvedFragmentSpreadError) Error() string {
	return fmt.Sprintf("%sunknown fragment %q", where(e.Position), e.Name)
}

// IncompatibleMergeError reports two selections of one response name whose
// shapes cannot be merged.
type IncompatibleMergeError struct {
	// Path is the response path of the conflicting field. Bracketed
	// elements name the concrete type of a polymorphic branch.
	Path     []string
	Left     string
	Right    string
	Position *language.Position
}

func (e *IncompatibleMergeError) Error() string {
	return fmt.Sprintf("%sfields at %s have incompatible shapes %s and %s",
		where(e.Position), strings.Join(e.Path, "."), e.Left, e.Right)
}

// FieldNameCollisionError reports two response names of one selection that
// the field naming convention maps to the same emitted name.
type FieldNameCollisionError struct {
	Path     []string
	Field    string
	Left     string
	Right    string
	Position *language.Position
}

func (e *FieldNameCollisionError) Error() string {
	return fmt.Sprintf("%sresponse names %q and %q both become field %q at %s",
		where(e.Position), e.Left, e.Right, e.Field, strings.Join(e.Path, "."))
}

// InvalidTypeConditionError reports a type condition that can never match
// at the position it is used.
type InvalidTypeConditionError struct {
	Condition string
	Parent    string
	Position  *language.Position
}

func (e *InvalidTypeConditionError) Error() string {
	if e.Parent == "" {
		return fmt.Sprintf("%stype condition %q is not a composite type", where(e.Position), e.Condition)
	}
	return fmt.Sprintf("%stype condition %q can never apply within %q", where(e.Position), e.Condition, e.Parent)
}

// UnknownFieldError reports a selected field missing from its type.
type UnknownFieldError struct {
	Type     string
	Field    string
	Position *language.Position
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%stype %q has no field %q", where(e.Position), e.Type, e.Field)
}

// UnknownTypeError reports a variable whose type is missing from the schema
// or is not an input type.
type UnknownTypeError struct {
	Name     string
	Position *language.Position
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("%s%q is not an input type of the schema", where(e.Position), e.Name)
}

// MissingRootTypeError reports an operation whose root type the schema
// does not define.
type MissingRootTypeError struct {
	Operation string
	Position  *language.Position
}

func (e *MissingRootTypeError) Error() string {
	return fmt.Sprintf("%sschema defines no %s root type", where(e.Position), e.Operation)
}
