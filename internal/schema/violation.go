package schema

import (
	"fmt"

	language "github.com/hanpama/gqlproj/internal/language"
)

type Violation struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

type ValidationError []*Violation

func (e ValidationError) Error() string {
	msg := "violations found:\n"
	for _, v := range e {
		line := "- " + v.Message
		if v.File != "" {
			line += fmt.Sprintf(" %s:%d:%d", v.File, v.Line, v.Column)
		}
		msg += line + "\n"
	}
	return msg
}

func violationWithPosition(message string, pos *language.Position) *Violation {
	v := &Violation{Message: message}
	if pos != nil {
		v.File = language.SourceName(pos)
		v.Line = pos.Line
		v.Column = pos.Column
	}
	return v
}

// NOTE: Keep messages stable, tests match on substrings.

func violationDefinitionAlreadyExists(name string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("Type %q is defined more than once", name), pos)
}

func violationDefinitionNotFoundForExtension(name string, pos *language.Position) *Violation {
	return violationWithPosition(fmt.Sprintf("definition %q not found for extension", name), pos)
}

func violationUnexpectedTypeForExtension(node *language.Definition, want TypeKind) *Violation {
	return violationWithPosition(
		fmt.Sprintf("cannot extend %s %q as %s", want, node.Name, kindOf(node.Kind)),
		node.Position,
	)
}

func violationReservedFieldPrefix(kind, fieldName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("%s name %q cannot start with '__' (reserved prefix)", kind, fieldName),
		pos,
	)
}

func violationDuplicateField(kind TypeKind, fieldName, typeName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Duplicate field %q found in %s %q", fieldName, kind, typeName),
		pos,
	)
}

func violationDuplicateEnumValue(valueName, enumName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Duplicate enum value %q found in enum %q", valueName, enumName),
		pos,
	)
}

func violationUnknownRootType(operation language.Operation, typeName string, pos *language.Position) *Violation {
	return violationWithPosition(
		fmt.Sprintf("Root %s type %q is not defined", operation, typeName),
		pos,
	)
}
