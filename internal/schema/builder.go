package schema

import (
	"strings"

	language "github.com/hanpama/gqlproj/internal/language"
)

type builder struct {
	schema     *Schema
	docs       []*language.SchemaDocument
	violations []*Violation
}

// BuildFromDocuments merges parsed SDL documents into a Schema. Extensions are
// folded into their base definitions after all definitions are registered.
// Dangling type references are not reported here; the type graph rejects
// them when it is built.
func BuildFromDocuments(docs ...*language.SchemaDocument) (*Schema, error) {
	b := &builder{schema: NewSchema(), docs: docs}

	b.populateDefinitions()
	b.populateExtensions()
	b.populateRootTypes()

	if len(b.violations) > 0 {
		return nil, ValidationError(b.violations)
	}
	return b.schema, nil
}

// BuildFromSDL parses a single SDL source and returns the corresponding Schema.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	doc, err := language.ParseSchema(name, sdl)
	if err != nil {
		return nil, err
	}
	return BuildFromDocuments(doc)
}

func (b *builder) addViolation(v ...*Violation) {
	b.violations = append(b.violations, v...)
}

func (b *builder) populateDefinitions() {
	for _, doc := range b.docs {
		for _, node := range doc.Definitions {
			if existing, ok := b.schema.Types[node.Name]; ok {
				// Redeclaring a specified scalar is harmless.
				if node.Kind == language.Scalar && existing.Kind == TypeKindScalar && IsBuiltinScalar(node.Name) {
					continue
				}
				b.addViolation(violationDefinitionAlreadyExists(node.Name, node.Position))
				continue
			}
			t := &Type{
				Name:        node.Name,
				Kind:        kindOf(node.Kind),
				Description: node.Description,
			}
			b.schema.AddType(t)
			b.extend(t, node)
		}
	}
}

func (b *builder) populateExtensions() {
	for _, doc := range b.docs {
		for _, node := range doc.Extensions {
			t := b.schema.Types[node.Name]
			if t == nil {
				b.addViolation(violationDefinitionNotFoundForExtension(node.Name, node.Position))
				continue
			}
			if t.Kind != kindOf(node.Kind) {
				b.addViolation(violationUnexpectedTypeForExtension(node, t.Kind))
				continue
			}
			b.extend(t, node)
		}
	}
}

func (b *builder) extend(t *Type, node *language.Definition) {
	switch t.Kind {
	case TypeKindObject, TypeKindInterface:
		t.Interfaces = appendUnique(t.Interfaces, node.Interfaces...)
		for _, fieldNode := range node.Fields {
			if strings.HasPrefix(fieldNode.Name, "__") {
				b.addViolation(violationReservedFieldPrefix("Field", fieldNode.Name, fieldNode.Position))
				continue
			}
			if t.Field(fieldNode.Name) != nil {
				b.addViolation(violationDuplicateField(t.Kind, fieldNode.Name, t.Name, fieldNode.Position))
				continue
			}
			t.Fields = append(t.Fields, b.buildField(fieldNode))
		}
	case TypeKindUnion:
		t.PossibleTypes = appendUnique(t.PossibleTypes, node.Types...)
	case TypeKindEnum:
		for _, value := range node.EnumValues {
			for _, existing := range t.EnumValues {
				if existing.Name == value.Name {
					b.addViolation(violationDuplicateEnumValue(value.Name, t.Name, value.Position))
				}
			}
			t.EnumValues = append(t.EnumValues, &EnumValue{Name: value.Name, Description: value.Description})
		}
	case TypeKindInputObject:
		for _, fieldNode := range node.Fields {
			for _, existing := range t.InputFields {
				if existing.Name == fieldNode.Name {
					b.addViolation(violationDuplicateField(t.Kind, fieldNode.Name, t.Name, fieldNode.Position))
				}
			}
			t.InputFields = append(t.InputFields, &InputValue{
				Name:         fieldNode.Name,
				Description:  fieldNode.Description,
				Type:         buildTypeRef(fieldNode.Type),
				DefaultValue: b.defaultValue(fieldNode.DefaultValue),
			})
		}
	case TypeKindScalar:
		// NOOP
	}
}

func (b *builder) buildField(node *language.FieldDefinition) *Field {
	f := &Field{
		Name:        node.Name,
		Description: node.Description,
		Type:        buildTypeRef(node.Type),
	}
	for _, arg := range node.Arguments {
		if strings.HasPrefix(arg.Name, "__") {
			b.addViolation(violationReservedFieldPrefix("Argument", arg.Name, arg.Position))
			continue
		}
		f.Arguments = append(f.Arguments, &InputValue{
			Name:         arg.Name,
			Description:  arg.Description,
			Type:         buildTypeRef(arg.Type),
			DefaultValue: b.defaultValue(arg.DefaultValue),
		})
	}
	return f
}

func (b *builder) defaultValue(v *language.Value) any {
	if v == nil {
		return nil
	}
	val, err := v.Value(nil)
	if err != nil {
		b.addViolation(violationWithPosition(err.Error(), v.Position))
		return nil
	}
	return val
}

func (b *builder) populateRootTypes() {
	explicit := false
	for _, doc := range b.docs {
		defs := append(append(language.SchemaDefinitionList{}, doc.Schema...), doc.SchemaExtension...)
		for _, def := range defs {
			if def.Description != "" {
				b.schema.Description = def.Description
			}
			for _, op := range def.OperationTypes {
				explicit = true
				if _, ok := b.schema.Types[op.Type]; !ok {
					b.addViolation(violationUnknownRootType(op.Operation, op.Type, op.Position))
					continue
				}
				switch op.Operation {
				case language.Query:
					b.schema.QueryType = op.Type
				case language.Mutation:
					b.schema.MutationType = op.Type
				case language.Subscription:
					b.schema.SubscriptionType = op.Type
				}
			}
		}
	}
	if explicit {
		return
	}
	// Without a schema block the conventional root names apply.
	if _, ok := b.schema.Types["Query"]; ok {
		b.schema.QueryType = "Query"
	}
	if _, ok := b.schema.Types["Mutation"]; ok {
		b.schema.MutationType = "Mutation"
	}
	if _, ok := b.schema.Types["Subscription"]; ok {
		b.schema.SubscriptionType = "Subscription"
	}
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(buildTypeRef(&language.Type{NamedType: t.NamedType, Elem: t.Elem, Position: t.Position}))
	}
	if t.Elem != nil {
		return ListType(buildTypeRef(t.Elem))
	}
	return NamedType(t.NamedType)
}

// BuildTypeRef converts a parsed type expression (as found on variable
// definitions) into a TypeRef.
func BuildTypeRef(t *language.Type) *TypeRef { return buildTypeRef(t) }

func kindOf(kind language.DefinitionKind) TypeKind {
	switch kind {
	case language.Object:
		return TypeKindObject
	case language.Interface:
		return TypeKindInterface
	case language.Union:
		return TypeKindUnion
	case language.Enum:
		return TypeKindEnum
	case language.InputObject:
		return TypeKindInputObject
	case language.Scalar:
		return TypeKindScalar
	}
	panic("unreachable")
}

func appendUnique(list []string, names ...string) []string {
	for _, name := range names {
		found := false
		for _, existing := range list {
			if existing == name {
				found = true
				break
			}
		}
		if !found {
			list = append(list, name)
		}
	}
	return list
}
