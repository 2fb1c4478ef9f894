// Package introspection loads a schema from the JSON result of a standard
// introspection query.
package introspection

import (
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	schema "github.com/hanpama/gqlproj/internal/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// document accepts both a full response ({"data":{"__schema":...}}) and a
// bare {"__schema":...} object.
type document struct {
	Data *struct {
		Schema *schemaJSON `json:"__schema"`
	} `json:"data"`
	Schema *schemaJSON `json:"__schema"`
}

type schemaJSON struct {
	Description      *string    `json:"description"`
	QueryType        *typeRef   `json:"queryType"`
	MutationType     *typeRef   `json:"mutationType"`
	SubscriptionType *typeRef   `json:"subscriptionType"`
	Types            []fullType `json:"types"`
}

type fullType struct {
	Kind          string       `json:"kind"`
	Name          string       `json:"name"`
	Description   *string      `json:"description"`
	Fields        []field      `json:"fields"`
	InputFields   []inputValue `json:"inputFields"`
	Interfaces    []typeRef    `json:"interfaces"`
	EnumValues    []enumValue  `json:"enumValues"`
	PossibleTypes []typeRef    `json:"possibleTypes"`
}

type field struct {
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Args        []inputValue `json:"args"`
	Type        typeRef      `json:"type"`
}

type inputValue struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Type         typeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

type typeRef struct {
	Kind   string   `json:"kind"`
	Name   *string  `json:"name"`
	OfType *typeRef `json:"ofType"`
}

type enumValue struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Load converts an introspection result into a schema. Introspection meta
// types (names starting with "__") are skipped. Default values are kept as
// their GraphQL literal text.
func Load(data []byte) (*schema.Schema, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode introspection: %w", err)
	}
	raw := doc.Schema
	if raw == nil && doc.Data != nil {
		raw = doc.Data.Schema
	}
	if raw == nil {
		return nil, errors.New("decode introspection: no __schema object")
	}

	s := schema.NewSchema()
	s.Description = deref(raw.Description)
	s.QueryType = rootName(raw.QueryType)
	s.MutationType = rootName(raw.MutationType)
	s.SubscriptionType = rootName(raw.SubscriptionType)

	for _, ft := range raw.Types {
		if strings.HasPrefix(ft.Name, "__") {
			continue
		}
		t, err := convertType(ft)
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	return s, nil
}

func convertType(ft fullType) (*schema.Type, error) {
	if ft.Name == "" {
		return nil, fmt.Errorf("type of kind %s has no name", ft.Kind)
	}
	t := &schema.Type{
		Name:        ft.Name,
		Kind:        schema.TypeKind(ft.Kind),
		Description: deref(ft.Description),
	}
	switch t.Kind {
	case schema.TypeKindScalar:
	case schema.TypeKindObject, schema.TypeKindInterface:
		for _, f := range ft.Fields {
			ref, err := convertRef(f.Type)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", ft.Name, f.Name, err)
			}
			out := &schema.Field{Name: f.Name, Description: deref(f.Description), Type: ref}
			for _, a := range f.Args {
				arg, err := convertInput(a)
				if err != nil {
					return nil, fmt.Errorf("%s.%s(%s): %w", ft.Name, f.Name, a.Name, err)
				}
				out.Arguments = append(out.Arguments, arg)
			}
			t.Fields = append(t.Fields, out)
		}
		for _, i := range ft.Interfaces {
			t.Interfaces = append(t.Interfaces, deref(i.Name))
		}
	case schema.TypeKindUnion:
		for _, m := range ft.PossibleTypes {
			t.PossibleTypes = append(t.PossibleTypes, deref(m.Name))
		}
	case schema.TypeKindEnum:
		for _, v := range ft.EnumValues {
			t.EnumValues = append(t.EnumValues, &schema.EnumValue{Name: v.Name, Description: deref(v.Description)})
		}
	case schema.TypeKindInputObject:
		for _, f := range ft.InputFields {
			in, err := convertInput(f)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", ft.Name, f.Name, err)
			}
			t.InputFields = append(t.InputFields, in)
		}
	default:
		return nil, fmt.Errorf("type %s has unknown kind %q", ft.Name, ft.Kind)
	}
	return t, nil
}

func convertInput(v inputValue) (*schema.InputValue, error) {
	ref, err := convertRef(v.Type)
	if err != nil {
		return nil, err
	}
	in := &schema.InputValue{Name: v.Name, Description: deref(v.Description), Type: ref}
	if v.DefaultValue != nil {
		in.DefaultValue = *v.DefaultValue
	}
	return in, nil
}

func convertRef(r typeRef) (*schema.TypeRef, error) {
	switch r.Kind {
	case "LIST", "NON_NULL":
		if r.OfType == nil {
			return nil, fmt.Errorf("%s type reference without ofType", r.Kind)
		}
		inner, err := convertRef(*r.OfType)
		if err != nil {
			return nil, err
		}
		if r.Kind == "LIST" {
			return schema.ListType(inner), nil
		}
		if inner.IsNonNull() {
			return nil, errors.New("non-null type reference wraps another non-null")
		}
		return schema.NonNullType(inner), nil
	}
	if r.Name == nil || *r.Name == "" {
		return nil, fmt.Errorf("%s type reference without name", r.Kind)
	}
	return schema.NamedType(*r.Name), nil
}

func rootName(r *typeRef) string {
	if r == nil {
		return ""
	}
	return deref(r.Name)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
