package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/gqlproj/internal/language"
	schema "github.com/hanpama/gqlproj/internal/schema"
)

func fieldNames(t *schema.Type) []string {
	var out []string
	for _, f := range t.Fields {
		out = append(out, f.Name)
	}
	return out
}

func TestBuildFromSDL(t *testing.T) {
	s, err := schema.BuildFromSDL("schema.graphql", `
		"The root"
		type Query { user(id: ID!, limit: Int = 10): User }
		interface Node { id: ID! }
		type User implements Node { id: ID!, tags: [String!]! }
		union Result = User
		enum Role { ADMIN MEMBER }
		input Filter { role: Role = ADMIN }
		scalar Time
		scalar String

		extend type User implements Named { name: String }
		interface Named { name: String }
		extend union Result = Ghost
		type Ghost { id: ID! }
		extend enum Role { GUEST }
		extend input Filter { since: Time }
	`)
	require.NoError(t, err)

	require.Equal(t, "Query", s.QueryType)
	require.Empty(t, s.MutationType)
	require.Equal(t, "Query", s.RootType("query"))
	require.Empty(t, s.RootType("subscription"))

	want := []string{
		"String", "Int", "Float", "Boolean", "ID",
		"Query", "Node", "User", "Result", "Role", "Filter", "Time", "Named", "Ghost",
	}
	if diff := cmp.Diff(want, s.TypeOrder); diff != "" {
		t.Errorf("type order mismatch (-want +got):\n%s", diff)
	}

	user := s.Lookup("User")
	require.Equal(t, schema.TypeKindObject, user.Kind)
	require.Equal(t, []string{"Node", "Named"}, user.Interfaces)
	require.Equal(t, []string{"id", "tags", "name"}, fieldNames(user))
	require.Equal(t, "[String!]!", user.Field("tags").Type.String())
	require.True(t, user.Field("tags").Type.IsList())
	require.Equal(t, "String", user.Field("tags").Type.GetNamedType())

	query := s.GetQueryType()
	args := query.Field("user").Arguments
	require.Len(t, args, 2)
	require.Equal(t, "ID!", args[0].Type.String())
	require.Nil(t, args[0].DefaultValue)
	require.Equal(t, int64(10), args[1].DefaultValue)

	require.Equal(t, []string{"User", "Ghost"}, s.Lookup("Result").PossibleTypes)
	require.True(t, s.Lookup("Result").IsAbstract())
	require.True(t, s.Lookup("Node").IsComposite())
	require.False(t, s.Lookup("Time").IsComposite())

	var roles []string
	for _, v := range s.Lookup("Role").EnumValues {
		roles = append(roles, v.Name)
	}
	require.Equal(t, []string{"ADMIN", "MEMBER", "GUEST"}, roles)

	filter := s.Lookup("Filter")
	require.Len(t, filter.InputFields, 2)
	require.Equal(t, "ADMIN", filter.InputFields[0].DefaultValue)
	require.Equal(t, "since", filter.InputFields[1].Name)
}

func TestBuildFromDocuments_SchemaBlock(t *testing.T) {
	a, err := language.ParseSchema("a.graphql", `
		schema { query: RootQuery }
		type RootQuery { ok: Boolean }
	`)
	require.NoError(t, err)
	b, err := language.ParseSchema("b.graphql", `
		extend schema { mutation: RootMutation }
		type RootMutation { ok: Boolean }
		type Query { ignored: Boolean }
	`)
	require.NoError(t, err)

	s, err := schema.BuildFromDocuments(a, b)
	require.NoError(t, err)
	require.Equal(t, "RootQuery", s.QueryType)
	require.Equal(t, "RootMutation", s.MutationType)
	require.Empty(t, s.SubscriptionType)
	require.Equal(t, "RootMutation", s.GetMutationType().Name)
	require.Nil(t, s.GetSubscriptionType())
}

func TestBuildFromSDL_Violations(t *testing.T) {
	tests := []struct {
		name string
		sdl  string
		want []string
	}{
		{
			name: "duplicate type",
			sdl:  `type Query { a: Int } type Query { b: Int }`,
			want: []string{`Type "Query" is defined more than once`},
		},
		{
			name: "extension of unknown type",
			sdl:  `type Query { a: Int } extend type Missing { b: Int }`,
			want: []string{`definition "Missing" not found for extension`},
		},
		{
			name: "extension of another kind",
			sdl:  `type Query { a: Int } enum Role { A } extend type Role { b: Int }`,
			want: []string{`cannot extend ENUM "Role" as OBJECT`},
		},
		{
			name: "duplicate field",
			sdl:  `type Query { a: Int } extend type Query { a: String }`,
			want: []string{`Duplicate field "a" found in OBJECT "Query"`},
		},
		{
			name: "duplicate enum value",
			sdl:  `type Query { a: Int } enum Role { A } extend enum Role { A }`,
			want: []string{`Duplicate enum value "A" found in enum "Role"`},
		},
		{
			name: "reserved field prefix",
			sdl:  `type Query { __a: Int, b(__c: Int): Int }`,
			want: []string{
				`Field name "__a" cannot start with '__' (reserved prefix)`,
				`Argument name "__c" cannot start with '__' (reserved prefix)`,
			},
		},
		{
			name: "unknown root type",
			sdl:  `schema { query: Nope } type Query { a: Int }`,
			want: []string{`Root query type "Nope" is not defined`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.BuildFromSDL("schema.graphql", tt.sdl)
			require.Error(t, err)

			var verr schema.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr, len(tt.want))
			for i, msg := range tt.want {
				require.Equal(t, msg, verr[i].Message)
				require.Equal(t, "schema.graphql", verr[i].File)
				require.Positive(t, verr[i].Line)
			}
			require.Contains(t, err.Error(), "violations found:")
		})
	}
}

func TestBuildFromSDL_ParseError(t *testing.T) {
	_, err := schema.BuildFromSDL("broken.graphql", `type Query {`)
	require.ErrorContains(t, err, "parse schema broken.graphql")
}

func TestNewSchema(t *testing.T) {
	s := schema.NewSchema()
	require.Equal(t, []string{"String", "Int", "Float", "Boolean", "ID"}, s.TypeOrder)
	for _, name := range s.TypeOrder {
		require.True(t, schema.IsBuiltinScalar(name))
	}
	require.False(t, schema.IsBuiltinScalar("Time"))

	s.AddType(&schema.Type{Name: "Query", Kind: schema.TypeKindObject})
	s.AddType(&schema.Type{Name: "Query", Kind: schema.TypeKindObject, Description: "replaced"})
	require.Len(t, s.OrderedTypes(), 6)
	require.Equal(t, "replaced", s.Lookup("Query").Description)
}
