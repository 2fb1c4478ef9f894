package fragment_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlproj/internal/fragment"
	language "github.com/hanpama/gqlproj/internal/language"
)

func mustFragments(t *testing.T, src string) []*language.FragmentDefinition {
	t.Helper()
	doc, err := language.ParseQuery("fragments.graphql", src)
	require.NoError(t, err)
	return doc.Fragments
}

func names(defs []*language.FragmentDefinition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name
	}
	return out
}

func indexOf(list []string, name string) int {
	for i, n := range list {
		if n == name {
			return i
		}
	}
	return -1
}

func TestOrder_DependenciesFirst(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{
			name: "dependent declared first",
			src: `
				fragment F1 on User { ...F2 name }
				fragment F2 on User { id }
			`,
		},
		{
			name: "dependency declared first",
			src: `
				fragment F2 on User { id }
				fragment F1 on User { ...F2 name }
			`,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ordered, err := fragment.Order(mustFragments(t, tc.src))
			require.NoError(t, err)
			got := names(ordered)
			require.Len(t, got, 2)
			require.Less(t, indexOf(got, "F2"), indexOf(got, "F1"))
		})
	}
}

func TestOrder_Transitive(t *testing.T) {
	defs := mustFragments(t, `
		fragment A on User { ...B }
		fragment Lone on User { id }
		fragment B on User { friends { ...C } }
		fragment C on User { ... on User { ...D } }
		fragment D on User { id }
	`)
	ordered, err := fragment.Order(defs)
	require.NoError(t, err)
	got := names(ordered)
	require.ElementsMatch(t, []string{"A", "B", "C", "D", "Lone"}, got)
	require.Less(t, indexOf(got, "D"), indexOf(got, "C"))
	require.Less(t, indexOf(got, "C"), indexOf(got, "B"))
	require.Less(t, indexOf(got, "B"), indexOf(got, "A"))

	again, err := fragment.Order(defs)
	require.NoError(t, err)
	require.Equal(t, got, names(again))
}

func TestOrder_UnknownSpreadIgnored(t *testing.T) {
	ordered, err := fragment.Order(mustFragments(t, `fragment A on User { ...Missing id }`))
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, names(ordered))
}

func TestOrder_Cycles(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "self spread",
			src:  `fragment A on User { ...A }`,
			want: []string{"A", "A"},
		},
		{
			name: "two fragments",
			src: `
				fragment A on User { ...B }
				fragment B on User { ...A }
			`,
			want: []string{"A", "B", "A"},
		},
		{
			name: "three fragments behind a nested field",
			src: `
				fragment Root on User { id }
				fragment A on User { friends { ...B } }
				fragment B on User { ...C }
				fragment C on User { ... on User { ...A } }
			`,
			want: []string{"A", "B", "C", "A"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fragment.Order(mustFragments(t, tc.src))
			var cycle *fragment.CycleError
			require.True(t, errors.As(err, &cycle), "got %v", err)
			require.Equal(t, tc.want, cycle.Path)
		})
	}
}

func TestOrder_Duplicate(t *testing.T) {
	_, err := fragment.Order(mustFragments(t, `
		fragment A on User { id }
		fragment A on User { name }
	`))
	var dup *fragment.DuplicateError
	require.True(t, errors.As(err, &dup))
	require.Equal(t, "A", dup.Name)
}

func TestSpreads(t *testing.T) {
	doc, err := language.ParseQuery("q.graphql", `
		query { me { ...A friends { ...B ...A } ... on User { ...C } } }
	`)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, fragment.Spreads(doc.Operations[0].SelectionSet))
}
