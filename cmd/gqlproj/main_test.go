package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"
)

const testSchema = `
type Query { node(id: ID!): Node, me: User }
interface Node { id: ID! }
type User implements Node { id: ID!, name: String }
type Admin implements Node { id: ID!, canImpersonate: Boolean! }
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestHelp(t *testing.T) {
	out, _, err := execute(t, "help")
	require.NoError(t, err)
	require.Contains(t, out, "COMMANDS:")

	out, _, err = execute(t, "help", "project")
	require.NoError(t, err)
	require.Contains(t, out, "project FLAGS")
	require.Contains(t, out, "-strict")

	_, _, err = execute(t, "help", "serve")
	require.ErrorContains(t, err, `unknown help topic "serve"`)
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, err := execute(t)
	require.EqualError(t, err, "missing command")
	require.Contains(t, stderr, "USAGE:")

	_, _, err = execute(t, "serve")
	require.EqualError(t, err, `unknown command "serve"`)

	_, stderr, err = execute(t, "project", "-nope")
	require.Error(t, err)
	require.Contains(t, stderr, "project FLAGS")
}

func TestProject(t *testing.T) {
	root := writeProject(t, map[string]string{
		"schema.graphqls":        testSchema,
		"documents/me.graphql":   `query Me { me { id ...Name } } fragment Name on User { name }`,
		"documents/node.graphql": `query Node($id: ID!) { node(id: $id) { id } }`,
		"documents/broken.gql":   `query Broken { me { missing } }`,
		"documents/ignored.txt":  `not a document`,
	})

	out, stderr, err := execute(t, "project", "-root", root, "-naming", "pascal-case", "-log.format", "json")
	require.NoError(t, err)

	var res struct {
		Operations []struct {
			TypeName string `json:"typeName"`
		} `json:"operations"`
		Fragments []struct {
			TypeName string `json:"typeName"`
		} `json:"fragments"`
		Diagnostics []struct {
			Document string `json:"document"`
			Source   string `json:"source"`
		} `json:"diagnostics"`
	}
	require.NoError(t, jsoniter.Unmarshal([]byte(out), &res))

	var ops []string
	for _, op := range res.Operations {
		ops = append(ops, op.TypeName)
	}
	require.Equal(t, []string{"MeQuery", "NodeQuery"}, ops)
	require.Len(t, res.Fragments, 1)
	require.Equal(t, "NameFragment", res.Fragments[0].TypeName)
	require.Len(t, res.Diagnostics, 1)
	require.Equal(t, "Broken", res.Diagnostics[0].Document)
	require.Equal(t, "documents/broken.gql", res.Diagnostics[0].Source)

	require.Contains(t, stderr, `"msg":"Document skipped."`)
	require.Contains(t, stderr, `"document":"Broken"`)
}

func TestProject_Strict(t *testing.T) {
	root := writeProject(t, map[string]string{
		"schema.graphqls": testSchema,
		"broken.graphql":  `query Broken { me { missing } }`,
	})

	out, _, err := execute(t, "project", "-root", root, "-strict", "-log.level", "error")
	require.EqualError(t, err, "1 document(s) failed to project")
	require.Contains(t, out, `"diagnostics"`)
}

func TestProject_ConfigFile(t *testing.T) {
	root := writeProject(t, map[string]string{
		"api/schema.graphql": testSchema,
		"ops/me.graphql":     `query Me { me { id } }`,
		"gqlproj.hcl": `
			schema    = ["api/*.graphql"]
			documents = ["ops/**/*.graphql"]
			type_prefix = "Gql"
			skip_typename = true
		`,
	})

	out, _, err := execute(t, "project",
		"-root", root,
		"-config", filepath.Join(root, "gqlproj.hcl"),
		"-type.suffix", "Type",
	)
	require.NoError(t, err)
	require.Contains(t, out, `"typeName": "GqlMeQueryType"`)
	require.NotContains(t, out, `"__typename"`)
}

func TestProject_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		args  []string
		want  string
	}{
		{
			name:  "no schema",
			files: map[string]string{"me.graphql": `query Me { me { id } }`},
			want:  "load schema: no schema files found",
		},
		{
			name:  "integrity",
			files: map[string]string{
				"schema.graphqls": `type Query { me: Missing }`,
			},
			want: "Missing",
		},
		{
			name:  "fragment cycle",
			files: map[string]string{
				"schema.graphqls": testSchema,
				"a.graphql":       `fragment A on User { ...B } fragment B on User { ...A }`,
			},
			want: "fragment spread cycle: A -> B -> A",
		},
		{
			name:  "invalid naming",
			files: map[string]string{"schema.graphqls": testSchema},
			args:  []string{"-naming", "kebab"},
			want:  `invalid config: unknown naming convention "kebab"`,
		},
		{
			name:  "invalid log level",
			files: map[string]string{"schema.graphqls": testSchema},
			args:  []string{"-log.level", "loud"},
			want:  `invalid -log.level "loud"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := writeProject(t, tt.files)
			args := append([]string{"project", "-root", root}, tt.args...)
			_, _, err := execute(t, args...)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestResolvers(t *testing.T) {
	root := writeProject(t, map[string]string{"schema.graphqls": testSchema})

	out, _, err := execute(t, "resolvers", "-root", root)
	require.NoError(t, err)

	var list []struct {
		Name          string   `json:"name"`
		Implementers  []string `json:"implementers"`
		RewriteFields []string `json:"rewriteFields"`
	}
	require.NoError(t, jsoniter.Unmarshal([]byte(out), &list))

	byName := map[string][]string{}
	for _, rs := range list {
		if rs.Name == "Node" {
			byName["implementers"] = rs.Implementers
		}
		if rs.Name == "Query" {
			byName["rewrite"] = rs.RewriteFields
		}
	}
	require.Equal(t, []string{"User", "Admin"}, byName["implementers"])
	require.Equal(t, []string{"node"}, byName["rewrite"])
}

func TestClosure(t *testing.T) {
	root := writeProject(t, map[string]string{
		"schema.graphqls": testSchema,
		"me.graphql":      `this is not parsed`,
	})

	out, _, err := execute(t, "closure", "-root", root)
	require.NoError(t, err)
	require.Contains(t, out, `"Node": [`)

	var closure struct {
		Implementers map[string][]string `json:"implementers"`
	}
	require.NoError(t, jsoniter.Unmarshal([]byte(out), &closure))
	require.Equal(t, map[string][]string{"Node": {"User", "Admin"}}, closure.Implementers)
}
