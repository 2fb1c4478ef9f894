package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlproj/internal/config"
)

func TestConventions(t *testing.T) {
	for _, tc := range []struct {
		conv config.Convention
		in   string
		want string
	}{
		{config.Keep, "user_profile", "user_profile"},
		{config.PascalCase, "user_profile", "UserProfile"},
		{config.CamelCase, "user_profile", "userProfile"},
		{config.SnakeCase, "UserProfile", "user_profile"},
		{config.UpperCase, "User", "USER"},
		{config.LowerCase, "User", "user"},
		{config.Convention(""), "User", "User"},
	} {
		t.Run(string(tc.conv)+"/"+tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, tc.conv.Apply(tc.in))
		})
	}
}

func TestNames(t *testing.T) {
	cfg := config.Default()
	cfg.TypePrefix = "Gql"
	cfg.TypeSuffix = "Type"
	require.Equal(t, "GqlUserType", cfg.TypeName("User"))
	require.Equal(t, "GqlGetUserQueryType", cfg.DocumentTypeName("GetUser", "query"))
	require.Equal(t, "GqlUserFieldsFragmentType", cfg.DocumentTypeName("UserFields", "fragment"))
	require.Equal(t, "GqlAddMutationType", cfg.DocumentTypeName("Add", "mutation"))

	cfg = config.Default()
	cfg.NamingConvention = config.SnakeCase
	require.Equal(t, "first_name", cfg.FieldName("firstName"))
}

func TestValidate(t *testing.T) {
	require.NoError(t, config.Default().Validate())

	cfg := config.Default()
	cfg.NamingConvention = "kebab"
	cfg.Workers = -1
	cfg.TypeMappers["User"] = config.ExternalTypeRef{}
	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown naming convention "kebab"`)
	require.Contains(t, err.Error(), "workers must not be negative")
	require.Contains(t, err.Error(), `type mapper "User" has an empty type name`)
}

func TestParse(t *testing.T) {
	src := `
schema    = ["schema/*.graphql"]
documents = ["documents/**/*.graphql"]

naming_convention = "pascal-case"
type_prefix       = env.TYPE_PREFIX
skip_typename     = true
workers           = 4

operation_suffixes {
  fragment = "Fields"
}

mapper "User" {
  type   = "UserModel"
  source = "./models"
}

mapper "Post" {
  type = "PostRow"
}
`
	cfg, err := config.Parse([]byte(src), "gqlproj.hcl", []string{"TYPE_PREFIX=Api", "IGNORED"})
	require.NoError(t, err)

	want := config.Default()
	want.Schema = []string{"schema/*.graphql"}
	want.Documents = []string{"documents/**/*.graphql"}
	want.NamingConvention = config.PascalCase
	want.TypePrefix = "Api"
	want.SkipTypename = true
	want.Workers = 4
	want.OperationSuffixes.Fragment = "Fields"
	want.TypeMappers = map[string]config.ExternalTypeRef{
		"User": {Name: "UserModel", Source: "./models"},
		"Post": {Name: "PostRow"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `schema = [`, "failed to parse config"},
		{"unknown attribute", `colour = "red"`, "failed to decode config"},
		{"missing env", `type_prefix = env.NOPE`, "failed to decode config"},
		{"invalid convention", `naming_convention = "kebab"`, "invalid config"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.src), "bad.hcl", nil)
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gqlproj.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`non_optional_typename = true`), 0o644))
	cfg, err := config.LoadFile(path, nil)
	require.NoError(t, err)
	require.True(t, cfg.NonOptionalTypename)

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.hcl"), nil)
	require.ErrorContains(t, err, "read config")
}
