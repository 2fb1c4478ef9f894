package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot is the decoded form of a config file. Absent attributes keep the
// defaults.
type fileRoot struct {
	Schema              []string       `hcl:"schema,optional"`
	Documents           []string       `hcl:"documents,optional"`
	NamingConvention    *string        `hcl:"naming_convention,optional"`
	TypePrefix          *string        `hcl:"type_prefix,optional"`
	TypeSuffix          *string        `hcl:"type_suffix,optional"`
	SkipTypename        *bool          `hcl:"skip_typename,optional"`
	NonOptionalTypename *bool          `hcl:"non_optional_typename,optional"`
	AvoidRecursive      *bool          `hcl:"avoid_checking_abstract_types_recursively,optional"`
	Workers             *int           `hcl:"workers,optional"`
	Suffixes            *suffixesBlock `hcl:"operation_suffixes,block"`
	Mappers             []*mapperBlock `hcl:"mapper,block"`
}

type suffixesBlock struct {
	Query        *string `hcl:"query,optional"`
	Mutation     *string `hcl:"mutation,optional"`
	Subscription *string `hcl:"subscription,optional"`
	Fragment     *string `hcl:"fragment,optional"`
}

type mapperBlock struct {
	TypeName string `hcl:"name,label"`
	Type     string `hcl:"type"`
	Source   string `hcl:"source,optional"`
}

// LoadFile reads an HCL config file. Expressions may refer to environment
// variables through the env object, e.g. env.TYPE_PREFIX.
func LoadFile(path string, environ []string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(src, path, environ)
}

// Parse decodes an HCL config from src and validates the result.
func Parse(src []byte, filename string, environ []string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(environ), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config %s: %w", filename, diags)
	}

	cfg := root.apply(Default())
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

func evalContext(environ []string) *hcl.EvalContext {
	env := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

func (r *fileRoot) apply(cfg *Config) *Config {
	cfg.Schema = r.Schema
	cfg.Documents = r.Documents
	setString(&cfg.TypePrefix, r.TypePrefix)
	setString(&cfg.TypeSuffix, r.TypeSuffix)
	if r.NamingConvention != nil {
		cfg.NamingConvention = Convention(*r.NamingConvention)
	}
	setBool(&cfg.SkipTypename, r.SkipTypename)
	setBool(&cfg.NonOptionalTypename, r.NonOptionalTypename)
	setBool(&cfg.AvoidCheckingAbstractTypesRecursively, r.AvoidRecursive)
	if r.Workers != nil {
		cfg.Workers = *r.Workers
	}
	if s := r.Suffixes; s != nil {
		setString(&cfg.OperationSuffixes.Query, s.Query)
		setString(&cfg.OperationSuffixes.Mutation, s.Mutation)
		setString(&cfg.OperationSuffixes.Subscription, s.Subscription)
		setString(&cfg.OperationSuffixes.Fragment, s.Fragment)
	}
	for _, m := range r.Mappers {
		cfg.TypeMappers[m.TypeName] = ExternalTypeRef{Name: m.Type, Source: m.Source}
	}
	return cfg
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
