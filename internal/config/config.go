package config

import (
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// ExternalTypeRef names a caller supplied type that replaces the generated
// resolver parent shape of a schema type.
type ExternalTypeRef struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
}

// Suffixes are appended to emitted document type names by kind.
type Suffixes struct {
	Query        string
	Mutation     string
	Subscription string
	Fragment     string
}

// Config is the projection policy of one run. Components receive it by
// pointer and never modify it.
type Config struct {
	// Schema and Documents are file globs used by the command line tool.
	Schema    []string
	Documents []string

	NamingConvention    Convention
	TypePrefix          string
	TypeSuffix          string
	SkipTypename        bool
	NonOptionalTypename bool
	TypeMappers         map[string]ExternalTypeRef
	OperationSuffixes   Suffixes

	// AvoidCheckingAbstractTypesRecursively limits resolver field rewriting
	// to fields whose own type is abstract.
	AvoidCheckingAbstractTypesRecursively bool

	// Workers bounds parallel document projection. Zero means GOMAXPROCS.
	Workers int
}

// Default returns the default policy.
func Default() *Config {
	return &Config{
		NamingConvention: Keep,
		TypeMappers:      map[string]ExternalTypeRef{},
		OperationSuffixes: Suffixes{
			Query:        "Query",
			Mutation:     "Mutation",
			Subscription: "Subscription",
			Fragment:     "Fragment",
		},
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := conventions[c.NamingConvention]; !ok {
		errs = append(errs, fmt.Errorf("unknown naming convention %q (known: %s)",
			c.NamingConvention, strings.Join(ConventionNames(), ", ")))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	for _, name := range sortedKeys(c.TypeMappers) {
		if c.TypeMappers[name].Name == "" {
			errs = append(errs, fmt.Errorf("type mapper %q has an empty type name", name))
		}
	}
	return errors.Join(errs...)
}

// WorkerLimit returns the effective parallelism.
func (c *Config) WorkerLimit() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// TypeName returns the emitted name of a generated type.
func (c *Config) TypeName(name string) string {
	return c.TypePrefix + c.NamingConvention.Apply(name) + c.TypeSuffix
}

// FieldName returns the emitted name of a field.
func (c *Config) FieldName(name string) string {
	return c.NamingConvention.Apply(name)
}

// DocumentTypeName returns the emitted name of an operation or fragment of
// the given kind ("query", "mutation", "subscription" or "fragment").
func (c *Config) DocumentTypeName(name, kind string) string {
	var suffix string
	switch kind {
	case "query":
		suffix = c.OperationSuffixes.Query
	case "mutation":
		suffix = c.OperationSuffixes.Mutation
	case "subscription":
		suffix = c.OperationSuffixes.Subscription
	case "fragment":
		suffix = c.OperationSuffixes.Fragment
	}
	return c.TypePrefix + c.NamingConvention.Apply(name) + suffix + c.TypeSuffix
}

// Mapper returns the external type configured for name.
func (c *Config) Mapper(name string) (ExternalTypeRef, bool) {
	ref, ok := c.TypeMappers[name]
	return ref, ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
