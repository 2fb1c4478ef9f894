package config

import (
	"sort"
	"strings"

	"github.com/huandu/xstrings"
)

// Convention is a named naming convention.
type Convention string

const (
	Keep       Convention = "keep"
	CamelCase  Convention = "camel-case"
	PascalCase Convention = "pascal-case"
	SnakeCase  Convention = "snake-case"
	UpperCase  Convention = "upper-case"
	LowerCase  Convention = "lower-case"
)

var conventions = map[Convention]func(string) string{
	Keep:       func(s string) string { return s },
	CamelCase:  xstrings.ToCamelCase,
	PascalCase: xstrings.ToPascalCase,
	SnakeCase:  xstrings.ToSnakeCase,
	UpperCase:  strings.ToUpper,
	LowerCase:  strings.ToLower,
}

// Apply converts name. An empty or unknown convention keeps the name.
func (c Convention) Apply(name string) string {
	if fn, ok := conventions[c]; ok {
		return fn(name)
	}
	return name
}

// ConventionNames lists the known conventions.
func ConventionNames() []string {
	out := make([]string, 0, len(conventions))
	for c := range conventions {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}
