// Package source finds and parses the schema and document files of a run.
package source

import (
	"context"
)

// Kind classifies a discovered file.
type Kind string

const (
	// KindSchema is SDL text.
	KindSchema Kind = "schema"
	// KindIntrospection is an introspection query result in JSON.
	KindIntrospection Kind = "introspection"
	// KindDocument is an executable document (operations and fragments).
	KindDocument Kind = "document"
)

// File is a discovered input.
type File struct {
	Path string
	Kind Kind
}

// Discovery lists and reads input files. List returns files sorted by path
// within each kind, schema files first.
type Discovery interface {
	List(ctx context.Context) ([]File, error)
	Read(ctx context.Context, path string) (string, error)
}

func kindRank(k Kind) int {
	switch k {
	case KindSchema, KindIntrospection:
		return 0
	}
	return 1
}
