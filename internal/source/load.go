package source

import (
	"context"
	"errors"
	"fmt"

	introspection "github.com/hanpama/gqlproj/internal/introspection"
	language "github.com/hanpama/gqlproj/internal/language"
	schema "github.com/hanpama/gqlproj/internal/schema"
)

// LoadSchema parses every schema file of d into one schema. SDL files are
// merged (type extensions included); an introspection result must be the
// only schema input.
func LoadSchema(ctx context.Context, d Discovery) (*schema.Schema, error) {
	files, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	var (
		docs           []*language.SchemaDocument
		introspections []File
	)
	for _, f := range files {
		switch f.Kind {
		case KindSchema:
			src, err := d.Read(ctx, f.Path)
			if err != nil {
				return nil, err
			}
			doc, err := language.ParseSchema(f.Path, src)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		case KindIntrospection:
			introspections = append(introspections, f)
		}
	}

	switch {
	case len(introspections) > 1 || (len(introspections) == 1 && len(docs) > 0):
		return nil, errors.New("an introspection result cannot be combined with other schema files")
	case len(introspections) == 1:
		src, err := d.Read(ctx, introspections[0].Path)
		if err != nil {
			return nil, err
		}
		s, err := introspection.Load([]byte(src))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", introspections[0].Path, err)
		}
		return s, nil
	case len(docs) == 0:
		return nil, errors.New("no schema files found")
	}
	return schema.BuildFromDocuments(docs...)
}

// LoadDocuments parses every document file of d, in List order.
func LoadDocuments(ctx context.Context, d Discovery) ([]*language.QueryDocument, error) {
	files, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*language.QueryDocument
	for _, f := range files {
		if f.Kind != KindDocument {
			continue
		}
		src, err := d.Read(ctx, f.Path)
		if err != nil {
			return nil, err
		}
		doc, err := language.ParseQuery(f.Path, src)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}
