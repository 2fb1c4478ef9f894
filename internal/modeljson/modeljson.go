// Package modeljson serializes projection results as JSON, keeping the
// field and branch order of the model.
package modeljson

import (
	"io"
	"sort"

	jsoniter "github.com/json-iterator/go"

	engine "github.com/hanpama/gqlproj/internal/engine"
	projector "github.com/hanpama/gqlproj/internal/projector"
	resolvers "github.com/hanpama/gqlproj/internal/resolvers"
	shape "github.com/hanpama/gqlproj/internal/shape"
	typegraph "github.com/hanpama/gqlproj/internal/typegraph"
)

var api = jsoniter.Config{IndentionStep: 2, EscapeHTML: false}.Froze()

// WriteResult writes the documents, fragments, resolver map and
// diagnostics of res.
func WriteResult(w io.Writer, res *engine.Result) error {
	return write(w, func(s *jsoniter.Stream) {
		s.WriteObjectStart()
		s.WriteObjectField("operations")
		writeOperations(s, res.Operations)
		s.WriteMore()
		s.WriteObjectField("fragments")
		writeFragments(s, res.Fragments)
		s.WriteMore()
		s.WriteObjectField("resolvers")
		writeResolvers(s, res.Resolvers)
		s.WriteMore()
		s.WriteObjectField("diagnostics")
		writeDiagnostics(s, res.Diagnostics)
		s.WriteObjectEnd()
	})
}

// WriteResolvers writes a resolver map.
func WriteResolvers(w io.Writer, m *resolvers.Map) error {
	return write(w, func(s *jsoniter.Stream) { writeResolvers(s, m) })
}

// WriteClosure writes a closure result with sorted keys.
func WriteClosure(w io.Writer, c *typegraph.ClosureResult) error {
	return write(w, func(s *jsoniter.Stream) {
		s.WriteObjectStart()
		s.WriteObjectField("implementers")
		writeMap(s, sortedKeys(c.Implementers), func(name string) {
			writeStrings(s, c.Implementers[name])
		})
		s.WriteMore()
		s.WriteObjectField("composites")
		writeMap(s, sortedKeys(c.Composites), func(name string) {
			cc := c.Composites[name]
			s.WriteObjectStart()
			s.WriteObjectField("abstract")
			s.WriteBool(cc.Abstract)
			s.WriteMore()
			s.WriteObjectField("abstractFields")
			writeStrings(s, cc.AbstractFields)
			s.WriteMore()
			s.WriteObjectField("rewriteFields")
			writeStrings(s, cc.RewriteFields)
			s.WriteObjectEnd()
		})
		s.WriteObjectEnd()
	})
}

func write(w io.Writer, body func(*jsoniter.Stream)) error {
	s := jsoniter.NewStream(api, w, 4096)
	body(s)
	s.WriteRaw("\n")
	if s.Error != nil {
		return s.Error
	}
	return s.Flush()
}

func writeOperations(s *jsoniter.Stream, ops []*projector.Operation) {
	writeArray(s, len(ops), func(i int) {
		op := ops[i]
		s.WriteObjectStart()
		field(s, "name", op.Name)
		s.WriteMore()
		field(s, "typeName", op.TypeName)
		s.WriteMore()
		field(s, "kind", op.Kind)
		s.WriteMore()
		field(s, "rootType", op.RootType)
		s.WriteMore()
		field(s, "source", op.Source)
		s.WriteMore()
		s.WriteObjectField("fragments")
		writeStrings(s, op.Fragments)
		s.WriteMore()
		s.WriteObjectField("shape")
		writeShape(s, op.Shape)
		s.WriteMore()
		s.WriteObjectField("variables")
		writeShape(s, op.Variables)
		s.WriteObjectEnd()
	})
}

func writeFragments(s *jsoniter.Stream, frags []*projector.Fragment) {
	writeArray(s, len(frags), func(i int) {
		f := frags[i]
		s.WriteObjectStart()
		field(s, "name", f.Name)
		s.WriteMore()
		field(s, "typeName", f.TypeName)
		s.WriteMore()
		field(s, "onType", f.OnType)
		s.WriteMore()
		field(s, "source", f.Source)
		s.WriteMore()
		s.WriteObjectField("fragments")
		writeStrings(s, f.Fragments)
		s.WriteMore()
		s.WriteObjectField("shape")
		writeShape(s, f.Shape)
		s.WriteObjectEnd()
	})
}

func writeResolvers(s *jsoniter.Stream, m *resolvers.Map) {
	var list []*resolvers.ResolverShape
	if m != nil {
		list = m.List()
	}
	writeArray(s, len(list), func(i int) {
		rs := list[i]
		s.WriteObjectStart()
		field(s, "name", rs.Name)
		s.WriteMore()
		field(s, "typeName", rs.TypeName)
		s.WriteMore()
		field(s, "kind", string(rs.Kind))
		if rs.Implementers != nil {
			s.WriteMore()
			s.WriteObjectField("implementers")
			writeStrings(s, rs.Implementers)
		}
		if len(rs.RewriteFields) > 0 {
			s.WriteMore()
			s.WriteObjectField("rewriteFields")
			writeStrings(s, rs.RewriteFields)
		}
		s.WriteMore()
		s.WriteObjectField("shape")
		writeShape(s, rs.Shape)
		s.WriteObjectEnd()
	})
}

func writeDiagnostics(s *jsoniter.Stream, diags []*engine.Diagnostic) {
	writeArray(s, len(diags), func(i int) {
		d := diags[i]
		s.WriteObjectStart()
		field(s, "document", d.Document)
		s.WriteMore()
		field(s, "kind", d.Kind)
		s.WriteMore()
		field(s, "source", d.Source)
		s.WriteMore()
		field(s, "message", d.Err.Error())
		s.WriteObjectEnd()
	})
}

func writeShape(s *jsoniter.Stream, sh shape.Shape) {
	switch sh := sh.(type) {
	case nil:
		s.WriteNil()
	case *shape.Object:
		writeObject(s, sh)
	case *shape.Union:
		s.WriteObjectStart()
		field(s, "kind", "union")
		s.WriteMore()
		field(s, "abstract", sh.Abstract)
		s.WriteMore()
		s.WriteObjectField("branches")
		writeArray(s, len(sh.Branches), func(i int) { writeObject(s, sh.Branches[i]) })
		s.WriteObjectEnd()
	case *shape.List:
		wrapper(s, "list", sh.Of)
	case *shape.NonNull:
		wrapper(s, "nonNull", sh.Of)
	case *shape.Scalar:
		leaf(s, "scalar", sh.Name)
	case *shape.Enum:
		leaf(s, "enum", sh.Name)
	case *shape.Input:
		leaf(s, "input", sh.Name)
	case *shape.Typename:
		leaf(s, "typename", sh.Name)
	case *shape.Named:
		leaf(s, "named", sh.Name)
	case *shape.ResolverRef:
		leaf(s, "resolverRef", sh.Name)
	case *shape.External:
		s.WriteObjectStart()
		field(s, "kind", "external")
		s.WriteMore()
		field(s, "name", sh.Name)
		s.WriteMore()
		field(s, "source", sh.Source)
		s.WriteObjectEnd()
	case *shape.OneOf:
		s.WriteObjectStart()
		field(s, "kind", "oneOf")
		s.WriteMore()
		field(s, "abstract", sh.Abstract)
		s.WriteMore()
		s.WriteObjectField("options")
		writeArray(s, len(sh.Options), func(i int) { writeShape(s, sh.Options[i]) })
		s.WriteObjectEnd()
	}
}

func writeObject(s *jsoniter.Stream, o *shape.Object) {
	s.WriteObjectStart()
	field(s, "kind", "object")
	s.WriteMore()
	field(s, "typeName", o.TypeName)
	if len(o.Spreads) > 0 {
		s.WriteMore()
		s.WriteObjectField("spreads")
		writeStrings(s, o.Spreads)
	}
	s.WriteMore()
	s.WriteObjectField("fields")
	writeArray(s, len(o.Fields), func(i int) {
		f := o.Fields[i]
		s.WriteObjectStart()
		field(s, "name", f.Name)
		if f.Optional {
			s.WriteMore()
			s.WriteObjectField("optional")
			s.WriteTrue()
		}
		s.WriteMore()
		s.WriteObjectField("type")
		writeShape(s, f.Type)
		s.WriteObjectEnd()
	})
	s.WriteObjectEnd()
}

func wrapper(s *jsoniter.Stream, kind string, of shape.Shape) {
	s.WriteObjectStart()
	field(s, "kind", kind)
	s.WriteMore()
	s.WriteObjectField("of")
	writeShape(s, of)
	s.WriteObjectEnd()
}

func leaf(s *jsoniter.Stream, kind, name string) {
	s.WriteObjectStart()
	field(s, "kind", kind)
	s.WriteMore()
	field(s, "name", name)
	s.WriteObjectEnd()
}

func field(s *jsoniter.Stream, name, value string) {
	s.WriteObjectField(name)
	s.WriteString(value)
}

func writeStrings(s *jsoniter.Stream, list []string) {
	writeArray(s, len(list), func(i int) { s.WriteString(list[i]) })
}

// writeArray writes n elements, keeping empty lists on one line.
func writeArray(s *jsoniter.Stream, n int, item func(i int)) {
	if n == 0 {
		s.WriteEmptyArray()
		return
	}
	s.WriteArrayStart()
	for i := 0; i < n; i++ {
		if i > 0 {
			s.WriteMore()
		}
		item(i)
	}
	s.WriteArrayEnd()
}

func writeMap(s *jsoniter.Stream, keys []string, value func(key string)) {
	if len(keys) == 0 {
		s.WriteEmptyObject()
		return
	}
	s.WriteObjectStart()
	for i, k := range keys {
		if i > 0 {
			s.WriteMore()
		}
		s.WriteObjectField(k)
		value(k)
	}
	s.WriteObjectEnd()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
