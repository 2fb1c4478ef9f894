package shape

import (
	"strconv"
	"strings"
)

// String renders s in a compact, deterministic notation used in error
// messages and tests, for example
//
//	User{__typename?: "User"!, id: ID!, friends: [User{id: ID!}!]}
func String(s Shape) string {
	var b strings.Builder
	write(&b, s)
	return b.String()
}

func write(b *strings.Builder, s Shape) {
	switch s := s.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Object:
		writeObject(b, s)
	case *Union:
		if len(s.Branches) == 0 {
			b.WriteString("never")
			return
		}
		b.WriteByte('(')
		for i, br := range s.Branches {
			if i > 0 {
				b.WriteString(" | ")
			}
			writeObject(b, br)
		}
		b.WriteByte(')')
	case *List:
		b.WriteByte('[')
		write(b, s.Of)
		b.WriteByte(']')
	case *NonNull:
		write(b, s.Of)
		b.WriteByte('!')
	case *Scalar:
		b.WriteString(s.Name)
	case *Enum:
		b.WriteString(s.Name)
	case *Input:
		b.WriteString(s.Name)
	case *Typename:
		b.WriteString(strconv.Quote(s.Name))
	case *Named:
		b.WriteString(s.Name)
	case *ResolverRef:
		b.WriteString("ResolversTypes[")
		b.WriteString(strconv.Quote(s.Name))
		b.WriteByte(']')
	case *External:
		b.WriteString(s.Name)
		if s.Source != "" {
			b.WriteString(" from ")
			b.WriteString(strconv.Quote(s.Source))
		}
	case *OneOf:
		if len(s.Options) == 0 {
			b.WriteString("never")
			return
		}
		b.WriteByte('(')
		for i, o := range s.Options {
			if i > 0 {
				b.WriteString(" | ")
			}
			write(b, o)
		}
		b.WriteByte(')')
	}
}

func writeObject(b *strings.Builder, o *Object) {
	b.WriteString(o.TypeName)
	b.WriteByte('{')
	for i, f := range o.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		if f.Optional {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		write(b, f.Type)
	}
	b.WriteByte('}')
}
