package typegraph

import (
	"fmt"
	"strings"
)

// IntegrityProblem describes one dangling or ill-kinded reference.
type IntegrityProblem struct {
	Type      string `json:"type"`
	Field     string `json:"field,omitempty"`
	Reference string `json:"reference"`
	Reason    string `json:"reason"`
}

func (p IntegrityProblem) String() string {
	owner := p.Type
	if p.Field != "" {
		owner += "." + p.Field
	}
	return fmt.Sprintf("%s: %s %q", owner, p.Reason, p.Reference)
}

// SchemaIntegrityError is returned by New when the type table references
// types that are absent or of the wrong kind. Nothing can be projected
// against such a schema.
type SchemaIntegrityError struct {
	Problems []IntegrityProblem
}

func (e *SchemaIntegrityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema integrity: %d problem(s)", len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n- ")
		b.WriteString(p.String())
	}
	return b.String()
}
