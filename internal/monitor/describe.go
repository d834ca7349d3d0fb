package monitor

import (
	"fmt"
	"strings"

	"github.com/fenwick-labs/percolate/internal/querytree"
)

// Describe renders q as a compact human-readable expression for audit
// trails and logging, not for parsing back into a query.
func Describe(q querytree.Query) string {
	switch v := q.(type) {
	case *querytree.Term:
		return fmt.Sprintf("%s:%s", v.Field, v.Value)
	case *querytree.TermSet:
		parts := make([]string, len(v.Values))
		for i, val := range v.Values {
			parts[i] = fmt.Sprintf("%s:%s", v.Field, val)
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	case *querytree.Boolean:
		parts := make([]string, len(v.Clauses))
		for i, c := range v.Clauses {
			parts[i] = fmt.Sprintf("%s %s", c.Occur, Describe(c.Query))
		}
		return "(" + strings.Join(parts, " ") + ")"
	case *querytree.Boost:
		return fmt.Sprintf("boost(%s, %.2f)", Describe(v.Inner), v.Factor)
	case *querytree.DisjunctionMax:
		parts := make([]string, len(v.Disjuncts))
		for i, d := range v.Disjuncts {
			parts[i] = Describe(d)
		}
		return "dismax(" + strings.Join(parts, ", ") + ")"
	case *querytree.Opaque:
		return "opaque(...)"
	default:
		return fmt.Sprintf("%T", q)
	}
}
