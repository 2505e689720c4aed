package analysis

import (
	"github.com/luminsql/lumin/pkg/catalog"
	"github.com/luminsql/lumin/pkg/parser"
)

// ResolvedKind identifies what a table reference resolved to.
type ResolvedKind int

// Resolution kinds.
const (
	// ResolvedTable means the reference bound to a catalog table.
	ResolvedTable ResolvedKind = iota
	// ResolvedView means the reference bound to a WITH-clause definition.
	ResolvedView
)

// Resolved describes the binding of one table reference. Resolutions live in
// the analyzer as a side table keyed by AST node, never in the AST itself, so
// cloned statements carry no trace of a prior analysis.
type Resolved struct {
	Kind  ResolvedKind
	View  *View          // set when Kind == ResolvedView
	Table *catalog.Table // set when Kind == ResolvedTable
}

// Resolution returns the recorded binding for a table reference, if any.
func (a *Analyzer) Resolution(ref *parser.TableName) (Resolved, bool) {
	r, ok := a.resolutions[ref]
	return r, ok
}

func (a *Analyzer) setResolution(ref *parser.TableName, r Resolved) {
	a.resolutions[ref] = r
}
