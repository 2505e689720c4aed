package analysis

import "github.com/luminsql/lumin/pkg/parser"

// View is a named inline subquery definition registered in a scope. The name
// is its immutable identity within one WITH clause; the statement is the
// exclusively owned body. Quoted records how the alias was written, which
// decides the normalization used for comparisons.
type View struct {
	Name   string
	Quoted bool
	Stmt   *parser.SelectStmt
}

// NewView creates a View from a parsed definition.
func NewView(cte *parser.CTE) *View {
	return &View{Name: cte.Name, Quoted: cte.Quoted, Stmt: cte.Select}
}
