package parser

import (
	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/luminsql/lumin/pkg/token"
)

// Expr represents an expression in SQL.
type Expr interface {
	exprNode()
	ToSQL(d *dialect.Dialect) string
	CloneExpr() Expr
}

// TableRef represents a table reference in a FROM clause.
type TableRef interface {
	tableRefNode()
	ToSQL(d *dialect.Dialect) string
	CloneRef() TableRef
}

// NodeInfo provides common fields for AST nodes that track positions.
type NodeInfo struct {
	Span token.Span
}

// GetSpan returns the node's source span.
func (n *NodeInfo) GetSpan() token.Span {
	return n.Span
}

// ---------- Statement Types ----------

// SelectStmt represents a complete SELECT statement with optional WITH clause.
type SelectStmt struct {
	NodeInfo
	Explain bool
	With    *WithClause
	Body    *SelectBody
}

// WithClause represents a WITH clause: an ordered, non-empty list of named
// inline subquery definitions. Declaration order is both the visibility order
// (definition i may reference definitions 0..i-1) and the serialization order.
type WithClause struct {
	NodeInfo
	Recursive bool
	CTEs      []*CTE
}

// CTE is one named definition inside a WITH clause. Name is the immutable
// alias; Select is the exclusively owned subquery body. Quoted records
// whether the alias appeared quoted in the source, which decides the
// normalization applied when aliases are compared.
type CTE struct {
	NodeInfo
	Name   string
	Quoted bool
	Select *SelectStmt
}

// SelectBody represents the body of a SELECT with possible set operations.
type SelectBody struct {
	NodeInfo
	Left  *SelectCore
	Op    SetOpType   // UNION, INTERSECT, EXCEPT, or empty
	All   bool        // UNION ALL
	Right *SelectBody // For chained set operations
}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpType constants for set operations in queries.
const (
	SetOpNone      SetOpType = ""
	SetOpUnion     SetOpType = "UNION"
	SetOpIntersect SetOpType = "INTERSECT"
	SetOpExcept    SetOpType = "EXCEPT"
)

// SelectCore represents the core SELECT clause.
type SelectCore struct {
	NodeInfo
	Distinct bool
	Columns  []SelectItem
	From     *FromClause
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []OrderByItem
	Limit    Expr
	Offset   Expr
}

// SelectItem represents one item in the SELECT list.
type SelectItem struct {
	Expr      Expr
	Alias     string
	Star      bool   // SELECT * or SELECT t.*
	StarTable string // qualifier for t.*
}

// OrderByItem represents one ORDER BY expression.
type OrderByItem struct {
	Expr Expr
	Desc bool
}

// FromClause represents a FROM clause with joins.
type FromClause struct {
	NodeInfo
	Source TableRef
	Joins  []*Join
}

// JoinType identifies the join kind.
type JoinType string

// Join kinds.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
)

// Join represents a join to another table reference.
type Join struct {
	Type      JoinType
	Right     TableRef
	Condition Expr     // ON expr
	Using     []string // USING (cols)
}

// TableName is a (possibly qualified) named table reference.
type TableName struct {
	NodeInfo
	Catalog string
	Schema  string
	Name    string
	Quoted  bool // Name appeared quoted in the source
	Alias   string
}

func (*TableName) tableRefNode() {}

// FullName returns the dotted, unquoted form of the reference.
func (t *TableName) FullName() string {
	s := t.Name
	if t.Schema != "" {
		s = t.Schema + "." + s
	}
	if t.Catalog != "" {
		s = t.Catalog + "." + s
	}
	return s
}

// EffectiveAlias returns the name the reference is known by in its scope.
func (t *TableName) EffectiveAlias() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.Name
}

// DerivedTable is a parenthesized subquery in a FROM clause.
type DerivedTable struct {
	NodeInfo
	Select *SelectStmt
	Alias  string
}

func (*DerivedTable) tableRefNode() {}

// ---------- Expression Types ----------

// ColumnRef is a (possibly qualified) column reference.
type ColumnRef struct {
	Table  string
	Column string
	Quoted bool
}

// LiteralKind distinguishes literal value types.
type LiteralKind int

// Literal kinds.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal is a constant value.
type Literal struct {
	Kind  LiteralKind
	Value string
}

// BinaryExpr is a two-operand expression. Op holds the SQL spelling of the
// operator (=, <>, AND, LIKE, NOT LIKE, ...).
type BinaryExpr struct {
	Left  Expr
	Op    string
	Right Expr
}

// UnaryExpr is a prefix operator expression (NOT x, -x).
type UnaryExpr struct {
	Op   string
	Expr Expr
}

// FuncCall is a function invocation.
type FuncCall struct {
	Name     string
	Distinct bool
	Star     bool // COUNT(*)
	Args     []Expr
}

// CaseExpr is a CASE [operand] WHEN ... END expression.
type CaseExpr struct {
	Operand Expr // nil for searched CASE
	Whens   []WhenClause
	Else    Expr
}

// WhenClause is one WHEN cond THEN result arm of a CASE.
type WhenClause struct {
	Cond   Expr
	Result Expr
}

// CastExpr is CAST(expr AS type).
type CastExpr struct {
	Expr Expr
	Type string
}

// InExpr is expr [NOT] IN (list | subquery).
type InExpr struct {
	Expr     Expr
	Not      bool
	List     []Expr
	Subquery *SelectStmt // non-nil for IN (SELECT ...)
}

// ExistsExpr is [NOT] EXISTS (subquery).
type ExistsExpr struct {
	Not      bool
	Subquery *SelectStmt
}

// BetweenExpr is expr [NOT] BETWEEN lo AND hi.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Lo   Expr
	Hi   Expr
}

// IsNullExpr is expr IS [NOT] NULL.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

// SubqueryExpr is a scalar subquery in an expression position.
type SubqueryExpr struct {
	Select *SelectStmt
}

// ParenExpr preserves explicit parentheses for serialization.
type ParenExpr struct {
	Expr Expr
}

func (*ColumnRef) exprNode()    {}
func (*Literal) exprNode()      {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*FuncCall) exprNode()     {}
func (*CaseExpr) exprNode()     {}
func (*CastExpr) exprNode()     {}
func (*InExpr) exprNode()       {}
func (*ExistsExpr) exprNode()   {}
func (*BetweenExpr) exprNode()  {}
func (*IsNullExpr) exprNode()   {}
func (*SubqueryExpr) exprNode() {}
func (*ParenExpr) exprNode()    {}
