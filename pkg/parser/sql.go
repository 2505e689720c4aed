package parser

import (
	"strings"

	"github.com/luminsql/lumin/pkg/dialect"
)

// Canonical SQL reconstruction. Output is deterministic and re-parseable by
// the dialect that produced it; identifiers are quoted only when the dialect's
// bare identifier grammar cannot express them.

// ToSQL returns the canonical text of the statement.
func (s *SelectStmt) ToSQL(d *dialect.Dialect) string {
	var sb strings.Builder
	if s.Explain {
		sb.WriteString("EXPLAIN ")
	}
	if s.With != nil {
		sb.WriteString(s.With.ToSQL(d))
		sb.WriteString(" ")
	}
	sb.WriteString(s.Body.ToSQL(d))
	return sb.String()
}

// ToSQL returns the canonical text of the WITH clause: the keyword followed
// by each "<alias> AS (<body>)" joined by commas, in declaration order.
func (w *WithClause) ToSQL(d *dialect.Dialect) string {
	parts := make([]string, len(w.CTEs))
	for i, cte := range w.CTEs {
		parts[i] = cte.ToSQL(d)
	}
	kw := "WITH "
	if w.Recursive {
		kw = "WITH RECURSIVE "
	}
	return kw + strings.Join(parts, ",")
}

// ToSQL returns "<alias> AS (<body>)" with the alias quoted only when needed.
func (c *CTE) ToSQL(d *dialect.Dialect) string {
	return d.QuoteIfNeeded(c.Name) + " AS (" + c.Select.ToSQL(d) + ")"
}

// ToSQL returns the canonical text of the select body.
func (b *SelectBody) ToSQL(d *dialect.Dialect) string {
	s := b.Left.ToSQL(d)
	if b.Op != SetOpNone && b.Right != nil {
		op := string(b.Op)
		if b.All {
			op += " ALL"
		}
		s += " " + op + " " + b.Right.ToSQL(d)
	}
	return s
}

// ToSQL returns the canonical text of the select core.
func (c *SelectCore) ToSQL(d *dialect.Dialect) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if c.Distinct {
		sb.WriteString("DISTINCT ")
	}
	items := make([]string, len(c.Columns))
	for i, item := range c.Columns {
		items[i] = item.toSQL(d)
	}
	sb.WriteString(strings.Join(items, ", "))
	if c.From != nil {
		sb.WriteString(" FROM ")
		sb.WriteString(c.From.ToSQL(d))
	}
	if c.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(c.Where.ToSQL(d))
	}
	if len(c.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		exprs := make([]string, len(c.GroupBy))
		for i, e := range c.GroupBy {
			exprs[i] = e.ToSQL(d)
		}
		sb.WriteString(strings.Join(exprs, ", "))
	}
	if c.Having != nil {
		sb.WriteString(" HAVING ")
		sb.WriteString(c.Having.ToSQL(d))
	}
	if len(c.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		items := make([]string, len(c.OrderBy))
		for i, o := range c.OrderBy {
			items[i] = o.Expr.ToSQL(d)
			if o.Desc {
				items[i] += " DESC"
			}
		}
		sb.WriteString(strings.Join(items, ", "))
	}
	if c.Limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(c.Limit.ToSQL(d))
	}
	if c.Offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(c.Offset.ToSQL(d))
	}
	return sb.String()
}

func (i SelectItem) toSQL(d *dialect.Dialect) string {
	if i.Star {
		if i.StarTable != "" {
			return d.QuoteIfNeeded(i.StarTable) + ".*"
		}
		return "*"
	}
	s := i.Expr.ToSQL(d)
	if i.Alias != "" {
		s += " AS " + d.QuoteIfNeeded(i.Alias)
	}
	return s
}

// ToSQL returns the canonical text of the FROM clause.
func (f *FromClause) ToSQL(d *dialect.Dialect) string {
	var sb strings.Builder
	sb.WriteString(f.Source.ToSQL(d))
	for _, j := range f.Joins {
		if j.Type == JoinCross {
			sb.WriteString(" CROSS JOIN ")
		} else {
			sb.WriteString(" " + string(j.Type) + " JOIN ")
		}
		sb.WriteString(j.Right.ToSQL(d))
		switch {
		case j.Condition != nil:
			sb.WriteString(" ON " + j.Condition.ToSQL(d))
		case len(j.Using) > 0:
			cols := make([]string, len(j.Using))
			for i, c := range j.Using {
				cols[i] = d.QuoteIfNeeded(c)
			}
			sb.WriteString(" USING (" + strings.Join(cols, ", ") + ")")
		}
	}
	return sb.String()
}

// ToSQL returns the canonical text of the table reference.
func (t *TableName) ToSQL(d *dialect.Dialect) string {
	var parts []string
	if t.Catalog != "" {
		parts = append(parts, d.QuoteIfNeeded(t.Catalog))
	}
	if t.Schema != "" {
		parts = append(parts, d.QuoteIfNeeded(t.Schema))
	}
	parts = append(parts, d.QuoteIfNeeded(t.Name))
	s := strings.Join(parts, ".")
	if t.Alias != "" {
		s += " " + d.QuoteIfNeeded(t.Alias)
	}
	return s
}

// ToSQL returns the canonical text of the derived table.
func (dt *DerivedTable) ToSQL(d *dialect.Dialect) string {
	s := "(" + dt.Select.ToSQL(d) + ")"
	if dt.Alias != "" {
		s += " " + d.QuoteIfNeeded(dt.Alias)
	}
	return s
}

// ToSQL returns the canonical text of the column reference.
func (c *ColumnRef) ToSQL(d *dialect.Dialect) string {
	if c.Table != "" {
		return d.QuoteIfNeeded(c.Table) + "." + d.QuoteIfNeeded(c.Column)
	}
	return d.QuoteIfNeeded(c.Column)
}

// ToSQL returns the canonical text of the literal.
func (l *Literal) ToSQL(_ *dialect.Dialect) string {
	switch l.Kind {
	case LiteralString:
		return "'" + strings.ReplaceAll(l.Value, "'", "''") + "'"
	case LiteralNull:
		return "NULL"
	default:
		return l.Value
	}
}

// ToSQL returns the canonical text of the binary expression.
func (b *BinaryExpr) ToSQL(d *dialect.Dialect) string {
	return b.Left.ToSQL(d) + " " + b.Op + " " + b.Right.ToSQL(d)
}

// ToSQL returns the canonical text of the unary expression.
func (u *UnaryExpr) ToSQL(d *dialect.Dialect) string {
	if u.Op == "NOT" {
		return "NOT " + u.Expr.ToSQL(d)
	}
	return u.Op + u.Expr.ToSQL(d)
}

// ToSQL returns the canonical text of the function call.
func (f *FuncCall) ToSQL(d *dialect.Dialect) string {
	if f.Star {
		return strings.ToUpper(f.Name) + "(*)"
	}
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = a.ToSQL(d)
	}
	inner := strings.Join(args, ", ")
	if f.Distinct {
		inner = "DISTINCT " + inner
	}
	return strings.ToUpper(f.Name) + "(" + inner + ")"
}

// ToSQL returns the canonical text of the CASE expression.
func (c *CaseExpr) ToSQL(d *dialect.Dialect) string {
	var sb strings.Builder
	sb.WriteString("CASE")
	if c.Operand != nil {
		sb.WriteString(" " + c.Operand.ToSQL(d))
	}
	for _, w := range c.Whens {
		sb.WriteString(" WHEN " + w.Cond.ToSQL(d) + " THEN " + w.Result.ToSQL(d))
	}
	if c.Else != nil {
		sb.WriteString(" ELSE " + c.Else.ToSQL(d))
	}
	sb.WriteString(" END")
	return sb.String()
}

// ToSQL returns the canonical text of the CAST expression.
func (c *CastExpr) ToSQL(d *dialect.Dialect) string {
	return "CAST(" + c.Expr.ToSQL(d) + " AS " + strings.ToUpper(c.Type) + ")"
}

// ToSQL returns the canonical text of the IN expression.
func (i *InExpr) ToSQL(d *dialect.Dialect) string {
	s := i.Expr.ToSQL(d)
	if i.Not {
		s += " NOT"
	}
	s += " IN ("
	if i.Subquery != nil {
		s += i.Subquery.ToSQL(d)
	} else {
		items := make([]string, len(i.List))
		for n, e := range i.List {
			items[n] = e.ToSQL(d)
		}
		s += strings.Join(items, ", ")
	}
	return s + ")"
}

// ToSQL returns the canonical text of the EXISTS expression.
func (e *ExistsExpr) ToSQL(d *dialect.Dialect) string {
	s := "EXISTS (" + e.Subquery.ToSQL(d) + ")"
	if e.Not {
		return "NOT " + s
	}
	return s
}

// ToSQL returns the canonical text of the BETWEEN expression.
func (b *BetweenExpr) ToSQL(d *dialect.Dialect) string {
	s := b.Expr.ToSQL(d)
	if b.Not {
		s += " NOT"
	}
	return s + " BETWEEN " + b.Lo.ToSQL(d) + " AND " + b.Hi.ToSQL(d)
}

// ToSQL returns the canonical text of the IS NULL expression.
func (i *IsNullExpr) ToSQL(d *dialect.Dialect) string {
	s := i.Expr.ToSQL(d) + " IS "
	if i.Not {
		s += "NOT "
	}
	return s + "NULL"
}

// ToSQL returns the canonical text of the scalar subquery.
func (s *SubqueryExpr) ToSQL(d *dialect.Dialect) string {
	return "(" + s.Select.ToSQL(d) + ")"
}

// ToSQL returns the canonical text of the parenthesized expression.
func (p *ParenExpr) ToSQL(d *dialect.Dialect) string {
	return "(" + p.Expr.ToSQL(d) + ")"
}
