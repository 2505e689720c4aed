package parser

// Structural deep copies of AST nodes. Clones share no mutable state with
// their source, so a clone can be re-analyzed at another reference site while
// the original is in use. Resolution results live in the analyzer, never in
// the AST, so a clone carries no trace of any prior analysis.

// Clone returns an independent deep copy of the statement.
func (s *SelectStmt) Clone() *SelectStmt {
	if s == nil {
		return nil
	}
	return &SelectStmt{
		NodeInfo: s.NodeInfo,
		Explain:  s.Explain,
		With:     s.With.Clone(),
		Body:     s.Body.Clone(),
	}
}

// Clone returns an independent deep copy of the WITH clause: same alias
// sequence, each body structurally copied.
func (w *WithClause) Clone() *WithClause {
	if w == nil {
		return nil
	}
	out := &WithClause{
		NodeInfo:  w.NodeInfo,
		Recursive: w.Recursive,
		CTEs:      make([]*CTE, len(w.CTEs)),
	}
	for i, cte := range w.CTEs {
		out.CTEs[i] = cte.Clone()
	}
	return out
}

// Clone returns an independent deep copy of the definition.
func (c *CTE) Clone() *CTE {
	if c == nil {
		return nil
	}
	return &CTE{
		NodeInfo: c.NodeInfo,
		Name:     c.Name,
		Quoted:   c.Quoted,
		Select:   c.Select.Clone(),
	}
}

// Clone returns an independent deep copy of the select body.
func (b *SelectBody) Clone() *SelectBody {
	if b == nil {
		return nil
	}
	return &SelectBody{
		NodeInfo: b.NodeInfo,
		Left:     b.Left.Clone(),
		Op:       b.Op,
		All:      b.All,
		Right:    b.Right.Clone(),
	}
}

// Clone returns an independent deep copy of the select core.
func (c *SelectCore) Clone() *SelectCore {
	if c == nil {
		return nil
	}
	out := &SelectCore{
		NodeInfo: c.NodeInfo,
		Distinct: c.Distinct,
		From:     c.From.Clone(),
		Where:    cloneExpr(c.Where),
		Having:   cloneExpr(c.Having),
		Limit:    cloneExpr(c.Limit),
		Offset:   cloneExpr(c.Offset),
	}
	for _, item := range c.Columns {
		out.Columns = append(out.Columns, SelectItem{
			Expr:      cloneExpr(item.Expr),
			Alias:     item.Alias,
			Star:      item.Star,
			StarTable: item.StarTable,
		})
	}
	for _, e := range c.GroupBy {
		out.GroupBy = append(out.GroupBy, cloneExpr(e))
	}
	for _, o := range c.OrderBy {
		out.OrderBy = append(out.OrderBy, OrderByItem{Expr: cloneExpr(o.Expr), Desc: o.Desc})
	}
	return out
}

// Clone returns an independent deep copy of the FROM clause.
func (f *FromClause) Clone() *FromClause {
	if f == nil {
		return nil
	}
	out := &FromClause{
		NodeInfo: f.NodeInfo,
		Source:   cloneRef(f.Source),
	}
	for _, j := range f.Joins {
		out.Joins = append(out.Joins, &Join{
			Type:      j.Type,
			Right:     cloneRef(j.Right),
			Condition: cloneExpr(j.Condition),
			Using:     append([]string(nil), j.Using...),
		})
	}
	return out
}

// CloneRef returns an independent copy of the table reference.
func (t *TableName) CloneRef() TableRef {
	out := *t
	return &out
}

// CloneRef returns an independent copy of the derived table.
func (d *DerivedTable) CloneRef() TableRef {
	return &DerivedTable{
		NodeInfo: d.NodeInfo,
		Select:   d.Select.Clone(),
		Alias:    d.Alias,
	}
}

func cloneRef(r TableRef) TableRef {
	if r == nil {
		return nil
	}
	return r.CloneRef()
}

func cloneExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	return e.CloneExpr()
}

// CloneExpr returns an independent copy of the column reference.
func (c *ColumnRef) CloneExpr() Expr {
	out := *c
	return &out
}

// CloneExpr returns an independent copy of the literal.
func (l *Literal) CloneExpr() Expr {
	out := *l
	return &out
}

// CloneExpr returns an independent copy of the binary expression.
func (b *BinaryExpr) CloneExpr() Expr {
	return &BinaryExpr{Left: cloneExpr(b.Left), Op: b.Op, Right: cloneExpr(b.Right)}
}

// CloneExpr returns an independent copy of the unary expression.
func (u *UnaryExpr) CloneExpr() Expr {
	return &UnaryExpr{Op: u.Op, Expr: cloneExpr(u.Expr)}
}

// CloneExpr returns an independent copy of the function call.
func (f *FuncCall) CloneExpr() Expr {
	out := &FuncCall{Name: f.Name, Distinct: f.Distinct, Star: f.Star}
	for _, a := range f.Args {
		out.Args = append(out.Args, cloneExpr(a))
	}
	return out
}

// CloneExpr returns an independent copy of the CASE expression.
func (c *CaseExpr) CloneExpr() Expr {
	out := &CaseExpr{Operand: cloneExpr(c.Operand), Else: cloneExpr(c.Else)}
	for _, w := range c.Whens {
		out.Whens = append(out.Whens, WhenClause{Cond: cloneExpr(w.Cond), Result: cloneExpr(w.Result)})
	}
	return out
}

// CloneExpr returns an independent copy of the CAST expression.
func (c *CastExpr) CloneExpr() Expr {
	return &CastExpr{Expr: cloneExpr(c.Expr), Type: c.Type}
}

// CloneExpr returns an independent copy of the IN expression.
func (i *InExpr) CloneExpr() Expr {
	out := &InExpr{Expr: cloneExpr(i.Expr), Not: i.Not, Subquery: i.Subquery.Clone()}
	for _, e := range i.List {
		out.List = append(out.List, cloneExpr(e))
	}
	return out
}

// CloneExpr returns an independent copy of the EXISTS expression.
func (e *ExistsExpr) CloneExpr() Expr {
	return &ExistsExpr{Not: e.Not, Subquery: e.Subquery.Clone()}
}

// CloneExpr returns an independent copy of the BETWEEN expression.
func (b *BetweenExpr) CloneExpr() Expr {
	return &BetweenExpr{
		Expr: cloneExpr(b.Expr),
		Not:  b.Not,
		Lo:   cloneExpr(b.Lo),
		Hi:   cloneExpr(b.Hi),
	}
}

// CloneExpr returns an independent copy of the IS NULL expression.
func (i *IsNullExpr) CloneExpr() Expr {
	return &IsNullExpr{Expr: cloneExpr(i.Expr), Not: i.Not}
}

// CloneExpr returns an independent copy of the scalar subquery.
func (s *SubqueryExpr) CloneExpr() Expr {
	return &SubqueryExpr{Select: s.Select.Clone()}
}

// CloneExpr returns an independent copy of the parenthesized expression.
func (p *ParenExpr) CloneExpr() Expr {
	return &ParenExpr{Expr: cloneExpr(p.Expr)}
}
