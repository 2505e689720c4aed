package parser

// Statement parsing: EXPLAIN prefix, WITH clause, CTEs, SELECT body.

import "github.com/luminsql/lumin/pkg/token"

// parseStatement parses a complete statement.
//
//	statement → [EXPLAIN] [with_clause] select_body
func (p *Parser) parseStatement() *SelectStmt {
	stmt := &SelectStmt{}
	stmt.Span.Start = p.token.Pos

	if p.match(token.EXPLAIN) {
		stmt.Explain = true
	}

	if p.check(token.WITH) {
		stmt.With = p.parseWithClause()
	}

	stmt.Body = p.parseSelectBody()
	stmt.Span.End = p.token.Pos
	return stmt
}

// parseWithClause parses a WITH clause.
//
//	with_clause → WITH [RECURSIVE] cte ("," cte)*
func (p *Parser) parseWithClause() *WithClause {
	with := &WithClause{}
	with.Span.Start = p.token.Pos
	p.expect(token.WITH)

	if p.match(token.RECURSIVE) {
		with.Recursive = true
	}

	for {
		cte := p.parseCTE()
		if cte == nil {
			break
		}
		with.CTEs = append(with.CTEs, cte)
		if !p.match(token.COMMA) {
			break
		}
	}

	if len(with.CTEs) == 0 {
		p.addError("WITH clause requires at least one definition")
		return nil
	}

	with.Span.End = p.token.Pos
	return with
}

// parseCTE parses a single named definition.
//
//	cte → ident AS "(" statement ")"
func (p *Parser) parseCTE() *CTE {
	cte := &CTE{}
	cte.Span.Start = p.token.Pos

	if !p.check(token.IDENT) {
		p.addError("expected definition name in WITH clause")
		return nil
	}
	cte.Name = p.token.Literal
	cte.Quoted = p.token.Quoted
	p.nextToken()

	if !p.expect(token.AS) {
		return nil
	}
	if !p.expect(token.LPAREN) {
		return nil
	}

	cte.Select = p.parseStatement()

	if !p.expect(token.RPAREN) {
		return nil
	}

	cte.Span.End = p.token.Pos
	return cte
}

// parseSelectBody parses a select body with optional set operations.
//
//	select_body → select_core [(UNION|INTERSECT|EXCEPT) [ALL] select_body]
func (p *Parser) parseSelectBody() *SelectBody {
	body := &SelectBody{}
	body.Span.Start = p.token.Pos
	body.Left = p.parseSelectCore()

	switch p.token.Type {
	case token.UNION:
		p.nextToken()
		body.Op = SetOpUnion
		body.All = p.match(token.ALL)
		body.Right = p.parseSelectBody()
	case token.INTERSECT:
		p.nextToken()
		body.Op = SetOpIntersect
		body.All = p.match(token.ALL)
		body.Right = p.parseSelectBody()
	case token.EXCEPT:
		p.nextToken()
		body.Op = SetOpExcept
		body.All = p.match(token.ALL)
		body.Right = p.parseSelectBody()
	}

	body.Span.End = p.token.Pos
	return body
}

// parseSelectCore parses the core SELECT clause and its trailing clauses.
func (p *Parser) parseSelectCore() *SelectCore {
	core := &SelectCore{}
	core.Span.Start = p.token.Pos

	if !p.expect(token.SELECT) {
		return core
	}

	if p.match(token.DISTINCT) {
		core.Distinct = true
	}

	core.Columns = p.parseSelectList()

	if p.match(token.FROM) {
		core.From = p.parseFromClause()
	}

	if p.match(token.WHERE) {
		core.Where = p.parseExpr()
	}

	if p.check(token.GROUP) {
		p.nextToken()
		p.expect(token.BY)
		core.GroupBy = p.parseExprList()
	}

	if p.match(token.HAVING) {
		core.Having = p.parseExpr()
	}

	if p.check(token.ORDER) {
		p.nextToken()
		p.expect(token.BY)
		core.OrderBy = p.parseOrderByList()
	}

	if p.match(token.LIMIT) {
		core.Limit = p.parseExpr()
		if p.match(token.OFFSET) {
			core.Offset = p.parseExpr()
		}
	}

	core.Span.End = p.token.Pos
	return core
}

// parseSelectList parses the comma-separated SELECT list.
func (p *Parser) parseSelectList() []SelectItem {
	var items []SelectItem
	for {
		items = append(items, p.parseSelectItem())
		if !p.match(token.COMMA) {
			break
		}
	}
	return items
}

// parseSelectItem parses one SELECT list item: *, t.*, or expr [AS alias].
func (p *Parser) parseSelectItem() SelectItem {
	if p.check(token.STAR) {
		p.nextToken()
		return SelectItem{Star: true}
	}

	// t.* — identifier followed by ".*"
	if p.check(token.IDENT) && p.checkPeek(token.DOT) && p.checkPeek2(token.STAR) {
		qualifier := p.token.Literal
		p.nextToken() // ident
		p.nextToken() // dot
		p.nextToken() // star
		return SelectItem{Star: true, StarTable: qualifier}
	}

	item := SelectItem{Expr: p.parseExpr()}

	if p.match(token.AS) {
		if p.check(token.IDENT) {
			item.Alias = p.token.Literal
			p.nextToken()
		} else {
			p.addError("expected alias after AS")
		}
	} else if p.check(token.IDENT) {
		// Bare alias
		item.Alias = p.token.Literal
		p.nextToken()
	}

	return item
}

// parseExprList parses a comma-separated expression list.
func (p *Parser) parseExprList() []Expr {
	var exprs []Expr
	for {
		exprs = append(exprs, p.parseExpr())
		if !p.match(token.COMMA) {
			break
		}
	}
	return exprs
}

// parseOrderByList parses ORDER BY items.
func (p *Parser) parseOrderByList() []OrderByItem {
	var items []OrderByItem
	for {
		item := OrderByItem{Expr: p.parseExpr()}
		if p.match(token.DESC) {
			item.Desc = true
		} else {
			p.match(token.ASC)
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	return items
}
