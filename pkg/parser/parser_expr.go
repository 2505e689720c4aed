package parser

// Expression parsing with precedence climbing.
//
//	expr        → or_expr
//	or_expr     → and_expr (OR and_expr)*
//	and_expr    → not_expr (AND not_expr)*
//	not_expr    → NOT not_expr | predicate
//	predicate   → additive [comparison | IS [NOT] NULL | [NOT] (IN|BETWEEN|LIKE) ...]
//	additive    → multiplicative ((+|-|"||") multiplicative)*
//	multiplicative → unary ((*|/|%) unary)*
//	unary       → - unary | primary
//	primary     → literal | column_ref | function | CASE | CAST | EXISTS |
//	              "(" expr ")" | "(" statement ")"

import "github.com/luminsql/lumin/pkg/token"

// parseExpr parses an expression.
func (p *Parser) parseExpr() Expr {
	return p.parseOr()
}

func (p *Parser) parseOr() Expr {
	left := p.parseAnd()
	for p.match(token.OR) {
		right := p.parseAnd()
		left = &BinaryExpr{Left: left, Op: "OR", Right: right}
	}
	return left
}

func (p *Parser) parseAnd() Expr {
	left := p.parseNot()
	for p.match(token.AND) {
		right := p.parseNot()
		left = &BinaryExpr{Left: left, Op: "AND", Right: right}
	}
	return left
}

func (p *Parser) parseNot() Expr {
	if p.match(token.NOT) {
		return &UnaryExpr{Op: "NOT", Expr: p.parseNot()}
	}
	return p.parsePredicate()
}

// parsePredicate parses comparisons and SQL predicates (IS NULL, IN, BETWEEN,
// LIKE) on top of an additive expression.
func (p *Parser) parsePredicate() Expr {
	left := p.parseAdditive()

	switch p.token.Type {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		op := p.token.Type.String()
		p.nextToken()
		return &BinaryExpr{Left: left, Op: op, Right: p.parseAdditive()}

	case token.IS:
		p.nextToken()
		not := p.match(token.NOT)
		p.expect(token.NULL)
		return &IsNullExpr{Expr: left, Not: not}

	case token.IN:
		return p.parseIn(left, false)

	case token.BETWEEN:
		return p.parseBetween(left, false)

	case token.LIKE:
		p.nextToken()
		return &BinaryExpr{Left: left, Op: "LIKE", Right: p.parseAdditive()}

	case token.NOT:
		// expr NOT IN / NOT BETWEEN / NOT LIKE
		switch p.peek.Type {
		case token.IN:
			p.nextToken()
			return p.parseIn(left, true)
		case token.BETWEEN:
			p.nextToken()
			return p.parseBetween(left, true)
		case token.LIKE:
			p.nextToken()
			p.nextToken()
			return &BinaryExpr{Left: left, Op: "NOT LIKE", Right: p.parseAdditive()}
		}
	}

	return left
}

func (p *Parser) parseIn(left Expr, not bool) Expr {
	p.expect(token.IN)
	p.expect(token.LPAREN)

	in := &InExpr{Expr: left, Not: not}
	if p.check(token.SELECT) || p.check(token.WITH) {
		in.Subquery = p.parseStatement()
	} else {
		for {
			in.List = append(in.List, p.parseExpr())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN)
	return in
}

func (p *Parser) parseBetween(left Expr, not bool) Expr {
	p.expect(token.BETWEEN)
	lo := p.parseAdditive()
	p.expect(token.AND)
	hi := p.parseAdditive()
	return &BetweenExpr{Expr: left, Not: not, Lo: lo, Hi: hi}
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for {
		var op string
		switch p.token.Type {
		case token.PLUS:
			op = "+"
		case token.MINUS:
			op = "-"
		case token.DPIPE:
			op = "||"
		default:
			return left
		}
		p.nextToken()
		left = &BinaryExpr{Left: left, Op: op, Right: p.parseMultiplicative()}
	}
}

func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for {
		var op string
		switch p.token.Type {
		case token.STAR:
			op = "*"
		case token.SLASH:
			op = "/"
		case token.PERCENT:
			op = "%"
		default:
			return left
		}
		p.nextToken()
		left = &BinaryExpr{Left: left, Op: op, Right: p.parseUnary()}
	}
}

func (p *Parser) parseUnary() Expr {
	if p.match(token.MINUS) {
		return &UnaryExpr{Op: "-", Expr: p.parseUnary()}
	}
	return p.parsePrimary()
}

// parsePrimary parses literals, references, function calls, and subqueries.
func (p *Parser) parsePrimary() Expr {
	switch p.token.Type {
	case token.NUMBER:
		lit := &Literal{Kind: LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.STRING:
		lit := &Literal{Kind: LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit

	case token.TRUE:
		p.nextToken()
		return &Literal{Kind: LiteralBool, Value: "TRUE"}

	case token.FALSE:
		p.nextToken()
		return &Literal{Kind: LiteralBool, Value: "FALSE"}

	case token.NULL:
		p.nextToken()
		return &Literal{Kind: LiteralNull, Value: "NULL"}

	case token.CASE:
		return p.parseCase()

	case token.CAST:
		return p.parseCast()

	case token.EXISTS:
		p.nextToken()
		p.expect(token.LPAREN)
		stmt := p.parseStatement()
		p.expect(token.RPAREN)
		return &ExistsExpr{Subquery: stmt}

	case token.LPAREN:
		p.nextToken()
		if p.check(token.SELECT) || p.check(token.WITH) {
			stmt := p.parseStatement()
			p.expect(token.RPAREN)
			return &SubqueryExpr{Select: stmt}
		}
		inner := p.parseExpr()
		p.expect(token.RPAREN)
		return &ParenExpr{Expr: inner}

	case token.IDENT:
		return p.parseIdentExpr()

	default:
		p.addError("unexpected token " + p.token.Type.String() + " in expression")
		p.nextToken()
		return &Literal{Kind: LiteralNull, Value: "NULL"}
	}
}

// parseIdentExpr parses a column reference or function call starting at an
// identifier.
func (p *Parser) parseIdentExpr() Expr {
	name := p.token.Literal
	quoted := p.token.Quoted
	p.nextToken()

	// function call
	if p.check(token.LPAREN) && !quoted {
		return p.parseFuncCall(name)
	}

	// qualified column: table.column
	if p.match(token.DOT) {
		if !p.check(token.IDENT) && !p.check(token.STAR) {
			p.addError("expected column name after '.'")
			return &ColumnRef{Table: name}
		}
		if p.check(token.STAR) {
			// t.* in expression position is invalid; report and recover
			p.addError("unexpected '*' in expression")
			p.nextToken()
			return &ColumnRef{Table: name}
		}
		col := &ColumnRef{Table: name, Column: p.token.Literal, Quoted: p.token.Quoted}
		p.nextToken()
		return col
	}

	return &ColumnRef{Column: name, Quoted: quoted}
}

func (p *Parser) parseFuncCall(name string) Expr {
	p.expect(token.LPAREN)
	fn := &FuncCall{Name: name}

	if p.check(token.STAR) {
		p.nextToken()
		fn.Star = true
		p.expect(token.RPAREN)
		return fn
	}

	if p.match(token.DISTINCT) {
		fn.Distinct = true
	}

	if !p.check(token.RPAREN) {
		for {
			fn.Args = append(fn.Args, p.parseExpr())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN)
	return fn
}

func (p *Parser) parseCase() Expr {
	p.expect(token.CASE)
	caseExpr := &CaseExpr{}

	if !p.check(token.WHEN) {
		caseExpr.Operand = p.parseExpr()
	}

	for p.match(token.WHEN) {
		cond := p.parseExpr()
		p.expect(token.THEN)
		result := p.parseExpr()
		caseExpr.Whens = append(caseExpr.Whens, WhenClause{Cond: cond, Result: result})
	}

	if p.match(token.ELSE) {
		caseExpr.Else = p.parseExpr()
	}

	p.expect(token.END)
	return caseExpr
}

func (p *Parser) parseCast() Expr {
	p.expect(token.CAST)
	p.expect(token.LPAREN)
	expr := p.parseExpr()
	p.expect(token.AS)

	if !p.check(token.IDENT) {
		p.addError("expected type name in CAST")
		return expr
	}
	typeName := p.token.Literal
	p.nextToken()
	p.expect(token.RPAREN)
	return &CastExpr{Expr: expr, Type: typeName}
}
