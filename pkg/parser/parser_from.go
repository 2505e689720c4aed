package parser

// FROM clause parsing: table references, derived tables, joins.

import "github.com/luminsql/lumin/pkg/token"

// parseFromClause parses a FROM clause with any number of joins.
//
//	from_clause → table_ref (join)*
func (p *Parser) parseFromClause() *FromClause {
	from := &FromClause{}
	from.Span.Start = p.token.Pos
	from.Source = p.parseTableRef()

	for {
		// Comma-separated sources parse as cross joins.
		if p.match(token.COMMA) {
			from.Joins = append(from.Joins, &Join{Type: JoinCross, Right: p.parseTableRef()})
			continue
		}
		join := p.parseJoin()
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}

	from.Span.End = p.token.Pos
	return from
}

// parseTableRef parses a named table or a derived table.
//
//	table_ref → qualified_name [[AS] ident] | "(" statement ")" [AS] ident
func (p *Parser) parseTableRef() TableRef {
	if p.check(token.LPAREN) {
		p.nextToken()
		stmt := p.parseStatement()
		p.expect(token.RPAREN)

		derived := &DerivedTable{Select: stmt}
		p.match(token.AS)
		if p.check(token.IDENT) {
			derived.Alias = p.token.Literal
			p.nextToken()
		} else {
			p.addError("derived table requires an alias")
		}
		return derived
	}

	if !p.check(token.IDENT) {
		p.addError("expected table name")
		return &TableName{}
	}

	ref := &TableName{}
	ref.Span.Start = p.token.Pos
	ref.Name = p.token.Literal
	ref.Quoted = p.token.Quoted
	p.nextToken()

	// schema.table or catalog.schema.table
	if p.match(token.DOT) {
		if !p.check(token.IDENT) {
			p.addError("expected identifier after '.'")
			return ref
		}
		ref.Schema = ref.Name
		ref.Name = p.token.Literal
		ref.Quoted = p.token.Quoted
		p.nextToken()

		if p.match(token.DOT) {
			if !p.check(token.IDENT) {
				p.addError("expected identifier after '.'")
				return ref
			}
			ref.Catalog = ref.Schema
			ref.Schema = ref.Name
			ref.Name = p.token.Literal
			ref.Quoted = p.token.Quoted
			p.nextToken()
		}
	}

	if p.match(token.AS) {
		if p.check(token.IDENT) {
			ref.Alias = p.token.Literal
			p.nextToken()
		} else {
			p.addError("expected alias after AS")
		}
	} else if p.check(token.IDENT) {
		ref.Alias = p.token.Literal
		p.nextToken()
	}

	ref.Span.End = p.token.Pos
	return ref
}

// parseJoin parses a single join, or returns nil when the current token does
// not start one.
func (p *Parser) parseJoin() *Join {
	join := &Join{Type: JoinInner}

	switch p.token.Type {
	case token.JOIN:
		p.nextToken()
	case token.INNER:
		p.nextToken()
		p.expect(token.JOIN)
	case token.LEFT:
		p.nextToken()
		p.match(token.OUTER)
		p.expect(token.JOIN)
		join.Type = JoinLeft
	case token.RIGHT:
		p.nextToken()
		p.match(token.OUTER)
		p.expect(token.JOIN)
		join.Type = JoinRight
	case token.FULL:
		p.nextToken()
		p.match(token.OUTER)
		p.expect(token.JOIN)
		join.Type = JoinFull
	case token.CROSS:
		p.nextToken()
		p.expect(token.JOIN)
		join.Type = JoinCross
	default:
		return nil
	}

	join.Right = p.parseTableRef()

	switch {
	case p.match(token.ON):
		join.Condition = p.parseExpr()
	case p.match(token.USING):
		p.expect(token.LPAREN)
		for {
			if !p.check(token.IDENT) {
				p.addError("expected column name in USING")
				break
			}
			join.Using = append(join.Using, p.token.Literal)
			p.nextToken()
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	return join
}
