package analysis

// Statement analysis: FROM-clause registration, table-reference resolution
// against views and the catalog, and the expression walk that reaches nested
// subqueries. Definition bodies are analyzed strictly in declaration order;
// there is no reordering or parallel analysis of siblings.

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminsql/lumin/pkg/catalog"
	"github.com/luminsql/lumin/pkg/parser"
)

// AnalyzeStatement analyzes a complete statement against the given root
// analyzer. Missing objects are collected rather than failing the walk, so a
// single pass reports every unresolved name; the statement still fails when
// any were found.
func AnalyzeStatement(ctx context.Context, stmt *parser.SelectStmt, a *Analyzer) error {
	if stmt.Explain {
		a.SetExplain()
	}
	if err := analyzeStmt(ctx, stmt, a); err != nil {
		return err
	}
	if missing := a.MissingObjects(); len(missing) > 0 {
		return Errorf("could not resolve table reference %q", missing[0])
	}
	return nil
}

// analyzeStmt analyzes one statement within an existing scope. Unlike
// AnalyzeStatement it does not fail on collected missing objects; enclosing
// resolution decides when those become terminal.
func analyzeStmt(ctx context.Context, stmt *parser.SelectStmt, a *Analyzer) error {
	if stmt.With != nil {
		if err := AnalyzeWithClause(ctx, stmt.With, a); err != nil {
			return err
		}
	}
	return analyzeBody(ctx, stmt.Body, a)
}

// analyzeBody analyzes a select body. Each set-operation arm gets its own
// child scope so FROM aliases never leak across arms.
func analyzeBody(ctx context.Context, body *parser.SelectBody, a *Analyzer) error {
	coreAnalyzer := NewChildAnalyzer(a)
	err := analyzeCore(ctx, body.Left, coreAnalyzer)
	a.absorb(coreAnalyzer)
	if err != nil {
		return err
	}

	if body.Right != nil {
		return analyzeBody(ctx, body.Right, a)
	}
	return nil
}

// analyzeCore analyzes one SELECT core in its own scope.
func analyzeCore(ctx context.Context, core *parser.SelectCore, a *Analyzer) error {
	if core.From != nil {
		if err := analyzeFrom(ctx, core.From, a); err != nil {
			return err
		}
	}

	for _, item := range core.Columns {
		if item.Star {
			if item.StarTable != "" && !a.resolvesAlias(item.StarTable, false) {
				return Errorf("unknown table or alias %q", item.StarTable)
			}
			continue
		}
		if err := analyzeExpr(ctx, item.Expr, a); err != nil {
			return err
		}
	}

	for _, e := range []parser.Expr{core.Where, core.Having, core.Limit, core.Offset} {
		if err := analyzeExpr(ctx, e, a); err != nil {
			return err
		}
	}
	for _, e := range core.GroupBy {
		if err := analyzeExpr(ctx, e, a); err != nil {
			return err
		}
	}
	for _, o := range core.OrderBy {
		if err := analyzeExpr(ctx, o.Expr, a); err != nil {
			return err
		}
	}
	return nil
}

// analyzeFrom registers and resolves every source of the FROM clause. Each
// join's right side is registered before its condition is analyzed, so the
// condition sees both sides.
func analyzeFrom(ctx context.Context, from *parser.FromClause, a *Analyzer) error {
	if err := analyzeTableRef(ctx, from.Source, a); err != nil {
		return err
	}
	for _, join := range from.Joins {
		if err := analyzeTableRef(ctx, join.Right, a); err != nil {
			return err
		}
		if err := analyzeExpr(ctx, join.Condition, a); err != nil {
			return err
		}
	}
	return nil
}

// analyzeTableRef resolves a single FROM-clause source within scope a.
func analyzeTableRef(ctx context.Context, ref parser.TableRef, a *Analyzer) error {
	switch r := ref.(type) {
	case *parser.TableName:
		if err := a.registerAlias(r.EffectiveAlias(), r.Quoted && r.Alias == "", r); err != nil {
			return err
		}
		return resolveTableName(ctx, r, a)

	case *parser.DerivedTable:
		child := NewChildAnalyzer(a)
		err := analyzeStmt(ctx, r.Select, child)
		a.absorb(child)
		if err != nil {
			return err
		}
		return a.registerAlias(r.Alias, false, r)

	default:
		return Errorf("unsupported table reference %T", ref)
	}
}

// resolveTableName binds a named reference: WITH-clause definitions first,
// searched inside out, then the catalog. A reference that binds to a
// definition generates no access event; the events recorded while the
// definition's body was analyzed already cover its underlying objects. A
// reference found in neither place is recorded as missing and resolution of
// the rest of the statement continues, so one pass discovers every missing
// object.
func resolveTableName(ctx context.Context, ref *parser.TableName, a *Analyzer) error {
	if ref.Catalog == "" && ref.Schema == "" {
		if v, ok := a.LookupView(ref.Name, ref.Quoted); ok {
			a.setResolution(ref, Resolved{Kind: ResolvedView, View: v})
			return nil
		}
	}

	schema := ref.Schema
	if schema == "" {
		schema = a.queryCtx.DefaultSchema
	}

	tbl, err := a.cat.Table(ctx, schema, a.dialect.NormalizeIdent(ref.Name, ref.Quoted))
	if errors.Is(err, catalog.ErrNotFound) {
		a.recordMissing(ref.FullName())
		return nil
	}
	if err != nil {
		return fmt.Errorf("catalog lookup for %q failed: %w", ref.FullName(), err)
	}

	a.setResolution(ref, Resolved{Kind: ResolvedTable, Table: tbl})
	a.recordAccessEvent(AccessEvent{Name: tbl.FullName(), Type: ObjectTable, Privilege: PrivilegeSelect})
	a.RegisterPrivilegeRequest(PrivilegeRequest{Object: tbl.FullName(), Privilege: PrivilegeSelect})
	return nil
}

// analyzeExpr walks an expression, validating qualified column references and
// descending into subqueries, each in its own child scope.
func analyzeExpr(ctx context.Context, e parser.Expr, a *Analyzer) error {
	if e == nil {
		return nil
	}

	switch x := e.(type) {
	case *parser.ColumnRef:
		if x.Table != "" && !a.resolvesAlias(x.Table, false) {
			return Errorf("unknown table or alias %q", x.Table)
		}
		return nil

	case *parser.Literal:
		return nil

	case *parser.BinaryExpr:
		if err := analyzeExpr(ctx, x.Left, a); err != nil {
			return err
		}
		return analyzeExpr(ctx, x.Right, a)

	case *parser.UnaryExpr:
		return analyzeExpr(ctx, x.Expr, a)

	case *parser.FuncCall:
		for _, arg := range x.Args {
			if err := analyzeExpr(ctx, arg, a); err != nil {
				return err
			}
		}
		return nil

	case *parser.CaseExpr:
		if err := analyzeExpr(ctx, x.Operand, a); err != nil {
			return err
		}
		for _, w := range x.Whens {
			if err := analyzeExpr(ctx, w.Cond, a); err != nil {
				return err
			}
			if err := analyzeExpr(ctx, w.Result, a); err != nil {
				return err
			}
		}
		return analyzeExpr(ctx, x.Else, a)

	case *parser.CastExpr:
		return analyzeExpr(ctx, x.Expr, a)

	case *parser.InExpr:
		if err := analyzeExpr(ctx, x.Expr, a); err != nil {
			return err
		}
		for _, item := range x.List {
			if err := analyzeExpr(ctx, item, a); err != nil {
				return err
			}
		}
		return analyzeSubquery(ctx, x.Subquery, a)

	case *parser.ExistsExpr:
		return analyzeSubquery(ctx, x.Subquery, a)

	case *parser.BetweenExpr:
		if err := analyzeExpr(ctx, x.Expr, a); err != nil {
			return err
		}
		if err := analyzeExpr(ctx, x.Lo, a); err != nil {
			return err
		}
		return analyzeExpr(ctx, x.Hi, a)

	case *parser.IsNullExpr:
		return analyzeExpr(ctx, x.Expr, a)

	case *parser.SubqueryExpr:
		return analyzeSubquery(ctx, x.Select, a)

	case *parser.ParenExpr:
		return analyzeExpr(ctx, x.Expr, a)

	default:
		return Errorf("unsupported expression %T", e)
	}
}

// analyzeSubquery analyzes a nested statement in a child scope of a, giving
// it inside-out visibility into the enclosing scopes.
func analyzeSubquery(ctx context.Context, stmt *parser.SelectStmt, a *Analyzer) error {
	if stmt == nil {
		return nil
	}
	child := NewChildAnalyzer(a)
	err := analyzeStmt(ctx, stmt, child)
	a.absorb(child)
	return err
}
