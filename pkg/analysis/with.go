package analysis

import (
	"context"

	"github.com/luminsql/lumin/pkg/parser"
)

// AnalyzeWithClause resolves a WITH clause's definitions against the caller
// scope a and, on success, registers the resulting views with it.
//
// The clause gets its own base scope. For a top-level clause the base scope
// is detached: it carries the caller's catalog, query context, and
// authorization configuration but has no parent link, so top-level
// definitions are visible only through explicit reference resolution and
// never chain into an unrelated ancestor. A nested clause's base scope is a
// child of the caller, which lets its definitions reference views registered
// by an ancestor scope.
//
// Definitions are analyzed strictly left to right, each body in a transient
// child scope of the base, so a body sees every definition registered before
// it but never later siblings. The missing-object diagnostics accumulated in
// the base scope reach the caller on every exit path, including aborts, so
// one top-level pass reports all missing objects discovered while resolving
// the clause.
func AnalyzeWithClause(ctx context.Context, wc *parser.WithClause, a *Analyzer) (err error) {
	var base *Analyzer
	if a.IsRootAnalyzer() {
		base = newBaseAnalyzer(a)
	} else {
		base = NewChildAnalyzer(a)
	}
	base.isExplain = a.isExplain

	defer func() {
		a.absorbMissing(base)
	}()

	for _, cte := range wc.CTEs {
		viewAnalyzer := NewChildAnalyzer(base)
		aerr := analyzeStmt(ctx, cte.Select, viewAnalyzer)
		base.absorb(viewAnalyzer)
		if aerr != nil {
			return aerr
		}
		// Register the definition so the next one can reference it.
		if rerr := base.RegisterLocalView(NewView(cte)); rerr != nil {
			return rerr
		}
	}

	if missing := base.MissingObjects(); len(missing) > 0 {
		return Errorf("could not resolve table reference %q", missing[0])
	}

	// Make the resolved definitions visible to the rest of the enclosing
	// statement.
	for _, v := range base.LocalViews() {
		if rerr := a.RegisterLocalView(v); rerr != nil {
			return rerr
		}
	}

	// Replay audit events at the caller's level: a resolved reference to a
	// definition generates no per-access records of its own.
	a.absorbAccessEvents(base)

	// Objects accessed only inside a definition body are checked exactly as
	// if the definition were inlined at its reference site.
	a.absorbPrivilegeRequests(base)

	a.absorbResolutions(base)
	return nil
}
