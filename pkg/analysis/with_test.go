package analysis_test

import (
	"context"
	"testing"

	"github.com/luminsql/lumin/pkg/analysis"
	"github.com/luminsql/lumin/pkg/catalog"
	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/luminsql/lumin/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCatalog returns a catalog with a couple of plain tables.
func testCatalog(tables ...string) *catalog.Memory {
	m := catalog.NewMemory("")
	for _, name := range tables {
		m.Add(&catalog.Table{Name: name, Columns: []catalog.Column{{Name: "id", Type: "integer"}}})
	}
	return m
}

// analyzeSQL parses and analyzes sql against a fresh root analyzer.
func analyzeSQL(t *testing.T, sql string, cat catalog.Catalog) (*analysis.Analyzer, error) {
	t.Helper()
	stmt := mustParse(t, sql)
	a := analysis.NewAnalyzer(cat, dialect.ANSI, analysis.QueryContext{}, analysis.AuthzConfig{})
	return a, analysis.AnalyzeStatement(context.Background(), stmt, a)
}

func TestLeftToRightVisibility(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr string
	}{
		{
			name: "later definition references earlier one",
			sql:  "WITH a AS (SELECT 1), b AS (SELECT * FROM a), c AS (SELECT 2) SELECT * FROM c",
		},
		{
			name:    "forward reference fails",
			sql:     "WITH a AS (SELECT * FROM b), b AS (SELECT 1) SELECT 1",
			wantErr: `could not resolve table reference "b"`,
		},
		{
			name: "definition references itself only when registered earlier",
			sql:  "WITH a AS (SELECT 1), a2 AS (SELECT * FROM a WHERE id > 0) SELECT * FROM a2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzeSQL(t, tt.sql, testCatalog())
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var aerr *analysis.AnalysisError
			require.ErrorAs(t, err, &aerr)
			assert.Contains(t, aerr.Message, tt.wantErr)
		})
	}
}

func TestDuplicateAliasAbortsClause(t *testing.T) {
	_, err := analyzeSQL(t, "WITH v AS (SELECT 1), v AS (SELECT 2) SELECT 1", testCatalog())
	var dup *analysis.DuplicateAliasError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "v", dup.Alias)
}

func TestDuplicateAliasQuotingPolicy(t *testing.T) {
	// Unquoted aliases compare case-insensitively under the ANSI policy.
	_, err := analyzeSQL(t, `WITH v AS (SELECT 1), V AS (SELECT 2) SELECT 1`, testCatalog())
	var dup *analysis.DuplicateAliasError
	require.ErrorAs(t, err, &dup)

	// A quoted alias keeps its case and does not collide.
	_, err = analyzeSQL(t, `WITH v AS (SELECT 1), "V" AS (SELECT 2) SELECT * FROM v`, testCatalog())
	require.NoError(t, err)
}

func TestNestedClauseShadowsOuterDefinition(t *testing.T) {
	cat := testCatalog("t_outer", "t_inner")
	sql := `WITH v AS (SELECT * FROM t_outer)
		SELECT * FROM (WITH v AS (SELECT * FROM t_inner) SELECT * FROM v) d JOIN v u ON 1 = 1`

	stmt := mustParse(t, sql)
	a := analysis.NewAnalyzer(cat, dialect.ANSI, analysis.QueryContext{}, analysis.AuthzConfig{})
	require.NoError(t, analysis.AnalyzeStatement(context.Background(), stmt, a))

	core := stmt.Body.Left
	derived := core.From.Source.(*parser.DerivedTable)
	innerRef := derived.Select.Body.Left.From.Source.(*parser.TableName)
	outerRef := core.From.Joins[0].Right.(*parser.TableName)

	innerRes, ok := a.Resolution(innerRef)
	require.True(t, ok)
	require.Equal(t, analysis.ResolvedView, innerRes.Kind)
	innerTable := innerRes.View.Stmt.Body.Left.From.Source.(*parser.TableName)
	assert.Equal(t, "t_inner", innerTable.Name, "inner reference binds to the nested definition")

	outerRes, ok := a.Resolution(outerRef)
	require.True(t, ok)
	require.Equal(t, analysis.ResolvedView, outerRes.Kind)
	outerTable := outerRes.View.Stmt.Body.Left.From.Source.(*parser.TableName)
	assert.Equal(t, "t_outer", outerTable.Name, "outer reference binds to the outer definition")
}

func TestRootClauseBaseScopeIsDetached(t *testing.T) {
	// A definition registered directly on the root analyzer must not be
	// visible to a top-level clause: its base scope has no parent link.
	cat := testCatalog()
	stmt := mustParse(t, "WITH x AS (SELECT * FROM pre) SELECT 1")
	a := analysis.NewAnalyzer(cat, dialect.ANSI, analysis.QueryContext{}, analysis.AuthzConfig{})
	require.NoError(t, a.RegisterLocalView(viewFor(t, "pre", false, "SELECT 1")))

	err := analysis.AnalyzeStatement(context.Background(), stmt, a)
	var aerr *analysis.AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Message, `"pre"`)
}

func TestNestedClauseSeesAncestorDefinitions(t *testing.T) {
	sql := `WITH outer_v AS (SELECT 1)
		SELECT * FROM (WITH inner_v AS (SELECT * FROM outer_v) SELECT * FROM inner_v) d`
	_, err := analyzeSQL(t, sql, testCatalog())
	require.NoError(t, err)
}

func TestMissingObjectsAggregatedAcrossDefinitions(t *testing.T) {
	sql := "WITH x AS (SELECT * FROM nope1), y AS (SELECT * FROM nope2) SELECT 1"
	a, err := analyzeSQL(t, sql, testCatalog())

	var aerr *analysis.AnalysisError
	require.ErrorAs(t, err, &aerr)

	missing := a.MissingObjects()
	assert.Contains(t, missing, "nope1")
	assert.Contains(t, missing, "nope2", "aggregation must survive the failed resolution")
}

func TestAnalysisErrorAbortsRemainingDefinitions(t *testing.T) {
	// The first definition fails hard; the second is never analyzed.
	sql := "WITH x AS (SELECT * FROM t1 a JOIN t1 a ON 1 = 1), y AS (SELECT * FROM nope) SELECT 1"
	a, err := analyzeSQL(t, sql, testCatalog("t1"))

	var aerr *analysis.AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Message, "duplicate table alias")
	assert.Empty(t, a.MissingObjects(), "later definitions are not attempted")
}

func TestAccessEventsAndPrivilegeRequestsReplayed(t *testing.T) {
	cat := testCatalog("orders", "customers")
	sql := `WITH v AS (SELECT o.id FROM orders o JOIN customers c ON o.id = c.id)
		SELECT * FROM v UNION ALL SELECT * FROM v`
	a, err := analyzeSQL(t, sql, cat)
	require.NoError(t, err)

	var names []string
	for _, e := range a.AccessEvents() {
		names = append(names, e.Name)
		assert.Equal(t, analysis.ObjectTable, e.Type)
		assert.Equal(t, analysis.PrivilegeSelect, e.Privilege)
	}
	assert.Equal(t, []string{"orders", "customers"}, names,
		"definition-body events replay once at the caller, in discovery order")

	var objects []string
	for _, r := range a.PrivilegeRequests() {
		objects = append(objects, r.Object)
	}
	assert.Equal(t, []string{"orders", "customers"}, objects,
		"requests match inlining every reference, without duplicates")
}

func TestViewReferenceGeneratesNoExtraEvents(t *testing.T) {
	cat := testCatalog("orders")
	a, err := analyzeSQL(t, "WITH v AS (SELECT * FROM orders) SELECT * FROM v", cat)
	require.NoError(t, err)

	require.Len(t, a.AccessEvents(), 1)
	require.Len(t, a.PrivilegeRequests(), 1)
	assert.Equal(t, "orders", a.AccessEvents()[0].Name)
}

func TestEventNamesQualifiedWithDefaultSchema(t *testing.T) {
	cat := catalog.NewMemory("main")
	cat.Add(&catalog.Table{Name: "orders", Columns: []catalog.Column{{Name: "id", Type: "integer"}}})

	a, err := analyzeSQL(t, "SELECT * FROM orders", cat)
	require.NoError(t, err)

	require.Len(t, a.AccessEvents(), 1)
	assert.Equal(t, "main.orders", a.AccessEvents()[0].Name)
	require.Len(t, a.PrivilegeRequests(), 1)
	assert.Equal(t, "main.orders", a.PrivilegeRequests()[0].Object)
}

func TestExplainPropagatesToClauseAnalysis(t *testing.T) {
	cat := testCatalog("orders")
	stmt := mustParse(t, "EXPLAIN WITH v AS (SELECT * FROM orders) SELECT * FROM v")
	a := analysis.NewAnalyzer(cat, dialect.ANSI, analysis.QueryContext{}, analysis.AuthzConfig{})
	require.NoError(t, analysis.AnalyzeStatement(context.Background(), stmt, a))
	assert.True(t, a.IsExplain())
}

func TestMainBodyMissingObjectFails(t *testing.T) {
	a, err := analyzeSQL(t, "SELECT * FROM absent", testCatalog())
	var aerr *analysis.AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, []string{"absent"}, a.MissingObjects())
}

func TestSubqueriesResolveEnclosingAliases(t *testing.T) {
	cat := testCatalog("orders", "customers")
	sql := `SELECT * FROM orders o WHERE o.id IN (SELECT c.id FROM customers c WHERE c.id = o.id)`
	_, err := analyzeSQL(t, sql, cat)
	require.NoError(t, err)
}

func TestUnknownColumnQualifierFails(t *testing.T) {
	a, err := analyzeSQL(t, "SELECT x.id FROM orders o", testCatalog("orders"))
	var aerr *analysis.AnalysisError
	require.ErrorAs(t, err, &aerr)
	assert.Contains(t, aerr.Message, `"x"`)
	assert.Empty(t, a.MissingObjects())
}
