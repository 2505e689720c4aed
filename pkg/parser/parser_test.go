package parser_test

import (
	"testing"

	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/luminsql/lumin/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWithClause(t *testing.T) {
	stmt, err := parser.Parse("WITH a AS (SELECT 1), b AS (SELECT * FROM a) SELECT * FROM b")
	require.NoError(t, err)
	require.NotNil(t, stmt.With)
	require.Len(t, stmt.With.CTEs, 2)

	assert.Equal(t, "a", stmt.With.CTEs[0].Name)
	assert.False(t, stmt.With.CTEs[0].Quoted)
	assert.Equal(t, "b", stmt.With.CTEs[1].Name)

	from := stmt.Body.Left.From
	require.NotNil(t, from)
	assert.Equal(t, "b", from.Source.(*parser.TableName).Name)
}

func TestParseQuotedDefinitionName(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		want   string
		quoted bool
	}{
		{name: "bare", sql: "WITH v AS (SELECT 1) SELECT 1", want: "v", quoted: false},
		{name: "double quoted", sql: `WITH "b-c" AS (SELECT 1) SELECT 1`, want: "b-c", quoted: true},
		{name: "backtick quoted", sql: "WITH `b-c` AS (SELECT 1) SELECT 1", want: "b-c", quoted: true},
		{name: "quoted keyword", sql: `WITH "select" AS (SELECT 1) SELECT 1`, want: "select", quoted: true},
		{name: "escaped quote", sql: `WITH "a""b" AS (SELECT 1) SELECT 1`, want: `a"b`, quoted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parser.Parse(tt.sql)
			require.NoError(t, err)
			require.Len(t, stmt.With.CTEs, 1)
			assert.Equal(t, tt.want, stmt.With.CTEs[0].Name)
			assert.Equal(t, tt.quoted, stmt.With.CTEs[0].Quoted)
		})
	}
}

func TestParseExplain(t *testing.T) {
	stmt, err := parser.Parse("EXPLAIN SELECT 1")
	require.NoError(t, err)
	assert.True(t, stmt.Explain)
}

func TestParseRecursive(t *testing.T) {
	stmt, err := parser.Parse("WITH RECURSIVE n AS (SELECT 1 UNION ALL SELECT * FROM n) SELECT * FROM n")
	require.NoError(t, err)
	assert.True(t, stmt.With.Recursive)
	require.Len(t, stmt.With.CTEs, 1)
	assert.Equal(t, parser.SetOpUnion, stmt.With.CTEs[0].Select.Body.Op)
	assert.True(t, stmt.With.CTEs[0].Select.Body.All)
}

func TestParseJoins(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want parser.JoinType
	}{
		{name: "inner", sql: "SELECT * FROM a JOIN b ON a.id = b.id", want: parser.JoinInner},
		{name: "left outer", sql: "SELECT * FROM a LEFT OUTER JOIN b ON a.id = b.id", want: parser.JoinLeft},
		{name: "right", sql: "SELECT * FROM a RIGHT JOIN b ON a.id = b.id", want: parser.JoinRight},
		{name: "full", sql: "SELECT * FROM a FULL JOIN b USING (id)", want: parser.JoinFull},
		{name: "cross", sql: "SELECT * FROM a CROSS JOIN b", want: parser.JoinCross},
		{name: "comma", sql: "SELECT * FROM a, b", want: parser.JoinCross},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := parser.Parse(tt.sql)
			require.NoError(t, err)
			joins := stmt.Body.Left.From.Joins
			require.Len(t, joins, 1)
			assert.Equal(t, tt.want, joins[0].Type)
		})
	}
}

func TestParseDerivedTableRequiresAlias(t *testing.T) {
	_, err := parser.Parse("SELECT * FROM (SELECT 1)")
	require.Error(t, err)
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Message, "alias")
}

func TestParseQualifiedNames(t *testing.T) {
	stmt, err := parser.Parse("SELECT * FROM warehouse.sales.orders o")
	require.NoError(t, err)
	ref := stmt.Body.Left.From.Source.(*parser.TableName)
	assert.Equal(t, "warehouse", ref.Catalog)
	assert.Equal(t, "sales", ref.Schema)
	assert.Equal(t, "orders", ref.Name)
	assert.Equal(t, "o", ref.Alias)
	assert.Equal(t, "warehouse.sales.orders", ref.FullName())
}

func TestParseExpressions(t *testing.T) {
	tests := []string{
		"SELECT a + b * c FROM t",
		"SELECT COUNT(*) FROM t GROUP BY a HAVING COUNT(*) > 1",
		"SELECT CASE WHEN a = 1 THEN 'one' ELSE 'many' END FROM t",
		"SELECT CAST(a AS integer) FROM t",
		"SELECT * FROM t WHERE a BETWEEN 1 AND 10",
		"SELECT * FROM t WHERE a IS NOT NULL AND b NOT LIKE 'x%'",
		"SELECT * FROM t WHERE a IN (1, 2, 3)",
		"SELECT * FROM t WHERE a IN (SELECT id FROM u)",
		"SELECT * FROM t WHERE EXISTS (SELECT 1 FROM u WHERE u.id = t.id)",
		"SELECT * FROM t WHERE NOT (a = 1 OR b = 2)",
		"SELECT (SELECT MAX(id) FROM u) AS top FROM t",
		"SELECT a || '-' || b FROM t ORDER BY a DESC, b LIMIT 10 OFFSET 5",
		"SELECT DISTINCT t.* FROM t",
	}

	for _, sql := range tests {
		t.Run(sql, func(t *testing.T) {
			_, err := parser.Parse(sql)
			require.NoError(t, err)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{name: "empty with list", sql: "WITH SELECT 1"},
		{name: "missing AS", sql: "WITH v (SELECT 1) SELECT 1"},
		{name: "unclosed body", sql: "WITH v AS (SELECT 1 SELECT 1"},
		{name: "trailing input", sql: "SELECT 1 FROM t extra ,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.sql)
			require.Error(t, err)
		})
	}
}

func TestToSQLQuotesOnlyWhenNeeded(t *testing.T) {
	stmt, err := parser.Parse(`WITH a AS (SELECT 1),"b-c" AS (SELECT * FROM a) SELECT 1`)
	require.NoError(t, err)

	got := stmt.With.ToSQL(dialect.ANSI)
	assert.Equal(t, `WITH a AS (SELECT 1),"b-c" AS (SELECT * FROM a)`, got)

	// Hive quoting uses backticks for the same clause.
	assert.Equal(t, "WITH a AS (SELECT 1),`b-c` AS (SELECT * FROM a)", stmt.With.ToSQL(dialect.Hive))
}

func TestToSQLRoundTrips(t *testing.T) {
	tests := []string{
		"WITH a AS (SELECT 1) SELECT * FROM a",
		"SELECT a, b AS c FROM t WHERE a = 1 GROUP BY a ORDER BY a DESC LIMIT 3",
		"SELECT * FROM a LEFT JOIN b ON a.id = b.id",
		"SELECT CASE WHEN a = 1 THEN 'x' END FROM t",
		"SELECT 1 UNION ALL SELECT 2",
		"SELECT a FROM t INTERSECT SELECT a FROM u",
	}

	for _, sql := range tests {
		t.Run(sql, func(t *testing.T) {
			stmt, err := parser.Parse(sql)
			require.NoError(t, err)
			out := stmt.ToSQL(dialect.ANSI)

			again, err := parser.Parse(out)
			require.NoError(t, err, "canonical text must re-parse")
			assert.Equal(t, out, again.ToSQL(dialect.ANSI), "serialization is a fixed point")
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	stmt, err := parser.Parse(`WITH a AS (SELECT 1),"b-c" AS (SELECT * FROM a) SELECT * FROM a`)
	require.NoError(t, err)

	clone := stmt.With.Clone()
	assert.Equal(t, stmt.With.ToSQL(dialect.ANSI), clone.ToSQL(dialect.ANSI))

	// Mutating the original must not reach the clone.
	stmt.With.CTEs[0].Name = "renamed"
	stmt.With.CTEs[1].Select.Body.Left.From.Source.(*parser.TableName).Name = "changed"
	assert.Equal(t, "a", clone.CTEs[0].Name)
	assert.Equal(t, "a", clone.CTEs[1].Select.Body.Left.From.Source.(*parser.TableName).Name)
}
