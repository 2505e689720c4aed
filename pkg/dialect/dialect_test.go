package dialect_test

import (
	"testing"

	"github.com/luminsql/lumin/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		ident   string
		quoted  bool
		want    string
	}{
		{name: "ansi lowercases unquoted", dialect: dialect.ANSI, ident: "Orders", want: "orders"},
		{name: "ansi preserves quoted", dialect: dialect.ANSI, ident: "Orders", quoted: true, want: "Orders"},
		{name: "snowflake uppercases unquoted", dialect: dialect.Snowflake, ident: "Orders", want: "ORDERS"},
		{name: "snowflake preserves quoted", dialect: dialect.Snowflake, ident: "Orders", quoted: true, want: "Orders"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.NormalizeIdent(tt.ident, tt.quoted))
		})
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		ident   string
		want    string
	}{
		{name: "bare stays bare", dialect: dialect.ANSI, ident: "orders", want: "orders"},
		{name: "underscore ok", dialect: dialect.ANSI, ident: "_tmp_1", want: "_tmp_1"},
		{name: "dash forces quotes", dialect: dialect.ANSI, ident: "b-c", want: `"b-c"`},
		{name: "leading digit forces quotes", dialect: dialect.ANSI, ident: "1v", want: `"1v"`},
		{name: "keyword forces quotes", dialect: dialect.ANSI, ident: "select", want: `"select"`},
		{name: "embedded quote escaped", dialect: dialect.ANSI, ident: `a"b`, want: `"a""b"`},
		{name: "hive uses backticks", dialect: dialect.Hive, ident: "b-c", want: "`b-c`"},
		{name: "hive reserved word", dialect: dialect.Hive, ident: "timestamp", want: "`timestamp`"},
		{name: "empty name quoted", dialect: dialect.ANSI, ident: "", want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.QuoteIfNeeded(tt.ident))
		})
	}
}

func TestRegistry(t *testing.T) {
	d, ok := dialect.Get("ansi")
	require.True(t, ok)
	assert.Equal(t, "ansi", d.Name)

	_, ok = dialect.Get("oracle9")
	require.False(t, ok)

	assert.Contains(t, dialect.List(), "hive")
	assert.Contains(t, dialect.List(), "snowflake")
}

func TestLookup(t *testing.T) {
	d, err := dialect.Lookup("hive")
	require.NoError(t, err)
	assert.Equal(t, "hive", d.Name)

	_, err = dialect.Lookup("")
	assert.ErrorIs(t, err, dialect.ErrDialectRequired)

	_, err = dialect.Lookup("oracle9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialect")
	assert.Contains(t, err.Error(), "ansi")
}
