package audit_test

import (
	"context"
	"testing"

	"github.com/luminsql/lumin/internal/audit"
	"github.com/luminsql/lumin/internal/testutil"
	"github.com/luminsql/lumin/pkg/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *audit.Store {
	t.Helper()
	s, err := audit.Open(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndGetAnalysis(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &audit.Record{
		User:    "alice",
		Dialect: "ansi",
		SQL:     "WITH v AS (SELECT * FROM orders) SELECT * FROM v",
		OK:      true,
		AccessEvents: []analysis.AccessEvent{
			{Name: "main.orders", Type: analysis.ObjectTable, Privilege: analysis.PrivilegeSelect},
		},
		PrivilegeRequests: []analysis.PrivilegeRequest{
			{Object: "main.orders", Privilege: analysis.PrivilegeSelect},
		},
	}

	id, err := s.RecordAnalysis(ctx, rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetAnalysis(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.User)
	assert.Equal(t, rec.SQL, got.SQL)
	assert.True(t, got.OK)
	require.Len(t, got.AccessEvents, 1)
	assert.Equal(t, "main.orders", got.AccessEvents[0].Name)
	assert.Equal(t, analysis.ObjectTable, got.AccessEvents[0].Type)
	require.Len(t, got.PrivilegeRequests, 1)
	assert.Empty(t, got.MissingObjects)
}

func TestRecordFailedAnalysis(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := &audit.Record{
		Dialect:        "ansi",
		SQL:            "WITH v AS (SELECT * FROM nope) SELECT 1",
		OK:             false,
		Error:          `analysis error: could not resolve table reference "nope"`,
		MissingObjects: []string{"nope"},
	}

	id, err := s.RecordAnalysis(ctx, rec)
	require.NoError(t, err)

	got, err := s.GetAnalysis(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.OK)
	assert.Contains(t, got.Error, "nope")
	assert.Equal(t, []string{"nope"}, got.MissingObjects)
}

func TestGetAnalysisNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetAnalysis(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, audit.ErrNotFound)
}

func TestListAnalyses(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, sql := range []string{"SELECT 1", "SELECT 2", "SELECT 3"} {
		_, err := s.RecordAnalysis(ctx, &audit.Record{Dialect: "ansi", SQL: sql, OK: true})
		require.NoError(t, err)
	}

	recs, err := s.ListAnalyses(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = s.ListAnalyses(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}
