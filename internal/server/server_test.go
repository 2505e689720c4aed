package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luminsql/lumin/internal/audit"
	"github.com/luminsql/lumin/internal/server"
	"github.com/luminsql/lumin/internal/testutil"
	"github.com/luminsql/lumin/pkg/analysis"
	"github.com/luminsql/lumin/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, store *audit.Store) http.Handler {
	t.Helper()
	cat := catalog.NewMemory("main")
	cat.Add(&catalog.Table{Name: "orders", Columns: []catalog.Column{{Name: "id", Type: "integer"}}})

	return server.New(server.Config{
		Catalog: cat,
		Store:   store,
		Dialect: "ansi",
		Authz:   analysis.AuthzConfig{Enabled: true, ServerName: "test"},
		Logger:  testutil.NewTestLogger(t),
	}).Handler()
}

func postAnalyze(t *testing.T, h http.Handler, body map[string]any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return rr, resp
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	rr, resp := postAnalyze(t, h, map[string]any{
		"sql": "WITH v AS (SELECT * FROM orders) SELECT * FROM v",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, resp["ok"])

	events := resp["accessEvents"].([]any)
	require.Len(t, events, 1)
	ev := events[0].(map[string]any)
	assert.Equal(t, "main.orders", ev["name"])
	assert.Equal(t, "TABLE", ev["type"])

	reqs := resp["privilegeRequests"].([]any)
	require.Len(t, reqs, 1)
}

func TestAnalyzeEndpointMissingObject(t *testing.T) {
	h := newTestServer(t, nil)

	rr, resp := postAnalyze(t, h, map[string]any{
		"sql": "WITH v AS (SELECT * FROM nope) SELECT * FROM v",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, resp["ok"])
	assert.Contains(t, resp["error"], "nope")
	assert.Equal(t, []any{"nope"}, resp["missingObjects"])
}

func TestAnalyzeEndpointParseError(t *testing.T) {
	h := newTestServer(t, nil)

	rr, resp := postAnalyze(t, h, map[string]any{"sql": "WITH SELECT"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, resp["error"], "parse error")
}

func TestAnalyzeEndpointValidation(t *testing.T) {
	h := newTestServer(t, nil)

	rr, _ := postAnalyze(t, h, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = postAnalyze(t, h, map[string]any{"sql": "SELECT 1", "dialect": "oracle9"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnalyzeEndpointPersistsAudit(t *testing.T) {
	store, err := audit.Open(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := newTestServer(t, store)

	rr, resp := postAnalyze(t, h, map[string]any{
		"sql":  "SELECT * FROM orders",
		"user": "alice",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	auditID, _ := resp["auditId"].(string)
	require.NotEmpty(t, auditID)

	req := httptest.NewRequest(http.MethodGet, "/v1/analyses/"+auditID, nil)
	getRR := httptest.NewRecorder()
	h.ServeHTTP(getRR, req)
	require.Equal(t, http.StatusOK, getRR.Code)

	var rec audit.Record
	require.NoError(t, json.Unmarshal(getRR.Body.Bytes(), &rec))
	assert.Equal(t, "alice", rec.User)
	assert.True(t, rec.OK)
	require.Len(t, rec.AccessEvents, 1)
}

func TestDialectsEndpoint(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/dialects", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp["dialects"], "ansi")
}

func TestGetAnalysisNotFound(t *testing.T) {
	store, err := audit.Open(":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := newTestServer(t, store)

	req := httptest.NewRequest(http.MethodGet, "/v1/analyses/no-such-id", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
