package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/luminsql/lumin/internal/audit"
	"github.com/luminsql/lumin/pkg/analysis"
	"github.com/luminsql/lumin/pkg/dialect"
)

// analyzeRequest is the POST /v1/analyze request body.
type analyzeRequest struct {
	SQL     string `json:"sql"`
	Dialect string `json:"dialect,omitempty"`
	User    string `json:"user,omitempty"`
	Schema  string `json:"schema,omitempty"`
}

// analyzeResponse is the POST /v1/analyze response body.
type analyzeResponse struct {
	OK                bool               `json:"ok"`
	Explain           bool               `json:"explain,omitempty"`
	Error             string             `json:"error,omitempty"`
	MissingObjects    []string           `json:"missingObjects,omitempty"`
	AccessEvents      []accessEvent      `json:"accessEvents,omitempty"`
	PrivilegeRequests []privilegeRequest `json:"privilegeRequests,omitempty"`
	AuditID           string             `json:"auditId,omitempty"`
}

type accessEvent struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Privilege string `json:"privilege"`
}

type privilegeRequest struct {
	Object    string `json:"object"`
	Privilege string `json:"privilege"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDialects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"dialects": dialect.List()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SQL == "" {
		writeError(w, http.StatusBadRequest, "sql is required")
		return
	}

	dialectName := req.Dialect
	if dialectName == "" {
		dialectName = s.dialect
	}
	d, ok := dialect.Get(dialectName)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown dialect: "+dialectName)
		return
	}

	qctx := analysis.QueryContext{User: req.User, DefaultSchema: req.Schema}
	report, err := analysis.AnalyzeSQL(r.Context(), req.SQL, s.catalog, d, qctx, s.authz)
	if err != nil {
		// Parse failure: the statement never reached analysis.
		writeJSON(w, http.StatusUnprocessableEntity, analyzeResponse{Error: err.Error()})
		return
	}

	resp := analyzeResponse{
		OK:             report.OK(),
		Explain:        report.Explain,
		MissingObjects: report.MissingObjects,
	}
	if report.Err != nil {
		resp.Error = report.Err.Error()
	}
	for _, ev := range report.AccessEvents {
		resp.AccessEvents = append(resp.AccessEvents, accessEvent{
			Name:      ev.Name,
			Type:      string(ev.Type),
			Privilege: string(ev.Privilege),
		})
	}
	for _, pr := range report.PrivilegeRequests {
		resp.PrivilegeRequests = append(resp.PrivilegeRequests, privilegeRequest{
			Object:    pr.Object,
			Privilege: string(pr.Privilege),
		})
	}

	if s.store != nil {
		rec := &audit.Record{
			User:              req.User,
			Dialect:           d.Name,
			SQL:               req.SQL,
			OK:                report.OK(),
			Error:             resp.Error,
			AccessEvents:      report.AccessEvents,
			PrivilegeRequests: report.PrivilegeRequests,
			MissingObjects:    report.MissingObjects,
		}
		id, err := s.store.RecordAnalysis(r.Context(), rec)
		if err != nil {
			s.logger.Error("failed to record analysis", "error", err)
		} else {
			resp.AuditID = id
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "audit persistence is disabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	recs, err := s.store.ListAnalyses(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": recs})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "audit persistence is disabled")
		return
	}

	rec, err := s.store.GetAnalysis(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, audit.ErrNotFound) {
		writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
