// Package runs exposes stored analysis runs over HTTP.
package runs

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/creditlab/riskband/core/analysis/store"
	"github.com/creditlab/riskband/core/model"
)

// NewRouter wires the run endpoints on an httprouter. Requests must include
// an Authorization header with "Bearer <token>" when token is non-empty.
func NewRouter(st store.RunStore, token string) http.Handler {
	router := httprouter.New()
	router.Handler(http.MethodGet, "/api/runs", NewListHandler(st, token))
	router.Handler(http.MethodGet, "/api/runs/latest", NewLatestHandler(st, token))
	return router
}

// NewListHandler returns an HTTP handler listing runs via GET /api/runs.
// Supported query parameters: start, end (RFC3339), dataset, verdict, limit.
func NewListHandler(st store.RunStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r, token) {
			return
		}
		q, ok := parseQuery(w, r)
		if !ok {
			return
		}
		records, err := st.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []model.AnalysisRun{}
		}
		writeJSON(w, records)
	})
}

// NewLatestHandler returns the most recent run via GET /api/runs/latest.
func NewLatestHandler(st store.RunStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r, token) {
			return
		}
		records, err := st.Query(r.Context(), store.RunQuery{
			Dataset: r.URL.Query().Get("dataset"),
			Limit:   1,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if len(records) == 0 {
			http.Error(w, "no runs recorded", http.StatusNotFound)
			return
		}
		writeJSON(w, records[0])
	})
}

func authorized(w http.ResponseWriter, r *http.Request, token string) bool {
	if token == "" {
		return true
	}
	if r.Header.Get("Authorization") != "Bearer "+token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func parseQuery(w http.ResponseWriter, r *http.Request) (store.RunQuery, bool) {
	q := store.RunQuery{
		Dataset: r.URL.Query().Get("dataset"),
	}
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			http.Error(w, "bad start time", http.StatusBadRequest)
			return q, false
		}
		q.Start = t
	}
	if s := r.URL.Query().Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			http.Error(w, "bad end time", http.StatusBadRequest)
			return q, false
		}
		q.End = t
	}
	if s := r.URL.Query().Get("verdict"); s != "" {
		switch model.VerdictStatus(s) {
		case model.VerdictValidated, model.VerdictMarginal, model.VerdictRejected:
			q.Verdict = model.VerdictStatus(s)
		default:
			http.Error(w, "bad verdict", http.StatusBadRequest)
			return q, false
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return q, false
		}
		q.Limit = n
	}
	return q, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
