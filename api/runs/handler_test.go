package runs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/creditlab/riskband/core/analysis/store"
	"github.com/creditlab/riskband/core/model"
)

func seededStore(t *testing.T) store.RunStore {
	t.Helper()
	st, err := store.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	runs := []model.AnalysisRun{
		{ID: "r1", StartedAt: base, Summary: model.DatasetSummary{Name: "apps"},
			Verdict: model.Verdict{Status: model.VerdictValidated}},
		{ID: "r2", StartedAt: base.Add(time.Hour), Summary: model.DatasetSummary{Name: "apps"},
			Verdict: model.Verdict{Status: model.VerdictRejected}},
		{ID: "r3", StartedAt: base.Add(2 * time.Hour), Summary: model.DatasetSummary{Name: "loans"},
			Verdict: model.Verdict{Status: model.VerdictValidated}},
	}
	for _, r := range runs {
		if err := st.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return st
}

func TestListRuns(t *testing.T) {
	router := NewRouter(seededStore(t), "")
	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got []model.AnalysisRun
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 3 || got[0].ID != "r3" {
		t.Fatalf("unexpected runs %+v", got)
	}
}

func TestListRunsFilters(t *testing.T) {
	router := NewRouter(seededStore(t), "")
	req := httptest.NewRequest(http.MethodGet, "/api/runs?dataset=apps&verdict=rejected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var got []model.AnalysisRun
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r2" {
		t.Fatalf("filter failed: %+v", got)
	}
}

func TestListRunsTimeWindow(t *testing.T) {
	router := NewRouter(seededStore(t), "")
	req := httptest.NewRequest(http.MethodGet,
		"/api/runs?start=2026-02-01T09:30:00Z&end=2026-02-01T10:30:00Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var got []model.AnalysisRun
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r2" {
		t.Fatalf("time filter failed: %+v", got)
	}
}

func TestListRunsBadParams(t *testing.T) {
	router := NewRouter(seededStore(t), "")
	for _, url := range []string{
		"/api/runs?start=yesterday",
		"/api/runs?verdict=excellent",
		"/api/runs?limit=-1",
	} {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", url, rec.Code)
		}
	}
}

func TestLatestRun(t *testing.T) {
	router := NewRouter(seededStore(t), "")
	req := httptest.NewRequest(http.MethodGet, "/api/runs/latest?dataset=apps", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got model.AnalysisRun
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "r2" {
		t.Fatalf("latest apps run should be r2, got %s", got.ID)
	}
}

func TestLatestRunEmptyStore(t *testing.T) {
	st, err := store.NewJSONLStore(filepath.Join(t.TempDir(), "runs.jsonl"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	router := NewRouter(st, "")
	req := httptest.NewRequest(http.MethodGet, "/api/runs/latest", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	router := NewRouter(seededStore(t), "sekret")

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d", rec.Code)
	}
}
