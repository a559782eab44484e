package admin_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/podium/internal/adapters/http/admin"
)

type stubStats struct{}

func (stubStats) Stats() map[string]any {
	return map[string]any{"connections_active": 3}
}

type stubRanking struct{ payload string }

func (s stubRanking) RequestRanking(ctx context.Context) string {
	return s.payload
}

func TestHealthzServesMetrics(t *testing.T) {
	srv := admin.NewServer(stubStats{}, stubRanking{})
	mux := http.NewServeMux()
	srv.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected non-empty metrics body")
	}
}

func TestStatsReturnsJSON(t *testing.T) {
	srv := admin.NewServer(stubStats{}, stubRanking{})
	mux := http.NewServeMux()
	srv.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["connections_active"].(float64) != 3 {
		t.Errorf("expected connections_active=3, got %v", body["connections_active"])
	}
}

func TestRankingParsesPayloadIntoRows(t *testing.T) {
	srv := admin.NewServer(stubStats{}, stubRanking{payload: "1,90\n2,50\n"})
	mux := http.NewServeMux()
	srv.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/ranking", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var rows []struct {
		CountryID int32 `json:"country_id"`
		Score     int64 `json:"score"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].CountryID != 1 || rows[0].Score != 90 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
}

func TestRankingMethodNotAllowed(t *testing.T) {
	srv := admin.NewServer(stubStats{}, stubRanking{})
	mux := http.NewServeMux()
	srv.Register(mux)

	req := httptest.NewRequest(http.MethodPost, "/ranking", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for POST /ranking, got %d", rec.Code)
	}
}
