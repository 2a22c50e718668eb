package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cedarstats/regstats/internal/cache"
	"github.com/cedarstats/regstats/internal/database"
	"github.com/cedarstats/regstats/internal/regstats"
)

// stubSource serves fixed tables regardless of filter.
type stubSource struct {
	sections    []database.Section
	enrollments []database.Enrollment
}

func (s *stubSource) GetSections(f database.Filter) ([]database.Section, error) {
	return s.sections, nil
}

func (s *stubSource) GetEnrollments(f database.Filter) ([]database.Enrollment, error) {
	return s.enrollments, nil
}

func testServer(t *testing.T, store regstats.CacheStore) *Server {
	t.Helper()
	source := &stubSource{
		sections: []database.Section{
			{Campus: "ABQ", College: "AS", Term: "202510", SubjectCourse: "MATH 1220", Available: 2, Capacity: 30, WaitlistCount: 12},
		},
	}
	engine := regstats.New(source, store, regstats.DefaultThresholds(), regstats.DefaultTierBounds)
	return New(engine)
}

func TestHealth(t *testing.T) {
	srv := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegStatsReturnsBundle(t *testing.T) {
	srv := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/regstats?term=202510", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var bundle regstats.Bundle
	if err := json.Unmarshal(rec.Body.Bytes(), &bundle); err != nil {
		t.Fatalf("decoding bundle: %v", err)
	}
	if len(bundle.Waits) != 1 {
		t.Errorf("expected 1 wait anomaly, got %d", len(bundle.Waits))
	}
	if bundle.CacheInfo.CustomThresholds {
		t.Error("expected default thresholds run")
	}
}

func TestRegStatsBadThresholdParam(t *testing.T) {
	srv := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/regstats?min_wait=lots", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestThresholdParamsBypassCache(t *testing.T) {
	store := cache.NewMemStore(time.Hour)
	srv := testServer(t, store)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/regstats?min_wait=3", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var bundle regstats.Bundle
		if err := json.Unmarshal(rec.Body.Bytes(), &bundle); err != nil {
			t.Fatalf("decoding bundle: %v", err)
		}
		if !bundle.CacheInfo.CustomThresholds {
			t.Error("expected custom thresholds flag")
		}
		if bundle.CacheInfo.FromCache {
			t.Error("custom-threshold run must never come from cache")
		}
		if bundle.Thresholds.MinWait != 3 {
			t.Errorf("expected effective min_wait 3, got %d", bundle.Thresholds.MinWait)
		}
	}

	if store.Puts != 0 || store.Len() != 0 {
		t.Errorf("custom-threshold runs must never write the cache: puts=%d len=%d", store.Puts, store.Len())
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary regstats.TieredSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
}
