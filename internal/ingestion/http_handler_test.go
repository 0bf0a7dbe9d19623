package ingestion

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/richarq/admetrics/internal/domain"
)

func newHandlerMux(t *testing.T, dataDir string) (*http.ServeMux, *serviceFixture) {
	t.Helper()
	fixture := newServiceFixture(t, dataDir)
	mux := http.NewServeMux()
	NewHTTPHandler(fixture.service).Register(mux)
	return mux, fixture
}

func TestHandlerIngestAll(t *testing.T) {
	dir := t.TempDir()
	writeIntakeFile(t, dir, "google_ads.csv", googleIntakePayload(
		"Brand Search\tHabilitada\t120\t4500\t2.67%\t1.25\t150.00\t8.5",
	))

	mux, _ := newHandlerMux(t, dir)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest?tenant=richarq", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var results []Result
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(results) != 1 || results[0].CampaignsCreated != 1 {
		t.Errorf("results = %+v", results)
	}
	if !strings.Contains(rec.Body.String(), `"errors": []`) {
		t.Errorf("clean summary must serialize errors as [], got %s", rec.Body.String())
	}
}

func TestHandlerIngestPlatform(t *testing.T) {
	dir := t.TempDir()
	writeIntakeFile(t, dir, "facebook_export.csv", metaIntakePayload(
		"Awareness Push,2025-09-15,120.50,50000,340",
	))

	mux, _ := newHandlerMux(t, dir)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ingest/meta?tenant=richarq", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var result Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.FileName != "facebook_export.csv" {
		t.Errorf("result = %+v", result)
	}
}

func TestHandlerLogs(t *testing.T) {
	mux, fixture := newHandlerMux(t, t.TempDir())
	fixture.logs.entries = []domain.IngestionLogEntry{{
		TenantID:     fixture.tenant.ID,
		Platform:     domain.PlatformGoogleAds,
		FileName:     "google_ads.csv",
		ErrorMessage: "connection reset",
	}}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logs?tenant=richarq", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var entries []domain.IngestionLogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(entries) != 1 || entries[0].ErrorMessage != "connection reset" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestHandlerMissingTenant(t *testing.T) {
	mux, _ := newHandlerMux(t, t.TempDir())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerUnknownTenantIsNotFound(t *testing.T) {
	mux, _ := newHandlerMux(t, t.TempDir())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats?tenant=missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
