package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"disaster-scout/pkg/brief"
	"disaster-scout/pkg/domain"
	"disaster-scout/pkg/query"
	"disaster-scout/pkg/scan"
	"disaster-scout/pkg/store"
)

type stubScanner struct {
	result *scan.Result
	region string
	topic  string
}

func (s *stubScanner) Scan(ctx context.Context, region, topic string) (*scan.Result, error) {
	s.region, s.topic = region, topic
	return s.result, nil
}

type stubBriefer struct {
	summary *brief.Summary
}

func (s *stubBriefer) Brief(ctx context.Context, region, topic string) (*brief.Summary, error) {
	return s.summary, nil
}

func newTestServer(t *testing.T) (*Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	in := &domain.Incident{
		URL:          "https://example.com/a",
		Title:        "Flooding downtown",
		Category:     domain.CategoryInfo,
		Region:       "California",
		LocationName: "Sacramento",
		Status:       domain.StatusActive,
		Location:     domain.NewGeoPoint(-121.49, 38.58),
	}
	if err := st.UpsertByURL(context.Background(), in); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	scanner := &stubScanner{result: &scan.Result{ProcessedCount: 2, AddedCount: 1, Message: "ok"}}
	briefer := &stubBriefer{summary: &brief.Summary{
		Region: "California", Topic: "flood", IncidentCount: 1,
		Summary: "brief text", Stats: map[domain.Category]int{domain.CategoryInfo: 1},
	}}
	return New(query.NewEngine(st), scanner, briefer), st
}

func TestHandleIncidents_GeoJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/incidents?region=calif", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var fc domain.FeatureCollection
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Errorf("Unexpected collection: %+v", fc)
	}
	f := fc.Features[0]
	if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) != 2 {
		t.Errorf("Unexpected geometry: %+v", f.Geometry)
	}
	if f.Geometry.Coordinates[0] != -121.49 {
		t.Errorf("Expected [lon, lat] coordinate order, got %v", f.Geometry.Coordinates)
	}
}

func TestHandleIncidentsNear_RequiresLatLon(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{
		"/api/incidents_near",
		"/api/incidents_near?lat=38.5",
		"/api/incidents_near?lon=-121.5",
		"/api/incidents_near?lat=abc&lon=-121.5",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
			t.Errorf("%s: expected JSON error body, got %s", path, rec.Body.String())
		}
	}
}

func TestHandleIncidentsNear_OutOfRangeCoordinates(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/incidents_near?lat=91&lon=0", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for out-of-range lat, got %d", rec.Code)
	}
}

func TestHandleIncidentsNear_ReturnsDistanceOrdered(t *testing.T) {
	srv, st := newTestServer(t)
	far := &domain.Incident{
		URL: "https://example.com/far", Title: "Far event",
		Category: domain.CategoryInfo, Region: "California",
		Status:   domain.StatusActive,
		Location: domain.NewGeoPoint(-121.0, 38.0),
	}
	if err := st.UpsertByURL(context.Background(), far); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/incidents_near?lat=38.58&lon=-121.49&radius_km=200", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var fc domain.FeatureCollection
	if err := json.Unmarshal(rec.Body.Bytes(), &fc); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("Expected 2 features, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["url"] != "https://example.com/a" {
		t.Errorf("Expected nearest feature first, got %v", fc.Features[0].Properties["url"])
	}
	if _, ok := fc.Features[0].Properties["distance_km"]; !ok {
		t.Error("Expected distance_km property on near features")
	}
}

func TestHandleBrief_RequiresRegionAndTopic(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/brief", "/api/brief?region=California", "/api/brief?topic=flood"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}
}

func TestHandleBrief_ReturnsSummary(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/brief?region=California&topic=flood", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var summary brief.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if summary.IncidentCount != 1 || summary.Summary != "brief text" {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

func TestHandleScan(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scan",
		strings.NewReader(`{"region":"California","topic":"flood"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result scan.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if result.ProcessedCount != 2 || result.AddedCount != 1 {
		t.Errorf("Unexpected scan result: %+v", result)
	}
}

func TestHandleScan_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing region", `{"topic":"flood"}`},
		{"missing topic", `{"region":"California"}`},
		{"invalid json", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", rec.Code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET scan, got %d", rec.Code)
	}
}
