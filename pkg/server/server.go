// Package server exposes the incident store and ingestion pipeline over a
// JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"disaster-scout/pkg/brief"
	"disaster-scout/pkg/query"
	"disaster-scout/pkg/scan"
)

// Scanner triggers ingestion runs.
type Scanner interface {
	Scan(ctx context.Context, region, topic string) (*scan.Result, error)
}

// Briefer composes situation briefs.
type Briefer interface {
	Brief(ctx context.Context, region, topic string) (*brief.Summary, error)
}

// Server routes the HTTP API.
type Server struct {
	engine   *query.Engine
	scanner  Scanner
	composer Briefer
	mux      *http.ServeMux
}

// New wires the API routes.
func New(engine *query.Engine, scanner Scanner, composer Briefer) *Server {
	s := &Server{
		engine:   engine,
		scanner:  scanner,
		composer: composer,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/incidents", s.handleIncidents)
	s.mux.HandleFunc("/api/incidents_near", s.handleIncidentsNear)
	s.mux.HandleFunc("/api/brief", s.handleBrief)
	s.mux.HandleFunc("/api/scan", s.handleScan)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// handleIncidents serves GET /api/incidents: a filtered listing as a
// GeoJSON FeatureCollection.
func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	fc, err := s.engine.List(r.Context(), query.ListOptions{
		Region:   q.Get("region"),
		Category: q.Get("category"),
		Status:   q.Get("status"),
		Limit:    intParam(q.Get("limit")),
	})
	if err != nil {
		log.Printf("List incidents failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch incidents")
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// handleIncidentsNear serves GET /api/incidents_near: a radius search.
// lat and lon are required; omitting or mangling them is a client error,
// never a silent default.
func (s *Server) handleIncidentsNear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	lat, err := requiredFloat(q.Get("lat"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat is required and must be a number")
		return
	}
	lon, err := requiredFloat(q.Get("lon"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "lon is required and must be a number")
		return
	}

	radius := float64(query.DefaultRadiusKm)
	if parsed, err := strconv.ParseFloat(q.Get("radius_km"), 64); err == nil && parsed >= 0 {
		radius = parsed
	}

	fc, err := s.engine.Near(r.Context(), query.NearOptions{
		Lat:      lat,
		Lon:      lon,
		RadiusKm: radius,
		Category: q.Get("category"),
		Limit:    intParam(q.Get("limit")),
	})
	if err != nil {
		if errors.Is(err, query.ErrInvalidCoordinates) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Near incidents failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch incidents")
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

// handleBrief serves GET /api/brief: scan, aggregate, and narrate.
func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	region, topic := q.Get("region"), q.Get("topic")
	if region == "" || topic == "" {
		writeError(w, http.StatusBadRequest, "region and topic are required")
		return
	}

	summary, err := s.composer.Brief(r.Context(), region, topic)
	if err != nil {
		log.Printf("Brief failed for %s/%s: %v", region, topic, err)
		writeError(w, http.StatusInternalServerError, "brief failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type scanRequest struct {
	Region string `json:"region"`
	Topic  string `json:"topic"`
}

// handleScan serves POST /api/scan: one ingestion run.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Region == "" || req.Topic == "" {
		writeError(w, http.StatusBadRequest, "region and topic are required")
		return
	}

	result, err := s.scanner.Scan(r.Context(), req.Region, req.Topic)
	if err != nil {
		log.Printf("Scan failed for %s/%s: %v", req.Region, req.Topic, err)
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func intParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func requiredFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("missing")
	}
	return strconv.ParseFloat(raw, 64)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Encode response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
