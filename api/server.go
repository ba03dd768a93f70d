// Package api exposes the analysis pipeline and report store over
// HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/fairway-data/swing.report/internal/analysis"
	"github.com/fairway-data/swing.report/internal/metrics"
	"github.com/fairway-data/swing.report/internal/pose"
	"github.com/fairway-data/swing.report/internal/report"
	"github.com/fairway-data/swing.report/internal/scoring"
)

// maxRequestBytes bounds analyze request bodies; a few thousand frames
// of landmarks fit comfortably.
const maxRequestBytes = 32 << 20

// AnalyzeRequest is the POST /api/analyze body: a captured frame
// sequence plus per-run options. Empty option fields auto-detect.
type AnalyzeRequest struct {
	FPS    float64            `json:"fps"`
	Frames []pose.FrameRecord `json:"frames"`

	Handedness      string `json:"handedness,omitempty"`
	Club            string `json:"club,omitempty"`
	View            string `json:"view,omitempty"`
	SmoothRotations bool   `json:"smooth_rotations,omitempty"`
	RefinePlane     bool   `json:"refine_plane,omitempty"`

	// Persist stores the resulting report; the response then carries
	// the assigned report ID.
	Persist bool   `json:"persist,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Server routes swing analysis requests.
type Server struct {
	analyzer *analysis.Analyzer
	store    *report.Store
}

// NewServer creates a Server. store may be nil; persistence endpoints
// then answer 503.
func NewServer(analyzer *analysis.Analyzer, store *report.Store) *Server {
	return &Server{
		analyzer: analyzer,
		store:    store,
	}
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("Welcome to the Swing Report Server!"))
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", s.analyzeHandler)
	mux.HandleFunc("/api/reports", s.listReports)
	mux.HandleFunc("/api/reports/", s.reportByID)
	mux.HandleFunc("/api/profiles", s.listProfiles)
	mux.HandleFunc("/", s.homeHandler)
	return mux
}

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if len(req.Frames) == 0 {
		http.Error(w, "Request has no frames", http.StatusBadRequest)
		return
	}

	seq := pose.NewSequence(req.Frames, req.FPS)
	rep, err := s.analyzer.Analyze(seq, analysis.Options{
		Handedness:      metrics.Handedness(strings.ToLower(req.Handedness)),
		Club:            metrics.ClubClass(strings.ToLower(req.Club)),
		View:            scoring.View(strings.ToLower(req.View)),
		SmoothRotations: req.SmoothRotations,
		RefinePlane:     req.RefinePlane,
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("Analysis failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	rec := report.NewRecord(rep, req.Source)
	if req.Persist {
		if s.store == nil {
			http.Error(w, "Report store unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := s.store.Insert(rec); err != nil {
			log.Printf("persist report: %v", err)
			http.Error(w, "Failed to persist report", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, rec)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		http.Error(w, "Report store unavailable", http.StatusServiceUnavailable)
		return
	}

	recs, err := s.store.List()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to list reports: %v", err), http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []*report.Record{}
	}
	writeJSON(w, recs)
}

func (s *Server) reportByID(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "Report store unavailable", http.StatusServiceUnavailable)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Invalid report ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := s.store.Get(id)
		if err != nil {
			if errors.Is(err, report.ErrNotFound) {
				http.Error(w, "Report not found", http.StatusNotFound)
				return
			}
			http.Error(w, fmt.Sprintf("Failed to load report: %v", err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, rec)
	case http.MethodDelete:
		if err := s.store.Delete(id); err != nil {
			if errors.Is(err, report.ErrNotFound) {
				http.Error(w, "Report not found", http.StatusNotFound)
				return
			}
			http.Error(w, fmt.Sprintf("Failed to delete report: %v", err), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	profiles := make(map[string]scoring.Profile)
	for _, club := range []metrics.ClubClass{metrics.ClubDriver, metrics.ClubIron, metrics.ClubWedge} {
		for _, view := range []scoring.View{scoring.ViewLateral, scoring.ViewFrontal} {
			p := scoring.ProfileFor(club, view)
			profiles[p.Name] = p
		}
	}
	writeJSON(w, profiles)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
