package service

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pipeintegrity/fatigue-core/pkg/config"
	"github.com/pipeintegrity/fatigue-core/pkg/logger"
)

// HTTPServer exposes study submission and retrieval. Configurations are
// posted as YAML payloads, results returned as JSON.
type HTTPServer struct {
	mux      *http.ServeMux
	store    *StudyStore
	Executor *StudyExecutor
}

func NewHTTPServer(store *StudyStore, executor *StudyExecutor) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/studies", s.handleStudies)
	s.mux.HandleFunc("/v1/studies/", s.handleStudyByID)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStudies handles /v1/studies: POST submits a YAML configuration and
// starts it, GET lists study records.
func (s *HTTPServer) handleStudies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateStudy(w, r)
	case http.MethodGet:
		s.handleListStudies(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleStudyByID handles /v1/studies/{id}, /v1/studies/{id}:stop and
// /v1/studies/{id}/result.
func (s *HTTPServer) handleStudyByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/studies/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "study ID is required")
		return
	}

	if strings.HasSuffix(path, ":stop") {
		id := strings.TrimSuffix(path, ":stop")
		if r.Method == http.MethodPost {
			s.handleStopStudy(w, r, id)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if strings.HasSuffix(path, "/result") {
		id := strings.TrimSuffix(path, "/result")
		if r.Method == http.MethodGet {
			s.handleStudyResult(w, r, id)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if r.Method == http.MethodGet {
		s.handleGetStudy(w, r, path)
	} else {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCreateStudy handles POST /v1/studies
func (s *HTTPServer) handleCreateStudy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	cfg, err := config.ParseConfigYAML(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	studyCfg, err := cfg.StudyConfig()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := s.store.Create("", studyCfg)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.Executor.Start(entry.Record.ID); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("study created (HTTP)", "study_id", entry.Record.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"study": entry.Record,
	})
}

// handleListStudies handles GET /v1/studies
func (s *HTTPServer) handleListStudies(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"studies": s.store.List(limit),
	})
}

// handleGetStudy handles GET /v1/studies/{id}
func (s *HTTPServer) handleGetStudy(w http.ResponseWriter, r *http.Request, id string) {
	entry, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "study not found: "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"study": entry.Record,
	})
}

// handleStudyResult handles GET /v1/studies/{id}/result
func (s *HTTPServer) handleStudyResult(w http.ResponseWriter, r *http.Request, id string) {
	entry, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "study not found: "+id)
		return
	}
	if entry.Result == nil {
		s.writeError(w, http.StatusConflict, "study has no result yet: "+id)
		return
	}
	payload := map[string]any{
		"study":      entry.Record,
		"completed":  entry.Result.Completed,
		"failed":     entry.Result.Failed,
		"skipped":    entry.Result.Skipped,
		"incomplete": entry.Result.Incomplete,
		"aggregates": entry.Result.Aggregates,
	}
	if entry.Result.Mitigation != nil {
		payload["mitigation"] = entry.Result.Mitigation
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// handleStopStudy handles POST /v1/studies/{id}:stop
func (s *HTTPServer) handleStopStudy(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.Executor.Stop(id); err != nil {
		switch {
		case strings.Contains(err.Error(), "not found"):
			s.writeError(w, http.StatusNotFound, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	entry, _ := s.store.Get(id)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"study": entry.Record,
	})
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"error": msg})
}
