// Package service exposes study submission, execution and retrieval over
// an in-memory store and an HTTP API.
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pipeintegrity/fatigue-core/internal/study"
	"github.com/pipeintegrity/fatigue-core/pkg/models"
)

// StudyEntry pairs a study record with its configuration and, once
// finished, its result.
type StudyEntry struct {
	Record models.StudyRecord
	Config study.Config
	Result *study.Result
}

// StudyStore is the in-memory study registry. Safe for concurrent use.
type StudyStore struct {
	mu      sync.RWMutex
	studies map[string]*StudyEntry
}

func NewStudyStore() *StudyStore {
	return &StudyStore{
		studies: make(map[string]*StudyEntry),
	}
}

// Create registers a new pending study. An empty id gets a generated UUID.
func (s *StudyStore) Create(id string, cfg study.Config) (*StudyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := s.studies[id]; exists {
		return nil, fmt.Errorf("study already exists: %s", id)
	}

	entry := &StudyEntry{
		Record: models.StudyRecord{
			ID:          id,
			Status:      models.StatusPending,
			SubmittedAt: time.Now().UTC(),
		},
		Config: cfg,
	}
	s.studies[id] = entry
	return entry, nil
}

// Get returns a snapshot of the entry.
func (s *StudyStore) Get(id string) (StudyEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.studies[id]
	if !ok {
		return StudyEntry{}, false
	}
	return *entry, true
}

// List returns up to limit study records.
func (s *StudyStore) List(limit int) []models.StudyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]models.StudyRecord, 0, min(limit, len(s.studies)))
	for _, entry := range s.studies {
		out = append(out, entry.Record)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// SetStatus transitions a study and stamps the transition time.
func (s *StudyStore) SetStatus(id string, status models.StudyStatus, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.studies[id]
	if !ok {
		return fmt.Errorf("study not found: %s", id)
	}

	entry.Record.Status = status
	if errMsg != "" {
		entry.Record.Error = errMsg
	}

	now := time.Now().UTC()
	switch status {
	case models.StatusRunning:
		if entry.Record.StartedAt == nil {
			entry.Record.StartedAt = &now
		}
	case models.StatusCompleted, models.StatusFailed, models.StatusStopped:
		entry.Record.FinishedAt = &now
	}
	return nil
}

// SetResult attaches the completed study result.
func (s *StudyStore) SetResult(id string, res *study.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.studies[id]
	if !ok {
		return fmt.Errorf("study not found: %s", id)
	}
	entry.Result = res
	return nil
}
