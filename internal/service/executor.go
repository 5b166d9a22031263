package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pipeintegrity/fatigue-core/internal/study"
	"github.com/pipeintegrity/fatigue-core/pkg/logger"
	"github.com/pipeintegrity/fatigue-core/pkg/models"
)

var (
	ErrStudyNotFound  = errors.New("study not found")
	ErrStudyTerminal  = errors.New("study is terminal")
	ErrStudyIDMissing = errors.New("study id is required")
)

// StudyExecutor manages asynchronous study execution and per-study
// cancellation.
type StudyExecutor struct {
	store *StudyStore

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	done    sync.WaitGroup
}

func NewStudyExecutor(store *StudyStore) *StudyExecutor {
	return &StudyExecutor{
		store:   store,
		cancels: make(map[string]context.CancelFunc),
	}
}

// Start begins executing a pending study asynchronously.
func (e *StudyExecutor) Start(id string) error {
	if id == "" {
		return ErrStudyIDMissing
	}

	entry, ok := e.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrStudyNotFound, id)
	}
	switch entry.Record.Status {
	case models.StatusRunning:
		return nil
	case models.StatusCompleted, models.StatusFailed, models.StatusStopped:
		return fmt.Errorf("%w: %s", ErrStudyTerminal, id)
	}

	if err := e.store.SetStatus(id, models.StatusRunning, ""); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[id]; exists {
		old()
	}
	e.cancels[id] = cancel
	e.mu.Unlock()

	e.done.Add(1)
	go e.runStudy(ctx, id, entry.Config)
	return nil
}

// Stop requests cooperative cancellation of a running study. In-flight
// samples finish; the study lands as stopped with a partial result.
func (e *StudyExecutor) Stop(id string) error {
	if id == "" {
		return ErrStudyIDMissing
	}
	if _, ok := e.store.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrStudyNotFound, id)
	}

	e.mu.Lock()
	cancel, ok := e.cancels[id]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

// Wait blocks until all started studies have finished. Used on shutdown
// and in tests.
func (e *StudyExecutor) Wait() {
	e.done.Wait()
}

func (e *StudyExecutor) cleanup(id string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[id]; ok {
		cancel()
		delete(e.cancels, id)
	}
	e.mu.Unlock()
	e.done.Done()
}

func (e *StudyExecutor) runStudy(ctx context.Context, id string, cfg study.Config) {
	defer e.cleanup(id)
	log := logger.With("study_id", id)

	runner, err := study.New(cfg)
	if err != nil {
		log.Error("study configuration rejected", "error", err)
		_ = e.store.SetStatus(id, models.StatusFailed, err.Error())
		return
	}

	res, err := runner.Run(ctx)
	if err != nil {
		log.Error("study failed", "error", err)
		_ = e.store.SetStatus(id, models.StatusFailed, err.Error())
		return
	}

	if err := e.store.SetResult(id, res); err != nil {
		log.Error("failed to store result", "error", err)
		_ = e.store.SetStatus(id, models.StatusFailed, err.Error())
		return
	}

	status := models.StatusCompleted
	if res.Incomplete {
		status = models.StatusStopped
	}
	_ = e.store.SetStatus(id, status, "")
	log.Info("study stored", "status", string(status), "completed", res.Completed, "failed", res.Failed)
}
