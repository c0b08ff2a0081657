package observer

import (
	"context"
	"sync"
	"time"
)

// RunRecord is one pipeline run as seen by MemoryRunStore.
type RunRecord struct {
	RunID      string
	Name       string
	Outputs    int
	Err        string
	StartedAt  time.Time
	FinishedAt time.Time
}

// MemoryRunStore records pipeline runs in memory. Single-process only; use
// it for monitoring in small deployments and in tests.
type MemoryRunStore struct {
	mu    sync.Mutex
	runs  map[string]*RunRecord
	order []string
}

// NewMemoryRunStore returns an empty store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]*RunRecord)}
}

// RunStarted implements conduit.Observer.
func (s *MemoryRunStore) RunStarted(ctx context.Context, runID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		s.order = append(s.order, runID)
	}
	s.runs[runID] = &RunRecord{RunID: runID, Name: name, StartedAt: time.Now()}
	return nil
}

// OutputEmitted implements conduit.Observer.
func (s *MemoryRunStore) OutputEmitted(ctx context.Context, runID string, index int, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.runs[runID]; ok {
		rec.Outputs++
	}
	return nil
}

// RunFinished implements conduit.Observer.
func (s *MemoryRunStore) RunFinished(ctx context.Context, runID string, result any, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.runs[runID]
	if !ok {
		rec = &RunRecord{RunID: runID}
		s.runs[runID] = rec
		s.order = append(s.order, runID)
	}
	rec.FinishedAt = time.Now()
	if err != nil {
		rec.Err = err.Error()
	}
	return nil
}

// Get returns the record for runID, or false if the run is unknown.
func (s *MemoryRunStore) Get(runID string) (RunRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.runs[runID]
	if !ok {
		return RunRecord{}, false
	}
	return *rec, true
}

// Records returns all records in run-start order.
func (s *MemoryRunStore) Records() []RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RunRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.runs[id])
	}
	return out
}
