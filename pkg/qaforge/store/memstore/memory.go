// Package memstore is an in-memory implementation of store.Store for
// tests and one-shot runs that do not need a database file.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognidoc/qaforge/pkg/qaforge/store"
)

// Store is an in-memory store.Store.
type Store struct {
	mu       sync.RWMutex
	runs     map[string]store.Run
	verdicts map[string]map[string]store.Verdict // run id -> entry id -> verdict
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		runs:     make(map[string]store.Run),
		verdicts: make(map[string]map[string]store.Verdict),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

func (s *Store) CreateRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[r.ID]; ok {
		return fmt.Errorf("memstore: run %s already exists", r.ID)
	}
	s.runs[r.ID] = r
	return nil
}

func (s *Store) FinishRun(ctx context.Context, id string, finishedAt time.Time, total, passed, rejected int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return fmt.Errorf("memstore: finish run %s: no such run", id)
	}
	r.FinishedAt = finishedAt
	r.Total = total
	r.Passed = passed
	r.Rejected = rejected
	s.runs[id] = r
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.runs[id]
	return r, ok, nil
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 20
	}
	runs := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runs = append(runs, r)
	}
	// ULIDs sort newest-first in reverse lexical order
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *Store) UpsertVerdict(ctx context.Context, v store.Verdict) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.verdicts[v.RunID]
	if !ok {
		m = make(map[string]store.Verdict)
		s.verdicts[v.RunID] = m
	}
	m[v.EntryID] = copyVerdict(v)
	return nil
}

func (s *Store) GetVerdict(ctx context.Context, runID, entryID string) (store.Verdict, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verdicts[runID][entryID]
	if !ok {
		return store.Verdict{}, false, nil
	}
	return copyVerdict(v), true, nil
}

func (s *Store) GetVerdicts(ctx context.Context, runID string) ([]store.Verdict, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.verdicts[runID]
	verdicts := make([]store.Verdict, 0, len(m))
	for _, v := range m {
		verdicts = append(verdicts, copyVerdict(v))
	}
	sort.Slice(verdicts, func(i, j int) bool { return verdicts[i].EntryID < verdicts[j].EntryID })
	return verdicts, nil
}

func copyVerdict(v store.Verdict) store.Verdict {
	v.Reasons = append([]string(nil), v.Reasons...)
	v.Warnings = append([]string(nil), v.Warnings...)
	return v
}
