// Package store persists inspection runs and per-entry verdicts so that
// successive pipeline passes can be compared after the fact.
package store

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store is the interface for persisting runs and verdicts.
type Store interface {
	Close() error

	// Runs
	CreateRun(ctx context.Context, r Run) error
	FinishRun(ctx context.Context, id string, finishedAt time.Time, total, passed, rejected int) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Verdicts
	UpsertVerdict(ctx context.Context, v Verdict) error
	GetVerdict(ctx context.Context, runID, entryID string) (Verdict, bool, error)
	GetVerdicts(ctx context.Context, runID string) ([]Verdict, error)
}

// Run is one pipeline pass over a dataset.
type Run struct {
	ID         string // ULID
	Kind       string // "inspect", "recover", "verify"
	Dataset    string // input path or label
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Passed     int
	Rejected   int
}

// Verdict is the recorded outcome for one entry in one run.
type Verdict struct {
	RunID    string
	EntryID  string
	Question string
	Category string
	Page     int
	Passed   bool
	Reasons  []string
	Warnings []string
}

var entropy = ulid.Monotonic(rand.Reader, 0)

// NewRunID returns a fresh ULID run id.
func NewRunID() string {
	return ulid.MustNew(ulid.Now(), entropy).String()
}
