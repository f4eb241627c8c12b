package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tatami-dev/tatami/internal/domain"
	"github.com/tatami-dev/tatami/internal/logger"
)

// JanitorStorage defines the store reads the background janitor needs.
type JanitorStorage interface {
	GetBoards(ctx context.Context) ([]domain.Board, error)
	ListMediaObjects(ctx context.Context) (map[string]struct{}, error)
}

// CapacityEnforcer re-runs eviction under the proper board lock.
type CapacityEnforcer interface {
	EnforceCapacity(ctx context.Context, board domain.Board) error
}

// JanitorStats tracks metrics from the last janitor run.
type JanitorStats struct {
	RunAt          time.Time
	BoardsScanned  int
	ObjectsScanned int
	OrphansDeleted int
	DurationMs     int64
	Errors         []string
}

// Janitor is the engine's background reconciler. Each cycle it re-enforces
// thread capacity on every board (recovering boards a failed eviction left
// over capacity) and sweeps byte-store objects no comment references
// (leftovers of crashed admissions).
type Janitor struct {
	storage  JanitorStorage
	enforcer CapacityEnforcer
	bytes    ByteStore

	// an orphan is deleted only when seen in two consecutive runs, so an
	// object ingested just before its comment row lands is never swept
	pending   map[string]struct{}
	lastStats JanitorStats
}

func NewJanitor(storage JanitorStorage, enforcer CapacityEnforcer, bytes ByteStore) *Janitor {
	return &Janitor{
		storage:  storage,
		enforcer: enforcer,
		bytes:    bytes,
		pending:  make(map[string]struct{}),
	}
}

// Start runs cleanup cycles until the context is canceled.
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started janitor", "component", "janitor", "interval", interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := j.Run(ctx); err != nil {
					logger.Log.Error("janitor run failed", "component", "janitor", "error", err)
				} else {
					stats := j.LastStats()
					logger.Log.Info("janitor run completed",
						"component", "janitor",
						"boards_scanned", stats.BoardsScanned,
						"objects_scanned", stats.ObjectsScanned,
						"orphans_deleted", stats.OrphansDeleted,
						"duration_ms", stats.DurationMs,
						"errors", len(stats.Errors))
				}
			case <-ctx.Done():
				logger.Log.Info("janitor shutting down gracefully", "component", "janitor")
				return
			}
		}
	}()
}

// Run executes a single reconciliation cycle. Callable directly for tests
// and maintenance.
func (j *Janitor) Run(ctx context.Context) error {
	startTime := time.Now()
	stats := JanitorStats{RunAt: startTime, Errors: []string{}}

	boards, err := j.storage.GetBoards(ctx)
	if err != nil {
		return fmt.Errorf("failed to get board list: %w", err)
	}
	stats.BoardsScanned = len(boards)

	for _, board := range boards {
		if err := j.enforcer.EnforceCapacity(ctx, board); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("board '%s': %v", board.Code, err))
		}
	}

	if err := j.sweepOrphans(ctx, &stats); err != nil {
		stats.Errors = append(stats.Errors, err.Error())
	}

	stats.DurationMs = time.Since(startTime).Milliseconds()
	j.lastStats = stats
	return nil
}

func (j *Janitor) sweepOrphans(ctx context.Context, stats *JanitorStats) error {
	referenced, err := j.storage.ListMediaObjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list referenced media: %w", err)
	}

	stored, err := j.bytes.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list byte store: %w", err)
	}
	stats.ObjectsScanned = len(stored)

	nextPending := make(map[string]struct{})
	for _, name := range stored {
		if _, ok := referenced[name]; ok {
			continue
		}
		if _, seenBefore := j.pending[name]; !seenBefore {
			nextPending[name] = struct{}{}
			continue
		}
		if err := j.bytes.Delete(ctx, name); err != nil {
			stats.Errors = append(stats.Errors, fmt.Sprintf("delete %s: %v", name, err))
			nextPending[name] = struct{}{}
			continue
		}
		stats.OrphansDeleted++
	}
	j.pending = nextPending
	return nil
}

// LastStats returns statistics from the last run.
func (j *Janitor) LastStats() JanitorStats {
	return j.lastStats
}
