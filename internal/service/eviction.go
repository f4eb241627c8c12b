package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tatami-dev/tatami/internal/domain"
	internal_errors "github.com/tatami-dev/tatami/internal/errors"
	"github.com/tatami-dev/tatami/internal/logger"
)

// EvictionStorage defines the store operations capacity enforcement needs.
type EvictionStorage interface {
	CountThreads(ctx context.Context, board domain.BoardCode) (int, error)
	OldestBumpedThread(ctx context.Context, board domain.BoardCode) (domain.CommentId, error)
	DeleteThread(ctx context.Context, board domain.BoardCode, root domain.CommentId) ([]string, error)
}

// EvictionStats tracks what a single enforcement pass did.
type EvictionStats struct {
	RunAt          time.Time
	ThreadsDeleted int
	DurationMs     int64
}

// Evictor enforces max_threads per board by deleting the least-recently-
// bumped thread (and its replies) until the board is back at or under its
// cap. Deletion of the victim's media objects is left to the caller: the
// returned object names let the caller discard them after releasing any
// critical section.
type Evictor struct {
	storage EvictionStorage
	clock   Clock
}

func NewEvictor(storage EvictionStorage, clock Clock) *Evictor {
	return &Evictor{storage: storage, clock: clock}
}

// EvictOverflow runs one enforcement pass. Normal one-at-a-time admission
// evicts at most one thread, but the loop keeps the invariant under batch
// scenarios too. A single failed deletion is retried once; a persistent
// failure flags the board over capacity and is returned to the caller so
// the triggering insert is not rolled back silently.
func (e *Evictor) EvictOverflow(ctx context.Context, board domain.Board) (EvictionStats, []string, error) {
	stats := EvictionStats{RunAt: e.clock.Now()}
	start := time.Now()
	defer func() {
		stats.DurationMs = time.Since(start).Milliseconds()
	}()

	var orphaned []string
	for {
		count, err := e.storage.CountThreads(ctx, board.Code)
		if err != nil {
			return stats, orphaned, fmt.Errorf("failed to count threads on %s: %w", board.Code, err)
		}
		if count <= board.MaxThreads {
			return stats, orphaned, nil
		}

		victim, err := e.storage.OldestBumpedThread(ctx, board.Code)
		if err != nil {
			if errors.Is(err, internal_errors.NotFound) {
				// nothing left to evict; counts and roots disagree transiently
				return stats, orphaned, nil
			}
			return stats, orphaned, fmt.Errorf("failed to pick eviction victim on %s: %w", board.Code, err)
		}

		objects, err := e.storage.DeleteThread(ctx, board.Code, victim)
		if err != nil && !errors.Is(err, internal_errors.NotFound) {
			// one retry before flagging the board
			objects, err = e.storage.DeleteThread(ctx, board.Code, victim)
		}
		if err != nil {
			if errors.Is(err, internal_errors.NotFound) {
				// someone else deleted it; re-check the count
				continue
			}
			boardsOverCapacity.Inc()
			logger.Log.Error("eviction failed, board transiently over capacity",
				"board", board.Code, "thread", victim, "error", err)
			return stats, orphaned, fmt.Errorf("failed to evict thread %d on %s: %w", victim, board.Code, err)
		}

		orphaned = append(orphaned, objects...)
		stats.ThreadsDeleted++
		threadsEvictedTotal.WithLabelValues(board.Code).Inc()
		logger.Log.Info("evicted least-recently-bumped thread",
			"board", board.Code, "thread", victim)
	}
}
