package service

import (
	"context"
	"errors"

	"github.com/tatami-dev/tatami/internal/domain"
	internal_errors "github.com/tatami-dev/tatami/internal/errors"
	"github.com/tatami-dev/tatami/internal/logger"
)

type ThreadStorage interface {
	GetComment(ctx context.Context, id domain.CommentId) (domain.Comment, error)
	ListThreads(ctx context.Context, board domain.BoardCode) ([]domain.ThreadSummary, error)
	ListReplies(ctx context.Context, root domain.CommentId) ([]domain.Comment, error)
	DeleteThread(ctx context.Context, board domain.BoardCode, root domain.CommentId) ([]string, error)
}

// Threads is the read side plus explicit (moderation) deletion. Admission
// lives in Poster.
type Threads struct {
	storage ThreadStorage
	media   ByteStore
}

func NewThreads(storage ThreadStorage, media ByteStore) *Threads {
	return &Threads{storage: storage, media: media}
}

// List returns the board's threads in bump-descending order.
func (t *Threads) List(ctx context.Context, board domain.BoardCode) ([]domain.ThreadSummary, error) {
	return t.storage.ListThreads(ctx, board)
}

// Get returns a thread root and its replies in creation order.
func (t *Threads) Get(ctx context.Context, board domain.BoardCode, root domain.CommentId) (domain.Comment, []domain.Comment, error) {
	rootComment, err := t.storage.GetComment(ctx, root)
	if err != nil {
		if errors.Is(err, internal_errors.NotFound) {
			return domain.Comment{}, nil, internal_errors.Reject(internal_errors.UnknownThread, "thread does not exist")
		}
		return domain.Comment{}, nil, err
	}
	if rootComment.Board != board || !rootComment.IsRoot() {
		return domain.Comment{}, nil, internal_errors.Reject(internal_errors.UnknownThread, "thread does not exist")
	}

	replies, err := t.storage.ListReplies(ctx, root)
	if err != nil {
		return domain.Comment{}, nil, err
	}
	return rootComment, replies, nil
}

// Delete removes a thread with all its replies and then drops the media
// objects the rows referenced. Object deletion is best effort; leftovers
// are swept by the janitor.
func (t *Threads) Delete(ctx context.Context, board domain.BoardCode, root domain.CommentId) error {
	objects, err := t.storage.DeleteThread(ctx, board, root)
	if err != nil {
		if errors.Is(err, internal_errors.NotFound) {
			return internal_errors.Reject(internal_errors.UnknownThread, "thread does not exist")
		}
		return err
	}
	discardObjects(ctx, t.media, objects)
	return nil
}

func discardObjects(ctx context.Context, store ByteStore, objects []string) {
	for _, name := range objects {
		if err := store.Delete(ctx, name); err != nil {
			logger.Log.Warn("failed to delete media object", "object", name, "error", err)
		}
	}
}
