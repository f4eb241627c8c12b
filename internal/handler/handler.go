package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tatami-dev/tatami/internal/config"
	"github.com/tatami-dev/tatami/internal/domain"
	internal_errors "github.com/tatami-dev/tatami/internal/errors"
	"github.com/tatami-dev/tatami/internal/logger"
)

type BoardService interface {
	Get(ctx context.Context, code domain.BoardCode) (domain.Board, error)
	Create(ctx context.Context, data domain.BoardCreationData) (domain.Board, error)
	List(ctx context.Context) ([]domain.Board, error)
}

type ThreadService interface {
	List(ctx context.Context, board domain.BoardCode) ([]domain.ThreadSummary, error)
	Get(ctx context.Context, board domain.BoardCode, root domain.CommentId) (domain.Comment, []domain.Comment, error)
	Delete(ctx context.Context, board domain.BoardCode, root domain.CommentId) error
}

type PostService interface {
	Admit(ctx context.Context, data domain.PostCreationData) (domain.Comment, error)
}

type MediaReader interface {
	Read(ctx context.Context, name string) (io.ReadCloser, error)
}

type Pinger interface {
	Ping() error
}

type Handler struct {
	boards  BoardService
	threads ThreadService
	posts   PostService
	media   MediaReader
	health  Pinger
	cfg     *config.Public
}

func New(boards BoardService, threads ThreadService, posts PostService, media MediaReader, health Pinger, cfg *config.Public) *Handler {
	return &Handler{boards, threads, posts, media, health, cfg}
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

// writeError maps engine errors onto HTTP. Rejections carry their own
// status code; retryable storage failures are 503 so clients know to retry.
func writeError(w http.ResponseWriter, err error) {
	var rejection *internal_errors.Rejection
	if errors.As(err, &rejection) {
		http.Error(w, rejection.Message, rejection.StatusCode())
		return
	}
	var withCode *internal_errors.ErrorWithStatusCode
	if errors.As(err, &withCode) {
		http.Error(w, withCode.Message, withCode.StatusCode)
		return
	}
	if internal_errors.Is[*internal_errors.StorageError](err) {
		http.Error(w, "Storage unavailable, try again", http.StatusServiceUnavailable)
		return
	}
	if errors.Is(err, internal_errors.NotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	logger.Log.Error("request failed", "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
