package service

import (
	"context"
	"errors"
	"sync"

	"github.com/tatami-dev/tatami/internal/domain"
	internal_errors "github.com/tatami-dev/tatami/internal/errors"
)

type BoardStorage interface {
	CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error)
	GetBoard(ctx context.Context, code domain.BoardCode) (domain.Board, error)
	GetBoards(ctx context.Context) ([]domain.Board, error)
}

type BoardValidator interface {
	Code(code string) error
	Name(name string) error
	Description(desc string) error
	Limits(data domain.BoardCreationData) error
}

// Registry answers board lookups on the admission hot path. Boards are
// immutable after creation, so a row read once can be cached forever; reads
// take only an RLock.
type Registry struct {
	storage   BoardStorage
	validator BoardValidator

	mu    sync.RWMutex
	cache map[domain.BoardCode]domain.Board
}

func NewRegistry(storage BoardStorage, validator BoardValidator) *Registry {
	return &Registry{
		storage:   storage,
		validator: validator,
		cache:     make(map[domain.BoardCode]domain.Board),
	}
}

func (r *Registry) Get(ctx context.Context, code domain.BoardCode) (domain.Board, error) {
	r.mu.RLock()
	board, ok := r.cache[code]
	r.mu.RUnlock()
	if ok {
		return board, nil
	}

	board, err := r.storage.GetBoard(ctx, code)
	if err != nil {
		if errors.Is(err, internal_errors.NotFound) {
			return domain.Board{}, internal_errors.Reject(internal_errors.UnknownBoard, "board does not exist")
		}
		return domain.Board{}, err
	}

	r.mu.Lock()
	r.cache[code] = board
	r.mu.Unlock()
	return board, nil
}

func (r *Registry) Create(ctx context.Context, data domain.BoardCreationData) (domain.Board, error) {
	if err := r.validator.Code(data.Code); err != nil {
		return domain.Board{}, err
	}
	if err := r.validator.Name(data.Name); err != nil {
		return domain.Board{}, err
	}
	if err := r.validator.Description(data.Description); err != nil {
		return domain.Board{}, err
	}
	if err := r.validator.Limits(data); err != nil {
		return domain.Board{}, err
	}

	board, err := r.storage.CreateBoard(ctx, data)
	if err != nil {
		return domain.Board{}, err
	}

	r.mu.Lock()
	r.cache[board.Code] = board
	r.mu.Unlock()
	return board, nil
}

func (r *Registry) List(ctx context.Context) ([]domain.Board, error) {
	return r.storage.GetBoards(ctx)
}
