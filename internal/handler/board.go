package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tatami-dev/tatami/internal/api"
	"github.com/tatami-dev/tatami/internal/domain"
	"github.com/tatami-dev/tatami/internal/utils"
)

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var body api.CreateBoardRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	board, err := h.boards.Create(r.Context(), domain.BoardCreationData{
		Code:          body.Code,
		Name:          body.Name,
		Description:   body.Description,
		MaxThreads:    body.MaxThreads,
		MaxReplies:    body.MaxReplies,
		MaxImgReplies: body.MaxImgReplies,
		MaxComLen:     body.MaxComLen,
		MaxSubLen:     body.MaxSubLen,
		MaxFileSize:   body.MaxFileSize,
		IsNSFW:        body.IsNSFW,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.BoardResponse{Board: board})
}

func (h *Handler) GetBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := h.boards.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response := api.BoardListResponse{Boards: make([]api.BoardResponse, len(boards))}
	for i, board := range boards {
		response.Boards[i] = api.BoardResponse{Board: board}
	}
	writeJSON(w, response)
}

// GetBoard returns the board with its threads in bump-descending order.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "board")

	board, err := h.boards.Get(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	threads, err := h.threads.List(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	response := api.ThreadListResponse{Board: board, Threads: make([]api.ThreadSummaryResponse, len(threads))}
	for i, thread := range threads {
		response.Threads[i] = api.ThreadSummaryResponse{ThreadSummary: thread}
	}
	writeJSON(w, response)
}
