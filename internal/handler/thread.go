package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tatami-dev/tatami/internal/api"
	"github.com/tatami-dev/tatami/internal/domain"
)

func threadParam(r *http.Request) (domain.CommentId, error) {
	return strconv.ParseInt(chi.URLParam(r, "thread"), 10, 64)
}

// GetThread returns the root and its replies in creation order.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	id, err := threadParam(r)
	if err != nil {
		http.Error(w, "invalid thread id: must be an integer", http.StatusBadRequest)
		return
	}

	root, replies, err := h.threads.Get(r.Context(), board, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, api.ThreadResponse{Root: root, Replies: replies})
}

// DeleteThread is the moderation delete: the thread and every reply go,
// regardless of lock state.
func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "board")
	id, err := threadParam(r)
	if err != nil {
		http.Error(w, "invalid thread id: must be an integer", http.StatusBadRequest)
		return
	}

	if err := h.threads.Delete(r.Context(), board, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
