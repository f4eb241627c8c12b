package handler

import (
	"bufio"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tatami-dev/tatami/internal/logger"
)

// GetMedia streams a stored object. Content type is sniffed from the first
// bytes; object names carry no extension.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	object, err := h.media.Read(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	defer object.Close()

	buffered := bufio.NewReader(object)
	head, err := buffered.Peek(512)
	if err != nil && err != io.EOF {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(head))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, buffered); err != nil {
		logger.Log.Debug("media stream interrupted", "object", name, "error", err)
	}
}
