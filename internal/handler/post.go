package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tatami-dev/tatami/internal/api"
	"github.com/tatami-dev/tatami/internal/domain"
	internal_errors "github.com/tatami-dev/tatami/internal/errors"
	"github.com/tatami-dev/tatami/internal/utils"
)

// multipartMemory bounds how much of a parsed form stays in memory before
// spilling to temp files.
const multipartMemory = 1 << 20

// parsePost extracts the "json" payload and the optional "media" file from
// a multipart submission. The returned cleanup closes the upload.
func (h *Handler) parsePost(w http.ResponseWriter, r *http.Request) (api.CreatePostRequest, *domain.MediaUpload, func(), error) {
	var body api.CreatePostRequest
	noop := func() {}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return body, nil, noop, &internal_errors.ErrorWithStatusCode{
				Message:    "Upload exceeds the request size limit",
				StatusCode: http.StatusRequestEntityTooLarge,
			}
		}
		return body, nil, noop, &internal_errors.ErrorWithStatusCode{
			Message:    "Invalid multipart form",
			StatusCode: http.StatusBadRequest,
		}
	}

	payload := r.FormValue("json")
	if payload == "" {
		return body, nil, noop, &internal_errors.ErrorWithStatusCode{
			Message:    "Missing json payload in multipart form",
			StatusCode: http.StatusBadRequest,
		}
	}
	if err := utils.DecodeValidate(strings.NewReader(payload), &body); err != nil {
		return body, nil, noop, err
	}

	files := r.MultipartForm.File["media"]
	if len(files) == 0 {
		return body, nil, noop, nil
	}
	if len(files) > 1 {
		return body, nil, noop, &internal_errors.ErrorWithStatusCode{
			Message:    "A post carries at most one attachment",
			StatusCode: http.StatusBadRequest,
		}
	}

	header := files[0]
	file, err := header.Open()
	if err != nil {
		return body, nil, noop, err
	}

	base := filepath.Base(header.Filename)
	upload := &domain.MediaUpload{
		FileName:     strings.TrimSuffix(base, filepath.Ext(base)),
		DeclaredSize: header.Size,
		Description:  body.MediaDesc,
		Data:         file,
	}
	return body, upload, func() { file.Close() }, nil
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request, op *domain.CommentId) {
	body, upload, cleanup, err := h.parsePost(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.posts.Admit(r.Context(), domain.PostCreationData{
		Board:   chi.URLParam(r, "board"),
		Op:      op,
		Alias:   body.Alias,
		Subject: body.Subject,
		Body:    body.Body,
		Media:   upload,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.PostResponse{Comment: comment})
}

// CreateThread admits a thread-starting post.
func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	h.createPost(w, r, nil)
}

// CreateReply admits a reply into an existing thread.
func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	id, err := threadParam(r)
	if err != nil {
		http.Error(w, "invalid thread id: must be an integer", http.StatusBadRequest)
		return
	}
	h.createPost(w, r, &id)
}
