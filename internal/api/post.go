package api

import (
	"github.com/tatami-dev/tatami/internal/domain"
)

// Request DTOs

// CreatePostRequest is the "json" part of a multipart post submission. The
// attachment, if any, travels in the "media" file part of the same form.
type CreatePostRequest struct {
	Alias     *string `json:"alias,omitempty"`
	Subject   *string `json:"subject,omitempty"`
	Body      *string `json:"body,omitempty"`
	MediaDesc *string `json:"media_desc,omitempty"`
}

// Response DTOs

type PostResponse struct {
	domain.Comment
}

type ThreadSummaryResponse struct {
	domain.ThreadSummary
}

type ThreadListResponse struct {
	domain.Board
	Threads []ThreadSummaryResponse `json:"threads"`
}

type ThreadResponse struct {
	Root    domain.Comment
	Replies []domain.Comment
}
