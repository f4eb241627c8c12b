package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFound is returned by storage when a row does not exist. Services map it
// to the rejection reason appropriate for the lookup that failed.
var NotFound = errors.New("not found")

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// Reason identifies why a post attempt was turned away. Every reason is a
// rejection of a single attempt, never fatal to the process.
type Reason string

const (
	UnknownBoard      Reason = "unknown_board"
	UnknownThread     Reason = "unknown_thread"
	ForeignOp         Reason = "foreign_op"
	ThreadLocked      Reason = "thread_locked"
	ImageThreadLocked Reason = "image_thread_locked"
	SubjectTooLong    Reason = "subject_too_long"
	BodyTooLong       Reason = "body_too_long"
	AliasTooLong      Reason = "alias_too_long"
	EmptyPost         Reason = "empty_post"
	FileTooLarge      Reason = "file_too_large"
	UnsupportedMedia  Reason = "unsupported_media"
)

type Rejection struct {
	Reason  Reason
	Message string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("post rejected (%s): %s", r.Reason, r.Message)
}

func Reject(reason Reason, message string) *Rejection {
	return &Rejection{Reason: reason, Message: message}
}

// StatusCode maps a rejection onto the transport layer's vocabulary.
func (r *Rejection) StatusCode() int {
	switch r.Reason {
	case UnknownBoard, UnknownThread:
		return http.StatusNotFound
	case ThreadLocked, ImageThreadLocked:
		return http.StatusLocked
	case FileTooLarge:
		return http.StatusRequestEntityTooLarge
	case UnsupportedMedia:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}

// ReasonOf extracts the rejection reason, if err is a rejection.
func ReasonOf(err error) (Reason, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}

// StorageError marks a retryable backend failure (constraint violation,
// byte-store I/O). The triggering post is never half-written when one of
// these surfaces.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage unavailable: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func Storage(err error) *StorageError {
	return &StorageError{Err: err}
}
