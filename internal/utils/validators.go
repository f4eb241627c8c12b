package utils

import (
	"unicode/utf8"

	"github.com/tatami-dev/tatami/internal/domain"
	"github.com/tatami-dev/tatami/internal/errors"
)

type BoardValidator struct{}

func (v *BoardValidator) Code(code string) error {
	n := utf8.RuneCountInString(code)
	if n == 0 || n > 5 {
		return &errors.ErrorWithStatusCode{Message: "Board code must be 1-5 characters", StatusCode: 400}
	}
	return nil
}

func (v *BoardValidator) Name(name string) error {
	n := utf8.RuneCountInString(name)
	if n == 0 || n > 100 {
		return &errors.ErrorWithStatusCode{Message: "Board name must be 1-100 characters", StatusCode: 400}
	}
	return nil
}

func (v *BoardValidator) Description(desc string) error {
	n := utf8.RuneCountInString(desc)
	if n == 0 || n > 100 {
		return &errors.ErrorWithStatusCode{Message: "Board description must be 1-100 characters", StatusCode: 400}
	}
	return nil
}

func (v *BoardValidator) Limits(data domain.BoardCreationData) error {
	if data.MaxThreads < 0 || data.MaxReplies < 0 || data.MaxImgReplies < 0 ||
		data.MaxComLen < 0 || data.MaxSubLen < 0 || data.MaxFileSize < 0 {
		return &errors.ErrorWithStatusCode{Message: "Board limits can't be negative", StatusCode: 400}
	}
	return nil
}
