package api

import (
	"github.com/tatami-dev/tatami/internal/domain"
)

// Request DTOs

type CreateBoardRequest struct {
	Code          string `json:"code" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description" validate:"required"`
	MaxThreads    int    `json:"max_threads" validate:"required,gt=0"`
	MaxReplies    int    `json:"max_replies" validate:"gte=0"`
	MaxImgReplies int    `json:"max_img_replies" validate:"gte=0"`
	MaxComLen     int    `json:"max_com_len" validate:"required,gt=0"`
	MaxSubLen     int    `json:"max_sub_len" validate:"required,gt=0"`
	MaxFileSize   int64  `json:"max_file_size" validate:"required,gt=0"`
	IsNSFW        bool   `json:"is_nsfw"`
}

// Response DTOs

type BoardResponse struct {
	domain.Board
}

type BoardListResponse struct {
	Boards []BoardResponse `json:"boards"`
}
