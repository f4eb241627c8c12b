package domain

import (
	"time"
)

// to iterate thru layers: handler -> service -> storage
type BoardCreationData struct {
	Code          BoardCode
	Name          string
	Description   string
	MaxThreads    int
	MaxReplies    int
	MaxImgReplies int
	MaxComLen     int
	MaxSubLen     int
	MaxFileSize   int64
	IsNSFW        bool
}

// Board limits are fixed at creation; rows are never mutated afterwards.
type Board struct {
	Code          BoardCode
	Name          string
	Description   string
	MaxThreads    int
	MaxReplies    int
	MaxImgReplies int
	MaxComLen     int
	MaxSubLen     int
	MaxFileSize   int64
	IsNSFW        bool
	CreatedAt     time.Time
}
