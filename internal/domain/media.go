package domain

import "io"

// MediaRecord describes a stored upload. ThumbName/ThumbSize are always
// populated together with MediaName: a comment either has both original
// and thumbnail or neither.
type MediaRecord struct {
	FileName  string
	MediaName string
	MediaSize int64
	MediaExt  string
	MediaDesc *string
	ThumbName string
	ThumbSize int64
}

// MediaUpload carries a not-yet-ingested attachment through the layers.
type MediaUpload struct {
	FileName     string
	DeclaredSize int64
	Description  *string
	Data         io.Reader
}

// PostCreationData is a single post attempt, thread-starting (Op == nil)
// or reply. Media is nil when the post carries no attachment.
type PostCreationData struct {
	Board   BoardCode
	Op      *CommentId
	Alias   *string
	Subject *string
	Body    *string
	Media   *MediaUpload
}
