package domain

// Aliases to not import domain package everywhere
type (
	BoardCode = string
	CommentId = int64
)
