package domain

import (
	"fmt"
	"time"
)

// Comment is both a thread root and a reply: Op == nil means the comment
// roots a thread, Op != nil points at the root it replies to. The schema
// is a two-level tree; replies to replies are never created.
type Comment struct {
	Id        CommentId
	Alias     *string
	Subject   *string
	Body      *string
	Op        *CommentId
	Media     *MediaRecord
	Board     BoardCode
	CreatedAt time.Time
}

func (c *Comment) IsRoot() bool {
	return c.Op == nil
}

// Root returns the id of the thread this comment belongs to.
func (c *Comment) Root() CommentId {
	if c.Op != nil {
		return *c.Op
	}
	return c.Id
}

// for debug
func (c *Comment) String() string {
	op := "root"
	if c.Op != nil {
		op = fmt.Sprintf("reply->%d", *c.Op)
	}
	media := "none"
	if c.Media != nil {
		media = c.Media.MediaName
	}
	return fmt.Sprintf("[id:%d, board:%s, %s, media:%s, created:%s]",
		c.Id, c.Board, op, media, c.CreatedAt.Format(time.StampMilli))
}

// ThreadSummary is a board-page row: the root plus aggregates over its replies.
type ThreadSummary struct {
	Root       Comment
	Replies    int
	Images     int
	LastBumped time.Time
}
