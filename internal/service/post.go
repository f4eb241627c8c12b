package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/tatami-dev/tatami/internal/domain"
	internal_errors "github.com/tatami-dev/tatami/internal/errors"
	"github.com/tatami-dev/tatami/internal/logger"
	"github.com/tatami-dev/tatami/internal/markup"
)

const maxAliasLen = 100

type BoardGetter interface {
	Get(ctx context.Context, code domain.BoardCode) (domain.Board, error)
}

type CommentStorage interface {
	InsertComment(ctx context.Context, c *domain.Comment) (domain.CommentId, error)
	GetComment(ctx context.Context, id domain.CommentId) (domain.Comment, error)
	CountReplies(ctx context.Context, root domain.CommentId) (int, error)
	CountImageReplies(ctx context.Context, root domain.CommentId) (int, error)
}

type MediaIngest interface {
	Ingest(ctx context.Context, board domain.Board, upload domain.MediaUpload) (*domain.MediaRecord, error)
	Discard(ctx context.Context, record *domain.MediaRecord)
}

type OverflowEvictor interface {
	EvictOverflow(ctx context.Context, board domain.Board) (EvictionStats, []string, error)
}

// Poster admits posts: it validates them against board limits, ingests
// attachments, inserts the comment and keeps board capacity enforced.
//
// Serialization is keyed: one critical section per board for the
// {insert thread, count, evict} sequence, one per thread root for the
// reply check-then-insert. Different boards and different threads never
// contend. Media ingestion (external I/O) always happens before a lock
// is taken; rejected admissions discard what was ingested.
type Poster struct {
	boards  BoardGetter
	storage CommentStorage
	media   MediaIngest
	evictor OverflowEvictor
	bytes   ByteStore
	clock   Clock

	boardMu  *keyedMutex
	threadMu *keyedMutex
}

func NewPoster(boards BoardGetter, storage CommentStorage, media MediaIngest, evictor OverflowEvictor, bytes ByteStore, clock Clock) *Poster {
	return &Poster{
		boards:   boards,
		storage:  storage,
		media:    media,
		evictor:  evictor,
		bytes:    bytes,
		clock:    clock,
		boardMu:  newKeyedMutex(),
		threadMu: newKeyedMutex(),
	}
}

func (p *Poster) Admit(ctx context.Context, data domain.PostCreationData) (domain.Comment, error) {
	comment, err := p.admit(ctx, data)
	if err != nil {
		if reason, ok := internal_errors.ReasonOf(err); ok {
			postRejectionsTotal.WithLabelValues(string(reason)).Inc()
		}
		return domain.Comment{}, err
	}
	postsAdmittedTotal.WithLabelValues(comment.Board).Inc()
	return comment, nil
}

func (p *Poster) admit(ctx context.Context, data domain.PostCreationData) (domain.Comment, error) {
	board, err := p.boards.Get(ctx, data.Board)
	if err != nil {
		return domain.Comment{}, err
	}

	alias := normalize(data.Alias)
	subject := normalize(data.Subject)
	body := normalize(data.Body)
	if data.Op != nil {
		// replies carry no subject by convention
		subject = nil
	}

	if alias != nil && utf8.RuneCountInString(*alias) > maxAliasLen {
		return domain.Comment{}, internal_errors.Reject(internal_errors.AliasTooLong,
			fmt.Sprintf("alias exceeds %d characters", maxAliasLen))
	}
	if subject != nil && utf8.RuneCountInString(*subject) > board.MaxSubLen {
		return domain.Comment{}, internal_errors.Reject(internal_errors.SubjectTooLong,
			fmt.Sprintf("subject exceeds %d characters", board.MaxSubLen))
	}
	if body != nil && utf8.RuneCountInString(*body) > board.MaxComLen {
		return domain.Comment{}, internal_errors.Reject(internal_errors.BodyTooLong,
			fmt.Sprintf("body exceeds %d characters", board.MaxComLen))
	}
	if subject == nil && body == nil && data.Media == nil {
		return domain.Comment{}, internal_errors.Reject(internal_errors.EmptyPost,
			"post needs a subject, a body or an attachment")
	}

	// Cheap preflight before paying for media ingestion. The counts are
	// re-checked under the thread lock; this pass only rejects early.
	if data.Op != nil {
		if err := p.checkReply(ctx, board, *data.Op, data.Media != nil); err != nil {
			return domain.Comment{}, err
		}
	}

	var record *domain.MediaRecord
	if data.Media != nil {
		record, err = p.media.Ingest(ctx, board, *data.Media)
		if err != nil {
			return domain.Comment{}, err
		}
	}

	comment := domain.Comment{
		Alias:   alias,
		Op:      data.Op,
		Media:   record,
		Board:   board.Code,
		Subject: encode(subject, markup.EncodeSubject),
		Body:    encode(body, markup.EncodeBody),
	}

	if data.Op != nil {
		err = p.insertReply(ctx, board, &comment)
	} else {
		err = p.insertThread(ctx, board, &comment)
	}
	if err != nil {
		p.media.Discard(ctx, record)
		return domain.Comment{}, err
	}
	return comment, nil
}

// checkReply resolves the referenced root and applies the lock rules.
func (p *Poster) checkReply(ctx context.Context, board domain.Board, op domain.CommentId, hasMedia bool) error {
	root, err := p.storage.GetComment(ctx, op)
	if err != nil {
		if errors.Is(err, internal_errors.NotFound) {
			return internal_errors.Reject(internal_errors.UnknownThread, "thread does not exist")
		}
		return err
	}
	if root.Board != board.Code {
		return internal_errors.Reject(internal_errors.UnknownThread, "thread does not belong to this board")
	}
	if !root.IsRoot() {
		return internal_errors.Reject(internal_errors.ForeignOp, "op references a reply, not a thread root")
	}

	replies, err := p.storage.CountReplies(ctx, op)
	if err != nil {
		return err
	}
	if replies >= board.MaxReplies {
		return internal_errors.Reject(internal_errors.ThreadLocked,
			fmt.Sprintf("thread reached its reply limit of %d", board.MaxReplies))
	}

	if hasMedia {
		images, err := p.storage.CountImageReplies(ctx, op)
		if err != nil {
			return err
		}
		if images >= board.MaxImgReplies {
			return internal_errors.Reject(internal_errors.ImageThreadLocked,
				fmt.Sprintf("thread reached its image limit of %d", board.MaxImgReplies))
		}
	}
	return nil
}

// insertReply holds the thread root's critical section across the
// authoritative check-then-insert. The reply's created_at is the thread's
// new bump timestamp: bump order is derived from reply times, so a
// cap-reaching reply bumps and nothing bumps after it.
func (p *Poster) insertReply(ctx context.Context, board domain.Board, comment *domain.Comment) error {
	unlock := p.threadMu.Lock(threadKey(*comment.Op))
	defer unlock()

	if err := p.checkReply(ctx, board, *comment.Op, comment.Media != nil); err != nil {
		return err
	}

	comment.CreatedAt = p.clock.Now()
	if _, err := p.storage.InsertComment(ctx, comment); err != nil {
		// the root can vanish to a concurrent eviction between check and
		// insert; the op foreign key turns that into NotFound
		if errors.Is(err, internal_errors.NotFound) {
			return internal_errors.Reject(internal_errors.UnknownThread, "thread does not exist")
		}
		return err
	}
	return nil
}

// insertThread holds the board's critical section across insert and
// capacity enforcement, so two concurrent thread posts cannot both skip
// eviction. Media objects orphaned by eviction are discarded only after
// the lock is released.
func (p *Poster) insertThread(ctx context.Context, board domain.Board, comment *domain.Comment) error {
	orphaned, err := func() ([]string, error) {
		unlock := p.boardMu.Lock(board.Code)
		defer unlock()

		comment.CreatedAt = p.clock.Now()
		if _, err := p.storage.InsertComment(ctx, comment); err != nil {
			return nil, err
		}

		_, orphaned, err := p.evictor.EvictOverflow(ctx, board)
		if err != nil {
			// the new post stands; the janitor re-checks flagged boards
			logger.Log.Error("capacity enforcement failed after admission",
				"board", board.Code, "error", err)
		}
		return orphaned, nil
	}()
	if err != nil {
		return err
	}

	discardObjects(ctx, p.bytes, orphaned)
	return nil
}

// EnforceCapacity runs an eviction pass under the board's critical section.
// Used by the janitor to recover boards left over capacity by a failed
// post-admission eviction.
func (p *Poster) EnforceCapacity(ctx context.Context, board domain.Board) error {
	orphaned, err := func() ([]string, error) {
		unlock := p.boardMu.Lock(board.Code)
		defer unlock()

		_, orphaned, err := p.evictor.EvictOverflow(ctx, board)
		return orphaned, err
	}()

	discardObjects(ctx, p.bytes, orphaned)
	return err
}

func threadKey(root domain.CommentId) string {
	return strconv.FormatInt(root, 10)
}

// normalize maps empty optional fields to absent ones.
func normalize(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func encode(s *string, f func(string) string) *string {
	if s == nil {
		return nil
	}
	out := f(*s)
	return &out
}
