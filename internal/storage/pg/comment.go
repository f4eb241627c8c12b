package pg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tatami-dev/tatami/internal/domain"
)

const commentColumns = "id, alias, sub, com, op, file_name, media_name, media_size, media_ext, media_desc, thumb_name, thumb_size, board, created_at"

// commentRow buffers the nullable columns of a comments row.
type commentRow struct {
	alias, sub, com sql.NullString
	op              sql.NullInt64

	fileName  sql.NullString
	mediaName sql.NullString
	mediaSize sql.NullInt64
	mediaExt  sql.NullString
	mediaDesc sql.NullString
	thumbName sql.NullString
	thumbSize sql.NullInt64
}

func scanComment(row interface{ Scan(...any) error }) (domain.Comment, error) {
	var c domain.Comment
	var r commentRow
	err := row.Scan(
		&c.Id, &r.alias, &r.sub, &r.com, &r.op,
		&r.fileName, &r.mediaName, &r.mediaSize, &r.mediaExt, &r.mediaDesc,
		&r.thumbName, &r.thumbSize,
		&c.Board, &c.CreatedAt,
	)
	if err != nil {
		return domain.Comment{}, err
	}
	r.fill(&c)
	return c, nil
}

func (r *commentRow) fill(c *domain.Comment) {
	c.Alias = nullableString(r.alias)
	c.Subject = nullableString(r.sub)
	c.Body = nullableString(r.com)
	if r.op.Valid {
		op := r.op.Int64
		c.Op = &op
	}
	if r.mediaName.Valid {
		c.Media = &domain.MediaRecord{
			FileName:  r.fileName.String,
			MediaName: r.mediaName.String,
			MediaSize: r.mediaSize.Int64,
			MediaExt:  r.mediaExt.String,
			MediaDesc: nullableString(r.mediaDesc),
			ThumbName: r.thumbName.String,
			ThumbSize: r.thumbSize.Int64,
		}
	}
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func (s *Storage) InsertComment(ctx context.Context, c *domain.Comment) (domain.CommentId, error) {
	var fileName, mediaName, mediaExt, mediaDesc *string
	var mediaSize, thumbSize *int64
	var thumbName *string
	if c.Media != nil {
		fileName = &c.Media.FileName
		mediaName = &c.Media.MediaName
		mediaSize = &c.Media.MediaSize
		mediaExt = &c.Media.MediaExt
		mediaDesc = c.Media.MediaDesc
		thumbName = &c.Media.ThumbName
		thumbSize = &c.Media.ThumbSize
	}

	var id domain.CommentId
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (alias, sub, com, op, file_name, media_name, media_size, media_ext, media_desc, thumb_name, thumb_size, board, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		c.Alias, c.Subject, c.Body, c.Op,
		fileName, mediaName, mediaSize, mediaExt, mediaDesc,
		thumbName, thumbSize,
		c.Board, c.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, translateErr(err)
	}
	c.Id = id
	return id, nil
}

func (s *Storage) GetComment(ctx context.Context, id domain.CommentId) (domain.Comment, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM comments WHERE id = $1", commentColumns), id)
	c, err := scanComment(row)
	if err != nil {
		return domain.Comment{}, translateErr(err)
	}
	return c, nil
}

func (s *Storage) CountThreads(ctx context.Context, board domain.BoardCode) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE board = $1 AND op IS NULL", board).Scan(&n)
	if err != nil {
		return 0, translateErr(err)
	}
	return n, nil
}

func (s *Storage) CountReplies(ctx context.Context, root domain.CommentId) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE op = $1", root).Scan(&n)
	if err != nil {
		return 0, translateErr(err)
	}
	return n, nil
}

func (s *Storage) CountImageReplies(ctx context.Context, root domain.CommentId) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM comments WHERE op = $1 AND media_name IS NOT NULL", root).Scan(&n)
	if err != nil {
		return 0, translateErr(err)
	}
	return n, nil
}

// OldestBumpedThread picks the eviction victim: the root whose derived bump
// timestamp (latest reply time, or its own creation time when unreplied) is
// oldest, ties broken by lowest id.
func (s *Storage) OldestBumpedThread(ctx context.Context, board domain.BoardCode) (domain.CommentId, error) {
	var id domain.CommentId
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id
		FROM comments c
		LEFT JOIN comments r ON r.op = c.id
		WHERE c.op IS NULL AND c.board = $1
		GROUP BY c.id
		ORDER BY COALESCE(MAX(r.created_at), c.created_at) ASC, c.id ASC
		LIMIT 1`, board).Scan(&id)
	if err != nil {
		return 0, translateErr(err)
	}
	return id, nil
}

// DeleteThread removes a thread root and every reply in one transaction and
// returns the byte-store object names the deleted rows referenced, so the
// caller can discard them once outside any critical section.
func (s *Storage) DeleteThread(ctx context.Context, board domain.BoardCode, root domain.CommentId) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, translateErr(err)
	}
	defer tx.Rollback()

	// Pin the root row so a concurrent delete of the same thread serializes here.
	var rootId domain.CommentId
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM comments WHERE id = $1 AND board = $2 AND op IS NULL FOR UPDATE",
		root, board).Scan(&rootId)
	if err != nil {
		return nil, translateErr(err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT media_name, thumb_name FROM comments
		WHERE (id = $1 OR op = $1) AND media_name IS NOT NULL`, root)
	if err != nil {
		return nil, translateErr(err)
	}
	var objects []string
	for rows.Next() {
		var mediaName, thumbName string
		if err := rows.Scan(&mediaName, &thumbName); err != nil {
			rows.Close()
			return nil, translateErr(err)
		}
		objects = append(objects, mediaName, thumbName)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, translateErr(err)
	}

	// Single statement: replies and root go together, no window where an
	// orphaned reply is observable.
	if _, err = tx.ExecContext(ctx,
		"DELETE FROM comments WHERE id = $1 OR op = $1", root); err != nil {
		return nil, translateErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return objects, nil
}

// ListThreads returns the board's thread roots in bump-descending order with
// reply and image-reply aggregates.
func (s *Storage) ListThreads(ctx context.Context, board domain.BoardCode) ([]domain.ThreadSummary, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s,
			COUNT(r.id) AS replies,
			COUNT(r.media_name) AS images,
			COALESCE(MAX(r.created_at), c.created_at) AS bumped
		FROM comments c
		LEFT JOIN comments r ON r.op = c.id
		WHERE c.op IS NULL AND c.board = $1
		GROUP BY c.id
		ORDER BY bumped DESC, c.id DESC`, prefixColumns("c")), board)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var threads []domain.ThreadSummary
	for rows.Next() {
		var t domain.ThreadSummary
		var r commentRow
		err := rows.Scan(
			&t.Root.Id, &r.alias, &r.sub, &r.com, &r.op,
			&r.fileName, &r.mediaName, &r.mediaSize, &r.mediaExt, &r.mediaDesc,
			&r.thumbName, &r.thumbSize,
			&t.Root.Board, &t.Root.CreatedAt,
			&t.Replies, &t.Images, &t.LastBumped,
		)
		if err != nil {
			return nil, translateErr(err)
		}
		r.fill(&t.Root)
		threads = append(threads, t)
	}
	if err = rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	return threads, nil
}

// ListReplies returns a thread's replies in creation order. The root itself
// is fetched separately via GetComment.
func (s *Storage) ListReplies(ctx context.Context, root domain.CommentId) ([]domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s FROM comments WHERE op = $1 ORDER BY created_at ASC, id ASC", commentColumns), root)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var replies []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, translateErr(err)
		}
		replies = append(replies, c)
	}
	if err = rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	return replies, nil
}

// ListMediaObjects returns every byte-store object name referenced by a
// comment row. The janitor diffs this against the byte store's contents.
func (s *Storage) ListMediaObjects(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT media_name, thumb_name FROM comments WHERE media_name IS NOT NULL")
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	referenced := make(map[string]struct{})
	for rows.Next() {
		var mediaName, thumbName string
		if err := rows.Scan(&mediaName, &thumbName); err != nil {
			return nil, translateErr(err)
		}
		referenced[mediaName] = struct{}{}
		referenced[thumbName] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	return referenced, nil
}

// prefixColumns qualifies commentColumns with a table alias for joins.
func prefixColumns(alias string) string {
	return alias + ".id, " + alias + ".alias, " + alias + ".sub, " + alias + ".com, " + alias + ".op, " +
		alias + ".file_name, " + alias + ".media_name, " + alias + ".media_size, " + alias + ".media_ext, " +
		alias + ".media_desc, " + alias + ".thumb_name, " + alias + ".thumb_size, " +
		alias + ".board, " + alias + ".created_at"
}
