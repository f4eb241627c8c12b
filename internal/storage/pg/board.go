package pg

import (
	"context"
	"fmt"

	"github.com/tatami-dev/tatami/internal/domain"
)

const boardColumns = `code, name, "desc", max_threads, max_replies, max_img_replies, max_com_len, max_sub_len, max_file_size, is_nsfw, created_at`

func scanBoard(row interface{ Scan(...any) error }) (domain.Board, error) {
	var b domain.Board
	err := row.Scan(
		&b.Code, &b.Name, &b.Description,
		&b.MaxThreads, &b.MaxReplies, &b.MaxImgReplies,
		&b.MaxComLen, &b.MaxSubLen, &b.MaxFileSize,
		&b.IsNSFW, &b.CreatedAt,
	)
	return b, err
}

func (s *Storage) CreateBoard(ctx context.Context, data domain.BoardCreationData) (domain.Board, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO boards (code, name, "desc", max_threads, max_replies, max_img_replies, max_com_len, max_sub_len, max_file_size, is_nsfw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING %s`, boardColumns),
		data.Code, data.Name, data.Description,
		data.MaxThreads, data.MaxReplies, data.MaxImgReplies,
		data.MaxComLen, data.MaxSubLen, data.MaxFileSize,
		data.IsNSFW,
	)
	board, err := scanBoard(row)
	if err != nil {
		return domain.Board{}, translateErr(err)
	}
	return board, nil
}

func (s *Storage) GetBoard(ctx context.Context, code domain.BoardCode) (domain.Board, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM boards WHERE code = $1", boardColumns), code)
	board, err := scanBoard(row)
	if err != nil {
		return domain.Board{}, translateErr(err)
	}
	return board, nil
}

func (s *Storage) GetBoards(ctx context.Context) ([]domain.Board, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM boards ORDER BY code", boardColumns))
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, translateErr(err)
		}
		boards = append(boards, board)
	}
	if err = rows.Err(); err != nil {
		return nil, translateErr(err)
	}
	return boards, nil
}
