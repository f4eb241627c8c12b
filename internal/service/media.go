package service

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/tatami-dev/tatami/internal/domain"
	internal_errors "github.com/tatami-dev/tatami/internal/errors"
	"github.com/tatami-dev/tatami/internal/logger"
)

// ByteStore is the external home of upload bytes. The engine decides what
// to store and when to delete; the medium is someone else's problem.
type ByteStore interface {
	Write(ctx context.Context, name string, data []byte, contentType string) error
	Read(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// Thumbnailer derives a preview image from original media bytes.
type Thumbnailer interface {
	Thumbnail(data []byte) ([]byte, error)
}

// extByMime covers the media types boards accept. Detection goes by content
// sniffing, never by the client-supplied filename.
var extByMime = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type MediaIngestor struct {
	store  ByteStore
	thumbs Thumbnailer
}

func NewMediaIngestor(store ByteStore, thumbs Thumbnailer) *MediaIngestor {
	return &MediaIngestor{store: store, thumbs: thumbs}
}

// Ingest enforces the board's size bound, builds the thumbnail and writes
// both objects. It runs before any comment row exists and before any
// admission lock is taken; Discard compensates when admission later fails.
func (m *MediaIngestor) Ingest(ctx context.Context, board domain.Board, upload domain.MediaUpload) (*domain.MediaRecord, error) {
	if upload.DeclaredSize > board.MaxFileSize {
		return nil, internal_errors.Reject(internal_errors.FileTooLarge,
			fmt.Sprintf("file exceeds %d bytes", board.MaxFileSize))
	}

	// The declared size is client input; read one byte past the cap to catch
	// understated uploads.
	data, err := io.ReadAll(io.LimitReader(upload.Data, board.MaxFileSize+1))
	if err != nil {
		return nil, internal_errors.Storage(fmt.Errorf("failed to read upload: %w", err))
	}
	if int64(len(data)) > board.MaxFileSize {
		return nil, internal_errors.Reject(internal_errors.FileTooLarge,
			fmt.Sprintf("file exceeds %d bytes", board.MaxFileSize))
	}

	mime := http.DetectContentType(data)
	ext, ok := extByMime[mime]
	if !ok {
		return nil, internal_errors.Reject(internal_errors.UnsupportedMedia,
			fmt.Sprintf("media type %s is not accepted", mime))
	}

	thumb, err := m.thumbs.Thumbnail(data)
	if err != nil {
		return nil, internal_errors.Reject(internal_errors.UnsupportedMedia,
			fmt.Sprintf("failed to thumbnail upload: %v", err))
	}

	name := uuid.NewString()
	record := &domain.MediaRecord{
		FileName:  upload.FileName,
		MediaName: name,
		MediaSize: int64(len(data)),
		MediaExt:  ext,
		MediaDesc: upload.Description,
		ThumbName: name + "t",
		ThumbSize: int64(len(thumb)),
	}

	if err := m.store.Write(ctx, record.MediaName, data, mime); err != nil {
		return nil, internal_errors.Storage(err)
	}
	if err := m.store.Write(ctx, record.ThumbName, thumb, "image/jpeg"); err != nil {
		// keep ingestion all-or-nothing
		if delErr := m.store.Delete(ctx, record.MediaName); delErr != nil {
			logger.Log.Error("failed to clean up media after thumbnail write failure",
				"object", record.MediaName, "error", delErr)
		}
		return nil, internal_errors.Storage(err)
	}

	return record, nil
}

// Discard removes an ingested record whose comment never made it into the
// store. Best effort: leftovers are swept by the janitor.
func (m *MediaIngestor) Discard(ctx context.Context, record *domain.MediaRecord) {
	if record == nil {
		return
	}
	for _, name := range []string{record.MediaName, record.ThumbName} {
		if err := m.store.Delete(ctx, name); err != nil {
			logger.Log.Warn("failed to discard media object", "object", name, "error", err)
		}
	}
}
