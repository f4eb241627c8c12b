package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/tatami-dev/tatami/internal/config"
	"github.com/tatami-dev/tatami/internal/domain"
	internal_errors "github.com/tatami-dev/tatami/internal/errors"
)

// --- Mocks ---

type MockBoardService struct {
	MockGet    func(code domain.BoardCode) (domain.Board, error)
	MockCreate func(data domain.BoardCreationData) (domain.Board, error)
	MockList   func() ([]domain.Board, error)
}

func (m *MockBoardService) Get(ctx context.Context, code domain.BoardCode) (domain.Board, error) {
	if m.MockGet != nil {
		return m.MockGet(code)
	}
	return domain.Board{Code: code}, nil
}

func (m *MockBoardService) Create(ctx context.Context, data domain.BoardCreationData) (domain.Board, error) {
	if m.MockCreate != nil {
		return m.MockCreate(data)
	}
	return domain.Board{Code: data.Code, Name: data.Name}, nil
}

func (m *MockBoardService) List(ctx context.Context) ([]domain.Board, error) {
	if m.MockList != nil {
		return m.MockList()
	}
	return nil, nil
}

type MockThreadService struct {
	MockList   func(board domain.BoardCode) ([]domain.ThreadSummary, error)
	MockGet    func(board domain.BoardCode, root domain.CommentId) (domain.Comment, []domain.Comment, error)
	MockDelete func(board domain.BoardCode, root domain.CommentId) error
}

func (m *MockThreadService) List(ctx context.Context, board domain.BoardCode) ([]domain.ThreadSummary, error) {
	if m.MockList != nil {
		return m.MockList(board)
	}
	return nil, nil
}

func (m *MockThreadService) Get(ctx context.Context, board domain.BoardCode, root domain.CommentId) (domain.Comment, []domain.Comment, error) {
	if m.MockGet != nil {
		return m.MockGet(board, root)
	}
	return domain.Comment{Id: root, Board: board}, nil, nil
}

func (m *MockThreadService) Delete(ctx context.Context, board domain.BoardCode, root domain.CommentId) error {
	if m.MockDelete != nil {
		return m.MockDelete(board, root)
	}
	return nil
}

type MockPostService struct {
	MockAdmit func(data domain.PostCreationData) (domain.Comment, error)
}

func (m *MockPostService) Admit(ctx context.Context, data domain.PostCreationData) (domain.Comment, error) {
	if m.MockAdmit != nil {
		return m.MockAdmit(data)
	}
	return domain.Comment{Id: 1, Board: data.Board, Op: data.Op}, nil
}

type MockMediaReader struct {
	MockRead func(name string) (io.ReadCloser, error)
}

func (m *MockMediaReader) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	if m.MockRead != nil {
		return m.MockRead(name)
	}
	return nil, internal_errors.NotFound
}

type MockPinger struct {
	MockPing func() error
}

func (m *MockPinger) Ping() error {
	if m.MockPing != nil {
		return m.MockPing()
	}
	return nil
}

// --- Helpers ---

func testConfig() *config.Public {
	return &config.Public{Server: config.Server{Port: 8080, MaxUploadBytes: 10 << 20}}
}

// testRouter wires the handler the way the real router does, minus middleware.
func testRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/media/{name}", h.GetMedia)
	r.Route("/boards", func(r chi.Router) {
		r.Get("/", h.GetBoards)
		r.Post("/", h.CreateBoard)
	})
	r.Route("/{board}", func(r chi.Router) {
		r.Get("/", h.GetBoard)
		r.Post("/", h.CreateThread)
		r.Route("/thread/{thread}", func(r chi.Router) {
			r.Get("/", h.GetThread)
			r.Post("/", h.CreateReply)
			r.Delete("/", h.DeleteThread)
		})
	})
	return r
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	testRouter(h).ServeHTTP(rr, req)
	return rr
}

// multipartBody builds a post submission: a "json" field plus an optional
// "media" file part.
func multipartBody(t *testing.T, jsonPayload string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("json", jsonPayload))
	if fileName != "" {
		part, err := writer.CreateFormFile("media", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}
