package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/tatami-dev/tatami/internal/domain"
	internal_errors "github.com/tatami-dev/tatami/internal/errors"
)

// --- Shared mocks ---

// fakeClock hands out strictly increasing timestamps so bump order is
// deterministic.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Microsecond)
	return c.now
}

// fakeStore is an in-memory comments table. It implements CommentStorage,
// EvictionStorage and ThreadStorage with the same semantics the real store
// has, including the op foreign key turning into NotFound.
type fakeStore struct {
	mu       sync.Mutex
	nextId   domain.CommentId
	comments map[domain.CommentId]domain.Comment

	insertErr      error
	deleteFailures int
	deleteCalls    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{comments: make(map[domain.CommentId]domain.Comment)}
}

func (s *fakeStore) InsertComment(ctx context.Context, c *domain.Comment) (domain.CommentId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	if c.Op != nil {
		if _, ok := s.comments[*c.Op]; !ok {
			return 0, internal_errors.NotFound
		}
	}
	s.nextId++
	c.Id = s.nextId
	s.comments[c.Id] = *c
	return c.Id, nil
}

func (s *fakeStore) GetComment(ctx context.Context, id domain.CommentId) (domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return domain.Comment{}, internal_errors.NotFound
	}
	return c, nil
}

func (s *fakeStore) CountReplies(ctx context.Context, root domain.CommentId) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, c := range s.comments {
		if c.Op != nil && *c.Op == root {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) CountImageReplies(ctx context.Context, root domain.CommentId) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, c := range s.comments {
		if c.Op != nil && *c.Op == root && c.Media != nil {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) CountThreads(ctx context.Context, board domain.BoardCode) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, c := range s.comments {
		if c.Board == board && c.IsRoot() {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) bumpedAt(root domain.Comment) time.Time {
	bumped := root.CreatedAt
	for _, c := range s.comments {
		if c.Op != nil && *c.Op == root.Id && c.CreatedAt.After(bumped) {
			bumped = c.CreatedAt
		}
	}
	return bumped
}

func (s *fakeStore) OldestBumpedThread(ctx context.Context, board domain.BoardCode) (domain.CommentId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var victim domain.CommentId
	var victimBump time.Time
	found := false
	for _, c := range s.comments {
		if c.Board != board || !c.IsRoot() {
			continue
		}
		bump := s.bumpedAt(c)
		if !found || bump.Before(victimBump) || (bump.Equal(victimBump) && c.Id < victim) {
			victim, victimBump, found = c.Id, bump, true
		}
	}
	if !found {
		return 0, internal_errors.NotFound
	}
	return victim, nil
}

func (s *fakeStore) DeleteThread(ctx context.Context, board domain.BoardCode, root domain.CommentId) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.deleteFailures > 0 {
		s.deleteFailures--
		return nil, errors.New("delete failed")
	}
	c, ok := s.comments[root]
	if !ok || c.Board != board || !c.IsRoot() {
		return nil, internal_errors.NotFound
	}
	var objects []string
	collect := func(c domain.Comment) {
		if c.Media != nil {
			objects = append(objects, c.Media.MediaName, c.Media.ThumbName)
		}
	}
	collect(c)
	for id, r := range s.comments {
		if r.Op != nil && *r.Op == root {
			collect(r)
			delete(s.comments, id)
		}
	}
	delete(s.comments, root)
	return objects, nil
}

func (s *fakeStore) ListThreads(ctx context.Context, board domain.BoardCode) ([]domain.ThreadSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var threads []domain.ThreadSummary
	for _, c := range s.comments {
		if c.Board != board || !c.IsRoot() {
			continue
		}
		summary := domain.ThreadSummary{Root: c, LastBumped: s.bumpedAt(c)}
		for _, r := range s.comments {
			if r.Op != nil && *r.Op == c.Id {
				summary.Replies++
				if r.Media != nil {
					summary.Images++
				}
			}
		}
		threads = append(threads, summary)
	}
	sort.Slice(threads, func(i, j int) bool {
		if !threads[i].LastBumped.Equal(threads[j].LastBumped) {
			return threads[i].LastBumped.After(threads[j].LastBumped)
		}
		return threads[i].Root.Id > threads[j].Root.Id
	})
	return threads, nil
}

func (s *fakeStore) ListReplies(ctx context.Context, root domain.CommentId) ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var replies []domain.Comment
	for _, c := range s.comments {
		if c.Op != nil && *c.Op == root {
			replies = append(replies, c)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].Id < replies[j].Id
	})
	return replies, nil
}

// MockBoards mocks the BoardGetter interface.
type MockBoards struct {
	boards map[domain.BoardCode]domain.Board
}

func (m *MockBoards) Get(ctx context.Context, code domain.BoardCode) (domain.Board, error) {
	if board, ok := m.boards[code]; ok {
		return board, nil
	}
	return domain.Board{}, internal_errors.Reject(internal_errors.UnknownBoard, "board does not exist")
}

// MockIngest mocks the MediaIngest interface and tracks discards.
type MockIngest struct {
	ingestFunc func(board domain.Board, upload domain.MediaUpload) (*domain.MediaRecord, error)

	mu        sync.Mutex
	ingested  int
	discarded []string
}

func (m *MockIngest) Ingest(ctx context.Context, board domain.Board, upload domain.MediaUpload) (*domain.MediaRecord, error) {
	m.mu.Lock()
	m.ingested++
	n := m.ingested
	m.mu.Unlock()

	if m.ingestFunc != nil {
		return m.ingestFunc(board, upload)
	}
	name := fmt.Sprintf("media-%d", n)
	return &domain.MediaRecord{
		FileName:  upload.FileName,
		MediaName: name,
		MediaSize: 64,
		MediaExt:  "png",
		ThumbName: name + "t",
		ThumbSize: 16,
	}, nil
}

func (m *MockIngest) Discard(ctx context.Context, record *domain.MediaRecord) {
	if record == nil {
		return
	}
	m.mu.Lock()
	m.discarded = append(m.discarded, record.MediaName, record.ThumbName)
	m.mu.Unlock()
}

func (m *MockIngest) IngestCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingested
}

func (m *MockIngest) Discarded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.discarded...)
}

// MockBytes is an in-memory ByteStore.
type MockBytes struct {
	mu       sync.Mutex
	objects  map[string][]byte
	writeErr map[string]error
	listErr  error
	deleted  []string
}

func newMockBytes() *MockBytes {
	return &MockBytes{objects: make(map[string][]byte)}
}

func (m *MockBytes) Write(ctx context.Context, name string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeErr[name]; err != nil {
		return err
	}
	m.objects[name] = append([]byte(nil), data...)
	return nil
}

func (m *MockBytes) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, internal_errors.NotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockBytes) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, name)
	m.deleted = append(m.deleted, name)
	return nil
}

func (m *MockBytes) List(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	names := make([]string, 0, len(m.objects))
	for name := range m.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockBytes) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// --- Helpers ---

func str(s string) *string {
	return &s
}

func testBoard() domain.Board {
	return domain.Board{
		Code:          "b",
		Name:          "Random",
		Description:   "anything goes",
		MaxThreads:    3,
		MaxReplies:    5,
		MaxImgReplies: 2,
		MaxComLen:     1000,
		MaxSubLen:     100,
		MaxFileSize:   1 << 20,
	}
}
