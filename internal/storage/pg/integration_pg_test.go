package pg

import (
	"context"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tatami-dev/tatami/internal/config"
	"github.com/tatami-dev/tatami/internal/domain"
)

var storage *Storage

func TestMain(m *testing.M) {
	ctx := context.Background()
	var container *postgres.PostgresContainer
	storage, container = mustSetup(ctx)
	defer teardown(ctx, storage, container)

	exitCode := m.Run()
	os.Exit(exitCode)
}

func mustSetup(ctx context.Context) (*Storage, *postgres.PostgresContainer) {
	dbName := "tatami"
	dbUser := "user"
	dbPassword := "password"
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithInitScripts(filepath.Join("migrations", "init.sql")),
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			// First, we wait for the container to log readiness twice.
			// This is because it will restart itself after the first startup.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}
	containerPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("failed to obtain container port: %s", err)
	}
	port, err := strconv.Atoi(containerPort.Port())
	if err != nil {
		log.Fatalf("failed to obtain int container port: %s", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to obtain container host: %s", err)
	}

	storage, err := New(&config.Config{Private: config.Private{Pg: config.Pg{
		Host: host, Port: port, User: dbUser, Password: dbPassword, Dbname: dbName,
	}}})
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}
	return storage, container
}

func teardown(ctx context.Context, storage *Storage, container *postgres.PostgresContainer) {
	if err := storage.Cleanup(); err != nil {
		log.Printf("failed to close storage connection: %s", err)
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

// generateCode hands out a unique board code so tests never share a board.
func generateCode(t *testing.T) string {
	t.Helper()
	const letters = "abcdefghijklmnopqrstuvwxyz"
	code := make([]byte, 5)
	for i := range code {
		code[i] = letters[rand.Intn(len(letters))]
	}
	return string(code)
}

func mustCreateBoard(t *testing.T) domain.Board {
	t.Helper()
	board, err := storage.CreateBoard(context.Background(), domain.BoardCreationData{
		Code:          generateCode(t),
		Name:          "Test Board",
		Description:   "integration fixture",
		MaxThreads:    10,
		MaxReplies:    100,
		MaxImgReplies: 50,
		MaxComLen:     2000,
		MaxSubLen:     100,
		MaxFileSize:   1 << 20,
	})
	require.NoError(t, err)
	return board
}

func mustInsertRoot(t *testing.T, board domain.BoardCode, createdAt time.Time, media *domain.MediaRecord) domain.CommentId {
	t.Helper()
	body := "root body"
	c := domain.Comment{Board: board, Body: &body, Media: media, CreatedAt: createdAt}
	id, err := storage.InsertComment(context.Background(), &c)
	require.NoError(t, err)
	return id
}

func mustInsertReply(t *testing.T, board domain.BoardCode, op domain.CommentId, createdAt time.Time, media *domain.MediaRecord) domain.CommentId {
	t.Helper()
	body := "reply body"
	c := domain.Comment{Board: board, Op: &op, Body: &body, Media: media, CreatedAt: createdAt}
	id, err := storage.InsertComment(context.Background(), &c)
	require.NoError(t, err)
	return id
}

// baseTime returns a µs-rounded anchor; the comments table stores µs precision.
func baseTime() time.Time {
	return time.Now().UTC().Round(time.Microsecond)
}
