package setup

import (
	"fmt"

	"github.com/tatami-dev/tatami/internal/config"
	"github.com/tatami-dev/tatami/internal/handler"
	"github.com/tatami-dev/tatami/internal/media"
	"github.com/tatami-dev/tatami/internal/service"
	"github.com/tatami-dev/tatami/internal/storage/fs"
	"github.com/tatami-dev/tatami/internal/storage/pg"
	"github.com/tatami-dev/tatami/internal/storage/s3"
	"github.com/tatami-dev/tatami/internal/utils"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage *pg.Storage
	Handler *handler.Handler
	Janitor *service.Janitor
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	bytes, err := newByteStore(cfg)
	if err != nil {
		return nil, err
	}

	clock := service.UTCClock{}
	thumbs := media.NewJPEGThumbnailer(cfg.Public.Media.ThumbMaxDim, cfg.Public.Media.ThumbJPEGQuality)

	registry := service.NewRegistry(storage, &utils.BoardValidator{})
	ingestor := service.NewMediaIngestor(bytes, thumbs)
	evictor := service.NewEvictor(storage, clock)
	threads := service.NewThreads(storage, bytes)
	poster := service.NewPoster(registry, storage, ingestor, evictor, bytes, clock)
	janitor := service.NewJanitor(storage, poster, bytes)

	h := handler.New(registry, threads, poster, bytes, storage, &cfg.Public)

	return &Dependencies{
		Storage: storage,
		Handler: h,
		Janitor: janitor,
	}, nil
}

func newByteStore(cfg *config.Config) (service.ByteStore, error) {
	switch cfg.Public.Media.Backend {
	case "fs":
		return fs.New(cfg.Public.Media.RootPath)
	case "s3":
		return s3.New(cfg.Private.S3)
	default:
		return nil, fmt.Errorf("unknown media backend %q", cfg.Public.Media.Backend)
	}
}
