package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coocood/freecache"
	"github.com/jo-hoe/gotransform/internal/backend/commands"
	"github.com/jo-hoe/gotransform/internal/backend/commandstructure"
	"github.com/jo-hoe/gotransform/internal/backend/database"
	"github.com/jo-hoe/gotransform/internal/backend/video"
	"github.com/jo-hoe/gotransform/internal/common"
	"github.com/jo-hoe/gotransform/internal/metrics"
	"github.com/jo-hoe/gotransform/internal/stats"
)

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	metrics         *metrics.Manager
	uploadPipeline  *commandstructure.CommandInvoker
	jobs            *videoJobs
	thumbnails      *freecache.Cache

	now         func() time.Time
	newRecorder func() (video.Recorder, error)
	newTicker   func(time.Duration) video.Ticker

	// ctx is cancelled by Close and aborts running renders
	ctx     context.Context
	cancel  context.CancelFunc
	renders sync.WaitGroup
}

func NewCoreService(config *ServiceConfig, metricsManager *metrics.Manager) (*CoreService, error) {
	databaseService, err := getDatabaseService(config)
	if err != nil {
		return nil, err
	}
	pipeline, err := commandstructure.NewCommandInvokerFromConfig(commandstructure.DefaultRegistry, config.Upload.Commands)
	if err != nil {
		_ = databaseService.Close()
		return nil, fmt.Errorf("failed to build upload pipeline: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &CoreService{
		config:          config,
		databaseService: databaseService,
		metrics:         metricsManager,
		uploadPipeline:  pipeline,
		jobs:            newVideoJobs(config.Video.MaxJobs),
		thumbnails:      newThumbnailCache(config.ThumbnailCacheMB),
		now:             time.Now,
		newRecorder: func() (video.Recorder, error) {
			return video.NewRecorder(config.Video.Encoder, config.Video.FFmpegPath)
		},
		newTicker: video.NewTimeTicker,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

func getDatabaseService(config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

func (service *CoreService) Config() *ServiceConfig {
	return service.config
}

// Now returns the service clock.
func (service *CoreService) Now() time.Time {
	return service.now()
}

// ListPhotos returns the photos matching the filter, newest first.
func (service *CoreService) ListPhotos(ctx context.Context, filter PhotoFilter) ([]*database.Photo, error) {
	photos, err := service.databaseService.ListPhotos(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(photos, service.now()), nil
}

func (service *CoreService) GetPhoto(ctx context.Context, id string) (*database.Photo, error) {
	return service.databaseService.GetPhoto(ctx, id)
}

func (service *CoreService) CreatePhoto(ctx context.Context, input database.NewPhoto) (*database.Photo, error) {
	photo, err := service.databaseService.CreatePhoto(ctx, input)
	if err != nil {
		return nil, err
	}
	service.metrics.CounterPhotosCreated.Inc()
	slog.Info("photo created", "photo_id", photo.ID, "type", photo.Type, "filename", photo.Filename)
	return photo, nil
}

func (service *CoreService) UpdatePhoto(ctx context.Context, id string, update database.PhotoUpdate) (*database.Photo, error) {
	photo, err := service.databaseService.UpdatePhoto(ctx, id, update)
	if err != nil {
		return nil, err
	}
	service.forgetThumbnail(id)
	return photo, nil
}

func (service *CoreService) DeletePhoto(ctx context.Context, id string) (bool, error) {
	deleted, err := service.databaseService.DeletePhoto(ctx, id)
	if err != nil {
		return false, err
	}
	service.forgetThumbnail(id)
	if deleted {
		service.metrics.CounterPhotosDeleted.Inc()
		slog.Info("photo deleted", "photo_id", id)
	}
	return deleted, nil
}

// Upload is one image file chosen in the UI, before normalisation.
type Upload struct {
	Date     time.Time
	Type     database.PhotoType
	Weight   *float64
	Notes    *string
	Filename string
	Data     []byte
}

// UploadPhoto runs the upload pipeline on the image and stores the result as a data URI.
func (service *CoreService) UploadPhoto(ctx context.Context, upload Upload) (*database.Photo, error) {
	processed, err := service.uploadPipeline.Execute(upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to process %s: %w", upload.Filename, err)
	}
	return service.CreatePhoto(ctx, database.NewPhoto{
		Date:     upload.Date,
		Type:     upload.Type,
		Weight:   upload.Weight,
		Notes:    upload.Notes,
		Filename: upload.Filename,
		FileData: common.EncodeDataURI(processed, commands.DetectMediaType(processed)),
	})
}

// Comparison pairs two photos with the statistics between them.
type Comparison struct {
	Before *database.Photo
	After  *database.Photo
	Stats  stats.Comparison
}

func (service *CoreService) Compare(ctx context.Context, beforeID, afterID string) (*Comparison, error) {
	before, err := service.databaseService.GetPhoto(ctx, beforeID)
	if err != nil {
		return nil, err
	}
	after, err := service.databaseService.GetPhoto(ctx, afterID)
	if err != nil {
		return nil, err
	}
	return &Comparison{Before: before, After: after, Stats: stats.Compare(before, after)}, nil
}

// Timeline returns every photo with its neighbour delta plus the journey summary.
func (service *CoreService) Timeline(ctx context.Context) ([]stats.TimelineEntry, stats.Journey, error) {
	photos, err := service.databaseService.ListPhotos(ctx)
	if err != nil {
		return nil, stats.Journey{}, err
	}
	return stats.Timeline(photos), stats.Summarize(photos, service.now()), nil
}

// Close stops running renders and closes the database.
func (service *CoreService) Close() error {
	service.cancel()
	service.renders.Wait()
	if service.databaseService != nil {
		return service.databaseService.Close()
	}
	return nil
}
