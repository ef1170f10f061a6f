package core

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jo-hoe/gotransform/internal/backend/database"
	"github.com/jo-hoe/gotransform/internal/backend/video"
	"github.com/jo-hoe/gotransform/internal/metrics"
)

var (
	ErrJobNotFound = errors.New("video job not found")
	ErrTooManyJobs = errors.New("too many video renders in progress")
)

// VideoJob is a snapshot of one asynchronous render.
type VideoJob struct {
	ID        string
	Settings  video.Settings
	Progress  int
	Done      bool
	Err       error
	Media     *video.Media
	CreatedAt time.Time
}

// Filename is the suggested download name, e.g. transformacao-2024-03-05.mp4.
func (job VideoJob) Filename() string {
	extension := "mp4"
	if job.Media != nil && job.Media.Extension != "" {
		extension = job.Media.Extension
	}
	return fmt.Sprintf("transformacao-%s.%s", job.CreatedAt.Format("2006-01-02"), extension)
}

// videoJobs keeps at most maxJobs jobs, evicting the oldest finished ones first.
type videoJobs struct {
	mu      sync.Mutex
	jobs    map[string]*VideoJob
	order   []string
	maxJobs int
}

func newVideoJobs(maxJobs int) *videoJobs {
	if maxJobs <= 0 {
		maxJobs = defaultMaxJobs
	}
	return &videoJobs{jobs: make(map[string]*VideoJob), maxJobs: maxJobs}
}

func (j *videoJobs) add(job *VideoJob) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for len(j.order) >= j.maxJobs {
		if !j.evictOldestFinished() {
			return ErrTooManyJobs
		}
	}
	j.jobs[job.ID] = job
	j.order = append(j.order, job.ID)
	return nil
}

func (j *videoJobs) evictOldestFinished() bool {
	for i, id := range j.order {
		if j.jobs[id].Done {
			delete(j.jobs, id)
			j.order = append(j.order[:i], j.order[i+1:]...)
			return true
		}
	}
	return false
}

func (j *videoJobs) get(id string) (VideoJob, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.jobs[id]
	if !ok {
		return VideoJob{}, ErrJobNotFound
	}
	return *job, nil
}

// setProgress only moves forward.
func (j *videoJobs) setProgress(id string, percent int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if job, ok := j.jobs[id]; ok && !job.Done && percent > job.Progress {
		job.Progress = percent
	}
}

func (j *videoJobs) finish(id string, media *video.Media, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	job, ok := j.jobs[id]
	if !ok {
		return
	}
	job.Done = true
	job.Err = err
	if err == nil {
		job.Media = media
		job.Progress = video.ProgressDone
	}
}

// StartVideo renders the current photos in the background and returns the job id.
// Photos are read before returning, so later edits do not affect the render.
func (service *CoreService) StartVideo(settings video.Settings) (string, error) {
	if settings.SecondsPerPhoto <= 0 {
		settings.SecondsPerPhoto = service.config.Video.DefaultSecondsPerPhoto
	}
	if settings.Resolution == "" {
		settings.Resolution = video.Resolution720p
	}

	photos, err := service.databaseService.ListPhotos(service.ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load photos for video: %w", err)
	}
	synthesizer := video.NewSynthesizer(photos, settings, service.config.DateLayout, nil)
	if len(synthesizer.Selected()) == 0 {
		return "", video.ErrNoPhotos
	}
	recorder, err := service.newRecorder()
	if err != nil {
		return "", err
	}

	job := &VideoJob{
		ID:        uuid.NewString(),
		Settings:  settings,
		CreatedAt: service.now(),
	}
	if err := service.jobs.add(job); err != nil {
		return "", err
	}

	service.renders.Add(1)
	go service.render(job.ID, photos, settings, recorder)
	slog.Info("video render started", "job_id", job.ID, "resolution", settings.Resolution, "photo_type", settings.PhotoType)
	return job.ID, nil
}

func (service *CoreService) render(id string, photos []*database.Photo, settings video.Settings, recorder video.Recorder) {
	defer service.renders.Done()
	service.metrics.GaugeVideoJobsRunning.Inc()
	defer service.metrics.GaugeVideoJobsRunning.Dec()
	start := time.Now()

	progress := func(percent int) { service.jobs.setProgress(id, percent) }
	synthesizer := video.NewSynthesizer(photos, settings, service.config.DateLayout, progress)
	width, height := synthesizer.Size()

	media, err := video.NewEncoder(recorder).
		WithTicker(service.newTicker).
		Encode(service.ctx, synthesizer.Frames(), width, height, progress)
	service.jobs.finish(id, media, err)
	service.metrics.HistVideoRenderDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		service.metrics.CounterVideoJobs.WithLabelValues(metrics.OutcomeFailed).Inc()
		slog.Error("video render failed", "job_id", id, "error", err)
		return
	}
	service.metrics.CounterVideoJobs.WithLabelValues(metrics.OutcomeSucceeded).Inc()
	slog.Info("video render finished", "job_id", id, "bytes", len(media.Data), "duration_ms", time.Since(start).Milliseconds())
}

func (service *CoreService) VideoJob(id string) (VideoJob, error) {
	return service.jobs.get(id)
}
