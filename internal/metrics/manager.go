package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

type Manager struct {
	// counters
	CounterRequests      *prometheus.CounterVec
	CounterPhotosCreated prometheus.Counter
	CounterPhotosDeleted prometheus.Counter
	CounterVideoJobs     *prometheus.CounterVec

	// gauges
	GaugeVideoJobsRunning prometheus.Gauge

	// histograms
	HistVideoRenderDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("gotransform", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("gotransform", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterPhotosCreated := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "photos_created",
		Help:      "The total number of stored photos",
	})
	counterPhotosDeleted := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "photos_deleted",
		Help:      "The total number of deleted photos",
	})
	counterVideoJobs := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "video_jobs",
		Help:      "The total number of finished video renders by outcome",
	}, []string{"outcome"})

	gaugeVideoJobsRunning := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "video_jobs_running",
		Help:      "Current number of video renders in progress",
	})

	histVideoRenderDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
			Name:      "video_render_duration_seconds",
			Help:      "Duration of a single video render in seconds",
		},
	)

	return &Manager{
		CounterRequests:         counterRequests,
		CounterPhotosCreated:    counterPhotosCreated,
		CounterPhotosDeleted:    counterPhotosDeleted,
		CounterVideoJobs:        counterVideoJobs,
		GaugeVideoJobsRunning:   gaugeVideoJobsRunning,
		HistVideoRenderDuration: histVideoRenderDuration,
	}
}
