package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewManager_RegistersCollectors(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterPhotosCreated.Inc()
	m.CounterPhotosCreated.Inc()
	m.CounterVideoJobs.WithLabelValues(OutcomeFailed).Inc()
	m.HistVideoRenderDuration.Observe(3)

	if got := testutil.ToFloat64(m.CounterPhotosCreated); got != 2 {
		t.Errorf("photos created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CounterVideoJobs.WithLabelValues(OutcomeFailed)); got != 1 {
		t.Errorf("failed video jobs = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, family := range families {
		names[family.GetName()] = true
	}
	for _, want := range []string{
		"gotransform_test_server_photos_created",
		"gotransform_test_server_video_jobs",
		"gotransform_test_server_video_render_duration_seconds",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered, got %v", want, names)
		}
	}
}
