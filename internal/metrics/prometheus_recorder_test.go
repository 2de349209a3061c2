package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.IncPostOutcome(OutcomeSuccess)
	rec.IncPostOutcome(OutcomeSuccess)
	rec.IncPostOutcome(OutcomeFailure)
	rec.ObservePostDuration(1500 * time.Millisecond)
	rec.SetPendingImages(7)
	rec.SetLastPostedIndex(3)

	require.Equal(t, 2.0, testutil.ToFloat64(rec.postOutcomes.WithLabelValues(string(OutcomeSuccess))))
	require.Equal(t, 1.0, testutil.ToFloat64(rec.postOutcomes.WithLabelValues(string(OutcomeFailure))))
	require.Equal(t, 7.0, testutil.ToFloat64(rec.pendingImages))
	require.Equal(t, 3.0, testutil.ToFloat64(rec.lastPostedIndex))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["storyposter_post_duration_seconds"])
}

func TestNilRegistryGetsPrivateOne(t *testing.T) {
	require.NotPanics(t, func() {
		rec := NewPrometheusRecorder(nil)
		rec.IncPostOutcome(OutcomeNothingToPost)
	})
}
