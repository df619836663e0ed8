package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
	"github.com/aliskhannn/lwopan/internal/service"
)

func TestObserveResolution(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveResolution(entities.IntentText, service.OutcomeMatched, time.Millisecond)
	m.ObserveResolution(entities.IntentText, service.OutcomeMatched, time.Millisecond)
	m.ObserveResolution(entities.IntentNumeric, service.OutcomeNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolutions.WithLabelValues("text", "matched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("numeric", "not_found")))
}

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("/search", 200)
	m.ObserveRequest("", 404)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/search", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("unmatched", "404")))
}
