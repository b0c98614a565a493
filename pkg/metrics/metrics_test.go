package metrics_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/mavroute/pkg/errors"
	"github.com/agentstation/mavroute/pkg/metrics"
)

func TestObserveRejection(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveRejection(errors.NewRejection(errors.ErrInvalidPort, "argument", 0, "out of range"))
	m.ObserveRejection(fmt.Errorf("entry 2: %w", errors.NewRejection(errors.ErrInvalidPort, "argument", 70000, "out of range")))
	m.ObserveRejection(errors.NewAlreadyExistsError("endpoint", "udpin:0.0.0.0:14550"))
	m.ObserveRejection(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Rejections.WithLabelValues("invalid_port")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("already_exists")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Rejections))
}

func TestSetActive(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.SetActive("udpin", 3)
	m.SetActive("serial", 1)
	m.SetActive("udpin", 2)

	expected := `
# HELP mavroute_endpoints_active Number of endpoints currently registered
# TYPE mavroute_endpoints_active gauge
mavroute_endpoints_active{kind="serial"} 1
mavroute_endpoints_active{kind="udpin"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mavroute_endpoints_active"))
}

func TestObserveRequest(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.ObserveRequest("GET", "GET /api/v1/endpoints", 200)
	m.ObserveRequest("GET", "GET /api/v1/endpoints", 200)
	m.ObserveRequest("POST", "POST /api/v1/endpoints", 409)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "GET /api/v1/endpoints", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "POST /api/v1/endpoints", "409")))
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveRejection(errors.ErrInvalidKind)
		m.SetActive("tcpin", 1)
		m.ObserveRequest("GET", "/health", 200)
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}
