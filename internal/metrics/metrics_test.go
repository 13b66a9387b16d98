package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	t.Parallel()

	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)

	a.Issued.WithLabelValues("url", SourceAPI).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Issued.WithLabelValues("url", SourceAPI)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Issued.WithLabelValues("url", SourceAPI)))
}

func TestInstrument(t *testing.T) {
	t.Parallel()

	m, err := New()
	require.NoError(t, err)

	done := m.Instrument("get")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPInflight.WithLabelValues("GET")))
	done("/v1/fastpass/url", 0)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPInflight.WithLabelValues("GET")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/v1/fastpass/url", "200")))

	m.Instrument("GET")("", 404)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandler_ExposesFastpassMetrics(t *testing.T) {
	t.Parallel()

	m, err := New()
	require.NoError(t, err)
	m.Verifications.WithLabelValues(ResultValid).Inc()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `fastpass_verifications_total{result="valid"} 1`)
}

func TestRegisterCollector_IgnoresDuplicates(t *testing.T) {
	t.Parallel()

	m, err := New()
	require.NoError(t, err)
	assert.NoError(t, registerCollector(m.Registry(), m.RateLimited))
}
