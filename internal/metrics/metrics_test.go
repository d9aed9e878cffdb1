package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()

	m.Choices.WithLabelValues("1").Inc()
	m.Choices.WithLabelValues("1").Inc()
	m.Choices.WithLabelValues("0").Inc()
	m.Samples.WithLabelValues("16").Add(1024)
	m.IDs.Inc()

	require.Equal(t, 2.0, testutil.ToFloat64(m.Choices.WithLabelValues("1")))
	require.Equal(t, 1024.0, testutil.ToFloat64(m.Samples.WithLabelValues("16")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.IDs))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `fscoin_choices_total{outcome="1"} 2`)
	require.Contains(t, string(body), "fscoin_ids_allocated_total 1")
	require.Contains(t, string(body), "go_goroutines")
}
