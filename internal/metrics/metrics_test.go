package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boarbot/internal/metrics"
)

func TestHandler_ExposesCollectors(t *testing.T) {
	m := metrics.New()
	m.Logins.WithLabelValues("qrcode", "success").Inc()
	m.QRCodeFetches.Add(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QRCodeFetches))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `boarbot_login_total{method="qrcode",result="success"} 1`)
	assert.Contains(t, rec.Body.String(), "boarbot_qrcode_fetches_total 2")
}
