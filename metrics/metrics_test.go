package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeMetricsExposesRegisteredCounters(t *testing.T) {
	RequestsTotal.WithLabelValues("upcheck").Inc()

	srv := New("")
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "signer_requests_total")
}

func TestListenAndServeNoopWhenAddrEmpty(t *testing.T) {
	srv := New("")
	err := srv.ListenAndServe()
	assert.Equal(t, http.ErrServerClosed, err)
}

func TestShutdownOnUnstartedServerSucceeds(t *testing.T) {
	srv := New("127.0.0.1:0")
	err := srv.Shutdown(context.Background())
	assert.NoError(t, err)
}

func TestKeystoreSizeGaugeSettable(t *testing.T) {
	KeystoreSize.Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(KeystoreSize))
}
