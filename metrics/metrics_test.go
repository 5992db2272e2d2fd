package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordClientConfig(t *testing.T) {
	before := ClientConfigCount(OutcomeConnectRequest)
	RecordClientConfig(OutcomeConnectRequest, 25*time.Millisecond)
	RecordClientConfig(OutcomeConnectRequest, 10*time.Millisecond)
	require.Equal(t, before+2, ClientConfigCount(OutcomeConnectRequest))
}

func TestMetricsEndpoint(t *testing.T) {
	RecordClientConfig(OutcomeFetchError, time.Millisecond)

	srv := New("127.0.0.1:0")
	w := httptest.NewRecorder()
	srv.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `connection_relay_client_config_requests_total{outcome="fetch_error"}`)
	require.Contains(t, string(body), "connection_relay_client_config_duration_seconds_bucket")
	require.Contains(t, string(body), "go_goroutines")
}
