package relayhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/connection-relay/cryptoutils"
	"github.com/ruteri/connection-relay/interfaces"
	"github.com/ruteri/connection-relay/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestRouter(provider interfaces.ClientConfigProvider) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := chi.NewRouter()
	NewHandler(provider, logger).RegisterRoutes(mux)
	return mux
}

func postClientConfig(t *testing.T, router http.Handler, path, body string) *http.Response {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleClientConfig_Success(t *testing.T) {
	provider := new(MockClientConfigProvider)
	provider.On("GetClientConfig", mock.Anything, interfaces.LocalUserID("user123"), "recipient-key").
		Return(&interfaces.EncryptedEnvelope{Encrypted: "sealed"}, nil)

	resp := postClientConfig(t, newTestRouter(provider), "/api/client-config/user123", `{"publicKey":"recipient-key"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"encrypted":"sealed"}`, string(body))
	provider.AssertExpectations(t)
}

func TestHandleClientConfig_EscapedUserID(t *testing.T) {
	provider := new(MockClientConfigProvider)
	provider.On("GetClientConfig", mock.Anything, interfaces.LocalUserID("team/7 alice"), "k").
		Return(&interfaces.EncryptedEnvelope{Encrypted: "sealed"}, nil)

	resp := postClientConfig(t, newTestRouter(provider), "/api/client-config/team%2F7%20alice", `{"publicKey":"k"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	provider.AssertExpectations(t)
}

func TestHandleClientConfig_BadRequest(t *testing.T) {
	testCases := []struct {
		name string
		path string
		body string
	}{
		{"malformed body", "/api/client-config/user123", `{"publicKey":`},
		{"not an object", "/api/client-config/user123", `"key"`},
		{"missing key", "/api/client-config/user123", `{}`},
		{"blank key", "/api/client-config/user123", `{"publicKey":"  "}`},
		{"blank user id", "/api/client-config/%20%20", `{"publicKey":"k"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			provider := new(MockClientConfigProvider)
			resp := postClientConfig(t, newTestRouter(provider), tc.path, tc.body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			provider.AssertNotCalled(t, "GetClientConfig", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandleClientConfig_ErrorStatus(t *testing.T) {
	testCases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad point", interfaces.ErrInvalidRecipientKey), http.StatusBadRequest},
		{fmt.Errorf("%w: platform returned 500", interfaces.ErrFetchConnection), http.StatusBadGateway},
		{fmt.Errorf("%w: platform returned 403", interfaces.ErrCreateConnection), http.StatusBadGateway},
		{&interfaces.DecryptionError{Field: "secrets.passkey", Reason: "empty"}, http.StatusInternalServerError},
		{fmt.Errorf("%w: boom", interfaces.ErrEncryption), http.StatusInternalServerError},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			provider := new(MockClientConfigProvider)
			provider.On("GetClientConfig", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			resp := postClientConfig(t, newTestRouter(provider), "/api/client-config/user123", `{"publicKey":"k"}`)
			assert.Equal(t, tc.status, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.NotContains(t, string(body), tc.err.Error())
		})
	}
}

// TestClientConfig_EndToEnd runs the client against a real relay backed by a
// stub platform without a stored connection.
func TestClientConfig_EndToEnd(t *testing.T) {
	var (
		mu      sync.Mutex
		gotPath string
	)
	platformServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.EscapedPath()
		mu.Unlock()
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"url":"https://platform.example/connect/abc"}`))
	}))
	defer platformServer.Close()

	relayKey, err := cryptoutils.GenerateKey()
	require.NoError(t, err)
	relayKeyPEM, err := cryptoutils.MarshalPrivateKeyPEM(relayKey)
	require.NoError(t, err)

	r, err := relay.New(relay.Config{
		BaseURL:    platformServer.URL,
		APIToken:   "platform-token",
		PrivateKey: string(relayKeyPEM),
	})
	require.NoError(t, err)

	relayServer := httptest.NewServer(newTestRouter(r))
	defer relayServer.Close()

	sessionKey, err := cryptoutils.GenerateKey()
	require.NoError(t, err)
	sessionJWK, err := cryptoutils.MarshalPublicKeyJWK(&sessionKey.PublicKey)
	require.NoError(t, err)

	client := &Client{}
	envelope, err := client.ClientConfig(context.Background(), relayServer.URL, "user/1", sessionJWK)
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, "/api/apps/connection/user%2F1", gotPath)
	mu.Unlock()

	plaintext, err := cryptoutils.DefaultCipher.Decrypt(sessionKey, envelope.Encrypted)
	require.NoError(t, err)

	var config struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(plaintext, &config))
	assert.Equal(t, "connect_request", config.Type)
	assert.JSONEq(t, `{"url":"https://platform.example/connect/abc"}`, string(config.Payload))
}

func TestClientConfig_ErrorResponse(t *testing.T) {
	provider := new(MockClientConfigProvider)
	provider.On("GetClientConfig", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: platform returned 500", interfaces.ErrFetchConnection))

	relayServer := httptest.NewServer(newTestRouter(provider))
	defer relayServer.Close()

	client := &Client{Client: relayServer.Client()}
	_, err := client.ClientConfig(context.Background(), relayServer.URL, "user123", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
