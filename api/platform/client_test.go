package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ruteri/connection-relay/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method        string
	Path          string
	Accept        string
	Authorization string
}

// newTestPlatform starts a platform stand-in answering every request with
// the given status and body, recording the requests it sees.
func newTestPlatform(t *testing.T, status int, body string) (*httptest.Server, func() []recordedRequest) {
	var mu sync.Mutex
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requests = append(requests, recordedRequest{
			Method:        r.Method,
			Path:          r.URL.EscapedPath(),
			Accept:        r.Header.Get("Accept"),
			Authorization: r.Header.Get("Authorization"),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func TestFetchConnection_Found(t *testing.T) {
	server, requests := newTestPlatform(t, http.StatusOK, `{"id":"c1","secrets":{"privateKey":"a","passkey":"b","apiToken":"c"}}`)
	client := NewClient(server.URL, "token-1", nil)

	conn, found, err := client.FetchConnection(context.Background(), "user123")
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, conn)
	assert.True(t, conn.Locked())

	recorded := requests()
	require.Len(t, recorded, 1)
	req := recorded[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/apps/connection/user123", req.Path)
	assert.Equal(t, "application/json", req.Accept)
	assert.Equal(t, "Bearer token-1", req.Authorization)
}

func TestFetchConnection_NotFound(t *testing.T) {
	server, _ := newTestPlatform(t, http.StatusNotFound, `{"error":"not found"}`)
	client := NewClient(server.URL, "token-1", nil)

	conn, found, err := client.FetchConnection(context.Background(), "user123")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, conn)
}

func TestFetchConnection_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"bad token"}`},
		{"forbidden", http.StatusForbidden, ``},
		{"bad request", http.StatusBadRequest, ``},
		{"gone", http.StatusGone, ``},
		{"server error", http.StatusInternalServerError, `stack trace`},
		{"bad gateway", http.StatusBadGateway, ``},
		{"malformed body", http.StatusOK, `not json`},
		{"array body", http.StatusOK, `[1,2,3]`},
		{"null body", http.StatusOK, `null`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, _ := newTestPlatform(t, tc.status, tc.body)
			client := NewClient(server.URL, "token-1", nil)

			conn, found, err := client.FetchConnection(context.Background(), "user123")
			require.ErrorIs(t, err, interfaces.ErrFetchConnection)
			assert.False(t, found)
			assert.Nil(t, conn)

			if tc.status != http.StatusOK {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tc.status, statusErr.StatusCode)
			}
		})
	}
}

func TestFetchConnection_TransportError(t *testing.T) {
	server, _ := newTestPlatform(t, http.StatusOK, `{}`)
	server.Close()

	client := NewClient(server.URL, "token-1", nil)
	_, found, err := client.FetchConnection(context.Background(), "user123")
	require.ErrorIs(t, err, interfaces.ErrFetchConnection)
	assert.False(t, found)
}

func TestCreateConnection_Success(t *testing.T) {
	server, requests := newTestPlatform(t, http.StatusOK, `{"url":"https://platform.example/connect/abc","expiresAt":"2030-01-01T00:00:00Z"}`)
	client := NewClient(server.URL+"/", "token-2", nil)

	invitation, err := client.CreateConnection(context.Background(), "user 1/2")
	require.NoError(t, err)

	url, ok := invitation.Field("url")
	require.True(t, ok)
	assert.JSONEq(t, `"https://platform.example/connect/abc"`, string(url))

	recorded := requests()
	require.Len(t, recorded, 1)
	req := recorded[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/apps/connection/user%201%2F2", req.Path)
	assert.Equal(t, "Bearer token-2", req.Authorization)
	assert.Equal(t, "application/json", req.Accept)
}

func TestCreateConnection_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, ``},
		{"conflict", http.StatusConflict, `{"error":"exists"}`},
		{"server error", http.StatusInternalServerError, ``},
		{"malformed body", http.StatusOK, `{"url":`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, _ := newTestPlatform(t, tc.status, tc.body)
			client := NewClient(server.URL, "token-1", nil)

			invitation, err := client.CreateConnection(context.Background(), "user123")
			require.ErrorIs(t, err, interfaces.ErrCreateConnection)
			assert.Nil(t, invitation)
		})
	}
}

func TestBearerTransport_KeepsExistingAuthorization(t *testing.T) {
	server, requests := newTestPlatform(t, http.StatusOK, `{}`)

	client := &http.Client{Transport: &BearerTransport{Token: "configured"}}
	req, err := http.NewRequest(http.MethodGet, server.URL+"/x", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer caller")
	req.Header.Set("Accept", "text/plain")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	recorded := requests()
	require.Len(t, recorded, 1)
	assert.Equal(t, "Bearer caller", recorded[0].Authorization)
	assert.Equal(t, "application/json", recorded[0].Accept)

	// the caller's request is not modified
	assert.Equal(t, "text/plain", req.Header.Get("Accept"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(&StatusError{StatusCode: http.StatusNotFound}))
	assert.True(t, IsNotFound(errors.Join(errors.New("x"), &StatusError{StatusCode: http.StatusNotFound})))
	assert.False(t, IsNotFound(&StatusError{StatusCode: http.StatusForbidden}))
	assert.False(t, IsNotFound(errors.New("not found")))
	assert.False(t, IsNotFound(nil))
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{StatusCode: 500, Body: "boom"}
	assert.Equal(t, "platform returned 500: boom", err.Error())
	assert.Equal(t, "platform returned 502", (&StatusError{StatusCode: 502}).Error())
}
