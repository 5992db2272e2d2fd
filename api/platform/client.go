package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ruteri/connection-relay/interfaces"
)

// maxResponseSize bounds how much of a platform response is read.
const maxResponseSize = 1 << 20

// StatusError is returned for any non-2xx platform response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("platform returned %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("platform returned %d", e.StatusCode)
}

// IsNotFound reports whether err is a platform 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// Client talks to the platform's connection API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ interfaces.ConnectionPlatform = (*Client)(nil)

// NewClient creates a client for the platform at baseURL. Requests go through
// a BearerTransport wrapping httpClient's transport; httpClient may be nil.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	authenticated := *httpClient
	authenticated.Transport = &BearerTransport{Token: token, Base: httpClient.Transport}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &authenticated,
	}
}

// FetchConnection looks up the user's established connection.
// A 404 from the platform is reported as found == false with no error; every
// other failure wraps interfaces.ErrFetchConnection.
func (c *Client) FetchConnection(ctx context.Context, userID interfaces.LocalUserID) (*interfaces.EstablishedConnection, bool, error) {
	body, err := c.send(ctx, http.MethodGet, userID)
	if IsNotFound(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("%w: %w", interfaces.ErrFetchConnection, err)
	}

	conn, err := interfaces.NewEstablishedConnection(body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", interfaces.ErrFetchConnection, err)
	}
	return conn, true, nil
}

// CreateConnection requests a new connection invitation for the user. Every
// failure wraps interfaces.ErrCreateConnection.
func (c *Client) CreateConnection(ctx context.Context, userID interfaces.LocalUserID) (*interfaces.PendingInvitation, error) {
	body, err := c.send(ctx, http.MethodPost, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrCreateConnection, err)
	}

	invitation, err := interfaces.NewPendingInvitation(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrCreateConnection, err)
	}
	return invitation, nil
}

func (c *Client) connectionURL(userID interfaces.LocalUserID) string {
	return fmt.Sprintf("%s/api/apps/connection/%s", c.baseURL, userID.PathSegment())
}

func (c *Client) send(ctx context.Context, method string, userID interfaces.LocalUserID) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.connectionURL(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request platform: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("could not read platform response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
