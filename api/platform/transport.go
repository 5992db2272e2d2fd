package platform

import (
	"net/http"
)

// BearerTransport adds the platform's standard headers to every request:
// Accept: application/json, and the bearer credential unless the request
// already carries an Authorization header.
type BearerTransport struct {
	Token string

	// Base is the underlying transport. http.DefaultTransport is used when nil.
	Base http.RoundTripper
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("Authorization") == "" && t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
