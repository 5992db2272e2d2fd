package relayhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ruteri/connection-relay/api"
	"github.com/ruteri/connection-relay/interfaces"
)

// Client calls a relay's client config endpoint.
type Client struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// ClientConfig requests the sealed client config for userID from the relay at
// baseURL. publicKey is the key the relay should seal the config for.
func (c *Client) ClientConfig(ctx context.Context, baseURL string, userID interfaces.LocalUserID, publicKey string) (*interfaces.EncryptedEnvelope, error) {
	reqBody, err := json.Marshal(api.ClientConfigRequest{PublicKey: publicKey})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/api/client-config/%s", strings.TrimRight(baseURL, "/"), userID.PathSegment()),
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return nil, fmt.Errorf("could not initialize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpClient := c.Client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request client config: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRequestSize))
	if err != nil {
		return nil, fmt.Errorf("could not read client config response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client config request failed with code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope interfaces.EncryptedEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("could not parse client config response: %w", err)
	}
	if envelope.Encrypted == "" {
		return nil, fmt.Errorf("client config response has no ciphertext")
	}
	return &envelope, nil
}
