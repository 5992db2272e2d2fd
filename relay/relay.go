package relay

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/connection-relay/api/platform"
	"github.com/ruteri/connection-relay/cryptoutils"
	"github.com/ruteri/connection-relay/interfaces"
	"github.com/ruteri/connection-relay/metrics"
)

// Config holds the relay's process-lifetime configuration.
type Config struct {
	// BaseURL is the platform's absolute http(s) address.
	BaseURL string

	// APIToken is the bearer credential for the platform.
	APIToken string

	// PrivateKey is the relay's own private key material (PEM or JWK).
	PrivateKey string

	// HTTPClient overrides the transport used to reach the platform.
	HTTPClient *http.Client

	// Cipher overrides the hybrid crypto collaborator. cryptoutils.DefaultCipher when nil.
	Cipher interfaces.HybridCipher

	// Platform overrides the platform client built from BaseURL and APIToken.
	Platform interfaces.ConnectionPlatform

	Log *slog.Logger
}

// Relay resolves a user's connection state with the platform and re-encrypts
// it for the end user's browser session. It holds no per-call state and is
// safe for concurrent use.
type Relay struct {
	platform   interfaces.ConnectionPlatform
	cipher     interfaces.HybridCipher
	privateKey *ecdsa.PrivateKey
	log        *slog.Logger
}

var _ interfaces.ClientConfigProvider = (*Relay)(nil)

// New validates the configuration and creates a relay. No network calls are made.
func New(cfg Config) (*Relay, error) {
	if err := ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}

	cipher := cfg.Cipher
	if cipher == nil {
		cipher = cryptoutils.DefaultCipher
	}

	privateKey, err := cipher.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid relay private key: %w", err)
	}

	connectionPlatform := cfg.Platform
	if connectionPlatform == nil {
		connectionPlatform = platform.NewClient(cfg.BaseURL, cfg.APIToken, cfg.HTTPClient)
	}

	log := cfg.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Relay{
		platform:   connectionPlatform,
		cipher:     cipher,
		privateKey: privateKey,
		log:        log,
	}, nil
}

// ValidateBaseURL checks that baseURL is an absolute http or https URL with a host.
func ValidateBaseURL(baseURL string) error {
	if strings.TrimSpace(baseURL) == "" {
		return fmt.Errorf("%w %q: empty", interfaces.ErrInvalidBaseURL, baseURL)
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("%w %q: %w", interfaces.ErrInvalidBaseURL, baseURL, err)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("%w %q: missing scheme", interfaces.ErrInvalidBaseURL, baseURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w %q: scheme must be http or https", interfaces.ErrInvalidBaseURL, baseURL)
	}
	if parsed.Host == "" || parsed.Hostname() == "" {
		return fmt.Errorf("%w %q: missing host", interfaces.ErrInvalidBaseURL, baseURL)
	}
	return nil
}

// GetClientConfig resolves the user's connection and returns it encrypted for
// recipientPublicKey.
//
// An existing connection is unlocked with the relay key and sent as
// "connected"; otherwise a new invitation is requested from the platform and
// sent as "connect_request". Any failure aborts the call.
func (r *Relay) GetClientConfig(ctx context.Context, userID interfaces.LocalUserID, recipientPublicKey string) (*interfaces.EncryptedEnvelope, error) {
	start := time.Now()
	kind, envelope, err := r.getClientConfig(ctx, userID, recipientPublicKey)
	metrics.RecordClientConfig(outcome(kind, err), time.Since(start))
	return envelope, err
}

func (r *Relay) getClientConfig(ctx context.Context, userID interfaces.LocalUserID, recipientPublicKey string) (interfaces.ConnectionKind, *interfaces.EncryptedEnvelope, error) {
	state, err := r.resolve(ctx, userID)
	if err != nil {
		return "", nil, err
	}

	envelope := interfaces.NewConfigEnvelope(state)
	serialized, err := json.Marshal(envelope)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", interfaces.ErrSerialization, err)
	}

	recipientKey, err := r.cipher.ParsePublicKey(recipientPublicKey)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", interfaces.ErrInvalidRecipientKey, err)
	}

	encrypted, err := r.cipher.Encrypt(recipientKey, serialized)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", interfaces.ErrEncryption, err)
	}

	r.log.Debug("client config sealed", "kind", envelope.Kind())
	return envelope.Kind(), &interfaces.EncryptedEnvelope{Encrypted: encrypted}, nil
}

func outcome(kind interfaces.ConnectionKind, err error) string {
	var decryptionErr *interfaces.DecryptionError
	switch {
	case err == nil && kind == interfaces.KindConnected:
		return metrics.OutcomeConnected
	case err == nil:
		return metrics.OutcomeConnectRequest
	case errors.Is(err, interfaces.ErrFetchConnection):
		return metrics.OutcomeFetchError
	case errors.Is(err, interfaces.ErrCreateConnection):
		return metrics.OutcomeCreateError
	case errors.As(err, &decryptionErr):
		return metrics.OutcomeDecryptionError
	case errors.Is(err, interfaces.ErrInvalidRecipientKey):
		return metrics.OutcomeInvalidRecipientKey
	default:
		return metrics.OutcomeError
	}
}

func (r *Relay) resolve(ctx context.Context, userID interfaces.LocalUserID) (interfaces.ConnectionState, error) {
	conn, found, err := r.platform.FetchConnection(ctx, userID)
	if err != nil {
		return nil, err
	}

	if found {
		if err := conn.Unlock(r.cipher, r.privateKey); err != nil {
			return nil, err
		}
		r.log.Debug("using established connection")
		return conn, nil
	}

	r.log.Debug("no connection found, requesting invitation")
	invitation, err := r.platform.CreateConnection(ctx, userID)
	if err != nil {
		return nil, err
	}
	return invitation, nil
}
