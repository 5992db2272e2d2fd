package interfaces

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

// ConnectionKind discriminates the two connection states carried in a ConfigEnvelope.
type ConnectionKind string

const (
	KindConnected      ConnectionKind = "connected"
	KindConnectRequest ConnectionKind = "connect_request"
)

// Field names of the encrypted secrets inside an established connection.
const (
	SecretsField     = "secrets"
	SecretPrivateKey = "privateKey"
	SecretPasskey    = "passkey"
	SecretAPIToken   = "apiToken"
)

// ConnectionState is either an *EstablishedConnection or a *PendingInvitation.
// The interface is sealed; no other implementations exist.
type ConnectionState interface {
	json.Marshaler
	connectionKind() ConnectionKind
}

// EstablishedConnection is the platform record of a user that is already
// linked. It starts locked, holding the secrets as ciphertext, and moves to
// unlocked exactly once through Unlock.
type EstablishedConnection struct {
	state connectionPhase
}

type connectionPhase interface {
	phase() string
}

// lockedConnection holds the record as returned by the platform.
type lockedConnection struct {
	fields map[string]json.RawMessage
}

// unlockedConnection holds the record with privateKey removed and passkey
// and apiToken in plaintext.
type unlockedConnection struct {
	fields map[string]json.RawMessage
}

func (*lockedConnection) phase() string   { return "locked" }
func (*unlockedConnection) phase() string { return "unlocked" }

// NewEstablishedConnection parses a platform response body into a locked
// connection. No decryption happens here.
func NewEstablishedConnection(body []byte) (*EstablishedConnection, error) {
	fields, err := parseObject(body)
	if err != nil {
		return nil, fmt.Errorf("invalid connection record: %w", err)
	}
	return &EstablishedConnection{state: &lockedConnection{fields: fields}}, nil
}

func (c *EstablishedConnection) connectionKind() ConnectionKind { return KindConnected }

// Locked reports whether the secrets are still encrypted.
func (c *EstablishedConnection) Locked() bool {
	_, locked := c.state.(*lockedConnection)
	return locked
}

// Unlock decrypts the connection secrets in place.
//
// secrets.privateKey is decrypted with the relay key and parsed as the
// user-scoped private key. secrets.passkey is decrypted with that user key,
// secrets.apiToken with the relay key again. The privateKey field is dropped
// from the record. Calling Unlock on an unlocked connection is a no-op.
func (c *EstablishedConnection) Unlock(cipher HybridCipher, relayKey *ecdsa.PrivateKey) error {
	locked, ok := c.state.(*lockedConnection)
	if !ok {
		return nil
	}

	secrets, err := locked.secrets()
	if err != nil {
		return err
	}

	encryptedUserKey, err := secretString(secrets, SecretPrivateKey)
	if err != nil {
		return err
	}
	encryptedPasskey, err := secretString(secrets, SecretPasskey)
	if err != nil {
		return err
	}
	encryptedAPIToken, err := secretString(secrets, SecretAPIToken)
	if err != nil {
		return err
	}

	userKeyMaterial, err := cipher.Decrypt(relayKey, encryptedUserKey)
	if err != nil {
		return &DecryptionError{Field: secretPath(SecretPrivateKey), Reason: "ciphertext rejected by relay key", Err: err}
	}
	userKey, err := cipher.ParsePrivateKey(string(userKeyMaterial))
	if err != nil {
		return &DecryptionError{Field: secretPath(SecretPrivateKey), Reason: "not a valid private key", Err: err}
	}

	// The passkey is sealed for the user-scoped key, not the relay key.
	passkey, err := cipher.Decrypt(userKey, encryptedPasskey)
	if err != nil {
		return &DecryptionError{Field: secretPath(SecretPasskey), Reason: "ciphertext rejected by user key", Err: err}
	}

	apiToken, err := cipher.Decrypt(relayKey, encryptedAPIToken)
	if err != nil {
		return &DecryptionError{Field: secretPath(SecretAPIToken), Reason: "ciphertext rejected by relay key", Err: err}
	}

	unlockedSecrets := maps.Clone(secrets)
	delete(unlockedSecrets, SecretPrivateKey)
	if unlockedSecrets[SecretPasskey], err = json.Marshal(string(passkey)); err != nil {
		return &DecryptionError{Field: secretPath(SecretPasskey), Reason: "could not encode plaintext", Err: err}
	}
	if unlockedSecrets[SecretAPIToken], err = json.Marshal(string(apiToken)); err != nil {
		return &DecryptionError{Field: secretPath(SecretAPIToken), Reason: "could not encode plaintext", Err: err}
	}

	encodedSecrets, err := json.Marshal(unlockedSecrets)
	if err != nil {
		return &DecryptionError{Field: SecretsField, Reason: "could not encode plaintext", Err: err}
	}

	fields := maps.Clone(locked.fields)
	fields[SecretsField] = encodedSecrets
	c.state = &unlockedConnection{fields: fields}
	return nil
}

// MarshalJSON exports the unlocked record. Exporting a locked connection
// fails with ErrConnectionLocked.
func (c *EstablishedConnection) MarshalJSON() ([]byte, error) {
	unlocked, ok := c.state.(*unlockedConnection)
	if !ok {
		return nil, ErrConnectionLocked
	}
	return json.Marshal(unlocked.fields)
}

func (l *lockedConnection) secrets() (map[string]json.RawMessage, error) {
	raw, ok := l.fields[SecretsField]
	if !ok {
		return nil, &DecryptionError{Field: SecretsField, Reason: "missing"}
	}

	var secrets map[string]json.RawMessage
	if err := json.Unmarshal(raw, &secrets); err != nil || secrets == nil {
		return nil, &DecryptionError{Field: SecretsField, Reason: "must be an object"}
	}
	return secrets, nil
}

func secretString(secrets map[string]json.RawMessage, name string) (string, error) {
	raw, ok := secrets[name]
	if !ok {
		return "", &DecryptionError{Field: secretPath(name), Reason: "missing"}
	}

	var value string
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) || json.Unmarshal(raw, &value) != nil {
		return "", &DecryptionError{Field: secretPath(name), Reason: "must be a string"}
	}
	if value == "" {
		return "", &DecryptionError{Field: secretPath(name), Reason: "empty"}
	}
	return value, nil
}

func secretPath(name string) string {
	return SecretsField + "." + name
}

// PendingInvitation is the platform's answer to a connection request for a
// user that is not linked yet. It carries no secrets and is immutable.
type PendingInvitation struct {
	fields map[string]json.RawMessage
}

// NewPendingInvitation parses a platform response body into an invitation.
func NewPendingInvitation(body []byte) (*PendingInvitation, error) {
	fields, err := parseObject(body)
	if err != nil {
		return nil, fmt.Errorf("invalid connection request: %w", err)
	}
	return &PendingInvitation{fields: fields}, nil
}

func (p *PendingInvitation) connectionKind() ConnectionKind { return KindConnectRequest }

// Field returns a single top-level field of the invitation, e.g. its URL.
func (p *PendingInvitation) Field(name string) (json.RawMessage, bool) {
	v, ok := p.fields[name]
	return bytes.Clone(v), ok
}

func (p *PendingInvitation) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.fields)
}

func parseObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("expected a JSON object")
	}
	return fields, nil
}
