package interfaces

import (
	"errors"
	"fmt"
)

// Errors surfaced by the relay. Failures from the remote platform and the
// crypto collaborator are wrapped so that both the class (errors.Is) and the
// underlying cause remain available to callers.
var (
	ErrInvalidBaseURL      = errors.New("invalid platform base url")
	ErrInvalidUserID       = errors.New("invalid local user id")
	ErrFetchConnection     = errors.New("could not fetch connection")
	ErrCreateConnection    = errors.New("could not create connection request")
	ErrInvalidRecipientKey = errors.New("invalid recipient public key")
	ErrSerialization       = errors.New("could not serialize client config")
	ErrEncryption          = errors.New("could not encrypt client config")

	// ErrConnectionLocked is returned when an established connection is
	// exported before its secrets were decrypted. Correct orchestration never
	// produces it.
	ErrConnectionLocked = errors.New("connection secrets are still encrypted")
)

// DecryptionError reports a secrets field that could not be validated or
// decrypted.
type DecryptionError struct {
	// Field is the dotted path of the offending field, e.g. "secrets.passkey".
	Field string

	// Reason is a short human-readable description.
	Reason string

	// Err is the underlying crypto failure, if any.
	Err error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not decrypt %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("could not decrypt %s: %s", e.Field, e.Reason)
}

func (e *DecryptionError) Unwrap() error {
	return e.Err
}
