package interfaces

import (
	"context"
	"crypto/ecdsa"
)

// HybridCipher is the crypto collaborator used on both sides of the relay:
// opening the platform's secrets and sealing the client config for the
// recipient. Ciphertexts are textual so they can be carried in JSON.
type HybridCipher interface {
	// Encrypt seals plaintext for the holder of the private key matching pub.
	Encrypt(pub *ecdsa.PublicKey, plaintext []byte) (string, error)

	// Decrypt opens a ciphertext produced by Encrypt.
	Decrypt(priv *ecdsa.PrivateKey, ciphertext string) ([]byte, error)

	// ParsePrivateKey reads private key material in a textual encoding.
	ParsePrivateKey(material string) (*ecdsa.PrivateKey, error)

	// ParsePublicKey reads public key material in a textual, web-safe encoding.
	ParsePublicKey(material string) (*ecdsa.PublicKey, error)
}

// ConnectionPlatform is the remote platform holding connection records.
type ConnectionPlatform interface {
	// FetchConnection returns the user's established connection, locked.
	// found is false when the platform has no record for the user; that is
	// not an error.
	FetchConnection(ctx context.Context, userID LocalUserID) (conn *EstablishedConnection, found bool, err error)

	// CreateConnection asks the platform for a new connection invitation.
	CreateConnection(ctx context.Context, userID LocalUserID) (*PendingInvitation, error)
}

// ClientConfigProvider resolves a user's connection state and returns it
// encrypted for the given recipient public key.
type ClientConfigProvider interface {
	GetClientConfig(ctx context.Context, userID LocalUserID, recipientPublicKey string) (*EncryptedEnvelope, error)
}
