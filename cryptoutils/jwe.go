package cryptoutils

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v4"
)

var (
	jweKeyAlgorithms     = []jose.KeyAlgorithm{jose.ECDH_ES}
	jweContentEncryption = []jose.ContentEncryption{jose.A256GCM}
)

// JWECipher encrypts to JWE compact serialization using ECDH-ES key agreement
// and A256GCM content encryption. The protected header carries the ephemeral
// key, followed by the IV, ciphertext and authentication tag. Browsers can
// open it with WebCrypto or any JOSE library.
type JWECipher struct {
	KeyCodec
}

func (JWECipher) Encrypt(pub *ecdsa.PublicKey, plaintext []byte) (string, error) {
	if pub == nil {
		return "", errors.New("missing public key")
	}

	opts := (&jose.EncrypterOptions{}).WithContentType("application/json")
	encrypter, err := jose.NewEncrypter(jose.A256GCM, jose.Recipient{Algorithm: jose.ECDH_ES, Key: pub}, opts)
	if err != nil {
		return "", fmt.Errorf("could not create encrypter: %w", err)
	}

	object, err := encrypter.Encrypt(plaintext)
	if err != nil {
		return "", fmt.Errorf("could not encrypt: %w", err)
	}

	return object.CompactSerialize()
}

func (JWECipher) Decrypt(priv *ecdsa.PrivateKey, ciphertext string) ([]byte, error) {
	if priv == nil {
		return nil, errors.New("missing private key")
	}

	object, err := jose.ParseEncrypted(ciphertext, jweKeyAlgorithms, jweContentEncryption)
	if err != nil {
		return nil, fmt.Errorf("could not parse JWE: %w", err)
	}

	plaintext, err := object.Decrypt(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
