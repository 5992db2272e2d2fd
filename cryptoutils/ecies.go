package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	eciesInfo    = "connection-relay ecies v1"
	eciesKeySize = 32
	gcmNonceSize = 12
	gcmTagSize   = 16
)

// ECIESCipher implements Elliptic Curve Integrated Encryption Scheme with
// P-256 ECDH key agreement, HKDF-SHA256 key derivation and AES-256-GCM.
// A fresh ephemeral key is generated for each encryption.
//
// Ciphertext format, each part base64url without padding:
//
//	<ephemeral public key>.<iv>.<ciphertext>.<tag>
type ECIESCipher struct {
	KeyCodec
}

// Encrypt seals data for the holder of the private key matching pub.
func (ECIESCipher) Encrypt(pub *ecdsa.PublicKey, data []byte) (string, error) {
	if pub == nil {
		return "", errors.New("missing public key")
	}
	recipient, err := pub.ECDH()
	if err != nil {
		return "", fmt.Errorf("unsupported public key: %w", err)
	}

	ephemeralKey, err := recipient.Curve().GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ephemeral key: %w", err)
	}

	sharedSecret, err := ephemeralKey.ECDH(recipient)
	if err != nil {
		return "", fmt.Errorf("failed to derive shared secret: %w", err)
	}

	ephemeralPublicKeyBytes := ephemeralKey.PublicKey().Bytes()
	aesGCM, err := eciesAEAD(sharedSecret, ephemeralPublicKeyBytes)
	if err != nil {
		return "", err
	}

	iv := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	sealed := aesGCM.Seal(nil, iv, data, nil)
	ciphertext, tag := sealed[:len(sealed)-gcmTagSize], sealed[len(sealed)-gcmTagSize:]

	return strings.Join([]string{
		base64.RawURLEncoding.EncodeToString(ephemeralPublicKeyBytes),
		base64.RawURLEncoding.EncodeToString(iv),
		base64.RawURLEncoding.EncodeToString(ciphertext),
		base64.RawURLEncoding.EncodeToString(tag),
	}, "."), nil
}

// Decrypt opens a ciphertext produced by Encrypt.
func (ECIESCipher) Decrypt(priv *ecdsa.PrivateKey, encryptedData string) ([]byte, error) {
	if priv == nil {
		return nil, errors.New("missing private key")
	}
	privateKey, err := priv.ECDH()
	if err != nil {
		return nil, fmt.Errorf("unsupported private key: %w", err)
	}

	parts := strings.Split(encryptedData, ".")
	if len(parts) != 4 {
		return nil, errors.New("encrypted data has invalid format")
	}

	decoded := make([][]byte, len(parts))
	for i, part := range parts {
		decoded[i], err = base64.RawURLEncoding.DecodeString(part)
		if err != nil {
			return nil, fmt.Errorf("encrypted data has invalid encoding: %w", err)
		}
	}
	ephemeralKeyBytes, iv, ciphertext, tag := decoded[0], decoded[1], decoded[2], decoded[3]

	if len(iv) != gcmNonceSize || len(tag) != gcmTagSize {
		return nil, errors.New("encrypted data has invalid format")
	}

	ephemeralKey, err := privateKey.Curve().NewPublicKey(ephemeralKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal ephemeral public key: %w", err)
	}

	sharedSecret, err := privateKey.ECDH(ephemeralKey)
	if err != nil {
		return nil, fmt.Errorf("failed to derive shared secret: %w", err)
	}

	aesGCM, err := eciesAEAD(sharedSecret, ephemeralKeyBytes)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plaintext, nil
}

// eciesAEAD derives the AES-GCM key from the ECDH shared secret, salted with
// the ephemeral public key.
func eciesAEAD(sharedSecret, ephemeralPublicKey []byte) (cipher.AEAD, error) {
	key := make([]byte, eciesKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sharedSecret, ephemeralPublicKey, []byte(eciesInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	aesBlock, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(aesBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
