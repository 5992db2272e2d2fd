package cryptoutils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
)

// KeyCodec reads the textual key encodings accepted by the relay. It is
// embedded in every cipher so the ciphers satisfy interfaces.HybridCipher.
type KeyCodec struct{}

func (KeyCodec) ParsePrivateKey(material string) (*ecdsa.PrivateKey, error) {
	return ParsePrivateKey(material)
}

func (KeyCodec) ParsePublicKey(material string) (*ecdsa.PublicKey, error) {
	return ParsePublicKey(material)
}

// ParsePrivateKey parses a P-256 private key from any of:
//   - PEM, either "PRIVATE KEY" (PKCS#8) or "EC PRIVATE KEY" (SEC 1)
//   - a JWK as JSON
//   - base64url of a JWK, PKCS#8 DER or SEC 1 DER
func ParsePrivateKey(material string) (*ecdsa.PrivateKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, errors.New("empty private key")
	}

	var key any
	var err error
	switch {
	case strings.HasPrefix(material, "-----BEGIN"):
		block, _ := pem.Decode([]byte(material))
		if block == nil {
			return nil, errors.New("failed to decode private key PEM")
		}
		key, err = parsePrivateKeyDER(block.Bytes)
	case strings.HasPrefix(material, "{"):
		key, err = parseJWK([]byte(material))
	default:
		var raw []byte
		raw, err = decodeBase64URL(material)
		if err != nil {
			return nil, fmt.Errorf("failed to decode private key: %w", err)
		}
		if strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
			key, err = parseJWK(raw)
		} else {
			key, err = parsePrivateKeyDER(raw)
		}
	}
	if err != nil {
		return nil, err
	}

	privateKey, ok := key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an ECDSA private key: %T", key)
	}
	if privateKey.Curve != elliptic.P256() {
		return nil, fmt.Errorf("unsupported curve %s", privateKey.Curve.Params().Name)
	}
	return privateKey, nil
}

// ParsePublicKey parses a P-256 public key from any of:
//   - PEM "PUBLIC KEY" (SPKI)
//   - a JWK as JSON
//   - base64url of a JWK, SPKI DER or an uncompressed point
//
// A private JWK is accepted and reduced to its public part.
func ParsePublicKey(material string) (*ecdsa.PublicKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, errors.New("empty public key")
	}

	var key any
	var err error
	switch {
	case strings.HasPrefix(material, "-----BEGIN"):
		block, _ := pem.Decode([]byte(material))
		if block == nil || block.Type != "PUBLIC KEY" {
			return nil, errors.New("failed to decode public key PEM")
		}
		key, err = x509.ParsePKIXPublicKey(block.Bytes)
	case strings.HasPrefix(material, "{"):
		key, err = parseJWK([]byte(material))
	default:
		var raw []byte
		raw, err = decodeBase64URL(material)
		if err != nil {
			return nil, fmt.Errorf("failed to decode public key: %w", err)
		}
		switch {
		case strings.HasPrefix(strings.TrimSpace(string(raw)), "{"):
			key, err = parseJWK(raw)
		case len(raw) == 65 && raw[0] == 4:
			x, y := elliptic.Unmarshal(elliptic.P256(), raw)
			if x == nil {
				return nil, errors.New("invalid uncompressed P-256 point")
			}
			key = &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
		default:
			key, err = x509.ParsePKIXPublicKey(raw)
		}
	}
	if err != nil {
		return nil, err
	}

	if privateKey, ok := key.(*ecdsa.PrivateKey); ok {
		key = &privateKey.PublicKey
	}
	publicKey, ok := key.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("not an ECDSA public key: %T", key)
	}
	if publicKey.Curve != elliptic.P256() {
		return nil, fmt.Errorf("unsupported curve %s", publicKey.Curve.Params().Name)
	}
	if _, err := publicKey.ECDH(); err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}
	return publicKey, nil
}

// GenerateKey creates a fresh P-256 key pair.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

// MarshalPrivateKeyPEM encodes the key as a PKCS#8 "PRIVATE KEY" PEM block.
func MarshalPrivateKeyPEM(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// MarshalPublicKeyPEM encodes the key as an SPKI "PUBLIC KEY" PEM block.
func MarshalPublicKeyPEM(key *ecdsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// MarshalPublicKeyJWK encodes the key as a JWK, the format browsers export
// from WebCrypto.
func MarshalPublicKeyJWK(key *ecdsa.PublicKey) (string, error) {
	jwk := jose.JSONWebKey{Key: key, Use: "enc"}
	encoded, err := jwk.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func parsePrivateKeyDER(der []byte) (any, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		// Try SEC 1 if PKCS#8 fails
		ecKey, ecErr := x509.ParseECPrivateKey(der)
		if ecErr != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return ecKey, nil
	}
	return key, nil
}

func parseJWK(data []byte) (any, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("failed to parse JWK: %w", err)
	}
	return jwk.Key, nil
}

func decodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}
