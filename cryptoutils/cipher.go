package cryptoutils

import (
	"fmt"

	"github.com/ruteri/connection-relay/interfaces"
)

const (
	CipherJWE   = "jwe"
	CipherECIES = "ecies"
)

var (
	_ interfaces.HybridCipher = JWECipher{}
	_ interfaces.HybridCipher = ECIESCipher{}
)

// DefaultCipher is used when no cipher is configured.
var DefaultCipher interfaces.HybridCipher = JWECipher{}

// CipherByName returns the hybrid cipher registered under name. An empty name
// selects DefaultCipher.
func CipherByName(name string) (interfaces.HybridCipher, error) {
	switch name {
	case "":
		return DefaultCipher, nil
	case CipherJWE:
		return JWECipher{}, nil
	case CipherECIES:
		return ECIESCipher{}, nil
	default:
		return nil, fmt.Errorf("unknown cipher %q, expected %q or %q", name, CipherJWE, CipherECIES)
	}
}
