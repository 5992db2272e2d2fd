/*
Package cryptoutils provides the hybrid encryption used by the connection relay.

The relay handles ciphertext in two places: secrets the platform sealed for the
relay (and for a user-scoped key nested inside it), and the client config the
relay seals for the end user's browser session. Both go through the
interfaces.HybridCipher contract, implemented here twice:

  - JWECipher: JWE compact serialization, ECDH-ES key agreement, A256GCM.
    This is the default and what browser clients are expected to speak.
  - ECIESCipher: P-256 ECDH, HKDF-SHA256 and AES-256-GCM with a compact
    dot-separated base64url encoding.

All keys are NIST P-256. Key material is accepted as PEM, JWK or base64url, see
ParsePrivateKey and ParsePublicKey.
*/
package cryptoutils
