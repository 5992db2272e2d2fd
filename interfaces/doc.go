// Package interfaces defines the connection relay's domain types and the
// contracts between its components.
//
// # Connection state
//
// A user's connection with the platform is either an EstablishedConnection,
// whose secrets are sealed and must be unlocked before export, or a
// PendingInvitation the platform issued because no connection exists yet.
// Both satisfy ConnectionState and are wrapped in a ConfigEnvelope tagged
// "connected" or "connect_request" before being sealed for the browser.
//
// # Contracts
//
//   - HybridCipher: public-key encryption used for every ciphertext the relay touches
//   - ConnectionPlatform: fetch and create operations against the platform
//   - ClientConfigProvider: the relay operation exposed over HTTP
package interfaces
