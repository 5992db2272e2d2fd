package interfaces

import "encoding/json"

// ConfigEnvelope tags a ConnectionState so the receiving client can dispatch
// on it. The kind is always derived from the wrapped state.
type ConfigEnvelope struct {
	kind    ConnectionKind
	payload ConnectionState
}

// NewConfigEnvelope wraps the given connection state.
func NewConfigEnvelope(state ConnectionState) *ConfigEnvelope {
	return &ConfigEnvelope{
		kind:    state.connectionKind(),
		payload: state,
	}
}

func (e *ConfigEnvelope) Kind() ConnectionKind {
	return e.kind
}

func (e *ConfigEnvelope) Payload() ConnectionState {
	return e.payload
}

type configEnvelopeJSON struct {
	Type    ConnectionKind  `json:"type"`
	Payload ConnectionState `json:"payload"`
}

// MarshalJSON encodes the envelope as {"type":...,"payload":...}. A locked
// established connection makes this fail with ErrConnectionLocked.
func (e *ConfigEnvelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(configEnvelopeJSON{Type: e.kind, Payload: e.payload})
}

// EncryptedEnvelope is the relay's final output: the serialized ConfigEnvelope
// encrypted for the recipient's public key.
type EncryptedEnvelope struct {
	Encrypted string `json:"encrypted"`
}
