package relayhandler

import (
	"context"

	"github.com/ruteri/connection-relay/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockClientConfigProvider mocks the ClientConfigProvider interface
type MockClientConfigProvider struct {
	mock.Mock
}

// GetClientConfig mocks the GetClientConfig method
func (m *MockClientConfigProvider) GetClientConfig(ctx context.Context, userID interfaces.LocalUserID, recipientPublicKey string) (*interfaces.EncryptedEnvelope, error) {
	args := m.Called(ctx, userID, recipientPublicKey)
	envelope, _ := args.Get(0).(*interfaces.EncryptedEnvelope)
	return envelope, args.Error(1)
}
