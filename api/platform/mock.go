package platform

import (
	"context"

	"github.com/ruteri/connection-relay/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockPlatform mocks the ConnectionPlatform interface
type MockPlatform struct {
	mock.Mock
}

// FetchConnection mocks the FetchConnection method
func (m *MockPlatform) FetchConnection(ctx context.Context, userID interfaces.LocalUserID) (*interfaces.EstablishedConnection, bool, error) {
	args := m.Called(ctx, userID)
	conn, _ := args.Get(0).(*interfaces.EstablishedConnection)
	return conn, args.Bool(1), args.Error(2)
}

// CreateConnection mocks the CreateConnection method
func (m *MockPlatform) CreateConnection(ctx context.Context, userID interfaces.LocalUserID) (*interfaces.PendingInvitation, error) {
	args := m.Called(ctx, userID)
	invitation, _ := args.Get(0).(*interfaces.PendingInvitation)
	return invitation, args.Error(1)
}
