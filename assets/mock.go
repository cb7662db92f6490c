package assets

import (
	"context"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockAssets mocks the ProviderDirectory and AssetTwinRegistry interfaces
type MockAssets struct {
	mock.Mock
}

// CreateProvider mocks the CreateProvider method
func (m *MockAssets) CreateProvider(ctx context.Context, caller interfaces.Address, providerID, providerData string) (*interfaces.Receipt, error) {
	args := m.Called(ctx, caller, providerID, providerData)
	r, _ := args.Get(0).(*interfaces.Receipt)
	return r, args.Error(1)
}

// SetProviderStatus mocks the SetProviderStatus method
func (m *MockAssets) SetProviderStatus(ctx context.Context, caller interfaces.Address, providerID string, status interfaces.ProviderStatus) (*interfaces.Receipt, error) {
	args := m.Called(ctx, caller, providerID, status)
	r, _ := args.Get(0).(*interfaces.Receipt)
	return r, args.Error(1)
}

// SetProviderData mocks the SetProviderData method
func (m *MockAssets) SetProviderData(ctx context.Context, caller interfaces.Address, providerID, providerData string) (*interfaces.Receipt, error) {
	args := m.Called(ctx, caller, providerID, providerData)
	r, _ := args.Get(0).(*interfaces.Receipt)
	return r, args.Error(1)
}

// SetProviderOwner mocks the SetProviderOwner method
func (m *MockAssets) SetProviderOwner(ctx context.Context, caller interfaces.Address, providerID string, newOwner interfaces.Address) (*interfaces.Receipt, error) {
	args := m.Called(ctx, caller, providerID, newOwner)
	r, _ := args.Get(0).(*interfaces.Receipt)
	return r, args.Error(1)
}

// VerifyProviderExists mocks the VerifyProviderExists method
func (m *MockAssets) VerifyProviderExists(ctx context.Context, providerID string) (bool, error) {
	args := m.Called(ctx, providerID)
	return args.Bool(0), args.Error(1)
}

// ProviderOwnerAddress mocks the ProviderOwnerAddress method
func (m *MockAssets) ProviderOwnerAddress(ctx context.Context, providerID string) (interfaces.Address, error) {
	args := m.Called(ctx, providerID)
	return args.Get(0).(interfaces.Address), args.Error(1)
}

// Provider mocks the Provider method
func (m *MockAssets) Provider(ctx context.Context, providerID string) (*interfaces.AssetProvider, error) {
	args := m.Called(ctx, providerID)
	p, _ := args.Get(0).(*interfaces.AssetProvider)
	return p, args.Error(1)
}

// RegisterTwin mocks the RegisterTwin method
func (m *MockAssets) RegisterTwin(ctx context.Context, caller interfaces.Address, anchorHash, providerID, repositoryEndpoint string) (*interfaces.Receipt, error) {
	args := m.Called(ctx, caller, anchorHash, providerID, repositoryEndpoint)
	r, _ := args.Get(0).(*interfaces.Receipt)
	return r, args.Error(1)
}

// FetchTwin mocks the FetchTwin method
func (m *MockAssets) FetchTwin(ctx context.Context, anchorHash, providerID string) (*interfaces.AssetTwin, error) {
	args := m.Called(ctx, anchorHash, providerID)
	t, _ := args.Get(0).(*interfaces.AssetTwin)
	return t, args.Error(1)
}

var (
	_ interfaces.ProviderDirectory = (*MockAssets)(nil)
	_ interfaces.AssetTwinRegistry = (*MockAssets)(nil)
)
