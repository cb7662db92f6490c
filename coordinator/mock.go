package coordinator

import (
	"context"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockCoordinator mocks the LUWCoordinator interface
type MockCoordinator struct {
	mock.Mock
}

func receiptArg(args mock.Arguments) (*interfaces.Receipt, error) {
	r, _ := args.Get(0).(*interfaces.Receipt)
	return r, args.Error(1)
}

// CreateLUW mocks the CreateLUW method
func (m *MockCoordinator) CreateLUW(ctx context.Context, caller interfaces.Address, providerID, serviceEndpoint string) (*interfaces.Receipt, error) {
	return receiptArg(m.Called(ctx, caller, providerID, serviceEndpoint))
}

// ChangeState mocks the ChangeState method
func (m *MockCoordinator) ChangeState(ctx context.Context, caller interfaces.Address, id interfaces.LUWID, state interfaces.StateCode) (*interfaces.Receipt, error) {
	return receiptArg(m.Called(ctx, caller, id, state))
}

// AddRepository mocks the AddRepository method
func (m *MockCoordinator) AddRepository(ctx context.Context, caller interfaces.Address, id interfaces.LUWID, repositoryID string) (*interfaces.Receipt, error) {
	return receiptArg(m.Called(ctx, caller, id, repositoryID))
}

// ChangeRepositoryState mocks the ChangeRepositoryState method
func (m *MockCoordinator) ChangeRepositoryState(ctx context.Context, caller interfaces.Address, id interfaces.LUWID, repositoryID string, state interfaces.StateCode) (*interfaces.Receipt, error) {
	return receiptArg(m.Called(ctx, caller, id, repositoryID, state))
}

// RebindStorage mocks the RebindStorage method
func (m *MockCoordinator) RebindStorage(ctx context.Context, caller interfaces.Address) (*interfaces.Receipt, error) {
	return receiptArg(m.Called(ctx, caller))
}

// Fetch mocks the Fetch method
func (m *MockCoordinator) Fetch(ctx context.Context, id interfaces.LUWID) (*interfaces.LUWView, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*interfaces.LUWView)
	return v, args.Error(1)
}

// ActiveState mocks the ActiveState method
func (m *MockCoordinator) ActiveState(ctx context.Context, id interfaces.LUWID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// Owner mocks the Owner method
func (m *MockCoordinator) Owner(ctx context.Context, id interfaces.LUWID) (interfaces.Address, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(interfaces.Address), args.Error(1)
}

// Repositories mocks the Repositories method
func (m *MockCoordinator) Repositories(ctx context.Context, id interfaces.LUWID) (map[string]string, error) {
	args := m.Called(ctx, id)
	repos, _ := args.Get(0).(map[string]string)
	return repos, args.Error(1)
}

// RepositoryState mocks the RepositoryState method
func (m *MockCoordinator) RepositoryState(ctx context.Context, id interfaces.LUWID, repositoryID string) (string, error) {
	args := m.Called(ctx, id, repositoryID)
	return args.String(0), args.Error(1)
}

// NextID mocks the NextID method
func (m *MockCoordinator) NextID(ctx context.Context) (interfaces.LUWID, error) {
	args := m.Called(ctx)
	return args.Get(0).(interfaces.LUWID), args.Error(1)
}

// StorageContractAddress mocks the StorageContractAddress method
func (m *MockCoordinator) StorageContractAddress(ctx context.Context) (interfaces.Address, error) {
	args := m.Called(ctx)
	return args.Get(0).(interfaces.Address), args.Error(1)
}

var _ interfaces.LUWCoordinator = (*MockCoordinator)(nil)
