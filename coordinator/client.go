package coordinator

import (
	"context"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

// Client implements interfaces.LUWCoordinator by submitting to a coordinator
// deployed on a local ledger.
type Client struct {
	ledger  *ledger.Ledger
	address interfaces.Address
}

// NewClient returns a client for the coordinator deployed at address.
func NewClient(l *ledger.Ledger, address interfaces.Address) *Client {
	return &Client{ledger: l, address: address}
}

// Address returns the coordinator contract address.
func (c *Client) Address() interfaces.Address {
	return c.address
}

// CreateLUW submits create_luw. The new id is next_id as read before the call.
func (c *Client) CreateLUW(ctx context.Context, caller interfaces.Address, providerID, serviceEndpoint string) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.address, "create_luw", CreateLUWParams{
		ProviderID:      providerID,
		ServiceEndpoint: serviceEndpoint,
	})
}

// ChangeState submits change_state.
func (c *Client) ChangeState(ctx context.Context, caller interfaces.Address, id interfaces.LUWID, state interfaces.StateCode) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.address, "change_state", ChangeStateParams{LUWID: id, State: state})
}

// AddRepository submits add_repository.
func (c *Client) AddRepository(ctx context.Context, caller interfaces.Address, id interfaces.LUWID, repositoryID string) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.address, "add_repository", AddRepositoryParams{LUWID: id, RepositoryID: repositoryID})
}

// ChangeRepositoryState submits change_repository_state.
func (c *Client) ChangeRepositoryState(ctx context.Context, caller interfaces.Address, id interfaces.LUWID, repositoryID string, state interfaces.StateCode) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.address, "change_repository_state", ChangeRepositoryStateParams{
		LUWID:        id,
		RepositoryID: repositoryID,
		State:        state,
	})
}

// RebindStorage submits rebind_storage.
func (c *Client) RebindStorage(ctx context.Context, caller interfaces.Address) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.address, "rebind_storage", struct{}{})
}

func (c *Client) Fetch(ctx context.Context, id interfaces.LUWID) (*interfaces.LUWView, error) {
	view, err := ledger.Query[interfaces.LUWView](ctx, c.ledger, c.address, "fetch", id)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) ActiveState(ctx context.Context, id interfaces.LUWID) (string, error) {
	return ledger.Query[string](ctx, c.ledger, c.address, "active_state", id)
}

func (c *Client) Owner(ctx context.Context, id interfaces.LUWID) (interfaces.Address, error) {
	return ledger.Query[interfaces.Address](ctx, c.ledger, c.address, "owner", id)
}

func (c *Client) Repositories(ctx context.Context, id interfaces.LUWID) (map[string]string, error) {
	return ledger.Query[map[string]string](ctx, c.ledger, c.address, "repositories", id)
}

func (c *Client) RepositoryState(ctx context.Context, id interfaces.LUWID, repositoryID string) (string, error) {
	return ledger.Query[string](ctx, c.ledger, c.address, "repository_state", RepositoryKey{LUWID: id, RepositoryID: repositoryID})
}

func (c *Client) NextID(ctx context.Context) (interfaces.LUWID, error) {
	return ledger.Query[interfaces.LUWID](ctx, c.ledger, c.address, "next_id", struct{}{})
}

func (c *Client) StorageContractAddress(ctx context.Context) (interfaces.Address, error) {
	return ledger.Query[interfaces.Address](ctx, c.ledger, c.address, "storage_contract_address", struct{}{})
}

var _ interfaces.LUWCoordinator = (*Client)(nil)
