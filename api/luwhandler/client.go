package luwhandler

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ruteri/luw-coordination-registry/api"
	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// Client implements interfaces.LUWCoordinator against a remote registry API.
// The caller argument of mutations must be the address the api.Client signs
// with.
type Client struct {
	api *api.Client
}

var _ interfaces.LUWCoordinator = (*Client)(nil)

func NewClient(c *api.Client) *Client {
	return &Client{api: c}
}

func (c *Client) CreateLUW(ctx context.Context, caller interfaces.Address, providerID, serviceEndpoint string) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	return c.api.Submit(ctx, "/api/luw", api.CreateLUWRequest{
		ProviderID:      providerID,
		ServiceEndpoint: serviceEndpoint,
	})
}

func (c *Client) ChangeState(ctx context.Context, caller interfaces.Address, id interfaces.LUWID, state interfaces.StateCode) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	return c.api.Submit(ctx, fmt.Sprintf("/api/luw/%d/state", id), api.StateRequest{StateCode: state})
}

func (c *Client) AddRepository(ctx context.Context, caller interfaces.Address, id interfaces.LUWID, repositoryID string) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	return c.api.Submit(ctx, fmt.Sprintf("/api/luw/%d/repositories", id), api.AddRepositoryRequest{RepositoryID: repositoryID})
}

func (c *Client) ChangeRepositoryState(ctx context.Context, caller interfaces.Address, id interfaces.LUWID, repositoryID string, state interfaces.StateCode) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/api/luw/%d/repositories/%s/state", id, url.PathEscape(repositoryID))
	return c.api.Submit(ctx, path, api.StateRequest{StateCode: state})
}

func (c *Client) RebindStorage(ctx context.Context, caller interfaces.Address) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	return c.api.Submit(ctx, "/api/admin/rebind", struct{}{})
}

func (c *Client) Fetch(ctx context.Context, id interfaces.LUWID) (*interfaces.LUWView, error) {
	var view interfaces.LUWView
	if err := c.api.Get(ctx, fmt.Sprintf("/api/luw/%d", id), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) ActiveState(ctx context.Context, id interfaces.LUWID) (string, error) {
	var resp api.StateResponse
	err := c.api.Get(ctx, fmt.Sprintf("/api/luw/%d/state", id), &resp)
	return resp.State, err
}

func (c *Client) Owner(ctx context.Context, id interfaces.LUWID) (interfaces.Address, error) {
	var resp api.AddressResponse
	err := c.api.Get(ctx, fmt.Sprintf("/api/luw/%d/owner", id), &resp)
	return resp.Address, err
}

func (c *Client) Repositories(ctx context.Context, id interfaces.LUWID) (map[string]string, error) {
	var resp api.RepositoriesResponse
	if err := c.api.Get(ctx, fmt.Sprintf("/api/luw/%d/repositories", id), &resp); err != nil {
		return nil, err
	}
	return resp.Repositories, nil
}

func (c *Client) RepositoryState(ctx context.Context, id interfaces.LUWID, repositoryID string) (string, error) {
	var resp api.StateResponse
	err := c.api.Get(ctx, fmt.Sprintf("/api/luw/%d/repositories/%s/state", id, url.PathEscape(repositoryID)), &resp)
	return resp.State, err
}

func (c *Client) NextID(ctx context.Context) (interfaces.LUWID, error) {
	var resp api.NextIDResponse
	err := c.api.Get(ctx, "/api/luw/next_id", &resp)
	return resp.NextID, err
}

func (c *Client) StorageContractAddress(ctx context.Context) (interfaces.Address, error) {
	var resp api.AddressResponse
	err := c.api.Get(ctx, "/api/storage_contract_address", &resp)
	return resp.Address, err
}
