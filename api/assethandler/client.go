package assethandler

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ruteri/luw-coordination-registry/api"
	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// Client implements interfaces.ProviderDirectory and interfaces.AssetTwinRegistry
// against a remote registry API.
type Client struct {
	api *api.Client
}

var (
	_ interfaces.ProviderDirectory = (*Client)(nil)
	_ interfaces.AssetTwinRegistry = (*Client)(nil)
)

func NewClient(c *api.Client) *Client {
	return &Client{api: c}
}

func (c *Client) CreateProvider(ctx context.Context, caller interfaces.Address, providerID, providerData string) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	return c.api.Submit(ctx, "/api/providers", api.CreateProviderRequest{
		ProviderID:   providerID,
		ProviderData: providerData,
	})
}

func (c *Client) SetProviderStatus(ctx context.Context, caller interfaces.Address, providerID string, status interfaces.ProviderStatus) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	return c.api.Submit(ctx, fmt.Sprintf("/api/providers/%s/status", url.PathEscape(providerID)), api.ProviderStatusRequest{Status: status})
}

func (c *Client) SetProviderData(ctx context.Context, caller interfaces.Address, providerID, providerData string) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	return c.api.Submit(ctx, fmt.Sprintf("/api/providers/%s/data", url.PathEscape(providerID)), api.ProviderDataRequest{ProviderData: providerData})
}

func (c *Client) SetProviderOwner(ctx context.Context, caller interfaces.Address, providerID string, newOwner interfaces.Address) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	return c.api.Submit(ctx, fmt.Sprintf("/api/providers/%s/owner", url.PathEscape(providerID)), api.ProviderOwnerRequest{NewOwnerAddress: newOwner})
}

func (c *Client) VerifyProviderExists(ctx context.Context, providerID string) (bool, error) {
	var resp api.ExistsResponse
	err := c.api.Get(ctx, fmt.Sprintf("/api/providers/%s/exists", url.PathEscape(providerID)), &resp)
	return resp.Exists, err
}

func (c *Client) ProviderOwnerAddress(ctx context.Context, providerID string) (interfaces.Address, error) {
	var resp api.AddressResponse
	err := c.api.Get(ctx, fmt.Sprintf("/api/providers/%s/owner", url.PathEscape(providerID)), &resp)
	return resp.Address, err
}

func (c *Client) Provider(ctx context.Context, providerID string) (*interfaces.AssetProvider, error) {
	var provider interfaces.AssetProvider
	if err := c.api.Get(ctx, fmt.Sprintf("/api/providers/%s", url.PathEscape(providerID)), &provider); err != nil {
		return nil, err
	}
	return &provider, nil
}

func (c *Client) RegisterTwin(ctx context.Context, caller interfaces.Address, anchorHash, providerID, repositoryEndpoint string) (*interfaces.Receipt, error) {
	if err := c.api.CheckCaller(caller); err != nil {
		return nil, err
	}
	return c.api.Submit(ctx, "/api/twins", api.RegisterTwinRequest{
		AnchorHash:              anchorHash,
		ProviderID:              providerID,
		AssetRepositoryEndpoint: repositoryEndpoint,
	})
}

func (c *Client) FetchTwin(ctx context.Context, anchorHash, providerID string) (*interfaces.AssetTwin, error) {
	var twin interfaces.AssetTwin
	path := fmt.Sprintf("/api/twins/%s/%s", url.PathEscape(providerID), url.PathEscape(anchorHash))
	if err := c.api.Get(ctx, path, &twin); err != nil {
		return nil, err
	}
	return &twin, nil
}
