package assets

import (
	"context"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

// Client implements interfaces.ProviderDirectory and interfaces.AssetTwinRegistry
// over the logic contracts deployed on a local ledger.
type Client struct {
	ledger    *ledger.Ledger
	providers interfaces.Address
	twins     interfaces.Address
}

// NewClient returns a client for the provider directory and twin registry
// logic contracts.
func NewClient(l *ledger.Ledger, providers, twins interfaces.Address) *Client {
	return &Client{ledger: l, providers: providers, twins: twins}
}

func (c *Client) CreateProvider(ctx context.Context, caller interfaces.Address, providerID, providerData string) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.providers, "create_asset_provider", CreateProviderParams{
		ProviderID:   providerID,
		ProviderData: providerData,
	})
}

func (c *Client) SetProviderStatus(ctx context.Context, caller interfaces.Address, providerID string, status interfaces.ProviderStatus) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.providers, "set_provider_status", SetProviderStatusParams{
		ProviderID: providerID,
		Status:     status,
	})
}

func (c *Client) SetProviderData(ctx context.Context, caller interfaces.Address, providerID, providerData string) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.providers, "set_provider_data", SetProviderDataParams{
		ProviderID:   providerID,
		ProviderData: providerData,
	})
}

func (c *Client) SetProviderOwner(ctx context.Context, caller interfaces.Address, providerID string, newOwner interfaces.Address) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.providers, "set_provider_owner", SetProviderOwnerParams{
		ProviderID:      providerID,
		NewOwnerAddress: newOwner,
	})
}

func (c *Client) VerifyProviderExists(ctx context.Context, providerID string) (bool, error) {
	return ledger.Query[bool](ctx, c.ledger, c.providers, "verify_provider_exists", providerID)
}

func (c *Client) ProviderOwnerAddress(ctx context.Context, providerID string) (interfaces.Address, error) {
	return ledger.Query[interfaces.Address](ctx, c.ledger, c.providers, "get_provider_owner_address", providerID)
}

func (c *Client) Provider(ctx context.Context, providerID string) (*interfaces.AssetProvider, error) {
	p, err := ledger.Query[interfaces.AssetProvider](ctx, c.ledger, c.providers, "get_asset_provider", providerID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) RegisterTwin(ctx context.Context, caller interfaces.Address, anchorHash, providerID, repositoryEndpoint string) (*interfaces.Receipt, error) {
	return c.ledger.Submit(ctx, caller, c.twins, "register", RegisterTwinParams{
		AnchorHash:              anchorHash,
		ProviderID:              providerID,
		AssetRepositoryEndpoint: repositoryEndpoint,
	})
}

func (c *Client) FetchTwin(ctx context.Context, anchorHash, providerID string) (*interfaces.AssetTwin, error) {
	t, err := ledger.Query[interfaces.AssetTwin](ctx, c.ledger, c.twins, "fetch_asset_twin", TwinKey{
		AnchorHash: anchorHash,
		ProviderID: providerID,
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var (
	_ interfaces.ProviderDirectory = (*Client)(nil)
	_ interfaces.AssetTwinRegistry = (*Client)(nil)
)
