package interfaces

import "context"

// ProviderStatus is the lifecycle status of an asset provider.
type ProviderStatus uint64

const (
	ProviderActive     ProviderStatus = 1
	ProviderDeprecated ProviderStatus = 2
)

// String returns the catalog name of the status.
func (s ProviderStatus) String() string {
	switch s {
	case ProviderActive:
		return "active"
	case ProviderDeprecated:
		return "deprecated"
	default:
		return "unknown"
	}
}

// AssetProvider is a directory entry for an organization that anchors asset twins.
type AssetProvider struct {
	ProviderID           string         `json:"provider_id"`
	ProviderData         string         `json:"provider_data"`
	CreatorWalletAddress Address        `json:"creator_wallet_address"`
	Status               ProviderStatus `json:"status"`
}

// AssetTwin is the anchor of a digital twin registered by one provider.
type AssetTwin struct {
	AnchorHash              string  `json:"anchor_hash"`
	ProviderID              string  `json:"provider_id"`
	AssetRepositoryEndpoint string  `json:"asset_repository_endpoint"`
	CreatorWalletAddress    Address `json:"creator_wallet_address"`
}

// ProviderDirectory is the asset-provider collaborator.
type ProviderDirectory interface {
	CreateProvider(ctx context.Context, caller Address, providerID, providerData string) (*Receipt, error)
	SetProviderStatus(ctx context.Context, caller Address, providerID string, status ProviderStatus) (*Receipt, error)
	SetProviderData(ctx context.Context, caller Address, providerID, providerData string) (*Receipt, error)
	// SetProviderOwner transfers ownership; only the current owner may call it.
	SetProviderOwner(ctx context.Context, caller Address, providerID string, newOwner Address) (*Receipt, error)
	VerifyProviderExists(ctx context.Context, providerID string) (bool, error)
	ProviderOwnerAddress(ctx context.Context, providerID string) (Address, error)
	Provider(ctx context.Context, providerID string) (*AssetProvider, error)
}

// AssetTwinRegistry is the asset-twin tracing collaborator.
type AssetTwinRegistry interface {
	RegisterTwin(ctx context.Context, caller Address, anchorHash, providerID, repositoryEndpoint string) (*Receipt, error)
	FetchTwin(ctx context.Context, anchorHash, providerID string) (*AssetTwin, error)
}
