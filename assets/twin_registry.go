package assets

import (
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

// TwinRegistryKind is the code kind of the asset-twin tracing logic.
const TwinRegistryKind = "twin_registry"

// RegisterTwinParams is the parameter of register.
type RegisterTwinParams struct {
	AnchorHash              string
	ProviderID              string
	AssetRepositoryEndpoint string
}

type storeTwinRecord struct {
	AnchorHash              string
	ProviderID              string
	AssetRepositoryEndpoint string
	CreatorWalletAddress    interfaces.Address
}

type storeTwinKey struct {
	AnchorHash string
	ProviderID string
}

// TwinRegistry is the logic contract of asset-twin tracing. Only the owner of
// an existing provider may register anchors for it.
type TwinRegistry struct{}

// NewTwinRegistry returns the twin registry logic code.
func NewTwinRegistry() *TwinRegistry {
	return &TwinRegistry{}
}

// InitTwinRegistry records the certifier, the twin store and the provider
// directory the registry consults.
func InitTwinRegistry(certifier, store, providers interfaces.Address) func(ledger.Storage) error {
	return initLogic(logicConfig{Certifier: certifier, Store: store, Providers: providers})
}

func (r *TwinRegistry) Kind() string { return TwinRegistryKind }

func (r *TwinRegistry) EntryPoints() map[string]ledger.EntryPoint {
	return map[string]ledger.EntryPoint{
		"register":       ledger.Entry(r.register),
		"rebind_storage": ledger.Entry(rebindStorage),
	}
}

func (r *TwinRegistry) Views() map[string]ledger.ViewPoint {
	return map[string]ledger.ViewPoint{
		"fetch_asset_twin":         ledger.ViewOf(r.fetch),
		"storage_contract_address": ledger.ViewOf(storageContractAddress),
	}
}

func (r *TwinRegistry) register(cc *ledger.CallContext, p RegisterTwinParams) error {
	cfg, err := loadLogicConfig(cc.Storage())
	if err != nil {
		return err
	}
	exists, err := ledger.CallView[bool](cc, cfg.Providers, "verify_provider_exists", p.ProviderID)
	if err != nil {
		return err
	}
	if !exists {
		return interfaces.Fail(interfaces.ErrNotFound, "Provider ID does not exist")
	}
	owner, err := ledger.CallView[interfaces.Address](cc, cfg.Providers, "get_provider_owner_address", p.ProviderID)
	if err != nil {
		return err
	}
	if owner != cc.Sender() {
		return interfaces.Fail(interfaces.ErrUnauthorized, "Incorrect owner")
	}
	return cc.Transfer(cfg.Store, "register", storeTwinRecord{
		AnchorHash:              p.AnchorHash,
		ProviderID:              p.ProviderID,
		AssetRepositoryEndpoint: p.AssetRepositoryEndpoint,
		CreatorWalletAddress:    cc.Source(),
	})
}

func (r *TwinRegistry) fetch(vc *ledger.ViewContext, key TwinKey) (interfaces.AssetTwin, error) {
	cfg, err := loadLogicConfig(vc.Storage())
	if err != nil {
		return interfaces.AssetTwin{}, err
	}
	return ledger.CallView[interfaces.AssetTwin](vc, cfg.Store, "fetch_asset_twin", storeTwinKey(key))
}
