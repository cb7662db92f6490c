package assets

import (
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

// ProviderRegistryKind is the code kind of the provider directory logic.
const ProviderRegistryKind = "provider_registry"

// CreateProviderParams is the parameter of create_asset_provider.
type CreateProviderParams struct {
	ProviderID   string
	ProviderData string
}

// SetProviderStatusParams is the parameter of set_provider_status.
type SetProviderStatusParams struct {
	ProviderID string
	Status     interfaces.ProviderStatus
}

// SetProviderDataParams is the parameter of set_provider_data.
type SetProviderDataParams struct {
	ProviderID   string
	ProviderData string
}

// SetProviderOwnerParams is the parameter of set_provider_owner.
type SetProviderOwnerParams struct {
	ProviderID      string
	NewOwnerAddress interfaces.Address
}

type storeProviderData struct {
	ProviderID   string
	ProviderData string
}

type storeProviderOwner struct {
	ProviderID      string
	NewOwnerAddress interfaces.Address
}

type storeProviderRecord struct {
	ProviderID           string
	ProviderData         string
	CreatorWalletAddress interfaces.Address
}

type storeProviderStatus struct {
	ProviderID string
	Status     interfaces.ProviderStatus
}

// ProviderRegistry is the logic contract of the provider directory.
type ProviderRegistry struct{}

// NewProviderRegistry returns the provider directory logic code.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{}
}

// InitProviderRegistry records the certifier and the provider store.
func InitProviderRegistry(certifier, store interfaces.Address) func(ledger.Storage) error {
	return initLogic(logicConfig{Certifier: certifier, Store: store})
}

func (r *ProviderRegistry) Kind() string { return ProviderRegistryKind }

func (r *ProviderRegistry) EntryPoints() map[string]ledger.EntryPoint {
	return map[string]ledger.EntryPoint{
		"create_asset_provider": ledger.Entry(r.create),
		"set_provider_status":   ledger.Entry(r.setStatus),
		"set_provider_data":     ledger.Entry(r.setData),
		"set_provider_owner":    ledger.Entry(r.setOwner),
		"rebind_storage":        ledger.Entry(rebindStorage),
	}
}

func (r *ProviderRegistry) Views() map[string]ledger.ViewPoint {
	return map[string]ledger.ViewPoint{
		"verify_provider_exists":     ledger.ViewOf(r.exists),
		"get_provider_owner_address": ledger.ViewOf(r.ownerAddress),
		"get_asset_provider":         ledger.ViewOf(r.provider),
		"storage_contract_address":   ledger.ViewOf(storageContractAddress),
	}
}

func (r *ProviderRegistry) create(cc *ledger.CallContext, p CreateProviderParams) error {
	cfg, err := loadLogicConfig(cc.Storage())
	if err != nil {
		return err
	}
	exists, err := ledger.CallView[bool](cc, cfg.Store, "verify_provider_exists", p.ProviderID)
	if err != nil {
		return err
	}
	if exists {
		return interfaces.Fail(interfaces.ErrAlreadyExists, "Provider ID already exists")
	}
	return cc.Transfer(cfg.Store, "create_asset_provider", storeProviderRecord{
		ProviderID:           p.ProviderID,
		ProviderData:         p.ProviderData,
		CreatorWalletAddress: cc.Source(),
	})
}

// ownedStore returns the provider store once the immediate caller is shown
// to own the provider.
func ownedStore(cc *ledger.CallContext, providerID string) (interfaces.Address, error) {
	cfg, err := loadLogicConfig(cc.Storage())
	if err != nil {
		return interfaces.Address{}, err
	}
	owner, err := ledger.CallView[interfaces.Address](cc, cfg.Store, "get_provider_owner_address", providerID)
	if err != nil {
		return interfaces.Address{}, err
	}
	if owner != cc.Sender() {
		return interfaces.Address{}, interfaces.Fail(interfaces.ErrUnauthorized, "Incorrect owner")
	}
	return cfg.Store, nil
}

func (r *ProviderRegistry) setStatus(cc *ledger.CallContext, p SetProviderStatusParams) error {
	store, err := ownedStore(cc, p.ProviderID)
	if err != nil {
		return err
	}
	if p.Status != interfaces.ProviderActive && p.Status != interfaces.ProviderDeprecated {
		return interfaces.Fail(interfaces.ErrInvalidState, "Incorrect status")
	}
	return cc.Transfer(store, "set_provider_status", storeProviderStatus(p))
}

func (r *ProviderRegistry) setData(cc *ledger.CallContext, p SetProviderDataParams) error {
	store, err := ownedStore(cc, p.ProviderID)
	if err != nil {
		return err
	}
	return cc.Transfer(store, "set_provider_data", storeProviderData(p))
}

// setOwner hands the provider to another wallet. The previous owner loses
// the right to change it or register twins for it.
func (r *ProviderRegistry) setOwner(cc *ledger.CallContext, p SetProviderOwnerParams) error {
	store, err := ownedStore(cc, p.ProviderID)
	if err != nil {
		return err
	}
	return cc.Transfer(store, "set_provider_owner", storeProviderOwner(p))
}

func (r *ProviderRegistry) exists(vc *ledger.ViewContext, id string) (bool, error) {
	cfg, err := loadLogicConfig(vc.Storage())
	if err != nil {
		return false, err
	}
	return ledger.CallView[bool](vc, cfg.Store, "verify_provider_exists", id)
}

func (r *ProviderRegistry) ownerAddress(vc *ledger.ViewContext, id string) (interfaces.Address, error) {
	cfg, err := loadLogicConfig(vc.Storage())
	if err != nil {
		return interfaces.Address{}, err
	}
	return ledger.CallView[interfaces.Address](vc, cfg.Store, "get_provider_owner_address", id)
}

func (r *ProviderRegistry) provider(vc *ledger.ViewContext, id string) (interfaces.AssetProvider, error) {
	cfg, err := loadLogicConfig(vc.Storage())
	if err != nil {
		return interfaces.AssetProvider{}, err
	}
	return ledger.CallView[interfaces.AssetProvider](vc, cfg.Store, "get_asset_provider", id)
}
