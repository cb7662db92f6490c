package assets

import (
	"slices"

	"github.com/ruteri/luw-coordination-registry/binding"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

// ProviderStoreKind is the code kind of the provider store.
const ProviderStoreKind = "provider_store"

var providerPrefix = []byte("provider/")

// ProviderRecordParams is the parameter of the store's create_asset_provider.
type ProviderRecordParams struct {
	ProviderID           string
	ProviderData         string
	CreatorWalletAddress interfaces.Address
}

// ProviderStatusParams is the parameter of set_provider_status.
type ProviderStatusParams struct {
	ProviderID string
	Status     interfaces.ProviderStatus
}

// ProviderDataParams is the parameter of the store's set_provider_data.
type ProviderDataParams struct {
	ProviderID   string
	ProviderData string
}

// ProviderOwnerParams is the parameter of the store's set_provider_owner.
type ProviderOwnerParams struct {
	ProviderID      string
	NewOwnerAddress interfaces.Address
}

type storedProvider struct {
	ProviderID   string
	ProviderData string
	Creator      interfaces.Address
	Status       uint64
}

// ProviderStore holds asset providers keyed by provider id.
type ProviderStore struct{}

// NewProviderStore returns the provider store code.
func NewProviderStore() *ProviderStore {
	return &ProviderStore{}
}

// InitProviderStore prepares a freshly deployed provider store.
func InitProviderStore(certifier interfaces.Address) func(ledger.Storage) error {
	return func(st ledger.Storage) error {
		return binding.Init(st, certifier)
	}
}

func (s *ProviderStore) Kind() string { return ProviderStoreKind }

func (s *ProviderStore) EntryPoints() map[string]ledger.EntryPoint {
	eps := binding.EntryPoints()
	eps["create_asset_provider"] = ledger.Entry(s.create)
	eps["set_provider_status"] = ledger.Entry(s.setStatus)
	eps["set_provider_data"] = ledger.Entry(s.setData)
	eps["set_provider_owner"] = ledger.Entry(s.setOwner)
	return eps
}

func (s *ProviderStore) Views() map[string]ledger.ViewPoint {
	views := binding.Views()
	views["verify_provider_exists"] = ledger.ViewOf(s.exists)
	views["get_provider_owner_address"] = ledger.ViewOf(s.ownerAddress)
	views["get_asset_provider"] = ledger.ViewOf(s.provider)
	return views
}

func providerKey(id string) []byte {
	return append(slices.Clone(providerPrefix), id...)
}

func providerNotFound() error {
	return interfaces.Fail(interfaces.ErrNotFound, "Provider ID does not exist")
}

func loadProvider(st ledger.Storage, id string) (*storedProvider, error) {
	var p storedProvider
	ok, err := ledger.GetRLP(st, providerKey(id), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, providerNotFound()
	}
	return &p, nil
}

func (s *ProviderStore) create(cc *ledger.CallContext, p ProviderRecordParams) error {
	st := cc.Storage()
	if err := binding.RequireAuthorizedCaller(st, cc.Sender()); err != nil {
		return err
	}
	has, err := st.Has(providerKey(p.ProviderID))
	if err != nil {
		return err
	}
	if has {
		return interfaces.Fail(interfaces.ErrAlreadyExists, "Provider ID already exists")
	}
	return ledger.PutRLP(st, providerKey(p.ProviderID), &storedProvider{
		ProviderID:   p.ProviderID,
		ProviderData: p.ProviderData,
		Creator:      p.CreatorWalletAddress,
		Status:       uint64(interfaces.ProviderActive),
	})
}

// update applies fn to an existing provider on behalf of the bound logic.
func (s *ProviderStore) update(cc *ledger.CallContext, id string, fn func(*storedProvider)) error {
	st := cc.Storage()
	if err := binding.RequireAuthorizedCaller(st, cc.Sender()); err != nil {
		return err
	}
	stored, err := loadProvider(st, id)
	if err != nil {
		return err
	}
	fn(stored)
	return ledger.PutRLP(st, providerKey(id), stored)
}

func (s *ProviderStore) setStatus(cc *ledger.CallContext, p ProviderStatusParams) error {
	return s.update(cc, p.ProviderID, func(sp *storedProvider) { sp.Status = uint64(p.Status) })
}

func (s *ProviderStore) setData(cc *ledger.CallContext, p ProviderDataParams) error {
	return s.update(cc, p.ProviderID, func(sp *storedProvider) { sp.ProviderData = p.ProviderData })
}

func (s *ProviderStore) setOwner(cc *ledger.CallContext, p ProviderOwnerParams) error {
	return s.update(cc, p.ProviderID, func(sp *storedProvider) { sp.Creator = p.NewOwnerAddress })
}

func (s *ProviderStore) exists(vc *ledger.ViewContext, id string) (bool, error) {
	return vc.Storage().Has(providerKey(id))
}

func (s *ProviderStore) ownerAddress(vc *ledger.ViewContext, id string) (interfaces.Address, error) {
	p, err := loadProvider(vc.Storage(), id)
	if err != nil {
		return interfaces.Address{}, err
	}
	return p.Creator, nil
}

func (s *ProviderStore) provider(vc *ledger.ViewContext, id string) (interfaces.AssetProvider, error) {
	p, err := loadProvider(vc.Storage(), id)
	if err != nil {
		return interfaces.AssetProvider{}, err
	}
	return interfaces.AssetProvider{
		ProviderID:           p.ProviderID,
		ProviderData:         p.ProviderData,
		CreatorWalletAddress: p.Creator,
		Status:               interfaces.ProviderStatus(p.Status),
	}, nil
}
