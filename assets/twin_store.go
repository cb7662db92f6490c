package assets

import (
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ruteri/luw-coordination-registry/binding"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

// TwinStoreKind is the code kind of the asset-twin store.
const TwinStoreKind = "twin_store"

var twinPrefix = []byte("twin/")

// TwinRecordParams is the parameter of the store's register entry point.
type TwinRecordParams struct {
	AnchorHash              string
	ProviderID              string
	AssetRepositoryEndpoint string
	CreatorWalletAddress    interfaces.Address
}

// TwinKey addresses one anchor registered by one provider.
type TwinKey struct {
	AnchorHash string
	ProviderID string
}

type storedTwin struct {
	AssetRepositoryEndpoint string
	Creator                 interfaces.Address
}

// TwinStore holds anchors per (anchor hash, provider). The same hash may be
// registered once by each provider.
type TwinStore struct{}

// NewTwinStore returns the twin store code.
func NewTwinStore() *TwinStore {
	return &TwinStore{}
}

// InitTwinStore prepares a freshly deployed twin store.
func InitTwinStore(certifier interfaces.Address) func(ledger.Storage) error {
	return func(st ledger.Storage) error {
		return binding.Init(st, certifier)
	}
}

func (s *TwinStore) Kind() string { return TwinStoreKind }

func (s *TwinStore) EntryPoints() map[string]ledger.EntryPoint {
	eps := binding.EntryPoints()
	eps["register"] = ledger.Entry(s.register)
	return eps
}

func (s *TwinStore) Views() map[string]ledger.ViewPoint {
	views := binding.Views()
	views["fetch_asset_twin"] = ledger.ViewOf(s.fetch)
	return views
}

func twinKey(key TwinKey) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(&key)
	if err != nil {
		return nil, err
	}
	return append(slices.Clone(twinPrefix), enc...), nil
}

func (s *TwinStore) register(cc *ledger.CallContext, p TwinRecordParams) error {
	st := cc.Storage()
	if err := binding.RequireAuthorizedCaller(st, cc.Sender()); err != nil {
		return err
	}
	key, err := twinKey(TwinKey{AnchorHash: p.AnchorHash, ProviderID: p.ProviderID})
	if err != nil {
		return err
	}
	has, err := st.Has(key)
	if err != nil {
		return err
	}
	if has {
		return interfaces.Fail(interfaces.ErrAlreadyExists,
			fmt.Sprintf("Hash %s already exists for provider %s", p.AnchorHash, p.ProviderID))
	}
	return ledger.PutRLP(st, key, &storedTwin{
		AssetRepositoryEndpoint: p.AssetRepositoryEndpoint,
		Creator:                 p.CreatorWalletAddress,
	})
}

func (s *TwinStore) fetch(vc *ledger.ViewContext, k TwinKey) (interfaces.AssetTwin, error) {
	key, err := twinKey(k)
	if err != nil {
		return interfaces.AssetTwin{}, err
	}
	var t storedTwin
	ok, err := ledger.GetRLP(vc.Storage(), key, &t)
	if err != nil {
		return interfaces.AssetTwin{}, err
	}
	if !ok {
		return interfaces.AssetTwin{}, interfaces.Fail(interfaces.ErrNotFound,
			fmt.Sprintf("Hash %s does not exist for provider %s", k.AnchorHash, k.ProviderID))
	}
	return interfaces.AssetTwin{
		AnchorHash:              k.AnchorHash,
		ProviderID:              k.ProviderID,
		AssetRepositoryEndpoint: t.AssetRepositoryEndpoint,
		CreatorWalletAddress:    t.Creator,
	}, nil
}
