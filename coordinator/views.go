package coordinator

import (
	"fmt"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
	"github.com/ruteri/luw-coordination-registry/statecatalog"
)

// stateName renders a code for external readers. Codes outside the catalog
// can only reach the store through a caller bound to it directly.
func stateName(v *statecatalog.Vocabulary, code interfaces.StateCode) string {
	if name, ok := v.StateName(code); ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", code)
}

func storeAddress(vc *ledger.ViewContext) (interfaces.Address, error) {
	cfg, err := loadConfig(vc.Storage())
	if err != nil {
		return interfaces.Address{}, err
	}
	return cfg.Store, nil
}

func (c *Coordinator) fetch(vc *ledger.ViewContext, id interfaces.LUWID) (interfaces.LUWView, error) {
	store, err := storeAddress(vc)
	if err != nil {
		return interfaces.LUWView{}, err
	}
	r, err := ledger.CallView[interfaces.LUWRecord](vc, store, "fetch", id)
	if err != nil {
		return interfaces.LUWView{}, err
	}
	view := interfaces.LUWView{
		ID:                   id,
		CreatorWalletAddress: r.CreatorWalletAddress,
		ProviderID:           r.ProviderID,
		ServiceEndpoint:      r.ServiceEndpoint,
		ActiveState:          stateName(statecatalog.LUWStates, r.ActiveState()),
		StateHistory:         make(map[uint64]string, len(r.StateHistory)),
		RepositoryEndpoints:  make(map[string]string, len(r.RepositoryEndpoints)),
	}
	for seq, code := range r.StateHistory {
		view.StateHistory[seq] = stateName(statecatalog.LUWStates, code)
	}
	for repo, code := range r.RepositoryEndpoints {
		view.RepositoryEndpoints[repo] = stateName(statecatalog.RepositoryStates, code)
	}
	return view, nil
}

func (c *Coordinator) activeState(vc *ledger.ViewContext, id interfaces.LUWID) (string, error) {
	store, err := storeAddress(vc)
	if err != nil {
		return "", err
	}
	code, err := ledger.CallView[interfaces.StateCode](vc, store, "active_state", id)
	if err != nil {
		return "", err
	}
	return stateName(statecatalog.LUWStates, code), nil
}

func (c *Coordinator) owner(vc *ledger.ViewContext, id interfaces.LUWID) (interfaces.Address, error) {
	store, err := storeAddress(vc)
	if err != nil {
		return interfaces.Address{}, err
	}
	return ledger.CallView[interfaces.Address](vc, store, "owner", id)
}

func (c *Coordinator) repositories(vc *ledger.ViewContext, id interfaces.LUWID) (map[string]string, error) {
	store, err := storeAddress(vc)
	if err != nil {
		return nil, err
	}
	repos, err := ledger.CallView[map[string]interfaces.StateCode](vc, store, "repositories", id)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(repos))
	for repo, code := range repos {
		out[repo] = stateName(statecatalog.RepositoryStates, code)
	}
	return out, nil
}

func (c *Coordinator) repositoryState(vc *ledger.ViewContext, key RepositoryKey) (string, error) {
	store, err := storeAddress(vc)
	if err != nil {
		return "", err
	}
	code, err := ledger.CallView[interfaces.StateCode](vc, store, "repository_state", storeRepositoryKey(key))
	if err != nil {
		return "", err
	}
	return stateName(statecatalog.RepositoryStates, code), nil
}

func (c *Coordinator) nextID(vc *ledger.ViewContext, _ struct{}) (interfaces.LUWID, error) {
	store, err := storeAddress(vc)
	if err != nil {
		return 0, err
	}
	return ledger.CallView[interfaces.LUWID](vc, store, "next_id", struct{}{})
}

func (c *Coordinator) storageContractAddress(vc *ledger.ViewContext, _ struct{}) (interfaces.Address, error) {
	return storeAddress(vc)
}

func (c *Coordinator) certifier(vc *ledger.ViewContext, _ struct{}) (interfaces.Address, error) {
	cfg, err := loadConfig(vc.Storage())
	if err != nil {
		return interfaces.Address{}, err
	}
	return cfg.Certifier, nil
}
