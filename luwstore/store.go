// Package luwstore is the storage contract holding every LUW record.
//
// The store checks only structural invariants: LUW existence, repository
// uniqueness and the binding to its logic contract. Catalog membership and
// ownership are the coordinator's job, so a caller bound directly to the
// store can append any state code.
package luwstore

import (
	"slices"

	"github.com/ruteri/luw-coordination-registry/binding"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
	"github.com/ruteri/luw-coordination-registry/statecatalog"
)

// Kind is the code kind of the LUW store.
const Kind = "luw_store"

// Store is the LUW storage contract.
type Store struct{}

// New returns the store code.
func New() *Store {
	return &Store{}
}

// Init prepares the table of a freshly deployed store.
func Init(certifier interfaces.Address) func(ledger.Storage) error {
	return func(st ledger.Storage) error {
		if err := binding.Init(st, certifier); err != nil {
			return err
		}
		return ledger.PutRLP(st, nextIDKey, uint64(0))
	}
}

func (s *Store) Kind() string { return Kind }

func (s *Store) EntryPoints() map[string]ledger.EntryPoint {
	eps := binding.EntryPoints()
	eps["create"] = ledger.Entry(s.create)
	eps["append_state"] = ledger.Entry(s.appendState)
	eps["add_repository"] = ledger.Entry(s.addRepository)
	eps["set_repository_state"] = ledger.Entry(s.setRepositoryState)
	return eps
}

func (s *Store) Views() map[string]ledger.ViewPoint {
	views := binding.Views()
	views["fetch"] = ledger.ViewOf(s.fetch)
	views["active_state"] = ledger.ViewOf(s.activeState)
	views["owner"] = ledger.ViewOf(s.owner)
	views["repositories"] = ledger.ViewOf(s.repositories)
	views["repository_state"] = ledger.ViewOf(s.repositoryState)
	views["next_id"] = ledger.ViewOf(s.nextID)
	return views
}

func (s *Store) create(cc *ledger.CallContext, p CreateParams) error {
	st := cc.Storage()
	if err := binding.RequireAuthorizedCaller(st, cc.Sender()); err != nil {
		return err
	}
	id, err := loadNextID(st)
	if err != nil {
		return err
	}
	r := &storedRecord{
		Creator:         cc.Source(),
		ProviderID:      p.ProviderID,
		ServiceEndpoint: p.ServiceEndpoint,
		History:         []uint64{uint64(statecatalog.LUWActive)},
	}
	if err := saveRecord(st, id, r); err != nil {
		return err
	}
	return ledger.PutRLP(st, nextIDKey, uint64(id)+1)
}

func (s *Store) appendState(cc *ledger.CallContext, p AppendStateParams) error {
	st := cc.Storage()
	if err := binding.RequireAuthorizedCaller(st, cc.Sender()); err != nil {
		return err
	}
	r, err := loadRecord(st, p.LUWID)
	if err != nil {
		return err
	}
	r.History = append(r.History, uint64(p.State))
	return saveRecord(st, p.LUWID, r)
}

func (s *Store) addRepository(cc *ledger.CallContext, p RepositoryParams) error {
	st := cc.Storage()
	if err := binding.RequireAuthorizedCaller(st, cc.Sender()); err != nil {
		return err
	}
	r, err := loadRecord(st, p.LUWID)
	if err != nil {
		return err
	}
	i, exists := r.repository(p.RepositoryID)
	if exists {
		return interfaces.Fail(interfaces.ErrAlreadyExists, "Repository ID already exists")
	}
	state := p.State
	if state == 0 {
		state = statecatalog.RepositoryOpen
	}
	r.Repositories = slices.Insert(r.Repositories, i, storedRepository{ID: p.RepositoryID, State: uint64(state)})
	return saveRecord(st, p.LUWID, r)
}

func (s *Store) setRepositoryState(cc *ledger.CallContext, p RepositoryParams) error {
	st := cc.Storage()
	if err := binding.RequireAuthorizedCaller(st, cc.Sender()); err != nil {
		return err
	}
	r, err := loadRecord(st, p.LUWID)
	if err != nil {
		return err
	}
	i, exists := r.repository(p.RepositoryID)
	if exists {
		r.Repositories[i].State = uint64(p.State)
	} else {
		r.Repositories = slices.Insert(r.Repositories, i, storedRepository{ID: p.RepositoryID, State: uint64(p.State)})
	}
	return saveRecord(st, p.LUWID, r)
}

func (s *Store) fetch(vc *ledger.ViewContext, id interfaces.LUWID) (interfaces.LUWRecord, error) {
	r, err := loadRecord(vc.Storage(), id)
	if err != nil {
		return interfaces.LUWRecord{}, err
	}
	return r.toRecord(), nil
}

func (s *Store) activeState(vc *ledger.ViewContext, id interfaces.LUWID) (interfaces.StateCode, error) {
	r, err := loadRecord(vc.Storage(), id)
	if err != nil {
		return 0, err
	}
	return r.activeState(), nil
}

func (s *Store) owner(vc *ledger.ViewContext, id interfaces.LUWID) (interfaces.Address, error) {
	r, err := loadRecord(vc.Storage(), id)
	if err != nil {
		return interfaces.Address{}, err
	}
	return r.Creator, nil
}

func (s *Store) repositories(vc *ledger.ViewContext, id interfaces.LUWID) (map[string]interfaces.StateCode, error) {
	r, err := loadRecord(vc.Storage(), id)
	if err != nil {
		return nil, err
	}
	return r.repositories(), nil
}

func (s *Store) repositoryState(vc *ledger.ViewContext, key RepositoryKey) (interfaces.StateCode, error) {
	r, err := loadRecord(vc.Storage(), key.LUWID)
	if err != nil {
		return 0, err
	}
	i, ok := r.repository(key.RepositoryID)
	if !ok {
		return 0, repositoryNotFound()
	}
	return interfaces.StateCode(r.Repositories[i].State), nil
}

func (s *Store) nextID(vc *ledger.ViewContext, _ struct{}) (interfaces.LUWID, error) {
	return loadNextID(vc.Storage())
}
