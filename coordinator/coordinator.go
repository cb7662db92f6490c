// Package coordinator is the logic contract in front of the LUW store.
//
// The coordinator reads owner and state from the store through views, checks
// ownership and catalog membership, and only then forwards the mutation as a
// one-way operation. It never observes the result of what it forwards.
package coordinator

import (
	"fmt"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
	"github.com/ruteri/luw-coordination-registry/statecatalog"
)

const (
	// Kind is the code kind of the permissive coordinator.
	Kind = "luw_coordinator"
	// StrictKind is the code kind of a coordinator enforcing the transition tables.
	StrictKind = "luw_coordinator_strict"
)

var configKey = []byte("config")

type config struct {
	Certifier interfaces.Address
	Store     interfaces.Address
}

// Option configures the coordinator code.
type Option func(*Coordinator)

// WithStrictTransitions makes change_state and change_repository_state
// enforce the catalog transition tables on top of catalog membership.
func WithStrictTransitions() Option {
	return func(c *Coordinator) {
		c.strict = true
	}
}

// Coordinator is the LUW logic contract.
type Coordinator struct {
	strict bool
}

// New returns coordinator code.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init records the certifier and the store address of a fresh deployment.
func Init(certifier, store interfaces.Address) func(ledger.Storage) error {
	return func(st ledger.Storage) error {
		return ledger.PutRLP(st, configKey, &config{Certifier: certifier, Store: store})
	}
}

// Strict reports whether the transition tables are enforced.
func (c *Coordinator) Strict() bool { return c.strict }

func (c *Coordinator) Kind() string {
	if c.strict {
		return StrictKind
	}
	return Kind
}

func (c *Coordinator) EntryPoints() map[string]ledger.EntryPoint {
	return map[string]ledger.EntryPoint{
		"create_luw":              ledger.Entry(c.createLUW),
		"change_state":            ledger.Entry(c.changeState),
		"add_repository":          ledger.Entry(c.addRepository),
		"change_repository_state": ledger.Entry(c.changeRepositoryState),
		"rebind_storage":          ledger.Entry(c.rebindStorage),
	}
}

func (c *Coordinator) Views() map[string]ledger.ViewPoint {
	return map[string]ledger.ViewPoint{
		"fetch":                    ledger.ViewOf(c.fetch),
		"active_state":             ledger.ViewOf(c.activeState),
		"owner":                    ledger.ViewOf(c.owner),
		"repositories":             ledger.ViewOf(c.repositories),
		"repository_state":         ledger.ViewOf(c.repositoryState),
		"next_id":                  ledger.ViewOf(c.nextID),
		"storage_contract_address": ledger.ViewOf(c.storageContractAddress),
		"certifier":                ledger.ViewOf(c.certifier),
	}
}

func loadConfig(st ledger.Storage) (*config, error) {
	var cfg config
	ok, err := ledger.GetRLP(st, configKey, &cfg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("coordinator not initialized")
	}
	return &cfg, nil
}

// requireOwner fails unless the immediate caller created the LUW.
func requireOwner(cc *ledger.CallContext, store interfaces.Address, id interfaces.LUWID) error {
	owner, err := ledger.CallView[interfaces.Address](cc, store, "owner", id)
	if err != nil {
		return err
	}
	if owner != cc.Sender() {
		return interfaces.Fail(interfaces.ErrUnauthorized, "Non-matching owner address")
	}
	return nil
}

func (c *Coordinator) createLUW(cc *ledger.CallContext, p CreateLUWParams) error {
	cfg, err := loadConfig(cc.Storage())
	if err != nil {
		return err
	}
	return cc.Transfer(cfg.Store, "create", storeCreate{ProviderID: p.ProviderID, ServiceEndpoint: p.ServiceEndpoint})
}

func (c *Coordinator) changeState(cc *ledger.CallContext, p ChangeStateParams) error {
	cfg, err := loadConfig(cc.Storage())
	if err != nil {
		return err
	}
	if err := requireOwner(cc, cfg.Store, p.LUWID); err != nil {
		return err
	}
	if !statecatalog.LUWStates.Contains(p.State) {
		return interfaces.Fail(interfaces.ErrInvalidState, "Incorrect state ID")
	}
	if c.strict {
		current, err := ledger.CallView[interfaces.StateCode](cc, cfg.Store, "active_state", p.LUWID)
		if err != nil {
			return err
		}
		if !statecatalog.LUWStates.Allowed(current, p.State) {
			return interfaces.Fail(interfaces.ErrInvalidTransition, "Transition not allowed")
		}
	}
	return cc.Transfer(cfg.Store, "append_state", storeAppendState{LUWID: p.LUWID, State: p.State})
}

func (c *Coordinator) addRepository(cc *ledger.CallContext, p AddRepositoryParams) error {
	cfg, err := loadConfig(cc.Storage())
	if err != nil {
		return err
	}
	if err := requireOwner(cc, cfg.Store, p.LUWID); err != nil {
		return err
	}
	current, err := ledger.CallView[interfaces.StateCode](cc, cfg.Store, "active_state", p.LUWID)
	if err != nil {
		return err
	}
	if current != statecatalog.LUWActive {
		return interfaces.Fail(interfaces.ErrInvalidTransition, "LUW is not Active")
	}
	return cc.Transfer(cfg.Store, "add_repository", storeRepository{
		LUWID:        p.LUWID,
		RepositoryID: p.RepositoryID,
		State:        statecatalog.RepositoryOpen,
	})
}

func (c *Coordinator) changeRepositoryState(cc *ledger.CallContext, p ChangeRepositoryStateParams) error {
	cfg, err := loadConfig(cc.Storage())
	if err != nil {
		return err
	}
	if err := requireOwner(cc, cfg.Store, p.LUWID); err != nil {
		return err
	}
	repos, err := ledger.CallView[map[string]interfaces.StateCode](cc, cfg.Store, "repositories", p.LUWID)
	if err != nil {
		return err
	}
	current, ok := repos[p.RepositoryID]
	if !ok {
		return interfaces.Fail(interfaces.ErrNotFound, "Repository ID does not exist")
	}
	if !statecatalog.RepositoryStates.Contains(p.State) {
		return interfaces.Fail(interfaces.ErrInvalidState, "Incorrect state")
	}
	if c.strict && !statecatalog.RepositoryStates.Allowed(current, p.State) {
		return interfaces.Fail(interfaces.ErrInvalidTransition, "Transition not allowed")
	}
	return cc.Transfer(cfg.Store, "set_repository_state", storeRepository{
		LUWID:        p.LUWID,
		RepositoryID: p.RepositoryID,
		State:        p.State,
	})
}

func (c *Coordinator) rebindStorage(cc *ledger.CallContext, _ struct{}) error {
	cfg, err := loadConfig(cc.Storage())
	if err != nil {
		return err
	}
	if cc.Sender() != cfg.Certifier {
		return interfaces.Fail(interfaces.ErrUnauthorized, "Incorrect certifier")
	}
	return cc.Transfer(cfg.Store, "set_authorized_caller", cc.Self())
}
