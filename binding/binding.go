// Package binding implements the certifier-gated pointer that a storage
// contract uses to decide which logic contract it trusts.
//
// Every storage contract keeps one binding record in its own table. The
// certifier is fixed at deployment. The authorized caller starts unset, and
// while it is unset every mutating entry point of the store fails.
package binding

import (
	"errors"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
)

var bindingKey = []byte("binding")

// ErrNotInitialized is returned when a store was deployed without a binding.
var ErrNotInitialized = errors.New("binding not initialized")

// Binding is the decoded binding record.
type Binding struct {
	Certifier        interfaces.Address
	AuthorizedCaller interfaces.OptionalAddress
}

type record struct {
	Certifier        interfaces.Address
	Bound            bool
	AuthorizedCaller interfaces.Address
}

// Init writes a fresh binding with no authorized caller.
func Init(st ledger.Storage, certifier interfaces.Address) error {
	has, err := st.Has(bindingKey)
	if err != nil {
		return err
	}
	if has {
		return errors.New("binding already initialized")
	}
	return ledger.PutRLP(st, bindingKey, &record{Certifier: certifier})
}

// Load reads the binding record.
func Load(st ledger.Storage) (*Binding, error) {
	var r record
	ok, err := ledger.GetRLP(st, bindingKey, &r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	b := &Binding{Certifier: r.Certifier}
	if r.Bound {
		b.AuthorizedCaller = interfaces.SomeAddress(r.AuthorizedCaller)
	}
	return b, nil
}

// RequireAuthorizedCaller fails unless sender is the bound logic contract.
func RequireAuthorizedCaller(st ledger.Storage, sender interfaces.Address) error {
	b, err := Load(st)
	if err != nil {
		return err
	}
	if !b.AuthorizedCaller.Matches(sender) {
		return interfaces.Fail(interfaces.ErrUnauthorized, "Incorrect caller")
	}
	return nil
}

// Rebind points the binding at addr. Only the certifier may do so, either
// directly or through the logic contract it is calling.
func Rebind(st ledger.Storage, originator, addr interfaces.Address) error {
	b, err := Load(st)
	if err != nil {
		return err
	}
	if originator != b.Certifier {
		return interfaces.Fail(interfaces.ErrUnauthorized, "Incorrect certifier")
	}
	return ledger.PutRLP(st, bindingKey, &record{
		Certifier:        b.Certifier,
		Bound:            true,
		AuthorizedCaller: addr,
	})
}

// EntryPoints returns the set_authorized_caller entry point shared by all stores.
func EntryPoints() map[string]ledger.EntryPoint {
	return map[string]ledger.EntryPoint{
		"set_authorized_caller": ledger.Entry(func(cc *ledger.CallContext, addr interfaces.Address) error {
			return Rebind(cc.Storage(), cc.Source(), addr)
		}),
	}
}

// Views returns the certifier and authorized_caller views shared by all stores.
func Views() map[string]ledger.ViewPoint {
	return map[string]ledger.ViewPoint{
		"certifier": ledger.ViewOf(func(vc *ledger.ViewContext, _ struct{}) (interfaces.Address, error) {
			b, err := Load(vc.Storage())
			if err != nil {
				return interfaces.Address{}, err
			}
			return b.Certifier, nil
		}),
		"authorized_caller": ledger.ViewOf(func(vc *ledger.ViewContext, _ struct{}) (interfaces.OptionalAddress, error) {
			b, err := Load(vc.Storage())
			if err != nil {
				return interfaces.NoAddress(), err
			}
			return b.AuthorizedCaller, nil
		}),
	}
}
