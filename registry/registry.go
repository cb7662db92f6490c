package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ruteri/luw-coordination-registry/assets"
	"github.com/ruteri/luw-coordination-registry/coordinator"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
	"github.com/ruteri/luw-coordination-registry/luwstore"
)

// ErrCertifierMismatch is returned when a ledger was bootstrapped by a
// different certifier.
var ErrCertifierMismatch = errors.New("ledger was bootstrapped by a different certifier")

// ErrStaleManifest is returned when the LUW store is bound to a contract the
// manifest cannot account for.
var ErrStaleManifest = errors.New("manifest does not match the LUW store binding")

// Options configures Bootstrap.
type Options struct {
	// StrictTransitions selects the strict coordinator. On an existing ledger
	// a different setting triggers an Upgrade.
	StrictTransitions bool
	Log               *slog.Logger
}

// Registry is a bootstrapped contract set with clients for its logic contracts.
type Registry struct {
	ledger   *ledger.Ledger
	log      *slog.Logger
	manifest Manifest

	Coordinator *coordinator.Client
	Assets      *assets.Client
}

// Bootstrap deploys the contract set on a fresh ledger or re-attaches it on
// one that already holds a manifest.
func Bootstrap(ctx context.Context, l *ledger.Ledger, certifier interfaces.Address, opts Options) (*Registry, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{ledger: l, log: log}

	m, found, err := LoadManifest(l)
	if err != nil {
		return nil, err
	}
	if found {
		if m.Certifier != certifier {
			return nil, fmt.Errorf("%w: %s", ErrCertifierMismatch, m.Certifier.Hex())
		}
		if err := r.attach(ctx, m); err != nil {
			return nil, err
		}
		log.Info("contracts attached", "coordinator", m.Coordinator.Hex(), "luwStore", m.LUWStore.Hex())
	} else {
		if err := r.deploy(ctx, certifier, opts.StrictTransitions); err != nil {
			return nil, err
		}
		log.Info("contracts deployed", "coordinator", r.manifest.Coordinator.Hex(), "luwStore", r.manifest.LUWStore.Hex())
	}

	if r.manifest.StrictTransitions != opts.StrictTransitions {
		if err := r.Upgrade(ctx, opts.StrictTransitions); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) deploy(ctx context.Context, certifier interfaces.Address, strict bool) error {
	l := r.ledger
	m := Manifest{Certifier: certifier, StrictTransitions: strict}
	var err error

	if m.ProviderStore, err = l.Deploy(ctx, certifier, assets.NewProviderStore(), assets.InitProviderStore(certifier)); err != nil {
		return err
	}
	if m.ProviderRegistry, err = l.Deploy(ctx, certifier, assets.NewProviderRegistry(), assets.InitProviderRegistry(certifier, m.ProviderStore)); err != nil {
		return err
	}
	if m.TwinStore, err = l.Deploy(ctx, certifier, assets.NewTwinStore(), assets.InitTwinStore(certifier)); err != nil {
		return err
	}
	if m.TwinRegistry, err = l.Deploy(ctx, certifier, assets.NewTwinRegistry(), assets.InitTwinRegistry(certifier, m.TwinStore, m.ProviderRegistry)); err != nil {
		return err
	}
	if m.LUWStore, err = l.Deploy(ctx, certifier, luwstore.New(), luwstore.Init(certifier)); err != nil {
		return err
	}
	if m.Coordinator, err = l.Deploy(ctx, certifier, newCoordinator(strict), coordinator.Init(certifier, m.LUWStore)); err != nil {
		return err
	}

	for _, logic := range []interfaces.Address{m.ProviderRegistry, m.TwinRegistry, m.Coordinator} {
		if _, err := l.Submit(ctx, certifier, logic, "rebind_storage", struct{}{}); err != nil {
			return fmt.Errorf("rebinding storage of %s: %w", logic.Hex(), err)
		}
	}
	if err := saveManifest(l, &m); err != nil {
		return err
	}
	r.setManifest(m)
	return nil
}

func (r *Registry) attach(ctx context.Context, m *Manifest) error {
	l := r.ledger
	code := []struct {
		addr     interfaces.Address
		contract ledger.Contract
	}{
		{m.ProviderStore, assets.NewProviderStore()},
		{m.ProviderRegistry, assets.NewProviderRegistry()},
		{m.TwinStore, assets.NewTwinStore()},
		{m.TwinRegistry, assets.NewTwinRegistry()},
		{m.LUWStore, luwstore.New()},
		{m.Coordinator, newCoordinator(m.StrictTransitions)},
	}
	for _, c := range code {
		if err := l.Attach(c.addr, c.contract); err != nil {
			return err
		}
	}
	// retired coordinators stay readable
	for _, addr := range m.Retired {
		kind, ok, err := l.KindAt(addr)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: retired coordinator %s", ledger.ErrUnknownContract, addr.Hex())
		}
		if err := l.Attach(addr, newCoordinator(kind == coordinator.StrictKind)); err != nil {
			return err
		}
	}
	if err := r.reconcile(ctx, m); err != nil {
		return err
	}
	r.setManifest(*m)
	return nil
}

// reconcile adopts the coordinator the LUW store is actually bound to. An
// Upgrade interrupted after its rebind leaves the manifest naming the old
// coordinator, which the store now refuses.
func (r *Registry) reconcile(ctx context.Context, m *Manifest) error {
	l := r.ledger
	bound, err := ledger.Query[interfaces.OptionalAddress](ctx, l, m.LUWStore, "authorized_caller", struct{}{})
	if err != nil {
		return fmt.Errorf("reading LUW store binding: %w", err)
	}
	addr, ok := bound.Get()
	if !ok {
		return fmt.Errorf("%w: LUW store has no authorized caller", ErrStaleManifest)
	}
	if addr == m.Coordinator {
		return nil
	}

	kind, found, err := l.KindAt(addr)
	if err != nil {
		return err
	}
	if !found || (kind != coordinator.Kind && kind != coordinator.StrictKind) {
		return fmt.Errorf("%w: store bound to %s, manifest names %s", ErrStaleManifest, addr.Hex(), m.Coordinator.Hex())
	}
	if err := l.Attach(addr, newCoordinator(kind == coordinator.StrictKind)); err != nil {
		return err
	}
	store, err := ledger.Query[interfaces.Address](ctx, l, addr, "storage_contract_address", struct{}{})
	if err != nil {
		return err
	}
	cert, err := ledger.Query[interfaces.Address](ctx, l, addr, "certifier", struct{}{})
	if err != nil {
		return err
	}
	if store != m.LUWStore || cert != m.Certifier {
		return fmt.Errorf("%w: coordinator %s belongs to another deployment", ErrStaleManifest, addr.Hex())
	}

	r.log.Warn("manifest named a stale coordinator, adopting the bound one",
		"manifest", m.Coordinator.Hex(), "bound", addr.Hex())
	retired := make([]interfaces.Address, 0, len(m.Retired)+1)
	for _, a := range m.Retired {
		if a != addr {
			retired = append(retired, a)
		}
	}
	m.Retired = append(retired, m.Coordinator)
	m.Coordinator = addr
	m.StrictTransitions = kind == coordinator.StrictKind
	return saveManifest(l, m)
}

// Upgrade deploys a new coordinator against the existing LUW store and
// rebinds the store to it.
func (r *Registry) Upgrade(ctx context.Context, strict bool) error {
	m := r.manifest
	addr, err := r.ledger.Deploy(ctx, m.Certifier, newCoordinator(strict), coordinator.Init(m.Certifier, m.LUWStore))
	if err != nil {
		return err
	}
	if _, err := r.ledger.Submit(ctx, m.Certifier, addr, "rebind_storage", struct{}{}); err != nil {
		return fmt.Errorf("rebinding LUW store to %s: %w", addr.Hex(), err)
	}

	m.Retired = append(append([]interfaces.Address(nil), m.Retired...), m.Coordinator)
	m.Coordinator = addr
	m.StrictTransitions = strict
	if err := saveManifest(r.ledger, &m); err != nil {
		return err
	}
	r.setManifest(m)
	r.log.Info("coordinator upgraded", "coordinator", addr.Hex(), "strict", strict)
	return nil
}

// Manifest returns the current contract addresses.
func (r *Registry) Manifest() Manifest {
	return r.manifest
}

func (r *Registry) setManifest(m Manifest) {
	r.manifest = m
	r.Coordinator = coordinator.NewClient(r.ledger, m.Coordinator)
	r.Assets = assets.NewClient(r.ledger, m.ProviderRegistry, m.TwinRegistry)
}

func newCoordinator(strict bool) *coordinator.Coordinator {
	if strict {
		return coordinator.New(coordinator.WithStrictTransitions())
	}
	return coordinator.New()
}
