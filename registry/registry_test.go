package registry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ruteri/luw-coordination-registry/coordinator"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
	"github.com/ruteri/luw-coordination-registry/statecatalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	certifier = interfaces.Address{0xce}
	owner     = interfaces.Address{0x01}
)

func TestBootstrapFreshLedger(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(ledger.Config{})

	r, err := Bootstrap(ctx, l, certifier, Options{})
	require.NoError(t, err)

	m := r.Manifest()
	assert.Equal(t, certifier, m.Certifier)
	assert.False(t, m.StrictTransitions)
	assert.Len(t, map[interfaces.Address]bool{
		m.ProviderStore: true, m.ProviderRegistry: true, m.TwinStore: true,
		m.TwinRegistry: true, m.LUWStore: true, m.Coordinator: true,
	}, 6)

	// every logic contract can already write through its store
	_, err = r.Coordinator.CreateLUW(ctx, owner, "did:acme", "https://coord")
	require.NoError(t, err)
	_, err = r.Assets.CreateProvider(ctx, owner, "did:acme", "")
	require.NoError(t, err)
	_, err = r.Assets.RegisterTwin(ctx, owner, "0x01", "did:acme", "https://repo")
	require.NoError(t, err)

	store, err := r.Coordinator.StorageContractAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.LUWStore, store)

	bound, err := ledger.Query[interfaces.OptionalAddress](ctx, l, m.LUWStore, "authorized_caller", struct{}{})
	require.NoError(t, err)
	assert.True(t, bound.Matches(m.Coordinator))
}

func TestBootstrapReattaches(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	l, err := ledger.New(db, ledger.Config{})
	require.NoError(t, err)
	first, err := Bootstrap(ctx, l, certifier, Options{})
	require.NoError(t, err)
	_, err = first.Coordinator.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)

	restarted, err := ledger.New(db, ledger.Config{})
	require.NoError(t, err)
	second, err := Bootstrap(ctx, restarted, certifier, Options{})
	require.NoError(t, err)
	assert.Equal(t, first.Manifest(), second.Manifest())

	state, err := second.Coordinator.ActiveState(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "active", state)

	_, err = Bootstrap(ctx, restarted, interfaces.Address{0x99}, Options{})
	assert.True(t, errors.Is(err, ErrCertifierMismatch))
}

func TestUpgradeRebindsStore(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(ledger.Config{})
	r, err := Bootstrap(ctx, l, certifier, Options{})
	require.NoError(t, err)
	old := r.Coordinator
	_, err = old.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)

	require.NoError(t, r.Upgrade(ctx, true))
	m := r.Manifest()
	assert.True(t, m.StrictTransitions)
	assert.Equal(t, []interfaces.Address{old.Address()}, m.Retired)
	assert.NotEqual(t, old.Address(), r.Coordinator.Address())

	_, err = old.ChangeState(ctx, owner, 0, statecatalog.LUWPrepareToCommit)
	require.Error(t, err)
	assert.Equal(t, "Incorrect caller", err.Error())

	_, err = r.Coordinator.ChangeState(ctx, owner, 0, statecatalog.LUWCommitted)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidTransition))
	_, err = r.Coordinator.ChangeState(ctx, owner, 0, statecatalog.LUWPrepareToCommit)
	require.NoError(t, err)
}

func TestBootstrapUpgradesOnModeChange(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	l, err := ledger.New(db, ledger.Config{})
	require.NoError(t, err)
	first, err := Bootstrap(ctx, l, certifier, Options{})
	require.NoError(t, err)

	restarted, err := ledger.New(db, ledger.Config{})
	require.NoError(t, err)
	second, err := Bootstrap(ctx, restarted, certifier, Options{StrictTransitions: true})
	require.NoError(t, err)
	assert.True(t, second.Manifest().StrictTransitions)
	assert.Equal(t, []interfaces.Address{first.Manifest().Coordinator}, second.Manifest().Retired)

	// the retired coordinator is attached again after another restart
	again, err := ledger.New(db, ledger.Config{})
	require.NoError(t, err)
	third, err := Bootstrap(ctx, again, certifier, Options{StrictTransitions: true})
	require.NoError(t, err)
	_, err = ledger.Query[interfaces.LUWID](ctx, again, third.Manifest().Retired[0], "next_id", struct{}{})
	require.NoError(t, err)
}

func TestBootstrapFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(ledger.Config{})
	r, err := Bootstrap(ctx, l, certifier, Options{})
	require.NoError(t, err)
	_, err = r.Coordinator.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, l.Export(ctx, &buf))

	restored := ledger.NewMemory(ledger.Config{})
	require.NoError(t, restored.Import(ctx, &buf))
	r2, err := Bootstrap(ctx, restored, certifier, Options{})
	require.NoError(t, err)

	o, err := r2.Coordinator.Owner(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, owner, o)
}

func TestBootstrapAdoptsBoundCoordinator(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	l, err := ledger.New(db, ledger.Config{})
	require.NoError(t, err)
	first, err := Bootstrap(ctx, l, certifier, Options{})
	require.NoError(t, err)
	m := first.Manifest()
	_, err = first.Coordinator.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)

	// an upgrade that stopped after the rebind, before the manifest was written
	next, err := l.Deploy(ctx, certifier, coordinator.New(coordinator.WithStrictTransitions()), coordinator.Init(certifier, m.LUWStore))
	require.NoError(t, err)
	_, err = l.Submit(ctx, certifier, next, "rebind_storage", struct{}{})
	require.NoError(t, err)

	restarted, err := ledger.New(db, ledger.Config{})
	require.NoError(t, err)
	second, err := Bootstrap(ctx, restarted, certifier, Options{StrictTransitions: true})
	require.NoError(t, err)

	got := second.Manifest()
	assert.Equal(t, next, got.Coordinator)
	assert.True(t, got.StrictTransitions)
	assert.Equal(t, []interfaces.Address{m.Coordinator}, got.Retired)

	_, err = second.Coordinator.ChangeState(ctx, owner, 0, statecatalog.LUWPrepareToCommit)
	require.NoError(t, err)

	saved, found, err := LoadManifest(restarted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, next, saved.Coordinator)
}

func TestBootstrapRejectsUnknownBinding(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	l, err := ledger.New(db, ledger.Config{})
	require.NoError(t, err)
	first, err := Bootstrap(ctx, l, certifier, Options{})
	require.NoError(t, err)

	_, err = l.Submit(ctx, certifier, first.Manifest().LUWStore, "set_authorized_caller", interfaces.Address{0xba, 0xd})
	require.NoError(t, err)

	restarted, err := ledger.New(db, ledger.Config{})
	require.NoError(t, err)
	_, err = Bootstrap(ctx, restarted, certifier, Options{})
	assert.ErrorIs(t, err, ErrStaleManifest)
}
