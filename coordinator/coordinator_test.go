package coordinator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ruteri/luw-coordination-registry/coordinator"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
	"github.com/ruteri/luw-coordination-registry/luwstore"
	"github.com/ruteri/luw-coordination-registry/statecatalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	certifier = interfaces.Address{0xce}
	owner     = interfaces.Address{0x01}
	intruder  = interfaces.Address{0x02}
)

type fixture struct {
	ledger *ledger.Ledger
	store  interfaces.Address
	client *coordinator.Client
}

func deployCoordinator(t *testing.T, f *fixture, opts ...coordinator.Option) *coordinator.Client {
	t.Helper()
	ctx := context.Background()
	addr, err := f.ledger.Deploy(ctx, certifier, coordinator.New(opts...), coordinator.Init(certifier, f.store))
	require.NoError(t, err)
	c := coordinator.NewClient(f.ledger, addr)
	_, err = c.RebindStorage(ctx, certifier)
	require.NoError(t, err)
	return c
}

func newFixture(t *testing.T, opts ...coordinator.Option) *fixture {
	t.Helper()
	l := ledger.NewMemory(ledger.Config{})
	store, err := l.Deploy(context.Background(), certifier, luwstore.New(), luwstore.Init(certifier))
	require.NoError(t, err)
	f := &fixture{ledger: l, store: store}
	f.client = deployCoordinator(t, f, opts...)
	return f
}

// snapshot returns the committed state of every LUW for unchanged-state assertions.
func (f *fixture) snapshot(t *testing.T) []*interfaces.LUWView {
	t.Helper()
	ctx := context.Background()
	next, err := f.client.NextID(ctx)
	require.NoError(t, err)
	var out []*interfaces.LUWView
	for id := interfaces.LUWID(0); id < next; id++ {
		v, err := f.client.Fetch(ctx, id)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client

	receipt, err := c.CreateLUW(ctx, owner, "P1", "https://coordinator.example")
	require.NoError(t, err)
	assert.Equal(t, interfaces.ReceiptApplied, receipt.Status)
	assert.Equal(t, 2, receipt.Operations, "create_luw forwards exactly one operation")

	next, err := c.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, interfaces.LUWID(1), next)

	state, err := c.ActiveState(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "active", state)

	got, err := c.Owner(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, owner, got, "the creator is the originating wallet, not the coordinator")

	_, err = c.ChangeState(ctx, owner, 0, statecatalog.LUWPrepareToCommit)
	require.NoError(t, err)
	state, err = c.ActiveState(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "prepare_to_commit", state)

	_, err = c.ChangeState(ctx, intruder, 0, statecatalog.LUWPrepareToCommit)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrUnauthorized))
	assert.Equal(t, "Non-matching owner address", err.Error())

	view, err := c.Fetch(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]string{1: "active", 2: "prepare_to_commit"}, view.StateHistory)
	assert.Equal(t, "P1", view.ProviderID)
	assert.Equal(t, "https://coordinator.example", view.ServiceEndpoint)
}

func TestRepositoryScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client

	_, err := c.CreateLUW(ctx, owner, "P1", "E")
	require.NoError(t, err)

	_, err = c.AddRepository(ctx, owner, 0, "R1")
	require.NoError(t, err)
	state, err := c.RepositoryState(ctx, 0, "R1")
	require.NoError(t, err)
	assert.Equal(t, "open", state)

	before := f.snapshot(t)
	_, err = c.AddRepository(ctx, owner, 0, "R1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrAlreadyExists))
	assert.Equal(t, before, f.snapshot(t))

	_, err = c.ChangeRepositoryState(ctx, owner, 0, "R1", statecatalog.RepositoryReady)
	require.NoError(t, err)
	state, err = c.RepositoryState(ctx, 0, "R1")
	require.NoError(t, err)
	assert.Equal(t, "ready", state)

	_, err = c.ChangeRepositoryState(ctx, owner, 0, "R404", statecatalog.RepositoryReady)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	assert.Equal(t, "Repository ID does not exist", err.Error())

	_, err = c.ChangeRepositoryState(ctx, owner, 0, "R1", 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidState))
	assert.Equal(t, "Incorrect state", err.Error())

	repos, err := c.Repositories(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"R1": "ready"}, repos)

	_, err = c.ChangeState(ctx, owner, 0, statecatalog.LUWPrepareToCommit)
	require.NoError(t, err)
	_, err = c.AddRepository(ctx, owner, 0, "R2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidTransition))
	assert.Equal(t, "LUW is not Active", err.Error())
}

func TestMonotonicIdentifiers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client

	for i := 0; i < 5; i++ {
		_, err := c.CreateLUW(ctx, owner, "P", "E")
		require.NoError(t, err)
		// a failing call in between must not consume an id
		_, err = c.ChangeState(ctx, intruder, interfaces.LUWID(i), statecatalog.LUWAborted)
		require.Error(t, err)
	}

	next, err := c.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, interfaces.LUWID(5), next)
	for i := 0; i < 5; i++ {
		v, err := c.Fetch(ctx, interfaces.LUWID(i))
		require.NoError(t, err)
		assert.Equal(t, interfaces.LUWID(i), v.ID)
	}
}

func TestStateHistoryAppendOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client
	_, err := c.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)

	codes := []interfaces.StateCode{2, 4, 1, 3, 3}
	for i, code := range codes {
		_, err := c.ChangeState(ctx, owner, 0, code)
		require.NoError(t, err)

		v, err := c.Fetch(ctx, 0)
		require.NoError(t, err)
		require.Len(t, v.StateHistory, i+2)
		for seq := uint64(1); seq <= uint64(i+2); seq++ {
			assert.Contains(t, v.StateHistory, seq)
		}
		assert.Equal(t, "active", v.StateHistory[1])
	}
	state, err := c.ActiveState(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "committed", state)
}

func TestOwnershipGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client
	_, err := c.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)
	_, err = c.AddRepository(ctx, owner, 0, "R1")
	require.NoError(t, err)

	before := f.snapshot(t)
	seq := f.ledger.Sequence()
	calls := map[string]func() (*interfaces.Receipt, error){
		"change_state": func() (*interfaces.Receipt, error) {
			return c.ChangeState(ctx, intruder, 0, statecatalog.LUWAborted)
		},
		"add_repository": func() (*interfaces.Receipt, error) {
			return c.AddRepository(ctx, intruder, 0, "R2")
		},
		"change_repository_state": func() (*interfaces.Receipt, error) {
			return c.ChangeRepositoryState(ctx, intruder, 0, "R1", statecatalog.RepositoryReady)
		},
		"rebind_storage": func() (*interfaces.Receipt, error) {
			return c.RebindStorage(ctx, intruder)
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			receipt, err := call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, interfaces.ErrUnauthorized))
			assert.Equal(t, interfaces.ReceiptFailed, receipt.Status)
		})
	}
	assert.Equal(t, before, f.snapshot(t))
	assert.Equal(t, seq, f.ledger.Sequence())
}

func TestCatalogClosure(t *testing.T) {
	ctx := context.Background()
	for _, strict := range []bool{false, true} {
		var opts []coordinator.Option
		if strict {
			opts = append(opts, coordinator.WithStrictTransitions())
		}
		f := newFixture(t, opts...)
		c := f.client
		_, err := c.CreateLUW(ctx, owner, "P", "E")
		require.NoError(t, err)
		_, err = c.AddRepository(ctx, owner, 0, "R1")
		require.NoError(t, err)

		// a code outside the catalog never lands. The owner check runs first,
		// so a non-owner sees Unauthorized rather than InvalidState.
		_, err = c.ChangeState(ctx, owner, 0, 999)
		assert.ErrorIs(t, err, interfaces.ErrInvalidState)
		_, err = c.ChangeRepositoryState(ctx, owner, 0, "R1", 999)
		assert.ErrorIs(t, err, interfaces.ErrInvalidState)
		_, err = c.ChangeState(ctx, intruder, 0, 999)
		assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
		_, err = c.ChangeRepositoryState(ctx, intruder, 0, "R1", 999)
		assert.ErrorIs(t, err, interfaces.ErrUnauthorized)
		_, err = c.ChangeState(ctx, owner, 0, 999)
		assert.Equal(t, "Incorrect state ID", err.Error())
		assert.True(t, errors.Is(err, interfaces.ErrInvalidState))
		_, err = c.ChangeState(ctx, owner, 0, 0)
		assert.True(t, errors.Is(err, interfaces.ErrInvalidState))
	}
}

func TestPermissiveTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.client
	_, err := c.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)

	_, err = c.ChangeState(ctx, owner, 0, statecatalog.LUWCommitted)
	require.NoError(t, err)
	_, err = c.ChangeState(ctx, owner, 0, statecatalog.LUWActive)
	require.NoError(t, err, "committed -> active is accepted by the permissive coordinator")
}

func TestStrictTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, coordinator.WithStrictTransitions())
	c := f.client
	_, err := c.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)
	_, err = c.AddRepository(ctx, owner, 0, "R1")
	require.NoError(t, err)

	_, err = c.ChangeState(ctx, owner, 0, statecatalog.LUWCommitted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidTransition))
	assert.Equal(t, "Transition not allowed", err.Error())

	_, err = c.ChangeRepositoryState(ctx, owner, 0, "R1", statecatalog.RepositoryCommitted)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidTransition))
	_, err = c.ChangeRepositoryState(ctx, owner, 0, "R1", statecatalog.RepositoryReady)
	require.NoError(t, err)
	_, err = c.ChangeRepositoryState(ctx, owner, 0, "R1", statecatalog.RepositoryCommitted)
	require.NoError(t, err)

	_, err = c.ChangeState(ctx, owner, 0, statecatalog.LUWPrepareToCommit)
	require.NoError(t, err)
	_, err = c.ChangeState(ctx, owner, 0, statecatalog.LUWCommitted)
	require.NoError(t, err)
	_, err = c.ChangeState(ctx, owner, 0, statecatalog.LUWActive)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidTransition))
}

func TestUpgradeAtomicity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	old := f.client
	_, err := old.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)

	upgraded := deployCoordinator(t, f, coordinator.WithStrictTransitions())

	addr, err := upgraded.StorageContractAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.store, addr)

	_, err = old.CreateLUW(ctx, owner, "P", "E")
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrUnauthorized))
	assert.Equal(t, "Incorrect caller", err.Error())
	_, err = old.ChangeState(ctx, owner, 0, statecatalog.LUWPrepareToCommit)
	assert.True(t, errors.Is(err, interfaces.ErrUnauthorized))
	_, err = old.AddRepository(ctx, owner, 0, "R1")
	assert.True(t, errors.Is(err, interfaces.ErrUnauthorized))

	_, err = upgraded.CreateLUW(ctx, owner, "P", "E")
	require.NoError(t, err)
	_, err = upgraded.ChangeState(ctx, owner, 0, statecatalog.LUWPrepareToCommit)
	require.NoError(t, err)

	// records written through the old coordinator are still there
	v, err := upgraded.Fetch(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "prepare_to_commit", v.ActiveState)

	// the old coordinator still reads, reads are unrestricted
	state, err := old.ActiveState(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "prepare_to_commit", state)
}

func TestViewsOnMissingLUW(t *testing.T) {
	ctx := context.Background()
	c := newFixture(t).client

	_, err := c.Fetch(ctx, 3)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	_, err = c.ActiveState(ctx, 3)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	_, err = c.Owner(ctx, 3)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	_, err = c.Repositories(ctx, 3)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	_, err = c.RepositoryState(ctx, 3, "R1")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	_, err = c.ChangeState(ctx, owner, 3, statecatalog.LUWAborted)
	assert.Equal(t, "LUW ID does not exist", err.Error())
}

func TestUnreachableStoreIsInvalidView(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(ledger.Config{})
	// the coordinator points at an address with no contract behind it
	addr, err := l.Deploy(ctx, certifier, coordinator.New(), coordinator.Init(certifier, interfaces.Address{0xde, 0xad}))
	require.NoError(t, err)
	c := coordinator.NewClient(l, addr)

	_, err = c.ActiveState(ctx, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidView))

	_, err = c.CreateLUW(ctx, owner, "P", "E")
	assert.True(t, errors.Is(err, interfaces.ErrInvalidView))
}

func TestAttachRejectsDifferentMode(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.ledger.Attach(f.client.Address(), coordinator.New(coordinator.WithStrictTransitions())), ledger.ErrKindMismatch)
	assert.NoError(t, f.ledger.Attach(f.client.Address(), coordinator.New()))
}
