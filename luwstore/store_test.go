package luwstore

import (
	"context"
	"errors"
	"testing"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/ruteri/luw-coordination-registry/ledger"
	"github.com/ruteri/luw-coordination-registry/statecatalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	certifier = interfaces.Address{0xce}
	logic     = interfaces.Address{0x10}
	other     = interfaces.Address{0x20}
)

// newBoundStore deploys a store and binds it to the logic wallet, so tests
// can drive the entry points directly.
func newBoundStore(t *testing.T) (*ledger.Ledger, interfaces.Address) {
	t.Helper()
	ctx := context.Background()
	l := ledger.NewMemory(ledger.Config{})
	addr, err := l.Deploy(ctx, certifier, New(), Init(certifier))
	require.NoError(t, err)
	_, err = l.Submit(ctx, certifier, addr, "set_authorized_caller", logic)
	require.NoError(t, err)
	return l, addr
}

func create(t *testing.T, l *ledger.Ledger, store interfaces.Address, provider string) {
	t.Helper()
	_, err := l.Submit(context.Background(), logic, store, "create", CreateParams{ProviderID: provider, ServiceEndpoint: "https://coord.example/" + provider})
	require.NoError(t, err)
}

func fetch(t *testing.T, l *ledger.Ledger, store interfaces.Address, id interfaces.LUWID) interfaces.LUWRecord {
	t.Helper()
	r, err := ledger.Query[interfaces.LUWRecord](context.Background(), l, store, "fetch", id)
	require.NoError(t, err)
	return r
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	l, store := newBoundStore(t)

	create(t, l, store, "P1")
	_, err := l.Submit(ctx, other, store, "create", CreateParams{ProviderID: "P2"})
	require.Error(t, err, "unbound caller must not consume an id")
	create(t, l, store, "P3")

	next, err := ledger.Query[interfaces.LUWID](ctx, l, store, "next_id", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, interfaces.LUWID(2), next)

	assert.Equal(t, "P1", fetch(t, l, store, 0).ProviderID)
	assert.Equal(t, "P3", fetch(t, l, store, 1).ProviderID)

	r := fetch(t, l, store, 0)
	assert.Equal(t, logic, r.CreatorWalletAddress)
	assert.Equal(t, map[uint64]interfaces.StateCode{1: statecatalog.LUWActive}, r.StateHistory)
	assert.Empty(t, r.RepositoryEndpoints)
}

func TestUnboundStoreRejectsMutations(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemory(ledger.Config{})
	store, err := l.Deploy(ctx, certifier, New(), Init(certifier))
	require.NoError(t, err)

	_, err = l.Submit(ctx, certifier, store, "create", CreateParams{ProviderID: "P1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrUnauthorized))
	assert.Equal(t, "Incorrect caller", err.Error())
}

func TestAppendStateIsPermissive(t *testing.T) {
	ctx := context.Background()
	l, store := newBoundStore(t)
	create(t, l, store, "P1")

	for _, code := range []interfaces.StateCode{2, 999, 1} {
		_, err := l.Submit(ctx, logic, store, "append_state", AppendStateParams{LUWID: 0, State: code})
		require.NoError(t, err)
	}

	r := fetch(t, l, store, 0)
	assert.Equal(t, map[uint64]interfaces.StateCode{1: 1, 2: 2, 3: 999, 4: 1}, r.StateHistory)
	assert.Equal(t, interfaces.StateCode(1), r.ActiveState())

	active, err := ledger.Query[interfaces.StateCode](ctx, l, store, "active_state", interfaces.LUWID(0))
	require.NoError(t, err)
	assert.Equal(t, interfaces.StateCode(1), active)

	_, err = l.Submit(ctx, logic, store, "append_state", AppendStateParams{LUWID: 7, State: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	assert.Equal(t, "LUW ID does not exist", err.Error())
}

func TestAddRepositoryInsertOnce(t *testing.T) {
	ctx := context.Background()
	l, store := newBoundStore(t)
	create(t, l, store, "P1")

	_, err := l.Submit(ctx, logic, store, "add_repository", RepositoryParams{LUWID: 0, RepositoryID: "R2"})
	require.NoError(t, err)
	_, err = l.Submit(ctx, logic, store, "add_repository", RepositoryParams{LUWID: 0, RepositoryID: "R1", State: statecatalog.RepositoryReady})
	require.NoError(t, err)

	before := fetch(t, l, store, 0)
	_, err = l.Submit(ctx, logic, store, "add_repository", RepositoryParams{LUWID: 0, RepositoryID: "R2", State: statecatalog.RepositoryCommitted})
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrAlreadyExists))
	assert.Equal(t, "Repository ID already exists", err.Error())
	assert.Equal(t, before, fetch(t, l, store, 0))

	repos, err := ledger.Query[map[string]interfaces.StateCode](ctx, l, store, "repositories", interfaces.LUWID(0))
	require.NoError(t, err)
	assert.Equal(t, map[string]interfaces.StateCode{"R1": statecatalog.RepositoryReady, "R2": statecatalog.RepositoryOpen}, repos)

	_, err = l.Submit(ctx, logic, store, "add_repository", RepositoryParams{LUWID: 3, RepositoryID: "R1"})
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestSetRepositoryStateOverwrites(t *testing.T) {
	ctx := context.Background()
	l, store := newBoundStore(t)
	create(t, l, store, "P1")

	_, err := l.Submit(ctx, logic, store, "add_repository", RepositoryParams{LUWID: 0, RepositoryID: "R1"})
	require.NoError(t, err)
	_, err = l.Submit(ctx, logic, store, "set_repository_state", RepositoryParams{LUWID: 0, RepositoryID: "R1", State: 4})
	require.NoError(t, err)
	// no existence check at this layer
	_, err = l.Submit(ctx, logic, store, "set_repository_state", RepositoryParams{LUWID: 0, RepositoryID: "R9", State: 2})
	require.NoError(t, err)

	state, err := ledger.Query[interfaces.StateCode](ctx, l, store, "repository_state", RepositoryKey{LUWID: 0, RepositoryID: "R1"})
	require.NoError(t, err)
	assert.Equal(t, statecatalog.RepositoryRollbacked, state)
	state, err = ledger.Query[interfaces.StateCode](ctx, l, store, "repository_state", RepositoryKey{LUWID: 0, RepositoryID: "R9"})
	require.NoError(t, err)
	assert.Equal(t, statecatalog.RepositoryReady, state)

	_, err = ledger.Query[interfaces.StateCode](ctx, l, store, "repository_state", RepositoryKey{LUWID: 0, RepositoryID: "nope"})
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	assert.Equal(t, "Repository ID does not exist", err.Error())

	_, err = l.Submit(ctx, logic, store, "set_repository_state", RepositoryParams{LUWID: 5, RepositoryID: "R1", State: 2})
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestViewsOnMissingLUW(t *testing.T) {
	ctx := context.Background()
	l, store := newBoundStore(t)

	_, err := ledger.Query[interfaces.Address](ctx, l, store, "owner", interfaces.LUWID(0))
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	_, err = ledger.Query[interfaces.LUWRecord](ctx, l, store, "fetch", interfaces.LUWID(0))
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
	_, err = ledger.Query[interfaces.StateCode](ctx, l, store, "active_state", interfaces.LUWID(0))
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestStoredRecordIsCanonical(t *testing.T) {
	st := mapStorage{}
	r := &storedRecord{Creator: logic, ProviderID: "P1", History: []uint64{1}}
	for _, id := range []string{"R3", "R1", "R2"} {
		i, ok := r.repository(id)
		require.False(t, ok)
		r.Repositories = append(r.Repositories[:i], append([]storedRepository{{ID: id, State: 1}}, r.Repositories[i:]...)...)
	}
	require.NoError(t, saveRecord(st, 4, r))

	loaded, err := loadRecord(st, 4)
	require.NoError(t, err)
	assert.Equal(t, []storedRepository{{"R1", 1}, {"R2", 1}, {"R3", 1}}, loaded.Repositories)

	_, err = loadRecord(st, 5)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

type mapStorage map[string][]byte

func (m mapStorage) Get(key []byte) ([]byte, bool, error) {
	v, ok := m[string(key)]
	return v, ok, nil
}

func (m mapStorage) Has(key []byte) (bool, error) {
	_, ok := m[string(key)]
	return ok, nil
}

func (m mapStorage) Put(key, value []byte) error {
	m[string(key)] = value
	return nil
}
