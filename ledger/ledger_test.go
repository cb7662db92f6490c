package ledger

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = interfaces.Address{0xa1}
	bob   = interfaces.Address{0xb0}
)

type addParams struct {
	Amount uint64
}

// counter keeps a single number and remembers who touched it last.
type counter struct{}

func (counter) Kind() string { return "counter" }

func (counter) EntryPoints() map[string]EntryPoint {
	return map[string]EntryPoint{
		"add": Entry(func(cc *CallContext, p addParams) error {
			if p.Amount == 0 {
				return interfaces.Fail(interfaces.ErrInvalidState, "zero amount")
			}
			st := cc.Storage()
			var total uint64
			if _, err := GetRLP(st, []byte("total"), &total); err != nil {
				return err
			}
			if err := PutRLP(st, []byte("total"), total+p.Amount); err != nil {
				return err
			}
			if err := st.Put([]byte("sender"), cc.Sender().Bytes()); err != nil {
				return err
			}
			return st.Put([]byte("source"), cc.Source().Bytes())
		}),
	}
}

func (counter) Views() map[string]ViewPoint {
	return map[string]ViewPoint{
		"total": ViewOf(func(vc *ViewContext, _ struct{}) (uint64, error) {
			var total uint64
			_, err := GetRLP(vc.Storage(), []byte("total"), &total)
			return total, err
		}),
		"sender": ViewOf(func(vc *ViewContext, _ struct{}) (interfaces.Address, error) {
			raw, _, err := vc.Storage().Get([]byte("sender"))
			return gethcommon.BytesToAddress(raw), err
		}),
		"source": ViewOf(func(vc *ViewContext, _ struct{}) (interfaces.Address, error) {
			raw, _, err := vc.Storage().Get([]byte("source"))
			return gethcommon.BytesToAddress(raw), err
		}),
		"try_write": ViewOf(func(vc *ViewContext, _ struct{}) (bool, error) {
			return true, vc.Storage().Put([]byte("total"), []byte{1})
		}),
	}
}

// relayAdd mirrors addParams under a different name.
type relayAdd struct {
	Amount uint64
}

type relayParams struct {
	Target interfaces.Address
	Amount uint64
	Times  uint64
}

// relay forwards adds to a counter and can read its total.
type relay struct{}

func (relay) Kind() string { return "relay" }

func (relay) EntryPoints() map[string]EntryPoint {
	return map[string]EntryPoint{
		"forward": Entry(func(cc *CallContext, p relayParams) error {
			for i := uint64(0); i < p.Times; i++ {
				if err := cc.Transfer(p.Target, "add", relayAdd{Amount: p.Amount}); err != nil {
					return err
				}
			}
			return cc.Storage().Put([]byte("forwarded"), []byte{1})
		}),
		"forward_bad_shape": Entry(func(cc *CallContext, p relayParams) error {
			return cc.Transfer(p.Target, "add", struct{ Value uint64 }{p.Amount})
		}),
		"read_then_forward": Entry(func(cc *CallContext, p relayParams) error {
			total, err := CallView[uint64](cc, p.Target, "total", struct{}{})
			if err != nil {
				return err
			}
			return cc.Transfer(p.Target, "add", relayAdd{Amount: total + p.Amount})
		}),
		"loop": Entry(func(cc *CallContext, p relayParams) error {
			return cc.Transfer(cc.Self(), "loop", p)
		}),
	}
}

func (relay) Views() map[string]ViewPoint {
	return map[string]ViewPoint{
		"counter_total": ViewOf(func(vc *ViewContext, target interfaces.Address) (uint64, error) {
			return CallView[uint64](vc, target, "total", struct{}{})
		}),
	}
}

func deployPair(t *testing.T, l *Ledger) (interfaces.Address, interfaces.Address) {
	t.Helper()
	ctx := context.Background()
	c, err := l.Deploy(ctx, alice, counter{}, nil)
	require.NoError(t, err)
	r, err := l.Deploy(ctx, alice, relay{}, nil)
	require.NoError(t, err)
	require.NotEqual(t, c, r)
	return c, r
}

func TestSubmitDirectCall(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Config{})
	c, _ := deployPair(t, l)

	receipt, err := l.Submit(ctx, bob, c, "add", addParams{Amount: 5})
	require.NoError(t, err)
	assert.Equal(t, interfaces.ReceiptApplied, receipt.Status)
	assert.Equal(t, uint64(1), receipt.Sequence)
	assert.Equal(t, 1, receipt.Operations)

	total, err := Query[uint64](ctx, l, c, "total", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), total)

	sender, err := Query[interfaces.Address](ctx, l, c, "sender", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, bob, sender)
}

func TestForwardedOperationIdentity(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Config{})
	c, r := deployPair(t, l)

	receipt, err := l.Submit(ctx, bob, r, "forward", relayParams{Target: c, Amount: 2, Times: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, receipt.Operations)

	total, err := Query[uint64](ctx, l, c, "total", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), total)

	sender, err := Query[interfaces.Address](ctx, l, c, "sender", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, r, sender, "forwarded call must see the relay as sender")

	source, err := Query[interfaces.Address](ctx, l, c, "source", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, bob, source, "forwarded call must keep the originating wallet")
}

func TestFailedForwardDiscardsEverything(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Config{})
	c, r := deployPair(t, l)

	receipt, err := l.Submit(ctx, bob, r, "forward", relayParams{Target: c, Amount: 0, Times: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidState))
	require.NotNil(t, receipt)
	assert.Equal(t, interfaces.ReceiptFailed, receipt.Status)
	assert.Equal(t, "zero amount", receipt.Error)
	assert.Equal(t, uint64(0), l.Sequence())

	// the relay's own write must not survive either
	_, ok, err := newContractStorage(newOverlay(l.db), r, true).Get([]byte("forwarded"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransferShapeChecks(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Config{})
	c, r := deployPair(t, l)

	_, err := l.Submit(ctx, bob, r, "forward_bad_shape", relayParams{Target: c, Amount: 1})
	assert.True(t, errors.Is(err, interfaces.ErrInvalidView))

	_, err = l.Submit(ctx, bob, r, "forward", relayParams{Target: bob, Amount: 1, Times: 1})
	assert.True(t, errors.Is(err, interfaces.ErrInvalidView))

	_, err = l.Submit(ctx, bob, c, "no_such_entry", addParams{Amount: 1})
	assert.True(t, errors.Is(err, interfaces.ErrInvalidView))

	_, err = l.Submit(ctx, bob, c, "add", relayParams{Amount: 1})
	assert.True(t, errors.Is(err, interfaces.ErrInvalidView))
}

func TestViewsInsideSubmissionSeePendingWrites(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Config{})
	c, r := deployPair(t, l)

	_, err := l.Submit(ctx, bob, c, "add", addParams{Amount: 3})
	require.NoError(t, err)
	_, err = l.Submit(ctx, bob, r, "read_then_forward", relayParams{Target: c, Amount: 1})
	require.NoError(t, err)

	total, err := Query[uint64](ctx, l, r, "counter_total", c)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), total)
}

func TestViewErrors(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Config{})
	c, _ := deployPair(t, l)

	_, err := Query[string](ctx, l, c, "total", struct{}{})
	require.Error(t, err)
	assert.Equal(t, "Invalid view", err.Error())

	_, err = Query[uint64](ctx, l, c, "missing", struct{}{})
	assert.True(t, errors.Is(err, interfaces.ErrInvalidView))

	_, err = Query[uint64](ctx, l, c, "total", uint64(1))
	assert.True(t, errors.Is(err, interfaces.ErrInvalidView))

	_, err = Query[bool](ctx, l, c, "try_write", struct{}{})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func TestOperationLimit(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Config{})
	_, r := deployPair(t, l)

	_, err := l.Submit(ctx, bob, r, "loop", relayParams{})
	require.Error(t, err)
	assert.Equal(t, uint64(0), l.Sequence())
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewMemory(Config{})

	_, err := l.Submit(ctx, bob, alice, "add", addParams{Amount: 1})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = Query[uint64](ctx, l, alice, "total", struct{}{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAttachAfterRestart(t *testing.T) {
	ctx := context.Background()
	db := memorydb.New()
	l, err := New(db, Config{})
	require.NoError(t, err)
	c, r := deployPair(t, l)
	_, err = l.Submit(ctx, bob, c, "add", addParams{Amount: 4})
	require.NoError(t, err)

	restarted, err := New(db, Config{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), restarted.Sequence())

	assert.ErrorIs(t, restarted.Attach(c, relay{}), ErrKindMismatch)
	assert.ErrorIs(t, restarted.Attach(bob, counter{}), ErrUnknownContract)
	require.NoError(t, restarted.Attach(c, counter{}))
	require.NoError(t, restarted.Attach(r, relay{}))

	total, err := Query[uint64](ctx, restarted, c, "total", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), total)

	kind, ok, err := restarted.KindAt(r)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "relay", kind)
}

func TestDeployAddressesFollowNonce(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Config{})
	first, err := l.Deploy(ctx, alice, counter{}, func(st Storage) error {
		return PutRLP(st, []byte("total"), uint64(10))
	})
	require.NoError(t, err)
	second, err := l.Deploy(ctx, alice, counter{}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	total, err := Query[uint64](ctx, l, first, "total", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), total)

	failing := errors.New("boom")
	_, err = l.Deploy(ctx, bob, counter{}, func(Storage) error { return failing })
	assert.ErrorIs(t, err, failing)
}

func TestCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(Config{})
	c, r := deployPair(t, l)
	_, err := l.Submit(ctx, bob, r, "forward", relayParams{Target: c, Amount: 3, Times: 2})
	require.NoError(t, err)
	require.NoError(t, l.SetMeta("manifest", []byte("m")))

	var buf bytes.Buffer
	require.NoError(t, l.Export(ctx, &buf))
	exported := buf.Bytes()

	restored := NewMemory(Config{})
	require.NoError(t, restored.Import(ctx, bytes.NewReader(exported)))
	assert.Equal(t, l.Sequence(), restored.Sequence())
	require.NoError(t, restored.Attach(c, counter{}))

	total, err := Query[uint64](ctx, restored, c, "total", struct{}{})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), total)

	meta, ok, err := restored.Meta("manifest")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("m"), meta)

	assert.ErrorIs(t, restored.Import(ctx, bytes.NewReader(exported)), ErrLedgerNotEmpty)
}

func TestMetricsRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	l, err := New(memorydb.New(), Config{Registerer: reg})
	require.NoError(t, err)
	c, _ := deployPair(t, l)
	_, err = l.Submit(context.Background(), bob, c, "add", addParams{Amount: 1})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	_, err = New(memorydb.New(), Config{Registerer: reg})
	assert.Error(t, err, "metrics must not register twice on one registry")
}

func TestSequencePersisted(t *testing.T) {
	db := memorydb.New()
	require.NoError(t, db.Put(metaSequence, binary.BigEndian.AppendUint64(nil, 41)))
	l, err := New(db, Config{})
	require.NoError(t, err)
	assert.Equal(t, uint64(41), l.Sequence())

	require.NoError(t, db.Put(metaSequence, []byte{1}))
	_, err = New(db, Config{})
	assert.Error(t, err)
}

func TestCheckpointImportRejectsInconsistentSequence(t *testing.T) {
	ctx := context.Background()
	encode := func(cp checkpoint) []byte {
		raw, err := rlp.EncodeToBytes(&cp)
		require.NoError(t, err)
		return raw
	}

	tests := map[string]checkpoint{
		"header ahead of table": {
			Version:  checkpointVersion,
			Sequence: 9,
			Entries: []checkpointEntry{
				{Key: metaSequence, Value: binary.BigEndian.AppendUint64(nil, 3)},
				{Key: []byte("x"), Value: []byte("y")},
			},
		},
		"table without sequence": {
			Version:  checkpointVersion,
			Sequence: 2,
			Entries:  []checkpointEntry{{Key: []byte("x"), Value: []byte("y")}},
		},
		"corrupt sequence entry": {
			Version: checkpointVersion,
			Entries: []checkpointEntry{{Key: metaSequence, Value: []byte{1}}},
		},
	}
	for name, cp := range tests {
		t.Run(name, func(t *testing.T) {
			db := memorydb.New()
			l, err := New(db, Config{})
			require.NoError(t, err)

			assert.Error(t, l.Import(ctx, bytes.NewReader(encode(cp))))
			assert.Equal(t, uint64(0), l.Sequence())
			assert.Equal(t, 0, db.Len(), "nothing may be written")
		})
	}
}
