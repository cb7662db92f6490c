package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/ethdb/leveldb"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ruteri/luw-coordination-registry/common"
	"github.com/ruteri/luw-coordination-registry/interfaces"
)

var (
	// ErrUnknownContract is returned when an address has no deployed code.
	ErrUnknownContract = errors.New("no contract deployed at address")

	// ErrKindMismatch is returned when attaching code of a different kind
	// than the one deployed at an address.
	ErrKindMismatch = errors.New("contract kind does not match deployed code")
)

// Config holds optional ledger settings.
type Config struct {
	Log *slog.Logger
	// Registerer receives the ledger metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// Ledger is a serialized executor over a persistent key-value table.
// Submissions run one at a time and commit atomically; views run
// concurrently with each other against committed state.
type Ledger struct {
	mu        sync.RWMutex
	db        ethdb.KeyValueStore
	log       *slog.Logger
	metrics   *ledgerMetrics
	contracts map[interfaces.Address]Contract
	sequence  uint64
	attempts  uint64
}

// New opens a ledger over db, resuming at the persisted sequence number.
func New(db ethdb.KeyValueStore, cfg Config) (*Ledger, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	l := &Ledger{
		db:        db,
		log:       log,
		metrics:   newLedgerMetrics(common.PackageName),
		contracts: make(map[interfaces.Address]Contract),
	}
	if cfg.Registerer != nil {
		if err := l.metrics.register(cfg.Registerer); err != nil {
			return nil, fmt.Errorf("registering ledger metrics: %w", err)
		}
	}
	if err := l.loadSequence(); err != nil {
		return nil, err
	}
	return l, nil
}

// NewMemory returns a ledger backed by an in-memory table.
func NewMemory(cfg Config) *Ledger {
	l, err := New(memorydb.New(), cfg)
	if err != nil {
		// an empty table has nothing to load; only metric registration can fail
		panic(err)
	}
	return l
}

// OpenLevelDB returns a ledger persisted in a LevelDB directory.
func OpenLevelDB(path string, cache, handles int, cfg Config) (*Ledger, error) {
	db, err := leveldb.New(path, cache, handles, common.PackageName+"/ledger/db/", false)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb at %s: %w", path, err)
	}
	l, err := New(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close releases the underlying table.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Close()
}

// Sequence returns the number of applied submissions.
func (l *Ledger) Sequence() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sequence
}

func (l *Ledger) loadSequence() error {
	ov := newOverlay(l.db)
	raw, ok, err := ov.get(metaSequence)
	if err != nil {
		return fmt.Errorf("reading ledger sequence: %w", err)
	}
	seq, err := decodeSequence(raw, ok)
	if err != nil {
		return err
	}
	l.sequence = seq
	return nil
}

// decodeSequence reads the m/seq entry; an absent entry is sequence 0.
func decodeSequence(raw []byte, ok bool) (uint64, error) {
	if !ok {
		return 0, nil
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("corrupt ledger sequence of %d bytes", len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Deploy originates contract c from deployer. init runs against the fresh
// contract storage before the deployment commits.
func (l *Ledger) Deploy(ctx context.Context, deployer interfaces.Address, c Contract, init func(st Storage) error) (interfaces.Address, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.Address{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ov := newOverlay(l.db)
	var nonce uint64
	if raw, ok, err := ov.get(nonceKey(deployer)); err != nil {
		return interfaces.Address{}, err
	} else if ok {
		nonce = binary.BigEndian.Uint64(raw)
	}
	addr := crypto.CreateAddress(deployer, nonce)
	if _, ok, err := ov.get(codeKey(addr)); err != nil {
		return interfaces.Address{}, err
	} else if ok {
		return interfaces.Address{}, fmt.Errorf("address %s already holds a contract", addr.Hex())
	}

	ov.put(nonceKey(deployer), binary.BigEndian.AppendUint64(nil, nonce+1))
	ov.put(codeKey(addr), []byte(c.Kind()))
	if init != nil {
		if err := init(newContractStorage(ov, addr, false)); err != nil {
			return interfaces.Address{}, fmt.Errorf("initializing %s: %w", c.Kind(), err)
		}
	}
	if err := ov.commit(); err != nil {
		return interfaces.Address{}, err
	}
	l.contracts[addr] = c
	l.log.Info("contract deployed", "kind", c.Kind(), "address", addr.Hex(), "deployer", deployer.Hex())
	return addr, nil
}

// Attach binds code to an address deployed earlier, typically after a restart.
func (l *Ledger) Attach(addr interfaces.Address, c Contract) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, ok, err := newOverlay(l.db).get(codeKey(addr))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownContract, addr.Hex())
	}
	if string(raw) != c.Kind() {
		return fmt.Errorf("%w: %s holds %q, not %q", ErrKindMismatch, addr.Hex(), raw, c.Kind())
	}
	l.contracts[addr] = c
	return nil
}

// KindAt returns the code kind deployed at addr.
func (l *Ledger) KindAt(addr interfaces.Address) (string, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	raw, ok, err := newOverlay(l.db).get(codeKey(addr))
	return string(raw), ok, err
}

// Submit runs entrypoint on target on behalf of source, then every operation
// it emits. Either all effects commit or none do. The receipt is returned
// for failed submissions as well.
func (l *Ledger) Submit(ctx context.Context, source, target interfaces.Address, entrypoint string, param any) (*interfaces.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	started := time.Now()
	l.attempts++
	receipt := &interfaces.Receipt{
		Hash:       receiptHash(source, target, entrypoint, l.sequence, l.attempts),
		Source:     source,
		Target:     target,
		EntryPoint: entrypoint,
	}

	exec := &execution{ledger: l, ov: newOverlay(l.db)}
	err := exec.run(operation{source: source, sender: source, target: target, entrypoint: entrypoint, param: param})
	if err == nil {
		exec.ov.put(metaSequence, binary.BigEndian.AppendUint64(nil, l.sequence+1))
		err = exec.ov.commit()
	}
	if err != nil {
		receipt.Status = interfaces.ReceiptFailed
		receipt.Error = err.Error()
		l.metrics.observe(entrypoint, string(receipt.Status), 0, l.sequence, started)
		l.log.Debug("submission rejected", "entrypoint", entrypoint, "source", source.Hex(), "target", target.Hex(), "err", err)
		return receipt, err
	}

	l.sequence++
	receipt.Status = interfaces.ReceiptApplied
	receipt.Sequence = l.sequence
	receipt.Operations = exec.applied
	l.metrics.observe(entrypoint, string(receipt.Status), exec.applied, l.sequence, started)
	l.log.Debug("submission applied", "entrypoint", entrypoint, "source", source.Hex(), "sequence", l.sequence, "operations", exec.applied)
	return receipt, nil
}

// Meta returns a ledger-level value stored with SetMeta.
func (l *Ledger) Meta(key string) ([]byte, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return newOverlay(l.db).get(metaKey(key))
}

// SetMeta stores a ledger-level value outside any contract's table.
func (l *Ledger) SetMeta(key string, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Put(metaKey(key), value)
}

func (l *Ledger) entryPoint(addr interfaces.Address, name string) (EntryPoint, bool) {
	c, ok := l.contracts[addr]
	if !ok {
		return EntryPoint{}, false
	}
	ep, ok := c.EntryPoints()[name]
	return ep, ok
}

func (l *Ledger) viewPoint(addr interfaces.Address, name string) (ViewPoint, bool) {
	c, ok := l.contracts[addr]
	if !ok {
		return ViewPoint{}, false
	}
	vp, ok := c.Views()[name]
	return vp, ok
}

func receiptHash(source, target interfaces.Address, entrypoint string, sequence, attempt uint64) [32]byte {
	return crypto.Keccak256Hash(
		source.Bytes(),
		target.Bytes(),
		[]byte(entrypoint),
		binary.BigEndian.AppendUint64(nil, sequence),
		binary.BigEndian.AppendUint64(nil, attempt),
	)
}
