package ledger

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// ErrReadOnly is returned when a view attempts to write.
var ErrReadOnly = errors.New("storage is read-only in a view")

var (
	contractPrefix = []byte("c")
	metaSequence   = []byte("m/seq")
	metaCodePrefix = []byte("m/code/")
	metaNoncePfx   = []byte("m/nonce/")
	metaPrefix     = []byte("m/meta/")
)

// Storage is the key-value table of one deployed contract.
type Storage interface {
	// Get returns the value under key, or nil and false when absent.
	Get(key []byte) ([]byte, bool, error)
	Has(key []byte) (bool, error)
	Put(key, value []byte) error
}

// overlay buffers the writes of one submission on top of the committed table.
type overlay struct {
	db      ethdb.KeyValueStore
	pending map[string][]byte
}

func newOverlay(db ethdb.KeyValueStore) *overlay {
	return &overlay{db: db, pending: make(map[string][]byte)}
}

func (o *overlay) get(key []byte) ([]byte, bool, error) {
	if v, ok := o.pending[string(key)]; ok {
		return common.CopyBytes(v), true, nil
	}
	has, err := o.db.Has(key)
	if err != nil {
		return nil, false, err
	}
	if !has {
		return nil, false, nil
	}
	v, err := o.db.Get(key)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (o *overlay) put(key, value []byte) {
	o.pending[string(key)] = common.CopyBytes(value)
}

func (o *overlay) commit() error {
	if len(o.pending) == 0 {
		return nil
	}
	batch := o.db.NewBatch()
	for k, v := range o.pending {
		if err := batch.Put([]byte(k), v); err != nil {
			return err
		}
	}
	return batch.Write()
}

// contractStorage scopes an overlay to one contract address.
type contractStorage struct {
	ov       *overlay
	prefix   []byte
	readOnly bool
}

func newContractStorage(ov *overlay, addr interfaces.Address, readOnly bool) *contractStorage {
	prefix := append(common.CopyBytes(contractPrefix), addr.Bytes()...)
	return &contractStorage{ov: ov, prefix: prefix, readOnly: readOnly}
}

func (s *contractStorage) key(k []byte) []byte {
	return append(common.CopyBytes(s.prefix), k...)
}

func (s *contractStorage) Get(key []byte) ([]byte, bool, error) {
	return s.ov.get(s.key(key))
}

func (s *contractStorage) Has(key []byte) (bool, error) {
	_, ok, err := s.ov.get(s.key(key))
	return ok, err
}

func (s *contractStorage) Put(key, value []byte) error {
	if s.readOnly {
		return ErrReadOnly
	}
	s.ov.put(s.key(key), value)
	return nil
}

// GetRLP decodes the RLP value under key into v. It reports false when the key is absent.
func GetRLP(st Storage, key []byte, v any) (bool, error) {
	raw, ok, err := st.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := rlp.DecodeBytes(raw, v); err != nil {
		return false, fmt.Errorf("corrupt value under %q: %w", key, err)
	}
	return true, nil
}

// PutRLP encodes v as RLP and stores it under key.
func PutRLP(st Storage, key []byte, v any) error {
	raw, err := rlp.EncodeToBytes(v)
	if err != nil {
		return err
	}
	return st.Put(key, raw)
}

func codeKey(addr interfaces.Address) []byte {
	return append(common.CopyBytes(metaCodePrefix), addr.Bytes()...)
}

func nonceKey(addr interfaces.Address) []byte {
	return append(common.CopyBytes(metaNoncePfx), addr.Bytes()...)
}

func metaKey(key string) []byte {
	return append(common.CopyBytes(metaPrefix), key...)
}
