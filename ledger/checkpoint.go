package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

const checkpointVersion = 1

// ErrLedgerNotEmpty is returned when importing a checkpoint into a ledger
// that already holds state.
var ErrLedgerNotEmpty = errors.New("ledger already holds state")

type checkpointEntry struct {
	Key   []byte
	Value []byte
}

type checkpoint struct {
	Version  uint64
	Sequence uint64
	Entries  []checkpointEntry
}

// Export writes the whole committed table as an RLP checkpoint.
func (l *Ledger) Export(ctx context.Context, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	cp := checkpoint{Version: checkpointVersion, Sequence: l.sequence}
	it := l.db.NewIterator(nil, nil)
	defer it.Release()
	for it.Next() {
		cp.Entries = append(cp.Entries, checkpointEntry{
			Key:   common.CopyBytes(it.Key()),
			Value: common.CopyBytes(it.Value()),
		})
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("iterating ledger: %w", err)
	}
	return rlp.Encode(w, &cp)
}

// Import loads a checkpoint written by Export into an empty ledger.
// Contracts must be attached again afterwards.
func (l *Ledger) Import(ctx context.Context, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var cp checkpoint
	if err := rlp.Decode(r, &cp); err != nil {
		return fmt.Errorf("decoding checkpoint: %w", err)
	}
	if cp.Version != checkpointVersion {
		return fmt.Errorf("unsupported checkpoint version %d", cp.Version)
	}

	// the table must agree with the header before anything is written
	var rawSeq []byte
	hasSeq := false
	for _, e := range cp.Entries {
		if bytes.Equal(e.Key, metaSequence) {
			rawSeq, hasSeq = e.Value, true
		}
	}
	seq, err := decodeSequence(rawSeq, hasSeq)
	if err != nil {
		return fmt.Errorf("checkpoint table: %w", err)
	}
	if seq != cp.Sequence {
		return fmt.Errorf("checkpoint sequence %d does not match its table (%d)", cp.Sequence, seq)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	it := l.db.NewIterator(nil, nil)
	nonEmpty := it.Next()
	it.Release()
	if nonEmpty {
		return ErrLedgerNotEmpty
	}

	batch := l.db.NewBatch()
	for _, e := range cp.Entries {
		if err := batch.Put(e.Key, e.Value); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	l.sequence = seq
	l.log.Info("checkpoint imported", "entries", len(cp.Entries), "sequence", l.sequence)
	return nil
}
