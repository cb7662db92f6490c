package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// ErrCheckpointCorrupted is returned when fetched checkpoint bytes don't hash to the requested id.
var ErrCheckpointCorrupted = errors.New("checkpoint content does not match its id")

// Snapshotter is implemented by ledger.Ledger.
type Snapshotter interface {
	Export(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, r io.Reader) error
}

// SaveCheckpoint exports src and stores it as a checkpoint.
func SaveCheckpoint(ctx context.Context, backend interfaces.StorageBackend, src Snapshotter) (interfaces.ContentID, error) {
	var buf bytes.Buffer
	if err := src.Export(ctx, &buf); err != nil {
		return interfaces.ContentID{}, fmt.Errorf("failed to export ledger: %w", err)
	}

	id, err := backend.Store(ctx, buf.Bytes(), interfaces.CheckpointType)
	if err != nil {
		return id, fmt.Errorf("failed to store checkpoint: %w", err)
	}
	return id, nil
}

// RestoreCheckpoint fetches the checkpoint id and imports it into dst.
func RestoreCheckpoint(ctx context.Context, backend interfaces.StorageBackend, id interfaces.ContentID, dst Snapshotter) error {
	data, err := backend.Fetch(ctx, id, interfaces.CheckpointType)
	if err != nil {
		return fmt.Errorf("failed to fetch checkpoint %s: %w", shortID(id), err)
	}
	if !interfaces.ComputeID(data).Equal(id) {
		return fmt.Errorf("%w: %s", ErrCheckpointCorrupted, id.String())
	}
	if err := dst.Import(ctx, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to import checkpoint %s: %w", shortID(id), err)
	}
	return nil
}
