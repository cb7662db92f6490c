package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bufferSnapshotter struct {
	data     []byte
	imported []byte
}

func (s *bufferSnapshotter) Export(_ context.Context, w io.Writer) error {
	_, err := w.Write(s.data)
	return err
}

func (s *bufferSnapshotter) Import(_ context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(s.imported) > 0 {
		return errors.New("not empty")
	}
	s.imported = data
	return nil
}

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, discardLogger())
	require.NoError(t, err)
	ctx := context.Background()

	src := &bufferSnapshotter{data: []byte("ledger table")}
	id, err := SaveCheckpoint(ctx, backend, src)
	require.NoError(t, err)

	dst := &bufferSnapshotter{}
	require.NoError(t, RestoreCheckpoint(ctx, backend, id, dst))
	assert.Equal(t, src.data, dst.imported)

	// a second import fails and is reported
	assert.Error(t, RestoreCheckpoint(ctx, backend, id, dst))
}

func TestRestoreCheckpoint_Corrupted(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, discardLogger())
	require.NoError(t, err)
	ctx := context.Background()

	id, err := SaveCheckpoint(ctx, backend, &bufferSnapshotter{data: []byte("original")})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checkpoints", id.String()), []byte("tampered"), 0644))

	dst := &bufferSnapshotter{}
	err = RestoreCheckpoint(ctx, backend, id, dst)
	assert.ErrorIs(t, err, ErrCheckpointCorrupted)
	assert.Empty(t, dst.imported)
}

func TestRestoreCheckpoint_Missing(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), discardLogger())
	require.NoError(t, err)

	id := interfaces.ComputeID([]byte("never stored"))
	err = RestoreCheckpoint(context.Background(), backend, id, &bufferSnapshotter{})
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}
