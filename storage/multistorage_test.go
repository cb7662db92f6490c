package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruteri/luw-coordination-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	mock.Mock
	name string
}

func (m *mockBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	args := m.Called(ctx, id, contentType)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *mockBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	args := m.Called(ctx, data, contentType)
	return args.Get(0).(interfaces.ContentID), args.Error(1)
}

func (m *mockBackend) Available(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockBackend) Name() string        { return m.name }
func (m *mockBackend) LocationURI() string { return "mock://" + m.name }

func newFileBackends(t *testing.T, n int) []*FileBackend {
	t.Helper()
	out := make([]*FileBackend, 0, n)
	for i := 0; i < n; i++ {
		b, err := NewFileBackend(t.TempDir(), discardLogger())
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestMultiStorageBackend_ReplicatesCheckpoint(t *testing.T) {
	files := newFileBackends(t, 2)
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{files[0], files[1]}, discardLogger())

	data := []byte("ledger table")
	id, err := multi.Store(context.Background(), data, interfaces.CheckpointType)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ComputeID(data), id)

	for _, b := range files {
		got, err := b.Fetch(context.Background(), id, interfaces.CheckpointType)
		require.NoError(t, err, b.Name())
		assert.Equal(t, data, got)
	}
}

func TestMultiStorageBackend_FetchFallsThrough(t *testing.T) {
	files := newFileBackends(t, 2)
	data := []byte(`{"luw_coordinator":"0x01"}`)
	id, err := files[1].Store(context.Background(), data, interfaces.ManifestType)
	require.NoError(t, err)

	down := &mockBackend{name: "down"}
	down.On("Available", mock.Anything).Return(false)

	// files[0] is empty, down is skipped, files[1] has the manifest
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{files[0], down, files[1]}, discardLogger())
	got, err := multi.Fetch(context.Background(), id, interfaces.ManifestType)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	down.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything)
}

func TestMultiStorageBackend_FetchAllFail(t *testing.T) {
	id := interfaces.ComputeID([]byte("missing"))
	broken := &mockBackend{name: "broken"}
	broken.On("Available", mock.Anything).Return(true)
	broken.On("Fetch", mock.Anything, id, interfaces.CheckpointType).Return(nil, errors.New("connection reset"))

	multi := NewMultiStorageBackend([]interfaces.StorageBackend{broken, newFileBackends(t, 1)[0]}, discardLogger())
	_, err := multi.Fetch(context.Background(), id, interfaces.CheckpointType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: connection reset")
	broken.AssertExpectations(t)
}

func TestMultiStorageBackend_StorePartialFailure(t *testing.T) {
	data := []byte("ledger table")
	broken := &mockBackend{name: "broken"}
	broken.On("Available", mock.Anything).Return(true)
	broken.On("Store", mock.Anything, data, interfaces.CheckpointType).Return(interfaces.ContentID{}, errors.New("read-only"))

	file := newFileBackends(t, 1)[0]
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{broken, file}, discardLogger())

	id, err := multi.Store(context.Background(), data, interfaces.CheckpointType)
	require.NoError(t, err)
	assert.Equal(t, interfaces.ComputeID(data), id)
	broken.AssertExpectations(t)
}

func TestMultiStorageBackend_StoreNothingAvailable(t *testing.T) {
	down := &mockBackend{name: "down"}
	down.On("Available", mock.Anything).Return(false)

	multi := NewMultiStorageBackend([]interfaces.StorageBackend{down}, discardLogger())
	assert.False(t, multi.Available(context.Background()))

	_, err := multi.Store(context.Background(), []byte("x"), interfaces.CheckpointType)
	require.Error(t, err)
	down.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)

	assert.False(t, NewMultiStorageBackend(nil, nil).Available(context.Background()))
}

func TestMultiStorageBackend_UnavailableFileBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	file, err := NewFileBackend(dir, discardLogger())
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	multi := NewMultiStorageBackend([]interfaces.StorageBackend{file}, discardLogger())
	assert.False(t, multi.Available(context.Background()))
}

func TestMultiStorageBackend_LocationURI(t *testing.T) {
	multi := NewMultiStorageBackend([]interfaces.StorageBackend{
		&mockBackend{name: "a"},
		&mockBackend{name: "b"},
	}, nil)
	uri := multi.LocationURI()
	assert.True(t, strings.HasPrefix(uri, "multi:["))
	assert.Contains(t, uri, "mock://a,mock://b")
	assert.Equal(t, "multi-storage", multi.Name())
}
