package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// MultiStorageBackend writes to every available backend and reads from the
// first one that has the content.
type MultiStorageBackend struct {
	backends []interfaces.StorageBackend
	log      *slog.Logger
}

func NewMultiStorageBackend(backends []interfaces.StorageBackend, logger *slog.Logger) *MultiStorageBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiStorageBackend{
		backends: backends,
		log:      logger,
	}
}

// available yields the backends that pass their health probe, in order.
func (m *MultiStorageBackend) available(ctx context.Context) []interfaces.StorageBackend {
	up := make([]interfaces.StorageBackend, 0, len(m.backends))
	for _, b := range m.backends {
		if b.Available(ctx) {
			up = append(up, b)
			continue
		}
		m.log.Debug("Skipping unavailable backend", slog.String("backend_name", b.Name()))
	}
	return up
}

// Fetch tries backends in configuration order. A checkpoint may have been
// written while some backend was down, so a miss on one is not final.
func (m *MultiStorageBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	start := time.Now()
	var errs []error
	for _, b := range m.available(ctx) {
		data, err := b.Fetch(ctx, id, contentType)
		if err != nil {
			m.log.Debug("Backend fetch failed",
				slog.String("backend_name", b.Name()),
				slog.String("content_id", shortID(id)),
				"err", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		m.log.Info("Fetched content",
			slog.String("backend_name", b.Name()),
			slog.String("type", contentType.String()),
			slog.String("content_id", shortID(id)),
			slog.Duration("duration", time.Since(start)))
		return data, nil
	}

	m.log.Error("No backend returned content",
		slog.String("content_id", shortID(id)),
		slog.Int("failed_backends", len(errs)))
	return nil, fmt.Errorf("fetching %s %s: %w", contentType, shortID(id), errors.Join(errs...))
}

// Store replicates to every available backend and succeeds if one accepted
// the content.
func (m *MultiStorageBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	start := time.Now()
	want := interfaces.ComputeID(data)
	stored := 0
	var errs []error
	for _, b := range m.available(ctx) {
		id, err := b.Store(ctx, data, contentType)
		switch {
		case err != nil:
			m.log.Warn("Backend store failed", slog.String("backend_name", b.Name()), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name(), err))
		case !id.Equal(want):
			m.log.Warn("Backend returned a different content id",
				slog.String("backend_name", b.Name()),
				slog.String("expected_id", want.String()),
				slog.String("actual_id", id.String()))
			errs = append(errs, fmt.Errorf("%s: content id mismatch", b.Name()))
		default:
			stored++
		}
	}

	if stored == 0 {
		m.log.Error("No backend stored content", slog.Int("failed_backends", len(errs)))
		return interfaces.ContentID{}, fmt.Errorf("storing %s: no backend accepted the content: %w", contentType, errors.Join(errs...))
	}
	m.log.Info("Stored content",
		slog.String("type", contentType.String()),
		slog.String("content_id", want.String()),
		slog.Int("replicas", stored),
		slog.Duration("duration", time.Since(start)))
	return want, nil
}

// Available reports whether any backend is available.
func (m *MultiStorageBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

func (m *MultiStorageBackend) Name() string {
	return "multi-storage"
}

func (m *MultiStorageBackend) LocationURI() string {
	locations := make([]string, 0, len(m.backends))
	for _, backend := range m.backends {
		locations = append(locations, backend.LocationURI())
	}
	return "multi:[" + strings.Join(locations, ",") + "]"
}
