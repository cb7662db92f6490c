package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// StorageBackendFactory creates storage backends from locations and combines
// them into multi-backend configurations for redundant checkpoints.
type StorageBackendFactory struct {
	log *slog.Logger
}

func NewStorageBackendFactory(logger *slog.Logger) *StorageBackendFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageBackendFactory{log: logger}
}

// StorageBackendFor creates a storage backend for a location.
//
// Supported locations:
//   - file:///var/lib/luw/checkpoints
//   - s3://bucket/prefix?region=us-east-1&endpoint=http://minio:9000&path_style=true
//   - ipfs://127.0.0.1:5001/luw-registry?timeout=30s
//   - vault://vault.example.com:8200/secret/luw-registry?token=...&tls=true
func (sf *StorageBackendFactory) StorageBackendFor(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	switch location.Scheme {
	case "file":
		return sf.createFileBackend(location)
	case "s3":
		return sf.createS3Backend(location)
	case "ipfs":
		return sf.createIPFSBackend(location)
	case "vault":
		return sf.createVaultBackend(location)
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme %q", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// CreateMultiBackend skips locations that fail to produce a backend and errors
// only if none succeed.
func (sf *StorageBackendFactory) CreateMultiBackend(locations []interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	backends := make([]interfaces.StorageBackend, 0, len(locations))

	for _, location := range locations {
		backend, err := sf.StorageBackendFor(location)
		if err != nil {
			sf.log.Warn("Failed to create storage backend",
				slog.String("location", location.String()),
				"err", err)
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid storage backends created")
	}

	return NewMultiStorageBackend(backends, sf.log), nil
}

func (sf *StorageBackendFactory) createFileBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	// file://relative/dir parses "relative" as the host
	dir := location.Path
	if location.Host != "" {
		dir = filepath.Join(location.Host, location.Path)
	}
	if dir == "" {
		return nil, fmt.Errorf("%w: file location without a path", interfaces.ErrInvalidLocationURI)
	}
	return NewFileBackend(dir, sf.log)
}

func (sf *StorageBackendFactory) createS3Backend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	cfg := S3Config{
		Bucket:    location.Host,
		Prefix:    strings.Trim(location.Path, "/"),
		Region:    location.GetParam("region"),
		Endpoint:  location.GetParam("endpoint"),
		PathStyle: location.GetParamBool("path_style"),
	}
	if location.User != nil {
		cfg.AccessKey = location.User.Username()
		cfg.SecretKey, _ = location.User.Password()
	}
	return NewS3Backend(cfg, sf.log)
}

func (sf *StorageBackendFactory) createIPFSBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	host, port := splitHostPort(location.Host, "5001")
	if host == "" {
		host = "localhost"
	}

	timeout := 30 * time.Second
	if raw := location.GetParam("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid timeout %q", interfaces.ErrInvalidLocationURI, raw)
		}
		timeout = parsed
	}

	return NewIPFSBackend(host, port, location.Path, timeout, sf.log)
}

func (sf *StorageBackendFactory) createVaultBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	parts := strings.SplitN(strings.Trim(location.Path, "/"), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: vault location must be vault://host:port/mount/path", interfaces.ErrInvalidLocationURI)
	}

	scheme := "https"
	if raw := location.GetParam("tls"); raw != "" && !location.GetParamBool("tls") {
		scheme = "http"
	}

	token := location.GetParam("token")
	if location.User != nil && location.User.Username() != "" {
		token = location.User.Username()
	}
	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}

	address := fmt.Sprintf("%s://%s", scheme, location.Host)
	return NewVaultBackend(address, parts[0], parts[1], token, sf.log)
}

func splitHostPort(hostport, defaultPort string) (string, string) {
	if i := strings.LastIndex(hostport, ":"); i >= 0 && !strings.Contains(hostport[i:], "]") {
		return hostport[:i], hostport[i+1:]
	}
	return hostport, defaultPort
}
