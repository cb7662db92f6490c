package interfaces

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ContentID addresses a checkpoint or manifest by the SHA-256 of its bytes.
type ContentID [32]byte

// NewContentIDFromHex accepts the id with or without a 0x prefix.
func NewContentIDFromHex(source string) (ContentID, error) {
	if !strings.HasPrefix(source, "0x") {
		source = "0x" + source
	}
	raw, err := hexutil.Decode(source)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid content ID: %w", err)
	}
	if len(raw) != len(ContentID{}) {
		return ContentID{}, fmt.Errorf("invalid content ID: %d bytes, want 32", len(raw))
	}
	return ContentID(raw), nil
}

func ComputeID(data []byte) ContentID {
	return sha256.Sum256(data)
}

// String is the unprefixed hex form used in backend paths and keys.
func (id ContentID) String() string {
	return strings.TrimPrefix(hexutil.Encode(id[:]), "0x")
}

func (id ContentID) Equal(other ContentID) bool {
	return id == other
}

// ContentType selects the namespace a backend stores content under.
type ContentType int

const (
	// CheckpointType is an exported ledger key-value table.
	CheckpointType ContentType = iota
	// ManifestType is a deployment manifest naming the contract addresses.
	ManifestType
)

func (ct ContentType) String() string {
	switch ct {
	case CheckpointType:
		return "checkpoint"
	case ManifestType:
		return "manifest"
	}
	return "unknown"
}

// StorageBackendLocation is a parsed checkpoint backend URI such as
// "s3://bucket/prefix?region=eu-west-1" or "vault://host:8200/secret/luw".
type StorageBackendLocation struct {
	Scheme string
	Host   string
	Path   string
	Query  url.Values
	User   *url.Userinfo

	uri string
}

// NewStorageBackendLocation rejects schemes no backend handles.
func NewStorageBackendLocation(uri string) (StorageBackendLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return StorageBackendLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	loc := StorageBackendLocation{
		Scheme: strings.ToLower(parsed.Scheme),
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		User:   parsed.User,
		uri:    uri,
	}
	switch loc.Scheme {
	case "file", "s3", "ipfs", "vault":
		return loc, nil
	}
	return StorageBackendLocation{}, fmt.Errorf("%w: unsupported storage scheme %q", ErrInvalidLocationURI, parsed.Scheme)
}

func (loc StorageBackendLocation) String() string {
	return loc.uri
}

func (loc StorageBackendLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool is false for absent or unparsable values.
func (loc StorageBackendLocation) GetParamBool(name string) bool {
	v, err := strconv.ParseBool(loc.Query.Get(name))
	return err == nil && v
}

var (
	ErrContentNotFound    = errors.New("content not found")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// StorageBackend keeps checkpoints and manifests outside the ledger database.
// Content is addressed by ComputeID of its bytes, so storing the same
// checkpoint twice yields the same id.
type StorageBackend interface {
	// Fetch returns ErrContentNotFound when the id is absent.
	Fetch(ctx context.Context, id ContentID, contentType ContentType) ([]byte, error)
	Store(ctx context.Context, data []byte, contentType ContentType) (ContentID, error)
	// Available is a cheap health probe used to skip dead backends.
	Available(ctx context.Context) bool
	Name() string
	LocationURI() string
}

type StorageBackendFactory interface {
	StorageBackendFor(location StorageBackendLocation) (StorageBackend, error)
	// CreateMultiBackend fails only if none of the locations can be opened.
	CreateMultiBackend(locations []StorageBackendLocation) (StorageBackend, error)
}
