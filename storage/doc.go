// Package storage keeps ledger checkpoints and deployment manifests in
// content-addressed backends.
//
// Content is identified by the SHA-256 hash of its bytes. Checkpoints and
// manifests are kept in separate namespaces of every backend:
//
//   - File system storage for single-node deployments and tests
//   - S3-compatible object storage
//   - IPFS, through the node's mutable file system
//   - HashiCorp Vault KV v2, authenticated with a token
//
// # Storage URI Format
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Examples:
//
//   - file:///var/lib/luw-registry/checkpoints
//   - s3://ACCESS:SECRET@bucket/prefix/?region=eu-west-1&endpoint=minio:9000
//   - ipfs://localhost:5001/?timeout=30s
//   - vault://TOKEN@vault.example.com:8200/secret/luw-registry?tls=false
//
// Several URIs can be combined with StorageBackendFactory.CreateMultiBackend,
// which writes to every available backend and reads from the first one that
// has the content.
//
// # Checkpoints
//
// SaveCheckpoint streams a ledger export into a backend and returns its
// content id. RestoreCheckpoint fetches it, verifies the hash and imports it
// into an empty ledger.
package storage
