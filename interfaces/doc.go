// Package interfaces defines the core interfaces and types for the LUW coordination registry.
//
// This package provides the contracts between different components of the system
// without including implementation details. Components depend on these interfaces
// rather than on the ledger-backed implementations, which keeps the HTTP layer
// testable with mocks.
//
// # Coordination Interfaces
//
//   - LUWCoordinator: creates logical units of work, moves them through their
//     lifecycle and records per-repository acknowledgements
//   - ProviderDirectory: the asset-provider collaborator (existence and owner lookups)
//   - AssetTwinRegistry: the asset-twin tracing collaborator
//
// # Storage Interfaces
//
//   - StorageBackend: content-addressed storage used for ledger checkpoints
//   - StorageBackendFactory: creates storage backends from URI strings
//
// # Error Types
//
// Contract failures are reported as *Failure values wrapping one of:
//
//   - ErrUnauthorized: caller does not match owner, certifier or storage binding
//   - ErrNotFound: missing LUW, repository or provider
//   - ErrAlreadyExists: duplicate insert
//   - ErrInvalidState: state code outside its catalog
//   - ErrInvalidTransition: lifecycle precondition violated
//   - ErrInvalidView: a cross-contract call did not resolve
//
// Failure.Error returns the operator-facing message unchanged, so a rejected
// call surfaces e.g. "Non-matching owner address" while errors.Is still
// identifies the kind.
package interfaces
