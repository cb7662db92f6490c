// Package assets implements the asset-provider directory and the asset-twin
// tracing registry as store/logic contract pairs on the ledger.
//
// Both stores are guarded by a binding in the same way as the LUW store. The
// twin registry reads provider existence and ownership from the provider
// directory through views before forwarding a registration.
//
// Provider status codes:
//
//	1 active
//	2 deprecated
package assets
