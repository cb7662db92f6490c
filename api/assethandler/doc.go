// Package assethandler serves the asset provider directory and the asset twin
// registry over HTTP.
//
// Routes:
//
//	POST /api/providers                          register a provider owned by the signer
//	POST /api/providers/{provider_id}/status     set provider status (owner only)
//	POST /api/providers/{provider_id}/data       replace provider data (owner only)
//	POST /api/providers/{provider_id}/owner      transfer the provider (owner only)
//	GET  /api/providers/{provider_id}
//	GET  /api/providers/{provider_id}/exists
//	GET  /api/providers/{provider_id}/owner
//	POST /api/twins                              register an asset twin (provider owner only)
//	GET  /api/twins/{provider_id}/{anchor_hash}
package assethandler
