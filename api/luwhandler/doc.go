// Package luwhandler serves the LUW coordinator over HTTP.
//
// Routes:
//
//	POST /api/luw                                             create a LUW
//	POST /api/luw/{luw_id}/state                              append a LUW state
//	POST /api/luw/{luw_id}/repositories                       enroll a repository
//	POST /api/luw/{luw_id}/repositories/{repository_id}/state record a repository state
//	POST /api/admin/rebind                                    rebind the LUW store (certifier only)
//	GET  /api/luw/next_id
//	GET  /api/luw/{luw_id}
//	GET  /api/luw/{luw_id}/state
//	GET  /api/luw/{luw_id}/owner
//	GET  /api/luw/{luw_id}/repositories
//	GET  /api/luw/{luw_id}/repositories/{repository_id}/state
//	GET  /api/storage_contract_address
//
// POST bodies are api.SignedRequest envelopes bound to the route they are
// posted to; each one is accepted once. The package also provides
// Client, which implements interfaces.LUWCoordinator against a remote server.
package luwhandler
