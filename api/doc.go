/*
Package api provides the HTTP surface of the LUW coordination registry.

It is organized into subpackages:

 1. luwhandler - LUW lifecycle endpoints and their HTTP client
 2. assethandler - asset provider directory and asset twin endpoints
 3. servers - HTTP server lifecycle, health probes and the metrics server

This package holds what they share: request and response types, the mapping
from ledger failures to HTTP status codes, request signature verification and
a signing HTTP client.

# Caller identity

Mutating requests carry an X-Flashbots-Signature header over the request body.
The recovered address is the caller identity passed to the ledger; there is no
other authentication. Views are public.

# Responses

Mutations answer with the ledger receipt only. The effects of forwarded
operations are observed by polling the views, for example reading
/api/luw/next_id before and after creating a LUW.

Failures answer with

	{"error": "<kind>", "message": "<operator-facing message>", "receipt": {...}}

where kind is one of unauthorized, not_found, already_exists, invalid_state,
invalid_transition, invalid_view or internal.
*/
package api
