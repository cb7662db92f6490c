package api

import "github.com/ruteri/luw-coordination-registry/interfaces"

// SignatureHeader carries the flashbots signature of a SignedRequest body.
const SignatureHeader = "X-Flashbots-Signature"

type CreateLUWRequest struct {
	ProviderID      string `json:"provider_id"`
	ServiceEndpoint string `json:"luw_service_endpoint"`
}

type StateRequest struct {
	StateCode interfaces.StateCode `json:"state_code"`
}

type AddRepositoryRequest struct {
	RepositoryID string `json:"repository_id"`
}

type CreateProviderRequest struct {
	ProviderID   string `json:"provider_id"`
	ProviderData string `json:"provider_data"`
}

type ProviderStatusRequest struct {
	Status interfaces.ProviderStatus `json:"status"`
}

type ProviderDataRequest struct {
	ProviderData string `json:"provider_data"`
}

type ProviderOwnerRequest struct {
	NewOwnerAddress interfaces.Address `json:"new_owner_address"`
}

type RegisterTwinRequest struct {
	AnchorHash              string `json:"anchor_hash"`
	ProviderID              string `json:"provider_id"`
	AssetRepositoryEndpoint string `json:"asset_repository_endpoint"`
}

type NextIDResponse struct {
	NextID interfaces.LUWID `json:"next_id"`
}

type StateResponse struct {
	State string `json:"state"`
}

type AddressResponse struct {
	Address interfaces.Address `json:"address"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type RepositoriesResponse struct {
	Repositories map[string]string `json:"repositories"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Receipt *interfaces.Receipt `json:"receipt,omitempty"`
}
