package assethandler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/luw-coordination-registry/api"
	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// Handler processes HTTP requests for providers and asset twins.
type Handler struct {
	providers interfaces.ProviderDirectory
	twins     interfaces.AssetTwinRegistry
	verifier  *api.Verifier
	log       *slog.Logger
}

func NewHandler(providers interfaces.ProviderDirectory, twins interfaces.AssetTwinRegistry, log *slog.Logger) *Handler {
	return &Handler{
		providers: providers,
		twins:     twins,
		verifier:  api.NewVerifier(api.MaxRequestTTL),
		log:       log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/providers", h.HandleCreateProvider)
	r.Post("/api/providers/{provider_id}/status", h.HandleSetProviderStatus)
	r.Post("/api/providers/{provider_id}/data", h.HandleSetProviderData)
	r.Post("/api/providers/{provider_id}/owner", h.HandleSetProviderOwner)
	r.Get("/api/providers/{provider_id}", h.HandleProvider)
	r.Get("/api/providers/{provider_id}/exists", h.HandleProviderExists)
	r.Get("/api/providers/{provider_id}/owner", h.HandleProviderOwner)

	r.Post("/api/twins", h.HandleRegisterTwin)
	r.Get("/api/twins/{provider_id}/{anchor_hash}", h.HandleFetchTwin)
}

func (h *Handler) HandleCreateProvider(w http.ResponseWriter, r *http.Request) {
	var req api.CreateProviderRequest
	caller, ok := h.decodeSigned(w, r, &req)
	if !ok {
		return
	}
	receipt, err := h.providers.CreateProvider(r.Context(), caller, req.ProviderID, req.ProviderData)
	api.WriteSubmission(w, h.log, receipt, err)
}

func (h *Handler) HandleSetProviderStatus(w http.ResponseWriter, r *http.Request) {
	var req api.ProviderStatusRequest
	caller, ok := h.decodeSigned(w, r, &req)
	if !ok {
		return
	}
	receipt, err := h.providers.SetProviderStatus(r.Context(), caller, r.PathValue("provider_id"), req.Status)
	api.WriteSubmission(w, h.log, receipt, err)
}

func (h *Handler) HandleSetProviderData(w http.ResponseWriter, r *http.Request) {
	var req api.ProviderDataRequest
	caller, ok := h.decodeSigned(w, r, &req)
	if !ok {
		return
	}
	receipt, err := h.providers.SetProviderData(r.Context(), caller, r.PathValue("provider_id"), req.ProviderData)
	api.WriteSubmission(w, h.log, receipt, err)
}

func (h *Handler) HandleSetProviderOwner(w http.ResponseWriter, r *http.Request) {
	var req api.ProviderOwnerRequest
	caller, ok := h.decodeSigned(w, r, &req)
	if !ok {
		return
	}
	receipt, err := h.providers.SetProviderOwner(r.Context(), caller, r.PathValue("provider_id"), req.NewOwnerAddress)
	api.WriteSubmission(w, h.log, receipt, err)
}

func (h *Handler) HandleProvider(w http.ResponseWriter, r *http.Request) {
	provider, err := h.providers.Provider(r.Context(), r.PathValue("provider_id"))
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, provider)
}

func (h *Handler) HandleProviderExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.providers.VerifyProviderExists(r.Context(), r.PathValue("provider_id"))
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, api.ExistsResponse{Exists: exists})
}

func (h *Handler) HandleProviderOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := h.providers.ProviderOwnerAddress(r.Context(), r.PathValue("provider_id"))
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, api.AddressResponse{Address: owner})
}

func (h *Handler) HandleRegisterTwin(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterTwinRequest
	caller, ok := h.decodeSigned(w, r, &req)
	if !ok {
		return
	}
	receipt, err := h.twins.RegisterTwin(r.Context(), caller, req.AnchorHash, req.ProviderID, req.AssetRepositoryEndpoint)
	api.WriteSubmission(w, h.log, receipt, err)
}

func (h *Handler) HandleFetchTwin(w http.ResponseWriter, r *http.Request) {
	twin, err := h.twins.FetchTwin(r.Context(), r.PathValue("anchor_hash"), r.PathValue("provider_id"))
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, twin)
}

func (h *Handler) decodeSigned(w http.ResponseWriter, r *http.Request, req any) (interfaces.Address, bool) {
	caller, payload, err := h.verifier.Verify(r)
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return interfaces.Address{}, false
	}
	if err := json.Unmarshal(payload, req); err != nil {
		api.WriteBadRequest(w, h.log, "Invalid request body: "+err.Error())
		return interfaces.Address{}, false
	}
	return caller, true
}
