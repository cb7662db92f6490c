package luwhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/luw-coordination-registry/api"
	"github.com/ruteri/luw-coordination-registry/interfaces"
)

// Handler processes HTTP requests for the LUW coordinator.
type Handler struct {
	coordinator interfaces.LUWCoordinator
	verifier    *api.Verifier
	log         *slog.Logger
}

func NewHandler(coordinator interfaces.LUWCoordinator, log *slog.Logger) *Handler {
	return &Handler{
		coordinator: coordinator,
		verifier:    api.NewVerifier(api.MaxRequestTTL),
		log:         log,
	}
}

// RegisterRoutes registers the LUW routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/luw", h.HandleCreateLUW)
	r.Post("/api/luw/{luw_id}/state", h.HandleChangeState)
	r.Post("/api/luw/{luw_id}/repositories", h.HandleAddRepository)
	r.Post("/api/luw/{luw_id}/repositories/{repository_id}/state", h.HandleChangeRepositoryState)
	r.Post("/api/admin/rebind", h.HandleRebindStorage)

	r.Get("/api/luw/next_id", h.HandleNextID)
	r.Get("/api/luw/{luw_id}", h.HandleFetch)
	r.Get("/api/luw/{luw_id}/state", h.HandleActiveState)
	r.Get("/api/luw/{luw_id}/owner", h.HandleOwner)
	r.Get("/api/luw/{luw_id}/repositories", h.HandleRepositories)
	r.Get("/api/luw/{luw_id}/repositories/{repository_id}/state", h.HandleRepositoryState)
	r.Get("/api/storage_contract_address", h.HandleStorageContractAddress)
}

// HandleCreateLUW creates a LUW owned by the request signer. The response is
// the receipt only; the new id is next_id as read before the call.
func (h *Handler) HandleCreateLUW(w http.ResponseWriter, r *http.Request) {
	var req api.CreateLUWRequest
	caller, ok := h.decodeSigned(w, r, &req)
	if !ok {
		return
	}
	receipt, err := h.coordinator.CreateLUW(r.Context(), caller, req.ProviderID, req.ServiceEndpoint)
	api.WriteSubmission(w, h.log, receipt, err)
}

func (h *Handler) HandleChangeState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.luwID(w, r)
	if !ok {
		return
	}
	var req api.StateRequest
	caller, ok := h.decodeSigned(w, r, &req)
	if !ok {
		return
	}
	receipt, err := h.coordinator.ChangeState(r.Context(), caller, id, req.StateCode)
	api.WriteSubmission(w, h.log, receipt, err)
}

func (h *Handler) HandleAddRepository(w http.ResponseWriter, r *http.Request) {
	id, ok := h.luwID(w, r)
	if !ok {
		return
	}
	var req api.AddRepositoryRequest
	caller, ok := h.decodeSigned(w, r, &req)
	if !ok {
		return
	}
	receipt, err := h.coordinator.AddRepository(r.Context(), caller, id, req.RepositoryID)
	api.WriteSubmission(w, h.log, receipt, err)
}

func (h *Handler) HandleChangeRepositoryState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.luwID(w, r)
	if !ok {
		return
	}
	var req api.StateRequest
	caller, ok := h.decodeSigned(w, r, &req)
	if !ok {
		return
	}
	receipt, err := h.coordinator.ChangeRepositoryState(r.Context(), caller, id, r.PathValue("repository_id"), req.StateCode)
	api.WriteSubmission(w, h.log, receipt, err)
}

// HandleRebindStorage ignores the signed payload.
func (h *Handler) HandleRebindStorage(w http.ResponseWriter, r *http.Request) {
	caller, _, err := h.verifier.Verify(r)
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	receipt, err := h.coordinator.RebindStorage(r.Context(), caller)
	api.WriteSubmission(w, h.log, receipt, err)
}

func (h *Handler) HandleNextID(w http.ResponseWriter, r *http.Request) {
	next, err := h.coordinator.NextID(r.Context())
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, api.NextIDResponse{NextID: next})
}

func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.luwID(w, r)
	if !ok {
		return
	}
	view, err := h.coordinator.Fetch(r.Context(), id)
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, view)
}

func (h *Handler) HandleActiveState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.luwID(w, r)
	if !ok {
		return
	}
	state, err := h.coordinator.ActiveState(r.Context(), id)
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, api.StateResponse{State: state})
}

func (h *Handler) HandleOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := h.luwID(w, r)
	if !ok {
		return
	}
	owner, err := h.coordinator.Owner(r.Context(), id)
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, api.AddressResponse{Address: owner})
}

func (h *Handler) HandleRepositories(w http.ResponseWriter, r *http.Request) {
	id, ok := h.luwID(w, r)
	if !ok {
		return
	}
	repositories, err := h.coordinator.Repositories(r.Context(), id)
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, api.RepositoriesResponse{Repositories: repositories})
}

func (h *Handler) HandleRepositoryState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.luwID(w, r)
	if !ok {
		return
	}
	state, err := h.coordinator.RepositoryState(r.Context(), id, r.PathValue("repository_id"))
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, api.StateResponse{State: state})
}

func (h *Handler) HandleStorageContractAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := h.coordinator.StorageContractAddress(r.Context())
	if err != nil {
		api.WriteError(w, h.log, err, nil)
		return
	}
	api.WriteJSON(w, h.log, http.StatusOK, api.AddressResponse{Address: addr})
}

func (h *Handler) luwID(w http.ResponseWriter, r *http.Request) (interfaces.LUWID, bool) {
	raw := r.PathValue("luw_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		api.WriteBadRequest(w, h.log, "Invalid LUW id "+strconv.Quote(raw))
		return 0, false
	}
	return interfaces.LUWID(id), true
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
