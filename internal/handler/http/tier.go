package http

import (
	"encoding/json"
	"net/http"

	"github.com/edutrack/tuition-backend-go/internal/domain/tier"
	"github.com/edutrack/tuition-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type TierHandler interface {
	ListTiers(w http.ResponseWriter, r *http.Request)
	GetTier(w http.ResponseWriter, r *http.Request)
	CreateTier(w http.ResponseWriter, r *http.Request)
	UpdateFee(w http.ResponseWriter, r *http.Request)
}

type tierHandlerImpl struct {
	tierService tier.TierService
}

func NewTierHandler(tierService tier.TierService) TierHandler {
	return &tierHandlerImpl{
		tierService: tierService,
	}
}

// ListTiers is public: the registration flow shows tiers and fees before an
// account exists.
func (h *tierHandlerImpl) ListTiers(w http.ResponseWriter, r *http.Request) {
	results, err := h.tierService.ListTiers(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (h *tierHandlerImpl) GetTier(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tierID")

	result, err := h.tierService.GetTier(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *tierHandlerImpl) CreateTier(w http.ResponseWriter, r *http.Request) {
	var req tier.CreateTierRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.tierService.CreateTier(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Tier created successfully", result)
}

// UpdateFee changes a tier's monthly fee and cascades it to the tier's unpaid
// ledger entries.
func (h *tierHandlerImpl) UpdateFee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tierID")

	var req tier.UpdateFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.tierService.UpdateFeeAndPropagate(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Tier fee updated", result)
}
