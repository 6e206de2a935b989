package http

import (
	"encoding/json"
	"net/http"

	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/handler/http/response"
	"github.com/edutrack/tuition-backend-go/internal/pkg/clock"
	"github.com/go-chi/chi/v5"
)

type AccessHandler interface {
	GetAccountAccess(w http.ResponseWriter, r *http.Request)
	AccountHistory(w http.ResponseWriter, r *http.Request)
	SetAccountLock(w http.ResponseWriter, r *http.Request)
}

type accessHandlerImpl struct {
	accessService  billing.AccessService
	billingService billing.BillingService
	clk            clock.Clock
}

func NewAccessHandler(
	accessService billing.AccessService,
	billingService billing.BillingService,
	clk clock.Clock,
) AccessHandler {
	return &accessHandlerImpl{
		accessService:  accessService,
		billingService: billingService,
		clk:            clk,
	}
}

// GetAccountAccess is queried by the content-gating layer before serving
// gated resources.
func (h *accessHandlerImpl) GetAccountAccess(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	result, err := h.accessService.GetAccountAccess(r.Context(), accountID, h.clk.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *accessHandlerImpl) AccountHistory(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	results, err := h.billingService.AccountHistory(r.Context(), accountID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// SetAccountLock is the manual override: it sets the flag directly and leaves
// reconciliation with the ledger to the next sweep.
func (h *accessHandlerImpl) SetAccountLock(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	var req billing.SetLockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.accessService.SetAccountLock(r.Context(), accountID, req.Locked); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Account lock updated", map[string]bool{"locked": req.Locked})
}
