package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/edutrack/tuition-backend-go/internal/domain/billing"
	"github.com/edutrack/tuition-backend-go/internal/handler/http/response"
	"github.com/edutrack/tuition-backend-go/internal/pkg/clock"
	"github.com/edutrack/tuition-backend-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type BillingHandler interface {
	GenerateBatch(w http.ResponseWriter, r *http.Request)
	CreatePayment(w http.ResponseWriter, r *http.Request)
	ListPayments(w http.ResponseWriter, r *http.Request)
	SetPaymentStatus(w http.ResponseWriter, r *http.Request)
	PeriodSummary(w http.ResponseWriter, r *http.Request)
	SweepOverdue(w http.ResponseWriter, r *http.Request)
}

type billingHandlerImpl struct {
	billingService billing.BillingService
	accessService  billing.AccessService
	clk            clock.Clock
}

func NewBillingHandler(
	billingService billing.BillingService,
	accessService billing.AccessService,
	clk clock.Clock,
) BillingHandler {
	return &billingHandlerImpl{
		billingService: billingService,
		accessService:  accessService,
		clk:            clk,
	}
}

func (h *billingHandlerImpl) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req billing.GenerateBatchRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.billingService.GenerateBatch(r.Context(), billing.Period{Year: req.Year, Month: req.Month})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Batch generation completed", result)
}

func (h *billingHandlerImpl) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req billing.CreatePaymentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.billingService.CreatePayment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payment record created", result)
}

func (h *billingHandlerImpl) ListPayments(w http.ResponseWriter, r *http.Request) {
	filter, ok := parsePaymentFilter(w, r)
	if !ok {
		return
	}

	results, err := h.billingService.ListPayments(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (h *billingHandlerImpl) SetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "paymentID")

	var req billing.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.billingService.SetPaymentStatus(r.Context(), id, req.Status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payment status updated", result)
}

func (h *billingHandlerImpl) PeriodSummary(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriodQuery(w, r)
	if !ok {
		return
	}

	result, err := h.billingService.Summary(r.Context(), period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *billingHandlerImpl) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	var req billing.SweepRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	now := h.clk.Now()
	if req.Now != "" {
		// Validated above, cannot fail here
		now, _ = validator.IsValidDateTime(req.Now)
	}

	result, err := h.accessService.SweepOverdue(r.Context(), billing.Period{Year: req.Year, Month: req.Month}, now)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Overdue sweep completed", result)
}

// parsePeriodQuery reads required month/year query params.
func parsePeriodQuery(w http.ResponseWriter, r *http.Request) (billing.Period, bool) {
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	if errM != nil || errY != nil {
		response.BadRequest(w, "month and year query parameters are required", nil)
		return billing.Period{}, false
	}
	return billing.Period{Year: year, Month: month}, true
}

// parsePaymentFilter reads the optional listing filters.
func parsePaymentFilter(w http.ResponseWriter, r *http.Request) (billing.PaymentFilter, bool) {
	var filter billing.PaymentFilter
	q := r.URL.Query()

	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "month must be an integer", nil)
			return filter, false
		}
		filter.Month = month
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "year must be an integer", nil)
			return filter, false
		}
		filter.Year = year
	}
	filter.TierID = q.Get("tier_id")
	filter.AccountID = q.Get("account_id")
	if v := q.Get("status"); v != "" {
		status := billing.PaymentStatus(v)
		if !status.Valid() {
			response.BadRequest(w, "status must be PAID or UNPAID", nil)
			return filter, false
		}
		filter.Status = status
	}

	return filter, true
}
