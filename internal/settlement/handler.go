package settlement

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/pkg/middleware"
	"github.com/fkhayef/splitledger/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GroupRoutes registers the settlement endpoints on the /groups router
func (h *Handler) GroupRoutes(r chi.Router) {
	r.Get("/{id}/settlement", h.Suggest)
	r.Post("/{id}/settlements", h.Record)
}

// Suggest handles GET /groups/{id}/settlement
// @Summary      Suggest settlement transfers
// @Description  Plan the fewest transfers, largest first, that bring every balance to zero
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=SuggestionResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/settlement [get]
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())

	suggestion, err := h.service.Suggest(r.Context(), callerID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to plan settlement")
		return
	}

	response.JSON(w, http.StatusOK, ToSuggestionResponse(suggestion))
}

// Record handles POST /groups/{id}/settlements
// @Summary      Record a settlement payment
// @Description  Record that one member paid another, up to the amount outstanding between them; stored as an EXACT expense
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body RecordSettlementRequest true "Payment to record"
// @Success      201 {object} response.APIResponse{data=expense.ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/{id}/settlements [post]
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())

	var req RecordSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.Record(r.Context(), callerID, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.fail(w, err, "Failed to record settlement")
		return
	}

	resp := expense.ToExpenseResponse(result.Expense)
	resp.Balances = expense.ToBalanceResponses(result.Balances)
	response.JSON(w, http.StatusCreated, resp)
}

// fail writes the response for a service error
func (h *Handler) fail(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrGroupNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotMember):
		response.Forbidden(w, err.Error())
	case response.DomainError(w, err):
	default:
		h.logger.Error(message, "error", err)
		response.InternalError(w, message)
	}
}
