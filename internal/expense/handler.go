package expense

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/pkg/middleware"
	"github.com/fkhayef/splitledger/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a new expense handler
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Post("/preview", h.Preview)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)

	// Listings
	r.Get("/group/{groupId}", h.ListByGroup)
	r.Get("/user", h.ListForUser)

	// Split operations
	r.Post("/{id}/splits/{memberId}/settle", h.SettleSplit)

	return r
}

// Create handles POST /expenses
// @Summary      Create a new expense
// @Description  Create an expense split with the EQUAL, PERCENTAGE, EXACT or ITEM_WISE strategy and update balances
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.service.CreateExpense(r.Context(), callerID, &req)
	if err != nil {
		h.fail(w, err, "Failed to create expense")
		return
	}

	resp := ToExpenseResponse(result.Expense)
	resp.Balances = ToBalanceResponses(result.Balances)
	response.JSON(w, http.StatusCreated, resp)
}

// Preview handles POST /expenses/preview
// @Summary      Preview an expense split
// @Description  Compute the splits of an expense without storing it
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense to preview"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /expenses/preview [post]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.Preview(r.Context(), callerID, &req)
	if err != nil {
		h.fail(w, err, "Failed to preview expense")
		return
	}

	resp := ToExpenseResponse(expense)
	resp.ID = ""
	resp.CreatedAt = ""
	response.JSON(w, http.StatusOK, resp)
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Description  Get an expense with all its splits
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())

	expense, err := h.service.GetExpenseByID(r.Context(), callerID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, ToExpenseResponse(expense))
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List group expenses
// @Description  Get a paginated list of expenses for a group, newest first, optionally limited to a date range
// @Tags         expenses
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Param        start_date query string false "First day to include (YYYY-MM-DD)"
// @Param        end_date query string false "Last day to include (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupId")

	h.list(w, r, func(period Period, page, perPage int) ([]domain.Expense, int, error) {
		return h.service.ListExpensesByGroupID(r.Context(), callerID, groupID, period, page, perPage)
	})
}

// ListForUser handles GET /expenses/user
// @Summary      List my expenses
// @Description  Get a paginated list of the expenses the caller paid or shares in across all groups, newest first
// @Tags         expenses
// @Produce      json
// @Param        start_date query string false "First day to include (YYYY-MM-DD)"
// @Param        end_date query string false "Last day to include (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /expenses/user [get]
func (h *Handler) ListForUser(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())

	h.list(w, r, func(period Period, page, perPage int) ([]domain.Expense, int, error) {
		return h.service.ListUserExpenses(r.Context(), callerID, period, page, perPage)
	})
}

// list parses paging and date range parameters and writes one page of expenses
func (h *Handler) list(w http.ResponseWriter, r *http.Request, fetch func(period Period, page, perPage int) ([]domain.Expense, int, error)) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	period, err := ParsePeriod(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		h.fail(w, err, "Failed to list expenses")
		return
	}

	expenses, total, err := fetch(period, page, perPage)
	if err != nil {
		h.fail(w, err, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i := range expenses {
		expenseResponses[i] = ToExpenseResponse(&expenses[i])
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, expenseResponses, meta)
}

// ParsePeriod reads an inclusive range of UTC calendar days. Either end may be empty.
func ParsePeriod(startDate, endDate string) (Period, error) {
	var period Period
	if startDate != "" {
		start, err := time.Parse(time.DateOnly, startDate)
		if err != nil {
			return Period{}, domain.NewValidationError("start_date", "must be a date in YYYY-MM-DD format")
		}
		period.Since = start
	}
	if endDate != "" {
		end, err := time.Parse(time.DateOnly, endDate)
		if err != nil {
			return Period{}, domain.NewValidationError("end_date", "must be a date in YYYY-MM-DD format")
		}
		period.Until = end.AddDate(0, 0, 1)
	}
	if !period.Since.IsZero() && !period.Until.IsZero() && !period.Since.Before(period.Until) {
		return Period{}, domain.NewValidationError("end_date", "must not be before start_date")
	}
	return period, nil
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Remove an expense and recompute the group's balances
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} response.APIResponse{data=[]BalanceResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())

	balances, err := h.service.DeleteExpense(r.Context(), callerID, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err, "Failed to delete expense")
		return
	}

	response.JSON(w, http.StatusOK, ToBalanceResponses(balances))
}

// SettleSplit handles POST /expenses/{id}/splits/{memberId}/settle
// @Summary      Mark a split as settled
// @Description  Flag one member's share as settled; balances are unaffected
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        memberId path string true "Member ID"
// @Param        request body SettleSplitRequest false "Defaults to settled=true"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id}/splits/{memberId}/settle [post]
func (h *Handler) SettleSplit(w http.ResponseWriter, r *http.Request) {
	callerID, _ := middleware.GetUserID(r.Context())

	var req SettleSplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request body")
		return
	}
	settled := req.Settled == nil || *req.Settled

	expense, err := h.service.SettleSplit(r.Context(), callerID, chi.URLParam(r, "id"), chi.URLParam(r, "memberId"), settled)
	if err != nil {
		h.fail(w, err, "Failed to settle split")
		return
	}

	response.JSON(w, http.StatusOK, ToExpenseResponse(expense))
}

// fail writes the response for a service error
func (h *Handler) fail(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrExpenseNotFound), errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrSplitNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotPayer), errors.Is(err, ErrNotParticipant):
		response.Forbidden(w, err.Error())
	case response.DomainError(w, err):
	default:
		h.logger.Error(message, "error", err)
		response.InternalError(w, message)
	}
}
