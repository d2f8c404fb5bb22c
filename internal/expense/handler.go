package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/settleup/internal/expense/split"
	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/pkg/middleware"
	"github.com/fkhayef/settleup/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)

	r.Get("/group/{groupId}", h.ListByGroup)
	r.Get("/group/{groupId}/history", h.GroupHistory)

	return r
}

// Create handles POST /expenses
// @Summary      Record an expense
// @Description  Record an expense paid by the acting user and split it among participants
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User identity required")
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Description == "" {
		response.BadRequest(w, "Description is required")
		return
	}

	expense, err := h.service.Create(r.Context(), payerID, &req)
	if err != nil {
		var mismatch *split.MismatchError
		var nonMember *NonMemberError
		switch {
		case errors.Is(err, group.ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.As(err, &mismatch):
			response.UnprocessableEntity(w, mismatch.Error())
		case errors.As(err, &nonMember):
			response.BadRequest(w, nonMember.Error())
		case errors.Is(err, split.ErrInvalidAmount),
			errors.Is(err, split.ErrSubCentPrecision),
			errors.Is(err, split.ErrNoParticipants),
			errors.Is(err, split.ErrMissingAmount),
			errors.Is(err, split.ErrNegativeAmount):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to create expense")
		}
		return
	}

	response.JSON(w, http.StatusCreated, expense.ToResponse())
}

// GetByID handles GET /expenses/{id}
// @Summary      Get expense by ID
// @Description  Get an expense with its splits
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	expense, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrExpenseNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, expense.ToResponse())
}

// Delete handles DELETE /expenses/{id}
// @Summary      Delete an expense
// @Description  Soft-delete an expense and its splits; only the payer may delete
// @Tags         expenses
// @Produce      json
// @Param        id path int true "Expense ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User identity required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid expense ID")
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, ErrExpenseNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotPayer):
			response.Forbidden(w, err.Error())
		default:
			response.InternalError(w, "Failed to delete expense")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List expenses for a group
// @Description  Get a paginated list of a group's expenses, newest first
// @Tags         expenses
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	expenses, total, err := h.service.ListByGroupID(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = e.ToResponse()
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

// GroupHistory handles GET /expenses/group/{groupId}/history
// @Summary      Group activity history
// @Description  Get a group's expenses and settlements merged into one feed, newest first
// @Tags         expenses
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]HistoryEntryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/group/{groupId}/history [get]
func (h *Handler) GroupHistory(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	history, err := h.service.GroupHistory(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get group history")
		return
	}

	response.JSON(w, http.StatusOK, history)
}
