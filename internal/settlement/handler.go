package settlement

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/pkg/middleware"
	"github.com/fkhayef/settleup/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Record)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)

	r.Get("/group/{groupId}", h.ListByGroup)

	return r
}

// Record handles POST /settlements
// @Summary      Record a settlement
// @Description  Record a repayment from the acting user to another group member
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body CreateSettlementRequest true "Settlement creation request"
// @Success      201 {object} response.APIResponse{data=SettlementResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements [post]
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	payerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User identity required")
		return
	}

	var req CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	settlement, err := h.service.Record(r.Context(), payerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrSubCentPrecision), errors.Is(err, ErrSelfSettlement):
			response.BadRequest(w, err.Error())
		case errors.Is(err, group.ErrGroupNotFound), errors.Is(err, group.ErrMemberNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to record settlement")
		}
		return
	}

	response.JSON(w, http.StatusCreated, settlement.ToResponse())
}

// GetByID handles GET /settlements/{id}
// @Summary      Get settlement by ID
// @Tags         settlements
// @Produce      json
// @Param        id path int true "Settlement ID"
// @Success      200 {object} response.APIResponse{data=SettlementResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid settlement ID")
		return
	}

	settlement, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrSettlementNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get settlement")
		return
	}

	response.JSON(w, http.StatusOK, settlement.ToResponse())
}

// Delete handles DELETE /settlements/{id}
// @Summary      Delete a settlement
// @Description  Soft-delete a settlement; only the payer may delete
// @Tags         settlements
// @Produce      json
// @Param        id path int true "Settlement ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "User identity required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid settlement ID")
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, ErrSettlementNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotPayer):
			response.Forbidden(w, err.Error())
		default:
			response.InternalError(w, "Failed to delete settlement")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Settlement deleted successfully"})
}

// ListByGroup handles GET /settlements/group/{groupId}
// @Summary      List settlements for a group
// @Description  Get a paginated list of a group's settlements, newest first
// @Tags         settlements
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Router       /settlements/group/{groupId} [get]
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

	settlements, total, err := h.service.ListByGroupID(r.Context(), groupID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list settlements")
		return
	}

	settlementResponses := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		settlementResponses[i] = s.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, settlementResponses, meta)
}
