package balance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/settleup/internal/group"
	"github.com/fkhayef/settleup/internal/ledger"
	"github.com/fkhayef/settleup/pkg/response"
)

// Handler handles HTTP requests for balance queries
type Handler struct {
	service *Service
}

// NewHandler creates a new balance handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for balance endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/group/{groupId}", h.GetGroupSummary)

	return r
}

// GetGroupSummary handles GET /balances/group/{groupId}
// @Summary      Group balance summary
// @Description  Get every member's net balance and the simplified debts that settle the group
// @Tags         balances
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupSummary}
// @Failure      404 {object} response.APIResponse
// @Failure      500 {object} response.APIResponse
// @Router       /balances/group/{groupId} [get]
func (h *Handler) GetGroupSummary(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	summary, err := h.service.GetGroupSummary(r.Context(), groupID)
	if err != nil {
		var inconsistent *ledger.ConsistencyError
		switch {
		case errors.Is(err, group.ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.As(err, &inconsistent):
			response.InternalError(w, inconsistent.Error())
		default:
			response.InternalError(w, "Failed to compute group balances")
		}
		return
	}

	response.JSON(w, http.StatusOK, summary)
}
