package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/settleup/pkg/response"
)

// Handler handles HTTP requests for user operations
type Handler struct {
	service *Service
}

// NewHandler creates a new user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for user endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/", h.Search)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)

	return r
}

// Register handles POST /users/register
// @Summary      Register a new user
// @Description  Create a user account with name, email and password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      201 {object} response.APIResponse{data=UserResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" {
		response.BadRequest(w, "Name and email are required")
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyInUse) {
			response.Conflict(w, err.Error())
			return
		}
		if errors.Is(err, ErrWeakPassword) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to register user")
		return
	}

	response.JSON(w, http.StatusCreated, user.ToResponse())
}

// Login handles POST /users/login
// @Summary      Log in
// @Description  Verify credentials and return the matching user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to log in")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

// Search handles GET /users
// @Summary      Search users
// @Description  Get a paginated list of users, optionally filtered by name or email
// @Tags         users
// @Produce      json
// @Param        q query string false "Name or email fragment"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]UserResponse}
// @Router       /users [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	users, total, err := h.service.Search(r.Context(), query, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to search users")
		return
	}

	userResponses := make([]*UserResponse, len(users))
	for i, u := range users {
		userResponses[i] = u.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, userResponses, meta)
}

// GetByID handles GET /users/{id}
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get user")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}

// Update handles PUT /users/{id}
// @Summary      Update a user
// @Description  Update a user's name or email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path int true "User ID"
// @Param        request body UpdateUserRequest true "Update request"
// @Success      200 {object} response.APIResponse{data=UserResponse}
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrEmailAlreadyInUse) {
			response.Conflict(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update user")
		return
	}

	response.JSON(w, http.StatusOK, user.ToResponse())
}
