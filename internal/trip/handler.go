package trip

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/triptally/triptally/pkg/middleware"
	"github.com/triptally/triptally/pkg/response"
)

// Handler handles HTTP requests for trip operations
type Handler struct {
	service *Service
}

// NewHandler creates a new trip handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for trip endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{tripID}", h.GetByID)
	r.Put("/{tripID}", h.Update)
	r.Delete("/{tripID}", h.Delete)

	r.Post("/{tripID}/members", h.AddMember)
	r.Delete("/{tripID}/members/{userID}", h.RemoveMember)

	return r
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrTripNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrNotCreator):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrNameRequired):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// Create handles POST /trips
// @Summary      Create a trip
// @Tags         trips
// @Accept       json
// @Produce      json
// @Param        request body CreateTripRequest true "Trip creation request"
// @Success      201 {object} Trip
// @Failure      400 {object} response.Message
// @Router       /trips [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to create trip")
		return
	}

	response.JSON(w, http.StatusCreated, t)
}

// List handles GET /trips
// @Summary      List the acting user's trips
// @Tags         trips
// @Produce      json
// @Success      200 {array} Trip
// @Router       /trips [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	trips, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to list trips")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"trips": trips})
}

// GetByID handles GET /trips/{tripID}
// @Summary      Get a trip with its members
// @Tags         trips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} Trip
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /trips/{tripID} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	t, err := h.service.Authorize(r.Context(), chi.URLParam(r, "tripID"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to get trip")
		return
	}

	response.JSON(w, http.StatusOK, t)
}

// Update handles PUT /trips/{tripID}
// @Summary      Update a trip
// @Tags         trips
// @Accept       json
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        request body UpdateTripRequest true "Fields to update"
// @Success      200 {object} Trip
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /trips/{tripID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req UpdateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	t, err := h.service.Update(r.Context(), chi.URLParam(r, "tripID"), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update trip")
		return
	}

	response.JSON(w, http.StatusOK, t)
}

// Delete handles DELETE /trips/{tripID}
// @Summary      Delete a trip
// @Tags         trips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /trips/{tripID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "tripID"), userID); err != nil {
		h.writeError(w, err, "Failed to delete trip")
		return
	}

	response.OK(w, "Trip deleted successfully")
}

// AddMember handles POST /trips/{tripID}/members
// @Summary      Add a member to a trip
// @Tags         trips
// @Accept       json
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        request body AddMemberRequest true "Member to add"
// @Success      201 {object} Member
// @Failure      403 {object} response.Message
// @Router       /trips/{tripID}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	m, err := h.service.AddMember(r.Context(), chi.URLParam(r, "tripID"), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to add member")
		return
	}

	response.JSON(w, http.StatusCreated, m)
}

// RemoveMember handles DELETE /trips/{tripID}/members/{userID}
// @Summary      Remove a member from a trip
// @Tags         trips
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        userID path string true "Member user ID"
// @Success      200 {object} response.Message
// @Failure      403 {object} response.Message
// @Router       /trips/{tripID}/members/{userID} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	err := h.service.RemoveMember(r.Context(), chi.URLParam(r, "tripID"), userID, chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, err, "Failed to remove member")
		return
	}

	response.OK(w, "Member removed successfully")
}
