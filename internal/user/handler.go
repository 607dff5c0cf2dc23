package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/triptally/triptally/pkg/logger"
	"github.com/triptally/triptally/pkg/middleware"
	"github.com/triptally/triptally/pkg/response"
)

// Handler handles HTTP requests for the user directory
type Handler struct {
	service       *Service
	webhookSecret string
}

// NewHandler creates a new user handler
func NewHandler(service *Service, webhookSecret string) *Handler {
	return &Handler{service: service, webhookSecret: webhookSecret}
}

// Routes returns the authenticated user routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/me", h.Me)
	r.Get("/{userID}", h.GetByID)
	return r
}

// WebhookRoutes returns the unauthenticated webhook routes
func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/users", h.Webhook)
	return r
}

// Me handles GET /users/me
// @Summary      Get the acting user
// @Description  Returns the authenticated user's directory record
// @Tags         users
// @Produce      json
// @Success      200 {object} User
// @Failure      404 {object} response.Message
// @Router       /users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	u, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get user")
		return
	}

	response.JSON(w, http.StatusOK, u)
}

// GetByID handles GET /users/{userID}
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Param        userID path string true "User ID"
// @Success      200 {object} User
// @Failure      404 {object} response.Message
// @Router       /users/{userID} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get user")
		return
	}

	response.JSON(w, http.StatusOK, u)
}

// Webhook handles POST /webhooks/users
// @Summary      Identity provider account webhook
// @Description  Applies user.created, user.updated and user.deleted events to the local directory. The raw body must be signed with HMAC-SHA256.
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      200 {object} response.Message
// @Failure      400 {object} response.Message
// @Failure      401 {object} response.Message
// @Router       /webhooks/users [post]
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "Failed to read request body")
		return
	}

	if !VerifySignature(body, r.Header.Get(SignatureHeader), h.webhookSecret) {
		response.Unauthorized(w, "Invalid webhook signature")
		return
	}

	var evt WebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		response.BadRequest(w, "Invalid webhook payload")
		return
	}

	if err := h.service.HandleEvent(r.Context(), &evt); err != nil {
		if errors.Is(err, ErrUnknownEventType) {
			// Acknowledge so the provider does not retry events we ignore.
			logger.Log.WithField("type", evt.Type).Debug("ignoring webhook event")
			response.OK(w, "Event ignored")
			return
		}
		response.InternalError(w, "Failed to process webhook event")
		return
	}

	response.OK(w, "Event processed")
}
