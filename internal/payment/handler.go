package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/triptally/triptally/pkg/middleware"
	"github.com/triptally/triptally/pkg/response"
	"github.com/triptally/triptally/pkg/upload"
)

const maxUploadSize = 8 << 20 // 8 MiB, QR codes are small

// Handler handles HTTP requests for payment settings
type Handler struct {
	service *Service
	uploads *upload.Store
}

// NewHandler creates a new payment handler
func NewHandler(service *Service, uploads *upload.Store) *Handler {
	return &Handler{service: service, uploads: uploads}
}

// Routes returns the router for payment endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
	r.Get("/settings/{userID}", h.GetUserSettings)

	return r
}

// GetSettings handles GET /payments/settings
// @Summary      Get own payment settings
// @Description  Returns an all-empty record when the caller has never saved settings.
// @Tags         payments
// @Produce      json
// @Success      200 {object} Settings
// @Router       /payments/settings [get]
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	settings, err := h.service.Get(r.Context(), userID)
	if err != nil {
		response.InternalError(w, "Failed to get payment settings")
		return
	}

	response.JSON(w, http.StatusOK, settings)
}

// GetUserSettings handles GET /payments/settings/{userID}
// @Summary      Get another user's payment settings
// @Tags         payments
// @Produce      json
// @Param        userID path string true "User ID"
// @Success      200 {object} Settings
// @Failure      404 {object} response.Message
// @Router       /payments/settings/{userID} [get]
func (h *Handler) GetUserSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetForUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get payment settings")
		return
	}

	response.JSON(w, http.StatusOK, settings)
}

// UpdateSettings handles PUT /payments/settings
// @Summary      Update own payment settings
// @Description  Partial update. Accepts JSON, or multipart form data with a qrCode file that replaces the stored QR image; the staged file is deleted when the update fails.
// @Tags         payments
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Success      200 {object} Settings
// @Failure      400 {object} response.Message
// @Router       /payments/settings [put]
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req *UpdateSettingsRequest
	var qrCode *upload.StagedFile

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			response.BadRequest(w, "Invalid multipart form")
			return
		}
		req = parseUpdateForm(r)

		if _, fh, err := r.FormFile("qrCode"); err == nil {
			staged, err := h.uploads.Save(fh)
			if err != nil {
				response.InternalError(w, "Failed to store QR code")
				return
			}
			qrCode = staged
		}
	} else {
		req = &UpdateSettingsRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	settings, err := h.service.Update(r.Context(), userID, req, qrCode)
	if err != nil {
		h.uploads.Cleanup(qrCode)
		response.InternalError(w, "Failed to update payment settings")
		return
	}

	response.JSON(w, http.StatusOK, settings)
}
