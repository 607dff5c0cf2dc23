package capture

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/triptally/triptally/internal/trip"
	"github.com/triptally/triptally/pkg/middleware"
	"github.com/triptally/triptally/pkg/response"
	"github.com/triptally/triptally/pkg/upload"
)

const maxUploadSize = 32 << 20 // 32 MiB

// Handler handles HTTP requests for trip captures
type Handler struct {
	service *Service
	uploads *upload.Store
}

// NewHandler creates a new capture handler
func NewHandler(service *Service, uploads *upload.Store) *Handler {
	return &Handler{service: service, uploads: uploads}
}

// Routes returns the router for capture endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/trip/{tripID}", h.Create)
	r.Get("/trip/{tripID}", h.ListByTrip)
	r.Delete("/{captureID}", h.Delete)

	return r
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, trip.ErrTripNotFound), errors.Is(err, ErrCaptureNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, trip.ErrNotMember), errors.Is(err, ErrNotAllowed):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrFileRequired):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// Create handles POST /captures/trip/{tripID}
// @Summary      Upload a capture
// @Description  Multipart form with an image file and an optional caption; the staged file is deleted when the upload is rejected.
// @Tags         captures
// @Accept       mpfd
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      201 {object} Capture
// @Failure      400 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /captures/trip/{tripID} [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripID")

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	var file *upload.StagedFile
	if _, fh, err := r.FormFile("image"); err == nil {
		staged, err := h.uploads.Save(fh)
		if err != nil {
			response.InternalError(w, "Failed to store image")
			return
		}
		file = staged
	}

	c, err := h.service.Create(r.Context(), tripID, userID, r.FormValue("caption"), file)
	if err != nil {
		h.uploads.Cleanup(file)
		h.writeError(w, err, "Failed to upload capture")
		return
	}

	response.JSON(w, http.StatusCreated, c)
}

// ListByTrip handles GET /captures/trip/{tripID}
// @Summary      List a trip's captures
// @Tags         captures
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {array} Capture
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /captures/trip/{tripID} [get]
func (h *Handler) ListByTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	captures, err := h.service.ListByTrip(r.Context(), chi.URLParam(r, "tripID"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to list captures")
		return
	}

	response.JSON(w, http.StatusOK, captures)
}

// Delete handles DELETE /captures/{captureID}
// @Summary      Delete a capture
// @Description  Allowed for the uploader or the trip's creator. The stored file is removed best-effort.
// @Tags         captures
// @Produce      json
// @Param        captureID path string true "Capture ID"
// @Success      200 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /captures/{captureID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "captureID"), userID); err != nil {
		h.writeError(w, err, "Failed to delete capture")
		return
	}

	response.OK(w, "Capture deleted successfully")
}
