package proposal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/triptally/triptally/internal/trip"
	"github.com/triptally/triptally/pkg/middleware"
	"github.com/triptally/triptally/pkg/response"
	"github.com/triptally/triptally/pkg/upload"
)

const (
	maxUploadSize  = 32 << 20 // 32 MiB
	maxImagesPerOp = 5
)

// Handler handles HTTP requests for proposal operations
type Handler struct {
	service *Service
	uploads *upload.Store
}

// NewHandler creates a new proposal handler
func NewHandler(service *Service, uploads *upload.Store) *Handler {
	return &Handler{service: service, uploads: uploads}
}

// Routes returns the router for proposal endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Trip-scoped operations
	r.Post("/trip/{tripID}", h.Create)
	r.Get("/trip/{tripID}", h.ListByTrip)

	// Proposal-scoped operations
	r.Get("/{proposalID}", h.GetByID)
	r.Put("/{proposalID}", h.Update)
	r.Delete("/{proposalID}", h.Delete)
	r.Patch("/{proposalID}/vote/{optionID}", h.Vote)
	r.Post("/{proposalID}/images", h.AddImages)
	r.Delete("/{proposalID}/images/{imageID}", h.RemoveImage)

	return r
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, trip.ErrTripNotFound),
		errors.Is(err, ErrProposalNotFound),
		errors.Is(err, ErrImageNotFound),
		errors.Is(err, ErrOptionNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, trip.ErrNotMember), errors.Is(err, ErrNotAllowed):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrInvalidType),
		errors.Is(err, ErrPollOptionsRequired),
		errors.Is(err, ErrNotAPoll),
		errors.Is(err, ErrPollClosed),
		errors.Is(err, ErrPollEnded):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// stageImages saves every uploaded "images" file, cleaning up the batch if
// any single save fails.
func (h *Handler) stageImages(r *http.Request) ([]*upload.StagedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File["images"]
	if len(headers) > maxImagesPerOp {
		headers = headers[:maxImagesPerOp]
	}

	var staged []*upload.StagedFile
	for _, fh := range headers {
		f, err := h.uploads.Save(fh)
		if err != nil {
			h.uploads.Cleanup(staged...)
			return nil, err
		}
		staged = append(staged, f)
	}
	return staged, nil
}

// Create handles POST /proposals/trip/{tripID}
// @Summary      Create a proposal
// @Description  Creates a discussion, proposal or poll. Accepts JSON, or multipart form data with up to five image files; staged images are deleted when validation fails.
// @Tags         proposals
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        request body CreateProposalRequest true "Proposal creation request"
// @Success      201 {object} Proposal
// @Failure      400 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /proposals/trip/{tripID} [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripID")

	var req *CreateProposalRequest
	var images []*upload.StagedFile

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			response.BadRequest(w, "Invalid multipart form")
			return
		}

		parsed, err := parseCreateForm(r)
		if err != nil {
			response.BadRequest(w, err.Error())
			return
		}
		req = parsed

		staged, err := h.stageImages(r)
		if err != nil {
			response.InternalError(w, "Failed to store images")
			return
		}
		images = staged
	} else {
		req = &CreateProposalRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	p, err := h.service.Create(r.Context(), tripID, userID, req, images)
	if err != nil {
		h.uploads.Cleanup(images...)
		h.writeError(w, err, "Failed to create proposal")
		return
	}

	response.JSON(w, http.StatusCreated, p)
}

// ListByTrip handles GET /proposals/trip/{tripID}
// @Summary      List a trip's proposals
// @Description  Newest first, optionally filtered by type. An unknown type filter is ignored.
// @Tags         proposals
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        type query string false "Type filter" Enums(discussion, proposal, poll)
// @Success      200 {array} Proposal
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /proposals/trip/{tripID} [get]
func (h *Handler) ListByTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	proposals, err := h.service.ListByTrip(r.Context(), chi.URLParam(r, "tripID"), userID, r.URL.Query().Get("type"))
	if err != nil {
		h.writeError(w, err, "Failed to list proposals")
		return
	}

	response.JSON(w, http.StatusOK, proposals)
}

// GetByID handles GET /proposals/{proposalID}
// @Summary      Get a proposal
// @Tags         proposals
// @Produce      json
// @Param        proposalID path string true "Proposal ID"
// @Success      200 {object} Proposal
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /proposals/{proposalID} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	p, err := h.service.GetByID(r.Context(), chi.URLParam(r, "proposalID"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to get proposal")
		return
	}

	response.JSON(w, http.StatusOK, p)
}

// Update handles PUT /proposals/{proposalID}
// @Summary      Update a proposal
// @Description  Partial update by the proposal's creator. Replacement poll options keep the votes of the option they match by id or text.
// @Tags         proposals
// @Accept       json
// @Produce      json
// @Param        proposalID path string true "Proposal ID"
// @Param        request body UpdateProposalRequest true "Proposal update request"
// @Success      200 {object} Proposal
// @Failure      400 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /proposals/{proposalID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req UpdateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "proposalID"), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update proposal")
		return
	}

	response.JSON(w, http.StatusOK, p)
}

// Vote handles PATCH /proposals/{proposalID}/vote/{optionID}
// @Summary      Toggle a poll vote
// @Description  Adds the caller's vote to the option, or removes it when already present. Single-vote polls move an existing vote to the new option.
// @Tags         proposals
// @Produce      json
// @Param        proposalID path string true "Proposal ID"
// @Param        optionID path string true "Poll option ID"
// @Success      200 {object} Proposal
// @Failure      400 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /proposals/{proposalID}/vote/{optionID} [patch]
func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	p, err := h.service.Vote(r.Context(), chi.URLParam(r, "proposalID"), chi.URLParam(r, "optionID"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to record vote")
		return
	}

	response.JSON(w, http.StatusOK, p)
}

// AddImages handles POST /proposals/{proposalID}/images
// @Summary      Attach images to a proposal
// @Accept       mpfd
// @Produce      json
// @Tags         proposals
// @Param        proposalID path string true "Proposal ID"
// @Success      200 {object} Proposal
// @Failure      400 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /proposals/{proposalID}/images [post]
func (h *Handler) AddImages(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	images, err := h.stageImages(r)
	if err != nil {
		response.InternalError(w, "Failed to store images")
		return
	}
	if len(images) == 0 {
		response.BadRequest(w, "No images provided")
		return
	}

	p, err := h.service.AddImages(r.Context(), chi.URLParam(r, "proposalID"), userID, images)
	if err != nil {
		h.uploads.Cleanup(images...)
		h.writeError(w, err, "Failed to attach images")
		return
	}

	response.JSON(w, http.StatusOK, p)
}

// RemoveImage handles DELETE /proposals/{proposalID}/images/{imageID}
// @Summary      Remove a proposal image
// @Tags         proposals
// @Produce      json
// @Param        proposalID path string true "Proposal ID"
// @Param        imageID path string true "Image ID"
// @Success      200 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /proposals/{proposalID}/images/{imageID} [delete]
func (h *Handler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	err := h.service.RemoveImage(r.Context(), chi.URLParam(r, "proposalID"), chi.URLParam(r, "imageID"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to remove image")
		return
	}

	response.OK(w, "Image removed successfully")
}

// Delete handles DELETE /proposals/{proposalID}
// @Summary      Delete a proposal
// @Description  Allowed for the proposal's creator or the trip's creator. Attached files are removed best-effort.
// @Tags         proposals
// @Produce      json
// @Param        proposalID path string true "Proposal ID"
// @Success      200 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /proposals/{proposalID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "proposalID"), userID); err != nil {
		h.writeError(w, err, "Failed to delete proposal")
		return
	}

	response.OK(w, "Proposal deleted successfully")
}
