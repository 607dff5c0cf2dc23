package expense

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/triptally/triptally/internal/expense/split"
	"github.com/triptally/triptally/internal/trip"
	"github.com/triptally/triptally/pkg/middleware"
	"github.com/triptally/triptally/pkg/response"
	"github.com/triptally/triptally/pkg/upload"
)

const maxUploadSize = 32 << 20 // 32 MiB

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
	uploads *upload.Store
}

// NewHandler creates a new expense handler
func NewHandler(service *Service, uploads *upload.Store) *Handler {
	return &Handler{service: service, uploads: uploads}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	// Trip-scoped operations
	r.Post("/trip/{tripID}", h.Create)
	r.Get("/trip/{tripID}", h.ListByTrip)
	r.Get("/trip/{tripID}/statistics", h.Statistics)
	r.Get("/trip/{tripID}/balance", h.BalanceSummary)

	// Expense-scoped operations
	r.Get("/{expenseID}", h.GetByID)
	r.Put("/{expenseID}", h.Update)
	r.Delete("/{expenseID}", h.Delete)
	r.Patch("/{expenseID}/splits/{userID}/pay", h.MarkSplitPaid)

	return r
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, trip.ErrTripNotFound),
		errors.Is(err, ErrExpenseNotFound),
		errors.Is(err, ErrSplitNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, trip.ErrNotMember), errors.Is(err, ErrNotAllowed):
		response.Forbidden(w, err.Error())
	case errors.Is(err, split.ErrNoSplits),
		errors.Is(err, split.ErrInvalidPercentages),
		errors.Is(err, split.ErrPercentageOutOfRange),
		errors.Is(err, split.ErrDuplicateUser),
		errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidCategory):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}

// Create handles POST /expenses/trip/{tripID}
// @Summary      Create an expense
// @Description  Creates an expense with percentage splits. Accepts JSON, or multipart form data with a billImage file; the staged image is deleted when validation fails.
// @Tags         expenses
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} Expense
// @Failure      400 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /expenses/trip/{tripID} [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "tripID")

	var req *CreateExpenseRequest
	var billImage *upload.StagedFile

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

		if _, fh, err := r.FormFile("billImage"); err == nil {
			staged, err := h.uploads.Save(fh)
			if err != nil {
				response.InternalError(w, "Failed to store bill image")
				return
			}
			billImage = staged
		}
	} else {
		req = &CreateExpenseRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			response.BadRequest(w, "Invalid request body")
			return
		}
	}

	e, err := h.service.Create(r.Context(), tripID, userID, req, billImage)
	if err != nil {
		// No orphaned uploads: a rejected request takes its staged image
		// with it.
		h.uploads.Cleanup(billImage)
		h.writeError(w, err, "Failed to create expense")
		return
	}

	response.JSON(w, http.StatusCreated, e)
}

// ListByTrip handles GET /expenses/trip/{tripID}
// @Summary      List a trip's expenses
// @Description  Optionally filtered by category, sorted by createdAt, amount or expenseDate (asc/desc, default createdAt desc).
// @Tags         expenses
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Param        category query string false "Category filter" Enums(travel, food, accommodation, others)
// @Param        sortBy query string false "Sort field" Enums(createdAt, amount, expenseDate)
// @Param        order query string false "Sort order" Enums(asc, desc)
// @Success      200 {array} Expense
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /expenses/trip/{tripID} [get]
func (h *Handler) ListByTrip(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	q := r.URL.Query()
	expenses, err := h.service.ListByTrip(r.Context(), chi.URLParam(r, "tripID"), userID,
		q.Get("category"), q.Get("sortBy"), q.Get("order"))
	if err != nil {
		h.writeError(w, err, "Failed to list expenses")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"expenses": expenses})
}

// Statistics handles GET /expenses/trip/{tripID}/statistics
// @Summary      Trip expense statistics
// @Description  Totals, remaining budget, budget usage and the per-category breakdown.
// @Tags         expenses
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} Statistics
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /expenses/trip/{tripID}/statistics [get]
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	stats, err := h.service.Statistics(r.Context(), chi.URLParam(r, "tripID"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to compute statistics")
		return
	}

	response.JSON(w, http.StatusOK, stats)
}

// BalanceSummary handles GET /expenses/trip/{tripID}/balance
// @Summary      Acting user's balance summary
// @Description  Overall paid/owed totals plus pairwise balances with every financially linked member.
// @Tags         expenses
// @Produce      json
// @Param        tripID path string true "Trip ID"
// @Success      200 {object} BalanceSummary
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /expenses/trip/{tripID}/balance [get]
func (h *Handler) BalanceSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	summary, err := h.service.BalanceSummary(r.Context(), chi.URLParam(r, "tripID"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to compute balance summary")
		return
	}

	response.JSON(w, http.StatusOK, summary)
}

// GetByID handles GET /expenses/{expenseID}
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        expenseID path string true "Expense ID"
// @Success      200 {object} Expense
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /expenses/{expenseID} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	e, err := h.service.GetByID(r.Context(), chi.URLParam(r, "expenseID"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to get expense")
		return
	}

	response.JSON(w, http.StatusOK, e)
}

// Update handles PUT /expenses/{expenseID}
// @Summary      Update an expense
// @Description  Only the payer or trip creator may edit. A provided splits list replaces the old one; paid flags carry over by user id.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        expenseID path string true "Expense ID"
// @Param        request body UpdateExpenseRequest true "Fields to update"
// @Success      200 {object} Expense
// @Failure      400 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /expenses/{expenseID} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	e, err := h.service.Update(r.Context(), chi.URLParam(r, "expenseID"), userID, &req)
	if err != nil {
		h.writeError(w, err, "Failed to update expense")
		return
	}

	response.JSON(w, http.StatusOK, e)
}

// Delete handles DELETE /expenses/{expenseID}
// @Summary      Delete an expense
// @Description  Only the payer or trip creator may delete. The bill image is removed best-effort.
// @Tags         expenses
// @Produce      json
// @Param        expenseID path string true "Expense ID"
// @Success      200 {object} response.Message
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /expenses/{expenseID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "expenseID"), userID); err != nil {
		h.writeError(w, err, "Failed to delete expense")
		return
	}

	response.OK(w, "Expense deleted successfully")
}

// MarkSplitPaid handles PATCH /expenses/{expenseID}/splits/{userID}/pay
// @Summary      Mark a split as paid
// @Description  Only the expense's payer or the split's own user may mark it. The transition is one-way.
// @Tags         expenses
// @Produce      json
// @Param        expenseID path string true "Expense ID"
// @Param        userID path string true "Split user ID"
// @Success      200 {object} Expense
// @Failure      403 {object} response.Message
// @Failure      404 {object} response.Message
// @Router       /expenses/{expenseID}/splits/{userID}/pay [patch]
func (h *Handler) MarkSplitPaid(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	e, err := h.service.MarkSplitPaid(r.Context(),
		chi.URLParam(r, "expenseID"), chi.URLParam(r, "userID"), userID)
	if err != nil {
		h.writeError(w, err, "Failed to mark split as paid")
		return
	}

	response.JSON(w, http.StatusOK, e)
}
