package expense

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/triptally/triptally/internal/expense/split"
	"github.com/triptally/triptally/internal/payment"
	"github.com/triptally/triptally/internal/trip"
	"github.com/triptally/triptally/internal/user"
	"github.com/triptally/triptally/pkg/upload"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrSplitNotFound   = errors.New("split not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrInvalidCategory = errors.New("invalid category")
	ErrNotAllowed      = errors.New("you don't have permission to do this")
)

// Service handles expense business logic
type Service struct {
	repo     *Repository
	trips    *trip.Service
	users    *user.Service
	payments *payment.Service
	uploads  *upload.Store
}

// NewService creates a new expense service with dependencies injected
func NewService(repo *Repository, trips *trip.Service, users *user.Service, payments *payment.Service, uploads *upload.Store) *Service {
	return &Service{repo: repo, trips: trips, users: users, payments: payments, uploads: uploads}
}

// Create validates and persists a new expense. The acting user must be a
// trip member; split percentages must total 100 within tolerance; the
// creator's own split starts paid; the currency is inherited from the
// trip's budget. The caller owns cleanup of any staged bill image when an
// error comes back.
func (s *Service) Create(ctx context.Context, tripID, userID string, req *CreateExpenseRequest, billImage *upload.StagedFile) (*Expense, error) {
	t, err := s.trips.Authorize(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	category := Category(strings.ToLower(req.Category))
	if !ValidCategory(category) {
		return nil, ErrInvalidCategory
	}

	computed, err := split.Compute(req.Amount, userID, req.Splits)
	if err != nil {
		return nil, err
	}

	expenseDate := time.Now()
	if req.ExpenseDate != nil {
		expenseDate = *req.ExpenseDate
	}

	e := &Expense{
		ID:          uuid.NewString(),
		TripID:      tripID,
		Title:       req.Title,
		Description: req.Description,
		Notes:       req.Notes,
		Amount:      req.Amount,
		Currency:    t.Currency(),
		Category:    category,
		PaidBy:      userID,
		ExpenseDate: expenseDate,
		Splits:      make([]*Split, len(computed)),
	}
	if billImage != nil {
		e.BillImageURL = billImage.FileURL
	}
	for i, c := range computed {
		e.Splits[i] = &Split{
			UserID:     c.UserID,
			Percentage: c.Percentage,
			Amount:     c.Amount,
			IsPaid:     c.IsPaid,
		}
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.populateUsers(ctx, e)
	return e, nil
}

// GetByID retrieves an expense; the acting user must belong to its trip.
func (s *Service) GetByID(ctx context.Context, expenseID, userID string) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}

	if _, err := s.trips.Authorize(ctx, e.TripID, userID); err != nil {
		return nil, err
	}

	s.populateUsers(ctx, e)
	return e, nil
}

// ListByTrip retrieves a trip's expenses, optionally filtered to one
// category, sorted by createdAt, amount or expenseDate. Unrecognized
// categories are ignored; unrecognized sort fields fall back to newest
// first.
func (s *Service) ListByTrip(ctx context.Context, tripID, userID string, category, sortBy, order string) ([]*Expense, error) {
	if _, err := s.trips.Authorize(ctx, tripID, userID); err != nil {
		return nil, err
	}

	filter := Category(category)
	if !ValidCategory(filter) {
		filter = ""
	}

	expenses, err := s.repo.ListByTrip(ctx, tripID, filter, sortBy, order)
	if err != nil {
		return nil, err
	}

	s.populateUsers(ctx, expenses...)
	return expenses, nil
}

// Statistics folds a trip's expenses into budget totals and the
// per-category breakdown.
func (s *Service) Statistics(ctx context.Context, tripID, userID string) (*Statistics, error) {
	t, err := s.trips.Authorize(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.ListByTrip(ctx, tripID, "", "", "")
	if err != nil {
		return nil, err
	}

	return ComputeStatistics(expenses, t.Budget(), t.Currency()), nil
}

// BalanceSummary computes the acting user's overall and pairwise balances
// on a trip, decorated with counterparty details from the user directory.
func (s *Service) BalanceSummary(ctx context.Context, tripID, userID string) (*BalanceSummary, error) {
	t, err := s.trips.Authorize(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.ListByTrip(ctx, tripID, "", "", "")
	if err != nil {
		return nil, err
	}

	summary := SummarizeBalances(userID, expenses)
	summary.Currency = t.Currency()

	ids := make([]string, 0, len(summary.BalancesWith))
	for _, p := range summary.BalancesWith {
		ids = append(ids, p.UserID)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	summary.decorate(users)

	// Counterparty payment details ride along so the client can settle up
	// without extra requests. Lookup failures leave the field empty.
	for _, p := range summary.BalancesWith {
		if settings, err := s.payments.Get(ctx, p.UserID); err == nil {
			p.PaymentSettings = settings
		}
	}

	return summary, nil
}

// MarkSplitPaid flips one split to paid. Only the expense's payer or the
// split's own user may do it; the transition is one-way, repeat calls just
// refresh the payment timestamp.
func (s *Service) MarkSplitPaid(ctx context.Context, expenseID, splitUserID, actingUserID string) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}

	target := e.FindSplit(splitUserID)
	if target == nil {
		return nil, ErrSplitNotFound
	}

	isPayer := e.PaidBy == actingUserID
	isSplitUser := splitUserID == actingUserID
	if !isPayer && !isSplitUser {
		return nil, ErrNotAllowed
	}

	now := time.Now()
	if err := s.repo.MarkSplitPaid(ctx, expenseID, splitUserID, now); err != nil {
		return nil, err
	}
	target.MarkPaid(now)

	s.populateUsers(ctx, e)
	return e, nil
}

// Update modifies an expense's core fields. Only the payer or the trip's
// creator may edit. A provided split list replaces the old one wholesale:
// paid flags carry over for users kept from the previous list, everyone
// else starts unpaid — including the acting user, whose split is only
// auto-marked at creation time.
func (s *Service) Update(ctx context.Context, expenseID, actingUserID string, req *UpdateExpenseRequest) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}

	t, err := s.trips.GetByID(ctx, e.TripID)
	if err != nil {
		return nil, err
	}
	if e.PaidBy != actingUserID && t.CreatedBy != actingUserID {
		return nil, ErrNotAllowed
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrTitleRequired
		}
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Notes != nil {
		e.Notes = *req.Notes
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return nil, ErrInvalidAmount
		}
		e.Amount = *req.Amount
	}
	if req.Category != nil {
		category := Category(strings.ToLower(*req.Category))
		if !ValidCategory(category) {
			return nil, ErrInvalidCategory
		}
		e.Category = category
	}
	if req.ExpenseDate != nil {
		e.ExpenseDate = *req.ExpenseDate
	}

	// Replacing splits or changing the amount both rebuild the splits from
	// percentages so split amounts keep summing to the expense total.
	if req.Splits != nil {
		if err := split.Validate(req.Splits); err != nil {
			return nil, err
		}
		e.Splits = rebuildSplits(e.Amount, req.Splits, e.Splits)
	} else if req.Amount != nil {
		inputs := make([]split.Input, len(e.Splits))
		for i, s := range e.Splits {
			inputs[i] = split.Input{UserID: s.UserID, Percentage: s.Percentage}
		}
		e.Splits = rebuildSplits(e.Amount, inputs, e.Splits)
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.populateUsers(ctx, e)
	return e, nil
}

// rebuildSplits derives fresh split rows from percentages, carrying over
// isPaid/paidAt from the previous split with the same user id. Rounding
// residue lands on the last split, mirroring creation.
func rebuildSplits(amount float64, inputs []split.Input, existing []*Split) []*Split {
	previous := make(map[string]*Split, len(existing))
	for _, s := range existing {
		previous[s.UserID] = s
	}

	splits := make([]*Split, len(inputs))
	var distributed float64
	for i, in := range inputs {
		share := split.Round2(amount * in.Percentage / 100)
		distributed += share
		ns := &Split{
			UserID:     in.UserID,
			Percentage: in.Percentage,
			Amount:     share,
		}
		if old, ok := previous[in.UserID]; ok {
			ns.IsPaid = old.IsPaid
			ns.PaidAt = old.PaidAt
		}
		splits[i] = ns
	}

	if residue := split.Round2(split.Round2(amount) - distributed); residue != 0 {
		last := splits[len(splits)-1]
		last.Amount = split.Round2(last.Amount + residue)
	}

	return splits
}

// Delete removes an expense and, best-effort, its bill image. Only the
// payer or the trip's creator may delete.
func (s *Service) Delete(ctx context.Context, expenseID, actingUserID string) error {
	e, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrExpenseNotFound
	}

	t, err := s.trips.GetByID(ctx, e.TripID)
	if err != nil {
		return err
	}
	if e.PaidBy != actingUserID && t.CreatedBy != actingUserID {
		return ErrNotAllowed
	}

	if err := s.repo.Delete(ctx, expenseID); err != nil {
		return err
	}

	s.uploads.RemoveByURL(e.BillImageURL)
	return nil
}

// populateUsers attaches directory records to payers and split holders.
// Lookup failures leave the records bare rather than failing the request.
func (s *Service) populateUsers(ctx context.Context, expenses ...*Expense) {
	idSet := make(map[string]bool)
	for _, e := range expenses {
		idSet[e.PaidBy] = true
		for _, sp := range e.Splits {
			idSet[sp.UserID] = true
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return
	}

	for _, e := range expenses {
		e.PaidByUser = users[e.PaidBy]
		for _, sp := range e.Splits {
			sp.User = users[sp.UserID]
		}
	}
}
