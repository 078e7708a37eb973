// Package services orchestrates domain operations across the store, the
// scan queue and the vision analyzer.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"viaggi/internal/core"
	"viaggi/internal/store"
	"viaggi/internal/vision"
)

// ErrNoReceipt is returned when a scan is requested for an expense that
// has no receipt image attached.
var ErrNoReceipt = errors.New("expense has no receipt")

// ScanPublisher enqueues receipt scan jobs for asynchronous processing.
type ScanPublisher interface {
	PublishReceiptScan(ctx context.Context, expenseID string) error
}

// ReceiptAnalyzer extracts structured data from a receipt image.
type ReceiptAnalyzer interface {
	Analyze(ctx context.Context, image []byte) (vision.Extraction, error)
}

// ExpenseService coordinates expense writes with receipt scanning. When a
// publisher is configured scans run asynchronously on the worker; without
// one they run inline, best effort.
type ExpenseService struct {
	store     store.Store
	publisher ScanPublisher
	analyzer  ReceiptAnalyzer
}

func NewExpenseService(s store.Store, publisher ScanPublisher, analyzer ReceiptAnalyzer) *ExpenseService {
	return &ExpenseService{
		store:     s,
		publisher: publisher,
		analyzer:  analyzer,
	}
}

// CreateExpense validates, derives the base amount and saves a new expense.
// A receipt on an unverified expense triggers a scan.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e = e.WithDerived()
	id, err := s.store.UpsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id

	if len(e.Receipt) > 0 && !e.Verified {
		s.requestScan(ctx, e)
	}

	return e, nil
}

// UpdateExpense recomputes derived fields and saves an existing expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == "" {
		return core.Expense{}, store.ErrNotFound
	}
	if _, err := s.store.GetExpense(ctx, e.ID); err != nil {
		return core.Expense{}, err
	}

	e = e.WithDerived()
	if _, err := s.store.UpsertExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	if len(e.Receipt) > 0 && !e.Verified {
		s.requestScan(ctx, e)
	}

	return e, nil
}

// DeleteExpense removes an expense. Deleting a missing expense returns
// store.ErrNotFound.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Deleted expense", "expense_id", id)
	return nil
}

// ScanExpense runs receipt analysis for the expense right now and fills in
// any fields the traveler left empty. Used by the worker and as the inline
// fallback when no queue is configured.
func (s *ExpenseService) ScanExpense(ctx context.Context, expenseID string) (core.Expense, error) {
	if s.analyzer == nil {
		return core.Expense{}, errors.New("no receipt analyzer configured")
	}

	e, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %s: %w", expenseID, err)
	}
	if len(e.Receipt) == 0 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", expenseID, ErrNoReceipt)
	}

	extraction, err := s.analyzer.Analyze(ctx, e.Receipt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("analyze receipt: %w", err)
	}

	e = applyExtraction(e, extraction)
	e.Verified = true
	e = e.WithDerived()

	if _, err := s.store.UpsertExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save scanned expense: %w", err)
	}

	slog.InfoContext(ctx, "Verified expense from receipt",
		"expense_id", e.ID,
		"merchant", extraction.Merchant,
		"amount", extraction.Amount)

	return e, nil
}

// AttachReceipt stores a receipt image on the expense and requests a scan.
// The second return reports whether the scan already ran: true means the
// returned expense is verified, false means the scan is queued (or no
// analyzer is configured).
func (s *ExpenseService) AttachReceipt(ctx context.Context, id string, image []byte) (core.Expense, bool, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, false, err
	}

	e.Receipt = image
	e.Verified = false
	if _, err := s.store.UpsertExpense(ctx, e); err != nil {
		return core.Expense{}, false, fmt.Errorf("save receipt: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReceiptScan(ctx, e.ID); err != nil {
			return core.Expense{}, false, fmt.Errorf("queue receipt scan: %w", err)
		}
		return e, false, nil
	}
	if s.analyzer == nil {
		return e, false, nil
	}

	scanned, err := s.ScanExpense(ctx, e.ID)
	if err != nil {
		return core.Expense{}, false, err
	}
	return scanned, true, nil
}

// requestScan enqueues a scan or, without a queue, runs it inline. Failures
// never fail the originating write.
func (s *ExpenseService) requestScan(ctx context.Context, e core.Expense) {
	if s.publisher != nil {
		if err := s.publisher.PublishReceiptScan(ctx, e.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish scan message",
				"expense_id", e.ID, "error", err)
		}
		return
	}

	if s.analyzer == nil {
		return
	}
	if _, err := s.ScanExpense(ctx, e.ID); err != nil {
		slog.ErrorContext(ctx, "Inline receipt scan failed",
			"expense_id", e.ID, "error", err)
	}
}

// applyExtraction fills only the fields the traveler left empty. Manually
// entered values always win over the scan.
func applyExtraction(e core.Expense, ex vision.Extraction) core.Expense {
	if e.Merchant == "" && ex.Merchant != "" {
		e.Merchant = ex.Merchant
	}
	if e.AmountOriginal.IsZero() && !ex.Amount.IsZero() {
		e.AmountOriginal = ex.Amount
	}
	if e.Currency == "" && ex.Currency != "" {
		e.Currency = ex.Currency
	}
	if e.Category == "" || e.Category == core.CategoryOther {
		if ex.Category != "" {
			e.Category = ex.Category
		}
	}
	if e.Date.IsZero() && !ex.Date.IsZero() {
		e.Date = ex.Date
	}
	return e
}
