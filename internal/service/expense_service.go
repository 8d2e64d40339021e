package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateExpenseRequest struct {
	LocationID  string `json:"location_id"` // Defaults to the account's location
	AccountID   string `json:"account_id" binding:"required"`
	Category    string `json:"category" binding:"omitempty,oneof=utilities salaries maintenance supplies commission marketing taxes other"`
	Amount      string `json:"amount" binding:"required"` // Decimal string
	Currency    string `json:"currency"`
	Date        string `json:"date"` // YYYY-MM-DD, defaults to today
	Description string `json:"description"`
}

type ExpenseResponse struct {
	ID          string `json:"id"`
	LocationID  string `json:"location_id"`
	AccountID   string `json:"account_id"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Date        string `json:"date"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// --- Interface ---

type ExpenseService interface {
	CreateExpense(ctx context.Context, sess *session.Session, req CreateExpenseRequest) (ExpenseResponse, error)
	DeleteExpense(ctx context.Context, sess *session.Session, id string) error
	GetExpenses(ctx context.Context, sess *session.Session, q LedgerQuery) ([]ExpenseResponse, int64, error)
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	now         func() time.Time
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		now:         time.Now,
	}
}

// --- Implementation ---

func (s *expenseService) CreateExpense(ctx context.Context, sess *session.Session, req CreateExpenseRequest) (ExpenseResponse, error) {
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return ExpenseResponse{}, err
	}
	if amount.IsZero() {
		return ExpenseResponse{}, invalid("amount must be greater than 0")
	}
	accountID, err := parseID(req.AccountID, "account_id")
	if err != nil {
		return ExpenseResponse{}, err
	}
	locID, err := parseOptionalID(req.LocationID, "location_id")
	if err != nil {
		return ExpenseResponse{}, err
	}
	category := req.Category
	if category == "" {
		category = model.ExpenseCategoryOther
	}
	if !model.ValidExpenseCategory(category) {
		return ExpenseResponse{}, invalid("invalid category %q", category)
	}
	date := model.DateOnly(s.now())
	if req.Date != "" {
		if date, err = parseDateField(req.Date, "date"); err != nil {
			return ExpenseResponse{}, err
		}
	}

	expense := model.Expense{
		TenantID:    sess.TenantID,
		AccountID:   accountID,
		Category:    category,
		Amount:      amount,
		Currency:    strings.ToUpper(req.Currency),
		Date:        date,
		Description: req.Description,
	}
	if sess.UserID != uuid.Nil {
		uid := sess.UserID
		expense.CreatedBy = &uid
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		acc, err := s.accountRepo.FindByID(txCtx, sess.TenantID, accountID)
		if err != nil {
			return notFoundOr(err, "account")
		}
		if expense.Currency == "" {
			expense.Currency = acc.Currency
		}
		switch {
		case locID != nil:
			expense.LocationID = *locID
		case acc.LocationID != nil:
			expense.LocationID = *acc.LocationID
		case sess.LocationID != nil:
			expense.LocationID = *sess.LocationID
		default:
			return invalid("location_id is required")
		}
		if !sess.CanSee(expense.LocationID) {
			return fmt.Errorf("location %w", ErrForbidden)
		}

		if err := s.expenseRepo.Create(txCtx, &expense); err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionCreateExpense, expense.ID.String(), expense.Category,
			map[string]interface{}{
				"amount":      expense.Amount.StringFixed(2),
				"currency":    expense.Currency,
				"description": expense.Description,
			}))
	})
	if err != nil {
		return ExpenseResponse{}, err
	}

	return toExpenseResponse(expense), nil
}

func (s *expenseService) DeleteExpense(ctx context.Context, sess *session.Session, id string) error {
	expID, err := parseID(id, "expense id")
	if err != nil {
		return err
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		expense, err := s.expenseRepo.FindByID(txCtx, sess.TenantID, expID)
		if err != nil {
			return notFoundOr(err, "expense")
		}
		if !sess.CanSee(expense.LocationID) {
			return fmt.Errorf("expense %w", ErrNotFound)
		}
		if err := s.expenseRepo.Delete(txCtx, sess.TenantID, expID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("expense %w", ErrNotFound)
			}
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionDeleteExpense, expense.ID.String(), expense.Category,
			map[string]interface{}{"amount": expense.Amount.StringFixed(2)}))
	})
}

func (s *expenseService) GetExpenses(ctx context.Context, sess *session.Session, q LedgerQuery) ([]ExpenseResponse, int64, error) {
	if q.Category != "" && !model.ValidExpenseCategory(q.Category) {
		return nil, 0, invalid("invalid category %q", q.Category)
	}
	f, err := toLedgerFilter(sess, q)
	if err != nil {
		return nil, 0, err
	}

	expenses, total, err := s.expenseRepo.List(ctx, sess.TenantID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch expenses: %w", err)
	}

	result := make([]ExpenseResponse, 0, len(expenses))
	for _, e := range expenses {
		result = append(result, toExpenseResponse(e))
	}
	return result, total, nil
}

// --- Helpers ---

func toExpenseResponse(e model.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID.String(),
		LocationID:  e.LocationID.String(),
		AccountID:   e.AccountID.String(),
		Category:    e.Category,
		Amount:      e.Amount.StringFixed(2),
		Currency:    e.Currency,
		Date:        formatDate(e.Date),
		Description: e.Description,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}
