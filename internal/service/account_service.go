package service

import (
	"context"
	"fmt"
	"strings"

	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"
)

// --- DTOs ---

type AccountRequest struct {
	LocationID     string `json:"location_id"` // Empty for a tenant-wide account
	Name           string `json:"name" binding:"required"`
	AccountType    string `json:"account_type" binding:"omitempty,oneof=cash bank card online"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initial_balance"` // Decimal string
	IsActive       *bool  `json:"is_active"`
}

type AccountResponse struct {
	ID             string  `json:"id"`
	LocationID     *string `json:"location_id"`
	Name           string  `json:"name"`
	AccountType    string  `json:"account_type"`
	Currency       string  `json:"currency"`
	InitialBalance string  `json:"initial_balance"`
	TotalIncome    string  `json:"total_income"`
	TotalExpense   string  `json:"total_expense"`
	Balance        string  `json:"balance"`
	IsActive       bool    `json:"is_active"`
}

// --- Interface ---

type AccountService interface {
	CreateAccount(ctx context.Context, sess *session.Session, req AccountRequest) (AccountResponse, error)
	UpdateAccount(ctx context.Context, sess *session.Session, id string, req AccountRequest) (AccountResponse, error)
	GetAccount(ctx context.Context, sess *session.Session, id string) (AccountResponse, error)
	ListAccounts(ctx context.Context, sess *session.Session, locationID string) ([]AccountResponse, error)
}

// --- Implementation ---

type accountService struct {
	repo      repository.AccountRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewAccountService(repo repository.AccountRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) AccountService {
	return &accountService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func (s *accountService) CreateAccount(ctx context.Context, sess *session.Session, req AccountRequest) (AccountResponse, error) {
	acc := model.Account{
		TenantID:    sess.TenantID,
		AccountType: model.AccountTypeCash,
		Currency:    "USD",
		IsActive:    true,
	}
	if err := applyAccountRequest(&acc, req); err != nil {
		return AccountResponse{}, err
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &acc); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionCreateAccount, acc.ID.String(), acc.Name, req))
	})
	if err != nil {
		return AccountResponse{}, err
	}
	return s.withBalance(ctx, acc)
}

func (s *accountService) UpdateAccount(ctx context.Context, sess *session.Session, id string, req AccountRequest) (AccountResponse, error) {
	accID, err := parseID(id, "account id")
	if err != nil {
		return AccountResponse{}, err
	}

	var acc *model.Account
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		acc, err = s.repo.FindByID(txCtx, sess.TenantID, accID)
		if err != nil {
			return notFoundOr(err, "account")
		}
		if err := applyAccountRequest(acc, req); err != nil {
			return err
		}
		if err := s.repo.Update(txCtx, acc); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionUpdateAccount, acc.ID.String(), acc.Name, req))
	})
	if err != nil {
		return AccountResponse{}, err
	}
	return s.withBalance(ctx, *acc)
}

func (s *accountService) GetAccount(ctx context.Context, sess *session.Session, id string) (AccountResponse, error) {
	accID, err := parseID(id, "account id")
	if err != nil {
		return AccountResponse{}, err
	}
	acc, err := s.repo.FindByID(ctx, sess.TenantID, accID)
	if err != nil {
		return AccountResponse{}, notFoundOr(err, "account")
	}
	if acc.LocationID != nil && !sess.CanSee(*acc.LocationID) {
		return AccountResponse{}, fmt.Errorf("account %w", ErrNotFound)
	}
	return s.withBalance(ctx, *acc)
}

func (s *accountService) ListAccounts(ctx context.Context, sess *session.Session, locationID string) ([]AccountResponse, error) {
	requested, err := parseOptionalID(locationID, "location_id")
	if err != nil {
		return nil, err
	}
	locID, _, err := locationScope(sess, requested)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, sess.TenantID, locID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	out := make([]AccountResponse, 0, len(list))
	for _, a := range list {
		if a.LocationID != nil && !sess.CanSee(*a.LocationID) {
			continue
		}
		resp, err := s.withBalance(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, nil
}

// --- Helpers ---

// withBalance computes initial + income - expense for the account.
func (s *accountService) withBalance(ctx context.Context, a model.Account) (AccountResponse, error) {
	income, expense, err := s.repo.Movements(ctx, a.TenantID, a.ID)
	if err != nil {
		return AccountResponse{}, fmt.Errorf("failed to compute account balance: %w", err)
	}

	resp := AccountResponse{
		ID:             a.ID.String(),
		Name:           a.Name,
		AccountType:    a.AccountType,
		Currency:       a.Currency,
		InitialBalance: a.InitialBalance.StringFixed(2),
		TotalIncome:    income.StringFixed(2),
		TotalExpense:   expense.StringFixed(2),
		Balance:        a.InitialBalance.Add(income).Sub(expense).StringFixed(2),
		IsActive:       a.IsActive,
	}
	if a.LocationID != nil {
		id := a.LocationID.String()
		resp.LocationID = &id
	}
	return resp, nil
}

func applyAccountRequest(acc *model.Account, req AccountRequest) error {
	if name := strings.TrimSpace(req.Name); name != "" {
		acc.Name = name
	}
	if acc.Name == "" {
		return invalid("name is required")
	}
	locID, err := parseOptionalID(req.LocationID, "location_id")
	if err != nil {
		return err
	}
	acc.LocationID = locID
	if req.AccountType != "" {
		acc.AccountType = req.AccountType
	}
	if req.Currency != "" {
		acc.Currency = strings.ToUpper(req.Currency)
	}
	if req.InitialBalance != "" {
		balance, err := parseAmount(req.InitialBalance, "initial_balance")
		if err != nil {
			return err
		}
		acc.InitialBalance = balance
	}
	if req.IsActive != nil {
		acc.IsActive = *req.IsActive
	}
	return nil
}
