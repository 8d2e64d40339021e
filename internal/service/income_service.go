package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateIncomeRequest struct {
	LocationID    string `json:"location_id"` // Defaults to the reservation's location
	AccountID     string `json:"account_id" binding:"required"`
	ReservationID string `json:"reservation_id"`
	IncomeType    string `json:"income_type" binding:"omitempty,oneof=booking service other"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=cash card bank_transfer online"`
	Amount        string `json:"amount" binding:"required"` // Decimal string
	Currency      string `json:"currency"`
	Date          string `json:"date"` // YYYY-MM-DD, defaults to today
	Note          string `json:"note"`
}

type IncomeResponse struct {
	ID            string  `json:"id"`
	LocationID    string  `json:"location_id"`
	AccountID     string  `json:"account_id"`
	ReservationID *string `json:"reservation_id"`
	IncomeType    string  `json:"income_type"`
	PaymentMethod string  `json:"payment_method"`
	Amount        string  `json:"amount"`
	Currency      string  `json:"currency"`
	Date          string  `json:"date"`
	Note          string  `json:"note"`
	CreatedAt     string  `json:"created_at"`
}

// LedgerQuery filters income and expense listings.
type LedgerQuery struct {
	LocationID string `form:"location_id"`
	AccountID  string `form:"account_id"`
	Category   string `form:"category"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

// --- Interface ---

type IncomeService interface {
	CreateIncome(ctx context.Context, sess *session.Session, req CreateIncomeRequest) (IncomeResponse, error)
	DeleteIncome(ctx context.Context, sess *session.Session, id string) error
	ListIncome(ctx context.Context, sess *session.Session, q LedgerQuery) ([]IncomeResponse, int64, error)
}

// --- Implementation ---

type incomeService struct {
	repo            repository.IncomeRepository
	accountRepo     repository.AccountRepository
	reservationRepo repository.ReservationRepository
	auditRepo       repository.AuditRepository
	txManager       repository.TransactionManager
	now             func() time.Time
}

func NewIncomeService(
	repo repository.IncomeRepository,
	accountRepo repository.AccountRepository,
	reservationRepo repository.ReservationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) IncomeService {
	return &incomeService{
		repo:            repo,
		accountRepo:     accountRepo,
		reservationRepo: reservationRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		now:             time.Now,
	}
}

// CreateIncome records a payment. A payment linked to a reservation updates the reservation's
// paid and balance amounts in the same transaction.
func (s *incomeService) CreateIncome(ctx context.Context, sess *session.Session, req CreateIncomeRequest) (IncomeResponse, error) {
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return IncomeResponse{}, err
	}
	if amount.IsZero() {
		return IncomeResponse{}, invalid("amount must be greater than 0")
	}
	accountID, err := parseID(req.AccountID, "account_id")
	if err != nil {
		return IncomeResponse{}, err
	}
	locID, err := parseOptionalID(req.LocationID, "location_id")
	if err != nil {
		return IncomeResponse{}, err
	}
	resID, err := parseOptionalID(req.ReservationID, "reservation_id")
	if err != nil {
		return IncomeResponse{}, err
	}
	date := model.DateOnly(s.now())
	if req.Date != "" {
		if date, err = parseDateField(req.Date, "date"); err != nil {
			return IncomeResponse{}, err
		}
	}

	inc := model.Income{
		TenantID:      sess.TenantID,
		AccountID:     accountID,
		ReservationID: resID,
		IncomeType:    model.IncomeTypeBooking,
		PaymentMethod: model.PaymentCash,
		Amount:        amount,
		Currency:      strings.ToUpper(req.Currency),
		Date:          date,
		Note:          req.Note,
	}
	if req.IncomeType != "" {
		inc.IncomeType = req.IncomeType
	}
	if req.PaymentMethod != "" {
		inc.PaymentMethod = req.PaymentMethod
	}
	if sess.UserID != uuid.Nil {
		uid := sess.UserID
		inc.CreatedBy = &uid
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		acc, err := s.accountRepo.FindByID(txCtx, sess.TenantID, accountID)
		if err != nil {
			return notFoundOr(err, "account")
		}
		if inc.Currency == "" {
			inc.Currency = acc.Currency
		}

		var res *model.Reservation
		if resID != nil {
			res, err = s.reservationRepo.FindByIDForUpdate(txCtx, sess.TenantID, *resID)
			if err != nil {
				return notFoundOr(err, "reservation")
			}
			if res.Status == model.StatusCancelled {
				return invalid("cannot record a payment for a cancelled reservation")
			}
			if locID == nil {
				locID = &res.LocationID
			}
		}
		if locID == nil {
			if acc.LocationID == nil {
				return invalid("location_id is required")
			}
			locID = acc.LocationID
		}
		if !sess.CanSee(*locID) {
			return fmt.Errorf("location %w", ErrForbidden)
		}
		inc.LocationID = *locID

		if err := s.repo.Create(txCtx, &inc); err != nil {
			return fmt.Errorf("failed to create income: %w", err)
		}
		if res != nil {
			if err := s.syncReservationPaid(txCtx, res); err != nil {
				return err
			}
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionCreateIncome, inc.ID.String(), inc.IncomeType,
			map[string]interface{}{
				"amount":         inc.Amount.StringFixed(2),
				"currency":       inc.Currency,
				"reservation_id": req.ReservationID,
			}))
	})
	if err != nil {
		return IncomeResponse{}, err
	}
	return toIncomeResponse(inc), nil
}

func (s *incomeService) DeleteIncome(ctx context.Context, sess *session.Session, id string) error {
	incID, err := parseID(id, "income id")
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		inc, err := s.repo.FindByID(txCtx, sess.TenantID, incID)
		if err != nil {
			return notFoundOr(err, "income")
		}
		if !sess.CanSee(inc.LocationID) {
			return fmt.Errorf("income %w", ErrNotFound)
		}
		var res *model.Reservation
		if inc.ReservationID != nil {
			if res, err = s.reservationRepo.FindByIDForUpdate(txCtx, sess.TenantID, *inc.ReservationID); err != nil {
				return notFoundOr(err, "reservation")
			}
		}
		if err := s.repo.Delete(txCtx, sess.TenantID, incID); err != nil {
			return fmt.Errorf("failed to delete income: %w", err)
		}
		if res != nil {
			if err := s.syncReservationPaid(txCtx, res); err != nil {
				return err
			}
		}
		return s.auditRepo.Log(txCtx, auditEntry(sess.TenantID, sess.UserID, model.ActionDeleteIncome, inc.ID.String(), inc.IncomeType,
			map[string]interface{}{"amount": inc.Amount.StringFixed(2)}))
	})
}

func (s *incomeService) ListIncome(ctx context.Context, sess *session.Session, q LedgerQuery) ([]IncomeResponse, int64, error) {
	f, err := toLedgerFilter(sess, q)
	if err != nil {
		return nil, 0, err
	}
	list, total, err := s.repo.List(ctx, sess.TenantID, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch income: %w", err)
	}
	out := make([]IncomeResponse, 0, len(list))
	for _, i := range list {
		out = append(out, toIncomeResponse(i))
	}
	return out, total, nil
}

// --- Helpers ---

// syncReservationPaid sets paid to the recorded payments, never below the advance.
// res must have been loaded with FindByIDForUpdate in the same transaction.
func (s *incomeService) syncReservationPaid(ctx context.Context, res *model.Reservation) error {
	paid, err := s.repo.SumForReservation(ctx, res.TenantID, res.ID)
	if err != nil {
		return fmt.Errorf("failed to sum reservation payments: %w", err)
	}
	if paid.LessThan(res.AdvanceAmount) {
		paid = res.AdvanceAmount
	}
	res.PaidAmount = paid
	res.RecalculateBalance()
	if err := s.reservationRepo.Update(ctx, res); err != nil {
		return fmt.Errorf("failed to update reservation balance: %w", err)
	}
	return nil
}

func toLedgerFilter(sess *session.Session, q LedgerQuery) (repository.LedgerFilter, error) {
	page, limit := normalizePage(q.Page, q.Limit, 20)
	f := repository.LedgerFilter{Category: q.Category, Page: page, Limit: limit}

	requested, err := parseOptionalID(q.LocationID, "location_id")
	if err != nil {
		return f, err
	}
	if f.LocationID, f.Within, err = locationScope(sess, requested); err != nil {
		return f, err
	}
	if f.AccountID, err = parseOptionalID(q.AccountID, "account_id"); err != nil {
		return f, err
	}
	if q.From != "" {
		from, err := parseDateField(q.From, "from")
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if q.To != "" {
		to, err := parseDateField(q.To, "to")
		if err != nil {
			return f, err
		}
		f.To = &to
	}
	return f, nil
}

func toIncomeResponse(i model.Income) IncomeResponse {
	resp := IncomeResponse{
		ID:            i.ID.String(),
		LocationID:    i.LocationID.String(),
		AccountID:     i.AccountID.String(),
		IncomeType:    i.IncomeType,
		PaymentMethod: i.PaymentMethod,
		Amount:        i.Amount.StringFixed(2),
		Currency:      i.Currency,
		Date:          formatDate(i.Date),
		Note:          i.Note,
		CreatedAt:     i.CreatedAt.Format(time.RFC3339),
	}
	if i.ReservationID != nil {
		id := i.ReservationID.String()
		resp.ReservationID = &id
	}
	return resp
}
