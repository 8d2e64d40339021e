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

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type UpsertRateRequest struct {
	FromCurrency  string `json:"from_currency" binding:"required,len=3"`
	ToCurrency    string `json:"to_currency" binding:"required,len=3"`
	Rate          string `json:"rate" binding:"required"` // Decimal string
	EffectiveDate string `json:"effective_date"`          // YYYY-MM-DD, defaults to today
}

type RateResponse struct {
	ID            string `json:"id"`
	FromCurrency  string `json:"from_currency"`
	ToCurrency    string `json:"to_currency"`
	Rate          string `json:"rate"`
	EffectiveDate string `json:"effective_date"`
}

type ConvertResponse struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Rate   string `json:"rate"`
	Result string `json:"result"`
	Method string `json:"method"` // identity, direct, inverse or via:<CUR>
}

// --- Interface ---

type CurrencyService interface {
	UpsertRate(ctx context.Context, sess *session.Session, req UpsertRateRequest) (RateResponse, error)
	ListRates(ctx context.Context, sess *session.Session) ([]RateResponse, error)
	Convert(ctx context.Context, sess *session.Session, amount, from, to, date string) (ConvertResponse, error)
}

// --- Implementation ---

type currencyService struct {
	repo         repository.CurrencyRateRepository
	baseCurrency string
	now          func() time.Time
}

func NewCurrencyService(repo repository.CurrencyRateRepository, baseCurrency string) CurrencyService {
	if baseCurrency == "" {
		baseCurrency = "USD"
	}
	return &currencyService{repo: repo, baseCurrency: strings.ToUpper(baseCurrency), now: time.Now}
}

func (s *currencyService) UpsertRate(ctx context.Context, sess *session.Session, req UpsertRateRequest) (RateResponse, error) {
	rate, err := parseAmount(req.Rate, "rate")
	if err != nil {
		return RateResponse{}, err
	}
	if rate.IsZero() {
		return RateResponse{}, invalid("rate must be greater than 0")
	}
	from, to := strings.ToUpper(req.FromCurrency), strings.ToUpper(req.ToCurrency)
	if from == to {
		return RateResponse{}, invalid("from_currency and to_currency must differ")
	}
	date := model.DateOnly(s.now())
	if req.EffectiveDate != "" {
		if date, err = parseDateField(req.EffectiveDate, "effective_date"); err != nil {
			return RateResponse{}, err
		}
	}

	cr := model.CurrencyRate{
		TenantID:      sess.TenantID,
		FromCurrency:  from,
		ToCurrency:    to,
		Rate:          rate,
		EffectiveDate: date,
	}
	if err := s.repo.Upsert(ctx, &cr); err != nil {
		return RateResponse{}, fmt.Errorf("failed to save currency rate: %w", err)
	}
	return toRateResponse(cr), nil
}

func (s *currencyService) ListRates(ctx context.Context, sess *session.Session) ([]RateResponse, error) {
	list, err := s.repo.List(ctx, sess.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch currency rates: %w", err)
	}
	out := make([]RateResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toRateResponse(r))
	}
	return out, nil
}

// Convert uses the latest rate effective on date: the direct pair, the inverse pair,
// or a cross rate through the base currency, in that order.
func (s *currencyService) Convert(ctx context.Context, sess *session.Session, amountStr, from, to, dateStr string) (ConvertResponse, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return ConvertResponse{}, invalid("invalid amount")
	}
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if len(from) != 3 || len(to) != 3 {
		return ConvertResponse{}, invalid("currencies must be 3-letter codes")
	}
	asOf := model.DateOnly(s.now())
	if dateStr != "" {
		if asOf, err = parseDateField(dateStr, "date"); err != nil {
			return ConvertResponse{}, err
		}
	}

	rate, method, err := s.rate(ctx, sess, from, to, asOf)
	if err != nil {
		return ConvertResponse{}, err
	}
	return ConvertResponse{
		From:   from,
		To:     to,
		Amount: amount.String(),
		Rate:   rate.String(),
		Result: amount.Mul(rate).Round(2).StringFixed(2),
		Method: method,
	}, nil
}

// --- Helpers ---

func (s *currencyService) rate(ctx context.Context, sess *session.Session, from, to string, asOf time.Time) (decimal.Decimal, string, error) {
	if from == to {
		return decimal.NewFromInt(1), "identity", nil
	}
	if r, ok, err := s.pairRate(ctx, sess, from, to, asOf); err != nil || ok {
		return r, "direct", err
	}
	if r, ok, err := s.pairRate(ctx, sess, to, from, asOf); err != nil || ok {
		if err != nil {
			return r, "", err
		}
		return decimal.NewFromInt(1).DivRound(r, 6), "inverse", nil
	}

	if from != s.baseCurrency && to != s.baseCurrency {
		first, _, err1 := s.rate(ctx, sess, from, s.baseCurrency, asOf)
		second, _, err2 := s.rate(ctx, sess, s.baseCurrency, to, asOf)
		if err1 == nil && err2 == nil {
			return first.Mul(second).Round(6), "via:" + s.baseCurrency, nil
		}
		if err := errors.Join(err1, err2); err != nil && !errors.Is(err, ErrNotFound) {
			return decimal.Zero, "", err
		}
	}
	return decimal.Zero, "", fmt.Errorf("currency rate %s->%s %w", from, to, ErrNotFound)
}

func (s *currencyService) pairRate(ctx context.Context, sess *session.Session, from, to string, asOf time.Time) (decimal.Decimal, bool, error) {
	r, err := s.repo.FindLatest(ctx, sess.TenantID, from, to, asOf)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to fetch currency rate: %w", err)
	}
	return r.Rate, true, nil
}

func toRateResponse(r model.CurrencyRate) RateResponse {
	return RateResponse{
		ID:            r.ID.String(),
		FromCurrency:  r.FromCurrency,
		ToCurrency:    r.ToCurrency,
		Rate:          r.Rate.String(),
		EffectiveDate: formatDate(r.EffectiveDate),
	}
}
