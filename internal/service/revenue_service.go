package service

import (
	"context"
	"fmt"
	"time"

	"stayhub/internal/repository"
	"stayhub/internal/session"
)

// --- DTOs ---

type RevenueDataPoint struct {
	Period       string `json:"period"`
	TotalIncome  string `json:"total_income"`
	TotalExpense string `json:"total_expense"`
	Profit       string `json:"profit"`
}

type RevenueFilter struct {
	GroupBy    string `form:"group_by"` // day, week, month
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"` // exclusive
	LocationID string `form:"location_id"`
}

// --- Interface ---

type RevenueService interface {
	GetRevenueStatistics(ctx context.Context, sess *session.Session, filter RevenueFilter) ([]RevenueDataPoint, error)
}

type revenueService struct {
	repo repository.RevenueRepository
	now  func() time.Time
}

func NewRevenueService(repo repository.RevenueRepository) RevenueService {
	return &revenueService{repo: repo, now: time.Now}
}

// --- Implementation ---

func (s *revenueService) GetRevenueStatistics(ctx context.Context, sess *session.Session, filter RevenueFilter) ([]RevenueDataPoint, error) {
	groupBy := filter.GroupBy
	switch groupBy {
	case "day", "week", "month":
	case "":
		groupBy = "month"
	default:
		return nil, invalid("group_by must be day, week or month")
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	var err error
	if filter.StartDate != "" {
		if start, err = parseDateField(filter.StartDate, "start_date"); err != nil {
			return nil, err
		}
	}
	if filter.EndDate != "" {
		if end, err = parseDateField(filter.EndDate, "end_date"); err != nil {
			return nil, err
		}
	}
	if !end.After(start) {
		return nil, invalid("end_date must be after start_date")
	}

	requested, err := parseOptionalID(filter.LocationID, "location_id")
	if err != nil {
		return nil, err
	}
	locID, within, err := locationScope(sess, requested)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetRevenueStatistics(ctx, sess.TenantID, locID, within, groupBy, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch revenue statistics: %w", err)
	}

	result := make([]RevenueDataPoint, 0, len(rows))
	for _, r := range rows {
		result = append(result, RevenueDataPoint{
			Period:       r.Period,
			TotalIncome:  r.TotalIncome.StringFixed(2),
			TotalExpense: r.TotalExpense.StringFixed(2),
			Profit:       r.TotalIncome.Sub(r.TotalExpense).StringFixed(2),
		})
	}
	return result, nil
}
