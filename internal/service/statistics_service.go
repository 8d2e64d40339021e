package service

import (
	"context"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/repository"
	"stayhub/internal/session"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// --- DTOs ---

type DashboardQuery struct {
	From       string `form:"from"` // YYYY-MM-DD, defaults to the first day of the current month
	To         string `form:"to"`   // YYYY-MM-DD exclusive, defaults to the first day of next month
	LocationID string `form:"location_id"`
}

type DashboardResponse struct {
	From                 string                `json:"from"`
	To                   string                `json:"to"`
	TotalIncome          string                `json:"total_income"`
	TotalExpense         string                `json:"total_expense"`
	Profit               string                `json:"profit"`
	Reservations         int64                 `json:"reservations"`
	ActiveRooms          int64                 `json:"active_rooms"`
	OccupiedNights       int64                 `json:"occupied_nights"`
	AvailableNights      int64                 `json:"available_nights"`
	OccupancyRate        string                `json:"occupancy_rate"` // percent, 2 decimals
	ArrivalsToday        int64                 `json:"arrivals_today"`
	DeparturesToday      int64                 `json:"departures_today"`
	ExpensesByCategory   []model.CategoryTotal `json:"expenses_by_category"`
	ReservationsBySource []model.SourceCount   `json:"reservations_by_source"`
}

// --- Interface ---

type StatisticsService interface {
	GetDashboard(ctx context.Context, sess *session.Session, q DashboardQuery) (DashboardResponse, error)
}

type statisticsService struct {
	repo     repository.StatisticsRepository
	roomRepo repository.RoomRepository
	now      func() time.Time
}

func NewStatisticsService(repo repository.StatisticsRepository, roomRepo repository.RoomRepository) StatisticsService {
	return &statisticsService{repo: repo, roomRepo: roomRepo, now: time.Now}
}

// --- Implementation ---

// GetDashboard aggregates money, reservation and occupancy figures over [from, to).
// The independent queries run concurrently.
func (s *statisticsService) GetDashboard(ctx context.Context, sess *session.Session, q DashboardQuery) (DashboardResponse, error) {
	f, err := s.dashboardFilter(sess, q)
	if err != nil {
		return DashboardResponse{}, err
	}
	today := model.DateOnly(s.now())

	var (
		income, expense       decimal.Decimal
		occupied, activeRooms int64
		arrivals, departures  int64
		reservations          int64
		byCategory            []model.CategoryTotal
		bySource              []model.SourceCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { income, err = s.repo.SumIncome(gctx, f); return })
	g.Go(func() (err error) { expense, err = s.repo.SumExpense(gctx, f); return })
	g.Go(func() (err error) { reservations, err = s.repo.CountReservations(gctx, f); return })
	g.Go(func() (err error) { occupied, err = s.repo.OccupiedNights(gctx, f); return })
	g.Go(func() (err error) { activeRooms, err = s.roomRepo.CountActive(gctx, f.TenantID, f.LocationID, f.Within); return })
	g.Go(func() (err error) { arrivals, err = s.repo.CountArrivals(gctx, f, today); return })
	g.Go(func() (err error) { departures, err = s.repo.CountDepartures(gctx, f, today); return })
	g.Go(func() (err error) { byCategory, err = s.repo.ExpensesByCategory(gctx, f); return })
	g.Go(func() (err error) { bySource, err = s.repo.ReservationsBySource(gctx, f); return })
	if err := g.Wait(); err != nil {
		return DashboardResponse{}, err
	}

	nights := int64(model.Nights(f.From, f.To))
	available := activeRooms * nights

	resp := DashboardResponse{
		From:                 formatDate(f.From),
		To:                   formatDate(f.To),
		TotalIncome:          income.StringFixed(2),
		TotalExpense:         expense.StringFixed(2),
		Profit:               income.Sub(expense).StringFixed(2),
		Reservations:         reservations,
		ActiveRooms:          activeRooms,
		OccupiedNights:       occupied,
		AvailableNights:      available,
		OccupancyRate:        OccupancyRate(occupied, available).StringFixed(2),
		ArrivalsToday:        arrivals,
		DeparturesToday:      departures,
		ExpensesByCategory:   byCategory,
		ReservationsBySource: bySource,
	}
	if resp.ExpensesByCategory == nil {
		resp.ExpensesByCategory = []model.CategoryTotal{}
	}
	if resp.ReservationsBySource == nil {
		resp.ReservationsBySource = []model.SourceCount{}
	}
	return resp, nil
}

// OccupancyRate is occupied/available as a percentage, capped at 100.
func OccupancyRate(occupied, available int64) decimal.Decimal {
	if available <= 0 {
		return decimal.Zero
	}
	rate := decimal.NewFromInt(occupied).Mul(decimal.NewFromInt(100)).DivRound(decimal.NewFromInt(available), 2)
	if rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.NewFromInt(100)
	}
	return rate
}

// --- Helpers ---

func (s *statisticsService) dashboardFilter(sess *session.Session, q DashboardQuery) (repository.DashboardFilter, error) {
	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var err error
	if q.From != "" {
		if from, err = parseDateField(q.From, "from"); err != nil {
			return repository.DashboardFilter{}, err
		}
	}
	if q.To != "" {
		if to, err = parseDateField(q.To, "to"); err != nil {
			return repository.DashboardFilter{}, err
		}
	} else if q.From != "" {
		to = from.AddDate(0, 1, 0)
	}
	if !to.After(from) {
		return repository.DashboardFilter{}, invalid("to must be after from")
	}
	if model.Nights(from, to) > MaxStayNights+1 {
		return repository.DashboardFilter{}, invalid("date range must not exceed %d days", MaxStayNights+1)
	}

	requested, err := parseOptionalID(q.LocationID, "location_id")
	if err != nil {
		return repository.DashboardFilter{}, err
	}
	locID, within, err := locationScope(sess, requested)
	if err != nil {
		return repository.DashboardFilter{}, err
	}
	return repository.DashboardFilter{TenantID: sess.TenantID, LocationID: locID, Within: within, From: from, To: to}, nil
}
