package service

import (
	"context"
	"fmt"
	"io"

	"stayhub/internal/report"
	"stayhub/internal/session"
)

// exportPageSize bounds each page fetched while streaming an export.
const exportPageSize = 100

// maxExportRows caps an export so a single request cannot dump an unbounded table.
const maxExportRows = 50000

type ReportService interface {
	ExportReservations(ctx context.Context, sess *session.Session, q ListReservationsQuery, w io.Writer) error
	ExportFinance(ctx context.Context, sess *session.Session, filter RevenueFilter, w io.Writer) error
}

type reportService struct {
	reservations ReservationService
	income       IncomeService
	expenses     ExpenseService
	revenue      RevenueService
}

func NewReportService(reservations ReservationService, income IncomeService, expenses ExpenseService, revenue RevenueService) ReportService {
	return &reportService{reservations: reservations, income: income, expenses: expenses, revenue: revenue}
}

var reservationColumns = []string{
	"Reservation No", "Status", "Room", "Check-in", "Check-out", "Nights", "Guest", "Email", "Phone",
	"Source", "Adults", "Children", "Rate", "Total", "Paid", "Balance", "Currency",
}

func (s *reportService) ExportReservations(ctx context.Context, sess *session.Session, q ListReservationsQuery, w io.Writer) error {
	wb := report.NewWorkbook()
	defer wb.Close()

	if err := wb.AddSheet("Reservations"); err != nil {
		return err
	}
	if err := wb.WriteHeader(reservationColumns); err != nil {
		return err
	}

	q.Limit = exportPageSize
	for page := 1; ; page++ {
		q.Page = page
		list, total, err := s.reservations.ListReservations(ctx, sess, q)
		if err != nil {
			return err
		}
		for _, r := range list {
			if err := wb.WriteRow([]interface{}{
				r.ReservationNo, r.Status, r.RoomNo, r.CheckInDate, r.CheckOutDate, r.Nights,
				r.GuestName, r.GuestEmail, r.GuestPhone, r.BookingSource, r.Adults, r.Children,
				r.RoomRate, r.TotalAmount, r.PaidAmount, r.BalanceAmount, r.Currency,
			}); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
		if int64(page*exportPageSize) >= total || len(list) == 0 || page*exportPageSize >= maxExportRows {
			break
		}
	}

	return wb.Write(w)
}

// ExportFinance writes the revenue series, the income ledger and the expense ledger
// for the same period to three sheets.
func (s *reportService) ExportFinance(ctx context.Context, sess *session.Session, filter RevenueFilter, w io.Writer) error {
	series, err := s.revenue.GetRevenueStatistics(ctx, sess, filter)
	if err != nil {
		return err
	}

	wb := report.NewWorkbook()
	defer wb.Close()

	if err := wb.AddSheet("Summary"); err != nil {
		return err
	}
	if err := wb.WriteHeader([]string{"Period", "Income", "Expense", "Profit"}); err != nil {
		return err
	}
	for _, p := range series {
		if err := wb.WriteRow([]interface{}{p.Period, p.TotalIncome, p.TotalExpense, p.Profit}); err != nil {
			return err
		}
	}

	ledger := LedgerQuery{LocationID: filter.LocationID, From: filter.StartDate, Limit: exportPageSize}
	if filter.EndDate != "" {
		// ledger ranges are inclusive, the revenue range is not
		end, err := parseDateField(filter.EndDate, "end_date")
		if err != nil {
			return err
		}
		ledger.To = formatDate(end.AddDate(0, 0, -1))
	}

	if err := wb.AddSheet("Income"); err != nil {
		return err
	}
	if err := wb.WriteHeader([]string{"Date", "Type", "Payment", "Amount", "Currency", "Reservation", "Note"}); err != nil {
		return err
	}
	for page := 1; ; page++ {
		ledger.Page = page
		list, total, err := s.income.ListIncome(ctx, sess, ledger)
		if err != nil {
			return err
		}
		for _, i := range list {
			resID := ""
			if i.ReservationID != nil {
				resID = *i.ReservationID
			}
			if err := wb.WriteRow([]interface{}{i.Date, i.IncomeType, i.PaymentMethod, i.Amount, i.Currency, resID, i.Note}); err != nil {
				return err
			}
		}
		if int64(page*exportPageSize) >= total || len(list) == 0 || page*exportPageSize >= maxExportRows {
			break
		}
	}

	if err := wb.AddSheet("Expenses"); err != nil {
		return err
	}
	if err := wb.WriteHeader([]string{"Date", "Category", "Amount", "Currency", "Description"}); err != nil {
		return err
	}
	for page := 1; ; page++ {
		ledger.Page = page
		list, total, err := s.expenses.GetExpenses(ctx, sess, ledger)
		if err != nil {
			return err
		}
		for _, e := range list {
			if err := wb.WriteRow([]interface{}{e.Date, e.Category, e.Amount, e.Currency, e.Description}); err != nil {
				return err
			}
		}
		if int64(page*exportPageSize) >= total || len(list) == 0 || page*exportPageSize >= maxExportRows {
			break
		}
	}

	return wb.Write(w)
}
