package service

import (
	"context"
	"sync"
	"time"

	"stayhub/internal/model"
	"stayhub/internal/queue"
	"stayhub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Reservations ---

type mockReservationRepo struct{ mock.Mock }

func (m *mockReservationRepo) Create(ctx context.Context, r *model.Reservation) error {
	args := m.Called(ctx, r)
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockReservationRepo) Update(ctx context.Context, r *model.Reservation) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockReservationRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Reservation, error) {
	args := m.Called(ctx, tenantID, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReservationRepo) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Reservation, error) {
	args := m.Called(ctx, tenantID, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReservationRepo) List(ctx context.Context, tenantID uuid.UUID, f repository.ReservationFilter) ([]model.Reservation, int64, error) {
	args := m.Called(ctx, tenantID, f)
	list, _ := args.Get(0).([]model.Reservation)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *mockReservationRepo) FindOverlapping(ctx context.Context, tenantID, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]model.Reservation, error) {
	args := m.Called(ctx, tenantID, roomID, checkIn, checkOut, excludeID)
	list, _ := args.Get(0).([]model.Reservation)
	return list, args.Error(1)
}

func (m *mockReservationRepo) ListInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, locationID *uuid.UUID) ([]model.Reservation, error) {
	args := m.Called(ctx, tenantID, from, to, locationID)
	list, _ := args.Get(0).([]model.Reservation)
	return list, args.Error(1)
}

func (m *mockReservationRepo) CountActiveForRoom(ctx context.Context, tenantID, roomID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReservationRepo) CountActiveForLocation(ctx context.Context, tenantID, locationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, locationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReservationRepo) NextSequence(ctx context.Context, tenantID uuid.UUID, year int) (int64, error) {
	args := m.Called(ctx, tenantID, year)
	return args.Get(0).(int64), args.Error(1)
}

// --- Rooms ---

type mockRoomRepo struct{ mock.Mock }

func (m *mockRoomRepo) Create(ctx context.Context, room *model.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *mockRoomRepo) Update(ctx context.Context, room *model.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *mockRoomRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockRoomRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Room, error) {
	args := m.Called(ctx, tenantID, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRoomRepo) LockByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Room, error) {
	args := m.Called(ctx, tenantID, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Room), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRoomRepo) List(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, activeOnly bool) ([]model.Room, error) {
	args := m.Called(ctx, tenantID, locationID, activeOnly)
	list, _ := args.Get(0).([]model.Room)
	return list, args.Error(1)
}

func (m *mockRoomRepo) CountActive(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, within []uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, locationID, within)
	return args.Get(0).(int64), args.Error(1)
}

// --- Locations, tenants ---

type mockLocationRepo struct{ mock.Mock }

func (m *mockLocationRepo) Create(ctx context.Context, loc *model.Location) error {
	return m.Called(ctx, loc).Error(0)
}

func (m *mockLocationRepo) Update(ctx context.Context, loc *model.Location) error {
	return m.Called(ctx, loc).Error(0)
}

func (m *mockLocationRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockLocationRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Location, error) {
	args := m.Called(ctx, tenantID, id)
	if l := args.Get(0); l != nil {
		return l.(*model.Location), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLocationRepo) List(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]model.Location, error) {
	args := m.Called(ctx, tenantID, activeOnly)
	list, _ := args.Get(0).([]model.Location)
	return list, args.Error(1)
}

type mockTenantRepo struct{ mock.Mock }

func (m *mockTenantRepo) Create(ctx context.Context, t *model.Tenant) error {
	args := m.Called(ctx, t)
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	args := m.Called(ctx, id)
	if t := args.Get(0); t != nil {
		return t.(*model.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTenantRepo) FindBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	args := m.Called(ctx, slug)
	if t := args.Get(0); t != nil {
		return t.(*model.Tenant), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Money ---

type mockAccountRepo struct{ mock.Mock }

func (m *mockAccountRepo) Create(ctx context.Context, a *model.Account) error {
	args := m.Called(ctx, a)
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockAccountRepo) Update(ctx context.Context, a *model.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAccountRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockAccountRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Account, error) {
	args := m.Called(ctx, tenantID, id)
	if a := args.Get(0); a != nil {
		return a.(*model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) List(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID) ([]model.Account, error) {
	args := m.Called(ctx, tenantID, locationID)
	list, _ := args.Get(0).([]model.Account)
	return list, args.Error(1)
}

func (m *mockAccountRepo) Movements(ctx context.Context, tenantID, id uuid.UUID) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

type mockIncomeRepo struct{ mock.Mock }

func (m *mockIncomeRepo) Create(ctx context.Context, i *model.Income) error {
	args := m.Called(ctx, i)
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockIncomeRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockIncomeRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Income, error) {
	args := m.Called(ctx, tenantID, id)
	if i := args.Get(0); i != nil {
		return i.(*model.Income), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockIncomeRepo) List(ctx context.Context, tenantID uuid.UUID, f repository.LedgerFilter) ([]model.Income, int64, error) {
	args := m.Called(ctx, tenantID, f)
	list, _ := args.Get(0).([]model.Income)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *mockIncomeRepo) SumForReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, reservationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Statistics ---

type mockStatisticsRepo struct{ mock.Mock }

func (m *mockStatisticsRepo) SumIncome(ctx context.Context, f repository.DashboardFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockStatisticsRepo) SumExpense(ctx context.Context, f repository.DashboardFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockStatisticsRepo) CountReservations(ctx context.Context, f repository.DashboardFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStatisticsRepo) OccupiedNights(ctx context.Context, f repository.DashboardFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStatisticsRepo) CountArrivals(ctx context.Context, f repository.DashboardFilter, day time.Time) (int64, error) {
	args := m.Called(ctx, f, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStatisticsRepo) CountDepartures(ctx context.Context, f repository.DashboardFilter, day time.Time) (int64, error) {
	args := m.Called(ctx, f, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStatisticsRepo) ExpensesByCategory(ctx context.Context, f repository.DashboardFilter) ([]model.CategoryTotal, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.CategoryTotal)
	return list, args.Error(1)
}

func (m *mockStatisticsRepo) ReservationsBySource(ctx context.Context, f repository.DashboardFilter) ([]model.SourceCount, error) {
	args := m.Called(ctx, f)
	list, _ := args.Get(0).([]model.SourceCount)
	return list, args.Error(1)
}

// --- Audit, permissions, users ---

type mockAuditRepo struct{ mock.Mock }

func (m *mockAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockAuditRepo) List(ctx context.Context, tenantID uuid.UUID, f repository.AuditFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, tenantID, f)
	list, _ := args.Get(0).([]model.AuditLog)
	return list, args.Get(1).(int64), args.Error(2)
}

type mockPermissionRepo struct{ mock.Mock }

func (m *mockPermissionRepo) ListByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]model.UserPermission, error) {
	args := m.Called(ctx, tenantID, userID)
	list, _ := args.Get(0).([]model.UserPermission)
	return list, args.Error(1)
}

func (m *mockPermissionRepo) ReplaceForUser(ctx context.Context, tenantID, userID uuid.UUID, records []model.UserPermission) error {
	return m.Called(ctx, tenantID, userID, records).Error(0)
}

func (m *mockPermissionRepo) DeleteForUser(ctx context.Context, tenantID, userID uuid.UUID) error {
	return m.Called(ctx, tenantID, userID).Error(0)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, tenantID, id)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, tenantID, page, limit)
	list, _ := args.Get(0).([]model.User)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *mockUserRepo) SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	args := m.Called(ctx, token)
	if t := args.Get(0); t != nil {
		return t.(*model.RefreshToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUserRepo) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) error {
	return m.Called(ctx, before).Error(0)
}

// --- Infrastructure fakes ---

// inlineTx runs fn on the caller's context, standing in for a database transaction.
type inlineTx struct{}

func (inlineTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages map[uuid.UUID][][]byte
}

func (b *recordingBroadcaster) BroadcastToTenant(tenantID uuid.UUID, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.messages == nil {
		b.messages = map[uuid.UUID][][]byte{}
	}
	b.messages[tenantID] = append(b.messages[tenantID], data)
}
