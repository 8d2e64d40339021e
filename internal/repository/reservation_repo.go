package repository

import (
	"context"
	"time"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationFilter narrows reservation listings. Zero values are ignored.
type ReservationFilter struct {
	LocationID *uuid.UUID
	Within     []uuid.UUID // when LocationID is nil and Within is non-nil, only these locations
	RoomID     *uuid.UUID
	Status     string
	From       *time.Time // stays ending after From
	To         *time.Time // stays starting before To
	Search     string
	Page       int
	Limit      int
}

type ReservationRepository interface {
	Create(ctx context.Context, r *model.Reservation) error
	Update(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Reservation, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Reservation, error)
	List(ctx context.Context, tenantID uuid.UUID, f ReservationFilter) ([]model.Reservation, int64, error)
	FindOverlapping(ctx context.Context, tenantID, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]model.Reservation, error)
	ListInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, locationID *uuid.UUID) ([]model.Reservation, error)
	CountActiveForRoom(ctx context.Context, tenantID, roomID uuid.UUID) (int64, error)
	CountActiveForLocation(ctx context.Context, tenantID, locationID uuid.UUID) (int64, error)
	NextSequence(ctx context.Context, tenantID uuid.UUID, year int) (int64, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	return GetDB(ctx, r.db).Create(res).Error
}

func (r *reservationRepository) Update(ctx context.Context, res *model.Reservation) error {
	return GetDB(ctx, r.db).Save(res).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Reservation, error) {
	var res model.Reservation
	if err := GetDB(ctx, r.db).Preload("Room").First(&res, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

// FindByIDForUpdate loads the reservation with a row lock held until the surrounding
// transaction ends. Every read-modify-write of a reservation goes through it.
func (r *reservationRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.Reservation, error) {
	var res model.Reservation
	err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Room").
		First(&res, "tenant_id = ? AND id = ?", tenantID, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) List(ctx context.Context, tenantID uuid.UUID, f ReservationFilter) ([]model.Reservation, int64, error) {
	var list []model.Reservation
	var total int64

	q := GetDB(ctx, r.db).Model(&model.Reservation{}).Where("tenant_id = ?", tenantID)
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	} else if f.Within != nil {
		q = q.Where("location_id IN ?", f.Within)
	}
	if f.RoomID != nil {
		q = q.Where("room_id = ?", *f.RoomID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("check_out_date > ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("check_in_date < ?", *f.To)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(guest_name ILIKE ? OR guest_email ILIKE ? OR guest_phone ILIKE ? OR reservation_no ILIKE ?)", like, like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	if err := q.Preload("Room").Order("check_in_date desc, created_at desc").Offset(offset).Limit(f.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// FindOverlapping returns the non-cancelled reservations of a room whose stay shares a
// night with [checkIn, checkOut). Touching stays are not returned.
func (r *reservationRepository) FindOverlapping(ctx context.Context, tenantID, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]model.Reservation, error) {
	query := GetDB(ctx, r.db).Model(&model.Reservation{}).
		Where("tenant_id = ? AND room_id = ?", tenantID, roomID).
		Where("status <> ?", model.StatusCancelled).
		Where("NOT (check_out_date <= ?) AND NOT (check_in_date >= ?)", checkIn, checkOut)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var list []model.Reservation
	if err := query.Order("check_in_date").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ListInRange returns non-cancelled reservations overlapping [from, to), for calendars.
func (r *reservationRepository) ListInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, locationID *uuid.UUID) ([]model.Reservation, error) {
	q := GetDB(ctx, r.db).
		Where("tenant_id = ? AND status <> ?", tenantID, model.StatusCancelled).
		Where("check_in_date < ? AND check_out_date > ?", to, from)
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}

	var list []model.Reservation
	if err := q.Order("room_id, check_in_date").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *reservationRepository) CountActiveForRoom(ctx context.Context, tenantID, roomID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Reservation{}).
		Where("tenant_id = ? AND room_id = ? AND status IN ?", tenantID, roomID,
			[]string{model.StatusTentative, model.StatusConfirmed, model.StatusCheckedIn}).
		Count(&n).Error
	return n, err
}

func (r *reservationRepository) CountActiveForLocation(ctx context.Context, tenantID, locationID uuid.UUID) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Reservation{}).
		Where("tenant_id = ? AND location_id = ? AND status IN ?", tenantID, locationID,
			[]string{model.StatusTentative, model.StatusConfirmed, model.StatusCheckedIn}).
		Count(&n).Error
	return n, err
}

// NextSequence hands out the tenant's next reservation number for the year. The counter
// row is created or bumped in one statement, so concurrent callers never share a value;
// the row stays locked until the surrounding transaction ends.
func (r *reservationRepository) NextSequence(ctx context.Context, tenantID uuid.UUID, year int) (int64, error) {
	counter := model.ReservationCounter{TenantID: tenantID, Year: year, Value: 1}
	err := GetDB(ctx, r.db).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "year"}},
			DoUpdates: clause.Set{{
				Column: clause.Column{Name: "value"},
				Value:  gorm.Expr("reservation_counters.value + 1"),
			}},
		},
		clause.Returning{Columns: []clause.Column{{Name: "value"}}},
	).Create(&counter).Error
	if err != nil {
		return 0, err
	}
	return counter.Value, nil
}
