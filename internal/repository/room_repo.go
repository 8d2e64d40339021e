package repository

import (
	"context"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	Update(ctx context.Context, room *model.Room) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Room, error)
	LockByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Room, error)
	List(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, activeOnly bool) ([]model.Room, error)
	CountActive(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, within []uuid.UUID) (int64, error)
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return GetDB(ctx, r.db).Create(room).Error
}

func (r *roomRepository) Update(ctx context.Context, room *model.Room) error {
	return GetDB(ctx, r.db).Omit("Location").Save(room).Error
}

func (r *roomRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&model.Room{}).Error
}

func (r *roomRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := GetDB(ctx, r.db).Preload("Location").First(&room, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// LockByID loads the room with a row lock so concurrent writers for the same room
// serialize for the rest of the transaction. The location is loaded alongside so callers
// can see whether it is still active.
func (r *roomRepository) LockByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Location").
		First(&room, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) List(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, activeOnly bool) ([]model.Room, error) {
	q := GetDB(ctx, r.db).Preload("Location").Where("rooms.tenant_id = ?", tenantID)
	if locationID != nil {
		q = q.Where("rooms.location_id = ?", *locationID)
	}
	if activeOnly {
		q = q.Joins("JOIN locations ON locations.id = rooms.location_id AND locations.deleted_at IS NULL").
			Where("rooms.is_active = ? AND locations.is_active = ?", true, true)
	}

	var rooms []model.Room
	if err := q.Order("rooms.location_id, rooms.room_no").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *roomRepository) CountActive(ctx context.Context, tenantID uuid.UUID, locationID *uuid.UUID, within []uuid.UUID) (int64, error) {
	q := GetDB(ctx, r.db).Model(&model.Room{}).
		Joins("JOIN locations ON locations.id = rooms.location_id AND locations.deleted_at IS NULL").
		Where("rooms.tenant_id = ? AND rooms.is_active = ? AND locations.is_active = ?", tenantID, true, true)
	if locationID != nil {
		q = q.Where("rooms.location_id = ?", *locationID)
	} else if within != nil {
		q = q.Where("rooms.location_id IN ?", within)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}
