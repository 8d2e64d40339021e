package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Room types offered by the booking forms
const (
	RoomTypeSingle = "single"
	RoomTypeDouble = "double"
	RoomTypeTwin   = "twin"
	RoomTypeFamily = "family"
	RoomTypeSuite  = "suite"
	RoomTypeDorm   = "dorm"
)

// Room belongs to a location and is the unit reservations are made against
type Room struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	LocationID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"location_id"`
	Location    *Location       `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	RoomNo      string          `gorm:"type:varchar(50);not null" json:"room_no"`
	RoomType    string          `gorm:"type:varchar(30);not null;default:'double'" json:"room_type"`
	Capacity    int             `gorm:"not null;default:2" json:"capacity"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"base_price"`
	Currency    string          `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	Description string          `gorm:"type:text" json:"description"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// Bookable reports whether new stays may be placed in the room. A room of a
// deactivated location is not bookable even when the room itself is active.
func (r Room) Bookable() bool {
	return r.IsActive && (r.Location == nil || r.Location.IsActive)
}
