package model

import (
	"time"

	"github.com/google/uuid"
)

// Access levels stored alongside the capability flags
const (
	AccessLevelAdmin   = "admin"
	AccessLevelManager = "manager"
	AccessLevelStaff   = "staff"
	AccessLevelViewer  = "viewer"
)

// UserPermission holds a user's capability flags for one location.
// A nil LocationID applies to every location of the tenant. NULLs never collide in
// the composite index, so idx_user_permissions_user_all keeps that record unique.
type UserPermission struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_permissions_user_location;uniqueIndex:idx_user_permissions_user_all,where:location_id IS NULL" json:"user_id"`
	LocationID *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_user_permissions_user_location" json:"location_id"`

	AccessDashboard       bool `gorm:"not null;default:false" json:"access_dashboard"`
	AccessIncome          bool `gorm:"not null;default:false" json:"access_income"`
	AccessExpenses        bool `gorm:"not null;default:false" json:"access_expenses"`
	AccessReports         bool `gorm:"not null;default:false" json:"access_reports"`
	AccessCalendar        bool `gorm:"not null;default:false" json:"access_calendar"`
	AccessBookings        bool `gorm:"not null;default:false" json:"access_bookings"`
	AccessRooms           bool `gorm:"not null;default:false" json:"access_rooms"`
	AccessMasterFiles     bool `gorm:"not null;default:false" json:"access_master_files"`
	AccessAccounts        bool `gorm:"not null;default:false" json:"access_accounts"`
	AccessUsers           bool `gorm:"not null;default:false" json:"access_users"`
	AccessSettings        bool `gorm:"not null;default:false" json:"access_settings"`
	AccessBookingChannels bool `gorm:"not null;default:false" json:"access_booking_channels"`

	AccessLevel string    `gorm:"type:varchar(20);not null;default:'staff'" json:"access_level"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// AppliesTo reports whether the record governs the given location.
func (p UserPermission) AppliesTo(locationID uuid.UUID) bool {
	return p.LocationID == nil || *p.LocationID == locationID
}
