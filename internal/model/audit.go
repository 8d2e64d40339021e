package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateReservation       = "CREATE_RESERVATION"
	ActionUpdateReservation       = "UPDATE_RESERVATION"
	ActionChangeReservationStatus = "CHANGE_RESERVATION_STATUS"
	ActionCancelReservation       = "CANCEL_RESERVATION"

	ActionCreateRoom     = "CREATE_ROOM"
	ActionUpdateRoom     = "UPDATE_ROOM"
	ActionDeleteRoom     = "DELETE_ROOM"
	ActionCreateLocation = "CREATE_LOCATION"
	ActionUpdateLocation = "UPDATE_LOCATION"
	ActionDeleteLocation = "DELETE_LOCATION"

	ActionCreateIncome  = "CREATE_INCOME"
	ActionDeleteIncome  = "DELETE_INCOME"
	ActionCreateExpense = "CREATE_EXPENSE"
	ActionDeleteExpense = "DELETE_EXPENSE"
	ActionCreateAccount = "CREATE_ACCOUNT"
	ActionUpdateAccount = "UPDATE_ACCOUNT"

	ActionCreateUser        = "CREATE_USER"
	ActionUpdateUser        = "UPDATE_USER"
	ActionDeleteUser        = "DELETE_USER"
	ActionUpdatePermissions = "UPDATE_PERMISSIONS"
)

var auditActions = map[string]struct{}{
	ActionCreateReservation: {}, ActionUpdateReservation: {}, ActionChangeReservationStatus: {}, ActionCancelReservation: {},
	ActionCreateRoom: {}, ActionUpdateRoom: {}, ActionDeleteRoom: {},
	ActionCreateLocation: {}, ActionUpdateLocation: {}, ActionDeleteLocation: {},
	ActionCreateIncome: {}, ActionDeleteIncome: {}, ActionCreateExpense: {}, ActionDeleteExpense: {},
	ActionCreateAccount: {}, ActionUpdateAccount: {},
	ActionCreateUser: {}, ActionUpdateUser: {}, ActionDeleteUser: {}, ActionUpdatePermissions: {},
}

// IsAuditAction reports whether a is one of the recorded action codes.
func IsAuditAction(a string) bool {
	_, ok := auditActions[a]
	return ok
}

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for automated jobs
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"` // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
