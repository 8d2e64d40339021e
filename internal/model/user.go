package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleTenantAdmin = "tenant_admin"
	RoleManager     = "manager"
	RoleStaff       = "staff"
)

// User is a tenant member's profile and login
type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Email         string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName      string         `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone         string         `gorm:"type:varchar(30)" json:"phone"`
	PhoneVerified bool           `gorm:"not null;default:false" json:"phone_verified"`
	Password      string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role          string         `gorm:"type:varchar(30);not null;default:'staff'" json:"role"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt   *time.Time     `json:"last_login_at"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName keeps user rows in the profiles table.
func (User) TableName() string {
	return "profiles"
}

// IsTenantAdmin reports whether the user administers their tenant.
func (u User) IsTenantAdmin() bool {
	return u.Role == RoleTenantAdmin
}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	return role == RoleTenantAdmin || role == RoleManager || role == RoleStaff
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
