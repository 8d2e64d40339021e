package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayhub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream request failed")
	ErrRateLimited  = errors.New("too many requests")
	ErrUnavailable  = errors.New("service unavailable")
)

// MaxStayNights bounds availability and reservation ranges.
const MaxStayNights = 365

// ValidationError carries a user-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError reports the reservations blocking a write. It matches ErrConflict.
type ConflictError struct {
	Conflicts []ConflictResponse
}

func (e *ConflictError) Error() string {
	nos := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		nos = append(nos, c.ReservationNo)
	}
	return "room is not available for the selected dates, conflicts with " + strings.Join(nos, ", ")
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// notFoundOr maps gorm.ErrRecordNotFound to ErrNotFound and wraps everything else.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}

func parseID(s, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, invalid("invalid %s", field)
	}
	return id, nil
}

func parseOptionalID(s, field string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := parseID(s, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseAmount(s, field string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("invalid %s", field)
	}
	if d.IsNegative() {
		return decimal.Zero, invalid("%s must not be negative", field)
	}
	return d, nil
}

func parseDateField(s, field string) (time.Time, error) {
	d, err := model.ParseDate(s)
	if err != nil {
		return time.Time{}, invalid("invalid %s, expected YYYY-MM-DD", field)
	}
	return d, nil
}

// ValidateStayDates enforces check-out after check-in within MaxStayNights.
func ValidateStayDates(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return invalid("check_out_date must be after check_in_date")
	}
	if model.Nights(checkIn, checkOut) > MaxStayNights {
		return invalid("date range must not exceed %d nights", MaxStayNights)
	}
	return nil
}

func auditEntry(tenantID uuid.UUID, userID uuid.UUID, action, entityID, entityName string, details interface{}) *model.AuditLog {
	detailsJSON, _ := json.Marshal(details)
	entry := &model.AuditLog{
		TenantID:   tenantID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if userID != uuid.Nil {
		uid := userID
		entry.UserID = &uid
	}
	return entry
}

func formatDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

func normalizePage(page, limit, def int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = def
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func isConflict(err error) bool { return errors.Is(err, ErrConflict) }

func isValidation(err error) bool { return errors.Is(err, ErrValidation) }
