package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func parseSchema(t *testing.T, dest interface{}) *schema.Schema {
	t.Helper()
	s, err := schema.Parse(dest, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	return s
}

func indexColumns(idx *schema.Index) []string {
	cols := make([]string, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		cols = append(cols, f.DBName)
	}
	return cols
}

func TestUserPermission_TenantWideRecordIsUnique(t *testing.T) {
	s := parseSchema(t, &UserPermission{})

	perLocation := s.LookIndex("idx_user_permissions_user_location")
	require.NotNil(t, perLocation)
	assert.Equal(t, "UNIQUE", perLocation.Class)
	assert.ElementsMatch(t, []string{"user_id", "location_id"}, indexColumns(perLocation))

	all := s.LookIndex("idx_user_permissions_user_all")
	require.NotNil(t, all)
	assert.Equal(t, "UNIQUE", all.Class)
	assert.Equal(t, "location_id IS NULL", all.Where)
	assert.Equal(t, []string{"user_id"}, indexColumns(all))
}

func TestReservation_NumberUniquePerTenant(t *testing.T) {
	s := parseSchema(t, &Reservation{})

	idx := s.LookIndex("idx_reservations_tenant_no")
	require.NotNil(t, idx)
	assert.Equal(t, "UNIQUE", idx.Class)
	assert.Equal(t, []string{"tenant_id", "reservation_no"}, indexColumns(idx))

	counter := parseSchema(t, &ReservationCounter{})
	assert.ElementsMatch(t, []string{"tenant_id", "year"}, counter.PrimaryFieldDBNames)
}
