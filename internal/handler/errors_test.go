package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayhub/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Msg: "bad"}, http.StatusBadRequest},
		{fmt.Errorf("user %w", service.ErrNotFound), http.StatusNotFound},
		{&service.ConflictError{}, http.StatusConflict},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: slow down", service.ErrRateLimited), http.StatusTooManyRequests},
		{fmt.Errorf("%w: 500", service.ErrUpstream), http.StatusBadGateway},
		{service.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteError_ConflictCarriesReservations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, &service.ConflictError{Conflicts: []service.ConflictResponse{
		{ReservationNo: "RES-2026-000003", GuestName: "Jane Guest", CheckInDate: "2026-05-01", CheckOutDate: "2026-05-03"},
	}})

	require.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "RES-2026-000003")

	var data struct {
		Conflicts []service.ConflictResponse `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data.Conflicts, 1)
	assert.Equal(t, "Jane Guest", data.Conflicts[0].GuestName)
	assert.Len(t, c.Errors, 1)
}
