package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomBookable(t *testing.T) {
	open := &Location{IsActive: true}
	closed := &Location{IsActive: false}

	tests := []struct {
		name string
		room Room
		want bool
	}{
		{"active room, location not loaded", Room{IsActive: true}, true},
		{"active room, active location", Room{IsActive: true, Location: open}, true},
		{"active room, closed location", Room{IsActive: true, Location: closed}, false},
		{"inactive room", Room{IsActive: false, Location: open}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.room.Bookable())
		})
	}
}
