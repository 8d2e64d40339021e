// Package permission maps per-location capability flags to reachable routes.
package permission

import (
	"github.com/google/uuid"

	"stayhub/internal/model"
)

// Capability names a feature area a user may be granted.
type Capability string

const (
	Dashboard       Capability = "dashboard"
	Calendar        Capability = "calendar"
	Bookings        Capability = "bookings"
	Income          Capability = "income"
	Expenses        Capability = "expenses"
	Reports         Capability = "reports"
	Accounts        Capability = "accounts"
	MasterFiles     Capability = "master_files"
	BookingChannels Capability = "booking_channels"
	Rooms           Capability = "rooms"
	Users           Capability = "users"
	Settings        Capability = "settings"
)

const (
	DashboardRoute    = "/dashboard"
	AccessDeniedRoute = "/access-denied"
)

// Priority is the order in which capabilities are tried when choosing a landing route.
var Priority = []Capability{
	Dashboard,
	Calendar,
	Bookings,
	Income,
	Expenses,
	Reports,
	Accounts,
	MasterFiles,
	BookingChannels,
	Rooms,
	Users,
	Settings,
}

var routes = map[Capability]string{
	Dashboard:       "/dashboard",
	Calendar:        "/calendar",
	Bookings:        "/reservations",
	Income:          "/income",
	Expenses:        "/expenses",
	Reports:         "/reports",
	Accounts:        "/accounts",
	MasterFiles:     "/master-files",
	BookingChannels: "/booking-channels",
	Rooms:           "/rooms",
	Users:           "/users",
	Settings:        "/settings",
}

// NavItem is one entry of the navigation menu.
type NavItem struct {
	Capability Capability `json:"capability"`
	Route      string     `json:"route"`
}

// Set is the set of granted capabilities.
type Set map[Capability]bool

// Parse returns the capability named s.
func Parse(s string) (Capability, bool) {
	c := Capability(s)
	_, ok := routes[c]
	return c, ok
}

// Route returns the route a capability unlocks.
func Route(c Capability) string {
	return routes[c]
}

// FromRecord extracts the granted capabilities of a single permission row.
func FromRecord(p model.UserPermission) Set {
	s := Set{}
	flags := map[Capability]bool{
		Dashboard:       p.AccessDashboard,
		Calendar:        p.AccessCalendar,
		Bookings:        p.AccessBookings,
		Income:          p.AccessIncome,
		Expenses:        p.AccessExpenses,
		Reports:         p.AccessReports,
		Accounts:        p.AccessAccounts,
		MasterFiles:     p.AccessMasterFiles,
		BookingChannels: p.AccessBookingChannels,
		Rooms:           p.AccessRooms,
		Users:           p.AccessUsers,
		Settings:        p.AccessSettings,
	}
	for c, granted := range flags {
		if granted {
			s[c] = true
		}
	}
	return s
}

// ApplyToRecord writes the set onto the flag columns of p.
func (s Set) ApplyToRecord(p *model.UserPermission) {
	p.AccessDashboard = s.Has(Dashboard)
	p.AccessCalendar = s.Has(Calendar)
	p.AccessBookings = s.Has(Bookings)
	p.AccessIncome = s.Has(Income)
	p.AccessExpenses = s.Has(Expenses)
	p.AccessReports = s.Has(Reports)
	p.AccessAccounts = s.Has(Accounts)
	p.AccessMasterFiles = s.Has(MasterFiles)
	p.AccessBookingChannels = s.Has(BookingChannels)
	p.AccessRooms = s.Has(Rooms)
	p.AccessUsers = s.Has(Users)
	p.AccessSettings = s.Has(Settings)
}

// Resolve computes the effective set for a user. With a location selected only the
// records governing that location count; otherwise every record is merged.
func Resolve(records []model.UserPermission, locationID *uuid.UUID) Set {
	s := Set{}
	for _, r := range records {
		if locationID != nil && !r.AppliesTo(*locationID) {
			continue
		}
		s = s.Merge(FromRecord(r))
	}
	return s
}

// Locations reports where the records grant every capability in caps. all is true when
// the tenant-wide records alone grant them; ids is then nil.
func Locations(records []model.UserPermission, caps ...Capability) (ids []uuid.UUID, all bool) {
	global := Set{}
	for _, r := range records {
		if r.LocationID == nil {
			global = global.Merge(FromRecord(r))
		}
	}
	if global.HasAll(caps...) {
		return nil, true
	}

	seen := make(map[uuid.UUID]bool)
	ids = []uuid.UUID{}
	for _, r := range records {
		if r.LocationID == nil || seen[*r.LocationID] {
			continue
		}
		seen[*r.LocationID] = true
		if Resolve(records, r.LocationID).HasAll(caps...) {
			ids = append(ids, *r.LocationID)
		}
	}
	return ids, false
}

// All returns a set holding every capability.
func All() Set {
	s := make(Set, len(Priority))
	for _, c := range Priority {
		s[c] = true
	}
	return s
}

func (s Set) Has(c Capability) bool {
	return s[c]
}

// HasAll reports whether every capability in caps is granted.
func (s Set) HasAll(caps ...Capability) bool {
	for _, c := range caps {
		if !s[c] {
			return false
		}
	}
	return true
}

// Missing returns the first capability of caps not in the set.
func (s Set) Missing(caps ...Capability) (Capability, bool) {
	for _, c := range caps {
		if !s[c] {
			return c, true
		}
	}
	return "", false
}

// Merge returns the union of s and o.
func (s Set) Merge(o Set) Set {
	out := make(Set, len(s)+len(o))
	for c, v := range s {
		if v {
			out[c] = true
		}
	}
	for c, v := range o {
		if v {
			out[c] = true
		}
	}
	return out
}

// Granted lists the granted capabilities in priority order.
func (s Set) Granted() []Capability {
	out := make([]Capability, 0, len(s))
	for _, c := range Priority {
		if s[c] {
			out = append(out, c)
		}
	}
	return out
}

// LandingRoute picks where a user goes first after login. Tenant admins always land
// on the dashboard; everyone else gets the first granted route in priority order.
func LandingRoute(s Set, isAdmin bool) string {
	if isAdmin {
		return DashboardRoute
	}
	for _, c := range Priority {
		if s[c] {
			return routes[c]
		}
	}
	return AccessDeniedRoute
}

// Navigation lists the menu entries visible to the user.
func Navigation(s Set, isAdmin bool) []NavItem {
	if isAdmin {
		s = All()
	}
	items := make([]NavItem, 0, len(Priority))
	for _, c := range s.Granted() {
		items = append(items, NavItem{Capability: c, Route: routes[c]})
	}
	return items
}
