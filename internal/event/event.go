// internal/event/event.go
package event

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a referenced Event or Package id does not
// resolve to any entity in the repository.
var ErrNotFound = errors.New("not found")

// Event status lifecycle: Draft -> PendingApproval -> Active | Rejected.
// New and cloned events always start as Draft.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusActive          Status = "active"
	StatusRejected        Status = "rejected"
)

// Package status. Packages created without an explicit status are Active;
// cloned packages reset to Draft.
type PackageStatus string

const (
	PackageStatusDraft  PackageStatus = "draft"
	PackageStatusActive PackageStatus = "active"
)

// Event is a bookable dining/event experience owned by one merchant.
// Packages live inside their parent event; they have no top-level storage.
type Event struct {
	ID          string    `json:"id"`
	MerchantID  string    `json:"merchantId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EventType   string    `json:"eventType"`
	Date        string    `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Capacity    int       `json:"capacity"`
	Images      []string  `json:"images"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Views       int       `json:"views"`
	Bookings    int       `json:"bookings"`
	Packages    []Package `json:"packages"`
}

// Package is a priced offering under an Event. Package ids are unique
// across the whole repository, not just within the parent event.
type Package struct {
	ID            string        `json:"id"`
	EventID       string        `json:"eventId"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Price         float64       `json:"price"`
	OriginalPrice *float64      `json:"originalPrice,omitempty"`
	MaxGuests     int           `json:"maxGuests"`
	MinGuests     int           `json:"minGuests"`
	Status        PackageStatus `json:"status"`
	Features      []string      `json:"features"`
	Inclusions    []string      `json:"inclusions"`
	Exclusions    []string      `json:"exclusions"`
	CreatedAt     time.Time     `json:"createdAt"`
	Bookings      int           `json:"bookings"`
	Revenue       float64       `json:"revenue"`
}

// Input holds the caller-supplied fields for a new event. Identity, owner,
// status and counters are filled in by the repository.
type Input struct {
	Title       string
	Description string
	EventType   string
	Date        string
	StartTime   string
	EndTime     string
	Capacity    int
	Images      []string
}

// Update is a shallow-merge patch for an event. Nil fields are left
// untouched; id, merchantId and createdAt can never be patched.
type Update struct {
	Title       *string
	Description *string
	EventType   *string
	Date        *string
	StartTime   *string
	EndTime     *string
	Capacity    *int
	Images      []string
	Status      *Status
	Views       *int
	Bookings    *int
}

// PackageInput holds the caller-supplied fields for a new package.
type PackageInput struct {
	Name          string
	Description   string
	Price         float64
	OriginalPrice *float64
	MaxGuests     int
	MinGuests     int
	Status        PackageStatus // empty means Active
	Features      []string
	Inclusions    []string
	Exclusions    []string
}

// PackageUpdate is a shallow-merge patch for a package.
type PackageUpdate struct {
	Name          *string
	Description   *string
	Price         *float64
	OriginalPrice *float64
	MaxGuests     *int
	MinGuests     *int
	Status        *PackageStatus
	Features      []string
	Inclusions    []string
	Exclusions    []string
	Bookings      *int
	Revenue       *float64
}

func (e Event) copy() Event {
	out := e
	out.Images = append([]string(nil), e.Images...)
	out.Packages = make([]Package, len(e.Packages))
	for i, p := range e.Packages {
		out.Packages[i] = p.copy()
	}
	return out
}

func (p Package) copy() Package {
	out := p
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		out.OriginalPrice = &v
	}
	out.Features = append([]string(nil), p.Features...)
	out.Inclusions = append([]string(nil), p.Inclusions...)
	out.Exclusions = append([]string(nil), p.Exclusions...)
	return out
}
