// internal/event/repository.go
package event

import (
	"fmt"
	"strings"
	"time"

	"sttbackend/internal/identity"
	"sttbackend/internal/logger"
	"sttbackend/internal/store"
)

const copySuffix = " (Copy)"

// Repository owns the event collection of one merchant. All package
// operations are routed through it because packages have no independent
// top-level storage. Every mutation writes through to the store before
// returning; callers must never mutate returned entities in place.
type Repository struct {
	store      store.Store
	ids        identity.Generator
	merchantID string
	events     []Event
}

func NewRepository(st store.Store, ids identity.Generator) *Repository {
	return &Repository{store: st, ids: ids}
}

// Load reads the events list for the given merchant. An absent or corrupt
// stored value initializes the repository to empty. Called once per session.
func (r *Repository) Load(merchantID string) error {
	r.merchantID = normalizeID(merchantID)
	r.events = nil

	var events []Event
	found, err := r.store.Load(store.KeyEvents, &events)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}
	if found {
		r.events = events
	}

	logger.LogInfo("Loaded %d events for merchant %s", len(r.events), r.merchantID)
	return nil
}

// Reset drops the in-memory collection without touching storage. Used on
// logout, where the service removes the storage key separately.
func (r *Repository) Reset() {
	r.merchantID = ""
	r.events = nil
}

// Events returns a copy of the collection in insertion order.
func (r *Repository) Events() []Event {
	out := make([]Event, len(r.events))
	for i, e := range r.events {
		out[i] = e.copy()
	}
	return out
}

// AddEvent builds a new Draft event owned by the current merchant, appends
// it, persists the full list, and returns the created event.
func (r *Repository) AddEvent(in Input) (Event, error) {
	ev := Event{
		ID:          r.ids.NextID(),
		MerchantID:  r.merchantID,
		Title:       in.Title,
		Description: in.Description,
		EventType:   in.EventType,
		Date:        in.Date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Capacity:    in.Capacity,
		Images:      append([]string(nil), in.Images...),
		Status:      StatusDraft,
		CreatedAt:   time.Now(),
		Packages:    []Package{},
	}

	r.events = append(r.events, ev)
	if err := r.persist(); err != nil {
		r.events = r.events[:len(r.events)-1]
		return Event{}, err
	}

	return ev.copy(), nil
}

// UpdateEvent shallow-merges upd into the matching event. The id, owner and
// creation timestamp are never touched. Returns ErrNotFound if no event
// matches, so a deleted event can never be resurrected by an update.
func (r *Repository) UpdateEvent(eventID string, upd Update) (Event, error) {
	idx := r.indexOf(eventID)
	if idx < 0 {
		return Event{}, fmt.Errorf("update event %s: %w", eventID, ErrNotFound)
	}

	prev := r.events[idx].copy()
	applyEventUpdate(&r.events[idx], upd)

	if err := r.persist(); err != nil {
		r.events[idx] = prev
		return Event{}, err
	}

	return r.events[idx].copy(), nil
}

// CloneEvent duplicates the source event under a fresh id with the title
// suffixed " (Copy)", status reset to Draft and counters zeroed. Nested
// packages are carried over but re-identified, so package ids stay unique
// across the repository.
func (r *Repository) CloneEvent(eventID string) (Event, error) {
	idx := r.indexOf(eventID)
	if idx < 0 {
		return Event{}, fmt.Errorf("clone event %s: %w", eventID, ErrNotFound)
	}

	clone := r.events[idx].copy()
	clone.ID = r.ids.NextID()
	clone.Title = clone.Title + copySuffix
	clone.Status = StatusDraft
	clone.CreatedAt = time.Now()
	clone.Views = 0
	clone.Bookings = 0
	for i := range clone.Packages {
		clone.Packages[i].ID = r.ids.NextID()
		clone.Packages[i].EventID = clone.ID
	}

	r.events = append(r.events, clone)
	if err := r.persist(); err != nil {
		r.events = r.events[:len(r.events)-1]
		return Event{}, err
	}

	return clone.copy(), nil
}

// DeleteEvent removes the matching event and persists the shortened list.
func (r *Repository) DeleteEvent(eventID string) error {
	idx := r.indexOf(eventID)
	if idx < 0 {
		return fmt.Errorf("delete event %s: %w", eventID, ErrNotFound)
	}

	removed := r.events[idx]
	r.events = append(r.events[:idx], r.events[idx+1:]...)
	if err := r.persist(); err != nil {
		r.events = append(r.events[:idx], append([]Event{removed}, r.events[idx:]...)...)
		return err
	}

	logger.LogInfo("Deleted event %s (%s)", removed.ID, removed.Title)
	return nil
}

// AddPackage appends a new package to the owning event. Status defaults to
// Active unless the caller specifies otherwise. This is an event mutation,
// not a separate collection: the whole list is persisted.
func (r *Repository) AddPackage(eventID string, in PackageInput) (Package, error) {
	idx := r.indexOf(eventID)
	if idx < 0 {
		return Package{}, fmt.Errorf("add package to event %s: %w", eventID, ErrNotFound)
	}

	status := in.Status
	if status == "" {
		status = PackageStatusActive
	}

	pkg := Package{
		ID:          r.ids.NextID(),
		EventID:     r.events[idx].ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		MaxGuests:   in.MaxGuests,
		MinGuests:   in.MinGuests,
		Status:      status,
		Features:    append([]string(nil), in.Features...),
		Inclusions:  append([]string(nil), in.Inclusions...),
		Exclusions:  append([]string(nil), in.Exclusions...),
		CreatedAt:   time.Now(),
	}
	if in.OriginalPrice != nil {
		v := *in.OriginalPrice
		pkg.OriginalPrice = &v
	}

	r.events[idx].Packages = append(r.events[idx].Packages, pkg)
	if err := r.persist(); err != nil {
		pkgs := r.events[idx].Packages
		r.events[idx].Packages = pkgs[:len(pkgs)-1]
		return Package{}, err
	}

	return pkg.copy(), nil
}

// UpdatePackage scans every event for the package and shallow-merges upd
// into it, persisting the owning event. Packages in other events are left
// untouched.
func (r *Repository) UpdatePackage(packageID string, upd PackageUpdate) (Package, error) {
	evIdx, pkgIdx := r.findPackage(packageID)
	if evIdx < 0 {
		return Package{}, fmt.Errorf("update package %s: %w", packageID, ErrNotFound)
	}

	prev := r.events[evIdx].Packages[pkgIdx].copy()
	applyPackageUpdate(&r.events[evIdx].Packages[pkgIdx], upd)

	if err := r.persist(); err != nil {
		r.events[evIdx].Packages[pkgIdx] = prev
		return Package{}, err
	}

	return r.events[evIdx].Packages[pkgIdx].copy(), nil
}

// ClonePackage duplicates the source package into the same owning event,
// with a fresh id, the name suffixed " (Copy)", status reset to Draft and
// booking/revenue counters zeroed.
func (r *Repository) ClonePackage(packageID string) (Package, error) {
	evIdx, pkgIdx := r.findPackage(packageID)
	if evIdx < 0 {
		return Package{}, fmt.Errorf("clone package %s: %w", packageID, ErrNotFound)
	}

	clone := r.events[evIdx].Packages[pkgIdx].copy()
	clone.ID = r.ids.NextID()
	clone.Name = clone.Name + copySuffix
	clone.Status = PackageStatusDraft
	clone.CreatedAt = time.Now()
	clone.Bookings = 0
	clone.Revenue = 0

	r.events[evIdx].Packages = append(r.events[evIdx].Packages, clone)
	if err := r.persist(); err != nil {
		pkgs := r.events[evIdx].Packages
		r.events[evIdx].Packages = pkgs[:len(pkgs)-1]
		return Package{}, err
	}

	return clone.copy(), nil
}

func (r *Repository) persist() error {
	if r.events == nil {
		r.events = []Event{}
	}
	if err := r.store.Save(store.KeyEvents, r.events); err != nil {
		return fmt.Errorf("failed to persist events: %w", err)
	}
	return nil
}

func (r *Repository) indexOf(eventID string) int {
	id := normalizeID(eventID)
	for i := range r.events {
		if r.events[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) findPackage(packageID string) (int, int) {
	id := normalizeID(packageID)
	for i := range r.events {
		for j := range r.events[i].Packages {
			if r.events[i].Packages[j].ID == id {
				return i, j
			}
		}
	}
	return -1, -1
}

// normalizeID canonicalizes an identifier once at the boundary. Callers have
// historically passed ids with inconsistent formatting, so the repository
// never compares more than one representation internally.
func normalizeID(id string) string {
	return strings.TrimSpace(id)
}

func applyEventUpdate(ev *Event, upd Update) {
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.Description != nil {
		ev.Description = *upd.Description
	}
	if upd.EventType != nil {
		ev.EventType = *upd.EventType
	}
	if upd.Date != nil {
		ev.Date = *upd.Date
	}
	if upd.StartTime != nil {
		ev.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		ev.EndTime = *upd.EndTime
	}
	if upd.Capacity != nil {
		ev.Capacity = *upd.Capacity
	}
	if upd.Images != nil {
		ev.Images = append([]string(nil), upd.Images...)
	}
	if upd.Status != nil {
		ev.Status = *upd.Status
	}
	if upd.Views != nil {
		ev.Views = *upd.Views
	}
	if upd.Bookings != nil {
		ev.Bookings = *upd.Bookings
	}
}

func applyPackageUpdate(pkg *Package, upd PackageUpdate) {
	if upd.Name != nil {
		pkg.Name = *upd.Name
	}
	if upd.Description != nil {
		pkg.Description = *upd.Description
	}
	if upd.Price != nil {
		pkg.Price = *upd.Price
	}
	if upd.OriginalPrice != nil {
		v := *upd.OriginalPrice
		pkg.OriginalPrice = &v
	}
	if upd.MaxGuests != nil {
		pkg.MaxGuests = *upd.MaxGuests
	}
	if upd.MinGuests != nil {
		pkg.MinGuests = *upd.MinGuests
	}
	if upd.Status != nil {
		pkg.Status = *upd.Status
	}
	if upd.Features != nil {
		pkg.Features = append([]string(nil), upd.Features...)
	}
	if upd.Inclusions != nil {
		pkg.Inclusions = append([]string(nil), upd.Inclusions...)
	}
	if upd.Exclusions != nil {
		pkg.Exclusions = append([]string(nil), upd.Exclusions...)
	}
	if upd.Bookings != nil {
		pkg.Bookings = *upd.Bookings
	}
	if upd.Revenue != nil {
		pkg.Revenue = *upd.Revenue
	}
}
