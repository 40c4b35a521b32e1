// internal/event/repository_test.go
package event

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sttbackend/internal/identity"
	"sttbackend/internal/store"
)

func newTestRepo(t *testing.T) (*Repository, store.Store) {
	t.Helper()

	st := store.NewMemoryStore()
	repo := NewRepository(st, identity.NewSequence("id"))
	require.NoError(t, repo.Load("merchant-1"))

	return repo, st
}

func TestAddEvent(t *testing.T) {
	repo, _ := newTestRepo(t)

	ev, err := repo.AddEvent(Input{Title: "Brunch", EventType: "dining", Capacity: 40})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "merchant-1", ev.MerchantID)
	assert.Equal(t, "Brunch", ev.Title)
	assert.Equal(t, StatusDraft, ev.Status)
	assert.False(t, ev.CreatedAt.IsZero())
	assert.Zero(t, ev.Views)
	assert.Zero(t, ev.Bookings)
	assert.Empty(t, ev.Packages)

	assert.Len(t, repo.Events(), 1)
}

func TestRoundTripPersistence(t *testing.T) {
	repo, st := newTestRepo(t)

	_, err := repo.AddEvent(Input{Title: "Brunch", Images: []string{"a.jpg", "b.jpg"}})
	require.NoError(t, err)
	ev, err := repo.AddEvent(Input{Title: "Dinner", Capacity: 12})
	require.NoError(t, err)
	_, err = repo.AddPackage(ev.ID, PackageInput{Name: "Classic", Price: 100})
	require.NoError(t, err)

	// A fresh instance over the same store must see a structurally equal set.
	fresh := NewRepository(st, identity.NewSequence("other"))
	require.NoError(t, fresh.Load("merchant-1"))

	want, err := json.Marshal(repo.Events())
	require.NoError(t, err)
	got, err := json.Marshal(fresh.Events())
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func TestUpdateEvent(t *testing.T) {
	repo, _ := newTestRepo(t)

	ev, err := repo.AddEvent(Input{Title: "Brunch", Description: "weekend brunch", Capacity: 40})
	require.NoError(t, err)
	_, err = repo.AddPackage(ev.ID, PackageInput{Name: "Classic", Price: 100})
	require.NoError(t, err)
	before := repo.Events()[0]

	title := "X"
	updated, err := repo.UpdateEvent(ev.ID, Update{Title: &title})
	require.NoError(t, err)

	// Only the patched field changes.
	assert.Equal(t, "X", updated.Title)
	assert.Equal(t, before.ID, updated.ID)
	assert.Equal(t, before.MerchantID, updated.MerchantID)
	assert.Equal(t, before.Description, updated.Description)
	assert.Equal(t, before.Capacity, updated.Capacity)
	assert.True(t, before.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, len(before.Packages), len(updated.Packages))
	assert.Equal(t, before.Packages[0].ID, updated.Packages[0].ID)
}

func TestUpdateEventNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	title := "X"
	_, err := repo.UpdateEvent("missing", Update{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloneEvent(t *testing.T) {
	repo, _ := newTestRepo(t)

	ev, err := repo.AddEvent(Input{Title: "Brunch", EventType: "dining", Capacity: 40})
	require.NoError(t, err)
	views := 12
	bookings := 7
	status := StatusActive
	_, err = repo.UpdateEvent(ev.ID, Update{Views: &views, Bookings: &bookings, Status: &status})
	require.NoError(t, err)
	pkg, err := repo.AddPackage(ev.ID, PackageInput{Name: "Classic", Price: 100})
	require.NoError(t, err)

	clone, err := repo.CloneEvent(ev.ID)
	require.NoError(t, err)

	assert.NotEqual(t, ev.ID, clone.ID)
	assert.Equal(t, "Brunch (Copy)", clone.Title)
	assert.Equal(t, StatusDraft, clone.Status)
	assert.Zero(t, clone.Views)
	assert.Zero(t, clone.Bookings)
	assert.Equal(t, ev.EventType, clone.EventType)
	assert.Equal(t, ev.Capacity, clone.Capacity)

	// Nested packages carry over but are re-identified so package ids stay
	// unique across the whole repository.
	require.Len(t, clone.Packages, 1)
	assert.Equal(t, pkg.Name, clone.Packages[0].Name)
	assert.NotEqual(t, pkg.ID, clone.Packages[0].ID)
	assert.Equal(t, clone.ID, clone.Packages[0].EventID)

	assert.Len(t, repo.Events(), 2)
}

func TestDeleteEvent(t *testing.T) {
	repo, _ := newTestRepo(t)

	ev, err := repo.AddEvent(Input{Title: "Brunch"})
	require.NoError(t, err)
	keep, err := repo.AddEvent(Input{Title: "Dinner"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteEvent(ev.ID))
	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, keep.ID, events[0].ID)

	// A deleted event cannot be resurrected by a later update.
	title := "Back"
	_, err = repo.UpdateEvent(ev.ID, Update{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, repo.Events(), 1)

	assert.ErrorIs(t, repo.DeleteEvent(ev.ID), ErrNotFound)
}

func TestAddPackage(t *testing.T) {
	repo, _ := newTestRepo(t)

	ev, err := repo.AddEvent(Input{Title: "Brunch"})
	require.NoError(t, err)

	pkg, err := repo.AddPackage(ev.ID, PackageInput{Name: "Classic", Price: 100, MaxGuests: 6, MinGuests: 2})
	require.NoError(t, err)

	assert.NotEmpty(t, pkg.ID)
	assert.Equal(t, ev.ID, pkg.EventID)
	assert.Equal(t, PackageStatusActive, pkg.Status, "status defaults to Active")
	assert.False(t, pkg.CreatedAt.IsZero())
	assert.Zero(t, pkg.Bookings)
	assert.Zero(t, pkg.Revenue)

	draft, err := repo.AddPackage(ev.ID, PackageInput{Name: "Early Bird", Status: PackageStatusDraft})
	require.NoError(t, err)
	assert.Equal(t, PackageStatusDraft, draft.Status)

	// Insertion order is preserved.
	events := repo.Events()
	require.Len(t, events[0].Packages, 2)
	assert.Equal(t, "Classic", events[0].Packages[0].Name)
	assert.Equal(t, "Early Bird", events[0].Packages[1].Name)
}

func TestAddPackageToleratesUntrimmedID(t *testing.T) {
	repo, _ := newTestRepo(t)

	ev, err := repo.AddEvent(Input{Title: "Brunch"})
	require.NoError(t, err)

	pkg, err := repo.AddPackage("  "+ev.ID+" ", PackageInput{Name: "Classic"})
	require.NoError(t, err)
	assert.Equal(t, ev.ID, pkg.EventID)
}

func TestAddPackageNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.AddPackage("missing", PackageInput{Name: "Classic"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePackageAcrossEvents(t *testing.T) {
	repo, _ := newTestRepo(t)

	first, err := repo.AddEvent(Input{Title: "Brunch"})
	require.NoError(t, err)
	second, err := repo.AddEvent(Input{Title: "Dinner"})
	require.NoError(t, err)

	_, err = repo.AddPackage(first.ID, PackageInput{Name: "Classic", Price: 100})
	require.NoError(t, err)
	target, err := repo.AddPackage(second.ID, PackageInput{Name: "Deluxe", Price: 200})
	require.NoError(t, err)

	// The repository locates the package regardless of which event owns it.
	price := 250.0
	updated, err := repo.UpdatePackage(target.ID, PackageUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 250.0, updated.Price)
	assert.Equal(t, "Deluxe", updated.Name)

	// Packages in other events are untouched.
	events := repo.Events()
	assert.Equal(t, 100.0, events[0].Packages[0].Price)
	assert.Equal(t, 250.0, events[1].Packages[0].Price)
}

func TestUpdatePackageNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	name := "X"
	_, err := repo.UpdatePackage("missing", PackageUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClonePackage(t *testing.T) {
	repo, _ := newTestRepo(t)

	ev, err := repo.AddEvent(Input{Title: "Brunch"})
	require.NoError(t, err)
	other, err := repo.AddEvent(Input{Title: "Dinner"})
	require.NoError(t, err)

	pkg, err := repo.AddPackage(ev.ID, PackageInput{Name: "Classic", Price: 100})
	require.NoError(t, err)
	bookings := 5
	revenue := 500.0
	_, err = repo.UpdatePackage(pkg.ID, PackageUpdate{Bookings: &bookings, Revenue: &revenue})
	require.NoError(t, err)

	clone, err := repo.ClonePackage(pkg.ID)
	require.NoError(t, err)

	assert.NotEqual(t, pkg.ID, clone.ID)
	assert.Equal(t, "Classic (Copy)", clone.Name)
	assert.Equal(t, PackageStatusDraft, clone.Status)
	assert.Zero(t, clone.Bookings)
	assert.Zero(t, clone.Revenue)
	assert.Equal(t, 100.0, clone.Price)

	// The clone lands in the same owning event, never a different one.
	events := repo.Events()
	assert.Len(t, events[0].Packages, 2)
	assert.Empty(t, events[1].Packages)
	assert.Equal(t, ev.ID, clone.EventID)
	_ = other
}

func TestReturnedEventsDoNotAliasRepositoryState(t *testing.T) {
	repo, _ := newTestRepo(t)

	ev, err := repo.AddEvent(Input{Title: "Brunch", Images: []string{"a.jpg"}})
	require.NoError(t, err)
	_, err = repo.AddPackage(ev.ID, PackageInput{Name: "Classic"})
	require.NoError(t, err)

	leaked := repo.Events()
	leaked[0].Title = "Mutated"
	leaked[0].Images[0] = "mutated.jpg"
	leaked[0].Packages[0].Name = "Mutated"

	events := repo.Events()
	assert.Equal(t, "Brunch", events[0].Title)
	assert.Equal(t, "a.jpg", events[0].Images[0])
	assert.Equal(t, "Classic", events[0].Packages[0].Name)
}

func TestBrunchScenario(t *testing.T) {
	repo, _ := newTestRepo(t)

	ev, err := repo.AddEvent(Input{Title: "Brunch"})
	require.NoError(t, err)

	pkg, err := repo.AddPackage(ev.ID, PackageInput{Name: "Classic", Price: 100})
	require.NoError(t, err)

	clone, err := repo.ClonePackage(pkg.ID)
	require.NoError(t, err)

	events := repo.Events()
	require.Len(t, events, 1)
	require.Len(t, events[0].Packages, 2)
	assert.Equal(t, "Classic (Copy)", clone.Name)
	assert.Equal(t, PackageStatusDraft, clone.Status)
	assert.Zero(t, clone.Bookings)
}

func TestPersistFailureLeavesStateUnchanged(t *testing.T) {
	st := &failingStore{Store: store.NewMemoryStore()}
	repo := NewRepository(st, identity.NewSequence("id"))
	require.NoError(t, repo.Load("merchant-1"))

	ev, err := repo.AddEvent(Input{Title: "Brunch"})
	require.NoError(t, err)

	st.fail = true

	_, err = repo.AddEvent(Input{Title: "Dinner"})
	require.Error(t, err)
	var perr *store.PersistenceError
	assert.True(t, errors.As(err, &perr), "storage failures surface as PersistenceError")

	title := "X"
	_, err = repo.UpdateEvent(ev.ID, Update{Title: &title})
	require.Error(t, err)

	st.fail = false
	events := repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Brunch", events[0].Title)
}

// failingStore wraps a Store and fails every Save while fail is set.
type failingStore struct {
	store.Store
	fail bool
}

func (s *failingStore) Save(key string, value interface{}) error {
	if s.fail {
		return &store.PersistenceError{Op: "save", Key: key, Err: errors.New("disk full")}
	}
	return s.Store.Save(key, value)
}
