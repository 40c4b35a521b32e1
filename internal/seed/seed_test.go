// internal/seed/seed_test.go
package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sttbackend/internal/event"
	"sttbackend/internal/identity"
	"sttbackend/internal/store"
)

const testCatalog = `{
	"events": [
		{
			"title": "Sunset Rooftop Dinner",
			"eventType": "dining",
			"date": "2026-09-12",
			"startTime": "18:00",
			"endTime": "22:00",
			"capacity": 40,
			"packages": [
				{"name": "Classic", "price": 100, "maxGuests": 4, "minGuests": 2},
				{"name": "Deluxe", "price": 220, "originalPrice": 260, "maxGuests": 8, "minGuests": 4}
			]
		},
		{
			"title": "Wine Tasting Evening",
			"eventType": "tasting",
			"capacity": 20,
			"packages": []
		},
		{
			"title": "",
			"eventType": "broken entry, should be skipped"
		}
	]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	svc := NewService()
	require.NoError(t, svc.LoadCatalog(writeCatalog(t, testCatalog)))

	// The empty-title entry is dropped during validation.
	assert.Equal(t, 2, svc.EventCount())
}

func TestLoadCatalogErrors(t *testing.T) {
	svc := NewService()

	err := svc.LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	err = svc.LoadCatalog(writeCatalog(t, "{not json"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	svc := NewService()
	require.NoError(t, svc.LoadCatalog(writeCatalog(t, testCatalog)))

	repo := event.NewRepository(store.NewMemoryStore(), identity.NewSequence("id"))
	require.NoError(t, repo.Load("merchant-1"))

	events, packages, err := svc.Apply(repo)
	require.NoError(t, err)
	assert.Equal(t, 2, events)
	assert.Equal(t, 2, packages)

	got := repo.Events()
	require.Len(t, got, 2)

	// Seeded entities go through the repository, so they carry real ids,
	// ownership and lifecycle defaults.
	first := got[0]
	assert.Equal(t, "Sunset Rooftop Dinner", first.Title)
	assert.Equal(t, "merchant-1", first.MerchantID)
	assert.Equal(t, event.StatusDraft, first.Status)
	require.Len(t, first.Packages, 2)
	assert.Equal(t, first.ID, first.Packages[0].EventID)
	assert.Equal(t, event.PackageStatusActive, first.Packages[0].Status)
	require.NotNil(t, first.Packages[1].OriginalPrice)
	assert.Equal(t, 260.0, *first.Packages[1].OriginalPrice)

	assert.Equal(t, "Wine Tasting Evening", got[1].Title)
	assert.Empty(t, got[1].Packages)
}
