// internal/seed/seed.go
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"sttbackend/internal/event"
	"sttbackend/internal/logger"
)

// Catalog is the on-disk shape of a demo catalog: the sample events and
// packages a fresh merchant account is populated with.
type Catalog struct {
	Events []EventSeed `json:"events"`
}

type EventSeed struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	EventType   string        `json:"eventType"`
	Date        string        `json:"date"`
	StartTime   string        `json:"startTime"`
	EndTime     string        `json:"endTime"`
	Capacity    int           `json:"capacity"`
	Images      []string      `json:"images"`
	Packages    []PackageSeed `json:"packages"`
}

type PackageSeed struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	MaxGuests     int      `json:"maxGuests"`
	MinGuests     int      `json:"minGuests"`
	Features      []string `json:"features"`
	Inclusions    []string `json:"inclusions"`
	Exclusions    []string `json:"exclusions"`
}

// Service loads and caches a demo catalog file.
type Service struct {
	catalog    Catalog
	lastLoaded time.Time
	mutex      sync.RWMutex
}

func NewService() *Service {
	return &Service{}
}

// LoadCatalog reads and validates the catalog file. Invalid entries are
// skipped with a warning rather than failing the whole load.
func (s *Service) LoadCatalog(path string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	logger.LogInfo("Loading demo catalog from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to parse catalog file: %w", err)
	}

	valid := catalog.Events[:0]
	for _, ev := range catalog.Events {
		if ev.Title == "" {
			logger.LogWarn("Skipping catalog event with empty title")
			continue
		}
		valid = append(valid, ev)
	}
	catalog.Events = valid

	s.catalog = catalog
	s.lastLoaded = time.Now()

	logger.LogInfo("Loaded demo catalog: %d events, %d packages",
		len(catalog.Events), s.packageCountLocked())

	return nil
}

// Apply inserts the catalog through the repository so every seeded entity
// gets a real id, owner and timestamps. Returns counts of created events
// and packages.
func (s *Service) Apply(repo *event.Repository) (int, int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var events, packages int
	for _, seed := range s.catalog.Events {
		ev, err := repo.AddEvent(event.Input{
			Title:       seed.Title,
			Description: seed.Description,
			EventType:   seed.EventType,
			Date:        seed.Date,
			StartTime:   seed.StartTime,
			EndTime:     seed.EndTime,
			Capacity:    seed.Capacity,
			Images:      seed.Images,
		})
		if err != nil {
			return events, packages, fmt.Errorf("failed to seed event %q: %w", seed.Title, err)
		}
		events++

		for _, ps := range seed.Packages {
			_, err := repo.AddPackage(ev.ID, event.PackageInput{
				Name:          ps.Name,
				Description:   ps.Description,
				Price:         ps.Price,
				OriginalPrice: ps.OriginalPrice,
				MaxGuests:     ps.MaxGuests,
				MinGuests:     ps.MinGuests,
				Features:      ps.Features,
				Inclusions:    ps.Inclusions,
				Exclusions:    ps.Exclusions,
			})
			if err != nil {
				return events, packages, fmt.Errorf("failed to seed package %q: %w", ps.Name, err)
			}
			packages++
		}
	}

	logger.LogInfo("Seeded %d events and %d packages", events, packages)
	return events, packages, nil
}

// EventCount reports how many events the loaded catalog holds.
func (s *Service) EventCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.catalog.Events)
}

func (s *Service) packageCountLocked() int {
	var n int
	for _, ev := range s.catalog.Events {
		n += len(ev.Packages)
	}
	return n
}
