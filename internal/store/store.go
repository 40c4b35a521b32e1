// internal/store/store.go
package store

import "fmt"

// Persisted state layout. Every key maps to one JSON-serialized value,
// scoped to a single device: nothing here is shared or synchronized.
const (
	KeyMerchant     = "merchant"
	KeySessionToken = "merchant_session"
	KeyEvents       = "merchant_events"
	KeyVenues       = "merchant_venues"
	KeyBookings     = "merchant_bookings"
)

// Store is a durable key-value storage abstraction. Values are JSON-encoded
// on Save and decoded on Load. A corrupted stored value is treated as absent
// rather than surfaced as an error, so callers always get a usable zero state.
type Store interface {
	// Load decodes the value stored under key into out. It reports whether a
	// usable value was present. Decoding failures fail safe to absent.
	Load(key string, out interface{}) (bool, error)

	// Save encodes value and fully overwrites whatever was stored under key.
	Save(key string, value interface{}) error

	// Remove deletes the value under key. Removing an absent key is not an error.
	Remove(key string) error
}

// PersistenceError wraps an underlying storage write failure so callers can
// distinguish it from business errors.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed for key %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
