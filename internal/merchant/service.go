// internal/merchant/service.go
package merchant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"sttbackend/internal/event"
	"sttbackend/internal/identity"
	"sttbackend/internal/logger"
	"sttbackend/internal/session"
	"sttbackend/internal/store"
)

// ErrNoSession is returned by operations that need an authenticated merchant.
var ErrNoSession = errors.New("no active session")

const minPasswordLength = 6

// Fixed platform-level statistics for the reserved super-admin identity.
const (
	adminBusinessName = "STT Platform"
	adminPhone        = "+1 (555) 010-0000"
	adminJoinedDate   = "January 2023"
	adminRevenue      = 2850000
	adminBookings     = 18450
	adminEvents       = 324
	adminRating       = 4.9
	adminSubscription = "Enterprise"
)

// RegisterInput carries the registration form fields. VenueData is an
// opaque payload stored untouched under its own key.
type RegisterInput struct {
	BusinessName string
	Email        string
	Phone        string
	Password     string
	VenueData    json.RawMessage
}

// ProfileService owns the Merchant aggregate: registration, login, profile
// updates and logout. A successful login or registration establishes the
// session and loads the event repository for the new identity.
type ProfileService struct {
	store      store.Store
	ids        identity.Generator
	session    *session.Store
	events     *event.Repository
	adminEmail string
	adminKey   string
	current    *Merchant
}

func NewProfileService(st store.Store, ids identity.Generator, sess *session.Store, events *event.Repository, adminEmail, adminKey string) *ProfileService {
	return &ProfileService{
		store:      st,
		ids:        ids,
		session:    sess,
		events:     events,
		adminEmail: adminEmail,
		adminKey:   adminKey,
	}
}

// Load restores the merchant aggregate for an already-restored session.
// A stored merchant that does not match the session identity is discarded.
func (s *ProfileService) Load() error {
	s.current = nil

	ident, ok := s.session.Current()
	if !ok {
		return nil
	}

	var m Merchant
	found, err := s.store.Load(store.KeyMerchant, &m)
	if err != nil {
		return fmt.Errorf("failed to load merchant: %w", err)
	}
	if !found {
		logger.LogWarn("Session for merchant %s has no stored profile, clearing", ident.MerchantID)
		return s.session.Clear()
	}
	if m.ID != ident.MerchantID {
		logger.LogWarn("Stored merchant %s does not match session %s, clearing", m.ID, ident.MerchantID)
		return s.session.Clear()
	}

	s.current = &m
	return s.events.Load(m.ID)
}

// Current returns the active merchant, if any.
func (s *ProfileService) Current() (Merchant, bool) {
	if s.current == nil {
		return Merchant{}, false
	}
	return *s.current, true
}

// Register validates the form, creates a PendingApproval merchant on the
// Free tier, persists it and establishes the session. Validation failures
// return without mutating any state.
func (s *ProfileService) Register(in RegisterInput) (Merchant, error) {
	if err := validateRegistration(in); err != nil {
		return Merchant{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Merchant{}, fmt.Errorf("failed to hash password: %w", err)
	}

	m := Merchant{
		ID:               s.ids.NextID(),
		Email:            in.Email,
		BusinessName:     in.BusinessName,
		Phone:            in.Phone,
		JoinedDate:       time.Now().Format("January 2006"),
		Status:           StatusPendingApproval,
		SubscriptionType: "Free",
		Role:             RoleMerchant,
		PasswordHash:     string(hash),
	}

	if err := s.establish(m); err != nil {
		return Merchant{}, err
	}

	if len(in.VenueData) > 0 {
		if err := s.store.Save(store.KeyVenues, in.VenueData); err != nil {
			return Merchant{}, err
		}
	}

	logger.LogInfo("Registered merchant %s (%s)", m.ID, m.BusinessName)
	return m, nil
}

// Login resolves the reserved platform-admin identity, or synthesizes a
// regular merchant from the email's local part. This stands in for a real
// credential check against a durable identity store; the surrounding
// contracts hold either way.
func (s *ProfileService) Login(email, password string) (Merchant, error) {
	if len(password) < minPasswordLength {
		return Merchant{}, &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	if !strings.Contains(email, "@") {
		return Merchant{}, &AuthError{Message: "invalid email address"}
	}

	var m Merchant
	if email == s.adminEmail && password == s.adminKey {
		m = Merchant{
			ID:               s.ids.NextID(),
			Email:            email,
			BusinessName:     adminBusinessName,
			Phone:            adminPhone,
			JoinedDate:       adminJoinedDate,
			Status:           StatusSuperAdmin,
			SubscriptionType: adminSubscription,
			TotalRevenue:     adminRevenue,
			TotalBookings:    adminBookings,
			TotalEvents:      adminEvents,
			Rating:           adminRating,
			Role:             RoleSuperAdmin,
		}
	} else {
		m = Merchant{
			ID:               s.ids.NextID(),
			Email:            email,
			BusinessName:     deriveBusinessName(email),
			JoinedDate:       time.Now().Format("January 2006"),
			Status:           StatusApproved,
			SubscriptionType: "Free",
			Role:             RoleMerchant,
		}
	}

	if err := s.establish(m); err != nil {
		return Merchant{}, err
	}

	logger.LogInfo("Logged in merchant %s as %s", m.ID, m.Role)
	return m, nil
}

// UpdateMerchant shallow-merges upd into the current merchant and persists.
func (s *ProfileService) UpdateMerchant(upd Update) (Merchant, error) {
	if s.current == nil {
		return Merchant{}, ErrNoSession
	}

	prev := *s.current
	next := prev
	applyUpdate(&next, upd)

	if err := s.store.Save(store.KeyMerchant, next); err != nil {
		return Merchant{}, err
	}
	s.current = &next

	if next.Email != prev.Email {
		if err := s.session.Set(session.Identity{MerchantID: next.ID, Email: next.Email, Role: string(next.Role)}); err != nil {
			return Merchant{}, err
		}
	}

	return next, nil
}

// Logout clears the merchant, events and cached bookings/venues from memory
// and from every merchant-scoped storage key.
func (s *ProfileService) Logout() error {
	s.current = nil
	s.events.Reset()

	if err := s.session.Clear(); err != nil {
		return err
	}
	for _, key := range []string{store.KeyMerchant, store.KeyEvents, store.KeyVenues, store.KeyBookings} {
		if err := s.store.Remove(key); err != nil {
			return err
		}
	}

	logger.LogInfo("Session cleared")
	return nil
}

// establish persists m, points the session at it and loads its events.
func (s *ProfileService) establish(m Merchant) error {
	if err := s.store.Save(store.KeyMerchant, m); err != nil {
		return err
	}
	if err := s.session.Set(session.Identity{MerchantID: m.ID, Email: m.Email, Role: string(m.Role)}); err != nil {
		return err
	}
	s.current = &m
	return s.events.Load(m.ID)
}

func validateRegistration(in RegisterInput) error {
	if strings.TrimSpace(in.BusinessName) == "" {
		return &ValidationError{Field: "businessName", Message: "required"}
	}
	if strings.TrimSpace(in.Email) == "" {
		return &ValidationError{Field: "email", Message: "required"}
	}
	if strings.TrimSpace(in.Phone) == "" {
		return &ValidationError{Field: "phone", Message: "required"}
	}
	if in.Password == "" {
		return &ValidationError{Field: "password", Message: "required"}
	}
	if len(in.Password) < minPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}
	return nil
}

// deriveBusinessName builds a display name from the email's local part:
// non-letters stripped, capitalized, suffixed with "Restaurant".
func deriveBusinessName(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}

	var letters []rune
	for _, r := range local {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToLower(r))
		}
	}
	if len(letters) == 0 {
		return "New Restaurant"
	}
	letters[0] = unicode.ToUpper(letters[0])

	return string(letters) + " Restaurant"
}

func applyUpdate(m *Merchant, upd Update) {
	if upd.Email != nil {
		m.Email = *upd.Email
	}
	if upd.BusinessName != nil {
		m.BusinessName = *upd.BusinessName
	}
	if upd.Phone != nil {
		m.Phone = *upd.Phone
	}
	if upd.Status != nil {
		m.Status = *upd.Status
	}
	if upd.SubscriptionType != nil {
		m.SubscriptionType = *upd.SubscriptionType
	}
	if upd.TotalRevenue != nil {
		m.TotalRevenue = *upd.TotalRevenue
	}
	if upd.TotalBookings != nil {
		m.TotalBookings = *upd.TotalBookings
	}
	if upd.TotalEvents != nil {
		m.TotalEvents = *upd.TotalEvents
	}
	if upd.Rating != nil {
		m.Rating = *upd.Rating
	}
}
