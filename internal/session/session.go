// internal/session/session.go
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"sttbackend/internal/logger"
	"sttbackend/internal/store"
)

// Identity is the authenticated principal held for the current session.
type Identity struct {
	MerchantID string `json:"merchantId"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Store holds the current merchant/admin identity. The identity is carried
// in an HS256-signed token persisted next to the merchant record: a missing,
// tampered or expired token fails safe to no session.
type Store struct {
	store   store.Store
	secret  []byte
	ttl     time.Duration
	current *Identity
}

func NewStore(st store.Store, secret string, ttl time.Duration) *Store {
	return &Store{store: st, secret: []byte(secret), ttl: ttl}
}

// Load restores the session from storage at startup. Any token problem
// clears the stale state rather than erroring.
func (s *Store) Load() error {
	s.current = nil

	var token string
	found, err := s.store.Load(store.KeySessionToken, &token)
	if err != nil {
		return fmt.Errorf("failed to load session token: %w", err)
	}
	if !found || token == "" {
		return nil
	}

	ident, err := s.verify(token)
	if err != nil {
		logger.LogWarn("Discarding invalid session token: %v", err)
		if err := s.store.Remove(store.KeySessionToken); err != nil {
			return err
		}
		return nil
	}

	s.current = &ident
	logger.LogInfo("Restored session for merchant %s (%s)", ident.MerchantID, ident.Role)
	return nil
}

// Set makes ident the current session and persists a freshly signed token.
func (s *Store) Set(ident Identity) error {
	token, err := s.sign(ident)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	if err := s.store.Save(store.KeySessionToken, token); err != nil {
		return err
	}

	s.current = &ident
	return nil
}

// Clear drops the session from memory and storage. Idempotent.
func (s *Store) Clear() error {
	s.current = nil
	return s.store.Remove(store.KeySessionToken)
}

// Current returns the active identity, if any.
func (s *Store) Current() (Identity, bool) {
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

func (s *Store) sign(ident Identity) (string, error) {
	jti, err := randomTokenID()
	if err != nil {
		return "", err
	}

	now := time.Now()
	c := claims{
		Email: ident.Email,
		Role:  ident.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.MerchantID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

func (s *Store) verify(token string) (Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !parsed.Valid {
		return Identity{}, fmt.Errorf("session token invalid")
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("session token missing subject")
	}

	return Identity{MerchantID: c.Subject, Email: c.Email, Role: c.Role}, nil
}

// randomTokenID generates an opaque unique id for each issued token.
func randomTokenID() (string, error) {
	bytes := make([]byte, 16)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
