package core

import (
	"errors"
	"fmt"

	"attendance.service/internal/ports/credential"
	"golang.org/x/crypto/bcrypt"
)

// DefaultAdminSecret is the built-in credential used to bootstrap a fresh
// install before any rotation has happened. A deliberately weak default,
// kept for compatibility with existing deployments; rotate it on first use.
const DefaultAdminSecret = "admin"

// CredentialGuard gates administrative operations behind a single shared
// secret, stored as a bcrypt hash in the injected store.
type CredentialGuard struct {
	store credential.Store
}

// NewCredentialGuard creates a guard backed by the given store.
func NewCredentialGuard(store credential.Store) *CredentialGuard {
	return &CredentialGuard{store: store}
}

// Bootstrap persists a hash of the default secret when no credential exists
// yet. Existing credentials are left alone. A corrupt store is surfaced as
// a fatal configuration error, never silently replaced.
func (g *CredentialGuard) Bootstrap() error {
	_, err := g.store.Load()
	if err == nil {
		return nil
	}
	if !errors.Is(err, credential.ErrNotFound) {
		return fmt.Errorf("failed to load credential: %w", err)
	}
	return g.Rotate(DefaultAdminSecret)
}

// Verify reports whether the presented password matches the stored
// credential. bcrypt re-derives the hash with the stored salt and compares
// in constant time. A missing credential triggers the default bootstrap
// before verification.
func (g *CredentialGuard) Verify(password string) (bool, error) {
	hash, err := g.store.Load()
	if errors.Is(err, credential.ErrNotFound) {
		if err := g.Bootstrap(); err != nil {
			return false, err
		}
		hash, err = g.store.Load()
		if err != nil {
			return false, fmt.Errorf("failed to load credential after bootstrap: %w", err)
		}
	} else if err != nil {
		return false, fmt.Errorf("failed to load credential: %w", err)
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// Rotate replaces the stored credential wholesale with a hash of the new
// password. The store's save is atomic; there is no partial update.
func (g *CredentialGuard) Rotate(newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash credential: %w", err)
	}
	if err := g.store.Save(string(hash)); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}
