/**
 * @description
 * This file defines the interfaces for the data access layer (repositories).
 * The application service depends on these interfaces, not on the concrete
 * PostgreSQL or Redis implementations, which keeps it easy to test with fakes.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sumamakhan761/vendor-management/internal/domain"
)

var (
	// ErrVendorNotFound is returned when no vendor matches the requested id
	// (and owner, for scoped writes).
	ErrVendorNotFound = errors.New("vendor not found")
)

// VendorRepository defines the contract for database operations on vendors.
type VendorRepository interface {
	ListVendorsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error)
	CreateVendor(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error)
	FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error)
	UpdateVendor(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error)
	DeleteVendor(ctx context.Context, vendorID uuid.UUID, userID uuid.UUID) error
}

// UserRepository defines the contract for persisting signed-in users.
type UserRepository interface {
	UpsertGoogleUser(ctx context.Context, user *domain.User) (*domain.User, error)
}

// SessionRevocationStore remembers signed-out session ids until they would have expired.
type SessionRevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}
