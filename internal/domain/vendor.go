/**
 * @description
 * This file defines the core domain model for a Vendor. A vendor is a business
 * entity with banking and address details that belongs to exactly one user.
 *
 * @notes
 * - `UserID` links the vendor to its owner in the `users` table and never changes
 *   after creation.
 * - JSON names follow the camelCase contract consumed by the web UI.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vendor represents a vendor record owned by a user.
type Vendor struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	BankAccountNo string    `json:"bankAccountNo"`
	BankName      string    `json:"bankName"`
	AddressLine1  *string   `json:"addressLine1"`
	AddressLine2  string    `json:"addressLine2"`
	City          *string   `json:"city"`
	Country       *string   `json:"country"`
	ZipCode       *string   `json:"zipCode"`
	UserID        uuid.UUID `json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OwnedBy reports whether the vendor belongs to the given user.
func (v *Vendor) OwnedBy(userID uuid.UUID) bool {
	return v != nil && userID != uuid.Nil && v.UserID == userID
}
