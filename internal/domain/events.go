package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for vendor change events.
const (
	VendorCreatedEvent = "vendor.created"
	VendorUpdatedEvent = "vendor.updated"
	VendorDeletedEvent = "vendor.deleted"
)

// VendorChangedEvent is published after a vendor is created, updated or deleted.
// Vendor is nil for deletions.
type VendorChangedEvent struct {
	Type       string    `json:"type"`
	VendorID   uuid.UUID `json:"vendor_id"`
	UserID     uuid.UUID `json:"user_id"`
	Vendor     *Vendor   `json:"vendor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
