package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a person who signed in with Google. GoogleSubject is the stable `sub`
// claim of the Google ID token; ID is the internal key vendors reference.
type User struct {
	ID            uuid.UUID `json:"id"`
	GoogleSubject string    `json:"-"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Image         string    `json:"image,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
