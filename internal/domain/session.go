package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-validated proof of identity attached to a request.
// A session may exist without a user id when it was minted from incomplete claims.
type Session struct {
	ID        string    `json:"-"`
	UserID    uuid.UUID `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Image     string    `json:"image,omitempty"`
	ExpiresAt time.Time `json:"expires"`
}

// HasUserID reports whether the session carries a usable user identifier.
func (s *Session) HasUserID() bool {
	return s != nil && s.UserID != uuid.Nil
}
