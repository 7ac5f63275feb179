/**
 * @description
 * SessionManager mints and validates the service's own session tokens. A session is
 * an HS256 JWT whose `jti` identifies it for sign-out and whose `sub` is the internal
 * user id. Signed-out sessions are remembered in a revocation store until they expire.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: signing and parsing of session tokens.
 */
package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sumamakhan761/vendor-management/internal/domain"
	"github.com/sumamakhan761/vendor-management/internal/store"
)

// SessionIssuer is the `iss` claim of every session token.
const SessionIssuer = "vendor-management"

type sessionClaims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues, parses and revokes session tokens.
type SessionManager struct {
	secret      []byte
	ttl         time.Duration
	revocations store.SessionRevocationStore
	now         func() time.Time
}

// NewSessionManager creates a SessionManager. revocations may be nil, in which case
// sign-out only clears the client cookie.
func NewSessionManager(secret string, ttl time.Duration, revocations store.SessionRevocationStore) *SessionManager {
	return &SessionManager{
		secret:      []byte(secret),
		ttl:         ttl,
		revocations: revocations,
		now:         time.Now,
	}
}

// TTL returns the lifetime of newly issued sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Issue mints a signed session token for user.
func (m *SessionManager) Issue(user *domain.User) (string, *domain.Session, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", nil, fmt.Errorf("%w: user id is required", ErrInvalidSession)
	}

	now := m.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Image:     user.Image,
		ExpiresAt: now.Add(m.ttl).Truncate(time.Second),
	}

	claims := sessionClaims{
		Email:   session.Email,
		Name:    session.Name,
		Picture: session.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   user.ID.String(),
			Issuer:    SessionIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session: %w", err)
	}
	return token, session, nil
}

// Parse validates a session token. A token with a missing or malformed subject still
// yields a session, one that reports HasUserID() == false.
func (m *SessionManager) Parse(ctx context.Context, token string) (*domain.Session, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(SessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	claims := &sessionClaims{}
	parsed, err := parser.ParseWithClaims(strings.TrimSpace(token), claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: session id missing", ErrInvalidSession)
	}

	if m.revocations != nil {
		revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			// Fail open.
			log.Printf("level=warn component=session msg=\"revocation lookup failed; accepting session\" session_id=%s err=%v", claims.ID, err)
		} else if revoked {
			return nil, fmt.Errorf("%w: session revoked", ErrInvalidSession)
		}
	}

	session := &domain.Session{
		ID:    claims.ID,
		Email: claims.Email,
		Name:  claims.Name,
		Image: claims.Picture,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	if userID, err := uuid.Parse(claims.Subject); err == nil {
		session.UserID = userID
	}
	return session, nil
}

// Revoke marks session as signed out for the rest of its lifetime.
func (m *SessionManager) Revoke(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || m.revocations == nil {
		return nil
	}
	ttl := session.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	if err := m.revocations.Revoke(ctx, session.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
