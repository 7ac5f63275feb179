package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sumamakhan761/vendor-management/internal/domain"
	"github.com/sumamakhan761/vendor-management/internal/store"
	"github.com/sumamakhan761/vendor-management/pkg/googleauth"
)

// IdentityVerifier verifies a Google sign-in credential.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*googleauth.Identity, error)
}

// AuthService exchanges Google credentials for sessions.
type AuthService struct {
	verifier IdentityVerifier
	users    store.UserRepository
	sessions *SessionManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(verifier IdentityVerifier, users store.UserRepository, sessions *SessionManager) *AuthService {
	return &AuthService{verifier: verifier, users: users, sessions: sessions}
}

// SignInWithGoogle verifies credential, records the user and issues a session token.
func (s *AuthService) SignInWithGoogle(ctx context.Context, credential string) (string, *domain.Session, error) {
	if strings.TrimSpace(credential) == "" {
		return "", nil, fmt.Errorf("%w: credential is required", ErrInvalidLogin)
	}

	identity, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		log.Printf("level=warn component=auth_service msg=\"google credential rejected\" err=%v", err)
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidLogin, err)
	}

	user, err := s.users.UpsertGoogleUser(ctx, &domain.User{
		GoogleSubject: identity.Subject,
		Email:         identity.Email,
		Name:          identity.Name,
		Image:         identity.Picture,
	})
	if err != nil {
		log.Printf("level=error component=auth_service msg=\"user upsert failed\" err=%v", err)
		return "", nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	token, session, err := s.sessions.Issue(user)
	if err != nil {
		return "", nil, err
	}
	log.Printf("level=info component=auth_service msg=\"user signed in\" user_id=%s", user.ID)
	return token, session, nil
}

// SignOut revokes session. Revocation failures are logged; the caller still clears
// the client cookie.
func (s *AuthService) SignOut(ctx context.Context, session *domain.Session) {
	if session == nil {
		return
	}
	if err := s.sessions.Revoke(ctx, session); err != nil {
		log.Printf("level=warn component=auth_service msg=\"session revocation failed\" session_id=%s err=%v", session.ID, err)
		return
	}
	log.Printf("level=info component=auth_service msg=\"user signed out\" user_id=%s", session.UserID)
}

// ParseSession validates a session token.
func (s *AuthService) ParseSession(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessions.Parse(ctx, token)
}

// Sessions exposes the session manager, mainly for cookie lifetimes.
func (s *AuthService) Sessions() *SessionManager {
	return s.sessions
}
