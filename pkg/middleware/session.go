/**
 * @description
 * This package provides middleware for the HTTP server, specifically for resolving
 * the caller's session. It never rejects a request itself: handlers decide what an
 * absent session means for them.
 */
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sumamakhan761/vendor-management/internal/domain"
)

// AuthContextKey is a custom type for the context key to avoid collisions.
type AuthContextKey string

const (
	// SessionKey is the key used to store the caller's session in the request context.
	SessionKey AuthContextKey = "session"
	// SessionTokenKey is the key used to store the raw session token in the request context.
	SessionTokenKey AuthContextKey = "sessionToken"
)

// SessionCookieName is the cookie that carries the session token for browsers.
const SessionCookieName = "vendor_session"

// UserIDHeader is honoured only when header fallback is enabled.
const UserIDHeader = "X-User-Id"

// SessionParser validates a raw session token.
type SessionParser interface {
	ParseSession(ctx context.Context, token string) (*domain.Session, error)
}

// SessionMiddleware attaches the session from the Authorization bearer token or the
// session cookie to the request context. For controlled local environments a bare
// X-User-Id header can stand in for a session.
func SessionMiddleware(parser SessionParser, allowHeaderFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := sessionToken(r); token != "" {
				session, err := parser.ParseSession(ctx, token)
				if err != nil {
					log.Printf("level=info component=auth msg=\"session rejected\" path=%s err=%v", r.URL.Path, err)
				} else {
					ctx = context.WithValue(ctx, SessionKey, session)
					ctx = context.WithValue(ctx, SessionTokenKey, token)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if allowHeaderFallback {
				if raw := strings.TrimSpace(r.Header.Get(UserIDHeader)); raw != "" {
					session := &domain.Session{ID: "header:" + raw}
					if userID, err := uuid.Parse(raw); err == nil {
						session.UserID = userID
					}
					ctx = context.WithValue(ctx, SessionKey, session)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext retrieves the session from the request context.
// It returns nil if the request carries no valid session.
func GetSessionFromContext(ctx context.Context) *domain.Session {
	session, ok := ctx.Value(SessionKey).(*domain.Session)
	if !ok {
		return nil
	}
	return session
}

// GetSessionTokenFromContext retrieves the raw session token from the request context.
func GetSessionTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(SessionTokenKey).(string)
	return token
}

func sessionToken(r *http.Request) string {
	if authHeader := strings.TrimSpace(r.Header.Get("Authorization")); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}
