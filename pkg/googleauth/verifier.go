/**
 * @description
 * This package verifies Google ID tokens produced by Google sign-in. Tokens are
 * RS256 JWTs signed by keys published on Google's JWKS endpoint; keys are cached
 * by key id and refreshed on a miss or after the cache TTL.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: JWT parsing and signature validation.
 */
package googleauth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid google id token")

var validIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// Identity is the subset of Google ID token claims the service relies on.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Verifier validates Google ID tokens for one OAuth client id.
type Verifier struct {
	jwksURL    string
	clientID   string
	httpClient *http.Client
	cacheTTL   time.Duration

	mu       sync.RWMutex
	expires  time.Time
	keyByKID map[string]*rsa.PublicKey
}

// NewVerifier creates a verifier that accepts tokens issued for clientID.
func NewVerifier(jwksURL, clientID string) *Verifier {
	return &Verifier{
		jwksURL:    strings.TrimSpace(jwksURL),
		clientID:   strings.TrimSpace(clientID),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cacheTTL:   10 * time.Minute,
		keyByKID:   map[string]*rsa.PublicKey{},
	}
}

// Verify checks signature, issuer, audience, expiry and email verification of an
// ID token and returns the identity it asserts.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Identity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("%w: google client id is not configured", ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(v.clientID),
	)
	claims := jwt.MapClaims{}

	token, err := parser.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || strings.TrimSpace(kid) == "" {
			return nil, errors.New("missing kid in token")
		}
		return v.getPublicKey(ctx, kid)
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	issuer, _ := claims["iss"].(string)
	if !issuerAllowed(issuer) {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	}

	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return nil, fmt.Errorf("%w: subject claim missing", ErrInvalidToken)
	}

	email, _ := claims["email"].(string)
	if email != "" && !emailVerified(claims["email_verified"]) {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}

	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)

	return &Identity{
		Subject: sub,
		Email:   strings.ToLower(strings.TrimSpace(email)),
		Name:    strings.TrimSpace(name),
		Picture: strings.TrimSpace(picture),
	}, nil
}

func issuerAllowed(issuer string) bool {
	for _, allowed := range validIssuers {
		if issuer == allowed {
			return true
		}
	}
	return false
}

// Google has sent email_verified both as a bool and as the string "true".
func emailVerified(claim any) bool {
	switch v := claim.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}

func (v *Verifier) getPublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if key := v.getCachedKey(kid); key != nil {
		return key, nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	if key := v.getCachedKey(kid); key != nil {
		return key, nil
	}

	return nil, fmt.Errorf("key not found for kid %s", kid)
}

func (v *Verifier) getCachedKey(kid string) *rsa.PublicKey {
	now := time.Now()

	v.mu.RLock()
	defer v.mu.RUnlock()

	if now.After(v.expires) {
		return nil
	}
	return v.keyByKID[kid]
}

func (v *Verifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jwks endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}

	keys := map[string]*rsa.PublicKey{}
	for _, key := range payload.Keys {
		if key.Kid == "" || key.Kty != "RSA" || key.N == "" || key.E == "" {
			continue
		}
		pub, err := parseRSAPublicKey(key.N, key.E)
		if err != nil {
			continue
		}
		keys[key.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("no usable RSA keys in JWKS")
	}

	v.mu.Lock()
	v.keyByKID = keys
	v.expires = time.Now().Add(v.cacheTTL)
	v.mu.Unlock()

	return nil
}

func parseRSAPublicKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	var exp uint64
	for _, b := range eb {
		exp = (exp << 8) | uint64(b)
	}
	if exp == 0 {
		return nil, errors.New("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(exp),
	}, nil
}
