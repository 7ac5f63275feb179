package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sumamakhan761/vendor-management/internal/app"
	"github.com/sumamakhan761/vendor-management/internal/config"
	"github.com/sumamakhan761/vendor-management/internal/domain"
	"github.com/sumamakhan761/vendor-management/internal/store"
	"github.com/sumamakhan761/vendor-management/pkg/googleauth"
	"github.com/sumamakhan761/vendor-management/pkg/metrics"
	"github.com/sumamakhan761/vendor-management/pkg/middleware"
)

type memoryVendorRepo struct {
	mu      sync.Mutex
	vendors map[uuid.UUID]domain.Vendor
	clock   time.Time
	failAll error
}

func newMemoryVendorRepo() *memoryVendorRepo {
	return &memoryVendorRepo{vendors: map[uuid.UUID]domain.Vendor{}, clock: time.Now()}
}

func (r *memoryVendorRepo) ListVendorsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Vendor
	for _, v := range r.vendors {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryVendorRepo) CreateVendor(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error) {
	if r.failAll != nil {
		return nil, r.failAll
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Second)
	v := *vendor
	v.CreatedAt, v.UpdatedAt = r.clock, r.clock
	r.vendors[v.ID] = v
	return &v, nil
}

func (r *memoryVendorRepo) FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vendors[vendorID]
	if !ok {
		return nil, store.ErrVendorNotFound
	}
	return &v, nil
}

func (r *memoryVendorRepo) UpdateVendor(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.vendors[vendor.ID]
	if !ok || existing.UserID != vendor.UserID {
		return nil, store.ErrVendorNotFound
	}
	v := *vendor
	v.UpdatedAt = time.Now()
	r.vendors[v.ID] = v
	return &v, nil
}

func (r *memoryVendorRepo) DeleteVendor(ctx context.Context, vendorID uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.vendors[vendorID]
	if !ok || existing.UserID != userID {
		return store.ErrVendorNotFound
	}
	delete(r.vendors, vendorID)
	return nil
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (r *memoryUserRepo) UpsertGoogleUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.GoogleSubject]
	if !ok {
		u = domain.User{ID: uuid.New(), GoogleSubject: user.GoogleSubject}
	}
	u.Email, u.Name = user.Email, user.Name
	r.users[user.GoogleSubject] = u
	return &u, nil
}

type fixedVerifier struct{}

func (fixedVerifier) Verify(ctx context.Context, credential string) (*googleauth.Identity, error) {
	if credential != "good-credential" {
		return nil, googleauth.ErrInvalidToken
	}
	return &googleauth.Identity{Subject: "g-1", Email: "jane@example.com", Name: "Jane"}, nil
}

type testServer struct {
	handler  http.Handler
	repo     *memoryVendorRepo
	sessions *app.SessionManager
}

func newTestServer(t *testing.T, allowHeaderFallback bool) *testServer {
	t.Helper()
	cfg := &config.Config{
		CORSAllowedOrigins:  "http://localhost:3000",
		AllowHeaderFallback: allowHeaderFallback,
	}
	repo := newMemoryVendorRepo()
	sessions := app.NewSessionManager("test-secret", time.Hour, nil)
	auth := app.NewAuthService(fixedVerifier{}, &memoryUserRepo{users: map[string]domain.User{}}, sessions)
	vendors := app.NewVendorService(repo, nil, "vendor.events")

	return &testServer{
		handler:  NewRouter(cfg, vendors, auth, nil, metrics.NewRecorder()),
		repo:     repo,
		sessions: sessions,
	}
}

func (s *testServer) tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, _, err := s.sessions.Issue(&domain.User{ID: userID, Email: "user@example.com"})
	if err != nil {
		t.Fatalf("failed to issue session: %v", err)
	}
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func validVendorBody() map[string]string {
	return map[string]string{
		"name":          "Acme Supplies",
		"bankAccountNo": "0123456789",
		"bankName":      "First Bank",
		"addressLine2":  "Suite 4",
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestCreateThenList(t *testing.T) {
	srv := newTestServer(t, false)
	owner := uuid.New()
	token := srv.tokenFor(t, owner)

	rec := srv.do(t, http.MethodPost, "/api/vendors", token, validVendorBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Vendor
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode vendor: %v", err)
	}
	if created.UserID != owner {
		t.Fatalf("expected owner %s, got %s", owner, created.UserID)
	}

	rec = srv.do(t, http.MethodGet, "/api/vendors", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed []domain.Vendor
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("expected the created vendor in the list, got %+v", listed)
	}
}

func TestListVendors_EmptyArray(t *testing.T) {
	srv := newTestServer(t, false)
	rec := srv.do(t, http.MethodGet, "/api/vendors", srv.tokenFor(t, uuid.New()), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected [], got %s", got)
	}
}

func TestEndpoints_RequireSession(t *testing.T) {
	srv := newTestServer(t, false)
	id := uuid.NewString()

	tests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{method: http.MethodGet, path: "/api/vendors"},
		{method: http.MethodPost, path: "/api/vendors", body: validVendorBody()},
		{method: http.MethodPost, path: "/api/vendors", body: "{not json"},
		{method: http.MethodPut, path: "/api/vendors/" + id, body: validVendorBody()},
		{method: http.MethodDelete, path: "/api/vendors/" + id},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, "", tt.body)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if msg := decodeError(t, rec); msg != "Unauthorized" {
				t.Fatalf("expected Unauthorized, got %q", msg)
			}
		})
	}
}

func TestEndpoints_InvalidTokenIsUnauthenticated(t *testing.T) {
	srv := newTestServer(t, false)
	rec := srv.do(t, http.MethodGet, "/api/vendors", "forged.token.value", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestEndpoints_SessionWithoutUserID(t *testing.T) {
	srv := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/vendors", nil)
	req.Header.Set(middleware.UserIDHeader, "not-a-uuid")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "User ID not found" {
		t.Fatalf("expected User ID not found, got %q", msg)
	}
}

func TestCreateVendor_ValidationAndMalformedBody(t *testing.T) {
	srv := newTestServer(t, false)
	token := srv.tokenFor(t, uuid.New())

	body := validVendorBody()
	body["bankName"] = ""
	rec := srv.do(t, http.MethodPost, "/api/vendors", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing field, got %d", rec.Code)
	}
	var resp errorResponse
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Fields) != 1 || resp.Fields[0] != "bankName" {
		t.Fatalf("expected bankName to be reported, got %+v", resp)
	}

	rec = srv.do(t, http.MethodPost, "/api/vendors", token, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
	if len(srv.repo.vendors) != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestCreateVendor_PersistenceFailureHidesDetail(t *testing.T) {
	srv := newTestServer(t, false)
	srv.repo.failAll = &pgconn.PgError{Code: "23503", ConstraintName: "vendors_user_id_fkey", Detail: "secret detail"}

	rec := srv.do(t, http.MethodPost, "/api/vendors", srv.tokenFor(t, uuid.New()), validVendorBody())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret detail") {
		t.Fatalf("expected store detail to stay out of the response")
	}
	if msg := decodeError(t, rec); msg != "Failed to create vendor" {
		t.Fatalf("expected generic message, got %q", msg)
	}
}

func TestUpdateAndDelete_OwnershipScenarios(t *testing.T) {
	srv := newTestServer(t, false)
	owner := uuid.New()
	intruder := uuid.New()
	ownerToken := srv.tokenFor(t, owner)
	intruderToken := srv.tokenFor(t, intruder)

	rec := srv.do(t, http.MethodPost, "/api/vendors", ownerToken, validVendorBody())
	var created domain.Vendor
	_ = json.NewDecoder(rec.Body).Decode(&created)
	path := "/api/vendors/" + created.ID.String()

	rec = srv.do(t, http.MethodDelete, path, intruderToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign delete, got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodPut, path, intruderToken, map[string]string{"name": "Hijacked"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign update, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/vendors", ownerToken, nil)
	var listed []domain.Vendor
	_ = json.NewDecoder(rec.Body).Decode(&listed)
	if len(listed) != 1 || listed[0].Name != "Acme Supplies" {
		t.Fatalf("expected vendor untouched after foreign attempts, got %+v", listed)
	}

	rec = srv.do(t, http.MethodPut, path, ownerToken, map[string]string{"city": "Lagos"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner update, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated domain.Vendor
	_ = json.NewDecoder(rec.Body).Decode(&updated)
	if updated.City == nil || *updated.City != "Lagos" || updated.Name != "Acme Supplies" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	rec = srv.do(t, http.MethodPut, path, ownerToken, map[string]string{"name": " "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank required field, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodDelete, path, ownerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner delete, got %d", rec.Code)
	}
	var msg messageResponse
	_ = json.NewDecoder(rec.Body).Decode(&msg)
	if msg.Message != "Vendor deleted successfully" {
		t.Fatalf("unexpected delete message %q", msg.Message)
	}

	rec = srv.do(t, http.MethodDelete, path, ownerToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestUpdateVendor_UnknownAndMalformedIDs(t *testing.T) {
	srv := newTestServer(t, false)
	token := srv.tokenFor(t, uuid.New())

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		rec := srv.do(t, http.MethodPut, "/api/vendors/"+id, token, map[string]string{"name": "x"})
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for %s, got %d", id, rec.Code)
		}
		if msg := decodeError(t, rec); msg != "Vendor not found" {
			t.Fatalf("expected Vendor not found, got %q", msg)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, false)

	rec := srv.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"credential": "bad"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for rejected credential, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"credential": "good-credential"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for sign-in, got %d: %s", rec.Code, rec.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("expected an HttpOnly session cookie, got %+v", cookie)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for session lookup, got %d", rec.Code)
	}
	var session SessionResponse
	if err := json.NewDecoder(rec.Body).Decode(&session); err != nil {
		t.Fatalf("failed to decode session: %v", err)
	}
	if session.User == nil || session.User.Email != "jane@example.com" {
		t.Fatalf("unexpected session payload: %+v", session)
	}

	rec = srv.do(t, http.MethodGet, "/api/auth/session", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/auth/signout", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for sign-out, got %d", rec.Code)
	}
}

func TestRouter_HealthMetricsAndNotFound(t *testing.T) {
	srv := newTestServer(t, false)

	rec := srv.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "healthy" {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}

	srv.do(t, http.MethodGet, "/api/vendors", "", nil)
	rec = srv.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected metrics output, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/unknown", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Not found" {
		t.Fatalf("expected JSON not found, got %q", msg)
	}
}
