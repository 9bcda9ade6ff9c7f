package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prognoza/forecast-platform/internal/user/domain"
	"github.com/prognoza/forecast-platform/pkg/auth"
)

type fakeUserRepo struct {
	users map[uint]*domain.User
}

func (r *fakeUserRepo) Create(user *domain.User) error { return nil }

func (r *fakeUserRepo) FindByID(id uint) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

func (r *fakeUserRepo) FindByHostedID(hostedID string) (*domain.User, error) {
	for _, u := range r.users {
		if u.HostedID == hostedID {
			return u, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *fakeUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("record not found")
}

func (r *fakeUserRepo) FindAll(limit, offset int) ([]domain.User, error) { return nil, nil }
func (r *fakeUserRepo) Update(user *domain.User) error                   { return nil }
func (r *fakeUserRepo) Delete(id uint) error                             { return nil }
func (r *fakeUserRepo) Count() (int64, error)                            { return 0, nil }

func uintPtr(v uint) *uint { return &v }

func setupSecrets(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("HOSTED_AUTH_JWT_SECRET", "hosted-secret")
	t.Cleanup(func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("HOSTED_AUTH_JWT_SECRET")
	})
}

func runMiddleware(t *testing.T, repo domain.UserRepository, authHeader string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var captured *http.Request
	handler := NewAuthenticator(repo).Middleware(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)

	return rec, captured
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	msg, _ := body["error"].(string)
	return msg
}

func TestMiddlewareMissingHeader(t *testing.T) {
	rec, _ := runMiddleware(t, &fakeUserRepo{}, "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if got := errorMessage(t, rec); got != ErrMissingAuthHeader {
		t.Errorf("expected %q, got %q", ErrMissingAuthHeader, got)
	}
}

func TestMiddlewareMalformedAndInvalidTokens(t *testing.T) {
	setupSecrets(t)

	for _, header := range []string{"Token abc", "Bearer", "Bearer not-a-jwt"} {
		rec, _ := runMiddleware(t, &fakeUserRepo{}, header)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
		if got := errorMessage(t, rec); got != ErrInvalidToken {
			t.Errorf("header %q: expected %q, got %q", header, ErrInvalidToken, got)
		}
	}
}

func TestMiddlewareLegacySessionLoadsUser(t *testing.T) {
	setupSecrets(t)

	repo := &fakeUserRepo{users: map[uint]*domain.User{
		7: {ID: 7, Email: "user@example.com", Role: "user", OrganizationID: uintPtr(3), IsActive: true},
	}}

	token, err := auth.GenerateToken(7, "user@example.com", "user", uintPtr(3))
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	rec, captured := runMiddleware(t, repo, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if id, ok := UserIDFromContext(captured.Context()); !ok || id != 7 {
		t.Errorf("expected user id 7 in context, got %d (ok=%v)", id, ok)
	}
	if orgID, ok := OrgIDFromContext(captured.Context()); !ok || orgID != 3 {
		t.Errorf("expected organization id 3 in context, got %d (ok=%v)", orgID, ok)
	}
}

func TestMiddlewareHostedSessionResolvesByHostedID(t *testing.T) {
	setupSecrets(t)

	repo := &fakeUserRepo{users: map[uint]*domain.User{
		12: {
			ID:       12,
			HostedID: "6f1e6f74-9f6c-4d4b-9f2f-5a8a54f9f001",
			Email:    "hosted@example.com",
			Role:     "user",
			IsActive: true,
		},
	}}

	claims := auth.HostedClaims{
		Email: "hosted@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "6f1e6f74-9f6c-4d4b-9f2f-5a8a54f9f001",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("hosted-secret"))
	if err != nil {
		t.Fatalf("failed to sign hosted token: %v", err)
	}

	rec, captured := runMiddleware(t, repo, "Bearer "+token)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if id, ok := UserIDFromContext(captured.Context()); !ok || id != 12 {
		t.Errorf("expected local user id 12 resolved from hosted id, got %d (ok=%v)", id, ok)
	}
	if _, ok := OrgIDFromContext(captured.Context()); ok {
		t.Error("user without organization must not get an org id in context")
	}
}

func TestMiddlewareRejectsInactiveUser(t *testing.T) {
	setupSecrets(t)

	repo := &fakeUserRepo{users: map[uint]*domain.User{
		7: {ID: 7, Email: "user@example.com", Role: "user", IsActive: false},
	}}

	token, err := auth.GenerateToken(7, "user@example.com", "user", nil)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	rec, _ := runMiddleware(t, repo, "Bearer "+token)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for deactivated user, got %d", rec.Code)
	}
}

func TestAdminMiddlewareRejectsNonAdmin(t *testing.T) {
	setupSecrets(t)

	repo := &fakeUserRepo{users: map[uint]*domain.User{
		7: {ID: 7, Email: "user@example.com", Role: "user", IsActive: true},
		8: {ID: 8, Email: "admin@example.com", Role: domain.RoleAdmin, IsActive: true},
	}}

	authenticator := NewAuthenticator(repo)
	handler := authenticator.AdminMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	userToken, _ := auth.GenerateToken(7, "user@example.com", "user", nil)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", rec.Code)
	}

	adminToken, _ := auth.GenerateToken(8, "admin@example.com", domain.RoleAdmin, nil)
	req = httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin, got %d", rec.Code)
	}
}
