package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prognoza/forecast-platform/internal/user/domain"
	"github.com/prognoza/forecast-platform/pkg/auth"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	EmailKey   contextKey = "email"
	RoleKey    contextKey = "role"
	OrgIDKey   contextKey = "organization_id"
	SessionKey contextKey = "session_kind"
)

// Russian-facing error messages; the admin frontend shows them as-is.
const (
	ErrMissingAuthHeader = "Отсутствует заголовок Authorization"
	ErrInvalidToken      = "Недействительный токен"
	ErrNoOrganization    = "Не удалось определить организацию для текущего пользователя"
)

// Authenticator resolves bearer tokens into request identities. Hosted
// sessions are mapped to local users through the stored hosted account
// id; legacy sessions carry the local user id directly.
type Authenticator struct {
	repo domain.UserRepository
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(repo domain.UserRepository) *Authenticator {
	return &Authenticator{repo: repo}
}

// Middleware validates the bearer token and loads the user profile into
// the request context. Requests without an organization are let
// through; handlers that need one reject them with ErrNoOrganization.
func (a *Authenticator) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, ErrMissingAuthHeader)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		session, err := auth.ResolveSession(parts[1])
		if err != nil {
			respondError(w, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		user, err := a.lookupUser(session)
		if err != nil {
			respondError(w, http.StatusUnauthorized, ErrInvalidToken)
			return
		}
		if !user.IsActive {
			respondError(w, http.StatusUnauthorized, ErrInvalidToken)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
		ctx = context.WithValue(ctx, EmailKey, user.Email)
		ctx = context.WithValue(ctx, RoleKey, user.Role)
		ctx = context.WithValue(ctx, SessionKey, session.Kind)
		if user.OrganizationID != nil {
			ctx = context.WithValue(ctx, OrgIDKey, *user.OrganizationID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// AdminMiddleware checks if user has admin role
func (a *Authenticator) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return a.Middleware(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(RoleKey).(string)
		if !ok || role != domain.RoleAdmin {
			respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) lookupUser(session *auth.Session) (*domain.User, error) {
	if session.Kind == auth.SessionHosted {
		return a.repo.FindByHostedID(session.HostedID)
	}
	return a.repo.FindByID(session.UserID)
}

// UserIDFromContext returns the authenticated user's id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok
}

// OrgIDFromContext returns the authenticated user's organization id, if
// the user belongs to one.
func OrgIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(OrgIDKey).(uint)
	return id, ok
}

// RoleFromContext returns the authenticated user's role.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// Helper function for error responses
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
