package auth

// SessionKind tags which credential path authenticated a request.
type SessionKind string

const (
	SessionHosted SessionKind = "hosted"
	SessionLegacy SessionKind = "legacy"
)

// Session is the identity resolved once at the HTTP boundary. Exactly
// one of HostedID or UserID is authoritative depending on Kind.
type Session struct {
	Kind           SessionKind
	HostedID       string // hosted account UUID, set for SessionHosted
	UserID         uint   // local user id, set for SessionLegacy
	Email          string
	Role           string
	OrganizationID *uint
}

// ResolveSession classifies a bearer token as either a hosted-auth
// session or a legacy locally signed one. The hosted path is tried
// first; a token valid under neither scheme yields the legacy parse
// error.
func ResolveSession(token string) (*Session, error) {
	if hosted, err := ValidateHostedToken(token); err == nil {
		return &Session{
			Kind:     SessionHosted,
			HostedID: hosted.Subject,
			Email:    hosted.Email,
		}, nil
	}

	claims, err := ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &Session{
		Kind:           SessionLegacy,
		UserID:         claims.UserID,
		Email:          claims.Email,
		Role:           claims.Role,
		OrganizationID: claims.OrganizationID,
	}, nil
}
