package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the payload of a locally issued token.
type Claims struct {
	UserID         uint   `json:"user_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	OrganizationID *uint  `json:"organization_id,omitempty"`
	jwt.RegisteredClaims
}

// HostedClaims is the payload shape of tokens minted by the hosted auth
// service. The subject is the hosted account UUID, not a local user id.
type HostedClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

const tokenTTL = 24 * time.Hour

func legacySecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return []byte(secret)
}

func hostedSecret() []byte {
	secret := os.Getenv("HOSTED_AUTH_JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	return []byte(secret)
}

// GenerateToken issues a locally signed token for a user.
func GenerateToken(userID uint, email, role string, organizationID *uint) (string, error) {
	claims := Claims{
		UserID:         userID,
		Email:          email,
		Role:           role,
		OrganizationID: organizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(legacySecret())
}

// ValidateToken parses and verifies a locally signed token.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return legacySecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// ValidateHostedToken parses and verifies a token issued by the hosted
// auth service.
func ValidateHostedToken(tokenString string) (*HostedClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &HostedClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return hostedSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*HostedClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("hosted token has no subject")
	}
	return claims, nil
}
