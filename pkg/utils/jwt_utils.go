package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey signs admin session tokens. Overridden from the
// ADMIN_JWT_SECRET environment variable at startup via SetJWTSecret.
var jwtSecretKey = []byte("cafe-pos-admin-session-secret-change-me")

// AdminSessionTTL is how long an admin unlock lasts before the PIN must
// be entered again.
const AdminSessionTTL = 8 * time.Hour

// SetJWTSecret replaces the signing key. Call once during startup,
// before any token is issued.
func SetJWTSecret(secret string) {
	if secret != "" {
		jwtSecretKey = []byte(secret)
	}
}

// AdminClaims is the JWT claims structure for an unlocked admin session.
type AdminClaims struct {
	Scope string `json:"scope"` // always "admin"
	jwt.RegisteredClaims
}

// GenerateAdminToken creates a session token after a successful PIN
// verification.
func GenerateAdminToken() (string, error) {
	now := time.Now()
	claims := &AdminClaims{
		Scope: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(AdminSessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "cafe-pos-backend",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

// ValidateAdminToken parses and validates an admin session token.
func ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid || claims.Scope != "admin" {
		return nil, fmt.Errorf("invalid admin token")
	}
	return claims, nil
}
