// Package token extracts scheduling hints from access tokens issued by the
// platform API. The gateway never validates signatures; it is not the token's
// verifier, it only needs the expiry to arm the refresh timer.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAt returns the registered exp claim of a JWT access token.
// Opaque (non-JWT) tokens or tokens without an exp claim report ok=false,
// in which case the caller falls back to its fixed expiry window.
func ExpiresAt(raw string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
