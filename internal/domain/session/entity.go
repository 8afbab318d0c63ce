// internal/domain/session/entity.go
package session

import "time"

// Session is the authenticated identity and token state held by the gateway.
// The token pair, profile fields and expiry are persisted through the state
// store; everything timer- or flag-shaped lives only in the session service.
type Session struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	UserID          string    `json:"userId"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ProfileImage    string    `json:"profileImage"`
	IsAdmin         bool      `json:"isAdmin"`
	EmailVerified   bool      `json:"emailVerified"`
	AccessToken     string    `json:"-"`
	RefreshToken    string    `json:"-"`
	TokenExpiresAt  time.Time `json:"tokenExpiresAt"`
}

// Verified reports whether the session may touch verified-only resources
// such as the cart.
func (s Session) Verified() bool {
	return s.IsAuthenticated && s.EmailVerified
}
