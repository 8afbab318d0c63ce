// Package state persists the session snapshot across gateway restarts.
// The snapshot is the only durable state the gateway owns; the cart is a
// server mirror and is always re-fetched, never persisted.
package state

import (
	"context"
	"time"
)

// Snapshot is the persisted subset of the session: tokens, profile fields,
// verification flag and the expiry estimate. Timers and loading flags are
// in-memory only and never serialized.
type Snapshot struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	UserID          string    `json:"userId"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ProfileImage    string    `json:"profileImage"`
	IsAdmin         bool      `json:"isAdmin"`
	EmailVerified   bool      `json:"emailVerified"`
	AccessToken     string    `json:"accessToken"`
	RefreshToken    string    `json:"refreshToken"`
	TokenExpiresAt  time.Time `json:"tokenExpiresAt"`
}

// Store loads and saves the session snapshot. Load returns (nil, nil) when
// no snapshot exists; a missing snapshot is a fresh anonymous session, not
// an error.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Clear(ctx context.Context) error
}
