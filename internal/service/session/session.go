// Package session owns the authenticated identity: the token pair, profile
// fields, snapshot persistence and the refresh timer. All outcomes surfaced
// to the UI layer are plain Result values; no upstream error escapes uncaught.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	domain "storefront-gateway/internal/domain/session"
	xerrors "storefront-gateway/internal/pkg/errors"
	"storefront-gateway/internal/pkg/token"
	"storefront-gateway/internal/platform"
	"storefront-gateway/internal/push"
	"storefront-gateway/internal/state"

	"go.uber.org/zap"
)

// CartSyncer is the slice of the cart service the session drives: a reload
// after login/verification and a drop when the session clears.
type CartSyncer interface {
	Refresh(ctx context.Context)
	Drop()
}

// Publisher pushes state-change events to connected UIs.
type Publisher interface {
	Publish(eventType string, data any)
}

// Config carries the token lifecycle knobs.
type Config struct {
	// TokenTTL is the client-side expiry estimate used when the access token
	// carries no decodable exp claim.
	TokenTTL time.Duration
	// RefreshLead is how long before expiry the token is refreshed.
	RefreshLead time.Duration
	// SettleDelay is the wait before the first cart load after login or email
	// verification, giving server-side account activation time to settle.
	SettleDelay time.Duration
}

type Service struct {
	api    *platform.Client
	store  state.Store
	pub    Publisher
	cfg    Config
	logger *zap.Logger

	mu           sync.Mutex
	sess         domain.Session
	refreshTimer *time.Timer
	initialized  bool
	cart         CartSyncer

	// Injectable clock and scheduler for deterministic timer tests.
	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer
}

func NewService(api *platform.Client, store state.Store, pub Publisher, cfg Config, logger *zap.Logger) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 60 * time.Minute
	}
	if cfg.RefreshLead <= 0 {
		cfg.RefreshLead = 5 * time.Minute
	}
	return &Service{
		api:       api,
		store:     store,
		pub:       pub,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		afterFunc: time.AfterFunc,
	}
}

// BindCart wires the cart service in after construction; the cart depends on
// the session for its bearer token, so the two cannot be built in one shot.
func (s *Service) BindCart(cart CartSyncer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cart
}

// ========== Lifecycle ==========

// Initialize rehydrates the session from the persisted snapshot. It is a
// no-op once initialized in this process lifetime. A token already expired or
// inside the refresh lead is refreshed synchronously before the timer is
// armed; refresh failure clears the session. A verified session triggers a
// cart load as a side effect.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true

	snap, err := s.store.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		// A corrupt snapshot degrades to an anonymous session.
		s.logger.Warn("failed to load session snapshot, starting anonymous", zap.Error(err))
		return nil
	}
	if snap == nil || !snap.IsAuthenticated || snap.AccessToken == "" || snap.RefreshToken == "" {
		s.mu.Unlock()
		return nil
	}

	s.sess = domain.Session{
		IsAuthenticated: true,
		UserID:          snap.UserID,
		Username:        snap.Username,
		Email:           snap.Email,
		Phone:           snap.Phone,
		ProfileImage:    snap.ProfileImage,
		IsAdmin:         snap.IsAdmin,
		EmailVerified:   snap.EmailVerified,
		AccessToken:     snap.AccessToken,
		RefreshToken:    snap.RefreshToken,
		TokenExpiresAt:  snap.TokenExpiresAt,
	}

	expiringSoon := !s.sess.TokenExpiresAt.After(s.now().Add(s.cfg.RefreshLead))
	if expiringSoon {
		s.mu.Unlock()
		if err := s.refresh(ctx); err != nil {
			// refresh already cleared the session
			return nil
		}
	} else {
		s.rearmLocked()
		s.mu.Unlock()
	}

	s.mu.Lock()
	verified := s.sess.Verified()
	cart := s.cart
	s.mu.Unlock()
	if verified && cart != nil {
		go cart.Refresh(context.Background())
	}
	return nil
}

// SetSession establishes a new authenticated session from a user payload and
// token pair, persists the snapshot and arms the refresh timer.
func (s *Service) SetSession(ctx context.Context, user *domain.User, tokens *domain.TokenPair) {
	s.mu.Lock()
	s.sess = domain.Session{
		IsAuthenticated: true,
		UserID:          user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Phone:           user.Phone,
		ProfileImage:    user.ProfileImage,
		IsAdmin:         user.IsAdmin,
		EmailVerified:   user.EmailVerified,
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		TokenExpiresAt:  s.expiryFor(tokens.AccessToken),
	}
	s.initialized = true
	s.persistLocked(ctx)
	s.rearmLocked()
	snapshot := s.sess
	s.mu.Unlock()

	s.publish(push.EventSessionUpdated, snapshot)
}

// Clear cancels any pending refresh timer, resets the session to its
// unauthenticated defaults, drops the persisted snapshot and clears the cart.
// It always succeeds locally regardless of server reachability.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
		s.refreshTimer = nil
	}
	s.sess = domain.Session{}
	s.initialized = false
	cart := s.cart
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear session snapshot", zap.Error(err))
	}
	if cart != nil {
		cart.Drop()
	}
	s.publish(push.EventSessionCleared, nil)
}

// ========== Registration & Login ==========

// Register creates an account on the platform. A fully-issued token pair for
// a verified account establishes a session; an unverified account comes back
// as a distinguished verification-required result without a session.
func (s *Service) Register(ctx context.Context, req *domain.RegisterRequest) domain.AuthResult {
	payload, err := s.api.Register(ctx, req)
	if err != nil {
		if email, ok := unverifiedEmail(err); ok {
			return verificationRequired(email)
		}
		s.logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		return failedAuth(platform.Message(err, "Registration failed"))
	}
	return s.establish(ctx, req.Email, payload, "Registration successful")
}

// Login authenticates against the platform API.
func (s *Service) Login(ctx context.Context, req *domain.LoginRequest) domain.AuthResult {
	payload, err := s.api.Login(ctx, req)
	if err != nil {
		if email, ok := unverifiedEmail(err); ok {
			return verificationRequired(email)
		}
		s.logger.Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		return failedAuth(platform.Message(err, "Login failed"))
	}
	return s.establish(ctx, req.Email, payload, "Login successful")
}

// establish turns an auth payload into a session, or into a
// verification-required result when the account is not yet usable.
func (s *Service) establish(ctx context.Context, reqEmail string, payload *domain.AuthPayload, message string) domain.AuthResult {
	if payload.User == nil || payload.Tokens == nil || payload.Tokens.AccessToken == "" {
		return verificationRequired(emailOr(payload, reqEmail))
	}
	if !payload.User.EmailVerified {
		return verificationRequired(payload.User.Email)
	}

	s.SetSession(ctx, payload.User, payload.Tokens)
	s.scheduleCartLoad()

	s.logger.Info("session established",
		zap.String("user_id", payload.User.ID),
		zap.String("email", payload.User.Email),
	)
	return domain.AuthResult{Result: domain.Result{Success: true, Message: message}}
}

// Logout always succeeds locally; there is nothing to tell the server.
func (s *Service) Logout(ctx context.Context) domain.Result {
	s.Clear(ctx)
	return domain.Result{Success: true, Message: "Logout successful"}
}

// ========== Email Verification ==========

// VerifyEmail confirms the emailed code. On success the session (when one
// exists for that address) is marked verified and a delayed cart load is
// scheduled so server-side account activation can settle first.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) domain.Result {
	if err := s.api.VerifyEmail(ctx, email, code); err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Email verification failed")}
	}

	s.mu.Lock()
	var snapshot *domain.Session
	if s.sess.IsAuthenticated && strings.EqualFold(s.sess.Email, email) {
		s.sess.EmailVerified = true
		s.persistLocked(ctx)
		copied := s.sess
		snapshot = &copied
	}
	s.mu.Unlock()

	if snapshot != nil {
		s.publish(push.EventSessionUpdated, *snapshot)
	}
	s.scheduleCartLoad()
	return domain.Result{Success: true, Message: "Email verified"}
}

func (s *Service) ResendVerification(ctx context.Context, email string) domain.Result {
	if err := s.api.ResendVerification(ctx, email); err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Failed to resend verification code")}
	}
	return domain.Result{Success: true, Message: "Verification code sent"}
}

// ========== Token Refresh ==========

// RefreshAccessToken exchanges the refresh token for a new pair. Any failure
// is fatal to the session: it is cleared, never retried.
func (s *Service) RefreshAccessToken(ctx context.Context) error {
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.sess.RefreshToken
	s.mu.Unlock()

	if refreshToken == "" {
		s.logger.Warn("no refresh token available, clearing session")
		s.Clear(ctx)
		return xerrors.ErrSessionExpired
	}

	pair, err := s.api.RefreshToken(ctx, refreshToken)
	if err != nil {
		s.logger.Warn("token refresh failed, clearing session", zap.Error(err))
		s.Clear(ctx)
		return xerrors.Wrap(err, "token refresh failed")
	}

	s.mu.Lock()
	if !s.sess.IsAuthenticated {
		// Cleared while the exchange was in flight; discard the new pair.
		s.mu.Unlock()
		return xerrors.ErrSessionExpired
	}
	s.sess.AccessToken = pair.AccessToken
	s.sess.RefreshToken = pair.RefreshToken
	s.sess.TokenExpiresAt = s.expiryFor(pair.AccessToken)
	s.persistLocked(ctx)
	s.rearmLocked()
	snapshot := s.sess
	s.mu.Unlock()

	s.publish(push.EventSessionUpdated, snapshot)
	return nil
}

// rearmLocked enforces the single-timer discipline: any pending timer is
// canceled before a new one is armed. When the budget until the refresh lead
// is already exhausted the token is refreshed immediately instead.
func (s *Service) rearmLocked() {
	if s.refreshTimer != nil {
		s.refreshTimer.Stop()
		s.refreshTimer = nil
	}
	if !s.sess.IsAuthenticated || s.sess.AccessToken == "" {
		return
	}

	wait := s.sess.TokenExpiresAt.Sub(s.now()) - s.cfg.RefreshLead
	if wait <= 0 {
		go s.refreshAsync()
		return
	}
	s.refreshTimer = s.afterFunc(wait, s.refreshAsync)
}

func (s *Service) refreshAsync() {
	_ = s.refresh(context.Background())
}

// expiryFor prefers the access token's own exp claim; opaque tokens fall
// back to the fixed client-side window.
func (s *Service) expiryFor(accessToken string) time.Time {
	if exp, ok := token.ExpiresAt(accessToken); ok && exp.After(s.now()) {
		return exp
	}
	return s.now().Add(s.cfg.TokenTTL)
}

// ========== Password Reset ==========

func (s *Service) RequestPasswordReset(ctx context.Context, email string) domain.Result {
	if err := s.api.RequestPasswordReset(ctx, email); err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Password reset request failed")}
	}
	return domain.Result{Success: true, Message: "Password reset email sent"}
}

func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) domain.Result {
	if err := s.api.ResetPassword(ctx, resetToken, newPassword); err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Password reset failed")}
	}
	return domain.Result{Success: true, Message: "Password reset successful"}
}

// ========== Profile ==========

func (s *Service) UpdateProfile(ctx context.Context, req *domain.UpdateProfileRequest) domain.Result {
	accessToken, ok := s.Token()
	if !ok {
		return domain.Result{Success: false, Message: "Authentication required"}
	}

	user, err := s.api.UpdateProfile(ctx, accessToken, req)
	if err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Profile update failed")}
	}

	s.mu.Lock()
	if user != nil && s.sess.IsAuthenticated {
		s.sess.Username = user.Username
		s.sess.Phone = user.Phone
		s.sess.ProfileImage = user.ProfileImage
		s.persistLocked(ctx)
	}
	snapshot := s.sess
	s.mu.Unlock()

	s.publish(push.EventSessionUpdated, snapshot)
	return domain.Result{Success: true, Message: "Profile updated successfully"}
}

func (s *Service) DeleteAccount(ctx context.Context) domain.Result {
	accessToken, ok := s.Token()
	if !ok {
		return domain.Result{Success: false, Message: "Authentication required"}
	}

	if err := s.api.DeleteAccount(ctx, accessToken); err != nil {
		return domain.Result{Success: false, Message: platform.Message(err, "Account deletion failed")}
	}

	s.Clear(ctx)
	return domain.Result{Success: true, Message: "Account deleted"}
}

// ========== Accessors ==========

// Current returns a copy of the session for the UI.
func (s *Service) Current() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// Token returns the bearer token for authenticated platform calls.
func (s *Service) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.AccessToken, s.sess.AccessToken != ""
}

// Verified reports whether the session may touch verified-only resources.
func (s *Service) Verified() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.Verified()
}

// ========== Helpers ==========

func (s *Service) persistLocked(ctx context.Context) {
	snap := &state.Snapshot{
		IsAuthenticated: s.sess.IsAuthenticated,
		UserID:          s.sess.UserID,
		Username:        s.sess.Username,
		Email:           s.sess.Email,
		Phone:           s.sess.Phone,
		ProfileImage:    s.sess.ProfileImage,
		IsAdmin:         s.sess.IsAdmin,
		EmailVerified:   s.sess.EmailVerified,
		AccessToken:     s.sess.AccessToken,
		RefreshToken:    s.sess.RefreshToken,
		TokenExpiresAt:  s.sess.TokenExpiresAt,
	}
	if err := s.store.Save(ctx, snap); err != nil {
		s.logger.Warn("failed to persist session snapshot", zap.Error(err))
	}
}

// scheduleCartLoad arms a one-shot delayed cart refresh. The fetch itself
// no-ops when the session is not authenticated and verified.
func (s *Service) scheduleCartLoad() {
	s.mu.Lock()
	cart := s.cart
	s.mu.Unlock()
	if cart == nil {
		return
	}
	s.afterFunc(s.cfg.SettleDelay, func() {
		cart.Refresh(context.Background())
	})
}

func (s *Service) publish(eventType string, data any) {
	if s.pub != nil {
		s.pub.Publish(eventType, data)
	}
}

// unverifiedEmail probes a platform rejection for the unverified-account
// shape: some deployments reject the login but still attach the user object.
func unverifiedEmail(err error) (string, bool) {
	var apiErr *platform.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Data) == 0 {
		return "", false
	}
	var payload domain.AuthPayload
	if jsonErr := json.Unmarshal(apiErr.Data, &payload); jsonErr != nil {
		return "", false
	}
	if payload.User != nil && !payload.User.EmailVerified {
		return payload.User.Email, true
	}
	return "", false
}

func verificationRequired(email string) domain.AuthResult {
	return domain.AuthResult{
		Result:               domain.Result{Success: false, Message: "Please verify your email to log in."},
		RequiresVerification: true,
		Email:                email,
	}
}

func failedAuth(message string) domain.AuthResult {
	return domain.AuthResult{Result: domain.Result{Success: false, Message: message}}
}

func emailOr(payload *domain.AuthPayload, fallback string) string {
	if payload != nil && payload.User != nil && payload.User.Email != "" {
		return payload.User.Email
	}
	return fallback
}
