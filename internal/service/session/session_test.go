package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domain "storefront-gateway/internal/domain/session"
	"storefront-gateway/internal/platform"
	"storefront-gateway/internal/push"
	"storefront-gateway/internal/state"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ========== Test doubles ==========

type memStore struct {
	mu     sync.Mutex
	snap   *state.Snapshot
	clears int
}

func (m *memStore) Load(context.Context) (*state.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *memStore) Save(_ context.Context, snap *state.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *snap
	m.snap = &copied
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	m.clears++
	return nil
}

func (m *memStore) snapshot() *state.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *memStore) clearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

type stubCart struct {
	mu        sync.Mutex
	refreshes int
	drops     int
}

func (c *stubCart) Refresh(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshes++
}

func (c *stubCart) Drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drops++
}

func (c *stubCart) refreshCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshes
}

func (c *stubCart) dropCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drops
}

type recordPub struct {
	mu     sync.Mutex
	events []string
}

func (p *recordPub) Publish(eventType string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordPub) has(eventType string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.events {
		if e == eventType {
			return true
		}
	}
	return false
}

// timerRecorder replaces the service's scheduler so armed timers can be
// inspected without waiting on the wall clock. Callbacks never fire.
type timerRecorder struct {
	mu     sync.Mutex
	waits  []time.Duration
	timers []*time.Timer
}

func (r *timerRecorder) afterFunc(d time.Duration, _ func()) *time.Timer {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := time.NewTimer(time.Hour)
	r.waits = append(r.waits, d)
	r.timers = append(r.timers, t)
	return t
}

func (r *timerRecorder) armed() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

// ========== Fake platform API ==========

func writeEnvelope(w http.ResponseWriter, httpStatus int, status, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

type harness struct {
	svc    *Service
	store  *memStore
	cart   *stubCart
	pub    *recordPub
	timers *timerRecorder
	now    time.Time
}

func newHarness(t *testing.T, handler http.Handler) *harness {
	t.Helper()

	if handler == nil {
		handler = http.NewServeMux()
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	h := &harness{
		store:  &memStore{},
		cart:   &stubCart{},
		pub:    &recordPub{},
		timers: &timerRecorder{},
		now:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	api := platform.NewClient(srv.URL, 5*time.Second, zap.NewNop())
	h.svc = NewService(api, h.store, h.pub, Config{
		TokenTTL:    60 * time.Minute,
		RefreshLead: 5 * time.Minute,
		SettleDelay: 200 * time.Millisecond,
	}, zap.NewNop())
	h.svc.BindCart(h.cart)
	h.svc.now = func() time.Time { return h.now }
	h.svc.afterFunc = h.timers.afterFunc
	return h
}

func loginHandler(user *domain.User, tokens *domain.TokenPair) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "success", "Login successful", map[string]any{
			"user":   user,
			"tokens": tokens,
		})
	})
	return mux
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func verifiedUser() *domain.User {
	return &domain.User{
		ID:            "user-1",
		Username:      "amina",
		Email:         "amina@example.com",
		EmailVerified: true,
	}
}

// ========== Login & registration ==========

func TestLoginEstablishesSession(t *testing.T) {
	tokens := &domain.TokenPair{AccessToken: "opaque-access", RefreshToken: "opaque-refresh"}
	h := newHarness(t, loginHandler(verifiedUser(), tokens))

	res := h.svc.Login(context.Background(), &domain.LoginRequest{Email: "amina@example.com", Password: "pw"})

	require.True(t, res.Success)
	assert.False(t, res.RequiresVerification)

	sess := h.svc.Current()
	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "user-1", sess.UserID)
	assert.True(t, sess.EmailVerified)

	// Token and authenticated flag move together.
	token, ok := h.svc.Token()
	assert.True(t, ok)
	assert.Equal(t, "opaque-access", token)

	// Opaque token falls back to the fixed expiry estimate; the refresh
	// timer fires a lead ahead of it.
	assert.Equal(t, h.now.Add(60*time.Minute), sess.TokenExpiresAt)
	assert.Contains(t, h.timers.armed(), 55*time.Minute)

	// Snapshot persisted for the next process lifetime.
	snap := h.store.snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "opaque-refresh", snap.RefreshToken)

	assert.True(t, h.pub.has(push.EventSessionUpdated))
}

func TestLoginUsesAccessTokenExpClaim(t *testing.T) {
	h := newHarness(t, nil)
	exp := h.now.Add(30 * time.Minute)
	access := signedToken(t, exp)

	h.svc.SetSession(context.Background(), verifiedUser(), &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: "r1",
	})

	sess := h.svc.Current()
	assert.Equal(t, exp.Unix(), sess.TokenExpiresAt.Unix())
	// 30m to expiry minus the 5m lead.
	assert.Contains(t, h.timers.armed(), 25*time.Minute)
}

func TestLoginRejectedUnverifiedAccount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusForbidden, "error", "Email not verified", map[string]any{
			"user": map[string]any{"email": "new@example.com", "emailVerified": false},
		})
	})
	h := newHarness(t, mux)

	res := h.svc.Login(context.Background(), &domain.LoginRequest{Email: "new@example.com", Password: "pw"})

	assert.False(t, res.Success)
	assert.True(t, res.RequiresVerification)
	assert.Equal(t, "new@example.com", res.Email)

	// No session, no token, no cart activity.
	assert.False(t, h.svc.Current().IsAuthenticated)
	_, ok := h.svc.Token()
	assert.False(t, ok)
	assert.Zero(t, h.cart.refreshCount())
	assert.Empty(t, h.timers.armed())
}

func TestLoginPayloadWithoutTokensRequiresVerification(t *testing.T) {
	user := &domain.User{Email: "half@example.com", EmailVerified: false}
	h := newHarness(t, loginHandler(user, nil))

	res := h.svc.Login(context.Background(), &domain.LoginRequest{Email: "half@example.com", Password: "pw"})

	assert.False(t, res.Success)
	assert.True(t, res.RequiresVerification)
	assert.Equal(t, "half@example.com", res.Email)
	assert.False(t, h.svc.Current().IsAuthenticated)
}

func TestRegisterUnverifiedAccountRequiresVerification(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusCreated, "success", "Account created", map[string]any{
			"user": map[string]any{"email": "reg@example.com", "emailVerified": false},
		})
	})
	h := newHarness(t, mux)

	res := h.svc.Register(context.Background(), &domain.RegisterRequest{
		Username: "reg", Email: "reg@example.com", Password: "pw",
	})

	assert.False(t, res.Success)
	assert.True(t, res.RequiresVerification)
	assert.Equal(t, "reg@example.com", res.Email)
}

func TestLoginFailureSurfacesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "error", "Invalid credentials", nil)
	})
	h := newHarness(t, mux)

	res := h.svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.c", Password: "bad"})

	assert.False(t, res.Success)
	assert.False(t, res.RequiresVerification)
	assert.Equal(t, "Invalid credentials", res.Message)
}

// ========== Initialize ==========

func TestInitializeFreshTokenArmsTimerWithoutRefreshing(t *testing.T) {
	refreshCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		writeEnvelope(w, http.StatusOK, "success", "", map[string]any{
			"accessToken": "a2", "refreshToken": "r2",
		})
	})
	h := newHarness(t, mux)
	h.store.snap = &state.Snapshot{
		IsAuthenticated: true,
		UserID:          "user-1",
		Email:           "amina@example.com",
		EmailVerified:   true,
		AccessToken:     "a1",
		RefreshToken:    "r1",
		TokenExpiresAt:  h.now.Add(40 * time.Minute),
	}

	require.NoError(t, h.svc.Initialize(context.Background()))

	assert.Zero(t, refreshCalls)
	assert.Contains(t, h.timers.armed(), 35*time.Minute)
	token, ok := h.svc.Token()
	assert.True(t, ok)
	assert.Equal(t, "a1", token)

	// Verified session kicks off a cart load in the background.
	require.Eventually(t, func() bool {
		return h.cart.refreshCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestInitializeExpiringTokenRefreshesSynchronously(t *testing.T) {
	refreshCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		writeEnvelope(w, http.StatusOK, "success", "", map[string]any{
			"accessToken": "a2", "refreshToken": "r2",
		})
	})
	h := newHarness(t, mux)
	h.store.snap = &state.Snapshot{
		IsAuthenticated: true,
		EmailVerified:   true,
		AccessToken:     "a1",
		RefreshToken:    "r1",
		TokenExpiresAt:  h.now.Add(2 * time.Minute), // inside the 5m lead
	}

	require.NoError(t, h.svc.Initialize(context.Background()))

	assert.Equal(t, 1, refreshCalls)
	token, _ := h.svc.Token()
	assert.Equal(t, "a2", token)
	assert.Equal(t, "r2", h.store.snapshot().RefreshToken)
	assert.Contains(t, h.timers.armed(), 55*time.Minute)
}

func TestInitializeIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	h.store.snap = &state.Snapshot{
		IsAuthenticated: true,
		AccessToken:     "a1",
		RefreshToken:    "r1",
		TokenExpiresAt:  h.now.Add(40 * time.Minute),
	}

	require.NoError(t, h.svc.Initialize(context.Background()))
	require.NoError(t, h.svc.Initialize(context.Background()))

	assert.Len(t, h.timers.armed(), 1)
}

func TestInitializeAfterSetSessionMakesNoRefreshCall(t *testing.T) {
	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
	})
	h := newHarness(t, mux)

	h.svc.SetSession(context.Background(), verifiedUser(), &domain.TokenPair{
		AccessToken: "a1", RefreshToken: "r1",
	})
	require.NoError(t, h.svc.Initialize(context.Background()))

	assert.Zero(t, atomic.LoadInt32(&refreshCalls))
	// Only the timer armed by SetSession: ~55 minutes out.
	assert.Equal(t, []time.Duration{55 * time.Minute}, h.timers.armed())
}

func TestInitializeWithoutSnapshotStaysAnonymous(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.svc.Initialize(context.Background()))

	assert.False(t, h.svc.Current().IsAuthenticated)
	assert.Empty(t, h.timers.armed())
	assert.Zero(t, h.cart.refreshCount())
}

// ========== Refresh ==========

func TestRefreshFailureClearsSessionAndCart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, "error", "Refresh token revoked", nil)
	})
	h := newHarness(t, mux)
	h.svc.SetSession(context.Background(), verifiedUser(), &domain.TokenPair{
		AccessToken: "a1", RefreshToken: "r1",
	})

	err := h.svc.RefreshAccessToken(context.Background())

	require.Error(t, err)
	assert.False(t, h.svc.Current().IsAuthenticated)
	_, ok := h.svc.Token()
	assert.False(t, ok)
	assert.Equal(t, 1, h.store.clearCount())
	assert.Equal(t, 1, h.cart.dropCount())
	assert.True(t, h.pub.has(push.EventSessionCleared))
}

func TestRefreshReplacesBothTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "r1", body["refreshToken"])
		writeEnvelope(w, http.StatusOK, "success", "", map[string]any{
			"accessToken": "a2", "refreshToken": "r2",
		})
	})
	h := newHarness(t, mux)
	h.svc.SetSession(context.Background(), verifiedUser(), &domain.TokenPair{
		AccessToken: "a1", RefreshToken: "r1",
	})

	require.NoError(t, h.svc.RefreshAccessToken(context.Background()))

	sess := h.svc.Current()
	token, _ := h.svc.Token()
	assert.Equal(t, "a2", token)
	assert.True(t, sess.IsAuthenticated)
	assert.Equal(t, "r2", h.store.snapshot().RefreshToken)
}

func TestRefreshWithoutTokenClearsSession(t *testing.T) {
	h := newHarness(t, nil)

	err := h.svc.RefreshAccessToken(context.Background())

	require.Error(t, err)
	assert.False(t, h.svc.Current().IsAuthenticated)
}

func TestRearmCancelsPreviousTimer(t *testing.T) {
	h := newHarness(t, nil)
	pair := &domain.TokenPair{AccessToken: "a1", RefreshToken: "r1"}

	h.svc.SetSession(context.Background(), verifiedUser(), pair)
	h.svc.SetSession(context.Background(), verifiedUser(), pair)

	h.timers.mu.Lock()
	defer h.timers.mu.Unlock()
	require.Len(t, h.timers.timers, 2)
	// The first timer was already stopped by the second arm.
	assert.False(t, h.timers.timers[0].Stop())
	assert.True(t, h.timers.timers[1].Stop())
}

// ========== Logout & clearing ==========

func TestLogoutAlwaysClearsLocally(t *testing.T) {
	h := newHarness(t, nil)
	h.svc.SetSession(context.Background(), verifiedUser(), &domain.TokenPair{
		AccessToken: "a1", RefreshToken: "r1",
	})

	res := h.svc.Logout(context.Background())

	assert.True(t, res.Success)
	assert.False(t, h.svc.Current().IsAuthenticated)
	assert.Nil(t, h.store.snapshot())
	assert.Equal(t, 1, h.cart.dropCount())
	assert.True(t, h.pub.has(push.EventSessionCleared))
}

// ========== Email verification ==========

func TestVerifyEmailMarksMatchingSessionVerified(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/verify-email", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "success", "Email verified", nil)
	})
	h := newHarness(t, mux)

	user := verifiedUser()
	user.EmailVerified = false
	h.svc.SetSession(context.Background(), user, &domain.TokenPair{
		AccessToken: "a1", RefreshToken: "r1",
	})

	res := h.svc.VerifyEmail(context.Background(), "AMINA@example.com", "123456")

	require.True(t, res.Success)
	assert.True(t, h.svc.Current().EmailVerified)
	assert.True(t, h.store.snapshot().EmailVerified)
	// A delayed cart load is scheduled so account activation can settle.
	assert.Contains(t, h.timers.armed(), 200*time.Millisecond)
}

func TestVerifyEmailLeavesOtherSessionsAlone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/verify-email", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "success", "Email verified", nil)
	})
	h := newHarness(t, mux)

	user := verifiedUser()
	user.EmailVerified = false
	h.svc.SetSession(context.Background(), user, &domain.TokenPair{
		AccessToken: "a1", RefreshToken: "r1",
	})

	res := h.svc.VerifyEmail(context.Background(), "someone-else@example.com", "123456")

	require.True(t, res.Success)
	assert.False(t, h.svc.Current().EmailVerified)
}

// ========== Profile ==========

func TestUpdateProfileRequiresAuthentication(t *testing.T) {
	h := newHarness(t, nil)

	res := h.svc.UpdateProfile(context.Background(), &domain.UpdateProfileRequest{Username: "new"})

	assert.False(t, res.Success)
	assert.Equal(t, "Authentication required", res.Message)
}

func TestUpdateProfileAppliesServerEcho(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer a1", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, "success", "Profile updated", map[string]any{
			"user": map[string]any{
				"id": "user-1", "username": "amina-new", "phone": "+254700000000",
				"email": "amina@example.com", "emailVerified": true,
			},
		})
	})
	h := newHarness(t, mux)
	h.svc.SetSession(context.Background(), verifiedUser(), &domain.TokenPair{
		AccessToken: "a1", RefreshToken: "r1",
	})

	res := h.svc.UpdateProfile(context.Background(), &domain.UpdateProfileRequest{Username: "amina-new"})

	require.True(t, res.Success)
	sess := h.svc.Current()
	assert.Equal(t, "amina-new", sess.Username)
	assert.Equal(t, "+254700000000", sess.Phone)
	assert.Equal(t, "amina-new", h.store.snapshot().Username)
}

func TestDeleteAccountClearsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/account", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "success", "Account deleted", nil)
	})
	h := newHarness(t, mux)
	h.svc.SetSession(context.Background(), verifiedUser(), &domain.TokenPair{
		AccessToken: "a1", RefreshToken: "r1",
	})

	res := h.svc.DeleteAccount(context.Background())

	assert.True(t, res.Success)
	assert.False(t, h.svc.Current().IsAuthenticated)
	assert.Equal(t, 1, h.cart.dropCount())
}
