// internal/platform/auth.go
package platform

import (
	"context"
	"net/http"

	"storefront-gateway/internal/domain/session"
)

// Register creates an account. The returned payload may carry an unverified
// user without a usable token pair; the session service decides what that means.
func (c *Client) Register(ctx context.Context, req *session.RegisterRequest) (*session.AuthPayload, error) {
	var payload session.AuthPayload
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) Login(ctx context.Context, req *session.LoginRequest) (*session.AuthPayload, error) {
	var payload session.AuthPayload
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) VerifyEmail(ctx context.Context, email, code string) error {
	req := session.VerifyEmailRequest{Email: email, VerificationCode: code}
	return c.do(ctx, http.MethodPost, "/auth/verify-email", "", &req, nil)
}

func (c *Client) ResendVerification(ctx context.Context, email string) error {
	req := session.ResendVerificationRequest{Email: email}
	return c.do(ctx, http.MethodPost, "/auth/resend-verification", "", &req, nil)
}

// RefreshToken exchanges the refresh token for a fresh pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*session.TokenPair, error) {
	req := map[string]string{"refreshToken": refreshToken}
	var pair session.TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/refresh-token", "", req, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	req := session.PasswordResetRequest{Email: email}
	return c.do(ctx, http.MethodPost, "/auth/reset-password-request", "", &req, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	req := session.ResetPasswordRequest{Token: token, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", "", &req, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, token string, req *session.UpdateProfileRequest) (*session.User, error) {
	var payload struct {
		User *session.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPatch, "/auth/profile", token, req, &payload); err != nil {
		return nil, err
	}
	return payload.User, nil
}

func (c *Client) DeleteAccount(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/auth/account", token, nil, nil)
}
