// internal/domain/session/dto.go
package session

// RegisterRequest for account creation on the platform API
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyEmailRequest confirms the emailed verification code
type VerifyEmailRequest struct {
	Email            string `json:"email" binding:"required,email"`
	VerificationCode string `json:"verificationCode" binding:"required"`
}

// ResendVerificationRequest re-sends the verification code
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetRequest starts the password reset flow
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the password reset flow
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// UpdateProfileRequest patches profile fields on the platform API
type UpdateProfileRequest struct {
	Username     string `json:"username,omitempty"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// TokenPair is the credential pair issued by the platform API.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// User is the profile payload returned by the platform API.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	ProfileImage  string `json:"profileImage"`
	IsAdmin       bool   `json:"isAdmin"`
	EmailVerified bool   `json:"emailVerified"`
}

// AuthPayload is the user+tokens bundle inside register/login responses.
type AuthPayload struct {
	User   *User      `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// Result is the uniform outcome surfaced to the UI layer. Failures are data,
// never panics or raw transport errors.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AuthResult extends Result for register/login, where an unverified account
// is a distinguished outcome rather than a plain failure.
type AuthResult struct {
	Result
	RequiresVerification bool   `json:"requiresVerification,omitempty"`
	Email                string `json:"email,omitempty"`
}
