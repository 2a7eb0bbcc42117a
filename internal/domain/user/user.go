// Package user defines accounts and session-token requests.
package user

import (
	"net/mail"
	"strings"
	"time"

	"github.com/promptana/promptana/internal/domain"
)

// User is an account row. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is a stored, hashed refresh token. Raw tokens are returned to
// the client once and never persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SignupRequest creates an account.
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Validate collects every offending field instead of failing fast.
func (r *SignupRequest) Validate() error {
	details := map[string]string{}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		details["email"] = "must be a valid email address"
	}
	if strings.TrimSpace(r.Name) == "" {
		details["name"] = "must not be empty"
	}
	if len(r.Password) < 8 {
		details["password"] = "must be at least 8 characters"
	}
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

// LoginRequest authenticates an account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate collects every offending field instead of failing fast.
func (r *LoginRequest) Validate() error {
	details := map[string]string{}
	if r.Email == "" {
		details["email"] = "must not be empty"
	}
	if r.Password == "" {
		details["password"] = "must not be empty"
	}
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

// Claims is the validated access-token payload.
type Claims struct {
	UserID string
	Email  string
	Name   string
}

// RefreshRequest exchanges a refresh token for a new session.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Session is the response to login, signup, and refresh.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}
