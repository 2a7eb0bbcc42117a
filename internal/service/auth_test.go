package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/promptana/promptana/internal/config"
	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/domain/user"
)

func testAuthConfig() config.Auth {
	return config.Auth{
		JWTSecret:          "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 30 * 24 * time.Hour,
		BcryptCost:         bcrypt.MinCost,
	}
}

func TestSignupOpensSession(t *testing.T) {
	var created *user.User
	var storedToken *user.RefreshToken
	store := &mockStore{
		createUserFn: func(_ context.Context, u *user.User) error {
			u.ID = "user-1"
			created = u
			return nil
		},
		createRefreshTokenFn: func(_ context.Context, rt *user.RefreshToken) error {
			rt.ID = "rt-1"
			storedToken = rt
			return nil
		},
	}
	svc := NewAuthService(store, testAuthConfig())

	sess, err := svc.Signup(context.Background(), user.SignupRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if created.PasswordHash == "correct horse" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatal("session missing tokens")
	}
	if storedToken.TokenHash == sess.RefreshToken {
		t.Fatal("refresh token stored unhashed")
	}
	if sess.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Fatalf("ExpiresIn = %d", sess.ExpiresIn)
	}

	claims, err := svc.ValidateAccessToken(sess.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ada@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	store := &mockStore{
		createUserFn: func(context.Context, *user.User) error {
			return domain.ErrConflict
		},
	}
	svc := NewAuthService(store, testAuthConfig())

	_, err := svc.Signup(context.Background(), user.SignupRequest{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "correct horse",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc := NewAuthService(&mockStore{}, testAuthConfig())

	_, err := svc.Signup(context.Background(), user.SignupRequest{
		Email:    "not-an-email",
		Name:     "  ",
		Password: "short",
	})
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.CodeValidationFailed {
		t.Fatalf("want validation error, got %v", err)
	}
	for _, field := range []string{"email", "name", "password"} {
		if _, ok := derr.Details[field]; !ok {
			t.Errorf("missing detail for %q", field)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	store := &mockStore{
		getUserByEmailFn: func(_ context.Context, email string) (*user.User, error) {
			return &user.User{ID: "user-1", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc := NewAuthService(store, testAuthConfig())

	_, err := svc.Login(context.Background(), user.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.CodeUnauthorized {
		t.Fatalf("want unauthorized, got %v", err)
	}
	if derr.Message != "invalid credentials" {
		t.Fatalf("message = %q", derr.Message)
	}
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc := NewAuthService(&mockStore{}, testAuthConfig())

	_, err := svc.Login(context.Background(), user.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.CodeUnauthorized {
		t.Fatalf("want unauthorized, got %v", err)
	}
	// Unknown account and wrong password must be indistinguishable.
	if derr.Message != "invalid credentials" {
		t.Fatalf("message = %q", derr.Message)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	raw := "raw-refresh-token"
	var rotatedOld string
	var newStored *user.RefreshToken
	store := &mockStore{
		getRefreshTokenByHashFn: func(_ context.Context, hash string) (*user.RefreshToken, error) {
			if hash != hashSHA256(raw) {
				return nil, domain.ErrNotFound
			}
			return &user.RefreshToken{ID: "rt-old", UserID: "user-1", TokenHash: hash}, nil
		},
		getUserFn: func(_ context.Context, id string) (*user.User, error) {
			return &user.User{ID: id, Email: "ada@example.com", Name: "Ada"}, nil
		},
		rotateRefreshTokenFn: func(_ context.Context, oldID string, rt *user.RefreshToken) error {
			rotatedOld = oldID
			rt.ID = "rt-new"
			newStored = rt
			return nil
		},
	}
	svc := NewAuthService(store, testAuthConfig())

	sess, err := svc.Refresh(context.Background(), raw)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotatedOld != "rt-old" {
		t.Fatalf("rotated old id = %q", rotatedOld)
	}
	if sess.RefreshToken == raw {
		t.Fatal("refresh token was not replaced")
	}
	if newStored.TokenHash != hashSHA256(sess.RefreshToken) {
		t.Fatal("stored hash does not match issued token")
	}
}

func TestRefreshConsumedToken(t *testing.T) {
	store := &mockStore{
		getRefreshTokenByHashFn: func(context.Context, string) (*user.RefreshToken, error) {
			return &user.RefreshToken{ID: "rt-old", UserID: "user-1"}, nil
		},
		getUserFn: func(_ context.Context, id string) (*user.User, error) {
			return &user.User{ID: id}, nil
		},
		rotateRefreshTokenFn: func(context.Context, string, *user.RefreshToken) error {
			return domain.ErrNotFound
		},
	}
	svc := NewAuthService(store, testAuthConfig())

	_, err := svc.Refresh(context.Background(), "already-consumed")
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.CodeUnauthorized {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestValidateAccessTokenRejectsForgedAndExpired(t *testing.T) {
	svc := NewAuthService(&mockStore{}, testAuthConfig())
	u := &user.User{ID: "user-1", Email: "ada@example.com"}

	token, err := svc.signJWT(u)
	if err != nil {
		t.Fatalf("signJWT: %v", err)
	}

	other := NewAuthService(&mockStore{}, config.Auth{
		JWTSecret:         "different-secret",
		AccessTokenExpiry: 15 * time.Minute,
	})
	if _, err := other.ValidateAccessToken(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}

	expiredCfg := testAuthConfig()
	expiredCfg.AccessTokenExpiry = -time.Minute
	expired := NewAuthService(&mockStore{}, expiredCfg)
	expToken, err := expired.signJWT(u)
	if err != nil {
		t.Fatalf("signJWT: %v", err)
	}
	if _, err := svc.ValidateAccessToken(expToken); err == nil {
		t.Fatal("expired token was accepted")
	}

	if _, err := svc.ValidateAccessToken("not.a.jwt"); err == nil {
		t.Fatal("garbage token was accepted")
	}
}

func TestMeUnknownUser(t *testing.T) {
	svc := NewAuthService(&mockStore{}, testAuthConfig())

	_, err := svc.Me(context.Background(), "ghost")
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.CodeUnauthorized {
		t.Fatalf("want unauthorized, got %v", err)
	}
	if !strings.Contains(derr.Message, "no longer exists") {
		t.Fatalf("message = %q", derr.Message)
	}
}
