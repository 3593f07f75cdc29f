package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		JWTSecret:        testSecret,
		JWTAccessExpiry:  time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
	}
	return NewAuthService(db, cfg), db
}

func TestSignupIssuesTokens(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)

	resp, err := svc.Signup(ctx, &dto.SignupRequest{Email: "  Jane@Example.com ", Password: "correct horse"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.User.Email != "jane@example.com" {
		t.Fatalf("email: want=%q got=%q", "jane@example.com", resp.User.Email)
	}
	if resp.User.Name != "jane" {
		t.Fatalf("name defaults to local part: got=%q", resp.User.Name)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("tokens must be issued: %+v", resp)
	}

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	if err != nil || !token.Valid {
		t.Fatalf("access token: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["sub"] != resp.User.ID.String() || claims["email"] != "jane@example.com" {
		t.Fatalf("claims: got=%v", claims)
	}

	_, err = svc.Signup(ctx, &dto.SignupRequest{Email: "jane@example.com", Password: "another password"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate: want=%v got=%v", ErrEmailTaken, err)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	_, err := svc.Signup(context.Background(), &dto.SignupRequest{Email: "nope", Password: "short"})
	fields := fieldNames(err)
	if !fields["email"] || !fields["password"] {
		t.Fatalf("want email and password errors, got=%v (err=%v)", fields, err)
	}
}

func TestSignin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	if _, err := svc.Signup(ctx, &dto.SignupRequest{Email: "sam@example.com", Password: "password123", Name: "Sam"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	resp, err := svc.Signin(ctx, &dto.SigninRequest{Email: "SAM@example.com", Password: "password123"})
	if err != nil || resp.User.Name != "Sam" {
		t.Fatalf("signin: resp=%+v err=%v", resp, err)
	}

	if _, err := svc.Signin(ctx, &dto.SigninRequest{Email: "sam@example.com", Password: "wrong-password"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: want=%v got=%v", ErrInvalidCredentials, err)
	}
	if _, err := svc.Signin(ctx, &dto.SigninRequest{Email: "ghost@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: want=%v got=%v", ErrInvalidCredentials, err)
	}
}

func TestRefreshRotatesTokens(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService(t)
	first, err := svc.Signup(ctx, &dto.SignupRequest{Email: "kim@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	second, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh token must rotate")
	}

	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reuse: want=%v got=%v", ErrInvalidToken, err)
	}

	svc.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: second.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: want=%v got=%v", ErrInvalidToken, err)
	}
}

func TestSignoutRevokesTokens(t *testing.T) {
	ctx := context.Background()
	svc, db := newAuthService(t)
	first, err := svc.Signup(ctx, &dto.SignupRequest{Email: "lee@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	second, err := svc.Signin(ctx, &dto.SigninRequest{Email: "lee@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	if err := svc.Signout(ctx, first.User.ID, &dto.SignoutRequest{RefreshToken: first.RefreshToken}); err != nil {
		t.Fatalf("signout one: %v", err)
	}
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token: want=%v got=%v", ErrInvalidToken, err)
	}

	if err := svc.Signout(ctx, first.User.ID, &dto.SignoutRequest{}); err != nil {
		t.Fatalf("signout all: %v", err)
	}
	var live int64
	db.Model(&models.RefreshToken{}).Where("user_id = ? AND revoked = ?", first.User.ID, false).Count(&live)
	if live != 0 {
		t.Fatalf("live tokens after signout: %d", live)
	}
	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: second.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("signed-out token: want=%v got=%v", ErrInvalidToken, err)
	}
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	svc, db := newAuthService(t)
	id := testutil.CreateUser(t, db, "pat@example.com")

	got, err := svc.GetUser(ctx, id)
	if err != nil || got.ID != id || got.Email != "pat@example.com" {
		t.Fatalf("get user: got=%+v err=%v", got, err)
	}

	if _, err := svc.GetUser(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user: want=%v got=%v", ErrUserNotFound, err)
	}
}

func TestRefreshLosesRaceWithConcurrentRevoke(t *testing.T) {
	ctx := context.Background()
	svc, db := newAuthService(t)
	first, err := svc.Signup(ctx, &dto.SignupRequest{Email: "rae@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Another request revokes the token right after this one has read it.
	err = db.Callback().Query().After("gorm:query").Register("test:revoke_after_read", func(tx *gorm.DB) {
		if tx.Statement.Table != "refresh_tokens" {
			return
		}
		tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE refresh_tokens SET revoked = ?", true)
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, err := svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh after concurrent revoke: want=%v got=%v", ErrInvalidToken, err)
	}

	var issued int64
	db.Model(&models.RefreshToken{}).Where("user_id = ?", first.User.ID).Count(&issued)
	if issued != 1 {
		t.Fatalf("no new token may be issued: want=1 got=%d", issued)
	}
}

func TestRefreshReportsRevokeFailure(t *testing.T) {
	ctx := context.Background()
	svc, db := newAuthService(t)
	first, err := svc.Signup(ctx, &dto.SignupRequest{Email: "max@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	err = db.Callback().Update().Before("gorm:update").Register("test:fail_revoke", func(tx *gorm.DB) {
		if tx.Statement.Table == "refresh_tokens" {
			_ = tx.AddError(errors.New("disk I/O error"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = svc.Refresh(ctx, &dto.RefreshRequest{RefreshToken: first.RefreshToken})
	if err == nil || errors.Is(err, ErrInvalidToken) {
		t.Fatalf("failed revoke must surface as an error, got=%v", err)
	}
}
