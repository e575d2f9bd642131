package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-ripple/internal/httperr"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

func userRows(passwordHash string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "email", "username", "password_hash", "bio", "profile_pic",
		"followers", "following", "created_at", "updated_at",
	}).AddRow(
		"user-1", "Dana", "dana@example.com", "dana", passwordHash, "", "",
		[]string{}, []string{"user-2"}, time.Now(), time.Now(),
	)
}

func TestSignup(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id FROM users`).
		WithArgs("dana@example.com", "dana").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "Dana", "dana@example.com", "dana", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))

	svc := NewService("secret", time.Hour, mock)
	user, err := svc.Signup(context.Background(), SignupRequest{
		Name: "Dana", Email: "dana@example.com", Username: "dana", Password: "pass",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.ID == "" || user.CreatedAt.IsZero() {
		t.Fatalf("expected populated user")
	}
	if user.PasswordHash == "pass" {
		t.Fatalf("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass")); err != nil {
		t.Fatalf("hash should match password: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignupMissingFields(t *testing.T) {
	svc := NewService("secret", time.Hour, nil)
	_, err := svc.Signup(context.Background(), SignupRequest{Username: "dana"})
	if !errors.Is(err, httperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSignupDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id FROM users`).
		WithArgs("dana@example.com", "dana").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("user-1"))

	svc := NewService("secret", time.Hour, mock)
	_, err = svc.Signup(context.Background(), SignupRequest{
		Name: "Dana", Email: "dana@example.com", Username: "dana", Password: "pass",
	})
	if !errors.Is(err, httperr.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestSignupLookupError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id FROM users`).
		WithArgs("dana@example.com", "dana").
		WillReturnError(errAuth)

	svc := NewService("secret", time.Hour, mock)
	_, err = svc.Signup(context.Background(), SignupRequest{
		Name: "Dana", Email: "dana@example.com", Username: "dana", Password: "pass",
	})
	if err == nil || errors.Is(err, httperr.ErrConflict) {
		t.Fatalf("expected plain store error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT id, name, email, username, password_hash`).
		WithArgs("dana").
		WillReturnRows(userRows(string(hash)))

	svc := NewService("secret", time.Hour, mock)
	user, err := svc.Login(context.Background(), LoginRequest{Username: "dana", Password: "pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user %q", user.ID)
	}
	if len(user.Following) != 1 || user.Following[0] != "user-2" {
		t.Fatalf("expected following list to load")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT id, name, email, username, password_hash`).
		WithArgs("dana").
		WillReturnRows(userRows(string(hash)))

	svc := NewService("secret", time.Hour, mock)
	_, err = svc.Login(context.Background(), LoginRequest{Username: "dana", Password: "wrong"})
	if !errors.Is(err, httperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, email, username, password_hash`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	svc := NewService("secret", time.Hour, mock)
	_, err = svc.Login(context.Background(), LoginRequest{Username: "ghost", Password: "pass"})
	if !errors.Is(err, httperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestLoginStoreError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, email, username, password_hash`).
		WithArgs("dana").
		WillReturnError(errAuth)

	svc := NewService("secret", time.Hour, mock)
	_, err = svc.Login(context.Background(), LoginRequest{Username: "dana", Password: "pass"})
	if err == nil || errors.Is(err, httperr.ErrUnauthorized) {
		t.Fatalf("expected plain store error, got %v", err)
	}
}

func TestIssueVerifyRoundtrip(t *testing.T) {
	svc := NewService("secret", time.Hour, nil)
	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user id %q", userID)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := NewService("secret", -time.Minute, nil)
	token, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Verify(token); !errors.Is(err, httperr.ErrUnauthorized) {
		t.Fatalf("expected expired token to fail verification, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewService("secret-a", time.Hour, nil).Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewService("secret-b", time.Hour, nil).Verify(token); !errors.Is(err, httperr.ErrUnauthorized) {
		t.Fatalf("expected signature mismatch to fail verification, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	svc := NewService("secret", time.Hour, nil)
	if _, err := svc.Verify("not-a-token"); !errors.Is(err, httperr.ErrUnauthorized) {
		t.Fatalf("expected malformed token to fail verification, got %v", err)
	}
}

var errAuth = errors.New("auth error")
