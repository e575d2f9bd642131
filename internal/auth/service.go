package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend-ripple/internal/db"
	"backend-ripple/internal/httperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	secret []byte
	ttl    time.Duration
	db     db.Querier
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewService(secret string, ttl time.Duration, db db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		db:     db,
	}
}

const userColumns = `id, name, email, username, password_hash, bio, profile_pic, followers, following, created_at, updated_at`

func (s *Service) Signup(ctx context.Context, req SignupRequest) (User, error) {
	if req.Name == "" || req.Email == "" || req.Username == "" || req.Password == "" {
		return User{}, fmt.Errorf("name, email, username, password required: %w", httperr.ErrValidation)
	}

	var existing string
	err := s.db.QueryRow(ctx, `
		SELECT id FROM users WHERE email = $1 OR username = $2
	`, req.Email, req.Username).Scan(&existing)
	if err == nil {
		return User{}, fmt.Errorf("user already exists: %w", httperr.ErrConflict)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Followers:    []string{},
		Following:    []string{},
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, username, password_hash, followers, following)
		VALUES ($1,$2,$3,$4,$5,'{}','{}')
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Email, user.Username, user.PasswordHash)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, error) {
	user, err := s.UserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, httperr.ErrNotFound) {
			return User{}, fmt.Errorf("invalid username or password: %w", httperr.ErrUnauthorized)
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, fmt.Errorf("invalid username or password: %w", httperr.ErrUnauthorized)
	}
	return user, nil
}

func (s *Service) UserByID(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Service) UserByUsername(ctx context.Context, username string) (User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *Service) scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Username, &user.PasswordHash,
		&user.Bio, &user.ProfilePic, &user.Followers, &user.Following, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("user not found: %w", httperr.ErrNotFound)
	}
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// Issue signs a session token carrying the user id, valid for the configured
// ttl. Setting it as a cookie is the caller's job.
func (s *Service) Issue(userID string) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded user id.
func (s *Service) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", httperr.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return "", fmt.Errorf("invalid session token: %w", httperr.ErrUnauthorized)
	}
	return claims.UserID, nil
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}
