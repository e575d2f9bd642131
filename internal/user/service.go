package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"backend-ripple/internal/auth"
	"backend-ripple/internal/db"
	"backend-ripple/internal/httperr"
	"backend-ripple/internal/imagehost"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	db     db.Querier
	images imagehost.Host
}

func NewService(db db.Querier, images imagehost.Host) *Service {
	return &Service{db: db, images: images}
}

const userColumns = `id, name, email, username, password_hash, bio, profile_pic, followers, following, created_at, updated_at`

// Profile resolves a user by id when the query parses as one, by username
// otherwise.
func (s *Service) Profile(ctx context.Context, query string) (auth.User, error) {
	if _, err := uuid.Parse(query); err == nil {
		return s.userByID(ctx, query)
	}
	return s.userByUsername(ctx, query)
}

func (s *Service) Update(ctx context.Context, userID string, patch UpdateRequest) (auth.User, error) {
	user, err := s.userByID(ctx, userID)
	if err != nil {
		return auth.User{}, err
	}

	if patch.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return auth.User{}, err
		}
		user.PasswordHash = string(hash)
	}

	if patch.ProfilePic != "" {
		if user.ProfilePic != "" {
			// Best effort: a stale hosted image is not worth failing the update.
			if err := s.images.Destroy(ctx, imagehost.PublicID(user.ProfilePic)); err != nil {
				log.Printf("destroy old profile image: %v", err)
			}
		}
		url, err := s.images.Upload(ctx, patch.ProfilePic)
		if err != nil {
			return auth.User{}, err
		}
		user.ProfilePic = url
	}

	if patch.Name != "" {
		user.Name = patch.Name
	}
	if patch.Email != "" {
		user.Email = patch.Email
	}
	if patch.Username != "" {
		user.Username = patch.Username
	}
	if patch.Bio != "" {
		user.Bio = patch.Bio
	}

	row := s.db.QueryRow(ctx, `
		UPDATE users
		SET name=$2, email=$3, username=$4, password_hash=$5, bio=$6, profile_pic=$7, updated_at=now()
		WHERE id=$1
		RETURNING updated_at
	`, user.ID, user.Name, user.Email, user.Username, user.PasswordHash, user.Bio, user.ProfilePic)
	if err := row.Scan(&user.UpdatedAt); err != nil {
		return auth.User{}, err
	}
	return user, nil
}

// ToggleFollow follows the target when the actor does not already follow it,
// unfollows otherwise. It reports whether the actor follows the target after
// the call. The two sides of the relationship are separate single-row updates
// with no transaction around them; a crash in between leaves the pair
// inconsistent.
func (s *Service) ToggleFollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, fmt.Errorf("you cannot follow/unfollow yourself: %w", httperr.ErrValidation)
	}

	actor, err := s.userByID(ctx, actorID)
	if err != nil {
		return false, err
	}
	if _, err := s.userByID(ctx, targetID); err != nil {
		return false, err
	}

	if slices.Contains(actor.Following, targetID) {
		if _, err := s.db.Exec(ctx, `
			UPDATE users SET followers = array_remove(followers, $2) WHERE id = $1
		`, targetID, actorID); err != nil {
			return false, err
		}
		if _, err := s.db.Exec(ctx, `
			UPDATE users SET following = array_remove(following, $2) WHERE id = $1
		`, actorID, targetID); err != nil {
			return false, err
		}
		return false, nil
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE users SET followers = array_append(followers, $2) WHERE id = $1
	`, targetID, actorID); err != nil {
		return false, err
	}
	if _, err := s.db.Exec(ctx, `
		UPDATE users SET following = array_append(following, $2) WHERE id = $1
	`, actorID, targetID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) userByID(ctx context.Context, id string) (auth.User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Service) userByUsername(ctx context.Context, username string) (auth.User, error) {
	return s.scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *Service) scanUser(row pgx.Row) (auth.User, error) {
	var user auth.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Username, &user.PasswordHash,
		&user.Bio, &user.ProfilePic, &user.Followers, &user.Following, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, fmt.Errorf("user not found: %w", httperr.ErrNotFound)
	}
	if err != nil {
		return auth.User{}, err
	}
	return user, nil
}
