package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"unicode/utf8"

	"backend-ripple/internal/auth"
	"backend-ripple/internal/db"
	"backend-ripple/internal/httperr"
	"backend-ripple/internal/imagehost"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service struct {
	db     db.Querier
	images imagehost.Host
}

func NewService(db db.Querier, images imagehost.Host) *Service {
	return &Service{db: db, images: images}
}

const postColumns = `id, posted_by, text, img, likes, replies, created_at`

func (s *Service) Create(ctx context.Context, authorID string, req CreateRequest) (Post, error) {
	if req.Text == "" {
		return Post{}, fmt.Errorf("text field is required: %w", httperr.ErrValidation)
	}
	if utf8.RuneCountInString(req.Text) > maxTextLength {
		return Post{}, fmt.Errorf("text field should not exceed %d characters: %w", maxTextLength, httperr.ErrValidation)
	}

	var authorExists string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE id = $1`, authorID).Scan(&authorExists)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, fmt.Errorf("user not found: %w", httperr.ErrNotFound)
	}
	if err != nil {
		return Post{}, err
	}

	img := ""
	if req.Img != "" {
		url, err := s.images.Upload(ctx, req.Img)
		if err != nil {
			return Post{}, err
		}
		img = url
	}

	post := Post{
		ID:       uuid.NewString(),
		PostedBy: authorID,
		Text:     req.Text,
		Img:      img,
		Likes:    []string{},
		Replies:  []Reply{},
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO posts (id, posted_by, text, img, likes, replies)
		VALUES ($1,$2,$3,$4,'{}','[]')
		RETURNING created_at
	`, post.ID, post.PostedBy, post.Text, post.Img)
	if err := row.Scan(&post.CreatedAt); err != nil {
		return Post{}, err
	}
	return post, nil
}

func (s *Service) Get(ctx context.Context, id string) (Post, error) {
	return s.scanPost(s.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
}

func (s *Service) Delete(ctx context.Context, requesterID, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.PostedBy != requesterID {
		return fmt.Errorf("only the author can delete a post: %w", httperr.ErrForbidden)
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return err
	}

	if post.Img != "" {
		// Best effort: the post is already gone, an orphaned image is only noise.
		if err := s.images.Destroy(ctx, imagehost.PublicID(post.Img)); err != nil {
			log.Printf("destroy post image: %v", err)
		}
	}
	return nil
}

// ToggleLike likes the post when the user has not liked it yet, unlikes
// otherwise, and reports whether the user likes the post after the call.
// Membership check and array update are not fenced against each other, so two
// concurrent toggles for the same user can flip twice.
func (s *Service) ToggleLike(ctx context.Context, userID, id string) (bool, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}

	if slices.Contains(post.Likes, userID) {
		if _, err := s.db.Exec(ctx, `
			UPDATE posts SET likes = array_remove(likes, $2) WHERE id = $1
		`, id, userID); err != nil {
			return false, err
		}
		return false, nil
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE posts SET likes = array_append(likes, $2) WHERE id = $1
	`, id, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Reply(ctx context.Context, replier auth.User, id, text string) (Reply, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return Reply{}, err
	}
	if text == "" {
		return Reply{}, fmt.Errorf("text field is required: %w", httperr.ErrValidation)
	}

	reply := Reply{
		UserID:     replier.ID,
		Text:       text,
		Username:   replier.Username,
		ProfilePic: replier.ProfilePic,
	}
	payload, err := json.Marshal(reply)
	if err != nil {
		return Reply{}, err
	}

	if _, err := s.db.Exec(ctx, `
		UPDATE posts SET replies = replies || $2::jsonb WHERE id = $1
	`, id, payload); err != nil {
		return Reply{}, err
	}
	return reply, nil
}

// Feed returns every post authored by someone the user follows, newest first.
func (s *Service) Feed(ctx context.Context, userID string) ([]Post, error) {
	var following []string
	err := s.db.QueryRow(ctx, `SELECT following FROM users WHERE id = $1`, userID).Scan(&following)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", httperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return s.listPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE posted_by = ANY($1)
		ORDER BY created_at DESC
	`, following)
}

func (s *Service) UserPosts(ctx context.Context, username string) ([]Post, error) {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %w", httperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return s.listPosts(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE posted_by = $1
		ORDER BY created_at DESC
	`, authorID)
}

func (s *Service) listPosts(ctx context.Context, sql string, arg any) ([]Post, error) {
	rows, err := s.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.PostedBy, &p.Text, &p.Img, &p.Likes, &p.Replies, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Service) scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.PostedBy, &p.Text, &p.Img, &p.Likes, &p.Replies, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Post{}, fmt.Errorf("post not found: %w", httperr.ErrNotFound)
	}
	if err != nil {
		return Post{}, err
	}
	return p, nil
}
