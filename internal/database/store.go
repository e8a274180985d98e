package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Niklauzi/lyte/internal/models"
)

// Store wraps the shared database handle with the CRUD surface for users,
// posts and comments. Reaction state lives in internal/reaction.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

//
// Users
//

// CreateUser inserts a credentialed user. Returns ErrUsernameTaken when the
// username is already held by another credentialed user.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES (?, ?)`,
		username, passwordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.UserByID(ctx, int(id))
}

// GetOrCreateAnonymous returns the anonymous user registered for deviceID,
// creating one with the given display name on first sight.
func (s *Store) GetOrCreateAnonymous(ctx context.Context, deviceID, username string) (*models.User, error) {
	user, err := s.userBy(ctx, "device_id = ?", deviceID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, device_id)
		VALUES (?, ?)`,
		username, deviceID,
	)
	if err != nil {
		// Lost a race with another request for the same device.
		if isUniqueViolation(err) {
			return s.userBy(ctx, "device_id = ?", deviceID)
		}
		return nil, fmt.Errorf("create anonymous user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create anonymous user: %w", err)
	}
	return s.UserByID(ctx, int(id))
}

func (s *Store) UserByID(ctx context.Context, id int) (*models.User, error) {
	return s.userBy(ctx, "id = ?", id)
}

// UserByUsername looks up a credentialed user; anonymous users are not
// addressable by name.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userBy(ctx, "LOWER(username) = LOWER(?) AND device_id IS NULL", username)
}

func (s *Store) userBy(ctx context.Context, where string, arg any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, avatar, password_hash, device_id, is_admin, created_at
		FROM users
		WHERE `+where, arg)
	return scanUser(row)
}

// SeedAdmin ensures an admin account exists for username. An existing
// credentialed user is promoted without touching their password.
func (s *Store) SeedAdmin(ctx context.Context, username, passwordHash string) error {
	user, err := s.UserByUsername(ctx, username)
	switch {
	case errors.Is(err, ErrNotFound):
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO users (username, password_hash, is_admin)
			VALUES (?, ?, 1)`,
			username, passwordHash,
		)
		if err != nil {
			return fmt.Errorf("seed admin %s: %w", username, err)
		}
		return nil
	case err != nil:
		return err
	case user.IsAdmin:
		return nil
	default:
		_, err = s.db.ExecContext(ctx, "UPDATE users SET is_admin = 1 WHERE id = ?", user.ID)
		if err != nil {
			return fmt.Errorf("seed admin %s: %w", username, err)
		}
		return nil
	}
}

//
// Posts
//

func (s *Store) CreatePost(ctx context.Context, authorID int, title, content string, images []string) (*models.Post, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (author_id, title, content, images)
		VALUES (?, ?, ?, ?)`,
		authorID, title, content, encodeImages(images),
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.PostByID(ctx, int(id))
}

func (s *Store) PostByID(ctx context.Context, id int) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, title, content, images, created_at, updated_at
		FROM posts
		WHERE id = ?`, id)
	return scanPost(row)
}

// UpdatePost replaces title, content and the full image list, bumping
// updated_at.
func (s *Store) UpdatePost(ctx context.Context, id int, title, content string, images []string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts
		SET title = ?, content = ?, images = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		title, content, encodeImages(images), id,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes the post together with its comments and reactions in
// one transaction and returns the image references that were attached, so
// the caller can clean up the files.
func (s *Store) DeletePost(ctx context.Context, id int) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, "SELECT images FROM posts WHERE id = ?", id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}

	for _, stmt := range []string{
		"DELETE FROM comments WHERE post_id = ?",
		"DELETE FROM interactions WHERE post_id = ?",
		"DELETE FROM posts WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return nil, fmt.Errorf("delete post: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	return decodeImages(raw), nil
}

//
// Comments
//

func (s *Store) CreateComment(ctx context.Context, postID, userID int, content string) (*models.Comment, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM posts WHERE id = ?", postID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (post_id, user_id, content)
		VALUES (?, ?, ?)`,
		postID, userID, content,
	)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return s.CommentByID(ctx, int(id))
}

func (s *Store) CommentByID(ctx context.Context, id int) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.username, u.avatar, c.content, c.created_at
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.id = ?`, id)
	return scanComment(row)
}

// CommentCount returns how many comments a post has.
func (s *Store) CommentCount(ctx context.Context, postID int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments WHERE post_id = ?", postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

// CommentsByPost returns a post's comments oldest first.
func (s *Store) CommentsByPost(ctx context.Context, postID int) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.username, u.avatar, c.content, c.created_at
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.post_id = ?
		ORDER BY c.created_at ASC, c.id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}
