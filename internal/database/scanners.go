package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Niklauzi/lyte/internal/models"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u        models.User
		hash     sql.NullString
		deviceID sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.Avatar, &hash, &deviceID, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.PasswordHash = hash.String
	u.DeviceID = deviceID.String
	return &u, nil
}

func scanPost(row scanner) (*models.Post, error) {
	var (
		p   models.Post
		raw string
	)
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Content, &raw, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan post: %w", err)
	}
	p.Images = decodeImages(raw)
	return &p, nil
}

func scanComment(row scanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.User.Username, &c.User.Avatar, &c.Content, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &c, nil
}

// Image references are stored as a JSON array in a TEXT column, matching
// the wire representation.
func encodeImages(images []string) string {
	if len(images) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(images)
	if err != nil {
		return "[]"
	}
	return string(raw)
}

func decodeImages(raw string) []string {
	images := []string{}
	if raw == "" {
		return images
	}
	_ = json.Unmarshal([]byte(raw), &images)
	return images
}
