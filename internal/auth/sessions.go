package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Niklauzi/lyte/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrSessionExpired     = errors.New("auth: session expired or unknown")
)

// Sessions issues and resolves opaque bearer tokens. Tokens are never
// revoked explicitly; they only stop working once expires_at has passed.
// Expired rows are deleted lazily on lookup.
type Sessions struct {
	db  *sql.DB
	ttl time.Duration
}

func NewSessions(db *sql.DB, ttl time.Duration) *Sessions {
	return &Sessions{db: db, ttl: ttl}
}

// Create issues a fresh token for userID.
func (s *Sessions) Create(ctx context.Context, userID int) (*models.Session, error) {
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.ttl).UTC(),
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

// UserByToken resolves a bearer token to its user. Expired or unknown
// tokens yield ErrSessionExpired.
func (s *Sessions) UserByToken(ctx context.Context, token string) (*models.User, error) {
	var (
		u         models.User
		hash      sql.NullString
		deviceID  sql.NullString
		expiresAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.avatar, u.password_hash, u.device_id,
		       u.is_admin, u.created_at, se.expires_at
		FROM users u
		JOIN sessions se ON u.id = se.user_id
		WHERE se.token = ?`,
		token,
	).Scan(&u.ID, &u.Username, &u.Avatar, &hash, &deviceID, &u.IsAdmin, &u.CreatedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if time.Now().After(expiresAt) {
		_, _ = s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
		return nil, ErrSessionExpired
	}

	u.PasswordHash = hash.String
	u.DeviceID = deviceID.String
	return &u, nil
}

// PurgeExpired removes every expired session row and returns how many were
// deleted. Called periodically from main.
func (s *Sessions) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
