// Package reaction implements the like/dislike state machine and the
// aggregated post read model built on top of it.
//
// Per (post, user) pair the state is one of none, like or dislike.
// Applying the action a user already holds removes it (toggle off); any
// other action replaces whatever was there. The interactions table carries
// UNIQUE(post_id, user_id), so the whole transition is a single upsert or
// delete inside one transaction and the at-most-one-reaction invariant
// holds even under concurrent requests.
package reaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Action is a requested reaction.
type Action string

const (
	Like    Action = "like"
	Dislike Action = "dislike"
)

// Valid reports whether a is one of the two recognized actions.
func (a Action) Valid() bool {
	return a == Like || a == Dislike
}

// State is the reaction a user holds on a post after a transition.
type State string

const (
	None     State = "none"
	Liked    State = "like"
	Disliked State = "dislike"
)

var (
	ErrPostNotFound  = errors.New("reaction: post not found")
	ErrInvalidAction = errors.New("reaction: action must be like or dislike")
)

// Result reports the outcome of a transition together with the post's
// counters, recomputed in the same transaction as the write.
type Result struct {
	State    State `json:"state"`
	Likes    int   `json:"likes"`
	Dislikes int   `json:"dislikes"`
}

// Engine applies reaction transitions against the shared database handle.
type Engine struct {
	db *sql.DB
}

func New(db *sql.DB) *Engine {
	return &Engine{db: db}
}

// Apply executes the 3-state toggle for (postID, userID) and returns the
// resulting state plus fresh counts. A constraint conflict from a
// concurrent writer is retried once transparently.
func (e *Engine) Apply(ctx context.Context, postID, userID int, action Action) (Result, error) {
	if !action.Valid() {
		return Result{}, ErrInvalidAction
	}

	res, err := e.apply(ctx, postID, userID, action)
	if err != nil && isConflict(err) {
		res, err = e.apply(ctx, postID, userID, action)
	}
	return res, err
}

func (e *Engine) apply(ctx context.Context, postID, userID int, action Action) (Result, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("apply reaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM posts WHERE id = ?", postID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrPostNotFound
	}
	if err != nil {
		return Result{}, fmt.Errorf("apply reaction: %w", err)
	}

	var current string
	err = tx.QueryRowContext(ctx, `
		SELECT type FROM interactions
		WHERE post_id = ? AND user_id = ?`,
		postID, userID,
	).Scan(&current)

	state := State(action)
	switch {
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return Result{}, fmt.Errorf("apply reaction: %w", err)

	case err == nil && current == string(action):
		// Toggle off: the user already holds this reaction.
		_, err = tx.ExecContext(ctx, `
			DELETE FROM interactions
			WHERE post_id = ? AND user_id = ?`,
			postID, userID,
		)
		if err != nil {
			return Result{}, fmt.Errorf("apply reaction: %w", err)
		}
		state = None

	default:
		// No reaction yet, or the opposite one: the upsert replaces it
		// atomically under the (post_id, user_id) uniqueness constraint.
		_, err = tx.ExecContext(ctx, `
			INSERT INTO interactions (post_id, user_id, type)
			VALUES (?, ?, ?)
			ON CONFLICT (post_id, user_id)
			DO UPDATE SET type = excluded.type, created_at = CURRENT_TIMESTAMP`,
			postID, userID, string(action),
		)
		if err != nil {
			return Result{}, fmt.Errorf("apply reaction: %w", err)
		}
	}

	likes, dislikes, err := countsTx(ctx, tx, postID)
	if err != nil {
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("apply reaction: %w", err)
	}
	return Result{State: state, Likes: likes, Dislikes: dislikes}, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func countsTx(ctx context.Context, q querier, postID int) (likes, dislikes int, err error) {
	err = q.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'like' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'dislike' THEN 1 ELSE 0 END), 0)
		FROM interactions
		WHERE post_id = ?`,
		postID,
	).Scan(&likes, &dislikes)
	if err != nil {
		return 0, 0, fmt.Errorf("count reactions: %w", err)
	}
	return likes, dislikes, nil
}

// isConflict matches the constraint and busy errors SQLite reports when a
// concurrent writer races the same pair.
func isConflict(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint || serr.Code == sqlite3.ErrBusy
	}
	return false
}
