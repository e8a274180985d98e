package reaction

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Niklauzi/lyte/internal/models"
)

// AnonymousViewer marks the absence of a viewing user; both per-user flags
// stay false.
const AnonymousViewer = 0

const viewColumns = `
	SELECT p.id, p.title, p.content, p.images, p.created_at, p.updated_at,
	       u.username, COALESCE(u.avatar, ''),
	       COUNT(DISTINCT CASE WHEN i.type = 'like' THEN i.id END),
	       COUNT(DISTINCT CASE WHEN i.type = 'dislike' THEN i.id END),
	       COUNT(DISTINCT c.id)
	FROM posts p
	JOIN users u ON p.author_id = u.id
	LEFT JOIN interactions i ON i.post_id = p.id
	LEFT JOIN comments c ON c.post_id = p.id`

// PostView builds the aggregated read model for one post. The counts and
// the viewer's own reaction are read inside a single transaction, so the
// flags can never disagree with the counters.
func (e *Engine) PostView(ctx context.Context, postID, viewerID int) (*models.PostView, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("post view: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, viewColumns+`
		WHERE p.id = ?
		GROUP BY p.id`, postID)

	view, err := scanView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}

	if viewerID != AnonymousViewer {
		var current string
		err = tx.QueryRowContext(ctx, `
			SELECT type FROM interactions
			WHERE post_id = ? AND user_id = ?`,
			postID, viewerID,
		).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post view: %w", err)
		}
		view.UserLiked = current == string(Like)
		view.UserDisliked = current == string(Dislike)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("post view: %w", err)
	}
	return view, nil
}

// ListViews builds the feed, newest post first. The viewer's reactions are
// fetched with one batched query for all posts rather than one per post.
func (e *Engine) ListViews(ctx context.Context, viewerID int) ([]models.PostView, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, viewColumns+`
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}

	views := []models.PostView{}
	for rows.Next() {
		view, err := scanView(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		views = append(views, *view)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}

	if viewerID != AnonymousViewer && len(views) > 0 {
		mine, err := viewerReactions(ctx, tx, viewerID)
		if err != nil {
			return nil, err
		}
		for idx := range views {
			current := mine[views[idx].ID]
			views[idx].UserLiked = current == string(Like)
			views[idx].UserDisliked = current == string(Dislike)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	return views, nil
}

func viewerReactions(ctx context.Context, tx *sql.Tx, viewerID int) (map[int]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT post_id, type FROM interactions
		WHERE user_id = ?`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("viewer reactions: %w", err)
	}
	defer rows.Close()

	mine := make(map[int]string)
	for rows.Next() {
		var (
			postID  int
			current string
		)
		if err := rows.Scan(&postID, &current); err != nil {
			return nil, fmt.Errorf("viewer reactions: %w", err)
		}
		mine[postID] = current
	}
	return mine, rows.Err()
}

func scanView(row interface{ Scan(dest ...any) error }) (*models.PostView, error) {
	var (
		v   models.PostView
		raw string
	)
	err := row.Scan(
		&v.ID, &v.Title, &v.Content, &raw, &v.CreatedAt, &v.UpdatedAt,
		&v.Author.Username, &v.Author.Avatar,
		&v.Likes, &v.Dislikes, &v.CommentCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan view: %w", err)
	}

	v.Images = []string{}
	_ = json.Unmarshal([]byte(raw), &v.Images)
	return &v, nil
}
