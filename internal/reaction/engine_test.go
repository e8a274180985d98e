package reaction_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niklauzi/lyte/internal/database"
	"github.com/Niklauzi/lyte/internal/models"
	"github.com/Niklauzi/lyte/internal/reaction"
)

// newTestDB opens an in-memory database. The pool is pinned to a single
// connection because every in-memory connection is its own database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestUser(t *testing.T, store *database.Store, username string) *models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), username, "x")
	require.NoError(t, err)
	return user
}

func newTestPost(t *testing.T, store *database.Store, authorID int) *models.Post {
	t.Helper()
	post, err := store.CreatePost(context.Background(), authorID, "title", "content", nil)
	require.NoError(t, err)
	return post
}

func TestApplyToggleAndSwitch(t *testing.T) {
	db := newTestDB(t)
	store := database.NewStore(db)
	engine := reaction.New(db)
	ctx := context.Background()

	author := newTestUser(t, store, "author")
	post := newTestPost(t, store, author.ID)
	user := newTestUser(t, store, "reader")

	steps := []struct {
		action reaction.Action
		want   reaction.Result
	}{
		{reaction.Like, reaction.Result{State: reaction.Liked, Likes: 1, Dislikes: 0}},
		{reaction.Like, reaction.Result{State: reaction.None, Likes: 0, Dislikes: 0}},
		{reaction.Like, reaction.Result{State: reaction.Liked, Likes: 1, Dislikes: 0}},
		{reaction.Dislike, reaction.Result{State: reaction.Disliked, Likes: 0, Dislikes: 1}},
		{reaction.Dislike, reaction.Result{State: reaction.None, Likes: 0, Dislikes: 0}},
		{reaction.Dislike, reaction.Result{State: reaction.Disliked, Likes: 0, Dislikes: 1}},
		{reaction.Like, reaction.Result{State: reaction.Liked, Likes: 1, Dislikes: 0}},
	}
	for i, step := range steps {
		got, err := engine.Apply(ctx, post.ID, user.ID, step.action)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.want, got, "step %d", i)
	}
}

func TestApplyAtMostOneReactionPerUser(t *testing.T) {
	db := newTestDB(t)
	store := database.NewStore(db)
	engine := reaction.New(db)
	ctx := context.Background()

	author := newTestUser(t, store, "author")
	post := newTestPost(t, store, author.ID)
	user := newTestUser(t, store, "reader")

	// Whatever sequence of actions runs, the pair holds at most one row.
	for _, action := range []reaction.Action{
		reaction.Like, reaction.Dislike, reaction.Dislike, reaction.Like, reaction.Dislike,
	} {
		_, err := engine.Apply(ctx, post.ID, user.ID, action)
		require.NoError(t, err)

		var rows int
		err = db.QueryRow(
			"SELECT COUNT(*) FROM interactions WHERE post_id = ? AND user_id = ?",
			post.ID, user.ID,
		).Scan(&rows)
		require.NoError(t, err)
		assert.LessOrEqual(t, rows, 1)
	}
}

func TestApplyCountsAcrossUsers(t *testing.T) {
	db := newTestDB(t)
	store := database.NewStore(db)
	engine := reaction.New(db)
	ctx := context.Background()

	author := newTestUser(t, store, "author")
	post := newTestPost(t, store, author.ID)

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")
	carol := newTestUser(t, store, "carol")

	_, err := engine.Apply(ctx, post.ID, alice.ID, reaction.Like)
	require.NoError(t, err)
	_, err = engine.Apply(ctx, post.ID, bob.ID, reaction.Like)
	require.NoError(t, err)
	res, err := engine.Apply(ctx, post.ID, carol.ID, reaction.Dislike)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Likes)
	assert.Equal(t, 1, res.Dislikes)

	// Alice switching sides moves one unit from likes to dislikes.
	res, err = engine.Apply(ctx, post.ID, alice.ID, reaction.Dislike)
	require.NoError(t, err)
	assert.Equal(t, reaction.Disliked, res.State)
	assert.Equal(t, 1, res.Likes)
	assert.Equal(t, 2, res.Dislikes)
}

func TestApplyCommentsDoNotAffectCounts(t *testing.T) {
	db := newTestDB(t)
	store := database.NewStore(db)
	engine := reaction.New(db)
	ctx := context.Background()

	author := newTestUser(t, store, "author")
	post := newTestPost(t, store, author.ID)
	user := newTestUser(t, store, "reader")

	for range 3 {
		_, err := store.CreateComment(ctx, post.ID, user.ID, "hello")
		require.NoError(t, err)
	}

	res, err := engine.Apply(ctx, post.ID, user.ID, reaction.Like)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Likes)
	assert.Equal(t, 0, res.Dislikes)
}

func TestApplyErrors(t *testing.T) {
	db := newTestDB(t)
	store := database.NewStore(db)
	engine := reaction.New(db)
	ctx := context.Background()

	author := newTestUser(t, store, "author")
	post := newTestPost(t, store, author.ID)

	t.Run("unknown post", func(t *testing.T) {
		_, err := engine.Apply(ctx, post.ID+999, author.ID, reaction.Like)
		assert.ErrorIs(t, err, reaction.ErrPostNotFound)
	})

	t.Run("invalid action", func(t *testing.T) {
		_, err := engine.Apply(ctx, post.ID, author.ID, reaction.Action("love"))
		assert.ErrorIs(t, err, reaction.ErrInvalidAction)
	})
}
