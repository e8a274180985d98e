package reaction_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niklauzi/lyte/internal/database"
	"github.com/Niklauzi/lyte/internal/reaction"
)

func TestPostViewAggregates(t *testing.T) {
	db := newTestDB(t)
	store := database.NewStore(db)
	engine := reaction.New(db)
	ctx := context.Background()

	author := newTestUser(t, store, "author")
	post, err := store.CreatePost(ctx, author.ID, "hello", "world", []string{"/static/a.png"})
	require.NoError(t, err)

	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	_, err = engine.Apply(ctx, post.ID, alice.ID, reaction.Like)
	require.NoError(t, err)
	_, err = engine.Apply(ctx, post.ID, bob.ID, reaction.Dislike)
	require.NoError(t, err)
	_, err = store.CreateComment(ctx, post.ID, alice.ID, "first")
	require.NoError(t, err)
	_, err = store.CreateComment(ctx, post.ID, bob.ID, "second")
	require.NoError(t, err)

	t.Run("anonymous viewer", func(t *testing.T) {
		view, err := engine.PostView(ctx, post.ID, reaction.AnonymousViewer)
		require.NoError(t, err)

		assert.Equal(t, "hello", view.Title)
		assert.Equal(t, "author", view.Author.Username)
		assert.Equal(t, []string{"/static/a.png"}, view.Images)
		assert.Equal(t, 1, view.Likes)
		assert.Equal(t, 1, view.Dislikes)
		assert.Equal(t, 2, view.CommentCount)
		assert.False(t, view.UserLiked)
		assert.False(t, view.UserDisliked)
	})

	t.Run("viewer who liked", func(t *testing.T) {
		view, err := engine.PostView(ctx, post.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, view.UserLiked)
		assert.False(t, view.UserDisliked)
	})

	t.Run("viewer who disliked", func(t *testing.T) {
		view, err := engine.PostView(ctx, post.ID, bob.ID)
		require.NoError(t, err)
		assert.False(t, view.UserLiked)
		assert.True(t, view.UserDisliked)
	})

	t.Run("viewer without reaction", func(t *testing.T) {
		view, err := engine.PostView(ctx, post.ID, author.ID)
		require.NoError(t, err)
		assert.False(t, view.UserLiked)
		assert.False(t, view.UserDisliked)
	})

	t.Run("unknown post", func(t *testing.T) {
		_, err := engine.PostView(ctx, post.ID+999, reaction.AnonymousViewer)
		assert.ErrorIs(t, err, reaction.ErrPostNotFound)
	})
}

// Counts must not inflate when a post has both several comments and several
// reactions; the joins fan out but the aggregation must not.
func TestPostViewNoCrossJoinInflation(t *testing.T) {
	db := newTestDB(t)
	store := database.NewStore(db)
	engine := reaction.New(db)
	ctx := context.Background()

	author := newTestUser(t, store, "author")
	post := newTestPost(t, store, author.ID)

	users := []string{"u1", "u2", "u3"}
	for _, name := range users {
		u := newTestUser(t, store, name)
		_, err := engine.Apply(ctx, post.ID, u.ID, reaction.Like)
		require.NoError(t, err)
		_, err = store.CreateComment(ctx, post.ID, u.ID, "c")
		require.NoError(t, err)
	}

	view, err := engine.PostView(ctx, post.ID, reaction.AnonymousViewer)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Likes)
	assert.Equal(t, 0, view.Dislikes)
	assert.Equal(t, 3, view.CommentCount)
}

func TestListViews(t *testing.T) {
	db := newTestDB(t)
	store := database.NewStore(db)
	engine := reaction.New(db)
	ctx := context.Background()

	author := newTestUser(t, store, "author")
	reader := newTestUser(t, store, "reader")

	first := newTestPost(t, store, author.ID)
	second := newTestPost(t, store, author.ID)
	third := newTestPost(t, store, author.ID)

	_, err := engine.Apply(ctx, first.ID, reader.ID, reaction.Like)
	require.NoError(t, err)
	_, err = engine.Apply(ctx, third.ID, reader.ID, reaction.Dislike)
	require.NoError(t, err)

	views, err := engine.ListViews(ctx, reader.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)

	// Newest first.
	assert.Equal(t, third.ID, views[0].ID)
	assert.Equal(t, second.ID, views[1].ID)
	assert.Equal(t, first.ID, views[2].ID)

	assert.True(t, views[0].UserDisliked)
	assert.False(t, views[0].UserLiked)
	assert.False(t, views[1].UserLiked)
	assert.False(t, views[1].UserDisliked)
	assert.True(t, views[2].UserLiked)

	t.Run("empty feed", func(t *testing.T) {
		empty := newTestDB(t)
		views, err := reaction.New(empty).ListViews(ctx, reaction.AnonymousViewer)
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}
