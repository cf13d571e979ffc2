package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "blog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Bootstrap(context.Background()))
	return s
}

func seedSQLiteUser(t *testing.T, s *SQLite, id, email string) *User {
	t.Helper()
	now := time.Now().UTC()
	u := &User{
		ID:           id,
		FullName:     "Jane Doe",
		Email:        email,
		PasswordHash: "bcrypt-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().Save(context.Background(), u))
	return u
}

func TestSQLiteUsers(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	seedSQLiteUser(t, s, "u1", "a@b.com")

	u, err := s.Users().FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "bcrypt-hash", u.PasswordHash)

	u, err = s.Users().FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	_, err = s.Users().FindByEmail(ctx, "missing@b.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Users().FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteUsers_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	seedSQLiteUser(t, s, "u1", "a@b.com")

	now := time.Now().UTC()
	err := s.Users().Save(ctx, &User{
		ID: "u2", FullName: "Jane Again", Email: "a@b.com",
		PasswordHash: "other-hash", CreatedAt: now, UpdatedAt: now,
	})
	assert.Error(t, err, "unique email index must reject the second save")
}

func TestSQLitePosts_FindEmbedsAuthorInOrder(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	seedSQLiteUser(t, s, "u1", "a@b.com")
	now := time.Now().UTC()

	require.NoError(t, s.Posts().Save(ctx, &Post{
		ID: "p1", Title: "first", Text: "text one", Tags: []string{"go", "blog"},
		UserID: "u1", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, s.Posts().Save(ctx, &Post{
		ID: "p2", Title: "second", Text: "text two",
		UserID: "u1", CreatedAt: now, UpdatedAt: now,
	}))

	posts, err := s.Posts().Find(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p1", posts[0].ID)
	assert.Equal(t, "p2", posts[1].ID)
	require.NotNil(t, posts[0].User)
	assert.Equal(t, "Jane Doe", posts[0].User.FullName)

	// Tags survive the JSON text column round trip; a post saved with
	// nil tags reads back as an empty array, not null.
	assert.Equal(t, []string{"go", "blog"}, posts[0].Tags)
	assert.Equal(t, []string{}, posts[1].Tags)
}

func TestSQLitePosts_IncViewsIsPersistent(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	seedSQLiteUser(t, s, "u1", "a@b.com")
	now := time.Now().UTC()
	require.NoError(t, s.Posts().Save(ctx, &Post{
		ID: "p1", Title: "first", Text: "text", UserID: "u1", CreatedAt: now, UpdatedAt: now,
	}))

	p, err := s.Posts().FindOneAndIncViews(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.ViewsCount)

	p, err = s.Posts().FindOneAndIncViews(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.ViewsCount)

	_, err = s.Posts().FindOneAndIncViews(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLitePosts_UpdateOne(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	seedSQLiteUser(t, s, "u1", "a@b.com")
	seedSQLiteUser(t, s, "u2", "c@d.com")
	now := time.Now().UTC()
	require.NoError(t, s.Posts().Save(ctx, &Post{
		ID: "p1", Title: "first", Text: "text", Tags: []string{"go"},
		UserID: "u1", CreatedAt: now, UpdatedAt: now,
	}))

	err := s.Posts().UpdateOne(ctx, "p1", PostUpdate{
		Title: "edited", Text: "new text", Tags: []string{"news"}, UserID: "u2",
	})
	require.NoError(t, err)

	p, err := s.Posts().FindOneAndIncViews(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "edited", p.Title)
	assert.Equal(t, []string{"news"}, p.Tags)
	assert.Equal(t, "u2", p.User.ID, "update reassigns the author")

	// Updating a missing id is not an error.
	assert.NoError(t, s.Posts().UpdateOne(ctx, "missing", PostUpdate{Title: "x"}))
}

func TestSQLitePosts_UpdateWithNilTagsMatchesMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	sq := newSQLite(t)
	mem := NewMemory()
	for _, st := range []struct {
		users Users
		posts Posts
	}{
		{sq.Users(), sq.Posts()},
		{mem.Users(), mem.Posts()},
	} {
		require.NoError(t, st.users.Save(ctx, &User{
			ID: "u1", FullName: "Jane Doe", Email: "a@b.com",
			CreatedAt: now, UpdatedAt: now,
		}))
		require.NoError(t, st.posts.Save(ctx, &Post{
			ID: "p1", Title: "first", Text: "text", Tags: []string{"go"},
			UserID: "u1", CreatedAt: now, UpdatedAt: now,
		}))
		require.NoError(t, st.posts.UpdateOne(ctx, "p1", PostUpdate{
			Title: "edited", Text: "new text", Tags: nil, UserID: "u1",
		}))
	}

	fromSQL, err := sq.Posts().FindOneAndIncViews(ctx, "p1")
	require.NoError(t, err)
	fromMem, err := mem.Posts().FindOneAndIncViews(ctx, "p1")
	require.NoError(t, err)

	// Both backends normalize an absent tags field to an empty array,
	// never to null.
	assert.Equal(t, []string{}, fromSQL.Tags)
	assert.Equal(t, []string{}, fromMem.Tags)
}

func TestSQLitePosts_Delete(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	seedSQLiteUser(t, s, "u1", "a@b.com")
	now := time.Now().UTC()
	require.NoError(t, s.Posts().Save(ctx, &Post{
		ID: "p1", Title: "first", Text: "text", UserID: "u1", CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, s.Posts().FindByIDAndDelete(ctx, "p1"))
	assert.ErrorIs(t, s.Posts().FindByIDAndDelete(ctx, "p1"), ErrNotFound)

	posts, err := s.Posts().Find(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
