package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/postit/postit"
	"github.com/jmcleod/postit/storage"
)

func testUser(id, username string) postit.User {
	return postit.User{
		ID:        id,
		Username:  username,
		Password:  "$2a$10$hash",
		Role:      postit.RoleUser,
		CreatedAt: time.Now().UTC(),
	}
}

func testPost(id, authorID string, status postit.PostStatus, createdAt time.Time) postit.Post {
	return postit.Post{
		ID:        id,
		Content:   "content of " + id,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		AuthorID:  authorID,
	}
}

func TestUserCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateUser(ctx, testUser("u1", "alice")))

	t.Run("DuplicateID", func(t *testing.T) {
		err := s.CreateUser(ctx, testUser("u1", "other"))
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		err := s.CreateUser(ctx, testUser("u2", "alice"))
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("GetByIDAndUsername", func(t *testing.T) {
		byID, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "alice", byID.Username)

		byName, err := s.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "u1", byName.ID)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := s.GetUser(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = s.GetUserByUsername(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Update", func(t *testing.T) {
		u, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		u.Role = postit.RoleMod
		u.IsRestricted = true
		require.NoError(t, s.UpdateUser(ctx, u))

		got, err := s.GetUser(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, postit.RoleMod, got.Role)
		assert.True(t, got.IsRestricted)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		err := s.UpdateUser(ctx, testUser("ghost", "ghost"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.DeleteUser(ctx, "u1"))
		_, err := s.GetUser(ctx, "u1")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.DeleteUser(ctx, "u1"), storage.ErrNotFound)
	})
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Now().UTC()
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		u := testUser("u-"+name, name)
		u.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, s.CreateUser(ctx, u))
	}

	users, total, err := s.ListUsers(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, users, 2)
	assert.Equal(t, "e", users[0].Username, "newest first")

	users, _, err = s.ListUsers(ctx, 10, 4)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	users, _, err = s.ListUsers(ctx, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestPostListingAndCursor(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		status := postit.StatusApproved
		if i%2 == 1 {
			status = postit.StatusPending
		}
		p := testPost(
			"p"+string(rune('0'+i)),
			"author-1",
			status,
			base.Add(time.Duration(i)*time.Minute),
		)
		require.NoError(t, s.CreatePost(ctx, p))
	}
	require.NoError(t, s.CreatePost(ctx,
		testPost("other", "author-2", postit.StatusApproved, base.Add(time.Hour))))

	t.Run("NewestFirst", func(t *testing.T) {
		posts, err := s.ListPosts(ctx, storage.PostFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, posts, 6)
		assert.Equal(t, "other", posts[0].ID)
	})

	t.Run("ByAuthor", func(t *testing.T) {
		posts, err := s.ListPosts(ctx, storage.PostFilter{AuthorID: "author-1", Limit: 10})
		require.NoError(t, err)
		assert.Len(t, posts, 5)
	})

	t.Run("ByStatus", func(t *testing.T) {
		posts, err := s.ListPosts(ctx, storage.PostFilter{Status: postit.StatusPending, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("CursorWalksBackwards", func(t *testing.T) {
		first, err := s.ListPosts(ctx, storage.PostFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, first, 2)

		second, err := s.ListPosts(ctx, storage.PostFilter{
			Limit:  10,
			Cursor: first[len(first)-1].CreatedAt,
		})
		require.NoError(t, err)
		require.NotEmpty(t, second)
		for _, p := range second {
			assert.True(t, p.CreatedAt.Before(first[len(first)-1].CreatedAt),
				"cursor page must be strictly older than the cursor")
		}
	})

	t.Run("Count", func(t *testing.T) {
		count, err := s.CountPostsByAuthor(ctx, "author-1")
		require.NoError(t, err)
		assert.Equal(t, 5, count)
	})
}

func TestMassModeration(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Now().UTC()
	require.NoError(t, s.CreatePost(ctx, testPost("a", "u", postit.StatusPending, base)))
	require.NoError(t, s.CreatePost(ctx, testPost("b", "u", postit.StatusPending, base.Add(time.Second))))
	require.NoError(t, s.CreatePost(ctx, testPost("c", "u", postit.StatusApproved, base.Add(2*time.Second))))

	changed, err := s.MassUpdateStatus(ctx, postit.StatusPending, postit.StatusApproved)
	require.NoError(t, err)
	assert.EqualValues(t, 2, changed)

	approved, err := s.ListPosts(ctx, storage.PostFilter{Status: postit.StatusApproved, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, approved, 3)

	// Reset two back to pending, then mass delete.
	_, err = s.MassUpdateStatus(ctx, postit.StatusApproved, postit.StatusPending)
	require.NoError(t, err)
	deleted, err := s.DeletePostsByStatus(ctx, postit.StatusPending)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)
}

func TestPostUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	p := testPost("p1", "u1", postit.StatusPending, time.Now().UTC())
	require.NoError(t, s.CreatePost(ctx, p))

	p.Status = postit.StatusApproved
	p.Content = "edited"
	require.NoError(t, s.UpdatePost(ctx, p))

	got, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
	assert.Equal(t, postit.StatusApproved, got.Status)

	require.NoError(t, s.DeletePost(ctx, "p1"))
	_, err = s.GetPost(ctx, "p1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeletePost(ctx, "p1"), storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePost(ctx, p), storage.ErrNotFound)
}
