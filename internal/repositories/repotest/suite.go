// Package repotest holds behaviour tests shared by every repository
// implementation.
package repotest

import (
	"context"
	"testing"
	"time"

	"microblog/internal/models"
	"microblog/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty set of repositories.
type Factory func(t *testing.T) *repositories.Repositories

// Run executes the shared suite against repositories produced by newRepos.
func Run(t *testing.T, newRepos Factory) {
	t.Run("UserUniqueness", func(t *testing.T) { testUserUniqueness(t, newRepos(t)) })
	t.Run("UserProfileUpdate", func(t *testing.T) { testUserProfileUpdate(t, newRepos(t)) })
	t.Run("UserSearch", func(t *testing.T) { testUserSearch(t, newRepos(t)) })
	t.Run("PostViewAggregates", func(t *testing.T) { testPostViewAggregates(t, newRepos(t)) })
	t.Run("PostListFilters", func(t *testing.T) { testPostListFilters(t, newRepos(t)) })
	t.Run("SearchTreatsWildcardsLiterally", func(t *testing.T) { testSearchWildcards(t, newRepos(t)) })
	t.Run("SameTimestampOrder", func(t *testing.T) { testSameTimestampOrder(t, newRepos(t)) })
	t.Run("PostCreateUnknownAuthor", func(t *testing.T) { testPostCreateUnknownAuthor(t, newRepos(t)) })
	t.Run("RatingUpsert", func(t *testing.T) { testRatingUpsert(t, newRepos(t)) })
	t.Run("Favorites", func(t *testing.T) { testFavorites(t, newRepos(t)) })
	t.Run("Comments", func(t *testing.T) { testComments(t, newRepos(t)) })
	t.Run("PostDeleteCascades", func(t *testing.T) { testPostDeleteCascades(t, newRepos(t)) })
	t.Run("UserDeleteCascades", func(t *testing.T) { testUserDeleteCascades(t, newRepos(t)) })
}

func mustUser(t *testing.T, r *repositories.Repositories, login string) *models.User {
	t.Helper()
	u := &models.User{Email: login + "@example.com", Login: login, PasswordHash: "hash"}
	require.NoError(t, r.Users.Create(context.Background(), u))
	require.NotEmpty(t, u.ID)
	return u
}

func mustPost(t *testing.T, r *repositories.Repositories, author *models.User, title string, createdAt time.Time) *models.Post {
	t.Helper()
	p := &models.Post{AuthorID: author.ID, Title: title, Content: "content of " + title}
	p.CreatedAt = createdAt
	require.NoError(t, r.Posts.Create(context.Background(), p))
	require.NotEmpty(t, p.ID)
	return p
}

func strPtr(s string) *string { return &s }

func testUserUniqueness(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	mustUser(t, r, "alice")

	err := r.Users.Create(ctx, &models.User{Email: "alice@example.com", Login: "other", PasswordHash: "h"})
	assert.ErrorIs(t, err, repositories.ErrUserAlreadyExists)

	err = r.Users.Create(ctx, &models.User{Email: "other@example.com", Login: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, repositories.ErrUserAlreadyExists)

	byLogin, err := r.Users.FindByLogin(ctx, "alice")
	require.NoError(t, err)
	byEmail, err := r.Users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, byLogin.ID, byEmail.ID)

	_, err = r.Users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func testUserProfileUpdate(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	mustUser(t, r, "bob")

	updated, err := r.Users.UpdateProfile(ctx, alice.ID, models.UserProfileUpdate{Bio: strPtr("hello")})
	require.NoError(t, err)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "hello", *updated.Bio)
	assert.Equal(t, "alice", updated.Login, "fields not provided stay untouched")

	_, err = r.Users.UpdateProfile(ctx, alice.ID, models.UserProfileUpdate{Login: strPtr("bob")})
	assert.ErrorIs(t, err, repositories.ErrUserAlreadyExists)

	_, err = r.Users.UpdateProfile(ctx, "missing", models.UserProfileUpdate{Bio: strPtr("x")})
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)

	require.NoError(t, r.Users.UpdateAvatar(ctx, alice.ID, "/static/uploads/avatars/a.png"))
	got, err := r.Users.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AvatarURL)
	assert.Equal(t, "/static/uploads/avatars/a.png", *got.AvatarURL)
}

func testUserSearch(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	mustUser(t, r, "zed")
	mustUser(t, r, "Anna")
	mustUser(t, r, "bob")

	users, err := r.Users.Search(ctx, "AN")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Anna", users[0].Login)

	users, err = r.Users.Search(ctx, "example.com")
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"Anna", "bob", "zed"}, []string{users[0].Login, users[1].Login, users[2].Login})
}

func testPostViewAggregates(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	carol := mustUser(t, r, "carol")
	post := mustPost(t, r, alice, "T", time.Now())

	// Two comments and two ratings must not multiply each other.
	require.NoError(t, r.Ratings.Set(ctx, bob.ID, post.ID, 1))
	require.NoError(t, r.Ratings.Set(ctx, carol.ID, post.ID, 1))
	for _, c := range []string{"first", "second"} {
		require.NoError(t, r.Comments.Create(ctx, &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: c}))
	}
	require.NoError(t, r.Favorites.Add(ctx, bob.ID, post.ID))

	anon, err := r.Posts.GetView(ctx, post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, anon.Rating)
	assert.Equal(t, 2, anon.CommentsCount)
	assert.Equal(t, "alice", anon.AuthorLogin)
	assert.False(t, anon.IsFavorited)
	assert.Nil(t, anon.UserRating)

	asBob, err := r.Posts.GetView(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, asBob.IsFavorited)
	require.NotNil(t, asBob.UserRating)
	assert.Equal(t, 1, *asBob.UserRating)

	asAlice, err := r.Posts.GetView(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, asAlice.IsFavorited)
	assert.Nil(t, asAlice.UserRating)

	_, err = r.Posts.GetView(ctx, "missing", "")
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)
}

func testPostListFilters(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	base := time.Now().Add(-time.Hour)
	old := mustPost(t, r, alice, "Golang tips", base)
	mid := mustPost(t, r, bob, "Cooking", base.Add(time.Minute))
	fresh := mustPost(t, r, alice, "Weekend", base.Add(2*time.Minute))

	all, err := r.Posts.ListViews(ctx, repositories.PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{fresh.ID, mid.ID, old.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	byAlice, err := r.Posts.ListViews(ctx, repositories.PostFilter{AuthorID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, byAlice, 2)

	found, err := r.Posts.ListViews(ctx, repositories.PostFilter{Query: "GOLANG"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, old.ID, found[0].ID)

	found, err = r.Posts.ListViews(ctx, repositories.PostFilter{Query: "content of cook"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, mid.ID, found[0].ID)

	require.NoError(t, r.Favorites.Add(ctx, bob.ID, old.ID))
	favs, err := r.Posts.ListViews(ctx, repositories.PostFilter{FavoritedBy: bob.ID, ViewerID: bob.ID})
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.True(t, favs[0].IsFavorited)

	none, err := r.Posts.ListViews(ctx, repositories.PostFilter{Query: "nothing matches"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testSearchWildcards(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	mustUser(t, r, "a_b")
	base := time.Now().Add(-time.Hour)
	percent := mustPost(t, r, alice, "100% done", base)
	mustPost(t, r, alice, "100 done", base.Add(time.Minute))
	bang := mustPost(t, r, alice, "Hi!", base.Add(2*time.Minute))

	for q, want := range map[string]string{"%": percent.ID, "0% d": percent.ID, "i!": bang.ID} {
		found, err := r.Posts.ListViews(ctx, repositories.PostFilter{Query: q})
		require.NoError(t, err, q)
		require.Len(t, found, 1, q)
		assert.Equal(t, want, found[0].ID, q)
	}

	found, err := r.Posts.ListViews(ctx, repositories.PostFilter{Query: "1_0"})
	require.NoError(t, err)
	assert.Empty(t, found)

	users, err := r.Users.Search(ctx, "_")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a_b", users[0].Login)
}

func testSameTimestampOrder(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	at := time.Now().Add(-time.Hour).Truncate(time.Second)
	first := mustPost(t, r, alice, "one", at)
	second := mustPost(t, r, alice, "two", at)

	want := []string{first.ID, second.ID}
	if want[0] < want[1] {
		want[0], want[1] = want[1], want[0]
	}

	for i := 0; i < 3; i++ {
		all, err := r.Posts.ListViews(ctx, repositories.PostFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, want, []string{all[0].ID, all[1].ID})
	}
}

func testPostCreateUnknownAuthor(t *testing.T, r *repositories.Repositories) {
	err := r.Posts.Create(context.Background(), &models.Post{AuthorID: "missing", Title: "T", Content: "C"})
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func testRatingUpsert(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	post := mustPost(t, r, alice, "T", time.Now())

	require.NoError(t, r.Ratings.Set(ctx, bob.ID, post.ID, 1))
	require.NoError(t, r.Ratings.Set(ctx, bob.ID, post.ID, -1))

	sum, err := r.Ratings.Sum(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, sum, "second rating overwrites the first")

	value, err := r.Ratings.Get(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, -1, *value)

	require.NoError(t, r.Ratings.Remove(ctx, bob.ID, post.ID))
	require.NoError(t, r.Ratings.Remove(ctx, bob.ID, post.ID), "removing twice is fine")

	value, err = r.Ratings.Get(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Nil(t, value)

	sum, err = r.Ratings.Sum(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
}

func testFavorites(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	post := mustPost(t, r, alice, "T", time.Now())

	require.NoError(t, r.Favorites.Add(ctx, alice.ID, post.ID))
	assert.ErrorIs(t, r.Favorites.Add(ctx, alice.ID, post.ID), repositories.ErrFavoriteAlreadyExists)

	ok, err := r.Favorites.Exists(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.Favorites.Remove(ctx, alice.ID, post.ID))
	assert.ErrorIs(t, r.Favorites.Remove(ctx, alice.ID, post.ID), repositories.ErrFavoriteNotFound)
}

func testComments(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	post := mustPost(t, r, alice, "T", time.Now())

	first := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "first", CreatedAt: time.Now().Add(-time.Minute)}
	second := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Content: "second", CreatedAt: time.Now()}
	require.NoError(t, r.Comments.Create(ctx, first))
	require.NoError(t, r.Comments.Create(ctx, second))

	views, err := r.Comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "second", views[0].Content)
	assert.Equal(t, "alice", views[0].AuthorLogin)

	view, err := r.Comments.GetView(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, view.PostID)

	require.NoError(t, r.Comments.Delete(ctx, first.ID))
	assert.ErrorIs(t, r.Comments.Delete(ctx, first.ID), repositories.ErrCommentNotFound)
	_, err = r.Comments.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, repositories.ErrCommentNotFound)
}

func testPostDeleteCascades(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	post := mustPost(t, r, alice, "T", time.Now())
	comment := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Content: "hi"}
	require.NoError(t, r.Comments.Create(ctx, comment))
	require.NoError(t, r.Favorites.Add(ctx, bob.ID, post.ID))
	require.NoError(t, r.Ratings.Set(ctx, bob.ID, post.ID, 1))

	require.NoError(t, r.Posts.Delete(ctx, post.ID))
	assert.ErrorIs(t, r.Posts.Delete(ctx, post.ID), repositories.ErrPostNotFound)

	_, err := r.Comments.FindByID(ctx, comment.ID)
	assert.ErrorIs(t, err, repositories.ErrCommentNotFound)
	ok, err := r.Favorites.Exists(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	value, err := r.Ratings.Get(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.Nil(t, value)
}

func testUserDeleteCascades(t *testing.T, r *repositories.Repositories) {
	ctx := context.Background()
	alice := mustUser(t, r, "alice")
	bob := mustUser(t, r, "bob")
	alicePost := mustPost(t, r, alice, "by alice", time.Now())
	bobPost := mustPost(t, r, bob, "by bob", time.Now())

	aliceComment := &models.Comment{PostID: bobPost.ID, AuthorID: alice.ID, Content: "from alice"}
	require.NoError(t, r.Comments.Create(ctx, aliceComment))
	require.NoError(t, r.Favorites.Add(ctx, alice.ID, bobPost.ID))
	require.NoError(t, r.Ratings.Set(ctx, alice.ID, bobPost.ID, -1))
	require.NoError(t, r.Ratings.Set(ctx, bob.ID, alicePost.ID, 1))

	require.NoError(t, r.Users.Delete(ctx, alice.ID))
	assert.ErrorIs(t, r.Users.Delete(ctx, alice.ID), repositories.ErrUserNotFound)

	_, err := r.Posts.FindByID(ctx, alicePost.ID)
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)

	view, err := r.Posts.GetView(ctx, bobPost.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Rating)
	assert.Equal(t, 0, view.CommentsCount)

	value, err := r.Ratings.Get(ctx, bob.ID, alicePost.ID)
	require.NoError(t, err)
	assert.Nil(t, value)
}
