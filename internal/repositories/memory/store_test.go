package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/repositories/memory"
	"microblog/internal/repositories/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) *repositories.Repositories {
		return memory.NewRepositories(memory.NewStore())
	})
}

func TestMemoryStore_ConcurrentFavoriteAddHasOneWinner(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories(memory.NewStore())

	user := &models.User{Email: "a@example.com", Login: "a", PasswordHash: "h"}
	require.NoError(t, repos.Users.Create(ctx, user))
	post := &models.Post{AuthorID: user.ID, Title: "T", Content: "C"}
	require.NoError(t, repos.Posts.Create(ctx, post))

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repos.Favorites.Add(ctx, user.ID, post.ID)
		}()
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
		} else {
			assert.ErrorIs(t, err, repositories.ErrFavoriteAlreadyExists)
		}
	}
	assert.Equal(t, 1, success)
}

func TestMemoryStore_ConcurrentRatingsSum(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories(memory.NewStore())

	author := &models.User{Email: "author@example.com", Login: "author", PasswordHash: "h"}
	require.NoError(t, repos.Users.Create(ctx, author))
	post := &models.Post{AuthorID: author.ID, Title: "T", Content: "C"}
	require.NoError(t, repos.Posts.Create(ctx, post))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("rater-%d", i)
			// Each rater flips a few times and settles on +1.
			_ = repos.Ratings.Set(ctx, userID, post.ID, -1)
			_ = repos.Ratings.Set(ctx, userID, post.ID, 1)
		}(i)
	}
	wg.Wait()

	view, err := repos.Posts.GetView(ctx, post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 20, view.Rating)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories(memory.NewStore())

	user := &models.User{Email: "a@example.com", Login: "a", PasswordHash: "h"}
	require.NoError(t, repos.Users.Create(ctx, user))

	got, err := repos.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	got.Login = "mutated"

	again, err := repos.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Login)
}
