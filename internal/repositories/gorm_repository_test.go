package repositories_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"microblog/database"
	"microblog/internal/config"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/repositories/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := database.Connect(config.DriverSQLite, dsn)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestGormRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) *repositories.Repositories {
		return repositories.NewGormRepositories(newTestDB(t))
	})
}

func TestGormRepositories_SchemaHasAllTables(t *testing.T) {
	db := newTestDB(t)
	for _, table := range []string{"users", "posts", "comments", "favorites", "post_ratings", "tags", "post_tags", "subscriptions"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestGormRatingRepository_RejectsStoredZero(t *testing.T) {
	db := newTestDB(t)
	repos := repositories.NewGormRepositories(db)
	ctx := context.Background()

	user := &models.User{Email: "a@example.com", Login: "a", PasswordHash: "h"}
	require.NoError(t, repos.Users.Create(ctx, user))
	post := &models.Post{AuthorID: user.ID, Title: "T", Content: "C"}
	require.NoError(t, repos.Posts.Create(ctx, post))

	assert.Error(t, repos.Ratings.Set(ctx, user.ID, post.ID, 0), "check constraint keeps 0 out of the table")
}

func TestGormFavoriteRepository_ConcurrentAdd(t *testing.T) {
	db := newTestDB(t)
	repos := repositories.NewGormRepositories(db)
	ctx := context.Background()

	user := &models.User{Email: "a@example.com", Login: "a", PasswordHash: "h"}
	require.NoError(t, repos.Users.Create(ctx, user))
	post := &models.Post{AuthorID: user.ID, Title: "T", Content: "C"}
	require.NoError(t, repos.Posts.Create(ctx, post))

	const workers = 8
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
