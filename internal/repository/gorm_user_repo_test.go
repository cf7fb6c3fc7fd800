package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atims0208/fieldhouse/internal/domain"
)

func TestGormUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormUserRepository(db)

	user := &domain.User{
		Email:        "fan@example.com",
		Username:     "fan",
		DisplayName:  "Fan",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)
	assert.Equal(t, []string{"user"}, user.Roles)

	t.Run("by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "fan", got.Username)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "fan@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("by username", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "fan")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := repo.Create(ctx, &domain.User{
			Email:        "fan@example.com",
			Username:     "other",
			PasswordHash: "hash",
		})
		require.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := repo.Create(ctx, &domain.User{
			Email:        "other@example.com",
			Username:     "fan",
			PasswordHash: "hash",
		})
		require.Error(t, err)
	})
}

func TestGormUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormUserRepository(db)

	user := &domain.User{Email: "a@example.com", Username: "a", PasswordHash: "old"}
	require.NoError(t, repo.Create(ctx, user))

	user.DisplayName = "Alice"
	user.PasswordHash = "new"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.Equal(t, "new", got.PasswordHash)

	t.Run("unknown user", func(t *testing.T) {
		err := repo.Update(ctx, &domain.User{ID: "missing"})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestGormUserRepository_SetBanned(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormUserRepository(db)

	user := &domain.User{Email: "b@example.com", Username: "b", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.SetBanned(ctx, user.ID, true))
	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Banned)

	require.NoError(t, repo.SetBanned(ctx, user.ID, false))
	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.Banned)
}

func TestGormUserRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormUserRepository(db)

	user := &domain.User{Email: "c@example.com", Username: "c", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.Delete(ctx, user.ID))

	_, err := repo.GetByID(ctx, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	// Email and username must be free again.
	fresh := &domain.User{Email: "c@example.com", Username: "c", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, fresh))
}

func TestGormUserRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormUserRepository(db)

	a := seedUser(t, db, 0)
	b := seedUser(t, db, 0)

	users, err := repo.GetByIDs(ctx, []string{a, b, "missing"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
