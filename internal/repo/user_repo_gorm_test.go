package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-account-service/internal/domain"
	"go-account-service/pkg/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", utils.NewID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Token{}))
	return db
}

func newUser(email string) *domain.User {
	return &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         "Test",
		PasswordHash: "x",
		IsActive:     true,
	}
}

func TestUserRepoCreateNormalizesEmail(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	u := newUser("JuAn@GmaiL.com")
	require.NoError(t, r.Create(ctx, u))
	assert.Equal(t, "juan@gmail.com", u.Email)

	got, err := r.FindByEmail(ctx, "juan@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "juan@gmail.com", got.Email)

	// lookup is case-insensitive too
	got, err = r.FindByEmail(ctx, "JUAN@gmail.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newUser("test@test.com")))

	err := r.Create(ctx, newUser("Test@Test.com"))
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserRepoFindMisses(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	_, err := r.FindByEmail(ctx, "nobody@test.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = r.FindByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepoUpdate(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	u := newUser("test@test.com")
	require.NoError(t, r.Create(ctx, u))

	u.Name = "Renamed"
	u.PasswordHash = "y"
	u.IsStaff = true
	require.NoError(t, r.Update(ctx, u))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "y", got.PasswordHash)
	assert.True(t, got.IsStaff)
}

func TestUserRepoUpdateNotFound(t *testing.T) {
	r := NewUserRepo(newTestDB(t))

	u := newUser("test@test.com")
	err := r.Update(context.Background(), u)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepoSetActive(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	u := newUser("test@test.com")
	require.NoError(t, r.Create(ctx, u))

	require.NoError(t, r.SetActive(ctx, u.ID, false))
	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, r.SetActive(ctx, "no-such-id", false), domain.ErrNotFound)
}

func TestUserRepoList(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, newUser("alice@test.com")))
	require.NoError(t, r.Create(ctx, newUser("bob@test.com")))

	users, total, err := r.List(ctx, 0, 20, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	users, total, err = r.List(ctx, 0, 20, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@test.com", users[0].Email)
}
