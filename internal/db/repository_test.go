package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bookmarkd/bookmarkd/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")
	require.NoError(t, Migrate(gdb), "failed to migrate schema")
	return gdb
}

func TestUserRepositoryNotFoundIsNil(t *testing.T) {
	gdb := newTestDB(t)
	users := NewUserRepository(NewRepository(gdb))
	ctx := context.Background()

	user, err := users.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = users.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	gdb := newTestDB(t)
	users := NewUserRepository(NewRepository(gdb))
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		email := "shared@example.com"
		if name == "carol" {
			email = "carol@example.com"
		}
		require.NoError(t, gdb.Create(&models.User{
			Username: name, Email: email, PasswordHash: "x", IsActive: true,
		}).Error)
	}

	matches, err := users.FindByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	// lookups never return more than two rows; one extra is enough to
	// know the email is ambiguous
	matches, err = users.FindByEmail(ctx, "shared@example.com")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = users.FindByEmail(ctx, "none@example.com")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestListActiveSkipsDisabled(t *testing.T) {
	gdb := newTestDB(t)
	users := NewUserRepository(NewRepository(gdb))
	ctx := context.Background()

	require.NoError(t, gdb.Create(&models.User{
		Username: "alice", Email: "a@example.com", PasswordHash: "x", IsActive: true,
	}).Error)
	require.NoError(t, gdb.Create(&models.User{
		Username: "bob", Email: "b@example.com", PasswordHash: "x", IsActive: false,
	}).Error)

	list, err := users.ListActive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].Username)
}

func TestProfileGetOrCreate(t *testing.T) {
	gdb := newTestDB(t)
	profiles := NewProfileRepository(NewRepository(gdb))
	ctx := context.Background()

	require.NoError(t, gdb.Create(&models.User{
		Username: "alice", Email: "a@example.com", PasswordHash: "x", IsActive: true,
	}).Error)

	first, err := profiles.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := profiles.GetOrCreate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var n int64
	require.NoError(t, gdb.Model(&models.Profile{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}
