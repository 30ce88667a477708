package social

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookmarkd/bookmarkd/internal/models"
)

func seedImage(t *testing.T, gdb *gorm.DB, ownerID int64, title string) *models.Image {
	t.Helper()
	img := &models.Image{
		UserID:    ownerID,
		Title:     title,
		Slug:      title,
		URL:       "https://example.com/" + title + ".jpg",
		Image:     title + ".jpg",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, gdb.Create(img).Error)
	return img
}

func imageLikeCount(t *testing.T, gdb *gorm.DB, imageID int64) int64 {
	t.Helper()
	var img models.Image
	require.NoError(t, gdb.First(&img, imageID).Error)
	return img.TotalLikes
}

func TestLikeRecomputesCounter(t *testing.T) {
	gdb := newTestDB(t)
	likes := NewLikes(gdb)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	img := seedImage(t, gdb, alice.ID, "sunset")

	require.NoError(t, likes.ToggleImageLike(ctx, img.ID, alice.ID, LikeActionLike))
	require.NoError(t, likes.ToggleImageLike(ctx, img.ID, bob.ID, LikeActionLike))
	assert.EqualValues(t, 2, imageLikeCount(t, gdb, img.ID))

	// liking again changes nothing
	require.NoError(t, likes.ToggleImageLike(ctx, img.ID, bob.ID, LikeActionLike))
	assert.EqualValues(t, 2, imageLikeCount(t, gdb, img.ID))

	require.NoError(t, likes.ToggleImageLike(ctx, img.ID, bob.ID, LikeActionUnlike))
	assert.EqualValues(t, 1, imageLikeCount(t, gdb, img.ID))

	// unliking an absent like is a no-op
	require.NoError(t, likes.ToggleImageLike(ctx, img.ID, bob.ID, LikeActionUnlike))
	assert.EqualValues(t, 1, imageLikeCount(t, gdb, img.ID))
}

func TestLikeLogsActionOncePerWindow(t *testing.T) {
	gdb := newTestDB(t)
	likes := NewLikes(gdb)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice")
	img := seedImage(t, gdb, alice.ID, "sunset")

	require.NoError(t, likes.ToggleImageLike(ctx, img.ID, alice.ID, LikeActionLike))
	require.NoError(t, likes.ToggleImageLike(ctx, img.ID, alice.ID, LikeActionUnlike))
	require.NoError(t, likes.ToggleImageLike(ctx, img.ID, alice.ID, LikeActionLike))

	var n int64
	require.NoError(t, gdb.Model(&models.Action{}).
		Where("verb = ?", models.VerbLikes).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestLikeUnknownImage(t *testing.T) {
	gdb := newTestDB(t)
	likes := NewLikes(gdb)

	alice := seedUser(t, gdb, "alice")

	err := likes.ToggleImageLike(context.Background(), 9999, alice.ID, LikeActionLike)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLikeInvalidAction(t *testing.T) {
	gdb := newTestDB(t)
	likes := NewLikes(gdb)

	alice := seedUser(t, gdb, "alice")
	img := seedImage(t, gdb, alice.ID, "sunset")

	err := likes.ToggleImageLike(context.Background(), img.ID, alice.ID, "smash")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
