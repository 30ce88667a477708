package social

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkd/bookmarkd/internal/models"
)

func TestRecordAppendsEveryCall(t *testing.T) {
	gdb := newTestDB(t)
	activity := NewActivity(gdb)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice")

	require.NoError(t, activity.Record(ctx, alice.ID, models.VerbCreatedAccount, nil))
	require.NoError(t, activity.Record(ctx, alice.ID, models.VerbCreatedAccount, nil))

	assert.EqualValues(t, 2, countRows(t, gdb, &models.Action{}))
}

func TestRecordUniqueSuppressesWithinWindow(t *testing.T) {
	gdb := newTestDB(t)
	activity := NewActivity(gdb)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice")
	target := &Target{Type: models.TargetTypeImage, ID: 7}

	written, err := activity.RecordUnique(ctx, alice.ID, models.VerbLikes, target)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = activity.RecordUnique(ctx, alice.ID, models.VerbLikes, target)
	require.NoError(t, err)
	assert.False(t, written)

	assert.EqualValues(t, 1, countRows(t, gdb, &models.Action{}))

	// a different target is a different action
	written, err = activity.RecordUnique(ctx, alice.ID, models.VerbLikes, &Target{Type: models.TargetTypeImage, ID: 8})
	require.NoError(t, err)
	assert.True(t, written)
}

func TestRecordUnknownActor(t *testing.T) {
	gdb := newTestDB(t)
	activity := NewActivity(gdb)

	err := activity.Record(context.Background(), 42, models.VerbCreatedAccount, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = activity.RecordUnique(context.Background(), 42, models.VerbCreatedAccount, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordDisabledActor(t *testing.T) {
	gdb := newTestDB(t)
	activity := NewActivity(gdb)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice")
	require.NoError(t, gdb.Model(alice).UpdateColumn("is_active", false).Error)

	err := activity.Record(ctx, alice.ID, models.VerbCreatedAccount, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGlobalFeedNewestFirst(t *testing.T) {
	gdb := newTestDB(t)
	activity := NewActivity(gdb)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice")
	base := time.Now().UTC().Add(-time.Hour)

	for i, verb := range []string{"first", "second", "third"} {
		require.NoError(t, gdb.Create(&models.Action{
			UserID:    alice.ID,
			Verb:      verb,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	// same timestamp as "third": higher id wins the tiebreak
	require.NoError(t, gdb.Create(&models.Action{
		UserID:    alice.ID,
		Verb:      "fourth",
		CreatedAt: base.Add(2 * time.Minute),
	}).Error)

	feed, err := activity.GlobalFeed(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 4)
	assert.Equal(t, "fourth", feed[0].Verb)
	assert.Equal(t, "third", feed[1].Verb)
	assert.Equal(t, "second", feed[2].Verb)
	assert.Equal(t, "first", feed[3].Verb)
}

func TestFollowedFeedExcludesOwnActions(t *testing.T) {
	gdb := newTestDB(t)
	activity := NewActivity(gdb)
	graph := NewGraph(gdb)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")
	carol := seedUser(t, gdb, "carol")

	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID))

	require.NoError(t, activity.Record(ctx, alice.ID, "own action", nil))
	require.NoError(t, activity.Record(ctx, bob.ID, "followed action", nil))
	require.NoError(t, activity.Record(ctx, carol.ID, "unrelated action", nil))

	feed, err := activity.FollowedFeed(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "followed action", feed[0].Verb)
	assert.Equal(t, bob.ID, feed[0].UserID)
}

func TestFollowedFeedExcludesSelfFollow(t *testing.T) {
	gdb := newTestDB(t)
	activity := NewActivity(gdb)
	graph := NewGraph(gdb)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice")
	bob := seedUser(t, gdb, "bob")

	require.NoError(t, graph.Follow(ctx, alice.ID, alice.ID))
	require.NoError(t, graph.Follow(ctx, alice.ID, bob.ID))

	require.NoError(t, activity.Record(ctx, alice.ID, "own action", nil))
	require.NoError(t, activity.Record(ctx, bob.ID, "followed action", nil))

	feed, err := activity.FollowedFeed(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	for _, entry := range feed {
		assert.NotEqual(t, alice.ID, entry.UserID)
	}
	require.NotEmpty(t, feed)
}

func TestFollowedFeedEmptyWhenFollowingNobody(t *testing.T) {
	gdb := newTestDB(t)
	activity := NewActivity(gdb)
	ctx := context.Background()

	alice := seedUser(t, gdb, "alice")
	require.NoError(t, activity.Record(ctx, alice.ID, "own action", nil))

	feed, err := activity.FollowedFeed(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, feed)
}
