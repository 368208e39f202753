package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/screenwerk/signage/internal/domain"
)

func setupFeed(t *testing.T) (*ChangePublisher, *StreamFeed) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewChangePublisher(rdb), NewStreamFeed(rdb)
}

func TestDescribeStreamForUnregisteredTable(t *testing.T) {
	_, feed := setupFeed(t)

	_, err := feed.DescribeStreamForTable(context.Background(), "ads")
	assert.ErrorIs(t, err, domain.ErrFeedNotEnabled)
}

func TestPollDeliversRecordsAfterCursor(t *testing.T) {
	ctx := context.Background()
	publisher, feed := setupFeed(t)

	require.NoError(t, publisher.RegisterTables(ctx, "ads"))

	// Published before the cursor opens, must not be replayed.
	err := publisher.Record(ctx, "ads", domain.EventInsert, map[string]any{"adId": "stale"})
	require.NoError(t, err)

	stream, err := feed.DescribeStreamForTable(ctx, "ads")
	require.NoError(t, err)
	assert.Equal(t, "ads", stream.Table)

	shards, err := feed.ListShards(ctx, stream)
	require.NoError(t, err)
	require.Len(t, shards, 1)

	cursor, err := feed.OpenCursor(ctx, shards[0], domain.PositionLatest)
	require.NoError(t, err)
	require.NotEmpty(t, cursor.Token)

	err = publisher.Record(ctx, "ads", domain.EventInsert, map[string]any{"adId": "ad-1"})
	require.NoError(t, err)
	err = publisher.Record(ctx, "ads", domain.EventModify, map[string]any{"adId": "ad-2"})
	require.NoError(t, err)

	records, next, err := feed.Poll(ctx, cursor, 100)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.EventInsert, records[0].Kind)
	assert.Equal(t, "ad-1", records[0].NewImage["adId"])
	assert.Equal(t, domain.EventModify, records[1].Kind)
	assert.Equal(t, "ad-2", records[1].NewImage["adId"])
	assert.NotEqual(t, cursor.Token, next.Token)

	// Cursor advanced past everything, next poll is empty.
	records, next2, err := feed.Poll(ctx, next, 100)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, next.Token, next2.Token)
}

func TestOpenCursorOnEmptyStream(t *testing.T) {
	ctx := context.Background()
	publisher, feed := setupFeed(t)

	require.NoError(t, publisher.RegisterTables(ctx, "layouts"))

	stream, err := feed.DescribeStreamForTable(ctx, "layouts")
	require.NoError(t, err)

	shards, err := feed.ListShards(ctx, stream)
	require.NoError(t, err)

	cursor, err := feed.OpenCursor(ctx, shards[0], domain.PositionLatest)
	require.NoError(t, err)
	assert.Equal(t, "0", cursor.Token)

	err = publisher.Record(ctx, "layouts", domain.EventInsert, map[string]any{"layoutId": "layout-1"})
	require.NoError(t, err)

	records, _, err := feed.Poll(ctx, cursor, 100)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "layout-1", records[0].NewImage["layoutId"])
}

func TestPollRespectsLimit(t *testing.T) {
	ctx := context.Background()
	publisher, feed := setupFeed(t)

	require.NoError(t, publisher.RegisterTables(ctx, "ads"))

	stream, err := feed.DescribeStreamForTable(ctx, "ads")
	require.NoError(t, err)
	shards, err := feed.ListShards(ctx, stream)
	require.NoError(t, err)
	cursor, err := feed.OpenCursor(ctx, shards[0], domain.PositionLatest)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		err := publisher.Record(ctx, "ads", domain.EventInsert, map[string]any{"adId": "ad"})
		require.NoError(t, err)
	}

	records, next, err := feed.Poll(ctx, cursor, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	records, _, err = feed.Poll(ctx, next, 3)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
