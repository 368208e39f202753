package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/screenwerk/signage/internal/domain"
)

const (
	streamKeyPrefix = "changefeed:stream:"
	tableSetKey     = "changefeed:tables"
	streamMaxLen    = 10000
	singleShardID   = "shard-0000"
)

func streamKey(table string) string {
	return streamKeyPrefix + table
}

// ChangePublisher appends change records to a table's stream. Registered
// tables appear in the feed's table set; everything else reports
// ErrFeedNotEnabled to consumers.
type ChangePublisher struct {
	rdb *redis.Client
}

// NewChangePublisher creates a publisher on the given client.
func NewChangePublisher(rdb *redis.Client) *ChangePublisher {
	return &ChangePublisher{rdb: rdb}
}

// RegisterTables marks tables as feed-enabled. Called once at startup.
func (p *ChangePublisher) RegisterTables(ctx context.Context, tables ...string) error {
	members := make([]any, len(tables))
	for i, t := range tables {
		members[i] = t
	}
	if err := p.rdb.SAdd(ctx, tableSetKey, members...).Err(); err != nil {
		return fmt.Errorf("failed to register feed tables: %w", err)
	}
	return nil
}

// Record appends the full new image of a changed record to the table's
// stream. Implements domain.ChangeRecorder.
func (p *ChangePublisher) Record(ctx context.Context, table string, kind domain.EventKind, image map[string]any) error {
	data, err := json.Marshal(image)
	if err != nil {
		return fmt.Errorf("failed to marshal change image: %w", err)
	}

	err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(table),
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{"kind": string(kind), "image": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append change record: %w", err)
	}
	return nil
}

// StreamFeed implements domain.ChangeFeed on Redis Streams.
type StreamFeed struct {
	rdb *redis.Client
}

// NewStreamFeed creates a feed reader on the given client.
func NewStreamFeed(rdb *redis.Client) *StreamFeed {
	return &StreamFeed{rdb: rdb}
}

func (f *StreamFeed) DescribeStreamForTable(ctx context.Context, table string) (domain.StreamHandle, error) {
	enabled, err := f.rdb.SIsMember(ctx, tableSetKey, table).Result()
	if err != nil {
		return domain.StreamHandle{}, fmt.Errorf("failed to check feed registration: %w", err)
	}
	if !enabled {
		return domain.StreamHandle{}, domain.ErrFeedNotEnabled
	}
	return domain.StreamHandle{Table: table, ID: streamKey(table)}, nil
}

func (f *StreamFeed) ListShards(_ context.Context, stream domain.StreamHandle) ([]domain.ShardHandle, error) {
	// Redis streams are not partitioned; every stream is one shard.
	return []domain.ShardHandle{{StreamID: stream.ID, ShardID: singleShardID}}, nil
}

func (f *StreamFeed) OpenCursor(ctx context.Context, shard domain.ShardHandle, pos domain.StreamPosition) (domain.Cursor, error) {
	if pos != domain.PositionLatest {
		return domain.Cursor{}, fmt.Errorf("unsupported stream position %q", pos)
	}

	// Latest = the newest existing entry ID; XREAD is exclusive, so history
	// before the cursor is never replayed.
	entries, err := f.rdb.XRevRangeN(ctx, shard.StreamID, "+", "-", 1).Result()
	if err != nil {
		return domain.Cursor{}, fmt.Errorf("failed to read stream head: %w", err)
	}

	token := "0"
	if len(entries) > 0 {
		token = entries[0].ID
	}
	return domain.Cursor{Shard: shard, Token: token}, nil
}

func (f *StreamFeed) Poll(ctx context.Context, cursor domain.Cursor, limit int) ([]domain.ChangeRecord, domain.Cursor, error) {
	res, err := f.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{cursor.Shard.StreamID, cursor.Token},
		Count:   int64(limit),
		Block:   -1, // non-blocking
	}).Result()
	if err == redis.Nil {
		return nil, cursor, nil
	}
	if err != nil {
		return nil, domain.Cursor{}, fmt.Errorf("failed to poll stream: %w", err)
	}

	next := cursor
	var records []domain.ChangeRecord
	for _, stream := range res {
		for _, entry := range stream.Messages {
			next.Token = entry.ID

			record, ok := parseEntry(entry)
			if !ok {
				continue
			}
			records = append(records, record)
		}
	}
	return records, next, nil
}

// parseEntry normalizes a stream entry into a ChangeRecord. Malformed
// entries are dropped; the feed keeps serving.
func parseEntry(entry redis.XMessage) (domain.ChangeRecord, bool) {
	kind, _ := entry.Values["kind"].(string)
	raw, _ := entry.Values["image"].(string)
	if kind == "" || raw == "" {
		return domain.ChangeRecord{}, false
	}

	var image map[string]any
	if err := json.Unmarshal([]byte(raw), &image); err != nil {
		return domain.ChangeRecord{}, false
	}
	return domain.ChangeRecord{Kind: domain.EventKind(kind), NewImage: image}, true
}
