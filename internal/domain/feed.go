package domain

import "context"

// StreamPosition selects where a newly opened cursor starts reading.
type StreamPosition string

// PositionLatest starts after the newest existing record: events emitted
// before adapter startup are not replayed.
const PositionLatest StreamPosition = "latest"

// StreamHandle identifies a table's change stream.
type StreamHandle struct {
	Table string
	ID    string
}

// ShardHandle identifies one independently-pollable partition of a stream.
type ShardHandle struct {
	StreamID string
	ShardID  string
}

// Cursor is an opaque position within a shard. A zero Token means the shard
// is exhausted and the poll loop should end.
type Cursor struct {
	Shard ShardHandle
	Token string
}

// ChangeFeed is the change-capture collaborator. DescribeStreamForTable
// returns ErrFeedNotEnabled for tables without an active feed.
type ChangeFeed interface {
	DescribeStreamForTable(ctx context.Context, table string) (StreamHandle, error)
	ListShards(ctx context.Context, stream StreamHandle) ([]ShardHandle, error)
	OpenCursor(ctx context.Context, shard ShardHandle, pos StreamPosition) (Cursor, error)
	Poll(ctx context.Context, cursor Cursor, limit int) ([]ChangeRecord, Cursor, error)
}

// ChangeRecorder receives the full new image of a record after every
// successful write, feeding the change-capture stream.
type ChangeRecorder interface {
	Record(ctx context.Context, table string, kind EventKind, image map[string]any) error
}
