// Package redis implements the change-feed collaborator on Redis Streams.
//
// Each watched table gets one stream ("changefeed:stream:<table>"); the
// repositories append the full new image of every written record via
// ChangePublisher, and StreamFeed serves the describe/shards/cursor/poll
// interface the adapter consumes. Streams are single-sharded here; the
// adapter stays shard-generic regardless.
package redis
