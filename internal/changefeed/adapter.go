package changefeed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/screenwerk/signage/internal/classify"
	"github.com/screenwerk/signage/internal/domain"
	"github.com/screenwerk/signage/internal/logging"
	"github.com/screenwerk/signage/internal/metrics"
)

const (
	defaultPollInterval = 5 * time.Second
	pollLimit           = 100
)

// Publisher is the hub's publish entry point. Must be safe for concurrent
// use from multiple shard loops.
type Publisher interface {
	Publish(update domain.ClassifiedUpdate)
}

// Adapter watches a set of tables' change feeds and publishes classified
// updates. Streams are resolved once at Run; there is no re-discovery of
// shards that appear later.
type Adapter struct {
	feed         domain.ChangeFeed
	classifier   *classify.Classifier
	sink         Publisher
	clock        clockwork.Clock
	tables       []string
	pollInterval time.Duration
	wg           sync.WaitGroup
}

// New creates an adapter watching the given tables.
func New(feed domain.ChangeFeed, classifier *classify.Classifier, sink Publisher, clock clockwork.Clock, tables []string) *Adapter {
	return &Adapter{
		feed:         feed,
		classifier:   classifier,
		sink:         sink,
		clock:        clock,
		tables:       tables,
		pollInterval: defaultPollInterval,
	}
}

// Run resolves each table's stream and starts one poll loop per shard.
// Setup failures (no feed, no shards) log and skip that table; they never
// abort the others. Run returns once all loops are started.
func (a *Adapter) Run(ctx context.Context) {
	for _, table := range a.tables {
		log := logging.WithTable(table)

		stream, err := a.feed.DescribeStreamForTable(ctx, table)
		if errors.Is(err, domain.ErrFeedNotEnabled) {
			log.Warn("Change feed not enabled, skipping table")
			metrics.FeedTablesSkipped.Inc()
			continue
		}
		if err != nil {
			log.Error("Failed to describe change stream, skipping table", "error", err)
			metrics.FeedTablesSkipped.Inc()
			continue
		}

		shards, err := a.feed.ListShards(ctx, stream)
		if err != nil {
			log.Error("Failed to list shards, skipping table", "error", err)
			metrics.FeedTablesSkipped.Inc()
			continue
		}
		if len(shards) == 0 {
			log.Warn("No shards available, skipping table")
			metrics.FeedTablesSkipped.Inc()
			continue
		}

		for _, shard := range shards {
			cursor, err := a.feed.OpenCursor(ctx, shard, domain.PositionLatest)
			if err != nil {
				log.Error("Failed to open shard cursor", "shard_id", shard.ShardID, "error", err)
				continue
			}

			log.Info("Polling change feed shard", "shard_id", shard.ShardID)
			a.wg.Add(1)
			go a.pollShard(ctx, table, cursor)
		}
	}
}

// Wait blocks until every shard loop has exited.
func (a *Adapter) Wait() {
	a.wg.Wait()
}

// pollShard reads one shard until the context ends, the shard closes, or the
// first polling error. Errors terminate only this loop; sibling shards and
// tables keep running.
func (a *Adapter) pollShard(ctx context.Context, table string, cursor domain.Cursor) {
	defer a.wg.Done()

	log := logging.WithTable(table)
	for {
		records, next, err := a.feed.Poll(ctx, cursor, pollLimit)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("Shard poll failed, stopping this shard", "shard_id", cursor.Shard.ShardID, "error", err)
			metrics.FeedShardFailures.WithLabelValues(table).Inc()
			return
		}

		for _, record := range records {
			metrics.FeedRecordsPolled.WithLabelValues(table).Inc()

			// Deletions are not propagated as live updates; consumers that
			// care reconcile through the read API.
			if record.Kind != domain.EventInsert && record.Kind != domain.EventModify {
				continue
			}

			update := a.classifier.Classify(table, record.NewImage)
			metrics.FeedUpdatesEmitted.WithLabelValues(string(update.Kind)).Inc()
			a.sink.Publish(update)
		}

		if next.Token == "" {
			log.Info("Shard exhausted, stopping this shard", "shard_id", cursor.Shard.ShardID)
			return
		}
		cursor = next

		select {
		case <-ctx.Done():
			return
		case <-a.clock.After(a.pollInterval):
		}
	}
}
