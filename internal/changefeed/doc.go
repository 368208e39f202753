// Package changefeed polls table change feeds and turns row changes into
// classified viewer updates.
//
// One poll loop runs per discovered shard. Loops share nothing but the hub's
// publish entry point. A table without an active feed is skipped at setup; a
// polling error stops only that shard's loop. Shards appearing after setup
// are not discovered until restart.
package changefeed
