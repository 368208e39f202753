// Package database provides PostgreSQL-backed repositories for layouts,
// grid items, scheduled ad placements and ads. Records are stored as JSONB
// documents keyed by their natural IDs. Every successful write is forwarded
// to an optional ChangeRecorder so downstream consumers see the full new
// image of the record.
package database
