// Package repositories implements SQLite persistence for the sync ledger.
//
// Key Implementations:
//   - [SyncRecordRepository] : task-id to event-id mappings with uniqueness enforced by the schema
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
