// Package tasks mirrors tagged tasks into calendar events with real-time progress reporting.
//
// # Core Operations
//
//  1. [SyncEngine.Run] : One reconciliation pass
//     - Fetches incomplete tasks carrying the configured tag
//     - Skips tasks already present in the ledger
//     - Skips tasks without a due date
//     - Creates an all-day event for date-only tasks and a one hour event for timed tasks
//     - Records each created event in the ledger
//     - Returns [models.RunStats]
//
//  2. [SyncEngine.Watch] : Calls Run on a fixed interval until cancelled
//
//  3. [SyncEngine.Verify] : Checks recorded events still exist on the calendar
//     - Worker pool with a shared [rate.Limiter]
//     - Read-only; reports missing events
//
// # Failure Handling
//
// Failures scoped to one task (bad due date, event creation, ledger insert) are logged, counted in RunStats.Errors and skipped.
// If the ledger rejects a record after its event was created, the event is deleted again.
// Failures that make the whole run unsafe ([shared.ErrSourceFetch], [shared.ErrLedger] on lookup) are returned.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
