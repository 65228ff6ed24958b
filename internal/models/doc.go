// Package models defines domain entities and persistence interfaces for the taskcal sync service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing external service data
//   - [Task] : A task item fetched from the project-management service
//   - [DueDate] : A parsed due date, either a timestamp or a date-only value
//   - [CalendarEvent] : A normalized calendar event with start/end boundaries
//   - [RunStats] : Counters for a single synchronization run
//
// 2. Persistent Entities: Database-backed models
//   - [SyncRecord] : A task-id to event-id mapping written once per synced task
//
// The [Ledger] interface defines the persistence operations the sync engine depends on.
package models
