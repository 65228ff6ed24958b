// Package services defines the [TaskSource] and [EventSink] interfaces used by the sync engine and implements them for Asana and Google Calendar.
//
// # Asana Implementation
//
// [AsanaService] talks to the Asana REST API with a personal access token.
// The token is attached by an [oauth2.StaticTokenSource] client and requests are rate limited with [rate.Limiter].
// Tag names are resolved case-insensitively within the configured workspace, and task listings follow next_page offsets.
//
// # Google Calendar Implementation
//
// [GoogleCalendarService] wraps [calendar.Service].
// Credentials come from an OAuth client JSON file ([LoadOAuthConfig]) and a cached token file ([LoadToken], [SaveToken]).
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : token or workspace not configured
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrEventNotFound] : event ID not found
//   - [shared.ErrInvalidDueDate] : due_on or due_at could not be parsed
package services
