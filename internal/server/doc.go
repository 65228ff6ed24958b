// Package server provides HTTP routing, middleware, the sync API handlers and OAuth callback handling.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
// A path registered for some methods answers others with 405 and an Allow header.
//
// # Sync API
//
// [NewAPIRouter] wires the three JSON endpoints:
//   - POST /api/sync runs one synchronization pass and reports its counters
//   - GET /api/status probes Asana and Google Calendar
//   - GET /api/records lists the ledger
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow for Google Calendar.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
