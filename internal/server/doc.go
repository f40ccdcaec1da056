// Package server runs the short-lived loopback HTTP server used by `syncx auth` to obtain refresh tokens.
//
// # OAuth Callback
//
// [OAuthHandler] implements the authorization code callback. It checks the state parameter, exchanges the code for
// a token and sends the result through a channel. Only the first callback is processed.
//
// [CallbackServer] listens on the host and port of the configured redirect URI, serves the handler behind a
// [Middleware] stack, and shuts down once a result arrives or the wait times out.
//
// # Routing
//
// [BasicRouter] registers every path returned by [Handler.Routes] on an [http.ServeMux]. Middleware added first
// wraps outermost.
package server
