// Package services defines the [Catalog] interface for music catalogs and implements it for Spotify and YouTube.
//
// # Catalog Interface
//
// The synchronizer only depends on [Catalog]: search, paginated collection fetch, batched add, and per-catalog
// track construction. [Directory] is an optional companion for catalogs that can list and create playlists.
//
// # Spotify Implementation
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2. Its HTTP client comes from spotifyauth and refreshes the
// access token from the configured refresh token. The saved tracks library is exposed as a synthetic collection
// named [SpotifyLibraryName]. Playlists take 100 IDs per write, the library 50.
//
// # YouTube Implementation
//
// [YouTubeService] calls the YouTube Data API v3 directly with an oauth2 client (or an API key for read-only use).
// Video titles are free text, so [YouTubeService.BuildTrack] runs them through the matching normalizer and splitter.
// The API inserts one video per call.
//
// [YouTubePublicService] reads public playlists without credentials and cannot be written to.
//
// # Error Handling
//
// Services wrap sentinel errors from the shared package:
//   - [shared.ErrAPIRequest] : HTTP request failed or returned a non-2xx status
//   - [shared.ErrTrackUnavailable] : deleted or removed item
//   - [shared.ErrReadOnly] : write attempted on a read-only catalog
//   - [shared.ErrPlaylistNotFound], [shared.ErrAmbiguousPlaylist] : collection resolution failed
package services
