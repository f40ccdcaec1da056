package shared

import "fmt"

var (

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrNoRefreshToken = fmt.Errorf("no refresh token available")
	ErrTimeout        = fmt.Errorf("timed out")

	// API and service errors
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrPlaylistNotFound    = fmt.Errorf("playlist not found")
	ErrAmbiguousPlaylist   = fmt.Errorf("playlist name is ambiguous")
	ErrTrackUnavailable    = fmt.Errorf("track unavailable")
	ErrReadOnly            = fmt.Errorf("catalog is read-only")
	ErrUnsupportedCatalog  = fmt.Errorf("unsupported catalog")
	ErrDestinationLocked   = fmt.Errorf("destination is locked by another sync")
	ErrSyntheticCollection = fmt.Errorf("operation not supported on a synthetic collection")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
