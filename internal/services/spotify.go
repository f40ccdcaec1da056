// Spotify Web API implementation of [Catalog] and [Directory]
//
// Uses github.com/zmb3/spotify/v2; see https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	// SpotifyLibraryName names the saved tracks pseudo-collection.
	SpotifyLibraryName = "likes"

	spotifyPlaylistBatch = 100
	spotifyLibraryBatch  = 50
	spotifyPageSize      = 50
	spotifySearchMax     = 50
)

var spotifyScopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// SpotifyOAuthConfig returns the authorization code flow configuration used to obtain a refresh token.
func SpotifyOAuthConfig(cfg shared.SpotifyConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyauth.AuthURL,
			TokenURL: spotifyauth.TokenURL,
		},
	}
}

// SpotifyService implements [Catalog] and [Directory] for the Spotify Web API.
type SpotifyService struct {
	client *spotify.Client
	userID string
}

// NewSpotifyService creates a Spotify service from the configured OAuth client and refresh token.
//
// The returned client refreshes its access token on demand.
func NewSpotifyService(ctx context.Context, cfg shared.SpotifyConfig) (*SpotifyService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}
	if cfg.RefreshToken == "" {
		return nil, fmt.Errorf("%w: spotify", shared.ErrNoRefreshToken)
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(spotifyScopes...),
	)

	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	return NewSpotifyServiceWithClient(spotify.New(auth.Client(ctx, token))), nil
}

// NewSpotifyServiceWithClient wraps an existing [spotify.Client].
func NewSpotifyServiceWithClient(client *spotify.Client) *SpotifyService {
	return &SpotifyService{client: client}
}

func (s *SpotifyService) Name() string             { return "Spotify" }
func (s *SpotifyService) Backend() models.Backend { return models.BackendSpotify }

// Search runs a track search and returns at most limit results.
func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]RawItem, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	limit = max(1, min(limit, spotifySearchMax))

	result, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: spotify search: %w", shared.ErrAPIRequest, err)
	}
	if result.Tracks == nil {
		return nil, nil
	}

	items := make([]RawItem, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		items = append(items, spotifyRawItem(&t))
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// FetchItems returns a page of playlist items, or of saved tracks for the synthetic library collection.
//
// The cursor is the decimal offset of the page.
func (s *SpotifyService) FetchItems(ctx context.Context, collection models.Collection, cursor string) (*Page, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: spotify cursor %q", shared.ErrInvalidArgument, cursor)
		}
		offset = n
	}

	opts := []spotify.RequestOption{spotify.Limit(spotifyPageSize), spotify.Offset(offset)}

	var (
		items []RawItem
		next  string
	)

	if collection.Synthetic {
		page, err := s.client.CurrentUsersTracks(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: spotify saved tracks: %w", shared.ErrAPIRequest, err)
		}
		for _, t := range page.Tracks {
			items = append(items, spotifyRawItem(&t.FullTrack))
		}
		next = page.Next
	} else {
		if collection.ID == "" {
			return nil, fmt.Errorf("%w: %s has no id", shared.ErrPlaylistNotFound, collection.Name)
		}
		page, err := s.client.GetPlaylistItems(ctx, spotify.ID(collection.ID), opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: spotify playlist items: %w", shared.ErrAPIRequest, err)
		}
		for _, it := range page.Items {
			if it.Track.Track == nil {
				items = append(items, RawItem{Deleted: true})
				continue
			}
			items = append(items, spotifyRawItem(it.Track.Track))
		}
		next = page.Next
	}

	result := &Page{Items: items}
	if next != "" {
		result.Next = strconv.Itoa(offset + len(items))
	}
	return result, nil
}

// AddItems appends track IDs to a playlist, or saves them to the library for the synthetic collection.
func (s *SpotifyService) AddItems(ctx context.Context, collection models.Collection, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if n := s.MaxBatch(collection); len(ids) > n {
		return fmt.Errorf("%w: %d ids exceed the batch limit of %d", shared.ErrInvalidArgument, len(ids), n)
	}

	spotifyIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		spotifyIDs[i] = spotify.ID(id)
	}

	if collection.Synthetic {
		if err := s.client.AddTracksToLibrary(ctx, spotifyIDs...); err != nil {
			return fmt.Errorf("%w: spotify save tracks: %w", shared.ErrAPIRequest, err)
		}
		return nil
	}

	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(collection.ID), spotifyIDs...); err != nil {
		return fmt.Errorf("%w: spotify add to playlist: %w", shared.ErrAPIRequest, err)
	}
	return nil
}

// MaxBatch is 50 for the library and 100 for playlists.
func (s *SpotifyService) MaxBatch(collection models.Collection) int {
	if collection.Synthetic {
		return spotifyLibraryBatch
	}
	return spotifyPlaylistBatch
}

// BuildTrack uses Spotify's structured artist list; removed tracks fail with [shared.ErrTrackUnavailable].
func (s *SpotifyService) BuildTrack(item RawItem) (models.Track, error) {
	if item.Deleted {
		return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackUnavailable, item.Name)
	}
	return models.NewTrack(item.ID, item.Name, item.Artists)
}

// Playlists lists every playlist of the current user.
func (s *SpotifyService) Playlists(ctx context.Context) ([]models.Collection, error) {
	var playlists []models.Collection
	offset := 0

	for range_i := 0; range_i < maxPages; range_i++ {
		page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(spotifyPageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("%w: spotify playlists: %w", shared.ErrAPIRequest, err)
		}

		for _, p := range page.Playlists {
			playlists = append(playlists, models.Collection{
				ID:      string(p.ID),
				Name:    p.Name,
				Backend: models.BackendSpotify,
				Count:   int(p.Tracks.Total),
			})
		}

		if page.Next == "" || len(page.Playlists) == 0 {
			break
		}
		offset += len(page.Playlists)
	}

	return playlists, nil
}

// CreatePlaylist creates a private playlist owned by the current user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name string) (models.Collection, error) {
	if s.userID == "" {
		user, err := s.client.CurrentUser(ctx)
		if err != nil {
			return models.Collection{}, fmt.Errorf("%w: spotify current user: %w", shared.ErrAPIRequest, err)
		}
		s.userID = user.ID
	}

	p, err := s.client.CreatePlaylistForUser(ctx, s.userID, name, "", false, false)
	if err != nil {
		return models.Collection{}, fmt.Errorf("%w: spotify create playlist: %w", shared.ErrAPIRequest, err)
	}

	return models.Collection{ID: string(p.ID), Name: p.Name, Backend: models.BackendSpotify}, nil
}

// Library returns the saved tracks pseudo-collection.
func (s *SpotifyService) Library() (models.Collection, bool) {
	return models.Collection{Name: SpotifyLibraryName, Backend: models.BackendSpotify, Synthetic: true}, true
}

func spotifyRawItem(t *spotify.FullTrack) RawItem {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}
	return RawItem{ID: string(t.ID), Name: t.Name, Artists: artists}
}
