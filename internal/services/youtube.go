// YouTube Data API v3 implementation of [Catalog] and [Directory]
//
// See https://developers.google.com/youtube/v3/docs
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/syncx/internal/matching"
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultYTBaseURL = "https://www.googleapis.com/youtube/v3"
	googleAuthURL    = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL   = "https://oauth2.googleapis.com/token"
	youtubeScope     = "https://www.googleapis.com/auth/youtube"

	youtubePageSize  = 50
	youtubeSearchMax = 50
)

type youtubeResourceID struct {
	Kind    string `json:"kind,omitempty"`
	VideoID string `json:"videoId,omitempty"`
}

// YouTubeSnippet holds the fields of a search result or playlist item snippet used for matching.
type YouTubeSnippet struct {
	Title                  string            `json:"title"`
	ChannelTitle           string            `json:"channelTitle"`
	VideoOwnerChannelTitle string            `json:"videoOwnerChannelTitle"`
	PlaylistID             string            `json:"playlistId,omitempty"`
	ResourceID             youtubeResourceID `json:"resourceId"`
}

// YouTubePlaylistItem is an element of playlistItems.list.
type YouTubePlaylistItem struct {
	ID             string         `json:"id"`
	Snippet        YouTubeSnippet `json:"snippet"`
	ContentDetails struct {
		VideoID string `json:"videoId"`
	} `json:"contentDetails"`
}

// YouTubeSearchResult is an element of search.list.
type YouTubeSearchResult struct {
	ID      youtubeResourceID `json:"id"`
	Snippet YouTubeSnippet    `json:"snippet"`
}

// YouTubePlaylist is an element of playlists.list.
type YouTubePlaylist struct {
	ID      string `json:"id"`
	Snippet struct {
		Title string `json:"title"`
	} `json:"snippet"`
	ContentDetails struct {
		ItemCount int `json:"itemCount"`
	} `json:"contentDetails"`
}

type youtubeList[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type youtubeErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// YouTubeService implements [Catalog] and [Directory] for the YouTube Data API.
//
// With only an API key it can search and read public playlists; writes and the user's playlists need OAuth.
type YouTubeService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	authorized bool
}

// YouTubeOAuthConfig returns the authorization code flow configuration used to obtain a refresh token.
func YouTubeOAuthConfig(cfg shared.YouTubeConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{youtubeScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}
}

// NewYouTubeService creates a YouTube service from the configured credentials.
//
// An OAuth client with a refresh token is preferred; otherwise the API key is used.
func NewYouTubeService(ctx context.Context, cfg shared.YouTubeConfig) (*YouTubeService, error) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.RefreshToken != "" {
		client := YouTubeOAuthConfig(cfg).Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		return &YouTubeService{baseURL: defaultYTBaseURL, apiKey: cfg.APIKey, httpClient: client, authorized: true}, nil
	}

	if cfg.APIKey != "" {
		return &YouTubeService{baseURL: defaultYTBaseURL, apiKey: cfg.APIKey, httpClient: http.DefaultClient}, nil
	}

	return nil, fmt.Errorf("%w: youtube needs an api_key or an OAuth client with a refresh token", shared.ErrMissingCredentials)
}

// NewYouTubeServiceWithClient creates a service talking to baseURL with an already authorized client.
func NewYouTubeServiceWithClient(baseURL string, client *http.Client) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &YouTubeService{baseURL: baseURL, httpClient: client, authorized: true}
}

func (y *YouTubeService) Name() string             { return "YouTube" }
func (y *YouTubeService) Backend() models.Backend { return models.BackendYouTube }

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, result any) error {
	if y.apiKey != "" {
		query.Set("key", y.apiKey)
	}
	apiURL := y.baseURL + endpoint + "?" + query.Encode()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	var (
		req *http.Request
		err error
	)
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, apiURL, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, apiURL, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp youtubeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("%w: youtube API error (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("%w: youtube API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search lists videos matching query.
//
// Calls GET /search?part=snippet&type=video.
func (y *YouTubeService) Search(ctx context.Context, query string, limit int) ([]RawItem, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	limit = max(1, min(limit, youtubeSearchMax))

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("q", query)
	q.Set("maxResults", strconv.Itoa(limit))

	var resp youtubeList[YouTubeSearchResult]
	if err := y.doRequest(ctx, http.MethodGet, "/search", q, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, len(resp.Items))
	for _, r := range resp.Items {
		items = append(items, youtubeRawItem(r.ID.VideoID, r.Snippet))
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// FetchItems returns one page of playlist items. The cursor is the API page token.
//
// Calls GET /playlistItems?part=contentDetails,snippet.
func (y *YouTubeService) FetchItems(ctx context.Context, collection models.Collection, cursor string) (*Page, error) {
	if collection.Synthetic || collection.ID == "" {
		return nil, fmt.Errorf("%w: youtube collections need a playlist id", shared.ErrSyntheticCollection)
	}

	q := url.Values{}
	q.Set("part", "contentDetails,snippet")
	q.Set("playlistId", collection.ID)
	q.Set("maxResults", strconv.Itoa(youtubePageSize))
	if cursor != "" {
		q.Set("pageToken", cursor)
	}

	var resp youtubeList[YouTubePlaylistItem]
	if err := y.doRequest(ctx, http.MethodGet, "/playlistItems", q, nil, &resp); err != nil {
		return nil, err
	}

	items := make([]RawItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		id := it.ContentDetails.VideoID
		if id == "" {
			id = it.Snippet.ResourceID.VideoID
		}
		items = append(items, youtubeRawItem(id, it.Snippet))
	}

	return &Page{Items: items, Next: resp.NextPageToken}, nil
}

// AddItems inserts videos into a playlist. The API takes one video per call, so ids holds at most one element.
//
// Calls POST /playlistItems?part=snippet.
func (y *YouTubeService) AddItems(ctx context.Context, collection models.Collection, ids []string) error {
	if !y.authorized {
		return fmt.Errorf("%w: youtube writes need OAuth credentials", shared.ErrMissingCredentials)
	}
	if len(ids) > y.MaxBatch(collection) {
		return fmt.Errorf("%w: %d ids exceed the batch limit of 1", shared.ErrInvalidArgument, len(ids))
	}

	for _, id := range ids {
		body := map[string]any{
			"snippet": map[string]any{
				"playlistId": collection.ID,
				"resourceId": youtubeResourceID{Kind: "youtube#video", VideoID: id},
			},
		}
		q := url.Values{}
		q.Set("part", "snippet")
		if err := y.doRequest(ctx, http.MethodPost, "/playlistItems", q, body, nil); err != nil {
			return fmt.Errorf("add %s to %s: %w", id, collection, err)
		}
	}
	return nil
}

// MaxBatch is always 1.
func (y *YouTubeService) MaxBatch(models.Collection) int { return 1 }

// BuildTrack splits the free-text video title into artists and a title.
func (y *YouTubeService) BuildTrack(item RawItem) (models.Track, error) {
	return buildYouTubeTrack(item)
}

// Playlists lists the playlists of the authorized channel.
//
// Calls GET /playlists?mine=true.
func (y *YouTubeService) Playlists(ctx context.Context) ([]models.Collection, error) {
	if !y.authorized {
		return nil, fmt.Errorf("%w: listing youtube playlists needs OAuth credentials", shared.ErrMissingCredentials)
	}

	var (
		playlists []models.Collection
		token     string
	)
	for range_i := 0; range_i < maxPages; range_i++ {
		q := url.Values{}
		q.Set("part", "snippet,contentDetails")
		q.Set("mine", "true")
		q.Set("maxResults", strconv.Itoa(youtubePageSize))
		if token != "" {
			q.Set("pageToken", token)
		}

		var resp youtubeList[YouTubePlaylist]
		if err := y.doRequest(ctx, http.MethodGet, "/playlists", q, nil, &resp); err != nil {
			return nil, err
		}

		for _, p := range resp.Items {
			playlists = append(playlists, models.Collection{
				ID:      p.ID,
				Name:    p.Snippet.Title,
				Backend: models.BackendYouTube,
				Count:   p.ContentDetails.ItemCount,
			})
		}

		if resp.NextPageToken == "" || resp.NextPageToken == token {
			break
		}
		token = resp.NextPageToken
	}

	return playlists, nil
}

// CreatePlaylist creates a private playlist.
//
// Calls POST /playlists?part=snippet,status.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name string) (models.Collection, error) {
	if !y.authorized {
		return models.Collection{}, fmt.Errorf("%w: creating youtube playlists needs OAuth credentials", shared.ErrMissingCredentials)
	}

	body := map[string]any{
		"snippet": map[string]string{"title": name},
		"status":  map[string]string{"privacyStatus": "private"},
	}
	q := url.Values{}
	q.Set("part", "snippet,status")

	var created YouTubePlaylist
	if err := y.doRequest(ctx, http.MethodPost, "/playlists", q, body, &created); err != nil {
		return models.Collection{}, err
	}

	return models.Collection{ID: created.ID, Name: created.Snippet.Title, Backend: models.BackendYouTube}, nil
}

// Library reports that YouTube has no saved-items collection.
func (y *YouTubeService) Library() (models.Collection, bool) { return models.Collection{}, false }

// youtubeRawItem picks the uploader channel, falling back to the snippet channel. Neither means a deleted video.
func youtubeRawItem(id string, s YouTubeSnippet) RawItem {
	channel := s.VideoOwnerChannelTitle
	if channel == "" {
		channel = s.ChannelTitle
	}
	return RawItem{ID: id, Name: s.Title, Channel: channel, Deleted: channel == ""}
}

func buildYouTubeTrack(item RawItem) (models.Track, error) {
	if item.Deleted || item.Channel == "" {
		return models.Track{}, fmt.Errorf("%w: video %s does not exist anymore", shared.ErrTrackUnavailable, item.ID)
	}
	if item.ID == "" {
		return models.Track{}, fmt.Errorf("%w: video has no id", models.ErrInvalidTrack)
	}

	artists, title, err := matching.SplitArtistsFromTitle(item.Name, item.Channel)
	if err != nil {
		return models.Track{}, err
	}
	return models.NewFreeTextTrack(item.ID, title, artists, item.Name, item.Channel)
}
