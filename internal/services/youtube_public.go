package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/shared"
	"github.com/kkdai/youtube/v2"
)

// playlistFetcher is the part of [youtube.Client] the public reader needs.
type playlistFetcher interface {
	GetPlaylistContext(ctx context.Context, url string) (*youtube.Playlist, error)
}

// YouTubePublicService reads public YouTube playlists without credentials.
//
// It scrapes the playlist page through github.com/kkdai/youtube/v2, so it can be a sync source but never a
// destination: Search, AddItems and playlist creation return [shared.ErrReadOnly].
type YouTubePublicService struct {
	client playlistFetcher
}

func NewYouTubePublicService() *YouTubePublicService {
	return &YouTubePublicService{client: &youtube.Client{}}
}

func (p *YouTubePublicService) Name() string             { return "YouTube (public)" }
func (p *YouTubePublicService) Backend() models.Backend { return models.BackendYouTube }

func (p *YouTubePublicService) Search(context.Context, string, int) ([]RawItem, error) {
	return nil, fmt.Errorf("%w: search needs the YouTube Data API", shared.ErrReadOnly)
}

// FetchItems returns the whole playlist as a single page; the library follows continuations itself.
//
// collection.ID may be a playlist ID or URL.
func (p *YouTubePublicService) FetchItems(ctx context.Context, collection models.Collection, cursor string) (*Page, error) {
	if collection.ID == "" {
		return nil, fmt.Errorf("%w: public youtube collections need a playlist id or url", shared.ErrPlaylistNotFound)
	}
	if cursor != "" {
		return &Page{}, nil
	}

	playlist, err := p.client.GetPlaylistContext(ctx, collection.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: youtube playlist %s: %w", shared.ErrAPIRequest, collection.ID, err)
	}

	items := make([]RawItem, 0, len(playlist.Videos))
	for _, v := range playlist.Videos {
		if v == nil {
			continue
		}
		items = append(items, RawItem{ID: v.ID, Name: v.Title, Channel: v.Author, Deleted: v.Author == ""})
	}
	return &Page{Items: items}, nil
}

func (p *YouTubePublicService) AddItems(context.Context, models.Collection, []string) error {
	return shared.ErrReadOnly
}

func (p *YouTubePublicService) MaxBatch(models.Collection) int { return 1 }

func (p *YouTubePublicService) BuildTrack(item RawItem) (models.Track, error) {
	return buildYouTubeTrack(item)
}

// Describe fetches the playlist title for display.
func (p *YouTubePublicService) Describe(ctx context.Context, idOrURL string) (models.Collection, error) {
	playlist, err := p.client.GetPlaylistContext(ctx, idOrURL)
	if err != nil {
		return models.Collection{}, fmt.Errorf("%w: youtube playlist %s: %w", shared.ErrAPIRequest, idOrURL, err)
	}
	return models.Collection{
		ID:      idOrURL,
		Name:    playlist.Title,
		Backend: models.BackendYouTube,
		Count:   len(playlist.Videos),
	}, nil
}
