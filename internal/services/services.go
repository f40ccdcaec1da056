// package services defines the Catalog interface for interacting with music catalog APIs
//
// Spotify, YouTube (Data API and public playlist reader)
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/shared"
)

// maxPages bounds pagination loops against a catalog that keeps returning the same cursor.
const maxPages = 10_000

// RawItem is a catalog record before it is turned into a [models.Track].
//
// Structured catalogs fill Artists; free-text catalogs fill Channel instead.
type RawItem struct {
	ID      string
	Name    string
	Artists []string
	Channel string
	Deleted bool
}

// Page is one page of collection items. An empty Next means the last page.
type Page struct {
	Items []RawItem
	Next  string
}

// Catalog is the capability a music catalog exposes to the synchronizer.
type Catalog interface {
	// Name returns a human readable catalog name.
	Name() string

	Backend() models.Backend

	// Search returns up to limit raw results for a free-text query.
	Search(ctx context.Context, query string, limit int) ([]RawItem, error)

	// FetchItems returns the page of collection items at cursor; the first page has an empty cursor.
	FetchItems(ctx context.Context, collection models.Collection, cursor string) (*Page, error)

	// AddItems appends ids to collection in a single write call. Callers chunk by [Catalog.MaxBatch].
	AddItems(ctx context.Context, collection models.Collection, ids []string) error

	// MaxBatch is the most items one AddItems call accepts for collection.
	MaxBatch(collection models.Collection) int

	// BuildTrack normalizes a raw record. Malformed and deleted items fail.
	BuildTrack(item RawItem) (models.Track, error)
}

// Directory lists and creates collections on catalogs that support it.
type Directory interface {
	Playlists(ctx context.Context) ([]models.Collection, error)
	CreatePlaylist(ctx context.Context, name string) (models.Collection, error)

	// Library returns the catalog's saved-items pseudo-collection, if it has one.
	Library() (models.Collection, bool)
}

// BuildFailure records a raw item that could not be turned into a track.
type BuildFailure struct {
	ID   string
	Name string
	Err  error
}

// FetchAll follows cursors until the collection is exhausted.
func FetchAll(ctx context.Context, c Catalog, collection models.Collection) ([]RawItem, error) {
	var (
		items  []RawItem
		cursor string
	)

	for range_i := 0; range_i < maxPages; range_i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := c.FetchItems(ctx, collection, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", collection, err)
		}

		items = append(items, page.Items...)
		if page.Next == "" {
			return items, nil
		}
		if page.Next == cursor {
			return nil, fmt.Errorf("%w: %s returned the same cursor twice", shared.ErrAPIRequest, c.Name())
		}
		cursor = page.Next
	}

	return nil, fmt.Errorf("%w: %s exceeded %d pages", shared.ErrAPIRequest, collection, maxPages)
}

// BuildTracks builds a track per raw item, skipping failures and repeated IDs.
func BuildTracks(c Catalog, items []RawItem) ([]models.Track, []BuildFailure) {
	var (
		tracks   []models.Track
		failures []BuildFailure
		seen     = make(map[string]struct{}, len(items))
	)

	for _, item := range items {
		t, err := c.BuildTrack(item)
		if err != nil {
			failures = append(failures, BuildFailure{ID: item.ID, Name: item.Name, Err: err})
			continue
		}
		if _, ok := seen[t.ID()]; ok {
			continue
		}
		seen[t.ID()] = struct{}{}
		tracks = append(tracks, t)
	}

	return tracks, failures
}

// ResolveCollection finds the collection named or identified by nameOrID.
//
// The library pseudo-collection matches by name, case-insensitively. When nothing matches and create is set a new
// playlist is created. More than one match by name is an error.
func ResolveCollection(ctx context.Context, dir Directory, nameOrID string, create bool) (models.Collection, error) {
	if lib, ok := dir.Library(); ok && strings.EqualFold(lib.Name, nameOrID) {
		return lib, nil
	}

	playlists, err := dir.Playlists(ctx)
	if err != nil {
		return models.Collection{}, err
	}

	var matches []models.Collection
	for _, p := range playlists {
		if p.ID != "" && p.ID == nameOrID {
			return p, nil
		}
		if p.Matches(nameOrID) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		if !create {
			return models.Collection{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, nameOrID)
		}
		return dir.CreatePlaylist(ctx, nameOrID)
	default:
		return models.Collection{}, fmt.Errorf("%w: %d playlists named %q", shared.ErrAmbiguousPlaylist, len(matches), nameOrID)
	}
}

// Chunk splits ids into consecutive slices of at most size elements. A non-positive size yields one chunk.
func Chunk(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(ids)
	}

	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
