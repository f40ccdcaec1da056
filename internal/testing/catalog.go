package testing

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/desertthunder/syncx/internal/matching"
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/services"
	"github.com/desertthunder/syncx/internal/shared"
)

// Write is one recorded [FakeCatalog.AddItems] call.
type Write struct {
	Collection string
	IDs        []string
}

// FakeCatalog is an in-memory [services.Catalog] and [services.Directory].
//
// Collections are keyed by ID, or by name for synthetic ones. Items with a Channel and no Artists are split the
// way YouTube titles are.
type FakeCatalog struct {
	mu sync.Mutex

	CatalogName string
	Kind        models.Backend
	Batch       int // MaxBatch, 0 means unlimited
	PageSize    int // Items per FetchItems page, 0 means one page

	Results     map[string][]services.RawItem // Search results by exact query
	Collections map[string][]services.RawItem
	Lists       []models.Collection
	HasLibrary  bool

	SearchErr error
	FetchErr  error
	AddErr    error
	OnSearch  func(query string) // Called before each search, outside the lock

	Searches []string
	Writes   []Write
	created  int
}

// NewFakeCatalog returns an empty catalog with the given write batch limit.
func NewFakeCatalog(name string, batch int) *FakeCatalog {
	return &FakeCatalog{
		CatalogName: name,
		Kind:        models.BackendYouTube,
		Batch:       batch,
		Results:     map[string][]services.RawItem{},
		Collections: map[string][]services.RawItem{},
	}
}

// Track returns a structured raw item.
func Track(id, title string, artists ...string) services.RawItem {
	return services.RawItem{ID: id, Name: title, Artists: artists}
}

// Upload returns a free-text raw item.
func Upload(id, name, channel string) services.RawItem {
	return services.RawItem{ID: id, Name: name, Channel: channel}
}

func (f *FakeCatalog) Name() string             { return f.CatalogName }
func (f *FakeCatalog) Backend() models.Backend { return f.Kind }

// AddResult registers search results for query.
func (f *FakeCatalog) AddResult(query string, items ...services.RawItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results[query] = append(f.Results[query], items...)
}

// Seed replaces a collection's contents.
func (f *FakeCatalog) Seed(collection models.Collection, items ...services.RawItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Collections[key(collection)] = slices.Clone(items)
}

// IDs returns the item IDs currently stored in collection.
func (f *FakeCatalog) IDs(collection models.Collection) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, it := range f.Collections[key(collection)] {
		ids = append(ids, it.ID)
	}
	return ids
}

func (f *FakeCatalog) Search(_ context.Context, query string, limit int) ([]services.RawItem, error) {
	if f.OnSearch != nil {
		f.OnSearch(query)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Searches = append(f.Searches, query)
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	items := f.Results[query]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return slices.Clone(items), nil
}

func (f *FakeCatalog) FetchItems(_ context.Context, collection models.Collection, cursor string) (*services.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}

	items := f.Collections[key(collection)]
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: cursor %q", shared.ErrInvalidArgument, cursor)
		}
		offset = n
	}
	if offset >= len(items) {
		return &services.Page{}, nil
	}

	end := len(items)
	if f.PageSize > 0 && offset+f.PageSize < end {
		end = offset + f.PageSize
	}
	page := &services.Page{Items: slices.Clone(items[offset:end])}
	if end < len(items) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

// AddItems appends ids, reusing any search result with the same ID so later fetches see full records.
func (f *FakeCatalog) AddItems(_ context.Context, collection models.Collection, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AddErr != nil {
		return f.AddErr
	}
	if f.Batch > 0 && len(ids) > f.Batch {
		return fmt.Errorf("%w: %d ids exceed batch of %d", shared.ErrInvalidArgument, len(ids), f.Batch)
	}

	k := key(collection)
	f.Writes = append(f.Writes, Write{Collection: k, IDs: slices.Clone(ids)})
	for _, id := range ids {
		f.Collections[k] = append(f.Collections[k], f.lookup(id))
	}
	return nil
}

func (f *FakeCatalog) MaxBatch(models.Collection) int { return f.Batch }

func (f *FakeCatalog) BuildTrack(item services.RawItem) (models.Track, error) {
	if item.Deleted {
		return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackUnavailable, item.ID)
	}
	if len(item.Artists) == 0 && item.Channel != "" {
		artists, title, err := matching.SplitArtistsFromTitle(item.Name, item.Channel)
		if err != nil {
			return models.Track{}, err
		}
		return models.NewFreeTextTrack(item.ID, title, artists, item.Name, item.Channel)
	}
	return models.NewTrack(item.ID, item.Name, item.Artists)
}

func (f *FakeCatalog) Playlists(context.Context) ([]models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	return slices.Clone(f.Lists), nil
}

func (f *FakeCatalog) CreatePlaylist(_ context.Context, name string) (models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	c := models.Collection{ID: fmt.Sprintf("fake-%d", f.created), Name: name, Backend: f.Kind}
	f.Lists = append(f.Lists, c)
	return c, nil
}

func (f *FakeCatalog) Library() (models.Collection, bool) {
	if !f.HasLibrary {
		return models.Collection{}, false
	}
	return models.Collection{Name: "likes", Backend: f.Kind, Synthetic: true}, true
}

func (f *FakeCatalog) lookup(id string) services.RawItem {
	for _, items := range f.Results {
		for _, it := range items {
			if it.ID == id {
				return it
			}
		}
	}
	return services.RawItem{ID: id}
}

func key(c models.Collection) string {
	if c.ID != "" {
		return c.ID
	}
	return c.Name
}

var (
	_ services.Catalog   = (*FakeCatalog)(nil)
	_ services.Directory = (*FakeCatalog)(nil)
)
