// package models defines the value types shared by the matcher, the catalog adapters and the synchronizer
package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidTrack is returned when a track cannot be constructed from the supplied fields.
var ErrInvalidTrack = errors.New("invalid track")

// Backend identifies the catalog a [Track] or [Collection] belongs to.
type Backend string

const (
	BackendSpotify Backend = "spotify"
	BackendYouTube Backend = "youtube"
)

func (b Backend) String() string { return string(b) }

// Track is an immutable, normalized track from a single catalog.
//
// Artists are ordered as the catalog returned them, but are compared as a case-folded set when matching.
type Track struct {
	id         string
	title      string
	artists    []string
	rawName    string
	rawChannel string
}

// NewTrack builds a [Track] from structured catalog metadata.
func NewTrack(id, title string, artists []string) (Track, error) {
	if id == "" {
		return Track{}, fmt.Errorf("%w: missing id", ErrInvalidTrack)
	}
	if len(artists) == 0 {
		return Track{}, fmt.Errorf("%w: %s has no artists", ErrInvalidTrack, id)
	}
	for _, a := range artists {
		if strings.TrimSpace(a) == "" {
			return Track{}, fmt.Errorf("%w: %s has a blank artist", ErrInvalidTrack, id)
		}
	}

	return Track{id: id, title: title, artists: slices.Clone(artists)}, nil
}

// NewFreeTextTrack builds a [Track] for catalogs that only expose a display name and an uploader channel.
//
// The artists and title must already be split from rawName.
func NewFreeTextTrack(id, title string, artists []string, rawName, rawChannel string) (Track, error) {
	t, err := NewTrack(id, title, artists)
	if err != nil {
		return Track{}, err
	}
	t.rawName = rawName
	t.rawChannel = rawChannel
	return t, nil
}

func (t Track) ID() string         { return t.id }
func (t Track) Title() string      { return t.title }
func (t Track) RawName() string    { return t.rawName }
func (t Track) RawChannel() string { return t.rawChannel }

// Artists returns a copy of the track's artist list.
func (t Track) Artists() []string { return slices.Clone(t.artists) }

// SearchString is the query used against the opposite catalog: artists joined by a space, a space, then the title.
func (t Track) SearchString() string {
	return strings.Join(t.artists, " ") + " " + t.title
}

// DisplayName renders the track as "A & B - Title" for logs and reports.
func (t Track) DisplayName() string {
	return strings.Join(t.artists, " & ") + " - " + t.title
}

func (t Track) IsZero() bool { return t.id == "" }
