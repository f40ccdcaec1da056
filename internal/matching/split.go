package matching

import (
	"errors"
	"fmt"
	"strings"
)

// TopicSuffix marks channels auto-generated by YouTube Music, whose name is the artist.
const TopicSuffix = " - Topic"

// TitleSeparators are tried in order, most specific (and least likely to be a false split) first.
var TitleSeparators = []string{" ~ ", " - ", " – ", " -- ", "–", "--", "~", "-", "  ", " "}

// ArtistSeparators split a collaboration such as "Oden & Fatzo" into its artists.
var ArtistSeparators = []string{" & ", " x "}

// ErrParse is wrapped by every [ParseError].
var ErrParse = errors.New("parsing error")

// ParseError reports a display name that could not be split into artists and a title.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %s in: %s", ErrParse, e.Reason, e.Input)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// SplitArtistsFromTitle extracts the artists and the title from a free-text display name.
//
// Uploads from a " - Topic" channel use the channel as the only artist and the untouched name as the title.
// Anything else is cleaned with [Clean] and split on the first of [TitleSeparators] present in it.
func SplitArtistsFromTitle(name, channel string) ([]string, string, error) {
	if strings.HasSuffix(channel, TopicSuffix) {
		return []string{strings.TrimSuffix(channel, TopicSuffix)}, name, nil
	}

	cleaned := Clean(name)
	i := firstSeparator(cleaned, TitleSeparators)
	if i < 0 {
		return nil, "", &ParseError{Input: cleaned, Reason: "could not find a separator"}
	}

	parts := strings.Split(cleaned, TitleSeparators[i])
	if len(parts) != 2 {
		return nil, "", &ParseError{Input: cleaned, Reason: fmt.Sprintf("found %d splits instead of two", len(parts))}
	}

	return SplitArtists(parts[0]), parts[1], nil
}

// SplitArtists splits an artist credit on the first of [ArtistSeparators] present in it.
//
// Without a separator the trimmed credit is the only artist.
func SplitArtists(credit string) []string {
	i := firstSeparator(credit, ArtistSeparators)
	if i < 0 {
		return []string{strings.TrimSpace(credit)}
	}

	parts := strings.Split(credit, ArtistSeparators[i])
	artists := make([]string, len(parts))
	for j, p := range parts {
		artists[j] = strings.TrimSpace(p)
	}
	return artists
}

// firstSeparator returns the index in separators of the first one contained in s, or -1.
func firstSeparator(s string, separators []string) int {
	for i, sep := range separators {
		if strings.Contains(s, sep) {
			return i
		}
	}
	return -1
}
