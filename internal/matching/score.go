package matching

import (
	"slices"
	"strings"

	"github.com/desertthunder/syncx/internal/models"
	"golang.org/x/text/cases"
)

// Result is the risk of a candidate being a different recording than the reference, with diagnostics.
type Result struct {
	Risk           float64
	MissingArtists []string
	TitleDeviation string
}

// Score computes the risk that candidate is not the same recording as reference.
//
// Missing artists add the missing fraction of the reference artists, unless the candidate stores the whole
// collaboration as its first artist ("Oden & Fatzo"). Diverging titles add (i+1)/len(reference title) where i is the
// first differing character, and an empty title on either side adds 1.
func Score(reference, candidate models.Track) Result {
	refArtists := reference.Artists()
	candArtists := candidate.Artists()

	expected := foldSet(refArtists)
	found := foldSet(candArtists)

	var missing []string
	for a := range expected {
		if _, ok := found[a]; !ok {
			missing = append(missing, a)
		}
	}
	slices.Sort(missing)

	var risk float64
	if len(missing) > 0 && len(expected) > 1 {
		collab := fold(strings.Join(refArtists, " & "))
		var first string
		if len(candArtists) > 0 {
			first = fold(candArtists[0])
		}
		if collab == first {
			missing = nil
		} else {
			risk += float64(len(missing)) / float64(len(expected))
		}
	} else if len(expected) > 0 {
		risk += float64(len(missing)) / float64(len(expected))
	}

	want := []rune(fold(reference.Title()))
	got := []rune(fold(candidate.Title()))

	var deviation string
	switch {
	case len(want) == 0 || len(got) == 0:
		risk += 1.0
		deviation = string(got)
	case string(want) == string(got):
	default:
		i := divergence(want, got)
		risk += float64(i+1) / float64(len(want))
		if i < len(got) {
			deviation = string(got[i:])
		}
	}

	return Result{Risk: risk, MissingArtists: missing, TitleDeviation: deviation}
}

// divergence returns the first index where want and got differ, or len(want) when one is a prefix of the other.
func divergence(want, got []rune) int {
	n := min(len(want), len(got))
	for i := 0; i < n; i++ {
		if want[i] != got[i] {
			return i
		}
	}
	return len(want)
}

// fold trims and Unicode case-folds s.
//
// A [cases.Caser] keeps state, so a new one is made per call to stay safe across resolver goroutines.
func fold(s string) string {
	return strings.TrimSpace(cases.Fold().String(s))
}

func foldSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[fold(v)] = struct{}{}
	}
	return set
}
