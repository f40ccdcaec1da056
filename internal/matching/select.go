package matching

import (
	"fmt"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/desertthunder/syncx/internal/models"
)

const (
	DefaultThreshold   = 1.0 // Candidates at or above this risk are rejected
	DefaultSearchLimit = 5   // Search results scored per reference track
)

// Selector picks the lowest-risk candidate for a reference track.
type Selector struct {
	Threshold float64
	Score     func(reference, candidate models.Track) Result
}

// NewSelector creates a [Selector] using [Score]. A non-positive threshold falls back to [DefaultThreshold].
func NewSelector(threshold float64) *Selector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Selector{Threshold: threshold, Score: Score}
}

// Select scores every candidate and accepts the one with the strictly lowest risk if it is below the threshold.
//
// Ties keep the earliest candidate. An empty candidate list is a no-match.
func (s *Selector) Select(reference models.Track, candidates []models.Track) models.MatchOutcome {
	if len(candidates) == 0 {
		return models.NoMatch(fmt.Sprintf("no candidates for %q", reference.SearchString()), nil)
	}

	scoreFn := s.Score
	if scoreFn == nil {
		scoreFn = Score
	}

	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false

	scored := make([]models.MatchCandidate, len(candidates))
	best := 0
	for i, c := range candidates {
		r := scoreFn(reference, c)
		scored[i] = models.MatchCandidate{
			Track:          c,
			Risk:           r.Risk,
			MissingArtists: r.MissingArtists,
			TitleDeviation: r.TitleDeviation,
			Similarity:     strutil.Similarity(reference.SearchString(), c.SearchString(), jw),
		}
		if scored[i].Risk < scored[best].Risk {
			best = i
		}
	}

	if scored[best].Risk >= s.Threshold {
		return models.NoMatch(
			fmt.Sprintf("best of %d candidates for %q has risk %.3f (threshold %.3f)",
				len(scored), reference.SearchString(), scored[best].Risk, s.Threshold),
			scored,
		)
	}

	return models.Matched(scored[best].Track, scored[best].Risk, scored)
}

// SelectFrom builds a track from each raw search result and runs [Selector.Select] on those that could be built.
//
// Construction failures are returned alongside the outcome and never abort the selection.
func SelectFrom[T any](s *Selector, reference models.Track, raws []T, build func(T) (models.Track, error)) (models.MatchOutcome, []error) {
	var (
		candidates []models.Track
		errs       []error
	)
	for i, raw := range raws {
		t, err := build(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("candidate %d: %w", i+1, err))
			continue
		}
		candidates = append(candidates, t)
	}

	return s.Select(reference, candidates), errs
}
