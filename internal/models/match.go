package models

// MatchCandidate is a scored search result for a reference track.
type MatchCandidate struct {
	Track          Track
	Risk           float64  // 0 is a perfect match, no upper bound
	MissingArtists []string // Reference artists (case-folded) absent from the candidate
	TitleDeviation string   // Candidate title from the first diverging character
	Similarity     float64  // Jaro-Winkler similarity of the search strings, diagnostics only
}

// MatchOutcome is the result of resolving one reference track against a catalog.
//
// A nil Track means no candidate qualified; Reason then explains why.
type MatchOutcome struct {
	Track      *Track
	Risk       float64
	Reason     string
	Candidates []MatchCandidate
}

// Matched reports whether a candidate was accepted.
func (o MatchOutcome) Matched() bool { return o.Track != nil }

// Matched builds an accepted [MatchOutcome].
func Matched(t Track, risk float64, candidates []MatchCandidate) MatchOutcome {
	return MatchOutcome{Track: &t, Risk: risk, Candidates: candidates}
}

// NoMatch builds a rejected [MatchOutcome].
func NoMatch(reason string, candidates []MatchCandidate) MatchOutcome {
	return MatchOutcome{Reason: reason, Candidates: candidates}
}
