// Package models defines the catalog-independent value types of the syncx playlist synchronizer.
//
//   - [Track] : an immutable, normalized track with a derived search string
//   - [Collection] : a playlist or a synthetic saved-items collection on one [Backend]
//   - [MatchCandidate] : a search result scored against a reference track
//   - [MatchOutcome] : either a matched track with its risk, or a no-match reason
//
// Values are built once from a catalog record at fetch time and never mutated.
// A new fetch produces new values.
package models
