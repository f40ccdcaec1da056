package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/tasks"
)

var (
	_ list.Item = collectionItem{}
	_ list.Item = outcomeItem{}
)

// collectionItem wraps [models.Collection] to implement [list.Item].
type collectionItem struct {
	collection models.Collection
}

func (i collectionItem) FilterValue() string { return i.collection.Name }
func (i collectionItem) Title() string       { return i.collection.Name }
func (i collectionItem) Description() string {
	if i.collection.Synthetic {
		return "saved tracks"
	}
	if i.collection.Count > 0 {
		return fmt.Sprintf("%d tracks • %s", i.collection.Count, i.collection.ID)
	}
	return i.collection.ID
}

// outcomeItem wraps [tasks.TrackOutcome] to implement [list.Item].
type outcomeItem struct {
	outcome   tasks.TrackOutcome
	threshold float64
}

func (i outcomeItem) FilterValue() string { return i.outcome.Source.DisplayName() }
func (i outcomeItem) Title() string {
	if i.outcome.Outcome.Matched() {
		return styles.ok.Render("✓ ") + i.outcome.Source.DisplayName()
	}
	return styles.err.Render("✗ ") + i.outcome.Source.DisplayName()
}

func (i outcomeItem) Description() string {
	o := i.outcome.Outcome
	if !o.Matched() {
		return o.Reason
	}
	risk := styles.As(fmt.Sprintf("risk %.3f", o.Risk), riskColor(o.Risk, i.threshold))
	parts := []string{o.Track.DisplayName(), risk}
	for _, c := range o.Candidates {
		if c.Track.ID() == o.Track.ID() && c.TitleDeviation != "" {
			parts = append(parts, fmt.Sprintf("deviation %q", c.TitleDeviation))
			break
		}
	}
	return strings.Join(parts, " • ")
}
