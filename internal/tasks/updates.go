package tasks

import (
	"fmt"

	"github.com/desertthunder/syncx/internal/models"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchDest Phase = iota
	FetchSource
	ResolveTracks
	Diff
	WriteBatches
	Done
	SyncPairs
)

func (p Phase) String() string {
	switch p {
	case FetchDest:
		return "fetch_dest"
	case FetchSource:
		return "fetch_source"
	case ResolveTracks:
		return "resolve_tracks"
	case Diff:
		return "diff"
	case WriteBatches:
		return "write_batches"
	case Done:
		return "done"
	case SyncPairs:
		return "sync_pairs"
	default:
		return ""
	}
}

func fetchDestUpdate(c models.Collection, catalog string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchDest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching destination %s from %s...", c.Name, catalog),
	}
}

func fetchSourceUpdate(c models.Collection, catalog string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching source %s from %s...", c.Name, catalog),
	}
}

func resolveUpdate(step, total int, tr *models.Track) ProgressUpdate {
	if tr == nil {
		return ProgressUpdate{
			Phase:   ResolveTracks,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("Searching for %d tracks...", total),
		}
	}
	return ProgressUpdate{
		Phase:   ResolveTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%03d/%03d] searching %s", step, total, tr.DisplayName()),
		Data:    *tr,
	}
}

func diffUpdate(toAdd, existing int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Diff,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d tracks to add, %d already present", toAdd, existing),
	}
}

func writeUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteBatches,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] adding %d tracks...", step, total, size),
	}
}

func doneUpdate(r *SyncResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: r.Summary(),
		Data:    r,
	}
}

func pairUpdate(step, total int, p PairResult) ProgressUpdate {
	name := p.Request.SourceCollection.Name + " -> " + p.Request.DestCollection.Name
	if p.Error != nil {
		return ProgressUpdate{
			Phase:   SyncPairs,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, p.Error),
			Data:    p,
		}
	}
	return ProgressUpdate{
		Phase:   SyncPairs,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, name, p.Result.Summary()),
		Data:    p,
	}
}
