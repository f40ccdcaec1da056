package tasks

import (
	"github.com/desertthunder/syncx/internal/formatter"
)

// Report flattens the result for [formatter]. Rows follow source order; skipped items come last.
func (r *SyncResult) Report() formatter.Report {
	rep := formatter.Report{
		RunID:    r.RunID,
		Source:   r.Source.String(),
		Dest:     r.Dest.String(),
		Matched:  r.Matched,
		Existing: r.Existing,
		Added:    r.Added,
		Skipped:  len(r.Skipped),
		DryRun:   r.DryRun,
		Rows:     make([]formatter.Row, 0, len(r.Outcomes)+len(r.Skipped)),
	}

	// Chunks are written in order, so the first Added IDs of ToAdd are the ones that landed.
	written := make(map[string]struct{}, r.Added)
	for _, id := range r.ToAdd[:min(r.Added, len(r.ToAdd))] {
		written[id] = struct{}{}
	}
	pending := make(map[string]struct{}, len(r.ToAdd))
	for _, id := range r.ToAdd {
		pending[id] = struct{}{}
	}

	for _, o := range r.Outcomes {
		row := formatter.Row{Index: o.Index + 1, Source: o.Source.DisplayName()}
		if !o.Outcome.Matched() {
			row.Status = formatter.StatusNoMatch
			row.Reason = o.Outcome.Reason
			rep.Rows = append(rep.Rows, row)
			continue
		}

		id := o.Outcome.Track.ID()
		row.Match = o.Outcome.Track.DisplayName()
		row.MatchID = id
		row.Risk = o.Outcome.Risk
		if _, ok := written[id]; ok {
			row.Status = formatter.StatusAdded
		} else if _, ok := pending[id]; ok {
			row.Status = formatter.StatusPending
		} else {
			row.Status = formatter.StatusExisting
		}
		rep.Rows = append(rep.Rows, row)
	}

	for i, f := range r.Skipped {
		rep.Rows = append(rep.Rows, formatter.Row{
			Index:  len(r.Outcomes) + i + 1,
			Source: f.Name,
			Status: formatter.StatusSkipped,
			Reason: f.Err.Error(),
		})
	}
	return rep
}
