package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/syncx/internal/formatter"
	"github.com/desertthunder/syncx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkSyncOpts contains configuration for syncing many collection pairs.
type BulkSyncOpts struct {
	Sync         SyncOptions      // Applied to every pair. Sync.Progress is ignored.
	NumWorkers   int              // Concurrent pairs (default: 2)
	RateLimit    float64          // Pair starts per second (default: 5)
	ManifestPath string           // Optional report of every pair
	Format       formatter.Format // Manifest format (default: json)
}

// PairResult is the outcome of one pair. Result may be partial when Error is set.
type PairResult struct {
	Request SyncRequest
	Result  *SyncResult
	Error   error
}

// BulkSyncResult contains per-pair results in request order.
type BulkSyncResult struct {
	Total        int
	Succeeded    int
	Failed       int
	Results      []PairResult
	ManifestPath string
}

// Reports flattens every pair for [formatter].
func (b *BulkSyncResult) Reports() []formatter.Report {
	reports := make([]formatter.Report, 0, len(b.Results))
	for _, p := range b.Results {
		var rep formatter.Report
		if p.Result != nil {
			rep = p.Result.Report()
		} else {
			rep = formatter.Report{Source: p.Request.SourceCollection.String(), Dest: p.Request.DestCollection.String()}
		}
		if p.Error != nil {
			rep.Error = p.Error.Error()
		}
		reports = append(reports, rep)
	}
	return reports
}

// BulkSync runs [PlaylistEngine.Sync] for every pair on a worker pool.
//
// Destinations must be distinct: two runs writing the same collection could both add the same track.
// A failing pair does not stop the others. Cancellation marks the pairs that never started as failed.
func (e *PlaylistEngine) BulkSync(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	reqs []SyncRequest,
	opts BulkSyncOpts,
) (*BulkSyncResult, error) {
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if req.Dest == nil {
			return nil, fmt.Errorf("%w: destination catalog not initialized", shared.ErrServiceUnavailable)
		}
		k := req.Dest.Name() + "/" + req.DestCollection.String()
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: destination %s appears more than once", shared.ErrInvalidArgument, req.DestCollection)
		}
		seen[k] = struct{}{}
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 2
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	opts.Sync.Progress = nil

	result := &BulkSyncResult{
		Total:   len(reqs),
		Results: make([]PairResult, len(reqs)),
	}
	for i, req := range reqs {
		result.Results[i] = PairResult{Request: req}
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan int)
	started := make([]bool, len(reqs))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed int
		stopErr   error
	)
	for range_i := 0; range_i < opts.NumWorkers; range_i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := e.Sync(ctx, reqs[i], opts.Sync)
				result.Results[i].Result = res
				result.Results[i].Error = err

				mu.Lock()
				completed++
				step := completed
				mu.Unlock()
				e.sendProgress(prog, pairUpdate(step, len(reqs), result.Results[i]))
			}
		}()
	}

feed:
	for i := range reqs {
		if err := limiter.Wait(ctx); err != nil {
			stopErr = err
			break
		}
		select {
		case jobs <- i:
			started[i] = true
		case <-ctx.Done():
			stopErr = context.Cause(ctx)
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := range result.Results {
		if !started[i] {
			result.Results[i].Error = fmt.Errorf("not started: %w", stopErr)
		}
		if result.Results[i].Error != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	if opts.ManifestPath != "" {
		if err := formatter.WriteFile(opts.ManifestPath, result.Reports(), opts.Format); err != nil {
			return result, fmt.Errorf("sync completed but failed to write manifest: %w", err)
		}
		result.ManifestPath = opts.ManifestPath
	}
	return result, nil
}
