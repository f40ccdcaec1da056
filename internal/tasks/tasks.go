package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/syncx/internal/matching"
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/services"
	"github.com/desertthunder/syncx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	maxWorkers       = 16
	defaultRateLimit = 5.0
)

// SyncRequest names the source and destination of a run.
type SyncRequest struct {
	Source           services.Catalog
	SourceCollection models.Collection
	Dest             services.Catalog
	DestCollection   models.Collection
}

// SyncOptions tunes a run. The zero value is a sequential run with the default threshold.
type SyncOptions struct {
	Threshold   float64 // Accept candidates below this risk
	SearchLimit int     // Search results scored per source track
	Workers     int     // Concurrent resolvers, 1 is sequential
	RateLimit   float64 // Searches per second across workers
	DryRun      bool    // Stop after the diff

	Progress chan<- ProgressUpdate // Optional, never blocks the run
}

func (o SyncOptions) withDefaults() SyncOptions {
	if o.Threshold <= 0 {
		o.Threshold = matching.DefaultThreshold
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = matching.DefaultSearchLimit
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Workers > maxWorkers {
		o.Workers = maxWorkers
	}
	if o.RateLimit <= 0 {
		o.RateLimit = defaultRateLimit
	}
	return o
}

// TrackOutcome is the resolution of one source track.
type TrackOutcome struct {
	Index           int // Position among the source tracks that were built
	Source          models.Track
	Outcome         models.MatchOutcome
	CandidateErrors []error // Search results that could not be built
}

// SyncResult reports a run. Matched counts distinct destination IDs.
type SyncResult struct {
	RunID    string
	Source   models.Collection
	Dest     models.Collection
	Outcomes []TrackOutcome
	Skipped  []services.BuildFailure // Source items that could not be built
	ToAdd    []string
	Matched  int
	Existing int
	Added    int
	Batches  int
	DryRun   bool
	Started  time.Time
	Finished time.Time
}

// Unmatched returns the source tracks that had no accepted candidate.
func (r *SyncResult) Unmatched() []TrackOutcome {
	var out []TrackOutcome
	for _, o := range r.Outcomes {
		if !o.Outcome.Matched() {
			out = append(out, o)
		}
	}
	return out
}

func (r *SyncResult) Summary() string {
	return fmt.Sprintf("matched %d, already present %d, added %d", r.Matched, r.Existing, r.Added)
}

// SyncEngine synchronizes a destination collection from a source collection.
type SyncEngine interface {
	Sync(ctx context.Context, req SyncRequest, opts SyncOptions) (*SyncResult, error)
}

// PlaylistEngine implements [SyncEngine].
type PlaylistEngine struct {
	logger *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine. A nil logger writes to stderr.
func NewPlaylistEngine(logger *log.Logger) *PlaylistEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistEngine{logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Sync adds every source track matched in the destination catalog that the destination collection lacks.
//
// Unmatched and malformed tracks are skipped. Search, fetch and write failures abort the run; a failed write
// returns the partial result alongside the error.
func (e *PlaylistEngine) Sync(ctx context.Context, req SyncRequest, opts SyncOptions) (*SyncResult, error) {
	if req.Source == nil || req.Dest == nil {
		return nil, fmt.Errorf("%w: source and destination catalogs are required", shared.ErrServiceUnavailable)
	}

	opts = opts.withDefaults()
	result := &SyncResult{
		RunID:   shared.GenerateID(),
		Source:  req.SourceCollection,
		Dest:    req.DestCollection,
		DryRun:  opts.DryRun,
		Started: time.Now(),
	}
	logger := shared.WithLogger(e.logger, "run", result.RunID)
	logger.Info("starting sync",
		"source", req.SourceCollection, "dest", req.DestCollection,
		"threshold", opts.Threshold, "workers", opts.Workers, "dry_run", opts.DryRun)

	e.sendProgress(opts.Progress, fetchDestUpdate(req.DestCollection, req.Dest.Name()))
	destItems, err := services.FetchAll(ctx, req.Dest, req.DestCollection)
	if err != nil {
		return nil, fmt.Errorf("fetch destination %s: %w", req.DestCollection, err)
	}
	existing := make(map[string]struct{}, len(destItems))
	for _, it := range destItems {
		if it.ID != "" {
			existing[it.ID] = struct{}{}
		}
	}
	logger.Debug("fetched destination", "items", len(destItems))

	e.sendProgress(opts.Progress, fetchSourceUpdate(req.SourceCollection, req.Source.Name()))
	srcItems, err := services.FetchAll(ctx, req.Source, req.SourceCollection)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", req.SourceCollection, err)
	}
	tracks, failures := services.BuildTracks(req.Source, srcItems)
	for _, f := range failures {
		logger.Warn("skipping source item", "id", f.ID, "name", f.Name, "err", f.Err)
	}
	result.Skipped = failures

	outcomes, err := e.resolve(ctx, logger, req.Dest, tracks, opts)
	if err != nil {
		return nil, err
	}
	result.Outcomes = outcomes

	result.ToAdd, result.Matched, result.Existing = diff(outcomes, existing)
	e.sendProgress(opts.Progress, diffUpdate(len(result.ToAdd), result.Existing))
	logger.Info("computed diff", "matched", result.Matched, "existing", result.Existing, "to_add", len(result.ToAdd))

	if !opts.DryRun {
		chunks := services.Chunk(result.ToAdd, req.Dest.MaxBatch(req.DestCollection))
		for i, chunk := range chunks {
			if err := ctx.Err(); err != nil {
				result.Finished = time.Now()
				return result, err
			}
			e.sendProgress(opts.Progress, writeUpdate(i+1, len(chunks), len(chunk)))
			if err := req.Dest.AddItems(ctx, req.DestCollection, chunk); err != nil {
				result.Finished = time.Now()
				return result, fmt.Errorf("add %d tracks to %s: %w", len(chunk), req.DestCollection, err)
			}
			result.Added += len(chunk)
			result.Batches++
			logger.Debug("wrote batch", "batch", i+1, "size", len(chunk))
		}
	}

	result.Finished = time.Now()
	logger.Info("sync finished", "matched", result.Matched, "existing", result.Existing, "added", result.Added,
		"unmatched", len(result.Unmatched()), "skipped", len(result.Skipped), "elapsed", result.Finished.Sub(result.Started))
	e.sendProgress(opts.Progress, doneUpdate(result))
	return result, nil
}

// resolve matches every track against dest. Outcomes keep the order of tracks regardless of worker scheduling.
func (e *PlaylistEngine) resolve(
	ctx context.Context,
	logger *log.Logger,
	dest services.Catalog,
	tracks []models.Track,
	opts SyncOptions,
) ([]TrackOutcome, error) {
	selector := matching.NewSelector(opts.Threshold)
	outcomes := make([]TrackOutcome, len(tracks))
	total := len(tracks)
	e.sendProgress(opts.Progress, resolveUpdate(0, total, nil))

	if opts.Workers == 1 || total < 2 {
		for i := range tracks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			e.sendProgress(opts.Progress, resolveUpdate(i+1, total, &tracks[i]))
			out, err := resolveTrack(ctx, logger, dest, selector, tracks[i], opts.SearchLimit)
			if err != nil {
				return nil, err
			}
			out.Index = i
			outcomes[i] = out
		}
		return outcomes, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		limiter  = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
		jobs     = make(chan int)
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for range_i := 0; range_i < opts.Workers; range_i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := limiter.Wait(runCtx); err != nil {
					fail(err)
					continue
				}
				out, err := resolveTrack(runCtx, logger, dest, selector, tracks[i], opts.SearchLimit)
				if err != nil {
					fail(err)
					continue
				}
				out.Index = i
				outcomes[i] = out

				mu.Lock()
				done++
				step := done
				mu.Unlock()
				e.sendProgress(opts.Progress, resolveUpdate(step, total, &tracks[i]))
			}
		}()
	}

feed:
	for i := range tracks {
		select {
		case jobs <- i:
		case <-runCtx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// resolveTrack searches dest for track and selects the best candidate. Only a search failure is returned as an error.
func resolveTrack(
	ctx context.Context,
	logger *log.Logger,
	dest services.Catalog,
	selector *matching.Selector,
	track models.Track,
	limit int,
) (TrackOutcome, error) {
	raws, err := dest.Search(ctx, track.SearchString(), limit)
	if err != nil {
		return TrackOutcome{}, fmt.Errorf("search %s for %q: %w", dest.Name(), track.SearchString(), err)
	}

	outcome, errs := matching.SelectFrom(selector, track, raws, dest.BuildTrack)
	name := track.DisplayName()
	for _, err := range errs {
		logger.Debug("skipping candidate", "track", name, "err", err)
	}
	for _, c := range outcome.Candidates {
		logger.Debug("candidate",
			"track", name, "candidate", c.Track.DisplayName(), "risk", c.Risk,
			"missing", c.MissingArtists, "deviation", c.TitleDeviation, "similarity", c.Similarity)
	}
	if outcome.Matched() {
		logger.Info("matched", "track", name, "id", outcome.Track.ID(), "as", outcome.Track.DisplayName(), "risk", outcome.Risk)
	} else {
		logger.Warn("no match", "track", name, "reason", outcome.Reason)
	}

	return TrackOutcome{Source: track, Outcome: outcome, CandidateErrors: errs}, nil
}

// diff returns the matched IDs missing from existing in first-seen order, with the distinct matched and
// already-present counts.
func diff(outcomes []TrackOutcome, existing map[string]struct{}) (toAdd []string, matched, present int) {
	seen := make(map[string]struct{})
	for _, o := range outcomes {
		if !o.Outcome.Matched() {
			continue
		}
		id := o.Outcome.Track.ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		matched++
		if _, ok := existing[id]; ok {
			present++
			continue
		}
		toAdd = append(toAdd, id)
	}
	return toAdd, matched, present
}
