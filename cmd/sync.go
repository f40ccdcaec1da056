package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/syncx/internal/formatter"
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/shared"
	"github.com/desertthunder/syncx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync adds the tracks of one source collection that are missing from the destination collection.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("report"))
	if err != nil {
		return err
	}
	opts := r.syncOptions(cmd)

	req, err := r.syncRequest(ctx, cmd.String("from"), cmd.String("source"), cmd.String("to"), cmd.String("dest"), cmd.Bool("create"), opts.DryRun)
	if err != nil {
		return err
	}

	if cmd.Bool("tui") {
		return r.runTUI(ctx, req, opts, cmd)
	}

	release, err := r.lockDestination(req, opts.DryRun)
	if err != nil {
		return err
	}
	defer release()

	reportFile := cmd.String("report-file")
	quiet := format == formatter.FormatJSON && reportFile == ""

	r.logger.Info("starting sync", "source", req.SourceCollection, "dest", req.DestCollection, "dry_run", opts.DryRun)
	if !quiet {
		r.writePlain("Source: %s on %s\n", req.SourceCollection.Name, req.Source.Name())
		r.writePlain("Destination: %s on %s\n\n", req.DestCollection.Name, req.Dest.Name())
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			if !quiet {
				r.printProgress(update)
			}
		}
	}()

	opts.Progress = progressCh
	result, err := r.engine.Sync(ctx, req, opts)
	close(progressCh)
	<-printed

	if result == nil {
		return err
	}

	report := result.Report()
	if err != nil {
		report.Error = err.Error()
	}
	if werr := r.writeReport([]formatter.Report{report}, format, reportFile); werr != nil {
		return errors.Join(err, werr)
	}
	if err != nil {
		return err
	}

	if !quiet {
		title := "Sync Complete!"
		if result.DryRun {
			title = "Dry Run Complete!"
		}
		r.writePlainln("")
		r.writePlainHeader(title)
		r.writePlain("Matched: %d\n", result.Matched)
		r.writePlain("Already present: %d\n", result.Existing)
		r.writePlain("Added: %d\n", result.Added)
		if n := len(result.Unmatched()); n > 0 {
			r.writePlain("No match: %d\n", n)
		}
		if n := len(result.Skipped); n > 0 {
			r.writePlain("Skipped: %d\n", n)
		}
	}
	return nil
}

// SyncAll runs every pair of a mapping file.
func (r *Runner) SyncAll(ctx context.Context, cmd *cli.Command) error {
	mapping, err := shared.LoadMapping(cmd.String("mapping"))
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("report"))
	if err != nil {
		return err
	}
	manifestFormat, err := formatter.ParseFormat(cmd.String("manifest-format"))
	if err != nil {
		return err
	}

	opts := r.syncOptions(cmd)
	reqs := make([]tasks.SyncRequest, 0, len(mapping.Pairs))
	for _, pair := range mapping.Pairs {
		req, err := r.syncRequest(ctx, mapping.From, pair.Source, mapping.To, pair.DestName(), mapping.Create, opts.DryRun)
		if err != nil {
			return fmt.Errorf("pair %s -> %s: %w", pair.Source, pair.DestName(), err)
		}
		reqs = append(reqs, req)
	}

	var releases []func()
	defer func() {
		for _, release := range releases {
			release()
		}
	}()
	for _, req := range reqs {
		release, err := r.lockDestination(req, opts.DryRun)
		if err != nil {
			return err
		}
		releases = append(releases, release)
	}

	r.logger.Info("starting bulk sync", "pairs", len(reqs), "from", mapping.From, "to", mapping.To)
	r.writePlain("Syncing %d collections from %s to %s...\n\n", len(reqs), mapping.From, mapping.To)

	progressCh := make(chan tasks.ProgressUpdate, len(reqs))
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			r.printProgress(update)
		}
	}()

	result, err := r.engine.BulkSync(ctx, progressCh, reqs, tasks.BulkSyncOpts{
		Sync:         opts,
		NumWorkers:   int(cmd.Int("parallel")),
		ManifestPath: cmd.String("manifest"),
		Format:       manifestFormat,
	})
	close(progressCh)
	<-printed

	if result == nil {
		return err
	}
	if werr := r.writeReport(result.Reports(), format, cmd.String("report-file")); werr != nil {
		return errors.Join(err, werr)
	}

	r.writePlainln("")
	r.writePlainHeader("Bulk Sync Complete!")
	r.writePlain("Pairs: %d\n", result.Total)
	r.writePlain("Succeeded: %d\n", result.Succeeded)
	r.writePlain("Failed: %d\n", result.Failed)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}

	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d pairs failed", result.Failed, result.Total)
	}
	return nil
}

// syncRequest resolves both catalogs and collections.
//
// A dry run never creates the destination playlist.
func (r *Runner) syncRequest(ctx context.Context, from, source, to, dest string, create, dryRun bool) (tasks.SyncRequest, error) {
	src, err := r.catalog(ctx, from)
	if err != nil {
		return tasks.SyncRequest{}, err
	}
	dst, err := r.catalog(ctx, to)
	if err != nil {
		return tasks.SyncRequest{}, err
	}

	srcCollection, err := r.collection(ctx, src, source, false)
	if err != nil {
		return tasks.SyncRequest{}, fmt.Errorf("source: %w", err)
	}
	dstCollection, err := r.collection(ctx, dst, dest, create && !dryRun)
	if err != nil {
		if dryRun && create && errors.Is(err, shared.ErrPlaylistNotFound) {
			return tasks.SyncRequest{}, fmt.Errorf("destination: %w (a dry run does not create playlists)", err)
		}
		return tasks.SyncRequest{}, fmt.Errorf("destination: %w", err)
	}

	return tasks.SyncRequest{Source: src, SourceCollection: srcCollection, Dest: dst, DestCollection: dstCollection}, nil
}

// syncOptions reads matcher flags, falling back to the [sync] config section.
func (r *Runner) syncOptions(cmd *cli.Command) tasks.SyncOptions {
	cfg := r.config.Sync
	opts := tasks.SyncOptions{
		Threshold:   cfg.Threshold,
		SearchLimit: cfg.SearchLimit,
		Workers:     cfg.Workers,
		RateLimit:   cfg.RateLimit,
		DryRun:      cmd.Bool("dry-run"),
	}
	if cmd.IsSet("threshold") {
		opts.Threshold = cmd.Float("threshold")
	}
	if cmd.IsSet("limit") {
		opts.SearchLimit = int(cmd.Int("limit"))
	}
	if cmd.IsSet("workers") {
		opts.Workers = int(cmd.Int("workers"))
	}
	return opts
}

// lockDestination takes the cross-process lock for the destination. Dry runs write nothing and skip it.
func (r *Runner) lockDestination(req tasks.SyncRequest, dryRun bool) (func(), error) {
	if dryRun {
		return func() {}, nil
	}

	lock := shared.NewDestinationLock(r.config.Sync.LockDir, req.Dest.Backend().String(), lockKey(req.DestCollection))
	if err := lock.Acquire(); err != nil {
		return nil, err
	}
	r.logger.Debug("destination locked", "path", lock.Path())

	return func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("failed to release destination lock", "path", lock.Path(), "error", err)
		}
	}, nil
}

func lockKey(c models.Collection) string {
	if c.ID != "" {
		return c.ID
	}
	return c.Name
}

func (r *Runner) printProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchDest, tasks.FetchSource:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.ResolveTracks:
		if update.Step == 0 {
			r.writePlain("\n🔍 %s\n", update.Message)
		} else {
			r.writePlain("   %s\n", update.Message)
		}
	case tasks.Diff:
		r.writePlain("\n🧮 %s\n", update.Message)
	case tasks.WriteBatches:
		r.writePlain("📝 %s\n", update.Message)
	case tasks.SyncPairs:
		r.writePlain("%s\n", update.Message)
	case tasks.Done:
		r.logger.Debug("sync finished", "summary", update.Message)
	}
}

// writeReport renders reports to path, or to the output when path is empty.
func (r *Runner) writeReport(reports []formatter.Report, format formatter.Format, path string) error {
	if path != "" {
		if err := formatter.WriteFile(path, reports, format); err != nil {
			return err
		}
		r.logger.Info("report written", "path", path, "format", format)
		return nil
	}

	if format == formatter.FormatTable && len(reports) > 0 && !hasRows(reports) {
		return nil
	}
	if format != formatter.FormatJSON {
		r.writePlain("\n")
	}
	return formatter.Write(r.output, reports, format)
}

func hasRows(reports []formatter.Report) bool {
	for _, rep := range reports {
		if len(rep.Rows) > 0 {
			return true
		}
	}
	return false
}

func formatNames() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
