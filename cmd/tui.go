package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/syncx/internal/services"
	"github.com/desertthunder/syncx/internal/shared"
	"github.com/desertthunder/syncx/internal/tasks"
	"github.com/desertthunder/syncx/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive sync. Without --source the source catalog's collections are listed to pick from.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	opts := r.syncOptions(cmd)

	if source := cmd.String("source"); source != "" {
		req, err := r.syncRequest(ctx, cmd.String("from"), source, cmd.String("to"), cmd.String("dest"), cmd.Bool("create"), opts.DryRun)
		if err != nil {
			return err
		}
		return r.runTUI(ctx, req, opts, cmd)
	}

	src, dir, err := r.directory(ctx, cmd.String("from"))
	if err != nil {
		return err
	}
	dest, err := r.catalog(ctx, cmd.String("to"))
	if err != nil {
		return err
	}
	destCollection, err := r.collection(ctx, dest, cmd.String("dest"), cmd.Bool("create") && !opts.DryRun)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	req := tasks.SyncRequest{Source: src, Dest: dest, DestCollection: destCollection}
	return r.runTUIWith(ctx, req, opts, dir, cmd)
}

func (r *Runner) runTUI(ctx context.Context, req tasks.SyncRequest, opts tasks.SyncOptions, cmd *cli.Command) error {
	return r.runTUIWith(ctx, req, opts, nil, cmd)
}

func (r *Runner) runTUIWith(ctx context.Context, req tasks.SyncRequest, opts tasks.SyncOptions, dir services.Directory, cmd *cli.Command) error {
	release, err := r.lockDestination(req, opts.DryRun)
	if err != nil {
		return err
	}
	defer release()

	// Logs would tear the alt screen, so they go to a file or nowhere.
	var w io.Writer = io.Discard
	if cmd != nil && cmd.String("log-file") != "" {
		path := cmd.String("log-file")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger := shared.NewLogger(w)
	logger.SetLevel(r.logger.GetLevel())
	r.SetLogger(logger)

	model := ui.NewModel(ctx, r.engine, dir, req, opts)
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	result, err := model.Result()
	if err != nil {
		return err
	}
	if result != nil {
		r.writePlain("%s\n", result.Summary())
	}
	return nil
}
