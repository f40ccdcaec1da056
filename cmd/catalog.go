package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/syncx/internal/matching"
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/shared"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v3"
)

type playlistRow struct {
	Name      string `json:"name"`
	ID        string `json:"id,omitempty"`
	Tracks    int    `json:"tracks"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

// Playlists lists the collections of a catalog, its library first.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	_, dir, err := r.directory(ctx, cmd.String("service"))
	if err != nil {
		return err
	}

	playlists, err := dir.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	if lib, ok := dir.Library(); ok {
		playlists = append([]models.Collection{lib}, playlists...)
	}

	if limit := int(cmd.Int("limit")); limit > 0 && limit < len(playlists) {
		playlists = playlists[:limit]
	}
	r.logger.Debug("listed playlists", "service", cmd.String("service"), "count", len(playlists))

	rows := make([]playlistRow, len(playlists))
	for i, p := range playlists {
		rows[i] = playlistRow{Name: p.Name, ID: p.ID, Tracks: p.Count, Synthetic: p.Synthetic}
	}
	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Name", "ID", "Tracks"})
	for i, row := range rows {
		id, tracks := row.ID, strconv.Itoa(row.Tracks)
		if row.Synthetic {
			id, tracks = "(library)", "-"
		}
		tw.AppendRow(table.Row{i + 1, row.Name, id, tracks})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return r.writePlain("%s\n", tw.Render())
}

type candidateRow struct {
	ID             string   `json:"id"`
	Track          string   `json:"track"`
	Risk           float64  `json:"risk"`
	MissingArtists []string `json:"missing_artists,omitempty"`
	TitleDeviation string   `json:"title_deviation,omitempty"`
	Similarity     float64  `json:"similarity"`
	Accepted       bool     `json:"accepted"`
}

type matchReport struct {
	Query      string         `json:"query"`
	Threshold  float64        `json:"threshold"`
	Match      string         `json:"match,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Candidates []candidateRow `json:"candidates"`
	Rejected   []string       `json:"rejected,omitempty"`
}

// Match searches one catalog for a track and prints every scored candidate.
//
// The reference is either --artist/--title or a free-text --name split like a YouTube upload.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	reference, err := referenceTrack(cmd.StringSlice("artist"), cmd.String("title"), cmd.String("name"), cmd.String("channel"))
	if err != nil {
		return err
	}

	c, err := r.catalog(ctx, cmd.String("service"))
	if err != nil {
		return err
	}

	opts := r.syncOptions(cmd)
	raws, err := c.Search(ctx, reference.SearchString(), opts.SearchLimit)
	if err != nil {
		return fmt.Errorf("search %s for %q: %w", c.Name(), reference.SearchString(), err)
	}

	selector := matching.NewSelector(opts.Threshold)
	outcome, buildErrs := matching.SelectFrom(selector, reference, raws, c.BuildTrack)

	report := matchReport{Query: reference.SearchString(), Threshold: selector.Threshold, Reason: outcome.Reason}
	if outcome.Matched() {
		report.Match = outcome.Track.DisplayName()
	}
	for _, cand := range outcome.Candidates {
		report.Candidates = append(report.Candidates, candidateRow{
			ID:             cand.Track.ID(),
			Track:          cand.Track.DisplayName(),
			Risk:           cand.Risk,
			MissingArtists: cand.MissingArtists,
			TitleDeviation: cand.TitleDeviation,
			Similarity:     cand.Similarity,
			Accepted:       outcome.Matched() && cand.Track.ID() == outcome.Track.ID(),
		})
	}
	for _, e := range buildErrs {
		report.Rejected = append(report.Rejected, e.Error())
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}

	r.writePlain("Query: %s (%s, threshold %.3f)\n\n", report.Query, c.Name(), report.Threshold)
	if len(report.Candidates) > 0 {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleRounded)
		tw.AppendHeader(table.Row{"", "Candidate", "Risk", "Missing", "Deviation", "Similarity"})
		for _, row := range report.Candidates {
			mark := ""
			if row.Accepted {
				mark = "✓"
			}
			tw.AppendRow(table.Row{
				mark, row.Track, fmt.Sprintf("%.3f", row.Risk), strings.Join(row.MissingArtists, ", "),
				row.TitleDeviation, fmt.Sprintf("%.2f", row.Similarity),
			})
		}
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignRight},
			{Number: 6, Align: text.AlignRight},
		})
		r.writePlain("%s\n", tw.Render())
	}
	for _, rej := range report.Rejected {
		r.writePlain("skipped %s\n", rej)
	}

	if report.Match != "" {
		return r.writePlainln("✓ %s", report.Match)
	}
	return r.writePlainln("✗ %s", report.Reason)
}

func referenceTrack(artists []string, title, name, channel string) (models.Track, error) {
	if name != "" {
		split, t, err := matching.SplitArtistsFromTitle(name, channel)
		if err != nil {
			return models.Track{}, fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
		}
		return models.NewFreeTextTrack("reference", t, split, name, channel)
	}

	if title == "" || len(artists) == 0 {
		return models.Track{}, fmt.Errorf("%w: --artist and --title, or --name", shared.ErrMissingArgument)
	}
	return models.NewTrack("reference", title, artists)
}

type cleanReport struct {
	Input   string   `json:"input"`
	Cleaned string   `json:"cleaned"`
	Artists []string `json:"artists,omitempty"`
	Title   string   `json:"title,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Clean shows how a free-text title is normalized and split.
func (r *Runner) Clean(ctx context.Context, cmd *cli.Command) error {
	input := cmd.StringArg("title")
	if input == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	report := cleanReport{Input: input, Cleaned: matching.Clean(input)}
	artists, title, err := matching.SplitArtistsFromTitle(input, cmd.String("channel"))
	if err != nil {
		var perr *matching.ParseError
		if !errors.As(err, &perr) {
			return err
		}
		report.Error = perr.Reason
	} else {
		report.Artists, report.Title = artists, title
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}

	r.writePlain("Input:   %s\n", report.Input)
	r.writePlain("Cleaned: %s\n", report.Cleaned)
	if report.Error != "" {
		return r.writePlain("✗ %s\n", report.Error)
	}
	r.writePlain("Artists: %s\n", strings.Join(report.Artists, " | "))
	return r.writePlain("Title:   %s\n", report.Title)
}
