// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// rootFlags are shared by every command.
func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
			Sources: cli.EnvVars("SYNCX_CONFIG"),
		},
		&cli.StringSliceFlag{
			Name:  "env",
			Usage: "Load variables from these .env files (default: ./.env)",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Override the configured log level (debug, info, warn, error)",
			Sources: cli.EnvVars("SYNCX_LOG_LEVEL"),
		},
	}
}

// matcherFlags override the [sync] config section.
func matcherFlags() []cli.Flag {
	return []cli.Flag{
		&cli.FloatFlag{
			Name:  "threshold",
			Usage: "Reject candidates at or above this risk (default from config)",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Search results scored per track (default from config)",
		},
	}
}

func syncFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "Source catalog: " + joinCatalogs(),
			Value: catalogSpotify,
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "Destination catalog: spotify or youtube",
			Value: catalogYouTube,
		},
		&cli.StringFlag{
			Name:     "dest",
			Aliases:  []string{"d"},
			Usage:    "Destination playlist name or ID",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "create",
			Usage: "Create the destination playlist when it does not exist",
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Concurrent searches (default from config)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Match and compare without writing",
		},
		&cli.StringFlag{
			Name:  "log-file",
			Usage: "Write logs here while the TUI runs",
		},
	}
	return append(flags, matcherFlags()...)
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "report",
			Usage: "Report format: " + formatNames(),
			Value: "table",
		},
		&cli.StringFlag{
			Name:  "report-file",
			Usage: "Write the report to a file instead of stdout",
		},
	}
}

// syncCommand syncs one collection
func syncCommand(r *Runner) *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:     "source",
			Aliases:  []string{"s"},
			Usage:    "Source playlist name or ID (\"likes\" for Spotify saved tracks)",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "tui",
			Usage: "Show progress in the terminal UI",
		},
	}, syncFlags()...)

	return &cli.Command{
		Name:   "sync",
		Usage:  "Add the tracks of a source collection missing from a destination playlist",
		Flags:  append(flags, reportFlags()...),
		Action: r.Sync,
	}
}

// syncAllCommand syncs every pair of a mapping file
func syncAllCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "mapping",
			Aliases:  []string{"m"},
			Usage:    "TOML file listing from, to and [[pair]] source/dest entries",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "parallel",
			Usage: "Pairs synced concurrently",
			Value: 2,
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Concurrent searches per pair (default from config)",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Match and compare without writing",
		},
		&cli.StringFlag{
			Name:  "manifest",
			Usage: "Write a report of every pair to this file",
		},
		&cli.StringFlag{
			Name:  "manifest-format",
			Usage: "Manifest format: " + formatNames(),
			Value: "json",
		},
	}
	flags = append(flags, matcherFlags()...)

	return &cli.Command{
		Name:   "sync-all",
		Usage:  "Sync every source/destination pair listed in a mapping file",
		Flags:  append(flags, reportFlags()...),
		Action: r.SyncAll,
	}
}

// playlistsCommand lists collections
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"ls"},
		Usage:   "List the playlists of a catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "service",
				Usage: "Catalog: spotify or youtube",
				Value: catalogSpotify,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to show",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Playlists,
	}
}

// matchCommand scores search results for one track
func matchCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "service",
			Usage: "Catalog to search: spotify or youtube",
			Value: catalogYouTube,
		},
		&cli.StringSliceFlag{
			Name:    "artist",
			Aliases: []string{"a"},
			Usage:   "Reference artist, repeat for collaborations",
		},
		&cli.StringFlag{
			Name:    "title",
			Aliases: []string{"t"},
			Usage:   "Reference title",
		},
		&cli.StringFlag{
			Name:  "name",
			Usage: "Free-text reference such as a video title, split into artists and title",
		},
		&cli.StringFlag{
			Name:  "channel",
			Usage: "Uploader channel of --name",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}

	return &cli.Command{
		Name:   "match",
		Usage:  "Search a catalog for one track and show every scored candidate",
		Flags:  append(flags, matcherFlags()...),
		Action: r.Match,
	}
}

// cleanCommand shows title normalization
func cleanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Normalize a video title and split it into artists and title",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "title",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "channel",
				Usage: "Uploader channel; a \" - Topic\" channel is used as the artist",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Clean,
	}
}

// authCommand obtains refresh tokens
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize syncx and save a refresh token to the config file",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authorize Spotify using OAuth2",
				Flags:  authFlags(),
				Action: r.AuthSpotify,
			},
			{
				Name:   "youtube",
				Usage:  "Authorize the YouTube Data API using OAuth2",
				Flags:  authFlags(),
				Action: r.AuthYouTube,
			},
		},
	}
}

// configCommand manages the config file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example config to --config",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: r.ConfigShow,
			},
		},
	}
}

// tuiCommand launches the interactive sync
func tuiCommand(r *Runner) *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "Source playlist name or ID; pick from a list when omitted",
		},
	}, syncFlags()...)

	return &cli.Command{
		Name:   "tui",
		Usage:  "Interactive sync with live progress",
		Flags:  flags,
		Action: r.TUI,
	}
}

func authFlags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "How long to wait for the browser callback",
			Value: authTimeout,
		},
		&cli.BoolFlag{
			Name:  "no-browser",
			Usage: "Print the authorization URL without opening a browser",
		},
	}
}

func joinCatalogs() string {
	return strings.Join(catalogNames, ", ")
}
