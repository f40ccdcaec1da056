package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/services"
	"github.com/desertthunder/syncx/internal/shared"
	"github.com/desertthunder/syncx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Catalog names accepted by --from, --to and --service.
const (
	catalogSpotify       = "spotify"
	catalogYouTube       = "youtube"
	catalogYouTubePublic = "youtube-public"
)

var catalogNames = []string{catalogSpotify, catalogYouTube, catalogYouTubePublic}

// describer is implemented by read-only catalogs that can look up a collection by ID without a [services.Directory].
type describer interface {
	Describe(ctx context.Context, idOrURL string) (models.Collection, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.PlaylistEngine

	mu       sync.Mutex
	catalogs map[string]services.Catalog
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Catalogs missing from Catalogs are built from Config on first use.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalogs   map[string]services.Catalog
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = defaultConfigPath
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	catalogs := map[string]services.Catalog{}
	for name, c := range opts.Catalogs {
		catalogs[name] = c
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     tasks.NewPlaylistEngine(opts.Logger),
		catalogs:   catalogs,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, syncAllCommand, playlistsCommand, matchCommand, cleanCommand, authCommand, configCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads .env files and the config named by --config, then applies the log level.
//
// Catalogs already built keep their credentials.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := shared.LoadEnv(cmd.StringSlice("env")...); err != nil {
		return ctx, err
	}

	r.configPath = cmd.String("config")
	config, err := shared.LoadConfigOrDefault(r.configPath)
	if err != nil {
		return ctx, err
	}
	r.config = config

	level := config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	if err := shared.SetLogLevelName(r.logger, level); err != nil {
		return ctx, fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	return ctx, nil
}

// SetLogger replaces the logger used by the runner and its engine.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.engine = tasks.NewPlaylistEngine(logger)
}

// catalog returns the named catalog, building it from the config the first time.
func (r *Runner) catalog(ctx context.Context, name string) (services.Catalog, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.catalogs[name]; ok {
		return c, nil
	}

	var (
		c   services.Catalog
		err error
	)
	switch name {
	case catalogSpotify:
		c, err = services.NewSpotifyService(ctx, r.config.Credentials.Spotify)
	case catalogYouTube:
		c, err = services.NewYouTubeService(ctx, r.config.Credentials.YouTube)
	case catalogYouTubePublic:
		c = services.NewYouTubePublicService()
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", shared.ErrUnsupportedCatalog, name, strings.Join(catalogNames, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrServiceUnavailable, name, err)
	}

	r.catalogs[name] = c
	return c, nil
}

// directory returns the catalog as a [services.Directory], or an error naming what it cannot do.
func (r *Runner) directory(ctx context.Context, name string) (services.Catalog, services.Directory, error) {
	c, err := r.catalog(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	dir, ok := c.(services.Directory)
	if !ok {
		return c, nil, fmt.Errorf("%w: %s cannot list playlists", shared.ErrReadOnly, c.Name())
	}
	return c, dir, nil
}

// collection resolves nameOrID on c. Catalogs without a directory accept IDs only.
func (r *Runner) collection(ctx context.Context, c services.Catalog, nameOrID string, create bool) (models.Collection, error) {
	if strings.TrimSpace(nameOrID) == "" {
		return models.Collection{}, fmt.Errorf("%w: collection name or ID", shared.ErrMissingArgument)
	}

	switch v := c.(type) {
	case services.Directory:
		return services.ResolveCollection(ctx, v, nameOrID, create)
	case describer:
		return v.Describe(ctx, nameOrID)
	default:
		return models.Collection{ID: nameOrID, Name: nameOrID, Backend: c.Backend()}, nil
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
