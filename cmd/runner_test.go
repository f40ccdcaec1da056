package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/syncx/internal/formatter"
	"github.com/desertthunder/syncx/internal/models"
	"github.com/desertthunder/syncx/internal/services"
	"github.com/desertthunder/syncx/internal/shared"
	tu "github.com/desertthunder/syncx/internal/testing"
	"github.com/urfave/cli/v3"
)

// harness wires a runner to fake catalogs and a config file in a temp dir.
type harness struct {
	runner     *Runner
	output     *bytes.Buffer
	logs       *bytes.Buffer
	configPath string
	lockDir    string
	spotify    *tu.FakeCatalog
	youtube    *tu.FakeCatalog
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	config := shared.DefaultConfig()
	config.Sync.LockDir = filepath.Join(dir, "locks")
	configPath := filepath.Join(dir, "config.toml")
	if err := shared.SaveConfig(configPath, config); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	spot := tu.NewFakeCatalog("Spotify", 50)
	spot.Kind = models.BackendSpotify
	spot.HasLibrary = true
	lib, _ := spot.Library()
	spot.Seed(lib, tu.Track("s1", "B", "Y"), tu.Track("s2", "C", "Z"), tu.Track("s3", "Nothing", "Nobody"))
	spot.Lists = []models.Collection{{ID: "sp1", Name: "house case", Backend: models.BackendSpotify, Count: 3}}

	yt := tu.NewFakeCatalog("YouTube", 1)
	yt.AddResult("Y B", tu.Upload("b", "Y - B", "Y"))
	yt.AddResult("Z C", tu.Upload("c", "Z - C", "Z"))

	output, logs := &bytes.Buffer{}, &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalogs:   map[string]services.Catalog{catalogSpotify: spot, catalogYouTube: yt},
		Logger:     shared.NewLogger(logs),
		Output:     output,
	})

	return &harness{
		runner:     runner,
		output:     output,
		logs:       logs,
		configPath: configPath,
		lockDir:    config.Sync.LockDir,
		spotify:    spot,
		youtube:    yt,
	}
}

func (h *harness) run(args ...string) error {
	app := &cli.Command{
		Name:     "syncx",
		Flags:    rootFlags(),
		Before:   h.runner.Before,
		Commands: h.runner.register(),
	}
	return app.Run(context.Background(), append([]string{"syncx", "--config", h.configPath}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("creates runner with defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output == nil {
				t.Error("expected default output to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be initialized")
			}
			if runner.configPath != defaultConfigPath {
				t.Errorf("expected config path %s, got %s", defaultConfigPath, runner.configPath)
			}
		})

		t.Run("copies injected catalogs", func(t *testing.T) {
			fake := tu.NewFakeCatalog("YouTube", 1)
			catalogs := map[string]services.Catalog{catalogYouTube: fake}
			runner := NewRunner(RunnerOpts{Catalogs: catalogs})
			delete(catalogs, catalogYouTube)

			c, err := runner.catalog(context.Background(), "YouTube")
			if err != nil || c != fake {
				t.Errorf("expected the injected catalog, got %v, %v", c, err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes pretty JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := "{\n  \"key\": \"value\"\n}\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln wraps in newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("done")
			if output.String() != "\ndone\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"sync", "sync-all", "playlists", "match", "clean", "auth", "config", "tui"} {
			if !names[want] {
				t.Errorf("missing command %q", want)
			}
		}
	})

	t.Run("catalog", func(t *testing.T) {
		ctx := context.Background()

		t.Run("unknown name", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if _, err := runner.catalog(ctx, "tidal"); !errors.Is(err, shared.ErrUnsupportedCatalog) {
				t.Errorf("expected ErrUnsupportedCatalog, got %v", err)
			}
		})

		t.Run("public reader needs no credentials", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			c, err := runner.catalog(ctx, catalogYouTubePublic)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			again, _ := runner.catalog(ctx, catalogYouTubePublic)
			if c != again {
				t.Error("expected the catalog to be cached")
			}
			if _, _, err := runner.directory(ctx, catalogYouTubePublic); !errors.Is(err, shared.ErrReadOnly) {
				t.Errorf("expected ErrReadOnly for directory, got %v", err)
			}
		})

		t.Run("spotify without a refresh token", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Credentials.Spotify.RefreshToken = ""
			runner := NewRunner(RunnerOpts{Config: config})

			_, err := runner.catalog(ctx, catalogSpotify)
			if !errors.Is(err, shared.ErrServiceUnavailable) || !errors.Is(err, shared.ErrNoRefreshToken) {
				t.Errorf("expected ErrServiceUnavailable wrapping ErrNoRefreshToken, got %v", err)
			}
		})
	})

	t.Run("collection", func(t *testing.T) {
		ctx := context.Background()
		h := newHarness(t)

		lib, err := h.runner.collection(ctx, h.spotify, "likes", false)
		if err != nil || !lib.Synthetic {
			t.Errorf("expected the library, got %+v, %v", lib, err)
		}

		if _, err := h.runner.collection(ctx, h.spotify, "missing", false); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}

		if _, err := h.runner.collection(ctx, h.spotify, " ", false); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}

		bare := struct{ services.Catalog }{h.youtube}
		c, err := h.runner.collection(ctx, bare, "PLraw", false)
		if err != nil || c.ID != "PLraw" {
			t.Errorf("expected an ID-only collection, got %+v, %v", c, err)
		}
	})
}

func TestSyncCommand(t *testing.T) {
	t.Run("creates the destination and adds the matches", func(t *testing.T) {
		h := newHarness(t)

		err := h.run("sync", "--source", "likes", "--dest", "spotify likes", "--create", "--report", "json")
		if err != nil {
			t.Fatalf("sync error = %v", err)
		}

		var reports []formatter.Report
		if err := json.Unmarshal(h.output.Bytes(), &reports); err != nil {
			t.Fatalf("expected only JSON on stdout: %v\n%s", err, h.output.String())
		}
		if len(reports) != 1 || reports[0].Added != 2 || reports[0].Matched != 2 || reports[0].Unmatched() != 1 {
			t.Errorf("unexpected report %+v", reports)
		}

		created := h.youtube.Lists
		if len(created) != 1 || created[0].Name != "spotify likes" {
			t.Fatalf("expected the playlist to be created, got %+v", created)
		}
		if ids := h.youtube.IDs(created[0]); strings.Join(ids, ",") != "b,c" {
			t.Errorf("destination = %v", ids)
		}
	})

	t.Run("second run adds nothing", func(t *testing.T) {
		h := newHarness(t)
		args := []string{"sync", "--source", "likes", "--dest", "spotify likes", "--create"}
		if err := h.run(args...); err != nil {
			t.Fatalf("first sync error = %v", err)
		}
		h.output.Reset()

		if err := h.run(args...); err != nil {
			t.Fatalf("second sync error = %v", err)
		}
		out := h.output.String()
		for _, want := range []string{"Sync Complete!", "Already present: 2", "Added: 0", "No match: 1"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		h := newHarness(t)
		h.youtube.Lists = []models.Collection{{ID: "PL1", Name: "mirror"}}

		if err := h.run("sync", "-s", "likes", "-d", "mirror", "--dry-run", "--report", "markdown"); err != nil {
			t.Fatalf("sync error = %v", err)
		}
		if len(h.youtube.Writes) != 0 {
			t.Errorf("dry run wrote %d batches", len(h.youtube.Writes))
		}
		out := h.output.String()
		for _, want := range []string{"Dry Run Complete!", "pending", "🔍"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("dry run does not create playlists", func(t *testing.T) {
		h := newHarness(t)
		err := h.run("sync", "-s", "likes", "-d", "new one", "--create", "--dry-run")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
		if len(h.youtube.Lists) != 0 {
			t.Error("dry run created a playlist")
		}
	})

	t.Run("writes the report to a file", func(t *testing.T) {
		h := newHarness(t)
		h.youtube.Lists = []models.Collection{{ID: "PL1", Name: "mirror"}}
		path := filepath.Join(t.TempDir(), "report.csv")

		if err := h.run("sync", "-s", "likes", "-d", "PL1", "--report", "csv", "--report-file", path); err != nil {
			t.Fatalf("sync error = %v", err)
		}
		csv := tu.MustReadFile(t, path)
		if !strings.HasPrefix(csv, "run,source,dest") || !strings.Contains(csv, "added") {
			t.Errorf("unexpected csv:\n%s", csv)
		}
	})

	t.Run("a held lock stops the sync", func(t *testing.T) {
		h := newHarness(t)
		h.youtube.Lists = []models.Collection{{ID: "PL1", Name: "mirror"}}

		lock := shared.NewDestinationLock(h.lockDir, models.BackendYouTube.String(), "PL1")
		if err := lock.Acquire(); err != nil {
			t.Fatalf("setup: %v", err)
		}
		defer lock.Release()

		if err := h.run("sync", "-s", "likes", "-d", "mirror"); !errors.Is(err, shared.ErrDestinationLocked) {
			t.Errorf("expected ErrDestinationLocked, got %v", err)
		}
		if len(h.youtube.Searches) != 0 {
			t.Error("a locked sync should not search")
		}
	})

	t.Run("write failure still reports", func(t *testing.T) {
		h := newHarness(t)
		h.youtube.Lists = []models.Collection{{ID: "PL1", Name: "mirror"}}
		h.youtube.AddErr = shared.ErrAPIRequest

		err := h.run("sync", "-s", "likes", "-d", "mirror", "--report", "json")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		var reports []formatter.Report
		if err := json.Unmarshal(h.output.Bytes(), &reports); err != nil || len(reports) != 1 || reports[0].Error == "" {
			t.Errorf("expected a report carrying the error, got %v / %s", err, h.output.String())
		}
	})

	t.Run("rejects an unknown report format", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("sync", "-s", "likes", "-d", "x", "--report", "xml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("flags override config", func(t *testing.T) {
		h := newHarness(t)
		h.youtube.Lists = []models.Collection{{ID: "PL1", Name: "mirror"}}
		h.youtube.AddResult("Y B", tu.Upload("b2", "Y - Bx", "Y"))

		if err := h.run("sync", "-s", "likes", "-d", "mirror", "--threshold", "0.01", "--limit", "1", "-w", "2", "--dry-run"); err != nil {
			t.Fatalf("sync error = %v", err)
		}
		if !strings.Contains(h.output.String(), "Matched: 2") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
	})
}

func TestSyncAllCommand(t *testing.T) {
	setup := func(t *testing.T) (*harness, string) {
		h := newHarness(t)
		house := models.Collection{ID: "PLhouse", Name: "house case"}
		h.youtube.Lists = []models.Collection{house}
		h.youtube.Seed(house, tu.Upload("y1", "Oden & Fatzo - Midnight", "Oden"), tu.Upload("y2", "Song 1", "DJ Krush - Topic"))
		h.spotify.AddResult("Oden Fatzo Midnight", tu.Track("t1", "Midnight", "Oden", "Fatzo"))
		h.spotify.AddResult("DJ Krush Song 1", tu.Track("t2", "Song 1", "DJ Krush"))

		mapping := filepath.Join(t.TempDir(), "mapping.toml")
		data := "from = \"youtube\"\nto = \"spotify\"\ncreate = true\n\n[[pair]]\nsource = \"house case\"\n"
		if err := os.WriteFile(mapping, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		return h, mapping
	}

	t.Run("syncs every pair and writes a manifest", func(t *testing.T) {
		h, mapping := setup(t)
		manifest := filepath.Join(t.TempDir(), "out", "manifest.json")

		if err := h.run("sync-all", "-m", mapping, "--manifest", manifest, "--report", "csv"); err != nil {
			t.Fatalf("sync-all error = %v", err)
		}
		out := h.output.String()
		for _, want := range []string{"Bulk Sync Complete!", "Succeeded: 1", "✓", "Manifest: " + manifest} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}

		if ids := h.spotify.IDs(models.Collection{ID: "sp1"}); strings.Join(ids, ",") != "t1,t2" {
			t.Errorf("unexpected destination %v", ids)
		}

		var reports []formatter.Report
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, manifest)), &reports); err != nil || len(reports) != 1 {
			t.Errorf("unexpected manifest: %v", err)
		}
	})

	t.Run("failed pairs fail the command", func(t *testing.T) {
		h, mapping := setup(t)
		h.spotify.AddErr = shared.ErrAPIRequest

		err := h.run("sync-all", "-m", mapping)
		if err == nil || !strings.Contains(err.Error(), "1 of 1 pairs failed") {
			t.Errorf("expected a failed pair error, got %v", err)
		}
	})

	t.Run("unresolvable pair", func(t *testing.T) {
		h, _ := setup(t)
		mapping := filepath.Join(t.TempDir(), "mapping.toml")
		if err := os.WriteFile(mapping, []byte("from = \"youtube\"\nto = \"spotify\"\n[[pair]]\nsource = \"nope\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := h.run("sync-all", "-m", mapping); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}

func TestCatalogCommands(t *testing.T) {
	t.Run("playlists table", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("playlists", "--service", "spotify"); err != nil {
			t.Fatalf("playlists error = %v", err)
		}
		out := h.output.String()
		for _, want := range []string{"likes", "(library)", "house case", "sp1"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("playlists json with limit", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("playlists", "--json", "--limit", "1"); err != nil {
			t.Fatalf("playlists error = %v", err)
		}
		var rows []playlistRow
		if err := json.Unmarshal(h.output.Bytes(), &rows); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if len(rows) != 1 || rows[0].Name != "likes" || !rows[0].Synthetic {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("match", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("match", "--service", "youtube", "-a", "Y", "-t", "B", "--json"); err != nil {
			t.Fatalf("match error = %v", err)
		}
		var report matchReport
		if err := json.Unmarshal(h.output.Bytes(), &report); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if report.Match != "Y - B" || len(report.Candidates) != 1 || !report.Candidates[0].Accepted {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("match from a free-text name", func(t *testing.T) {
		h := newHarness(t)
		h.spotify.AddResult("Z C", tu.Track("t9", "C", "Z"))
		if err := h.run("match", "--service", "spotify", "--name", "Z - C (Official Video)", "--channel", "ZVEVO"); err != nil {
			t.Fatalf("match error = %v", err)
		}
		if !strings.Contains(h.output.String(), "✓ Z - C") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
	})

	t.Run("match without a reference", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("match", "-t", "B"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("match with no candidates", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("match", "-a", "Nobody", "-t", "Nothing"); err != nil {
			t.Fatalf("match error = %v", err)
		}
		if !strings.Contains(h.output.String(), "✗ no candidates") {
			t.Errorf("unexpected output:\n%s", h.output.String())
		}
	})

	t.Run("clean", func(t *testing.T) {
		tests := []struct {
			args []string
			want []string
		}{
			{[]string{"clean", "Oden & Fatzo - Lullaby"}, []string{"Artists: Oden | Fatzo", "Title:   Lullaby"}},
			{[]string{"clean", "--channel", "DJ Krush - Topic", "Song 1"}, []string{"Artists: DJ Krush", "Title:   Song 1"}},
			{[]string{"clean", "Nosep"}, []string{"✗ could not find a separator"}},
		}
		for _, tt := range tests {
			h := newHarness(t)
			if err := h.run(tt.args...); err != nil {
				t.Fatalf("%v error = %v", tt.args, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(h.output.String(), want) {
					t.Errorf("%v output missing %q:\n%s", tt.args, want, h.output.String())
				}
			}
		}
	})

	t.Run("clean json", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("clean", "--json", "A - B"); err != nil {
			t.Fatalf("clean error = %v", err)
		}
		var report cleanReport
		if err := json.Unmarshal(h.output.Bytes(), &report); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if report.Title != "B" || len(report.Artists) != 1 || report.Artists[0] != "A" {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("clean without a title", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("clean"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestConfigAndAuthCommands(t *testing.T) {
	t.Run("config init", func(t *testing.T) {
		h := newHarness(t)
		h.configPath = filepath.Join(t.TempDir(), "fresh.toml")

		if err := h.run("config", "init"); err != nil {
			t.Fatalf("config init error = %v", err)
		}
		tu.AssertFileExists(t, h.configPath)
		if err := h.run("config", "init"); err == nil {
			t.Error("expected an error when the file exists")
		}
	})

	t.Run("config show masks secrets", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("config", "show"); err != nil {
			t.Fatalf("config show error = %v", err)
		}
		out := h.output.String()
		if strings.Contains(out, "your_spotify_client_secret") || !strings.Contains(out, "********") {
			t.Errorf("secrets not masked:\n%s", out)
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		h := newHarness(t)
		if err := h.run("--log-level", "loud", "config", "show"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("auth needs client credentials", func(t *testing.T) {
		h := newHarness(t)
		t.Setenv("YOUTUBE_CLIENT_ID", "")

		config := shared.DefaultConfig()
		config.Credentials.YouTube.ClientID = ""
		config.Sync.LockDir = h.lockDir
		if err := shared.SaveConfig(h.configPath, config); err != nil {
			t.Fatal(err)
		}

		if err := h.run("auth", "youtube"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		h := newHarness(t)
		h.runner.config.Credentials.Spotify.RefreshToken = "fresh"

		if err := h.runner.saveTokens("spotify"); err != nil {
			t.Fatalf("saveTokens() error = %v", err)
		}
		loaded, err := shared.LoadConfig(h.configPath)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if loaded.Credentials.Spotify.RefreshToken != "fresh" {
			t.Errorf("expected the refresh token to be saved, got %q", loaded.Credentials.Spotify.RefreshToken)
		}
		if !strings.Contains(h.output.String(), "refresh token saved") {
			t.Errorf("unexpected output %q", h.output.String())
		}

		h.runner.configPath = filepath.Join(h.configPath, "nested.toml")
		if err := h.runner.saveTokens("spotify"); err == nil || !strings.Contains(err.Error(), "failed to save config") {
			t.Errorf("expected a save error, got %v", err)
		}
	})
}
